package tournament

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"ipdarena/internal/game"
)

// Hooks observe tournament progress. Callbacks run on the orchestrating
// goroutine, in schedule order. Repetitions are numbered from 0.
type Hooks struct {
	OnMatch      func(repetition int, summary MatchSummary)
	OnRepetition func(repetition int, scores map[string]float64)
}

type Config struct {
	// Payoff defaults to game.DefaultMatrix.
	Payoff  game.PayoffModel
	Workers int
	Logger  *log.Logger
	Hooks   Hooks
}

type PlayerInfo struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Strategy string `json:"strategy"`
}

// Result maps each player ID to its total score per repetition.
type Result struct {
	Turns       int                  `json:"turns"`
	Repetitions int                  `json:"repetitions"`
	Players     []PlayerInfo         `json:"players"`
	Scores      map[string][]float64 `json:"scores"`
}

// ScoresFor returns the per-repetition totals of the player with id.
func (r Result) ScoresFor(id string) []float64 {
	return append([]float64(nil), r.Scores[id]...)
}

type Tournament struct {
	players []*Player
	cfg     Config
	logger  *log.Logger
}

func New(players []*Player, cfg Config) (*Tournament, error) {
	if len(players) < 2 {
		return nil, fmt.Errorf("%w: at least 2 players are required, got %d", ErrInvalidConfig, len(players))
	}
	seen := make(map[*Player]struct{}, len(players))
	for i, p := range players {
		if p == nil {
			return nil, fmt.Errorf("%w: player is nil at index %d", ErrInvalidConfig, i)
		}
		if p.strategy == nil {
			return nil, fmt.Errorf("%w: player %s has no strategy", ErrInvalidConfig, p.name)
		}
		if _, dup := seen[p]; dup {
			return nil, fmt.Errorf("%w: player %s listed twice", ErrInvalidConfig, p.name)
		}
		seen[p] = struct{}{}
	}
	if cfg.Payoff == nil {
		cfg.Payoff = game.DefaultMatrix()
	}
	if v, ok := cfg.Payoff.(interface{ Validate() error }); ok {
		if err := v.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
		}
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	logger = logger.WithPrefix("tournament")

	return &Tournament{
		players: append([]*Player(nil), players...),
		cfg:     cfg,
		logger:  logger,
	}, nil
}

func (t *Tournament) Players() []*Player {
	return append([]*Player(nil), t.players...)
}

func (t *Tournament) Payoff() game.PayoffModel { return t.cfg.Payoff }

// ResetPlayers clears every player's history, score and strategy state.
func (t *Tournament) ResetPlayers() {
	for _, p := range t.players {
		p.Reset()
	}
}

// RoundRobin plays one pass over all pairs without resetting first.
func (t *Tournament) RoundRobin(ctx context.Context, turns int) error {
	if turns <= 0 {
		return fmt.Errorf("%w: turns must be > 0, got %d", ErrInvalidConfig, turns)
	}
	_, err := t.roundRobin(ctx, turns, 0)
	return err
}

// Run resets the population and plays a full round robin repetitions times,
// recording every player's final score after each pass.
func (t *Tournament) Run(ctx context.Context, turns, repetitions int) (Result, error) {
	if turns <= 0 {
		return Result{}, fmt.Errorf("%w: turns must be > 0, got %d", ErrInvalidConfig, turns)
	}
	if repetitions <= 0 {
		return Result{}, fmt.Errorf("%w: repetitions must be > 0, got %d", ErrInvalidConfig, repetitions)
	}

	result := Result{
		Turns:       turns,
		Repetitions: repetitions,
		Players:     make([]PlayerInfo, 0, len(t.players)),
		Scores:      make(map[string][]float64, len(t.players)),
	}
	for _, p := range t.players {
		result.Players = append(result.Players, PlayerInfo{ID: p.id, Name: p.name, Strategy: p.strategy.Name()})
		result.Scores[p.id] = make([]float64, 0, repetitions)
	}

	for rep := 0; rep < repetitions; rep++ {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		t.ResetPlayers()
		matches, err := t.roundRobin(ctx, turns, rep)
		if err != nil {
			return Result{}, fmt.Errorf("repetition %d: %w", rep, err)
		}

		scores := make(map[string]float64, len(t.players))
		for _, p := range t.players {
			result.Scores[p.id] = append(result.Scores[p.id], p.score)
			scores[p.id] = p.score
		}
		t.logger.Debug("repetition complete", "repetition", rep, "matches", matches, "turns", turns)
		if t.cfg.Hooks.OnRepetition != nil {
			t.cfg.Hooks.OnRepetition(rep, scores)
		}
	}
	return result, nil
}

func (t *Tournament) roundRobin(ctx context.Context, turns, repetition int) (int, error) {
	opts := RoundRobinOptions{Workers: t.cfg.Workers, Logger: t.logger}
	if t.cfg.Hooks.OnMatch != nil {
		opts.OnMatch = func(s MatchSummary) { t.cfg.Hooks.OnMatch(repetition, s) }
	}
	return RoundRobin(ctx, t.players, turns, t.cfg.Payoff, opts)
}
