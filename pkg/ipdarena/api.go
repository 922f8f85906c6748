package ipdarena

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"ipdarena/internal/game"
	"ipdarena/internal/model"
	"ipdarena/internal/stats"
	"ipdarena/internal/storage"
	"ipdarena/internal/strategy"
	"ipdarena/internal/tournament"
)

const (
	defaultArtifactsDir = "runs"
	defaultExportsDir   = "exports"
	defaultDBPath       = "ipdarena.db"
	defaultTurns        = 200
	defaultRepetitions  = 10
	defaultRunsLimit    = 20

	// Fixed width so run timestamps sort lexically.
	timestampLayout = "2006-01-02T15:04:05.000000000Z07:00"
)

type Options struct {
	StoreKind    string
	DBPath       string
	ArtifactsDir string
	ExportsDir   string
	Logger       *log.Logger
}

type Client struct {
	store  storage.Store
	logger *log.Logger

	artifactsDir string
	exportsDir   string

	initMu      sync.Mutex
	initialized bool
}

type RunRequest struct {
	// RunID defaults to a random UUID.
	RunID string
	// Strategies are registry keys. Empty means every registered strategy.
	Strategies    []string
	Turns         int
	Repetitions   int
	Workers       int
	Payoff        *game.Matrix
	RecordMatches bool
}

type RunSummary struct {
	RunID        string
	ArtifactsDir string
	Matches      int
	Standings    []stats.Standing
	Ratings      []model.RatingRecord
}

type RunsRequest struct {
	Limit int
}

type RunItem struct {
	RunID        string
	CreatedAtUTC string
	Players      int
	Turns        int
	Repetitions  int
	Workers      int
	Leader       string
	LeaderMean   float64
}

// RunSelector picks a stored run by ID or the most recent one.
type RunSelector struct {
	RunID  string
	Latest bool
}

type StandingsRequest struct {
	RunSelector
}

type RatingsRequest struct {
	RunSelector
	Limit int
}

type ScoresRequest struct {
	RunSelector
}

type ExportRequest struct {
	RunSelector
	OutDir string
}

type ExportSummary struct {
	RunID     string
	Directory string
}

func New(opts Options) (*Client, error) {
	storeKind := opts.StoreKind
	if storeKind == "" {
		storeKind = storage.DefaultStoreKind()
	}
	dbPath := opts.DBPath
	if dbPath == "" {
		dbPath = defaultDBPath
	}
	artifactsDir := opts.ArtifactsDir
	if artifactsDir == "" {
		artifactsDir = defaultArtifactsDir
	}
	exportsDir := opts.ExportsDir
	if exportsDir == "" {
		exportsDir = defaultExportsDir
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	store, err := storage.NewStore(storeKind, dbPath)
	if err != nil {
		return nil, err
	}

	return &Client{
		store:        store,
		logger:       logger,
		artifactsDir: artifactsDir,
		exportsDir:   exportsDir,
	}, nil
}

func (c *Client) Close() error {
	return storage.CloseIfSupported(c.store)
}

func (c *Client) Init(ctx context.Context) error {
	return c.ensureStore(ctx)
}

// Strategies lists the registered strategies in key order.
func (c *Client) Strategies() []strategy.Info {
	return strategy.Describe()
}

func (c *Client) Run(ctx context.Context, req RunRequest) (RunSummary, error) {
	if len(req.Strategies) == 0 {
		req.Strategies = strategy.Names()
	}
	if req.Turns < 0 {
		return RunSummary{}, fmt.Errorf("%w: turns must be >= 1, got %d", tournament.ErrInvalidConfig, req.Turns)
	}
	if req.Turns == 0 {
		req.Turns = defaultTurns
	}
	if req.Repetitions < 0 {
		return RunSummary{}, fmt.Errorf("%w: repetitions must be >= 1, got %d", tournament.ErrInvalidConfig, req.Repetitions)
	}
	if req.Repetitions == 0 {
		req.Repetitions = defaultRepetitions
	}
	if req.Workers <= 0 {
		req.Workers = 1
	}
	payoff := game.DefaultMatrix()
	if req.Payoff != nil {
		payoff = *req.Payoff
	}
	runID := req.RunID
	if runID == "" {
		runID = uuid.NewString()
	}
	if err := stats.ValidateRunID(runID); err != nil {
		return RunSummary{}, err
	}

	if err := c.ensureStore(ctx); err != nil {
		return RunSummary{}, err
	}

	players, err := buildPlayers(req.Strategies)
	if err != nil {
		return RunSummary{}, err
	}

	board := stats.NewRatingBoard()
	for _, p := range players {
		board.Register(p.ID(), p.Name())
	}
	var (
		matches []model.MatchRecord
		played  int
	)
	hooks := tournament.Hooks{
		OnMatch: func(rep int, s tournament.MatchSummary) {
			played++
			board.Record(s)
			if req.RecordMatches {
				matches = append(matches, model.MatchRecord{
					Repetition:    rep,
					PlayerA:       s.PlayerA,
					PlayerB:       s.PlayerB,
					ScoreA:        s.ScoreA,
					ScoreB:        s.ScoreB,
					CooperationsA: s.CooperationsA,
					CooperationsB: s.CooperationsB,
				})
			}
		},
		OnRepetition: func(rep int, _ map[string]float64) {
			board.ClosePeriod()
			c.logger.Info("repetition finished", "run_id", runID, "repetition", rep+1, "of", req.Repetitions)
		},
	}

	tour, err := tournament.New(players, tournament.Config{
		Payoff:  payoff,
		Workers: req.Workers,
		Logger:  c.logger,
		Hooks:   hooks,
	})
	if err != nil {
		return RunSummary{}, err
	}

	started := time.Now()
	result, err := tour.Run(ctx, req.Turns, req.Repetitions)
	if err != nil {
		return RunSummary{}, err
	}
	c.logger.Info("tournament finished", "run_id", runID, "players", len(players), "matches", played, "elapsed", time.Since(started))

	records := stats.PlayerRecords(result)
	standings := stats.Summarize(records)
	ratings := board.Ratings()
	now := time.Now().UTC().Format(timestampLayout)

	if err := c.store.SaveTournament(ctx, model.TournamentRecord{
		ID:           runID,
		CreatedAtUTC: now,
		Turns:        req.Turns,
		Repetitions:  req.Repetitions,
		Payoff:       payoff,
		Workers:      req.Workers,
		Players:      records,
		Matches:      matches,
	}); err != nil {
		return RunSummary{}, err
	}
	if err := c.store.SaveRatings(ctx, runID, ratings); err != nil {
		return RunSummary{}, err
	}

	runDir, err := stats.WriteRunArtifacts(c.artifactsDir, stats.RunArtifacts{
		Config: stats.RunConfig{
			RunID:        runID,
			Strategies:   append([]string(nil), req.Strategies...),
			Turns:        req.Turns,
			Repetitions:  req.Repetitions,
			Workers:      req.Workers,
			Payoff:       payoff,
			CreatedAtUTC: now,
		},
		Players:   records,
		Standings: standings,
		Ratings:   ratings,
		Matches:   matches,
	})
	if err != nil {
		return RunSummary{}, err
	}

	entry := stats.RunIndexEntry{
		RunID:        runID,
		Players:      len(players),
		Turns:        req.Turns,
		Repetitions:  req.Repetitions,
		Workers:      req.Workers,
		CreatedAtUTC: now,
	}
	if len(standings) > 0 {
		entry.Leader = standings[0].Name
		entry.LeaderMean = standings[0].Mean
	}
	if err := stats.AppendRunIndex(c.artifactsDir, entry); err != nil {
		return RunSummary{}, err
	}

	return RunSummary{
		RunID:        runID,
		ArtifactsDir: filepath.Clean(runDir),
		Matches:      played,
		Standings:    standings,
		Ratings:      ratings,
	}, nil
}

func (c *Client) Runs(_ context.Context, req RunsRequest) ([]RunItem, error) {
	if req.Limit <= 0 {
		req.Limit = defaultRunsLimit
	}

	entries, err := stats.ListRunIndex(c.artifactsDir)
	if err != nil {
		return nil, err
	}
	if len(entries) > req.Limit {
		entries = entries[:req.Limit]
	}

	out := make([]RunItem, 0, len(entries))
	for _, e := range entries {
		out = append(out, RunItem{
			RunID:        e.RunID,
			CreatedAtUTC: e.CreatedAtUTC,
			Players:      e.Players,
			Turns:        e.Turns,
			Repetitions:  e.Repetitions,
			Workers:      e.Workers,
			Leader:       e.Leader,
			LeaderMean:   e.LeaderMean,
		})
	}
	return out, nil
}

// Standings ranks the players of a run. Runs missing from the store are read
// back from their artifacts directory.
func (c *Client) Standings(ctx context.Context, req StandingsRequest) ([]stats.Standing, error) {
	runID, err := c.resolveRunID(req.RunSelector, "standings")
	if err != nil {
		return nil, err
	}
	players, err := c.loadPlayers(ctx, runID)
	if err != nil {
		return nil, err
	}
	return stats.Summarize(players), nil
}

func (c *Client) Ratings(ctx context.Context, req RatingsRequest) ([]model.RatingRecord, error) {
	if req.Limit < 0 {
		return nil, errors.New("limit must be >= 0")
	}
	runID, err := c.resolveRunID(req.RunSelector, "ratings")
	if err != nil {
		return nil, err
	}
	if err := c.ensureStore(ctx); err != nil {
		return nil, err
	}

	ratings, ok, err := c.store.GetRatings(ctx, runID)
	if err != nil {
		return nil, err
	}
	if !ok {
		ratings, ok, err = stats.ReadRatings(c.artifactsDir, runID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("ratings not found for run id: %s", runID)
		}
	}
	if req.Limit > 0 && len(ratings) > req.Limit {
		ratings = ratings[:req.Limit]
	}
	return ratings, nil
}

// Scores returns every player's per-repetition totals for a run.
func (c *Client) Scores(ctx context.Context, req ScoresRequest) ([]model.PlayerRecord, error) {
	runID, err := c.resolveRunID(req.RunSelector, "scores")
	if err != nil {
		return nil, err
	}
	return c.loadPlayers(ctx, runID)
}

func (c *Client) Export(_ context.Context, req ExportRequest) (ExportSummary, error) {
	runID, err := c.resolveRunID(req.RunSelector, "export")
	if err != nil {
		return ExportSummary{}, err
	}
	if req.OutDir == "" {
		req.OutDir = c.exportsDir
	}

	exportedDir, err := stats.ExportRunArtifacts(c.artifactsDir, runID, req.OutDir)
	if err != nil {
		return ExportSummary{}, err
	}
	return ExportSummary{RunID: runID, Directory: filepath.Clean(exportedDir)}, nil
}

func (c *Client) ensureStore(ctx context.Context) error {
	c.initMu.Lock()
	defer c.initMu.Unlock()

	if c.initialized {
		return nil
	}
	if err := c.store.Init(ctx); err != nil {
		return err
	}
	c.initialized = true
	return nil
}

func (c *Client) resolveRunID(sel RunSelector, op string) (string, error) {
	if sel.RunID != "" && sel.Latest {
		return "", errors.New("use either run id or latest")
	}
	if sel.RunID != "" {
		if err := stats.ValidateRunID(sel.RunID); err != nil {
			return "", err
		}
		return sel.RunID, nil
	}
	if !sel.Latest {
		return "", fmt.Errorf("%s requires run id or latest", op)
	}
	entries, err := stats.ListRunIndex(c.artifactsDir)
	if err != nil {
		return "", err
	}
	if len(entries) == 0 {
		return "", errors.New("no runs available")
	}
	return entries[0].RunID, nil
}

func (c *Client) loadPlayers(ctx context.Context, runID string) ([]model.PlayerRecord, error) {
	if err := c.ensureStore(ctx); err != nil {
		return nil, err
	}
	record, ok, err := c.store.GetTournament(ctx, runID)
	if err != nil {
		return nil, err
	}
	if ok {
		return record.Players, nil
	}

	players, ok, err := stats.ReadScoresCSV(c.artifactsDir, runID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("run not found: %s", runID)
	}
	return players, nil
}

// buildPlayers instantiates one player per key. Repeated keys get numbered
// names so standings stay readable, and repeated seeded strategies get
// distinct seeds so they do not mirror each other.
func buildPlayers(keys []string) ([]*tournament.Player, error) {
	seen := make(map[string]int, len(keys))
	players := make([]*tournament.Player, 0, len(keys))
	for _, key := range keys {
		s, err := strategy.New(key)
		if err != nil {
			return nil, err
		}
		name := s.Name()
		seen[name]++
		if n := seen[name]; n > 1 {
			name = fmt.Sprintf("%s #%d", name, n)
			if r, ok := s.(*strategy.Random); ok {
				r.Reseed(r.Seed + int64(n-1))
			}
		}
		players = append(players, tournament.NewNamedPlayer(name, s))
	}
	return players, nil
}
