package tournament

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"ipdarena/internal/game"
)

// Pair indexes two distinct players of a population, A < B.
type Pair struct {
	A int
	B int
}

// Pairs lists every unordered pair of n players in lexicographic order.
func Pairs(n int) []Pair {
	if n < 2 {
		return nil
	}
	out := make([]Pair, 0, n*(n-1)/2)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			out = append(out, Pair{A: i, B: j})
		}
	}
	return out
}

// Rounds partitions Pairs(n) into rounds in which every player appears at
// most once, using the circle method. Odd populations get one bye per round.
func Rounds(n int) [][]Pair {
	if n < 2 {
		return nil
	}
	slots := make([]int, 0, n+1)
	for i := 0; i < n; i++ {
		slots = append(slots, i)
	}
	if n%2 == 1 {
		slots = append(slots, -1)
	}
	m := len(slots)

	rounds := make([][]Pair, 0, m-1)
	for r := 0; r < m-1; r++ {
		round := make([]Pair, 0, m/2)
		for i := 0; i < m/2; i++ {
			x, y := slots[i], slots[m-1-i]
			if x < 0 || y < 0 {
				continue
			}
			if x > y {
				x, y = y, x
			}
			round = append(round, Pair{A: x, B: y})
		}
		rounds = append(rounds, round)

		// Keep slot 0 fixed and rotate the rest one step.
		last := slots[m-1]
		copy(slots[2:], slots[1:m-1])
		slots[1] = last
	}
	return rounds
}

type RoundRobinOptions struct {
	// Workers > 1 plays the matches of each round concurrently.
	Workers int
	OnMatch func(MatchSummary)
	Logger  *log.Logger
}

// RoundRobin plays every pair of players once and returns the number of
// matches played. Scores accumulate on the players. Both modes walk the
// pairs in Rounds order, so each player meets its opponents in the same
// sequence whether or not matches run concurrently.
func RoundRobin(ctx context.Context, players []*Player, turns int, payoff game.PayoffModel, opts RoundRobinOptions) (int, error) {
	if len(players) < 2 {
		return 0, fmt.Errorf("%w: round robin requires at least 2 players, got %d", ErrInvalidConfig, len(players))
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	notify := func(s MatchSummary) {
		logger.Debug("match complete", "a", s.NameA, "b", s.NameB, "score_a", s.ScoreA, "score_b", s.ScoreB)
		if opts.OnMatch != nil {
			opts.OnMatch(s)
		}
	}

	played := 0
	if opts.Workers <= 1 {
		for _, round := range Rounds(len(players)) {
			for _, pair := range round {
				if err := ctx.Err(); err != nil {
					return played, err
				}
				summary, err := Play(ctx, players[pair.A], players[pair.B], turns, payoff)
				if err != nil {
					return played, fmt.Errorf("match %s vs %s: %w", players[pair.A].name, players[pair.B].name, err)
				}
				played++
				notify(summary)
			}
		}
		return played, nil
	}

	for _, round := range Rounds(len(players)) {
		if err := ctx.Err(); err != nil {
			return played, err
		}
		summaries := make([]MatchSummary, len(round))
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(opts.Workers)
		for i, pair := range round {
			i, pair := i, pair
			g.Go(func() error {
				summary, err := Play(gctx, players[pair.A], players[pair.B], turns, payoff)
				if err != nil {
					return fmt.Errorf("match %s vs %s: %w", players[pair.A].name, players[pair.B].name, err)
				}
				summaries[i] = summary
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return played, err
		}
		for _, summary := range summaries {
			played++
			notify(summary)
		}
	}
	return played, nil
}
