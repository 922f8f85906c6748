package ipdarena

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ipdarena/internal/game"
	"ipdarena/internal/stats"
	"ipdarena/internal/strategy"
	"ipdarena/internal/tournament"
)

func newTestClient(t *testing.T) (*Client, string) {
	t.Helper()

	base := t.TempDir()
	client, err := New(Options{
		StoreKind:    "memory",
		ArtifactsDir: filepath.Join(base, "runs"),
		ExportsDir:   filepath.Join(base, "exports"),
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = client.Close()
	})
	require.NoError(t, client.Init(context.Background()))
	return client, base
}

func TestClientRunStandingsAndRatings(t *testing.T) {
	client, base := newTestClient(t)
	ctx := context.Background()

	summary, err := client.Run(ctx, RunRequest{
		Strategies:    []string{"cooperator", "tit_for_tat", "defector", "grudger", "go_by_majority"},
		Turns:         200,
		Repetitions:   5,
		Payoff:        &game.Matrix{Reward: 2, Temptation: 0, Sucker: 5, Punishment: 4},
		Workers:       3,
		RecordMatches: true,
	})
	require.NoError(t, err)
	require.NotEmpty(t, summary.RunID)
	assert.Equal(t, 50, summary.Matches)
	assert.Equal(t, filepath.Join(base, "runs", summary.RunID), summary.ArtifactsDir)

	// The cost table rewards low totals, so the highest mean belongs to Defector.
	require.Len(t, summary.Standings, 5)
	assert.Equal(t, "Defector", summary.Standings[0].Name)
	assert.InDelta(t, 2388, summary.Standings[0].Mean, 1e-9)
	assert.InDelta(t, 0, summary.Standings[0].StdDev, 1e-9)
	assert.Equal(t, "Cooperator", summary.Standings[1].Name)
	assert.InDelta(t, 2200, summary.Standings[1].Mean, 1e-9)

	standings, err := client.Standings(ctx, StandingsRequest{RunSelector{RunID: summary.RunID}})
	require.NoError(t, err)
	assert.Equal(t, summary.Standings, standings)

	ratings, err := client.Ratings(ctx, RatingsRequest{RunSelector: RunSelector{Latest: true}, Limit: 2})
	require.NoError(t, err)
	assert.Len(t, ratings, 2)

	scores, err := client.Scores(ctx, ScoresRequest{RunSelector{Latest: true}})
	require.NoError(t, err)
	require.Len(t, scores, 5)
	for _, p := range scores {
		assert.Len(t, p.Scores, 5, p.Name)
	}

	for _, file := range []string{"config.json", "standings.json", "ratings.json", "scores.csv", "matches.json"} {
		_, err := os.Stat(filepath.Join(summary.ArtifactsDir, file))
		assert.NoError(t, err, file)
	}
}

func TestClientDefaultsAndRunsListing(t *testing.T) {
	client, _ := newTestClient(t)
	ctx := context.Background()

	first, err := client.Run(ctx, RunRequest{RunID: "first", Turns: 5, Repetitions: 1})
	require.NoError(t, err)
	assert.Equal(t, "first", first.RunID)
	n := len(strategy.Names())
	assert.Len(t, first.Standings, n)
	assert.Equal(t, n*(n-1)/2, first.Matches)

	_, err = client.Run(ctx, RunRequest{RunID: "second", Strategies: []string{"defector", "cooperator"}, Turns: 10, Repetitions: 2})
	require.NoError(t, err)

	runs, err := client.Runs(ctx, RunsRequest{})
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "second", runs[0].RunID)
	assert.Equal(t, "Defector", runs[0].Leader)
	assert.InDelta(t, 50, runs[0].LeaderMean, 1e-9)

	limited, err := client.Runs(ctx, RunsRequest{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestClientReadsArtifactsWhenStoreIsEmpty(t *testing.T) {
	base := t.TempDir()
	opts := Options{StoreKind: "memory", ArtifactsDir: filepath.Join(base, "runs")}
	ctx := context.Background()

	writer, err := New(opts)
	require.NoError(t, err)
	summary, err := writer.Run(ctx, RunRequest{Strategies: []string{"tit_for_tat", "defector"}, Turns: 10, Repetitions: 3})
	require.NoError(t, err)

	// A fresh memory store knows nothing about the run; artifacts do.
	reader, err := New(opts)
	require.NoError(t, err)
	standings, err := reader.Standings(ctx, StandingsRequest{RunSelector{Latest: true}})
	require.NoError(t, err)
	assert.Equal(t, summary.Standings, standings)

	ratings, err := reader.Ratings(ctx, RatingsRequest{RunSelector: RunSelector{RunID: summary.RunID}})
	require.NoError(t, err)
	assert.Len(t, ratings, 2)
}

func TestClientDuplicateStrategiesGetNumberedNames(t *testing.T) {
	client, _ := newTestClient(t)

	summary, err := client.Run(context.Background(), RunRequest{
		Strategies:  []string{"tit_for_tat", "tit_for_tat", "defector"},
		Turns:       4,
		Repetitions: 1,
	})
	require.NoError(t, err)

	names := map[string]bool{}
	for _, s := range summary.Standings {
		names[s.Name] = true
	}
	assert.True(t, names["Tit For Tat"])
	assert.True(t, names["Tit For Tat #2"])
}

func TestBuildPlayersSeedsRepeatedRandomDistinctly(t *testing.T) {
	players, err := buildPlayers([]string{"random", "random", "random"})
	require.NoError(t, err)

	seeds := map[int64]bool{}
	for _, p := range players {
		r, ok := p.Strategy().(*strategy.Random)
		require.True(t, ok)
		seeds[r.Seed] = true
	}
	assert.Len(t, seeds, 3)
	assert.True(t, seeds[strategy.DefaultRandomSeed])
}

func TestClientExport(t *testing.T) {
	client, base := newTestClient(t)
	ctx := context.Background()

	summary, err := client.Run(ctx, RunRequest{Strategies: []string{"cooperator", "defector"}, Turns: 3, Repetitions: 1})
	require.NoError(t, err)

	exported, err := client.Export(ctx, ExportRequest{RunSelector: RunSelector{Latest: true}})
	require.NoError(t, err)
	assert.Equal(t, summary.RunID, exported.RunID)
	assert.Equal(t, filepath.Join(base, "exports", summary.RunID), exported.Directory)
	_, err = os.Stat(filepath.Join(exported.Directory, "standings.json"))
	assert.NoError(t, err)
}

func TestClientErrors(t *testing.T) {
	client, _ := newTestClient(t)
	ctx := context.Background()

	_, err := client.Run(ctx, RunRequest{Strategies: []string{"cooperator", "nope"}})
	assert.True(t, errors.Is(err, strategy.ErrStrategyNotFound), "got %v", err)

	_, err = client.Run(ctx, RunRequest{Strategies: []string{"cooperator"}})
	assert.True(t, errors.Is(err, tournament.ErrInvalidConfig), "got %v", err)

	_, err = client.Run(ctx, RunRequest{Strategies: []string{"cooperator", "defector"}, Turns: -5})
	assert.True(t, errors.Is(err, tournament.ErrInvalidConfig), "got %v", err)

	_, err = client.Run(ctx, RunRequest{Strategies: []string{"cooperator", "defector"}, Turns: 3, Repetitions: -1})
	assert.True(t, errors.Is(err, tournament.ErrInvalidConfig), "got %v", err)

	for _, id := range []string{"../../x", "a/b", "..", `a\b`} {
		_, err = client.Run(ctx, RunRequest{RunID: id, Strategies: []string{"cooperator", "defector"}, Turns: 2, Repetitions: 1})
		assert.True(t, errors.Is(err, stats.ErrInvalidRunID), "run id %q: got %v", id, err)
	}
	_, err = client.Scores(ctx, ScoresRequest{RunSelector{RunID: "../outside"}})
	assert.True(t, errors.Is(err, stats.ErrInvalidRunID), "got %v", err)

	_, err = client.Standings(ctx, StandingsRequest{RunSelector{RunID: "x", Latest: true}})
	assert.EqualError(t, err, "use either run id or latest")

	_, err = client.Standings(ctx, StandingsRequest{})
	assert.EqualError(t, err, "standings requires run id or latest")

	_, err = client.Scores(ctx, ScoresRequest{RunSelector{Latest: true}})
	assert.EqualError(t, err, "no runs available")

	_, err = client.Scores(ctx, ScoresRequest{RunSelector{RunID: "missing"}})
	assert.EqualError(t, err, "run not found: missing")

	_, err = client.Ratings(ctx, RatingsRequest{RunSelector: RunSelector{RunID: "missing"}, Limit: -1})
	assert.EqualError(t, err, "limit must be >= 0")

	_, err = New(Options{StoreKind: "bogus"})
	assert.Error(t, err)
}

func TestClientStrategies(t *testing.T) {
	client, _ := newTestClient(t)

	infos := client.Strategies()
	keys := make([]string, 0, len(infos))
	for _, info := range infos {
		keys = append(keys, info.Key)
	}
	assert.Contains(t, keys, "adaptive_pavlov_2006")
	assert.Contains(t, keys, "adaptive_pavlov_2011")
	assert.IsIncreasing(t, keys)
}
