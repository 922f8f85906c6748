package stats

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ipdarena/internal/model"
	"ipdarena/internal/strategy"
	"ipdarena/internal/tournament"
)

func TestSummarizeAggregatesAndRanks(t *testing.T) {
	standings := Summarize([]model.PlayerRecord{
		{ID: "c", Name: "Cooperator", Scores: []float64{10, 20, 30, 40}},
		{ID: "d", Name: "Defector", Scores: []float64{50, 50, 50}},
		{ID: "b", Name: "Alternator", Scores: []float64{25, 25}},
		{ID: "a", Name: "Alternator", Scores: []float64{30, 20}},
	})
	require.Len(t, standings, 4)

	assert.Equal(t, "d", standings[0].PlayerID)
	assert.Equal(t, 1, standings[0].Rank)
	assert.InDelta(t, 50, standings[0].Mean, 1e-9)
	assert.InDelta(t, 0, standings[0].StdDev, 1e-9)

	// Equal means fall back to name, then ID.
	assert.Equal(t, []string{"a", "b", "c"}, []string{standings[1].PlayerID, standings[2].PlayerID, standings[3].PlayerID})

	coop := standings[3]
	assert.InDelta(t, 25, coop.Mean, 1e-9)
	assert.InDelta(t, 11.180339887, coop.StdDev, 1e-6)
	assert.Equal(t, 10.0, coop.Min)
	assert.Equal(t, 40.0, coop.Max)
	assert.Equal(t, 25.0, coop.Median)
	assert.Equal(t, 4, coop.Rank)
}

func TestSummarizeOddMedianAndEmptyScores(t *testing.T) {
	standings := Summarize([]model.PlayerRecord{
		{ID: "x", Name: "X", Scores: []float64{9, 1, 5}},
		{ID: "y", Name: "Y"},
	})
	require.Len(t, standings, 2)
	assert.Equal(t, 5.0, standings[0].Median)
	assert.Equal(t, 1.0, standings[0].Min)
	assert.Equal(t, 9.0, standings[0].Max)
	assert.Zero(t, standings[1].Mean)
	assert.Empty(t, standings[1].Scores)
}

func TestMeanAndStdRejectEmpty(t *testing.T) {
	_, err := Mean(nil)
	assert.Error(t, err)
	_, err = Std(nil)
	assert.Error(t, err)
}

func TestPlayerRecordsFromTournament(t *testing.T) {
	players := []*tournament.Player{
		tournament.NewPlayer(strategy.Defector{}),
		tournament.NewPlayer(strategy.Cooperator{}),
	}
	tour, err := tournament.New(players, tournament.Config{})
	require.NoError(t, err)
	result, err := tour.Run(context.Background(), 10, 2)
	require.NoError(t, err)

	records := PlayerRecords(result)
	require.Len(t, records, 2)
	assert.Equal(t, players[0].ID(), records[0].ID)
	assert.Equal(t, "Defector", records[0].Name)
	assert.Equal(t, []float64{50, 50}, records[0].Scores)
	assert.Equal(t, []float64{0, 0}, records[1].Scores)

	standings := Summarize(records)
	assert.Equal(t, "Defector", standings[0].Name)
}
