package stats

import (
	"fmt"
	"math"
	"sort"

	"ipdarena/internal/model"
	"ipdarena/internal/tournament"
)

// Standing aggregates one player's per-repetition totals.
type Standing struct {
	Rank     int       `json:"rank"`
	PlayerID string    `json:"player_id"`
	Name     string    `json:"name"`
	Strategy string    `json:"strategy"`
	Mean     float64   `json:"mean"`
	StdDev   float64   `json:"std_dev"`
	Min      float64   `json:"min"`
	Max      float64   `json:"max"`
	Median   float64   `json:"median"`
	Scores   []float64 `json:"scores"`
}

// PlayerRecords flattens a tournament result into persistable player rows,
// keeping the result's player order.
func PlayerRecords(result tournament.Result) []model.PlayerRecord {
	out := make([]model.PlayerRecord, 0, len(result.Players))
	for _, p := range result.Players {
		out = append(out, model.PlayerRecord{
			ID:       p.ID,
			Name:     p.Name,
			Strategy: p.Strategy,
			Scores:   result.ScoresFor(p.ID),
		})
	}
	return out
}

// Summarize ranks players by mean score, highest first. Ties break on name
// and then on ID so the order is stable.
func Summarize(players []model.PlayerRecord) []Standing {
	out := make([]Standing, 0, len(players))
	for _, p := range players {
		s := Standing{
			PlayerID: p.ID,
			Name:     p.Name,
			Strategy: p.Strategy,
			Scores:   append([]float64(nil), p.Scores...),
		}
		if len(p.Scores) > 0 {
			s.Mean, _ = Mean(p.Scores)
			s.StdDev, _ = Std(p.Scores)
			s.Min, s.Max = bounds(p.Scores)
			s.Median = median(p.Scores)
		}
		out = append(out, s)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Mean != out[j].Mean {
			return out[i].Mean > out[j].Mean
		}
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].PlayerID < out[j].PlayerID
	})
	for i := range out {
		out[i].Rank = i + 1
	}
	return out
}

func Mean(values []float64) (float64, error) {
	if len(values) == 0 {
		return 0, fmt.Errorf("values must not be empty")
	}
	sum := 0.0
	for _, value := range values {
		sum += value
	}
	return sum / float64(len(values)), nil
}

// Std returns population standard deviation.
func Std(values []float64) (float64, error) {
	mean, err := Mean(values)
	if err != nil {
		return 0, err
	}
	sum := 0.0
	for _, value := range values {
		diff := mean - value
		sum += diff * diff
	}
	return math.Sqrt(sum / float64(len(values))), nil
}

func bounds(values []float64) (float64, float64) {
	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	return lo, hi
}

func median(values []float64) float64 {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}
