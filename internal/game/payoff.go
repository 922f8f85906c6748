package game

import (
	"fmt"
	"math"
)

// PayoffModel converts an ordered action pair into an ordered score pair.
// Implementations must be stateless for the lifetime of a tournament.
type PayoffModel interface {
	Payoff(own, opponent Action) (ownScore, opponentScore float64)
}

// PayoffFunc adapts a plain function to PayoffModel.
type PayoffFunc func(own, opponent Action) (float64, float64)

func (f PayoffFunc) Payoff(own, opponent Action) (float64, float64) {
	return f(own, opponent)
}

// Matrix is a symmetric 2x2 payoff table.
type Matrix struct {
	Reward     float64 `json:"reward"`
	Temptation float64 `json:"temptation"`
	Sucker     float64 `json:"sucker"`
	Punishment float64 `json:"punishment"`
}

func DefaultMatrix() Matrix {
	return Matrix{Reward: 3, Temptation: 5, Sucker: 0, Punishment: 1}
}

func (m Matrix) Payoff(own, opponent Action) (float64, float64) {
	switch {
	case own == Cooperate && opponent == Cooperate:
		return m.Reward, m.Reward
	case own == Defect && opponent == Defect:
		return m.Punishment, m.Punishment
	case own == Defect && opponent == Cooperate:
		return m.Temptation, m.Sucker
	default:
		return m.Sucker, m.Temptation
	}
}

func (m Matrix) Validate() error {
	values := map[string]float64{
		"reward":     m.Reward,
		"temptation": m.Temptation,
		"sucker":     m.Sucker,
		"punishment": m.Punishment,
	}
	for _, name := range []string{"reward", "temptation", "sucker", "punishment"} {
		v := values[name]
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("payoff %s must be finite, got %v", name, v)
		}
	}
	return nil
}

// IsPrisonersDilemma reports T > R > P > S and 2R > T+S.
func (m Matrix) IsPrisonersDilemma() bool {
	return m.Temptation > m.Reward &&
		m.Reward > m.Punishment &&
		m.Punishment > m.Sucker &&
		2*m.Reward > m.Temptation+m.Sucker
}
