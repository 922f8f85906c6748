package strategy

import (
	"math/rand"

	"ipdarena/internal/game"
)

type Cooperator struct{}

func (Cooperator) Name() string { return "Cooperator" }

func (Cooperator) Classifier() Classifier { return Classifier{MemoryDepth: 0} }

func (Cooperator) Decide(_, _ []game.Action) (game.Action, error) { return game.Cooperate, nil }

type Defector struct{}

func (Defector) Name() string { return "Defector" }

func (Defector) Classifier() Classifier { return Classifier{MemoryDepth: 0} }

func (Defector) Decide(_, _ []game.Action) (game.Action, error) { return game.Defect, nil }

// TitForTat cooperates first, then copies the opponent's previous move.
type TitForTat struct{}

func (TitForTat) Name() string { return "Tit For Tat" }

func (TitForTat) Classifier() Classifier { return Classifier{MemoryDepth: 1} }

func (TitForTat) Decide(_, opponent []game.Action) (game.Action, error) {
	return titForTat(opponent), nil
}

// SuspiciousTitForTat defects first, then copies the opponent's previous move.
type SuspiciousTitForTat struct{}

func (SuspiciousTitForTat) Name() string { return "Suspicious Tit For Tat" }

func (SuspiciousTitForTat) Classifier() Classifier { return Classifier{MemoryDepth: 1} }

func (SuspiciousTitForTat) Decide(_, opponent []game.Action) (game.Action, error) {
	if len(opponent) == 0 {
		return game.Defect, nil
	}
	return opponent[len(opponent)-1], nil
}

type TitForTwoTats struct{}

func (TitForTwoTats) Name() string { return "Tit For 2 Tats" }

func (TitForTwoTats) Classifier() Classifier { return Classifier{MemoryDepth: 2} }

func (TitForTwoTats) Decide(_, opponent []game.Action) (game.Action, error) {
	return titForTwoTats(opponent), nil
}

// Grudger cooperates until the opponent defects once, then always defects.
type Grudger struct{}

func (Grudger) Name() string { return "Grudger" }

func (Grudger) Classifier() Classifier { return Classifier{MemoryDepth: Unbounded} }

func (Grudger) Decide(_, opponent []game.Action) (game.Action, error) {
	if game.Count(opponent, game.Defect) > 0 {
		return game.Defect, nil
	}
	return game.Cooperate, nil
}

// GoByMajority cooperates while the opponent has defected no more often than
// it has cooperated.
type GoByMajority struct{}

func (GoByMajority) Name() string { return "Go By Majority" }

func (GoByMajority) Classifier() Classifier { return Classifier{MemoryDepth: Unbounded} }

func (GoByMajority) Decide(_, opponent []game.Action) (game.Action, error) {
	if game.Count(opponent, game.Defect) > game.Count(opponent, game.Cooperate) {
		return game.Defect, nil
	}
	return game.Cooperate, nil
}

// Alternator plays C, D, C, D, ...
type Alternator struct{}

func (Alternator) Name() string { return "Alternator" }

func (Alternator) Classifier() Classifier { return Classifier{MemoryDepth: 1} }

func (Alternator) Decide(own, _ []game.Action) (game.Action, error) {
	if last, ok := lastMove(own); ok {
		return last.Flip(), nil
	}
	return game.Cooperate, nil
}

// Random cooperates with probability P. Reset re-seeds the generator so a
// reset player replays the same sequence; the generator keeps running across
// matches within a repetition.
type Random struct {
	P    float64
	Seed int64

	rng *rand.Rand
}

func NewRandom(p float64, seed int64) *Random {
	r := &Random{P: p, Seed: seed}
	r.Reset()
	return r
}

func (r *Random) Name() string { return "Random" }

func (r *Random) Classifier() Classifier {
	return Classifier{MemoryDepth: 0, Stochastic: true, MakesUseOf: []string{"rng"}}
}

func (r *Random) Decide(_, _ []game.Action) (game.Action, error) {
	if r.rng == nil {
		r.Reset()
	}
	if r.rng.Float64() < r.P {
		return game.Cooperate, nil
	}
	return game.Defect, nil
}

func (r *Random) Reset() {
	r.rng = rand.New(rand.NewSource(r.Seed))
}

// ResetMatch leaves the generator alone; Random keeps no per-match state.
func (r *Random) ResetMatch() {}

// Reseed replaces the seed and restarts the generator from it.
func (r *Random) Reseed(seed int64) {
	r.Seed = seed
	r.Reset()
}
