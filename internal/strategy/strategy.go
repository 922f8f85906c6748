package strategy

import "ipdarena/internal/game"

// Unbounded marks a strategy whose decision may depend on the whole history.
const Unbounded = -1

// Classifier holds static descriptive metadata. It is used for
// introspection and filtering only.
type Classifier struct {
	MemoryDepth       int      `json:"memory_depth"`
	Stochastic        bool     `json:"stochastic"`
	MakesUseOf        []string `json:"makes_use_of,omitempty"`
	LongRunTime       bool     `json:"long_run_time"`
	InspectsSource    bool     `json:"inspects_source"`
	ManipulatesSource bool     `json:"manipulates_source"`
	ManipulatesState  bool     `json:"manipulates_state"`
}

// Strategy decides the next move from the match histories so far. Both
// slices exclude the turn being decided and must be treated as read-only.
type Strategy interface {
	Name() string
	Classifier() Classifier
	Decide(own, opponent []game.Action) (game.Action, error)
}

// Resetter is implemented by strategies that keep private state between turns.
type Resetter interface {
	Reset()
}

// MatchResetter is implemented by strategies whose per-match state differs
// from their per-repetition state. ResetMatch runs before every match; Reset
// runs only when the player is reset between repetitions.
type MatchResetter interface {
	ResetMatch()
}

// Reset clears private state when the strategy supports it.
func Reset(s Strategy) {
	if r, ok := s.(Resetter); ok {
		r.Reset()
	}
}

// ResetMatch clears match-scoped state. Strategies without a MatchResetter
// fall back to Reset.
func ResetMatch(s Strategy) {
	if r, ok := s.(MatchResetter); ok {
		r.ResetMatch()
		return
	}
	Reset(s)
}

// Filter returns the strategies whose metadata satisfies keep, preserving order.
func Filter(strategies []Strategy, keep func(Classifier) bool) []Strategy {
	out := make([]Strategy, 0, len(strategies))
	for _, s := range strategies {
		if keep(s.Classifier()) {
			out = append(out, s)
		}
	}
	return out
}

// Deterministic reports whether a classifier describes a non-stochastic strategy.
func Deterministic(c Classifier) bool {
	return !c.Stochastic
}

func lastMove(history []game.Action) (game.Action, bool) {
	if len(history) == 0 {
		return 0, false
	}
	return history[len(history)-1], true
}

// titForTat defects only when the opponent's previous move was a defection.
func titForTat(opponent []game.Action) game.Action {
	if last, ok := lastMove(opponent); ok && last == game.Defect {
		return game.Defect
	}
	return game.Cooperate
}

// titForTwoTats defects only after two consecutive opponent defections.
func titForTwoTats(opponent []game.Action) game.Action {
	if len(opponent) < 2 {
		return game.Cooperate
	}
	if opponent[len(opponent)-1] == game.Defect && opponent[len(opponent)-2] == game.Defect {
		return game.Defect
	}
	return game.Cooperate
}
