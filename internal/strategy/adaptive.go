package strategy

import (
	"errors"

	"ipdarena/internal/game"
)

// DefaultWindow is the number of turns per classification window.
const DefaultWindow = 6

// Response picks a move for one archetype. position is the own history
// length modulo the window size, so 0 is the first turn of a window.
type Response func(position int, opponent []game.Action) game.Action

type AdaptiveConfig struct {
	Name      string
	Window    int
	Rules     []ArchetypeRule
	Responses map[Archetype]Response
}

// Adaptive plays tit-for-tat for one window, then re-classifies the
// opponent at the start of every window and answers with the response
// registered for the current archetype.
type Adaptive struct {
	cfg   AdaptiveConfig
	label Archetype
}

func NewAdaptive(cfg AdaptiveConfig) (*Adaptive, error) {
	if cfg.Name == "" {
		return nil, errors.New("adaptive strategy name is required")
	}
	if cfg.Window < 1 {
		return nil, errors.New("classification window must be >= 1")
	}
	if len(cfg.Rules) == 0 {
		return nil, errors.New("at least one archetype rule is required")
	}
	for _, rule := range cfg.Rules {
		if rule.Match == nil {
			return nil, errors.New("archetype rule match is required")
		}
	}
	return &Adaptive{cfg: cfg}, nil
}

// AdaptivePavlov2006 classifies by exact window patterns.
func AdaptivePavlov2006() *Adaptive {
	return &Adaptive{cfg: AdaptiveConfig{
		Name:   "Adaptive Pavlov 2006",
		Window: DefaultWindow,
		Rules:  PatternRules(),
		Responses: map[Archetype]Response{
			RandomArchetype:              AlwaysDefect,
			AllDefect:                    AlwaysDefect,
			SuspiciousTitForTatArchetype: ProbeThenTitForTat(2),
			PavlovDefect:                 DefectAtWindowStart,
			Cooperative:                  TitForTatResponse,
		},
	}}
}

// AdaptivePavlov2011 classifies by defection counts.
func AdaptivePavlov2011() *Adaptive {
	return &Adaptive{cfg: AdaptiveConfig{
		Name:   "Adaptive Pavlov 2011",
		Window: DefaultWindow,
		Rules:  CountRules(),
		Responses: map[Archetype]Response{
			RandomArchetype:              AlwaysDefect,
			AllDefect:                    AlwaysDefect,
			SuspiciousTitForTatArchetype: TitForTwoTatsResponse,
			Cooperative:                  TitForTatResponse,
		},
	}}
}

func (a *Adaptive) Name() string { return a.cfg.Name }

func (a *Adaptive) Classifier() Classifier {
	return Classifier{MemoryDepth: Unbounded}
}

// Archetype returns the current opponent label.
func (a *Adaptive) Archetype() Archetype { return a.label }

func (a *Adaptive) Window() int { return a.cfg.Window }

func (a *Adaptive) Decide(own, opponent []game.Action) (game.Action, error) {
	w := a.cfg.Window
	if len(own) < w {
		return titForTat(opponent), nil
	}
	position := len(own) % w
	if position == 0 {
		a.label = Classify(a.cfg.Rules, game.Last(opponent, w), a.label)
	}
	respond, ok := a.cfg.Responses[a.label]
	if !ok || respond == nil {
		return game.Cooperate, nil
	}
	return respond(position, opponent), nil
}

func (a *Adaptive) Reset() {
	a.label = Unclassified
}

func AlwaysDefect(_ int, _ []game.Action) game.Action { return game.Defect }

func TitForTatResponse(_ int, opponent []game.Action) game.Action { return titForTat(opponent) }

func TitForTwoTatsResponse(_ int, opponent []game.Action) game.Action {
	return titForTwoTats(opponent)
}

// ProbeThenTitForTat cooperates on the first probes turns of each window and
// plays tit-for-tat for the rest.
func ProbeThenTitForTat(probes int) Response {
	return func(position int, opponent []game.Action) game.Action {
		if position < probes {
			return game.Cooperate
		}
		return titForTat(opponent)
	}
}

// DefectAtWindowStart defects on the first turn of each window only.
func DefectAtWindowStart(position int, _ []game.Action) game.Action {
	if position == 0 {
		return game.Defect
	}
	return game.Cooperate
}
