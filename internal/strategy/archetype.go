package strategy

import (
	"slices"

	"ipdarena/internal/game"
)

// Archetype is the adaptive strategy's current belief about its opponent.
type Archetype uint8

const (
	Unclassified Archetype = iota
	Cooperative
	AllDefect
	SuspiciousTitForTatArchetype
	PavlovDefect
	RandomArchetype
)

func (a Archetype) String() string {
	switch a {
	case Cooperative:
		return "Cooperative"
	case AllDefect:
		return "AllDefect"
	case SuspiciousTitForTatArchetype:
		return "SuspiciousTitForTat"
	case PavlovDefect:
		return "PavlovDefect"
	case RandomArchetype:
		return "Random"
	default:
		return "Unclassified"
	}
}

// ArchetypeRule labels a window when Match returns true.
type ArchetypeRule struct {
	Archetype Archetype
	Match     func(window []game.Action) bool
}

// Classify applies rules in order and returns the first match. When nothing
// matches, an existing label is kept; only an unclassified opponent falls
// back to RandomArchetype.
func Classify(rules []ArchetypeRule, window []game.Action, current Archetype) Archetype {
	for _, rule := range rules {
		if rule.Match(window) {
			return rule.Archetype
		}
	}
	if current != Unclassified {
		return current
	}
	return RandomArchetype
}

// PatternRules recognises opponents by exact six-move patterns.
func PatternRules() []ArchetypeRule {
	return []ArchetypeRule{
		{Archetype: Cooperative, Match: matchesPattern("CCCCCC")},
		{Archetype: AllDefect, Match: matchesPattern("DDDDDD")},
		{Archetype: SuspiciousTitForTatArchetype, Match: matchesPattern("DCDCDC")},
		{Archetype: PavlovDefect, Match: matchesPattern("DDCDDC")},
	}
}

// CountRules recognises opponents by how many times they defected in the window.
func CountRules() []ArchetypeRule {
	return []ArchetypeRule{
		{Archetype: Cooperative, Match: func(w []game.Action) bool {
			return len(w) > 0 && game.Count(w, game.Cooperate) == len(w)
		}},
		{Archetype: AllDefect, Match: func(w []game.Action) bool { return game.Count(w, game.Defect) >= 4 }},
		{Archetype: SuspiciousTitForTatArchetype, Match: func(w []game.Action) bool { return game.Count(w, game.Defect) == 3 }},
	}
}

func matchesPattern(pattern string) func([]game.Action) bool {
	want, err := game.ParseHistory(pattern)
	if err != nil {
		panic(err)
	}
	return func(window []game.Action) bool {
		return slices.Equal(window, want)
	}
}
