package strategy

import (
	"errors"
	"testing"

	"ipdarena/internal/game"
)

func TestRegistryBuiltinsResolve(t *testing.T) {
	t.Cleanup(resetRegistryForTests)

	for _, key := range Names() {
		s, err := New(key)
		if err != nil {
			t.Fatalf("new %s: %v", key, err)
		}
		a, err := s.Decide(nil, nil)
		if err != nil {
			t.Fatalf("%s first decide: %v", key, err)
		}
		if !a.Valid() {
			t.Fatalf("%s returned invalid first move %v", key, a)
		}
	}

	if _, err := New("Tit-For-Tat"); err != nil {
		t.Fatalf("expected key normalisation, got %v", err)
	}
}

func TestRegistryReturnsFreshInstances(t *testing.T) {
	a, err := New("adaptive_pavlov_2006")
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	b, err := New("adaptive_pavlov_2006")
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if a == b {
		t.Fatal("expected distinct instances for stateful strategies")
	}
}

func TestRegistryRejectsDuplicatesAndUnknown(t *testing.T) {
	t.Cleanup(resetRegistryForTests)

	if err := Register("cooperator", func() Strategy { return Cooperator{} }); !errors.Is(err, ErrStrategyExists) {
		t.Fatalf("expected ErrStrategyExists, got %v", err)
	}
	if _, err := New("nope"); !errors.Is(err, ErrStrategyNotFound) {
		t.Fatalf("expected ErrStrategyNotFound, got %v", err)
	}
	if err := Register("", func() Strategy { return Cooperator{} }); err == nil {
		t.Fatal("expected empty key error")
	}
	if err := Register("custom", nil); err == nil {
		t.Fatal("expected nil factory error")
	}

	if err := Register("always_c", func() Strategy { return Cooperator{} }); err != nil {
		t.Fatalf("register: %v", err)
	}
	found := false
	for _, info := range Describe() {
		if info.Key == "always_c" && info.Name == "Cooperator" {
			found = true
		}
	}
	if !found {
		t.Fatal("expected custom strategy in Describe output")
	}
}

func TestBasicStrategies(t *testing.T) {
	cases := []struct {
		name     string
		s        Strategy
		opponent string
		want     string
	}{
		{name: "tit for tat", s: TitForTat{}, opponent: "CDDCC", want: "CCDDC"},
		{name: "suspicious tit for tat", s: SuspiciousTitForTat{}, opponent: "CDDCC", want: "DCDDC"},
		{name: "tit for two tats", s: TitForTwoTats{}, opponent: "DDCDC", want: "CCDCC"},
		{name: "grudger", s: Grudger{}, opponent: "CCDCC", want: "CCCDD"},
		{name: "go by majority", s: GoByMajority{}, opponent: "DDCCC", want: "CDDDC"},
		{name: "alternator", s: Alternator{}, opponent: "CCCCC", want: "CDCDC"},
	}
	for _, tc := range cases {
		own, _ := play(t, tc.s, newScripted(t, tc.opponent), len(tc.opponent))
		if got := game.FormatHistory(own); got != tc.want {
			t.Fatalf("%s: got %s want %s", tc.name, got, tc.want)
		}
	}
}

func TestRandomIsReproducibleAfterReset(t *testing.T) {
	r := NewRandom(0.5, 7)
	first, _ := play(t, r, Cooperator{}, 32)
	r.Reset()
	second, _ := play(t, r, Cooperator{}, 32)
	if game.FormatHistory(first) != game.FormatHistory(second) {
		t.Fatal("expected identical sequences after reset")
	}
	if !r.Classifier().Stochastic {
		t.Fatal("random must be marked stochastic")
	}
}

func TestFilterByClassifier(t *testing.T) {
	all := []Strategy{Cooperator{}, NewRandom(0.5, 1), AdaptivePavlov2011()}
	deterministic := Filter(all, Deterministic)
	if len(deterministic) != 2 {
		t.Fatalf("expected 2 deterministic strategies, got %d", len(deterministic))
	}
	unbounded := Filter(all, func(c Classifier) bool { return c.MemoryDepth == Unbounded })
	if len(unbounded) != 1 || unbounded[0].Name() != "Adaptive Pavlov 2011" {
		t.Fatalf("unexpected unbounded filter result: %v", unbounded)
	}
}
