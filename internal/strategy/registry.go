package strategy

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
)

var (
	ErrStrategyExists   = errors.New("strategy already registered")
	ErrStrategyNotFound = errors.New("strategy not found")
)

// Factory builds a fresh strategy instance. Each player needs its own
// instance because strategies may carry private state.
type Factory func() Strategy

// Info describes a registered strategy.
type Info struct {
	Key        string     `json:"key"`
	Name       string     `json:"name"`
	Classifier Classifier `json:"classifier"`
}

// DefaultRandomSeed seeds Random strategies built through the registry.
const DefaultRandomSeed = 1

var registry = struct {
	mu sync.RWMutex
	m  map[string]Factory
}{
	m: builtinFactories(),
}

func builtinFactories() map[string]Factory {
	return map[string]Factory{
		"cooperator":             func() Strategy { return Cooperator{} },
		"defector":               func() Strategy { return Defector{} },
		"tit_for_tat":            func() Strategy { return TitForTat{} },
		"suspicious_tit_for_tat": func() Strategy { return SuspiciousTitForTat{} },
		"tit_for_two_tats":       func() Strategy { return TitForTwoTats{} },
		"grudger":                func() Strategy { return Grudger{} },
		"go_by_majority":         func() Strategy { return GoByMajority{} },
		"alternator":             func() Strategy { return Alternator{} },
		"random":                 func() Strategy { return NewRandom(0.5, DefaultRandomSeed) },
		"adaptive_pavlov_2006":   func() Strategy { return AdaptivePavlov2006() },
		"adaptive_pavlov_2011":   func() Strategy { return AdaptivePavlov2011() },
	}
}

// Register adds a strategy factory under key.
func Register(key string, factory Factory) error {
	key = normalizeKey(key)
	if key == "" {
		return errors.New("strategy key is required")
	}
	if factory == nil {
		return errors.New("strategy factory is required")
	}

	registry.mu.Lock()
	defer registry.mu.Unlock()

	if _, exists := registry.m[key]; exists {
		return fmt.Errorf("%w: %s", ErrStrategyExists, key)
	}
	registry.m[key] = factory
	return nil
}

// New builds a fresh instance of the strategy registered under key.
func New(key string) (Strategy, error) {
	registry.mu.RLock()
	factory, ok := registry.m[normalizeKey(key)]
	registry.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrStrategyNotFound, key)
	}
	s := factory()
	if s == nil {
		return nil, fmt.Errorf("strategy factory returned nil: %s", key)
	}
	return s, nil
}

func Names() []string {
	registry.mu.RLock()
	defer registry.mu.RUnlock()

	names := make([]string, 0, len(registry.m))
	for name := range registry.m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Describe lists every registered strategy with its metadata, sorted by key.
func Describe() []Info {
	names := Names()
	out := make([]Info, 0, len(names))
	for _, key := range names {
		s, err := New(key)
		if err != nil {
			continue
		}
		out = append(out, Info{Key: key, Name: s.Name(), Classifier: s.Classifier()})
	}
	return out
}

func normalizeKey(key string) string {
	key = strings.ToLower(strings.TrimSpace(key))
	return strings.NewReplacer("-", "_", " ", "_").Replace(key)
}

func resetRegistryForTests() {
	registry.mu.Lock()
	defer registry.mu.Unlock()
	registry.m = builtinFactories()
}
