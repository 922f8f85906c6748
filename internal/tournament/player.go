package tournament

import (
	"sync/atomic"

	"github.com/google/uuid"

	"ipdarena/internal/game"
	"ipdarena/internal/strategy"
)

// Player is one participant in a tournament. It is built once and reused
// for every repetition; Reset restores its post-construction state.
type Player struct {
	id       string
	name     string
	strategy strategy.Strategy

	history    []game.Action
	matchStart int
	score      float64

	busy atomic.Bool
}

// NewPlayer wraps s in a player named after the strategy.
func NewPlayer(s strategy.Strategy) *Player {
	name := ""
	if s != nil {
		name = s.Name()
	}
	return NewNamedPlayer(name, s)
}

func NewNamedPlayer(name string, s strategy.Strategy) *Player {
	return &Player{
		id:       uuid.NewString(),
		name:     name,
		strategy: s,
	}
}

// ID is stable across resets.
func (p *Player) ID() string { return p.id }

func (p *Player) Name() string { return p.name }

func (p *Player) String() string { return p.name }

func (p *Player) Strategy() strategy.Strategy { return p.strategy }

func (p *Player) Score() float64 { return p.score }

// History returns a copy of every move played since the last reset.
func (p *Player) History() []game.Action {
	return append([]game.Action(nil), p.history...)
}

// Reset clears history, score and strategy-private state.
func (p *Player) Reset() {
	p.history = nil
	p.matchStart = 0
	p.score = 0
	if p.strategy != nil {
		strategy.Reset(p.strategy)
	}
}

func (p *Player) claim() bool { return p.busy.CompareAndSwap(false, true) }

func (p *Player) release() { p.busy.Store(false) }

func (p *Player) beginMatch() {
	p.matchStart = len(p.history)
	strategy.ResetMatch(p.strategy)
}

// matchHistory is the capacity-capped view of moves in the current match,
// so a strategy appending to it cannot write into the player's history.
func (p *Player) matchHistory() []game.Action {
	return p.history[p.matchStart:len(p.history):len(p.history)]
}

func (p *Player) record(a game.Action, payoff float64) {
	p.history = append(p.history, a)
	p.score += payoff
}
