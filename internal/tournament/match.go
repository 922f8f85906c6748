package tournament

import (
	"context"
	"errors"
	"fmt"

	"ipdarena/internal/game"
)

var (
	ErrInvalidConfig  = errors.New("invalid tournament configuration")
	ErrStrategyFailed = errors.New("strategy failed")
	ErrPlayerBusy     = errors.New("player is already in a match")
)

// StrategyError reports a strategy that failed, panicked or returned an
// illegal action. It matches ErrStrategyFailed with errors.Is.
type StrategyError struct {
	PlayerID   string
	PlayerName string
	Turn       int
	Err        error
}

func (e *StrategyError) Error() string {
	return fmt.Sprintf("strategy %q (player %s) failed on turn %d: %v", e.PlayerName, e.PlayerID, e.Turn, e.Err)
}

func (e *StrategyError) Unwrap() []error {
	return []error{ErrStrategyFailed, e.Err}
}

type MatchSummary struct {
	PlayerA       string  `json:"player_a"`
	PlayerB       string  `json:"player_b"`
	NameA         string  `json:"name_a"`
	NameB         string  `json:"name_b"`
	Turns         int     `json:"turns"`
	ScoreA        float64 `json:"score_a"`
	ScoreB        float64 `json:"score_b"`
	CooperationsA int     `json:"cooperations_a"`
	CooperationsB int     `json:"cooperations_b"`
}

// Play runs turns simultaneous rounds between a and b. Both strategies see
// only the moves of this match, and neither sees the other's move for the
// current round before deciding.
func Play(ctx context.Context, a, b *Player, turns int, payoff game.PayoffModel) (MatchSummary, error) {
	if a == nil || b == nil {
		return MatchSummary{}, fmt.Errorf("%w: match requires two players", ErrInvalidConfig)
	}
	if a == b {
		return MatchSummary{}, fmt.Errorf("%w: player %s cannot play itself", ErrInvalidConfig, a.name)
	}
	if a.strategy == nil || b.strategy == nil {
		return MatchSummary{}, fmt.Errorf("%w: player strategy is required", ErrInvalidConfig)
	}
	if turns <= 0 {
		return MatchSummary{}, fmt.Errorf("%w: turns must be > 0, got %d", ErrInvalidConfig, turns)
	}
	if payoff == nil {
		return MatchSummary{}, fmt.Errorf("%w: payoff model is required", ErrInvalidConfig)
	}
	if err := ctx.Err(); err != nil {
		return MatchSummary{}, err
	}

	if !a.claim() {
		return MatchSummary{}, fmt.Errorf("%w: %s", ErrPlayerBusy, a.name)
	}
	defer a.release()
	if !b.claim() {
		return MatchSummary{}, fmt.Errorf("%w: %s", ErrPlayerBusy, b.name)
	}
	defer b.release()

	a.beginMatch()
	b.beginMatch()

	summary := MatchSummary{
		PlayerA: a.id,
		PlayerB: b.id,
		NameA:   a.name,
		NameB:   b.name,
	}
	for turn := 1; turn <= turns; turn++ {
		historyA, historyB := a.matchHistory(), b.matchHistory()
		moveA, err := decide(a, historyA, historyB, turn)
		if err != nil {
			return summary, err
		}
		moveB, err := decide(b, historyB, historyA, turn)
		if err != nil {
			return summary, err
		}

		scoreA, scoreB := payoff.Payoff(moveA, moveB)
		a.record(moveA, scoreA)
		b.record(moveB, scoreB)

		summary.Turns++
		summary.ScoreA += scoreA
		summary.ScoreB += scoreB
		if moveA == game.Cooperate {
			summary.CooperationsA++
		}
		if moveB == game.Cooperate {
			summary.CooperationsB++
		}
	}
	return summary, nil
}

func decide(p *Player, own, opponent []game.Action, turn int) (action game.Action, err error) {
	defer func() {
		if r := recover(); r != nil {
			action = 0
			err = &StrategyError{PlayerID: p.id, PlayerName: p.name, Turn: turn, Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	action, err = p.strategy.Decide(own, opponent)
	if err != nil {
		return 0, &StrategyError{PlayerID: p.id, PlayerName: p.name, Turn: turn, Err: err}
	}
	if !action.Valid() {
		return 0, &StrategyError{
			PlayerID:   p.id,
			PlayerName: p.name,
			Turn:       turn,
			Err:        fmt.Errorf("%w: %v", game.ErrInvalidAction, action),
		}
	}
	return action, nil
}
