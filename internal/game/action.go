package game

import (
	"errors"
	"fmt"
	"strings"
)

// Action is a single move in a round. The zero value is not a legal move.
type Action uint8

const (
	Cooperate Action = iota + 1
	Defect
)

var ErrInvalidAction = errors.New("invalid action")

func (a Action) Valid() bool {
	return a == Cooperate || a == Defect
}

func (a Action) String() string {
	switch a {
	case Cooperate:
		return "C"
	case Defect:
		return "D"
	default:
		return fmt.Sprintf("Action(%d)", uint8(a))
	}
}

// Flip returns the opposite move.
func (a Action) Flip() Action {
	if a == Cooperate {
		return Defect
	}
	return Cooperate
}

func ParseAction(s string) (Action, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "c", "cooperate":
		return Cooperate, nil
	case "d", "defect":
		return Defect, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidAction, s)
	}
}

// ParseHistory parses a compact move string such as "CDDC".
func ParseHistory(s string) ([]Action, error) {
	out := make([]Action, 0, len(s))
	for _, r := range s {
		a, err := ParseAction(string(r))
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

func FormatHistory(history []Action) string {
	var b strings.Builder
	b.Grow(len(history))
	for _, a := range history {
		b.WriteString(a.String())
	}
	return b.String()
}

// Count returns how many times target occurs in history.
func Count(history []Action, target Action) int {
	n := 0
	for _, a := range history {
		if a == target {
			n++
		}
	}
	return n
}

// Last returns the final n moves of history, or all of it when shorter.
func Last(history []Action, n int) []Action {
	if n <= 0 {
		return nil
	}
	if len(history) <= n {
		return history
	}
	return history[len(history)-n:]
}
