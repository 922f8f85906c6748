package stats

import (
	"sort"
	"sync"

	glicko "github.com/zelenin/go-glicko2"

	"ipdarena/internal/model"
	"ipdarena/internal/tournament"
)

const (
	DefaultRating     = 1500
	DefaultDeviation  = 350
	DefaultVolatility = 0.06
)

type ratedPlayer struct {
	id     string
	name   string
	player *glicko.Player
	wins   int
	draws  int
	losses int
}

// RatingBoard keeps Glicko-2 ratings for tournament players. Matches are
// collected into the open rating period until ClosePeriod is called; a
// higher match score counts as a win.
type RatingBoard struct {
	mu      sync.Mutex
	players map[string]*ratedPlayer
	period  *glicko.RatingPeriod
	pending int
}

func NewRatingBoard() *RatingBoard {
	return &RatingBoard{
		players: make(map[string]*ratedPlayer),
		period:  glicko.NewRatingPeriod(),
	}
}

// Register adds a player with the default rating. Registering a known ID
// only updates its name.
func (b *RatingBoard) Register(id, name string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.register(id, name)
}

func (b *RatingBoard) register(id, name string) *ratedPlayer {
	if p, ok := b.players[id]; ok {
		if name != "" {
			p.name = name
		}
		return p
	}
	p := &ratedPlayer{
		id:     id,
		name:   name,
		player: glicko.NewPlayer(glicko.NewRating(DefaultRating, DefaultDeviation, DefaultVolatility)),
	}
	b.players[id] = p
	return p
}

// Record adds a finished match to the open rating period.
func (b *RatingBoard) Record(summary tournament.MatchSummary) {
	b.mu.Lock()
	defer b.mu.Unlock()

	a := b.register(summary.PlayerA, summary.NameA)
	c := b.register(summary.PlayerB, summary.NameB)

	result := glicko.MATCH_RESULT_DRAW
	switch {
	case summary.ScoreA > summary.ScoreB:
		result = glicko.MATCH_RESULT_WIN
		a.wins++
		c.losses++
	case summary.ScoreA < summary.ScoreB:
		result = glicko.MATCH_RESULT_LOSS
		a.losses++
		c.wins++
	default:
		a.draws++
		c.draws++
	}
	b.period.AddMatch(a.player, c.player, result)
	b.pending++
}

// ClosePeriod applies every match recorded since the last call and opens a
// new rating period. It reports whether any match was applied.
func (b *RatingBoard) ClosePeriod() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.pending == 0 {
		return false
	}
	b.period.Calculate()
	b.period = glicko.NewRatingPeriod()
	b.pending = 0
	return true
}

// Ratings lists every player, strongest rating first.
func (b *RatingBoard) Ratings() []model.RatingRecord {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]model.RatingRecord, 0, len(b.players))
	for _, p := range b.players {
		rating := p.player.Rating()
		out = append(out, model.RatingRecord{
			PlayerID:   p.id,
			Name:       p.name,
			Rating:     rating.R(),
			Deviation:  rating.Rd(),
			Volatility: rating.Sigma(),
			Wins:       p.wins,
			Draws:      p.draws,
			Losses:     p.losses,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Rating != out[j].Rating {
			return out[i].Rating > out[j].Rating
		}
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].PlayerID < out[j].PlayerID
	})
	return out
}
