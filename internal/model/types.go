package model

import "ipdarena/internal/game"

// VersionedRecord captures schema and codec evolution for persistent data.
type VersionedRecord struct {
	SchemaVersion int `json:"schema_version"`
	CodecVersion  int `json:"codec_version"`
}

// TournamentRecord is the persisted outcome of one tournament run.
type TournamentRecord struct {
	VersionedRecord
	ID           string         `json:"id"`
	CreatedAtUTC string         `json:"created_at_utc"`
	Turns        int            `json:"turns"`
	Repetitions  int            `json:"repetitions"`
	Payoff       game.Matrix    `json:"payoff"`
	Workers      int            `json:"workers"`
	Players      []PlayerRecord `json:"players"`
	Matches      []MatchRecord  `json:"matches,omitempty"`
}

// PlayerRecord holds a player's total score for every repetition.
type PlayerRecord struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Strategy string    `json:"strategy"`
	Scores   []float64 `json:"scores"`
}

type MatchRecord struct {
	Repetition    int     `json:"repetition"`
	PlayerA       string  `json:"player_a"`
	PlayerB       string  `json:"player_b"`
	ScoreA        float64 `json:"score_a"`
	ScoreB        float64 `json:"score_b"`
	CooperationsA int     `json:"cooperations_a"`
	CooperationsB int     `json:"cooperations_b"`
}

type RatingRecord struct {
	VersionedRecord
	PlayerID   string  `json:"player_id"`
	Name       string  `json:"name"`
	Rating     float64 `json:"rating"`
	Deviation  float64 `json:"deviation"`
	Volatility float64 `json:"volatility"`
	Wins       int     `json:"wins"`
	Draws      int     `json:"draws"`
	Losses     int     `json:"losses"`
}
