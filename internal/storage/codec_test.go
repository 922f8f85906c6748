package storage

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"ipdarena/internal/game"
	"ipdarena/internal/model"
)

func TestDecodeTournamentFixture(t *testing.T) {
	data := readFixture(t, "tournament_v1.json")

	record, err := DecodeTournament(data)
	if err != nil {
		t.Fatalf("decode fixture: %v", err)
	}
	if record.ID != "run-fixture-1" || record.Turns != 10 || record.Repetitions != 2 {
		t.Fatalf("unexpected tournament header: %+v", record)
	}
	if record.Payoff != game.DefaultMatrix() {
		t.Fatalf("unexpected payoff: %+v", record.Payoff)
	}
	if len(record.Players) != 2 || record.Players[0].Name != "Defector" {
		t.Fatalf("unexpected players: %+v", record.Players)
	}
	if !reflect.DeepEqual(record.Players[0].Scores, []float64{50, 50}) {
		t.Fatalf("unexpected scores: %+v", record.Players[0].Scores)
	}
}

func TestDecodeRatingsFixture(t *testing.T) {
	data := readFixture(t, "ratings_v1.json")

	ratings, err := DecodeRatings(data)
	if err != nil {
		t.Fatalf("decode fixture: %v", err)
	}
	if len(ratings) != 1 || ratings[0].PlayerID != "p-defector" || ratings[0].Wins != 2 {
		t.Fatalf("unexpected ratings: %+v", ratings)
	}
}

func TestTournamentCodecRoundTrip(t *testing.T) {
	input := model.TournamentRecord{
		VersionedRecord: CurrentVersion(),
		ID:              "run-1",
		CreatedAtUTC:    "2026-03-01T00:00:00Z",
		Turns:           5,
		Repetitions:     1,
		Payoff:          game.Matrix{Reward: 2, Temptation: 0, Sucker: 5, Punishment: 4},
		Workers:         2,
		Players: []model.PlayerRecord{
			{ID: "a", Name: "Tit For Tat", Strategy: "tit_for_tat", Scores: []float64{12}},
			{ID: "b", Name: "Grudger", Strategy: "grudger", Scores: []float64{12}},
		},
		Matches: []model.MatchRecord{
			{Repetition: 0, PlayerA: "a", PlayerB: "b", ScoreA: 12, ScoreB: 12, CooperationsA: 5, CooperationsB: 5},
		},
	}

	data, err := EncodeTournament(input)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	output, err := DecodeTournament(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !reflect.DeepEqual(input, output) {
		t.Fatalf("round trip mismatch:\ninput=%+v\noutput=%+v", input, output)
	}
}

func TestDecodeRejectsVersionMismatch(t *testing.T) {
	stale := model.TournamentRecord{
		VersionedRecord: model.VersionedRecord{SchemaVersion: CurrentSchemaVersion + 1, CodecVersion: CurrentCodecVersion},
		ID:              "run-future",
	}
	data, err := EncodeTournament(stale)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if _, err := DecodeTournament(data); !errors.Is(err, ErrVersionMismatch) {
		t.Fatalf("expected ErrVersionMismatch, got %v", err)
	}

	data, err = EncodeRatings([]model.RatingRecord{{PlayerID: "p"}})
	if err != nil {
		t.Fatalf("encode ratings: %v", err)
	}
	if _, err := DecodeRatings(data); !errors.Is(err, ErrVersionMismatch) {
		t.Fatalf("expected ErrVersionMismatch for unversioned ratings, got %v", err)
	}
}

func TestDecodeRejectsMalformedPayload(t *testing.T) {
	if _, err := DecodeTournament([]byte("{")); err == nil {
		t.Fatal("expected decode error")
	}
	if _, err := DecodeRatings([]byte(`{"player_id":"x"}`)); err == nil {
		t.Fatal("expected decode error for non-array ratings")
	}
}

func fixturePath(name string) string {
	return filepath.Join("..", "..", "testdata", "fixtures", name)
}

func readFixture(t *testing.T, name string) []byte {
	t.Helper()

	data, err := os.ReadFile(fixturePath(name))
	if err != nil {
		t.Fatalf("read fixture %s: %v", name, err)
	}
	return data
}
