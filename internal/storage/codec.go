package storage

import (
	"encoding/json"
	"errors"
	"fmt"

	"ipdarena/internal/model"
)

const (
	CurrentSchemaVersion = 1
	CurrentCodecVersion  = 1
)

var ErrVersionMismatch = errors.New("record version mismatch")

// CurrentVersion is stamped on records that are saved without one.
func CurrentVersion() model.VersionedRecord {
	return model.VersionedRecord{SchemaVersion: CurrentSchemaVersion, CodecVersion: CurrentCodecVersion}
}

func EncodeTournament(record model.TournamentRecord) ([]byte, error) {
	return json.Marshal(record)
}

func DecodeTournament(data []byte) (model.TournamentRecord, error) {
	var record model.TournamentRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return model.TournamentRecord{}, err
	}
	if err := checkVersion(record.VersionedRecord); err != nil {
		return model.TournamentRecord{}, err
	}
	return record, nil
}

func EncodeRatings(records []model.RatingRecord) ([]byte, error) {
	return json.Marshal(records)
}

func DecodeRatings(data []byte) ([]model.RatingRecord, error) {
	var records []model.RatingRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, err
	}
	for _, record := range records {
		if err := checkVersion(record.VersionedRecord); err != nil {
			return nil, err
		}
	}
	return records, nil
}

func checkVersion(v model.VersionedRecord) error {
	if v.SchemaVersion != CurrentSchemaVersion || v.CodecVersion != CurrentCodecVersion {
		return fmt.Errorf("%w: schema=%d codec=%d", ErrVersionMismatch, v.SchemaVersion, v.CodecVersion)
	}
	return nil
}

func stampTournament(record model.TournamentRecord) model.TournamentRecord {
	if record.SchemaVersion == 0 && record.CodecVersion == 0 {
		record.VersionedRecord = CurrentVersion()
	}
	return record
}

func stampRatings(records []model.RatingRecord) []model.RatingRecord {
	out := make([]model.RatingRecord, len(records))
	for i, r := range records {
		if r.SchemaVersion == 0 && r.CodecVersion == 0 {
			r.VersionedRecord = CurrentVersion()
		}
		out[i] = r
	}
	return out
}

func cloneTournament(record model.TournamentRecord) model.TournamentRecord {
	players := make([]model.PlayerRecord, len(record.Players))
	for i, p := range record.Players {
		p.Scores = append([]float64(nil), p.Scores...)
		players[i] = p
	}
	record.Players = players
	if record.Matches != nil {
		record.Matches = append([]model.MatchRecord(nil), record.Matches...)
	}
	return record
}
