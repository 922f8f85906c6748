package storage

import (
	"context"

	"ipdarena/internal/model"
)

// Store defines persistence operations for tournament runs and ratings.
type Store interface {
	Init(ctx context.Context) error
	SaveTournament(ctx context.Context, record model.TournamentRecord) error
	GetTournament(ctx context.Context, id string) (model.TournamentRecord, bool, error)
	// ListTournaments returns stored runs newest first. limit <= 0 means all.
	ListTournaments(ctx context.Context, limit int) ([]model.TournamentRecord, error)
	SaveRatings(ctx context.Context, runID string, ratings []model.RatingRecord) error
	GetRatings(ctx context.Context, runID string) ([]model.RatingRecord, bool, error)
}
