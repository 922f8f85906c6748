package storage

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"ipdarena/internal/model"
)

var errNotInitialized = errors.New("store is not initialized")

type MemoryStore struct {
	mu          sync.RWMutex
	initialized bool
	tournaments map[string]model.TournamentRecord
	order       map[string]int
	seq         int
	ratings     map[string][]model.RatingRecord
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Init(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.initialized = true
	s.tournaments = make(map[string]model.TournamentRecord)
	s.order = make(map[string]int)
	s.seq = 0
	s.ratings = make(map[string][]model.RatingRecord)
	return nil
}

func (s *MemoryStore) SaveTournament(_ context.Context, record model.TournamentRecord) error {
	if record.ID == "" {
		return fmt.Errorf("tournament id is required")
	}
	record = stampTournament(record)
	if err := checkVersion(record.VersionedRecord); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return errNotInitialized
	}
	if _, ok := s.order[record.ID]; !ok {
		s.seq++
		s.order[record.ID] = s.seq
	}
	s.tournaments[record.ID] = cloneTournament(record)
	return nil
}

func (s *MemoryStore) GetTournament(_ context.Context, id string) (model.TournamentRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.initialized {
		return model.TournamentRecord{}, false, errNotInitialized
	}
	record, ok := s.tournaments[id]
	if !ok {
		return model.TournamentRecord{}, false, nil
	}
	return cloneTournament(record), true, nil
}

func (s *MemoryStore) ListTournaments(_ context.Context, limit int) ([]model.TournamentRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.initialized {
		return nil, errNotInitialized
	}
	out := make([]model.TournamentRecord, 0, len(s.tournaments))
	for _, record := range s.tournaments {
		out = append(out, cloneTournament(record))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAtUTC == out[j].CreatedAtUTC {
			return s.order[out[i].ID] > s.order[out[j].ID]
		}
		return out[i].CreatedAtUTC > out[j].CreatedAtUTC
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *MemoryStore) SaveRatings(_ context.Context, runID string, ratings []model.RatingRecord) error {
	if runID == "" {
		return fmt.Errorf("run id is required")
	}
	copied := stampRatings(ratings)
	for _, r := range copied {
		if err := checkVersion(r.VersionedRecord); err != nil {
			return err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return errNotInitialized
	}
	s.ratings[runID] = copied
	return nil
}

func (s *MemoryStore) GetRatings(_ context.Context, runID string) ([]model.RatingRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.initialized {
		return nil, false, errNotInitialized
	}
	ratings, ok := s.ratings[runID]
	if !ok {
		return nil, false, nil
	}
	copied := make([]model.RatingRecord, len(ratings))
	copy(copied, ratings)
	return copied, true, nil
}
