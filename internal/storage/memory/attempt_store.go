package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/brcurves/svenfit/internal/storage"
)

// AttemptStore is an in-memory implementation of storage.AttemptStore,
// used as the default backend and in tests.
type AttemptStore struct {
	mu      sync.RWMutex
	records map[string]*storage.AttemptRecord
}

// NewAttemptStore creates an empty in-memory attempt store.
func NewAttemptStore() *AttemptStore {
	return &AttemptStore{records: make(map[string]*storage.AttemptRecord)}
}

func (s *AttemptStore) Create(_ context.Context, record *storage.AttemptRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	clone := *record
	s.records[record.ID] = &clone
	return nil
}

func (s *AttemptStore) Get(_ context.Context, id string) (*storage.AttemptRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.records[id]
	if !ok {
		return nil, &storage.NotFoundError{Kind: "attempt", Key: id}
	}
	clone := *record
	return &clone, nil
}

func (s *AttemptStore) Update(_ context.Context, record *storage.AttemptRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[record.ID]; !ok {
		return &storage.NotFoundError{Kind: "attempt", Key: record.ID}
	}
	clone := *record
	s.records[record.ID] = &clone
	return nil
}

func (s *AttemptStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[id]; !ok {
		return &storage.NotFoundError{Kind: "attempt", Key: id}
	}
	delete(s.records, id)
	return nil
}

func (s *AttemptStore) ListByDate(_ context.Context, date string) ([]*storage.AttemptRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*storage.AttemptRecord, 0)
	for _, record := range s.records {
		if record.Date != date {
			continue
		}
		clone := *record
		out = append(out, &clone)
	}

	// Newest first; id breaks creation-time ties deterministically.
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}
