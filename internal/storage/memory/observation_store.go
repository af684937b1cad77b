package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/brcurves/svenfit/internal/curve"
	"github.com/brcurves/svenfit/internal/storage"
)

// ObservationStore is an in-memory implementation of storage.ObservationStore.
type ObservationStore struct {
	mu   sync.RWMutex
	sets map[string]curve.ObservationSet
}

// NewObservationStore creates an empty in-memory observation store.
func NewObservationStore() *ObservationStore {
	return &ObservationStore{sets: make(map[string]curve.ObservationSet)}
}

func (s *ObservationStore) SaveObservations(_ context.Context, date string, obs curve.ObservationSet) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sets[date] = append(curve.ObservationSet(nil), obs...)
	return nil
}

func (s *ObservationStore) Observations(_ context.Context, date string) (curve.ObservationSet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	obs, ok := s.sets[date]
	if !ok {
		return nil, &storage.NotFoundError{Kind: "observations", Key: date}
	}
	return append(curve.ObservationSet(nil), obs...), nil
}

func (s *ObservationStore) ListDates(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	dates := make([]string, 0, len(s.sets))
	for date := range s.sets {
		dates = append(dates, date)
	}
	// ISO dates sort lexically; newest first.
	sort.Sort(sort.Reverse(sort.StringSlice(dates)))
	return dates, nil
}
