// Package attempt owns the estimation-attempt lifecycle: creation with
// eagerly computed metrics, improve runs that commit only strictly better
// fits, and the per-attempt locking that keeps improve transactions serial.
package attempt

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/brcurves/svenfit/internal/curve"
	"github.com/brcurves/svenfit/internal/opt"
	"github.com/brcurves/svenfit/internal/storage"
)

// Config tunes the manager.
type Config struct {
	// Optimizer carries the strategy tunables shared by all improve runs.
	Optimizer opt.Config
	// Seed fixes the random source for population strategies; zero means a
	// fresh time-derived seed per run.
	Seed int64
}

// Manager mediates all attempt operations against the stores. It is
// stateless between calls apart from the busy set guarding concurrent
// improves on the same attempt.
type Manager struct {
	attempts     storage.AttemptStore
	observations storage.ObservationStore
	cfg          Config

	mu   sync.Mutex
	busy map[string]bool
}

// NewManager creates a Manager over the given stores.
func NewManager(attempts storage.AttemptStore, observations storage.ObservationStore, cfg Config) *Manager {
	return &Manager{
		attempts:     attempts,
		observations: observations,
		cfg:          cfg,
		busy:         make(map[string]bool),
	}
}

// Create builds and persists a new attempt for date with the given initial
// parameters. Initial metrics are computed eagerly against the date's
// observations; the final side stays absent until an improve commits.
func (m *Manager) Create(ctx context.Context, date string, initial curve.ParameterVector, note string) (*storage.AttemptRecord, error) {
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return nil, fmt.Errorf("invalid date %q: %w", date, err)
	}

	obs, err := m.observations.Observations(ctx, date)
	if err != nil {
		return nil, err
	}
	metrics, err := curve.Metrics(initial, obs, m.cfg.Optimizer.DayCount)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	record := &storage.AttemptRecord{
		ID:             uuid.New().String(),
		Date:           date,
		Initial:        initial,
		InitialMetrics: metrics,
		Note:           note,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := m.attempts.Create(ctx, record); err != nil {
		return nil, err
	}

	slog.Info("attempt created",
		"attempt_id", record.ID,
		"date", date,
		"initial_objective", metrics.Objective,
	)
	return record, nil
}

// Get returns one attempt by id.
func (m *Manager) Get(ctx context.Context, id string) (*storage.AttemptRecord, error) {
	return m.attempts.Get(ctx, id)
}

// ListByDate returns the attempts for a trade date, newest first.
func (m *Manager) ListByDate(ctx context.Context, date string) ([]*storage.AttemptRecord, error) {
	return m.attempts.ListByDate(ctx, date)
}

// Delete removes an attempt entirely. Observations and sibling attempts for
// the same date are untouched.
func (m *Manager) Delete(ctx context.Context, id string) error {
	return m.attempts.Delete(ctx, id)
}

// UpdateInitial replaces an attempt's initial parameters and note, and
// recomputes the initial metrics. Final parameters are left as committed.
func (m *Manager) UpdateInitial(ctx context.Context, id string, initial curve.ParameterVector, note string) (*storage.AttemptRecord, error) {
	record, err := m.attempts.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	obs, err := m.observations.Observations(ctx, record.Date)
	if err != nil {
		return nil, err
	}
	metrics, err := curve.Metrics(initial, obs, m.cfg.Optimizer.DayCount)
	if err != nil {
		return nil, err
	}

	record.Initial = initial
	record.InitialMetrics = metrics
	record.Note = note
	record.UpdatedAt = time.Now().UTC()

	if err := m.attempts.Update(ctx, record); err != nil {
		return nil, err
	}
	return record, nil
}

// Outcome describes the result of one improve invocation. A no-improvement
// outcome is a normal result, not an error.
type Outcome struct {
	Improved          bool                   `json:"improved"`
	Strategy          opt.Strategy           `json:"strategy"`
	Iterations        int                    `json:"iterations"`
	PreviousObjective float64                `json:"previousObjective"`
	NewObjective      float64                `json:"newObjective"`
	Attempt           *storage.AttemptRecord `json:"attempt"`
}

// Improve runs the named strategy against the attempt's current best
// parameters and commits the final side only when the candidate's objective
// is strictly lower. The whole call is one transaction per attempt id;
// a concurrent improve on the same attempt fails fast with ErrBusy.
func (m *Manager) Improve(ctx context.Context, id string, strategy opt.Strategy, progress opt.ProgressFunc) (*Outcome, error) {
	if !m.acquire(id) {
		return nil, &BusyError{ID: id}
	}
	defer m.release(id)

	record, err := m.attempts.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	obs, err := m.observations.Observations(ctx, record.Date)
	if err != nil {
		return nil, err
	}
	if err := obs.Validate(); err != nil {
		return nil, err
	}

	base := record.BestParams()
	baseObjective := record.BestObjective()

	seed := m.cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	cfg := m.cfg.Optimizer
	cfg.Progress = progress

	start := time.Now()
	result, err := opt.Run(strategy, obs, base, baseObjective, cfg, rng)
	if err != nil {
		// Failed runs commit nothing; the record is exactly as before.
		return nil, err
	}

	if result.Improved {
		final := result.BestParams
		metrics := result.BestMetrics
		record.Final = &final
		record.FinalMetrics = &metrics
		record.UpdatedAt = time.Now().UTC()
		if err := m.attempts.Update(ctx, record); err != nil {
			return nil, err
		}
	}

	slog.Info("improve finished",
		"attempt_id", id,
		"strategy", string(strategy),
		"improved", result.Improved,
		"previous_objective", baseObjective,
		"new_objective", result.BestMetrics.Objective,
		"iterations", result.Iterations,
		"elapsed", time.Since(start),
	)

	return &Outcome{
		Improved:          result.Improved,
		Strategy:          strategy,
		Iterations:        result.Iterations,
		PreviousObjective: baseObjective,
		NewObjective:      result.BestMetrics.Objective,
		Attempt:           record,
	}, nil
}

func (m *Manager) acquire(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.busy[id] {
		return false
	}
	m.busy[id] = true
	return true
}

func (m *Manager) release(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.busy, id)
}
