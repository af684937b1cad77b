// Package storage defines the persistence boundary for attempts and market
// observations. Implementations must be safe for concurrent use and atomic
// per attempt id; the core never assumes a specific storage technology.
package storage

import (
	"context"
	"time"

	"github.com/brcurves/svenfit/internal/curve"
)

// AttemptRecord is the persisted unit of work: one estimation attempt for one
// trade date. Final parameters and metrics are nil until an improve run
// commits a strictly better fit.
type AttemptRecord struct {
	ID   string `json:"id"`
	Date string `json:"date"` // trade date, ISO form YYYY-MM-DD

	Initial        curve.ParameterVector  `json:"initial"`
	Final          *curve.ParameterVector `json:"final,omitempty"`
	InitialMetrics curve.FitMetrics       `json:"initialMetrics"`
	FinalMetrics   *curve.FitMetrics      `json:"finalMetrics,omitempty"`

	Note      string    `json:"note,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// BestParams returns the attempt's current best parameter vector: final when
// present, otherwise initial.
func (a *AttemptRecord) BestParams() curve.ParameterVector {
	if a.Final != nil {
		return *a.Final
	}
	return a.Initial
}

// BestObjective returns the objective value matching BestParams.
func (a *AttemptRecord) BestObjective() float64 {
	if a.FinalMetrics != nil {
		return a.FinalMetrics.Objective
	}
	return a.InitialMetrics.Objective
}

// AttemptStore persists attempt records.
//
// Error conventions:
//   - nil on success
//   - ErrNotFound (via errors.Is) when the id does not exist
//   - wrapped errors with context for I/O or serialization failures
type AttemptStore interface {
	// Create persists a new record. The record's ID must already be set.
	Create(ctx context.Context, record *AttemptRecord) error

	// Get returns the record for the given id.
	Get(ctx context.Context, id string) (*AttemptRecord, error)

	// Update overwrites the stored record for record.ID.
	Update(ctx context.Context, record *AttemptRecord) error

	// Delete removes the record entirely. No soft delete, no dependents.
	Delete(ctx context.Context, id string) error

	// ListByDate returns all attempts for a trade date, newest first.
	ListByDate(ctx context.Context, date string) ([]*AttemptRecord, error)
}

// ObservationStore supplies the market observations for a trade date.
// Observation sets are read-only to the core.
type ObservationStore interface {
	// SaveObservations replaces the observation set stored for a date.
	SaveObservations(ctx context.Context, date string, obs curve.ObservationSet) error

	// Observations returns the observation set for a date, in stored order.
	Observations(ctx context.Context, date string) (curve.ObservationSet, error)

	// ListDates returns every date with observations, newest first.
	ListDates(ctx context.Context) ([]string, error)
}
