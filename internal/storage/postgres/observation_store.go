package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/brcurves/svenfit/internal/curve"
	"github.com/brcurves/svenfit/internal/storage"
)

// ObservationStore implements storage.ObservationStore using PostgreSQL.
type ObservationStore struct {
	pool *Pool
}

// NewObservationStore creates a new ObservationStore.
func NewObservationStore(pool *Pool) *ObservationStore {
	return &ObservationStore{pool: pool}
}

// Compile-time interface check.
var _ storage.ObservationStore = (*ObservationStore)(nil)

// SaveObservations replaces the observation set for a date in one
// transaction, preserving the supplied order through the position column.
func (s *ObservationStore) SaveObservations(ctx context.Context, date string, obs curve.ObservationSet) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin observations tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM observations WHERE date = $1`, date); err != nil {
		return fmt.Errorf("clear observations: %w", err)
	}

	for i, o := range obs {
		_, err := tx.Exec(ctx, `
			INSERT INTO observations (date, position, calendar_days, business_days, rate)
			VALUES ($1, $2, $3, $4, $5)
		`, date, i, o.CalendarDays, o.BusinessDays, o.Rate)
		if err != nil {
			return fmt.Errorf("insert observation %d: %w", i, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit observations: %w", err)
	}
	return nil
}

func (s *ObservationStore) Observations(ctx context.Context, date string) (curve.ObservationSet, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT calendar_days, business_days, rate
		FROM observations
		WHERE date = $1
		ORDER BY position ASC
	`, date)
	if err != nil {
		return nil, fmt.Errorf("query observations: %w", err)
	}
	defer rows.Close()

	obs := make(curve.ObservationSet, 0)
	for rows.Next() {
		var p curve.ObservationPoint
		if err := rows.Scan(&p.CalendarDays, &p.BusinessDays, &p.Rate); err != nil {
			return nil, fmt.Errorf("scan observation: %w", err)
		}
		obs = append(obs, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate observations: %w", err)
	}
	if len(obs) == 0 {
		return nil, &storage.NotFoundError{Kind: "observations", Key: date}
	}
	return obs, nil
}

func (s *ObservationStore) ListDates(ctx context.Context) ([]string, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT DISTINCT date::text FROM observations ORDER BY date::text DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("query observation dates: %w", err)
	}
	defer rows.Close()

	dates := make([]string, 0)
	for rows.Next() {
		var date string
		if err := rows.Scan(&date); err != nil {
			return nil, fmt.Errorf("scan date: %w", err)
		}
		dates = append(dates, date)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate dates: %w", err)
	}
	return dates, nil
}
