package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/brcurves/svenfit/internal/curve"
	"github.com/brcurves/svenfit/internal/storage"
)

// AttemptStore implements storage.AttemptStore using PostgreSQL.
type AttemptStore struct {
	pool *Pool
}

// NewAttemptStore creates a new AttemptStore.
func NewAttemptStore(pool *Pool) *AttemptStore {
	return &AttemptStore{pool: pool}
}

// Compile-time interface check.
var _ storage.AttemptStore = (*AttemptStore)(nil)

const attemptColumns = `
	id, date::text, initial_params, final_params,
	initial_rmse, initial_mae, initial_r2, initial_objective,
	final_rmse, final_mae, final_r2, final_objective,
	note, created_at, updated_at
`

func (s *AttemptStore) Create(ctx context.Context, record *storage.AttemptRecord) error {
	query := `
		INSERT INTO attempts (
			id, date, initial_params, final_params,
			initial_rmse, initial_mae, initial_r2, initial_objective,
			final_rmse, final_mae, final_r2, final_objective,
			note, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`

	_, err := s.pool.Exec(ctx, query, attemptArgs(record)...)
	if err != nil {
		return fmt.Errorf("insert attempt: %w", err)
	}
	return nil
}

func (s *AttemptStore) Get(ctx context.Context, id string) (*storage.AttemptRecord, error) {
	query := `SELECT ` + attemptColumns + ` FROM attempts WHERE id = $1`

	record, err := scanAttempt(s.pool.QueryRow(ctx, query, id))
	if err != nil {
		if isNotFoundError(err) {
			return nil, &storage.NotFoundError{Kind: "attempt", Key: id}
		}
		return nil, fmt.Errorf("get attempt: %w", err)
	}
	return record, nil
}

func (s *AttemptStore) Update(ctx context.Context, record *storage.AttemptRecord) error {
	query := `
		UPDATE attempts SET
			date = $2, initial_params = $3, final_params = $4,
			initial_rmse = $5, initial_mae = $6, initial_r2 = $7, initial_objective = $8,
			final_rmse = $9, final_mae = $10, final_r2 = $11, final_objective = $12,
			note = $13, created_at = $14, updated_at = $15
		WHERE id = $1
	`

	tag, err := s.pool.Exec(ctx, query, attemptArgs(record)...)
	if err != nil {
		return fmt.Errorf("update attempt: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return &storage.NotFoundError{Kind: "attempt", Key: record.ID}
	}
	return nil
}

func (s *AttemptStore) Delete(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM attempts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete attempt: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return &storage.NotFoundError{Kind: "attempt", Key: id}
	}
	return nil
}

func (s *AttemptStore) ListByDate(ctx context.Context, date string) ([]*storage.AttemptRecord, error) {
	query := `SELECT ` + attemptColumns + `
		FROM attempts
		WHERE date = $1
		ORDER BY created_at DESC, id DESC
	`

	rows, err := s.pool.Query(ctx, query, date)
	if err != nil {
		return nil, fmt.Errorf("list attempts by date: %w", err)
	}
	defer rows.Close()

	records := make([]*storage.AttemptRecord, 0)
	for rows.Next() {
		record, err := scanAttempt(rows)
		if err != nil {
			return nil, fmt.Errorf("scan attempt: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate attempts: %w", err)
	}
	return records, nil
}

func attemptArgs(record *storage.AttemptRecord) []any {
	var finalParams []float64
	if record.Final != nil {
		finalParams = record.Final.Slice()
	}

	var finalRMSE, finalMAE, finalR2, finalObjective *float64
	if record.FinalMetrics != nil {
		finalRMSE = &record.FinalMetrics.RMSE
		finalMAE = &record.FinalMetrics.MAE
		finalR2 = record.FinalMetrics.R2
		finalObjective = &record.FinalMetrics.Objective
	}

	return []any{
		record.ID,
		record.Date,
		record.Initial.Slice(),
		finalParams,
		record.InitialMetrics.RMSE,
		record.InitialMetrics.MAE,
		record.InitialMetrics.R2,
		record.InitialMetrics.Objective,
		finalRMSE,
		finalMAE,
		finalR2,
		finalObjective,
		record.Note,
		record.CreatedAt,
		record.UpdatedAt,
	}
}

func scanAttempt(row pgx.Row) (*storage.AttemptRecord, error) {
	var (
		record                                 storage.AttemptRecord
		initialParams, finalParams             []float64
		finalRMSE, finalMAE, finalR2, finalObj *float64
	)

	err := row.Scan(
		&record.ID,
		&record.Date,
		&initialParams,
		&finalParams,
		&record.InitialMetrics.RMSE,
		&record.InitialMetrics.MAE,
		&record.InitialMetrics.R2,
		&record.InitialMetrics.Objective,
		&finalRMSE,
		&finalMAE,
		&finalR2,
		&finalObj,
		&record.Note,
		&record.CreatedAt,
		&record.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	record.Initial = curve.FromSlice(initialParams)
	if finalParams != nil {
		final := curve.FromSlice(finalParams)
		record.Final = &final
	}
	if finalObj != nil {
		record.FinalMetrics = &curve.FitMetrics{
			RMSE:      *finalRMSE,
			MAE:       *finalMAE,
			R2:        finalR2,
			Objective: *finalObj,
		}
	}
	return &record, nil
}
