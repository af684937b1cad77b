package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Pool wraps pgxpool.Pool for dependency injection.
type Pool struct {
	*pgxpool.Pool
}

// NewPool creates a Postgres connection pool and bootstraps the schema.
func NewPool(ctx context.Context, dsn string) (*Pool, error) {
	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	p := &Pool{Pool: pool}
	if err := p.migrate(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("bootstrap schema: %w", err)
	}
	return p, nil
}

// Close closes the connection pool.
func (p *Pool) Close() {
	p.Pool.Close()
}

const schema = `
CREATE TABLE IF NOT EXISTS observations (
	date          DATE             NOT NULL,
	position      INTEGER          NOT NULL,
	calendar_days INTEGER          NOT NULL,
	business_days INTEGER          NOT NULL,
	rate          DOUBLE PRECISION NOT NULL,
	PRIMARY KEY (date, position)
);

CREATE TABLE IF NOT EXISTS attempts (
	id                UUID             PRIMARY KEY,
	date              DATE             NOT NULL,
	initial_params    DOUBLE PRECISION[6] NOT NULL,
	final_params      DOUBLE PRECISION[6],
	initial_rmse      DOUBLE PRECISION NOT NULL,
	initial_mae       DOUBLE PRECISION NOT NULL,
	initial_r2        DOUBLE PRECISION,
	initial_objective DOUBLE PRECISION NOT NULL,
	final_rmse        DOUBLE PRECISION,
	final_mae         DOUBLE PRECISION,
	final_r2          DOUBLE PRECISION,
	final_objective   DOUBLE PRECISION,
	note              TEXT             NOT NULL DEFAULT '',
	created_at        TIMESTAMPTZ      NOT NULL,
	updated_at        TIMESTAMPTZ      NOT NULL
);

CREATE INDEX IF NOT EXISTS attempts_date_created_idx
	ON attempts (date, created_at DESC);
`

func (p *Pool) migrate(ctx context.Context) error {
	_, err := p.Exec(ctx, schema)
	return err
}

// isNotFoundError checks if error indicates no rows found.
func isNotFoundError(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
