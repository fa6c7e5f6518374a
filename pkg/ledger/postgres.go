package ledger

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Postgres is a Ledger backed by a unique-constrained table:
//
//	CREATE TABLE payment_ledger (
//	    idempotency_key TEXT PRIMARY KEY,
//	    processed_at    TIMESTAMPTZ NOT NULL DEFAULT now()
//	);
//
// The primary key constraint makes the insert the atomic check: a conflicting
// insert affects zero rows and reports AlreadyProcessed.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres creates a Postgres-backed ledger using the given pool.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	if pool == nil {
		panic("ledger: pgx pool is required")
	}
	return &Postgres{pool: pool}
}

// RecordIfNew atomically records the key via INSERT ... ON CONFLICT DO NOTHING.
func (p *Postgres) RecordIfNew(ctx context.Context, key string) (Result, error) {
	if key == "" {
		return "", ErrEmptyKey
	}

	tag, err := p.pool.Exec(ctx,
		`INSERT INTO payment_ledger (idempotency_key) VALUES ($1) ON CONFLICT (idempotency_key) DO NOTHING`,
		key,
	)
	if err != nil {
		return "", errors.Join(ErrStorageFailed, err)
	}
	if tag.RowsAffected() == 0 {
		return AlreadyProcessed, nil
	}
	return Accepted, nil
}

// Release removes the key so the payment event can be retried.
func (p *Postgres) Release(ctx context.Context, key string) error {
	if key == "" {
		return ErrEmptyKey
	}

	_, err := p.pool.Exec(ctx,
		`DELETE FROM payment_ledger WHERE idempotency_key = $1`,
		key,
	)
	if err != nil {
		return errors.Join(ErrStorageFailed, err)
	}
	return nil
}
