package entitlement

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmitrymomot/paykit/pkg/plan"
)

// PostgresStore persists entitlements in a single-record-per-payer table:
//
//	CREATE TABLE entitlements (
//	    payer      TEXT PRIMARY KEY,
//	    is_premium BOOLEAN NOT NULL DEFAULT FALSE,
//	    plan_id    TEXT,
//	    expiry     TIMESTAMPTZ,
//	    updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
//	);
//
// Save is a plain upsert; last write wins. Write races between activate and
// renew for the same payer are prevented above this layer by the service's
// per-payer lock, so no version column is needed.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a Postgres-backed entitlement store.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	if pool == nil {
		panic("entitlement: pgx pool is required")
	}
	return &PostgresStore{pool: pool}
}

// Get retrieves the entitlement for a payer.
func (s *PostgresStore) Get(ctx context.Context, payer string) (*Entitlement, error) {
	var e Entitlement
	var planID *string

	err := s.pool.QueryRow(ctx,
		`SELECT payer, is_premium, plan_id, expiry, updated_at FROM entitlements WHERE payer = $1`,
		payer,
	).Scan(&e.Payer, &e.IsPremium, &planID, &e.Expiry, &e.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Join(ErrStorageFailed, err)
	}

	if planID != nil {
		e.PlanID = plan.ID(*planID)
	}
	return &e, nil
}

// Save upserts the payer's entitlement record.
func (s *PostgresStore) Save(ctx context.Context, e *Entitlement) error {
	if e == nil || e.Payer == "" {
		return ErrInvalidPayer
	}

	_, err := s.pool.Exec(ctx,
		`INSERT INTO entitlements (payer, is_premium, plan_id, expiry, updated_at)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (payer) DO UPDATE
		 SET is_premium = EXCLUDED.is_premium,
		     plan_id    = EXCLUDED.plan_id,
		     expiry     = EXCLUDED.expiry,
		     updated_at = EXCLUDED.updated_at`,
		e.Payer, e.IsPremium, string(e.PlanID), e.Expiry, e.UpdatedAt,
	)
	if err != nil {
		return errors.Join(ErrStorageFailed, err)
	}
	return nil
}
