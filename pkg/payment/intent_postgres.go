package payment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmitrymomot/paykit/pkg/plan"
)

// PostgresIntentStore persists payment intents:
//
//	CREATE TABLE payment_intents (
//	    id           UUID PRIMARY KEY,
//	    provider     TEXT NOT NULL,
//	    plan_id      TEXT NOT NULL,
//	    payer        TEXT NOT NULL,
//	    external_ref TEXT NOT NULL DEFAULT '',
//	    status       TEXT NOT NULL,
//	    created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
//	);
//	CREATE INDEX payment_intents_ref_idx ON payment_intents (provider, external_ref, created_at DESC);
type PostgresIntentStore struct {
	pool *pgxpool.Pool
}

// NewPostgresIntentStore creates a Postgres-backed intent store.
func NewPostgresIntentStore(pool *pgxpool.Pool) *PostgresIntentStore {
	if pool == nil {
		panic("payment: pgx pool is required")
	}
	return &PostgresIntentStore{pool: pool}
}

// Save records a new intent.
func (s *PostgresIntentStore) Save(ctx context.Context, intent *PaymentIntent) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO payment_intents (id, provider, plan_id, payer, external_ref, status, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		intent.ID, string(intent.ProviderID), string(intent.PlanID), intent.Payer.Email,
		intent.ExternalRef, string(intent.Status), intent.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save payment intent: %w", err)
	}
	return nil
}

// FindByRef returns the most recent unexpired intent for the reference.
func (s *PostgresIntentStore) FindByRef(ctx context.Context, provider ProviderID, externalRef string, notBefore time.Time) (*PaymentIntent, error) {
	if externalRef == "" {
		return nil, ErrIntentNotFound
	}

	var (
		intent     PaymentIntent
		providerID string
		planID     string
		payerEmail string
		status     string
		createdAt  time.Time
	)

	err := s.pool.QueryRow(ctx,
		`SELECT id, provider, plan_id, payer, external_ref, status, created_at
		 FROM payment_intents
		 WHERE provider = $1 AND external_ref = $2 AND created_at >= $3
		 ORDER BY created_at DESC
		 LIMIT 1`,
		string(provider), externalRef, notBefore,
	).Scan(&intent.ID, &providerID, &planID, &payerEmail, &intent.ExternalRef, &status, &createdAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrIntentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query payment intent: %w", err)
	}

	intent.ProviderID = ProviderID(providerID)
	intent.PlanID = plan.ID(planID)
	intent.Payer = Payer{Email: payerEmail}
	intent.Status = IntentStatus(status)
	intent.CreatedAt = createdAt
	return &intent, nil
}
