package entitlement

import "context"

// Store defines the persistence contract for entitlements: a single-record
// upsert keyed by the normalized payer email.
type Store interface {
	// Get retrieves the entitlement for a payer.
	// Returns ErrNotFound if the payer has never been entitled.
	Get(ctx context.Context, payer string) (*Entitlement, error)

	// Save creates or updates the payer's entitlement record.
	// Implementations may return ErrStateConflict on a concurrent write race;
	// the service retries once.
	Save(ctx context.Context, e *Entitlement) error
}
