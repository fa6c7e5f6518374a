package ledger

import "context"

// Result reports the outcome of an atomic check-and-insert.
type Result string

const (
	// Accepted means the key was recorded now; the caller owns the single
	// allowed side effect for this payment event.
	Accepted Result = "accepted"
	// AlreadyProcessed means the key was recorded earlier; the caller must
	// acknowledge without side effects.
	AlreadyProcessed Result = "already_processed"
)

// Ledger records which payment idempotency keys have already triggered an
// activation. Implementations must make RecordIfNew atomic: concurrent calls
// with the same key yield exactly one Accepted.
type Ledger interface {
	RecordIfNew(ctx context.Context, key string) (Result, error)

	// Release removes a previously recorded key so the payment event can be
	// retried. Compensation for when the side effect guarded by an Accepted
	// result fails: without it the provider's redelivery would collapse into
	// a duplicate no-op and the effect would be lost. Releasing an absent
	// key is a no-op.
	Release(ctx context.Context, key string) error
}
