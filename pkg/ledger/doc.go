// Package ledger provides an append-only idempotency ledger that collapses
// duplicate payment notifications into a single effect.
//
// Payment providers deliver webhooks at-least-once: on any timeout they
// redeliver, and deliveries may arrive out of order or concurrently. The
// ledger is the single mechanism that turns those retries into exactly-once
// entitlement activation. Every notification derives an idempotency key
// (provider id plus the provider's order reference) and is recorded with
// RecordIfNew before any state change:
//
//	res, err := ledger.RecordIfNew(ctx, event.IdempotencyKey)
//	if err != nil {
//	    return err
//	}
//	if res == ledger.AlreadyProcessed {
//	    return ackDuplicate() // 2xx so the provider stops retrying
//	}
//	// Accepted: safe to activate, exactly one caller gets here
//
// RecordIfNew is an atomic check-and-insert: for any number of concurrent
// calls with the same key, exactly one observes Accepted and all others
// observe AlreadyProcessed, regardless of timing.
//
// When the state change guarded by an Accepted result fails, the caller
// compensates with Release so the provider's redelivery gets a fresh attempt
// instead of collapsing into a duplicate no-op.
//
// # Backends
//
//   - NewMemory: mutex-guarded map, for tests and single-process setups.
//   - NewRedis: SETNX on a namespaced key (github.com/redis/go-redis/v9).
//   - NewPostgres: INSERT ... ON CONFLICT DO NOTHING against a unique key
//     column (github.com/jackc/pgx/v5).
package ledger
