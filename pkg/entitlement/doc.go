// Package entitlement owns the premium entitlement state for each payer and
// is the only writer of that state.
//
// An entitlement holds the payer's premium flag, the purchased plan and the
// expiry instant. The invariant is:
//
//	active ⇔ IsPremium ∧ Expiry != nil ∧ Expiry > now
//
// Expiry is evaluated lazily at read time; there is no background sweeper.
// Two reads microseconds apart around the expiry instant may therefore
// disagree — that is the contract, not a race.
//
// # Transitions
//
// Service.Apply is the single mutation path. A payer with no active
// entitlement is activated with expiry = now + plan duration. A payer who is
// still active is renewed: the new expiry extends from max(now, current
// expiry), so early renewal never discards remaining paid time.
//
// Calendar-month arithmetic clamps end-of-month overflow: Jan 31 plus one
// month lands on the last day of February, never on March 3. See
// AddMonthsClamped.
//
// Mutations for the same payer are serialized by a per-payer lock, and the
// orchestration layer only calls Apply behind an Accepted idempotency ledger
// result — together these make activation exactly-once per payment event.
package entitlement
