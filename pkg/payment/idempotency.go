package payment

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/dmitrymomot/paykit/pkg/plan"
)

// ClientToken derives the provider-side idempotency token for payment
// creation. It is bound to (payer, plan, nonce): a client that retries after
// a timeout sends the same nonce, gets the same token, and reuses the same
// provider-side order instead of creating a second charge.
func ClientToken(payer Payer, planID plan.ID, nonce string) string {
	sum := sha256.Sum256([]byte(payer.Email + "|" + string(planID) + "|" + nonce))
	return hex.EncodeToString(sum[:])
}

// EventKey builds the ledger idempotency key for a provider order reference.
func EventKey(provider ProviderID, externalRef string) string {
	return string(provider) + ":" + externalRef
}

// ContentHashKey is the documented fallback for providers whose callbacks
// carry no stable order id: the key is a hash of the exact callback bytes.
// Redeliveries of the same notification hash identically; a genuinely new
// payment produces a different payload and a different key.
func ContentHashKey(provider ProviderID, rawBody []byte) string {
	sum := sha256.Sum256(rawBody)
	return string(provider) + ":sha256:" + hex.EncodeToString(sum[:])
}
