package payment

import (
	"context"
	"fmt"

	"github.com/dmitrymomot/paykit/pkg/plan"
)

// Adapter translates between the internal plan/payer model and one
// provider's wire shapes. Four implementations exist, one per provider;
// provider asymmetries (amount units, confirmation style, token flows) stay
// inside the adapter and never leak upward.
type Adapter interface {
	// ID returns the provider this adapter serves.
	ID() ProviderID

	// CreatePayment builds the provider-specific checkout/order request and
	// returns a handle for the caller. The nonce feeds the provider-side
	// idempotency token (see ClientToken), so a client retry with the same
	// nonce reuses the provider order instead of double-charging.
	//
	// Returns ErrProviderUnavailable on network or non-2xx provider
	// responses, ErrPlanNotSupported when the plan/provider combination is
	// disallowed (checked before any network call).
	CreatePayment(ctx context.Context, p plan.Plan, payer Payer, nonce string) (*ProviderHandle, error)

	// ParseNotification extracts a normalized PaymentEvent from an
	// already-verified callback payload. Returns ErrMalformedNotification if
	// required fields are absent, ErrUnsupportedEvent for event types that
	// carry no payment outcome.
	ParseNotification(rawBody []byte, headers map[string]string) (*PaymentEvent, error)
}

// Verifier authenticates a provider callback before any of its content is
// trusted. Verification always runs against the raw, unparsed body.
type Verifier interface {
	// Verify returns nil only for an authentic notification. Failure modes:
	// ErrMissingSignatureHeader, ErrInvalidSignature, ErrClockSkewExceeded.
	Verify(rawBody []byte, headers map[string]string) error
}

// Registration pairs an adapter with its callback verifier.
type Registration struct {
	Adapter  Adapter
	Verifier Verifier
}

// Registry maps provider identifiers to their registrations. Built once at
// process start; the facade is handed an already-populated registry (no
// process-wide singletons).
type Registry struct {
	providers map[ProviderID]Registration
}

// NewRegistry creates an empty provider registry.
func NewRegistry() *Registry {
	return &Registry{providers: make(map[ProviderID]Registration)}
}

// Register adds a provider. Panics on nil components or duplicate
// registration to fail fast during initialization.
func (r *Registry) Register(a Adapter, v Verifier) {
	if a == nil {
		panic("payment: adapter is required")
	}
	if v == nil {
		panic("payment: verifier is required")
	}
	if _, exists := r.providers[a.ID()]; exists {
		panic("payment: provider " + string(a.ID()) + " already registered")
	}
	r.providers[a.ID()] = Registration{Adapter: a, Verifier: v}
}

// Lookup returns the registration for a provider.
func (r *Registry) Lookup(id ProviderID) (Registration, error) {
	reg, ok := r.providers[id]
	if !ok {
		return Registration{}, fmt.Errorf("%w: %q", ErrUnknownProvider, id)
	}
	return reg, nil
}

// Providers returns the registered provider identifiers.
func (r *Registry) Providers() []ProviderID {
	ids := make([]ProviderID, 0, len(r.providers))
	for id := range r.providers {
		ids = append(ids, id)
	}
	return ids
}
