package payment

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/paykit/pkg/plan"
)

// IntentStatus tracks a payment intent's progress toward confirmation.
type IntentStatus string

const (
	// IntentPending: created, provider has not yet assigned an order ref.
	IntentPending IntentStatus = "pending"
	// IntentAwaitingNotification: provider order exists, waiting for the
	// asynchronous completion callback.
	IntentAwaitingNotification IntentStatus = "awaiting_notification"
)

// PaymentIntent records a payment that was initiated but not yet confirmed.
// It carries the trustworthy payer/plan binding used to resolve a
// notification; payload hints are only a fallback. Intents expire after a
// TTL — an expired intent is garbage and must never resolve a notification.
type PaymentIntent struct {
	ID          uuid.UUID
	ProviderID  ProviderID
	PlanID      plan.ID
	Payer       Payer
	ExternalRef string // Provider's order/session id, set once assigned
	Status      IntentStatus
	CreatedAt   time.Time
}

// IntentStore persists pending payment intents for notification correlation.
type IntentStore interface {
	// Save records a new intent.
	Save(ctx context.Context, intent *PaymentIntent) error

	// FindByRef returns the most recent intent for (provider, externalRef)
	// created at or after notBefore. Older intents are expired and must not
	// be returned. Returns ErrIntentNotFound when nothing matches.
	FindByRef(ctx context.Context, provider ProviderID, externalRef string, notBefore time.Time) (*PaymentIntent, error)
}

// MemoryIntentStore is an in-process IntentStore backed by a mutex-guarded
// map keyed by provider and external reference.
type MemoryIntentStore struct {
	mu      sync.RWMutex
	intents map[string]PaymentIntent
}

// NewMemoryIntentStore creates an empty in-memory intent store.
func NewMemoryIntentStore() *MemoryIntentStore {
	return &MemoryIntentStore{intents: make(map[string]PaymentIntent)}
}

// Save records the intent. Intents without an external reference are kept
// under their own id; they cannot be correlated but remain inspectable.
func (s *MemoryIntentStore) Save(_ context.Context, intent *PaymentIntent) error {
	key := string(intent.ProviderID) + ":" + intent.ExternalRef
	if intent.ExternalRef == "" {
		key = string(intent.ProviderID) + ":id:" + intent.ID.String()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.intents[key] = *intent
	return nil
}

// FindByRef returns the unexpired intent for (provider, externalRef).
func (s *MemoryIntentStore) FindByRef(_ context.Context, provider ProviderID, externalRef string, notBefore time.Time) (*PaymentIntent, error) {
	if externalRef == "" {
		return nil, ErrIntentNotFound
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	intent, ok := s.intents[string(provider)+":"+externalRef]
	if !ok || intent.CreatedAt.Before(notBefore) {
		return nil, ErrIntentNotFound
	}
	return &intent, nil
}
