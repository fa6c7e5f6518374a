package entitlement

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrymomot/paykit/pkg/plan"
)

// Clock returns the current instant. A test seam; defaults to UTC now.
type Clock func() time.Time

// Service is the only writer of entitlement state. It applies the
// activate/renew transition and serializes mutations per payer, so a
// concurrent activate and renew for the same payer cannot lose an update.
//
// Callers must hold an Accepted idempotency ledger result before calling
// Apply; the service itself does not deduplicate.
type Service struct {
	store Store
	now   Clock

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// ServiceOption configures a Service instance.
type ServiceOption func(*Service)

// WithClock replaces the time source. Intended for tests.
func WithClock(clock Clock) ServiceOption {
	return func(s *Service) {
		if clock != nil {
			s.now = clock
		}
	}
}

// NewService creates an entitlement service over the given store.
// Panics on a nil store to fail fast during initialization.
func NewService(store Store, opts ...ServiceOption) *Service {
	if store == nil {
		panic("entitlement: Store is required")
	}

	s := &Service{
		store: store,
		now:   func() time.Time { return time.Now().UTC() },
		locks: make(map[string]*sync.Mutex),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Apply activates or renews the payer's entitlement for the given plan.
//
// A payer with no active entitlement gets expiry = now + plan duration.
// A payer who is still active is extended from max(now, current expiry),
// so renewing early never discards remaining paid time. Month arithmetic
// clamps end-of-month overflow (see AddMonthsClamped).
//
// A store write conflict is retried once against freshly read state before
// being surfaced as ErrStateConflict.
func (s *Service) Apply(ctx context.Context, payer string, p plan.Plan) (*Entitlement, error) {
	if payer == "" {
		return nil, ErrInvalidPayer
	}

	lock := s.payerLock(payer)
	lock.Lock()
	defer lock.Unlock()

	e, err := s.apply(ctx, payer, p)
	if errors.Is(err, ErrStateConflict) {
		e, err = s.apply(ctx, payer, p)
	}
	if err != nil {
		return nil, err
	}
	return e, nil
}

func (s *Service) apply(ctx context.Context, payer string, p plan.Plan) (*Entitlement, error) {
	now := s.now()

	current, err := s.store.Get(ctx, payer)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("failed to read entitlement for %s: %w", payer, err)
	}

	// Renewal extends from the later of now and the current expiry.
	base := now
	if current.IsActiveAt(now) && current.Expiry.After(base) {
		base = *current.Expiry
	}
	expiry := AddMonthsClamped(base, p.DurationMonths)

	next := &Entitlement{
		Payer:     payer,
		IsPremium: true,
		PlanID:    p.ID,
		Expiry:    &expiry,
		UpdatedAt: now,
	}

	if err := s.store.Save(ctx, next); err != nil {
		if errors.Is(err, ErrStateConflict) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to save entitlement for %s: %w", payer, err)
	}
	return next, nil
}

// Get returns the payer's entitlement record, or ErrNotFound.
// Activity must be checked by the caller via IsActiveAt; records are never
// mutated on read.
func (s *Service) Get(ctx context.Context, payer string) (*Entitlement, error) {
	if payer == "" {
		return nil, ErrInvalidPayer
	}
	return s.store.Get(ctx, payer)
}

// IsActive reports whether the payer holds an unexpired premium entitlement.
// Missing records read as inactive, storage errors fail closed.
func (s *Service) IsActive(ctx context.Context, payer string) bool {
	e, err := s.store.Get(ctx, payer)
	if err != nil {
		return false
	}
	return e.IsActiveAt(s.now())
}

// payerLock returns the mutex serializing mutations for one payer.
func (s *Service) payerLock(payer string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.locks[payer]
	if !ok {
		l = &sync.Mutex{}
		s.locks[payer] = l
	}
	return l
}
