package payment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/paykit/pkg/entitlement"
	"github.com/dmitrymomot/paykit/pkg/ledger"
	"github.com/dmitrymomot/paykit/pkg/logger"
	"github.com/dmitrymomot/paykit/pkg/plan"
)

// Ack reports how a notification was handled. Every non-error Ack means the
// provider should receive a 2xx and stop retrying.
type Ack struct {
	Accepted  bool // Entitlement transition applied now
	Duplicate bool // Payment event seen before; success no-op
	Ignored   bool // Authentic but carries no completed payment
}

// Service is the orchestration facade the HTTP layer invokes. It composes
// the plan catalog, provider registry, idempotency ledger, entitlement state
// machine and intent store; all collaborators are injected at construction.
type Service struct {
	catalog      *plan.Catalog
	registry     *Registry
	ledger       ledger.Ledger
	entitlements *entitlement.Service
	intents      IntentStore

	log       *slog.Logger
	now       func() time.Time
	intentTTL time.Duration
}

// NewService creates the payment orchestration facade.
// Panics on nil collaborators to fail fast during initialization.
func NewService(catalog *plan.Catalog, registry *Registry, led ledger.Ledger, ent *entitlement.Service, intents IntentStore, opts ...Option) *Service {
	if catalog == nil {
		panic("payment: plan catalog is required")
	}
	if registry == nil {
		panic("payment: provider registry is required")
	}
	if led == nil {
		panic("payment: idempotency ledger is required")
	}
	if ent == nil {
		panic("payment: entitlement service is required")
	}
	if intents == nil {
		panic("payment: intent store is required")
	}

	s := &Service{
		catalog:      catalog,
		registry:     registry,
		ledger:       led,
		entitlements: ent,
		intents:      intents,
		log:          slog.Default(),
		now:          func() time.Time { return time.Now().UTC() },
		intentTTL:    24 * time.Hour,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreatePayment resolves the plan, delegates to the selected provider
// adapter and records a pending intent for later notification correlation.
//
// Validation failures (ErrUnknownPlan, ErrUnknownProvider, ErrInvalidPayer)
// reject the request before any network call; adapter failures
// (ErrProviderUnavailable, ErrPlanNotSupported) propagate unchanged and
// leave no intent behind.
func (s *Service) CreatePayment(ctx context.Context, planID plan.ID, payerEmail string, providerID ProviderID, opts ...CreateOption) (*ProviderHandle, error) {
	p, err := s.catalog.Resolve(planID)
	if err != nil {
		return nil, err
	}

	payer, err := NewPayer(payerEmail)
	if err != nil {
		return nil, err
	}

	reg, err := s.registry.Lookup(providerID)
	if err != nil {
		return nil, err
	}

	var co createOptions
	for _, opt := range opts {
		opt(&co)
	}
	nonce := co.nonce
	if nonce == "" {
		nonce = uuid.NewString()
	}

	handle, err := reg.Adapter.CreatePayment(ctx, p, payer, nonce)
	if err != nil {
		return nil, err
	}

	intent := &PaymentIntent{
		ID:          uuid.New(),
		ProviderID:  providerID,
		PlanID:      p.ID,
		Payer:       payer,
		ExternalRef: handle.ExternalRef,
		Status:      IntentPending,
		CreatedAt:   s.now(),
	}
	if handle.ExternalRef != "" {
		intent.Status = IntentAwaitingNotification
	}

	if err := s.intents.Save(ctx, intent); err != nil {
		// The provider order exists; a client retry with the same nonce
		// reuses it, so surfacing the error cannot double-charge.
		s.log.ErrorContext(ctx, "failed to record payment intent",
			logger.Provider(string(providerID)),
			logger.ExternalRef(handle.ExternalRef),
			logger.Error(err))
		return nil, fmt.Errorf("failed to record payment intent: %w", err)
	}

	s.log.InfoContext(ctx, "payment created",
		logger.Provider(string(providerID)),
		logger.Plan(string(p.ID)),
		logger.ExternalRef(handle.ExternalRef))

	return handle, nil
}

// HandleNotification runs the notification pipeline: verify the raw body,
// parse, resolve the payer and plan, dedupe through the ledger and apply the
// entitlement transition.
//
// Any verification or parsing failure returns an error with no side effects;
// such notifications must never be acknowledged as success. A duplicate
// delivery returns Ack{Duplicate: true} with no side effects — providers
// expect a 2xx to stop retrying even for duplicates.
func (s *Service) HandleNotification(ctx context.Context, providerID ProviderID, rawBody []byte, headers map[string]string) (*Ack, error) {
	reg, err := s.registry.Lookup(providerID)
	if err != nil {
		return nil, err
	}

	if err := reg.Verifier.Verify(rawBody, headers); err != nil {
		s.log.WarnContext(ctx, "notification failed verification, potential spoofing attempt",
			logger.Provider(string(providerID)),
			logger.Error(err))
		return nil, err
	}

	event, err := reg.Adapter.ParseNotification(rawBody, headers)
	if err != nil {
		if errors.Is(err, ErrUnsupportedEvent) {
			// Authentic but irrelevant; ack so the provider stops sending it.
			return &Ack{Ignored: true}, nil
		}
		return nil, err
	}

	if event.Outcome == OutcomeFailed {
		s.log.InfoContext(ctx, "payment failed at provider",
			logger.Provider(string(providerID)),
			logger.ExternalRef(event.ExternalRef))
		return &Ack{Ignored: true}, nil
	}

	// Resolve before touching the ledger: a notification that cannot be
	// correlated must not consume its idempotency key, or the provider's
	// retry would dedupe into a no-op and the activation would be lost.
	payer, p, err := s.resolve(ctx, event)
	if err != nil {
		return nil, err
	}

	res, err := s.ledger.RecordIfNew(ctx, event.IdempotencyKey)
	if err != nil {
		return nil, err
	}
	if res == ledger.AlreadyProcessed {
		s.log.InfoContext(ctx, "duplicate notification collapsed",
			logger.Provider(string(providerID)),
			logger.IdempotencyKey(event.IdempotencyKey))
		return &Ack{Duplicate: true}, nil
	}

	if _, err := s.entitlements.Apply(ctx, payer.Email, p); err != nil {
		// Give the key back so the provider's redelivery retries the
		// activation instead of collapsing into a duplicate no-op.
		if relErr := s.ledger.Release(ctx, event.IdempotencyKey); relErr != nil {
			s.log.ErrorContext(ctx, "failed to release idempotency key after activation failure",
				logger.Provider(string(providerID)),
				logger.IdempotencyKey(event.IdempotencyKey),
				logger.Error(relErr))
		}
		return nil, fmt.Errorf("failed to apply entitlement for %s: %w", payer.Email, err)
	}

	s.log.InfoContext(ctx, "entitlement activated",
		logger.Provider(string(providerID)),
		logger.Plan(string(p.ID)),
		logger.ExternalRef(event.ExternalRef))

	return &Ack{Accepted: true}, nil
}

// resolve determines the payer and plan for a completed payment event,
// preferring the correlated pending intent over payload hints. The hint-only
// path is less trustworthy and is flagged in logs; a notification that
// resolves neither way is rejected rather than activated with a guessed
// plan.
func (s *Service) resolve(ctx context.Context, event *PaymentEvent) (Payer, plan.Plan, error) {
	notBefore := s.now().Add(-s.intentTTL)

	intent, err := s.intents.FindByRef(ctx, event.ProviderID, event.ExternalRef, notBefore)
	if err == nil {
		p, err := s.catalog.Resolve(intent.PlanID)
		if err != nil {
			return Payer{}, plan.Plan{}, err
		}
		return intent.Payer, p, nil
	}
	if !errors.Is(err, ErrIntentNotFound) {
		return Payer{}, plan.Plan{}, err
	}

	// No pending intent (expired, lost, or a provider that omits the order
	// ref). Fall back to the hints carried in the provider payload.
	payer, perr := NewPayer(event.PayerHint)
	if perr != nil || event.PlanHint == "" {
		return Payer{}, plan.Plan{}, fmt.Errorf("%w: no pending intent for %s and payload hints are incomplete",
			ErrUnresolvedNotification, event.IdempotencyKey)
	}
	p, err := s.catalog.Resolve(event.PlanHint)
	if err != nil {
		return Payer{}, plan.Plan{}, fmt.Errorf("%w: %w", ErrUnresolvedNotification, err)
	}

	s.log.WarnContext(ctx, "notification resolved from payload hints, no correlated intent",
		logger.Provider(string(event.ProviderID)),
		logger.ExternalRef(event.ExternalRef),
		logger.Plan(string(p.ID)))

	return payer, p, nil
}

// GetEntitlement returns the payer's entitlement view with expiry evaluated
// lazily: a record past its expiry reads as not premium. Payers with no
// record at all get an empty inactive view.
func (s *Service) GetEntitlement(ctx context.Context, payerEmail string) (*entitlement.Entitlement, error) {
	payer, err := NewPayer(payerEmail)
	if err != nil {
		return nil, err
	}

	e, err := s.entitlements.Get(ctx, payer.Email)
	if errors.Is(err, entitlement.ErrNotFound) {
		return &entitlement.Entitlement{Payer: payer.Email}, nil
	}
	if err != nil {
		return nil, err
	}

	view := *e
	view.IsPremium = e.IsActiveAt(s.now())
	return &view, nil
}
