package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	stripe "github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/client"
	"github.com/stripe/stripe-go/v74/webhook"

	"github.com/dmitrymomot/paykit/pkg/plan"
)

// StripeConfig holds configuration for the card-network provider.
type StripeConfig struct {
	SecretKey     string        `env:"STRIPE_SECRET_KEY,required"`
	WebhookSecret string        `env:"STRIPE_WEBHOOK_SECRET,required"`
	SuccessURL    string        `env:"STRIPE_SUCCESS_URL,required"`
	CancelURL     string        `env:"STRIPE_CANCEL_URL,required"`
	APIURL        string        `env:"STRIPE_API_URL"` // Override for tests/mock servers
	Tolerance     time.Duration `env:"STRIPE_WEBHOOK_TOLERANCE" envDefault:"5m"`
}

// StripeAdapter implements Adapter for the card network. Confirmation is
// session based: the payer is redirected to a hosted checkout page and
// completion is known at the checkout.session.completed webhook.
type StripeAdapter struct {
	api *client.API
	cfg StripeConfig
}

// NewStripeAdapter creates the card-network adapter.
func NewStripeAdapter(cfg StripeConfig) (*StripeAdapter, error) {
	if cfg.SecretKey == "" {
		return nil, errors.New("stripe secret key is required")
	}
	if cfg.SuccessURL == "" || cfg.CancelURL == "" {
		return nil, errors.New("stripe success and cancel URLs are required")
	}

	var backends *stripe.Backends
	if cfg.APIURL != "" {
		b := stripe.GetBackendWithConfig(stripe.APIBackend, &stripe.BackendConfig{
			URL: stripe.String(cfg.APIURL),
		})
		backends = &stripe.Backends{API: b, Connect: b, Uploads: b}
	}

	return &StripeAdapter{api: client.New(cfg.SecretKey, backends), cfg: cfg}, nil
}

func (a *StripeAdapter) ID() ProviderID { return ProviderCardNetwork }

// CreatePayment creates a hosted checkout session. Amount stays in minor
// units — the card network's native unit. The SDK-level idempotency key is
// derived from (payer, plan, nonce), so a client retry after a timeout
// resumes the same session instead of opening a second one.
func (a *StripeAdapter) CreatePayment(ctx context.Context, p plan.Plan, payer Payer, nonce string) (*ProviderHandle, error) {
	params := &stripe.CheckoutSessionParams{
		Mode:          stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:    stripe.String(a.cfg.SuccessURL),
		CancelURL:     stripe.String(a.cfg.CancelURL),
		CustomerEmail: stripe.String(payer.Email),
		LineItems: []*stripe.CheckoutSessionLineItemParams{{
			Quantity: stripe.Int64(1),
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripe.String(strings.ToLower(p.Price.Currency)),
				UnitAmount: stripe.Int64(p.Price.Amount),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(p.Name),
				},
			},
		}},
	}
	params.Context = ctx
	params.SetIdempotencyKey(ClientToken(payer, p.ID, nonce))
	params.AddMetadata("plan", string(p.ID))
	params.AddMetadata("payer", payer.Email)

	sess, err := a.api.CheckoutSessions.New(params)
	if err != nil {
		return nil, errors.Join(ErrProviderUnavailable, err)
	}

	return &ProviderHandle{
		RedirectURL: sess.URL,
		SessionID:   sess.ID,
		ExternalRef: sess.ID,
	}, nil
}

// ParseNotification normalizes a verified card-network webhook event.
func (a *StripeAdapter) ParseNotification(rawBody []byte, _ map[string]string) (*PaymentEvent, error) {
	var evt struct {
		ID   string `json:"id"`
		Type string `json:"type"`
		Data struct {
			Object struct {
				ID            string            `json:"id"`
				Metadata      map[string]string `json:"metadata"`
				CustomerEmail string            `json:"customer_email"`
			} `json:"object"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rawBody, &evt); err != nil {
		return nil, errors.Join(ErrMalformedNotification, err)
	}

	var outcome Outcome
	switch evt.Type {
	case "checkout.session.completed", "checkout.session.async_payment_succeeded":
		outcome = OutcomeCompleted
	case "checkout.session.expired", "checkout.session.async_payment_failed":
		outcome = OutcomeFailed
	case "":
		return nil, fmt.Errorf("%w: missing event type", ErrMalformedNotification)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedEvent, evt.Type)
	}

	session := evt.Data.Object
	if session.ID == "" {
		return nil, fmt.Errorf("%w: missing session id", ErrMalformedNotification)
	}

	payerHint := session.Metadata["payer"]
	if payerHint == "" {
		payerHint = session.CustomerEmail
	}

	return &PaymentEvent{
		ProviderID:     ProviderCardNetwork,
		ExternalRef:    session.ID,
		Outcome:        outcome,
		PayerHint:      payerHint,
		PlanHint:       plan.ID(session.Metadata["plan"]),
		IdempotencyKey: EventKey(ProviderCardNetwork, session.ID),
	}, nil
}

// StripeVerifier authenticates card-network webhooks with the SDK's
// signature check: HMAC over the exact raw bytes, bound to a timestamp.
type StripeVerifier struct {
	secret    string
	tolerance time.Duration
}

// NewStripeVerifier creates the card-network webhook verifier.
func NewStripeVerifier(cfg StripeConfig) (*StripeVerifier, error) {
	if cfg.WebhookSecret == "" {
		return nil, errors.New("stripe webhook secret is required")
	}
	tolerance := cfg.Tolerance
	if tolerance <= 0 {
		tolerance = 5 * time.Minute
	}
	return &StripeVerifier{secret: cfg.WebhookSecret, tolerance: tolerance}, nil
}

// Verify checks the Stripe-Signature header against the raw body.
func (v *StripeVerifier) Verify(rawBody []byte, headers map[string]string) error {
	sig := headerValue(headers, "Stripe-Signature")
	if sig == "" {
		return ErrMissingSignatureHeader
	}

	_, err := webhook.ConstructEventWithTolerance(rawBody, sig, v.secret, v.tolerance)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, webhook.ErrTooOld):
		return errors.Join(ErrClockSkewExceeded, err)
	case errors.Is(err, webhook.ErrNotSigned), errors.Is(err, webhook.ErrInvalidHeader):
		return errors.Join(ErrMissingSignatureHeader, err)
	default:
		return errors.Join(ErrInvalidSignature, err)
	}
}
