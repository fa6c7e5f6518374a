package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/dmitrymomot/paykit/pkg/plan"
)

// VoucherConfig holds configuration for the prepaid-voucher provider.
type VoucherConfig struct {
	APIKey        string        `env:"VOUCHER_API_KEY,required"`
	WebhookSecret string        `env:"VOUCHER_WEBHOOK_SECRET,required"`
	BaseURL       string        `env:"VOUCHER_API_URL,required"`
	ReturnURL     string        `env:"VOUCHER_RETURN_URL,required"`
	Timeout       time.Duration `env:"VOUCHER_TIMEOUT" envDefault:"10s"`
	MaxSkew       time.Duration `env:"VOUCHER_WEBHOOK_MAX_SKEW" envDefault:"5m"`
}

// VoucherAdapter implements Adapter for the prepaid-voucher provider.
// Confirmation is callback based: the payer redeems a voucher out of band
// and completion is known only via the server-to-server notification.
type VoucherAdapter struct {
	http *resty.Client
	cfg  VoucherConfig
}

// NewVoucherAdapter creates the prepaid-voucher adapter.
func NewVoucherAdapter(cfg VoucherConfig) (*VoucherAdapter, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("voucher API key is required")
	}
	if cfg.BaseURL == "" {
		return nil, errors.New("voucher API base URL is required")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	httpClient := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(timeout).
		SetHeader("X-Api-Key", cfg.APIKey)

	return &VoucherAdapter{http: httpClient, cfg: cfg}, nil
}

func (a *VoucherAdapter) ID() ProviderID { return ProviderPrepaidVoucher }

type voucherOrderRequest struct {
	Amount    int64  `json:"amount"` // Minor units, the provider's native unit
	Currency  string `json:"currency"`
	Plan      string `json:"plan"`
	Email     string `json:"email"`
	ReturnURL string `json:"return_url"`
}

type voucherOrderResponse struct {
	OrderID    string `json:"order_id"`
	PaymentURL string `json:"payment_url"`
}

// CreatePayment creates a voucher order. The X-Idempotency-Key header makes
// client retries reuse the provider-side order.
func (a *VoucherAdapter) CreatePayment(ctx context.Context, p plan.Plan, payer Payer, nonce string) (*ProviderHandle, error) {
	var order voucherOrderResponse
	resp, err := a.http.R().
		SetContext(ctx).
		SetHeader("X-Idempotency-Key", ClientToken(payer, p.ID, nonce)).
		SetBody(voucherOrderRequest{
			Amount:    p.Price.Amount,
			Currency:  p.Price.Currency,
			Plan:      string(p.ID),
			Email:     payer.Email,
			ReturnURL: a.cfg.ReturnURL,
		}).
		SetResult(&order).
		Post("/orders")
	if err != nil {
		return nil, errors.Join(ErrProviderUnavailable, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("%w: voucher order creation returned %s", ErrProviderUnavailable, resp.Status())
	}
	if order.OrderID == "" {
		return nil, fmt.Errorf("%w: voucher order response missing order_id", ErrProviderUnavailable)
	}

	return &ProviderHandle{
		RedirectURL: order.PaymentURL,
		SessionID:   order.OrderID,
		ExternalRef: order.OrderID,
	}, nil
}

// ParseNotification normalizes a verified voucher callback.
//
// Older voucher gateway versions omit order_id from the callback. For those
// the idempotency key falls back to a hash of the exact callback bytes
// (ContentHashKey): redeliveries collapse, distinct redemptions do not.
// The fallback event carries no external reference, so resolution relies on
// the email and plan fields in the payload.
func (a *VoucherAdapter) ParseNotification(rawBody []byte, _ map[string]string) (*PaymentEvent, error) {
	var note struct {
		OrderID string `json:"order_id"`
		Status  string `json:"status"`
		Email   string `json:"email"`
		Plan    string `json:"plan"`
	}
	if err := json.Unmarshal(rawBody, &note); err != nil {
		return nil, errors.Join(ErrMalformedNotification, err)
	}

	var outcome Outcome
	switch note.Status {
	case "PAID":
		outcome = OutcomeCompleted
	case "FAILED", "EXPIRED":
		outcome = OutcomeFailed
	default:
		return nil, fmt.Errorf("%w: unexpected voucher status %q", ErrMalformedNotification, note.Status)
	}

	key := EventKey(ProviderPrepaidVoucher, note.OrderID)
	if note.OrderID == "" {
		key = ContentHashKey(ProviderPrepaidVoucher, rawBody)
	}

	return &PaymentEvent{
		ProviderID:     ProviderPrepaidVoucher,
		ExternalRef:    note.OrderID,
		Outcome:        outcome,
		PayerHint:      note.Email,
		PlanHint:       plan.ID(note.Plan),
		IdempotencyKey: key,
	}, nil
}

// VoucherVerifier authenticates voucher callbacks with an HMAC-SHA256
// signature over the raw body, timestamp bound (see SignBody).
type VoucherVerifier struct {
	secret  string
	maxSkew time.Duration
	now     func() time.Time
}

// NewVoucherVerifier creates the voucher callback verifier.
func NewVoucherVerifier(cfg VoucherConfig) (*VoucherVerifier, error) {
	if cfg.WebhookSecret == "" {
		return nil, errors.New("voucher webhook secret is required")
	}
	maxSkew := cfg.MaxSkew
	if maxSkew <= 0 {
		maxSkew = 5 * time.Minute
	}
	return &VoucherVerifier{
		secret:  cfg.WebhookSecret,
		maxSkew: maxSkew,
		now:     func() time.Time { return time.Now().UTC() },
	}, nil
}

// Verify checks X-Voucher-Signature and X-Voucher-Timestamp against the raw
// body.
func (v *VoucherVerifier) Verify(rawBody []byte, headers map[string]string) error {
	sig := headerValue(headers, "X-Voucher-Signature")
	if sig == "" {
		return ErrMissingSignatureHeader
	}

	ts := headerValue(headers, "X-Voucher-Timestamp")
	timestamp, err := strconv.ParseInt(ts, 10, 64)
	if err != nil {
		return fmt.Errorf("%w: invalid timestamp header", ErrMissingSignatureHeader)
	}

	return VerifyHMAC(v.secret, rawBody, sig, timestamp, v.maxSkew, v.now())
}
