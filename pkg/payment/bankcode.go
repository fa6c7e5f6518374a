package payment

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/dmitrymomot/paykit/pkg/plan"
)

// BankCodeConfig holds configuration for the local bank-code provider.
type BankCodeConfig struct {
	ConsumerKey    string        `env:"BANKCODE_CONSUMER_KEY,required"`
	ConsumerSecret string        `env:"BANKCODE_CONSUMER_SECRET,required"`
	BaseURL        string        `env:"BANKCODE_API_URL,required"`
	Currency       string        `env:"BANKCODE_CURRENCY" envDefault:"KES"`
	CallbackURL    string        `env:"BANKCODE_CALLBACK_URL,required"`
	CallbackToken  string        `env:"BANKCODE_CALLBACK_TOKEN,required"`
	Timeout        time.Duration `env:"BANKCODE_TIMEOUT" envDefault:"10s"`
}

// BankCodeAdapter implements Adapter for the local bank-code scheme. Its flow
// is two-step: an OAuth-style access token is fetched (and cached until
// expiry) before any order can be pushed. The payer completes payment at a
// bank terminal using the returned payment code; completion is known only
// via the server-to-server callback.
//
// The scheme operates in exactly one currency; plans priced in anything else
// are rejected before any network call.
type BankCodeAdapter struct {
	http *resty.Client
	cfg  BankCodeConfig

	tokenMu     sync.Mutex
	token       string
	tokenExpiry time.Time
	now         func() time.Time
}

// NewBankCodeAdapter creates the bank-code adapter.
func NewBankCodeAdapter(cfg BankCodeConfig) (*BankCodeAdapter, error) {
	if cfg.ConsumerKey == "" || cfg.ConsumerSecret == "" {
		return nil, errors.New("bank-code consumer credentials are required")
	}
	if cfg.BaseURL == "" {
		return nil, errors.New("bank-code API base URL is required")
	}
	if cfg.Currency == "" {
		return nil, errors.New("bank-code currency is required")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &BankCodeAdapter{
		http: resty.New().SetBaseURL(cfg.BaseURL).SetTimeout(timeout),
		cfg:  cfg,
		now:  func() time.Time { return time.Now().UTC() },
	}, nil
}

func (a *BankCodeAdapter) ID() ProviderID { return ProviderBankCode }

// accessToken returns a cached token, fetching a fresh one only when the
// cached value is missing or within the expiry margin. The mutex doubles as
// a single-flight guard: concurrent callers never race duplicate fetches.
func (a *BankCodeAdapter) accessToken(ctx context.Context) (string, error) {
	a.tokenMu.Lock()
	defer a.tokenMu.Unlock()

	// 30s margin so a token never expires mid-request.
	if a.token != "" && a.now().Add(30*time.Second).Before(a.tokenExpiry) {
		return a.token, nil
	}

	var tok struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int64  `json:"expires_in"`
	}
	resp, err := a.http.R().
		SetContext(ctx).
		SetBasicAuth(a.cfg.ConsumerKey, a.cfg.ConsumerSecret).
		SetQueryParam("grant_type", "client_credentials").
		SetResult(&tok).
		Get("/oauth/token")
	if err != nil {
		return "", errors.Join(ErrProviderUnavailable, err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("%w: token fetch returned %s", ErrProviderUnavailable, resp.Status())
	}
	if tok.AccessToken == "" {
		return "", fmt.Errorf("%w: token response missing access_token", ErrProviderUnavailable)
	}

	a.token = tok.AccessToken
	a.tokenExpiry = a.now().Add(time.Duration(tok.ExpiresIn) * time.Second)
	return a.token, nil
}

type bankCodeOrderRequest struct {
	Amount      int64  `json:"amount"` // Minor units
	Currency    string `json:"currency"`
	ExternalID  string `json:"external_id"` // Idempotency token: retries reuse the order
	Email       string `json:"email"`
	Plan        string `json:"plan"`
	CallbackURL string `json:"callback_url"`
}

type bankCodeOrderResponse struct {
	OrderID     string `json:"order_id"`
	PaymentCode string `json:"payment_code"`
}

// CreatePayment pushes a bank-code order after the token step. A failed
// token fetch surfaces as ErrProviderUnavailable and no order is created.
func (a *BankCodeAdapter) CreatePayment(ctx context.Context, p plan.Plan, payer Payer, nonce string) (*ProviderHandle, error) {
	if p.Price.Currency != a.cfg.Currency {
		return nil, fmt.Errorf("%w: bank-code scheme only operates in %s, plan %q is priced in %s",
			ErrPlanNotSupported, a.cfg.Currency, p.ID, p.Price.Currency)
	}

	token, err := a.accessToken(ctx)
	if err != nil {
		return nil, err
	}

	var order bankCodeOrderResponse
	resp, err := a.http.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetBody(bankCodeOrderRequest{
			Amount:      p.Price.Amount,
			Currency:    p.Price.Currency,
			ExternalID:  ClientToken(payer, p.ID, nonce),
			Email:       payer.Email,
			Plan:        string(p.ID),
			CallbackURL: a.cfg.CallbackURL,
		}).
		SetResult(&order).
		Post("/orders")
	if err != nil {
		return nil, errors.Join(ErrProviderUnavailable, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("%w: bank-code order creation returned %s", ErrProviderUnavailable, resp.Status())
	}
	if order.OrderID == "" {
		return nil, fmt.Errorf("%w: bank-code order response missing order_id", ErrProviderUnavailable)
	}

	return &ProviderHandle{
		SessionID:   order.PaymentCode,
		ExternalRef: order.OrderID,
	}, nil
}

// ParseNotification normalizes a verified bank-code callback.
func (a *BankCodeAdapter) ParseNotification(rawBody []byte, _ map[string]string) (*PaymentEvent, error) {
	var note struct {
		OrderID    string `json:"order_id"`
		ResultCode *int   `json:"result_code"`
		ResultDesc string `json:"result_desc"`
		Metadata   struct {
			Email string `json:"email"`
			Plan  string `json:"plan"`
		} `json:"metadata"`
	}
	if err := json.Unmarshal(rawBody, &note); err != nil {
		return nil, errors.Join(ErrMalformedNotification, err)
	}
	if note.OrderID == "" {
		return nil, fmt.Errorf("%w: missing order_id", ErrMalformedNotification)
	}
	if note.ResultCode == nil {
		return nil, fmt.Errorf("%w: missing result_code", ErrMalformedNotification)
	}

	outcome := OutcomeFailed
	if *note.ResultCode == 0 {
		outcome = OutcomeCompleted
	}

	return &PaymentEvent{
		ProviderID:     ProviderBankCode,
		ExternalRef:    note.OrderID,
		Outcome:        outcome,
		PayerHint:      note.Metadata.Email,
		PlanHint:       plan.ID(note.Metadata.Plan),
		IdempotencyKey: EventKey(ProviderBankCode, note.OrderID),
	}, nil
}

// BankCodeVerifier authenticates bank-code callbacks by a bearer token plus
// a SHA-256 hash of the payload. The scheme additionally allowlists caller
// IPs at the network layer, which is outside this package.
type BankCodeVerifier struct {
	expected string
}

// NewBankCodeVerifier creates the bank-code callback verifier.
func NewBankCodeVerifier(cfg BankCodeConfig) (*BankCodeVerifier, error) {
	if cfg.CallbackToken == "" {
		return nil, errors.New("bank-code callback token is required")
	}
	return &BankCodeVerifier{expected: "Bearer " + cfg.CallbackToken}, nil
}

// Verify checks the Authorization bearer token and the X-Payload-Hash header
// against the raw body.
func (v *BankCodeVerifier) Verify(rawBody []byte, headers map[string]string) error {
	auth := headerValue(headers, "Authorization")
	if auth == "" {
		return ErrMissingSignatureHeader
	}
	if !constantTimeEqual(auth, v.expected) {
		return ErrInvalidSignature
	}

	wantHash := headerValue(headers, "X-Payload-Hash")
	if wantHash == "" {
		return fmt.Errorf("%w: missing payload hash header", ErrMissingSignatureHeader)
	}
	sum := sha256.Sum256(rawBody)
	if !constantTimeEqual(hex.EncodeToString(sum[:]), wantHash) {
		return fmt.Errorf("%w: payload hash mismatch", ErrInvalidSignature)
	}
	return nil
}
