package payment

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/dmitrymomot/paykit/pkg/plan"
)

// PayPalConfig holds configuration for the wallet-network provider.
type PayPalConfig struct {
	ClientID     string        `env:"PAYPAL_CLIENT_ID,required"`
	ClientSecret string        `env:"PAYPAL_CLIENT_SECRET,required"`
	Environment  string        `env:"PAYPAL_ENVIRONMENT" envDefault:"sandbox"` // sandbox|live
	BaseURL      string        `env:"PAYPAL_API_URL"`                          // Override for tests; derived from Environment otherwise
	ReturnURL    string        `env:"PAYPAL_RETURN_URL,required"`
	CancelURL    string        `env:"PAYPAL_CANCEL_URL,required"`
	Timeout      time.Duration `env:"PAYPAL_TIMEOUT" envDefault:"10s"`

	// Provider-issued credentials the wallet network presents on its
	// server-to-server callbacks.
	WebhookClientID     string `env:"PAYPAL_WEBHOOK_CLIENT_ID,required"`
	WebhookClientSecret string `env:"PAYPAL_WEBHOOK_CLIENT_SECRET,required"`
}

func (c PayPalConfig) apiURL() string {
	if c.BaseURL != "" {
		return c.BaseURL
	}
	if strings.EqualFold(c.Environment, "live") {
		return "https://api-m.paypal.com"
	}
	return "https://api-m.sandbox.paypal.com"
}

// PayPalAdapter implements Adapter for the wallet network. The wallet API is
// the odd one out on amounts: it wants decimal strings ("9.99"), not minor
// units, so every outbound amount goes through DecimalString.
type PayPalAdapter struct {
	http *resty.Client
	cfg  PayPalConfig
}

// NewPayPalAdapter creates the wallet-network adapter.
func NewPayPalAdapter(cfg PayPalConfig) (*PayPalAdapter, error) {
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return nil, errors.New("paypal client credentials are required")
	}
	if cfg.ReturnURL == "" || cfg.CancelURL == "" {
		return nil, errors.New("paypal return and cancel URLs are required")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	httpClient := resty.New().
		SetBaseURL(cfg.apiURL()).
		SetTimeout(timeout).
		SetBasicAuth(cfg.ClientID, cfg.ClientSecret)

	return &PayPalAdapter{http: httpClient, cfg: cfg}, nil
}

func (a *PayPalAdapter) ID() ProviderID { return ProviderWalletNetwork }

type walletOrderRequest struct {
	Intent        string             `json:"intent"`
	PurchaseUnits []walletOrderUnit  `json:"purchase_units"`
	AppContext    walletOrderContext `json:"application_context"`
}

type walletOrderUnit struct {
	Amount   walletAmount `json:"amount"`
	CustomID string       `json:"custom_id"`
}

type walletAmount struct {
	CurrencyCode string `json:"currency_code"`
	Value        string `json:"value"`
}

type walletOrderContext struct {
	ReturnURL string `json:"return_url"`
	CancelURL string `json:"cancel_url"`
}

type walletOrderResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Links  []struct {
		Href string `json:"href"`
		Rel  string `json:"rel"`
	} `json:"links"`
}

// CreatePayment creates a wallet order and returns its approval link.
// The PayPal-Request-Id header is the provider-side idempotency token:
// replays with the same id return the original order.
func (a *PayPalAdapter) CreatePayment(ctx context.Context, p plan.Plan, payer Payer, nonce string) (*ProviderHandle, error) {
	body := walletOrderRequest{
		Intent: "CAPTURE",
		PurchaseUnits: []walletOrderUnit{{
			Amount: walletAmount{
				CurrencyCode: p.Price.Currency,
				Value:        DecimalString(p.Price),
			},
			CustomID: walletCustomID(p.ID, payer),
		}},
		AppContext: walletOrderContext{
			ReturnURL: a.cfg.ReturnURL,
			CancelURL: a.cfg.CancelURL,
		},
	}

	var order walletOrderResponse
	resp, err := a.http.R().
		SetContext(ctx).
		SetHeader("PayPal-Request-Id", ClientToken(payer, p.ID, nonce)).
		SetBody(body).
		SetResult(&order).
		Post("/v2/checkout/orders")
	if err != nil {
		return nil, errors.Join(ErrProviderUnavailable, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("%w: wallet order creation returned %s", ErrProviderUnavailable, resp.Status())
	}
	if order.ID == "" {
		return nil, fmt.Errorf("%w: wallet order response missing id", ErrProviderUnavailable)
	}

	var approveURL string
	for _, link := range order.Links {
		if link.Rel == "approve" {
			approveURL = link.Href
			break
		}
	}

	return &ProviderHandle{
		RedirectURL: approveURL,
		SessionID:   order.ID,
		ExternalRef: order.ID,
	}, nil
}

// ParseNotification normalizes a verified wallet callback.
func (a *PayPalAdapter) ParseNotification(rawBody []byte, _ map[string]string) (*PaymentEvent, error) {
	var note struct {
		ID        string `json:"id"`
		EventType string `json:"event_type"`
		Resource  struct {
			ID                string `json:"id"`
			CustomID          string `json:"custom_id"`
			SupplementaryData struct {
				RelatedIDs struct {
					OrderID string `json:"order_id"`
				} `json:"related_ids"`
			} `json:"supplementary_data"`
		} `json:"resource"`
	}
	if err := json.Unmarshal(rawBody, &note); err != nil {
		return nil, errors.Join(ErrMalformedNotification, err)
	}

	var outcome Outcome
	switch note.EventType {
	case "PAYMENT.CAPTURE.COMPLETED":
		outcome = OutcomeCompleted
	case "PAYMENT.CAPTURE.DENIED", "PAYMENT.CAPTURE.DECLINED":
		outcome = OutcomeFailed
	case "":
		return nil, fmt.Errorf("%w: missing event_type", ErrMalformedNotification)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedEvent, note.EventType)
	}

	// Capture events reference the checkout order through supplementary data;
	// the capture's own id differs from the order id the intent was saved
	// under.
	externalRef := note.Resource.SupplementaryData.RelatedIDs.OrderID
	if externalRef == "" {
		externalRef = note.Resource.ID
	}
	if externalRef == "" {
		return nil, fmt.Errorf("%w: missing order reference", ErrMalformedNotification)
	}

	planHint, payerHint := parseWalletCustomID(note.Resource.CustomID)

	return &PaymentEvent{
		ProviderID:     ProviderWalletNetwork,
		ExternalRef:    externalRef,
		Outcome:        outcome,
		PayerHint:      payerHint,
		PlanHint:       planHint,
		IdempotencyKey: EventKey(ProviderWalletNetwork, externalRef),
	}, nil
}

// walletCustomID packs plan and payer into the order's custom_id so callbacks
// carry them back even when the intent record is gone.
func walletCustomID(planID plan.ID, payer Payer) string {
	return string(planID) + "|" + payer.Email
}

func parseWalletCustomID(customID string) (plan.ID, string) {
	planID, payer, ok := strings.Cut(customID, "|")
	if !ok {
		return "", ""
	}
	return plan.ID(planID), payer
}

// PayPalVerifier authenticates wallet callbacks by the provider-issued
// client credentials presented as Basic auth on the callback request.
type PayPalVerifier struct {
	expected string
}

// NewPayPalVerifier creates the wallet callback verifier.
func NewPayPalVerifier(cfg PayPalConfig) (*PayPalVerifier, error) {
	if cfg.WebhookClientID == "" || cfg.WebhookClientSecret == "" {
		return nil, errors.New("paypal webhook client credentials are required")
	}
	creds := base64.StdEncoding.EncodeToString([]byte(cfg.WebhookClientID + ":" + cfg.WebhookClientSecret))
	return &PayPalVerifier{expected: "Basic " + creds}, nil
}

// Verify checks the callback's Authorization header in constant time.
func (v *PayPalVerifier) Verify(_ []byte, headers map[string]string) error {
	auth := headerValue(headers, "Authorization")
	if auth == "" {
		return ErrMissingSignatureHeader
	}
	if !constantTimeEqual(auth, v.expected) {
		return ErrInvalidSignature
	}
	return nil
}
