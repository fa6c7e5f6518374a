package payment

import (
	"fmt"
	"strings"

	"github.com/dmitrymomot/paykit/pkg/plan"
)

// ProviderID identifies one of the supported external payment providers.
type ProviderID string

const (
	ProviderCardNetwork    ProviderID = "card_network"
	ProviderWalletNetwork  ProviderID = "wallet_network"
	ProviderPrepaidVoucher ProviderID = "prepaid_voucher"
	ProviderBankCode       ProviderID = "bank_code"
)

// Payer identifies the entitlement subject by normalized email.
// Construct through NewPayer so the same person never appears under two
// casings of the same address.
type Payer struct {
	Email string
}

// NewPayer normalizes the email (trim, lowercase) and rejects values that
// cannot plausibly be an address.
func NewPayer(email string) (Payer, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return Payer{}, ErrInvalidPayer
	}
	at := strings.Index(email, "@")
	if at <= 0 || at == len(email)-1 {
		return Payer{}, fmt.Errorf("%w: %q", ErrInvalidPayer, email)
	}
	return Payer{Email: email}, nil
}

// ProviderHandle is what the caller needs to send the payer to the provider:
// either a hosted checkout URL or an out-of-band session/payment code.
type ProviderHandle struct {
	RedirectURL string // Hosted checkout URL, empty for code-based providers
	SessionID   string // Provider's session or payment code shown to the payer
	ExternalRef string // Provider's order reference, used for correlation
}

// Outcome is the normalized result a notification reports for a payment.
type Outcome string

const (
	OutcomeCompleted Outcome = "completed"
	OutcomeFailed    Outcome = "failed"
)

// PaymentEvent is the normalized form of a verified provider notification.
// Ephemeral: it exists only between parsing and ledger recording.
type PaymentEvent struct {
	ProviderID  ProviderID
	ExternalRef string
	Outcome     Outcome
	PayerHint   string  // Payer email carried in provider metadata, if any
	PlanHint    plan.ID // Plan carried in provider metadata, if any
	// IdempotencyKey uniquely identifies the real-world payment event.
	// Normally provider + ":" + external order reference; providers without a
	// stable callback order id synthesize one from a content hash.
	IdempotencyKey string
}
