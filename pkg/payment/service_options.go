package payment

import (
	"log/slog"
	"time"
)

// Option configures a Service instance.
type Option func(*Service)

// WithLogger sets the structured logger. Defaults to slog.Default().
func WithLogger(log *slog.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

// WithClock replaces the time source. Intended for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithIntentTTL sets how long a pending intent stays correlatable.
// Notifications arriving after the TTL fall back to payload hints.
func WithIntentTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.intentTTL = ttl
		}
	}
}

type createOptions struct {
	nonce string
}

// CreateOption configures a single CreatePayment call.
type CreateOption func(*createOptions)

// WithNonce pins the idempotency nonce for a payment creation. Clients
// retrying after a timeout must resend the same nonce so the provider-side
// order is reused instead of duplicated. Defaults to a fresh UUID.
func WithNonce(nonce string) CreateOption {
	return func(o *createOptions) {
		o.nonce = nonce
	}
}
