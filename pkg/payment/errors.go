package payment

import "errors"

// Error taxonomy, ordered by pipeline stage. Validation errors reject a
// request before any network call; authenticity errors reject a notification
// with no side effects and are never acknowledged as success.
var (
	ErrUnknownProvider  = errors.New("unknown payment provider")
	ErrInvalidPayer     = errors.New("invalid payer email")
	ErrPlanNotSupported = errors.New("plan not supported by provider")

	ErrProviderUnavailable = errors.New("payment provider unavailable")

	ErrMissingSignatureHeader = errors.New("notification signature header is missing")
	ErrInvalidSignature       = errors.New("notification signature verification failed")
	ErrClockSkewExceeded      = errors.New("notification timestamp outside allowed clock skew")

	ErrMalformedNotification  = errors.New("malformed provider notification")
	ErrUnsupportedEvent       = errors.New("notification event type not relevant to payments")
	ErrUnresolvedNotification = errors.New("notification could not be correlated to a payer and plan")

	ErrIntentNotFound = errors.New("payment intent not found")
)
