package entitlement

import (
	"time"

	"github.com/dmitrymomot/paykit/pkg/plan"
)

// Entitlement is the stored premium-access state for a payer.
// Exactly one logical record exists per payer email (lowercased).
type Entitlement struct {
	Payer     string // Normalized (lowercase) payer email, the record key
	IsPremium bool
	PlanID    plan.ID
	Expiry    *time.Time
	UpdatedAt time.Time
}

// IsActiveAt reports whether the entitlement grants premium access at the
// given instant. Expiry is evaluated here, at read time; nothing expires
// records in the background.
func (e *Entitlement) IsActiveAt(now time.Time) bool {
	if e == nil || !e.IsPremium || e.Expiry == nil {
		return false
	}
	return e.Expiry.After(now)
}

// IsActive reports whether the entitlement grants premium access now.
func (e *Entitlement) IsActive() bool {
	return e.IsActiveAt(time.Now().UTC())
}
