package plan

import (
	"errors"
	"fmt"
)

// ID identifies a subscription plan. The set is closed: anything outside the
// three enumerated values is rejected by Catalog.Resolve.
type ID string

const (
	Monthly   ID = "monthly"
	Quarterly ID = "quarterly"
	Yearly    ID = "yearly"
)

// Money represents a monetary amount in the smallest currency unit.
// For example, $9.99 USD is Amount: 999, Currency: "USD".
type Money struct {
	Amount   int64  // Amount in smallest currency unit (cents for USD)
	Currency string // ISO 4217 currency code
}

// Plan describes a purchasable subscription tier.
type Plan struct {
	ID             ID
	Name           string
	Price          Money
	DurationMonths int // Entitlement duration granted per purchase
}

// durationByID pins the allowed plan durations. A plan whose duration
// disagrees with its ID is a configuration error, not a new tier.
var durationByID = map[ID]int{
	Monthly:   1,
	Quarterly: 3,
	Yearly:    12,
}

// Catalog is an immutable plan lookup built at process start.
type Catalog struct {
	plans map[ID]Plan
}

// NewCatalog builds a catalog from the given plans, validating each entry.
// Returns ErrInvalidConfiguration wrapped with the offending detail so
// misconfiguration fails startup rather than checkout.
func NewCatalog(plans []Plan) (*Catalog, error) {
	if len(plans) == 0 {
		return nil, errors.Join(ErrInvalidConfiguration, errors.New("no plans defined"))
	}

	m := make(map[ID]Plan, len(plans))
	for _, p := range plans {
		wantDuration, known := durationByID[p.ID]
		if !known {
			return nil, errors.Join(ErrInvalidConfiguration,
				fmt.Errorf("plan %q is not an enumerated plan ID", p.ID))
		}
		if p.DurationMonths != wantDuration {
			return nil, errors.Join(ErrInvalidConfiguration,
				fmt.Errorf("plan %q duration %d months, want %d", p.ID, p.DurationMonths, wantDuration))
		}
		if p.Price.Amount <= 0 {
			return nil, errors.Join(ErrInvalidConfiguration,
				fmt.Errorf("plan %q has non-positive amount %d", p.ID, p.Price.Amount))
		}
		if len(p.Price.Currency) != 3 {
			return nil, errors.Join(ErrInvalidConfiguration,
				fmt.Errorf("plan %q has invalid currency %q", p.ID, p.Price.Currency))
		}
		if _, dup := m[p.ID]; dup {
			return nil, errors.Join(ErrInvalidConfiguration,
				fmt.Errorf("plan %q defined twice", p.ID))
		}
		m[p.ID] = p
	}

	return &Catalog{plans: m}, nil
}

// MustNewCatalog is NewCatalog that panics on invalid configuration.
// Intended for static plan lists known at compile time.
func MustNewCatalog(plans []Plan) *Catalog {
	c, err := NewCatalog(plans)
	if err != nil {
		panic(fmt.Sprintf("plan: %v", err))
	}
	return c
}

// Resolve returns the plan for the given ID.
// Returns ErrUnknownPlan for any identifier outside the catalog; callers must
// treat that as a validation failure and make no provider call.
func (c *Catalog) Resolve(id ID) (Plan, error) {
	p, ok := c.plans[id]
	if !ok {
		return Plan{}, fmt.Errorf("%w: %q", ErrUnknownPlan, id)
	}
	return p, nil
}

// IDs returns the identifiers of all configured plans.
func (c *Catalog) IDs() []ID {
	ids := make([]ID, 0, len(c.plans))
	for id := range c.plans {
		ids = append(ids, id)
	}
	return ids
}

// DefaultPlans returns the standard three-tier premium pricing in USD.
func DefaultPlans() []Plan {
	return []Plan{
		{ID: Monthly, Name: "Premium Monthly", Price: Money{Amount: 999, Currency: "USD"}, DurationMonths: 1},
		{ID: Quarterly, Name: "Premium Quarterly", Price: Money{Amount: 2499, Currency: "USD"}, DurationMonths: 3},
		{ID: Yearly, Name: "Premium Yearly", Price: Money{Amount: 7999, Currency: "USD"}, DurationMonths: 12},
	}
}
