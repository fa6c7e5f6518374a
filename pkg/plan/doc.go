// Package plan provides the static subscription plan catalog used by the
// payment orchestration layer.
//
// A Catalog is an immutable mapping from a plan identifier (monthly,
// quarterly, yearly) to its price and duration. It is built once at process
// start and validated eagerly, so any misconfigured plan fails startup
// instead of surfacing as a bad charge at checkout time.
//
// Plan resolution happens before any provider call is made. This matters for
// security: an unrecognized plan identifier is rejected locally and is never
// forwarded into a provider's amount or price field.
//
// # Usage
//
//	catalog, err := plan.NewCatalog(plan.DefaultPlans())
//	if err != nil {
//		// invalid plan configuration, refuse to start
//	}
//
//	p, err := catalog.Resolve(plan.Monthly)
//	if errors.Is(err, plan.ErrUnknownPlan) {
//		// reject the request, no network call was made
//	}
package plan
