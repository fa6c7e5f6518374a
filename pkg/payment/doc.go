// Package payment provides provider-agnostic payment orchestration and
// webhook-driven entitlement activation.
//
// Four external payment providers — a card network, a wallet network, a
// prepaid voucher scheme and a local bank-code scheme — are mutually
// incompatible in request shape, amount units, confirmation style and
// callback authentication. This package normalizes them behind one Adapter
// capability and drives the payer's premium entitlement through an
// idempotent activation pipeline.
//
// # Architecture
//
//   - Service: the single entry point the HTTP layer calls
//     (CreatePayment, HandleNotification, GetEntitlement)
//   - Adapter: per-provider request/notification translation
//     (StripeAdapter, PayPalAdapter, VoucherAdapter, BankCodeAdapter)
//   - Verifier: per-provider callback authenticity check, always applied to
//     the raw body before anything is parsed
//   - Registry: provider selection by ProviderID
//   - IntentStore: pending payment intents for notification correlation
//
// The idempotency ledger (pkg/ledger) and entitlement state machine
// (pkg/entitlement) are injected; the facade holds no hidden singletons.
//
// # Notification pipeline
//
// Providers deliver webhooks at-least-once and possibly out of order. Every
// notification passes through:
//
//	verify raw body → parse → resolve payer/plan → ledger.RecordIfNew → activate
//
// Verification happens on the exact bytes received — parsing first would
// break the card provider's signature, which covers byte content. Duplicate
// deliveries collapse at the ledger into a success no-op acknowledgment,
// because providers expect a 2xx to stop retrying even for duplicates.
// Entitlement is only ever mutated behind an Accepted ledger result.
//
// # Example
//
//	catalog := plan.MustNewCatalog(plan.DefaultPlans())
//
//	registry := payment.NewRegistry()
//	registry.Register(stripeAdapter, stripeVerifier)
//	registry.Register(paypalAdapter, paypalVerifier)
//
//	svc := payment.NewService(catalog, registry,
//		ledger.NewMemory(),
//		entitlement.NewService(entitlement.NewMemoryStore()),
//		payment.NewMemoryIntentStore(),
//	)
//
//	handle, err := svc.CreatePayment(ctx, plan.Monthly, "a@x.com", payment.ProviderCardNetwork)
package payment
