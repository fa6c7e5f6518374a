// Package pg provides utilities for interacting with PostgreSQL using the
// pgx/v5 driver. It offers a thin abstraction around connection pooling,
// health checks, and common error helpers so the Postgres-backed stores
// (payment ledger, entitlements, payment intents) can bootstrap a resilient
// database layer with only a few lines of code.
//
// # Architecture
//
// The package exposes two cooperating building blocks:
//
//   - Config – a declarative struct whose fields are populated from
//     environment variables via github.com/caarlos0/env. It controls
//     connection pool limits and health-check cadence.
//
//   - Connect – opens a *pgxpool.Pool based on Config, retrying with
//     backoff until the database becomes available.
//
// The resulting pool is handed to the store constructors directly, for
// example ledger.NewPostgres or entitlement.NewPostgresStore.
//
// # Usage
//
//	var cfg pg.Config
//	if err := config.Load(&cfg); err != nil {
//	    panic(err)
//	}
//
//	pool, err := pg.Connect(ctx, cfg)
//	if err != nil {
//	    panic(err)
//	}
//	defer pool.Close()
//
//	led := ledger.NewPostgres(pool)
//	ents := entitlement.NewService(entitlement.NewPostgresStore(pool))
//
//	// expose a readiness probe
//	health := pg.Healthcheck(pool)
//	if err := health(ctx); err != nil {
//	    // database is not healthy
//	}
//
// # Error Handling
//
// Convenience helpers such as [pg.IsNotFoundError] and
// [pg.IsDuplicateKeyError] unwrap errors returned by pgx / *pgconn.PgError
// and make error classification trivial inside business logic.
package pg
