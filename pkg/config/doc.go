// Package config loads application configuration from environment variables
// into annotated Go structs.
//
// It wraps `github.com/joho/godotenv` and `github.com/caarlos0/env/v11`:
// the default `.env` file is loaded once per process (missing files are
// fine), then the environment is parsed into any struct carrying `env` field
// tags.
//
// Provider credentials, webhook secrets and the sandbox/live switch are all
// declared as config structs next to the code that consumes them, for
// example:
//
//	type StripeConfig struct {
//	    SecretKey     string `env:"STRIPE_SECRET_KEY,required"`
//	    WebhookSecret string `env:"STRIPE_WEBHOOK_SECRET,required"`
//	}
//
//	var cfg StripeConfig
//	if err := config.Load(&cfg); err != nil {
//	    // handle error
//	}
//
// Use MustLoad for configuration the process cannot start without.
package config
