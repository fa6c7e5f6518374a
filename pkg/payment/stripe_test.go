package payment_test

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/paykit/pkg/payment"
	"github.com/dmitrymomot/paykit/pkg/plan"
)

func stripeTestConfig(apiURL string) payment.StripeConfig {
	return payment.StripeConfig{
		SecretKey:     "sk_test_123",
		WebhookSecret: "whsec_test_123",
		SuccessURL:    "https://app.example.com/success",
		CancelURL:     "https://app.example.com/cancel",
		APIURL:        apiURL,
	}
}

// stripeSignature builds a header in Stripe's "t=<ts>,v1=<hmac>" format,
// HMAC-SHA256 over "<ts>.<payload>".
func stripeSignature(secret string, payload []byte, ts time.Time) string {
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.%s", ts.Unix(), payload)
	return fmt.Sprintf("t=%d,v1=%s", ts.Unix(), hex.EncodeToString(mac.Sum(nil)))
}

func TestStripeAdapter_CreatePayment(t *testing.T) {
	t.Parallel()

	t.Run("creates checkout session in minor units", func(t *testing.T) {
		t.Parallel()
		var gotIdempotencyKey string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "/v1/checkout/sessions", r.URL.Path)
			gotIdempotencyKey = r.Header.Get("Idempotency-Key")

			require.NoError(t, r.ParseForm())
			assert.Equal(t, "999", r.PostForm.Get("line_items[0][price_data][unit_amount]"))
			assert.Equal(t, "usd", r.PostForm.Get("line_items[0][price_data][currency]"))
			assert.Equal(t, "monthly", r.PostForm.Get("metadata[plan]"))
			assert.Equal(t, "a@x.com", r.PostForm.Get("metadata[payer]"))

			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{"id":"cs_test_1","url":"https://checkout.example.com/c/cs_test_1"}`)
		}))
		defer srv.Close()

		adapter, err := payment.NewStripeAdapter(stripeTestConfig(srv.URL))
		require.NoError(t, err)

		p := plan.Plan{ID: plan.Monthly, Name: "Premium Monthly", Price: plan.Money{Amount: 999, Currency: "USD"}, DurationMonths: 1}
		handle, err := adapter.CreatePayment(context.Background(), p, payment.Payer{Email: "a@x.com"}, "nonce-1")
		require.NoError(t, err)

		assert.Equal(t, "cs_test_1", handle.SessionID)
		assert.Equal(t, "cs_test_1", handle.ExternalRef)
		assert.Equal(t, "https://checkout.example.com/c/cs_test_1", handle.RedirectURL)
		assert.Equal(t, payment.ClientToken(payment.Payer{Email: "a@x.com"}, plan.Monthly, "nonce-1"), gotIdempotencyKey)
	})

	t.Run("surfaces provider errors", func(t *testing.T) {
		t.Parallel()
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			fmt.Fprint(w, `{"error":{"type":"api_error"}}`)
		}))
		defer srv.Close()

		adapter, err := payment.NewStripeAdapter(stripeTestConfig(srv.URL))
		require.NoError(t, err)

		p := plan.Plan{ID: plan.Monthly, Name: "Premium Monthly", Price: plan.Money{Amount: 999, Currency: "USD"}, DurationMonths: 1}
		_, err = adapter.CreatePayment(context.Background(), p, payment.Payer{Email: "a@x.com"}, "nonce-1")
		assert.ErrorIs(t, err, payment.ErrProviderUnavailable)
	})
}

func TestStripeAdapter_ParseNotification(t *testing.T) {
	t.Parallel()

	adapter, err := payment.NewStripeAdapter(stripeTestConfig(""))
	require.NoError(t, err)

	t.Run("session completed maps to completed", func(t *testing.T) {
		t.Parallel()
		body := []byte(`{
			"id": "evt_1",
			"type": "checkout.session.completed",
			"data": {"object": {"id": "cs_1", "metadata": {"plan": "monthly", "payer": "a@x.com"}}}
		}`)

		event, err := adapter.ParseNotification(body, nil)
		require.NoError(t, err)
		assert.Equal(t, payment.OutcomeCompleted, event.Outcome)
		assert.Equal(t, "cs_1", event.ExternalRef)
		assert.Equal(t, "a@x.com", event.PayerHint)
		assert.Equal(t, plan.Monthly, event.PlanHint)
		assert.Equal(t, "card_network:cs_1", event.IdempotencyKey)
	})

	t.Run("session expired maps to failed", func(t *testing.T) {
		t.Parallel()
		body := []byte(`{"id":"evt_2","type":"checkout.session.expired","data":{"object":{"id":"cs_2"}}}`)

		event, err := adapter.ParseNotification(body, nil)
		require.NoError(t, err)
		assert.Equal(t, payment.OutcomeFailed, event.Outcome)
	})

	t.Run("falls back to customer email without metadata", func(t *testing.T) {
		t.Parallel()
		body := []byte(`{"id":"evt_3","type":"checkout.session.completed","data":{"object":{"id":"cs_3","customer_email":"b@x.com"}}}`)

		event, err := adapter.ParseNotification(body, nil)
		require.NoError(t, err)
		assert.Equal(t, "b@x.com", event.PayerHint)
		assert.Empty(t, event.PlanHint)
	})

	t.Run("irrelevant event types are unsupported", func(t *testing.T) {
		t.Parallel()
		body := []byte(`{"id":"evt_4","type":"invoice.paid","data":{"object":{"id":"in_1"}}}`)

		_, err := adapter.ParseNotification(body, nil)
		assert.ErrorIs(t, err, payment.ErrUnsupportedEvent)
	})

	t.Run("missing session id is malformed", func(t *testing.T) {
		t.Parallel()
		body := []byte(`{"id":"evt_5","type":"checkout.session.completed","data":{"object":{}}}`)

		_, err := adapter.ParseNotification(body, nil)
		assert.ErrorIs(t, err, payment.ErrMalformedNotification)
	})
}

func TestStripeVerifier(t *testing.T) {
	t.Parallel()

	cfg := stripeTestConfig("")
	verifier, err := payment.NewStripeVerifier(cfg)
	require.NoError(t, err)

	body := []byte(`{"id":"evt_1","type":"checkout.session.completed","data":{"object":{"id":"cs_1"}}}`)

	t.Run("accepts valid signature over raw body", func(t *testing.T) {
		t.Parallel()
		headers := map[string]string{
			"Stripe-Signature": stripeSignature(cfg.WebhookSecret, body, time.Now()),
		}
		assert.NoError(t, verifier.Verify(body, headers))
	})

	t.Run("rejects signature computed over different bytes", func(t *testing.T) {
		t.Parallel()
		// The signature covers exact byte content: even a reserialized but
		// semantically identical payload must fail.
		reserialized := []byte(`{"data":{"object":{"id":"cs_1"}},"id":"evt_1","type":"checkout.session.completed"}`)
		headers := map[string]string{
			"Stripe-Signature": stripeSignature(cfg.WebhookSecret, body, time.Now()),
		}
		assert.ErrorIs(t, verifier.Verify(reserialized, headers), payment.ErrInvalidSignature)
	})

	t.Run("rejects wrong secret", func(t *testing.T) {
		t.Parallel()
		headers := map[string]string{
			"Stripe-Signature": stripeSignature("whsec_other", body, time.Now()),
		}
		assert.ErrorIs(t, verifier.Verify(body, headers), payment.ErrInvalidSignature)
	})

	t.Run("rejects missing header", func(t *testing.T) {
		t.Parallel()
		assert.ErrorIs(t, verifier.Verify(body, nil), payment.ErrMissingSignatureHeader)
	})

	t.Run("rejects stale timestamp", func(t *testing.T) {
		t.Parallel()
		headers := map[string]string{
			"Stripe-Signature": stripeSignature(cfg.WebhookSecret, body, time.Now().Add(-time.Hour)),
		}
		assert.ErrorIs(t, verifier.Verify(body, headers), payment.ErrClockSkewExceeded)
	})
}
