package payment_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/paykit/pkg/payment"
)

func TestVerifyHMAC(t *testing.T) {
	t.Parallel()

	const secret = "whsec_test"
	body := []byte(`{"order_id":"v-1","status":"PAID"}`)
	now := time.Unix(1_750_000_000, 0)

	t.Run("accepts valid signature", func(t *testing.T) {
		t.Parallel()
		sig := payment.SignBody(secret, now.Unix(), body)
		assert.NoError(t, payment.VerifyHMAC(secret, body, sig, now.Unix(), 5*time.Minute, now))
	})

	t.Run("rejects tampered body", func(t *testing.T) {
		t.Parallel()
		sig := payment.SignBody(secret, now.Unix(), body)
		tampered := []byte(`{"order_id":"v-1","status":"PAID","amount":1}`)
		assert.ErrorIs(t, payment.VerifyHMAC(secret, tampered, sig, now.Unix(), 5*time.Minute, now), payment.ErrInvalidSignature)
	})

	t.Run("rejects wrong secret", func(t *testing.T) {
		t.Parallel()
		sig := payment.SignBody("other-secret", now.Unix(), body)
		assert.ErrorIs(t, payment.VerifyHMAC(secret, body, sig, now.Unix(), 5*time.Minute, now), payment.ErrInvalidSignature)
	})

	t.Run("rejects missing signature", func(t *testing.T) {
		t.Parallel()
		assert.ErrorIs(t, payment.VerifyHMAC(secret, body, "", now.Unix(), 5*time.Minute, now), payment.ErrMissingSignatureHeader)
	})

	t.Run("rejects replay outside skew window", func(t *testing.T) {
		t.Parallel()
		old := now.Add(-10 * time.Minute)
		sig := payment.SignBody(secret, old.Unix(), body)
		assert.ErrorIs(t, payment.VerifyHMAC(secret, body, sig, old.Unix(), 5*time.Minute, now), payment.ErrClockSkewExceeded)
	})

	t.Run("rejects far-future timestamp", func(t *testing.T) {
		t.Parallel()
		future := now.Add(10 * time.Minute)
		sig := payment.SignBody(secret, future.Unix(), body)
		assert.ErrorIs(t, payment.VerifyHMAC(secret, body, sig, future.Unix(), 5*time.Minute, now), payment.ErrClockSkewExceeded)
	})

	t.Run("signature is bound to timestamp", func(t *testing.T) {
		t.Parallel()
		sig := payment.SignBody(secret, now.Unix(), body)
		// Same payload, shifted timestamp: replay with a fresh timestamp must fail.
		assert.ErrorIs(t, payment.VerifyHMAC(secret, body, sig, now.Unix()+1, 5*time.Minute, now), payment.ErrInvalidSignature)
	})
}
