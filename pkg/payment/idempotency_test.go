package payment_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/paykit/pkg/payment"
	"github.com/dmitrymomot/paykit/pkg/plan"
)

func TestClientToken(t *testing.T) {
	t.Parallel()

	payer := payment.Payer{Email: "a@x.com"}

	t.Run("stable across retries", func(t *testing.T) {
		t.Parallel()
		first := payment.ClientToken(payer, plan.Monthly, "nonce-1")
		second := payment.ClientToken(payer, plan.Monthly, "nonce-1")
		assert.Equal(t, first, second)
		assert.Len(t, first, 64)
	})

	t.Run("changes with any input", func(t *testing.T) {
		t.Parallel()
		base := payment.ClientToken(payer, plan.Monthly, "nonce-1")
		assert.NotEqual(t, base, payment.ClientToken(payer, plan.Yearly, "nonce-1"))
		assert.NotEqual(t, base, payment.ClientToken(payer, plan.Monthly, "nonce-2"))
		assert.NotEqual(t, base, payment.ClientToken(payment.Payer{Email: "b@x.com"}, plan.Monthly, "nonce-1"))
	})
}

func TestEventKeys(t *testing.T) {
	t.Parallel()

	t.Run("event key combines provider and reference", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "card_network:cs_123", payment.EventKey(payment.ProviderCardNetwork, "cs_123"))
	})

	t.Run("content hash fallback is deterministic per payload", func(t *testing.T) {
		t.Parallel()
		body := []byte(`{"status":"PAID","email":"a@x.com"}`)
		first := payment.ContentHashKey(payment.ProviderPrepaidVoucher, body)
		assert.Equal(t, first, payment.ContentHashKey(payment.ProviderPrepaidVoucher, body))
		assert.NotEqual(t, first, payment.ContentHashKey(payment.ProviderPrepaidVoucher, []byte(`{"status":"PAID","email":"b@x.com"}`)))
		assert.Contains(t, first, "prepaid_voucher:sha256:")
	})
}

func TestNewPayer(t *testing.T) {
	t.Parallel()

	t.Run("normalizes to lowercase", func(t *testing.T) {
		t.Parallel()
		p, err := payment.NewPayer("  User@Example.COM ")
		assert.NoError(t, err)
		assert.Equal(t, "user@example.com", p.Email)
	})

	t.Run("rejects garbage", func(t *testing.T) {
		t.Parallel()
		for _, email := range []string{"", "   ", "no-at-sign", "@x.com", "a@"} {
			_, err := payment.NewPayer(email)
			assert.ErrorIs(t, err, payment.ErrInvalidPayer, "email %q", email)
		}
	})
}
