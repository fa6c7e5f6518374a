package payment_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/paykit/pkg/payment"
	"github.com/dmitrymomot/paykit/pkg/plan"
)

func TestDecimalString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		money plan.Money
		want  string
	}{
		{"two decimal currency", plan.Money{Amount: 1099, Currency: "USD"}, "10.99"},
		{"sub-unit amount", plan.Money{Amount: 5, Currency: "EUR"}, "0.05"},
		{"exact unit", plan.Money{Amount: 2500, Currency: "USD"}, "25.00"},
		{"zero decimal currency", plan.Money{Amount: 500, Currency: "JPY"}, "500"},
		{"three decimal currency", plan.Money{Amount: 12345, Currency: "KWD"}, "12.345"},
		{"unknown currency defaults to two decimals", plan.Money{Amount: 999, Currency: "XXX"}, "9.99"},
		{"negative amount", plan.Money{Amount: -150, Currency: "USD"}, "-1.50"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, payment.DecimalString(tt.money))
		})
	}
}
