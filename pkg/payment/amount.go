package payment

import (
	"fmt"
	"strconv"

	"github.com/dmitrymomot/paykit/pkg/plan"
)

// Currency exponents diverging from the ISO-4217 default of two decimals.
// Amounts are stored in minor units everywhere; only the wallet provider
// wants decimal strings on the wire, so the conversion lives here instead of
// being repeated per adapter.
var currencyExponents = map[string]int{
	"JPY": 0,
	"KRW": 0,
	"VND": 0,
	"BHD": 3,
	"KWD": 3,
	"OMR": 3,
}

// currencyExponent returns the number of decimal places for a currency.
func currencyExponent(currency string) int {
	if exp, ok := currencyExponents[currency]; ok {
		return exp
	}
	return 2
}

// DecimalString renders a minor-unit amount as the decimal string the wallet
// provider's API expects: 1099 USD minor units become "10.99", 500 JPY stays
// "500". Integer arithmetic only; no floats near money.
func DecimalString(m plan.Money) string {
	exp := currencyExponent(m.Currency)
	if exp == 0 {
		return strconv.FormatInt(m.Amount, 10)
	}

	div := int64(1)
	for i := 0; i < exp; i++ {
		div *= 10
	}

	sign := ""
	amount := m.Amount
	if amount < 0 {
		sign = "-"
		amount = -amount
	}

	return fmt.Sprintf("%s%d.%0*d", sign, amount/div, exp, amount%div)
}
