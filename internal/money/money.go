package money

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Currency prefix used on receipts and in the CLI.
const Currency = "Rs."

// Zero is the additive identity for amounts.
var Zero = decimal.Zero

// Parse reads a decimal amount such as "33.33". Negative amounts are rejected.
func Parse(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse amount %q: %w", s, err)
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("parse amount %q: negative", s)
	}
	return d, nil
}

// MustParse is Parse for constants and tests.
func MustParse(s string) decimal.Decimal {
	d, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return d
}

// LineTotal returns quantity x unit price without rounding.
func LineTotal(unit decimal.Decimal, quantity int) decimal.Decimal {
	return unit.Mul(decimal.NewFromInt(int64(quantity)))
}

// Sum adds amounts exactly.
func Sum(amounts ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total
}

// Display rounds half away from zero to two places. Only used for output;
// accumulation always happens on the unrounded values.
func Display(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// Format renders an amount with the currency prefix, e.g. "Rs. 99.99".
func Format(d decimal.Decimal) string {
	return Currency + " " + Display(d)
}
