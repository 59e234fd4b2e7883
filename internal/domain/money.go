package domain

import "github.com/shopspring/decimal"

// Monetary amounts carry 2 decimal places, percentages 4. Rounding is
// half-up via decimal.Round.
const (
	MoneyScale   = 2
	PercentScale = 4
)

var hundred = decimal.NewFromInt(100)

// RoundMoney rounds a currency amount to 2 decimal places
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(MoneyScale)
}

// RoundPercent rounds a percentage to 4 decimal places
func RoundPercent(d decimal.Decimal) decimal.Decimal {
	return d.Round(PercentScale)
}

// PercentOf returns part / whole * 100 rounded to percent scale.
// A zero whole yields 0 rather than a division fault.
func PercentOf(part, whole decimal.Decimal) decimal.Decimal {
	if whole.IsZero() {
		return decimal.Zero
	}
	return RoundPercent(part.Div(whole).Mul(hundred))
}
