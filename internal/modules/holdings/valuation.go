package holdings

import (
	"github.com/shopspring/decimal"

	"github.com/foliotrack/foliotrack/internal/domain"
)

// Valuate computes the market view of a holding against a live price.
// A negative price is treated as no price, yielding a zero current value
// rather than an error. The gain percent is 0 when the cost basis is 0,
// so a zero-basis holding never causes a division fault.
func Valuate(h Holding, price decimal.Decimal) Valuation {
	if price.IsNegative() {
		price = decimal.Zero
	}

	currentValue := domain.RoundMoney(h.Quantity.Mul(price))
	unrealizedGain := domain.RoundMoney(currentValue.Sub(h.TotalCostBasis))

	return Valuation{
		CurrentValue:          currentValue,
		UnrealizedGain:        unrealizedGain,
		UnrealizedGainPercent: domain.PercentOf(unrealizedGain, h.TotalCostBasis),
	}
}
