package holdings

import (
	"time"

	"github.com/shopspring/decimal"
)

// Holding is an account's current position in one stock: at most one
// holding exists per (account, stock) pair. Cost basis is a single
// blended average across all purchases, not per-lot.
type Holding struct {
	ID               int64           `json:"id"`
	AccountID        int64           `json:"account_id"`
	StockID          int64           `json:"stock_id"`
	Quantity         decimal.Decimal `json:"quantity"`
	AverageCostBasis decimal.Decimal `json:"average_cost_basis"`
	TotalCostBasis   decimal.Decimal `json:"total_cost_basis"`
	RealizedGain     decimal.Decimal `json:"realized_gain"`
	FirstPurchasedAt time.Time       `json:"first_purchased_at"`
}

// Valuation is the market view of one holding against a live price
type Valuation struct {
	CurrentValue          decimal.Decimal `json:"current_value"`
	UnrealizedGain        decimal.Decimal `json:"unrealized_gain"`
	UnrealizedGainPercent decimal.Decimal `json:"unrealized_gain_percent"`
}

// ValuedHolding pairs a holding with its valuation for API responses
type ValuedHolding struct {
	Holding
	Valuation
	StockCode      string `json:"stock_code,omitempty"`
	PriceAvailable bool   `json:"price_available"`
}

// Summary aggregates valuation across all holdings of an account.
// Skipped lists the stock IDs whose price lookup failed; those holdings
// contributed zero to market value and unrealized gain.
type Summary struct {
	MarketValue    decimal.Decimal `json:"total_market_value"`
	CostBasis      decimal.Decimal `json:"total_cost_basis"`
	UnrealizedGain decimal.Decimal `json:"total_unrealized_gain"`
	RealizedGain   decimal.Decimal `json:"total_realized_gain"`
	Skipped        []int64         `json:"skipped_stock_ids,omitempty"`
}
