package snapshots

import (
	"time"

	"github.com/shopspring/decimal"
)

// Snapshot is a frozen daily record of one account's portfolio metrics.
// At most one snapshot exists per account per calendar date, and rows
// are never updated after creation.
type Snapshot struct {
	ID               int64           `json:"id"`
	AccountID        int64           `json:"account_id"`
	Date             string          `json:"date"` // YYYY-MM-DD
	TotalValue       decimal.Decimal `json:"total_value"`
	CashBalance      decimal.Decimal `json:"cash_balance"`
	TotalCostBasis   decimal.Decimal `json:"total_cost_basis"`
	RealizedGain     decimal.Decimal `json:"realized_gain"`
	UnrealizedGain   decimal.Decimal `json:"unrealized_gain"`
	TotalDividends   decimal.Decimal `json:"total_dividends"`
	ROIPercent       decimal.Decimal `json:"roi_percentage"`
	DayChange        decimal.Decimal `json:"day_change"`
	DayChangePercent decimal.Decimal `json:"day_change_percent"`
	CreatedAt        time.Time       `json:"created_at"`
}

// RangeStats summarizes the day-over-day return series between two dates
type RangeStats struct {
	AccountID        int64   `json:"account_id"`
	From             string  `json:"from"`
	To               string  `json:"to"`
	Days             int     `json:"days"`
	MeanDailyReturn  float64 `json:"mean_daily_return"`
	DailyVolatility  float64 `json:"daily_volatility"`
	AnnualizedVol    float64 `json:"annualized_volatility"`
	MaxDrawdown      float64 `json:"max_drawdown"`
	HoldingPeriodPct float64 `json:"holding_period_return_pct"`
}
