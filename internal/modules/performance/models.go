package performance

import "github.com/shopspring/decimal"

// Report is the combined performance view of one account (or, for user
// reports, the field-wise sum over all of a user's accounts with ROI
// recomputed from the aggregate totals).
type Report struct {
	AccountID           int64           `json:"account_id,omitempty"`
	UserID              string          `json:"user_id,omitempty"`
	TotalPortfolioValue decimal.Decimal `json:"total_portfolio_value"`
	TotalCostBasis      decimal.Decimal `json:"total_cost_basis"`
	TotalRealizedGain   decimal.Decimal `json:"total_realized_gain"`
	TotalUnrealizedGain decimal.Decimal `json:"total_unrealized_gain"`
	TotalDividends      decimal.Decimal `json:"total_dividends"`
	CashBalance         decimal.Decimal `json:"cash_balance"`
	ROIPercent          decimal.Decimal `json:"roi_percentage"`
}
