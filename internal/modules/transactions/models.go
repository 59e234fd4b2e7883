package transactions

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/foliotrack/foliotrack/internal/domain"
)

// Type is the trade direction
type Type string

const (
	Buy  Type = "BUY"
	Sell Type = "SELL"
)

// Transaction is the immutable record of one executed trade. It is never
// mutated by the valuation core.
type Transaction struct {
	ID            int64           `json:"id"`
	AccountID     int64           `json:"account_id"`
	StockID       int64           `json:"stock_id"`
	Type          Type            `json:"type"`
	Quantity      decimal.Decimal `json:"quantity"`
	PricePerShare decimal.Decimal `json:"price_per_share"`
	Commission    decimal.Decimal `json:"commission"`
	ExecutedAt    time.Time       `json:"executed_at"`
}

// Request is the input to the transaction processor
type Request struct {
	AccountID     int64           `json:"account_id"`
	StockID       int64           `json:"stock_id"`
	Type          Type            `json:"type"`
	Quantity      decimal.Decimal `json:"quantity"`
	PricePerShare decimal.Decimal `json:"price_per_share"`
	Commission    decimal.Decimal `json:"commission"`
}

// Validate validates the trade request
func (r *Request) Validate() error {
	if r.Type != Buy && r.Type != Sell {
		return domain.NewValidation("type", "must be BUY or SELL")
	}
	if !r.Quantity.IsPositive() {
		return domain.NewValidation("quantity", "must be positive")
	}
	if !r.PricePerShare.IsPositive() {
		return domain.NewValidation("price_per_share", "must be positive")
	}
	if r.Commission.IsNegative() {
		return domain.NewValidation("commission", "cannot be negative")
	}
	return nil
}
