package dividends

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/foliotrack/foliotrack/internal/domain"
)

// Dividend is a stock-level announcement: an amount per share payable on
// a pay date. One dividend fans out to many per-account payments.
type Dividend struct {
	ID             int64           `json:"id"`
	StockID        int64           `json:"stock_id"`
	AmountPerShare decimal.Decimal `json:"amount_per_share"`
	PayDate        string          `json:"pay_date"` // YYYY-MM-DD
	CreatedAt      time.Time       `json:"created_at"`
}

// Validate validates dividend data
func (d *Dividend) Validate() error {
	if d.StockID <= 0 {
		return domain.NewValidation("stock_id", "must be set")
	}
	if !d.AmountPerShare.IsPositive() {
		return domain.NewValidation("amount_per_share", "must be positive")
	}
	if _, err := time.Parse("2006-01-02", d.PayDate); err != nil {
		return domain.NewValidation("pay_date", "must be YYYY-MM-DD")
	}
	return nil
}

// PaymentStatus is the lifecycle state of a dividend payment
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "PENDING"
	PaymentPaid      PaymentStatus = "PAID"
	PaymentCancelled PaymentStatus = "CANCELLED"
)

// DividendPayment is the per-account realization of a dividend, carrying
// the share quantity held on the pay date and the computed total. At
// most one payment exists per (account, dividend) pair.
type DividendPayment struct {
	ID          int64           `json:"id"`
	DividendID  int64           `json:"dividend_id"`
	AccountID   int64           `json:"account_id"`
	Quantity    decimal.Decimal `json:"quantity"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	Status      PaymentStatus   `json:"status"`
	PaymentDate string          `json:"payment_date"` // YYYY-MM-DD
	CreatedAt   time.Time       `json:"created_at"`
}

// PaymentFilter narrows payment queries. Zero values mean no filter.
type PaymentFilter struct {
	StockID int64
	From    string // YYYY-MM-DD inclusive
	To      string // YYYY-MM-DD inclusive
}
