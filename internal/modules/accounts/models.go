package accounts

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/foliotrack/foliotrack/internal/domain"
)

// Account owns a cash balance and a set of holdings, transactions and
// snapshots. Cash is mutated only by the transaction processor.
type Account struct {
	ID          int64           `json:"id"`
	UserID      string          `json:"user_id"`
	Name        string          `json:"name"`
	CashBalance decimal.Decimal `json:"cash_balance"`
	CreatedAt   time.Time       `json:"created_at"`
}

// Validate validates account data
func (a *Account) Validate() error {
	if strings.TrimSpace(a.UserID) == "" {
		return domain.NewValidation("user_id", "cannot be empty")
	}
	if strings.TrimSpace(a.Name) == "" {
		return domain.NewValidation("name", "cannot be empty")
	}
	if a.CashBalance.IsNegative() {
		return domain.NewValidation("cash_balance", "cannot be negative")
	}
	return nil
}
