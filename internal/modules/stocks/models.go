package stocks

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/foliotrack/foliotrack/internal/domain"
)

// Stock is reference data shared read-only by the valuation core. The
// current value is pushed in by an external price collaborator and may
// be absent or stale.
type Stock struct {
	ID           int64               `json:"id"`
	Code         string              `json:"code"`
	Name         string              `json:"name"`
	CurrentValue decimal.NullDecimal `json:"current_value"`
	UpdatedAt    time.Time           `json:"updated_at"`
}

// Validate validates stock data and normalizes the code
func (s *Stock) Validate() error {
	code := strings.ToUpper(strings.TrimSpace(s.Code))
	if code == "" {
		return domain.NewValidation("code", "cannot be empty")
	}
	if strings.TrimSpace(s.Name) == "" {
		return domain.NewValidation("name", "cannot be empty")
	}
	if s.CurrentValue.Valid && s.CurrentValue.Decimal.IsNegative() {
		return domain.NewValidation("current_value", "cannot be negative")
	}
	s.Code = code
	return nil
}
