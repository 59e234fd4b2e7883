package holdings

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/foliotrack/foliotrack/internal/domain"
)

// PriceLookup resolves the current price for a stock. Implemented by the
// stocks repository; an error means the price is unavailable.
type PriceLookup interface {
	CurrentPrice(stockID int64) (decimal.Decimal, error)
}

// Service aggregates holding valuations for an account
type Service struct {
	repo   *Repository
	prices PriceLookup
	log    zerolog.Logger
}

// NewService creates a new holdings service
func NewService(repo *Repository, prices PriceLookup, log zerolog.Logger) *Service {
	return &Service{
		repo:   repo,
		prices: prices,
		log:    log.With().Str("service", "holdings").Logger(),
	}
}

// Summary reduces all holdings of an account to portfolio totals.
// Aggregation is fail-soft per holding: a failed price lookup contributes
// zero to market value and unrealized gain and is recorded in Skipped,
// so one bad data point never aborts a whole-account report. Stored
// figures (cost basis, realized gain) are always summed.
func (s *Service) Summary(accountID int64) (Summary, error) {
	positions, err := s.repo.GetByAccount(accountID)
	if err != nil {
		return Summary{}, fmt.Errorf("failed to load holdings: %w", err)
	}

	summary := Summary{
		MarketValue:    decimal.Zero,
		CostBasis:      decimal.Zero,
		UnrealizedGain: decimal.Zero,
		RealizedGain:   decimal.Zero,
	}

	for _, h := range positions {
		summary.CostBasis = summary.CostBasis.Add(h.TotalCostBasis)
		summary.RealizedGain = summary.RealizedGain.Add(h.RealizedGain)

		price, err := s.prices.CurrentPrice(h.StockID)
		if err != nil {
			s.log.Warn().
				Err(err).
				Int64("account_id", accountID).
				Int64("stock_id", h.StockID).
				Msg("Price lookup failed, holding skipped in valuation")
			summary.Skipped = append(summary.Skipped, h.StockID)
			continue
		}

		v := Valuate(h, price)
		summary.MarketValue = summary.MarketValue.Add(v.CurrentValue)
		summary.UnrealizedGain = summary.UnrealizedGain.Add(v.UnrealizedGain)
	}

	summary.MarketValue = domain.RoundMoney(summary.MarketValue)
	summary.CostBasis = domain.RoundMoney(summary.CostBasis)
	summary.UnrealizedGain = domain.RoundMoney(summary.UnrealizedGain)
	summary.RealizedGain = domain.RoundMoney(summary.RealizedGain)

	return summary, nil
}

// ValuedHoldings returns each holding of an account with its market
// valuation attached. Holdings without a price are flagged rather than
// omitted.
func (s *Service) ValuedHoldings(accountID int64) ([]ValuedHolding, error) {
	positions, err := s.repo.GetByAccount(accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to load holdings: %w", err)
	}

	valued := make([]ValuedHolding, 0, len(positions))
	for _, h := range positions {
		vh := ValuedHolding{Holding: h}

		price, err := s.prices.CurrentPrice(h.StockID)
		if err == nil {
			vh.Valuation = Valuate(h, price)
			vh.PriceAvailable = true
		}

		valued = append(valued, vh)
	}

	return valued, nil
}
