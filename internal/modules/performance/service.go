package performance

import (
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/foliotrack/foliotrack/internal/domain"
	"github.com/foliotrack/foliotrack/internal/modules/accounts"
	"github.com/foliotrack/foliotrack/internal/modules/dividends"
	"github.com/foliotrack/foliotrack/internal/modules/holdings"
)

// Service combines holding aggregation, dividend totals and cash balance
// into performance reports
type Service struct {
	accountRepo *accounts.Repository
	holdingSvc  *holdings.Service
	dividendSvc *dividends.Service
	log         zerolog.Logger
}

// NewService creates a new performance service
func NewService(
	accountRepo *accounts.Repository,
	holdingSvc *holdings.Service,
	dividendSvc *dividends.Service,
	log zerolog.Logger,
) *Service {
	return &Service{
		accountRepo: accountRepo,
		holdingSvc:  holdingSvc,
		dividendSvc: dividendSvc,
		log:         log.With().Str("service", "performance").Logger(),
	}
}

// AccountReport computes the performance report for one account.
// Dividend totals are fail-soft: an error there degrades to zero rather
// than aborting the report. Total return is unrealized + realized +
// dividends; ROI is total return over cost basis, 0 at zero basis.
func (s *Service) AccountReport(accountID int64) (Report, error) {
	account, err := s.accountRepo.GetByID(accountID)
	if err != nil {
		return Report{}, err
	}
	if account == nil {
		return Report{}, domain.NewNotFound("account", accountID)
	}

	summary, err := s.holdingSvc.Summary(accountID)
	if err != nil {
		return Report{}, err
	}

	dividendTotal, err := s.dividendSvc.TotalReceived(accountID, dividends.PaymentFilter{})
	if err != nil {
		s.log.Warn().Err(err).Int64("account_id", accountID).Msg("Dividend total failed, using 0")
		dividendTotal = decimal.Zero
	}

	totalReturn := summary.UnrealizedGain.Add(summary.RealizedGain).Add(dividendTotal)

	return Report{
		AccountID:           accountID,
		TotalPortfolioValue: domain.RoundMoney(summary.MarketValue.Add(account.CashBalance)),
		TotalCostBasis:      summary.CostBasis,
		TotalRealizedGain:   summary.RealizedGain,
		TotalUnrealizedGain: summary.UnrealizedGain,
		TotalDividends:      dividendTotal,
		CashBalance:         account.CashBalance,
		ROIPercent:          domain.PercentOf(totalReturn, summary.CostBasis),
	}, nil
}

// UserReport sums the reports of all of a user's accounts field by field
// and recomputes ROI from the aggregated totals rather than averaging
// per-account ROIs.
func (s *Service) UserReport(userID string) (Report, error) {
	userAccounts, err := s.accountRepo.GetByUserID(userID)
	if err != nil {
		return Report{}, err
	}

	report := Report{
		UserID:              userID,
		TotalPortfolioValue: decimal.Zero,
		TotalCostBasis:      decimal.Zero,
		TotalRealizedGain:   decimal.Zero,
		TotalUnrealizedGain: decimal.Zero,
		TotalDividends:      decimal.Zero,
		CashBalance:         decimal.Zero,
		ROIPercent:          decimal.Zero,
	}

	for _, account := range userAccounts {
		r, err := s.AccountReport(account.ID)
		if err != nil {
			return Report{}, err
		}

		report.TotalPortfolioValue = report.TotalPortfolioValue.Add(r.TotalPortfolioValue)
		report.TotalCostBasis = report.TotalCostBasis.Add(r.TotalCostBasis)
		report.TotalRealizedGain = report.TotalRealizedGain.Add(r.TotalRealizedGain)
		report.TotalUnrealizedGain = report.TotalUnrealizedGain.Add(r.TotalUnrealizedGain)
		report.TotalDividends = report.TotalDividends.Add(r.TotalDividends)
		report.CashBalance = report.CashBalance.Add(r.CashBalance)
	}

	totalReturn := report.TotalUnrealizedGain.
		Add(report.TotalRealizedGain).
		Add(report.TotalDividends)
	report.ROIPercent = domain.PercentOf(totalReturn, report.TotalCostBasis)

	return report, nil
}
