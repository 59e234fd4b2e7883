package snapshots

import (
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/foliotrack/foliotrack/internal/domain"
	"github.com/foliotrack/foliotrack/internal/events"
	"github.com/foliotrack/foliotrack/internal/modules/performance"
	"github.com/foliotrack/foliotrack/pkg/formulas"
)

// DateFormat is the calendar-date key used for snapshot rows
const DateFormat = "2006-01-02"

// Service generates daily point-in-time snapshots of the performance
// calculator's output and answers time-series questions over them
type Service struct {
	repo    *Repository
	perfSvc *performance.Service
	events  *events.Manager
	log     zerolog.Logger
}

// NewService creates a new snapshot service
func NewService(repo *Repository, perfSvc *performance.Service, eventBus *events.Manager, log zerolog.Logger) *Service {
	return &Service{
		repo:    repo,
		perfSvc: perfSvc,
		events:  eventBus,
		log:     log.With().Str("service", "snapshots").Logger(),
	}
}

// Generate freezes the account's performance as of now for the given
// date. A snapshot already existing for that date is a conflict, never a
// silent overwrite. Day-over-day change is derived against the most
// recent prior snapshot; with no prior snapshot both change fields are 0.
func (s *Service) Generate(accountID int64, asOf time.Time) (*Snapshot, error) {
	date := asOf.Format(DateFormat)

	exists, err := s.repo.ExistsForDate(accountID, date)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, domain.NewConflict("snapshot", "already exists for "+date)
	}

	report, err := s.perfSvc.AccountReport(accountID)
	if err != nil {
		return nil, err
	}

	snapshot := &Snapshot{
		AccountID:      accountID,
		Date:           date,
		TotalValue:     report.TotalPortfolioValue,
		CashBalance:    report.CashBalance,
		TotalCostBasis: report.TotalCostBasis,
		RealizedGain:   report.TotalRealizedGain,
		UnrealizedGain: report.TotalUnrealizedGain,
		TotalDividends: report.TotalDividends,
		ROIPercent:     report.ROIPercent,

		DayChange:        decimal.Zero,
		DayChangePercent: decimal.Zero,
	}

	prior, err := s.repo.GetLatestBefore(accountID, date)
	if err != nil {
		return nil, err
	}
	if prior != nil {
		snapshot.DayChange = domain.RoundMoney(snapshot.TotalValue.Sub(prior.TotalValue))
		snapshot.DayChangePercent = domain.PercentOf(snapshot.DayChange, prior.TotalValue)
	}

	if err := s.repo.Create(snapshot); err != nil {
		return nil, err
	}

	s.log.Info().
		Int64("account_id", accountID).
		Str("date", date).
		Str("total_value", snapshot.TotalValue.String()).
		Msg("Snapshot created")

	s.events.Publish(events.PortfolioTopic(accountID), events.SnapshotCreated, map[string]interface{}{
		"account_id":  accountID,
		"date":        date,
		"total_value": snapshot.TotalValue,
		"day_change":  snapshot.DayChange,
	})

	return snapshot, nil
}

// TimeWeightedReturn computes the holding-period return between the
// snapshots bounding the date range: (end - start) / start * 100, 0 when
// the starting value is 0. This is a simple two-point return, not a
// sub-period-linked TWR.
func (s *Service) TimeWeightedReturn(accountID int64, from, to string) (decimal.Decimal, error) {
	series, err := s.repo.GetRange(accountID, from, to)
	if err != nil {
		return decimal.Zero, err
	}
	if len(series) < 2 {
		return decimal.Zero, domain.NewValidation("range", "needs at least two snapshots")
	}

	start := series[0].TotalValue
	end := series[len(series)-1].TotalValue
	return domain.PercentOf(end.Sub(start), start), nil
}

// Stats summarizes the day-over-day return series between two dates:
// mean and dispersion of daily returns plus the maximum drawdown of the
// value series.
func (s *Service) Stats(accountID int64, from, to string) (RangeStats, error) {
	series, err := s.repo.GetRange(accountID, from, to)
	if err != nil {
		return RangeStats{}, err
	}

	values := make([]float64, len(series))
	for i, snap := range series {
		values[i] = snap.TotalValue.InexactFloat64()
	}

	returns := formulas.CalculateReturns(values)

	stats := RangeStats{
		AccountID:       accountID,
		From:            from,
		To:              to,
		Days:            len(series),
		MeanDailyReturn: formulas.Mean(returns),
		DailyVolatility: formulas.StdDev(returns),
		AnnualizedVol:   formulas.AnnualizedVolatility(returns),
		MaxDrawdown:     formulas.MaxDrawdown(values),
	}

	if len(series) >= 2 {
		hpr, err := s.TimeWeightedReturn(accountID, from, to)
		if err == nil {
			stats.HoldingPeriodPct = hpr.InexactFloat64()
		}
	}

	return stats, nil
}

// List returns an account's snapshot history, newest first
func (s *Service) List(accountID int64, limit int) ([]Snapshot, error) {
	return s.repo.GetByAccount(accountID, limit)
}
