package dividends

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/foliotrack/foliotrack/internal/domain"
	"github.com/foliotrack/foliotrack/internal/events"
	"github.com/foliotrack/foliotrack/internal/modules/holdings"
	"github.com/foliotrack/foliotrack/internal/modules/stocks"
)

// Service handles dividend announcements, the fan-out into per-account
// payments and received-dividend totals
type Service struct {
	repo        *Repository
	holdingRepo *holdings.Repository
	stockRepo   *stocks.Repository
	events      *events.Manager
	log         zerolog.Logger
}

// NewService creates a new dividend service
func NewService(
	repo *Repository,
	holdingRepo *holdings.Repository,
	stockRepo *stocks.Repository,
	eventBus *events.Manager,
	log zerolog.Logger,
) *Service {
	return &Service{
		repo:        repo,
		holdingRepo: holdingRepo,
		stockRepo:   stockRepo,
		events:      eventBus,
		log:         log.With().Str("service", "dividends").Logger(),
	}
}

// Announce records a stock-level dividend and emits the announcement
// event. It does not create payments; ProcessPayments does the fan-out.
func (s *Service) Announce(d *Dividend) error {
	if err := d.Validate(); err != nil {
		return err
	}

	stock, err := s.stockRepo.GetByID(d.StockID)
	if err != nil {
		return err
	}
	if stock == nil {
		return domain.NewNotFound("stock", d.StockID)
	}

	if err := s.repo.CreateDividend(d); err != nil {
		return err
	}

	s.events.Publish(events.DividendTopic, events.DividendAnnounced, map[string]interface{}{
		"dividend_id":      d.ID,
		"stock_id":         d.StockID,
		"amount_per_share": d.AmountPerShare,
		"pay_date":         d.PayDate,
	})

	return nil
}

// ProcessPayments fans a dividend out into one PAID payment per holding
// of the stock, computing total = amountPerShare × quantity held.
// Accounts that already have a payment for this dividend are skipped, so
// repeated invocation is idempotent. Returns the number of payments
// created.
func (s *Service) ProcessPayments(dividendID int64) (int, error) {
	dividend, err := s.repo.GetDividendByID(dividendID)
	if err != nil {
		return 0, err
	}
	if dividend == nil {
		return 0, domain.NewNotFound("dividend", dividendID)
	}

	positions, err := s.holdingRepo.GetByStock(dividend.StockID)
	if err != nil {
		return 0, fmt.Errorf("failed to load holdings for dividend: %w", err)
	}

	created := 0
	for _, h := range positions {
		exists, err := s.repo.PaymentExists(dividendID, h.AccountID)
		if err != nil {
			return created, err
		}
		if exists {
			continue
		}

		payment := &DividendPayment{
			DividendID:  dividendID,
			AccountID:   h.AccountID,
			Quantity:    h.Quantity,
			TotalAmount: domain.RoundMoney(dividend.AmountPerShare.Mul(h.Quantity)),
			Status:      PaymentPaid,
			PaymentDate: dividend.PayDate,
		}
		if err := s.repo.CreatePayment(payment); err != nil {
			return created, err
		}
		created++
	}

	s.log.Info().
		Int64("dividend_id", dividendID).
		Int("payments_created", created).
		Int("holders", len(positions)).
		Msg("Dividend payments processed")

	return created, nil
}

// TotalReceived sums the total amounts of PAID payments for an account,
// optionally scoped to a stock or payment date range
func (s *Service) TotalReceived(accountID int64, filter PaymentFilter) (decimal.Decimal, error) {
	payments, err := s.repo.GetPaymentsByAccount(accountID, filter)
	if err != nil {
		return decimal.Zero, err
	}

	total := decimal.Zero
	for _, p := range payments {
		if p.Status != PaymentPaid {
			continue
		}
		total = total.Add(p.TotalAmount)
	}

	return domain.RoundMoney(total), nil
}

// ListPayments returns the dividend ledger of an account
func (s *Service) ListPayments(accountID int64, filter PaymentFilter) ([]DividendPayment, error) {
	return s.repo.GetPaymentsByAccount(accountID, filter)
}

// CancelPayment cancels a pending payment. Paid payments cannot be
// cancelled.
func (s *Service) CancelPayment(paymentID int64) error {
	payment, err := s.repo.GetPaymentByID(paymentID)
	if err != nil {
		return err
	}
	if payment == nil {
		return domain.NewNotFound("dividend payment", paymentID)
	}
	if payment.Status != PaymentPending {
		return domain.NewConflict("dividend payment", fmt.Sprintf("cannot cancel a %s payment", payment.Status))
	}

	return s.repo.UpdatePaymentStatus(paymentID, PaymentCancelled)
}
