package transactions

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/foliotrack/foliotrack/internal/database"
	"github.com/foliotrack/foliotrack/internal/domain"
	"github.com/foliotrack/foliotrack/internal/events"
	"github.com/foliotrack/foliotrack/internal/modules/accounts"
	"github.com/foliotrack/foliotrack/internal/modules/holdings"
	"github.com/foliotrack/foliotrack/internal/modules/stocks"
)

// Processor applies BUY/SELL trades. It is the only component that
// mutates account cash and holdings, and it does so atomically: the cash
// update, holding upsert/delete and transaction insert either all commit
// or all roll back.
type Processor struct {
	db          *database.DB
	accountRepo *accounts.Repository
	holdingRepo *holdings.Repository
	stockRepo   *stocks.Repository
	txRepo      *Repository
	valuer      *holdings.Service
	events      *events.Manager
	log         zerolog.Logger
}

// NewProcessor creates a new transaction processor
func NewProcessor(
	db *database.DB,
	accountRepo *accounts.Repository,
	holdingRepo *holdings.Repository,
	stockRepo *stocks.Repository,
	txRepo *Repository,
	valuer *holdings.Service,
	eventBus *events.Manager,
	log zerolog.Logger,
) *Processor {
	return &Processor{
		db:          db,
		accountRepo: accountRepo,
		holdingRepo: holdingRepo,
		stockRepo:   stockRepo,
		txRepo:      txRepo,
		valuer:      valuer,
		events:      eventBus,
		log:         log.With().Str("service", "transactions").Logger(),
	}
}

// outcome is the pure result of applying a trade to the current state,
// computed before anything is persisted.
type outcome struct {
	cashBalance   decimal.Decimal
	holding       *holdings.Holding
	createHolding bool
	deleteHolding bool
	transaction   *Transaction
}

// Process validates and executes a trade request. Validation and
// not-found failures abort before any write; the persistence step runs
// inside a single database transaction.
func (p *Processor) Process(req Request) (*Transaction, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	account, err := p.accountRepo.GetByID(req.AccountID)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, domain.NewNotFound("account", req.AccountID)
	}

	stock, err := p.stockRepo.GetByID(req.StockID)
	if err != nil {
		return nil, err
	}
	if stock == nil {
		return nil, domain.NewNotFound("stock", req.StockID)
	}

	holding, err := p.holdingRepo.GetByAccountAndStock(req.AccountID, req.StockID)
	if err != nil {
		return nil, err
	}

	valueBefore, valueBeforeOK := p.portfolioValue(req.AccountID, account.CashBalance)

	now := time.Now().UTC()
	var result outcome
	switch req.Type {
	case Buy:
		result, err = applyBuy(account, holding, req, now)
	case Sell:
		result, err = applySell(account, holding, req, now)
	}
	if err != nil {
		return nil, err
	}

	if err := p.persist(result); err != nil {
		return nil, err
	}

	p.log.Info().
		Int64("account_id", req.AccountID).
		Int64("stock_id", req.StockID).
		Str("type", string(req.Type)).
		Str("quantity", req.Quantity.String()).
		Str("price", req.PricePerShare.String()).
		Msg("Transaction processed")

	p.notify(req.AccountID, result.cashBalance, valueBefore, valueBeforeOK)

	return result.transaction, nil
}

// applyBuy debits cash and upserts the holding with a weighted-average
// cost recompute.
func applyBuy(account *accounts.Account, holding *holdings.Holding, req Request, now time.Time) (outcome, error) {
	totalCost := domain.RoundMoney(req.PricePerShare.Mul(req.Quantity))

	if account.CashBalance.LessThan(totalCost) {
		return outcome{}, &domain.InsufficientFundsError{Need: totalCost, Have: account.CashBalance}
	}

	result := outcome{
		cashBalance: domain.RoundMoney(account.CashBalance.Sub(totalCost)),
		transaction: newRecord(req, now),
	}

	if holding == nil {
		result.createHolding = true
		result.holding = &holdings.Holding{
			AccountID:        req.AccountID,
			StockID:          req.StockID,
			Quantity:         req.Quantity,
			AverageCostBasis: req.PricePerShare,
			TotalCostBasis:   totalCost,
			RealizedGain:     decimal.Zero,
			FirstPurchasedAt: now,
		}
		return result, nil
	}

	updated := *holding
	updated.Quantity = holding.Quantity.Add(req.Quantity)
	updated.TotalCostBasis = domain.RoundMoney(holding.TotalCostBasis.Add(totalCost))
	// Equivalent to (oldQty*oldAvg + qty*price) / (oldQty+qty) since the
	// total cost basis tracks quantity*average exactly.
	updated.AverageCostBasis = updated.TotalCostBasis.Div(updated.Quantity)
	result.holding = &updated

	return result, nil
}

// applySell books realized gain against the blended average cost,
// reduces the position proportionally and credits cash. A sell that
// exactly exhausts the quantity removes the holding.
func applySell(account *accounts.Account, holding *holdings.Holding, req Request, now time.Time) (outcome, error) {
	if holding == nil {
		return outcome{}, domain.NewNotFound("holding", req.StockID)
	}
	if holding.Quantity.LessThan(req.Quantity) {
		return outcome{}, &domain.InsufficientSharesError{Need: req.Quantity, Have: holding.Quantity}
	}

	proceeds := domain.RoundMoney(req.PricePerShare.Mul(req.Quantity))
	realized := domain.RoundMoney(req.PricePerShare.Sub(holding.AverageCostBasis).Mul(req.Quantity))
	costReduction := domain.RoundMoney(holding.AverageCostBasis.Mul(req.Quantity))

	updated := *holding
	updated.Quantity = holding.Quantity.Sub(req.Quantity)
	updated.RealizedGain = domain.RoundMoney(holding.RealizedGain.Add(realized))
	updated.TotalCostBasis = domain.RoundMoney(holding.TotalCostBasis.Sub(costReduction))

	result := outcome{
		cashBalance: domain.RoundMoney(account.CashBalance.Add(proceeds)),
		holding:     &updated,
		transaction: newRecord(req, now),
	}

	if updated.Quantity.IsZero() {
		result.deleteHolding = true
	}

	return result, nil
}

func newRecord(req Request, now time.Time) *Transaction {
	return &Transaction{
		AccountID:     req.AccountID,
		StockID:       req.StockID,
		Type:          req.Type,
		Quantity:      req.Quantity,
		PricePerShare: req.PricePerShare,
		Commission:    req.Commission,
		ExecutedAt:    now,
	}
}

// persist writes the outcome inside one transaction boundary
func (p *Processor) persist(result outcome) error {
	tx, err := p.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := p.accountRepo.SaveCashBalance(tx, result.transaction.AccountID, result.cashBalance); err != nil {
		return err
	}

	switch {
	case result.createHolding:
		err = p.holdingRepo.Create(tx, result.holding)
	case result.deleteHolding:
		err = p.holdingRepo.Delete(tx, result.holding.ID)
	default:
		err = p.holdingRepo.Update(tx, result.holding)
	}
	if err != nil {
		return err
	}

	if err := p.txRepo.Create(tx, result.transaction); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// portfolioValue returns holdings market value plus cash. The bool is
// false when the holdings summary could not be computed.
func (p *Processor) portfolioValue(accountID int64, cash decimal.Decimal) (decimal.Decimal, bool) {
	summary, err := p.valuer.Summary(accountID)
	if err != nil {
		p.log.Warn().Err(err).Int64("account_id", accountID).Msg("Failed to compute portfolio value")
		return decimal.Zero, false
	}
	return domain.RoundMoney(summary.MarketValue.Add(cash)), true
}

// notify emits the portfolio-change event. Emission is best-effort and
// never fails the already-committed mutation.
func (p *Processor) notify(accountID int64, newCash, valueBefore decimal.Decimal, valueBeforeOK bool) {
	valueAfter, ok := p.portfolioValue(accountID, newCash)
	if !ok {
		return
	}

	data := map[string]interface{}{
		"account_id": accountID,
		"new_value":  valueAfter,
	}
	if valueBeforeOK {
		data["delta"] = valueAfter.Sub(valueBefore)
	}

	p.events.Publish(events.PortfolioTopic(accountID), events.PortfolioChanged, data)
}
