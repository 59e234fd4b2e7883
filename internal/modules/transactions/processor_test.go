package transactions

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foliotrack/foliotrack/internal/database"
	"github.com/foliotrack/foliotrack/internal/domain"
	"github.com/foliotrack/foliotrack/internal/events"
	"github.com/foliotrack/foliotrack/internal/modules/accounts"
	"github.com/foliotrack/foliotrack/internal/modules/holdings"
	"github.com/foliotrack/foliotrack/internal/modules/stocks"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

type fixture struct {
	db          *database.DB
	accountRepo *accounts.Repository
	holdingRepo *holdings.Repository
	stockRepo   *stocks.Repository
	txRepo      *Repository
	events      *events.Manager
	processor   *Processor
}

func setupFixture(t *testing.T) *fixture {
	t.Helper()

	db, err := database.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, db.Migrate(accounts.Schema, stocks.Schema, holdings.Schema, Schema))

	log := zerolog.Nop()
	f := &fixture{
		db:          db,
		accountRepo: accounts.NewRepository(db.Conn(), log),
		holdingRepo: holdings.NewRepository(db.Conn(), log),
		stockRepo:   stocks.NewRepository(db.Conn(), log),
		txRepo:      NewRepository(db.Conn(), log),
		events:      events.NewManager(log),
	}
	valuer := holdings.NewService(f.holdingRepo, f.stockRepo, log)
	f.processor = NewProcessor(db, f.accountRepo, f.holdingRepo, f.stockRepo, f.txRepo, valuer, f.events, log)

	return f
}

func (f *fixture) seedAccount(t *testing.T, cash string) *accounts.Account {
	t.Helper()
	account := &accounts.Account{UserID: "user-1", Name: "Main", CashBalance: dec(cash)}
	require.NoError(t, f.accountRepo.Create(account))
	return account
}

func (f *fixture) seedStock(t *testing.T, code, price string) *stocks.Stock {
	t.Helper()
	stock := &stocks.Stock{
		Code:         code,
		Name:         code + " Inc",
		CurrentValue: decimal.NewNullDecimal(dec(price)),
	}
	require.NoError(t, f.stockRepo.Create(stock))
	return stock
}

func TestBuyCreatesHolding(t *testing.T) {
	f := setupFixture(t)
	account := f.seedAccount(t, "10000")
	stock := f.seedStock(t, "ACME", "100")

	tx, err := f.processor.Process(Request{
		AccountID:     account.ID,
		StockID:       stock.ID,
		Type:          Buy,
		Quantity:      dec("10"),
		PricePerShare: dec("100"),
	})
	require.NoError(t, err)
	assert.Equal(t, Buy, tx.Type)
	assert.NotZero(t, tx.ID)

	updated, err := f.accountRepo.GetByID(account.ID)
	require.NoError(t, err)
	assert.True(t, updated.CashBalance.Equal(dec("9000")), "cash = %s", updated.CashBalance)

	h, err := f.holdingRepo.GetByAccountAndStock(account.ID, stock.ID)
	require.NoError(t, err)
	require.NotNil(t, h)
	assert.True(t, h.Quantity.Equal(dec("10")))
	assert.True(t, h.AverageCostBasis.Equal(dec("100")))
	assert.True(t, h.TotalCostBasis.Equal(dec("1000")))
	assert.True(t, h.RealizedGain.IsZero())
	assert.False(t, h.FirstPurchasedAt.IsZero())
}

func TestBuyRecomputesWeightedAverage(t *testing.T) {
	f := setupFixture(t)
	account := f.seedAccount(t, "10000")
	stock := f.seedStock(t, "ACME", "100")

	for _, price := range []string{"100", "120"} {
		_, err := f.processor.Process(Request{
			AccountID:     account.ID,
			StockID:       stock.ID,
			Type:          Buy,
			Quantity:      dec("10"),
			PricePerShare: dec(price),
		})
		require.NoError(t, err)
	}

	h, err := f.holdingRepo.GetByAccountAndStock(account.ID, stock.ID)
	require.NoError(t, err)
	require.NotNil(t, h)
	assert.True(t, h.Quantity.Equal(dec("20")), "quantity = %s", h.Quantity)
	assert.True(t, h.AverageCostBasis.Equal(dec("110")), "avg cost = %s", h.AverageCostBasis)
	assert.True(t, h.TotalCostBasis.Equal(dec("2200")), "total cost = %s", h.TotalCostBasis)

	updated, err := f.accountRepo.GetByID(account.ID)
	require.NoError(t, err)
	assert.True(t, updated.CashBalance.Equal(dec("7800")), "cash = %s", updated.CashBalance)
}

func TestBuyInsufficientFundsLeavesStateUntouched(t *testing.T) {
	f := setupFixture(t)
	account := f.seedAccount(t, "500")
	stock := f.seedStock(t, "ACME", "100")

	_, err := f.processor.Process(Request{
		AccountID:     account.ID,
		StockID:       stock.ID,
		Type:          Buy,
		Quantity:      dec("10"),
		PricePerShare: dec("100"),
	})
	require.Error(t, err)
	assert.True(t, domain.IsInsufficient(err), "got %v", err)

	updated, err := f.accountRepo.GetByID(account.ID)
	require.NoError(t, err)
	assert.True(t, updated.CashBalance.Equal(dec("500")), "cash must be unchanged")

	h, err := f.holdingRepo.GetByAccountAndStock(account.ID, stock.ID)
	require.NoError(t, err)
	assert.Nil(t, h)

	history, err := f.txRepo.GetByAccount(account.ID, 0)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestBuyExactBalanceSucceeds(t *testing.T) {
	f := setupFixture(t)
	account := f.seedAccount(t, "1000")
	stock := f.seedStock(t, "ACME", "100")

	_, err := f.processor.Process(Request{
		AccountID:     account.ID,
		StockID:       stock.ID,
		Type:          Buy,
		Quantity:      dec("10"),
		PricePerShare: dec("100"),
	})
	require.NoError(t, err)

	updated, err := f.accountRepo.GetByID(account.ID)
	require.NoError(t, err)
	assert.True(t, updated.CashBalance.IsZero(), "cash = %s", updated.CashBalance)
}

func TestSellRealizesGainAgainstAverageCost(t *testing.T) {
	f := setupFixture(t)
	account := f.seedAccount(t, "10000")
	stock := f.seedStock(t, "ACME", "130")

	// 10 @ 100 and 10 @ 120 blend to an average cost of 110
	for _, price := range []string{"100", "120"} {
		_, err := f.processor.Process(Request{
			AccountID:     account.ID,
			StockID:       stock.ID,
			Type:          Buy,
			Quantity:      dec("10"),
			PricePerShare: dec(price),
		})
		require.NoError(t, err)
	}

	_, err := f.processor.Process(Request{
		AccountID:     account.ID,
		StockID:       stock.ID,
		Type:          Sell,
		Quantity:      dec("5"),
		PricePerShare: dec("130"),
	})
	require.NoError(t, err)

	h, err := f.holdingRepo.GetByAccountAndStock(account.ID, stock.ID)
	require.NoError(t, err)
	require.NotNil(t, h)
	assert.True(t, h.Quantity.Equal(dec("15")), "quantity = %s", h.Quantity)
	assert.True(t, h.AverageCostBasis.Equal(dec("110")), "avg cost must not change on sell")
	assert.True(t, h.TotalCostBasis.Equal(dec("1650")), "total cost = %s", h.TotalCostBasis)
	assert.True(t, h.RealizedGain.Equal(dec("100")), "realized = %s", h.RealizedGain)

	updated, err := f.accountRepo.GetByID(account.ID)
	require.NoError(t, err)
	// 10000 - 1000 - 1200 + 650
	assert.True(t, updated.CashBalance.Equal(dec("8450")), "cash = %s", updated.CashBalance)
}

func TestSellEntirePositionDeletesHolding(t *testing.T) {
	f := setupFixture(t)
	account := f.seedAccount(t, "10000")
	stock := f.seedStock(t, "ACME", "150")

	_, err := f.processor.Process(Request{
		AccountID:     account.ID,
		StockID:       stock.ID,
		Type:          Buy,
		Quantity:      dec("10"),
		PricePerShare: dec("100"),
	})
	require.NoError(t, err)

	_, err = f.processor.Process(Request{
		AccountID:     account.ID,
		StockID:       stock.ID,
		Type:          Sell,
		Quantity:      dec("10"),
		PricePerShare: dec("150"),
	})
	require.NoError(t, err)

	h, err := f.holdingRepo.GetByAccountAndStock(account.ID, stock.ID)
	require.NoError(t, err)
	assert.Nil(t, h, "fully liquidated holding must be removed")

	updated, err := f.accountRepo.GetByID(account.ID)
	require.NoError(t, err)
	assert.True(t, updated.CashBalance.Equal(dec("10500")), "cash = %s", updated.CashBalance)
}

func TestSellWithoutHolding(t *testing.T) {
	f := setupFixture(t)
	account := f.seedAccount(t, "10000")
	stock := f.seedStock(t, "ACME", "100")

	_, err := f.processor.Process(Request{
		AccountID:     account.ID,
		StockID:       stock.ID,
		Type:          Sell,
		Quantity:      dec("1"),
		PricePerShare: dec("100"),
	})
	require.Error(t, err)
	assert.True(t, domain.IsNotFound(err), "got %v", err)
}

func TestSellMoreThanHeld(t *testing.T) {
	f := setupFixture(t)
	account := f.seedAccount(t, "10000")
	stock := f.seedStock(t, "ACME", "100")

	_, err := f.processor.Process(Request{
		AccountID:     account.ID,
		StockID:       stock.ID,
		Type:          Buy,
		Quantity:      dec("5"),
		PricePerShare: dec("100"),
	})
	require.NoError(t, err)

	_, err = f.processor.Process(Request{
		AccountID:     account.ID,
		StockID:       stock.ID,
		Type:          Sell,
		Quantity:      dec("6"),
		PricePerShare: dec("100"),
	})
	require.Error(t, err)
	assert.True(t, domain.IsInsufficient(err), "got %v", err)

	h, err := f.holdingRepo.GetByAccountAndStock(account.ID, stock.ID)
	require.NoError(t, err)
	require.NotNil(t, h)
	assert.True(t, h.Quantity.Equal(dec("5")), "quantity must be unchanged")
}

func TestProcessUnknownReferences(t *testing.T) {
	f := setupFixture(t)
	account := f.seedAccount(t, "10000")
	stock := f.seedStock(t, "ACME", "100")

	_, err := f.processor.Process(Request{
		AccountID:     9999,
		StockID:       stock.ID,
		Type:          Buy,
		Quantity:      dec("1"),
		PricePerShare: dec("100"),
	})
	assert.True(t, domain.IsNotFound(err), "unknown account: got %v", err)

	_, err = f.processor.Process(Request{
		AccountID:     account.ID,
		StockID:       9999,
		Type:          Buy,
		Quantity:      dec("1"),
		PricePerShare: dec("100"),
	})
	assert.True(t, domain.IsNotFound(err), "unknown stock: got %v", err)
}

func TestRequestValidation(t *testing.T) {
	tests := []struct {
		name string
		req  Request
	}{
		{"bad type", Request{Type: "HOLD", Quantity: dec("1"), PricePerShare: dec("1")}},
		{"zero quantity", Request{Type: Buy, Quantity: dec("0"), PricePerShare: dec("1")}},
		{"negative quantity", Request{Type: Buy, Quantity: dec("-1"), PricePerShare: dec("1")}},
		{"zero price", Request{Type: Sell, Quantity: dec("1"), PricePerShare: dec("0")}},
		{"negative commission", Request{Type: Buy, Quantity: dec("1"), PricePerShare: dec("1"), Commission: dec("-1")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			require.Error(t, err)
			assert.True(t, domain.IsValidation(err), "got %v", err)
		})
	}
}

func TestProcessRecordsTransactionHistory(t *testing.T) {
	f := setupFixture(t)
	account := f.seedAccount(t, "10000")
	stock := f.seedStock(t, "ACME", "100")

	_, err := f.processor.Process(Request{
		AccountID:     account.ID,
		StockID:       stock.ID,
		Type:          Buy,
		Quantity:      dec("10"),
		PricePerShare: dec("100"),
		Commission:    dec("2.50"),
	})
	require.NoError(t, err)

	history, err := f.txRepo.GetByAccount(account.ID, 0)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, Buy, history[0].Type)
	assert.True(t, history[0].Quantity.Equal(dec("10")))
	assert.True(t, history[0].Commission.Equal(dec("2.50")))
	assert.False(t, history[0].ExecutedAt.IsZero())
}

func TestProcessPublishesPortfolioChange(t *testing.T) {
	f := setupFixture(t)
	account := f.seedAccount(t, "10000")
	stock := f.seedStock(t, "ACME", "100")

	ch, cancel := f.events.Subscribe(10)
	defer cancel()

	_, err := f.processor.Process(Request{
		AccountID:     account.ID,
		StockID:       stock.ID,
		Type:          Buy,
		Quantity:      dec("10"),
		PricePerShare: dec("100"),
	})
	require.NoError(t, err)

	select {
	case event := <-ch:
		assert.Equal(t, events.PortfolioTopic(account.ID), event.Topic)
		assert.Equal(t, events.PortfolioChanged, event.Type)
		assert.Equal(t, account.ID, event.Data["account_id"])
	case <-time.After(time.Second):
		t.Fatal("expected portfolio change event")
	}
}
