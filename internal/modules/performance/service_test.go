package performance

import (
	"database/sql"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/foliotrack/foliotrack/internal/domain"
	"github.com/foliotrack/foliotrack/internal/events"
	"github.com/foliotrack/foliotrack/internal/modules/accounts"
	"github.com/foliotrack/foliotrack/internal/modules/dividends"
	"github.com/foliotrack/foliotrack/internal/modules/holdings"
	"github.com/foliotrack/foliotrack/internal/modules/stocks"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

type fixture struct {
	db           *sql.DB
	accountRepo  *accounts.Repository
	stockRepo    *stocks.Repository
	holdingRepo  *holdings.Repository
	dividendRepo *dividends.Repository
	service      *Service
}

func setupFixture(t *testing.T) *fixture {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	for _, schema := range []string{accounts.Schema, stocks.Schema, holdings.Schema, dividends.Schema} {
		_, err = db.Exec(schema)
		require.NoError(t, err)
	}

	log := zerolog.Nop()
	f := &fixture{
		db:           db,
		accountRepo:  accounts.NewRepository(db, log),
		stockRepo:    stocks.NewRepository(db, log),
		holdingRepo:  holdings.NewRepository(db, log),
		dividendRepo: dividends.NewRepository(db, log),
	}

	holdingSvc := holdings.NewService(f.holdingRepo, f.stockRepo, log)
	dividendSvc := dividends.NewService(f.dividendRepo, f.holdingRepo, f.stockRepo, events.NewManager(log), log)
	f.service = NewService(f.accountRepo, holdingSvc, dividendSvc, log)

	return f
}

func (f *fixture) seedAccount(t *testing.T, userID, cash string) *accounts.Account {
	t.Helper()
	account := &accounts.Account{UserID: userID, Name: "Main", CashBalance: dec(cash)}
	require.NoError(t, f.accountRepo.Create(account))
	return account
}

func (f *fixture) seedStock(t *testing.T, code, price string) *stocks.Stock {
	t.Helper()
	stock := &stocks.Stock{Code: code, Name: code + " Inc"}
	if price != "" {
		stock.CurrentValue = decimal.NewNullDecimal(dec(price))
	}
	require.NoError(t, f.stockRepo.Create(stock))
	return stock
}

func (f *fixture) seedHolding(t *testing.T, accountID, stockID int64, qty, avgCost, realized string) {
	t.Helper()
	quantity := dec(qty)
	avg := dec(avgCost)
	require.NoError(t, f.holdingRepo.Create(f.db, &holdings.Holding{
		AccountID:        accountID,
		StockID:          stockID,
		Quantity:         quantity,
		AverageCostBasis: avg,
		TotalCostBasis:   quantity.Mul(avg),
		RealizedGain:     dec(realized),
		FirstPurchasedAt: time.Now().UTC(),
	}))
}

func (f *fixture) seedPaidDividend(t *testing.T, accountID, stockID int64, amount string) {
	t.Helper()
	d := &dividends.Dividend{StockID: stockID, AmountPerShare: dec("1"), PayDate: "2024-03-15"}
	require.NoError(t, f.dividendRepo.CreateDividend(d))
	require.NoError(t, f.dividendRepo.CreatePayment(&dividends.DividendPayment{
		DividendID: d.ID, AccountID: accountID, Quantity: dec("1"),
		TotalAmount: dec(amount), Status: dividends.PaymentPaid, PaymentDate: "2024-03-15",
	}))
}

func TestAccountReport(t *testing.T) {
	f := setupFixture(t)
	account := f.seedAccount(t, "user-1", "5000")
	stock := f.seedStock(t, "ACME", "120")

	// 10 shares at avg 100: basis 1000, value 1200, unrealized +200
	f.seedHolding(t, account.ID, stock.ID, "10", "100", "50")
	f.seedPaidDividend(t, account.ID, stock.ID, "25")

	report, err := f.service.AccountReport(account.ID)
	require.NoError(t, err)

	assert.Equal(t, account.ID, report.AccountID)
	assert.True(t, report.TotalPortfolioValue.Equal(dec("6200")), "value = %s", report.TotalPortfolioValue)
	assert.True(t, report.TotalCostBasis.Equal(dec("1000")))
	assert.True(t, report.TotalUnrealizedGain.Equal(dec("200")))
	assert.True(t, report.TotalRealizedGain.Equal(dec("50")))
	assert.True(t, report.TotalDividends.Equal(dec("25")))
	assert.True(t, report.CashBalance.Equal(dec("5000")))
	// (200 + 50 + 25) / 1000 * 100
	assert.True(t, report.ROIPercent.Equal(dec("27.5")), "roi = %s", report.ROIPercent)
}

func TestAccountReportUnknownAccount(t *testing.T) {
	f := setupFixture(t)

	_, err := f.service.AccountReport(999)
	require.Error(t, err)
	assert.True(t, domain.IsNotFound(err), "got %v", err)
}

func TestAccountReportEmptyAccount(t *testing.T) {
	f := setupFixture(t)
	account := f.seedAccount(t, "user-1", "1000")

	report, err := f.service.AccountReport(account.ID)
	require.NoError(t, err)

	assert.True(t, report.TotalPortfolioValue.Equal(dec("1000")), "cash-only portfolio")
	assert.True(t, report.TotalCostBasis.IsZero())
	assert.True(t, report.ROIPercent.IsZero(), "zero basis yields zero ROI")
}

func TestAccountReportSkipsUnpricedHoldings(t *testing.T) {
	f := setupFixture(t)
	account := f.seedAccount(t, "user-1", "0")
	priced := f.seedStock(t, "ACME", "110")
	unpriced := f.seedStock(t, "NOPE", "")

	f.seedHolding(t, account.ID, priced.ID, "10", "100", "0")
	f.seedHolding(t, account.ID, unpriced.ID, "10", "50", "0")

	report, err := f.service.AccountReport(account.ID)
	require.NoError(t, err)

	// Unpriced holding contributes zero market value but full cost basis
	assert.True(t, report.TotalPortfolioValue.Equal(dec("1100")), "value = %s", report.TotalPortfolioValue)
	assert.True(t, report.TotalCostBasis.Equal(dec("1500")), "basis = %s", report.TotalCostBasis)
	assert.True(t, report.TotalUnrealizedGain.Equal(dec("100")), "unrealized = %s", report.TotalUnrealizedGain)
}

func TestUserReportSumsAccounts(t *testing.T) {
	f := setupFixture(t)
	first := f.seedAccount(t, "user-1", "1000")
	second := f.seedAccount(t, "user-1", "2000")
	f.seedAccount(t, "user-2", "9999") // other user, must not count

	stock := f.seedStock(t, "ACME", "120")
	f.seedHolding(t, first.ID, stock.ID, "10", "100", "0")  // basis 1000, value 1200
	f.seedHolding(t, second.ID, stock.ID, "5", "100", "30") // basis 500, value 600

	report, err := f.service.UserReport("user-1")
	require.NoError(t, err)

	assert.Equal(t, "user-1", report.UserID)
	assert.True(t, report.CashBalance.Equal(dec("3000")), "cash = %s", report.CashBalance)
	assert.True(t, report.TotalPortfolioValue.Equal(dec("4800")), "value = %s", report.TotalPortfolioValue)
	assert.True(t, report.TotalCostBasis.Equal(dec("1500")))
	assert.True(t, report.TotalUnrealizedGain.Equal(dec("300")))
	assert.True(t, report.TotalRealizedGain.Equal(dec("30")))
	// ROI recomputed from aggregate totals: 330 / 1500 * 100
	assert.True(t, report.ROIPercent.Equal(dec("22")), "roi = %s", report.ROIPercent)
}

func TestUserReportNoAccounts(t *testing.T) {
	f := setupFixture(t)

	report, err := f.service.UserReport("ghost")
	require.NoError(t, err)

	assert.True(t, report.TotalPortfolioValue.IsZero())
	assert.True(t, report.ROIPercent.IsZero())
}
