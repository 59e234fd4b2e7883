package holdings

import (
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/foliotrack/foliotrack/internal/modules/accounts"
	"github.com/foliotrack/foliotrack/internal/modules/stocks"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	for _, schema := range []string{accounts.Schema, stocks.Schema, Schema} {
		_, err = db.Exec(schema)
		require.NoError(t, err)
	}

	return db
}

// stubPrices resolves prices from a fixed map; missing stocks error out
// the way the stocks repository does.
type stubPrices struct {
	prices map[int64]decimal.Decimal
}

func (s *stubPrices) CurrentPrice(stockID int64) (decimal.Decimal, error) {
	price, ok := s.prices[stockID]
	if !ok {
		return decimal.Zero, fmt.Errorf("stock %d: %w", stockID, stocks.ErrPriceUnavailable)
	}
	return price, nil
}

func seedHolding(t *testing.T, db *sql.DB, repo *Repository, accountID, stockID int64, qty, avgCost string) *Holding {
	t.Helper()

	quantity := decimal.RequireFromString(qty)
	avg := decimal.RequireFromString(avgCost)
	h := &Holding{
		AccountID:        accountID,
		StockID:          stockID,
		Quantity:         quantity,
		AverageCostBasis: avg,
		TotalCostBasis:   quantity.Mul(avg),
		RealizedGain:     decimal.Zero,
		FirstPurchasedAt: time.Now().UTC(),
	}
	require.NoError(t, repo.Create(db, h))
	return h
}

func TestSummaryAggregatesAcrossHoldings(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db, zerolog.Nop())

	seedHolding(t, db, repo, 1, 101, "10", "100") // basis 1000
	seedHolding(t, db, repo, 1, 102, "5", "200")  // basis 1000

	prices := &stubPrices{prices: map[int64]decimal.Decimal{
		101: decimal.RequireFromString("120"), // value 1200, gain +200
		102: decimal.RequireFromString("180"), // value 900, gain -100
	}}
	svc := NewService(repo, prices, zerolog.Nop())

	summary, err := svc.Summary(1)
	require.NoError(t, err)

	assert.True(t, summary.MarketValue.Equal(dec("2100")), "market value = %s", summary.MarketValue)
	assert.True(t, summary.CostBasis.Equal(dec("2000")), "cost basis = %s", summary.CostBasis)
	assert.True(t, summary.UnrealizedGain.Equal(dec("100")), "unrealized = %s", summary.UnrealizedGain)
	assert.Empty(t, summary.Skipped)
}

func TestSummarySkipsHoldingsWithoutPrice(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db, zerolog.Nop())

	seedHolding(t, db, repo, 1, 101, "10", "100")
	seedHolding(t, db, repo, 1, 102, "5", "200") // no price available

	prices := &stubPrices{prices: map[int64]decimal.Decimal{
		101: decimal.RequireFromString("110"),
	}}
	svc := NewService(repo, prices, zerolog.Nop())

	summary, err := svc.Summary(1)
	require.NoError(t, err)

	// Valued holding contributes; skipped one still counts toward stored figures
	assert.True(t, summary.MarketValue.Equal(dec("1100")), "market value = %s", summary.MarketValue)
	assert.True(t, summary.CostBasis.Equal(dec("2000")), "cost basis = %s", summary.CostBasis)
	assert.True(t, summary.UnrealizedGain.Equal(dec("100")), "unrealized = %s", summary.UnrealizedGain)
	assert.Equal(t, []int64{102}, summary.Skipped)
}

func TestSummaryEmptyAccount(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db, zerolog.Nop())
	svc := NewService(repo, &stubPrices{}, zerolog.Nop())

	summary, err := svc.Summary(99)
	require.NoError(t, err)

	assert.True(t, summary.MarketValue.IsZero())
	assert.True(t, summary.CostBasis.IsZero())
	assert.Empty(t, summary.Skipped)
}

func TestValuedHoldingsFlagsMissingPrices(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db, zerolog.Nop())

	seedHolding(t, db, repo, 1, 101, "10", "100")
	seedHolding(t, db, repo, 1, 102, "5", "200")

	prices := &stubPrices{prices: map[int64]decimal.Decimal{
		101: decimal.RequireFromString("150"),
	}}
	svc := NewService(repo, prices, zerolog.Nop())

	valued, err := svc.ValuedHoldings(1)
	require.NoError(t, err)
	require.Len(t, valued, 2)

	assert.True(t, valued[0].PriceAvailable)
	assert.True(t, valued[0].CurrentValue.Equal(dec("1500")))

	assert.False(t, valued[1].PriceAvailable)
	assert.True(t, valued[1].CurrentValue.IsZero())
}

func TestRepositoryUniquePerAccountAndStock(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db, zerolog.Nop())

	seedHolding(t, db, repo, 1, 101, "10", "100")

	dup := &Holding{
		AccountID:        1,
		StockID:          101,
		Quantity:         dec("5"),
		AverageCostBasis: dec("90"),
		TotalCostBasis:   dec("450"),
		RealizedGain:     decimal.Zero,
		FirstPurchasedAt: time.Now().UTC(),
	}
	assert.Error(t, repo.Create(db, dup), "second holding for same (account, stock) must fail")
}

func TestRepositoryGetByAccountAndStockAbsent(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db, zerolog.Nop())

	h, err := repo.GetByAccountAndStock(1, 999)
	require.NoError(t, err)
	assert.Nil(t, h)
}
