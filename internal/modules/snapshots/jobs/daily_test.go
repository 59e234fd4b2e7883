package jobs

import (
	"database/sql"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/foliotrack/foliotrack/internal/events"
	"github.com/foliotrack/foliotrack/internal/modules/accounts"
	"github.com/foliotrack/foliotrack/internal/modules/dividends"
	"github.com/foliotrack/foliotrack/internal/modules/holdings"
	"github.com/foliotrack/foliotrack/internal/modules/performance"
	"github.com/foliotrack/foliotrack/internal/modules/snapshots"
	"github.com/foliotrack/foliotrack/internal/modules/stocks"
)

func setupJob(t *testing.T) (*DailySnapshot, *accounts.Repository, *snapshots.Service) {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	for _, schema := range []string{
		accounts.Schema, stocks.Schema, holdings.Schema, dividends.Schema, snapshots.Schema,
	} {
		_, err = db.Exec(schema)
		require.NoError(t, err)
	}

	log := zerolog.Nop()
	accountRepo := accounts.NewRepository(db, log)
	stockRepo := stocks.NewRepository(db, log)
	holdingRepo := holdings.NewRepository(db, log)

	holdingSvc := holdings.NewService(holdingRepo, stockRepo, log)
	dividendSvc := dividends.NewService(
		dividends.NewRepository(db, log), holdingRepo, stockRepo, events.NewManager(log), log)
	perfSvc := performance.NewService(accountRepo, holdingSvc, dividendSvc, log)
	snapshotSvc := snapshots.NewService(snapshots.NewRepository(db, log), perfSvc, events.NewManager(log), log)

	return NewDailySnapshot(accountRepo, snapshotSvc, log), accountRepo, snapshotSvc
}

func TestDailySnapshotCoversAllAccounts(t *testing.T) {
	job, accountRepo, snapshotSvc := setupJob(t)

	for _, name := range []string{"First", "Second"} {
		require.NoError(t, accountRepo.Create(&accounts.Account{
			UserID: "user-1", Name: name, CashBalance: decimal.NewFromInt(1000),
		}))
	}

	require.NoError(t, job.Run())

	all, err := accountRepo.GetAll()
	require.NoError(t, err)
	for _, account := range all {
		series, err := snapshotSvc.List(account.ID, 0)
		require.NoError(t, err)
		assert.Len(t, series, 1, "account %d should have one snapshot", account.ID)
	}
}

func TestDailySnapshotSkipsExisting(t *testing.T) {
	job, accountRepo, snapshotSvc := setupJob(t)

	require.NoError(t, accountRepo.Create(&accounts.Account{
		UserID: "user-1", Name: "Main", CashBalance: decimal.NewFromInt(1000),
	}))

	require.NoError(t, job.Run())
	// Rerunning the same day hits the one-per-day constraint and moves on
	require.NoError(t, job.Run())

	all, err := accountRepo.GetAll()
	require.NoError(t, err)
	series, err := snapshotSvc.List(all[0].ID, 0)
	require.NoError(t, err)
	assert.Len(t, series, 1)
}

func TestDailySnapshotNoAccounts(t *testing.T) {
	job, _, _ := setupJob(t)
	assert.NoError(t, job.Run())
}

func TestDailySnapshotName(t *testing.T) {
	job, _, _ := setupJob(t)
	assert.Equal(t, "daily_snapshot", job.Name())
}
