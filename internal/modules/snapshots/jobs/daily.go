package jobs

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/foliotrack/foliotrack/internal/domain"
	"github.com/foliotrack/foliotrack/internal/modules/accounts"
	"github.com/foliotrack/foliotrack/internal/modules/snapshots"
)

// DailySnapshot generates today's snapshot for every account. A snapshot
// that already exists (manual generation earlier in the day) is skipped;
// other per-account failures are logged and the job moves on.
type DailySnapshot struct {
	accountRepo *accounts.Repository
	snapshotSvc *snapshots.Service
	log         zerolog.Logger
}

// NewDailySnapshot creates the daily snapshot job
func NewDailySnapshot(accountRepo *accounts.Repository, snapshotSvc *snapshots.Service, log zerolog.Logger) *DailySnapshot {
	return &DailySnapshot{
		accountRepo: accountRepo,
		snapshotSvc: snapshotSvc,
		log:         log.With().Str("job", "daily_snapshot").Logger(),
	}
}

// Name returns the job name
func (j *DailySnapshot) Name() string {
	return "daily_snapshot"
}

// Run generates snapshots for all accounts
func (j *DailySnapshot) Run() error {
	allAccounts, err := j.accountRepo.GetAll()
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	generated := 0

	for _, account := range allAccounts {
		if _, err := j.snapshotSvc.Generate(account.ID, now); err != nil {
			if domain.IsConflict(err) {
				continue
			}
			j.log.Error().Err(err).Int64("account_id", account.ID).Msg("Snapshot generation failed")
			continue
		}
		generated++
	}

	j.log.Info().
		Int("accounts", len(allAccounts)).
		Int("generated", generated).
		Msg("Daily snapshots complete")

	return nil
}
