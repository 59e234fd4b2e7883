package snapshots

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Repository handles snapshot persistence
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a new snapshot repository
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repo", "snapshots").Logger(),
	}
}

const snapshotColumns = `id, account_id, date, total_value, cash_balance, total_cost_basis,
	realized_gain, unrealized_gain, total_dividends, roi_percent,
	day_change, day_change_percent, created_at`

// Create inserts a snapshot row
func (r *Repository) Create(s *Snapshot) error {
	now := time.Now().UTC()

	result, err := r.db.Exec(`
		INSERT INTO portfolio_snapshots
		(account_id, date, total_value, cash_balance, total_cost_basis,
		 realized_gain, unrealized_gain, total_dividends, roi_percent,
		 day_change, day_change_percent, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		s.AccountID,
		s.Date,
		s.TotalValue.String(),
		s.CashBalance.String(),
		s.TotalCostBasis.String(),
		s.RealizedGain.String(),
		s.UnrealizedGain.String(),
		s.TotalDividends.String(),
		s.ROIPercent.String(),
		s.DayChange.String(),
		s.DayChangePercent.String(),
		now.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to create snapshot: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get insert ID: %w", err)
	}
	s.ID = id
	s.CreatedAt = now

	return nil
}

// ExistsForDate reports whether a snapshot exists for the account/date pair
func (r *Repository) ExistsForDate(accountID int64, date string) (bool, error) {
	var one int
	err := r.db.QueryRow(
		"SELECT 1 FROM portfolio_snapshots WHERE account_id = ? AND date = ? LIMIT 1",
		accountID, date,
	).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check snapshot existence: %w", err)
	}
	return true, nil
}

// GetLatestBefore returns the most recent snapshot strictly before the
// given date, or nil when none exists
func (r *Repository) GetLatestBefore(accountID int64, date string) (*Snapshot, error) {
	rows, err := r.db.Query(`
		SELECT `+snapshotColumns+`
		FROM portfolio_snapshots
		WHERE account_id = ? AND date < ?
		ORDER BY date DESC LIMIT 1
	`, accountID, date)
	if err != nil {
		return nil, fmt.Errorf("failed to query prior snapshot: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}
	s, err := scanSnapshot(rows)
	if err != nil {
		return nil, fmt.Errorf("failed to scan snapshot: %w", err)
	}
	return &s, nil
}

// GetRange returns snapshots for an account between two dates inclusive,
// oldest first
func (r *Repository) GetRange(accountID int64, from, to string) ([]Snapshot, error) {
	rows, err := r.db.Query(`
		SELECT `+snapshotColumns+`
		FROM portfolio_snapshots
		WHERE account_id = ? AND date >= ? AND date <= ?
		ORDER BY date ASC
	`, accountID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshot range: %w", err)
	}
	defer rows.Close()

	return collectSnapshots(rows)
}

// GetByAccount returns snapshots for an account, newest first
func (r *Repository) GetByAccount(accountID int64, limit int) ([]Snapshot, error) {
	query := `
		SELECT ` + snapshotColumns + `
		FROM portfolio_snapshots
		WHERE account_id = ?
		ORDER BY date DESC
	`
	args := []interface{}{accountID}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshots: %w", err)
	}
	defer rows.Close()

	return collectSnapshots(rows)
}

func scanSnapshot(rows *sql.Rows) (Snapshot, error) {
	var s Snapshot
	var totalValue, cash, costBasis, realized, unrealized, dividendTotal string
	var roi, dayChange, dayChangePct, createdAt string

	if err := rows.Scan(
		&s.ID,
		&s.AccountID,
		&s.Date,
		&totalValue,
		&cash,
		&costBasis,
		&realized,
		&unrealized,
		&dividendTotal,
		&roi,
		&dayChange,
		&dayChangePct,
		&createdAt,
	); err != nil {
		return Snapshot{}, err
	}

	fields := []struct {
		dst *decimal.Decimal
		src string
	}{
		{&s.TotalValue, totalValue},
		{&s.CashBalance, cash},
		{&s.TotalCostBasis, costBasis},
		{&s.RealizedGain, realized},
		{&s.UnrealizedGain, unrealized},
		{&s.TotalDividends, dividendTotal},
		{&s.ROIPercent, roi},
		{&s.DayChange, dayChange},
		{&s.DayChangePercent, dayChangePct},
	}
	for _, f := range fields {
		d, err := decimal.NewFromString(f.src)
		if err != nil {
			return Snapshot{}, fmt.Errorf("invalid decimal %q: %w", f.src, err)
		}
		*f.dst = d
	}
	s.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)

	return s, nil
}

func collectSnapshots(rows *sql.Rows) ([]Snapshot, error) {
	var snapshots []Snapshot
	for rows.Next() {
		s, err := scanSnapshot(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan snapshot: %w", err)
		}
		snapshots = append(snapshots, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating snapshots: %w", err)
	}
	return snapshots, nil
}
