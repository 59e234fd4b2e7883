package accounts

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/foliotrack/foliotrack/internal/database"
)

// Repository handles account database operations
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a new account repository
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repo", "accounts").Logger(),
	}
}

// Create inserts a new account
func (r *Repository) Create(account *Account) error {
	now := time.Now().UTC()

	result, err := r.db.Exec(`
		INSERT INTO accounts (user_id, name, cash_balance, created_at)
		VALUES (?, ?, ?, ?)
	`,
		account.UserID,
		account.Name,
		account.CashBalance.String(),
		now.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to create account: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get insert ID: %w", err)
	}

	account.ID = id
	account.CreatedAt = now

	r.log.Info().Int64("account_id", id).Str("user_id", account.UserID).Msg("Account created")
	return nil
}

// GetByID returns an account by ID, or nil when absent
func (r *Repository) GetByID(id int64) (*Account, error) {
	row := r.db.QueryRow(`
		SELECT id, user_id, name, cash_balance, created_at
		FROM accounts WHERE id = ?
	`, id)

	account, err := scanAccount(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return account, nil
}

// GetByUserID returns all accounts owned by a user
func (r *Repository) GetByUserID(userID string) ([]Account, error) {
	rows, err := r.db.Query(`
		SELECT id, user_id, name, cash_balance, created_at
		FROM accounts WHERE user_id = ? ORDER BY id
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts: %w", err)
	}
	defer rows.Close()

	return collectAccounts(rows)
}

// GetAll returns every account
func (r *Repository) GetAll() ([]Account, error) {
	rows, err := r.db.Query(`
		SELECT id, user_id, name, cash_balance, created_at
		FROM accounts ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts: %w", err)
	}
	defer rows.Close()

	return collectAccounts(rows)
}

// SaveCashBalance persists a new cash balance. Runs against q so the
// transaction processor can scope it to an enclosing sql.Tx.
func (r *Repository) SaveCashBalance(q database.Execer, accountID int64, balance decimal.Decimal) error {
	result, err := q.Exec("UPDATE accounts SET cash_balance = ? WHERE id = ?", balance.String(), accountID)
	if err != nil {
		return fmt.Errorf("failed to update cash balance: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("account %d not found for balance update", accountID)
	}
	return nil
}

// Delete removes an account and, through foreign keys, its holdings,
// transactions and snapshots
func (r *Repository) Delete(id int64) error {
	_, err := r.db.Exec("DELETE FROM accounts WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete account: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanAccount(row rowScanner) (*Account, error) {
	var a Account
	var balance, createdAt string

	if err := row.Scan(&a.ID, &a.UserID, &a.Name, &balance, &createdAt); err != nil {
		return nil, err
	}

	cash, err := decimal.NewFromString(balance)
	if err != nil {
		return nil, fmt.Errorf("invalid cash balance %q: %w", balance, err)
	}
	a.CashBalance = cash
	a.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)

	return &a, nil
}

func collectAccounts(rows *sql.Rows) ([]Account, error) {
	var accounts []Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating accounts: %w", err)
	}
	return accounts, nil
}
