package transactions

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/foliotrack/foliotrack/internal/database"
)

// Repository handles transaction persistence
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a new transaction repository
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repo", "transactions").Logger(),
	}
}

// Create inserts a transaction row. Runs against q so the processor can
// scope it to the same sql.Tx as the balance and holding writes.
func (r *Repository) Create(q database.Execer, t *Transaction) error {
	result, err := q.Exec(`
		INSERT INTO transactions
		(account_id, stock_id, type, quantity, price_per_share, commission, executed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		t.AccountID,
		t.StockID,
		string(t.Type),
		t.Quantity.String(),
		t.PricePerShare.String(),
		t.Commission.String(),
		t.ExecutedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to create transaction: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get insert ID: %w", err)
	}
	t.ID = id

	return nil
}

// GetByAccount returns the transaction history of an account, newest first
func (r *Repository) GetByAccount(accountID int64, limit int) ([]Transaction, error) {
	query := `
		SELECT id, account_id, stock_id, type, quantity, price_per_share, commission, executed_at
		FROM transactions WHERE account_id = ?
		ORDER BY executed_at DESC, id DESC
	`
	args := []interface{}{accountID}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	var txns []Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		txns = append(txns, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transactions: %w", err)
	}
	return txns, nil
}

func scanTransaction(rows *sql.Rows) (Transaction, error) {
	var t Transaction
	var txType, quantity, price, commission, executedAt string

	if err := rows.Scan(
		&t.ID,
		&t.AccountID,
		&t.StockID,
		&txType,
		&quantity,
		&price,
		&commission,
		&executedAt,
	); err != nil {
		return Transaction{}, err
	}

	t.Type = Type(txType)

	var err error
	if t.Quantity, err = decimal.NewFromString(quantity); err != nil {
		return Transaction{}, fmt.Errorf("invalid quantity %q: %w", quantity, err)
	}
	if t.PricePerShare, err = decimal.NewFromString(price); err != nil {
		return Transaction{}, fmt.Errorf("invalid price %q: %w", price, err)
	}
	if t.Commission, err = decimal.NewFromString(commission); err != nil {
		return Transaction{}, fmt.Errorf("invalid commission %q: %w", commission, err)
	}
	t.ExecutedAt, _ = time.Parse(time.RFC3339, executedAt)

	return t, nil
}
