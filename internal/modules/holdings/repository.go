package holdings

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/foliotrack/foliotrack/internal/database"
)

// Repository handles holding database operations. Mutating methods take a
// database.Execer so the transaction processor can run them inside one
// sql.Tx together with the cash-balance update and transaction insert.
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a new holding repository
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repo", "holdings").Logger(),
	}
}

// GetByAccount returns all holdings of an account
func (r *Repository) GetByAccount(accountID int64) ([]Holding, error) {
	rows, err := r.db.Query(`
		SELECT id, account_id, stock_id, quantity, average_cost_basis,
		       total_cost_basis, realized_gain, first_purchased_at
		FROM holdings WHERE account_id = ? ORDER BY id
	`, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to query holdings: %w", err)
	}
	defer rows.Close()

	return collectHoldings(rows)
}

// GetByStock returns all holdings across accounts for one stock. Used by
// the dividend fan-out.
func (r *Repository) GetByStock(stockID int64) ([]Holding, error) {
	rows, err := r.db.Query(`
		SELECT id, account_id, stock_id, quantity, average_cost_basis,
		       total_cost_basis, realized_gain, first_purchased_at
		FROM holdings WHERE stock_id = ? ORDER BY account_id
	`, stockID)
	if err != nil {
		return nil, fmt.Errorf("failed to query holdings by stock: %w", err)
	}
	defer rows.Close()

	return collectHoldings(rows)
}

// GetByAccountAndStock returns the unique holding for an (account, stock)
// pair, or nil when none exists
func (r *Repository) GetByAccountAndStock(accountID, stockID int64) (*Holding, error) {
	row := r.db.QueryRow(`
		SELECT id, account_id, stock_id, quantity, average_cost_basis,
		       total_cost_basis, realized_gain, first_purchased_at
		FROM holdings WHERE account_id = ? AND stock_id = ?
	`, accountID, stockID)

	h, err := scanHolding(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get holding: %w", err)
	}
	return h, nil
}

// Create inserts a new holding
func (r *Repository) Create(q database.Execer, h *Holding) error {
	result, err := q.Exec(`
		INSERT INTO holdings
		(account_id, stock_id, quantity, average_cost_basis, total_cost_basis,
		 realized_gain, first_purchased_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		h.AccountID,
		h.StockID,
		h.Quantity.String(),
		h.AverageCostBasis.String(),
		h.TotalCostBasis.String(),
		h.RealizedGain.String(),
		h.FirstPurchasedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to create holding: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get insert ID: %w", err)
	}
	h.ID = id

	return nil
}

// Update persists quantity, cost basis and realized gain of a holding
func (r *Repository) Update(q database.Execer, h *Holding) error {
	result, err := q.Exec(`
		UPDATE holdings
		SET quantity = ?, average_cost_basis = ?, total_cost_basis = ?, realized_gain = ?
		WHERE id = ?
	`,
		h.Quantity.String(),
		h.AverageCostBasis.String(),
		h.TotalCostBasis.String(),
		h.RealizedGain.String(),
		h.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update holding: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("holding %d not found for update", h.ID)
	}
	return nil
}

// Delete removes a fully liquidated holding
func (r *Repository) Delete(q database.Execer, id int64) error {
	if _, err := q.Exec("DELETE FROM holdings WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to delete holding: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanHolding(row rowScanner) (*Holding, error) {
	var h Holding
	var quantity, avgCost, totalCost, realized, firstPurchased string

	if err := row.Scan(
		&h.ID,
		&h.AccountID,
		&h.StockID,
		&quantity,
		&avgCost,
		&totalCost,
		&realized,
		&firstPurchased,
	); err != nil {
		return nil, err
	}

	var err error
	if h.Quantity, err = decimal.NewFromString(quantity); err != nil {
		return nil, fmt.Errorf("invalid quantity %q: %w", quantity, err)
	}
	if h.AverageCostBasis, err = decimal.NewFromString(avgCost); err != nil {
		return nil, fmt.Errorf("invalid average cost basis %q: %w", avgCost, err)
	}
	if h.TotalCostBasis, err = decimal.NewFromString(totalCost); err != nil {
		return nil, fmt.Errorf("invalid total cost basis %q: %w", totalCost, err)
	}
	if h.RealizedGain, err = decimal.NewFromString(realized); err != nil {
		return nil, fmt.Errorf("invalid realized gain %q: %w", realized, err)
	}
	h.FirstPurchasedAt, _ = time.Parse(time.RFC3339, firstPurchased)

	return &h, nil
}

func collectHoldings(rows *sql.Rows) ([]Holding, error) {
	var holdings []Holding
	for rows.Next() {
		h, err := scanHolding(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan holding: %w", err)
		}
		holdings = append(holdings, *h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating holdings: %w", err)
	}
	return holdings, nil
}
