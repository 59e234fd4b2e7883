package stocks

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// ErrPriceUnavailable is returned when a stock has no usable price.
// Aggregation callers treat it as a skip, never as a fatal error.
var ErrPriceUnavailable = errors.New("price unavailable")

// Repository handles stock database operations. It also serves as the
// price lookup for the valuation core.
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a new stock repository
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repo", "stocks").Logger(),
	}
}

// Create inserts a new stock
func (r *Repository) Create(stock *Stock) error {
	now := time.Now().UTC()

	var value interface{}
	if stock.CurrentValue.Valid {
		value = stock.CurrentValue.Decimal.String()
	}

	result, err := r.db.Exec(`
		INSERT INTO stocks (code, name, current_value, updated_at)
		VALUES (?, ?, ?, ?)
	`,
		strings.ToUpper(stock.Code),
		stock.Name,
		value,
		now.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to create stock: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get insert ID: %w", err)
	}

	stock.ID = id
	stock.UpdatedAt = now

	r.log.Info().Int64("stock_id", id).Str("code", stock.Code).Msg("Stock created")
	return nil
}

// GetByID returns a stock by ID, or nil when absent
func (r *Repository) GetByID(id int64) (*Stock, error) {
	row := r.db.QueryRow(`
		SELECT id, code, name, current_value, updated_at
		FROM stocks WHERE id = ?
	`, id)

	stock, err := scanStock(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get stock: %w", err)
	}
	return stock, nil
}

// GetByCode returns a stock by its code, or nil when absent
func (r *Repository) GetByCode(code string) (*Stock, error) {
	row := r.db.QueryRow(`
		SELECT id, code, name, current_value, updated_at
		FROM stocks WHERE code = ?
	`, strings.ToUpper(strings.TrimSpace(code)))

	stock, err := scanStock(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get stock by code: %w", err)
	}
	return stock, nil
}

// GetAll returns every stock
func (r *Repository) GetAll() ([]Stock, error) {
	rows, err := r.db.Query(`
		SELECT id, code, name, current_value, updated_at
		FROM stocks ORDER BY code
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query stocks: %w", err)
	}
	defer rows.Close()

	var stocks []Stock
	for rows.Next() {
		s, err := scanStock(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan stock: %w", err)
		}
		stocks = append(stocks, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating stocks: %w", err)
	}
	return stocks, nil
}

// UpdatePrice stores a new current value for a stock
func (r *Repository) UpdatePrice(id int64, price decimal.Decimal) error {
	result, err := r.db.Exec(
		"UPDATE stocks SET current_value = ?, updated_at = ? WHERE id = ?",
		price.String(),
		time.Now().UTC().Format(time.RFC3339),
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to update price: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("stock %d not found for price update", id)
	}
	return nil
}

// CurrentPrice returns the live price for a stock, or ErrPriceUnavailable
// when the stock is unknown or carries no value
func (r *Repository) CurrentPrice(stockID int64) (decimal.Decimal, error) {
	stock, err := r.GetByID(stockID)
	if err != nil {
		return decimal.Zero, err
	}
	if stock == nil || !stock.CurrentValue.Valid {
		return decimal.Zero, fmt.Errorf("stock %d: %w", stockID, ErrPriceUnavailable)
	}
	return stock.CurrentValue.Decimal, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanStock(row rowScanner) (*Stock, error) {
	var s Stock
	var value sql.NullString
	var updatedAt string

	if err := row.Scan(&s.ID, &s.Code, &s.Name, &value, &updatedAt); err != nil {
		return nil, err
	}

	if value.Valid {
		d, err := decimal.NewFromString(value.String)
		if err != nil {
			return nil, fmt.Errorf("invalid current value %q: %w", value.String, err)
		}
		s.CurrentValue = decimal.NewNullDecimal(d)
	}
	s.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)

	return &s, nil
}
