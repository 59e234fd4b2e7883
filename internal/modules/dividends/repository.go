package dividends

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Repository handles dividend and dividend payment persistence
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a new dividend repository
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repo", "dividends").Logger(),
	}
}

// CreateDividend inserts a dividend announcement
func (r *Repository) CreateDividend(d *Dividend) error {
	now := time.Now().UTC()

	result, err := r.db.Exec(`
		INSERT INTO dividends (stock_id, amount_per_share, pay_date, created_at)
		VALUES (?, ?, ?, ?)
	`,
		d.StockID,
		d.AmountPerShare.String(),
		d.PayDate,
		now.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to create dividend: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get insert ID: %w", err)
	}
	d.ID = id
	d.CreatedAt = now

	r.log.Info().
		Int64("dividend_id", id).
		Int64("stock_id", d.StockID).
		Str("amount_per_share", d.AmountPerShare.String()).
		Msg("Dividend announced")
	return nil
}

// GetDividendByID returns a dividend by ID, or nil when absent
func (r *Repository) GetDividendByID(id int64) (*Dividend, error) {
	row := r.db.QueryRow(`
		SELECT id, stock_id, amount_per_share, pay_date, created_at
		FROM dividends WHERE id = ?
	`, id)

	var d Dividend
	var amount, createdAt string
	err := row.Scan(&d.ID, &d.StockID, &amount, &d.PayDate, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get dividend: %w", err)
	}

	if d.AmountPerShare, err = decimal.NewFromString(amount); err != nil {
		return nil, fmt.Errorf("invalid amount per share %q: %w", amount, err)
	}
	d.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)

	return &d, nil
}

// CreatePayment inserts a dividend payment row
func (r *Repository) CreatePayment(p *DividendPayment) error {
	now := time.Now().UTC()

	result, err := r.db.Exec(`
		INSERT INTO dividend_payments
		(dividend_id, account_id, quantity, total_amount, status, payment_date, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		p.DividendID,
		p.AccountID,
		p.Quantity.String(),
		p.TotalAmount.String(),
		string(p.Status),
		p.PaymentDate,
		now.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to create dividend payment: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get insert ID: %w", err)
	}
	p.ID = id
	p.CreatedAt = now

	return nil
}

// PaymentExists reports whether a payment already exists for the
// (dividend, account) pair
func (r *Repository) PaymentExists(dividendID, accountID int64) (bool, error) {
	var one int
	err := r.db.QueryRow(
		"SELECT 1 FROM dividend_payments WHERE dividend_id = ? AND account_id = ? LIMIT 1",
		dividendID, accountID,
	).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check payment existence: %w", err)
	}
	return true, nil
}

// GetPaymentByID returns a payment by ID, or nil when absent
func (r *Repository) GetPaymentByID(id int64) (*DividendPayment, error) {
	rows, err := r.db.Query(`
		SELECT p.id, p.dividend_id, p.account_id, p.quantity, p.total_amount,
		       p.status, p.payment_date, p.created_at
		FROM dividend_payments p WHERE p.id = ?
	`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query payment: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}
	p, err := scanPayment(rows)
	if err != nil {
		return nil, fmt.Errorf("failed to scan payment: %w", err)
	}
	return &p, nil
}

// UpdatePaymentStatus moves a payment to a new lifecycle status
func (r *Repository) UpdatePaymentStatus(id int64, status PaymentStatus) error {
	result, err := r.db.Exec(
		"UPDATE dividend_payments SET status = ? WHERE id = ?",
		string(status), id,
	)
	if err != nil {
		return fmt.Errorf("failed to update payment status: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("payment %d not found for status update", id)
	}
	return nil
}

// GetPaymentsByAccount returns payments for an account, optionally
// narrowed by stock and payment date range, newest first
func (r *Repository) GetPaymentsByAccount(accountID int64, filter PaymentFilter) ([]DividendPayment, error) {
	query := `
		SELECT p.id, p.dividend_id, p.account_id, p.quantity, p.total_amount,
		       p.status, p.payment_date, p.created_at
		FROM dividend_payments p
		JOIN dividends d ON d.id = p.dividend_id
		WHERE p.account_id = ?
	`
	args := []interface{}{accountID}

	if filter.StockID > 0 {
		query += " AND d.stock_id = ?"
		args = append(args, filter.StockID)
	}
	if filter.From != "" {
		query += " AND p.payment_date >= ?"
		args = append(args, filter.From)
	}
	if filter.To != "" {
		query += " AND p.payment_date <= ?"
		args = append(args, filter.To)
	}
	query += " ORDER BY p.payment_date DESC, p.id DESC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query payments: %w", err)
	}
	defer rows.Close()

	var payments []DividendPayment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payment: %w", err)
		}
		payments = append(payments, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating payments: %w", err)
	}
	return payments, nil
}

func scanPayment(rows *sql.Rows) (DividendPayment, error) {
	var p DividendPayment
	var quantity, total, status, createdAt string

	if err := rows.Scan(
		&p.ID,
		&p.DividendID,
		&p.AccountID,
		&quantity,
		&total,
		&status,
		&p.PaymentDate,
		&createdAt,
	); err != nil {
		return DividendPayment{}, err
	}

	p.Status = PaymentStatus(status)

	var err error
	if p.Quantity, err = decimal.NewFromString(quantity); err != nil {
		return DividendPayment{}, fmt.Errorf("invalid quantity %q: %w", quantity, err)
	}
	if p.TotalAmount, err = decimal.NewFromString(total); err != nil {
		return DividendPayment{}, fmt.Errorf("invalid total amount %q: %w", total, err)
	}
	p.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)

	return p, nil
}
