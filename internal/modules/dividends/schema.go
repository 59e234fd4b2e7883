package dividends

// Schema creates the dividends and dividend_payments tables. The
// UNIQUE(dividend_id, account_id) constraint backs the idempotent
// fan-out: repeated processing can never duplicate a payment.
const Schema = `
CREATE TABLE IF NOT EXISTS dividends (
    id INTEGER PRIMARY KEY,
    stock_id INTEGER NOT NULL REFERENCES stocks(id),
    amount_per_share TEXT NOT NULL,
    pay_date TEXT NOT NULL,
    created_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS dividend_payments (
    id INTEGER PRIMARY KEY,
    dividend_id INTEGER NOT NULL REFERENCES dividends(id),
    account_id INTEGER NOT NULL REFERENCES accounts(id) ON DELETE CASCADE,
    quantity TEXT NOT NULL,
    total_amount TEXT NOT NULL,
    status TEXT NOT NULL CHECK (status IN ('PENDING', 'PAID', 'CANCELLED')),
    payment_date TEXT NOT NULL,
    created_at TEXT NOT NULL,
    UNIQUE(dividend_id, account_id)
);

CREATE INDEX IF NOT EXISTS idx_dividends_stock ON dividends(stock_id);
CREATE INDEX IF NOT EXISTS idx_dividend_payments_account ON dividend_payments(account_id);
`
