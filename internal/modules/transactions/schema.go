package transactions

// Schema creates the transactions table
const Schema = `
CREATE TABLE IF NOT EXISTS transactions (
    id INTEGER PRIMARY KEY,
    account_id INTEGER NOT NULL REFERENCES accounts(id) ON DELETE CASCADE,
    stock_id INTEGER NOT NULL REFERENCES stocks(id),
    type TEXT NOT NULL CHECK (type IN ('BUY', 'SELL')),
    quantity TEXT NOT NULL,
    price_per_share TEXT NOT NULL,
    commission TEXT NOT NULL,
    executed_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_transactions_account ON transactions(account_id);
CREATE INDEX IF NOT EXISTS idx_transactions_stock ON transactions(stock_id);
`
