package holdings

// Schema creates the holdings table. The UNIQUE(account_id, stock_id)
// constraint enforces the one-holding-per-account-stock invariant at the
// storage layer as well as in the processor.
const Schema = `
CREATE TABLE IF NOT EXISTS holdings (
    id INTEGER PRIMARY KEY,
    account_id INTEGER NOT NULL REFERENCES accounts(id) ON DELETE CASCADE,
    stock_id INTEGER NOT NULL REFERENCES stocks(id),
    quantity TEXT NOT NULL,
    average_cost_basis TEXT NOT NULL,
    total_cost_basis TEXT NOT NULL,
    realized_gain TEXT NOT NULL,
    first_purchased_at TEXT NOT NULL,
    UNIQUE(account_id, stock_id)
);

CREATE INDEX IF NOT EXISTS idx_holdings_account ON holdings(account_id);
CREATE INDEX IF NOT EXISTS idx_holdings_stock ON holdings(stock_id);
`
