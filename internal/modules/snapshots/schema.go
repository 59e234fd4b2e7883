package snapshots

// Schema creates the portfolio_snapshots table. UNIQUE(account_id, date)
// enforces the one-snapshot-per-day invariant.
const Schema = `
CREATE TABLE IF NOT EXISTS portfolio_snapshots (
    id INTEGER PRIMARY KEY,
    account_id INTEGER NOT NULL REFERENCES accounts(id) ON DELETE CASCADE,
    date TEXT NOT NULL,
    total_value TEXT NOT NULL,
    cash_balance TEXT NOT NULL,
    total_cost_basis TEXT NOT NULL,
    realized_gain TEXT NOT NULL,
    unrealized_gain TEXT NOT NULL,
    total_dividends TEXT NOT NULL,
    roi_percent TEXT NOT NULL,
    day_change TEXT NOT NULL,
    day_change_percent TEXT NOT NULL,
    created_at TEXT NOT NULL,
    UNIQUE(account_id, date)
);

CREATE INDEX IF NOT EXISTS idx_snapshots_account_date ON portfolio_snapshots(account_id, date);
`
