package stocks

// Schema creates the stocks table
const Schema = `
CREATE TABLE IF NOT EXISTS stocks (
    id INTEGER PRIMARY KEY,
    code TEXT UNIQUE NOT NULL,
    name TEXT NOT NULL,
    current_value TEXT,
    updated_at TEXT NOT NULL
);
`
