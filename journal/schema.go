package journal

const Schema = `
CREATE TABLE IF NOT EXISTS submissions (
	idem_key TEXT PRIMARY KEY,
	tick_id TEXT NOT NULL,
	symbol TEXT NOT NULL,
	units REAL NOT NULL,
	trade_id TEXT NOT NULL DEFAULT '',
	status TEXT NOT NULL,
	created_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_submissions_symbol ON submissions(symbol);
`
