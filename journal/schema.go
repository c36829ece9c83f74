package journal

const Schema = `
CREATE TABLE IF NOT EXISTS trades (
	position_id TEXT PRIMARY KEY,
	symbol TEXT NOT NULL,
	sector TEXT NOT NULL,
	side TEXT NOT NULL,
	shares INTEGER NOT NULL,
	entry_price REAL NOT NULL,
	exit_price REAL NOT NULL,
	open_time DATETIME NOT NULL,
	close_time DATETIME NOT NULL,
	realized_pl REAL NOT NULL,
	reason TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS equity (
	time DATETIME NOT NULL,
	cash REAL NOT NULL,
	equity REAL NOT NULL,
	realized_today REAL NOT NULL,
	open_positions INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_trades_close_time ON trades(close_time);
CREATE INDEX IF NOT EXISTS idx_equity_time ON equity(time);
`
