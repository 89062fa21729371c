// journal/schema.go
package journal

const Schema = `
CREATE TABLE IF NOT EXISTS trades (
	trade_id TEXT NOT NULL,
	run_id TEXT NOT NULL,
	time DATETIME NOT NULL,
	side TEXT NOT NULL,
	qty INTEGER NOT NULL,
	price REAL NOT NULL,
	notional REAL NOT NULL,
	commission REAL NOT NULL,
	PRIMARY KEY (run_id, trade_id)
);

CREATE TABLE IF NOT EXISTS equity (
	run_id TEXT NOT NULL,
	time DATETIME NOT NULL,
	cash REAL NOT NULL,
	position_qty INTEGER NOT NULL,
	close REAL NOT NULL,
	equity REAL NOT NULL,
	drawdown REAL NOT NULL,
	kill_switch INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_equity_run_time ON equity(run_id, time);
CREATE INDEX IF NOT EXISTS idx_trades_run_time ON trades(run_id, time);

CREATE TABLE IF NOT EXISTS backtest_runs (
	run_id TEXT PRIMARY KEY,
	created DATETIME NOT NULL,
	symbol TEXT NOT NULL,
	strategy TEXT NOT NULL,
	fast INTEGER NOT NULL,
	slow INTEGER NOT NULL,
	start_date DATETIME,
	end_date DATETIME,
	initial_cash REAL NOT NULL,
	final_equity REAL NOT NULL,
	trades INTEGER NOT NULL,
	total_return REAL NOT NULL,
	cagr REAL NOT NULL,
	sharpe REAL NOT NULL,
	max_dd_pct REAL NOT NULL,
	kill_switch INTEGER NOT NULL
);
`
