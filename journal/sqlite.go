package journal

import (
	"database/sql"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteJournal persists trades, equity snapshots and run summaries in a
// single SQLite file. Each run is keyed by its RunID so one database can
// hold many backtests side by side.
type SQLiteJournal struct {
	db    *sql.DB
	runID string
}

func NewSQLite(path, runID string) (*SQLiteJournal, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLiteJournal{db: db, runID: runID}, nil
}

func (j *SQLiteJournal) RecordTrade(t TradeRecord) error {
	runID := t.RunID
	if runID == "" {
		runID = j.runID
	}
	_, err := j.db.Exec(`
		INSERT INTO trades
		(trade_id, run_id, time, side, qty, price, notional, commission)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		t.TradeID, runID, t.Time, t.Side, t.Qty, t.Price, t.Notional, t.Commission,
	)
	return err
}

func (j *SQLiteJournal) RecordEquity(e EquityRecord) error {
	runID := e.RunID
	if runID == "" {
		runID = j.runID
	}
	_, err := j.db.Exec(`
		INSERT INTO equity
		(run_id, time, cash, position_qty, close, equity, drawdown, kill_switch)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		runID, e.Time, e.Cash, e.PositionQty, e.Close, e.Equity, e.Drawdown, e.KillSwitch,
	)
	return err
}

func (j *SQLiteJournal) RecordRun(r BacktestRun) error {
	_, err := j.db.Exec(`
		INSERT INTO backtest_runs
		(run_id, created, symbol, strategy, fast, slow, start_date, end_date,
		 initial_cash, final_equity, trades, total_return, cagr, sharpe,
		 max_dd_pct, kill_switch)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.RunID, r.Created, r.Symbol, r.Strategy, r.Fast, r.Slow,
		r.Start, r.End, r.InitialCash, r.FinalEquity, r.Trades,
		r.TotalReturn, r.CAGR, r.Sharpe, r.MaxDDPct, r.KillSwitch,
	)
	return err
}

// ListTrades returns the trades of a run in time order.
func (j *SQLiteJournal) ListTrades(runID string) ([]TradeRecord, error) {
	rows, err := j.db.Query(`
		SELECT trade_id, run_id, time, side, qty, price, notional, commission
		FROM trades WHERE run_id = ? ORDER BY time, trade_id`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TradeRecord
	for rows.Next() {
		var t TradeRecord
		if err := rows.Scan(&t.TradeID, &t.RunID, &t.Time, &t.Side, &t.Qty,
			&t.Price, &t.Notional, &t.Commission); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// ListEquity returns the equity curve of a run in time order.
func (j *SQLiteJournal) ListEquity(runID string) ([]EquityRecord, error) {
	rows, err := j.db.Query(`
		SELECT run_id, time, cash, position_qty, close, equity, drawdown, kill_switch
		FROM equity WHERE run_id = ? ORDER BY time`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []EquityRecord
	for rows.Next() {
		var e EquityRecord
		if err := rows.Scan(&e.RunID, &e.Time, &e.Cash, &e.PositionQty,
			&e.Close, &e.Equity, &e.Drawdown, &e.KillSwitch); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// ListTradesBetween returns trades across all runs in [start, end).
func (j *SQLiteJournal) ListTradesBetween(start, end time.Time) ([]TradeRecord, error) {
	rows, err := j.db.Query(`
		SELECT trade_id, run_id, time, side, qty, price, notional, commission
		FROM trades WHERE time >= ? AND time < ? ORDER BY time, trade_id`, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TradeRecord
	for rows.Next() {
		var t TradeRecord
		if err := rows.Scan(&t.TradeID, &t.RunID, &t.Time, &t.Side, &t.Qty,
			&t.Price, &t.Notional, &t.Commission); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (j *SQLiteJournal) Close() error {
	return j.db.Close()
}
