package sim

import (
	"errors"
	"fmt"
	"time"

	"github.com/rustyeddy/backtester/journal"
	"github.com/rustyeddy/backtester/market"
	"github.com/rustyeddy/backtester/strategies"
)

// ErrInsufficientData means the bar series is shorter than the strategy's
// warm-up requires. Checked before the loop starts, never mid-run.
var ErrInsufficientData = errors.New("sim: not enough bars for strategy warm-up")

// Engine drives one portfolio bar-by-bar over one instrument's daily bars.
//
// Each bar runs in strict order:
//  1. mark-to-market at the bar's close (risk state first, always)
//  2. execute the previous bar's pending target at this bar's open
//  3. record this bar's signal as the next bar's pending target
//
// A signal observed at bar t's close therefore executes at bar t+1's open,
// never earlier. The target pending after the final bar is discarded:
// there is no bar t+1 to fill it on.
type Engine struct {
	bars    *market.BarSet
	port    *Portfolio
	model   ExecutionModel
	journal journal.Journal
	runID   string
}

// Result summarizes one completed run.
type Result struct {
	RunID       string
	Symbol      string
	Strategy    string
	Start       time.Time
	End         time.Time
	InitialCash float64
	FinalEquity float64
	Trades      int
	KillSwitch  bool
}

// NewEngine wires a run together. A nil journal records nothing.
func NewEngine(bars *market.BarSet, port *Portfolio, model ExecutionModel, j journal.Journal, runID string) *Engine {
	if j == nil {
		j = journal.Nop{}
	}
	return &Engine{bars: bars, port: port, model: model, journal: j, runID: runID}
}

// Portfolio exposes the run's ledger for reporting after Run returns.
func (e *Engine) Portfolio() *Portfolio { return e.port }

// Run executes the full simulation. Malformed bar data or too few bars
// abort before the first bar; the loop itself never fails on a trade —
// an unfundable buy is skipped and the run continues.
func (e *Engine) Run(strat strategies.Strategy) (Result, error) {
	if e.bars == nil || e.port == nil {
		return Result{}, fmt.Errorf("sim: engine needs bars and a portfolio")
	}
	if strat == nil {
		return Result{}, fmt.Errorf("sim: nil strategy")
	}
	if err := e.bars.Validate(); err != nil {
		return Result{}, err
	}
	if e.bars.Len() < strat.Warmup()+2 {
		return Result{}, fmt.Errorf("%w: have %d bars, %s needs at least %d",
			ErrInsufficientData, e.bars.Len(), strat.Name(), strat.Warmup()+2)
	}

	targets, err := strat.Targets(e.bars.Closes())
	if err != nil {
		return Result{}, err
	}
	if len(targets) != e.bars.Len() {
		return Result{}, fmt.Errorf("sim: strategy %s returned %d targets for %d bars",
			strat.Name(), len(targets), e.bars.Len())
	}

	// The one piece of loop state: the target decided on the previous
	// bar, waiting for this bar's open. Nil until the first bar has run.
	var pending *int

	for i, bar := range e.bars.Bars {
		snap := e.port.MarkToMarket(bar.Time, bar.Close)
		if err := e.recordEquity(snap); err != nil {
			return Result{}, err
		}

		if pending != nil && !e.port.KillSwitch() {
			if err := e.execute(bar, *pending); err != nil {
				return Result{}, err
			}
		}

		// The portfolio is long-only; a short target flattens instead.
		t := targets[i]
		if t == strategies.Short {
			t = strategies.Flat
		}
		pending = &t
	}

	curve := e.port.EquityCurve()
	res := Result{
		RunID:       e.runID,
		Symbol:      e.bars.Symbol,
		Strategy:    strat.Name(),
		Start:       e.bars.Bars[0].Time,
		End:         e.bars.Bars[e.bars.Len()-1].Time,
		InitialCash: e.port.InitialCash(),
		FinalEquity: curve[len(curve)-1].Equity,
		Trades:      len(e.port.Trades()),
		KillSwitch:  e.port.KillSwitch(),
	}
	return res, nil
}

// execute fills the pending target at this bar's open. The side is chosen
// with the same floored sizing the portfolio uses, so the slippage
// direction and the executed delta can never disagree. A zero delta makes
// no Fill call at all: no trade, no illusory costs.
func (e *Engine) execute(bar market.Bar, target int) error {
	desired := e.port.Limits().DesiredQty(target, e.port.Cash(), e.port.PositionQty(), bar.Open)
	delta := desired - e.port.PositionQty()
	if delta == 0 {
		return nil
	}

	side := Buy
	qty := delta
	if delta < 0 {
		side = Sell
		qty = -delta
	}

	fillPrice, commission, err := e.model.Fill(bar.Open, side, qty)
	if err != nil {
		// Pre-validated by construction; an invalid fill aborts only this
		// bar's trade attempt.
		return nil
	}

	trade, err := e.port.RebalanceToTarget(bar.Time, target, bar.Open, fillPrice, commission)
	if err != nil {
		return err
	}
	if trade == nil {
		return nil
	}

	return e.journal.RecordTrade(journal.TradeRecord{
		TradeID:    trade.ID,
		RunID:      e.runID,
		Time:       trade.Time,
		Side:       trade.Side.String(),
		Qty:        trade.Qty,
		Price:      trade.Price,
		Notional:   trade.Notional,
		Commission: trade.Commission,
	})
}

func (e *Engine) recordEquity(s EquitySnapshot) error {
	return e.journal.RecordEquity(journal.EquityRecord{
		RunID:       e.runID,
		Time:        s.Time,
		Cash:        s.Cash,
		PositionQty: s.PositionQty,
		Close:       s.Close,
		Equity:      s.Equity,
		Drawdown:    s.Drawdown,
		KillSwitch:  s.KillSwitch,
	})
}
