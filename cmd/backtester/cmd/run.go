package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/backtester/config"
	"github.com/rustyeddy/backtester/internal/id"
	"github.com/rustyeddy/backtester/journal"
	"github.com/rustyeddy/backtester/market"
	"github.com/rustyeddy/backtester/market/data"
	"github.com/rustyeddy/backtester/metrics"
	"github.com/rustyeddy/backtester/report"
	"github.com/rustyeddy/backtester/risk"
	"github.com/rustyeddy/backtester/sim"
	"github.com/rustyeddy/backtester/strategies"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a backtest over daily bars",
	Long: `Run simulates the configured strategy bar by bar: mark-to-market at
each close, execute the previous bar's target at the next open with
slippage and commission, and journal every trade and equity snapshot.

Example:
  backtester run --symbol aapl.us --fast 20 --slow 100 --cash 100000`,
	RunE: runRun,
}

var (
	runConfigPath string
	runSymbol     string
	runCSVPath    string
	runCacheDir   string
	runStart      string
	runEnd        string
	runForce      bool

	runStrategy string
	runFast     int
	runSlow     int
	runLongOnly bool

	runCash        float64
	runSlippageBps float64
	runCommission  float64
	runMaxPosPct   float64
	runMaxDD       float64

	runJournalType string
	runTradesFile  string
	runEquityFile  string
	runDBPath      string
	runOrgPath     string
)

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runConfigPath, "config", "c", "", "config file (flags below are ignored when set)")

	runCmd.Flags().StringVar(&runSymbol, "symbol", "", "stooq symbol, e.g. aapl.us, spy.us")
	runCmd.Flags().StringVar(&runCSVPath, "csv", "", "load bars from this CSV instead of downloading")
	runCmd.Flags().StringVar(&runCacheDir, "cache-dir", "./data", "local cache directory for downloaded CSVs")
	runCmd.Flags().StringVar(&runStart, "start", "", "start date YYYY-MM-DD")
	runCmd.Flags().StringVar(&runEnd, "end", "", "end date YYYY-MM-DD")
	runCmd.Flags().BoolVar(&runForce, "force-download", false, "re-download even if cached")

	runCmd.Flags().StringVarP(&runStrategy, "strategy", "s", "ma-cross", "strategy name (ma-cross, flat)")
	runCmd.Flags().IntVar(&runFast, "fast", 20, "fast MA window")
	runCmd.Flags().IntVar(&runSlow, "slow", 100, "slow MA window")
	runCmd.Flags().BoolVar(&runLongOnly, "long-only", true, "long-only targets (0/1)")

	runCmd.Flags().Float64Var(&runCash, "cash", 100_000, "initial cash")
	runCmd.Flags().Float64Var(&runSlippageBps, "slippage-bps", 2.0, "slippage in basis points")
	runCmd.Flags().Float64Var(&runCommission, "commission", 1.0, "fixed commission per trade")
	runCmd.Flags().Float64Var(&runMaxPosPct, "max-position-pct", 0.25, "max position value as fraction of equity")
	runCmd.Flags().Float64Var(&runMaxDD, "max-dd", 0.20, "max drawdown before kill switch")

	runCmd.Flags().StringVar(&runJournalType, "journal", "csv", "journal type (csv, sqlite, none)")
	runCmd.Flags().StringVar(&runTradesFile, "trades-file", "./outputs/trades.csv", "CSV journal: trades path")
	runCmd.Flags().StringVar(&runEquityFile, "equity-file", "./outputs/equity.csv", "CSV journal: equity path")
	runCmd.Flags().StringVarP(&runDBPath, "db", "d", "./backtests.sqlite", "SQLite journal DB path")
	runCmd.Flags().StringVar(&runOrgPath, "org", "", "write an org-mode run report to this path")
}

func runConfig() (*config.Config, error) {
	if runConfigPath != "" {
		return config.LoadFromFile(runConfigPath)
	}

	cfg := &config.Config{
		Data: config.DataConfig{
			Symbol:   runSymbol,
			CacheDir: runCacheDir,
			CSVPath:  runCSVPath,
			Start:    runStart,
			End:      runEnd,
		},
		Strategy: config.StrategyConfig{
			Name:     runStrategy,
			Fast:     runFast,
			Slow:     runSlow,
			LongOnly: runLongOnly,
		},
		Execution: config.ExecutionConfig{
			SlippageBps: runSlippageBps,
			Commission:  runCommission,
		},
		Risk: config.RiskConfig{
			MaxPositionPct: runMaxPosPct,
			MaxDrawdown:    runMaxDD,
			InitialCash:    runCash,
		},
		Journal: config.JournalConfig{
			Type:       runJournalType,
			TradesFile: runTradesFile,
			EquityFile: runEquityFile,
			DBPath:     runDBPath,
			OrgPath:    runOrgPath,
		},
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadBars(ctx context.Context, cfg *config.Config) (*market.BarSet, error) {
	path := cfg.Data.CSVPath
	if path == "" {
		dl := data.NewDownloader()
		p, err := dl.Download(ctx, cfg.Data.Symbol, cfg.Data.CacheDir, runForce)
		if err != nil {
			return nil, fmt.Errorf("download: %w", err)
		}
		path = p
		fmt.Printf("Data: %s\n", path)
	}

	symbol := cfg.Data.Symbol
	if symbol == "" {
		symbol = path
	}

	bars, err := market.LoadCSV(path, symbol)
	if err != nil {
		return nil, err
	}

	start, _ := config.ParseDate(cfg.Data.Start)
	end, _ := config.ParseDate(cfg.Data.End)
	if !start.IsZero() || !end.IsZero() {
		bars = bars.Slice(start, end)
	}
	return bars, nil
}

func openJournal(cfg *config.Config, runID string) (journal.Journal, *journal.SQLiteJournal, error) {
	switch cfg.Journal.Type {
	case "csv":
		j, err := journal.NewCSV(cfg.Journal.TradesFile, cfg.Journal.EquityFile)
		return j, nil, err
	case "sqlite":
		j, err := journal.NewSQLite(cfg.Journal.DBPath, runID)
		return j, j, err
	default:
		return journal.Nop{}, nil, nil
	}
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := runConfig()
	if err != nil {
		return err
	}

	ctx := context.Background()
	bars, err := loadBars(ctx, cfg)
	if err != nil {
		return err
	}

	strat, err := strategies.ByName(cfg.Strategy.Name, cfg.Strategy.Fast, cfg.Strategy.Slow, cfg.Strategy.LongOnly)
	if err != nil {
		return fmt.Errorf("strategy: %w", err)
	}

	runID := id.New()
	j, sqlj, err := openJournal(cfg, runID)
	if err != nil {
		return fmt.Errorf("journal: %w", err)
	}
	defer j.Close()

	port, err := sim.NewPortfolio(cfg.Risk.InitialCash, risk.Limits{
		MaxPositionPct: cfg.Risk.MaxPositionPct,
		MaxDrawdown:    cfg.Risk.MaxDrawdown,
	})
	if err != nil {
		return err
	}

	model := sim.ExecutionModel{
		SlippageBps: cfg.Execution.SlippageBps,
		Commission:  cfg.Execution.Commission,
	}

	engine := sim.NewEngine(bars, port, model, j, runID)

	fmt.Printf("Running %s on %s (%d bars)\n\n", strat.Name(), bars.Symbol, bars.Len())

	res, err := engine.Run(strat)
	if err != nil {
		return fmt.Errorf("run: %w", err)
	}

	m := metrics.Compute(port.EquityCurve())

	if err := report.WriteSummary(os.Stdout, res, m); err != nil {
		return err
	}
	fmt.Println()
	if err := report.WriteTrades(os.Stdout, port.Trades()); err != nil {
		return err
	}

	summary := journal.BacktestRun{
		RunID:       runID,
		Created:     time.Now().UTC(),
		Symbol:      res.Symbol,
		Strategy:    res.Strategy,
		Fast:        cfg.Strategy.Fast,
		Slow:        cfg.Strategy.Slow,
		Start:       res.Start,
		End:         res.End,
		InitialCash: res.InitialCash,
		FinalEquity: res.FinalEquity,
		Trades:      res.Trades,
		TotalReturn: m.TotalReturn,
		CAGR:        m.CAGR,
		Vol:         m.Vol,
		Sharpe:      m.Sharpe,
		MaxDDPct:    m.MaxDrawdown,
		KillSwitch:  res.KillSwitch,
		OrgPath:     cfg.Journal.OrgPath,
	}

	if sqlj != nil {
		if err := sqlj.RecordRun(summary); err != nil {
			return fmt.Errorf("record run: %w", err)
		}
	}
	if cfg.Journal.OrgPath != "" {
		if err := summary.WriteOrg(); err != nil {
			return fmt.Errorf("org report: %w", err)
		}
		fmt.Printf("\nOrg report: %s\n", cfg.Journal.OrgPath)
	}

	return nil
}
