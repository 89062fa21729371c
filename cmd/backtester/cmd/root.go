package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "backtester",
	Short: "An event-driven daily-bar backtester for single-instrument strategies",
	Long: `Backtester simulates how a rules-based trading strategy would have
performed historically on a single instrument using daily bar data.

It provides tools for:
  - Running MA-crossover backtests with one-bar execution lag
  - Slippage, commission and affordability-aware position sizing
  - Drawdown kill-switch risk control
  - Journaling trade logs and equity curves to CSV or SQLite
  - Downloading daily OHLCV data from stooq.com`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}
