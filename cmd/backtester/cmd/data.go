package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/backtester/market"
	"github.com/rustyeddy/backtester/market/data"
)

var dataCmd = &cobra.Command{
	Use:   "data",
	Short: "Download and inspect daily OHLCV data",
	Long: `Download daily bar data from stooq.com into the local cache.

Example:
  backtester data --symbol aapl.us --cache-dir ./data`,
	RunE: runData,
}

var (
	dataSymbols  []string
	dataCacheDir string
	dataForce    bool
)

func init() {
	rootCmd.AddCommand(dataCmd)

	dataCmd.Flags().StringSliceVar(&dataSymbols, "symbol", nil, "stooq symbol(s), e.g. aapl.us (repeatable)")
	dataCmd.Flags().StringVar(&dataCacheDir, "cache-dir", "./data", "local cache directory")
	dataCmd.Flags().BoolVar(&dataForce, "force", false, "re-download even if cached")

	dataCmd.MarkFlagRequired("symbol")
}

func runData(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	dl := data.NewDownloader()

	for _, symbol := range dataSymbols {
		path, err := dl.Download(ctx, symbol, dataCacheDir, dataForce)
		if err != nil {
			return fmt.Errorf("download %s: %w", symbol, err)
		}

		bars, err := market.LoadCSV(path, symbol)
		if err != nil {
			return fmt.Errorf("load %s: %w", symbol, err)
		}

		fmt.Printf("%s: %d bars (%s .. %s)  %s\n",
			symbol, bars.Len(),
			bars.Bars[0].Time.Format("2006-01-02"),
			bars.Bars[bars.Len()-1].Time.Format("2006-01-02"),
			path)
		if bars.BadRows() > 0 || bars.Duplicates() > 0 {
			fmt.Printf("  dropped: %d bad rows, %d duplicate dates\n", bars.BadRows(), bars.Duplicates())
		}
	}
	return nil
}
