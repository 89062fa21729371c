// Package report renders run results for the console.
package report

import (
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"

	"github.com/rustyeddy/backtester/metrics"
	"github.com/rustyeddy/backtester/sim"
)

// WriteSummary prints the run's headline numbers as a table.
func WriteSummary(w io.Writer, res sim.Result, m metrics.Summary) error {
	table := tablewriter.NewWriter(w)
	table.Header("Metric", "Value")

	table.Append("Run", res.RunID)
	table.Append("Symbol", res.Symbol)
	table.Append("Strategy", res.Strategy)
	table.Append("Period", fmt.Sprintf("%s .. %s",
		res.Start.Format("2006-01-02"), res.End.Format("2006-01-02")))
	table.Append("Initial Cash", fmt.Sprintf("%.2f", res.InitialCash))
	table.Append("Final Equity", fmt.Sprintf("%.2f", res.FinalEquity))
	table.Append("Total Return", fmt.Sprintf("%.2f%%", m.TotalReturn*100))
	table.Append("CAGR", fmt.Sprintf("%.2f%%", m.CAGR*100))
	table.Append("Volatility", fmt.Sprintf("%.2f%%", m.Vol*100))
	table.Append("Sharpe", fmt.Sprintf("%.2f", m.Sharpe))
	table.Append("Max Drawdown", fmt.Sprintf("%.2f%%", m.MaxDrawdown*100))
	table.Append("Trades", fmt.Sprintf("%d", res.Trades))

	kill := "no"
	if res.KillSwitch {
		kill = "YES"
	}
	table.Append("Kill Switch", kill)

	return table.Render()
}

// WriteTrades prints the trade log as a table. An empty log prints a
// single note instead of an empty table.
func WriteTrades(w io.Writer, trades []sim.Trade) error {
	if len(trades) == 0 {
		_, err := fmt.Fprintln(w, "no trades executed")
		return err
	}

	table := tablewriter.NewWriter(w)
	table.Header("#", "Date", "Side", "Qty", "Price", "Notional", "Commission")

	for i, t := range trades {
		table.Append(
			fmt.Sprintf("%d", i+1),
			t.Time.Format("2006-01-02"),
			t.Side.String(),
			fmt.Sprintf("%d", t.Qty),
			fmt.Sprintf("%.4f", t.Price),
			fmt.Sprintf("%.2f", t.Notional),
			fmt.Sprintf("%.2f", t.Commission),
		)
	}

	return table.Render()
}
