package journal

import (
	"bytes"
	"os"
	"text/template"
	"time"
)

// BacktestRun mirrors the backtest_runs table: one summary row per run.
type BacktestRun struct {
	RunID   string
	Created time.Time

	Symbol   string
	Strategy string
	Fast     int
	Slow     int

	Start time.Time
	End   time.Time

	InitialCash float64
	FinalEquity float64
	Trades      int

	// Derived / computed in Go
	TotalReturn float64
	CAGR        float64
	Vol         float64
	Sharpe      float64
	MaxDDPct    float64
	KillSwitch  bool

	OrgPath string

	Notes       []string
	NextActions []string
}

var runOrgFuncs = template.FuncMap{
	"mul100": func(x float64) float64 { return x * 100.0 },
	"orTime": func(t time.Time) time.Time {
		if t.IsZero() {
			return time.Now()
		}
		return t
	},
}

// WriteOrg renders the run summary as an org-mode journal entry at OrgPath.
func (v *BacktestRun) WriteOrg() error {
	t, err := template.New("backtest").Funcs(runOrgFuncs).Parse(RunOrgTemplate)
	if err != nil {
		return err
	}

	buf := new(bytes.Buffer)
	if err := t.Execute(buf, v); err != nil {
		return err
	}
	return os.WriteFile(v.OrgPath, buf.Bytes(), 0644)
}

const RunOrgTemplate = `
* BACKTEST: {{.Strategy}} {{.Symbol}} daily
:PROPERTIES:
:RUN_ID:      {{if .RunID}}{{.RunID}}{{else}}(run-id?){{end}}
:STRATEGY:    {{.Strategy}}
:SYMBOL:      {{.Symbol}}
:FAST:        {{.Fast}}
:SLOW:        {{.Slow}}
:START_DATE:  {{.Start.Format "2006-01-02"}}
:END_DATE:    {{.End.Format "2006-01-02"}}
:START_CASH:  {{printf "%.2f" .InitialCash}}
:END_EQUITY:  {{printf "%.2f" .FinalEquity}}
:RETURN_PCT:  {{printf "%.2f" (mul100 .TotalReturn)}}
:CAGR_PCT:    {{printf "%.2f" (mul100 .CAGR)}}
:SHARPE:      {{printf "%.2f" .Sharpe}}
:MAX_DD_PCT:  {{printf "%.2f" (mul100 .MaxDDPct)}}
:TRADES:      {{.Trades}}
:KILLSWITCH:  {{.KillSwitch}}
:CREATED:     [{{(orTime .Created).Format "2006-01-02 Mon 15:04"}}]
:END:

** Performance Summary
- Total Return:   *{{printf "%.2f" (mul100 .TotalReturn)}}%*
- CAGR:           *{{printf "%.2f" (mul100 .CAGR)}}%*
- Volatility:     *{{printf "%.2f" (mul100 .Vol)}}%*
- Sharpe:         *{{printf "%.2f" .Sharpe}}*
- Max Drawdown:   *{{printf "%.2f" (mul100 .MaxDDPct)}}%*
- Trades:         {{.Trades}}
- Kill switch:    {{if .KillSwitch}}TRIPPED{{else}}clear{{end}}

{{- if .Notes }}
** Observations
{{- range .Notes }}
- {{.}}
{{- end }}
{{- end }}

{{- if .NextActions }}
** Notes / Next Actions
{{- range .NextActions }}
- [ ] {{.}}
{{- end }}
{{- end }}
`
