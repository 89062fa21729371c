package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	t.Parallel()

	cfg := Default()
	assert.NoError(t, cfg.Validate())
	assert.Equal(t, "spy.us", cfg.Data.Symbol)
	assert.Equal(t, "ma-cross", cfg.Strategy.Name)
	assert.True(t, cfg.Strategy.LongOnly)
	assert.Equal(t, "csv", cfg.Journal.Type)
}

func TestSaveLoadYAML(t *testing.T) {
	t.Parallel()

	cfg := Default()
	cfg.Data.Start = "2020-01-02"
	cfg.Execution.SlippageBps = 5
	cfg.Risk.InitialCash = 250000

	path := filepath.Join(t.TempDir(), "backtest.yaml")
	require.NoError(t, cfg.SaveToFile(path))

	got, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, got)
}

func TestSaveLoadJSON(t *testing.T) {
	t.Parallel()

	cfg := Default()
	cfg.Journal.Type = "sqlite"
	cfg.Journal.TradesFile = ""
	cfg.Journal.EquityFile = ""
	cfg.Journal.DBPath = "runs.db"

	path := filepath.Join(t.TempDir(), "backtest.json")
	require.NoError(t, cfg.SaveToFile(path))

	got, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, got)
}

func TestLoadRejectsInvalid(t *testing.T) {
	t.Parallel()

	cfg := Default()
	cfg.Risk.MaxDrawdown = 1.5

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, cfg.SaveToFile(path))

	_, err := LoadFromFile(path)
	assert.ErrorContains(t, err, "max_drawdown")
}

func TestLoadMissingFile(t *testing.T) {
	t.Parallel()

	_, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadGarbage(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "garbage.yaml")
	require.NoError(t, os.WriteFile(path, []byte("{{{not config"), 0644))

	_, err := LoadFromFile(path)
	assert.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	cfg := Default()
	path := filepath.Join(t.TempDir(), "backtest.yaml")
	require.NoError(t, cfg.SaveToFile(path))

	t.Setenv("BACKTESTER_CACHE_DIR", "/var/cache/bars")
	t.Setenv("BACKTESTER_DB_PATH", "/var/lib/runs.db")

	got, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "/var/cache/bars", got.Data.CacheDir)
	assert.Equal(t, "/var/lib/runs.db", got.Journal.DBPath)
}

func TestParseDate(t *testing.T) {
	t.Parallel()

	d, err := ParseDate("2024-03-04")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC), d)

	d, err = ParseDate("")
	require.NoError(t, err)
	assert.True(t, d.IsZero())

	_, err = ParseDate("04/03/2024")
	assert.Error(t, err)
}

func TestValidateFailures(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"no symbol or csv", func(c *Config) { c.Data.Symbol = "" }, "symbol"},
		{"bad start date", func(c *Config) { c.Data.Start = "Jan 2 2020" }, "data.start"},
		{"no strategy", func(c *Config) { c.Strategy.Name = "" }, "strategy.name"},
		{"zero fast window", func(c *Config) { c.Strategy.Fast = 0 }, "fast/slow"},
		{"negative slippage", func(c *Config) { c.Execution.SlippageBps = -1 }, "slippage"},
		{"negative commission", func(c *Config) { c.Execution.Commission = -0.5 }, "commission"},
		{"zero cash", func(c *Config) { c.Risk.InitialCash = 0 }, "initial_cash"},
		{"position pct too big", func(c *Config) { c.Risk.MaxPositionPct = 1.5 }, "max_position_pct"},
		{"drawdown zero", func(c *Config) { c.Risk.MaxDrawdown = 0 }, "max_drawdown"},
		{"csv without paths", func(c *Config) { c.Journal.TradesFile = "" }, "trades_file"},
		{"unknown journal", func(c *Config) { c.Journal.Type = "parquet" }, "journal.type"},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			cfg := Default()
			tc.mutate(cfg)
			assert.ErrorContains(t, cfg.Validate(), tc.want)
		})
	}
}
