package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config represents the complete backtest run configuration.
type Config struct {
	Data      DataConfig      `json:"data" yaml:"data"`
	Strategy  StrategyConfig  `json:"strategy" yaml:"strategy"`
	Execution ExecutionConfig `json:"execution" yaml:"execution"`
	Risk      RiskConfig      `json:"risk" yaml:"risk"`
	Journal   JournalConfig   `json:"journal" yaml:"journal"`
}

// DataConfig selects the instrument and date range.
type DataConfig struct {
	Symbol   string `json:"symbol" yaml:"symbol"`
	CacheDir string `json:"cache_dir" yaml:"cache_dir"`
	CSVPath  string `json:"csv_path,omitempty" yaml:"csv_path,omitempty"` // skip download, load this file
	Start    string `json:"start,omitempty" yaml:"start,omitempty"`       // YYYY-MM-DD
	End      string `json:"end,omitempty" yaml:"end,omitempty"`           // YYYY-MM-DD
}

// StrategyConfig contains signal-generator parameters.
type StrategyConfig struct {
	Name     string `json:"name" yaml:"name"`
	Fast     int    `json:"fast" yaml:"fast"`
	Slow     int    `json:"slow" yaml:"slow"`
	LongOnly bool   `json:"long_only" yaml:"long_only"`
}

// ExecutionConfig contains fill-model parameters.
type ExecutionConfig struct {
	SlippageBps float64 `json:"slippage_bps" yaml:"slippage_bps"`
	Commission  float64 `json:"commission" yaml:"commission"`
}

// RiskConfig contains portfolio limits and starting cash.
type RiskConfig struct {
	MaxPositionPct float64 `json:"max_position_pct" yaml:"max_position_pct"`
	MaxDrawdown    float64 `json:"max_drawdown" yaml:"max_drawdown"`
	InitialCash    float64 `json:"initial_cash" yaml:"initial_cash"`
}

// JournalConfig contains journaling parameters.
type JournalConfig struct {
	Type       string `json:"type" yaml:"type"` // "csv", "sqlite" or "none"
	TradesFile string `json:"trades_file,omitempty" yaml:"trades_file,omitempty"`
	EquityFile string `json:"equity_file,omitempty" yaml:"equity_file,omitempty"`
	DBPath     string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
	OrgPath    string `json:"org_path,omitempty" yaml:"org_path,omitempty"`
}

// ParseDate parses a YYYY-MM-DD config date; empty means unbounded.
func ParseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse("2006-01-02", s)
}

// LoadFromFile loads configuration from a file (JSON or YAML based on
// content). A .env file in the working directory is loaded first so
// BACKTESTER_* variables can override paths.
func LoadFromFile(path string) (*Config, error) {
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := &Config{}

	// Try YAML first, fall back to JSON
	err = yaml.Unmarshal(data, cfg)
	if err != nil {
		err = json.Unmarshal(data, cfg)
		if err != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("BACKTESTER_CACHE_DIR"); v != "" {
		c.Data.CacheDir = v
	}
	if v := os.Getenv("BACKTESTER_DB_PATH"); v != "" {
		c.Journal.DBPath = v
	}
}

// SaveToFile saves configuration to a file (JSON or YAML based on extension).
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}

	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Data.Symbol == "" && c.Data.CSVPath == "" {
		return fmt.Errorf("data.symbol or data.csv_path is required")
	}
	if _, err := ParseDate(c.Data.Start); err != nil {
		return fmt.Errorf("data.start: %w", err)
	}
	if _, err := ParseDate(c.Data.End); err != nil {
		return fmt.Errorf("data.end: %w", err)
	}
	if c.Strategy.Name == "" {
		return fmt.Errorf("strategy.name is required")
	}
	if c.Strategy.Fast <= 0 || c.Strategy.Slow <= 0 {
		return fmt.Errorf("strategy fast/slow windows must be positive")
	}
	if c.Execution.SlippageBps < 0 {
		return fmt.Errorf("execution.slippage_bps must be >= 0")
	}
	if c.Execution.Commission < 0 {
		return fmt.Errorf("execution.commission must be >= 0")
	}
	if c.Risk.InitialCash <= 0 {
		return fmt.Errorf("risk.initial_cash must be positive")
	}
	if c.Risk.MaxPositionPct <= 0 || c.Risk.MaxPositionPct > 1 {
		return fmt.Errorf("risk.max_position_pct must be in (0, 1]")
	}
	if c.Risk.MaxDrawdown <= 0 || c.Risk.MaxDrawdown > 1 {
		return fmt.Errorf("risk.max_drawdown must be in (0, 1]")
	}
	switch c.Journal.Type {
	case "csv":
		if c.Journal.TradesFile == "" || c.Journal.EquityFile == "" {
			return fmt.Errorf("journal trades_file and equity_file required for CSV type")
		}
	case "sqlite":
		if c.Journal.DBPath == "" {
			return fmt.Errorf("journal db_path required for SQLite type")
		}
	case "none", "":
	default:
		return fmt.Errorf("journal.type must be 'csv', 'sqlite' or 'none'")
	}
	return nil
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		Data: DataConfig{
			Symbol:   "spy.us",
			CacheDir: "./data",
		},
		Strategy: StrategyConfig{
			Name:     "ma-cross",
			Fast:     20,
			Slow:     100,
			LongOnly: true,
		},
		Execution: ExecutionConfig{
			SlippageBps: 2.0,
			Commission:  1.0,
		},
		Risk: RiskConfig{
			MaxPositionPct: 0.25,
			MaxDrawdown:    0.20,
			InitialCash:    100000,
		},
		Journal: JournalConfig{
			Type:       "csv",
			TradesFile: "./outputs/trades.csv",
			EquityFile: "./outputs/equity.csv",
		},
	}
}
