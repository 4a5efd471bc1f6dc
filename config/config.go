package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/rustyeddy/futsim/backtest"
	"github.com/rustyeddy/futsim/sim"
)

// Config is the complete configuration for a backtest run.
type Config struct {
	Backtest BacktestConfig `json:"backtest" yaml:"backtest"`
	Sizing   SizingConfig   `json:"sizing" yaml:"sizing"`
	Journal  JournalConfig  `json:"journal" yaml:"journal"`
}

// BacktestConfig holds the driver parameters.
type BacktestConfig struct {
	InitialValue        float64 `json:"initial_value" yaml:"initial_value"`
	ConfidenceThreshold float64 `json:"confidence_threshold" yaml:"confidence_threshold"`
	LossLimitFraction   float64 `json:"loss_limit_fraction" yaml:"loss_limit_fraction"`
	DailyRiskFreeRate   float64 `json:"daily_risk_free_rate" yaml:"daily_risk_free_rate"`
	CloseAtEnd          bool    `json:"close_at_end" yaml:"close_at_end"`
}

// SizingConfig selects the position sizing rule.
type SizingConfig struct {
	Rule     string  `json:"rule" yaml:"rule"` // "fraction" or "units"
	Fraction float64 `json:"fraction,omitempty" yaml:"fraction,omitempty"`
	Units    float64 `json:"units,omitempty" yaml:"units,omitempty"`
}

// Sizer builds the sim.Sizer described by the config.
func (s SizingConfig) Sizer() (sim.Sizer, error) {
	switch strings.ToLower(strings.TrimSpace(s.Rule)) {
	case "", "fraction":
		f := s.Fraction
		if f == 0 {
			f = 1.0
		}
		if f < 0 || f > 1 {
			return nil, fmt.Errorf("sizing.fraction must be in (0,1], got %v", f)
		}
		return sim.FixedFraction(f), nil

	case "units":
		if s.Units <= 0 {
			return nil, fmt.Errorf("sizing.units must be positive, got %v", s.Units)
		}
		return sim.FixedUnits(s.Units), nil

	default:
		return nil, fmt.Errorf("unknown sizing rule %q (supported: fraction, units)", s.Rule)
	}
}

// JournalConfig selects the audit log backend.
type JournalConfig struct {
	Type       string `json:"type" yaml:"type"` // "none", "csv" or "sqlite"
	TradesFile string `json:"trades_file,omitempty" yaml:"trades_file,omitempty"`
	EquityFile string `json:"equity_file,omitempty" yaml:"equity_file,omitempty"`
	DBPath     string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
}

// LoadFromFile loads configuration from a file (YAML or JSON).
func LoadFromFile(path string) (*Config, error) {
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

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// SaveToFile writes the configuration (YAML for .yaml/.yml, else JSON).
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

// Validate checks every section. Configuration errors are fatal at
// startup; nothing here is recovered silently.
func (c *Config) Validate() error {
	if err := c.Driver().Validate(); err != nil {
		return err
	}
	if _, err := c.Sizing.Sizer(); err != nil {
		return err
	}

	switch c.Journal.Type {
	case "", "none":
	case "csv":
		if c.Journal.TradesFile == "" || c.Journal.EquityFile == "" {
			return fmt.Errorf("journal trades_file and equity_file required for CSV type")
		}
	case "sqlite":
		if c.Journal.DBPath == "" {
			return fmt.Errorf("journal db_path required for SQLite type")
		}
	default:
		return fmt.Errorf("journal.type must be 'none', 'csv' or 'sqlite'")
	}
	return nil
}

// Driver converts the file-level config into driver parameters, without
// the sizer (which may fail and is built separately).
func (c *Config) Driver() backtest.Config {
	return backtest.Config{
		InitialValue:        c.Backtest.InitialValue,
		ConfidenceThreshold: c.Backtest.ConfidenceThreshold,
		LossLimitFraction:   c.Backtest.LossLimitFraction,
		DailyRiskFreeRate:   c.Backtest.DailyRiskFreeRate,
		CloseAtEnd:          c.Backtest.CloseAtEnd,
	}
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		Backtest: BacktestConfig{
			InitialValue:        100_000,
			ConfidenceThreshold: 0.6,
			LossLimitFraction:   -0.10,
			DailyRiskFreeRate:   0.01 / TradingDays,
			CloseAtEnd:          false,
		},
		Sizing: SizingConfig{
			Rule:     "fraction",
			Fraction: 1.0,
		},
		Journal: JournalConfig{
			Type: "none",
		},
	}
}

// TradingDays per year, used to spread an annual risk-free rate across
// daily ticks in Default().
const TradingDays = 252
