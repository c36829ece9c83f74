package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// Config is the full run configuration. Loaded once at startup and treated
// as immutable for the duration of a run; changing it requires a restart.
type Config struct {
	Filters  FiltersConfig  `yaml:"filters"`
	Entry    EntryConfig    `yaml:"entry"`
	Exit     ExitConfig     `yaml:"exit"`
	Account  AccountConfig  `yaml:"account"`
	System   SystemConfig   `yaml:"system"`
	Advisory AdvisoryConfig `yaml:"advisory"`
	Data     DataConfig     `yaml:"data"`
	Journal  JournalConfig  `yaml:"journal"`
}

type FiltersConfig struct {
	MinPrice     float64 `yaml:"min_price"`
	MaxPrice     float64 `yaml:"max_price"`
	MinVolume    float64 `yaml:"min_volume"`
	MinRelVolume float64 `yaml:"min_rel_volume"`
	MaxSpreadPct float64 `yaml:"max_spread_percent"`
}

type EntryConfig struct {
	MinSetupConfidence        float64 `yaml:"min_setup_confidence"`
	MinRewardRiskRatio        float64 `yaml:"min_reward_risk_ratio"`
	RequireVolumeConfirmation bool    `yaml:"require_volume_confirmation"`
	MinDistanceFromVWAP       float64 `yaml:"min_distance_from_vwap"`
	VolumeConfirmationMult    float64 `yaml:"volume_confirmation_multiple"`
	AdvisoryFloor             float64 `yaml:"advisory_floor"`
	AdvisoryWeight            float64 `yaml:"advisory_weight"`
}

type ExitConfig struct {
	UseTrailingStops     bool    `yaml:"use_trailing_stops"`
	TrailingStopDistance float64 `yaml:"trailing_stop_distance"`
	TimeBasedExit        bool    `yaml:"time_based_exit"`
	MaxHoldTimeHours     float64 `yaml:"max_hold_time_hours"`
	MaxAdverseExcursion  float64 `yaml:"max_adverse_excursion"`
}

type AccountConfig struct {
	StartingBalance float64 `yaml:"starting_balance" envconfig:"STARTING_BALANCE"`
	CashReservePct  float64 `yaml:"cash_reserve_percent"`
	RiskPerTradePct float64 `yaml:"risk_per_trade_percent"`
	MinPositionPct  float64 `yaml:"min_position_percent"`
	MaxPositionPct  float64 `yaml:"max_position_percent"`
	ShareIncrement  int     `yaml:"preferred_share_increment"`
	MaxDailyLossPct float64 `yaml:"max_daily_loss_percent"`
	MaxPositions    int     `yaml:"max_positions"`
	MaxSectorPct    float64 `yaml:"max_sector_percent"`
}

type SystemConfig struct {
	ScanIntervalSec       int    `yaml:"scan_interval_seconds" envconfig:"SCAN_INTERVAL"`
	MaxSymbolsPerCycle    int    `yaml:"max_symbols_per_cycle"`
	ParallelAnalysis      bool   `yaml:"parallel_analysis"`
	CollaboratorTimeoutSec int    `yaml:"collaborator_timeout_seconds"`
	SessionOpenCron       string `yaml:"session_open_cron"`
	MarketOpen            string `yaml:"market_open"`  // "HH:MM", empty disables the gate
	MarketClose           string `yaml:"market_close"` // "HH:MM"
}

type AdvisoryConfig struct {
	Enabled    bool   `yaml:"enabled"`
	BaseURL    string `yaml:"base_url" envconfig:"ADVISORY_BASE_URL"`
	Model      string `yaml:"model"`
	APIKey     string `yaml:"-" envconfig:"ADVISORY_API_KEY"`
	TimeoutSec int    `yaml:"timeout_seconds"`
}

type DataConfig struct {
	Source    string       `yaml:"source"` // "http" or "stream"
	BaseURL   string       `yaml:"base_url" envconfig:"DATA_BASE_URL"`
	APIKey    string       `yaml:"-" envconfig:"DATA_API_KEY"`
	StreamURL string       `yaml:"stream_url" envconfig:"DATA_STREAM_URL"`
	Universe  []Instrument `yaml:"universe"`
}

// Instrument is one entry of the scan universe with its sector tag.
type Instrument struct {
	Symbol string `yaml:"symbol"`
	Sector string `yaml:"sector"`
}

type JournalConfig struct {
	Type       string `yaml:"type"` // "sqlite", "csv", or "none"
	DBPath     string `yaml:"db_path"`
	TradesFile string `yaml:"trades_file"`
	EquityFile string `yaml:"equity_file"`
}

// Load reads the YAML config, then applies .env and environment overrides.
// The returned config is already validated.
func Load(path string) (*Config, error) {
	// .env is optional; absence is the normal case in production.
	_ = godotenv.Load()

	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := envconfig.Process("DAYTRADER", cfg); err != nil {
		return nil, fmt.Errorf("env overrides: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Default returns the baseline configuration. Every value is still subject
// to validation after the YAML and environment layers are applied.
func Default() *Config {
	return &Config{
		Filters: FiltersConfig{
			MinPrice:     5,
			MaxPrice:     500,
			MinVolume:    500000,
			MinRelVolume: 1.5,
			MaxSpreadPct: 0.002,
		},
		Entry: EntryConfig{
			MinSetupConfidence:        75,
			MinRewardRiskRatio:        2.0,
			RequireVolumeConfirmation: true,
			MinDistanceFromVWAP:       0.005,
			VolumeConfirmationMult:    1.5,
			AdvisoryFloor:             40,
			AdvisoryWeight:            0.3,
		},
		Exit: ExitConfig{
			UseTrailingStops:     true,
			TrailingStopDistance: 0.02,
			TimeBasedExit:        true,
			MaxHoldTimeHours:     4,
			MaxAdverseExcursion:  0.02,
		},
		Account: AccountConfig{
			StartingBalance: 100000,
			CashReservePct:  0.15,
			RiskPerTradePct: 0.02,
			MinPositionPct:  0.10,
			MaxPositionPct:  0.30,
			ShareIncrement:  10,
			MaxDailyLossPct: 0.03,
			MaxPositions:    3,
			MaxSectorPct:    0.40,
		},
		System: SystemConfig{
			ScanIntervalSec:        60,
			MaxSymbolsPerCycle:     50,
			ParallelAnalysis:       true,
			CollaboratorTimeoutSec: 10,
			SessionOpenCron:        "0 30 9 * * 1-5",
			MarketOpen:             "09:30",
			MarketClose:            "16:00",
		},
		Advisory: AdvisoryConfig{
			Enabled:    false,
			Model:      "gpt-4o-mini",
			TimeoutSec: 15,
		},
		Data: DataConfig{
			Source: "http",
		},
		Journal: JournalConfig{
			Type:   "sqlite",
			DBPath: "data/daytrader.db",
		},
	}
}

// Validate fails fast on any missing or out-of-range field. The system
// must never start trading with an unvalidated risk configuration.
func (c *Config) Validate() error {
	f := c.Filters
	if f.MinPrice <= 0 || f.MaxPrice <= f.MinPrice {
		return fmt.Errorf("filters: need 0 < min_price < max_price, got [%.2f, %.2f]", f.MinPrice, f.MaxPrice)
	}
	if f.MinVolume <= 0 {
		return fmt.Errorf("filters.min_volume must be positive")
	}
	if f.MinRelVolume <= 0 {
		return fmt.Errorf("filters.min_rel_volume must be positive")
	}
	if f.MaxSpreadPct <= 0 || f.MaxSpreadPct >= 1 {
		return fmt.Errorf("filters.max_spread_percent must be in (0, 1)")
	}

	e := c.Entry
	if e.MinSetupConfidence < 0 || e.MinSetupConfidence > 100 {
		return fmt.Errorf("entry.min_setup_confidence must be in [0, 100]")
	}
	if e.MinRewardRiskRatio <= 0 {
		return fmt.Errorf("entry.min_reward_risk_ratio must be positive")
	}
	if e.MinDistanceFromVWAP < 0 {
		return fmt.Errorf("entry.min_distance_from_vwap must not be negative")
	}
	if e.VolumeConfirmationMult <= 0 {
		return fmt.Errorf("entry.volume_confirmation_multiple must be positive")
	}
	if e.AdvisoryFloor < 0 || e.AdvisoryFloor > 100 {
		return fmt.Errorf("entry.advisory_floor must be in [0, 100]")
	}
	if e.AdvisoryWeight < 0 || e.AdvisoryWeight > 1 {
		return fmt.Errorf("entry.advisory_weight must be in [0, 1]")
	}

	x := c.Exit
	if x.UseTrailingStops && (x.TrailingStopDistance <= 0 || x.TrailingStopDistance >= 1) {
		return fmt.Errorf("exit.trailing_stop_distance must be in (0, 1)")
	}
	if x.TimeBasedExit && x.MaxHoldTimeHours <= 0 {
		return fmt.Errorf("exit.max_hold_time_hours must be positive")
	}
	if x.MaxAdverseExcursion <= 0 || x.MaxAdverseExcursion >= 1 {
		return fmt.Errorf("exit.max_adverse_excursion must be in (0, 1)")
	}

	a := c.Account
	if a.StartingBalance <= 0 {
		return fmt.Errorf("account.starting_balance must be positive")
	}
	if a.CashReservePct < 0 || a.CashReservePct >= 1 {
		return fmt.Errorf("account.cash_reserve_percent must be in [0, 1)")
	}
	if a.RiskPerTradePct <= 0 || a.RiskPerTradePct > 1 {
		return fmt.Errorf("account.risk_per_trade_percent must be in (0, 1]")
	}
	if a.MinPositionPct <= 0 || a.MaxPositionPct > 1 || a.MinPositionPct > a.MaxPositionPct {
		return fmt.Errorf("account: need 0 < min_position_percent <= max_position_percent <= 1")
	}
	if a.ShareIncrement < 1 {
		return fmt.Errorf("account.preferred_share_increment must be at least 1")
	}
	if a.MaxDailyLossPct <= 0 || a.MaxDailyLossPct >= 1 {
		return fmt.Errorf("account.max_daily_loss_percent must be in (0, 1)")
	}
	if a.MaxPositions < 1 {
		return fmt.Errorf("account.max_positions must be at least 1")
	}
	if a.MaxSectorPct <= 0 || a.MaxSectorPct > 1 {
		return fmt.Errorf("account.max_sector_percent must be in (0, 1]")
	}

	s := c.System
	if s.ScanIntervalSec < 1 {
		return fmt.Errorf("system.scan_interval_seconds must be at least 1")
	}
	if s.MaxSymbolsPerCycle < 1 {
		return fmt.Errorf("system.max_symbols_per_cycle must be at least 1")
	}
	if s.CollaboratorTimeoutSec < 1 {
		return fmt.Errorf("system.collaborator_timeout_seconds must be at least 1")
	}
	if s.MarketOpen != "" {
		if _, err := time.Parse("15:04", s.MarketOpen); err != nil {
			return fmt.Errorf("system.market_open: %w", err)
		}
		if _, err := time.Parse("15:04", s.MarketClose); err != nil {
			return fmt.Errorf("system.market_close: %w", err)
		}
	}

	if c.Advisory.Enabled {
		if c.Advisory.BaseURL == "" {
			return fmt.Errorf("advisory.base_url is required when advisory is enabled")
		}
		if c.Advisory.TimeoutSec < 1 {
			return fmt.Errorf("advisory.timeout_seconds must be at least 1")
		}
	}

	switch c.Data.Source {
	case "http":
		if c.Data.BaseURL == "" {
			return fmt.Errorf("data.base_url is required for http source")
		}
	case "stream":
		if c.Data.StreamURL == "" {
			return fmt.Errorf("data.stream_url is required for stream source")
		}
	default:
		return fmt.Errorf("data.source must be 'http' or 'stream'")
	}
	if len(c.Data.Universe) == 0 {
		return fmt.Errorf("data.universe must list at least one symbol")
	}
	for i, inst := range c.Data.Universe {
		if inst.Symbol == "" || inst.Sector == "" {
			return fmt.Errorf("data.universe[%d]: symbol and sector are required", i)
		}
	}

	switch c.Journal.Type {
	case "sqlite":
		if c.Journal.DBPath == "" {
			return fmt.Errorf("journal.db_path required for sqlite journal")
		}
	case "csv":
		if c.Journal.TradesFile == "" || c.Journal.EquityFile == "" {
			return fmt.Errorf("journal trades_file and equity_file required for csv journal")
		}
	case "none":
	default:
		return fmt.Errorf("journal.type must be 'sqlite', 'csv', or 'none'")
	}

	return nil
}
