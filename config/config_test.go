package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// validConfig is Default plus the fields that have no sensible default.
func validConfig() *Config {
	cfg := Default()
	cfg.Data.BaseURL = "https://quotes.example.com"
	cfg.Data.Universe = []Instrument{{Symbol: "AAPL", Sector: "tech"}}
	return cfg
}

func TestValidateAcceptsCompleteConfig(t *testing.T) {
	t.Parallel()
	assert.NoError(t, validConfig().Validate())
}

func TestValidateRejections(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(c *Config)
		want   string
	}{
		{"inverted price band", func(c *Config) { c.Filters.MaxPrice = 1 }, "min_price < max_price"},
		{"zero volume floor", func(c *Config) { c.Filters.MinVolume = 0 }, "min_volume"},
		{"confidence out of range", func(c *Config) { c.Entry.MinSetupConfidence = 150 }, "min_setup_confidence"},
		{"advisory weight above one", func(c *Config) { c.Entry.AdvisoryWeight = 1.5 }, "advisory_weight"},
		{"trailing distance too big", func(c *Config) { c.Exit.TrailingStopDistance = 1 }, "trailing_stop_distance"},
		{"no adverse excursion cap", func(c *Config) { c.Exit.MaxAdverseExcursion = 0 }, "max_adverse_excursion"},
		{"negative balance", func(c *Config) { c.Account.StartingBalance = -1 }, "starting_balance"},
		{"reserve eats everything", func(c *Config) { c.Account.CashReservePct = 1 }, "cash_reserve_percent"},
		{"min above max position", func(c *Config) { c.Account.MinPositionPct = 0.5 }, "min_position_percent"},
		{"zero share increment", func(c *Config) { c.Account.ShareIncrement = 0 }, "preferred_share_increment"},
		{"no position slots", func(c *Config) { c.Account.MaxPositions = 0 }, "max_positions"},
		{"bad market open", func(c *Config) { c.System.MarketOpen = "9h30" }, "market_open"},
		{"advisory enabled without url", func(c *Config) { c.Advisory.Enabled = true }, "advisory.base_url"},
		{"unknown data source", func(c *Config) { c.Data.Source = "carrier-pigeon" }, "data.source"},
		{"http source without url", func(c *Config) { c.Data.BaseURL = "" }, "data.base_url"},
		{"empty universe", func(c *Config) { c.Data.Universe = nil }, "universe"},
		{"instrument missing sector", func(c *Config) { c.Data.Universe[0].Sector = "" }, "universe[0]"},
		{"unknown journal type", func(c *Config) { c.Journal.Type = "parquet" }, "journal.type"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()

			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadAppliesYAMLOverDefaults(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
account:
  starting_balance: 50000
  max_positions: 2
system:
  scan_interval_seconds: 30
data:
  base_url: https://quotes.example.com
  universe:
    - { symbol: AAPL, sector: tech }
    - { symbol: XOM, sector: energy }
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.InDelta(t, 50000, cfg.Account.StartingBalance, 1e-9)
	assert.Equal(t, 2, cfg.Account.MaxPositions)
	assert.Equal(t, 30, cfg.System.ScanIntervalSec)
	// Untouched sections keep their defaults.
	assert.InDelta(t, 0.02, cfg.Account.RiskPerTradePct, 1e-9)
	assert.True(t, cfg.Exit.UseTrailingStops)
	require.Len(t, cfg.Data.Universe, 2)
	assert.Equal(t, "energy", cfg.Data.Universe[1].Sector)
}

func TestLoadEnvironmentOverridesYAML(t *testing.T) {
	t.Setenv("DAYTRADER_STARTING_BALANCE", "250000")

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
account:
  starting_balance: 50000
data:
  base_url: https://quotes.example.com
  universe:
    - { symbol: AAPL, sector: tech }
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.InDelta(t, 250000, cfg.Account.StartingBalance, 1e-9)
}

func TestLoadRejectsInvalidFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
data:
  base_url: https://quotes.example.com
  universe:
    - { symbol: AAPL, sector: tech }
account:
  max_daily_loss_percent: 2.0
`), 0o644))

	_, err := Load(path)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "max_daily_loss_percent")
}

func TestLoadMissingFile(t *testing.T) {
	t.Parallel()

	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
