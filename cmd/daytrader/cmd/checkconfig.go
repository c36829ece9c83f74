package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/daytrader/config"
)

var checkConfigCmd = &cobra.Command{
	Use:   "check-config",
	Short: "Validate a configuration file",
	Long: `Load and validate a configuration file without starting the scan loop.

Exits non-zero when any field is missing or out of range; the run command
refuses to trade on such a config.`,
	RunE: runCheckConfig,
}

var checkConfigPath string

func init() {
	rootCmd.AddCommand(checkConfigCmd)

	checkConfigCmd.Flags().StringVarP(&checkConfigPath, "config", "f", "configs/config.yaml", "path to config file")
}

func runCheckConfig(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(checkConfigPath)
	if err != nil {
		return err
	}

	fmt.Printf("Config OK: %s\n", checkConfigPath)
	fmt.Printf("  Universe: %d symbols, %d max per cycle\n", len(cfg.Data.Universe), cfg.System.MaxSymbolsPerCycle)
	fmt.Printf("  Account: $%.2f starting, %.0f%% reserve, %d max positions\n",
		cfg.Account.StartingBalance, cfg.Account.CashReservePct*100, cfg.Account.MaxPositions)
	fmt.Printf("  Sizing: %.1f%% risk per trade, positions %.0f%%-%.0f%%, increment %d\n",
		cfg.Account.RiskPerTradePct*100, cfg.Account.MinPositionPct*100,
		cfg.Account.MaxPositionPct*100, cfg.Account.ShareIncrement)
	fmt.Printf("  Breaker: %.1f%% max daily loss\n", cfg.Account.MaxDailyLossPct*100)
	fmt.Printf("  Advisory: enabled=%v\n", cfg.Advisory.Enabled)
	return nil
}
