package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "daytrader",
	Short: "An automated equity-trading assistant",
	Long: `Daytrader periodically scans a market universe, filters candidates
against liquidity criteria, scores each trade setup, and manages positions
through a brokerage API under portfolio-wide risk limits.

It provides:
  - A periodic scan loop with parallel per-symbol analysis
  - Rule-based setup scoring with optional LLM advisory blending
  - Account-level risk management (daily-loss breaker, sector caps)
  - Position lifecycle management (trailing, time, and adverse-excursion stops)
  - A paper broker for dry runs and a SQLite/CSV trade journal`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}
