package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/daytrader/journal"
)

var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "List recent closed trades from the journal",
	RunE:  runJournal,
}

var (
	journalDBPath string
	journalDays   int
)

func init() {
	rootCmd.AddCommand(journalCmd)

	journalCmd.Flags().StringVar(&journalDBPath, "db", "data/daytrader.db", "path to the SQLite journal")
	journalCmd.Flags().IntVar(&journalDays, "days", 7, "how many days back to list")
}

func runJournal(cmd *cobra.Command, args []string) error {
	j, err := journal.NewSQLite(journalDBPath)
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}
	defer j.Close()

	end := time.Now()
	start := end.AddDate(0, 0, -journalDays)

	trades, err := j.ListTradesClosedBetween(start, end)
	if err != nil {
		return fmt.Errorf("list trades: %w", err)
	}
	if len(trades) == 0 {
		fmt.Printf("No trades closed in the last %d days.\n", journalDays)
		return nil
	}

	var total float64
	wins := 0
	for _, t := range trades {
		fmt.Printf("%s  %-6s %-5s %5d @ %8.2f -> %8.2f  %9.2f  %s\n",
			t.CloseTime.Format("2006-01-02 15:04"),
			t.Symbol, t.Side, t.Shares, t.EntryPrice, t.ExitPrice, t.RealizedPL, t.Reason)
		total += t.RealizedPL
		if t.RealizedPL > 0 {
			wins++
		}
	}
	fmt.Printf("\n%d trades, %d winners, net P&L %.2f\n", len(trades), wins, total)
	return nil
}
