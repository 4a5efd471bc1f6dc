package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/futsim/journal"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Recompute performance metrics from a journaled run",
	Long: `Report reads the equity curve out of a SQLite journal written by a
previous run and recomputes the full metrics report, without replaying
the signal series.

Example:
  futsim report --db backtest.sqlite`,
	RunE: runReport,
}

var reportDBPath string

func init() {
	rootCmd.AddCommand(reportCmd)

	reportCmd.Flags().StringVarP(&reportDBPath, "db", "d", "./backtest.sqlite", "path to SQLite journal DB")
}

func runReport(cmd *cobra.Command, args []string) error {
	j, err := journal.NewSQLite(reportDBPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer j.Close()

	snaps, err := j.ListEquity()
	if err != nil {
		return fmt.Errorf("list equity: %w", err)
	}
	if len(snaps) == 0 {
		return fmt.Errorf("no equity snapshots in %s", reportDBPath)
	}

	equity := make([]float64, len(snaps))
	benchmark := make([]float64, len(snaps))
	for i, s := range snaps {
		equity[i] = s.Equity
		benchmark[i] = s.RiskFree
	}

	trades, err := j.ListTrades()
	if err != nil {
		return fmt.Errorf("list trades: %w", err)
	}

	fmt.Printf("Journal %s: %d equity points, %d trade records\n\n",
		reportDBPath, len(snaps), len(trades))

	return printReports(equity, benchmark)
}
