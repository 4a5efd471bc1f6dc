package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "futsim",
	Short: "Signal-driven futures backtester with standardized risk metrics",
	Long: `Futsim simulates the day-by-day execution of a directional futures
strategy driven by an externally supplied probabilistic signal.

It provides tools for:
  - Replaying daily (price, pred, proba) signal series
  - Margin accounting with daily mark-to-market settlement
  - Loss-limit liquidation ahead of any signal decision
  - Journaling trades and equity curves to CSV or SQLite
  - CAGR, volatility, Sharpe, Sortino, max drawdown, Calmar and beta
    against a compounding risk-free benchmark`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}
