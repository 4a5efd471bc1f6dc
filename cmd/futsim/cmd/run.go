package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/futsim/backtest"
	"github.com/rustyeddy/futsim/config"
	"github.com/rustyeddy/futsim/journal"
	"github.com/rustyeddy/futsim/metrics"
	"github.com/rustyeddy/futsim/signal"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a backtest over a signal CSV",
	Long: `Run replays a daily signal series (time,price,pred,proba CSV, plain
or .xz compressed) through the position state machine and prints the
performance report for the strategy and the risk-free benchmark.

Example:
  futsim run --signal data/es_daily.csv --threshold 0.6 --loss-limit -0.1`,
	RunE: runBacktest,
}

var (
	runSignalPath string
	runConfigPath string
	runBalance    float64
	runThreshold  float64
	runLossLimit  float64
	runRFRate     float64
	runCloseEnd   bool
	runDBPath     string
)

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runSignalPath, "signal", "s", "", "path to signal CSV (time,price,pred,proba) (required)")
	runCmd.Flags().StringVarP(&runConfigPath, "config", "c", "", "path to YAML/JSON config file")
	runCmd.Flags().Float64VarP(&runBalance, "balance", "b", 100_000, "initial portfolio value")
	runCmd.Flags().Float64VarP(&runThreshold, "threshold", "t", 0.6, "confidence threshold for new entries")
	runCmd.Flags().Float64VarP(&runLossLimit, "loss-limit", "l", -0.10, "loss limit fraction (negative)")
	runCmd.Flags().Float64VarP(&runRFRate, "rf-rate", "r", 0, "daily risk-free rate")
	runCmd.Flags().BoolVar(&runCloseEnd, "close-end", false, "force-close an open position after the final tick")
	runCmd.Flags().StringVarP(&runDBPath, "db", "d", "", "journal to a SQLite DB at this path")

	runCmd.MarkFlagRequired("signal")
}

func runBacktest(cmd *cobra.Command, args []string) error {
	cfg := config.Default()
	if runConfigPath != "" {
		loaded, err := config.LoadFromFile(runConfigPath)
		if err != nil {
			return err
		}
		cfg = loaded
	} else {
		cfg.Backtest.InitialValue = runBalance
		cfg.Backtest.ConfidenceThreshold = runThreshold
		cfg.Backtest.LossLimitFraction = runLossLimit
		cfg.Backtest.DailyRiskFreeRate = runRFRate
		cfg.Backtest.CloseAtEnd = runCloseEnd
	}
	if runDBPath != "" {
		cfg.Journal = config.JournalConfig{Type: "sqlite", DBPath: runDBPath}
	}

	series, err := signal.Load(runSignalPath)
	if err != nil {
		return fmt.Errorf("signal: %w", err)
	}

	jnl, err := openJournal(cfg.Journal)
	if err != nil {
		return fmt.Errorf("journal: %w", err)
	}
	defer jnl.Close()

	sizer, err := cfg.Sizing.Sizer()
	if err != nil {
		return err
	}
	driverCfg := cfg.Driver()
	driverCfg.Sizer = sizer

	driver := &backtest.Driver{Config: driverCfg, Journal: jnl}
	res, err := driver.Run(series)
	if err != nil {
		return fmt.Errorf("run: %w", err)
	}

	fmt.Printf("Backtest complete: %s .. %s (%d ticks, %d trades)\n",
		res.Start.Format("2006-01-02"), res.End.Format("2006-01-02"),
		len(res.Equity), len(res.Trades))
	fmt.Printf("  Final equity:    %.2f\n", res.FinalEquity)
	fmt.Printf("  Final benchmark: %.2f\n", res.FinalBenchmark)
	fmt.Printf("  Wins/Losses:     %d/%d\n\n", res.Wins, res.Losses)

	return printReports(res.EquityValues(), res.BenchmarkValues())
}

func openJournal(jc config.JournalConfig) (journal.Journal, error) {
	switch jc.Type {
	case "", "none":
		return journal.Nop{}, nil
	case "csv":
		return journal.NewCSV(jc.TradesFile, jc.EquityFile)
	case "sqlite":
		return journal.NewSQLite(jc.DBPath)
	default:
		return nil, fmt.Errorf("unknown journal type %q", jc.Type)
	}
}

func printReports(equity, benchmark []float64) error {
	strat, err := metrics.Compute(equity, benchmark)
	if err != nil {
		return err
	}
	bench, err := metrics.Compute(benchmark, benchmark)
	if err != nil {
		return err
	}

	fmt.Println("Strategy:")
	fmt.Print(strat)
	fmt.Println("Benchmark:")
	fmt.Print(bench)
	return nil
}
