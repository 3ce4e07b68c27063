package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/specwatch/specwatch/pkg/history"
)

var runsLimit int

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List archived runs from the history database",
	RunE:  runRuns,
}

func init() {
	runsCmd.Flags().IntVar(&runsLimit, "limit", 20,
		"maximum runs to list (0 for all)")

	rootCmd.AddCommand(runsCmd)
}

func runRuns(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if !cfg.History.Enabled {
		return fmt.Errorf("history is not enabled in the configuration")
	}

	ctx := cmd.Context()

	hist := history.NewStore(log, &cfg.History.Database)
	if err := hist.Start(ctx); err != nil {
		return fmt.Errorf("opening history database: %w", err)
	}

	defer func() { _ = hist.Stop() }()

	runs, err := hist.ListRuns(ctx, runsLimit)
	if err != nil {
		return fmt.Errorf("listing runs: %w", err)
	}

	if len(runs) == 0 {
		fmt.Println("No archived runs.")

		return nil
	}

	fmt.Printf("%-24s %-20s %6s %6s %12s  %s\n",
		"RUN", "STARTED", "SPECS", "TESTS", "PEAK (MiB)", "PEAK TEST")

	for _, run := range runs {
		started := time.UnixMilli(run.RunStartTime).UTC().
			Format("2006-01-02 15:04:05")

		fmt.Printf("%-24s %-20s %6d %6d %12.2f  %s\n",
			run.RunID, started, run.SpecCount, run.TestCount,
			run.PeakMaxMiB, run.PeakTestName)
	}

	return nil
}
