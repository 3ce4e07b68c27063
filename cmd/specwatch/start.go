package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/specwatch/specwatch/pkg/store"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Initialize a fresh snapshot for a new run",
	Long: `Create a new empty snapshot at the configured path, replacing any
snapshot left over from a previous run. Call this once before the test
run begins.`,
	RunE: runStart,
}

func init() {
	rootCmd.AddCommand(startCmd)
}

func runStart(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if !cfg.Tracking.Enabled {
		log.Info("Memory tracking disabled, nothing to initialize")

		return nil
	}

	st := store.NewFileStore(log, cfg.Tracking.SnapshotPath, cfg.Snapshot())

	if err := st.Initialize(); err != nil {
		return fmt.Errorf("initializing snapshot: %w", err)
	}

	log.WithField("path", st.Path()).Info("Snapshot initialized")

	return nil
}
