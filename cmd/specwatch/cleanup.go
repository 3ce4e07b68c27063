package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/specwatch/specwatch/pkg/store"
)

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Delete the persisted snapshot",
	RunE:  runCleanup,
}

func init() {
	rootCmd.AddCommand(cleanupCmd)
}

func runCleanup(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	st := store.NewFileStore(log, cfg.Tracking.SnapshotPath, cfg.Snapshot())

	if err := st.Cleanup(); err != nil {
		return fmt.Errorf("removing snapshot: %w", err)
	}

	log.Info("Snapshot removed")

	return nil
}
