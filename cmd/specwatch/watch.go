package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/specwatch/specwatch/pkg/session"
	"github.com/specwatch/specwatch/pkg/store"
	"github.com/specwatch/specwatch/pkg/tracker"
)

var (
	watchPID  int32
	watchSpec string
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Sample a local process into the snapshot",
	Long: `Periodically read a local process's memory and merge the readings
into the run snapshot as whole-spec samples, until interrupted. Useful
for tracking a test runner or dev server alongside the browser-side
readings.`,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().Int32Var(&watchPID, "pid", int32(os.Getpid()),
		"process to sample (defaults to specwatch itself)")
	watchCmd.Flags().StringVar(&watchSpec, "spec", "local-process",
		"spec name to record the readings under")

	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if !cfg.Tracking.Enabled {
		log.Info("Memory tracking disabled, nothing to watch")

		return nil
	}

	st := store.NewFileStore(log, cfg.Tracking.SnapshotPath, cfg.Snapshot())
	tr := tracker.New(log, cfg.Snapshot(), st)

	sess, err := session.New(log, session.Config{
		SpecName:   watchSpec,
		Interval:   cfg.Sampling.Interval,
		FlushCount: cfg.Sampling.FlushCount,
	}, tr, watchPID)
	if err != nil {
		return fmt.Errorf("creating sampling session: %w", err)
	}

	ctx, stop := signal.NotifyContext(
		context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sess.Start(ctx)

	log.WithField("pid", watchPID).Info("Sampling, press Ctrl-C to stop")

	<-ctx.Done()
	sess.Stop()

	return nil
}
