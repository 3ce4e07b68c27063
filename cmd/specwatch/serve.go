package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/specwatch/specwatch/pkg/api"
	"github.com/specwatch/specwatch/pkg/store"
	"github.com/specwatch/specwatch/pkg/tracker"
	"golang.org/x/sync/errgroup"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the ingest server",
	Long: `Start the HTTP server that accepts memory readings from the
browser-side sampling script and merges them into the run snapshot.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(
		context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st := store.NewFileStore(log, cfg.Tracking.SnapshotPath, cfg.Snapshot())
	tr := tracker.New(log, cfg.Snapshot(), st)
	srv := api.NewServer(log, &cfg.Server, tr, st)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return srv.Start(gctx)
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info("Shutting down ingest server")

		return srv.Stop()
	})

	if err := g.Wait(); err != nil {
		return fmt.Errorf("running ingest server: %w", err)
	}

	return nil
}
