package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/specwatch/specwatch/pkg/config"
	"github.com/specwatch/specwatch/pkg/history"
	"github.com/specwatch/specwatch/pkg/report"
	"github.com/specwatch/specwatch/pkg/store"
	"github.com/specwatch/specwatch/pkg/upload"
)

var reportOutputFile string

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Render the end-of-run memory report",
	Long: `Load the run snapshot, print the spec and test memory reports, and
optionally archive the run to the history database and upload the run
artifacts to S3.`,
	RunE: runReport,
}

func init() {
	reportCmd.Flags().StringVarP(&reportOutputFile, "output", "o", "",
		"also write the rendered report to this file")

	rootCmd.AddCommand(reportCmd)
}

func runReport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx := cmd.Context()

	st := store.NewFileStore(log, cfg.Tracking.SnapshotPath, cfg.Snapshot())

	var out io.Writer = os.Stdout

	if reportOutputFile != "" {
		f, err := os.Create(reportOutputFile)
		if err != nil {
			return fmt.Errorf("creating report file: %w", err)
		}

		defer func() { _ = f.Close() }()

		out = io.MultiWriter(os.Stdout, f)
	}

	rep := report.New(log, cfg.Snapshot(), st, out)
	if err := rep.Report(); err != nil {
		return fmt.Errorf("rendering report: %w", err)
	}

	runID, err := archiveRun(ctx, cfg, st)
	if err != nil {
		return err
	}

	return uploadRun(ctx, cfg, st, runID)
}

// archiveRun writes the run's aggregates to the history database when
// history is enabled. Returns the archived run ID, or "" when nothing was
// archived.
func archiveRun(
	ctx context.Context, cfg *config.Config, st store.Store,
) (string, error) {
	if !cfg.History.Enabled || !cfg.Tracking.Enabled {
		return "", nil
	}

	snap := st.Load()
	if snap == nil {
		return "", nil
	}

	hist := history.NewStore(log, &cfg.History.Database)

	if err := hist.Start(ctx); err != nil {
		return "", fmt.Errorf("opening history database: %w", err)
	}

	defer func() { _ = hist.Stop() }()

	runID, err := hist.ArchiveRun(ctx, snap)
	if err != nil {
		return "", fmt.Errorf("archiving run: %w", err)
	}

	return runID, nil
}

// uploadRun publishes the snapshot and rendered report to S3 when upload
// is enabled.
func uploadRun(
	ctx context.Context, cfg *config.Config, st store.Store, runID string,
) error {
	s3cfg := cfg.Upload.S3
	if s3cfg == nil || !s3cfg.Enabled {
		return nil
	}

	if runID == "" {
		snap := st.Load()
		if snap == nil {
			return nil
		}

		runID = fmt.Sprintf("run-%d", snap.RunStartTime)
	}

	up, err := upload.NewS3Uploader(log, s3cfg)
	if err != nil {
		return fmt.Errorf("creating uploader: %w", err)
	}

	if err := up.Preflight(ctx); err != nil {
		return fmt.Errorf("s3 preflight: %w", err)
	}

	paths := []string{st.Path()}
	if reportOutputFile != "" {
		paths = append(paths, reportOutputFile)
	}

	if err := up.UploadRun(ctx, runID, paths...); err != nil {
		return fmt.Errorf("uploading run artifacts: %w", err)
	}

	return nil
}
