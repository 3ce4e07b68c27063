// Package report renders the end-of-run memory usage summary. Data shaping
// (rows, sorted stats) is kept separate from the fixed-width rendering so
// alternate renderers can be added without touching the aggregator.
package report

import (
	"io"

	"github.com/sirupsen/logrus"
	"github.com/specwatch/specwatch/pkg/snapshot"
	"github.com/specwatch/specwatch/pkg/store"
	"github.com/specwatch/specwatch/pkg/sysinfo"
)

// Reporter loads the run snapshot and writes the formatted summary.
type Reporter interface {
	// Report renders the summary for the current snapshot. Logs and
	// returns without output when tracking is disabled or no snapshot
	// data exists; never fails the host run.
	Report() error
}

// Compile-time interface check.
var _ Reporter = (*reporter)(nil)

type reporter struct {
	log      logrus.FieldLogger
	tracking snapshot.Config
	store    store.Store
	out      io.Writer
	hostInfo func() *sysinfo.Info
}

// New creates a Reporter writing to out.
func New(
	log logrus.FieldLogger,
	tracking snapshot.Config,
	st store.Store,
	out io.Writer,
) Reporter {
	return &reporter{
		log:      log.WithField("component", "reporter"),
		tracking: tracking,
		store:    st,
		out:      out,
		hostInfo: sysinfo.Collect,
	}
}

// Report renders the spec report and, unless per-test detail is
// suppressed, the test report.
func (r *reporter) Report() error {
	if !r.tracking.Enabled {
		r.log.Info("Memory tracking disabled, skipping report")

		return nil
	}

	snap := r.store.Load()
	if snap == nil {
		r.log.Info("No memory tracking data recorded for this run")

		return nil
	}

	r.Render(snap)

	return nil
}

// Render writes the full report for an already-loaded snapshot.
func (r *reporter) Render(snap *snapshot.RunSnapshot) {
	renderHeader(r.out, snap, r.hostInfo())
	renderSpecReport(r.out, BuildSpecRows(snap))

	if !r.tracking.TrackSpecOnly {
		renderTestReport(r.out, BuildTestRows(snap))
	}
}
