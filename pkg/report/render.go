package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	units "github.com/docker/go-units"
	"github.com/specwatch/specwatch/pkg/snapshot"
	"github.com/specwatch/specwatch/pkg/sysinfo"
)

const (
	// specNameWidth is the fixed spec name column width.
	specNameWidth = 40

	// testTitleWidth is the fixed test title column width.
	testTitleWidth = 48

	// peakTestWidth is the fixed peak test column width in the spec report.
	peakTestWidth = 36

	// maxTestRows caps the test report at the top entries by max memory.
	maxTestRows = 50
)

// renderHeader writes the run header: totals, run start, host summary and
// the reported JS heap limit when samples carry one.
func renderHeader(w io.Writer, snap *snapshot.RunSnapshot, host *sysinfo.Info) {
	fmt.Fprintf(w, "\nMemory usage report: %d spec(s), %d test(s)\n",
		len(snap.Specs), len(snap.Tests))

	if snap.RunStartTime > 0 {
		start := time.UnixMilli(snap.RunStartTime).UTC()
		fmt.Fprintf(w, "Run started: %s\n", start.Format("2006-01-02 15:04:05 UTC"))
	}

	if limit := heapLimit(snap); limit > 0 {
		fmt.Fprintf(w, "JS heap limit: %s\n", units.BytesSize(float64(limit)))
	}

	if host != nil && host.Hostname != "" {
		fmt.Fprintf(w, "Host: %s (%s/%s, %d cores, %.1f GB)\n",
			host.Hostname, host.OS, host.Arch, host.CPUCores, host.MemoryTotalGB)
	}

	fmt.Fprintln(w)
}

// renderSpecReport writes the per-spec table, one row per spec.
func renderSpecReport(w io.Writer, rows []SpecRow) {
	fmt.Fprintln(w, "Per-spec memory usage (MiB)")

	header := fmt.Sprintf("%-*s %8s %8s %8s %7s  %-*s",
		specNameWidth, "SPEC", "MIN", "AVG", "MAX", "COUNT",
		peakTestWidth, "PEAK TEST")
	fmt.Fprintln(w, header)
	fmt.Fprintln(w, strings.Repeat("-", len(header)))

	for _, row := range rows {
		fmt.Fprintf(w, "%-*s %8.2f %8.2f %8.2f %7d  %-*s\n",
			specNameWidth, truncate(row.Name, specNameWidth),
			row.Stats.Min, row.Stats.Avg, row.Stats.Max, row.Stats.Count,
			peakTestWidth, truncate(row.PeakTest, peakTestWidth))
	}

	fmt.Fprintln(w)
}

// renderTestReport writes the flat per-test table, capped at maxTestRows
// with a trailing line stating how many rows were omitted.
func renderTestReport(w io.Writer, rows []TestRow) {
	fmt.Fprintln(w, "Per-test memory usage (MiB)")

	header := fmt.Sprintf("%-*s %-*s %8s %8s %8s %7s",
		testTitleWidth, "TEST",
		specNameWidth, "SPEC", "MIN", "AVG", "MAX", "COUNT")
	fmt.Fprintln(w, header)
	fmt.Fprintln(w, strings.Repeat("-", len(header)))

	shown := rows
	if len(shown) > maxTestRows {
		shown = shown[:maxTestRows]
	}

	for _, row := range shown {
		fmt.Fprintf(w, "%-*s %-*s %8.2f %8.2f %8.2f %7d\n",
			testTitleWidth, truncate(row.Title, testTitleWidth),
			specNameWidth, truncate(row.SpecName, specNameWidth),
			row.Stats.Min, row.Stats.Avg, row.Stats.Max, row.Stats.Count)
	}

	if omitted := len(rows) - len(shown); omitted > 0 {
		fmt.Fprintf(w, "... %d more test(s) omitted (showing top %d by max)\n",
			omitted, maxTestRows)
	}

	fmt.Fprintln(w)
}

// truncate shortens s to fit a fixed column width.
func truncate(s string, width int) string {
	if len(s) <= width {
		return s
	}

	if width <= 3 {
		return s[:width]
	}

	return s[:width-3] + "..."
}
