package report

import (
	"sort"

	"github.com/specwatch/specwatch/pkg/aggregate"
	"github.com/specwatch/specwatch/pkg/snapshot"
)

// SpecRow is one spec report line before rendering.
type SpecRow struct {
	Name     string          `json:"name"`
	Stats    aggregate.Stats `json:"stats"`
	PeakTest string          `json:"peakTest"`
}

// TestRow is one test report line before rendering.
type TestRow struct {
	Title    string          `json:"title"`
	SpecName string          `json:"specName"`
	Stats    aggregate.Stats `json:"stats"`
}

// BuildSpecRows shapes one row per spec, sorted descending by max. Ties
// keep snapshot insertion order.
func BuildSpecRows(snap *snapshot.RunSnapshot) []SpecRow {
	rows := make([]SpecRow, 0, len(snap.SpecOrder))

	for _, name := range snap.SpecOrder {
		spec := snap.Specs[name]
		if spec == nil {
			continue
		}

		peakTitle, _ := aggregate.PeakTest(spec)

		rows = append(rows, SpecRow{
			Name:     name,
			Stats:    aggregate.AggregateSpec(spec),
			PeakTest: peakTitle,
		})
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Stats.Max > rows[j].Stats.Max
	})

	return rows
}

// BuildTestRows shapes one row per test across all specs (not grouped),
// sorted descending by max. Ties keep snapshot insertion order.
func BuildTestRows(snap *snapshot.RunSnapshot) []TestRow {
	rows := make([]TestRow, 0, len(snap.TestOrder))

	for _, key := range snap.TestOrder {
		test := snap.Tests[key]
		if test == nil {
			continue
		}

		rows = append(rows, TestRow{
			Title:    test.TestTitle,
			SpecName: test.SpecPath,
			Stats:    aggregate.StatsOf(test.Samples),
		})
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Stats.Max > rows[j].Stats.Max
	})

	return rows
}

// heapLimit returns the first non-zero jsHeapSizeLimit found in the
// snapshot, scanning specs in insertion order. Zero when no sample
// carries a limit.
func heapLimit(snap *snapshot.RunSnapshot) uint64 {
	for _, key := range snap.TestOrder {
		if test := snap.Tests[key]; test != nil {
			for _, smp := range test.Samples {
				if smp.JSHeapSizeLimit > 0 {
					return smp.JSHeapSizeLimit
				}
			}
		}
	}

	for _, name := range snap.SpecOrder {
		if spec := snap.Specs[name]; spec != nil {
			for _, smp := range spec.Samples {
				if smp.JSHeapSizeLimit > 0 {
					return smp.JSHeapSizeLimit
				}
			}
		}
	}

	return 0
}
