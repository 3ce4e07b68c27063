// Package aggregate computes statistics over recorded memory samples. All
// functions are pure and stateless; they are called only at report time.
package aggregate

import (
	"math"

	"github.com/specwatch/specwatch/pkg/snapshot"
)

// Stats contains min/avg/max over the used heap size of a sample sequence,
// in mebibytes rounded to two decimal places, plus the sample count.
type Stats struct {
	Min   float64 `json:"min"`
	Avg   float64 `json:"avg"`
	Max   float64 `json:"max"`
	Count int     `json:"count"`
}

// StatsOf computes Stats over the usedJSHeapSize field of the given
// samples. An empty or nil sequence yields all zeros.
func StatsOf(samples []snapshot.Sample) Stats {
	if len(samples) == 0 {
		return Stats{}
	}

	var (
		minBytes = samples[0].UsedJSHeapSize
		maxBytes = samples[0].UsedJSHeapSize
		sumBytes float64
	)

	for _, smp := range samples {
		if smp.UsedJSHeapSize < minBytes {
			minBytes = smp.UsedJSHeapSize
		}

		if smp.UsedJSHeapSize > maxBytes {
			maxBytes = smp.UsedJSHeapSize
		}

		sumBytes += float64(smp.UsedJSHeapSize)
	}

	return Stats{
		Min:   toMiB(float64(minBytes)),
		Avg:   toMiB(sumBytes / float64(len(samples))),
		Max:   toMiB(float64(maxBytes)),
		Count: len(samples),
	}
}

// AggregateSpec computes Stats over the union of every per-test sample
// under the spec plus the spec's own direct samples. Spec-level stats are
// over the combined readings, not a statistic of per-test statistics.
func AggregateSpec(spec *snapshot.SpecRecord) Stats {
	if spec == nil {
		return Stats{}
	}

	total := len(spec.Samples)
	for _, samples := range spec.Tests {
		total += len(samples)
	}

	combined := make([]snapshot.Sample, 0, total)

	for _, title := range spec.TestOrder {
		combined = append(combined, spec.Tests[title]...)
	}

	combined = append(combined, spec.Samples...)

	return StatsOf(combined)
}

// PeakTest returns the test with the strictly greatest per-test max under
// the spec, together with that max in MiB. Ties keep the first test in
// insertion order. A spec with no tests yields ("", 0).
func PeakTest(spec *snapshot.SpecRecord) (string, float64) {
	if spec == nil {
		return "", 0
	}

	var (
		peakTitle string
		peakMax   float64
	)

	for i, title := range spec.TestOrder {
		testMax := StatsOf(spec.Tests[title]).Max
		if i == 0 || testMax > peakMax {
			peakTitle = title
			peakMax = testMax
		}
	}

	return peakTitle, peakMax
}

// toMiB converts bytes to mebibytes rounded to two decimal places.
func toMiB(bytes float64) float64 {
	return math.Round(bytes/1024/1024*100) / 100
}
