package aggregate

import (
	"testing"

	"github.com/specwatch/specwatch/pkg/snapshot"
	"github.com/stretchr/testify/assert"
)

func sampleBytes(used uint64) snapshot.Sample {
	return snapshot.Sample{
		Timestamp:       1700000000000,
		UsedJSHeapSize:  used,
		TotalJSHeapSize: used * 2,
		JSHeapSizeLimit: 4096 * 1024 * 1024,
	}
}

func TestStatsOf_Empty(t *testing.T) {
	assert.Equal(t, Stats{}, StatsOf(nil))
	assert.Equal(t, Stats{}, StatsOf([]snapshot.Sample{}))
}

func TestStatsOf_WholeMiBSamples(t *testing.T) {
	stats := StatsOf([]snapshot.Sample{
		sampleBytes(1048576),
		sampleBytes(2097152),
		sampleBytes(3145728),
	})

	assert.Equal(t, Stats{Min: 1, Avg: 2, Max: 3, Count: 3}, stats)
}

func TestStatsOf_RoundsToTwoDecimals(t *testing.T) {
	// 1.5 MiB and 2 MiB average to 1.75 MiB exactly; 1 byte over 1 MiB
	// rounds back down to 1.00.
	stats := StatsOf([]snapshot.Sample{
		sampleBytes(1572864),
		sampleBytes(2097152),
	})
	assert.Equal(t, Stats{Min: 1.5, Avg: 1.75, Max: 2, Count: 2}, stats)

	single := StatsOf([]snapshot.Sample{sampleBytes(1048577)})
	assert.Equal(t, 1.0, single.Min)
	assert.Equal(t, 1.0, single.Max)
}

func TestAggregateSpec_UnionOfTestAndDirectSamples(t *testing.T) {
	snap := snapshot.New(snapshot.Config{Enabled: true})
	snap.AppendTestSample("a.spec.ts", "t1", sampleBytes(1048576))
	snap.AppendSpecSample("a.spec.ts", sampleBytes(3145728))

	spec := snap.Specs["a.spec.ts"]

	expected := StatsOf([]snapshot.Sample{
		sampleBytes(1048576),
		sampleBytes(3145728),
	})
	assert.Equal(t, expected, AggregateSpec(spec))
	assert.Equal(t, 2, AggregateSpec(spec).Count)
}

func TestAggregateSpec_Nil(t *testing.T) {
	assert.Equal(t, Stats{}, AggregateSpec(nil))
}

func TestPeakTest_GreatestSingleSample(t *testing.T) {
	snap := snapshot.New(snapshot.Config{Enabled: true})
	snap.AppendTestSample("a.spec.ts", "small", sampleBytes(1048576))
	snap.AppendTestSample("a.spec.ts", "big", sampleBytes(5242880))
	snap.AppendTestSample("a.spec.ts", "big", sampleBytes(2097152))
	snap.AppendTestSample("a.spec.ts", "medium", sampleBytes(3145728))

	title, peak := PeakTest(snap.Specs["a.spec.ts"])
	assert.Equal(t, "big", title)
	assert.Equal(t, 5.0, peak)
}

func TestPeakTest_TieKeepsInsertionOrder(t *testing.T) {
	snap := snapshot.New(snapshot.Config{Enabled: true})
	snap.AppendTestSample("a.spec.ts", "first", sampleBytes(2097152))
	snap.AppendTestSample("a.spec.ts", "second", sampleBytes(2097152))

	title, peak := PeakTest(snap.Specs["a.spec.ts"])
	assert.Equal(t, "first", title)
	assert.Equal(t, 2.0, peak)
}

func TestPeakTest_NoTests(t *testing.T) {
	title, peak := PeakTest(&snapshot.SpecRecord{SpecName: "a.spec.ts"})
	assert.Empty(t, title)
	assert.Zero(t, peak)

	title, peak = PeakTest(nil)
	assert.Empty(t, title)
	assert.Zero(t, peak)
}
