package history

import (
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/specwatch/specwatch/pkg/config"
	"github.com/specwatch/specwatch/pkg/snapshot"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) Store {
	t.Helper()

	log := logrus.New()
	st := NewStore(log, &config.DatabaseConfig{
		Driver: "sqlite",
		SQLite: config.SQLiteConfig{
			Path: filepath.Join(t.TempDir(), "history.db"),
		},
	})

	require.NoError(t, st.Start(t.Context()))

	t.Cleanup(func() {
		require.NoError(t, st.Stop())
	})

	return st
}

func mib(n uint64) uint64 {
	return n * 1024 * 1024
}

func buildSnapshot() *snapshot.RunSnapshot {
	snap := snapshot.New(snapshot.Config{Enabled: true})
	snap.RunStartTime = 1700000000000

	snap.AppendTestSample("a.spec.ts", "small",
		snapshot.Sample{UsedJSHeapSize: mib(1)})
	snap.AppendTestSample("a.spec.ts", "small",
		snapshot.Sample{UsedJSHeapSize: mib(3)})
	snap.AppendTestSample("b.spec.ts", "big",
		snapshot.Sample{UsedJSHeapSize: mib(8)})

	return snap
}

func TestArchiveRun(t *testing.T) {
	st := newTestStore(t)
	ctx := t.Context()

	runID, err := st.ArchiveRun(ctx, buildSnapshot())
	require.NoError(t, err)
	assert.Equal(t, "run-1700000000000", runID)

	runs, err := st.ListRuns(ctx, 0)
	require.NoError(t, err)
	require.Len(t, runs, 1)

	assert.Equal(t, 2, runs[0].SpecCount)
	assert.Equal(t, 2, runs[0].TestCount)
	assert.Equal(t, 8.0, runs[0].PeakMaxMiB)
	assert.Equal(t, "big", runs[0].PeakTestName)
}

func TestArchiveRun_TestStats(t *testing.T) {
	st := newTestStore(t)
	ctx := t.Context()

	runID, err := st.ArchiveRun(ctx, buildSnapshot())
	require.NoError(t, err)

	stats, err := st.ListTestStats(ctx, runID)
	require.NoError(t, err)
	require.Len(t, stats, 2)

	// Ordered descending by max.
	assert.Equal(t, "big", stats[0].TestTitle)
	assert.Equal(t, 8.0, stats[0].MaxMiB)
	assert.Equal(t, 1, stats[0].SampleCount)

	assert.Equal(t, "small", stats[1].TestTitle)
	assert.Equal(t, 1.0, stats[1].MinMiB)
	assert.Equal(t, 2.0, stats[1].AvgMiB)
	assert.Equal(t, 3.0, stats[1].MaxMiB)
	assert.Equal(t, 2, stats[1].SampleCount)
}

func TestArchiveRun_Rearchive(t *testing.T) {
	st := newTestStore(t)
	ctx := t.Context()

	snap := buildSnapshot()

	runID, err := st.ArchiveRun(ctx, snap)
	require.NoError(t, err)

	// A second archive of the same run replaces, never duplicates.
	snap.AppendTestSample("b.spec.ts", "big",
		snapshot.Sample{UsedJSHeapSize: mib(16)})

	runID2, err := st.ArchiveRun(ctx, snap)
	require.NoError(t, err)
	assert.Equal(t, runID, runID2)

	runs, err := st.ListRuns(ctx, 0)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, 16.0, runs[0].PeakMaxMiB)

	stats, err := st.ListTestStats(ctx, runID)
	require.NoError(t, err)
	assert.Len(t, stats, 2)
}

func TestListRuns_Limit(t *testing.T) {
	st := newTestStore(t)
	ctx := t.Context()

	for i := int64(0); i < 3; i++ {
		snap := buildSnapshot()
		snap.RunStartTime = 1700000000000 + i

		_, err := st.ArchiveRun(ctx, snap)
		require.NoError(t, err)
	}

	runs, err := st.ListRuns(ctx, 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)

	// Newest first.
	assert.Equal(t, int64(1700000000002), runs[0].RunStartTime)
}
