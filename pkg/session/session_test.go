package session

import (
	"os"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/specwatch/specwatch/pkg/snapshot"
	"github.com/specwatch/specwatch/pkg/tracker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingTracker captures flushed batches.
type recordingTracker struct {
	mu      sync.Mutex
	batches [][]snapshot.BatchEntry
}

var _ tracker.Tracker = (*recordingTracker)(nil)

func (r *recordingTracker) RecordSpecMemory(string, snapshot.Sample)         {}
func (r *recordingTracker) RecordTestMemory(string, string, snapshot.Sample) {}

func (r *recordingTracker) RecordBatch(entries []snapshot.BatchEntry) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.batches = append(r.batches, entries)
}

func newTestSession(t *testing.T, tr tracker.Tracker, flushCount int) *Session {
	t.Helper()

	s, err := New(logrus.New(), Config{
		SpecName:   "local.spec",
		Interval:   time.Hour, // ticker never fires in tests
		FlushCount: flushCount,
	}, tr, int32(os.Getpid()))
	require.NoError(t, err)

	return s
}

func TestNew_UnknownPID(t *testing.T) {
	_, err := New(logrus.New(), Config{
		Interval:   time.Second,
		FlushCount: 5,
	}, &recordingTracker{}, -1)
	assert.Error(t, err)
}

func TestSample_BuffersUntilFlushCount(t *testing.T) {
	tr := &recordingTracker{}
	s := newTestSession(t, tr, 3)

	s.sample()
	s.sample()
	assert.Empty(t, tr.batches)

	s.sample()
	require.Len(t, tr.batches, 1)
	assert.Len(t, tr.batches[0], 3)
	assert.Equal(t, "local.spec", tr.batches[0][0].SpecName)
	require.NotNil(t, tr.batches[0][0].Memory)
	assert.Positive(t, tr.batches[0][0].Memory.UsedJSHeapSize)
}

func TestSetCurrentTest_LabelsReadings(t *testing.T) {
	tr := &recordingTracker{}
	s := newTestSession(t, tr, 10)

	s.sample()
	s.SetCurrentTest("renders dashboard")
	s.sample()
	s.SetCurrentTest("")
	s.sample()

	s.Flush()

	require.Len(t, tr.batches, 1)
	entries := tr.batches[0]
	require.Len(t, entries, 3)
	assert.Empty(t, entries[0].TestTitle)
	assert.Equal(t, "renders dashboard", entries[1].TestTitle)
	assert.Empty(t, entries[2].TestTitle)
}

func TestFlush_EmptyBufferDoesNotCallTracker(t *testing.T) {
	tr := &recordingTracker{}
	s := newTestSession(t, tr, 10)

	s.Flush()
	assert.Empty(t, tr.batches)
}

func TestStop_FlushesRemaining(t *testing.T) {
	tr := &recordingTracker{}
	s := newTestSession(t, tr, 10)

	s.Start(t.Context())
	s.sample()
	s.Stop()

	require.Len(t, tr.batches, 1)
	assert.Len(t, tr.batches[0], 1)
}
