// Package tracker is the ingest surface of specwatch. It accepts single or
// batched memory readings from the collaborator and merges them into the
// persisted run snapshot through a load-modify-save cycle.
package tracker

import (
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/specwatch/specwatch/pkg/snapshot"
	"github.com/specwatch/specwatch/pkg/store"
)

// Tracker ingests memory readings. Every method is a silent no-op when
// tracking is disabled or when no snapshot has been initialized: ingest
// never creates a snapshot implicitly, and ingest failures never propagate
// to the host test run.
type Tracker interface {
	// RecordSpecMemory appends a whole-spec reading not attributed to any
	// single test.
	RecordSpecMemory(specName string, smp snapshot.Sample)

	// RecordTestMemory appends a reading for a (spec, test) pair, writing
	// it both to the TestRecord and to the nested per-test sequence under
	// the SpecRecord.
	RecordTestMemory(specName, testTitle string, smp snapshot.Sample)

	// RecordBatch merges buffered readings in order with a single
	// load/save round-trip. An empty batch performs no load or save.
	RecordBatch(entries []snapshot.BatchEntry)
}

// Compile-time interface check.
var _ Tracker = (*tracker)(nil)

type tracker struct {
	log      logrus.FieldLogger
	tracking snapshot.Config
	store    store.Store

	// Serializes load-modify-save cycles. The snapshot format has no
	// transactional guarantees, so two concurrent writers would race on
	// lost updates; the HTTP ingest surface funnels through this mutex.
	mu sync.Mutex
}

// New creates a Tracker writing through the given store.
func New(
	log logrus.FieldLogger,
	tracking snapshot.Config,
	st store.Store,
) Tracker {
	return &tracker{
		log:      log.WithField("component", "tracker"),
		tracking: tracking,
		store:    st,
	}
}

// RecordSpecMemory appends a whole-spec reading.
func (t *tracker) RecordSpecMemory(specName string, smp snapshot.Sample) {
	if !t.tracking.Enabled || specName == "" {
		return
	}

	t.mutate(func(snap *snapshot.RunSnapshot) {
		snap.AppendSpecSample(specName, smp)
	})
}

// RecordTestMemory appends a reading for a (spec, test) pair.
func (t *tracker) RecordTestMemory(specName, testTitle string, smp snapshot.Sample) {
	if !t.tracking.Enabled || specName == "" || testTitle == "" {
		return
	}

	t.mutate(func(snap *snapshot.RunSnapshot) {
		snap.AppendTestSample(specName, testTitle, smp)
	})
}

// RecordBatch merges buffered readings with one load and one save.
func (t *tracker) RecordBatch(entries []snapshot.BatchEntry) {
	if !t.tracking.Enabled || len(entries) == 0 {
		return
	}

	t.mutate(func(snap *snapshot.RunSnapshot) {
		merged := snap.ApplyBatch(entries)

		t.log.WithFields(logrus.Fields{
			"entries": len(entries),
			"merged":  merged,
		}).Debug("Batch merged")
	})
}

// mutate runs one load-modify-save cycle under the writer lock. An absent
// snapshot skips the mutation entirely; a failed save is logged and the
// previous snapshot stays in place.
func (t *tracker) mutate(apply func(*snapshot.RunSnapshot)) {
	t.mu.Lock()
	defer t.mu.Unlock()

	snap := t.store.Load()
	if snap == nil {
		t.log.Debug("No snapshot present, dropping reading")

		return
	}

	apply(snap)

	if err := t.store.Save(snap); err != nil {
		t.log.WithError(err).Debug("Failed to persist snapshot, reading lost")
	}
}
