// Package session implements a local sampling session: an explicit object
// that periodically reads a process's memory, buffers the readings
// client-side, and flushes them to the tracker as batches. The session
// plays the role the in-page sampling loop plays for browser runs, for
// processes that live on the same host.
package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shirou/gopsutil/v4/mem"
	"github.com/shirou/gopsutil/v4/process"
	"github.com/sirupsen/logrus"
	"github.com/specwatch/specwatch/pkg/snapshot"
	"github.com/specwatch/specwatch/pkg/tracker"
)

// Config controls a sampling session.
type Config struct {
	// SpecName labels all readings produced by this session.
	SpecName string

	// Interval is the sampling period.
	Interval time.Duration

	// FlushCount is the buffered reading count that triggers a flush.
	FlushCount int
}

// Session samples one process until stopped. Safe for concurrent use: the
// sampling goroutine and callers setting the current test share the buffer
// under a mutex, and the tracker only sees whole batches.
type Session struct {
	log     logrus.FieldLogger
	cfg     Config
	tracker tracker.Tracker
	proc    *process.Process

	// memLimit is the host's total memory, read once at session start and
	// reported as the limit field of every sample.
	memLimit uint64

	mu          sync.Mutex
	currentTest string
	buf         []snapshot.BatchEntry

	done chan struct{}
	wg   sync.WaitGroup
}

// New creates a session sampling the process with the given PID.
func New(
	log logrus.FieldLogger,
	cfg Config,
	tr tracker.Tracker,
	pid int32,
) (*Session, error) {
	proc, err := process.NewProcess(pid)
	if err != nil {
		return nil, fmt.Errorf("attaching to process %d: %w", pid, err)
	}

	var memLimit uint64
	if vm, err := mem.VirtualMemory(); err == nil {
		memLimit = vm.Total
	}

	return &Session{
		log:      log.WithField("component", "session"),
		cfg:      cfg,
		tracker:  tr,
		proc:     proc,
		memLimit: memLimit,
		buf:      make([]snapshot.BatchEntry, 0, cfg.FlushCount),
		done:     make(chan struct{}),
	}, nil
}

// Start launches the sampling goroutine. It runs until Stop is called or
// ctx is cancelled.
func (s *Session) Start(ctx context.Context) {
	s.wg.Add(1)

	go func() {
		defer s.wg.Done()

		ticker := time.NewTicker(s.cfg.Interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.sample()
			case <-ctx.Done():
				return
			case <-s.done:
				return
			}
		}
	}()

	s.log.WithFields(logrus.Fields{
		"spec":     s.cfg.SpecName,
		"interval": s.cfg.Interval,
	}).Debug("Sampling session started")
}

// SetCurrentTest labels subsequent readings with the given test title. An
// empty title reverts to whole-spec readings.
func (s *Session) SetCurrentTest(title string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.currentTest = title
}

// Flush hands all buffered readings to the tracker as one batch.
func (s *Session) Flush() {
	s.mu.Lock()
	entries := s.buf
	s.buf = make([]snapshot.BatchEntry, 0, s.cfg.FlushCount)
	s.mu.Unlock()

	if len(entries) == 0 {
		return
	}

	s.tracker.RecordBatch(entries)
}

// Stop ends the session and flushes any remaining readings.
func (s *Session) Stop() {
	close(s.done)
	s.wg.Wait()
	s.Flush()

	s.log.Debug("Sampling session stopped")
}

// sample takes one reading and buffers it, flushing when the buffer
// reaches the configured count.
func (s *Session) sample() {
	info, err := s.proc.MemoryInfo()
	if err != nil {
		s.log.WithError(err).Debug("Failed to read process memory")

		return
	}

	smp := snapshot.Sample{
		Timestamp:       time.Now().UnixMilli(),
		UsedJSHeapSize:  info.RSS,
		TotalJSHeapSize: info.VMS,
		JSHeapSizeLimit: s.memLimit,
	}

	s.mu.Lock()
	s.buf = append(s.buf, snapshot.BatchEntry{
		SpecName:  s.cfg.SpecName,
		TestTitle: s.currentTest,
		Memory:    &smp,
	})
	full := len(s.buf) >= s.cfg.FlushCount
	s.mu.Unlock()

	if full {
		s.Flush()
	}
}
