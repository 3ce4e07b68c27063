package api

import (
	"encoding/json"
	"net/http"

	"github.com/specwatch/specwatch/pkg/report"
	"github.com/specwatch/specwatch/pkg/snapshot"
)

// errorResponse is a standard error payload.
type errorResponse struct {
	Error string `json:"error"`
}

// specSampleRequest is the body of POST /samples/spec.
type specSampleRequest struct {
	SpecName string           `json:"specName"`
	Memory   *snapshot.Sample `json:"memory"`
}

// testSampleRequest is the body of POST /samples/test.
type testSampleRequest struct {
	SpecName  string           `json:"specName"`
	TestTitle string           `json:"testTitle"`
	Memory    *snapshot.Sample `json:"memory"`
}

// writeJSON encodes v as JSON and writes it to w.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, "encoding response", http.StatusInternalServerError)
	}
}

// handleHealth returns server health status.
func (s *server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleRunStart initializes a fresh snapshot for a new run.
func (s *server) handleRunStart(w http.ResponseWriter, _ *http.Request) {
	if err := s.store.Initialize(); err != nil {
		s.log.WithError(err).Debug("Failed to initialize snapshot")
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "started"})
}

// handleRunCleanup deletes the persisted snapshot.
func (s *server) handleRunCleanup(w http.ResponseWriter, _ *http.Request) {
	if err := s.store.Cleanup(); err != nil {
		s.log.WithError(err).Debug("Failed to remove snapshot")
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "cleaned"})
}

// handleReport returns the shaped report rows as JSON, for callers that
// want the aggregates without the fixed-width console rendering.
func (s *server) handleReport(w http.ResponseWriter, _ *http.Request) {
	snap := s.store.Load()
	if snap == nil {
		writeJSON(w, http.StatusNotFound, errorResponse{"no tracking data"})

		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"runStartTime": snap.RunStartTime,
		"specs":        report.BuildSpecRows(snap),
		"tests":        report.BuildTestRows(snap),
	})
}

// handleSpecSample ingests one whole-spec reading.
func (s *server) handleSpecSample(w http.ResponseWriter, r *http.Request) {
	var req specSampleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil ||
		req.SpecName == "" || req.Memory == nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{"invalid sample payload"})

		return
	}

	s.tracker.RecordSpecMemory(req.SpecName, *req.Memory)

	writeJSON(w, http.StatusAccepted, map[string]string{"status": "accepted"})
}

// handleTestSample ingests one reading for a (spec, test) pair.
func (s *server) handleTestSample(w http.ResponseWriter, r *http.Request) {
	var req testSampleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil ||
		req.SpecName == "" || req.TestTitle == "" || req.Memory == nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{"invalid sample payload"})

		return
	}

	s.tracker.RecordTestMemory(req.SpecName, req.TestTitle, *req.Memory)

	writeJSON(w, http.StatusAccepted, map[string]string{"status": "accepted"})
}

// handleBatch ingests an ordered batch of buffered readings. A body that
// is not a JSON array is rejected without touching the snapshot.
func (s *server) handleBatch(w http.ResponseWriter, r *http.Request) {
	var entries []snapshot.BatchEntry
	if err := json.NewDecoder(r.Body).Decode(&entries); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{"invalid batch payload"})

		return
	}

	s.tracker.RecordBatch(entries)

	writeJSON(w, http.StatusAccepted, map[string]any{
		"status":  "accepted",
		"entries": len(entries),
	})
}
