package snapshot

import "time"

// Sample is a single memory reading. Field names match the browser
// performance.memory shape since that is the wire format emitted by the
// in-page sampling script.
type Sample struct {
	Timestamp       int64  `json:"timestamp"`
	UsedJSHeapSize  uint64 `json:"usedJSHeapSize"`
	TotalJSHeapSize uint64 `json:"totalJSHeapSize"`
	JSHeapSizeLimit uint64 `json:"jsHeapSizeLimit"`
}

// BatchEntry is one buffered reading flushed by the collaborator. Entries
// without a spec name or memory payload are skipped during merge.
type BatchEntry struct {
	SpecName  string  `json:"specName"`
	TestTitle string  `json:"testTitle"`
	Memory    *Sample `json:"memory"`
}

// nowMillis returns the current wall-clock time in milliseconds, matching
// the timestamp unit used by the sampling script.
func nowMillis() int64 {
	return time.Now().UnixMilli()
}
