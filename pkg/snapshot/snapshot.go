package snapshot

import "strings"

// testKeySeparator joins spec name and test title into the composite key
// used by RunSnapshot.Tests.
const testKeySeparator = "::"

// Config is the tracking configuration captured into the snapshot at run
// start. It is consumed read-only afterwards.
type Config struct {
	Enabled       bool `json:"enabled"`
	TrackSpecOnly bool `json:"trackSpecOnly"`
	Debug         bool `json:"debug"`
}

// TestRecord holds all readings recorded for a single (spec, test) pair
// during one run.
type TestRecord struct {
	SpecPath  string   `json:"specPath"`
	TestTitle string   `json:"testTitle"`
	Samples   []Sample `json:"samples"`
	CreatedAt int64    `json:"createdAt"`
}

// SpecRecord holds all readings recorded for a single spec file during one
// run. Samples holds whole-spec readings not attributed to any single test.
// Tests holds a per-test copy of the readings also stored in the matching
// TestRecord, denormalized for reporting locality.
type SpecRecord struct {
	SpecName  string              `json:"specName"`
	Samples   []Sample            `json:"samples"`
	Tests     map[string][]Sample `json:"tests"`
	TestOrder []string            `json:"testOrder"`
	CreatedAt int64               `json:"createdAt"`
}

// RunSnapshot is the complete persisted state for a single run. SpecOrder
// and TestOrder record map key insertion order, which the report contract
// uses for tie-breaking.
type RunSnapshot struct {
	RunStartTime int64                  `json:"runStartTime"`
	Specs        map[string]*SpecRecord `json:"specs"`
	SpecOrder    []string               `json:"specOrder"`
	Tests        map[string]*TestRecord `json:"tests"`
	TestOrder    []string               `json:"testOrder"`
	Config       Config                 `json:"config"`
}

// New creates an empty snapshot for a run starting now.
func New(cfg Config) *RunSnapshot {
	return &RunSnapshot{
		RunStartTime: nowMillis(),
		Specs:        make(map[string]*SpecRecord),
		SpecOrder:    make([]string, 0, 16),
		Tests:        make(map[string]*TestRecord),
		TestOrder:    make([]string, 0, 64),
		Config:       cfg,
	}
}

// TestKey builds the composite key for a (spec, test) pair.
func TestKey(specName, testTitle string) string {
	return specName + testKeySeparator + testTitle
}

// SplitTestKey splits a composite key back into spec name and test title.
// Test titles may themselves contain the separator, so only the first
// occurrence splits.
func SplitTestKey(key string) (specName, testTitle string) {
	specName, testTitle, _ = strings.Cut(key, testKeySeparator)

	return specName, testTitle
}
