package history

import "time"

// Run is one archived test run with its aggregate memory figures.
type Run struct {
	ID           uint   `gorm:"primaryKey"`
	RunID        string `gorm:"not null;uniqueIndex"`
	RunStartTime int64
	SpecCount    int
	TestCount    int

	// Highest per-test max across the run, in MiB.
	PeakMaxMiB   float64 `gorm:"column:peak_max_mib"`
	PeakTestName string

	ArchivedAt time.Time
}

// TestStat is the archived aggregate for one (spec, test) pair in a run.
type TestStat struct {
	ID        uint   `gorm:"primaryKey"`
	RunID     string `gorm:"not null;index:idx_test_stats_run"`
	SpecName  string `gorm:"index"`
	TestTitle string

	MinMiB      float64 `gorm:"column:min_mib"`
	AvgMiB      float64 `gorm:"column:avg_mib"`
	MaxMiB      float64 `gorm:"column:max_mib"`
	SampleCount int
}
