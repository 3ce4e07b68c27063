// Package history archives per-run aggregate statistics to a relational
// database, so memory figures can be compared across runs long after the
// per-run snapshot file has been cleaned up.
package history

import (
	"context"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/sirupsen/logrus"
	"github.com/specwatch/specwatch/pkg/aggregate"
	"github.com/specwatch/specwatch/pkg/config"
	"github.com/specwatch/specwatch/pkg/snapshot"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Store provides persistence for archived run statistics.
type Store interface {
	Start(ctx context.Context) error
	Stop() error

	// ArchiveRun writes one Run row plus one TestStat row per recorded
	// test, derived from the given snapshot. Returns the archived run ID.
	ArchiveRun(ctx context.Context, snap *snapshot.RunSnapshot) (string, error)

	ListRuns(ctx context.Context, limit int) ([]Run, error)
	ListTestStats(ctx context.Context, runID string) ([]TestStat, error)
}

// Compile-time interface check.
var _ Store = (*store)(nil)

type store struct {
	log logrus.FieldLogger
	cfg *config.DatabaseConfig
	db  *gorm.DB
}

// NewStore creates a history Store backed by the configured database driver.
func NewStore(
	log logrus.FieldLogger,
	cfg *config.DatabaseConfig,
) Store {
	return &store{
		log: log.WithField("component", "history"),
		cfg: cfg,
	}
}

// Start opens the database connection and runs migrations.
func (s *store) Start(ctx context.Context) error {
	var dialector gorm.Dialector

	gormCfg := &gorm.Config{
		Logger: logger.Discard,
	}

	switch s.cfg.Driver {
	case "sqlite":
		dialector = sqlite.Open(s.cfg.SQLite.Path)
	case "postgres":
		dsn := fmt.Sprintf(
			"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			s.cfg.Postgres.Host,
			s.cfg.Postgres.Port,
			s.cfg.Postgres.User,
			s.cfg.Postgres.Password,
			s.cfg.Postgres.Database,
			s.cfg.Postgres.SSLMode,
		)
		dialector = postgres.Open(dsn)
	default:
		return fmt.Errorf("unsupported database driver: %s", s.cfg.Driver)
	}

	db, err := gorm.Open(dialector, gormCfg)
	if err != nil {
		return fmt.Errorf("opening history database: %w", err)
	}

	s.db = db

	if err := s.db.WithContext(ctx).AutoMigrate(
		&Run{},
		&TestStat{},
	); err != nil {
		return fmt.Errorf("running history migrations: %w", err)
	}

	s.log.WithField("driver", s.cfg.Driver).
		Info("History database connected")

	return nil
}

// Stop closes the underlying database connection.
func (s *store) Stop() error {
	if s.db == nil {
		return nil
	}

	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("getting underlying db: %w", err)
	}

	return sqlDB.Close()
}

// ArchiveRun derives aggregates from the snapshot and writes them in a
// single transaction. Re-archiving the same run replaces its rows.
func (s *store) ArchiveRun(
	ctx context.Context, snap *snapshot.RunSnapshot,
) (string, error) {
	runID := fmt.Sprintf("run-%d", snap.RunStartTime)

	run := &Run{
		RunID:        runID,
		RunStartTime: snap.RunStartTime,
		SpecCount:    len(snap.SpecOrder),
		TestCount:    len(snap.TestOrder),
		ArchivedAt:   time.Now().UTC(),
	}

	stats := make([]*TestStat, 0, len(snap.TestOrder))

	for _, key := range snap.TestOrder {
		test := snap.Tests[key]
		if test == nil {
			continue
		}

		agg := aggregate.StatsOf(test.Samples)

		if agg.Max > run.PeakMaxMiB {
			run.PeakMaxMiB = agg.Max
			run.PeakTestName = test.TestTitle
		}

		stats = append(stats, &TestStat{
			RunID:       runID,
			SpecName:    test.SpecPath,
			TestTitle:   test.TestTitle,
			MinMiB:      agg.Min,
			AvgMiB:      agg.Avg,
			MaxMiB:      agg.Max,
			SampleCount: agg.Count,
		})
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("run_id = ?", runID).
			Delete(&TestStat{}).Error; err != nil {
			return fmt.Errorf("clearing previous test stats: %w", err)
		}

		result := tx.Where("run_id = ?", runID).
			Assign(run).
			FirstOrCreate(run)
		if result.Error != nil {
			return fmt.Errorf("upserting run: %w", result.Error)
		}

		if len(stats) == 0 {
			return nil
		}

		if err := tx.CreateInBatches(stats, 100).Error; err != nil {
			return fmt.Errorf("inserting test stats: %w", err)
		}

		return nil
	})
	if err != nil {
		return "", fmt.Errorf("archiving run: %w", err)
	}

	s.log.WithFields(logrus.Fields{
		"run_id": runID,
		"tests":  len(stats),
	}).Info("Run archived")

	return runID, nil
}

// ListRuns returns archived runs, newest first. A non-positive limit
// returns all runs.
func (s *store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	q := s.db.WithContext(ctx).Order("run_start_time DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}

	var runs []Run
	if err := q.Find(&runs).Error; err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}

	return runs, nil
}

// ListTestStats returns the archived per-test aggregates for one run.
func (s *store) ListTestStats(
	ctx context.Context, runID string,
) ([]TestStat, error) {
	var stats []TestStat
	if err := s.db.WithContext(ctx).
		Where("run_id = ?", runID).
		Order("max_mib DESC").
		Find(&stats).Error; err != nil {
		return nil, fmt.Errorf("listing test stats: %w", err)
	}

	return stats, nil
}
