// Package scheduler runs periodic maintenance jobs in the background.
package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/oszuidwest/zwfm-mixdown/internal/repository"
	"github.com/oszuidwest/zwfm-mixdown/internal/storage"
	"github.com/oszuidwest/zwfm-mixdown/pkg/logger"
)

const (
	// cleanupInterval is how often the cleanup runs after the initial pass.
	cleanupInterval = 24 * time.Hour
	// cleanupTimeout bounds a single cleanup pass.
	cleanupTimeout = 5 * time.Minute
	// orphanGrace keeps unreferenced files that may still belong to a running export.
	orphanGrace = time.Hour
)

// MixCleanupService deletes stored mix files after the retention period.
// Database records are kept and marked purged so the export history survives.
type MixCleanupService struct {
	// repo provides access to mix records for cleanup queries
	repo repository.MixRepository
	// store holds the exported WAV files
	store storage.Store
	// retention is how long a mix file is kept after export
	retention time.Duration
	// now replaces time.Now in tests
	now func() time.Time
	// ticker controls the daily execution schedule
	ticker *time.Ticker
	// done channel enables graceful shutdown signaling
	done chan bool
	// stopOnce ensures Stop() can only be called once
	stopOnce sync.Once
}

// CleanupReport summarises one cleanup pass.
type CleanupReport struct {
	Purged         int
	PurgedBytes    int64
	OrphansRemoved int
	OrphanBytes    int64
}

// NewMixCleanupService creates a new background service for mix file cleanup.
// The service must be started with [MixCleanupService.Start] to begin operations.
func NewMixCleanupService(repo repository.MixRepository, store storage.Store, retention time.Duration) *MixCleanupService {
	return &MixCleanupService{
		repo:      repo,
		store:     store,
		retention: retention,
		now:       time.Now,
		done:      make(chan bool),
	}
}

// Start runs a cleanup pass immediately and then daily in a separate goroutine.
// The service can be stopped with [MixCleanupService.Stop].
func (s *MixCleanupService) Start() {
	logger.Info("Starting mix cleanup service (retention: %s, runs daily)", s.retention)

	s.runOnce()

	s.ticker = time.NewTicker(cleanupInterval)

	go func() {
		for {
			select {
			case <-s.ticker.C:
				s.runOnce()
			case <-s.done:
				return
			}
		}
	}()
}

// Stop gracefully shuts down the cleanup service.
func (s *MixCleanupService) Stop() {
	s.stopOnce.Do(func() {
		logger.Info("Stopping mix cleanup service")
		select {
		case s.done <- true:
		case <-time.After(5 * time.Second):
			logger.Info("Mix cleanup service shutdown timeout")
		}
		if s.ticker != nil {
			s.ticker.Stop()
		}
	})
}

func (s *MixCleanupService) runOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), cleanupTimeout)
	defer cancel()

	report, err := s.Cleanup(ctx)
	if err != nil {
		logger.Error("Mix cleanup failed: %v", err)
		return
	}
	if report.Purged > 0 || report.OrphansRemoved > 0 {
		logger.Info("Mix cleanup complete: %d files purged (%.1f MB freed), %d orphans removed (%.1f MB freed)",
			report.Purged, float64(report.PurgedBytes)/1024/1024,
			report.OrphansRemoved, float64(report.OrphanBytes)/1024/1024)
	}
}

// Cleanup purges expired mix files and removes stored files no record refers to.
// Failures on single files are logged and skipped.
func (s *MixCleanupService) Cleanup(ctx context.Context) (CleanupReport, error) {
	var report CleanupReport

	cutoff := s.now().Add(-s.retention)
	mixes, err := s.repo.GetExpired(ctx, cutoff)
	if err != nil {
		return report, err
	}

	for _, m := range mixes {
		if m.Filename != "" {
			// A file that is already gone only needs the record updated.
			if err := s.store.Remove(ctx, m.Filename); err != nil && !errors.Is(err, storage.ErrNotFound) {
				logger.Error("Failed to remove mix file %s: %v", m.Filename, err)
				continue
			}
		}

		if err := s.repo.MarkFilePurged(ctx, m.ID); err != nil {
			logger.Error("Failed to mark mix %d as purged: %v", m.ID, err)
			continue
		}

		report.Purged++
		report.PurgedBytes += m.FileSize
	}

	report.OrphansRemoved, report.OrphanBytes = s.cleanOrphanedFiles(ctx)
	return report, nil
}

// cleanOrphanedFiles removes stored files that have no matching mix record
// and are older than orphanGrace.
func (s *MixCleanupService) cleanOrphanedFiles(ctx context.Context) (int, int64) {
	objects, err := s.store.List(ctx)
	if err != nil {
		logger.Error("Failed to list stored mix files: %v", err)
		return 0, 0
	}
	if len(objects) == 0 {
		return 0, 0
	}

	knownFiles, err := s.repo.GetAllFilenames(ctx)
	if err != nil {
		logger.Error("Failed to query mix files from database: %v", err)
		return 0, 0
	}

	knownSet := make(map[string]struct{}, len(knownFiles))
	for _, f := range knownFiles {
		knownSet[f] = struct{}{}
	}

	graceCutoff := s.now().Add(-orphanGrace)
	var removed int
	var bytesFreed int64

	for _, obj := range objects {
		if _, known := knownSet[obj.Name]; known {
			continue
		}
		if obj.ModTime.After(graceCutoff) {
			continue
		}

		if err := s.store.Remove(ctx, obj.Name); err != nil {
			logger.Error("Failed to remove orphaned file %s: %v", obj.Name, err)
			continue
		}

		removed++
		bytesFreed += obj.Size
	}

	return removed, bytesFreed
}
