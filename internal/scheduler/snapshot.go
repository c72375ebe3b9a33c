// Package scheduler runs the periodic CSV snapshot of the catalog.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/mrlokans/librarium/internal/config"
	"github.com/mrlokans/librarium/internal/database/books"
	"github.com/mrlokans/librarium/internal/entities"
	"github.com/mrlokans/librarium/internal/exporters"
	"github.com/mrlokans/librarium/internal/tasks"
)

// scheduleParser accepts standard 5-field cron expressions.
var scheduleParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// ValidateSchedule checks a 5-field cron expression.
func ValidateSchedule(schedule string) error {
	_, err := scheduleParser.Parse(schedule)
	return err
}

// BookSource lists catalog books for export.
type BookSource interface {
	List(opts books.ListOptions) ([]entities.Book, error)
}

// AuthorSource lists catalog authors for export.
type AuthorSource interface {
	List() ([]entities.Author, error)
}

// ExportRecorder logs snapshot outcomes to the activity log.
type ExportRecorder interface {
	LogExport(description string, err error)
}

// RunInfo records the outcome of the most recent snapshot run.
type RunInfo struct {
	StartedAt time.Time `json:"started_at"`
	Duration  string    `json:"duration"`
	Status    string    `json:"status"`
	Detail    string    `json:"detail"`
	Dir       string    `json:"dir,omitempty"`
}

// Status reports scheduler state for the snapshot API.
type Status struct {
	Enabled  bool       `json:"enabled"`
	Running  bool       `json:"running"`
	Schedule string     `json:"schedule"`
	Dir      string     `json:"dir"`
	NextRun  *time.Time `json:"next_run,omitempty"`
	LastRun  *RunInfo   `json:"last_run,omitempty"`
}

// SnapshotScheduler exports the catalog to timestamped CSV directories
// on a cron schedule.
type SnapshotScheduler struct {
	cfg       config.Snapshot
	retention config.Activity

	books   BookSource
	authors AuthorSource

	recorder   ExportRecorder
	taskClient *tasks.Client

	cron       *cron.Cron
	entryID    cron.EntryID
	mu         sync.RWMutex
	isRunning  bool
	cancelFunc context.CancelFunc

	// Guarded separately so a running job can record its outcome while
	// Stop holds mu waiting for it.
	runMu   sync.RWMutex
	lastRun *RunInfo
}

// NewSnapshotScheduler creates a scheduler over the catalog repositories.
func NewSnapshotScheduler(cfg config.Snapshot, retention config.Activity, books BookSource, authors AuthorSource) *SnapshotScheduler {
	return &SnapshotScheduler{
		cfg:       cfg,
		retention: retention,
		books:     books,
		authors:   authors,
		cron:      cron.New(cron.WithParser(scheduleParser)),
	}
}

// SetRecorder wires snapshot outcomes into the activity log.
func (s *SnapshotScheduler) SetRecorder(recorder ExportRecorder) {
	s.recorder = recorder
}

// SetTaskClient enables activity cleanup enqueueing after each snapshot.
func (s *SnapshotScheduler) SetTaskClient(client *tasks.Client) {
	s.taskClient = client
}

// Start begins the scheduler if snapshots are enabled.
func (s *SnapshotScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	if !s.cfg.Enabled {
		log.Printf("[SNAPSHOT] Scheduler disabled")
		return nil
	}

	if s.cfg.Dir == "" {
		log.Printf("[SNAPSHOT] Snapshot directory not configured, skipping")
		return nil
	}

	if err := ValidateSchedule(s.cfg.Schedule); err != nil {
		return fmt.Errorf("invalid cron schedule %q: %w", s.cfg.Schedule, err)
	}

	// Replace any entry left over from a previous Start.
	if s.entryID != 0 {
		s.cron.Remove(s.entryID)
	}

	entryID, err := s.cron.AddFunc(s.cfg.Schedule, s.runSnapshot)
	if err != nil {
		return fmt.Errorf("failed to schedule snapshot job: %w", err)
	}
	s.entryID = entryID

	var cancelCtx context.Context
	cancelCtx, s.cancelFunc = context.WithCancel(ctx)

	s.cron.Start()
	s.isRunning = true

	log.Printf("[SNAPSHOT] Scheduler started with schedule %q, next run %v",
		s.cfg.Schedule, s.cron.Entry(s.entryID).Next)

	go func() {
		<-cancelCtx.Done()
		s.Stop()
	}()

	return nil
}

// Stop gracefully stops the scheduler, waiting for a running snapshot.
func (s *SnapshotScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	ctx := s.cron.Stop()
	<-ctx.Done()

	if s.cancelFunc != nil {
		s.cancelFunc()
		s.cancelFunc = nil
	}
	s.isRunning = false

	log.Printf("[SNAPSHOT] Scheduler stopped")
}

// Reschedule restarts the scheduler, picking up a changed schedule.
func (s *SnapshotScheduler) Reschedule() error {
	s.mu.RLock()
	wasRunning := s.isRunning
	s.mu.RUnlock()

	if wasRunning {
		s.Stop()
	}
	return s.Start(context.Background())
}

// RunNow triggers an immediate snapshot without waiting for the schedule.
func (s *SnapshotScheduler) RunNow() {
	go s.runSnapshot()
}

// IsRunning reports whether the scheduler is active.
func (s *SnapshotScheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// Status returns the scheduler state and the last run outcome.
func (s *SnapshotScheduler) Status() Status {
	s.mu.RLock()
	status := Status{
		Enabled:  s.cfg.Enabled,
		Running:  s.isRunning,
		Schedule: s.cfg.Schedule,
		Dir:      s.cfg.Dir,
	}
	if s.isRunning {
		if next := s.cron.Entry(s.entryID).Next; !next.IsZero() {
			status.NextRun = &next
		}
	}
	s.mu.RUnlock()

	s.runMu.RLock()
	status.LastRun = s.lastRun
	s.runMu.RUnlock()

	return status
}

func (s *SnapshotScheduler) runSnapshot() {
	start := time.Now()
	log.Printf("[SNAPSHOT] Starting catalog export to %s", s.cfg.Dir)

	allBooks, err := s.books.List(books.ListOptions{})
	if err != nil {
		s.failRun(start, fmt.Sprintf("Failed to list books: %v", err), err)
		return
	}

	allAuthors, err := s.authors.List()
	if err != nil {
		s.failRun(start, fmt.Sprintf("Failed to list authors: %v", err), err)
		return
	}

	dir, result, err := exporters.NewCSVExporter(s.cfg.Dir).ExportSnapshot(allBooks, allAuthors)
	if err != nil {
		s.failRun(start, fmt.Sprintf("Export failed: %v", err), err)
		return
	}

	detail := fmt.Sprintf("Exported %d books and %d authors to %s in %v",
		result.BooksExported, result.AuthorsExported, dir,
		time.Since(start).Round(time.Millisecond))
	log.Printf("[SNAPSHOT] %s", detail)
	s.recordRun(start, "success", detail, dir)
	if s.recorder != nil {
		s.recorder.LogExport(detail, nil)
	}

	s.enqueueCleanup()
}

func (s *SnapshotScheduler) failRun(start time.Time, detail string, err error) {
	log.Printf("[SNAPSHOT] %s", detail)
	s.recordRun(start, "failed", detail, "")
	if s.recorder != nil {
		s.recorder.LogExport(detail, err)
	}
}

func (s *SnapshotScheduler) recordRun(start time.Time, status, detail, dir string) {
	info := &RunInfo{
		StartedAt: start,
		Duration:  time.Since(start).Round(time.Millisecond).String(),
		Status:    status,
		Detail:    detail,
		Dir:       dir,
	}

	s.runMu.Lock()
	s.lastRun = info
	s.runMu.Unlock()
}

// enqueueCleanup prunes the activity log alongside each snapshot.
func (s *SnapshotScheduler) enqueueCleanup() {
	if s.taskClient == nil {
		return
	}

	task := tasks.CleanupActivityEventsTask{RetentionDays: s.retention.RetentionDays}
	if _, err := s.taskClient.Add(task).Save(); err != nil {
		log.Printf("[SNAPSHOT] Failed to enqueue activity cleanup: %v", err)
	}
}
