package tasks

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"
)

// ActivityEventCleaner provides the ability to delete old activity events.
type ActivityEventCleaner interface {
	DeleteOldEvents(retention time.Duration) (int64, error)
}

// CleanupActivityEventsTask removes activity events older than the configured
// retention period.
type CleanupActivityEventsTask struct {
	RetentionDays int `json:"retention_days"`
}

// Config returns the queue configuration for activity cleanup tasks.
func (t CleanupActivityEventsTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "cleanup_activity_events",
		MaxAttempts: 3,
		Backoff:     5 * time.Minute,
		Timeout:     2 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// CleanupActivityEventsProcessor creates a processor function for CleanupActivityEventsTask.
func CleanupActivityEventsProcessor(cleaner ActivityEventCleaner) backlite.QueueProcessor[CleanupActivityEventsTask] {
	return func(ctx context.Context, task CleanupActivityEventsTask) error {
		if cleaner == nil {
			return fmt.Errorf("activity event cleaner not configured")
		}

		retentionDays := task.RetentionDays
		if retentionDays <= 0 {
			retentionDays = 30
		}
		retention := time.Duration(retentionDays) * 24 * time.Hour

		deleted, err := cleaner.DeleteOldEvents(retention)
		if err != nil {
			return fmt.Errorf("cleanup activity events: %w", err)
		}

		log.Printf("[TASK] Cleaned up %d activity events older than %d days", deleted, retentionDays)
		return nil
	}
}

// NewCleanupActivityEventsQueue creates a backlite queue for activity cleanup tasks.
func NewCleanupActivityEventsQueue(cleaner ActivityEventCleaner) backlite.Queue {
	return backlite.NewQueue(CleanupActivityEventsProcessor(cleaner))
}
