// Package activity provides high-level logging of catalog mutations.
//
// Events from request handlers are written asynchronously so that a slow or
// failing activity log never blocks or fails the catalog operation that
// produced it. Import and export events are written synchronously because
// they also come from short-lived CLI runs.
package activity

import (
	"encoding/json"
	"log"
	"time"

	"github.com/mrlokans/librarium/internal/database/activity"
	"github.com/mrlokans/librarium/internal/entities"
)

// Service provides high-level activity logging.
type Service struct {
	repo *activity.Repository
}

// NewService creates a new activity service.
func NewService(repo *activity.Repository) *Service {
	return &Service{repo: repo}
}

// Log records a generic activity event.
func (s *Service) Log(event *entities.ActivityEvent) error {
	return s.repo.LogEvent(event)
}

// LogAsync records an activity event in the background (non-blocking).
func (s *Service) LogAsync(event *entities.ActivityEvent) {
	go func() {
		if err := s.repo.LogEvent(event); err != nil {
			log.Printf("Failed to log activity event: %v", err)
		}
	}()
}

// LogAuthorCreate records an author creation.
func (s *Service) LogAuthorCreate(authorID uint, name string) {
	s.LogAsync(&entities.ActivityEvent{
		EventType:   entities.ActivityEventAuthorCreate,
		Description: "Added author: " + name,
		EntityType:  "author",
		EntityID:    &authorID,
		Status:      entities.ActivityStatusSuccess,
	})
}

// LogBookCreate records a book creation.
func (s *Service) LogBookCreate(bookID uint, title string) {
	s.LogAsync(&entities.ActivityEvent{
		EventType:   entities.ActivityEventBookCreate,
		Description: "Added book: " + title,
		EntityType:  "book",
		EntityID:    &bookID,
		Status:      entities.ActivityStatusSuccess,
	})
}

// LogBookDelete records a book deletion, noting when the author went with it.
func (s *Service) LogBookDelete(bookID uint, title string, authorDeleted bool) {
	description := "Deleted book: " + title
	if authorDeleted {
		description += " (author removed, no books left)"
	}

	s.LogAsync(&entities.ActivityEvent{
		EventType:   entities.ActivityEventBookDelete,
		Description: description,
		EntityType:  "book",
		EntityID:    &bookID,
		Status:      entities.ActivityStatusSuccess,
	})
}

// LogEnrich records a metadata enrichment attempt for a book.
func (s *Service) LogEnrich(bookID uint, description string, err error) {
	event := &entities.ActivityEvent{
		EventType:   entities.ActivityEventEnrich,
		Description: description,
		EntityType:  "book",
		EntityID:    &bookID,
		Status:      entities.ActivityStatusSuccess,
	}

	if err != nil {
		event.Status = entities.ActivityStatusFailed
		event.ErrorMsg = truncate(err.Error(), 500)
	}

	s.LogAsync(event)
}

// LogImport records a feed import run. The write is synchronous so that
// short-lived CLI runs do not exit before the event lands.
func (s *Service) LogImport(description string, imported, skipped int, err error) {
	event := &entities.ActivityEvent{
		EventType:   entities.ActivityEventImport,
		Description: description,
		EntityType:  "book",
		Status:      entities.ActivityStatusSuccess,
	}

	metadata := map[string]any{
		"imported": imported,
		"skipped":  skipped,
	}
	if mdBytes, e := json.Marshal(metadata); e == nil {
		event.Metadata = string(mdBytes)
	}

	if err != nil {
		event.Status = entities.ActivityStatusFailed
		event.ErrorMsg = truncate(err.Error(), 500)
	}

	if e := s.Log(event); e != nil {
		log.Printf("Failed to log activity event: %v", e)
	}
}

// LogExport records a catalog snapshot export. Synchronous, same as LogImport.
func (s *Service) LogExport(description string, err error) {
	event := &entities.ActivityEvent{
		EventType:   entities.ActivityEventExport,
		Description: description,
		Status:      entities.ActivityStatusSuccess,
	}

	if err != nil {
		event.Status = entities.ActivityStatusFailed
		event.ErrorMsg = truncate(err.Error(), 500)
	}

	if e := s.Log(event); e != nil {
		log.Printf("Failed to log activity event: %v", e)
	}
}

// GetEvents retrieves paginated activity events.
func (s *Service) GetEvents(limit, offset int) ([]entities.ActivityEvent, int64, error) {
	return s.repo.GetEvents(limit, offset)
}

// GetEventsByType retrieves activity events filtered by type.
func (s *Service) GetEventsByType(eventType entities.ActivityEventType, limit, offset int) ([]entities.ActivityEvent, int64, error) {
	return s.repo.GetEventsByType(eventType, limit, offset)
}

// DeleteOldEvents removes events older than the specified duration.
func (s *Service) DeleteOldEvents(retention time.Duration) (int64, error) {
	cutoff := time.Now().Add(-retention)
	return s.repo.DeleteOldEvents(cutoff)
}

// truncate shortens a string to max length.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
