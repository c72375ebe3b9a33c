package entities

import "time"

type ActivityEventType string

const (
	ActivityEventAuthorCreate ActivityEventType = "author_create"
	ActivityEventAuthorDelete ActivityEventType = "author_delete"
	ActivityEventBookCreate   ActivityEventType = "book_create"
	ActivityEventBookDelete   ActivityEventType = "book_delete"
	ActivityEventEnrich       ActivityEventType = "enrich"
	ActivityEventImport       ActivityEventType = "import"
	ActivityEventExport       ActivityEventType = "export"
)

type ActivityStatus string

const (
	ActivityStatusSuccess ActivityStatus = "success"
	ActivityStatusFailed  ActivityStatus = "failed"
)

// ActivityEvent records a catalog mutation for the activity log.
type ActivityEvent struct {
	ID          uint              `gorm:"primaryKey" json:"id"`
	EventType   ActivityEventType `gorm:"index;size:50" json:"event_type"`
	Description string            `gorm:"size:500" json:"description"` // Human-readable summary
	EntityType  string            `gorm:"size:50" json:"entity_type"`  // "book" or "author"
	EntityID    *uint             `gorm:"index" json:"entity_id,omitempty"`
	Metadata    string            `gorm:"type:text" json:"metadata,omitempty"` // JSON for extra data
	Status      ActivityStatus    `gorm:"size:20" json:"status"`
	ErrorMsg    string            `gorm:"size:500" json:"error_msg,omitempty"`
	CreatedAt   time.Time         `gorm:"index" json:"created_at"`
}

func (ActivityEvent) TableName() string {
	return "activity_events"
}
