package models

import "time"

const (
	WebhookStatusProcessed = "processed"
	WebhookStatusFailed    = "failed"
)

// WebhookEvent is the idempotency ledger row for one provider event. A row is
// created on first sight of an event ID and updated on every reprocessing.
type WebhookEvent struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	EventID     string     `gorm:"type:varchar(191);not null;uniqueIndex:ux_webhook_events_event_id" json:"event_id"`
	EventType   string     `gorm:"type:varchar(100);not null;index" json:"event_type"`
	ProductType string     `gorm:"type:varchar(50);not null;default:'';index" json:"product_type"`
	Status      string     `gorm:"type:varchar(20);not null;index" json:"status"`
	Error       string     `gorm:"type:text" json:"error,omitempty"`
	PayloadJSON string     `gorm:"type:longtext" json:"-"`
	Attempts    int        `gorm:"not null;default:0" json:"attempts"`
	ProcessedAt *time.Time `gorm:"type:timestamp;default:null" json:"processed_at,omitempty"`
	CreatedAt   time.Time  `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// IsProcessed reports whether the event must be short-circuited on redelivery.
func (e *WebhookEvent) IsProcessed() bool {
	return e != nil && e.Status == WebhookStatusProcessed
}
