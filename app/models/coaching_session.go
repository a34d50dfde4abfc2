package models

import "time"

const CoachingSessionScheduled = "scheduled"

// CoachingSession is a booked 1:1 slot with a creator.
type CoachingSession struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	ProductID     string    `gorm:"type:varchar(191);not null;index:idx_coaching_sessions_slot,priority:1" json:"product_id"`
	StudentID     string    `gorm:"type:varchar(191);not null;index" json:"student_id"`
	ScheduledDate time.Time `gorm:"not null;index:idx_coaching_sessions_slot,priority:2" json:"scheduled_date"`
	StartTime     string    `gorm:"type:varchar(10);not null;index:idx_coaching_sessions_slot,priority:3" json:"start_time"`
	Notes         string    `gorm:"type:text" json:"notes,omitempty"`
	Status        string    `gorm:"type:varchar(20);not null;default:'scheduled'" json:"status"`
	TransactionID string    `gorm:"type:varchar(191);not null;uniqueIndex" json:"transaction_id"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
