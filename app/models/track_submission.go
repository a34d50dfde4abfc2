package models

import "time"

const (
	SubmissionPaymentPending = "pending"
	SubmissionPaymentPaid    = "paid"
)

// TrackSubmission is a paid request to place a track on a creator's playlist.
type TrackSubmission struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	SubmitterID   string    `gorm:"type:varchar(191);not null;index" json:"submitter_id"`
	CreatorID     string    `gorm:"type:varchar(191);not null;index" json:"creator_id"`
	TrackID       string    `gorm:"type:varchar(191);not null" json:"track_id"`
	PlaylistID    string    `gorm:"type:varchar(191);not null;index" json:"playlist_id"`
	Message       string    `gorm:"type:text" json:"message,omitempty"`
	SubmissionFee int64     `gorm:"not null;default:0" json:"submission_fee"`
	PaymentID     string    `gorm:"type:varchar(191);not null;uniqueIndex" json:"payment_id"`
	PaymentStatus string    `gorm:"type:varchar(20);not null;default:'pending'" json:"payment_status"`
	Status        string    `gorm:"type:varchar(20);not null;default:'inbox'" json:"status"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
