package models

import "time"

// Purchase is the common purchase record shared by all one-off product
// families. The unique index on (product_type, transaction_id, product_id)
// makes repeated inserts for the same provider transaction a no-op.
type Purchase struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	UserID            string    `gorm:"type:varchar(191);not null;index" json:"user_id"`
	ProductType       string    `gorm:"type:varchar(50);not null;uniqueIndex:ux_purchases_transaction,priority:1" json:"product_type"`
	TransactionID     string    `gorm:"type:varchar(191);not null;uniqueIndex:ux_purchases_transaction,priority:2" json:"transaction_id"`
	ProductID         string    `gorm:"type:varchar(191);not null;uniqueIndex:ux_purchases_transaction,priority:3;index" json:"product_id"`
	Amount            int64     `gorm:"not null;default:0" json:"amount"`
	Currency          string    `gorm:"type:varchar(10);not null;default:'USD'" json:"currency"`
	PaymentMethod     string    `gorm:"type:varchar(30);not null;default:'stripe'" json:"payment_method"`
	AccessGranted     bool      `gorm:"default:true" json:"access_granted"`
	DownloadCount     int       `gorm:"not null;default:0" json:"download_count"`
	CoachingSessionID *uint     `gorm:"index" json:"coaching_session_id,omitempty"`
	CreatedAt         time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// CourseEnrollment grants a user access to a course after a purchase.
type CourseEnrollment struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     string    `gorm:"type:varchar(191);not null;uniqueIndex:ux_course_enrollments_user_course,priority:1" json:"user_id"`
	CourseID   string    `gorm:"type:varchar(191);not null;uniqueIndex:ux_course_enrollments_user_course,priority:2;index" json:"course_id"`
	PurchaseID uint      `gorm:"not null;index" json:"purchase_id"`
	Progress   int       `gorm:"not null;default:0" json:"progress"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
