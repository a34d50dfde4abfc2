package models

import "time"

const (
	CreditTypePurchase = "purchase"
	CreditTypeBonus    = "bonus"
)

// CreditTransaction is one ledger entry on a user's credit balance.
// ReferenceID is the provider payment reference and is unique per entry.
type CreditTransaction struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	UserID       string    `gorm:"type:varchar(191);not null;index" json:"user_id"`
	Amount       int64     `gorm:"not null" json:"amount"`
	Type         string    `gorm:"type:varchar(20);not null" json:"type"`
	Description  string    `gorm:"type:varchar(255)" json:"description"`
	ReferenceID  string    `gorm:"type:varchar(191);not null;uniqueIndex" json:"reference_id"`
	MetadataJSON string    `gorm:"type:text" json:"metadata_json,omitempty"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// UserCredit holds the running credit balance of a user.
type UserCredit struct {
	UserID    string    `gorm:"type:varchar(191);primaryKey" json:"user_id"`
	Balance   int64     `gorm:"not null;default:0" json:"balance"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
