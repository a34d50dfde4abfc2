package models

import "time"

const (
	ServiceTypeMixing       = "mixing"
	ServiceTypeMastering    = "mastering"
	ServiceTypeMixAndMaster = "mix-and-master"
	ServiceTypeStemMixing   = "stem-mixing"
)

// ServiceOrder is a purchased mixing or mastering job.
type ServiceOrder struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	CustomerID     string    `gorm:"type:varchar(191);not null;index" json:"customer_id"`
	CreatorID      string    `gorm:"type:varchar(191);not null;index" json:"creator_id"`
	ProductID      string    `gorm:"type:varchar(191);not null" json:"product_id"`
	StoreID        string    `gorm:"type:varchar(191);not null;default:''" json:"store_id"`
	ServiceType    string    `gorm:"type:varchar(30);not null;default:'mixing'" json:"service_type"`
	TierID         string    `gorm:"type:varchar(50)" json:"tier_id"`
	TierName       string    `gorm:"type:varchar(100)" json:"tier_name"`
	StemCount      string    `gorm:"type:varchar(100)" json:"stem_count"`
	TierPrice      int64     `json:"tier_price"`
	TurnaroundDays int       `json:"turnaround_days"`
	Revisions      int       `json:"revisions"`
	BasePrice      int64     `json:"base_price"`
	RushFee        int64     `json:"rush_fee"`
	TotalPrice     int64     `json:"total_price"`
	IsRush         bool      `json:"is_rush"`
	CustomerNotes  string    `gorm:"type:text" json:"customer_notes,omitempty"`
	TransactionID  string    `gorm:"type:varchar(191);not null;uniqueIndex" json:"transaction_id"`
	Status         string    `gorm:"type:varchar(30);not null;default:'pending_upload'" json:"status"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
