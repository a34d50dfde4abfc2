package models

import "time"

const (
	BeatTierBasic     = "basic"
	BeatTierPremium   = "premium"
	BeatTierExclusive = "exclusive"
	BeatTierUnlimited = "unlimited"
)

// Beat is the marketplace listing a beat license is sold against.
type Beat struct {
	ID                  string     `gorm:"type:varchar(191);primaryKey" json:"id"`
	StoreID             string     `gorm:"type:varchar(191);not null;default:'';index" json:"store_id"`
	Title               string     `gorm:"type:varchar(255);not null;default:''" json:"title"`
	IsAvailable         bool       `gorm:"default:true;index" json:"is_available"`
	ExclusiveBuyerID    string     `gorm:"type:varchar(191);default:''" json:"exclusive_buyer_id,omitempty"`
	ExclusivePurchaseID *uint      `json:"exclusive_purchase_id,omitempty"`
	ExclusiveSoldAt     *time.Time `gorm:"type:timestamp;default:null" json:"exclusive_sold_at,omitempty"`
	CreatedAt           time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt           time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// BeatLicense records the license tier granted by a beat lease purchase.
type BeatLicense struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	PurchaseID uint      `gorm:"not null;uniqueIndex" json:"purchase_id"`
	BeatID     string    `gorm:"type:varchar(191);not null;index" json:"beat_id"`
	UserID     string    `gorm:"type:varchar(191);not null;index" json:"user_id"`
	StoreID    string    `gorm:"type:varchar(191);not null" json:"store_id"`
	TierType   string    `gorm:"type:varchar(20);not null" json:"tier_type"`
	TierName   string    `gorm:"type:varchar(100)" json:"tier_name"`
	BuyerEmail string    `gorm:"type:varchar(200)" json:"buyer_email"`
	BuyerName  string    `gorm:"type:varchar(150)" json:"buyer_name"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
}
