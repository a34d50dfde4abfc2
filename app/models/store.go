package models

import "time"

const (
	StorePlanFree        = "free"
	StorePlanStarter     = "starter"
	StorePlanCreator     = "creator"
	StorePlanCreatorPro  = "creator_pro"
	StorePlanBusiness    = "business"
	StorePlanEarlyAccess = "early_access"
)

// Store is a creator storefront. Its plan is set by creator_plan subscriptions.
type Store struct {
	ID                   string     `gorm:"type:varchar(191);primaryKey" json:"id"`
	UserID               string     `gorm:"type:varchar(191);not null;default:'';index" json:"user_id"`
	Name                 string     `gorm:"type:varchar(150);not null;default:''" json:"name"`
	Plan                 string     `gorm:"type:varchar(30);not null;default:'free'" json:"plan"`
	StripeCustomerID     string     `gorm:"type:varchar(191);not null;default:''" json:"stripe_customer_id,omitempty"`
	StripeSubscriptionID string     `gorm:"type:varchar(191);not null;default:'';index" json:"stripe_subscription_id,omitempty"`
	SubscriptionStatus   string     `gorm:"type:varchar(20);not null;default:''" json:"subscription_status,omitempty"`
	TrialEndsAt          *time.Time `gorm:"type:timestamp;default:null" json:"trial_ends_at,omitempty"`
	PlanUpdatedAt        *time.Time `gorm:"type:timestamp;default:null" json:"plan_updated_at,omitempty"`
	CreatedAt            time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt            time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}
