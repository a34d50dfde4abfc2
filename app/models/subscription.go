package models

import "time"

const (
	SubscriptionStatusActive    = "active"
	SubscriptionStatusTrialing  = "trialing"
	SubscriptionStatusPastDue   = "past_due"
	SubscriptionStatusCancelled = "cancelled"
	SubscriptionStatusExpired   = "expired"
)

const (
	BillingCycleMonthly = "monthly"
	BillingCycleYearly  = "yearly"
)

// Subscription mirrors a provider subscription for one of the recurring
// product families and drives access for its owner.
type Subscription struct {
	ID                   uint       `gorm:"primaryKey" json:"id"`
	StripeSubscriptionID string     `gorm:"type:varchar(191);not null;uniqueIndex:ux_subscriptions_stripe_id" json:"stripe_subscription_id"`
	StripeCustomerID     string     `gorm:"type:varchar(191);not null;default:'';index" json:"stripe_customer_id"`
	UserID               string     `gorm:"type:varchar(191);not null;index" json:"user_id"`
	ProductType          string     `gorm:"type:varchar(50);not null;index" json:"product_type"`
	Plan                 string     `gorm:"type:varchar(50);not null;default:''" json:"plan"`
	PlanID               string     `gorm:"type:varchar(191);not null;default:''" json:"plan_id,omitempty"`
	StoreID              string     `gorm:"type:varchar(191);not null;default:'';index" json:"store_id,omitempty"`
	BillingCycle         string     `gorm:"type:varchar(16);not null;default:'monthly'" json:"billing_cycle"`
	Status               string     `gorm:"type:varchar(20);not null;default:'active';index" json:"status"`
	CurrentPeriodStart   *time.Time `gorm:"type:timestamp;default:null" json:"current_period_start,omitempty"`
	CurrentPeriodEnd     *time.Time `gorm:"type:timestamp;default:null" json:"current_period_end,omitempty"`
	CancelAtPeriodEnd    bool       `gorm:"default:false" json:"cancel_at_period_end"`
	TrialEndsAt          *time.Time `gorm:"type:timestamp;default:null" json:"trial_ends_at,omitempty"`
	CancelledAt          *time.Time `gorm:"type:timestamp;default:null" json:"cancelled_at,omitempty"`
	CreatedAt            time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt            time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// IsTerminal reports whether the subscription can no longer transition.
func (s *Subscription) IsTerminal() bool {
	return s.Status == SubscriptionStatusCancelled || s.Status == SubscriptionStatusExpired
}
