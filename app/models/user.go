package models

import (
	"time"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

const (
	ConnectStatusEnabled    = "enabled"
	ConnectStatusRestricted = "restricted"
	ConnectStatusPending    = "pending"
)

// User is a marketplace account. ExternalID is the identity-provider id that
// checkout metadata refers to as userId.
type User struct {
	ID                       uint           `gorm:"primaryKey" json:"id"`
	ExternalID               string         `gorm:"type:varchar(191);not null;uniqueIndex" json:"external_id" validate:"required,max=191"`
	Name                     string         `gorm:"type:varchar(150)" json:"name" validate:"max=150"`
	Email                    string         `gorm:"type:varchar(200);index" json:"email" validate:"omitempty,email,max=200"`
	StripeConnectAccountID   string         `gorm:"type:varchar(191);default:null;index" json:"stripe_connect_account_id,omitempty"`
	StripeAccountStatus      string         `gorm:"type:varchar(20);default:null" json:"stripe_account_status,omitempty"`
	StripeOnboardingComplete bool           `gorm:"default:false" json:"stripe_onboarding_complete"`
	CreatedAt                time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt                time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt                gorm.DeletedAt `gorm:"index" json:"-"`
}

func (u *User) Validate() error {
	v := validator.New()

	return v.Struct(u)
}
