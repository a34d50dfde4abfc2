package repository

import (
	"context"

	"github.com/ManuelReschke/CreatorHub/app/models"
	"gorm.io/gorm"
)

// userRepository implements the UserRepository interface
type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new user repository instance
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// GetByExternalID retrieves a user by the identity-provider ID
func (r *userRepository) GetByExternalID(ctx context.Context, externalID string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("external_id = ?", externalID).First(&user).Error; err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

// GetByStripeAccountID retrieves a user by the Connect account ID
func (r *userRepository) GetByStripeAccountID(ctx context.Context, accountID string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("stripe_connect_account_id = ?", accountID).First(&user).Error; err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

// UpdateStripeAccountStatus stores the Connect onboarding state of a user
func (r *userRepository) UpdateStripeAccountStatus(ctx context.Context, id uint, status string, onboardingComplete bool) error {
	return r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Updates(map[string]interface{}{
		"stripe_account_status":      status,
		"stripe_onboarding_complete": onboardingComplete,
	}).Error
}
