package repository

import (
	"context"
	"time"

	"github.com/ManuelReschke/CreatorHub/app/models"
	"gorm.io/gorm"
)

// storeRepository implements the StoreRepository interface
type storeRepository struct {
	db *gorm.DB
}

// NewStoreRepository creates a new store repository instance
func NewStoreRepository(db *gorm.DB) StoreRepository {
	return &storeRepository{db: db}
}

// GetByID retrieves a store by its ID
func (r *storeRepository) GetByID(ctx context.Context, id string) (*models.Store, error) {
	var store models.Store
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&store).Error; err != nil {
		return nil, notFound(err)
	}
	return &store, nil
}

// UpgradePlan writes the subscribed plan and its provider references
func (r *storeRepository) UpgradePlan(ctx context.Context, storeID string, update StorePlanUpdate) error {
	now := time.Now()
	return r.updateStore(ctx, storeID, map[string]interface{}{
		"plan":                   update.Plan,
		"stripe_customer_id":     update.StripeCustomerID,
		"stripe_subscription_id": update.StripeSubscriptionID,
		"subscription_status":    update.SubscriptionStatus,
		"trial_ends_at":          update.TrialEndsAt,
		"plan_updated_at":        &now,
	})
}

// UpdateSubscriptionStatus mirrors the provider subscription status on the store
func (r *storeRepository) UpdateSubscriptionStatus(ctx context.Context, storeID, status string) error {
	return r.updateStore(ctx, storeID, map[string]interface{}{
		"subscription_status": status,
	})
}

// Downgrade moves the store to plan and marks its subscription cancelled
func (r *storeRepository) Downgrade(ctx context.Context, storeID, plan string) error {
	now := time.Now()
	return r.updateStore(ctx, storeID, map[string]interface{}{
		"plan":                plan,
		"subscription_status": models.SubscriptionStatusCancelled,
		"plan_updated_at":     &now,
	})
}

func (r *storeRepository) updateStore(ctx context.Context, storeID string, updates map[string]interface{}) error {
	db := r.db.WithContext(ctx)
	tx := db.Model(&models.Store{}).Where("id = ?", storeID).Updates(updates)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return rowExists(db, &models.Store{}, "id = ?", storeID)
	}
	return nil
}
