package billing

import (
	"context"
	"errors"
	"time"

	"github.com/ManuelReschke/CreatorHub/app/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository provides DB operations used by the ledger and the subscription lifecycle.
type Repository interface {
	GetWebhookEvent(ctx context.Context, eventID string) (*models.WebhookEvent, error)
	UpsertWebhookEvent(ctx context.Context, event *models.WebhookEvent) error
	ListWebhookEvents(ctx context.Context, status string, limit int) ([]models.WebhookEvent, error)
	ListReplayableEvents(ctx context.Context, maxAttempts, limit int) ([]models.WebhookEvent, error)

	GetSubscription(ctx context.Context, stripeSubscriptionID string) (*models.Subscription, error)
	CreateSubscriptionIfNotExists(ctx context.Context, sub *models.Subscription) (bool, error)
	UpdateSubscription(ctx context.Context, id uint, updates map[string]interface{}) error
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository creates a billing repository backed by GORM.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

// GetWebhookEvent returns nil without error when the event was never seen.
func (r *gormRepository) GetWebhookEvent(ctx context.Context, eventID string) (*models.WebhookEvent, error) {
	var event models.WebhookEvent
	err := r.db.WithContext(ctx).Where("event_id = ?", eventID).First(&event).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &event, nil
}

// UpsertWebhookEvent creates the ledger row or updates it in place, counting
// every write as one processing attempt.
func (r *gormRepository) UpsertWebhookEvent(ctx context.Context, event *models.WebhookEvent) error {
	if event.Attempts == 0 {
		event.Attempts = 1
	}

	updates := map[string]interface{}{
		"event_type":   event.EventType,
		"product_type": event.ProductType,
		"status":       event.Status,
		"error":        event.Error,
		"attempts":     gorm.Expr("attempts + 1"),
		"processed_at": event.ProcessedAt,
		"updated_at":   time.Now(),
	}
	if event.PayloadJSON != "" {
		updates["payload_json"] = event.PayloadJSON
	}

	db := r.db.WithContext(ctx)
	if err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "event_id"}},
		DoUpdates: clause.Assignments(updates),
	}).Create(event).Error; err != nil {
		return err
	}

	// Ensure ID and counters are populated after upsert.
	var stored models.WebhookEvent
	if err := db.Where("event_id = ?", event.EventID).First(&stored).Error; err != nil {
		return err
	}
	*event = stored
	return nil
}

func (r *gormRepository) ListWebhookEvents(ctx context.Context, status string, limit int) ([]models.WebhookEvent, error) {
	var events []models.WebhookEvent
	q := r.db.WithContext(ctx).Order("updated_at DESC, id DESC")
	if status != "" {
		q = q.Where("status = ?", status)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&events).Error
	return events, err
}

func (r *gormRepository) ListReplayableEvents(ctx context.Context, maxAttempts, limit int) ([]models.WebhookEvent, error) {
	var events []models.WebhookEvent
	q := r.db.WithContext(ctx).
		Where("status = ? AND payload_json <> ''", models.WebhookStatusFailed).
		Order("updated_at ASC, id ASC")
	if maxAttempts > 0 {
		q = q.Where("attempts < ?", maxAttempts)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&events).Error
	return events, err
}

func (r *gormRepository) GetSubscription(ctx context.Context, stripeSubscriptionID string) (*models.Subscription, error) {
	var sub models.Subscription
	err := r.db.WithContext(ctx).Where("stripe_subscription_id = ?", stripeSubscriptionID).First(&sub).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSubscriptionNotFound
		}
		return nil, err
	}
	return &sub, nil
}

func (r *gormRepository) CreateSubscriptionIfNotExists(ctx context.Context, sub *models.Subscription) (bool, error) {
	db := r.db.WithContext(ctx)
	tx := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "stripe_subscription_id"}},
		DoNothing: true,
	}).Create(sub)
	if tx.Error != nil {
		return false, tx.Error
	}
	if tx.RowsAffected > 0 {
		return true, nil
	}
	return false, db.Where("stripe_subscription_id = ?", sub.StripeSubscriptionID).First(sub).Error
}

func (r *gormRepository) UpdateSubscription(ctx context.Context, id uint, updates map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(&models.Subscription{}).Where("id = ?", id).Updates(updates).Error
}
