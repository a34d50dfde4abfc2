package repository

import (
	"context"
	"time"

	"github.com/ManuelReschke/CreatorHub/app/models"
	"gorm.io/gorm"
)

// beatRepository implements the BeatRepository interface
type beatRepository struct {
	db *gorm.DB
}

// NewBeatRepository creates a new beat repository instance
func NewBeatRepository(db *gorm.DB) BeatRepository {
	return &beatRepository{db: db}
}

// GetByID retrieves a beat by its ID
func (r *beatRepository) GetByID(ctx context.Context, id string) (*models.Beat, error) {
	var beat models.Beat
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&beat).Error; err != nil {
		return nil, notFound(err)
	}
	return &beat, nil
}

// MarkExclusivelySold hides the beat from the marketplace. Repeating the call
// for the same buyer is a no-op; a different buyer gets ErrAlreadySold and the
// recorded sale is left untouched.
func (r *beatRepository) MarkExclusivelySold(ctx context.Context, beatID, buyerID string, purchaseID uint) error {
	now := time.Now()
	db := r.db.WithContext(ctx)
	tx := db.Model(&models.Beat{}).
		Where("id = ? AND (exclusive_buyer_id IS NULL OR exclusive_buyer_id = '' OR exclusive_buyer_id = ?)", beatID, buyerID).
		Updates(map[string]interface{}{
			"is_available":          false,
			"exclusive_buyer_id":    buyerID,
			"exclusive_purchase_id": purchaseID,
			"exclusive_sold_at":     &now,
		})
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected > 0 {
		return nil
	}

	beat, err := r.GetByID(ctx, beatID)
	if err != nil {
		return err
	}
	if beat.ExclusiveBuyerID != "" && beat.ExclusiveBuyerID != buyerID {
		return ErrAlreadySold
	}
	return nil
}
