package repository

import (
	"context"

	"github.com/ManuelReschke/CreatorHub/app/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// coachingRepository implements the CoachingRepository interface
type coachingRepository struct {
	db *gorm.DB
}

// NewCoachingRepository creates a new coaching repository instance
func NewCoachingRepository(db *gorm.DB) CoachingRepository {
	return &coachingRepository{db: db}
}

// BookSession reserves the slot for the session's transaction. Rebooking with
// the same transaction returns the stored session; a slot held by another
// transaction yields ErrSlotUnavailable.
func (r *coachingRepository) BookSession(ctx context.Context, session *models.CoachingSession) (bool, error) {
	var created bool
	if session.Status == "" {
		session.Status = models.CoachingSessionScheduled
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var taken int64
		if err := tx.Model(&models.CoachingSession{}).
			Where("product_id = ? AND scheduled_date = ? AND start_time = ? AND status = ? AND transaction_id <> ?",
				session.ProductID, session.ScheduledDate, session.StartTime, models.CoachingSessionScheduled, session.TransactionID).
			Count(&taken).Error; err != nil {
			return err
		}
		if taken > 0 {
			return ErrSlotUnavailable
		}

		res := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "transaction_id"}},
			DoNothing: true,
		}).Create(session)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			created = true
			return nil
		}
		return tx.Where("transaction_id = ?", session.TransactionID).First(session).Error
	})
	return created, err
}
