package repository

import (
	"context"

	"github.com/ManuelReschke/CreatorHub/app/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// submissionRepository implements the SubmissionRepository interface
type submissionRepository struct {
	db *gorm.DB
}

// NewSubmissionRepository creates a new submission repository instance
func NewSubmissionRepository(db *gorm.DB) SubmissionRepository {
	return &submissionRepository{db: db}
}

// Create inserts the submission unless one exists for the same payment
func (r *submissionRepository) Create(ctx context.Context, submission *models.TrackSubmission) (bool, error) {
	db := r.db.WithContext(ctx)
	tx := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "payment_id"}},
		DoNothing: true,
	}).Create(submission)
	if tx.Error != nil {
		return false, tx.Error
	}
	if tx.RowsAffected > 0 {
		return true, nil
	}
	return false, db.Where("payment_id = ?", submission.PaymentID).First(submission).Error
}

// UpdatePaymentStatus sets the payment status of the submission paid with paymentID
func (r *submissionRepository) UpdatePaymentStatus(ctx context.Context, paymentID, status string) error {
	db := r.db.WithContext(ctx)
	tx := db.Model(&models.TrackSubmission{}).
		Where("payment_id = ?", paymentID).
		Update("payment_status", status)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return rowExists(db, &models.TrackSubmission{}, "payment_id = ?", paymentID)
	}
	return nil
}
