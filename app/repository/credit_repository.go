package repository

import (
	"context"

	"github.com/ManuelReschke/CreatorHub/app/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// creditRepository implements the CreditRepository interface
type creditRepository struct {
	db *gorm.DB
}

// NewCreditRepository creates a new credit repository instance
func NewCreditRepository(db *gorm.DB) CreditRepository {
	return &creditRepository{db: db}
}

// AddCredits writes the ledger entry and bumps the balance in one transaction.
// An entry whose reference was already booked leaves the balance untouched.
func (r *creditRepository) AddCredits(ctx context.Context, entry *models.CreditTransaction) (bool, error) {
	var created bool

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "reference_id"}},
			DoNothing: true,
		}).Create(entry)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		created = true

		balance := models.UserCredit{UserID: entry.UserID, Balance: entry.Amount}
		return tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"balance":    gorm.Expr("balance + ?", entry.Amount),
				"updated_at": gorm.Expr("CURRENT_TIMESTAMP"),
			}),
		}).Create(&balance).Error
	})
	return created, err
}

// GetBalance returns the credit balance of a user, zero when none was booked yet
func (r *creditRepository) GetBalance(ctx context.Context, userID string) (int64, error) {
	var credit models.UserCredit
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&credit).Error
	if err != nil {
		if notFound(err) == ErrNotFound {
			return 0, nil
		}
		return 0, err
	}
	return credit.Balance, nil
}
