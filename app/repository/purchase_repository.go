package repository

import (
	"context"

	"github.com/ManuelReschke/CreatorHub/app/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// purchaseRepository implements the PurchaseRepository interface
type purchaseRepository struct {
	db *gorm.DB
}

// NewPurchaseRepository creates a new purchase repository instance
func NewPurchaseRepository(db *gorm.DB) PurchaseRepository {
	return &purchaseRepository{db: db}
}

// CreatePurchase inserts the purchase unless one already exists for the same
// product type, transaction and product. On conflict the stored row is loaded
// into purchase.
func (r *purchaseRepository) CreatePurchase(ctx context.Context, purchase *models.Purchase) (bool, error) {
	return createPurchase(r.db.WithContext(ctx), purchase)
}

func createPurchase(db *gorm.DB, purchase *models.Purchase) (bool, error) {
	if purchase.PaymentMethod == "" {
		purchase.PaymentMethod = models.PaymentMethodStripe
	}
	if purchase.Currency == "" {
		purchase.Currency = "USD"
	}

	tx := db.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "product_type"},
			{Name: "transaction_id"},
			{Name: "product_id"},
		},
		DoNothing: true,
	}).Create(purchase)
	if tx.Error != nil {
		return false, tx.Error
	}
	if tx.RowsAffected > 0 {
		return true, nil
	}

	// Ensure ID is populated when the row already existed.
	err := db.Where("product_type = ? AND transaction_id = ? AND product_id = ?",
		purchase.ProductType, purchase.TransactionID, purchase.ProductID).
		First(purchase).Error
	return false, err
}

// CreateCourseEnrollment records the course purchase and the enrollment in one transaction.
func (r *purchaseRepository) CreateCourseEnrollment(ctx context.Context, purchase *models.Purchase, courseID string) (*models.CourseEnrollment, bool, error) {
	var (
		enrollment models.CourseEnrollment
		created    bool
	)

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		created, err = createPurchase(tx, purchase)
		if err != nil {
			return err
		}

		enrollment = models.CourseEnrollment{
			UserID:     purchase.UserID,
			CourseID:   courseID,
			PurchaseID: purchase.ID,
		}
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "course_id"}},
			DoNothing: true,
		}).Create(&enrollment).Error; err != nil {
			return err
		}
		return tx.Where("user_id = ? AND course_id = ?", purchase.UserID, courseID).First(&enrollment).Error
	})
	if err != nil {
		return nil, false, err
	}
	return &enrollment, created, nil
}

// CreateBeatLicense records the beat purchase and its license in one transaction.
func (r *purchaseRepository) CreateBeatLicense(ctx context.Context, purchase *models.Purchase, license *models.BeatLicense) (bool, error) {
	var created bool

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		created, err = createPurchase(tx, purchase)
		if err != nil {
			return err
		}

		license.PurchaseID = purchase.ID
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "purchase_id"}},
			DoNothing: true,
		}).Create(license).Error; err != nil {
			return err
		}
		return tx.Where("purchase_id = ?", purchase.ID).First(license).Error
	})
	return created, err
}

// GetByTransaction retrieves a purchase by its dedup key
func (r *purchaseRepository) GetByTransaction(ctx context.Context, productType, transactionID, productID string) (*models.Purchase, error) {
	var purchase models.Purchase
	err := r.db.WithContext(ctx).
		Where("product_type = ? AND transaction_id = ? AND product_id = ?", productType, transactionID, productID).
		First(&purchase).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &purchase, nil
}

// ListByUser returns all purchases of a user, newest first
func (r *purchaseRepository) ListByUser(ctx context.Context, userID string) ([]models.Purchase, error) {
	var purchases []models.Purchase
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at DESC, id DESC").Find(&purchases).Error
	return purchases, err
}
