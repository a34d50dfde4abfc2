package repository

import (
	"context"

	"github.com/ManuelReschke/CreatorHub/app/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// serviceOrderRepository implements the ServiceOrderRepository interface
type serviceOrderRepository struct {
	db *gorm.DB
}

// NewServiceOrderRepository creates a new service order repository instance
func NewServiceOrderRepository(db *gorm.DB) ServiceOrderRepository {
	return &serviceOrderRepository{db: db}
}

// Create inserts the order unless one exists for the same transaction
func (r *serviceOrderRepository) Create(ctx context.Context, order *models.ServiceOrder) (bool, error) {
	db := r.db.WithContext(ctx)
	tx := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "transaction_id"}},
		DoNothing: true,
	}).Create(order)
	if tx.Error != nil {
		return false, tx.Error
	}
	if tx.RowsAffected > 0 {
		return true, nil
	}
	return false, db.Where("transaction_id = ?", order.TransactionID).First(order).Error
}

// GetByTransaction retrieves an order by its provider transaction
func (r *serviceOrderRepository) GetByTransaction(ctx context.Context, transactionID string) (*models.ServiceOrder, error) {
	var order models.ServiceOrder
	if err := r.db.WithContext(ctx).Where("transaction_id = ?", transactionID).First(&order).Error; err != nil {
		return nil, notFound(err)
	}
	return &order, nil
}
