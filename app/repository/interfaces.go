package repository

import (
	"context"
	"errors"
	"time"

	"github.com/ManuelReschke/CreatorHub/app/models"
	"gorm.io/gorm"
)

// ErrNotFound is returned by lookups that match no row.
var ErrNotFound = errors.New("record not found")

// ErrAlreadySold is returned when an exclusive beat was already sold to another buyer.
var ErrAlreadySold = errors.New("beat already sold exclusively")

// ErrSlotUnavailable is returned when a coaching slot is already booked by another transaction.
var ErrSlotUnavailable = errors.New("coaching slot is not available")

// PurchaseRepository records purchases for all one-off product families.
// Create methods are idempotent per transaction and report whether a new row was written.
type PurchaseRepository interface {
	CreatePurchase(ctx context.Context, purchase *models.Purchase) (bool, error)
	CreateCourseEnrollment(ctx context.Context, purchase *models.Purchase, courseID string) (*models.CourseEnrollment, bool, error)
	CreateBeatLicense(ctx context.Context, purchase *models.Purchase, license *models.BeatLicense) (bool, error)
	GetByTransaction(ctx context.Context, productType, transactionID, productID string) (*models.Purchase, error)
	ListByUser(ctx context.Context, userID string) ([]models.Purchase, error)
}

// BeatRepository defines beat listing operations used after a license sale
type BeatRepository interface {
	GetByID(ctx context.Context, id string) (*models.Beat, error)
	MarkExclusivelySold(ctx context.Context, beatID, buyerID string, purchaseID uint) error
}

// CreditRepository manages credit ledger entries and balances
type CreditRepository interface {
	AddCredits(ctx context.Context, entry *models.CreditTransaction) (bool, error)
	GetBalance(ctx context.Context, userID string) (int64, error)
}

// SubmissionRepository manages paid playlist submissions
type SubmissionRepository interface {
	Create(ctx context.Context, submission *models.TrackSubmission) (bool, error)
	UpdatePaymentStatus(ctx context.Context, paymentID, status string) error
}

// ServiceOrderRepository manages mixing and mastering orders
type ServiceOrderRepository interface {
	Create(ctx context.Context, order *models.ServiceOrder) (bool, error)
	GetByTransaction(ctx context.Context, transactionID string) (*models.ServiceOrder, error)
}

// CoachingRepository books coaching sessions
type CoachingRepository interface {
	BookSession(ctx context.Context, session *models.CoachingSession) (bool, error)
}

// StorePlanUpdate carries the subscription-derived fields written to a store.
type StorePlanUpdate struct {
	Plan                 string
	StripeCustomerID     string
	StripeSubscriptionID string
	SubscriptionStatus   string
	TrialEndsAt          *time.Time
}

// StoreRepository manages creator store plans
type StoreRepository interface {
	GetByID(ctx context.Context, id string) (*models.Store, error)
	UpgradePlan(ctx context.Context, storeID string, update StorePlanUpdate) error
	UpdateSubscriptionStatus(ctx context.Context, storeID, status string) error
	Downgrade(ctx context.Context, storeID, plan string) error
}

// UserRepository resolves marketplace users
type UserRepository interface {
	GetByExternalID(ctx context.Context, externalID string) (*models.User, error)
	GetByStripeAccountID(ctx context.Context, accountID string) (*models.User, error)
	UpdateStripeAccountStatus(ctx context.Context, id uint, status string, onboardingComplete bool) error
}

// Repositories struct holds all repository instances
type Repositories struct {
	Purchase     PurchaseRepository
	Beat         BeatRepository
	Credit       CreditRepository
	Submission   SubmissionRepository
	ServiceOrder ServiceOrderRepository
	Coaching     CoachingRepository
	Store        StoreRepository
	User         UserRepository
}

// NewRepositories creates a new instance of all repositories
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Purchase:     NewPurchaseRepository(db),
		Beat:         NewBeatRepository(db),
		Credit:       NewCreditRepository(db),
		Submission:   NewSubmissionRepository(db),
		ServiceOrder: NewServiceOrderRepository(db),
		Coaching:     NewCoachingRepository(db),
		Store:        NewStoreRepository(db),
		User:         NewUserRepository(db),
	}
}

// rowExists tells an UPDATE that matched nothing apart from one that rewrote
// identical values, which MySQL reports as zero affected rows.
func rowExists(db *gorm.DB, model interface{}, query string, args ...interface{}) error {
	var count int64
	if err := db.Model(model).Where(query, args...).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return ErrNotFound
	}
	return nil
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
