package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/ManuelReschke/CreatorHub/app/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.Purchase{},
		&models.CourseEnrollment{},
		&models.Beat{},
		&models.BeatLicense{},
		&models.CreditTransaction{},
		&models.UserCredit{},
		&models.TrackSubmission{},
		&models.ServiceOrder{},
		&models.CoachingSession{},
		&models.Store{},
		&models.User{},
	))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	return db
}

func TestCreatePurchaseIsIdempotentPerTransaction(t *testing.T) {
	ctx := context.Background()
	repo := NewPurchaseRepository(newTestDB(t))

	first := &models.Purchase{UserID: "u1", ProductType: models.ProductTypeDigitalProduct, ProductID: "p1", TransactionID: "pi_1", Amount: 1500}
	created, err := repo.CreatePurchase(ctx, first)
	require.NoError(t, err)
	assert.True(t, created)
	assert.NotZero(t, first.ID)
	assert.Equal(t, "USD", first.Currency)
	assert.Equal(t, models.PaymentMethodStripe, first.PaymentMethod)

	again := &models.Purchase{UserID: "u1", ProductType: models.ProductTypeDigitalProduct, ProductID: "p1", TransactionID: "pi_1", Amount: 1500}
	created, err = repo.CreatePurchase(ctx, again)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, again.ID)

	purchases, err := repo.ListByUser(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, purchases, 1)
}

func TestCreateCourseEnrollment(t *testing.T) {
	ctx := context.Background()
	repo := NewPurchaseRepository(newTestDB(t))

	purchase := &models.Purchase{UserID: "u1", ProductType: models.ProductTypeCourse, ProductID: "c1", TransactionID: "pi_1", Amount: 2999}
	enrollment, created, err := repo.CreateCourseEnrollment(ctx, purchase, "c1")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, purchase.ID, enrollment.PurchaseID)
	assert.Equal(t, "c1", enrollment.CourseID)

	replay := &models.Purchase{UserID: "u1", ProductType: models.ProductTypeCourse, ProductID: "c1", TransactionID: "pi_1", Amount: 2999}
	again, created, err := repo.CreateCourseEnrollment(ctx, replay, "c1")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, enrollment.ID, again.ID)

	stored, err := repo.GetByTransaction(ctx, models.ProductTypeCourse, "pi_1", "c1")
	require.NoError(t, err)
	assert.Equal(t, int64(2999), stored.Amount)

	_, err = repo.GetByTransaction(ctx, models.ProductTypeCourse, "pi_missing", "c1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreateBeatLicenseAndMarkSold(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	purchases := NewPurchaseRepository(db)
	beats := NewBeatRepository(db)

	require.NoError(t, db.Create(&models.Beat{ID: "b1", StoreID: "s1", Title: "Night Drive", IsAvailable: true}).Error)

	purchase := &models.Purchase{UserID: "u1", ProductType: models.ProductTypeBeatLease, ProductID: "b1", TransactionID: "pi_9", Amount: 50000}
	license := &models.BeatLicense{BeatID: "b1", UserID: "u1", StoreID: "s1", TierType: models.BeatTierExclusive, TierName: "Exclusive"}
	created, err := purchases.CreateBeatLicense(ctx, purchase, license)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, purchase.ID, license.PurchaseID)

	require.NoError(t, beats.MarkExclusivelySold(ctx, "b1", "u1", purchase.ID))
	beat, err := beats.GetByID(ctx, "b1")
	require.NoError(t, err)
	assert.False(t, beat.IsAvailable)
	assert.Equal(t, "u1", beat.ExclusiveBuyerID)
	require.NotNil(t, beat.ExclusiveSoldAt)

	assert.ErrorIs(t, beats.MarkExclusivelySold(ctx, "missing", "u1", purchase.ID), ErrNotFound)

	// same buyer again is fine, another buyer must not take over the sale
	require.NoError(t, beats.MarkExclusivelySold(ctx, "b1", "u1", purchase.ID))
	assert.ErrorIs(t, beats.MarkExclusivelySold(ctx, "b1", "u2", purchase.ID+1), ErrAlreadySold)
	beat, err = beats.GetByID(ctx, "b1")
	require.NoError(t, err)
	assert.Equal(t, "u1", beat.ExclusiveBuyerID)
	require.NotNil(t, beat.ExclusivePurchaseID)
	assert.Equal(t, purchase.ID, *beat.ExclusivePurchaseID)
}

// zeroRowsOnUpdate makes every UPDATE report no affected rows, the way MySQL
// answers an UPDATE that writes values the row already holds.
func zeroRowsOnUpdate(t *testing.T, db *gorm.DB) {
	err := db.Callback().Update().After("gorm:update").Register("test:zero_rows", func(tx *gorm.DB) {
		tx.RowsAffected = 0
	})
	require.NoError(t, err)
}

func TestRepeatedUpdatesWithUnchangedValues(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	zeroRowsOnUpdate(t, db)

	require.NoError(t, db.Create(&models.Store{ID: "s1", Name: "Beats", SubscriptionStatus: models.SubscriptionStatusActive}).Error)
	stores := NewStoreRepository(db)
	require.NoError(t, stores.UpdateSubscriptionStatus(ctx, "s1", models.SubscriptionStatusActive))
	require.NoError(t, stores.UpdateSubscriptionStatus(ctx, "s1", models.SubscriptionStatusActive))
	assert.ErrorIs(t, stores.UpdateSubscriptionStatus(ctx, "missing", models.SubscriptionStatusActive), ErrNotFound)

	submissions := NewSubmissionRepository(db)
	_, err := submissions.Create(ctx, &models.TrackSubmission{SubmitterID: "u1", CreatorID: "c1", TrackID: "t1", PlaylistID: "pl1", PaymentID: "pi_3"})
	require.NoError(t, err)
	require.NoError(t, submissions.UpdatePaymentStatus(ctx, "pi_3", models.SubmissionPaymentPaid))
	require.NoError(t, submissions.UpdatePaymentStatus(ctx, "pi_3", models.SubmissionPaymentPaid))
	assert.ErrorIs(t, submissions.UpdatePaymentStatus(ctx, "pi_unknown", models.SubmissionPaymentPaid), ErrNotFound)
}

func TestAddCreditsDedupsByReference(t *testing.T) {
	ctx := context.Background()
	repo := NewCreditRepository(newTestDB(t))

	created, err := repo.AddCredits(ctx, &models.CreditTransaction{UserID: "u1", Amount: 100, Type: models.CreditTypePurchase, ReferenceID: "pi_1"})
	require.NoError(t, err)
	assert.True(t, created)

	created, err = repo.AddCredits(ctx, &models.CreditTransaction{UserID: "u1", Amount: 20, Type: models.CreditTypeBonus, ReferenceID: "pi_1-bonus"})
	require.NoError(t, err)
	assert.True(t, created)

	created, err = repo.AddCredits(ctx, &models.CreditTransaction{UserID: "u1", Amount: 100, Type: models.CreditTypePurchase, ReferenceID: "pi_1"})
	require.NoError(t, err)
	assert.False(t, created)

	balance, err := repo.GetBalance(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(120), balance)

	balance, err = repo.GetBalance(ctx, "nobody")
	require.NoError(t, err)
	assert.Zero(t, balance)
}

func TestSubmissionCreateAndMarkPaid(t *testing.T) {
	ctx := context.Background()
	repo := NewSubmissionRepository(newTestDB(t))

	submission := &models.TrackSubmission{SubmitterID: "u1", CreatorID: "c1", TrackID: "t1", PlaylistID: "pl1", SubmissionFee: 500, PaymentID: "pi_2"}
	created, err := repo.Create(ctx, submission)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, models.SubmissionPaymentPending, submission.PaymentStatus)

	require.NoError(t, repo.UpdatePaymentStatus(ctx, "pi_2", models.SubmissionPaymentPaid))
	assert.ErrorIs(t, repo.UpdatePaymentStatus(ctx, "pi_unknown", models.SubmissionPaymentPaid), ErrNotFound)

	dup := &models.TrackSubmission{SubmitterID: "u1", CreatorID: "c1", TrackID: "t1", PlaylistID: "pl1", PaymentID: "pi_2"}
	created, err = repo.Create(ctx, dup)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, submission.ID, dup.ID)
	assert.Equal(t, models.SubmissionPaymentPaid, dup.PaymentStatus)
}

func TestServiceOrderCreateIsIdempotent(t *testing.T) {
	ctx := context.Background()
	repo := NewServiceOrderRepository(newTestDB(t))

	order := &models.ServiceOrder{CustomerID: "u1", CreatorID: "c1", ProductID: "p1", TierID: "basic", TotalPrice: 9900, TransactionID: "pi_3"}
	created, err := repo.Create(ctx, order)
	require.NoError(t, err)
	assert.True(t, created)

	created, err = repo.Create(ctx, &models.ServiceOrder{CustomerID: "u1", CreatorID: "c1", ProductID: "p1", TransactionID: "pi_3"})
	require.NoError(t, err)
	assert.False(t, created)

	stored, err := repo.GetByTransaction(ctx, "pi_3")
	require.NoError(t, err)
	assert.Equal(t, int64(9900), stored.TotalPrice)
}

func TestBookSession(t *testing.T) {
	ctx := context.Background()
	repo := NewCoachingRepository(newTestDB(t))
	slot := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)

	session := &models.CoachingSession{ProductID: "p1", StudentID: "u1", ScheduledDate: slot, StartTime: "10:00", TransactionID: "pi_4"}
	created, err := repo.BookSession(ctx, session)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, models.CoachingSessionScheduled, session.Status)

	rebook := &models.CoachingSession{ProductID: "p1", StudentID: "u1", ScheduledDate: slot, StartTime: "10:00", TransactionID: "pi_4"}
	created, err = repo.BookSession(ctx, rebook)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, session.ID, rebook.ID)

	other := &models.CoachingSession{ProductID: "p1", StudentID: "u2", ScheduledDate: slot, StartTime: "10:00", TransactionID: "pi_5"}
	_, err = repo.BookSession(ctx, other)
	assert.ErrorIs(t, err, ErrSlotUnavailable)
}

func TestStorePlanTransitions(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewStoreRepository(db)
	require.NoError(t, db.Create(&models.Store{ID: "s1", Name: "Beats"}).Error)

	require.NoError(t, repo.UpgradePlan(ctx, "s1", StorePlanUpdate{
		Plan:                 models.StorePlanCreatorPro,
		StripeCustomerID:     "cus_1",
		StripeSubscriptionID: "sub_1",
		SubscriptionStatus:   models.SubscriptionStatusTrialing,
	}))
	store, err := repo.GetByID(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, models.StorePlanCreatorPro, store.Plan)
	assert.Equal(t, "sub_1", store.StripeSubscriptionID)

	require.NoError(t, repo.UpdateSubscriptionStatus(ctx, "s1", models.SubscriptionStatusPastDue))
	require.NoError(t, repo.Downgrade(ctx, "s1", models.StorePlanFree))
	store, err = repo.GetByID(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, models.StorePlanFree, store.Plan)
	assert.Equal(t, models.SubscriptionStatusCancelled, store.SubscriptionStatus)

	assert.ErrorIs(t, repo.Downgrade(ctx, "missing", models.StorePlanFree), ErrNotFound)
}

func TestUserStripeAccountStatus(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewUserRepository(db)
	require.NoError(t, db.Create(&models.User{ExternalID: "user_1", Email: "a@example.com", StripeConnectAccountID: "acct_1"}).Error)

	user, err := repo.GetByStripeAccountID(ctx, "acct_1")
	require.NoError(t, err)
	require.NoError(t, repo.UpdateStripeAccountStatus(ctx, user.ID, models.ConnectStatusEnabled, true))

	user, err = repo.GetByExternalID(ctx, "user_1")
	require.NoError(t, err)
	assert.Equal(t, models.ConnectStatusEnabled, user.StripeAccountStatus)
	assert.True(t, user.StripeOnboardingComplete)

	_, err = repo.GetByStripeAccountID(ctx, "acct_unknown")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFactoryReturnsSingletonRepositories(t *testing.T) {
	f := NewFactory(newTestDB(t))
	repos := f.GetRepositories()
	assert.Same(t, repos, f.GetRepositories())
	assert.NotNil(t, repos.Purchase)
	assert.NotNil(t, repos.User)
}
