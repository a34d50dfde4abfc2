package billing

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/ManuelReschke/CreatorHub/app/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v76"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testSecret = "whsec_test_secret"

func newTestRepository(t *testing.T) Repository {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.WebhookEvent{}, &models.Subscription{}))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	return NewRepository(db)
}

func checkoutPayload(eventID string, metadata string) []byte {
	return []byte(fmt.Sprintf(`{
  "id": %q,
  "object": "event",
  "type": "checkout.session.completed",
  "created": 1760000000,
  "data": {"object": {
    "id": "cs_test_1",
    "object": "checkout.session",
    "mode": "payment",
    "payment_intent": "pi_test_1",
    "amount_total": 2999,
    "currency": "usd",
    "customer_details": {"email": "buyer@example.com", "name": "Buyer"},
    "metadata": %s
  }}
}`, eventID, metadata))
}

func TestVerifierAcceptsSignedPayload(t *testing.T) {
	payload := checkoutPayload("evt_1", `{"productType":"course","userId":"u1","courseId":"c1","amount":"2999"}`)
	header := SignPayload(payload, testSecret, time.Now())

	ev, err := NewVerifier(testSecret).Verify(payload, header)
	require.NoError(t, err)
	assert.Equal(t, "evt_1", ev.ID)
	assert.Equal(t, EventCheckoutCompleted, ev.Type)
	assert.Equal(t, models.ProductTypeCourse, ev.ProductType)
	assert.Equal(t, "c1", ev.Meta("courseId"))
	require.NotNil(t, ev.Checkout)
	require.NotNil(t, ev.Checkout.PaymentIntent)
	assert.Equal(t, "pi_test_1", ev.Checkout.PaymentIntent.ID)
	assert.Equal(t, "buyer@example.com", ev.Checkout.CustomerDetails.Email)
	assert.Equal(t, payload, ev.Raw)
}

func TestVerifierRejectsBadSignatures(t *testing.T) {
	payload := checkoutPayload("evt_1", `{}`)

	tests := []struct {
		name   string
		header string
	}{
		{name: "empty header", header: ""},
		{name: "garbage header", header: "not-a-signature"},
		{name: "wrong secret", header: SignPayload(payload, "whsec_other", time.Now())},
		{name: "stale timestamp", header: SignPayload(payload, testSecret, time.Now().Add(-time.Hour))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev, err := NewVerifier(testSecret).Verify(payload, tt.header)
			assert.Nil(t, ev)
			assert.ErrorIs(t, err, ErrInvalidSignature)
		})
	}
}

func TestVerifierRejectsTamperedPayload(t *testing.T) {
	payload := checkoutPayload("evt_1", `{"amount":"100"}`)
	header := SignPayload(payload, testSecret, time.Now())

	tampered := checkoutPayload("evt_1", `{"amount":"1"}`)
	_, err := NewVerifier(testSecret).Verify(tampered, header)
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestParseEventInfersProductTypes(t *testing.T) {
	subscriptionCheckout := []byte(`{"id":"evt_2","object":"event","type":"checkout.session.completed","data":{"object":{"id":"cs_2","object":"checkout.session","mode":"subscription","subscription":"sub_2","metadata":{"planId":"plan_1","userId":"u1"}}}}`)
	ev, err := DecodeStored(subscriptionCheckout)
	require.NoError(t, err)
	assert.Equal(t, models.ProductTypeContentSubscription, ev.ProductType)
	assert.Equal(t, "sub_2", ev.SubscriptionID())

	storeSub := []byte(`{"id":"evt_3","object":"event","type":"customer.subscription.deleted","data":{"object":{"id":"sub_3","object":"subscription","status":"canceled","metadata":{"storeId":"s1","plan":"creator"}}}}`)
	ev, err = DecodeStored(storeSub)
	require.NoError(t, err)
	assert.Equal(t, models.ProductTypeCreatorPlan, ev.ProductType)
	assert.Equal(t, "sub_3", ev.SubscriptionID())

	invoice := []byte(`{"id":"evt_4","object":"event","type":"invoice.payment_failed","data":{"object":{"id":"in_4","object":"invoice","subscription":"sub_4","attempt_count":2}}}`)
	ev, err = DecodeStored(invoice)
	require.NoError(t, err)
	assert.Equal(t, "sub_4", ev.SubscriptionID())
	assert.Equal(t, int64(2), ev.Invoice.AttemptCount)

	transfer := []byte(`{"id":"evt_5","object":"event","type":"transfer.created","data":{"object":{"id":"tr_5","object":"transfer"}}}`)
	ev, err = DecodeStored(transfer)
	require.NoError(t, err)
	assert.Equal(t, EventTransferCreated, ev.Type)
	assert.Empty(t, ev.ProductType)
}

func TestParseEventReportsMalformedObjects(t *testing.T) {
	bad := []byte(`{"id":"evt_6","object":"event","type":"customer.subscription.updated","data":{"object":{"id":"sub_6","status":["not","a","string"]}}}`)
	ev, err := DecodeStored(bad)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMalformedEvent)
	require.NotNil(t, ev)
	assert.Equal(t, "evt_6", ev.ID)
}

func TestMapSubscriptionStatus(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "active", want: models.SubscriptionStatusActive},
		{in: "trialing", want: models.SubscriptionStatusTrialing},
		{in: "past_due", want: models.SubscriptionStatusPastDue},
		{in: "canceled", want: models.SubscriptionStatusCancelled},
		{in: "incomplete_expired", want: models.SubscriptionStatusExpired},
		{in: "incomplete", want: "incomplete"},
		{in: "paused", want: "paused"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, MapSubscriptionStatus(tt.in), tt.in)
	}
}

func TestLedgerLifecycle(t *testing.T) {
	ctx := context.Background()
	ledger := NewLedger(newTestRepository(t))

	event, err := ledger.Lookup(ctx, "evt_1")
	require.NoError(t, err)
	assert.Nil(t, event)

	event, err = ledger.RecordOutcome(ctx, LedgerEntry{
		EventID:     "evt_1",
		EventType:   EventCheckoutCompleted,
		ProductType: models.ProductTypeCourse,
		Status:      models.WebhookStatusFailed,
		Error:       "db down",
		Payload:     []byte(`{"id":"evt_1"}`),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, event.Attempts)
	assert.Nil(t, event.ProcessedAt)

	failed, err := ledger.ListFailed(ctx, 10, 3)
	require.NoError(t, err)
	require.Len(t, failed, 1)
	assert.Equal(t, "db down", failed[0].Error)

	event, err = ledger.RecordOutcome(ctx, LedgerEntry{
		EventID:     "evt_1",
		EventType:   EventCheckoutCompleted,
		ProductType: models.ProductTypeCourse,
		Status:      models.WebhookStatusProcessed,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, event.Attempts)
	assert.Empty(t, event.Error)
	assert.NotNil(t, event.ProcessedAt)
	assert.Equal(t, `{"id":"evt_1"}`, event.PayloadJSON)

	stored, err := ledger.Lookup(ctx, "evt_1")
	require.NoError(t, err)
	assert.True(t, stored.IsProcessed())

	failed, err = ledger.ListFailed(ctx, 10, 3)
	require.NoError(t, err)
	assert.Empty(t, failed)

	_, err = ledger.RecordOutcome(ctx, LedgerEntry{EventID: "evt_2", Status: "bogus"})
	assert.Error(t, err)
}

func TestLedgerListFailedHonoursMaxAttempts(t *testing.T) {
	ctx := context.Background()
	ledger := NewLedger(newTestRepository(t))

	for i := 0; i < 3; i++ {
		_, err := ledger.RecordOutcome(ctx, LedgerEntry{EventID: "evt_9", Status: models.WebhookStatusFailed, Error: "boom", Payload: []byte(`{}`)})
		require.NoError(t, err)
	}

	failed, err := ledger.ListFailed(ctx, 10, 3)
	require.NoError(t, err)
	assert.Empty(t, failed)

	all, err := ledger.List(ctx, models.WebhookStatusFailed, 10)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, 3, all[0].Attempts)
}

func TestSubscriptionLifecycle(t *testing.T) {
	ctx := context.Background()
	mgr := NewSubscriptionManager(newTestRepository(t))

	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)

	sub, created, err := mgr.Create(ctx, NewSubscription{
		StripeSubscriptionID: "sub_1",
		UserID:               "u1",
		ProductType:          models.ProductTypePPRPro,
		Plan:                 "monthly",
		Trialing:             true,
		PeriodStart:          &start,
		PeriodEnd:            &end,
	})
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, models.SubscriptionStatusTrialing, sub.Status)

	_, created, err = mgr.Create(ctx, NewSubscription{StripeSubscriptionID: "sub_1", UserID: "u1"})
	require.NoError(t, err)
	assert.False(t, created)

	sub, changed, err := mgr.MarkPastDue(ctx, "sub_1")
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, models.SubscriptionStatusPastDue, sub.Status)
	assert.True(t, sub.CurrentPeriodStart.Equal(start))
	assert.True(t, sub.CurrentPeriodEnd.Equal(end))

	_, changed, err = mgr.MarkPastDue(ctx, "sub_1")
	require.NoError(t, err)
	assert.False(t, changed)

	newEnd := end.AddDate(0, 1, 0)
	sub, err = mgr.ApplyUpdate(ctx, "sub_1", SubscriptionChange{
		ProviderStatus:    "active",
		PeriodStart:       end,
		PeriodEnd:         newEnd,
		CancelAtPeriodEnd: true,
	})
	require.NoError(t, err)
	assert.Equal(t, models.SubscriptionStatusActive, sub.Status)
	assert.True(t, sub.CancelAtPeriodEnd)

	stored, err := mgr.Get(ctx, "sub_1")
	require.NoError(t, err)
	assert.True(t, stored.CurrentPeriodEnd.Equal(newEnd))

	// An inverted period is ignored.
	_, err = mgr.ApplyUpdate(ctx, "sub_1", SubscriptionChange{ProviderStatus: "active", PeriodStart: newEnd, PeriodEnd: end})
	require.NoError(t, err)
	stored, err = mgr.Get(ctx, "sub_1")
	require.NoError(t, err)
	assert.True(t, stored.CurrentPeriodEnd.Equal(newEnd))

	cancel, err := mgr.Cancel(ctx, "sub_1", time.Time{})
	require.NoError(t, err)
	assert.True(t, cancel.Changed)
	assert.True(t, cancel.AccessEndsAt.Equal(newEnd))
	assert.Equal(t, models.SubscriptionStatusCancelled, cancel.Subscription.Status)

	cancel, err = mgr.Cancel(ctx, "sub_1", time.Time{})
	require.NoError(t, err)
	assert.False(t, cancel.Changed)

	// A late update does not reopen a cancelled subscription.
	sub, err = mgr.ApplyUpdate(ctx, "sub_1", SubscriptionChange{ProviderStatus: "active"})
	require.NoError(t, err)
	assert.Equal(t, models.SubscriptionStatusCancelled, sub.Status)
}

func TestSubscriptionUpdateMapsCanceledStatus(t *testing.T) {
	ctx := context.Background()
	mgr := NewSubscriptionManager(newTestRepository(t))

	_, _, err := mgr.Create(ctx, NewSubscription{StripeSubscriptionID: "sub_2", UserID: "u2", ProductType: models.ProductTypeMembership})
	require.NoError(t, err)

	sub, err := mgr.ApplyUpdate(ctx, "sub_2", SubscriptionChange{ProviderStatus: "canceled"})
	require.NoError(t, err)
	assert.Equal(t, models.SubscriptionStatusCancelled, sub.Status)
	assert.NotNil(t, sub.CancelledAt)
}

func TestSubscriptionTransitionsRequireExistingRow(t *testing.T) {
	ctx := context.Background()
	mgr := NewSubscriptionManager(newTestRepository(t))

	_, _, err := mgr.MarkPastDue(ctx, "sub_missing")
	assert.ErrorIs(t, err, ErrSubscriptionNotFound)
	_, err = mgr.Cancel(ctx, "sub_missing", time.Now())
	assert.ErrorIs(t, err, ErrSubscriptionNotFound)
	_, err = mgr.ApplyUpdate(ctx, "sub_missing", SubscriptionChange{ProviderStatus: "active"})
	assert.ErrorIs(t, err, ErrSubscriptionNotFound)
}

func TestConnectAccountStatus(t *testing.T) {
	assert.Equal(t, models.ConnectStatusPending, ConnectAccountStatus(nil))
	assert.Equal(t, models.ConnectStatusPending, ConnectAccountStatus(&stripe.Account{}))
	assert.Equal(t, models.ConnectStatusRestricted, ConnectAccountStatus(&stripe.Account{DetailsSubmitted: true, ChargesEnabled: true}))
	assert.Equal(t, models.ConnectStatusEnabled, ConnectAccountStatus(&stripe.Account{ChargesEnabled: true, PayoutsEnabled: true}))
}
