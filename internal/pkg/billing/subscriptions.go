package billing

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ManuelReschke/CreatorHub/app/models"
	"github.com/gofiber/fiber/v2/log"
)

// ErrSubscriptionNotFound is returned when a lifecycle event refers to a
// subscription that has no local row yet.
var ErrSubscriptionNotFound = errors.New("subscription not found")

// NewSubscription describes a subscription created by a completed checkout.
type NewSubscription struct {
	StripeSubscriptionID string
	StripeCustomerID     string
	UserID               string
	ProductType          string
	Plan                 string
	PlanID               string
	StoreID              string
	BillingCycle         string
	Trialing             bool
	TrialEnd             *time.Time
	PeriodStart          *time.Time
	PeriodEnd            *time.Time
}

// SubscriptionChange is the provider state carried by a subscription updated event.
type SubscriptionChange struct {
	ProviderStatus    string
	PeriodStart       time.Time
	PeriodEnd         time.Time
	CancelAtPeriodEnd bool
	TrialEnd          *time.Time
}

// Cancellation is the result of a cancel transition.
type Cancellation struct {
	Subscription *models.Subscription
	AccessEndsAt time.Time
	Changed      bool
}

// SubscriptionManager drives the subscription state machine. Every transition
// reads the persisted row first so events may arrive in any order.
type SubscriptionManager struct {
	repo Repository
	now  func() time.Time
}

// NewSubscriptionManager creates a lifecycle manager on top of the billing repository.
func NewSubscriptionManager(repo Repository) *SubscriptionManager {
	return &SubscriptionManager{repo: repo, now: time.Now}
}

// Create stores a new subscription as active or trialing. A subscription that
// already exists is returned unchanged.
func (m *SubscriptionManager) Create(ctx context.Context, in NewSubscription) (*models.Subscription, bool, error) {
	subID := strings.TrimSpace(in.StripeSubscriptionID)
	if subID == "" || strings.TrimSpace(in.UserID) == "" {
		return nil, false, errors.New("stripe_subscription_id and user_id are required")
	}

	status := models.SubscriptionStatusActive
	if in.Trialing {
		status = models.SubscriptionStatusTrialing
	}

	sub := &models.Subscription{
		StripeSubscriptionID: subID,
		StripeCustomerID:     in.StripeCustomerID,
		UserID:               in.UserID,
		ProductType:          in.ProductType,
		Plan:                 in.Plan,
		PlanID:               in.PlanID,
		StoreID:              in.StoreID,
		BillingCycle:         NormalizeBillingCycle(in.BillingCycle),
		Status:               status,
		TrialEndsAt:          in.TrialEnd,
	}
	if validPeriod(in.PeriodStart, in.PeriodEnd) {
		sub.CurrentPeriodStart = in.PeriodStart
		sub.CurrentPeriodEnd = in.PeriodEnd
	}

	created, err := m.repo.CreateSubscriptionIfNotExists(ctx, sub)
	if err != nil {
		return nil, false, fmt.Errorf("create subscription %s: %w", subID, err)
	}
	if created {
		log.Infof("[Subscription] %s created for user %s as %s (%s)", subID, in.UserID, status, in.ProductType)
	}
	return sub, created, nil
}

// ApplyUpdate maps the provider status and refreshes the billing period and
// cancel flag. Terminal rows keep their status but still take period updates.
func (m *SubscriptionManager) ApplyUpdate(ctx context.Context, stripeSubscriptionID string, change SubscriptionChange) (*models.Subscription, error) {
	sub, err := m.repo.GetSubscription(ctx, stripeSubscriptionID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{
		"cancel_at_period_end": change.CancelAtPeriodEnd,
	}
	if !change.PeriodStart.IsZero() && change.PeriodEnd.After(change.PeriodStart) {
		start, end := change.PeriodStart, change.PeriodEnd
		updates["current_period_start"] = &start
		updates["current_period_end"] = &end
		sub.CurrentPeriodStart, sub.CurrentPeriodEnd = &start, &end
	}
	if change.TrialEnd != nil {
		updates["trial_ends_at"] = change.TrialEnd
		sub.TrialEndsAt = change.TrialEnd
	}

	status := MapSubscriptionStatus(change.ProviderStatus)
	if status != "" && status != sub.Status && !sub.IsTerminal() {
		updates["status"] = status
		if status == models.SubscriptionStatusCancelled {
			now := m.now()
			updates["cancelled_at"] = &now
			sub.CancelledAt = &now
		}
		log.Infof("[Subscription] %s %s -> %s", sub.StripeSubscriptionID, sub.Status, status)
		sub.Status = status
	}
	sub.CancelAtPeriodEnd = change.CancelAtPeriodEnd

	if err := m.repo.UpdateSubscription(ctx, sub.ID, updates); err != nil {
		return nil, fmt.Errorf("update subscription %s: %w", stripeSubscriptionID, err)
	}
	return sub, nil
}

// MarkPastDue moves an active or trialing subscription to past_due. Periods are untouched.
func (m *SubscriptionManager) MarkPastDue(ctx context.Context, stripeSubscriptionID string) (*models.Subscription, bool, error) {
	sub, err := m.repo.GetSubscription(ctx, stripeSubscriptionID)
	if err != nil {
		return nil, false, err
	}
	if sub.Status != models.SubscriptionStatusActive && sub.Status != models.SubscriptionStatusTrialing {
		return sub, false, nil
	}

	if err := m.repo.UpdateSubscription(ctx, sub.ID, map[string]interface{}{
		"status": models.SubscriptionStatusPastDue,
	}); err != nil {
		return nil, false, fmt.Errorf("mark subscription %s past due: %w", stripeSubscriptionID, err)
	}
	log.Infof("[Subscription] %s %s -> %s", sub.StripeSubscriptionID, sub.Status, models.SubscriptionStatusPastDue)
	sub.Status = models.SubscriptionStatusPastDue
	return sub, true, nil
}

// Cancel moves a non-terminal subscription to cancelled. Access ends with the
// current period, or at cancellation when no period is known.
func (m *SubscriptionManager) Cancel(ctx context.Context, stripeSubscriptionID string, canceledAt time.Time) (*Cancellation, error) {
	sub, err := m.repo.GetSubscription(ctx, stripeSubscriptionID)
	if err != nil {
		return nil, err
	}

	if canceledAt.IsZero() {
		canceledAt = m.now()
	}
	accessEnd := canceledAt
	if sub.CurrentPeriodEnd != nil {
		accessEnd = *sub.CurrentPeriodEnd
	}

	if sub.IsTerminal() {
		return &Cancellation{Subscription: sub, AccessEndsAt: accessEnd}, nil
	}

	if err := m.repo.UpdateSubscription(ctx, sub.ID, map[string]interface{}{
		"status":       models.SubscriptionStatusCancelled,
		"cancelled_at": &canceledAt,
	}); err != nil {
		return nil, fmt.Errorf("cancel subscription %s: %w", stripeSubscriptionID, err)
	}
	log.Infof("[Subscription] %s %s -> %s, access until %s", sub.StripeSubscriptionID, sub.Status,
		models.SubscriptionStatusCancelled, accessEnd.Format(time.RFC3339))
	sub.Status = models.SubscriptionStatusCancelled
	sub.CancelledAt = &canceledAt
	return &Cancellation{Subscription: sub, AccessEndsAt: accessEnd, Changed: true}, nil
}

// Get returns the local subscription row.
func (m *SubscriptionManager) Get(ctx context.Context, stripeSubscriptionID string) (*models.Subscription, error) {
	return m.repo.GetSubscription(ctx, stripeSubscriptionID)
}

func validPeriod(start, end *time.Time) bool {
	return start != nil && end != nil && end.After(*start)
}

// UnixTime converts a provider timestamp, returning nil for zero.
func UnixTime(ts int64) *time.Time {
	if ts <= 0 {
		return nil
	}
	t := time.Unix(ts, 0).UTC()
	return &t
}
