package webhook

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ManuelReschke/CreatorHub/app/models"
	"github.com/ManuelReschke/CreatorHub/app/repository"
	"github.com/ManuelReschke/CreatorHub/internal/pkg/billing"
	"github.com/ManuelReschke/CreatorHub/internal/pkg/notify"
	"github.com/gofiber/fiber/v2/log"
)

const accessDateLayout = "January 2, 2006"

// SubscriptionUpdatedHandler applies provider status, billing period and the
// cancel-at-period-end flag to the local subscription.
type SubscriptionUpdatedHandler struct {
	subscriptions SubscriptionLifecycle
	stores        repository.StoreRepository
}

func NewSubscriptionUpdatedHandler(subscriptions SubscriptionLifecycle, stores repository.StoreRepository) *SubscriptionUpdatedHandler {
	return &SubscriptionUpdatedHandler{subscriptions: subscriptions, stores: stores}
}

func (h *SubscriptionUpdatedHandler) Name() string {
	return "subscription_updated"
}

func (h *SubscriptionUpdatedHandler) CanHandle(ev *billing.Event) bool {
	return ev.Type == billing.EventSubscriptionUpdated && ev.Subscription != nil && ev.Subscription.ID != ""
}

func (h *SubscriptionUpdatedHandler) Handle(ctx context.Context, ev *billing.Event) Result {
	s := ev.Subscription
	storeID := ev.Meta("storeId")

	sub, err := h.subscriptions.ApplyUpdate(ctx, s.ID, billing.SubscriptionChange{
		ProviderStatus:    string(s.Status),
		PeriodStart:       unixOrZero(s.CurrentPeriodStart),
		PeriodEnd:         unixOrZero(s.CurrentPeriodEnd),
		CancelAtPeriodEnd: s.CancelAtPeriodEnd,
		TrialEnd:          billing.UnixTime(s.TrialEnd),
	})
	if errors.Is(err, billing.ErrSubscriptionNotFound) && storeID != "" {
		// Creator plans that predate local subscription rows live on the store only.
		status := billing.MapSubscriptionStatus(string(s.Status))
		if err := h.stores.UpdateSubscriptionStatus(ctx, storeID, status); err != nil {
			return failed(fmt.Errorf("update store %s subscription status: %w", storeID, err))
		}
		return Result{ProductType: models.ProductTypeCreatorPlan}
	}
	if err != nil {
		return failed(fmt.Errorf("apply subscription update %s: %w", s.ID, err))
	}

	res := Result{ProductType: sub.ProductType}
	if storeID == "" {
		storeID = storePlanID(sub)
	}
	if storeID != "" {
		step := Outcome{Step: "store:subscription_status"}
		if err := h.stores.UpdateSubscriptionStatus(ctx, storeID, sub.Status); err != nil {
			step.Err = fmt.Errorf("update store %s subscription status: %w", storeID, err)
		}
		res.Outcomes = append(res.Outcomes, step)
	}
	return res
}

// SubscriptionDeletedHandler cancels the local subscription, downgrades a
// creator store to the free plan and tells the subscriber when access ends.
type SubscriptionDeletedHandler struct {
	subscriptions SubscriptionLifecycle
	stores        repository.StoreRepository
	contacts      ContactResolver
	notifier      Notifier
}

func NewSubscriptionDeletedHandler(subscriptions SubscriptionLifecycle, stores repository.StoreRepository, contacts ContactResolver, notifier Notifier) *SubscriptionDeletedHandler {
	return &SubscriptionDeletedHandler{
		subscriptions: subscriptions,
		stores:        stores,
		contacts:      contacts,
		notifier:      notifier,
	}
}

func (h *SubscriptionDeletedHandler) Name() string {
	return "subscription_deleted"
}

func (h *SubscriptionDeletedHandler) CanHandle(ev *billing.Event) bool {
	return ev.Type == billing.EventSubscriptionDeleted && ev.Subscription != nil && ev.Subscription.ID != ""
}

func (h *SubscriptionDeletedHandler) Handle(ctx context.Context, ev *billing.Event) Result {
	s := ev.Subscription
	storeID := ev.Meta("storeId")

	canceledAt := time.Now().UTC()
	if at := billing.UnixTime(s.CanceledAt); at != nil {
		canceledAt = *at
	}

	cancellation, err := h.subscriptions.Cancel(ctx, s.ID, canceledAt)
	if errors.Is(err, billing.ErrSubscriptionNotFound) && storeID != "" {
		if err := h.stores.Downgrade(ctx, storeID, models.StorePlanFree); err != nil {
			return failed(fmt.Errorf("downgrade store %s: %w", storeID, err))
		}
		return Result{ProductType: models.ProductTypeCreatorPlan}
	}
	if err != nil {
		return failed(fmt.Errorf("cancel subscription %s: %w", s.ID, err))
	}

	sub := cancellation.Subscription
	res := Result{ProductType: sub.ProductType}

	if storeID == "" {
		storeID = storePlanID(sub)
	}
	if storeID != "" {
		step := Outcome{Step: "store:downgrade"}
		if err := h.stores.Downgrade(ctx, storeID, models.StorePlanFree); err != nil {
			step.Err = fmt.Errorf("downgrade store %s: %w", storeID, err)
		} else {
			log.Infof("[Webhook] Store %s downgraded to %s", storeID, models.StorePlanFree)
		}
		res.Outcomes = append(res.Outcomes, step)
	}

	if !cancellation.Changed {
		return res
	}

	email, name, step := resolveContact(ctx, h.contacts, sub.UserID, "")
	if step.Err != nil {
		res.Outcomes = append(res.Outcomes, step)
	}
	if email == "" {
		log.Infof("[Webhook] No contact email for subscriber %s, skipping cancellation notice", sub.UserID)
		return res
	}
	res.Outcomes = append(res.Outcomes, notifyStep(ctx, h.notifier, notify.TemplateSubscriptionCancelled, notify.Payload{
		To:    email,
		Name:  orDefault(name, "there"),
		Title: subscriptionTitle(sub),
		Details: map[string]string{
			"accessEndsAt": cancellation.AccessEndsAt.Format(accessDateLayout),
		},
	}))
	return res
}

// InvoicePaymentFailedHandler moves the subscription to past_due and asks the
// subscriber to update the payment method.
type InvoicePaymentFailedHandler struct {
	subscriptions SubscriptionLifecycle
	contacts      ContactResolver
	notifier      Notifier
}

func NewInvoicePaymentFailedHandler(subscriptions SubscriptionLifecycle, contacts ContactResolver, notifier Notifier) *InvoicePaymentFailedHandler {
	return &InvoicePaymentFailedHandler{subscriptions: subscriptions, contacts: contacts, notifier: notifier}
}

func (h *InvoicePaymentFailedHandler) Name() string {
	return "invoice_payment_failed"
}

func (h *InvoicePaymentFailedHandler) CanHandle(ev *billing.Event) bool {
	return ev.Type == billing.EventInvoicePaymentFailed &&
		ev.Invoice != nil &&
		ev.Invoice.Subscription != nil &&
		ev.Invoice.Subscription.ID != ""
}

func (h *InvoicePaymentFailedHandler) Handle(ctx context.Context, ev *billing.Event) Result {
	inv := ev.Invoice
	subID := inv.Subscription.ID

	sub, changed, err := h.subscriptions.MarkPastDue(ctx, subID)
	if err != nil {
		return failed(fmt.Errorf("mark subscription %s past due: %w", subID, err))
	}
	res := Result{ProductType: sub.ProductType}
	log.Infof("[Webhook] Invoice payment failed for %s (attempt %d)", subID, inv.AttemptCount)
	if !changed {
		return res
	}

	email, name, step := resolveContact(ctx, h.contacts, sub.UserID, inv.CustomerEmail)
	if step.Err != nil {
		res.Outcomes = append(res.Outcomes, step)
	}
	if email == "" {
		log.Infof("[Webhook] No contact email for subscriber %s, skipping payment failed notice", sub.UserID)
		return res
	}
	res.Outcomes = append(res.Outcomes, notifyStep(ctx, h.notifier, notify.TemplatePaymentFailed, notify.Payload{
		To:       email,
		Name:     orDefault(orDefault(inv.CustomerName, name), "Customer"),
		Title:    subscriptionTitle(sub),
		Amount:   inv.AmountDue,
		Currency: orDefault(string(inv.Currency), "usd"),
		Details:  map[string]string{"failureReason": "Payment declined"},
	}))
	return res
}

// resolveContact returns the known address or looks the subscriber up. A
// lookup error is returned as a failed step; an unknown user is not an error.
func resolveContact(ctx context.Context, contacts ContactResolver, userID, known string) (string, string, Outcome) {
	step := Outcome{Step: "contact:lookup"}
	if known != "" || contacts == nil || userID == "" {
		return known, "", step
	}
	email, name, err := contacts.Contact(ctx, userID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		step.Err = fmt.Errorf("resolve contact for %s: %w", userID, err)
	}
	return email, name, step
}

func storePlanID(sub *models.Subscription) string {
	if sub.ProductType == models.ProductTypeCreatorPlan {
		return sub.StoreID
	}
	return ""
}

func subscriptionTitle(sub *models.Subscription) string {
	switch sub.ProductType {
	case models.ProductTypePPRPro:
		return "PPR Pro"
	case models.ProductTypeCreatorPlan:
		return "Creator plan " + orDefault(sub.Plan, "subscription")
	case models.ProductTypeMembership:
		return orDefault(sub.Plan, "Membership")
	default:
		return "your subscription"
	}
}

func unixOrZero(ts int64) time.Time {
	if t := billing.UnixTime(ts); t != nil {
		return *t
	}
	return time.Time{}
}
