package webhook

import (
	"context"
	"errors"
	"fmt"

	"github.com/ManuelReschke/CreatorHub/app/repository"
	"github.com/ManuelReschke/CreatorHub/internal/pkg/billing"
	"github.com/ManuelReschke/CreatorHub/internal/pkg/notify"
	"github.com/gofiber/fiber/v2/log"
)

// AccountUpdatedHandler syncs the payout readiness of a creator's Connect account.
type AccountUpdatedHandler struct {
	users repository.UserRepository
}

func NewAccountUpdatedHandler(users repository.UserRepository) *AccountUpdatedHandler {
	return &AccountUpdatedHandler{users: users}
}

func (h *AccountUpdatedHandler) Name() string {
	return "account_updated"
}

func (h *AccountUpdatedHandler) CanHandle(ev *billing.Event) bool {
	return ev.Type == billing.EventAccountUpdated && ev.Account != nil && ev.Account.ID != ""
}

func (h *AccountUpdatedHandler) Handle(ctx context.Context, ev *billing.Event) Result {
	account := ev.Account
	user, err := h.users.GetByStripeAccountID(ctx, account.ID)
	if errors.Is(err, repository.ErrNotFound) {
		return skipped(fmt.Errorf("no user for connect account %s", account.ID))
	}
	if err != nil {
		return failed(fmt.Errorf("load user for connect account %s: %w", account.ID, err))
	}

	status := billing.ConnectAccountStatus(account)
	if err := h.users.UpdateStripeAccountStatus(ctx, user.ID, status, account.DetailsSubmitted); err != nil {
		return failed(fmt.Errorf("update connect status of user %d: %w", user.ID, err))
	}
	log.Infof("[Webhook] Connect account %s of user %d is %s (onboarding complete: %t)",
		account.ID, user.ID, status, account.DetailsSubmitted)
	return done()
}

// PaymentFailedHandler tells the customer that a one-off payment did not go through.
type PaymentFailedHandler struct {
	notifier Notifier
}

func NewPaymentFailedHandler(notifier Notifier) *PaymentFailedHandler {
	return &PaymentFailedHandler{notifier: notifier}
}

func (h *PaymentFailedHandler) Name() string {
	return "payment_intent_failed"
}

func (h *PaymentFailedHandler) CanHandle(ev *billing.Event) bool {
	return ev.Type == billing.EventPaymentIntentFailed && ev.PaymentIntent != nil
}

func (h *PaymentFailedHandler) Handle(ctx context.Context, ev *billing.Event) Result {
	pi := ev.PaymentIntent
	reason := "Payment declined"
	if pi.LastPaymentError != nil && pi.LastPaymentError.Msg != "" {
		reason = pi.LastPaymentError.Msg
	}
	log.Warnf("[Webhook] Payment %s failed: %s", pi.ID, reason)

	email := ev.Meta("customerEmail")
	if email == "" {
		return done()
	}
	return done(notifyStep(ctx, h.notifier, notify.TemplatePaymentFailed, notify.Payload{
		To:       email,
		Name:     orDefault(ev.Meta("customerName"), "Customer"),
		Title:    orDefault(ev.Meta("courseTitle"), "your purchase"),
		Amount:   pi.Amount,
		Currency: orDefault(string(pi.Currency), "usd"),
		Details:  map[string]string{"failureReason": reason},
	}))
}

// LogOnlyHandler acknowledges informational events.
type LogOnlyHandler struct {
	eventType string
}

func NewLogOnlyHandler(eventType string) *LogOnlyHandler {
	return &LogOnlyHandler{eventType: eventType}
}

func (h *LogOnlyHandler) Name() string {
	return "log:" + h.eventType
}

func (h *LogOnlyHandler) CanHandle(ev *billing.Event) bool {
	return ev.Type == h.eventType
}

func (h *LogOnlyHandler) Handle(ctx context.Context, ev *billing.Event) Result {
	switch {
	case ev.PaymentIntent != nil:
		log.Infof("[Webhook] %s: payment %s of %s", ev.Type, ev.PaymentIntent.ID,
			notify.FormatAmount(ev.PaymentIntent.Amount, string(ev.PaymentIntent.Currency)))
	case ev.Invoice != nil:
		log.Infof("[Webhook] %s: invoice %s paid %s for subscription %s", ev.Type, ev.Invoice.ID,
			notify.FormatAmount(ev.Invoice.AmountPaid, string(ev.Invoice.Currency)), ev.SubscriptionID())
	default:
		log.Infof("[Webhook] %s: %s acknowledged", ev.Type, ev.ID)
	}
	return done()
}
