// Package webhook turns verified payment provider events into domain state
// changes. Every authenticated event is acknowledged; failures are recorded
// in the idempotency ledger for replay instead of being returned to the
// provider.
package webhook

import (
	"context"
	"errors"
	"time"

	"github.com/ManuelReschke/CreatorHub/app/models"
	"github.com/ManuelReschke/CreatorHub/internal/pkg/billing"
	"github.com/ManuelReschke/CreatorHub/internal/pkg/notify"
	"github.com/stripe/stripe-go/v76"
)

// ErrMissingMetadata marks an event whose metadata lacks fields a handler
// needs. The handler performs no mutation and the event counts as processed.
var ErrMissingMetadata = errors.New("missing or invalid metadata")

// Handler converts one kind of event into domain mutations.
type Handler interface {
	Name() string
	CanHandle(ev *billing.Event) bool
	Handle(ctx context.Context, ev *billing.Event) Result
}

// Outcome is the result of a best-effort step such as a notification or a
// follow-on mutation. A failed outcome is logged and reported, never propagated.
type Outcome struct {
	Step string
	Err  error
}

// Result is what a handler hands back to the dispatcher. Err is set only when
// the handler's core mutation failed.
type Result struct {
	Err         error
	Skipped     bool
	Reason      string
	ProductType string
	Outcomes    []Outcome
}

func done(outcomes ...Outcome) Result {
	return Result{Outcomes: outcomes}
}

func failed(err error) Result {
	return Result{Err: err}
}

func skipped(reason error) Result {
	return Result{Skipped: true, Reason: reason.Error()}
}

// Notifier sends a templated message and reports the outcome.
type Notifier interface {
	Send(ctx context.Context, templateID string, payload notify.Payload) notify.Outcome
}

// ContactResolver looks up the contact address of a marketplace user.
type ContactResolver interface {
	Contact(ctx context.Context, userID string) (email, name string, err error)
}

// SubscriptionFetcher reads the live provider state of a subscription.
type SubscriptionFetcher interface {
	GetSubscription(ctx context.Context, id string) (*stripe.Subscription, error)
}

// SubscriptionLifecycle is the subscription state machine.
type SubscriptionLifecycle interface {
	Create(ctx context.Context, in billing.NewSubscription) (*models.Subscription, bool, error)
	ApplyUpdate(ctx context.Context, stripeSubscriptionID string, change billing.SubscriptionChange) (*models.Subscription, error)
	MarkPastDue(ctx context.Context, stripeSubscriptionID string) (*models.Subscription, bool, error)
	Cancel(ctx context.Context, stripeSubscriptionID string, canceledAt time.Time) (*billing.Cancellation, error)
}

func notifyStep(ctx context.Context, n Notifier, templateID string, payload notify.Payload) Outcome {
	if n == nil {
		return Outcome{Step: "notify:" + templateID}
	}
	out := n.Send(ctx, templateID, payload)
	return Outcome{Step: "notify:" + templateID, Err: out.Err}
}
