package billing

import (
	"time"

	"github.com/stripe/stripe-go/v76"
)

// Provider event types handled by the pipeline.
const (
	EventCheckoutCompleted        = "checkout.session.completed"
	EventSubscriptionUpdated      = "customer.subscription.updated"
	EventSubscriptionDeleted      = "customer.subscription.deleted"
	EventInvoicePaymentFailed     = "invoice.payment_failed"
	EventInvoicePaymentSucceeded  = "invoice.payment_succeeded"
	EventPaymentIntentSucceeded   = "payment_intent.succeeded"
	EventPaymentIntentFailed      = "payment_intent.payment_failed"
	EventAccountUpdated           = "account.updated"
	EventAccountApplicationAuthed = "account.application.authorized"
	EventTransferCreated          = "transfer.created"
	EventTransferPaid             = "transfer.paid"
)

// Event is a verified provider event with its data object decoded according
// to the event type. Exactly one of the typed objects is set for the event
// types the pipeline understands; all are nil otherwise.
type Event struct {
	ID          string
	Type        string
	Created     time.Time
	ProductType string
	Metadata    map[string]string

	Checkout      *stripe.CheckoutSession
	Subscription  *stripe.Subscription
	Invoice       *stripe.Invoice
	PaymentIntent *stripe.PaymentIntent
	Account       *stripe.Account

	// Raw is the authenticated request body.
	Raw []byte
}

// Meta returns the trimmed metadata value for key.
func (e *Event) Meta(key string) string {
	if e == nil || e.Metadata == nil {
		return ""
	}
	return trim(e.Metadata[key])
}

// SubscriptionID returns the provider subscription the event refers to, if any.
func (e *Event) SubscriptionID() string {
	switch {
	case e.Subscription != nil:
		return e.Subscription.ID
	case e.Checkout != nil && e.Checkout.Subscription != nil:
		return e.Checkout.Subscription.ID
	case e.Invoice != nil && e.Invoice.Subscription != nil:
		return e.Invoice.Subscription.ID
	default:
		return ""
	}
}
