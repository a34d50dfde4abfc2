package billing

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ManuelReschke/CreatorHub/app/models"
	"github.com/stripe/stripe-go/v76"
)

// ErrMalformedEvent is returned when an authenticated event carries a data
// object that does not match its type.
var ErrMalformedEvent = errors.New("malformed event object")

// ParseEvent decodes the data object of a provider event. The returned event
// is never nil and always carries ID and type, also when decoding fails.
func ParseEvent(raw stripe.Event) (*Event, error) {
	ev := &Event{
		ID:       raw.ID,
		Type:     string(raw.Type),
		Metadata: map[string]string{},
	}
	if raw.Created > 0 {
		ev.Created = time.Unix(raw.Created, 0).UTC()
	}
	if raw.Data == nil || len(raw.Data.Raw) == 0 {
		return ev, nil
	}

	var err error
	switch ev.Type {
	case EventCheckoutCompleted:
		var session stripe.CheckoutSession
		if err = json.Unmarshal(raw.Data.Raw, &session); err == nil {
			ev.Checkout = &session
			ev.setMetadata(session.Metadata)
			ev.ProductType = checkoutProductType(&session)
		}
	case EventSubscriptionUpdated, EventSubscriptionDeleted:
		var sub stripe.Subscription
		if err = json.Unmarshal(raw.Data.Raw, &sub); err == nil {
			ev.Subscription = &sub
			ev.setMetadata(sub.Metadata)
			ev.ProductType = ev.Meta("productType")
			if ev.ProductType == "" && ev.Meta("storeId") != "" {
				ev.ProductType = models.ProductTypeCreatorPlan
			}
		}
	case EventInvoicePaymentFailed, EventInvoicePaymentSucceeded:
		var invoice stripe.Invoice
		if err = json.Unmarshal(raw.Data.Raw, &invoice); err == nil {
			ev.Invoice = &invoice
			ev.setMetadata(invoice.Metadata)
			ev.ProductType = ev.Meta("productType")
		}
	case EventPaymentIntentSucceeded, EventPaymentIntentFailed:
		var intent stripe.PaymentIntent
		if err = json.Unmarshal(raw.Data.Raw, &intent); err == nil {
			ev.PaymentIntent = &intent
			ev.setMetadata(intent.Metadata)
			ev.ProductType = ev.Meta("productType")
		}
	case EventAccountUpdated:
		var account stripe.Account
		if err = json.Unmarshal(raw.Data.Raw, &account); err == nil {
			ev.Account = &account
			ev.setMetadata(account.Metadata)
		}
	}
	if err != nil {
		return ev, fmt.Errorf("%w: %s: %v", ErrMalformedEvent, ev.Type, err)
	}
	return ev, nil
}

func (e *Event) setMetadata(md map[string]string) {
	for k, v := range md {
		e.Metadata[k] = v
	}
}

// checkoutProductType resolves the product family of a checkout session.
// Subscription checkouts that only carry a planId are content subscriptions.
func checkoutProductType(session *stripe.CheckoutSession) string {
	productType := trim(session.Metadata["productType"])
	if productType != "" {
		return productType
	}
	if session.Mode == stripe.CheckoutSessionModeSubscription && trim(session.Metadata["planId"]) != "" {
		return models.ProductTypeContentSubscription
	}
	return ""
}

func trim(s string) string {
	return strings.TrimSpace(s)
}
