package webhook

import (
	"github.com/ManuelReschke/CreatorHub/internal/pkg/billing"
	"github.com/gofiber/fiber/v2/log"
	"github.com/stripe/stripe-go/v76"
)

// checkoutRoute matches completed one-off checkouts of a single product type.
type checkoutRoute struct {
	name        string
	productType string
}

func (r checkoutRoute) Name() string {
	return r.name
}

func (r checkoutRoute) CanHandle(ev *billing.Event) bool {
	return ev.Type == billing.EventCheckoutCompleted &&
		ev.Checkout != nil &&
		ev.ProductType == r.productType
}

// subscriptionCheckoutRoute matches completed checkouts in subscription mode
// that carry the created provider subscription.
type subscriptionCheckoutRoute struct {
	checkoutRoute
}

func (r subscriptionCheckoutRoute) CanHandle(ev *billing.Event) bool {
	return r.checkoutRoute.CanHandle(ev) &&
		ev.Checkout.Mode == stripe.CheckoutSessionModeSubscription &&
		ev.Checkout.Subscription != nil &&
		ev.Checkout.Subscription.ID != ""
}

// alreadyRecorded is the result of a handler whose mutation found the
// transaction already stored. The notification went out with the first write.
func alreadyRecorded(handler, txID string) Result {
	log.Infof("[Webhook] %s: transaction %s already recorded, not notifying again", handler, txID)
	return done()
}
