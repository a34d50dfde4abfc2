package billing

import (
	"context"
	"errors"
	"strings"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
)

// StripeClient wraps the provider API calls the pipeline needs.
type StripeClient struct {
	api *client.API
}

// NewStripeClient creates an API client for the given secret key.
func NewStripeClient(secretKey string) *StripeClient {
	sc := &client.API{}
	sc.Init(strings.TrimSpace(secretKey), nil)
	return &StripeClient{api: sc}
}

// GetSubscription retrieves the current provider state of a subscription.
func (c *StripeClient) GetSubscription(ctx context.Context, id string) (*stripe.Subscription, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, errors.New("subscription id is required")
	}
	params := &stripe.SubscriptionParams{}
	params.Context = ctx
	return c.api.Subscriptions.Get(id, params)
}
