package billing

import (
	"strings"

	"github.com/ManuelReschke/CreatorHub/app/models"
	"github.com/stripe/stripe-go/v76"
)

// providerStatusMap translates provider subscription statuses into the local
// vocabulary. Statuses not listed pass through unchanged.
var providerStatusMap = map[string]string{
	string(stripe.SubscriptionStatusActive):            models.SubscriptionStatusActive,
	string(stripe.SubscriptionStatusTrialing):          models.SubscriptionStatusTrialing,
	string(stripe.SubscriptionStatusPastDue):           models.SubscriptionStatusPastDue,
	string(stripe.SubscriptionStatusUnpaid):            models.SubscriptionStatusPastDue,
	string(stripe.SubscriptionStatusCanceled):          models.SubscriptionStatusCancelled,
	string(stripe.SubscriptionStatusIncompleteExpired): models.SubscriptionStatusExpired,
}

// MapSubscriptionStatus returns the local status for a provider status.
func MapSubscriptionStatus(providerStatus string) string {
	s := strings.ToLower(strings.TrimSpace(providerStatus))
	if mapped, ok := providerStatusMap[s]; ok {
		return mapped
	}
	return s
}

// ConnectAccountStatus derives the payout readiness of a Connect account.
func ConnectAccountStatus(account *stripe.Account) string {
	switch {
	case account == nil:
		return models.ConnectStatusPending
	case account.ChargesEnabled && account.PayoutsEnabled:
		return models.ConnectStatusEnabled
	case account.DetailsSubmitted:
		return models.ConnectStatusRestricted
	default:
		return models.ConnectStatusPending
	}
}
