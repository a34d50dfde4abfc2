package billing

import (
	"strings"

	"github.com/ManuelReschke/CreatorHub/app/models"
)

// NormalizeStorePlan maps a creator plan name to a known store plan.
func NormalizeStorePlan(plan string) string {
	switch p := strings.ToLower(strings.TrimSpace(plan)); p {
	case models.StorePlanStarter, models.StorePlanCreator, models.StorePlanCreatorPro,
		models.StorePlanBusiness, models.StorePlanEarlyAccess:
		return p
	default:
		return models.StorePlanFree
	}
}

func planRank(plan string) int {
	switch NormalizeStorePlan(plan) {
	case models.StorePlanEarlyAccess:
		return 5
	case models.StorePlanBusiness:
		return 4
	case models.StorePlanCreatorPro:
		return 3
	case models.StorePlanCreator:
		return 2
	case models.StorePlanStarter:
		return 1
	default:
		return 0
	}
}

// IsPlanUpgrade reports whether moving from one store plan to another is an upgrade.
func IsPlanUpgrade(from, to string) bool {
	return planRank(to) > planRank(from)
}

// NormalizeBillingCycle defaults unknown cycles to monthly.
func NormalizeBillingCycle(cycle string) string {
	switch c := strings.ToLower(strings.TrimSpace(cycle)); c {
	case models.BillingCycleYearly, "year", "annual":
		return models.BillingCycleYearly
	default:
		return models.BillingCycleMonthly
	}
}

// IsEntitlingStatus reports whether a local subscription status grants access.
func IsEntitlingStatus(status string) bool {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case models.SubscriptionStatusActive, models.SubscriptionStatusTrialing, models.SubscriptionStatusPastDue:
		return true
	default:
		return false
	}
}
