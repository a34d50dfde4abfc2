package models

// Product type discriminators carried in the checkout metadata bag.
const (
	ProductTypeCourse              = "course"
	ProductTypeDigitalProduct      = "digitalProduct"
	ProductTypeBundle              = "bundle"
	ProductTypeBeatLease           = "beatLease"
	ProductTypeCreditPackage       = "credit_package"
	ProductTypePlaylistSubmission  = "playlist_submission"
	ProductTypeMixingService       = "mixingService"
	ProductTypeCoaching            = "coaching"
	ProductTypeTip                 = "tip"
	ProductTypePPRPro              = "ppr_pro"
	ProductTypeMembership          = "membership"
	ProductTypeCreatorPlan         = "creator_plan"
	ProductTypeContentSubscription = "content_subscription"
)

// PaymentMethodStripe is recorded on every purchase created from a provider event.
const PaymentMethodStripe = "stripe"

// IsSubscriptionProductType reports whether a product type is billed on a recurring basis.
func IsSubscriptionProductType(productType string) bool {
	switch productType {
	case ProductTypePPRPro, ProductTypeMembership, ProductTypeCreatorPlan, ProductTypeContentSubscription:
		return true
	default:
		return false
	}
}
