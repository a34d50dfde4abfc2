package webhook

import (
	"github.com/ManuelReschke/CreatorHub/app/models"
	"github.com/ManuelReschke/CreatorHub/app/repository"
	"github.com/ManuelReschke/CreatorHub/internal/pkg/billing"
	"github.com/ManuelReschke/CreatorHub/internal/pkg/errreport"
)

// Deps are the collaborators the default handlers are built from.
type Deps struct {
	Repos         *repository.Repositories
	Subscriptions SubscriptionLifecycle
	Fetcher       SubscriptionFetcher
	Notifier      Notifier
	Contacts      ContactResolver
}

// NewDefaultDispatcher registers a handler for every product type and
// lifecycle event the marketplace sells through the provider.
func NewDefaultDispatcher(deps Deps, reporter errreport.Reporter) *Dispatcher {
	r := deps.Repos
	d := NewDispatcher(reporter)

	// one-off checkouts
	d.Register(billing.EventCheckoutCompleted, models.ProductTypeCourse, NewCourseHandler(r.Purchase, deps.Notifier))
	d.Register(billing.EventCheckoutCompleted, models.ProductTypeDigitalProduct, NewDigitalProductHandler(r.Purchase, deps.Notifier))
	d.Register(billing.EventCheckoutCompleted, models.ProductTypeBundle, NewBundleHandler(r.Purchase, deps.Notifier))
	d.Register(billing.EventCheckoutCompleted, models.ProductTypeBeatLease, NewBeatLeaseHandler(r.Purchase, r.Beat, deps.Notifier))
	d.Register(billing.EventCheckoutCompleted, models.ProductTypeCreditPackage, NewCreditPackageHandler(r.Credit, deps.Notifier))
	d.Register(billing.EventCheckoutCompleted, models.ProductTypePlaylistSubmission, NewPlaylistSubmissionHandler(r.Submission, deps.Notifier))
	d.Register(billing.EventCheckoutCompleted, models.ProductTypeMixingService, NewMixingServiceHandler(r.ServiceOrder, deps.Notifier))
	d.Register(billing.EventCheckoutCompleted, models.ProductTypeCoaching, NewCoachingHandler(r.Coaching, r.Purchase, deps.Notifier))
	d.Register(billing.EventCheckoutCompleted, models.ProductTypeTip, NewTipHandler(r.Purchase, deps.Notifier))

	// subscription checkouts
	d.Register(billing.EventCheckoutCompleted, models.ProductTypeCreatorPlan, NewCreatorPlanHandler(deps.Subscriptions, deps.Fetcher, r.Store))
	d.Register(billing.EventCheckoutCompleted, models.ProductTypeMembership, NewMembershipHandler(deps.Subscriptions, deps.Fetcher, deps.Notifier))
	d.Register(billing.EventCheckoutCompleted, models.ProductTypePPRPro, NewPPRProHandler(deps.Subscriptions, deps.Fetcher, deps.Notifier))
	d.Register(billing.EventCheckoutCompleted, models.ProductTypeContentSubscription, NewContentSubscriptionHandler(deps.Subscriptions, deps.Fetcher))

	// subscription lifecycle
	d.Register(billing.EventSubscriptionUpdated, AnyProductType, NewSubscriptionUpdatedHandler(deps.Subscriptions, r.Store))
	d.Register(billing.EventSubscriptionDeleted, AnyProductType, NewSubscriptionDeletedHandler(deps.Subscriptions, r.Store, deps.Contacts, deps.Notifier))
	d.Register(billing.EventInvoicePaymentFailed, AnyProductType, NewInvoicePaymentFailedHandler(deps.Subscriptions, deps.Contacts, deps.Notifier))

	// connect and payments
	d.Register(billing.EventAccountUpdated, AnyProductType, NewAccountUpdatedHandler(r.User))
	d.Register(billing.EventPaymentIntentFailed, AnyProductType, NewPaymentFailedHandler(deps.Notifier))

	for _, eventType := range []string{
		billing.EventInvoicePaymentSucceeded,
		billing.EventPaymentIntentSucceeded,
		billing.EventAccountApplicationAuthed,
	} {
		d.Register(eventType, AnyProductType, NewLogOnlyHandler(eventType))
	}
	return d
}
