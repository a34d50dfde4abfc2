package webhook

import (
	"context"
	"fmt"
	"time"

	"github.com/ManuelReschke/CreatorHub/app/models"
	"github.com/ManuelReschke/CreatorHub/app/repository"
	"github.com/ManuelReschke/CreatorHub/internal/pkg/billing"
	"github.com/ManuelReschke/CreatorHub/internal/pkg/notify"
	"github.com/gofiber/fiber/v2/log"
	"github.com/stripe/stripe-go/v76"
)

// providerState is what the live provider subscription adds to a checkout.
type providerState struct {
	customerID  string
	trialing    bool
	trialEnd    *time.Time
	periodStart *time.Time
	periodEnd   *time.Time
}

// fetchProviderState reads the live subscription to learn whether it started
// with a trial. When the provider is unreachable the subscription is created
// from the checkout alone and the fetch is reported as a failed step.
func fetchProviderState(ctx context.Context, fetcher SubscriptionFetcher, ev *billing.Event) (providerState, []Outcome) {
	var state providerState
	if ev.Checkout.Customer != nil {
		state.customerID = ev.Checkout.Customer.ID
	}
	if fetcher == nil {
		return state, nil
	}

	subID := ev.Checkout.Subscription.ID
	live, err := fetcher.GetSubscription(ctx, subID)
	if err != nil {
		return state, []Outcome{{Step: "stripe:subscription", Err: fmt.Errorf("retrieve subscription %s: %w", subID, err)}}
	}

	if live.Customer != nil && live.Customer.ID != "" {
		state.customerID = live.Customer.ID
	}
	state.trialing = live.Status == stripe.SubscriptionStatusTrialing
	state.trialEnd = billing.UnixTime(live.TrialEnd)
	state.periodStart = billing.UnixTime(live.CurrentPeriodStart)
	state.periodEnd = billing.UnixTime(live.CurrentPeriodEnd)
	return state, nil
}

func (s providerState) newSubscription(ev *billing.Event, productType, userID string) billing.NewSubscription {
	return billing.NewSubscription{
		StripeSubscriptionID: ev.Checkout.Subscription.ID,
		StripeCustomerID:     s.customerID,
		UserID:               userID,
		ProductType:          productType,
		Trialing:             s.trialing,
		TrialEnd:             s.trialEnd,
		PeriodStart:          s.periodStart,
		PeriodEnd:            s.periodEnd,
	}
}

type creatorPlanMetadata struct {
	StoreID      string `json:"storeId" validate:"required"`
	Plan         string `json:"plan" validate:"required"`
	UserID       string `json:"userId"`
	BillingCycle string `json:"billingCycle"`
}

// CreatorPlanHandler starts a creator plan subscription and upgrades the store.
type CreatorPlanHandler struct {
	subscriptionCheckoutRoute
	subscriptions SubscriptionLifecycle
	fetcher       SubscriptionFetcher
	stores        repository.StoreRepository
}

func NewCreatorPlanHandler(subscriptions SubscriptionLifecycle, fetcher SubscriptionFetcher, stores repository.StoreRepository) *CreatorPlanHandler {
	return &CreatorPlanHandler{
		subscriptionCheckoutRoute: subscriptionCheckoutRoute{checkoutRoute{name: "creator_plan_checkout", productType: models.ProductTypeCreatorPlan}},
		subscriptions:             subscriptions,
		fetcher:                   fetcher,
		stores:                    stores,
	}
}

func (h *CreatorPlanHandler) Handle(ctx context.Context, ev *billing.Event) Result {
	var md creatorPlanMetadata
	if err := decodeMetadata(ev, &md); err != nil {
		return skipped(err)
	}

	plan := billing.NormalizeStorePlan(md.Plan)
	userID := md.UserID
	if userID == "" {
		store, err := h.stores.GetByID(ctx, md.StoreID)
		if err != nil {
			return failed(fmt.Errorf("load store %s: %w", md.StoreID, err))
		}
		userID = store.UserID
	}

	state, outcomes := fetchProviderState(ctx, h.fetcher, ev)
	in := state.newSubscription(ev, models.ProductTypeCreatorPlan, userID)
	in.Plan = plan
	in.StoreID = md.StoreID
	in.BillingCycle = md.BillingCycle

	sub, _, err := h.subscriptions.Create(ctx, in)
	if err != nil {
		return failed(err)
	}

	if err := h.stores.UpgradePlan(ctx, md.StoreID, repository.StorePlanUpdate{
		Plan:                 plan,
		StripeCustomerID:     sub.StripeCustomerID,
		StripeSubscriptionID: sub.StripeSubscriptionID,
		SubscriptionStatus:   sub.Status,
		TrialEndsAt:          sub.TrialEndsAt,
	}); err != nil {
		return failed(fmt.Errorf("upgrade store %s to %s: %w", md.StoreID, plan, err))
	}
	log.Infof("[Webhook] Store %s upgraded to %s (%s)", md.StoreID, plan, sub.Status)
	return done(outcomes...)
}

type membershipMetadata struct {
	UserID         string `json:"userId" validate:"required"`
	TierID         string `json:"tierId" validate:"required"`
	CreatorID      string `json:"creatorId"`
	TierName       string `json:"tierName"`
	MembershipName string `json:"membershipName"`
	BillingCycle   string `json:"billingCycle"`
	CustomerEmail  string `json:"customerEmail"`
	CustomerName   string `json:"customerName"`
}

// MembershipHandler starts a recurring creator membership.
type MembershipHandler struct {
	subscriptionCheckoutRoute
	subscriptions SubscriptionLifecycle
	fetcher       SubscriptionFetcher
	notifier      Notifier
}

func NewMembershipHandler(subscriptions SubscriptionLifecycle, fetcher SubscriptionFetcher, notifier Notifier) *MembershipHandler {
	return &MembershipHandler{
		subscriptionCheckoutRoute: subscriptionCheckoutRoute{checkoutRoute{name: "membership_checkout", productType: models.ProductTypeMembership}},
		subscriptions:             subscriptions,
		fetcher:                   fetcher,
		notifier:                  notifier,
	}
}

func (h *MembershipHandler) Handle(ctx context.Context, ev *billing.Event) Result {
	var md membershipMetadata
	if err := decodeMetadata(ev, &md); err != nil {
		return skipped(err)
	}

	state, outcomes := fetchProviderState(ctx, h.fetcher, ev)
	in := state.newSubscription(ev, models.ProductTypeMembership, md.UserID)
	in.PlanID = md.TierID
	in.Plan = md.TierName
	in.StoreID = md.CreatorID
	in.BillingCycle = md.BillingCycle

	sub, created, err := h.subscriptions.Create(ctx, in)
	if err != nil {
		return failed(err)
	}
	if !created {
		return alreadyRecorded(h.Name(), sub.StripeSubscriptionID)
	}

	outcomes = append(outcomes, notifyStep(ctx, h.notifier, notify.TemplateMembership, notify.Payload{
		To:       contactEmail(ev, md.CustomerEmail),
		Name:     contactName(ev, md.CustomerName, "Member"),
		Title:    orDefault(md.MembershipName, "Membership"),
		Amount:   sessionAmount(ev),
		Currency: sessionCurrency(ev),
		Details: map[string]string{
			"tierName":     orDefault(md.TierName, "Standard"),
			"billingCycle": sub.BillingCycle,
		},
	}))
	return done(outcomes...)
}

type pprProMetadata struct {
	UserID        string `json:"userId" validate:"required"`
	Plan          string `json:"plan"`
	BillingCycle  string `json:"billingCycle"`
	CustomerEmail string `json:"customerEmail"`
	CustomerName  string `json:"customerName"`
}

// PPRProHandler starts a platform subscription.
type PPRProHandler struct {
	subscriptionCheckoutRoute
	subscriptions SubscriptionLifecycle
	fetcher       SubscriptionFetcher
	notifier      Notifier
}

func NewPPRProHandler(subscriptions SubscriptionLifecycle, fetcher SubscriptionFetcher, notifier Notifier) *PPRProHandler {
	return &PPRProHandler{
		subscriptionCheckoutRoute: subscriptionCheckoutRoute{checkoutRoute{name: "ppr_pro_checkout", productType: models.ProductTypePPRPro}},
		subscriptions:             subscriptions,
		fetcher:                   fetcher,
		notifier:                  notifier,
	}
}

func (h *PPRProHandler) Handle(ctx context.Context, ev *billing.Event) Result {
	var md pprProMetadata
	if err := decodeMetadata(ev, &md); err != nil {
		return skipped(err)
	}

	state, outcomes := fetchProviderState(ctx, h.fetcher, ev)
	in := state.newSubscription(ev, models.ProductTypePPRPro, md.UserID)
	in.BillingCycle = orDefault(md.BillingCycle, md.Plan)
	in.Plan = billing.NormalizeBillingCycle(in.BillingCycle)

	sub, created, err := h.subscriptions.Create(ctx, in)
	if err != nil {
		return failed(err)
	}
	if !created {
		return alreadyRecorded(h.Name(), sub.StripeSubscriptionID)
	}

	details := map[string]string{"plan": sub.Plan}
	if sub.TrialEndsAt != nil {
		details["trialEndsAt"] = sub.TrialEndsAt.Format("January 2, 2006")
	}
	outcomes = append(outcomes, notifyStep(ctx, h.notifier, notify.TemplatePPRProWelcome, notify.Payload{
		To:       contactEmail(ev, md.CustomerEmail),
		Name:     contactName(ev, md.CustomerName, "Producer"),
		Title:    "PPR Pro",
		Amount:   sessionAmount(ev),
		Currency: sessionCurrency(ev),
		Details:  details,
	}))
	return done(outcomes...)
}

type contentSubscriptionMetadata struct {
	PlanID       string `json:"planId" validate:"required"`
	UserID       string `json:"userId" validate:"required"`
	BillingCycle string `json:"billingCycle"`
}

// ContentSubscriptionHandler starts a subscription to a creator's content plan.
type ContentSubscriptionHandler struct {
	subscriptionCheckoutRoute
	subscriptions SubscriptionLifecycle
	fetcher       SubscriptionFetcher
}

func NewContentSubscriptionHandler(subscriptions SubscriptionLifecycle, fetcher SubscriptionFetcher) *ContentSubscriptionHandler {
	return &ContentSubscriptionHandler{
		subscriptionCheckoutRoute: subscriptionCheckoutRoute{checkoutRoute{name: "content_subscription_checkout", productType: models.ProductTypeContentSubscription}},
		subscriptions:             subscriptions,
		fetcher:                   fetcher,
	}
}

func (h *ContentSubscriptionHandler) Handle(ctx context.Context, ev *billing.Event) Result {
	var md contentSubscriptionMetadata
	if err := decodeMetadata(ev, &md); err != nil {
		return skipped(err)
	}

	state, outcomes := fetchProviderState(ctx, h.fetcher, ev)
	in := state.newSubscription(ev, models.ProductTypeContentSubscription, md.UserID)
	in.PlanID = md.PlanID
	in.BillingCycle = md.BillingCycle

	if _, _, err := h.subscriptions.Create(ctx, in); err != nil {
		return failed(err)
	}
	return done(outcomes...)
}
