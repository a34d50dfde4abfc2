package webhook

import (
	"context"
	"errors"
	"fmt"

	"github.com/ManuelReschke/CreatorHub/app/models"
	"github.com/ManuelReschke/CreatorHub/app/repository"
	"github.com/ManuelReschke/CreatorHub/internal/pkg/billing"
	"github.com/ManuelReschke/CreatorHub/internal/pkg/notify"
	"github.com/gofiber/fiber/v2/log"
)

type beatLeaseMetadata struct {
	UserID        string `json:"userId" validate:"required"`
	BeatID        string `json:"beatId" validate:"required"`
	TierType      string `json:"tierType" validate:"required,oneof=basic premium exclusive unlimited"`
	TierName      string `json:"tierName"`
	StoreID       string `json:"storeId" validate:"required"`
	Amount        string `json:"amount" validate:"required,number"`
	Currency      string `json:"currency"`
	CustomerEmail string `json:"customerEmail"`
	CustomerName  string `json:"customerName"`
}

// BeatLeaseHandler licenses a beat to the buyer. An exclusive license also
// takes the beat off the marketplace as a separate step.
type BeatLeaseHandler struct {
	checkoutRoute
	purchases repository.PurchaseRepository
	beats     repository.BeatRepository
	notifier  Notifier
}

func NewBeatLeaseHandler(purchases repository.PurchaseRepository, beats repository.BeatRepository, notifier Notifier) *BeatLeaseHandler {
	return &BeatLeaseHandler{
		checkoutRoute: checkoutRoute{name: "beat_lease", productType: models.ProductTypeBeatLease},
		purchases:     purchases,
		beats:         beats,
		notifier:      notifier,
	}
}

func (h *BeatLeaseHandler) Handle(ctx context.Context, ev *billing.Event) Result {
	var md beatLeaseMetadata
	if err := decodeMetadata(ev, &md); err != nil {
		return skipped(err)
	}

	var outcomes []Outcome
	beatTitle := "Beat"
	if beat, err := h.beats.GetByID(ctx, md.BeatID); err == nil {
		beatTitle = orDefault(beat.Title, beatTitle)
	} else if !errors.Is(err, repository.ErrNotFound) {
		outcomes = append(outcomes, Outcome{Step: "beat:lookup", Err: err})
	}

	tierName := orDefault(md.TierName, md.TierType)
	purchase := &models.Purchase{
		UserID:        md.UserID,
		ProductType:   models.ProductTypeBeatLease,
		ProductID:     md.BeatID,
		TransactionID: transactionID(ev),
		Amount:        parseMinor(md.Amount),
		Currency:      orDefault(md.Currency, defaultCurrency),
		PaymentMethod: models.PaymentMethodStripe,
		AccessGranted: true,
	}
	license := &models.BeatLicense{
		BeatID:     md.BeatID,
		UserID:     md.UserID,
		StoreID:    md.StoreID,
		TierType:   md.TierType,
		TierName:   tierName,
		BuyerEmail: buyerEmail(ev, md.CustomerEmail),
		BuyerName:  buyerName(ev, md.CustomerName),
	}

	created, err := h.purchases.CreateBeatLicense(ctx, purchase, license)
	if err != nil {
		return failed(fmt.Errorf("create beat license: %w", err))
	}
	if created {
		log.Infof("[Webhook] Beat license %d (%s) created for user %s, beat %s", license.ID, md.TierType, md.UserID, md.BeatID)
		outcomes = append(outcomes, notifyStep(ctx, h.notifier, notify.TemplateBeatPurchase, notify.Payload{
			To:       contactEmail(ev, md.CustomerEmail),
			Name:     contactName(ev, md.CustomerName, "Customer"),
			Title:    beatTitle,
			Amount:   purchase.Amount,
			Currency: purchase.Currency,
			Details: map[string]string{
				"tierName": tierName,
				"tierType": md.TierType,
			},
		}))
	} else {
		log.Infof("[Webhook] %s: transaction %s already recorded", h.Name(), purchase.TransactionID)
	}

	// Runs on every attempt so a sale recorded earlier still hides the beat.
	if md.TierType == models.BeatTierExclusive {
		step := Outcome{Step: "beat:mark_exclusive"}
		if err := h.beats.MarkExclusivelySold(ctx, md.BeatID, md.UserID, purchase.ID); err != nil {
			step.Err = fmt.Errorf("mark beat %s exclusively sold: %w", md.BeatID, err)
		} else {
			log.Infof("[Webhook] Beat %s marked as exclusively sold", md.BeatID)
		}
		outcomes = append(outcomes, step)
	}

	return done(outcomes...)
}

// buyerEmail prefers the address the customer entered at checkout, which is
// what the license is issued to.
func buyerEmail(ev *billing.Event, fromMetadata string) string {
	if ev.Checkout != nil && ev.Checkout.CustomerDetails != nil && ev.Checkout.CustomerDetails.Email != "" {
		return ev.Checkout.CustomerDetails.Email
	}
	return fromMetadata
}

func buyerName(ev *billing.Event, fromMetadata string) string {
	if ev.Checkout != nil && ev.Checkout.CustomerDetails != nil && ev.Checkout.CustomerDetails.Name != "" {
		return ev.Checkout.CustomerDetails.Name
	}
	return fromMetadata
}
