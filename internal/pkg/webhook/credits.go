package webhook

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/ManuelReschke/CreatorHub/app/models"
	"github.com/ManuelReschke/CreatorHub/app/repository"
	"github.com/ManuelReschke/CreatorHub/internal/pkg/billing"
	"github.com/ManuelReschke/CreatorHub/internal/pkg/notify"
	"github.com/gofiber/fiber/v2/log"
)

const defaultPackageName = "Credit Package"

type creditPackageMetadata struct {
	UserID        string `json:"userId" validate:"required"`
	PackageID     string `json:"packageId"`
	Credits       string `json:"credits" validate:"omitempty,number"`
	BonusCredits  string `json:"bonusCredits" validate:"omitempty,number"`
	PackageName   string `json:"packageName"`
	CustomerEmail string `json:"customerEmail"`
	CustomerName  string `json:"customerName"`
}

// CreditPackageHandler adds purchased and bonus credits as two independent
// ledger entries. A failed bonus entry leaves the purchased credits in place.
type CreditPackageHandler struct {
	checkoutRoute
	credits  repository.CreditRepository
	notifier Notifier
}

func NewCreditPackageHandler(credits repository.CreditRepository, notifier Notifier) *CreditPackageHandler {
	return &CreditPackageHandler{
		checkoutRoute: checkoutRoute{name: "credit_package", productType: models.ProductTypeCreditPackage},
		credits:       credits,
		notifier:      notifier,
	}
}

func (h *CreditPackageHandler) Handle(ctx context.Context, ev *billing.Event) Result {
	var md creditPackageMetadata
	if err := decodeMetadata(ev, &md); err != nil {
		return skipped(err)
	}

	base := parseMinor(md.Credits)
	bonus := parseMinor(md.BonusCredits)
	if base+bonus <= 0 {
		return skipped(fmt.Errorf("%w: credits", ErrMissingMetadata))
	}

	packageName := orDefault(md.PackageName, defaultPackageName)
	reference := transactionID(ev)

	var created bool
	if base > 0 {
		entry := &models.CreditTransaction{
			UserID:      md.UserID,
			Amount:      base,
			Type:        models.CreditTypePurchase,
			Description: "Purchased " + packageName,
			ReferenceID: reference,
			MetadataJSON: creditMetadata(map[string]interface{}{
				"dollarAmount": float64(sessionAmount(ev)) / 100,
				"packageName":  packageName,
				"packageId":    md.PackageID,
			}),
		}
		ok, err := h.credits.AddCredits(ctx, entry)
		if err != nil {
			return failed(fmt.Errorf("add purchased credits: %w", err))
		}
		created = ok
	}

	var outcomes []Outcome
	if bonus > 0 {
		entry := &models.CreditTransaction{
			UserID:       md.UserID,
			Amount:       bonus,
			Type:         models.CreditTypeBonus,
			Description:  "Bonus credits from " + packageName,
			ReferenceID:  reference + "-bonus",
			MetadataJSON: creditMetadata(map[string]interface{}{"packageName": packageName}),
		}
		step := Outcome{Step: "credits:bonus"}
		ok, err := h.credits.AddCredits(ctx, entry)
		if err != nil {
			step.Err = fmt.Errorf("add bonus credits: %w", err)
		}
		if base == 0 {
			if err != nil {
				return failed(step.Err)
			}
			created = ok
		}
		outcomes = append(outcomes, step)
	}

	if !created {
		log.Infof("[Webhook] %s: transaction %s already recorded", h.Name(), reference)
		return done(outcomes...)
	}
	log.Infof("[Webhook] Added %d credits (+%d bonus) for user %s", base, bonus, md.UserID)

	outcomes = append(outcomes, notifyStep(ctx, h.notifier, notify.TemplateCredits, notify.Payload{
		To:       contactEmail(ev, md.CustomerEmail),
		Name:     contactName(ev, md.CustomerName, "Customer"),
		Title:    packageName,
		Amount:   sessionAmount(ev),
		Currency: sessionCurrency(ev),
		Details: map[string]string{
			"credits":      strconv.FormatInt(base, 10),
			"bonusCredits": strconv.FormatInt(bonus, 10),
		},
	}))
	return done(outcomes...)
}

func creditMetadata(values map[string]interface{}) string {
	raw, err := json.Marshal(values)
	if err != nil {
		return ""
	}
	return string(raw)
}
