package webhook

import (
	"context"
	"fmt"
	"strconv"

	"github.com/ManuelReschke/CreatorHub/app/models"
	"github.com/ManuelReschke/CreatorHub/app/repository"
	"github.com/ManuelReschke/CreatorHub/internal/pkg/billing"
	"github.com/ManuelReschke/CreatorHub/internal/pkg/notify"
	"github.com/gofiber/fiber/v2/log"
)

type courseMetadata struct {
	UserID        string `json:"userId" validate:"required"`
	CourseID      string `json:"courseId" validate:"required"`
	Amount        string `json:"amount" validate:"required,number"`
	Currency      string `json:"currency"`
	CourseTitle   string `json:"courseTitle"`
	CustomerEmail string `json:"customerEmail"`
	CustomerName  string `json:"customerName"`
}

// CourseHandler enrolls the buyer of a course.
type CourseHandler struct {
	checkoutRoute
	purchases repository.PurchaseRepository
	notifier  Notifier
}

func NewCourseHandler(purchases repository.PurchaseRepository, notifier Notifier) *CourseHandler {
	return &CourseHandler{
		checkoutRoute: checkoutRoute{name: "course_purchase", productType: models.ProductTypeCourse},
		purchases:     purchases,
		notifier:      notifier,
	}
}

func (h *CourseHandler) Handle(ctx context.Context, ev *billing.Event) Result {
	var md courseMetadata
	if err := decodeMetadata(ev, &md); err != nil {
		return skipped(err)
	}

	purchase := &models.Purchase{
		UserID:        md.UserID,
		ProductType:   models.ProductTypeCourse,
		ProductID:     md.CourseID,
		TransactionID: transactionID(ev),
		Amount:        parseMinor(md.Amount),
		Currency:      orDefault(md.Currency, defaultCurrency),
		PaymentMethod: models.PaymentMethodStripe,
		AccessGranted: true,
	}
	enrollment, created, err := h.purchases.CreateCourseEnrollment(ctx, purchase, md.CourseID)
	if err != nil {
		return failed(fmt.Errorf("create course enrollment: %w", err))
	}
	if !created {
		return alreadyRecorded(h.Name(), purchase.TransactionID)
	}
	log.Infof("[Webhook] Course enrollment %d created for user %s, course %s", enrollment.ID, md.UserID, md.CourseID)

	return done(notifyStep(ctx, h.notifier, notify.TemplateCourseEnrollment, notify.Payload{
		To:       contactEmail(ev, md.CustomerEmail),
		Name:     contactName(ev, md.CustomerName, "Student"),
		Title:    orDefault(md.CourseTitle, "Course"),
		Amount:   purchase.Amount,
		Currency: purchase.Currency,
	}))
}

type digitalProductMetadata struct {
	UserID        string `json:"userId" validate:"required"`
	ProductID     string `json:"productId" validate:"required"`
	Amount        string `json:"amount" validate:"required,number"`
	Currency      string `json:"currency"`
	ProductTitle  string `json:"productTitle"`
	CustomerEmail string `json:"customerEmail"`
	CustomerName  string `json:"customerName"`
}

// DigitalProductHandler records the purchase of a downloadable product.
type DigitalProductHandler struct {
	checkoutRoute
	purchases repository.PurchaseRepository
	notifier  Notifier
}

func NewDigitalProductHandler(purchases repository.PurchaseRepository, notifier Notifier) *DigitalProductHandler {
	return &DigitalProductHandler{
		checkoutRoute: checkoutRoute{name: "digital_product_purchase", productType: models.ProductTypeDigitalProduct},
		purchases:     purchases,
		notifier:      notifier,
	}
}

func (h *DigitalProductHandler) Handle(ctx context.Context, ev *billing.Event) Result {
	var md digitalProductMetadata
	if err := decodeMetadata(ev, &md); err != nil {
		return skipped(err)
	}

	purchase := &models.Purchase{
		UserID:        md.UserID,
		ProductType:   models.ProductTypeDigitalProduct,
		ProductID:     md.ProductID,
		TransactionID: transactionID(ev),
		Amount:        parseMinor(md.Amount),
		Currency:      orDefault(md.Currency, defaultCurrency),
		PaymentMethod: models.PaymentMethodStripe,
		AccessGranted: true,
	}
	created, err := h.purchases.CreatePurchase(ctx, purchase)
	if err != nil {
		return failed(fmt.Errorf("create digital product purchase: %w", err))
	}
	if !created {
		return alreadyRecorded(h.Name(), purchase.TransactionID)
	}
	log.Infof("[Webhook] Digital product purchase %d created for user %s, product %s", purchase.ID, md.UserID, md.ProductID)

	return done(notifyStep(ctx, h.notifier, notify.TemplateDigitalProduct, notify.Payload{
		To:       contactEmail(ev, md.CustomerEmail),
		Name:     contactName(ev, md.CustomerName, "Customer"),
		Title:    orDefault(md.ProductTitle, "Digital Product"),
		Amount:   purchase.Amount,
		Currency: purchase.Currency,
	}))
}

type bundleMetadata struct {
	UserID        string `json:"userId" validate:"required"`
	BundleID      string `json:"bundleId" validate:"required"`
	Amount        string `json:"amount" validate:"required,number"`
	Currency      string `json:"currency"`
	BundleTitle   string `json:"bundleTitle"`
	ItemCount     string `json:"itemCount"`
	CustomerEmail string `json:"customerEmail"`
	CustomerName  string `json:"customerName"`
}

// BundleHandler records the purchase of a product bundle.
type BundleHandler struct {
	checkoutRoute
	purchases repository.PurchaseRepository
	notifier  Notifier
}

func NewBundleHandler(purchases repository.PurchaseRepository, notifier Notifier) *BundleHandler {
	return &BundleHandler{
		checkoutRoute: checkoutRoute{name: "bundle_purchase", productType: models.ProductTypeBundle},
		purchases:     purchases,
		notifier:      notifier,
	}
}

func (h *BundleHandler) Handle(ctx context.Context, ev *billing.Event) Result {
	var md bundleMetadata
	if err := decodeMetadata(ev, &md); err != nil {
		return skipped(err)
	}

	purchase := &models.Purchase{
		UserID:        md.UserID,
		ProductType:   models.ProductTypeBundle,
		ProductID:     md.BundleID,
		TransactionID: transactionID(ev),
		Amount:        parseMinor(md.Amount),
		Currency:      orDefault(md.Currency, defaultCurrency),
		PaymentMethod: models.PaymentMethodStripe,
		AccessGranted: true,
	}
	created, err := h.purchases.CreatePurchase(ctx, purchase)
	if err != nil {
		return failed(fmt.Errorf("create bundle purchase: %w", err))
	}
	if !created {
		return alreadyRecorded(h.Name(), purchase.TransactionID)
	}
	log.Infof("[Webhook] Bundle purchase %d created for user %s, bundle %s", purchase.ID, md.UserID, md.BundleID)

	return done(notifyStep(ctx, h.notifier, notify.TemplateBundle, notify.Payload{
		To:       contactEmail(ev, md.CustomerEmail),
		Name:     contactName(ev, md.CustomerName, "Customer"),
		Title:    orDefault(md.BundleTitle, "Bundle"),
		Amount:   purchase.Amount,
		Currency: purchase.Currency,
		Details: map[string]string{
			"itemCount": strconv.Itoa(parseIntOr(md.ItemCount, 1)),
		},
	}))
}

type tipMetadata struct {
	UserID        string `json:"userId" validate:"required"`
	TipJarID      string `json:"tipJarId" validate:"required"`
	Amount        string `json:"amount" validate:"required,number"`
	Currency      string `json:"currency"`
	TipJarTitle   string `json:"tipJarTitle"`
	Message       string `json:"message"`
	CustomerEmail string `json:"customerEmail"`
	CustomerName  string `json:"customerName"`
}

// TipHandler records a tip to a creator's tip jar.
type TipHandler struct {
	checkoutRoute
	purchases repository.PurchaseRepository
	notifier  Notifier
}

func NewTipHandler(purchases repository.PurchaseRepository, notifier Notifier) *TipHandler {
	return &TipHandler{
		checkoutRoute: checkoutRoute{name: "tip", productType: models.ProductTypeTip},
		purchases:     purchases,
		notifier:      notifier,
	}
}

func (h *TipHandler) Handle(ctx context.Context, ev *billing.Event) Result {
	var md tipMetadata
	if err := decodeMetadata(ev, &md); err != nil {
		return skipped(err)
	}

	purchase := &models.Purchase{
		UserID:        md.UserID,
		ProductType:   models.ProductTypeTip,
		ProductID:     md.TipJarID,
		TransactionID: transactionID(ev),
		Amount:        parseMinor(md.Amount),
		Currency:      orDefault(md.Currency, defaultCurrency),
		PaymentMethod: models.PaymentMethodStripe,
		AccessGranted: true,
	}
	created, err := h.purchases.CreatePurchase(ctx, purchase)
	if err != nil {
		return failed(fmt.Errorf("create tip purchase: %w", err))
	}
	if !created {
		return alreadyRecorded(h.Name(), purchase.TransactionID)
	}
	log.Infof("[Webhook] Tip %d of %s recorded for tip jar %s", purchase.ID,
		notify.FormatAmount(purchase.Amount, purchase.Currency), md.TipJarID)

	return done(notifyStep(ctx, h.notifier, notify.TemplateTip, notify.Payload{
		To:       contactEmail(ev, md.CustomerEmail),
		Name:     contactName(ev, md.CustomerName, "Supporter"),
		Title:    orDefault(md.TipJarTitle, "Tip Jar"),
		Amount:   purchase.Amount,
		Currency: purchase.Currency,
		Details:  map[string]string{"message": md.Message},
	}))
}
