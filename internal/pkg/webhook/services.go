package webhook

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/ManuelReschke/CreatorHub/app/models"
	"github.com/ManuelReschke/CreatorHub/app/repository"
	"github.com/ManuelReschke/CreatorHub/internal/pkg/billing"
	"github.com/ManuelReschke/CreatorHub/internal/pkg/notify"
	"github.com/gofiber/fiber/v2/log"
)

type playlistSubmissionMetadata struct {
	SubmitterID   string `json:"submitterId" validate:"required"`
	CreatorID     string `json:"creatorId" validate:"required"`
	TrackID       string `json:"trackId" validate:"required"`
	PlaylistID    string `json:"playlistId" validate:"required"`
	Message       string `json:"message"`
	Amount        string `json:"amount" validate:"omitempty,number"`
	TrackName     string `json:"trackName"`
	PlaylistName  string `json:"playlistName"`
	CustomerEmail string `json:"customerEmail"`
	CustomerName  string `json:"customerName"`
}

// PlaylistSubmissionHandler files a paid track submission in the curator's inbox.
type PlaylistSubmissionHandler struct {
	checkoutRoute
	submissions repository.SubmissionRepository
	notifier    Notifier
}

func NewPlaylistSubmissionHandler(submissions repository.SubmissionRepository, notifier Notifier) *PlaylistSubmissionHandler {
	return &PlaylistSubmissionHandler{
		checkoutRoute: checkoutRoute{name: "playlist_submission", productType: models.ProductTypePlaylistSubmission},
		submissions:   submissions,
		notifier:      notifier,
	}
}

func (h *PlaylistSubmissionHandler) Handle(ctx context.Context, ev *billing.Event) Result {
	var md playlistSubmissionMetadata
	if err := decodeMetadata(ev, &md); err != nil {
		return skipped(err)
	}

	paymentID := transactionID(ev)
	submission := &models.TrackSubmission{
		SubmitterID:   md.SubmitterID,
		CreatorID:     md.CreatorID,
		TrackID:       md.TrackID,
		PlaylistID:    md.PlaylistID,
		Message:       md.Message,
		SubmissionFee: parseMinor(md.Amount),
		PaymentID:     paymentID,
		PaymentStatus: models.SubmissionPaymentPending,
	}
	created, err := h.submissions.Create(ctx, submission)
	if err != nil {
		return failed(fmt.Errorf("create track submission: %w", err))
	}
	if err := h.submissions.UpdatePaymentStatus(ctx, paymentID, models.SubmissionPaymentPaid); err != nil {
		return failed(fmt.Errorf("mark submission %s paid: %w", paymentID, err))
	}
	if !created {
		return alreadyRecorded(h.Name(), paymentID)
	}
	log.Infof("[Webhook] Playlist submission %d created by %s for playlist %s", submission.ID, md.SubmitterID, md.PlaylistID)

	return done(notifyStep(ctx, h.notifier, notify.TemplatePlaylistSubmission, notify.Payload{
		To:       contactEmail(ev, md.CustomerEmail),
		Name:     contactName(ev, md.CustomerName, "Artist"),
		Title:    orDefault(md.PlaylistName, "Playlist"),
		Amount:   submission.SubmissionFee,
		Currency: sessionCurrency(ev),
		Details: map[string]string{
			"trackName": orDefault(md.TrackName, "Your Track"),
			"message":   md.Message,
		},
	}))
}

type mixingServiceMetadata struct {
	UserID        string `json:"userId" validate:"required"`
	CreatorID     string `json:"creatorId" validate:"required"`
	ProductID     string `json:"productId" validate:"required"`
	SelectedTier  string `json:"selectedTier" validate:"required"`
	StoreID       string `json:"storeId"`
	ServiceType   string `json:"serviceType"`
	IsRush        string `json:"isRush"`
	RushFee       string `json:"rushFee"`
	BasePrice     string `json:"basePrice"`
	TotalPrice    string `json:"totalPrice"`
	CustomerNotes string `json:"customerNotes"`
	CustomerEmail string `json:"customerEmail"`
	CustomerName  string `json:"customerName"`
	ServiceTitle  string `json:"serviceTitle"`
}

// serviceTier is the tier chosen at checkout, sent as a JSON string.
type serviceTier struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	StemCount      string  `json:"stemCount"`
	Price          float64 `json:"price"`
	TurnaroundDays float64 `json:"turnaroundDays"`
	Revisions      float64 `json:"revisions"`
}

var serviceTypeLabels = map[string]string{
	models.ServiceTypeMixing:       "Mixing",
	models.ServiceTypeMastering:    "Mastering",
	models.ServiceTypeMixAndMaster: "Mix & Master",
	models.ServiceTypeStemMixing:   "Stem Mixing",
}

// MixingServiceHandler opens a service order for a mixing or mastering job.
type MixingServiceHandler struct {
	checkoutRoute
	orders   repository.ServiceOrderRepository
	notifier Notifier
}

func NewMixingServiceHandler(orders repository.ServiceOrderRepository, notifier Notifier) *MixingServiceHandler {
	return &MixingServiceHandler{
		checkoutRoute: checkoutRoute{name: "mixing_service", productType: models.ProductTypeMixingService},
		orders:        orders,
		notifier:      notifier,
	}
}

func (h *MixingServiceHandler) Handle(ctx context.Context, ev *billing.Event) Result {
	var md mixingServiceMetadata
	if err := decodeMetadata(ev, &md); err != nil {
		return skipped(err)
	}

	var tier serviceTier
	if err := json.Unmarshal([]byte(md.SelectedTier), &tier); err != nil {
		return skipped(fmt.Errorf("%w: selectedTier: %v", ErrMissingMetadata, err))
	}

	serviceType := md.ServiceType
	if _, ok := serviceTypeLabels[serviceType]; !ok {
		serviceType = models.ServiceTypeMixing
	}
	isRush := md.IsRush == "true"
	basePrice := parseMinor(md.BasePrice)

	order := &models.ServiceOrder{
		CustomerID:     md.UserID,
		CreatorID:      md.CreatorID,
		ProductID:      md.ProductID,
		StoreID:        md.StoreID,
		ServiceType:    serviceType,
		TierID:         orDefault(tier.ID, "basic"),
		TierName:       orDefault(tier.Name, "Basic Mix"),
		StemCount:      orDefault(tier.StemCount, "Up to 30 stems"),
		TierPrice:      int64(tier.Price),
		TurnaroundDays: int(tier.TurnaroundDays),
		Revisions:      int(tier.Revisions),
		BasePrice:      basePrice,
		TotalPrice:     parseMinor(md.TotalPrice),
		IsRush:         isRush,
		CustomerNotes:  md.CustomerNotes,
		TransactionID:  transactionID(ev),
	}
	if order.TierPrice == 0 {
		order.TierPrice = basePrice
	}
	if order.TurnaroundDays == 0 {
		order.TurnaroundDays = 7
	}
	if order.Revisions == 0 {
		order.Revisions = 2
	}
	if isRush {
		order.RushFee = parseMinor(md.RushFee)
	}

	created, err := h.orders.Create(ctx, order)
	if err != nil {
		return failed(fmt.Errorf("create service order: %w", err))
	}
	if !created {
		return alreadyRecorded(h.Name(), order.TransactionID)
	}
	log.Infof("[Webhook] Service order %d (%s) created for user %s, creator %s", order.ID, serviceType, md.UserID, md.CreatorID)

	return done(notifyStep(ctx, h.notifier, notify.TemplateMixingService, notify.Payload{
		To:       contactEmail(ev, md.CustomerEmail),
		Name:     contactName(ev, md.CustomerName, "Customer"),
		Title:    orDefault(md.ServiceTitle, "Mixing Service"),
		Amount:   order.TotalPrice,
		Currency: sessionCurrency(ev),
		Details: map[string]string{
			"serviceType":    serviceTypeLabels[serviceType],
			"tierName":       order.TierName,
			"turnaroundDays": strconv.Itoa(order.TurnaroundDays),
			"revisions":      strconv.Itoa(order.Revisions),
			"isRush":         strconv.FormatBool(isRush),
		},
	}))
}

type coachingMetadata struct {
	UserID        string `json:"userId" validate:"required"`
	ProductID     string `json:"productId" validate:"required"`
	ScheduledDate string `json:"scheduledDate" validate:"required,number"`
	StartTime     string `json:"startTime" validate:"required"`
	Notes         string `json:"notes"`
	Amount        string `json:"amount" validate:"omitempty,number"`
	Currency      string `json:"currency"`
	SessionTitle  string `json:"sessionTitle"`
	Duration      string `json:"duration"`
	CustomerEmail string `json:"customerEmail"`
	CustomerName  string `json:"customerName"`
}

// CoachingHandler books the purchased coaching slot and records the purchase.
// A slot already held by another buyer fails the event for operator review.
type CoachingHandler struct {
	checkoutRoute
	coaching  repository.CoachingRepository
	purchases repository.PurchaseRepository
	notifier  Notifier
}

func NewCoachingHandler(coaching repository.CoachingRepository, purchases repository.PurchaseRepository, notifier Notifier) *CoachingHandler {
	return &CoachingHandler{
		checkoutRoute: checkoutRoute{name: "coaching", productType: models.ProductTypeCoaching},
		coaching:      coaching,
		purchases:     purchases,
		notifier:      notifier,
	}
}

func (h *CoachingHandler) Handle(ctx context.Context, ev *billing.Event) Result {
	var md coachingMetadata
	if err := decodeMetadata(ev, &md); err != nil {
		return skipped(err)
	}

	scheduled := time.UnixMilli(parseMinor(md.ScheduledDate)).UTC()
	txID := transactionID(ev)

	session := &models.CoachingSession{
		ProductID:     md.ProductID,
		StudentID:     md.UserID,
		ScheduledDate: scheduled,
		StartTime:     md.StartTime,
		Notes:         md.Notes,
		Status:        models.CoachingSessionScheduled,
		TransactionID: txID,
	}
	if _, err := h.coaching.BookSession(ctx, session); err != nil {
		return failed(fmt.Errorf("book coaching session: %w", err))
	}

	sessionID := session.ID
	purchase := &models.Purchase{
		UserID:            md.UserID,
		ProductType:       models.ProductTypeCoaching,
		ProductID:         md.ProductID,
		TransactionID:     txID,
		Amount:            parseMinor(md.Amount),
		Currency:          orDefault(md.Currency, defaultCurrency),
		PaymentMethod:     models.PaymentMethodStripe,
		AccessGranted:     true,
		CoachingSessionID: &sessionID,
	}
	created, err := h.purchases.CreatePurchase(ctx, purchase)
	if err != nil {
		return failed(fmt.Errorf("create coaching purchase: %w", err))
	}
	if !created {
		return alreadyRecorded(h.Name(), txID)
	}
	log.Infof("[Webhook] Coaching session %d booked for %s at %s %s", sessionID, md.UserID,
		scheduled.Format("2006-01-02"), md.StartTime)

	return done(notifyStep(ctx, h.notifier, notify.TemplateCoaching, notify.Payload{
		To:       contactEmail(ev, md.CustomerEmail),
		Name:     contactName(ev, md.CustomerName, "Student"),
		Title:    orDefault(md.SessionTitle, "Coaching Session"),
		Amount:   purchase.Amount,
		Currency: purchase.Currency,
		Details: map[string]string{
			"scheduledDate": scheduled.Format("Monday, January 2, 2006"),
			"scheduledTime": md.StartTime,
			"duration":      orDefault(md.Duration, "60 minutes"),
		},
	}))
}
