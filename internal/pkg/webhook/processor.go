package webhook

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ManuelReschke/CreatorHub/app/models"
	"github.com/ManuelReschke/CreatorHub/internal/pkg/billing"
	"github.com/ManuelReschke/CreatorHub/internal/pkg/errreport"
	"github.com/ManuelReschke/CreatorHub/internal/pkg/metrics"
	"github.com/gofiber/fiber/v2/log"
)

var (
	ErrEventNotFound    = errors.New("event not found in ledger")
	ErrAlreadyProcessed = errors.New("event already processed")
	ErrNoPayload        = errors.New("event has no stored payload")
	ErrReplayFailed     = errors.New("replay failed")
)

// EventVerifier authenticates a raw payload and decodes the event.
type EventVerifier interface {
	Verify(payload []byte, signatureHeader string) (*billing.Event, error)
}

// EventLedger is the idempotency ledger as seen by the pipeline.
type EventLedger interface {
	Lookup(ctx context.Context, eventID string) (*models.WebhookEvent, error)
	RecordOutcome(ctx context.Context, entry billing.LedgerEntry) (*models.WebhookEvent, error)
}

// Archiver stores authenticated payloads outside the database.
type Archiver interface {
	Archive(ctx context.Context, eventID string, at time.Time, payload []byte) error
}

// Processor runs the event pipeline: verify, ledger lookup, dispatch,
// ledger write, acknowledgment.
type Processor struct {
	verifier   EventVerifier
	ledger     EventLedger
	dispatcher *Dispatcher
	reporter   errreport.Reporter
	archiver   Archiver
}

// NewProcessor wires the pipeline from its collaborators.
func NewProcessor(verifier EventVerifier, ledger EventLedger, dispatcher *Dispatcher, reporter errreport.Reporter) *Processor {
	if reporter == nil {
		reporter = errreport.NewNopReporter()
	}
	return &Processor{
		verifier:   verifier,
		ledger:     ledger,
		dispatcher: dispatcher,
		reporter:   reporter,
	}
}

// WithArchiver enables best-effort archiving of first-seen payloads.
func (p *Processor) WithArchiver(a Archiver) *Processor {
	p.archiver = a
	return p
}

// Process handles one inbound delivery. Only an authentication failure
// yields a non-200 status.
func (p *Processor) Process(ctx context.Context, payload []byte, signatureHeader string) (Response, int) {
	ev, err := p.verifier.Verify(payload, signatureHeader)
	if ev == nil || errors.Is(err, billing.ErrInvalidSignature) {
		log.Warnf("[Webhook] Signature verification failed: %v", err)
		metrics.WebhookEventsTotal.WithLabelValues("unknown", metrics.OutcomeInvalidSignature).Inc()
		return rejected()
	}

	start := time.Now()
	defer func() {
		metrics.WebhookProcessingDuration.Observe(time.Since(start).Seconds())
	}()

	log.Infof("[Webhook] Received %s (%s)", ev.ID, ev.Type)

	if err != nil {
		log.Errorf("[Webhook] Could not decode %s: %v", ev.ID, err)
		p.reporter.Report(ctx, err, map[string]string{"component": "webhook", "event_id": ev.ID, "event_type": ev.Type})
		p.record(ctx, ev, ev.ProductType, err)
		metrics.WebhookEventsTotal.WithLabelValues(ev.Type, metrics.OutcomeFailed).Inc()
		return acknowledgedWithError(err)
	}

	existing, err := p.ledger.Lookup(ctx, ev.ID)
	if err != nil {
		// Processing continues: a duplicate side effect is preferred over a
		// dropped event, and mutations dedup on their transaction id.
		log.Errorf("[Webhook] Ledger lookup failed for %s, processing anyway: %v", ev.ID, err)
		p.reporter.Report(ctx, err, map[string]string{"component": "ledger", "event_id": ev.ID})
		existing = nil
	}
	if existing.IsProcessed() {
		log.Infof("[Webhook] %s already processed, skipping", ev.ID)
		metrics.WebhookEventsTotal.WithLabelValues(ev.Type, metrics.OutcomeDuplicate).Inc()
		return duplicate()
	}
	if existing != nil {
		log.Infof("[Webhook] %s previously failed (%s), reprocessing", ev.ID, existing.Error)
	} else {
		p.archive(ctx, ev)
	}

	return p.run(ctx, ev)
}

// Reprocess runs a failed ledger event again from its stored payload. The
// payload was authenticated when it was first recorded.
func (p *Processor) Reprocess(ctx context.Context, eventID string) (Response, error) {
	existing, err := p.ledger.Lookup(ctx, eventID)
	if err != nil {
		return Response{}, err
	}
	if existing == nil {
		return Response{}, ErrEventNotFound
	}
	if existing.IsProcessed() {
		return Response{Received: true, Duplicate: true}, ErrAlreadyProcessed
	}
	if existing.PayloadJSON == "" {
		return Response{}, ErrNoPayload
	}

	ev, err := billing.DecodeStored([]byte(existing.PayloadJSON))
	if ev == nil {
		return Response{}, fmt.Errorf("%w: %v", ErrReplayFailed, err)
	}
	if err != nil {
		p.record(ctx, ev, existing.ProductType, err)
		return Response{Received: true, Error: err.Error()}, fmt.Errorf("%w: %v", ErrReplayFailed, err)
	}

	log.Infof("[Webhook] Replaying %s (%s), attempt %d", ev.ID, ev.Type, existing.Attempts+1)
	resp, _ := p.run(ctx, ev)
	if resp.Error != "" {
		return resp, fmt.Errorf("%w: %s", ErrReplayFailed, resp.Error)
	}
	return resp, nil
}

func (p *Processor) run(ctx context.Context, ev *billing.Event) (Response, int) {
	report := p.dispatcher.Dispatch(ctx, ev)

	if report.Failed() {
		procErr := report.Err()
		p.record(ctx, ev, report.ProductType, procErr)
		metrics.WebhookEventsTotal.WithLabelValues(ev.Type, metrics.OutcomeFailed).Inc()
		return acknowledgedWithError(procErr)
	}

	p.record(ctx, ev, report.ProductType, nil)
	metrics.WebhookEventsTotal.WithLabelValues(ev.Type, metrics.OutcomeProcessed).Inc()
	log.Infof("[Webhook] %s processed (handlers: %d, skipped: %d)", ev.ID, len(report.Handled), len(report.Skipped))
	return acknowledged()
}

// record writes the outcome to the ledger. A ledger write failure is logged
// and reported; the delivery is still acknowledged.
func (p *Processor) record(ctx context.Context, ev *billing.Event, productType string, procErr error) {
	entry := billing.LedgerEntry{
		EventID:     ev.ID,
		EventType:   ev.Type,
		ProductType: productType,
		Status:      models.WebhookStatusProcessed,
		Payload:     ev.Raw,
	}
	if procErr != nil {
		entry.Status = models.WebhookStatusFailed
		entry.Error = procErr.Error()
	}

	if _, err := p.ledger.RecordOutcome(ctx, entry); err != nil {
		log.Errorf("[Webhook] Could not record outcome of %s: %v", ev.ID, err)
		p.reporter.Report(ctx, err, map[string]string{"component": "ledger", "event_id": ev.ID})
	}
}

func (p *Processor) archive(ctx context.Context, ev *billing.Event) {
	if p.archiver == nil || len(ev.Raw) == 0 {
		return
	}
	at := ev.Created
	if at.IsZero() {
		at = time.Now().UTC()
	}
	if err := p.archiver.Archive(ctx, ev.ID, at, ev.Raw); err != nil {
		log.Warnf("[Webhook] Archiving %s failed: %v", ev.ID, err)
		p.reporter.Report(ctx, err, map[string]string{"component": "archive", "event_id": ev.ID})
	}
}
