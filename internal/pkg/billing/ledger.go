package billing

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ManuelReschke/CreatorHub/app/models"
	"github.com/gofiber/fiber/v2/log"
)

// LedgerEntry is the outcome of one processing attempt of an event.
type LedgerEntry struct {
	EventID     string
	EventType   string
	ProductType string
	Status      string
	Error       string
	Payload     []byte
}

// Ledger is the durable record of provider event IDs and their processing outcome.
type Ledger struct {
	repo Repository
}

// NewLedger creates a ledger on top of the billing repository.
func NewLedger(repo Repository) *Ledger {
	return &Ledger{repo: repo}
}

// Lookup returns the ledger row for eventID, or nil when the event is new.
func (l *Ledger) Lookup(ctx context.Context, eventID string) (*models.WebhookEvent, error) {
	eventID = strings.TrimSpace(eventID)
	if eventID == "" {
		return nil, errors.New("event id is required")
	}
	event, err := l.repo.GetWebhookEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("ledger lookup %s: %w", eventID, err)
	}
	return event, nil
}

// RecordOutcome creates or updates the ledger row of an event.
func (l *Ledger) RecordOutcome(ctx context.Context, entry LedgerEntry) (*models.WebhookEvent, error) {
	eventID := strings.TrimSpace(entry.EventID)
	if eventID == "" {
		return nil, errors.New("event id is required")
	}

	status := entry.Status
	switch status {
	case models.WebhookStatusProcessed:
		entry.Error = ""
	case models.WebhookStatusFailed:
		if entry.Error == "" {
			entry.Error = "unknown error"
		}
	default:
		return nil, fmt.Errorf("invalid ledger status %q", status)
	}

	event := &models.WebhookEvent{
		EventID:     eventID,
		EventType:   entry.EventType,
		ProductType: entry.ProductType,
		Status:      status,
		Error:       entry.Error,
		PayloadJSON: string(entry.Payload),
	}
	if status == models.WebhookStatusProcessed {
		now := time.Now()
		event.ProcessedAt = &now
	}

	if err := l.repo.UpsertWebhookEvent(ctx, event); err != nil {
		return nil, fmt.Errorf("ledger record %s: %w", eventID, err)
	}
	log.Debugf("[Ledger] %s recorded as %s (attempt %d)", eventID, status, event.Attempts)
	return event, nil
}

// List returns ledger rows, optionally filtered by status.
func (l *Ledger) List(ctx context.Context, status string, limit int) ([]models.WebhookEvent, error) {
	return l.repo.ListWebhookEvents(ctx, strings.TrimSpace(status), limit)
}

// ListFailed returns failed events with a stored payload that have been
// attempted fewer than maxAttempts times.
func (l *Ledger) ListFailed(ctx context.Context, limit, maxAttempts int) ([]models.WebhookEvent, error) {
	return l.repo.ListReplayableEvents(ctx, maxAttempts, limit)
}
