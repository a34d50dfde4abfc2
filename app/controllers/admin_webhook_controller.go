package controllers

import (
	"context"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/ManuelReschke/CreatorHub/app/models"
	"github.com/ManuelReschke/CreatorHub/internal/pkg/errreport"
	"github.com/ManuelReschke/CreatorHub/internal/pkg/jobqueue"
)

const (
	defaultEventListLimit = 50
	maxEventListLimit     = 500
	defaultErrorLimit     = 50
)

// EventStore is the read side of the event ledger.
type EventStore interface {
	Lookup(ctx context.Context, eventID string) (*models.WebhookEvent, error)
	List(ctx context.Context, status string, limit int) ([]models.WebhookEvent, error)
}

// ReplayQueue queues event replays and reports queue state.
type ReplayQueue interface {
	EnqueueReplay(ctx context.Context, eventID, source string) (*jobqueue.Job, error)
	GetJobStats(ctx context.Context) (map[jobqueue.JobStatus]int64, error)
	GetQueueSize(ctx context.Context) (int64, error)
	GetProcessingSize(ctx context.Context) (int64, error)
}

// ErrorFeed returns the most recent error reports.
type ErrorFeed interface {
	Recent(ctx context.Context, limit int) ([]errreport.Report, error)
}

// AdminWebhookController gives operators visibility into the event ledger
type AdminWebhookController struct {
	events  EventStore
	queue   ReplayQueue
	reports ErrorFeed
}

// NewAdminWebhookController creates the operator API controller
func NewAdminWebhookController(events EventStore, queue ReplayQueue, feed ErrorFeed) *AdminWebhookController {
	return &AdminWebhookController{events: events, queue: queue, reports: feed}
}

// HandleListEvents lists ledger rows, newest first, optionally filtered by ?status=
func (ac *AdminWebhookController) HandleListEvents(c *fiber.Ctx) error {
	status := strings.TrimSpace(c.Query("status"))
	if status != "" && status != models.WebhookStatusProcessed && status != models.WebhookStatusFailed {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_status"})
	}

	limit := c.QueryInt("limit", defaultEventListLimit)
	if limit <= 0 || limit > maxEventListLimit {
		limit = defaultEventListLimit
	}

	events, err := ac.events.List(c.UserContext(), status, limit)
	if err != nil {
		log.Errorf("[Admin] Could not list events: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "ledger_unavailable"})
	}
	return c.JSON(fiber.Map{"events": events, "count": len(events)})
}

// HandleGetEvent returns one ledger row
func (ac *AdminWebhookController) HandleGetEvent(c *fiber.Ctx) error {
	event, err := ac.events.Lookup(c.UserContext(), c.Params("eventId"))
	if err != nil {
		log.Errorf("[Admin] Could not load event %s: %v", c.Params("eventId"), err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "ledger_unavailable"})
	}
	if event == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found"})
	}
	return c.JSON(event)
}

// HandleReplayEvent queues a replay of a failed event
func (ac *AdminWebhookController) HandleReplayEvent(c *fiber.Ctx) error {
	eventID := c.Params("eventId")
	event, err := ac.events.Lookup(c.UserContext(), eventID)
	if err != nil {
		log.Errorf("[Admin] Could not load event %s: %v", eventID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "ledger_unavailable"})
	}
	switch {
	case event == nil:
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found"})
	case event.IsProcessed():
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "already_processed"})
	case event.PayloadJSON == "":
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": "no_stored_payload"})
	}

	job, err := ac.queue.EnqueueReplay(c.UserContext(), eventID, jobqueue.ReplaySourceAdmin)
	if errors.Is(err, jobqueue.ErrReplayPending) {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "replay_pending"})
	}
	if err != nil {
		log.Errorf("[Admin] Could not enqueue replay of %s: %v", eventID, err)
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "queue_unavailable"})
	}

	log.Infof("[Admin] Replay of %s queued as job %s", eventID, job.ID)
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"queued": true, "job_id": job.ID, "event_id": eventID})
}

// HandleRecentErrors returns the newest error reports
func (ac *AdminWebhookController) HandleRecentErrors(c *fiber.Ctx) error {
	reports, err := ac.reports.Recent(c.UserContext(), c.QueryInt("limit", defaultErrorLimit))
	if err != nil {
		log.Errorf("[Admin] Could not read error reports: %v", err)
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "reports_unavailable"})
	}
	return c.JSON(fiber.Map{"errors": reports, "count": len(reports)})
}

// HandleJobStats returns job queue counters
func (ac *AdminWebhookController) HandleJobStats(c *fiber.Ctx) error {
	ctx := c.UserContext()
	stats, err := ac.queue.GetJobStats(ctx)
	if err != nil {
		log.Errorf("[Admin] Could not read job stats: %v", err)
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "queue_unavailable"})
	}
	pending, err := ac.queue.GetQueueSize(ctx)
	if err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "queue_unavailable"})
	}
	processing, err := ac.queue.GetProcessingSize(ctx)
	if err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "queue_unavailable"})
	}

	return c.JSON(fiber.Map{
		"stats":      stats,
		"pending":    pending,
		"processing": processing,
	})
}
