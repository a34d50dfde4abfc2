package metrics

import (
	"sync"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Prometheus metrics for the payment event pipeline
var (
	WebhookEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "creatorhub_webhook_events_total",
			Help: "Total number of provider events by type and outcome",
		},
		[]string{"event_type", "outcome"},
	)

	WebhookHandlerFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "creatorhub_webhook_handler_failures_total",
			Help: "Total number of failed handler runs",
		},
		[]string{"handler"},
	)

	NotificationFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "creatorhub_notification_failures_total",
			Help: "Total number of notifications that could not be delivered",
		},
		[]string{"template"},
	)

	WebhookProcessingDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "creatorhub_webhook_processing_seconds",
			Help:    "Duration of provider event processing",
			Buckets: prometheus.DefBuckets,
		},
	)

	ReplayJobsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "creatorhub_replay_jobs_total",
			Help: "Total number of replay jobs by result",
		},
		[]string{"result"},
	)
)

// Outcome labels for WebhookEventsTotal
const (
	OutcomeProcessed        = "processed"
	OutcomeFailed           = "failed"
	OutcomeDuplicate        = "duplicate"
	OutcomeInvalidSignature = "invalid_signature"
)

// Result labels for ReplayJobsTotal
const (
	ReplaySucceeded = "succeeded"
	ReplaySkipped   = "skipped"
	ReplayFailed    = "failed"
)

var registerOnce sync.Once

// Register registers all Prometheus metrics
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(WebhookEventsTotal)
		prometheus.MustRegister(WebhookHandlerFailuresTotal)
		prometheus.MustRegister(NotificationFailures)
		prometheus.MustRegister(WebhookProcessingDuration)
		prometheus.MustRegister(ReplayJobsTotal)
	})
}

// Handler exposes the default registry in the Prometheus text format.
func Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}
