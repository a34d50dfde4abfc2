package router

import (
	"context"
	"encoding/base64"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/ManuelReschke/CreatorHub/app/controllers"
	"github.com/ManuelReschke/CreatorHub/app/models"
	"github.com/ManuelReschke/CreatorHub/internal/pkg/errreport"
	"github.com/ManuelReschke/CreatorHub/internal/pkg/jobqueue"
	"github.com/ManuelReschke/CreatorHub/internal/pkg/middleware"
	"github.com/ManuelReschke/CreatorHub/internal/pkg/webhook"
)

type ackProcessor struct{ calls int }

func (p *ackProcessor) Process(ctx context.Context, payload []byte, signatureHeader string) (webhook.Response, int) {
	p.calls++
	return webhook.Response{Received: true}, fiber.StatusOK
}

type emptyLedger struct{}

func (emptyLedger) Lookup(ctx context.Context, eventID string) (*models.WebhookEvent, error) {
	return nil, nil
}

func (emptyLedger) List(ctx context.Context, status string, limit int) ([]models.WebhookEvent, error) {
	return []models.WebhookEvent{}, nil
}

type idleQueue struct{}

func (idleQueue) EnqueueReplay(ctx context.Context, eventID, source string) (*jobqueue.Job, error) {
	return &jobqueue.Job{ID: "job"}, nil
}

func (idleQueue) GetJobStats(ctx context.Context) (map[jobqueue.JobStatus]int64, error) {
	return map[jobqueue.JobStatus]int64{}, nil
}

func (idleQueue) GetQueueSize(ctx context.Context) (int64, error) { return 0, nil }

func (idleQueue) GetProcessingSize(ctx context.Context) (int64, error) { return 0, nil }

type noErrors struct{}

func (noErrors) Recent(ctx context.Context, limit int) ([]errreport.Report, error) {
	return nil, nil
}

func newApp(t *testing.T, processor *ackProcessor) *fiber.App {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("pw"), bcrypt.MinCost)
	require.NoError(t, err)

	app := fiber.New()
	InstallRouter(app,
		NewApiRouter(controllers.NewWebhookController(processor)),
		NewAdminRouter(
			controllers.NewAdminWebhookController(emptyLedger{}, idleQueue{}, noErrors{}),
			middleware.AdminCredentials{User: "ops", PasswordHash: string(hash)},
			nil,
		),
	)
	return app
}

func TestWebhookRouteIsPublic(t *testing.T) {
	processor := &ackProcessor{}
	app := newApp(t, processor)

	resp, err := app.Test(httptest.NewRequest("POST", WebhookPath, strings.NewReader("{}")), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, processor.calls)
}

func TestAdminRoutesRequireCredentials(t *testing.T) {
	app := newApp(t, &ackProcessor{})

	paths := []string{"/admin/webhooks/events", "/admin/errors", "/admin/jobs/stats"}
	for _, path := range paths {
		resp, err := app.Test(httptest.NewRequest("GET", path, nil), -1)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode, path)

		req := httptest.NewRequest("GET", path, nil)
		req.Header.Set(fiber.HeaderAuthorization, "Basic "+base64.StdEncoding.EncodeToString([]byte("ops:pw")))
		resp, err = app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode, path)
	}
}
