package jobqueue

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuelReschke/CreatorHub/app/models"
)

type fakeFailedEvents struct {
	events      []models.WebhookEvent
	err         error
	limit       int
	maxAttempts int
}

func (f *fakeFailedEvents) ListFailed(ctx context.Context, limit, maxAttempts int) ([]models.WebhookEvent, error) {
	f.limit = limit
	f.maxAttempts = maxAttempts
	return f.events, f.err
}

func TestNewManager_Defaults(t *testing.T) {
	manager := NewManager(NewQueue(nil, nil, 1), &fakeFailedEvents{}, ManagerConfig{})

	assert.Equal(t, 5*time.Minute, manager.cfg.ReplayInterval)
	assert.Equal(t, 5, manager.cfg.ReplayMaxAttempts)
	assert.Equal(t, 50, manager.cfg.ReplayBatchSize)
	assert.NotNil(t, manager.GetQueue())
	assert.False(t, manager.IsRunning())
}

func TestManager_StopWithoutStart(t *testing.T) {
	manager := NewManager(NewQueue(nil, nil, 1), &fakeFailedEvents{}, ManagerConfig{})

	assert.False(t, manager.IsRunning())
	manager.Stop()
	assert.False(t, manager.IsRunning())
}

func TestManager_SweepFailedEvents(t *testing.T) {
	client := newIsolatedRedisClient(t)
	source := &fakeFailedEvents{events: []models.WebhookEvent{
		{EventID: "evt_a", Status: models.WebhookStatusFailed, Attempts: 1},
		{EventID: "evt_b", Status: models.WebhookStatusFailed, Attempts: 2},
	}}
	manager := NewManager(NewQueue(client, &fakeReplayer{}, 1), source, ManagerConfig{
		ReplayInterval:    time.Minute,
		ReplayMaxAttempts: 3,
		ReplayBatchSize:   10,
	})
	ctx := context.Background()

	queued, err := manager.SweepFailedEvents(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, queued)
	assert.Equal(t, 10, source.limit)
	assert.Equal(t, 3, source.maxAttempts)

	// replays still pending, nothing new is queued
	queued, err = manager.SweepFailedEvents(ctx)
	require.NoError(t, err)
	assert.Zero(t, queued)

	size, err := manager.GetQueue().GetQueueSize(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), size)
}

func TestManager_SweepFailedEventsSourceError(t *testing.T) {
	manager := NewManager(NewQueue(nil, nil, 1), &fakeFailedEvents{err: errors.New("db down")}, ManagerConfig{})

	queued, err := manager.SweepFailedEvents(context.Background())
	assert.Error(t, err)
	assert.Zero(t, queued)
}

func TestManager_StartStop(t *testing.T) {
	client := newIsolatedRedisClient(t)
	manager := NewManager(NewQueue(client, &fakeReplayer{}, 1), &fakeFailedEvents{}, ManagerConfig{ReplayInterval: time.Hour})

	manager.Start()
	assert.True(t, manager.IsRunning())
	manager.Start()

	manager.Stop()
	assert.False(t, manager.IsRunning())
}

func TestManager_ReplayWorkerExitsWhenStoppedEarly(t *testing.T) {
	manager := NewManager(NewQueue(nil, nil, 1), &fakeFailedEvents{}, ManagerConfig{ReplayInterval: time.Hour})

	// Stop has already closed the channel and cleared the field before the
	// worker gets scheduled.
	stopCh := make(chan struct{})
	close(stopCh)
	manager.stopCh = nil

	manager.wg.Add(1)
	go manager.replayWorker(stopCh, make(chan time.Time))

	done := make(chan struct{})
	go func() {
		manager.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("replay worker did not exit after stop")
	}
}
