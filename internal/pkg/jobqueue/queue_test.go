package jobqueue

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuelReschke/CreatorHub/internal/pkg/webhook"
)

// TestNewQueue tests the queue constructor
func TestNewQueue(t *testing.T) {
	tests := []struct {
		name            string
		workers         int
		expectedWorkers int
	}{
		{"Valid worker count", 5, 5},
		{"Zero workers", 0, 3},
		{"Negative workers", -1, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			queue := NewQueue(nil, nil, tt.workers)

			assert.NotNil(t, queue)
			assert.Equal(t, tt.expectedWorkers, queue.workers)
			assert.Equal(t, tt.expectedWorkers, cap(queue.workerPool))
			assert.NotNil(t, queue.stopCh)
			assert.False(t, queue.running)
		})
	}
}

func TestConstants(t *testing.T) {
	assert.Equal(t, "job:", JobKeyPrefix)
	assert.Equal(t, "job_queue", JobQueueKey)
	assert.Equal(t, "job_processing", JobProcessingKey)
	assert.Equal(t, "job_stats", JobStatsKey)
	assert.Equal(t, "replay_lock:", ReplayLockPrefix)

	assert.Equal(t, 3, DefaultMaxRetries)
	assert.Equal(t, 24*time.Hour, JobTTL)
}

func TestEnqueueReplay_OnePendingJobPerEvent(t *testing.T) {
	client := newIsolatedRedisClient(t)
	q := NewQueue(client, &fakeReplayer{}, 1)
	ctx := context.Background()

	job, err := q.EnqueueReplay(ctx, "evt_1", ReplaySourceAdmin)
	require.NoError(t, err)
	assert.Equal(t, JobTypeReplayWebhookEvent, job.Type)
	assert.Equal(t, "evt_1", job.Payload["event_id"])

	_, err = q.EnqueueReplay(ctx, "evt_1", ReplaySourceSweeper)
	assert.ErrorIs(t, err, ErrReplayPending)

	_, err = q.EnqueueReplay(ctx, "evt_2", ReplaySourceSweeper)
	require.NoError(t, err)

	size, err := q.GetQueueSize(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), size)

	stats, err := q.GetJobStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats[JobStatusPending])
}

func TestProcessJob_ReplaySucceeded(t *testing.T) {
	client := newIsolatedRedisClient(t)
	replayer := &fakeReplayer{}
	q := NewQueue(client, replayer, 1)
	ctx := context.Background()

	_, err := q.EnqueueReplay(ctx, "evt_ok", ReplaySourceAdmin)
	require.NoError(t, err)

	job, err := q.dequeueJob(ctx)
	require.NoError(t, err)
	q.processJob(ctx, job)

	assert.Equal(t, []string{"evt_ok"}, replayer.calls)

	_, err = q.GetJob(ctx, job.ID)
	assert.Error(t, err, "completed jobs are removed")

	processing, err := q.GetProcessingSize(ctx)
	require.NoError(t, err)
	assert.Zero(t, processing)

	stats, err := q.GetJobStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats[JobStatusCompleted])

	// lock released, so the event can be queued again
	_, err = q.EnqueueReplay(ctx, "evt_ok", ReplaySourceAdmin)
	assert.NoError(t, err)
}

func TestProcessJob_AlreadyProcessedIsNotAFailure(t *testing.T) {
	client := newIsolatedRedisClient(t)
	q := NewQueue(client, &fakeReplayer{err: webhook.ErrAlreadyProcessed}, 1)
	ctx := context.Background()

	_, err := q.EnqueueReplay(ctx, "evt_done", ReplaySourceSweeper)
	require.NoError(t, err)
	job, err := q.dequeueJob(ctx)
	require.NoError(t, err)
	q.processJob(ctx, job)

	stats, err := q.GetJobStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats[JobStatusCompleted])
	assert.Zero(t, stats[JobStatusFailed])
}

func TestProcessJob_ReplayFailureIsNotRetried(t *testing.T) {
	client := newIsolatedRedisClient(t)
	replayErr := errors.Join(webhook.ErrReplayFailed, errors.New("course_purchase: db down"))
	q := NewQueue(client, &fakeReplayer{err: replayErr}, 1)
	ctx := context.Background()

	_, err := q.EnqueueReplay(ctx, "evt_bad", ReplaySourceSweeper)
	require.NoError(t, err)
	job, err := q.dequeueJob(ctx)
	require.NoError(t, err)
	q.processJob(ctx, job)

	stored, err := q.GetJob(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, JobStatusFailed, stored.Status)
	assert.Contains(t, stored.ErrorMsg, "db down")

	stats, err := q.GetJobStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats[JobStatusFailed])

	_, err = q.EnqueueReplay(ctx, "evt_bad", ReplaySourceSweeper)
	assert.NoError(t, err, "lock is released after a permanent failure")
}

func TestProcessJob_TransientErrorIsRetried(t *testing.T) {
	client := newIsolatedRedisClient(t)
	q := NewQueue(client, &fakeReplayer{err: errors.New("connection reset")}, 1)
	ctx := context.Background()

	_, err := q.EnqueueReplay(ctx, "evt_flaky", ReplaySourceSweeper)
	require.NoError(t, err)
	job, err := q.dequeueJob(ctx)
	require.NoError(t, err)
	q.processJob(ctx, job)

	stored, err := q.GetJob(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, JobStatusRetrying, stored.Status)
	assert.Equal(t, 1, stored.RetryCount)

	_, err = q.EnqueueReplay(ctx, "evt_flaky", ReplaySourceSweeper)
	assert.ErrorIs(t, err, ErrReplayPending, "lock is held while the job waits for its retry")
}

func TestRecoverStuckJobs(t *testing.T) {
	client := newIsolatedRedisClient(t)
	q := NewQueue(client, &fakeReplayer{}, 1)
	ctx := context.Background()

	_, err := q.EnqueueReplay(ctx, "evt_stuck", ReplaySourceSweeper)
	require.NoError(t, err)
	job, err := q.dequeueJob(ctx)
	require.NoError(t, err)

	started := time.Now().Add(-time.Hour)
	job.Status = JobStatusProcessing
	job.ProcessedAt = &started
	q.updateJob(ctx, job)

	q.recoverStuckJobs(ctx, 10*time.Minute)

	processing, err := q.GetProcessingSize(ctx)
	require.NoError(t, err)
	assert.Zero(t, processing)

	pending, err := q.GetQueueSize(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), pending)

	stored, err := q.GetJob(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, JobStatusPending, stored.Status)
	assert.Equal(t, "recovered by sweeper", stored.ErrorMsg)
}
