package jobqueue

import (
	"context"
	"testing"

	"github.com/redis/go-redis/v9"

	"github.com/ManuelReschke/CreatorHub/internal/pkg/cache"
	"github.com/ManuelReschke/CreatorHub/internal/pkg/webhook"
)

const isolatedJobQueueTestRedisDB = 14

func newIsolatedRedisClient(t *testing.T) *redis.Client {
	t.Helper()
	return cache.NewTestClient(t, isolatedJobQueueTestRedisDB)
}

type fakeReplayer struct {
	err   error
	calls []string
}

func (f *fakeReplayer) Reprocess(ctx context.Context, eventID string) (webhook.Response, error) {
	f.calls = append(f.calls, eventID)
	if f.err != nil {
		return webhook.Response{Received: true, Error: f.err.Error()}, f.err
	}
	return webhook.Response{Received: true}, nil
}
