package cache

import (
	"context"
	"testing"
	"time"

	"github.com/ManuelReschke/CreatorHub/internal/pkg/env"
	"github.com/redis/go-redis/v9"
)

// NewTestClient connects to the first reachable Redis endpoint and returns a
// client on an isolated, flushed database. The test is skipped when no Redis
// is reachable.
func NewTestClient(t testing.TB, db int) *redis.Client {
	t.Helper()

	hosts := unique(env.GetEnv("CACHE_HOST", ""), "cache", "localhost", "127.0.0.1")
	ports := unique(env.GetEnv("CACHE_PORT", "6379"), "6379")
	passwords := append(unique(env.GetEnv("CACHE_PASSWORD", "")), "")

	var lastErr error
	for _, host := range hosts {
		for _, port := range ports {
			for _, password := range passwords {
				c := NewClient(host, port, password, db)

				ctx, cancel := context.WithTimeout(context.Background(), time.Second)
				err := c.Ping(ctx).Err()
				cancel()
				if err != nil {
					_ = c.Close()
					lastErr = err
					continue
				}

				if err := c.FlushDB(context.Background()).Err(); err != nil {
					_ = c.Close()
					t.Fatalf("failed to flush isolated redis db %d: %v", db, err)
				}
				t.Cleanup(func() {
					_ = c.FlushDB(context.Background()).Err()
					_ = c.Close()
				})
				return c
			}
		}
	}

	t.Skipf("Skipping Redis-dependent test: no reachable Redis endpoint (%v)", lastErr)
	return nil
}

func unique(values ...string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
