package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/ManuelReschke/CreatorHub/internal/pkg/env"
	"github.com/gofiber/fiber/v2/log"
	"github.com/redis/go-redis/v9"
)

// NewClient creates a Redis client for the given endpoint without connecting.
func NewClient(host, port, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", host, port),
		Password: password,
		DB:       db,
	})
}

// SetupCache initializes the connection to the Redis compatible cache server
func SetupCache() *redis.Client {
	client := NewClient(
		env.GetEnv("CACHE_HOST", "localhost"),
		env.GetEnv("CACHE_PORT", "6379"),
		env.GetEnv("CACHE_PASSWORD", ""),
		0,
	)

	// Test the connection
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	pong, err := client.Ping(ctx).Result()
	if err != nil {
		log.Warnf("[Cache] Could not connect to cache: %v", err)
	} else {
		log.Infof("[Cache] Successfully connected to cache: %s", pong)
	}
	return client
}

// Lock acquires a short-lived lock key. It reports false when the key is already held.
func Lock(ctx context.Context, rdb redis.Cmdable, key string, ttl time.Duration) (bool, error) {
	return rdb.SetNX(ctx, key, time.Now().Unix(), ttl).Result()
}

// Unlock releases a lock key acquired with Lock.
func Unlock(ctx context.Context, rdb redis.Cmdable, key string) error {
	return rdb.Del(ctx, key).Err()
}
