// Package rediscache provides a Redis implementation of triage.Cache.
package rediscache

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// latestKey is the single cache slot holding the most recent result.
const latestKey = "latest_incident"

// Cache stores the most recently triaged incident in Redis.
type Cache struct {
	client *redis.Client
}

// New connects to Redis and verifies the connection.
func New(ctx context.Context, redisURL string) (*Cache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	return &Cache{client: client}, nil
}

// SetLatest overwrites the latest-incident slot with payload. The slot has
// no TTL; it always holds the last successfully recorded result.
func (c *Cache) SetLatest(ctx context.Context, payload []byte) error {
	if err := c.client.Set(ctx, latestKey, payload, 0).Err(); err != nil {
		return fmt.Errorf("set %s: %w", latestKey, err)
	}
	return nil
}

// Close releases the Redis connection.
func (c *Cache) Close() error {
	return c.client.Close()
}
