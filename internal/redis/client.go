package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// Client caches the public tracking projections so unauthenticated
// lookups do not hit the database on every refresh.
type Client struct {
	rdb *redis.Client
}

func Initialize(redisURL string) (*Client, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	rdb := redis.NewClient(opt)

	// Test connection
	ctx := context.Background()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Client{rdb: rdb}, nil
}

// ErrCacheMiss is returned when a tracking projection is not cached.
var ErrCacheMiss = redis.Nil

func trackingKey(code string) string {
	return "tracking:" + code
}

func (c *Client) SetTrackingView(ctx context.Context, code string, view interface{}, ttl time.Duration) error {
	jsonData, err := json.Marshal(view)
	if err != nil {
		return fmt.Errorf("failed to marshal tracking view: %w", err)
	}
	return c.rdb.Set(ctx, trackingKey(code), jsonData, ttl).Err()
}

func (c *Client) GetTrackingView(ctx context.Context, code string, dest interface{}) error {
	val, err := c.rdb.Get(ctx, trackingKey(code)).Result()
	if err != nil {
		if err == redis.Nil {
			return ErrCacheMiss
		}
		return fmt.Errorf("failed to get tracking view: %w", err)
	}
	return json.Unmarshal([]byte(val), dest)
}

// DeleteTrackingView drops a cached projection after a status or
// feedback change so the next public lookup sees fresh data.
func (c *Client) DeleteTrackingView(ctx context.Context, code string) error {
	return c.rdb.Del(ctx, trackingKey(code)).Err()
}

func (c *Client) Close() error {
	return c.rdb.Close()
}
