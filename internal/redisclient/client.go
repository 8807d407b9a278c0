package redisclient

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// TTLs for the cached storefront view and the per-payment notification
// guard. The guard outlives any realistic webhook redelivery window.
const (
	storefrontTTL       = 5 * time.Minute
	notificationLockTTL = 24 * time.Hour
)

type Client struct {
	rdb *redis.Client
}

// NewClient creates a new Redis client
func NewClient(addr, password string, db int) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &Client{rdb: rdb}, nil
}

// GetClient returns the underlying Redis client
func (c *Client) GetClient() *redis.Client {
	return c.rdb
}

// Close closes the Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}

// CacheStorefront stores a rendered storefront payload under its slug
func (c *Client) CacheStorefront(ctx context.Context, slug string, payload []byte) error {
	return c.rdb.Set(ctx, storefrontKey(slug), payload, storefrontTTL).Err()
}

// GetStorefront retrieves a cached storefront payload.
// A cache miss returns (nil, nil).
func (c *Client) GetStorefront(ctx context.Context, slug string) ([]byte, error) {
	payload, err := c.rdb.Get(ctx, storefrontKey(slug)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return payload, nil
}

// InvalidateStorefront drops the cached storefront for a slug.
// Called after any catalog or settings mutation.
func (c *Client) InvalidateStorefront(ctx context.Context, slug string) error {
	return c.rdb.Del(ctx, storefrontKey(slug)).Err()
}

// AcquireNotificationLock claims the one-shot notification guard for a
// gateway payment id. Returns false when another delivery already
// claimed it, so duplicate webhooks do not re-send messages.
func (c *Client) AcquireNotificationLock(ctx context.Context, paymentID string) (bool, error) {
	key := fmt.Sprintf("webhook:notified:%s", paymentID)
	return c.rdb.SetNX(ctx, key, "1", notificationLockTTL).Result()
}

func storefrontKey(slug string) string {
	return fmt.Sprintf("storefront:%s", slug)
}
