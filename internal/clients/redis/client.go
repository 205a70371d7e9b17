package redis

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"voice-bridge/internal/config"
	"voice-bridge/internal/observability"

	"github.com/redis/go-redis/v9"
)

var errNotInitialized = errors.New("Redis client not initialized")

// Client wraps the Redis client with observability
type Client struct {
	client *redis.Client
	logger *observability.Logger
}

// NewClient creates a new Redis client. It returns nil, nil when Redis is
// disabled; every method is safe to call on a nil Client.
func NewClient(cfg config.RedisConfig, logger *observability.Logger) (*Client, error) {
	if !cfg.Enabled {
		logger.Info(context.Background(), "Redis is disabled, skipping client initialization")
		return nil, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:         net.JoinHostPort(cfg.Host, cfg.Port),
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 2,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.Info(ctx, "successfully connected to Redis",
		observability.Field{Key: "host", Value: cfg.Host},
		observability.Field{Key: "port", Value: cfg.Port},
		observability.Field{Key: "db", Value: cfg.DB},
	)

	return NewFromClient(client, logger), nil
}

// NewFromClient wraps an already configured go-redis client.
func NewFromClient(client *redis.Client, logger *observability.Logger) *Client {
	return &Client{client: client, logger: logger}
}

// Close closes the Redis connection
func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

// RunScript evaluates a Lua script, loading it on first use.
func (c *Client) RunScript(ctx context.Context, script *redis.Script, keys []string, args ...interface{}) (interface{}, error) {
	if c == nil || c.client == nil {
		return nil, errNotInitialized
	}
	return script.Run(ctx, c.client, keys, args...).Result()
}

// ZRem removes members from a sorted set
func (c *Client) ZRem(ctx context.Context, key string, members ...interface{}) error {
	if c == nil || c.client == nil {
		return errNotInitialized
	}
	return c.client.ZRem(ctx, key, members...).Err()
}

// ZCount returns the number of members with a score in [min, max]
func (c *Client) ZCount(ctx context.Context, key, min, max string) (int64, error) {
	if c == nil || c.client == nil {
		return 0, errNotInitialized
	}
	return c.client.ZCount(ctx, key, min, max).Result()
}

// IsEnabled returns whether Redis is enabled
func (c *Client) IsEnabled() bool {
	return c != nil && c.client != nil
}
