package callregistry

import (
	"context"
	"fmt"
	"strconv"
	"time"

	redisclient "voice-bridge/internal/clients/redis"

	"github.com/redis/go-redis/v9"
)

const (
	defaultKey = "voice-bridge:active-calls"
	// Entries older than this are assumed to belong to a crashed instance.
	defaultMaxCallAge = 4 * time.Hour
)

// acquireScript purges stale entries, then adds the member if there is room.
// Returns 1 when admitted, 0 when full.
var acquireScript = redis.NewScript(`
local key = KEYS[1]
local now = tonumber(ARGV[1])
local cutoff = tonumber(ARGV[2])
local limit = tonumber(ARGV[3])
local member = ARGV[4]
redis.call('ZREMRANGEBYSCORE', key, '-inf', cutoff)
if redis.call('ZSCORE', key, member) then
  return 1
end
if redis.call('ZCARD', key) >= limit then
  return 0
end
redis.call('ZADD', key, now, member)
return 1
`)

// RedisRegistry shares the call limit between every instance pointed at
// the same Redis. Calls live in a sorted set scored by admission time.
type RedisRegistry struct {
	client   *redisclient.Client
	key      string
	capacity int
	maxAge   time.Duration
	now      func() time.Time
}

func NewRedisRegistry(client *redisclient.Client, capacity int) *RedisRegistry {
	return &RedisRegistry{
		client:   client,
		key:      defaultKey,
		capacity: capacity,
		maxAge:   defaultMaxCallAge,
		now:      time.Now,
	}
}

func (r *RedisRegistry) Acquire(ctx context.Context, sessionID string) error {
	now := r.now()
	res, err := r.client.RunScript(ctx, acquireScript, []string{r.key},
		now.UnixMilli(),
		now.Add(-r.maxAge).UnixMilli(),
		r.capacity,
		sessionID,
	)
	if err != nil {
		return fmt.Errorf("failed to admit call: %w", err)
	}
	if admitted, ok := res.(int64); !ok || admitted != 1 {
		return ErrCapacityReached
	}
	return nil
}

func (r *RedisRegistry) Release(ctx context.Context, sessionID string) error {
	if err := r.client.ZRem(ctx, r.key, sessionID); err != nil {
		return fmt.Errorf("failed to release call: %w", err)
	}
	return nil
}

func (r *RedisRegistry) Count(ctx context.Context) (int, error) {
	cutoff := strconv.FormatInt(r.now().Add(-r.maxAge).UnixMilli(), 10)
	n, err := r.client.ZCount(ctx, r.key, "("+cutoff, "+inf")
	if err != nil {
		return 0, fmt.Errorf("failed to count active calls: %w", err)
	}
	return int(n), nil
}

func (r *RedisRegistry) Capacity() int {
	return r.capacity
}
