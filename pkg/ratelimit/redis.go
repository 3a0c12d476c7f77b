package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// unlockScript deletes the lock only if this replica still owns it.
var unlockScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisSlot is a SharedSlot backed by Redis. The lock is a SET NX PX key
// holding a per-acquisition token; the last request time is stored as
// Unix nanoseconds.
type RedisSlot struct {
	redis        *redis.Client
	lockTTL      time.Duration
	pollInterval time.Duration
	logger       zerolog.Logger
}

// NewRedisSlot creates a Redis-backed shared slot.
func NewRedisSlot(redisClient *redis.Client, lockTTL time.Duration, logger zerolog.Logger) (*RedisSlot, error) {
	if redisClient == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	if lockTTL <= 0 {
		lockTTL = DefaultLockTTL
	}

	return &RedisSlot{
		redis:        redisClient,
		lockTTL:      lockTTL,
		pollInterval: DefaultLockPollInterval,
		logger:       logger,
	}, nil
}

// Lock polls for the shared lock until it is acquired or ctx ends.
func (s *RedisSlot) Lock(ctx context.Context) (func(context.Context) error, error) {
	token := uuid.NewString()

	for {
		ok, err := s.redis.SetNX(ctx, RedisKeyLock, token, s.lockTTL).Result()
		if err != nil {
			return nil, fmt.Errorf("redis setnx: %w", err)
		}
		if ok {
			s.logger.Debug().Str("token", token).Msg("Acquired shared slot")
			return func(ctx context.Context) error {
				if err := unlockScript.Run(ctx, s.redis, []string{RedisKeyLock}, token).Err(); err != nil {
					return fmt.Errorf("redis unlock: %w", err)
				}
				return nil
			}, nil
		}

		timer := time.NewTimer(s.pollInterval)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		}
	}
}

// LastRequest returns the shared last request time, or the zero time if
// no replica has recorded one yet.
func (s *RedisSlot) LastRequest(ctx context.Context) (time.Time, error) {
	nanos, err := s.redis.Get(ctx, RedisKeyLastRequest).Int64()
	if errors.Is(err, redis.Nil) {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("get last request: %w", err)
	}
	return time.Unix(0, nanos), nil
}

// MarkRequest stores the finish time of a request.
func (s *RedisSlot) MarkRequest(ctx context.Context, at time.Time) error {
	if err := s.redis.Set(ctx, RedisKeyLastRequest, at.UnixNano(), 0).Err(); err != nil {
		return fmt.Errorf("set last request: %w", err)
	}
	return nil
}
