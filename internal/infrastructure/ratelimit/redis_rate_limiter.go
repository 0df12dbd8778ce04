package ratelimit

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/clearpath/auth-service/internal/config"
)

// RedisRateLimiter is a fixed-window counter backed by Redis. The first hit
// in a window creates the key with the window as its TTL; the window resets
// when the key expires.
type RedisRateLimiter struct {
	client *redis.Client
	logger *zap.Logger
}

// NewRedisRateLimiter creates a rate limiter over the given client.
func NewRedisRateLimiter(client *redis.Client, logger *zap.Logger) *RedisRateLimiter {
	return &RedisRateLimiter{
		client: client,
		logger: logger.Named("rate_limiter"),
	}
}

// NewRedisClient builds a go-redis client from config and verifies the
// connection.
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return client, nil
}

// Allow reports whether a request under key fits within the rule's window.
func (l *RedisRateLimiter) Allow(ctx context.Context, key string, rule config.RateLimitRule) (bool, error) {
	redisKey := "ratelimit:" + key

	count, err := l.client.Incr(ctx, redisKey).Result()
	if err != nil {
		return false, fmt.Errorf("failed to increment rate limit counter: %w", err)
	}
	if count == 1 {
		if err := l.client.Expire(ctx, redisKey, rule.Window).Err(); err != nil {
			l.logger.Warn("failed to set rate limit window expiry",
				zap.String("key", redisKey), zap.Error(err))
		}
	}
	return count <= int64(rule.Limit), nil
}
