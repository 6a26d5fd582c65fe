// Package ratelimit is a fixed-window request counter stored in Redis.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const keyPrefix = "ratelimit:"

// Limiter allows up to limit hits per key in each window.
type Limiter struct {
	client *redis.Client
	limit  int64
	window time.Duration
	log    *zap.Logger
}

// NewRedisClient connects and pings. The caller owns Close.
func NewRedisClient(addr, password string, log *zap.Logger) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	log.Info("Redis connected successfully", zap.String("addr", addr))
	return rdb, nil
}

func New(client *redis.Client, limit int, window time.Duration, log *zap.Logger) *Limiter {
	return &Limiter{client: client, limit: int64(limit), window: window, log: log}
}

// Allow records one hit for key. The window starts at the first hit and the
// counter expires with it.
func (l *Limiter) Allow(ctx context.Context, key string) (bool, time.Duration, error) {
	k := keyPrefix + key

	pipe := l.client.TxPipeline()
	incr := pipe.Incr(ctx, k)
	pipe.ExpireNX(ctx, k, l.window)
	ttl := pipe.TTL(ctx, k)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, 0, fmt.Errorf("rate limit %s: %w", key, err)
	}

	count := incr.Val()
	if count > l.limit {
		l.log.Debug("rate limited", zap.String("key", key), zap.Int64("count", count))
		return false, ttl.Val(), nil
	}
	return true, 0, nil
}
