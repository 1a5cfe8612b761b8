package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/kindling-app/kindling/internal/config"
)

// LikeCountTTL bounds staleness of the received-like counters.
const LikeCountTTL = time.Hour

type RedisCache struct {
	Client *redis.Client
}

// NewRedisCache initializes a Redis client from config.
// Only Addr is mandatory, Password/DB are optional.
func NewRedisCache(cfg *config.Config) *RedisCache {
	opts := &redis.Options{
		Addr: cfg.Redis.Addr,
	}
	if cfg.Redis.Password != "" {
		opts.Password = cfg.Redis.Password
	}
	if cfg.Redis.DB != 0 {
		opts.DB = cfg.Redis.DB
	}
	return &RedisCache{Client: redis.NewClient(opts)}
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.Client.Ping(ctx).Err()
}

func (c *RedisCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	return c.Client.Set(ctx, key, value, ttl).Err()
}

// Get returns the value for key, or "" on a cache miss.
func (c *RedisCache) Get(ctx context.Context, key string) (string, error) {
	val, err := c.Client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	return val, err
}

func (c *RedisCache) Del(ctx context.Context, key string) error {
	return c.Client.Del(ctx, key).Err()
}

// KeyForLikeCount generates the Redis key for a user's received-like count.
func (c *RedisCache) KeyForLikeCount(userID string) string {
	return fmt.Sprintf("likes:count:%s", userID)
}

// AdjustLikeCount shifts a user's cached received-like count by delta and
// refreshes its TTL. A zero delta only refreshes the TTL. Missing keys are
// left absent; the next count query repopulates from the database.
func (c *RedisCache) AdjustLikeCount(ctx context.Context, userID string, delta int64) error {
	key := c.KeyForLikeCount(userID)

	exists, err := c.Client.Exists(ctx, key).Result()
	if err != nil || exists == 0 {
		return err
	}

	switch {
	case delta > 0:
		err = c.Client.IncrBy(ctx, key, delta).Err()
	case delta < 0:
		err = c.Client.DecrBy(ctx, key, -delta).Err()
	}
	if err != nil {
		return err
	}
	return c.Client.Expire(ctx, key, LikeCountTTL).Err()
}
