// Package cache keeps recently created or looked up users in Redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/trailsbuddy/trailsbuddy-backend/internal/config"
	"github.com/trailsbuddy/trailsbuddy-backend/internal/models"
	"go.uber.org/zap"
)

// ErrNotFound is returned on a cache miss
var ErrNotFound = errors.New("cache: key not found")

// UserCache is a Redis-backed cache of user documents keyed by numeric id.
// Users are never updated after creation, so entries only expire by TTL.
type UserCache struct {
	client redis.Cmdable
	ttl    time.Duration
	logger *zap.Logger
}

// NewRedisClient connects to Redis and verifies the connection
func NewRedisClient(ctx context.Context, cfg config.RedisConfig, logger *zap.Logger) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis at %s: %w", cfg.Addr, err)
	}
	logger.Info("Connected to Redis", zap.String("address", cfg.Addr))
	return rdb, nil
}

// NewUserCache creates a UserCache on top of client
func NewUserCache(client redis.Cmdable, ttl time.Duration, logger *zap.Logger) *UserCache {
	return &UserCache{
		client: client,
		ttl:    ttl,
		logger: logger.Named("UserCache"),
	}
}

func userKey(id int64) string {
	return fmt.Sprintf("user:%d", id)
}

// Get returns the cached user or ErrNotFound
func (c *UserCache) Get(ctx context.Context, id int64) (*models.User, error) {
	raw, err := c.client.Get(ctx, userKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("redis get %s: %w", userKey(id), err)
	}

	var user models.User
	if err := json.Unmarshal(raw, &user); err != nil {
		return nil, fmt.Errorf("decode cached user %d: %w", id, err)
	}
	return &user, nil
}

// Set stores user for the configured TTL
func (c *UserCache) Set(ctx context.Context, user *models.User) error {
	raw, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encode user %d: %w", user.ID, err)
	}
	if err := c.client.Set(ctx, userKey(user.ID), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", userKey(user.ID), err)
	}
	c.logger.Debug("Cached user", zap.Int64("id", user.ID), zap.Duration("ttl", c.ttl))
	return nil
}
