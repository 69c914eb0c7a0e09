package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rentnest/marketplace-backend/internal/config"
	"github.com/rentnest/marketplace-backend/internal/models"
)

// RedisCache keeps identity snapshots close to the booking path
type RedisCache struct {
	client      *redis.Client
	snapshotTTL time.Duration
}

// NewRedisCache creates a cache backed by the configured Redis instance
func NewRedisCache(cfg config.RedisConfig, snapshotTTL time.Duration) *RedisCache {
	return &RedisCache{
		client: redis.NewClient(&redis.Options{
			Addr:        cfg.Addr,
			Password:    cfg.Password,
			DB:          cfg.DB,
			DialTimeout: 2 * time.Second,
			ReadTimeout: time.Second,
		}),
		snapshotTTL: snapshotTTL,
	}
}

// GetUserSnapshot returns a cached snapshot, or (nil, nil) on a miss
func (c *RedisCache) GetUserSnapshot(ctx context.Context, userID uuid.UUID) (*models.UserSnapshot, error) {
	data, err := c.client.Get(ctx, userSnapshotKey(userID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read snapshot cache: %w", err)
	}

	var snapshot models.UserSnapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("failed to decode cached snapshot: %w", err)
	}
	return &snapshot, nil
}

// SetUserSnapshot stores a snapshot for the configured TTL
func (c *RedisCache) SetUserSnapshot(ctx context.Context, userID uuid.UUID, snapshot models.UserSnapshot) error {
	payload, err := json.Marshal(snapshot)
	if err != nil {
		return err
	}
	if err := c.client.Set(ctx, userSnapshotKey(userID), payload, c.snapshotTTL).Err(); err != nil {
		return fmt.Errorf("failed to write snapshot cache: %w", err)
	}
	return nil
}

// Ping checks connectivity, used by the health endpoint
func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close releases the connection pool
func (c *RedisCache) Close() error {
	return c.client.Close()
}

func userSnapshotKey(userID uuid.UUID) string {
	return "snapshot:user:" + userID.String()
}
