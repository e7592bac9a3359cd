package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/andresuchdata/reorder/internal/config"
	"github.com/andresuchdata/reorder/internal/domain"
	"github.com/redis/go-redis/v9"
)

const (
	scheduleKeyPrefix    = "schedule:sku"
	scheduleScanBatchLen = 100
)

// ScheduleCache keeps the most recently generated schedule per SKU so
// repeat reads skip the database.
type ScheduleCache interface {
	Get(ctx context.Context, sku string) ([]domain.ScheduleEvent, bool, error)
	Set(ctx context.Context, sku string, events []domain.ScheduleEvent) error
	Invalidate(ctx context.Context, sku string) error
	InvalidateAll(ctx context.Context) error
}

type redisScheduleCache struct {
	client *redis.Client
	ttl    time.Duration
}

type noopScheduleCache struct{}

func NewScheduleCache(cfg config.CacheConfig) (ScheduleCache, error) {
	if !cfg.Enabled {
		return &noopScheduleCache{}, nil
	}

	client, ttl, err := newRedisClient(cfg)
	if err != nil {
		return nil, err
	}

	return &redisScheduleCache{
		client: client,
		ttl:    ttl,
	}, nil
}

func NewNoopScheduleCache() ScheduleCache {
	return &noopScheduleCache{}
}

func (c *redisScheduleCache) Get(ctx context.Context, sku string) ([]domain.ScheduleEvent, bool, error) {
	payload, err := c.client.Get(ctx, scheduleKey(sku)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get failed: %w", err)
	}

	var events []domain.ScheduleEvent
	if err := json.Unmarshal(payload, &events); err != nil {
		return nil, false, fmt.Errorf("decode schedule cache: %w", err)
	}

	return events, true, nil
}

func (c *redisScheduleCache) Set(ctx context.Context, sku string, events []domain.ScheduleEvent) error {
	payload, err := json.Marshal(events)
	if err != nil {
		return fmt.Errorf("encode schedule cache: %w", err)
	}

	if err := c.client.Set(ctx, scheduleKey(sku), payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (c *redisScheduleCache) Invalidate(ctx context.Context, sku string) error {
	return c.client.Del(ctx, scheduleKey(sku)).Err()
}

func (c *redisScheduleCache) InvalidateAll(ctx context.Context) error {
	return deleteKeysWithPrefix(ctx, c.client, scheduleKeyPrefix, scheduleScanBatchLen)
}

func (n *noopScheduleCache) Get(ctx context.Context, sku string) ([]domain.ScheduleEvent, bool, error) {
	return nil, false, nil
}

func (n *noopScheduleCache) Set(ctx context.Context, sku string, events []domain.ScheduleEvent) error {
	return nil
}

func (n *noopScheduleCache) Invalidate(ctx context.Context, sku string) error {
	return nil
}

func (n *noopScheduleCache) InvalidateAll(ctx context.Context) error {
	return nil
}

func scheduleKey(sku string) string {
	return fmt.Sprintf("%s:%s", scheduleKeyPrefix, sku)
}
