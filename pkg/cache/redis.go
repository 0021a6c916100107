package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"medsched/pkg/logger"
	"medsched/pkg/model"
)

// ErrMiss marks a key not present in the cache.
var ErrMiss = errors.New("cache miss")

func NewClient(addr, password string) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           0,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
		PoolSize:     10,
		MinIdleConns: 1,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return rdb, nil
}

// SlotCache keeps slot grids hot for the read-heavy slots endpoint. Cache
// failures degrade to a recompute, never to an error for the caller.
type SlotCache struct {
	rdb *redis.Client
	ttl time.Duration
	log *logger.Logger
}

func NewSlotCache(rdb *redis.Client, ttl time.Duration, log *logger.Logger) *SlotCache {
	return &SlotCache{rdb: rdb, ttl: ttl, log: log}
}

func slotKey(specialistID, serviceID, date string) string {
	return fmt.Sprintf("slots:%s:%s:%s", specialistID, serviceID, date)
}

func (c *SlotCache) Get(ctx context.Context, specialistID, serviceID, date string) ([]model.Slot, error) {
	raw, err := c.rdb.Get(ctx, slotKey(specialistID, serviceID, date)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrMiss
	}
	if err != nil {
		c.log.Warn("slot cache read failed", "error", err)
		return nil, ErrMiss
	}

	var slots []model.Slot
	if err := json.Unmarshal(raw, &slots); err != nil {
		c.log.Warn("slot cache entry corrupt", "error", err)
		return nil, ErrMiss
	}
	return slots, nil
}

func (c *SlotCache) Set(ctx context.Context, specialistID, serviceID, date string, slots []model.Slot) {
	raw, err := json.Marshal(slots)
	if err != nil {
		c.log.Warn("slot cache encode failed", "error", err)
		return
	}
	if err := c.rdb.Set(ctx, slotKey(specialistID, serviceID, date), raw, c.ttl).Err(); err != nil {
		c.log.Warn("slot cache write failed", "error", err)
	}
}

// Invalidate drops every cached grid for a specialist's day. Called after a
// booking or cancellation changes that day's availability.
func (c *SlotCache) Invalidate(ctx context.Context, specialistID, date string) {
	pattern := fmt.Sprintf("slots:%s:*:%s", specialistID, date)
	iter := c.rdb.Scan(ctx, 0, pattern, 0).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		c.log.Warn("slot cache scan failed", "error", err)
		return
	}
	if len(keys) > 0 {
		if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
			c.log.Warn("slot cache invalidation failed", "error", err)
		}
	}
}
