package schedule

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

// RedisWeekCache shares built week grids between instances. Entries expire
// after ttl even without an explicit invalidation, so a missed event can only
// serve stale data for a bounded time.
type RedisWeekCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisWeekCache(client *redis.Client, ttl time.Duration) *RedisWeekCache {
	return &RedisWeekCache{client: client, ttl: ttl}
}

func (c *RedisWeekCache) GetWeek(ctx context.Context, monday time.Time) (*WeekBookings, bool, error) {
	payload, err := c.client.Get(ctx, weekKey(monday)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read week from cache: %w", err)
	}

	var week WeekBookings
	if err := json.Unmarshal(payload, &week); err != nil {
		// A corrupt entry is treated as a miss; the grid gets rebuilt.
		log.Errorf("dropping corrupt cached week %s: %v", weekKey(monday), err)
		return nil, false, nil
	}
	return &week, true, nil
}

func (c *RedisWeekCache) SetWeek(ctx context.Context, monday time.Time, week *WeekBookings) error {
	payload, err := json.Marshal(week)
	if err != nil {
		return fmt.Errorf("failed to encode week for cache: %w", err)
	}
	if err := c.client.Set(ctx, weekKey(monday), payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store week in cache: %w", err)
	}
	return nil
}

func (c *RedisWeekCache) InvalidateWeek(ctx context.Context, monday time.Time) error {
	if err := c.client.Del(ctx, weekKey(monday)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate cached week: %w", err)
	}
	return nil
}
