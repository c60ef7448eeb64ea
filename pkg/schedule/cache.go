package schedule

import (
	"context"
	"sync"
	"time"
)

// WeekCache stores built week grids keyed by their Monday. Keying by Monday
// means an invalidation for one week can never evict another.
type WeekCache interface {
	GetWeek(ctx context.Context, monday time.Time) (*WeekBookings, bool, error)
	SetWeek(ctx context.Context, monday time.Time, week *WeekBookings) error
	InvalidateWeek(ctx context.Context, monday time.Time) error
}

// MemoryWeekCache is a process-local WeekCache used when no Redis instance is
// configured, and in tests.
type MemoryWeekCache struct {
	mu    sync.RWMutex
	weeks map[string]*WeekBookings
}

func NewMemoryWeekCache() *MemoryWeekCache {
	return &MemoryWeekCache{weeks: make(map[string]*WeekBookings)}
}

func (c *MemoryWeekCache) GetWeek(ctx context.Context, monday time.Time) (*WeekBookings, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	week, ok := c.weeks[weekKey(monday)]
	return week, ok, nil
}

func (c *MemoryWeekCache) SetWeek(ctx context.Context, monday time.Time, week *WeekBookings) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.weeks[weekKey(monday)] = week
	return nil
}

func (c *MemoryWeekCache) InvalidateWeek(ctx context.Context, monday time.Time) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.weeks, weekKey(monday))
	return nil
}

func weekKey(monday time.Time) string {
	return "week:" + monday.Format("2006-01-02")
}
