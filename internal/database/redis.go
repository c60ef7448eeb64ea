package database

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/roombook/roombook/internal/config"
	log "github.com/sirupsen/logrus"
)

// OpenRedis creates a Redis client for the week grid cache.
// Returns nil if no URL is configured; the schedule service then runs uncached.
func OpenRedis(cfg config.Redis) (*redis.Client, error) {
	if cfg.URL == "" {
		log.Info("Redis URL not configured, week grid cache disabled")
		return nil, nil
	}

	opt, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}
	opt.DialTimeout = 5 * time.Second
	opt.ReadTimeout = 3 * time.Second
	opt.WriteTimeout = 3 * time.Second

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := client.Ping(ctx).Result(); err != nil {
		return nil, err
	}

	log.Info("Connected to Redis")
	return client, nil
}
