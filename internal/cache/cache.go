package cache

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/yusufkecer/bmi-tracker/internal/domain"
)

// HistoryCache keeps each user's chart series in Redis. It fails safe: any
// Redis error behaves like a miss and is only logged.
type HistoryCache struct {
	client *redis.Client
	ttl    time.Duration
}

// New creates a Redis-backed history cache.
func New(addr, password string, db int, ttl time.Duration) *HistoryCache {
	opts := &redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	}
	return &HistoryCache{client: redis.NewClient(opts), ttl: ttl}
}

func historyKey(userID int64) string {
	return "bmi:history:" + strconv.FormatInt(userID, 10)
}

// Get returns the cached series and whether it was present.
func (c *HistoryCache) Get(ctx context.Context, userID int64) ([]domain.HistoryPoint, bool) {
	if c == nil || c.client == nil {
		return nil, false
	}
	raw, err := c.client.Get(ctx, historyKey(userID)).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		logrus.WithError(err).WithField("user_id", userID).Warn("history cache read failed")
		return nil, false
	}
	var points []domain.HistoryPoint
	if err := json.Unmarshal(raw, &points); err != nil {
		return nil, false
	}
	return points, true
}

// Set stores the series with the configured TTL.
func (c *HistoryCache) Set(ctx context.Context, userID int64, points []domain.HistoryPoint) {
	if c == nil || c.client == nil {
		return
	}
	raw, err := json.Marshal(points)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, historyKey(userID), raw, c.ttl).Err(); err != nil {
		logrus.WithError(err).WithField("user_id", userID).Warn("history cache write failed")
	}
}

// Invalidate drops the cached series of a user.
func (c *HistoryCache) Invalidate(ctx context.Context, userID int64) {
	if c == nil || c.client == nil {
		return
	}
	if err := c.client.Del(ctx, historyKey(userID)).Err(); err != nil {
		logrus.WithError(err).WithField("user_id", userID).Warn("history cache invalidate failed")
	}
}

// Close releases the Redis connection pool.
func (c *HistoryCache) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}
