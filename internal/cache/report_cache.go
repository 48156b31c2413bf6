package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Gargooie/Order-Management-API/internal/domain"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
)

const versionKey = "report:version"

// RedisReportCache keeps the derived top-N sales view in redis. Instead of
// deleting individual keys, invalidation bumps a version counter that is part
// of every cache key, so stale entries simply age out via TTL.
type RedisReportCache struct {
	client *redis.Client
	ttl    time.Duration
	log    *logrus.Logger
}

func NewRedisReportCache(addr string, ttl time.Duration, logger *logrus.Logger) (*RedisReportCache, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return &RedisReportCache{
		client: client,
		ttl:    ttl,
		log:    logger,
	}, nil
}

func (c *RedisReportCache) Get(ctx context.Context, n int, from, to time.Time) ([]domain.ProductSales, bool) {
	key, err := c.key(ctx, n, from, to)
	if err != nil {
		c.log.Warnf("Report cache key lookup failed: %v", err)
		return nil, false
	}

	payload, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.log.Warnf("Report cache read failed for %s: %v", key, err)
		}
		return nil, false
	}

	var rows []domain.ProductSales
	if err := json.Unmarshal(payload, &rows); err != nil {
		c.log.Warnf("Report cache entry %s is corrupt: %v", key, err)
		return nil, false
	}
	c.log.Debugf("Report cache hit for %s", key)
	return rows, true
}

func (c *RedisReportCache) Set(ctx context.Context, n int, from, to time.Time, rows []domain.ProductSales) {
	key, err := c.key(ctx, n, from, to)
	if err != nil {
		c.log.Warnf("Report cache key lookup failed: %v", err)
		return
	}

	payload, err := json.Marshal(rows)
	if err != nil {
		c.log.Warnf("Report cache marshal failed: %v", err)
		return
	}
	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		c.log.Warnf("Report cache write failed for %s: %v", key, err)
		return
	}
	c.log.Debugf("Report cache filled for %s", key)
}

func (c *RedisReportCache) InvalidateAll(ctx context.Context) {
	if err := c.client.Incr(ctx, versionKey).Err(); err != nil {
		c.log.Warnf("Report cache invalidation failed: %v", err)
		return
	}
	c.log.Debug("Report cache invalidated")
}

func (c *RedisReportCache) key(ctx context.Context, n int, from, to time.Time) (string, error) {
	version, err := c.client.Get(ctx, versionKey).Int64()
	if err != nil && err != redis.Nil {
		return "", err
	}
	return reportKey(version, n, from, to), nil
}

func reportKey(version int64, n int, from, to time.Time) string {
	return fmt.Sprintf("report:top:v%d:%d:%d:%d", version, n, from.Unix(), to.Unix())
}
