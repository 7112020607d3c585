package cache

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/d60-Lab/match-social/internal/repository"
	"github.com/d60-Lab/match-social/pkg/logger"
)

// UserSnapshotCache 包装 UserDirectory，展示名走 MGET 批量缓存
type UserSnapshotCache struct {
	rdb   *redis.Client
	inner repository.UserDirectory
	ttl   time.Duration

	bulkLoads atomic.Int64
}

var _ repository.UserDirectory = (*UserSnapshotCache)(nil)

func NewUserSnapshotCache(rdb *redis.Client, inner repository.UserDirectory, ttl time.Duration) *UserSnapshotCache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &UserSnapshotCache{rdb: rdb, inner: inner, ttl: ttl}
}

func nameKey(userID string) string { return fmt.Sprintf("user:name:%s", userID) }

// Exists 存在性不缓存
func (c *UserSnapshotCache) Exists(ctx context.Context, userID string) (bool, error) {
	return c.inner.Exists(ctx, userID)
}

func (c *UserSnapshotCache) DisplayNames(ctx context.Context, userIDs []string) (map[string]string, error) {
	out := make(map[string]string, len(userIDs))
	if len(userIDs) == 0 {
		return out, nil
	}
	keys := make([]string, len(userIDs))
	for i, id := range userIDs {
		keys[i] = nameKey(id)
	}
	if vals, err := c.rdb.MGet(ctx, keys...).Result(); err == nil {
		for i, v := range vals {
			if s, ok := v.(string); ok {
				out[userIDs[i]] = s
			}
		}
	} else {
		logger.Warn("user snapshot read failed", zap.Error(err))
	}

	missing := make([]string, 0, len(userIDs))
	for _, id := range userIDs {
		if _, ok := out[id]; !ok {
			missing = append(missing, id)
		}
	}
	if len(missing) == 0 {
		return out, nil
	}

	c.bulkLoads.Add(1)
	loaded, err := c.inner.DisplayNames(ctx, missing)
	if err != nil {
		return nil, err
	}
	pipe := c.rdb.Pipeline()
	for id, name := range loaded {
		out[id] = name
		pipe.Set(ctx, nameKey(id), name, c.ttl)
	}
	if len(loaded) > 0 {
		if _, err := pipe.Exec(ctx); err != nil {
			logger.Warn("user snapshot write failed", zap.Error(err))
		}
	}
	return out, nil
}

// BulkLoads 回源次数
func (c *UserSnapshotCache) BulkLoads() int64 { return c.bulkLoads.Load() }
