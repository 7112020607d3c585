// Package cache 提供 redis 读缓存：关注列表索引与用户展示名快照。
package cache

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/d60-Lab/match-social/internal/repository"
	"github.com/d60-Lab/match-social/pkg/logger"
)

// FollowingCache 以 redis list 缓存用户关注的 id，未命中时经 singleflight 回源
type FollowingCache struct {
	rdb        *redis.Client
	followRepo repository.FollowRepository
	ttl        time.Duration
	group      singleflight.Group

	indexLoads atomic.Int64
}

func NewFollowingCache(rdb *redis.Client, followRepo repository.FollowRepository, ttl time.Duration) *FollowingCache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &FollowingCache{rdb: rdb, followRepo: followRepo, ttl: ttl}
}

func followingKey(userID string) string { return fmt.Sprintf("following:index:%s", userID) }

// followingVerKey 每次失效自增，回源写入前比对
func followingVerKey(userID string) string { return fmt.Sprintf("following:ver:%s", userID) }

var errIndexChanged = errors.New("following index changed during load")

// FollowingIDs redis 不可用时直接读库
func (c *FollowingCache) FollowingIDs(ctx context.Context, userID string) ([]string, error) {
	key := followingKey(userID)
	ids, err := c.rdb.LRange(ctx, key, 0, -1).Result()
	if err == nil && len(ids) > 0 {
		return ids, nil
	}
	if err != nil {
		logger.Warn("following index read failed", zap.String("user_id", userID), zap.Error(err))
	}

	v, err, _ := c.group.Do(userID, func() (any, error) {
		return c.load(ctx, userID)
	})
	if err != nil {
		return nil, err
	}
	return v.([]string), nil
}

func (c *FollowingCache) load(ctx context.Context, userID string) ([]string, error) {
	c.indexLoads.Add(1)
	verKey := followingVerKey(userID)
	ver, verErr := readVersion(ctx, c.rdb.Get, verKey)
	ids, err := c.followRepo.FollowingIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	// 空列表无法存为 redis list，不缓存；读版本失败时也不写
	if len(ids) == 0 || verErr != nil {
		return ids, nil
	}
	key := followingKey(userID)
	err = c.rdb.Watch(ctx, func(tx *redis.Tx) error {
		cur, err := readVersion(ctx, tx.Get, verKey)
		if err != nil {
			return err
		}
		if cur != ver {
			return errIndexChanged
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Del(ctx, key)
			pipe.RPush(ctx, key, toAny(ids)...)
			pipe.Expire(ctx, key, c.ttl)
			return nil
		})
		return err
	}, verKey)
	switch {
	case errors.Is(err, errIndexChanged), errors.Is(err, redis.TxFailedErr):
		logger.Debug("following index changed during load, skip write", zap.String("user_id", userID))
	case err != nil:
		logger.Warn("following index write failed", zap.String("user_id", userID), zap.Error(err))
	}
	return ids, nil
}

func readVersion(ctx context.Context, get func(context.Context, string) *redis.StringCmd, verKey string) (int64, error) {
	v, err := get(ctx, verKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return v, err
}

// Invalidate 关注关系变化后自增版本并删除索引
func (c *FollowingCache) Invalidate(ctx context.Context, userID string) error {
	c.group.Forget(userID)
	verKey := followingVerKey(userID)
	_, err := c.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, verKey)
		pipe.Expire(ctx, verKey, 2*c.ttl)
		pipe.Del(ctx, followingKey(userID))
		return nil
	})
	return err
}

// IndexLoads 回源次数
func (c *FollowingCache) IndexLoads() int64 { return c.indexLoads.Load() }

func toAny(strs []string) []any {
	out := make([]any, len(strs))
	for i, s := range strs {
		out[i] = s
	}
	return out
}
