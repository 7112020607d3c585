// Package app 组装仓储、缓存、服务与异步投递器。
package app

import (
	"context"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/d60-Lab/match-social/config"
	"github.com/d60-Lab/match-social/internal/api/handler"
	"github.com/d60-Lab/match-social/internal/cache"
	"github.com/d60-Lab/match-social/internal/repository"
	"github.com/d60-Lab/match-social/internal/service"
)

// App 运行时依赖
type App struct {
	Users         repository.UserDirectory
	Follows       repository.FollowRepository
	Reviews       repository.ReviewRepository
	Relationship  service.RelationshipService
	Review        service.ReviewService
	Like          service.LikeService
	Comment       service.CommentService
	Notification  service.NotificationService
	Feed          service.FeedService
	Dispatcher    *service.Dispatcher
	FollowingIdx  service.FollowingIndex
	FollowCache   *cache.FollowingCache
	UserSnapshots *cache.UserSnapshotCache
}

// New rdb 为 nil 时不启用缓存
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, opts ...service.Option) *App {
	a := &App{
		Users:   repository.NewUserDirectory(db),
		Follows: repository.NewFollowRepository(db),
		Reviews: repository.NewReviewRepository(db),
	}
	a.FollowingIdx = service.DirectFollowingIndex(a.Follows)
	if rdb != nil {
		a.FollowCache = cache.NewFollowingCache(rdb, a.Follows, cfg.Redis.TTL)
		a.UserSnapshots = cache.NewUserSnapshotCache(rdb, a.Users, cfg.Redis.TTL)
		a.FollowingIdx = a.FollowCache
	}

	var names service.NameResolver = a.Users
	if a.UserSnapshots != nil {
		names = a.UserSnapshots
	}

	a.Notification = service.NewNotificationService(repository.NewNotificationRepository(db), cfg.Notification.FanoutBatch, opts...)
	a.Dispatcher = service.NewDispatcher(a.Notification, a.Follows, names, service.DispatcherConfig{
		QueueSize:   cfg.Notification.QueueSize,
		Timeout:     cfg.Notification.Timeout,
		FanoutBatch: cfg.Notification.FanoutBatch,
	})

	relOpts := append(append([]service.Option{}, opts...), service.WithFollowingIndex(a.FollowingIdx))
	a.Relationship = service.NewRelationshipService(a.Users, a.Follows, a.Dispatcher, relOpts...)
	a.Review = service.NewReviewService(a.Users, repository.NewMatchDirectory(db), a.Reviews, a.Dispatcher, opts...)
	a.Like = service.NewLikeService(a.Users, a.Reviews, repository.NewLikeRepository(db), a.Dispatcher, opts...)
	a.Comment = service.NewCommentService(a.Users, a.Reviews, repository.NewCommentRepository(db), a.Dispatcher, opts...)
	a.Feed = service.NewFeedService(a.Users, a.FollowingIdx, a.Reviews, service.FeedConfig{
		DefaultPageSize: cfg.Feed.DefaultPageSize,
		MaxPageSize:     cfg.Feed.MaxPageSize,
		Concurrency:     cfg.Feed.Concurrency,
	})
	return a
}

// Handler HTTP 处理器
func (a *App) Handler() *handler.Handler {
	return handler.New(handler.Services{
		Relationship: a.Relationship,
		Review:       a.Review,
		Like:         a.Like,
		Comment:      a.Comment,
		Notification: a.Notification,
		Feed:         a.Feed,
	})
}

// Start 启动投递 worker，返回停止函数
func (a *App) Start(workers int) func(context.Context) error {
	return a.Dispatcher.Start(workers)
}

// NewRedis 按配置创建客户端并探活
func NewRedis(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{Addr: cfg.Address, Password: cfg.Password, DB: cfg.DB})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, err
	}
	return rdb, nil
}
