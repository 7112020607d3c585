package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/d60-Lab/match-social/internal/model"
	"github.com/d60-Lab/match-social/internal/repository"
)

// FeedConfig 分页与并发参数
type FeedConfig struct {
	DefaultPageSize int
	MaxPageSize     int
	Concurrency     int
}

// FeedService 关注流：按 watched_at 倒序，并列按 id 倒序
type FeedService interface {
	// FullFeed page 从 0 开始；越界返回空列表。
	// pageSize 超过 MaxPageSize 时按上限截断，窗口为 [page*MaxPageSize, +MaxPageSize)
	FullFeed(ctx context.Context, userID string, page, pageSize int) ([]*model.Review, error)
	// LatestFeed 每个关注对象最近的一条评分
	LatestFeed(ctx context.Context, userID string) ([]*model.Review, error)
}

type feedService struct {
	users      repository.UserDirectory
	reviewRepo repository.ReviewRepository
	index      FollowingIndex
	cfg        FeedConfig
	tracer     trace.Tracer
}

func NewFeedService(users repository.UserDirectory, index FollowingIndex, reviewRepo repository.ReviewRepository, cfg FeedConfig) FeedService {
	if cfg.DefaultPageSize <= 0 {
		cfg.DefaultPageSize = 20
	}
	if cfg.MaxPageSize < cfg.DefaultPageSize {
		cfg.MaxPageSize = cfg.DefaultPageSize
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 8
	}
	return &feedService{
		users:      users,
		reviewRepo: reviewRepo,
		index:      index,
		cfg:        cfg,
		tracer:     otel.Tracer("match-social/feed"),
	}
}

// FullFeed 负数 page 视为 0，pageSize<=0 取默认值，超过上限截断
func (s *feedService) FullFeed(ctx context.Context, userID string, page, pageSize int) ([]*model.Review, error) {
	ctx, span := s.tracer.Start(ctx, "feed.full", trace.WithAttributes(attribute.String("user_id", userID)))
	defer span.End()

	if page < 0 {
		page = 0
	}
	if pageSize <= 0 {
		pageSize = s.cfg.DefaultPageSize
	}
	if pageSize > s.cfg.MaxPageSize {
		pageSize = s.cfg.MaxPageSize
	}
	ids, err := s.followingIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Int("feed.following", len(ids)))
	// offset 溢出即越界
	if len(ids) == 0 || page > math.MaxInt/pageSize {
		return []*model.Review{}, nil
	}
	return s.reviewRepo.ListByUsers(ctx, ids, page*pageSize, pageSize)
}

func (s *feedService) LatestFeed(ctx context.Context, userID string) ([]*model.Review, error) {
	ctx, span := s.tracer.Start(ctx, "feed.latest", trace.WithAttributes(attribute.String("user_id", userID)))
	defer span.End()

	ids, err := s.followingIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	latest := make([]*model.Review, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Concurrency)
	for i, id := range ids {
		i, id := i, id
		g.Go(func() error {
			rv, err := s.reviewRepo.LatestByUser(gctx, id)
			if errors.Is(err, repository.ErrNotFound) {
				return nil
			}
			if err != nil {
				return err
			}
			latest[i] = rv
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("load latest reviews: %w", err)
	}

	out := make([]*model.Review, 0, len(latest))
	for _, rv := range latest {
		if rv != nil {
			out = append(out, rv)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].WatchedAt.Equal(out[j].WatchedAt) {
			return out[i].WatchedAt.After(out[j].WatchedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

// followingIDs 未知用户返回 ErrUserNotFound，与 ListFollowing 一致
func (s *feedService) followingIDs(ctx context.Context, userID string) ([]string, error) {
	if err := requireUsers(ctx, s.users, userID); err != nil {
		return nil, err
	}
	ids, err := s.index.FollowingIDs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load following: %w", err)
	}
	return ids, nil
}
