package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/d60-Lab/match-social/internal/model"
	"github.com/d60-Lab/match-social/internal/repository"
	"github.com/d60-Lab/match-social/pkg/logger"
)

// FollowingIndex 某用户关注的 id 列表（可由缓存实现）
type FollowingIndex interface {
	FollowingIDs(ctx context.Context, userID string) ([]string, error)
	Invalidate(ctx context.Context, userID string) error
}

// FollowCounts 关注数与粉丝数
type FollowCounts struct {
	Following int64 `json:"following"`
	Followers int64 `json:"followers"`
}

// RelationshipService 关系链服务
type RelationshipService interface {
	Follow(ctx context.Context, followerID, followedID string) (*model.Follow, error)
	Unfollow(ctx context.Context, followerID, followedID string) error
	ListFollowing(ctx context.Context, userID string) ([]string, error)
	ListFollowers(ctx context.Context, userID string) ([]string, error)
	Counts(ctx context.Context, userID string) (FollowCounts, error)
}

type relationshipService struct {
	users      repository.UserDirectory
	followRepo repository.FollowRepository
	publisher  EventPublisher
	options
}

func NewRelationshipService(users repository.UserDirectory, followRepo repository.FollowRepository, publisher EventPublisher, opts ...Option) RelationshipService {
	return &relationshipService{
		users:      users,
		followRepo: followRepo,
		publisher:  publisherOrNop(publisher),
		options:    newOptions(opts),
	}
}

func (s *relationshipService) Follow(ctx context.Context, followerID, followedID string) (*model.Follow, error) {
	if err := requireUsers(ctx, s.users, followerID, followedID); err != nil {
		return nil, err
	}
	if followerID == followedID {
		return nil, ErrFollowSelf
	}
	id, err := s.ids.NewID()
	if err != nil {
		return nil, fmt.Errorf("generate follow id: %w", err)
	}
	edge := &model.Follow{ID: id, FollowerID: followerID, FolloweeID: followedID, CreatedAt: s.now()}
	if err := s.followRepo.Create(ctx, edge); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrAlreadyFollowing
		}
		return nil, fmt.Errorf("create follow: %w", err)
	}
	s.invalidate(ctx, followerID)
	s.publisher.Publish(Event{
		Type:        model.NotificationFollow,
		ActorID:     followerID,
		RecipientID: followedID,
		TargetID:    edge.ID,
		OccurredAt:  edge.CreatedAt,
	})
	return edge, nil
}

// Unfollow 关系不存在时静默返回
func (s *relationshipService) Unfollow(ctx context.Context, followerID, followedID string) error {
	if err := requireUsers(ctx, s.users, followerID, followedID); err != nil {
		return err
	}
	removed, err := s.followRepo.Delete(ctx, followerID, followedID)
	if err != nil {
		return fmt.Errorf("delete follow: %w", err)
	}
	if removed {
		s.invalidate(ctx, followerID)
	}
	return nil
}

func (s *relationshipService) ListFollowing(ctx context.Context, userID string) ([]string, error) {
	if err := requireUsers(ctx, s.users, userID); err != nil {
		return nil, err
	}
	return s.followRepo.FollowingIDs(ctx, userID)
}

func (s *relationshipService) ListFollowers(ctx context.Context, userID string) ([]string, error) {
	if err := requireUsers(ctx, s.users, userID); err != nil {
		return nil, err
	}
	return s.followRepo.FollowerIDs(ctx, userID)
}

func (s *relationshipService) Counts(ctx context.Context, userID string) (FollowCounts, error) {
	if err := requireUsers(ctx, s.users, userID); err != nil {
		return FollowCounts{}, err
	}
	following, err := s.followRepo.CountFollowing(ctx, userID)
	if err != nil {
		return FollowCounts{}, err
	}
	followers, err := s.followRepo.CountFollowers(ctx, userID)
	if err != nil {
		return FollowCounts{}, err
	}
	return FollowCounts{Following: following, Followers: followers}, nil
}

// invalidate 缓存失效失败只记录日志，依赖 TTL 兜底
func (s *relationshipService) invalidate(ctx context.Context, userID string) {
	if s.index == nil {
		return
	}
	if err := s.index.Invalidate(ctx, userID); err != nil {
		logger.Warn("invalidate following index failed", zap.String("user_id", userID), zap.Error(err))
	}
}

func requireUsers(ctx context.Context, users repository.UserDirectory, ids ...string) error {
	for _, id := range ids {
		ok, err := users.Exists(ctx, id)
		if err != nil {
			return fmt.Errorf("lookup user: %w", err)
		}
		if !ok {
			return ErrUserNotFound
		}
	}
	return nil
}

type directIndex struct {
	followRepo repository.FollowRepository
}

// DirectFollowingIndex 直接读库的 FollowingIndex
func DirectFollowingIndex(followRepo repository.FollowRepository) FollowingIndex {
	return directIndex{followRepo: followRepo}
}

func (d directIndex) FollowingIDs(ctx context.Context, userID string) ([]string, error) {
	return d.followRepo.FollowingIDs(ctx, userID)
}

func (directIndex) Invalidate(context.Context, string) error { return nil }
