package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/d60-Lab/match-social/internal/model"
	"github.com/d60-Lab/match-social/internal/repository"
)

// LikeResult 点赞切换后的状态
type LikeResult struct {
	Liked      bool  `json:"liked"`
	LikesCount int64 `json:"likes_count"`
}

// LikeService 点赞账本
type LikeService interface {
	ToggleLike(ctx context.Context, reviewID, userID string) (LikeResult, error)
	IsLiked(ctx context.Context, reviewID, userID string) (bool, error)
}

type likeService struct {
	users      repository.UserDirectory
	reviewRepo repository.ReviewRepository
	likeRepo   repository.LikeRepository
	publisher  EventPublisher
	locks      *keyedMutex
	options
}

func NewLikeService(users repository.UserDirectory, reviewRepo repository.ReviewRepository, likeRepo repository.LikeRepository, publisher EventPublisher, opts ...Option) LikeService {
	return &likeService{
		users:      users,
		reviewRepo: reviewRepo,
		likeRepo:   likeRepo,
		publisher:  publisherOrNop(publisher),
		locks:      newKeyedMutex(256),
		options:    newOptions(opts),
	}
}

// ToggleLike 同一评分上的切换串行执行：进程内分片锁 + 事务行锁
func (s *likeService) ToggleLike(ctx context.Context, reviewID, userID string) (LikeResult, error) {
	if _, err := s.reviewRepo.GetByID(ctx, reviewID); err != nil {
		return LikeResult{}, reviewErr(err)
	}
	if err := requireUsers(ctx, s.users, userID); err != nil {
		return LikeResult{}, err
	}
	id, err := s.ids.NewID()
	if err != nil {
		return LikeResult{}, fmt.Errorf("generate like id: %w", err)
	}
	now := s.now()

	unlock := s.locks.lock(reviewID)
	res, err := s.likeRepo.Toggle(ctx, &model.Like{ID: id, UserID: userID, ReviewID: reviewID, CreatedAt: now})
	unlock()
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return LikeResult{}, ErrReviewNotFound
		}
		return LikeResult{}, fmt.Errorf("toggle like: %w", err)
	}

	if res.Liked && userID != res.OwnerID {
		s.publisher.Publish(Event{
			Type:        model.NotificationLike,
			ActorID:     userID,
			RecipientID: res.OwnerID,
			TargetID:    reviewID,
			OccurredAt:  now,
		})
	}
	return LikeResult{Liked: res.Liked, LikesCount: res.LikesCount}, nil
}

// IsLiked 未知 id 返回 false
func (s *likeService) IsLiked(ctx context.Context, reviewID, userID string) (bool, error) {
	return s.likeRepo.Exists(ctx, reviewID, userID)
}
