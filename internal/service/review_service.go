package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/d60-Lab/match-social/internal/model"
	"github.com/d60-Lab/match-social/internal/repository"
)

// UpsertReviewInput 评分写入参数
type UpsertReviewInput struct {
	UserID       string
	MatchID      string
	Note         float64
	Comment      *string
	LikedByOwner bool
}

// ReviewService 评分生命周期
type ReviewService interface {
	Get(ctx context.Context, reviewID string) (*model.Review, error)
	// Upsert 首次评分时创建并通知粉丝，再次评分原地更新
	Upsert(ctx context.Context, in UpsertReviewInput) (*model.Review, error)
	Update(ctx context.Context, reviewID string, note float64, comment *string) (*model.Review, error)
	Delete(ctx context.Context, reviewID string) error
	Moderate(ctx context.Context, reviewID string) (*model.Review, error)
}

type reviewService struct {
	users      repository.UserDirectory
	matches    repository.MatchDirectory
	reviewRepo repository.ReviewRepository
	publisher  EventPublisher
	options
}

func NewReviewService(users repository.UserDirectory, matches repository.MatchDirectory, reviewRepo repository.ReviewRepository, publisher EventPublisher, opts ...Option) ReviewService {
	return &reviewService{
		users:      users,
		matches:    matches,
		reviewRepo: reviewRepo,
		publisher:  publisherOrNop(publisher),
		options:    newOptions(opts),
	}
}

func (s *reviewService) Get(ctx context.Context, reviewID string) (*model.Review, error) {
	rv, err := s.reviewRepo.GetByID(ctx, reviewID)
	return rv, reviewErr(err)
}

func (s *reviewService) Upsert(ctx context.Context, in UpsertReviewInput) (*model.Review, error) {
	if err := validateReview(in.Note, in.Comment); err != nil {
		return nil, err
	}
	if err := requireUsers(ctx, s.users, in.UserID); err != nil {
		return nil, err
	}
	ok, err := s.matches.Exists(ctx, in.MatchID)
	if err != nil {
		return nil, fmt.Errorf("lookup match: %w", err)
	}
	if !ok {
		return nil, ErrMatchNotFound
	}

	id, err := s.ids.NewID()
	if err != nil {
		return nil, fmt.Errorf("generate review id: %w", err)
	}
	now := s.now()
	stored, created, err := s.reviewRepo.Upsert(ctx, &model.Review{
		ID:           id,
		UserID:       in.UserID,
		MatchID:      in.MatchID,
		Note:         in.Note,
		Comment:      in.Comment,
		LikedByOwner: in.LikedByOwner,
		WatchedAt:    now,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return nil, fmt.Errorf("upsert review: %w", err)
	}
	if created {
		s.publisher.Publish(Event{
			Type:       model.NotificationNewReview,
			ActorID:    stored.UserID,
			TargetID:   stored.ID,
			OccurredAt: now,
		})
	}
	return stored, nil
}

// Update 只改 note 与 comment
func (s *reviewService) Update(ctx context.Context, reviewID string, note float64, comment *string) (*model.Review, error) {
	if err := validateReview(note, comment); err != nil {
		return nil, err
	}
	rv, err := s.reviewRepo.UpdateContent(ctx, reviewID, note, comment, s.now())
	return rv, reviewErr(err)
}

// Delete 级联删除点赞与评论
func (s *reviewService) Delete(ctx context.Context, reviewID string) error {
	return reviewErr(s.reviewRepo.Delete(ctx, reviewID))
}

func (s *reviewService) Moderate(ctx context.Context, reviewID string) (*model.Review, error) {
	rv, err := s.reviewRepo.Moderate(ctx, reviewID, model.ModeratedPlaceholder, s.now())
	return rv, reviewErr(err)
}

func reviewErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNotFound):
		return ErrReviewNotFound
	default:
		return fmt.Errorf("review store: %w", err)
	}
}
