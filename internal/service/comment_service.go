package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/d60-Lab/match-social/internal/model"
	"github.com/d60-Lab/match-social/internal/repository"
)

// CommentService 评分下的评论
type CommentService interface {
	Get(ctx context.Context, commentID string) (*model.Comment, error)
	Add(ctx context.Context, reviewID, userID, content string) (*model.Comment, error)
	List(ctx context.Context, reviewID string) ([]*model.Comment, error)
	Delete(ctx context.Context, commentID string) error
	Moderate(ctx context.Context, commentID string) (*model.Comment, error)
}

type commentService struct {
	users       repository.UserDirectory
	reviewRepo  repository.ReviewRepository
	commentRepo repository.CommentRepository
	publisher   EventPublisher
	options
}

func NewCommentService(users repository.UserDirectory, reviewRepo repository.ReviewRepository, commentRepo repository.CommentRepository, publisher EventPublisher, opts ...Option) CommentService {
	return &commentService{
		users:       users,
		reviewRepo:  reviewRepo,
		commentRepo: commentRepo,
		publisher:   publisherOrNop(publisher),
		options:     newOptions(opts),
	}
}

func (s *commentService) Get(ctx context.Context, commentID string) (*model.Comment, error) {
	c, err := s.commentRepo.GetByID(ctx, commentID)
	return c, commentErr(err)
}

func (s *commentService) Add(ctx context.Context, reviewID, userID, content string) (*model.Comment, error) {
	if err := validateComment(content); err != nil {
		return nil, err
	}
	review, err := s.reviewRepo.GetByID(ctx, reviewID)
	if err != nil {
		return nil, reviewErr(err)
	}
	if err := requireUsers(ctx, s.users, userID); err != nil {
		return nil, err
	}
	id, err := s.ids.NewID()
	if err != nil {
		return nil, fmt.Errorf("generate comment id: %w", err)
	}
	c := &model.Comment{ID: id, ReviewID: reviewID, UserID: userID, Content: content, CreatedAt: s.now()}
	if err := s.commentRepo.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}
	if userID != review.UserID {
		s.publisher.Publish(Event{
			Type:        model.NotificationComment,
			ActorID:     userID,
			RecipientID: review.UserID,
			TargetID:    reviewID,
			OccurredAt:  c.CreatedAt,
		})
	}
	return c, nil
}

// List 按时间升序；评分不存在时返回 ErrReviewNotFound
func (s *commentService) List(ctx context.Context, reviewID string) ([]*model.Comment, error) {
	if _, err := s.reviewRepo.GetByID(ctx, reviewID); err != nil {
		return nil, reviewErr(err)
	}
	return s.commentRepo.ListByReview(ctx, reviewID)
}

func (s *commentService) Delete(ctx context.Context, commentID string) error {
	return commentErr(s.commentRepo.Delete(ctx, commentID))
}

func (s *commentService) Moderate(ctx context.Context, commentID string) (*model.Comment, error) {
	c, err := s.commentRepo.Moderate(ctx, commentID, model.ModeratedPlaceholder)
	return c, commentErr(err)
}

func commentErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNotFound):
		return ErrCommentNotFound
	default:
		return fmt.Errorf("comment store: %w", err)
	}
}
