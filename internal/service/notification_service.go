package service

import (
	"context"
	"fmt"

	"github.com/d60-Lab/match-social/internal/model"
	"github.com/d60-Lab/match-social/internal/repository"
)

// NotificationService 站内通知：唯一的写入入口是 Dispatch / DispatchMany
type NotificationService interface {
	// Dispatch 接收者与发起者相同时不写入
	Dispatch(ctx context.Context, recipientID, actorID string, typ model.NotificationType, message, targetID string) error
	// DispatchMany 同一事件发给多人，返回实际写入条数
	DispatchMany(ctx context.Context, recipientIDs []string, actorID string, typ model.NotificationType, message, targetID string) (int, error)
	ListForUser(ctx context.Context, recipientID string) ([]*model.Notification, error)
	UnreadCount(ctx context.Context, recipientID string) (int64, error)
	MarkRead(ctx context.Context, notificationID string) error
	// MarkReadFor 只标记属于 recipientID 的通知
	MarkReadFor(ctx context.Context, recipientID, notificationID string) error
	MarkAllRead(ctx context.Context, recipientID string) (int64, error)
	ClearAll(ctx context.Context, recipientID string) (int64, error)
}

type notificationService struct {
	repo      repository.NotificationRepository
	batchSize int
	options
}

func NewNotificationService(repo repository.NotificationRepository, batchSize int, opts ...Option) NotificationService {
	if batchSize <= 0 {
		batchSize = 500
	}
	return &notificationService{repo: repo, batchSize: batchSize, options: newOptions(opts)}
}

func (s *notificationService) Dispatch(ctx context.Context, recipientID, actorID string, typ model.NotificationType, message, targetID string) error {
	_, err := s.DispatchMany(ctx, []string{recipientID}, actorID, typ, message, targetID)
	return err
}

func (s *notificationService) DispatchMany(ctx context.Context, recipientIDs []string, actorID string, typ model.NotificationType, message, targetID string) (int, error) {
	if !typ.Valid() {
		return 0, ErrUnknownType
	}
	now := s.now()
	items := make([]model.Notification, 0, len(recipientIDs))
	for _, rid := range recipientIDs {
		if rid == "" || rid == actorID {
			continue
		}
		id, err := s.ids.NewID()
		if err != nil {
			return 0, fmt.Errorf("generate notification id: %w", err)
		}
		items = append(items, model.Notification{
			ID:          id,
			RecipientID: rid,
			ActorID:     actorID,
			Type:        typ,
			Message:     message,
			TargetID:    targetID,
			CreatedAt:   now,
		})
	}
	if len(items) == 0 {
		return 0, nil
	}
	if err := s.repo.CreateBatch(ctx, items, s.batchSize); err != nil {
		return 0, fmt.Errorf("store notifications: %w", err)
	}
	return len(items), nil
}

// ListForUser 最新在前
func (s *notificationService) ListForUser(ctx context.Context, recipientID string) ([]*model.Notification, error) {
	return s.repo.ListByRecipient(ctx, recipientID)
}

func (s *notificationService) UnreadCount(ctx context.Context, recipientID string) (int64, error) {
	return s.repo.CountUnread(ctx, recipientID)
}

// MarkRead 幂等：已读或不存在都视为成功
func (s *notificationService) MarkRead(ctx context.Context, notificationID string) error {
	_, err := s.repo.MarkRead(ctx, "", notificationID)
	return err
}

func (s *notificationService) MarkReadFor(ctx context.Context, recipientID, notificationID string) error {
	_, err := s.repo.MarkRead(ctx, recipientID, notificationID)
	return err
}

func (s *notificationService) MarkAllRead(ctx context.Context, recipientID string) (int64, error) {
	return s.repo.MarkAllRead(ctx, recipientID)
}

func (s *notificationService) ClearAll(ctx context.Context, recipientID string) (int64, error) {
	return s.repo.DeleteByRecipient(ctx, recipientID)
}
