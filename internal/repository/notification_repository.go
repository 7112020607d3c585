package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/d60-Lab/match-social/internal/model"
)

type NotificationRepository interface {
	CreateBatch(ctx context.Context, items []model.Notification, batchSize int) error
	ListByRecipient(ctx context.Context, recipientID string) ([]*model.Notification, error)
	CountUnread(ctx context.Context, recipientID string) (int64, error)
	// MarkRead recipientID 为空时不限定接收者
	MarkRead(ctx context.Context, recipientID, id string) (int64, error)
	MarkAllRead(ctx context.Context, recipientID string) (int64, error)
	DeleteByRecipient(ctx context.Context, recipientID string) (int64, error)
}

type notificationRepository struct{ db *gorm.DB }

func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) CreateBatch(ctx context.Context, items []model.Notification, batchSize int) error {
	if len(items) == 0 {
		return nil
	}
	if batchSize <= 0 {
		batchSize = 500
	}
	return translate(r.db.WithContext(ctx).CreateInBatches(&items, batchSize).Error)
}

// ListByRecipient 最新在前
func (r *notificationRepository) ListByRecipient(ctx context.Context, recipientID string) ([]*model.Notification, error) {
	res := []*model.Notification{}
	err := r.db.WithContext(ctx).
		Where("recipient_id = ?", recipientID).
		Order("created_at DESC, id DESC").
		Find(&res).Error
	return res, err
}

func (r *notificationRepository) CountUnread(ctx context.Context, recipientID string) (int64, error) {
	var cnt int64
	err := r.db.WithContext(ctx).Model(&model.Notification{}).
		Where("recipient_id = ? AND is_read = ?", recipientID, false).
		Count(&cnt).Error
	return cnt, err
}

// MarkRead 只作用于未读行，已读或不存在时影响 0 行
func (r *notificationRepository) MarkRead(ctx context.Context, recipientID, id string) (int64, error) {
	q := r.db.WithContext(ctx).Model(&model.Notification{}).Where("id = ? AND is_read = ?", id, false)
	if recipientID != "" {
		q = q.Where("recipient_id = ?", recipientID)
	}
	res := q.Update("is_read", true)
	return res.RowsAffected, res.Error
}

func (r *notificationRepository) MarkAllRead(ctx context.Context, recipientID string) (int64, error) {
	res := r.db.WithContext(ctx).Model(&model.Notification{}).
		Where("recipient_id = ? AND is_read = ?", recipientID, false).
		Update("is_read", true)
	return res.RowsAffected, res.Error
}

func (r *notificationRepository) DeleteByRecipient(ctx context.Context, recipientID string) (int64, error) {
	res := r.db.WithContext(ctx).Where("recipient_id = ?", recipientID).Delete(&model.Notification{})
	return res.RowsAffected, res.Error
}
