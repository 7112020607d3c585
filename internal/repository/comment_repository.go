package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/d60-Lab/match-social/internal/model"
)

type CommentRepository interface {
	Create(ctx context.Context, c *model.Comment) error
	GetByID(ctx context.Context, id string) (*model.Comment, error)
	ListByReview(ctx context.Context, reviewID string) ([]*model.Comment, error)
	Delete(ctx context.Context, id string) error
	Moderate(ctx context.Context, id, placeholder string) (*model.Comment, error)
}

type commentRepository struct{ db *gorm.DB }

func NewCommentRepository(db *gorm.DB) CommentRepository { return &commentRepository{db: db} }

func (r *commentRepository) Create(ctx context.Context, c *model.Comment) error {
	return translate(r.db.WithContext(ctx).Create(c).Error)
}

func (r *commentRepository) GetByID(ctx context.Context, id string) (*model.Comment, error) {
	var c model.Comment
	if err := r.db.WithContext(ctx).Where("id = ?", id).Take(&c).Error; err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

// ListByReview created_at 升序；id 为时间有序的 UUIDv7，并列时保持写入顺序
func (r *commentRepository) ListByReview(ctx context.Context, reviewID string) ([]*model.Comment, error) {
	res := []*model.Comment{}
	err := r.db.WithContext(ctx).
		Where("review_id = ?", reviewID).
		Order("created_at ASC, id ASC").
		Find(&res).Error
	return res, err
}

func (r *commentRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Comment{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Moderate 只替换内容并打标，保留作者与时间
func (r *commentRepository) Moderate(ctx context.Context, id, placeholder string) (*model.Comment, error) {
	var c model.Comment
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).Take(&c).Error; err != nil {
			return err
		}
		if err := tx.Model(&model.Comment{}).Where("id = ?", id).
			Updates(map[string]any{"content": placeholder, "is_moderated": true}).Error; err != nil {
			return err
		}
		c.Content = placeholder
		c.IsModerated = true
		return nil
	})
	if err != nil {
		return nil, translate(err)
	}
	return &c, nil
}
