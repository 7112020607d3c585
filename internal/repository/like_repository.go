package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/d60-Lab/match-social/internal/model"
)

// ToggleResult 一次点赞切换的结果
type ToggleResult struct {
	Liked      bool
	LikesCount int64
	OwnerID    string
}

type LikeRepository interface {
	// Toggle 在单事务内完成：锁评分行 -> 查点赞 -> 插入/删除 -> 调整计数
	Toggle(ctx context.Context, like *model.Like) (ToggleResult, error)
	Exists(ctx context.Context, reviewID, userID string) (bool, error)
	CountByReview(ctx context.Context, reviewID string) (int64, error)
}

type likeRepository struct {
	db *gorm.DB
}

func NewLikeRepository(db *gorm.DB) LikeRepository { return &likeRepository{db: db} }

func (r *likeRepository) Toggle(ctx context.Context, like *model.Like) (ToggleResult, error) {
	var res ToggleResult
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var review model.Review
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("id", "user_id", "likes_count").
			Where("id = ?", like.ReviewID).
			Take(&review).Error; err != nil {
			return err
		}
		res.OwnerID = review.UserID

		var existing model.Like
		err := tx.Where("user_id = ? AND review_id = ?", like.UserID, like.ReviewID).Take(&existing).Error
		switch {
		case err == nil:
			if err := tx.Delete(&model.Like{}, "id = ?", existing.ID).Error; err != nil {
				return err
			}
			// 计数下限为 0，吸收历史漂移
			if err := tx.Model(&model.Review{}).Where("id = ?", review.ID).
				UpdateColumn("likes_count", gorm.Expr("CASE WHEN likes_count > 0 THEN likes_count - 1 ELSE 0 END")).Error; err != nil {
				return err
			}
			res.Liked = false
		case errors.Is(err, gorm.ErrRecordNotFound):
			if err := tx.Create(like).Error; err != nil {
				return err
			}
			if err := tx.Model(&model.Review{}).Where("id = ?", review.ID).
				UpdateColumn("likes_count", gorm.Expr("likes_count + 1")).Error; err != nil {
				return err
			}
			res.Liked = true
		default:
			return err
		}
		var after model.Review
		if err := tx.Select("likes_count").Where("id = ?", review.ID).Take(&after).Error; err != nil {
			return err
		}
		res.LikesCount = after.LikesCount
		return nil
	})
	if err != nil {
		return ToggleResult{}, translate(err)
	}
	return res, nil
}

func (r *likeRepository) Exists(ctx context.Context, reviewID, userID string) (bool, error) {
	var cnt int64
	if err := r.db.WithContext(ctx).Model(&model.Like{}).
		Where("user_id = ? AND review_id = ?", userID, reviewID).
		Count(&cnt).Error; err != nil {
		return false, err
	}
	return cnt > 0, nil
}

func (r *likeRepository) CountByReview(ctx context.Context, reviewID string) (int64, error) {
	var cnt int64
	err := r.db.WithContext(ctx).Model(&model.Like{}).Where("review_id = ?", reviewID).Count(&cnt).Error
	return cnt, err
}
