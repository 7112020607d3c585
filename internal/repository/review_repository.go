package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/d60-Lab/match-social/internal/model"
)

type ReviewRepository interface {
	GetByID(ctx context.Context, id string) (*model.Review, error)
	GetByUserMatch(ctx context.Context, userID, matchID string) (*model.Review, error)
	// Upsert 以 (user_id, match_id) 为键写入；created 表示是否新建
	Upsert(ctx context.Context, review *model.Review) (stored *model.Review, created bool, err error)
	UpdateContent(ctx context.Context, id string, note float64, comment *string, now time.Time) (*model.Review, error)
	Moderate(ctx context.Context, id, placeholder string, now time.Time) (*model.Review, error)
	// Delete 在一个事务内删除评分及其点赞、评论
	Delete(ctx context.Context, id string) error
	ListByUsers(ctx context.Context, userIDs []string, offset, limit int) ([]*model.Review, error)
	LatestByUser(ctx context.Context, userID string) (*model.Review, error)
}

type reviewRepository struct {
	db *gorm.DB
}

func NewReviewRepository(db *gorm.DB) ReviewRepository { return &reviewRepository{db: db} }

func (r *reviewRepository) GetByID(ctx context.Context, id string) (*model.Review, error) {
	var rv model.Review
	if err := r.db.WithContext(ctx).Where("id = ?", id).Take(&rv).Error; err != nil {
		return nil, translate(err)
	}
	return &rv, nil
}

func (r *reviewRepository) GetByUserMatch(ctx context.Context, userID, matchID string) (*model.Review, error) {
	var rv model.Review
	if err := r.db.WithContext(ctx).Where("user_id = ? AND match_id = ?", userID, matchID).Take(&rv).Error; err != nil {
		return nil, translate(err)
	}
	return &rv, nil
}

func (r *reviewRepository) Upsert(ctx context.Context, review *model.Review) (*model.Review, bool, error) {
	stored, created, err := r.upsertOnce(ctx, review)
	if errors.Is(err, ErrDuplicate) {
		// 并发首评：另一请求先插入，按更新路径重试一次
		return r.upsertOnce(ctx, review)
	}
	return stored, created, err
}

func (r *reviewRepository) upsertOnce(ctx context.Context, review *model.Review) (*model.Review, bool, error) {
	var (
		stored  model.Review
		created bool
	)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("user_id = ? AND match_id = ?", review.UserID, review.MatchID).
			Take(&stored).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			stored = *review
			created = true
			return tx.Create(&stored).Error
		case err != nil:
			return err
		}
		updates := map[string]any{
			"note":           review.Note,
			"comment":        review.Comment,
			"liked_by_owner": review.LikedByOwner,
			"updated_at":     review.UpdatedAt,
		}
		if err := tx.Model(&model.Review{}).Where("id = ?", stored.ID).Updates(updates).Error; err != nil {
			return err
		}
		stored.Note = review.Note
		stored.Comment = review.Comment
		stored.LikedByOwner = review.LikedByOwner
		stored.UpdatedAt = review.UpdatedAt
		return nil
	})
	if err != nil {
		return nil, false, translate(err)
	}
	return &stored, created, nil
}

func (r *reviewRepository) UpdateContent(ctx context.Context, id string, note float64, comment *string, now time.Time) (*model.Review, error) {
	return r.mutate(ctx, id, map[string]any{"note": note, "comment": comment, "updated_at": now})
}

func (r *reviewRepository) Moderate(ctx context.Context, id, placeholder string, now time.Time) (*model.Review, error) {
	return r.mutate(ctx, id, map[string]any{"comment": placeholder, "is_moderated": true, "updated_at": now})
}

// mutate 锁定行后更新指定列并返回最新值
func (r *reviewRepository) mutate(ctx context.Context, id string, updates map[string]any) (*model.Review, error) {
	var rv model.Review
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", id).Take(&rv).Error; err != nil {
			return err
		}
		if err := tx.Model(&model.Review{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Take(&rv).Error
	})
	if err != nil {
		return nil, translate(err)
	}
	return &rv, nil
}

func (r *reviewRepository) Delete(ctx context.Context, id string) error {
	return translate(r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ?", id).Delete(&model.Review{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		if err := tx.Where("review_id = ?", id).Delete(&model.Like{}).Error; err != nil {
			return err
		}
		return tx.Where("review_id = ?", id).Delete(&model.Comment{}).Error
	}))
}

// ListByUsers 按 watched_at 倒序分页，id 倒序打破并列
func (r *reviewRepository) ListByUsers(ctx context.Context, userIDs []string, offset, limit int) ([]*model.Review, error) {
	res := []*model.Review{}
	if len(userIDs) == 0 {
		return res, nil
	}
	err := r.db.WithContext(ctx).
		Where("user_id IN ?", userIDs).
		Order("watched_at DESC, id DESC").
		Offset(offset).Limit(limit).
		Find(&res).Error
	return res, err
}

func (r *reviewRepository) LatestByUser(ctx context.Context, userID string) (*model.Review, error) {
	var rv model.Review
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("watched_at DESC, id DESC").
		Take(&rv).Error
	if err != nil {
		return nil, translate(err)
	}
	return &rv, nil
}
