package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/d60-Lab/match-social/internal/model"
)

// UserDirectory 外部用户身份查询（存在性 + 展示名）
type UserDirectory interface {
	Exists(ctx context.Context, userID string) (bool, error)
	DisplayNames(ctx context.Context, userIDs []string) (map[string]string, error)
}

// MatchDirectory 外部比赛引用查询
type MatchDirectory interface {
	Exists(ctx context.Context, matchID string) (bool, error)
}

type userDirectory struct{ db *gorm.DB }

func NewUserDirectory(db *gorm.DB) UserDirectory { return &userDirectory{db: db} }

func (d *userDirectory) Exists(ctx context.Context, userID string) (bool, error) {
	var cnt int64
	if err := d.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", userID).Count(&cnt).Error; err != nil {
		return false, err
	}
	return cnt > 0, nil
}

// DisplayNames 批量取展示名；未知 id 不出现在结果中。DisplayName 为空时退回 Username
func (d *userDirectory) DisplayNames(ctx context.Context, userIDs []string) (map[string]string, error) {
	out := make(map[string]string, len(userIDs))
	if len(userIDs) == 0 {
		return out, nil
	}
	var users []model.User
	if err := d.db.WithContext(ctx).
		Select("id", "username", "display_name").
		Where("id IN ?", userIDs).
		Find(&users).Error; err != nil {
		return nil, err
	}
	for _, u := range users {
		name := u.DisplayName
		if name == "" {
			name = u.Username
		}
		out[u.ID] = name
	}
	return out, nil
}

type matchDirectory struct{ db *gorm.DB }

func NewMatchDirectory(db *gorm.DB) MatchDirectory { return &matchDirectory{db: db} }

func (d *matchDirectory) Exists(ctx context.Context, matchID string) (bool, error) {
	var cnt int64
	if err := d.db.WithContext(ctx).Model(&model.Match{}).Where("id = ?", matchID).Count(&cnt).Error; err != nil {
		return false, err
	}
	return cnt > 0, nil
}
