package model

import "time"

// ModeratedPlaceholder 审核后替换的文本
const ModeratedPlaceholder = "This content has been removed by a moderator."

// Review 用户对比赛的评分（每个 (user, match) 至多一条）
type Review struct {
	ID           string  `gorm:"primaryKey;type:varchar(36)" json:"id"`
	UserID       string  `gorm:"type:varchar(36);not null;uniqueIndex:ux_review_user_match;index:idx_review_user_watched,priority:1" json:"user_id"`
	MatchID      string  `gorm:"type:varchar(36);not null;uniqueIndex:ux_review_user_match;index:idx_review_match" json:"match_id"`
	Note         float64 `gorm:"not null" json:"note"`
	Comment      *string `gorm:"type:varchar(1000)" json:"comment"`
	LikedByOwner bool    `gorm:"not null;default:false" json:"liked_by_owner"`
	// LikesCount 冗余计数，与 likes 表在同一事务内维护
	LikesCount  int64     `gorm:"not null;default:0" json:"likes_count"`
	WatchedAt   time.Time `gorm:"not null;index:idx_review_user_watched,priority:2;index:idx_review_watched" json:"watched_at"`
	IsModerated bool      `gorm:"not null;default:false" json:"is_moderated"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (Review) TableName() string { return "reviews" }
