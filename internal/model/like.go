package model

import "time"

// Like 点赞记录，(user_id, review_id) 唯一
type Like struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	UserID    string    `gorm:"type:varchar(36);not null;uniqueIndex:ux_like_user_review" json:"user_id"`
	ReviewID  string    `gorm:"type:varchar(36);not null;uniqueIndex:ux_like_user_review;index:idx_like_review" json:"review_id"`
	CreatedAt time.Time `json:"created_at"`
}

func (Like) TableName() string { return "likes" }
