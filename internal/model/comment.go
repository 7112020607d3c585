package model

import "time"

// Comment 评分下的评论，按 created_at 升序展示
type Comment struct {
	ID          string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	ReviewID    string    `gorm:"type:varchar(36);not null;index:idx_comment_review_created,priority:1" json:"review_id"`
	UserID      string    `gorm:"type:varchar(36);not null;index" json:"user_id"`
	Content     string    `gorm:"type:varchar(500);not null" json:"content"`
	IsModerated bool      `gorm:"not null;default:false" json:"is_moderated"`
	CreatedAt   time.Time `gorm:"index:idx_comment_review_created,priority:2" json:"created_at"`
}

func (Comment) TableName() string { return "comments" }
