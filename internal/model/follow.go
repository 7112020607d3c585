package model

import (
	"time"
)

// Follow 关注关系（A 关注 B）
type Follow struct {
	ID         string `gorm:"primaryKey;type:varchar(36)" json:"id"`
	FollowerID string `gorm:"type:varchar(36);index:idx_follow_follower;uniqueIndex:ux_follow_pair;not null" json:"follower_id"`
	FolloweeID string `gorm:"type:varchar(36);index:idx_follow_followee;uniqueIndex:ux_follow_pair;not null" json:"followed_id"`
	// 复合唯一键，避免重复关注
	// ux_follow_pair = (follower_id, followee_id)
	CreatedAt time.Time `json:"created_at"`
}

func (Follow) TableName() string { return "follows" }
