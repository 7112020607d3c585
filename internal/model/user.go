package model

import "time"

// User 外部身份（本服务只读）
type User struct {
	ID          string `gorm:"primaryKey;type:varchar(36)"`
	Username    string `gorm:"type:varchar(64);uniqueIndex"`
	DisplayName string `gorm:"type:varchar(128)"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (User) TableName() string { return "users" }

// Match 比赛引用数据（由赛程同步写入，本服务只读）
type Match struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)"`
	HomeTeam  string    `gorm:"type:varchar(128)"`
	AwayTeam  string    `gorm:"type:varchar(128)"`
	KickoffAt time.Time `gorm:"index"`
	CreatedAt time.Time
}

func (Match) TableName() string { return "matches" }
