package model

import "gorm.io/gorm"

// AutoMigrate 建表（users/matches 在生产由上游维护，这里同样迁移以便本地与测试使用）
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&User{}, &Match{}, &Follow{}, &Review{}, &Like{}, &Comment{}, &Notification{})
}
