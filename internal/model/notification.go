package model

import "time"

// NotificationType 通知类型
type NotificationType string

const (
	NotificationFollow    NotificationType = "FOLLOW"
	NotificationNewReview NotificationType = "NEW_REVIEW"
	NotificationComment   NotificationType = "COMMENT"
	NotificationLike      NotificationType = "LIKE"
)

// Valid 是否为已知类型
func (t NotificationType) Valid() bool {
	switch t {
	case NotificationFollow, NotificationNewReview, NotificationComment, NotificationLike:
		return true
	}
	return false
}

// Notification 站内通知（仅 is_read 可变）
type Notification struct {
	ID          string           `gorm:"primaryKey;type:varchar(36)" json:"id"`
	RecipientID string           `gorm:"type:varchar(36);not null;index:idx_notification_recipient_created,priority:1;index:idx_notification_recipient_read,priority:1" json:"recipient_id"`
	ActorID     string           `gorm:"type:varchar(36);not null" json:"actor_id"`
	Type        NotificationType `gorm:"type:varchar(16);not null" json:"type"`
	Message     string           `gorm:"type:varchar(255);not null" json:"message"`
	TargetID    string           `gorm:"type:varchar(36);not null" json:"target_id"`
	IsRead      bool             `gorm:"not null;default:false;index:idx_notification_recipient_read,priority:2" json:"is_read"`
	CreatedAt   time.Time        `gorm:"index:idx_notification_recipient_created,priority:2" json:"created_at"`
}

func (Notification) TableName() string { return "notifications" }
