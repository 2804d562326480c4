package models

import "time"

const (
	NotificationLike    = "like"
	NotificationComment = "comment"
	NotificationFollow  = "follow"
	NotificationMessage = "message"
	NotificationMention = "mention"
)

// Notification represents a user notification (PostgreSQL). User, actor and post references are
// MongoDB ObjectIDs in hex form.
type Notification struct {
	ID         uint      `json:"_id" gorm:"primaryKey"`
	UserID     string    `json:"user" gorm:"size:24;not null;index:idx_notifications_user_created,priority:1;index:idx_notifications_user_read,priority:1"`
	FromUserID string    `json:"from_user_id" gorm:"size:24;not null"`
	Type       string    `json:"type" gorm:"size:20;not null"`
	PostID     *string   `json:"post,omitempty" gorm:"size:24;index"`
	Message    string    `json:"message"`
	Read       bool      `json:"read" gorm:"default:false;index:idx_notifications_user_read,priority:2"`
	CreatedAt  time.Time `json:"createdAt" gorm:"index:idx_notifications_user_created,priority:2"`
}

// NotificationView is a notification with its actor resolved
type NotificationView struct {
	Notification
	FromUser UserCompact `json:"from_user"`
}
