package domain

import "time"

type NotificationType string

const (
	NotificationCritical  NotificationType = "CRITICAL"
	NotificationCommunity NotificationType = "COMMUNITY"
	NotificationSystem    NotificationType = "SYSTEM"
)

type Notification struct {
	ID        string           `json:"id"`
	UserID    string           `json:"-"`
	Type      NotificationType `json:"type"`
	Title     string           `json:"title"`
	Message   string           `json:"message"`
	IsRead    bool             `json:"is_read"`
	CreatedAt time.Time        `json:"created_at"`
}

// NotificationTemplate seeds a new inbox. Age is how long ago the entry appears to have arrived.
type NotificationTemplate struct {
	Type    NotificationType
	Title   string
	Message string
	Age     time.Duration
	IsRead  bool
}
