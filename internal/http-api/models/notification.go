package models

import "time"

const (
	NotificationInfo    = "INFO"
	NotificationAlert   = "ALERT"
	NotificationWarning = "WARNING"
)

type Notification struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Recipient string    `gorm:"size:255;not null;index" json:"recipient"` // username
	Type      string    `gorm:"size:16;not null;default:'INFO'" json:"type"`
	Title     string    `gorm:"size:255;not null" json:"title"`
	Message   string    `gorm:"size:1000;not null" json:"message"`
	IsRead    bool      `gorm:"not null;default:false" json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}

func (Notification) TableName() string {
	return "notifications"
}
