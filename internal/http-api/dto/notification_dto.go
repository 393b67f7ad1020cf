package dto

import (
	"time"

	"libraryhub/internal/http-api/models"
)

// CreateNotificationDTO used by admins for POST /notifications
type CreateNotificationDTO struct {
	Recipient string `json:"recipient" binding:"required,max=255"`
	Title     string `json:"title" binding:"required,max=255"`
	Message   string `json:"message" binding:"required,max=1000"`
	Type      string `json:"type" binding:"omitempty,oneof=INFO ALERT WARNING"`
}

// NotificationListQuery binds the admin notification listing filters.
type NotificationListQuery struct {
	PageQuery
	Recipient string `form:"recipient"`
}

type NotificationResponse struct {
	ID        int64     `json:"id"`
	Recipient string    `json:"recipient"`
	Type      string    `json:"type"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}

func (d CreateNotificationDTO) ToModel() models.Notification {
	return models.Notification{
		Recipient: d.Recipient,
		Title:     d.Title,
		Message:   d.Message,
		Type:      d.Type,
	}
}

func FromNotification(n *models.Notification) NotificationResponse {
	return NotificationResponse{
		ID:        n.ID,
		Recipient: n.Recipient,
		Type:      n.Type,
		Title:     n.Title,
		Message:   n.Message,
		IsRead:    n.IsRead,
		CreatedAt: n.CreatedAt,
	}
}

func FromNotifications(list []models.Notification) []NotificationResponse {
	out := make([]NotificationResponse, 0, len(list))
	for i := range list {
		out = append(out, FromNotification(&list[i]))
	}
	return out
}
