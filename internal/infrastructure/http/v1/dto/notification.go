package dto

import (
	"time"

	"stockcontrol/internal/domain/notification"
)

// NotificationResponse is one notification.
type NotificationResponse struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"createdAt"`
}

// FromNotification maps a notification to its response shape.
func FromNotification(n *notification.Notification) NotificationResponse {
	return NotificationResponse{
		ID:        n.ID,
		Title:     n.Title,
		Body:      n.Body,
		CreatedAt: n.CreatedAt,
	}
}

// ScanResponse reports the result of an on-demand low-stock scan.
type ScanResponse struct {
	AlertsCreated int `json:"alertsCreated"`
}

// SetGrantRequest sets one permission grant for a user.
type SetGrantRequest struct {
	UserID  int64  `json:"userId" binding:"required"`
	Key     string `json:"key" binding:"required"`
	Granted bool   `json:"granted"`
}
