package dto

import (
	"time"

	"github.com/yigit/unilink/internal/app/models"
)

// NotificationResponse is one notification in the lecturer's list
type NotificationResponse struct {
	ID                 string    `json:"id"`
	MessageText        string    `json:"messageText"`
	MessageDescription string    `json:"messageDescription,omitempty"`
	RelatedType        string    `json:"relatedType,omitempty" example:"consultations"`
	RelatedID          string    `json:"relatedId,omitempty"`
	IsRead             bool      `json:"isRead"`
	Timestamp          time.Time `json:"timestamp"`
}

// NewNotificationResponse maps a notification
func NewNotificationResponse(n models.Notification) NotificationResponse {
	return NotificationResponse{
		ID:                 n.ID,
		MessageText:        n.MessageText,
		MessageDescription: n.MessageDescription,
		RelatedType:        n.RelatedType,
		RelatedID:          n.RelatedID,
		IsRead:             n.IsRead,
		Timestamp:          n.Timestamp,
	}
}

// NotificationListResponse is a page of notifications plus the unread total
type NotificationListResponse struct {
	Notifications []NotificationResponse `json:"notifications"`
	UnreadCount   int                    `json:"unreadCount"`
	Pagination    PaginationInfo         `json:"pagination"`
}

// UnreadCountResponse carries a single unread total
type UnreadCountResponse struct {
	UnreadCount int `json:"unreadCount"`
}
