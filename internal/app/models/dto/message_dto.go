package dto

import (
	"time"

	"github.com/yigit/unilink/internal/domain"
)

// SendTextRequest sends a text message to a counterpart
type SendTextRequest struct {
	Text string `json:"text" binding:"required,notblank,max=4000" example:"See you at 10."`
}

// MessageResponse is one direct message
type MessageResponse struct {
	ID         string     `json:"id"`
	SenderID   string     `json:"senderId"`
	ReceiverID string     `json:"receiverId"`
	Type       string     `json:"messageType" enums:"text,image,image_text"`
	Text       string     `json:"text,omitempty"`
	ImageURL   string     `json:"imageUrl,omitempty"`
	CreatedAt  *time.Time `json:"createdAt"`                                 // null until the server timestamp resolves
	IsRead     bool       `json:"isRead"`
	Outgoing   bool       `json:"outgoing"`
}

// NewMessageResponse maps a message as seen by self
func NewMessageResponse(m domain.Message, self string) MessageResponse {
	var created *time.Time
	if !m.CreatedAt.IsZero() {
		t := m.CreatedAt
		created = &t
	}
	return MessageResponse{
		ID:         m.ID,
		SenderID:   m.SenderID,
		ReceiverID: m.ReceiverID,
		Type:       string(m.Type),
		Text:       m.Text,
		ImageURL:   m.ImageURL,
		CreatedAt:  created,
		IsRead:     m.IsRead,
		Outgoing:   m.SenderID == self,
	}
}

// ThreadResponse is the merged two-way conversation with one counterpart
type ThreadResponse struct {
	CounterpartID string            `json:"counterpartId"`
	Messages      []MessageResponse `json:"messages"`
	Error         string            `json:"error,omitempty"`
}

// NewThreadResponse maps a merged thread in display order
func NewThreadResponse(self, counterpart string, msgs []domain.Message) ThreadResponse {
	out := make([]MessageResponse, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, NewMessageResponse(m, self))
	}
	return ThreadResponse{CounterpartID: counterpart, Messages: out}
}

// MarkReadResponse reports how many messages were marked read
type MarkReadResponse struct {
	Updated int `json:"updated"`
}

// InboxEntryResponse is one chat list row
type InboxEntryResponse struct {
	Participant   ParticipantResponse `json:"participant"`
	UnreadCount   int                 `json:"unreadCount"`
	LastMessage   string              `json:"lastMessage"`
	LastMessageAt *time.Time          `json:"lastMessageAt"`
}

// InboxResponse splits chat list rows by directory
type InboxResponse struct {
	Students    []InboxEntryResponse `json:"students"`
	Admins      []InboxEntryResponse `json:"admins"`
	TotalUnread int                  `json:"totalUnread"`
}

// ParticipantSearchRequest searches the chat directory
type ParticipantSearchRequest struct {
	Query string `form:"q" binding:"max=100"`
	Limit int    `form:"limit" binding:"omitempty,min=1,max=100"`
}
