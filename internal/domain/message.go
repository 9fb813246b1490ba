package domain

import (
	"strings"
	"time"

	"github.com/yigit/unilink/internal/pkg/apperrors"
)

// MessageType classifies a direct message payload
type MessageType string

const (
	MessageText      MessageType = "text"
	MessageImage     MessageType = "image"
	MessageImageText MessageType = "image_text"
)

// ImagePreview is shown in place of an image-only message
const ImagePreview = "📷 Image"

// Message is a direct message between two parties.
// A zero CreatedAt means the server timestamp has not resolved yet.
type Message struct {
	ID         string
	SenderID   string
	ReceiverID string
	Type       MessageType
	Text       string
	ImageURL   string
	CreatedAt  time.Time
	IsRead     bool
}

// MessageTypeFor picks the type implied by which payloads are present
func MessageTypeFor(text, imageURL string) MessageType {
	hasText := strings.TrimSpace(text) != ""
	switch {
	case hasText && imageURL != "":
		return MessageImageText
	case imageURL != "":
		return MessageImage
	default:
		return MessageText
	}
}

// Validate checks the payload against the message type
func (m Message) Validate() error {
	if m.SenderID == "" || m.ReceiverID == "" {
		return apperrors.NewValidationError("receiverId", "sender and receiver are required")
	}
	if m.SenderID == m.ReceiverID {
		return apperrors.NewValidationError("receiverId", "cannot send a message to yourself")
	}

	hasText := strings.TrimSpace(m.Text) != ""
	hasImage := m.ImageURL != ""
	switch m.Type {
	case MessageText:
		if !hasText || hasImage {
			return apperrors.NewValidationError("text", "text messages carry text only")
		}
	case MessageImage:
		if !hasImage || hasText {
			return apperrors.NewValidationError("imageUrl", "image messages carry an image only")
		}
	case MessageImageText:
		if !hasImage || !hasText {
			return apperrors.NewValidationError("text", "image_text messages carry both text and an image")
		}
	default:
		return apperrors.NewValidationError("messageType", "unknown message type")
	}
	return nil
}

// Preview is the one-line summary used in chat lists
func (m Message) Preview() string {
	if m.Text != "" {
		return m.Text
	}
	return ImagePreview
}

// Involves reports whether the message belongs to the thread between a and b
func (m Message) Involves(a, b string) bool {
	return (m.SenderID == a && m.ReceiverID == b) || (m.SenderID == b && m.ReceiverID == a)
}

// createdBefore orders resolved timestamps ascending with unresolved ones last
func createdBefore(a, b Message) bool {
	switch {
	case a.CreatedAt.IsZero():
		return false
	case b.CreatedAt.IsZero():
		return true
	default:
		return a.CreatedAt.Before(b.CreatedAt)
	}
}
