package dto

import (
	"time"

	"github.com/yigit/unilink/internal/app/models"
)

// --- Request DTOs ---

// CommunityTextRequest posts a text message to a community
type CommunityTextRequest struct {
	Text string `json:"text" binding:"required,notblank,max=4000"`
}

// CreateCommunityRequest asks administrators to create a community
type CreateCommunityRequest struct {
	Name          string `json:"name" binding:"required,notblank,max=100" example:"AI Research Circle"`
	Type          string `json:"type" binding:"required,notblank,max=50" example:"Academic"`
	Description   string `json:"description" binding:"required,notblank,max=2000"`
	Justification string `json:"justification" binding:"required,notblank,max=2000"`
}

// --- Response DTOs ---

// CommunityResponse represents basic community information
type CommunityResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Type        string    `json:"type"`
	Description string    `json:"description"`
	ImageURL    string    `json:"imageUrl,omitempty"`
	MemberCount int       `json:"memberCount"`
	CreatedAt   time.Time `json:"createdAt"`
}

// NewCommunityResponse maps a community
func NewCommunityResponse(c models.Community) CommunityResponse {
	return CommunityResponse{
		ID:          c.ID,
		Name:        c.Name,
		Type:        c.Type,
		Description: c.Description,
		ImageURL:    c.ImageURL,
		MemberCount: c.MemberCount,
		CreatedAt:   c.CreatedAt,
	}
}

// CommunityMessageResponse is one community chat entry
type CommunityMessageResponse struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	UserName  string    `json:"userName"`
	Type      string    `json:"type" enums:"text,image,pdf"`
	Text      string    `json:"messageText,omitempty"`
	FileURL   string    `json:"fileUrl,omitempty"`
	FileName  string    `json:"fileName,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Outgoing  bool      `json:"outgoing"`
}

// NewCommunityMessageResponses maps community messages as seen by self
func NewCommunityMessageResponses(msgs []models.CommunityMessage, self string) []CommunityMessageResponse {
	out := make([]CommunityMessageResponse, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, CommunityMessageResponse{
			ID:        m.ID,
			UserID:    m.UserID,
			UserName:  m.UserName,
			Type:      string(m.Type),
			Text:      m.Text,
			FileURL:   m.FileURL,
			FileName:  m.FileName,
			Timestamp: m.Timestamp,
			Outgoing:  m.UserID == self,
		})
	}
	return out
}

// CommunityFeedResponse is a websocket frame with the full community feed
type CommunityFeedResponse struct {
	CommunityID string                     `json:"communityId"`
	Messages    []CommunityMessageResponse `json:"messages"`
	Error       string                     `json:"error,omitempty"`
}

// CommunityRequestResponse is a submitted creation request
type CommunityRequestResponse struct {
	ID            string    `json:"id"`
	Subject       string    `json:"subject"`
	LecturerName  string    `json:"lecturerName"`
	Name          string    `json:"name"`
	Type          string    `json:"type"`
	Description   string    `json:"description"`
	Justification string    `json:"justification"`
	Status        string    `json:"status" enums:"pending,approved,rejected"`
	CreatedAt     time.Time `json:"createdAt"`
}

// NewCommunityRequestResponse maps a creation request
func NewCommunityRequestResponse(r models.CommunityRequest) CommunityRequestResponse {
	return CommunityRequestResponse{
		ID:            r.ID,
		Subject:       r.Subject,
		LecturerName:  r.LecturerName,
		Name:          r.Name,
		Type:          r.Type,
		Description:   r.Description,
		Justification: r.Justification,
		Status:        string(r.Status),
		CreatedAt:     r.CreatedAt,
	}
}
