package models

import "time"

// Community is a lecturer group chat
type Community struct {
	ID          string    `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Type        string    `json:"type" db:"type"`
	Description string    `json:"description" db:"description"`
	ImageURL    string    `json:"imageUrl,omitempty" db:"image_url"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`

	// Related entities
	MemberCount int `json:"memberCount"`
}

// CommunityMember links a lecturer to a community
type CommunityMember struct {
	CommunityID string    `json:"communityId" db:"community_id"`
	LecturerID  string    `json:"lecturerId" db:"lecturer_id"`
	JoinedAt    time.Time `json:"joinedAt" db:"joined_at"`
}

// CommunityMessageType is the payload kind of a community message
type CommunityMessageType string

const (
	CommunityMessageText  CommunityMessageType = "text"
	CommunityMessageImage CommunityMessageType = "image"
	CommunityMessagePDF   CommunityMessageType = "pdf"
)

// CommunityMessage is one append-only entry in a community chat
type CommunityMessage struct {
	ID          string               `json:"id" db:"id"`
	CommunityID string               `json:"communityId" db:"community_id"`
	UserID      string               `json:"userId" db:"user_id"`
	UserName    string               `json:"userName" db:"user_name"`
	Type        CommunityMessageType `json:"type" db:"type"`
	Text        string               `json:"messageText,omitempty" db:"message_text"`
	FileURL     string               `json:"fileUrl,omitempty" db:"file_url"`
	FileName    string               `json:"fileName,omitempty" db:"file_name"`
	Timestamp   time.Time            `json:"timestamp" db:"timestamp"`
}

// CommunityRequestStatus tracks an administrator's decision
type CommunityRequestStatus string

const (
	CommunityRequestPending  CommunityRequestStatus = "pending"
	CommunityRequestApproved CommunityRequestStatus = "approved"
	CommunityRequestRejected CommunityRequestStatus = "rejected"
)

// CommunityRequest asks administrators to create a new community
type CommunityRequest struct {
	ID            string                 `json:"id" db:"id"`
	LecturerID    string                 `json:"lecturerId" db:"lecturer_id"`
	LecturerName  string                 `json:"lecturerName" db:"lecturer_name"`
	Name          string                 `json:"name" db:"name"`
	Type          string                 `json:"type" db:"type"`
	Description   string                 `json:"description" db:"description"`
	Justification string                 `json:"justification" db:"justification"`
	Subject       string                 `json:"subject" db:"subject"`
	Status        CommunityRequestStatus `json:"status" db:"status"`
	CreatedAt     time.Time              `json:"createdAt" db:"created_at"`
}

// CommunityRequestSubject is the subject line administrators see
func CommunityRequestSubject(name string) string {
	return "Community Creation Request: " + name
}
