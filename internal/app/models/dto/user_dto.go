package dto

import (
	"github.com/yigit/unilink/internal/app/models"
)

// ProfileResponse is the lecturer's own profile
type ProfileResponse struct {
	ID             string   `json:"id"`
	LecturerID     string   `json:"lecturerId" example:"L0042"`
	Email          string   `json:"email"`
	Name           string   `json:"name"`
	NIC            string   `json:"nic"`
	Designation    string   `json:"designation"`
	Department     string   `json:"department"`
	Faculty        string   `json:"faculty"`
	OfficeLocation string   `json:"officeLocation"`
	GoogleMeetLink string   `json:"googleMeetLink"`
	OfficeHours    []string `json:"officeHours"`
	ProfileImage   string   `json:"profileImg"`
	Status         string   `json:"status" example:"Active" enums:"Active,Deactive"`
	HasPassword    bool     `json:"hasPassword"`
}

// NewProfileResponse maps a lecturer to its profile view
func NewProfileResponse(l *models.Lecturer) ProfileResponse {
	if l == nil {
		return ProfileResponse{}
	}
	hours := l.OfficeHours
	if hours == nil {
		hours = []string{}
	}
	return ProfileResponse{
		ID:             l.ID,
		LecturerID:     l.LecturerID,
		Email:          l.Email,
		Name:           l.Name,
		NIC:            l.NIC,
		Designation:    l.Designation,
		Department:     l.Department,
		Faculty:        l.Faculty,
		OfficeLocation: l.OfficeLocation,
		GoogleMeetLink: l.GoogleMeetLink,
		OfficeHours:    hours,
		ProfileImage:   l.ProfileImage,
		Status:         string(l.Status),
		HasPassword:    l.HasPassword(),
	}
}

// UpdateProfileRequest represents profile update data
type UpdateProfileRequest struct {
	Name           string   `json:"name" binding:"required,personname" example:"Dr. Nimal Perera"`
	NIC            string   `json:"nic" binding:"required,nic" example:"912345678V"`
	Designation    string   `json:"designation" binding:"max=100"`
	OfficeLocation string   `json:"officeLocation" binding:"max=200"`
	GoogleMeetLink string   `json:"googleMeetLink" binding:"omitempty,url"`
	OfficeHours    []string `json:"officeHours" binding:"max=20,dive,max=100"`
}

// PushTokenRequest registers the device push token
type PushTokenRequest struct {
	Token string `json:"token" binding:"required,notblank" example:"ExponentPushToken[xxxxxxxxxxxxxxxxxxxxxx]"`
}

// ParticipantResponse is a student or administrator in the chat directory
type ParticipantResponse struct {
	ID              string `json:"id"`
	Kind            string `json:"kind" enums:"student,admin"`
	Name            string `json:"name"`
	Email           string `json:"email"`
	InstitutionalID string `json:"institutionalId"`
	ProfileImage    string `json:"profileImage,omitempty"`
}

// NewParticipantResponse maps a directory entry
func NewParticipantResponse(p models.Participant) ParticipantResponse {
	return ParticipantResponse{
		ID:              p.ID,
		Kind:            string(p.Kind),
		Name:            p.Name,
		Email:           p.Email,
		InstitutionalID: p.InstitutionalID,
		ProfileImage:    p.ProfileImage,
	}
}

// StudentSummary is the student profile attached to a consultation
type StudentSummary struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	StudentID    string `json:"studentId"`
	Degree       string `json:"degree,omitempty"`
	ProfileImage string `json:"profileImage,omitempty"`
}

// NewStudentSummary maps a student, returning nil for nil
func NewStudentSummary(s *models.Student) *StudentSummary {
	if s == nil {
		return nil
	}
	return &StudentSummary{
		ID:           s.ID,
		Name:         s.Name,
		Email:        s.Email,
		StudentID:    s.InstitutionalID,
		Degree:       s.Degree,
		ProfileImage: s.ProfileImage,
	}
}
