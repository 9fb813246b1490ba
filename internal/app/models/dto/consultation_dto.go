package dto

import (
	"time"

	"github.com/yigit/unilink/internal/app/models"
	"github.com/yigit/unilink/internal/domain"
)

// ConsultationListRequest filters the lecturer's consultation list
type ConsultationListRequest struct {
	Status string `form:"status" binding:"omitempty,oneof=pending accepted declined started ended"`
	Search string `form:"search" binding:"max=100"`
	Limit  int    `form:"limit" binding:"omitempty,min=1,max=200"`
}

// AcceptConsultationRequest schedules a pending consultation
type AcceptConsultationRequest struct {
	MeetingType string    `json:"meetingType" binding:"required,oneof=in-person online" example:"in-person"`
	ScheduledAt time.Time `json:"scheduledAt" binding:"required" example:"2026-03-02T10:00:00+05:30"`
	Location    string    `json:"location" binding:"max=200" example:"Room 204, Science Block"`
	Notes       string    `json:"notes" binding:"max=1000"`
}

// DeclineConsultationRequest declines a pending consultation
type DeclineConsultationRequest struct {
	Reason string `json:"reason" binding:"max=1000"`
}

// ConsultationResponse is a consultation with its requesting student
type ConsultationResponse struct {
	ID             string          `json:"id"`
	StudentID      string          `json:"studentId"`
	LecturerID     string          `json:"lecturerId"`
	Topic          string          `json:"topic"`
	Description    string          `json:"description"`
	MeetingType    string          `json:"meetingType" enums:"in-person,online"`
	PreferredDates []string        `json:"preferredDates"`
	Priority       string          `json:"priority,omitempty" enums:"high,medium,low"`
	Status         string          `json:"status" enums:"pending,accepted,declined,started,ended"`
	SessionStatus  string          `json:"sessionStatus" enums:"not-started,started,ended"`
	Phase          string          `json:"phase" example:"scheduled"`
	ScheduledAt    *time.Time      `json:"scheduledDateTime,omitempty"`
	Location       string          `json:"location,omitempty"`
	LecturerNotes  string          `json:"lecturerNotes,omitempty"`
	DeclineReason  string          `json:"declineReason,omitempty"`
	CreatedAt      time.Time       `json:"createdAt"`
	AcceptedAt     *time.Time      `json:"acceptedAt,omitempty"`
	StartedAt      *time.Time      `json:"sessionStartTime,omitempty"`
	EndedAt        *time.Time      `json:"sessionEndTime,omitempty"`
	Student        *StudentSummary `json:"student,omitempty"`
}

// NewConsultationResponse maps a consultation and optional student profile
func NewConsultationResponse(c domain.Consultation, student *models.Student) ConsultationResponse {
	dates := c.PreferredDates
	if dates == nil {
		dates = []string{}
	}
	return ConsultationResponse{
		ID:             c.ID,
		StudentID:      c.StudentID,
		LecturerID:     c.LecturerID,
		Topic:          c.Topic,
		Description:    c.Description,
		MeetingType:    string(c.Mode),
		PreferredDates: dates,
		Priority:       string(c.Priority),
		Status:         string(c.Status),
		SessionStatus:  string(c.Session()),
		Phase:          c.Phase().String(),
		ScheduledAt:    c.ScheduledAt,
		Location:       c.Location,
		LecturerNotes:  c.LecturerNotes,
		DeclineReason:  c.DeclineReason,
		CreatedAt:      c.CreatedAt,
		AcceptedAt:     c.AcceptedAt,
		StartedAt:      c.StartedAt,
		EndedAt:        c.EndedAt,
		Student:        NewStudentSummary(student),
	}
}

// ConsultationCountsResponse holds per-status totals
type ConsultationCountsResponse struct {
	Pending  int `json:"pending"`
	Accepted int `json:"accepted"`
	Declined int `json:"declined"`
	Started  int `json:"started"`
	Ended    int `json:"ended"`
	Total    int `json:"total"`
}

// NewConsultationCountsResponse flattens a status count map
func NewConsultationCountsResponse(counts map[domain.Status]int) ConsultationCountsResponse {
	r := ConsultationCountsResponse{
		Pending:  counts[domain.StatusPending],
		Accepted: counts[domain.StatusAccepted],
		Declined: counts[domain.StatusDeclined],
		Started:  counts[domain.StatusStarted],
		Ended:    counts[domain.StatusEnded],
	}
	r.Total = r.Pending + r.Accepted + r.Declined + r.Started + r.Ended
	return r
}

// ConsultationActionsResponse tells the client which session buttons to enable
type ConsultationActionsResponse struct {
	Phase    string    `json:"phase" example:"scheduled"`
	CanStart bool      `json:"canStart"`
	CanEnd   bool      `json:"canEnd"`
	At       time.Time `json:"evaluatedAt"`
}

// StartConsultationResponse carries the started consultation and, for
// online sessions, the meeting link to open
type StartConsultationResponse struct {
	Consultation ConsultationResponse `json:"consultation"`
	MeetLink     string               `json:"meetLink,omitempty"`
}

// ConsultationFeedResponse is one push of the live consultation list
type ConsultationFeedResponse struct {
	Consultations []ConsultationResponse `json:"consultations"`
	Error         string                 `json:"error,omitempty"`
}
