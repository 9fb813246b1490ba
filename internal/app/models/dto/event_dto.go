package dto

import (
	"time"

	"github.com/yigit/unilink/internal/app/models"
)

// EventListRequest filters the event list
type EventListRequest struct {
	// Upcoming hides events that started before today
	Upcoming bool `form:"upcoming"`
	Limit    int  `form:"limit" binding:"omitempty,min=1,max=100"`
}

// CreateEventRequest describes an event published by an operator
type CreateEventRequest struct {
	Title       string    `json:"title" binding:"required,notblank,max=200"`
	Description string    `json:"description"`
	HostedBy    string    `json:"hostedBy" binding:"required,notblank,max=150"`
	Location    string    `json:"location" binding:"max=150"`
	ImageURL    string    `json:"imageUrl" binding:"omitempty,url"`
	StartDate   time.Time `json:"startDate" binding:"required"`
	StartTime   string    `json:"time" example:"10:00 AM"`
	CreatedBy   string    `json:"createdBy,omitempty"`
}

// EventResponse is one event card
type EventResponse struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	HostedBy    string    `json:"hostedBy"`
	Location    string    `json:"location,omitempty"`
	ImageURL    string    `json:"imageUrl,omitempty"`
	StartDate   time.Time `json:"startDate"`
	StartTime   string    `json:"time,omitempty"`
	IsNew       bool      `json:"isNew"`
	CreatedAt   time.Time `json:"createdAt"`
}

// NewEventResponse maps an event, flagging it new relative to now
func NewEventResponse(e models.Event, now time.Time) EventResponse {
	return EventResponse{
		ID:          e.ID,
		Title:       e.Title,
		Description: e.Description,
		HostedBy:    e.HostedBy,
		Location:    e.Location,
		ImageURL:    e.ImageURL,
		StartDate:   e.StartDate,
		StartTime:   e.StartTime,
		IsNew:       e.IsNew(now),
		CreatedAt:   e.CreatedAt,
	}
}

// EventListResponse is the event list with the number carrying the new badge
type EventListResponse struct {
	Events   []EventResponse `json:"events"`
	NewCount int             `json:"newCount"`
	Error    string          `json:"error,omitempty"`
}

// NewEventListResponse maps events and counts the new ones
func NewEventListResponse(events []models.Event, now time.Time) EventListResponse {
	resp := EventListResponse{Events: make([]EventResponse, 0, len(events))}
	for _, e := range events {
		r := NewEventResponse(e, now)
		if r.IsNew {
			resp.NewCount++
		}
		resp.Events = append(resp.Events, r)
	}
	return resp
}
