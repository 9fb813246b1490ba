package models

import "time"

// NewEventWindow is how long after creation an event carries the "new" badge
const NewEventWindow = 72 * time.Hour

// EventStatus controls whether an event is listed
type EventStatus string

const (
	EventActive   EventStatus = "Active"
	EventInactive EventStatus = "Inactive"
)

// Event is a campus event published by administrators
type Event struct {
	ID          string      `json:"id" db:"id"`
	Title       string      `json:"title" db:"title"`
	Description string      `json:"description" db:"description"`
	HostedBy    string      `json:"hostedBy" db:"hosted_by"`
	Location    string      `json:"location" db:"location"`
	ImageURL    string      `json:"imageUrl" db:"image_url"`
	StartDate   time.Time   `json:"startDate" db:"start_date"`
	StartTime   string      `json:"time" db:"start_time"`
	Status      EventStatus `json:"status" db:"status"`
	CreatedBy   string      `json:"createdBy,omitempty" db:"created_by"`
	CreatedAt   time.Time   `json:"createdAt" db:"created_at"`
}

// IsNew reports whether the event was created within NewEventWindow of now.
// Creation times ahead of now count as new.
func (e Event) IsNew(now time.Time) bool {
	if e.CreatedAt.IsZero() {
		return false
	}
	return now.Sub(e.CreatedAt) <= NewEventWindow
}
