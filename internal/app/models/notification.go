package models

import "time"

// RecipientType identifies who a notification is addressed to
type RecipientType string

const (
	RecipientStudent  RecipientType = "student"
	RecipientLecturer RecipientType = "lecturer"
)

// Notification is an in-app notice shown in a recipient's notification list
type Notification struct {
	ID                 string        `json:"id" db:"id"`
	RecipientType      RecipientType `json:"receiverType" db:"recipient_type"`
	LecturerID         string        `json:"lecturerId" db:"lecturer_id"`
	StudentID          string        `json:"studentId,omitempty" db:"student_id"`
	MessageText        string        `json:"messageText" db:"message_text"`
	MessageDescription string        `json:"messageDescription" db:"message_description"`
	RelatedType        string        `json:"relatedType" db:"related_type"`
	RelatedID          string        `json:"relatedId" db:"related_id"`
	IsRead             bool          `json:"isRead" db:"is_read"`
	Timestamp          time.Time     `json:"timestamp" db:"timestamp"`
}
