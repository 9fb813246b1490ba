package models

import (
	"time"
)

// Lecturer defines the lecturer model based on the 'lecturers' table
type Lecturer struct {
	ID             string        `json:"id" db:"id" example:"6b1c0a4e-8b1f-4bbf-9d59-2f7c3f0a1e11"`
	LecturerID     string        `json:"lecturerId" db:"lecturer_id" example:"L0042"`               // institutional id
	Email          string        `json:"email" db:"email" example:"nimal@uni.lk"`
	Name           string        `json:"name" db:"name" example:"Dr. Nimal Perera"`
	NIC            string        `json:"nic" db:"nic" example:"912345678V"`
	Designation    string        `json:"designation" db:"designation" example:"Senior Lecturer"`
	Department     string        `json:"department" db:"department"`
	Faculty        string        `json:"faculty" db:"faculty"`
	OfficeLocation string        `json:"officeLocation" db:"office_location"`
	GoogleMeetLink string        `json:"googleMeetLink" db:"google_meet_link"`
	OfficeHours    []string      `json:"officeHours" db:"office_hours"`
	ProfileImage   string        `json:"profileImg" db:"profile_img"`
	Status         AccountStatus `json:"status" db:"status" example:"Active"`
	PasswordHash   *string       `json:"-" db:"password_hash"`
	OTPExpiry      *time.Time    `json:"-" db:"otp_expiry"`
	ExpoPushToken  string        `json:"-" db:"expo_push_token"`
	CreatedAt      time.Time     `json:"createdAt" db:"created_at"`
	UpdatedAt      time.Time     `json:"updatedAt" db:"updated_at"`
}

// HasPassword reports whether the lecturer has set a password
func (l *Lecturer) HasPassword() bool {
	return l.PasswordHash != nil && *l.PasswordHash != ""
}

// OTPValid reports whether the one-time code login window is still open at now
func (l *Lecturer) OTPValid(now time.Time) bool {
	return l.OTPExpiry != nil && now.Before(*l.OTPExpiry)
}

// Student defines the student model based on the 'students' table
type Student struct {
	ID              string    `json:"id" db:"id"`
	Email           string    `json:"email" db:"email"`
	Name            string    `json:"name" db:"name"`
	InstitutionalID string    `json:"studentId" db:"institutional_id"`
	Degree          string    `json:"degree" db:"degree"`
	ProfileImage    string    `json:"profileImage" db:"profile_image"`
	CreatedAt       time.Time `json:"createdAt" db:"created_at"`
}

// Admin defines the administrator model based on the 'admins' table
type Admin struct {
	ID              string    `json:"id" db:"id"`
	Email           string    `json:"email" db:"email"`
	Name            string    `json:"name" db:"name"`
	InstitutionalID string    `json:"adminId" db:"institutional_id"`
	Department      string    `json:"department" db:"department"`
	UniversityID    string    `json:"universityId" db:"university_id"`
	CreatedAt       time.Time `json:"createdAt" db:"created_at"`
}

// Participant is a chat counterpart resolved from either directory
type Participant struct {
	ID              string          `json:"id"`
	Kind            ParticipantKind `json:"kind"`
	Name            string          `json:"name"`
	Email           string          `json:"email"`
	InstitutionalID string          `json:"institutionalId"`
	ProfileImage    string          `json:"profileImage,omitempty"`
}

// AsParticipant projects a student into the chat directory shape
func (s *Student) AsParticipant() Participant {
	return Participant{
		ID:              s.ID,
		Kind:            ParticipantStudent,
		Name:            s.Name,
		Email:           s.Email,
		InstitutionalID: s.InstitutionalID,
		ProfileImage:    s.ProfileImage,
	}
}

// AsParticipant projects an admin into the chat directory shape
func (a *Admin) AsParticipant() Participant {
	return Participant{
		ID:              a.ID,
		Kind:            ParticipantAdmin,
		Name:            a.Name,
		Email:           a.Email,
		InstitutionalID: a.InstitutionalID,
	}
}
