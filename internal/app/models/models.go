package models

// AccountStatus is a lecturer's availability flag
type AccountStatus string

const (
	AccountActive   AccountStatus = "Active"
	AccountDeactive AccountStatus = "Deactive"
)

// Toggle flips Active and Deactive
func (s AccountStatus) Toggle() AccountStatus {
	if s == AccountActive {
		return AccountDeactive
	}
	return AccountActive
}

// ParticipantKind tells which directory a chat counterpart lives in
type ParticipantKind string

const (
	ParticipantStudent ParticipantKind = "student"
	ParticipantAdmin   ParticipantKind = "admin"
)
