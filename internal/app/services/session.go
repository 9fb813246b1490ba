package services

import (
	"github.com/google/uuid"
	"github.com/yigit/unilink/internal/pkg/apperrors"
)

// Session identifies the authenticated lecturer for one request. It is built
// by the auth middleware from validated token claims and passed explicitly.
type Session struct {
	LecturerID      string
	InstitutionalID string
	Email           string
}

// Valid reports whether the session carries a lecturer document id
func (s Session) Valid() bool {
	return s.LecturerID != ""
}

// requireID rejects ids that cannot name a stored document
func requireID(field, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return apperrors.NewValidationError(field, field+" must be a valid id")
	}
	return nil
}
