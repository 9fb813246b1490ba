package auth

import (
	"context"
	"errors"

	"github.com/yigit/unilink/internal/app/models"
	"github.com/yigit/unilink/internal/pkg/apperrors"
	"github.com/yigit/unilink/internal/pkg/logger"
)

// Errors specific to authorization checks
var (
	ErrNotMember        = errors.New("lecturer is not a member of this community")
	ErrNotOwner         = errors.New("resource belongs to another lecturer")
	ErrAccountNotActive = errors.New("lecturer account is deactivated")
)

// LecturerLookup loads lecturer accounts
type LecturerLookup interface {
	GetByID(ctx context.Context, id string) (*models.Lecturer, error)
}

// MembershipLookup answers community membership questions
type MembershipLookup interface {
	IsMember(ctx context.Context, communityID, lecturerID string) (bool, error)
}

// AuthorizationService handles authorization operations
type AuthorizationService struct {
	lecturers LecturerLookup
	members   MembershipLookup
}

// NewAuthorizationService creates a new AuthorizationService
func NewAuthorizationService(lecturers LecturerLookup, members MembershipLookup) *AuthorizationService {
	return &AuthorizationService{
		lecturers: lecturers,
		members:   members,
	}
}

// ValidateOwner fails unless ownerID is the acting lecturer
func (s *AuthorizationService) ValidateOwner(ownerID, lecturerID, resource string) error {
	if ownerID == "" || ownerID != lecturerID {
		logger.Warn().Str("lecturerID", lecturerID).Str("resource", resource).Msg("Ownership check failed")
		return apperrors.NewCustomError(apperrors.ErrPermissionDenied, "you don't have access to this "+resource).
			WithDetails(map[string]any{"reason": ErrNotOwner.Error()})
	}
	return nil
}

// ValidateMember fails unless the lecturer belongs to the community
func (s *AuthorizationService) ValidateMember(ctx context.Context, communityID, lecturerID string) error {
	ok, err := s.members.IsMember(ctx, communityID, lecturerID)
	if err != nil {
		logger.Error().Err(err).Str("communityID", communityID).Str("lecturerID", lecturerID).Msg("Error checking community membership")
		return err
	}
	if !ok {
		return apperrors.NewCustomError(apperrors.ErrPermissionDenied, ErrNotMember.Error())
	}
	return nil
}

// ActiveLecturer loads the lecturer and fails if the account is deactivated
func (s *AuthorizationService) ActiveLecturer(ctx context.Context, lecturerID string) (*models.Lecturer, error) {
	lecturer, err := s.lecturers.GetByID(ctx, lecturerID)
	if err != nil {
		return nil, err
	}
	if lecturer.Status == models.AccountDeactive {
		return nil, apperrors.NewCustomError(apperrors.ErrAccountDisabled, ErrAccountNotActive.Error())
	}
	return lecturer, nil
}
