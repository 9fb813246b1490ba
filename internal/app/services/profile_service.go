package services

import (
	"context"
	"io"
	"strings"

	"github.com/rs/zerolog"
	"github.com/yigit/unilink/internal/app/models/dto"
	"github.com/yigit/unilink/internal/app/repositories/user"
	"github.com/yigit/unilink/internal/pkg/apperrors"
	"github.com/yigit/unilink/internal/pkg/validation"
)

// ProfileService defines operations on the session lecturer's profile
type ProfileService interface {
	Get(ctx context.Context, session Session) (*dto.ProfileResponse, error)
	Update(ctx context.Context, session Session, req dto.UpdateProfileRequest) (*dto.ProfileResponse, error)
	ToggleStatus(ctx context.Context, session Session) (*dto.ProfileResponse, error)
	UploadImage(ctx context.Context, session Session, image io.Reader, filename string) (*dto.ProfileResponse, error)
	RegisterPushToken(ctx context.Context, session Session, req dto.PushTokenRequest) error
}

// profileServiceImpl implements ProfileService
type profileServiceImpl struct {
	lecturers   LecturerStore
	attachments *Attachments
	logger      zerolog.Logger
}

// NewProfileService creates a new ProfileService
func NewProfileService(lecturers LecturerStore, attachments *Attachments, logger zerolog.Logger) ProfileService {
	return &profileServiceImpl{
		lecturers:   lecturers,
		attachments: attachments,
		logger:      logger,
	}
}

func (s *profileServiceImpl) reload(ctx context.Context, id string) (*dto.ProfileResponse, error) {
	lecturer, err := s.lecturers.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := dto.NewProfileResponse(lecturer)
	return &resp, nil
}

// Get returns the lecturer's profile
func (s *profileServiceImpl) Get(ctx context.Context, session Session) (*dto.ProfileResponse, error) {
	return s.reload(ctx, session.LecturerID)
}

// Update replaces the editable profile fields; name and NIC are required
func (s *profileServiceImpl) Update(ctx context.Context, session Session, req dto.UpdateProfileRequest) (*dto.ProfileResponse, error) {
	name := strings.TrimSpace(req.Name)
	nic := strings.TrimSpace(req.NIC)
	if name == "" {
		return nil, apperrors.NewValidationError("name", "name is required")
	}
	if !validation.IsNIC(nic) {
		return nil, apperrors.NewValidationError("nic", "a valid NIC is required")
	}

	hours := make([]string, 0, len(req.OfficeHours))
	for _, h := range req.OfficeHours {
		if h = strings.TrimSpace(h); h != "" {
			hours = append(hours, h)
		}
	}

	err := s.lecturers.UpdateProfile(ctx, session.LecturerID, user.ProfileUpdate{
		Name:           name,
		NIC:            nic,
		Designation:    strings.TrimSpace(req.Designation),
		OfficeLocation: strings.TrimSpace(req.OfficeLocation),
		GoogleMeetLink: strings.TrimSpace(req.GoogleMeetLink),
		OfficeHours:    hours,
	})
	if err != nil {
		s.logger.Error().Err(err).Str("lecturerID", session.LecturerID).Msg("Failed to update profile")
		return nil, err
	}
	s.logger.Info().Str("lecturerID", session.LecturerID).Msg("Profile updated")
	return s.reload(ctx, session.LecturerID)
}

// ToggleStatus flips the lecturer between Active and Deactive
func (s *profileServiceImpl) ToggleStatus(ctx context.Context, session Session) (*dto.ProfileResponse, error) {
	lecturer, err := s.lecturers.GetByID(ctx, session.LecturerID)
	if err != nil {
		return nil, err
	}
	next := lecturer.Status.Toggle()
	if err := s.lecturers.SetStatus(ctx, lecturer.ID, next); err != nil {
		return nil, err
	}
	s.logger.Info().Str("lecturerID", lecturer.ID).Str("status", string(next)).Msg("Account status changed")

	lecturer.Status = next
	resp := dto.NewProfileResponse(lecturer)
	return &resp, nil
}

// UploadImage replaces the profile picture
func (s *profileServiceImpl) UploadImage(ctx context.Context, session Session, image io.Reader, filename string) (*dto.ProfileResponse, error) {
	url, err := s.attachments.UploadImage(ctx, image, filename)
	if err != nil {
		return nil, err
	}
	if err := s.lecturers.SetProfileImage(ctx, session.LecturerID, url); err != nil {
		return nil, err
	}
	return s.reload(ctx, session.LecturerID)
}

// RegisterPushToken stores the device push token
func (s *profileServiceImpl) RegisterPushToken(ctx context.Context, session Session, req dto.PushTokenRequest) error {
	token := strings.TrimSpace(req.Token)
	if token == "" {
		return apperrors.NewValidationError("token", "token is required")
	}
	return s.lecturers.SetPushToken(ctx, session.LecturerID, token)
}
