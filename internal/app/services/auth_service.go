package services

import (
	"context"
	"crypto/subtle"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/yigit/unilink/internal/app/models"
	"github.com/yigit/unilink/internal/app/models/dto"
	"github.com/yigit/unilink/internal/pkg/apperrors"
	"github.com/yigit/unilink/internal/pkg/auth"
	"github.com/yigit/unilink/internal/pkg/validation"
)

// DefaultOTPValidity is how long an issued one-time code stays usable
const DefaultOTPValidity = 72 * time.Hour

// AuthService handles authentication operations
type AuthService struct {
	lecturers  LecturerStore
	jwtService *auth.JWTService
	now        Clock
	logger     zerolog.Logger
}

// NewAuthService creates a new AuthService
func NewAuthService(lecturers LecturerStore, jwtService *auth.JWTService, now Clock, logger zerolog.Logger) *AuthService {
	return &AuthService{
		lecturers:  lecturers,
		jwtService: jwtService,
		now:        now,
		logger:     logger,
	}
}

func invalidCredentials() error {
	return apperrors.NewCustomError(apperrors.ErrInvalidCredentials, "invalid email or password")
}

// Login authenticates a lecturer by email with either the password or, while
// no password is set, the one-time code (the lecturer's NIC) before it expires
func (s *AuthService) Login(ctx context.Context, req dto.LoginRequest) (*dto.AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	lecturer, err := s.lecturers.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperrors.ErrResourceNotFound) {
			s.logger.Warn().Str("email", email).Msg("Login attempt for unknown email")
			return nil, invalidCredentials()
		}
		return nil, err
	}

	if lecturer.Status == models.AccountDeactive {
		s.logger.Warn().Str("lecturerID", lecturer.ID).Msg("Login refused for deactivated account")
		return nil, apperrors.NewCustomError(apperrors.ErrAccountDisabled, "your account is deactivated, please contact the administrator")
	}

	passwordRequired := false
	if lecturer.HasPassword() {
		if !auth.CheckPassword(*lecturer.PasswordHash, req.Password) {
			s.logger.Warn().Str("lecturerID", lecturer.ID).Msg("Login failed: wrong password")
			return nil, invalidCredentials()
		}
	} else {
		if lecturer.NIC == "" || subtle.ConstantTimeCompare([]byte(req.Password), []byte(lecturer.NIC)) != 1 {
			s.logger.Warn().Str("lecturerID", lecturer.ID).Msg("Login failed: wrong one-time code")
			return nil, invalidCredentials()
		}
		if !lecturer.OTPValid(s.now()) {
			s.logger.Warn().Str("lecturerID", lecturer.ID).Msg("Login failed: one-time code expired")
			return nil, apperrors.NewCustomError(apperrors.ErrOTPExpired, "one-time code is expired, ask the administrator for a new one")
		}
		passwordRequired = true
	}

	token, expiresIn, err := s.jwtService.GenerateToken(auth.Subject{
		LecturerID:      lecturer.ID,
		InstitutionalID: lecturer.LecturerID,
		Email:           lecturer.Email,
	})
	if err != nil {
		s.logger.Error().Err(err).Str("lecturerID", lecturer.ID).Msg("Failed to generate token")
		return nil, err
	}

	s.logger.Info().Str("lecturerID", lecturer.ID).Bool("otp", passwordRequired).Msg("Lecturer logged in")
	resp := dto.NewAuthResponse(token, expiresIn, lecturer, passwordRequired)
	return &resp, nil
}

// SetPassword sets the session lecturer's password. Replacing an existing
// password requires the current one.
func (s *AuthService) SetPassword(ctx context.Context, session Session, req dto.SetPasswordRequest) error {
	lecturer, err := s.lecturers.GetByID(ctx, session.LecturerID)
	if err != nil {
		return err
	}
	if lecturer.HasPassword() && !auth.CheckPassword(*lecturer.PasswordHash, req.CurrentPassword) {
		return apperrors.NewCustomError(apperrors.ErrInvalidCredentials, "current password is incorrect")
	}
	return s.storePassword(ctx, lecturer, req.NewPassword)
}

// ResetPassword sets a lecturer's password by email, for operators
func (s *AuthService) ResetPassword(ctx context.Context, email, password string) error {
	lecturer, err := s.lecturers.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return err
	}
	return s.storePassword(ctx, lecturer, password)
}

func (s *AuthService) storePassword(ctx context.Context, lecturer *models.Lecturer, password string) error {
	if !validation.IsStrongPassword(password) {
		return apperrors.NewValidationError("newPassword", "password is too weak")
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		s.logger.Error().Err(err).Str("lecturerID", lecturer.ID).Msg("Failed to hash password")
		return err
	}
	if err := s.lecturers.SetPasswordHash(ctx, lecturer.ID, hash); err != nil {
		return err
	}
	s.logger.Info().Str("lecturerID", lecturer.ID).Msg("Password updated")
	return nil
}

// IssueOTP opens the one-time code window for the lecturer with this email
func (s *AuthService) IssueOTP(ctx context.Context, email string, validity time.Duration) (time.Time, error) {
	if validity <= 0 {
		validity = DefaultOTPValidity
	}
	lecturer, err := s.lecturers.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return time.Time{}, err
	}
	expiry := s.now().Add(validity)
	if err := s.lecturers.SetOTPExpiry(ctx, lecturer.ID, expiry); err != nil {
		return time.Time{}, err
	}
	s.logger.Info().Str("lecturerID", lecturer.ID).Time("expiry", expiry).Msg("One-time code issued")
	return expiry, nil
}
