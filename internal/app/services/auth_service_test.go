package services

import (
	"context"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/unilink/internal/app/models"
	"github.com/yigit/unilink/internal/app/models/dto"
	"github.com/yigit/unilink/internal/app/services/mocks"
	"github.com/yigit/unilink/internal/pkg/apperrors"
	"github.com/yigit/unilink/internal/pkg/auth"
)

func newAuthFixture(t *testing.T) (*mocks.MockLecturerStore, *AuthService, *auth.JWTService) {
	ctrl := gomock.NewController(t)
	lecturers := mocks.NewMockLecturerStore(ctrl)
	jwtService := auth.NewJWTService(auth.JWTConfig{
		SecretKey:      "test-secret",
		AccessTokenExp: time.Hour,
		TokenIssuer:    "unilink-test",
	})
	return lecturers, NewAuthService(lecturers, jwtService, fixedClock, zerolog.Nop()), jwtService
}

func lecturerWithPassword(t *testing.T, password string) *models.Lecturer {
	t.Helper()
	hash, err := auth.HashPassword(password)
	require.NoError(t, err)
	return &models.Lecturer{
		ID:           lecturerID,
		LecturerID:   "L0042",
		Email:        "nimal@uni.lk",
		Name:         "Dr. Nimal Perera",
		NIC:          "912345678V",
		Status:       models.AccountActive,
		PasswordHash: &hash,
	}
}

func lecturerWithOTP(expiry time.Time) *models.Lecturer {
	return &models.Lecturer{
		ID:         lecturerID,
		LecturerID: "L0042",
		Email:      "nimal@uni.lk",
		Name:       "Dr. Nimal Perera",
		NIC:        "912345678V",
		Status:     models.AccountActive,
		OTPExpiry:  &expiry,
	}
}

func TestAuthService_Login(t *testing.T) {
	t.Run("password login issues a token", func(t *testing.T) {
		lecturers, svc, jwtService := newAuthFixture(t)
		lecturers.EXPECT().GetByEmail(gomock.Any(), "nimal@uni.lk").Return(lecturerWithPassword(t, "Secret123"), nil)

		resp, err := svc.Login(context.Background(), dto.LoginRequest{Email: "  Nimal@Uni.lk ", Password: "Secret123"})
		require.NoError(t, err)
		assert.False(t, resp.PasswordRequired)
		assert.Equal(t, "Bearer", resp.Token.TokenType)

		claims, err := jwtService.ValidateToken(resp.Token.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, lecturerID, claims.LecturerID)
		assert.Equal(t, "L0042", claims.InstitutionalID)
	})

	t.Run("wrong password", func(t *testing.T) {
		lecturers, svc, _ := newAuthFixture(t)
		lecturers.EXPECT().GetByEmail(gomock.Any(), "nimal@uni.lk").Return(lecturerWithPassword(t, "Secret123"), nil)

		_, err := svc.Login(context.Background(), dto.LoginRequest{Email: "nimal@uni.lk", Password: "912345678V"})
		assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
	})

	t.Run("one-time code before expiry requires a new password", func(t *testing.T) {
		lecturers, svc, _ := newAuthFixture(t)
		lecturers.EXPECT().GetByEmail(gomock.Any(), "nimal@uni.lk").Return(lecturerWithOTP(testNow.Add(time.Hour)), nil)

		resp, err := svc.Login(context.Background(), dto.LoginRequest{Email: "nimal@uni.lk", Password: "912345678V"})
		require.NoError(t, err)
		assert.True(t, resp.PasswordRequired)
	})

	t.Run("expired one-time code", func(t *testing.T) {
		lecturers, svc, _ := newAuthFixture(t)
		lecturers.EXPECT().GetByEmail(gomock.Any(), "nimal@uni.lk").Return(lecturerWithOTP(testNow.Add(-time.Minute)), nil)

		_, err := svc.Login(context.Background(), dto.LoginRequest{Email: "nimal@uni.lk", Password: "912345678V"})
		assert.ErrorIs(t, err, apperrors.ErrOTPExpired)
	})

	t.Run("wrong one-time code", func(t *testing.T) {
		lecturers, svc, _ := newAuthFixture(t)
		lecturers.EXPECT().GetByEmail(gomock.Any(), "nimal@uni.lk").Return(lecturerWithOTP(testNow.Add(time.Hour)), nil)

		_, err := svc.Login(context.Background(), dto.LoginRequest{Email: "nimal@uni.lk", Password: "000000000V"})
		assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
	})

	t.Run("deactivated account", func(t *testing.T) {
		lecturers, svc, _ := newAuthFixture(t)
		l := lecturerWithPassword(t, "Secret123")
		l.Status = models.AccountDeactive
		lecturers.EXPECT().GetByEmail(gomock.Any(), "nimal@uni.lk").Return(l, nil)

		_, err := svc.Login(context.Background(), dto.LoginRequest{Email: "nimal@uni.lk", Password: "Secret123"})
		assert.ErrorIs(t, err, apperrors.ErrAccountDisabled)
	})

	t.Run("unknown email", func(t *testing.T) {
		lecturers, svc, _ := newAuthFixture(t)
		lecturers.EXPECT().GetByEmail(gomock.Any(), "ghost@uni.lk").
			Return(nil, apperrors.NewResourceNotFoundError("lecturer not found"))

		_, err := svc.Login(context.Background(), dto.LoginRequest{Email: "ghost@uni.lk", Password: "x"})
		assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
	})
}

func TestAuthService_SetPassword(t *testing.T) {
	session := Session{LecturerID: lecturerID}

	t.Run("first password after one-time code", func(t *testing.T) {
		lecturers, svc, _ := newAuthFixture(t)
		lecturers.EXPECT().GetByID(gomock.Any(), lecturerID).Return(lecturerWithOTP(testNow.Add(time.Hour)), nil)
		lecturers.EXPECT().SetPasswordHash(gomock.Any(), lecturerID, gomock.Any()).
			DoAndReturn(func(_ context.Context, _ string, hash string) error {
				assert.True(t, auth.CheckPassword(hash, "NewSecret1"))
				return nil
			})

		require.NoError(t, svc.SetPassword(context.Background(), session, dto.SetPasswordRequest{NewPassword: "NewSecret1"}))
	})

	t.Run("replacing requires the current password", func(t *testing.T) {
		lecturers, svc, _ := newAuthFixture(t)
		lecturers.EXPECT().GetByID(gomock.Any(), lecturerID).Return(lecturerWithPassword(t, "Secret123"), nil)

		err := svc.SetPassword(context.Background(), session, dto.SetPasswordRequest{CurrentPassword: "nope", NewPassword: "NewSecret1"})
		assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
	})

	t.Run("low entropy password is refused", func(t *testing.T) {
		lecturers, svc, _ := newAuthFixture(t)
		lecturers.EXPECT().GetByID(gomock.Any(), lecturerID).Return(lecturerWithOTP(testNow.Add(time.Hour)), nil)

		err := svc.SetPassword(context.Background(), session, dto.SetPasswordRequest{NewPassword: "password1"})
		assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
	})
}

func TestAuthService_ResetPasswordRefusesWeakPassword(t *testing.T) {
	lecturers, svc, _ := newAuthFixture(t)
	lecturers.EXPECT().GetByEmail(gomock.Any(), "nimal@uni.lk").Return(lecturerWithOTP(testNow), nil)

	err := svc.ResetPassword(context.Background(), " Nimal@uni.lk ", "12345678a")
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
}

func TestAuthService_IssueOTP(t *testing.T) {
	lecturers, svc, _ := newAuthFixture(t)
	lecturers.EXPECT().GetByEmail(gomock.Any(), "nimal@uni.lk").Return(lecturerWithOTP(testNow), nil)
	lecturers.EXPECT().SetOTPExpiry(gomock.Any(), lecturerID, testNow.Add(DefaultOTPValidity)).Return(nil)

	expiry, err := svc.IssueOTP(context.Background(), "nimal@uni.lk", 0)
	require.NoError(t, err)
	assert.Equal(t, testNow.Add(DefaultOTPValidity), expiry)
}
