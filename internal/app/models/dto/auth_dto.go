package dto

import "github.com/yigit/unilink/internal/app/models"

// LoginRequest represents login credentials. Password carries either the
// lecturer's password or, before one is set, the one-time code.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email" example:"nimal@uni.lk"`
	Password string `json:"password" binding:"required" example:"912345678V"`
}

// TokenResponse represents JWT token information
type TokenResponse struct {
	AccessToken string `json:"accessToken"`
	TokenType   string `json:"tokenType" example:"Bearer"`
	ExpiresIn   int64  `json:"expiresIn" example:"86400"`
}

// AuthResponse represents successful authentication response
type AuthResponse struct {
	Token            TokenResponse   `json:"token"`
	Lecturer         ProfileResponse `json:"lecturer"`
	PasswordRequired bool            `json:"passwordRequired" example:"false"` // true after an OTP login
}

// SetPasswordRequest sets or replaces the lecturer's password
type SetPasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword" binding:"required,password"`
}

// NewAuthResponse builds the login payload
func NewAuthResponse(token string, expiresIn int, lecturer *models.Lecturer, passwordRequired bool) AuthResponse {
	return AuthResponse{
		Token: TokenResponse{
			AccessToken: token,
			TokenType:   "Bearer",
			ExpiresIn:   int64(expiresIn),
		},
		Lecturer:         NewProfileResponse(lecturer),
		PasswordRequired: passwordRequired,
	}
}
