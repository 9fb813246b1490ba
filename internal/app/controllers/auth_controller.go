// Package controllers handles HTTP request handling
package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/unilink/internal/app/models/dto"
	"github.com/yigit/unilink/internal/app/services"
	"github.com/yigit/unilink/internal/middleware"
)

// AuthController handles authentication related operations
type AuthController struct {
	authService *services.AuthService
	logger      zerolog.Logger
}

// NewAuthController creates a new AuthController
func NewAuthController(authService *services.AuthService, logger zerolog.Logger) *AuthController {
	return &AuthController{
		authService: authService,
		logger:      logger,
	}
}

// Login handles lecturer login
// @Summary Lecturer login
// @Description Authenticates a lecturer with the password, or with the one-time code while no password is set, and returns an access token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.LoginRequest true "Login credentials"
// @Success 200 {object} dto.APIResponse{data=dto.AuthResponse} "Login successful"
// @Failure 400 {object} dto.APIResponse{error=dto.ErrorDetail} "Invalid request format or validation error"
// @Failure 401 {object} dto.APIResponse{error=dto.ErrorDetail} "Invalid credentials or expired one-time code"
// @Failure 403 {object} dto.APIResponse{error=dto.ErrorDetail} "Account deactivated"
// @Failure 429 {object} dto.APIResponse{error=dto.ErrorDetail} "Too many attempts"
// @Failure 500 {object} dto.APIResponse{error=dto.ErrorDetail} "Internal server error"
// @Router /auth/login [post]
func (c *AuthController) Login(ctx *gin.Context) {
	var req dto.LoginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		c.logger.Warn().Err(err).Msg("Invalid login request payload")
		middleware.HandleBindingError(ctx, err)
		return
	}

	resp, err := c.authService.Login(ctx.Request.Context(), req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	msg := "Login successful"
	if resp.PasswordRequired {
		msg = "Login successful, please set a password"
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp, msg))
}

// SetPassword sets or replaces the lecturer's password
// @Summary Set password
// @Description Sets the first password after a one-time code login, or replaces the current one
// @Tags auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.SetPasswordRequest true "Current and new password"
// @Success 200 {object} dto.APIResponse "Password updated"
// @Failure 400 {object} dto.APIResponse{error=dto.ErrorDetail} "Weak password"
// @Failure 401 {object} dto.APIResponse{error=dto.ErrorDetail} "Current password is incorrect"
// @Failure 500 {object} dto.APIResponse{error=dto.ErrorDetail} "Internal server error"
// @Router /auth/password [put]
func (c *AuthController) SetPassword(ctx *gin.Context) {
	session, ok := middleware.RequireSession(ctx)
	if !ok {
		return
	}
	var req dto.SetPasswordRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindingError(ctx, err)
		return
	}

	if err := c.authService.SetPassword(ctx.Request.Context(), session, req); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(nil, "Password updated"))
}
