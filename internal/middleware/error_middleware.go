package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/unilink/internal/app/models/dto"
	"github.com/yigit/unilink/internal/pkg/apperrors"
	"github.com/yigit/unilink/internal/pkg/logger"
)

// errorMapping pairs a sentinel with the response it produces
type errorMapping struct {
	target  error
	status  int
	code    dto.ErrorCode
	message string
}

// errorMappings is checked in order; the first sentinel matched wins
var errorMappings = []errorMapping{
	{apperrors.ErrResourceNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Resource not found"},
	{apperrors.ErrCounterpartNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Chat counterpart not found"},
	{apperrors.ErrPermissionDenied, http.StatusForbidden, dto.ErrorCodeForbidden, "Permission denied"},
	{apperrors.ErrInvalidCredentials, http.StatusUnauthorized, dto.ErrorCodeInvalidCredentials, "Invalid credentials"},
	{apperrors.ErrOTPExpired, http.StatusUnauthorized, dto.ErrorCodeOTPExpired, "One-time code expired"},
	{apperrors.ErrAccountDisabled, http.StatusForbidden, dto.ErrorCodeAccountDisabled, "Account is deactivated"},
	{apperrors.ErrTokenExpired, http.StatusUnauthorized, dto.ErrorCodeExpiredToken, "Token expired"},
	{apperrors.ErrTokenInvalid, http.StatusUnauthorized, dto.ErrorCodeInvalidToken, "Invalid token"},
	{apperrors.ErrInvalidFormat, http.StatusUnauthorized, dto.ErrorCodeInvalidToken, "Invalid token format"},
	{apperrors.ErrValidationFailed, http.StatusBadRequest, dto.ErrorCodeValidationFailed, "Validation failed"},
	{apperrors.ErrBadRequest, http.StatusBadRequest, dto.ErrorCodeInvalidRequest, "Bad request"},
	{apperrors.ErrInvalidTransition, http.StatusConflict, dto.ErrorCodeInvalidTransition, "Transition not allowed"},
	{apperrors.ErrSessionNotStartable, http.StatusConflict, dto.ErrorCodeInvalidTransition, "Session cannot be started yet"},
	{apperrors.ErrConflict, http.StatusConflict, dto.ErrorCodeConflict, "Resource was modified concurrently"},
	{apperrors.ErrResourceAlreadyExists, http.StatusConflict, dto.ErrorCodeResourceAlreadyExists, "Resource already exists"},
	{apperrors.ErrUnsupportedMedia, http.StatusUnsupportedMediaType, dto.ErrorCodeUnsupportedMedia, "Unsupported media type"},
	{apperrors.ErrUploadFailed, http.StatusBadGateway, dto.ErrorCodeExternalServiceError, "Attachment upload failed"},
}

// ErrorDetailFor maps err to its status and error detail. The message and
// details carried by a CustomError replace the generic ones.
func ErrorDetailFor(err error) (int, *dto.ErrorDetail) {
	for _, m := range errorMappings {
		if !errors.Is(err, m.target) {
			continue
		}
		detail := dto.NewErrorDetail(m.code, m.message)
		if msg, ok := apperrors.Message(err); ok {
			detail.Message = msg
		}
		if details := apperrors.Details(err); len(details) > 0 {
			if field, ok := details["field"].(string); ok {
				detail = detail.WithField(field)
			}
			detail = detail.WithDetails(details)
		}
		return m.status, detail
	}
	return http.StatusInternalServerError, dto.NewErrorDetail(dto.ErrorCodeInternalServer, "Internal server error")
}

// HandleAPIError handles common API errors and returns appropriate responses
func HandleAPIError(c *gin.Context, err error) {
	status, detail := ErrorDetailFor(err)
	if status >= http.StatusInternalServerError {
		logger.Error().Err(err).Str("path", c.FullPath()).Msg("Request failed")
	} else {
		detail.WithSeverity(dto.ErrorSeverityWarning)
	}
	c.AbortWithStatusJSON(status, dto.NewErrorAPIResponse(detail))
}

// HandleBindingError answers a malformed request body or query
func HandleBindingError(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorAPIResponse(dto.HandleValidationError(err)))
}
