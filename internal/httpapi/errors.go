package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"courserag/internal/apperrors"
)

// handleError maps application errors onto HTTP responses.
func (h *Handler) handleError(c *gin.Context, err error) {
	status, detail := errorResponse(err)
	if status >= http.StatusInternalServerError {
		h.log.Error().Err(err).Str("path", c.FullPath()).Int("status", status).Msg("request failed")
	}
	c.JSON(status, NewErrorResponse(detail))
}

func errorResponse(err error) (int, *ErrorDetail) {
	message := err.Error()
	var details any
	var ce *apperrors.CustomError
	if errors.As(err, &ce) {
		if ce.Message != "" {
			message = ce.Message
		}
		details = ce.Details
	}

	switch {
	case errors.Is(err, apperrors.ErrValidationFailed):
		return http.StatusBadRequest, NewErrorDetail(ErrorCodeValidationFailed, message).WithDetails(details)
	case errors.Is(err, apperrors.ErrBadRequest):
		return http.StatusBadRequest, NewErrorDetail(ErrorCodeBadRequest, message)
	case errors.Is(err, apperrors.ErrCourseNotFound):
		return http.StatusNotFound, NewErrorDetail(ErrorCodeResourceNotFound, "course not found").
			WithField("code").WithDetails(message).WithSeverity(ErrorSeverityWarning)
	case errors.Is(err, apperrors.ErrServiceUnavailable):
		return http.StatusServiceUnavailable, NewErrorDetail(ErrorCodeExternalServiceError, message).WithDetails(details)
	default:
		return http.StatusInternalServerError, NewErrorDetail(ErrorCodeInternalServer, "internal server error")
	}
}
