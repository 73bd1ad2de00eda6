package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// bindJSON decodes and validates the request body into obj. On failure it
// writes a 400 response and returns false.
func bindJSON(c *gin.Context, obj any) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		detail := NewErrorDetail(ErrorCodeValidationFailed, "Invalid request format").WithDetails(err.Error())
		c.JSON(http.StatusBadRequest, NewErrorResponse(detail))
		return false
	}
	if err := validate.Struct(obj); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(validationDetail(err)))
		return false
	}
	return true
}

func validationDetail(err error) *ErrorDetail {
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) || len(errs) == 0 {
		return NewErrorDetail(ErrorCodeValidationFailed, err.Error())
	}
	fields := make(map[string]string, len(errs))
	for _, e := range errs {
		fields[e.Field()] = formatValidationError(e)
	}
	return NewErrorDetail(ErrorCodeValidationFailed, formatValidationError(errs[0])).
		WithField(errs[0].Field()).
		WithDetails(fields)
}

// formatValidationError creates a human-readable validation error message
func formatValidationError(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return e.Field() + " is required"
	case "min":
		return e.Field() + " must be at least " + e.Param()
	case "max":
		return e.Field() + " must be at most " + e.Param()
	default:
		return e.Field() + " validation failed: " + e.Tag()
	}
}
