package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/dosetrack/backend/internal/repository"
	"github.com/dosetrack/backend/internal/service"
	"github.com/gin-gonic/gin"
)

const dateLayout = "2006-01-02"

// ErrorResponse is the JSON error body returned by all endpoints
type ErrorResponse struct {
	Code    string  `json:"code"`
	Message string  `json:"message"`
	Details *string `json:"details,omitempty"`
}

// stringPtr creates a pointer to a string
func stringPtr(s string) *string {
	return &s
}

// parseDate parses a "YYYY-MM-DD" query value
func parseDate(value string) (time.Time, error) {
	return time.Parse(dateLayout, value)
}

// respondServiceError maps service-layer errors to HTTP status codes.
// Invalid transitions are user-visible rejections (409); configuration
// problems are validation errors (400); unknown records are 404.
func respondServiceError(c *gin.Context, err error, message string) {
	var transitionErr *service.InvalidTransitionError
	var configErr *service.ConfigurationError
	var frequencyErr *service.UnsupportedFrequencyError

	switch {
	case errors.As(err, &transitionErr):
		c.JSON(http.StatusConflict, ErrorResponse{
			Code:    "INVALID_TRANSITION",
			Message: message,
			Details: stringPtr(err.Error()),
		})
	case errors.As(err, &configErr), errors.As(err, &frequencyErr):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    "VALIDATION_ERROR",
			Message: message,
			Details: stringPtr(err.Error()),
		})
	case errors.Is(err, repository.ErrNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Code:    "NOT_FOUND",
			Message: message,
			Details: stringPtr(err.Error()),
		})
	default:
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Code:    "INTERNAL_ERROR",
			Message: message,
			Details: stringPtr(err.Error()),
		})
	}
}
