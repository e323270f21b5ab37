package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/dosetrack/backend/internal/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ScheduleHandler implements schedule API endpoints
type ScheduleHandler struct {
	service *service.ScheduleService
	logger  *zap.Logger
}

// NewScheduleHandler creates a new ScheduleHandler
func NewScheduleHandler(service *service.ScheduleService, logger *zap.Logger) *ScheduleHandler {
	return &ScheduleHandler{
		service: service,
		logger:  logger,
	}
}

// GetDailySchedule returns the assembled schedule for a user and date.
// Falls back to the cached schedule transparently when the live source is
// unreachable; the response carries from_cache when that happened.
func (h *ScheduleHandler) GetDailySchedule(c *gin.Context) {
	userID := c.Query("user_id")
	if userID == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    "VALIDATION_ERROR",
			Message: "user_id query parameter is required",
		})
		return
	}

	date := time.Now()
	if raw := c.Query("date"); raw != "" {
		parsed, err := parseDate(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Code:    "VALIDATION_ERROR",
				Message: "date must be formatted as YYYY-MM-DD",
				Details: stringPtr(err.Error()),
			})
			return
		}
		date = parsed
	}

	schedule, err := h.service.BuildDailySchedule(c.Request.Context(), userID, date)
	if err != nil {
		respondServiceError(c, err, "Failed to build daily schedule")
		return
	}

	c.JSON(http.StatusOK, schedule)
}

// GetUpcomingDoses returns dose instants within the requested horizon for
// the notification scheduler
func (h *ScheduleHandler) GetUpcomingDoses(c *gin.Context) {
	userID := c.Query("user_id")
	if userID == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    "VALIDATION_ERROR",
			Message: "user_id query parameter is required",
		})
		return
	}

	horizonHours := 24
	if raw := c.Query("horizon_hours"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Code:    "VALIDATION_ERROR",
				Message: "horizon_hours must be a positive integer",
			})
			return
		}
		horizonHours = parsed
	}

	instants, err := h.service.GetUpcomingDoseInstants(
		c.Request.Context(),
		userID,
		time.Now(),
		time.Duration(horizonHours)*time.Hour,
	)
	if err != nil {
		respondServiceError(c, err, "Failed to list upcoming doses")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user_id":       userID,
		"horizon_hours": horizonHours,
		"doses":         instants,
	})
}
