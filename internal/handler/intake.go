package handler

import (
	"net/http"
	"time"

	"github.com/dosetrack/backend/internal/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// IntakeHandler implements intake event transition endpoints
type IntakeHandler struct {
	service *service.IntakeService
	logger  *zap.Logger
}

// NewIntakeHandler creates a new IntakeHandler
func NewIntakeHandler(service *service.IntakeService, logger *zap.Logger) *IntakeHandler {
	return &IntakeHandler{
		service: service,
		logger:  logger,
	}
}

// TakeRequest is the body for recording a taken dose
type TakeRequest struct {
	ActualAt            *time.Time `json:"actual_at,omitempty"` // defaults to now
	ActualAmount        float64    `json:"actual_amount" binding:"required"`
	DeductFromInventory *bool      `json:"deduct_from_inventory,omitempty"` // defaults to true
}

// SkipRequest is the body for skipping a dose
type SkipRequest struct {
	Reason string `json:"reason" binding:"required"`
	Note   string `json:"note,omitempty"`
}

// TakeDose marks an intake event as taken
func (h *IntakeHandler) TakeDose(c *gin.Context) {
	eventID := c.Param("id")

	var req TakeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("invalid request body", zap.Error(err))
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    "VALIDATION_ERROR",
			Message: "Invalid request body",
			Details: stringPtr(err.Error()),
		})
		return
	}

	actualAt := time.Now()
	if req.ActualAt != nil {
		actualAt = *req.ActualAt
	}
	deduct := true
	if req.DeductFromInventory != nil {
		deduct = *req.DeductFromInventory
	}

	result, err := h.service.Take(c.Request.Context(), eventID, actualAt, req.ActualAmount, deduct)
	if err != nil {
		respondServiceError(c, err, "Failed to record taken dose")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"event":             result.Event,
		"refill_due":        result.RefillDue,
		"current_inventory": result.CurrentInventory,
	})
}

// SkipDose marks an intake event as skipped
func (h *IntakeHandler) SkipDose(c *gin.Context) {
	eventID := c.Param("id")

	var req SkipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("invalid request body", zap.Error(err))
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    "VALIDATION_ERROR",
			Message: "Invalid request body",
			Details: stringPtr(err.Error()),
		})
		return
	}

	event, err := h.service.Skip(c.Request.Context(), eventID, req.Reason, req.Note)
	if err != nil {
		respondServiceError(c, err, "Failed to skip dose")
		return
	}

	c.JSON(http.StatusOK, event)
}

// MarkDoseMissed marks an intake event as missed. Idempotent: repeating the
// call on an already-missed event succeeds without change.
func (h *IntakeHandler) MarkDoseMissed(c *gin.Context) {
	eventID := c.Param("id")

	event, err := h.service.MarkMissed(c.Request.Context(), eventID)
	if err != nil {
		respondServiceError(c, err, "Failed to mark dose missed")
		return
	}

	c.JSON(http.StatusOK, event)
}
