package handler

import (
	"net/http"

	"github.com/dosetrack/backend/internal/service"
	"github.com/dosetrack/backend/pkg/model"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// MedicineHandler implements medicine API endpoints
type MedicineHandler struct {
	service *service.MedicineService
	logger  *zap.Logger
}

// NewMedicineHandler creates a new MedicineHandler
func NewMedicineHandler(service *service.MedicineService, logger *zap.Logger) *MedicineHandler {
	return &MedicineHandler{
		service: service,
		logger:  logger,
	}
}

// MedicineRequest is the create/update request body. Interval carries the
// raw count for EVERY_X_DAYS/WEEKS/MONTHS; the service normalizes weeks and
// months to a day count.
type MedicineRequest struct {
	UserID                  string                 `json:"user_id"`
	Name                    string                 `json:"name" binding:"required"`
	Form                    string                 `json:"form"`
	FrequencyType           model.FrequencyType    `json:"frequency_type" binding:"required"`
	Interval                int                    `json:"interval,omitempty"`
	SpecificDays            []model.Weekday        `json:"specific_days,omitempty"`
	CycleActiveDays         int                    `json:"cycle_active_days,omitempty"`
	CycleRestDays           int                    `json:"cycle_rest_days,omitempty"`
	IntakeSchedules         []model.IntakeSchedule `json:"intake_schedules"`
	StartDate               string                 `json:"start_date" binding:"required"` // "YYYY-MM-DD"
	ScheduleDurationDays    *int                   `json:"schedule_duration_days,omitempty"`
	CurrentInventory        *float64               `json:"current_inventory,omitempty"`
	TotalInventory          *float64               `json:"total_inventory,omitempty"`
	RefillReminderThreshold float64                `json:"refill_reminder_threshold"`
}

func (r *MedicineRequest) toModel() (*model.Medicine, error) {
	startDate, err := parseDate(r.StartDate)
	if err != nil {
		return nil, err
	}
	return &model.Medicine{
		Name:          r.Name,
		Form:          r.Form,
		FrequencyType: r.FrequencyType,
		FrequencyConfig: model.FrequencyConfig{
			IntervalDays:    r.Interval,
			SpecificDays:    r.SpecificDays,
			CycleActiveDays: r.CycleActiveDays,
			CycleRestDays:   r.CycleRestDays,
		},
		IntakeSchedules:         r.IntakeSchedules,
		StartDate:               startDate,
		ScheduleDurationDays:    r.ScheduleDurationDays,
		CurrentInventory:        r.CurrentInventory,
		TotalInventory:          r.TotalInventory,
		RefillReminderThreshold: r.RefillReminderThreshold,
	}, nil
}

// CreateMedicine adds a new medicine
func (h *MedicineHandler) CreateMedicine(c *gin.Context) {
	var req MedicineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("invalid request body", zap.Error(err))
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    "VALIDATION_ERROR",
			Message: "Invalid request body",
			Details: stringPtr(err.Error()),
		})
		return
	}
	if req.UserID == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    "VALIDATION_ERROR",
			Message: "user_id is required",
		})
		return
	}

	medicine, err := req.toModel()
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    "VALIDATION_ERROR",
			Message: "Invalid start date",
			Details: stringPtr(err.Error()),
		})
		return
	}

	if err := h.service.AddMedicine(c.Request.Context(), req.UserID, medicine); err != nil {
		respondServiceError(c, err, "Failed to add medicine")
		return
	}

	c.JSON(http.StatusCreated, medicine)
}

// ListMedicines lists all medicines for a user
func (h *MedicineHandler) ListMedicines(c *gin.Context) {
	userID := c.Query("user_id")
	if userID == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    "VALIDATION_ERROR",
			Message: "user_id query parameter is required",
		})
		return
	}

	medicines, err := h.service.ListMedicines(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, err, "Failed to list medicines")
		return
	}

	if medicines == nil {
		medicines = []model.Medicine{}
	}
	c.JSON(http.StatusOK, medicines)
}

// UpdateMedicine updates a medicine
func (h *MedicineHandler) UpdateMedicine(c *gin.Context) {
	medicineID := c.Param("id")

	var req MedicineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("invalid request body", zap.Error(err))
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    "VALIDATION_ERROR",
			Message: "Invalid request body",
			Details: stringPtr(err.Error()),
		})
		return
	}

	medicine, err := req.toModel()
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    "VALIDATION_ERROR",
			Message: "Invalid start date",
			Details: stringPtr(err.Error()),
		})
		return
	}

	if err := h.service.UpdateMedicine(c.Request.Context(), medicineID, medicine); err != nil {
		respondServiceError(c, err, "Failed to update medicine")
		return
	}

	c.JSON(http.StatusOK, medicine)
}

// PauseMedicine pauses a medicine
func (h *MedicineHandler) PauseMedicine(c *gin.Context) {
	medicineID := c.Param("id")

	if err := h.service.PauseMedicine(c.Request.Context(), medicineID); err != nil {
		respondServiceError(c, err, "Failed to pause medicine")
		return
	}

	c.Status(http.StatusNoContent)
}

// ResumeMedicine resumes a paused medicine
func (h *MedicineHandler) ResumeMedicine(c *gin.Context) {
	medicineID := c.Param("id")

	if err := h.service.ResumeMedicine(c.Request.Context(), medicineID); err != nil {
		respondServiceError(c, err, "Failed to resume medicine")
		return
	}

	c.Status(http.StatusNoContent)
}

// DeleteMedicine deletes a medicine
func (h *MedicineHandler) DeleteMedicine(c *gin.Context) {
	medicineID := c.Param("id")

	if err := h.service.DeleteMedicine(c.Request.Context(), medicineID); err != nil {
		respondServiceError(c, err, "Failed to delete medicine")
		return
	}

	c.Status(http.StatusNoContent)
}
