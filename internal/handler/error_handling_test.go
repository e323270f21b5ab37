package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dosetrack/backend/internal/repository"
	"github.com/dosetrack/backend/internal/service"
	"github.com/dosetrack/backend/pkg/model"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRespondServiceError_StatusMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{
			name:       "invalid transition conflicts",
			err:        &service.InvalidTransitionError{EventID: "event-1", From: model.IntakeStatusTaken, Action: "take"},
			wantStatus: http.StatusConflict,
			wantCode:   "INVALID_TRANSITION",
		},
		{
			name:       "configuration error is a validation failure",
			err:        &service.ConfigurationError{Reason: "specific_days is empty"},
			wantStatus: http.StatusBadRequest,
			wantCode:   "VALIDATION_ERROR",
		},
		{
			name:       "unsupported frequency is a validation failure",
			err:        &service.UnsupportedFrequencyError{FrequencyType: "HOURLY"},
			wantStatus: http.StatusBadRequest,
			wantCode:   "VALIDATION_ERROR",
		},
		{
			name:       "wrapped not-found maps to 404",
			err:        fmt.Errorf("medicine not found: %w", fmt.Errorf("%w: medicine abc", repository.ErrNotFound)),
			wantStatus: http.StatusNotFound,
			wantCode:   "NOT_FOUND",
		},
		{
			name:       "wrapped transition error keeps its status",
			err:        fmt.Errorf("transition failed: %w", &service.InvalidTransitionError{EventID: "event-1", From: model.IntakeStatusSkipped, Action: "skip"}),
			wantStatus: http.StatusConflict,
			wantCode:   "INVALID_TRANSITION",
		},
		{
			name:       "unexpected errors are internal",
			err:        errors.New("connection refused"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   "INTERNAL_ERROR",
		},
	}

	gin.SetMode(gin.TestMode)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)

			respondServiceError(c, tt.err, "operation failed")

			assert.Equal(t, tt.wantStatus, w.Code)

			var resp ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tt.wantCode, resp.Code)
			assert.Equal(t, "operation failed", resp.Message)
			require.NotNil(t, resp.Details)
			assert.Contains(t, *resp.Details, tt.err.Error())
		})
	}
}

func TestParseDate(t *testing.T) {
	parsed, err := parseDate("2024-03-15")
	require.NoError(t, err)
	assert.Equal(t, 2024, parsed.Year())
	assert.Equal(t, 15, parsed.Day())

	_, err = parseDate("15/03/2024")
	assert.Error(t, err)
}
