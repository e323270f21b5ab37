package service

import (
	"fmt"

	"github.com/dosetrack/backend/pkg/model"
)

// ConfigurationError reports a malformed FrequencyConfig or intake schedule.
// A schedule build contains it per medicine instead of failing the whole day.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid medicine configuration: %s", e.Reason)
}

// UnsupportedFrequencyError reports an unknown frequency type tag
type UnsupportedFrequencyError struct {
	FrequencyType model.FrequencyType
}

func (e *UnsupportedFrequencyError) Error() string {
	return fmt.Sprintf("unsupported frequency type: %s", e.FrequencyType)
}

// InvalidTransitionError reports an illegal intake state-machine transition.
// It is surfaced to the caller as a user-visible rejection.
type InvalidTransitionError struct {
	EventID string
	From    model.IntakeStatus
	Action  string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot %s intake event %s in status %s", e.Action, e.EventID, e.From)
}
