package service

import (
	"time"

	"github.com/dosetrack/backend/pkg/model"
)

// dateOnly truncates a timestamp to its civil date, anchored at midnight UTC.
// All recurrence arithmetic works on civil dates so DST shifts in the input
// location cannot skew day counting.
func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// daysBetween returns the number of whole days from start to end
func daysBetween(start, end time.Time) int {
	return int(dateOnly(end).Sub(dateOnly(start)).Hours() / 24)
}

// IsActiveOn decides whether a medicine with the given recurrence
// configuration is due on candidate. It is a pure function of its inputs:
// past and future dates are evaluated identically.
//
// durationDays, when non-nil, caps the schedule: dates on or after
// startDate+durationDays are never active.
func IsActiveOn(cfg model.FrequencyConfig, frequencyType model.FrequencyType, startDate, candidate time.Time, durationDays *int) (bool, error) {
	diff := daysBetween(startDate, candidate)
	if diff < 0 {
		return false, nil
	}
	if durationDays != nil && diff >= *durationDays {
		return false, nil
	}

	switch frequencyType {
	case model.FrequencyDaily:
		return true, nil

	case model.FrequencyEveryOtherDay:
		return diff%2 == 0, nil

	case model.FrequencySpecificDaysOfWeek:
		if len(cfg.SpecificDays) == 0 {
			return false, &ConfigurationError{Reason: "specific_days is empty"}
		}
		weekday := dateOnly(candidate).Weekday()
		for _, day := range cfg.SpecificDays {
			wd, ok := day.TimeWeekday()
			if !ok {
				return false, &ConfigurationError{Reason: "unknown weekday tag: " + string(day)}
			}
			if wd == weekday {
				return true, nil
			}
		}
		return false, nil

	case model.FrequencyEveryXDays, model.FrequencyEveryXWeeks, model.FrequencyEveryXMonths:
		// Week and month intervals were normalized to a day count at
		// configuration time (x7, x30). Not calendar-month aware.
		if cfg.IntervalDays <= 0 {
			return false, &ConfigurationError{Reason: "interval_days must be positive"}
		}
		return diff%cfg.IntervalDays == 0, nil

	case model.FrequencyCycleBased:
		if cfg.CycleActiveDays < 0 || cfg.CycleRestDays < 0 {
			return false, &ConfigurationError{Reason: "cycle day counts must not be negative"}
		}
		cycleLen := cfg.CycleActiveDays + cfg.CycleRestDays
		if cycleLen == 0 {
			return false, &ConfigurationError{Reason: "cycle length is zero"}
		}
		return diff%cycleLen < cfg.CycleActiveDays, nil
	}

	return false, &UnsupportedFrequencyError{FrequencyType: frequencyType}
}
