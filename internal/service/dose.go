package service

import (
	"sort"
	"time"

	"github.com/dosetrack/backend/pkg/model"
)

const intakeTimeLayout = "15:04"

// parseIntakeTime parses an "HH:mm" intake time
func parseIntakeTime(value string) (time.Time, error) {
	t, err := time.Parse(intakeTimeLayout, value)
	if err != nil {
		return time.Time{}, &ConfigurationError{Reason: "invalid intake time: " + value}
	}
	return t, nil
}

// ExpandDoses combines each configured intake time with the candidate date to
// produce concrete dose instants, sorted ascending by time of day. It is a
// pure function; an empty schedule yields an empty list, not an error.
func ExpandDoses(schedules []model.IntakeSchedule, candidate time.Time) ([]model.Dose, error) {
	day := dateOnly(candidate)

	doses := make([]model.Dose, 0, len(schedules))
	for _, sched := range schedules {
		tod, err := parseIntakeTime(sched.Time)
		if err != nil {
			return nil, err
		}
		doses = append(doses, model.Dose{
			At:     day.Add(time.Duration(tod.Hour())*time.Hour + time.Duration(tod.Minute())*time.Minute),
			Amount: sched.Amount,
		})
	}

	sort.Slice(doses, func(i, j int) bool {
		return doses[i].At.Before(doses[j].At)
	})

	return doses, nil
}
