package model

import "time"

// FrequencyType identifies how a medicine's recurrence is interpreted
type FrequencyType string

const (
	FrequencyDaily              FrequencyType = "DAILY"
	FrequencyEveryOtherDay      FrequencyType = "EVERY_OTHER_DAY"
	FrequencySpecificDaysOfWeek FrequencyType = "SPECIFIC_DAYS_OF_WEEK"
	FrequencyEveryXDays         FrequencyType = "EVERY_X_DAYS"
	FrequencyEveryXWeeks        FrequencyType = "EVERY_X_WEEKS"
	FrequencyEveryXMonths       FrequencyType = "EVERY_X_MONTHS"
	FrequencyCycleBased         FrequencyType = "CYCLE_BASED"
)

// Weekday is a day-of-week tag used by SPECIFIC_DAYS_OF_WEEK schedules
type Weekday string

const (
	WeekdayMonday    Weekday = "MONDAY"
	WeekdayTuesday   Weekday = "TUESDAY"
	WeekdayWednesday Weekday = "WEDNESDAY"
	WeekdayThursday  Weekday = "THURSDAY"
	WeekdayFriday    Weekday = "FRIDAY"
	WeekdaySaturday  Weekday = "SATURDAY"
	WeekdaySunday    Weekday = "SUNDAY"
)

// TimeWeekday maps a weekday tag to the standard library's time.Weekday.
// The second return value is false for unknown tags.
func (w Weekday) TimeWeekday() (time.Weekday, bool) {
	switch w {
	case WeekdayMonday:
		return time.Monday, true
	case WeekdayTuesday:
		return time.Tuesday, true
	case WeekdayWednesday:
		return time.Wednesday, true
	case WeekdayThursday:
		return time.Thursday, true
	case WeekdayFriday:
		return time.Friday, true
	case WeekdaySaturday:
		return time.Saturday, true
	case WeekdaySunday:
		return time.Sunday, true
	}
	return time.Sunday, false
}

// FrequencyConfig carries the recurrence parameters for a medicine.
// Only the fields relevant to the medicine's FrequencyType are meaningful;
// per-variant validation rejects configs whose relevant fields are missing.
// Week and month intervals are pre-multiplied into IntervalDays (x7, x30)
// when the medicine is created.
type FrequencyConfig struct {
	IntervalDays    int       `json:"interval_days,omitempty"`
	SpecificDays    []Weekday `json:"specific_days,omitempty"`
	CycleActiveDays int       `json:"cycle_active_days,omitempty"`
	CycleRestDays   int       `json:"cycle_rest_days,omitempty"`
	DayOfMonth      int       `json:"day_of_month,omitempty"` // reserved for calendar-month schedules
}

// IntakeSchedule is one configured intake time for a medicine
type IntakeSchedule struct {
	Time   string  `json:"time"` // "HH:mm"
	Amount float64 `json:"amount"`
}

// Medicine represents a registered medicine and its recurrence configuration
type Medicine struct {
	ID                      string           `json:"id"`
	UserID                  string           `json:"user_id"`
	Name                    string           `json:"name"`
	Form                    string           `json:"form"`
	FrequencyType           FrequencyType    `json:"frequency_type"`
	FrequencyConfig         FrequencyConfig  `json:"frequency_config"`
	IntakeSchedules         []IntakeSchedule `json:"intake_schedules"`
	StartDate               time.Time        `json:"start_date"`
	ScheduleDurationDays    *int             `json:"schedule_duration_days,omitempty"` // nil = indefinite
	CurrentInventory        *float64         `json:"current_inventory,omitempty"`      // nil = untracked
	TotalInventory          *float64         `json:"total_inventory,omitempty"`
	RefillReminderThreshold float64          `json:"refill_reminder_threshold"`
	Active                  bool             `json:"active"`
	CreatedAt               time.Time        `json:"created_at"`
	UpdatedAt               time.Time        `json:"updated_at"`
}

// TracksInventory reports whether stock is tracked for this medicine
func (m *Medicine) TracksInventory() bool {
	return m.CurrentInventory != nil
}

// IntakeStatus represents the lifecycle state of a scheduled dose
type IntakeStatus string

const (
	IntakeStatusScheduled IntakeStatus = "SCHEDULED"
	IntakeStatusTaken     IntakeStatus = "TAKEN"
	IntakeStatusSkipped   IntakeStatus = "SKIPPED"
	IntakeStatusMissed    IntakeStatus = "MISSED"
	// IntakeStatusPaused is a display-only overlay for doses of a paused
	// medicine; it is never written to storage.
	IntakeStatusPaused IntakeStatus = "PAUSED"
)

// IntakeEvent is one concrete scheduled-or-recorded dose instance
type IntakeEvent struct {
	ID                    string       `json:"id"`
	MedicineID            string       `json:"medicine_id"`
	UserID                string       `json:"user_id"`
	MedicineName          string       `json:"medicine_name"`
	ScheduledAt           time.Time    `json:"scheduled_at"`
	ScheduledAmount       float64      `json:"scheduled_amount"`
	Status                IntakeStatus `json:"status"`
	ActualAt              *time.Time   `json:"actual_at,omitempty"`
	ActualAmount          *float64     `json:"actual_amount,omitempty"`
	SkipReason            *string      `json:"skip_reason,omitempty"`
	Note                  *string      `json:"note,omitempty"`
	InventoryAtGeneration *float64     `json:"inventory_at_generation,omitempty"`
	ThresholdAtGeneration float64      `json:"threshold_at_generation"`
	CreatedAt             time.Time    `json:"created_at"`
	UpdatedAt             time.Time    `json:"updated_at"`
}

// DailyMedicineSchedule is the assembled set of doses for one user and date.
// Counts are derived from Events; TotalScheduled always equals
// TotalTaken + TotalSkipped + TotalMissed + TotalPending.
type DailyMedicineSchedule struct {
	Date           time.Time     `json:"date"`
	Events         []IntakeEvent `json:"events"`
	TotalScheduled int           `json:"total_scheduled"`
	TotalTaken     int           `json:"total_taken"`
	TotalSkipped   int           `json:"total_skipped"`
	TotalMissed    int           `json:"total_missed"`
	TotalPending   int           `json:"total_pending"`
	FromCache      bool          `json:"from_cache,omitempty"`
	Warnings       []string      `json:"warnings,omitempty"`
}

// Recount recomputes the aggregate counters from Events
func (s *DailyMedicineSchedule) Recount() {
	s.TotalScheduled = len(s.Events)
	s.TotalTaken = 0
	s.TotalSkipped = 0
	s.TotalMissed = 0
	s.TotalPending = 0
	for i := range s.Events {
		switch s.Events[i].Status {
		case IntakeStatusTaken:
			s.TotalTaken++
		case IntakeStatusSkipped:
			s.TotalSkipped++
		case IntakeStatusMissed:
			s.TotalMissed++
		default:
			// SCHEDULED and the PAUSED display overlay are both pending
			s.TotalPending++
		}
	}
}

// Dose is a single expanded dose instant for one date
type Dose struct {
	At     time.Time `json:"at"`
	Amount float64   `json:"amount"`
}

// DoseInstant is an upcoming dose enriched with medicine identity, consumed
// by the notification scheduler
type DoseInstant struct {
	MedicineID   string    `json:"medicine_id"`
	MedicineName string    `json:"medicine_name"`
	At           time.Time `json:"at"`
	Amount       float64   `json:"amount"`
}
