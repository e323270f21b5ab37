package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/dosetrack/backend/pkg/model"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ScheduleService assembles the day-by-day dose schedule for a user. It
// combines the recurrence evaluator and dose expander across all of a user's
// medicines, merges in persisted intake events, and falls back to the
// schedule cache when the live data source is unreachable.
type ScheduleService struct {
	medicines MedicineRepository
	events    IntakeEventRepository
	cache     ScheduleCache
	logger    *zap.Logger
}

// NewScheduleService creates a new ScheduleService
func NewScheduleService(
	medicines MedicineRepository,
	events IntakeEventRepository,
	cache ScheduleCache,
	logger *zap.Logger,
) *ScheduleService {
	return &ScheduleService{
		medicines: medicines,
		events:    events,
		cache:     cache,
		logger:    logger,
	}
}

// BuildDailySchedule builds the DailyMedicineSchedule for a user and date.
//
// For each active medicine the recurrence evaluator decides whether the date
// is due; due dates are expanded into dose instants and reconciled with
// already-persisted intake events by (medicineID, scheduledAt). New dose
// instants are materialized as SCHEDULED events carrying the medicine's
// current inventory snapshot. Configuration and unsupported-frequency errors
// are contained per medicine as warnings so one bad medicine cannot blank
// out the whole day.
//
// If the repositories are unreachable the last cached schedule for the same
// (user, date) is served instead; with no cache entry an explicit empty
// schedule is returned rather than an error, so callers can distinguish
// "no data" from "zero doses today".
func (s *ScheduleService) BuildDailySchedule(ctx context.Context, userID string, date time.Time) (*model.DailyMedicineSchedule, error) {
	if userID == "" {
		return nil, fmt.Errorf("user ID is required")
	}
	day := dateOnly(date)

	meds, err := s.medicines.ListByUserID(ctx, userID)
	if err != nil {
		return s.fallbackToCache(ctx, userID, day, err), nil
	}

	persisted, err := s.events.FindByUserAndDate(ctx, userID, day)
	if err != nil {
		return s.fallbackToCache(ctx, userID, day, err), nil
	}

	type eventKey struct {
		medicineID string
		unix       int64
	}
	existing := make(map[eventKey]*model.IntakeEvent, len(persisted))
	for i := range persisted {
		key := eventKey{persisted[i].MedicineID, persisted[i].ScheduledAt.Unix()}
		existing[key] = &persisted[i]
	}

	pausedByMedicine := make(map[string]bool, len(meds))
	for i := range meds {
		pausedByMedicine[meds[i].ID] = !meds[i].Active
	}

	merged := make(map[string]bool, len(persisted))
	schedule := &model.DailyMedicineSchedule{Date: day}

	for i := range meds {
		med := &meds[i]
		if !med.Active {
			continue
		}

		active, err := IsActiveOn(med.FrequencyConfig, med.FrequencyType, med.StartDate, day, med.ScheduleDurationDays)
		if err != nil {
			s.logger.Warn("medicine excluded from schedule",
				zap.Error(err),
				zap.String("medicine_id", med.ID),
				zap.String("user_id", userID),
			)
			schedule.Warnings = append(schedule.Warnings, fmt.Sprintf("%s: %v", med.Name, err))
			continue
		}
		if !active {
			continue
		}

		doses, err := ExpandDoses(med.IntakeSchedules, day)
		if err != nil {
			s.logger.Warn("medicine excluded from schedule",
				zap.Error(err),
				zap.String("medicine_id", med.ID),
				zap.String("user_id", userID),
			)
			schedule.Warnings = append(schedule.Warnings, fmt.Sprintf("%s: %v", med.Name, err))
			continue
		}

		for _, dose := range doses {
			key := eventKey{med.ID, dose.At.Unix()}
			if event, ok := existing[key]; ok {
				merged[event.ID] = true
				schedule.Events = append(schedule.Events, *event)
				continue
			}

			event := s.materializeEvent(med, dose)
			if err := s.events.Upsert(ctx, event); err != nil {
				return s.fallbackToCache(ctx, userID, day, err), nil
			}
			schedule.Events = append(schedule.Events, *event)
		}
	}

	// Persisted events not matched above: doses of paused medicines and
	// leftovers from configuration changes. Preserved, never regenerated;
	// pending doses of a paused medicine display as PAUSED without altering
	// the stored status.
	for i := range persisted {
		event := persisted[i]
		if merged[event.ID] {
			continue
		}
		if pausedByMedicine[event.MedicineID] && event.Status == model.IntakeStatusScheduled {
			event.Status = model.IntakeStatusPaused
		}
		schedule.Events = append(schedule.Events, event)
	}

	sort.Slice(schedule.Events, func(i, j int) bool {
		if schedule.Events[i].ScheduledAt.Equal(schedule.Events[j].ScheduledAt) {
			return schedule.Events[i].MedicineName < schedule.Events[j].MedicineName
		}
		return schedule.Events[i].ScheduledAt.Before(schedule.Events[j].ScheduledAt)
	})
	schedule.Recount()

	if err := s.cache.Put(ctx, userID, day, schedule); err != nil {
		s.logger.Warn("failed to update schedule cache",
			zap.Error(err),
			zap.String("user_id", userID),
		)
	}

	s.logger.Info("daily schedule built",
		zap.String("user_id", userID),
		zap.Time("date", day),
		zap.Int("events", schedule.TotalScheduled),
		zap.Int("warnings", len(schedule.Warnings)),
	)

	return schedule, nil
}

func (s *ScheduleService) materializeEvent(med *model.Medicine, dose model.Dose) *model.IntakeEvent {
	now := time.Now()
	event := &model.IntakeEvent{
		ID:                    uuid.New().String(),
		MedicineID:            med.ID,
		UserID:                med.UserID,
		MedicineName:          med.Name,
		ScheduledAt:           dose.At,
		ScheduledAmount:       dose.Amount,
		Status:                model.IntakeStatusScheduled,
		ThresholdAtGeneration: med.RefillReminderThreshold,
		CreatedAt:             now,
		UpdatedAt:             now,
	}
	if med.TracksInventory() {
		snapshot := *med.CurrentInventory
		event.InventoryAtGeneration = &snapshot
	}
	return event
}

// fallbackToCache serves the last known-good schedule after a repository
// failure. A cache miss yields an explicit empty schedule, never an error.
func (s *ScheduleService) fallbackToCache(ctx context.Context, userID string, day time.Time, cause error) *model.DailyMedicineSchedule {
	s.logger.Warn("live schedule build failed, consulting cache",
		zap.Error(cause),
		zap.String("user_id", userID),
		zap.Time("date", day),
	)

	cached, err := s.cache.Get(ctx, userID, day)
	if err != nil {
		s.logger.Error("schedule cache read failed",
			zap.Error(err),
			zap.String("user_id", userID),
		)
	}
	if cached != nil {
		cached.FromCache = true
		return cached
	}

	return &model.DailyMedicineSchedule{
		Date:     day,
		Warnings: []string{"schedule data unavailable: live source unreachable and no cached copy"},
	}
}

// GetUpcomingDoseInstants returns every dose instant due within the horizon
// starting at now, ordered by time. The notification scheduler consumes this
// to register reminders; the schedule engine never schedules notifications
// itself. Misconfigured medicines are skipped.
func (s *ScheduleService) GetUpcomingDoseInstants(ctx context.Context, userID string, now time.Time, horizon time.Duration) ([]model.DoseInstant, error) {
	if userID == "" {
		return nil, fmt.Errorf("user ID is required")
	}
	if horizon <= 0 {
		return nil, fmt.Errorf("horizon must be positive")
	}

	meds, err := s.medicines.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list medicines: %w", err)
	}

	end := now.Add(horizon)
	var instants []model.DoseInstant

	for day := dateOnly(now); !day.After(dateOnly(end)); day = day.AddDate(0, 0, 1) {
		for i := range meds {
			med := &meds[i]
			if !med.Active {
				continue
			}

			active, err := IsActiveOn(med.FrequencyConfig, med.FrequencyType, med.StartDate, day, med.ScheduleDurationDays)
			if err != nil || !active {
				continue
			}

			doses, err := ExpandDoses(med.IntakeSchedules, day)
			if err != nil {
				continue
			}
			for _, dose := range doses {
				if dose.At.Before(now) || dose.At.After(end) {
					continue
				}
				instants = append(instants, model.DoseInstant{
					MedicineID:   med.ID,
					MedicineName: med.Name,
					At:           dose.At,
					Amount:       dose.Amount,
				})
			}
		}
	}

	sort.Slice(instants, func(i, j int) bool {
		return instants[i].At.Before(instants[j].At)
	})

	return instants, nil
}
