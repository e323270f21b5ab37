package service

import (
	"context"
	"fmt"
	"time"

	"github.com/dosetrack/backend/internal/audit"
	"github.com/dosetrack/backend/pkg/model"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// MedicineService handles medicine registration and lifecycle
type MedicineService struct {
	repo    MedicineRepository
	auditor AuditSink
	logger  *zap.Logger
}

// NewMedicineService creates a new MedicineService
func NewMedicineService(repo MedicineRepository, auditor AuditSink, logger *zap.Logger) *MedicineService {
	return &MedicineService{
		repo:    repo,
		auditor: auditor,
		logger:  logger,
	}
}

// validateFrequencyConfig checks the variant-relevant fields of a frequency
// configuration. Fields irrelevant to the frequency type are ignored.
func validateFrequencyConfig(frequencyType model.FrequencyType, cfg model.FrequencyConfig) error {
	switch frequencyType {
	case model.FrequencyDaily, model.FrequencyEveryOtherDay:
		return nil
	case model.FrequencySpecificDaysOfWeek:
		if len(cfg.SpecificDays) == 0 {
			return &ConfigurationError{Reason: "specific_days is empty"}
		}
		for _, day := range cfg.SpecificDays {
			if _, ok := day.TimeWeekday(); !ok {
				return &ConfigurationError{Reason: "unknown weekday tag: " + string(day)}
			}
		}
		return nil
	case model.FrequencyEveryXDays, model.FrequencyEveryXWeeks, model.FrequencyEveryXMonths:
		if cfg.IntervalDays <= 0 {
			return &ConfigurationError{Reason: "interval_days must be positive"}
		}
		return nil
	case model.FrequencyCycleBased:
		if cfg.CycleActiveDays <= 0 {
			return &ConfigurationError{Reason: "cycle_active_days must be positive"}
		}
		if cfg.CycleRestDays < 0 {
			return &ConfigurationError{Reason: "cycle_rest_days must not be negative"}
		}
		return nil
	}
	return &UnsupportedFrequencyError{FrequencyType: frequencyType}
}

// validateMedicine checks the fields common to create and update
func (s *MedicineService) validateMedicine(med *model.Medicine) error {
	if med.Name == "" {
		return fmt.Errorf("medicine name is required")
	}
	if med.StartDate.IsZero() {
		return fmt.Errorf("medicine start date is required")
	}
	if med.ScheduleDurationDays != nil && *med.ScheduleDurationDays <= 0 {
		return &ConfigurationError{Reason: "schedule_duration_days must be positive"}
	}
	// Duplicate times would collide on the (medicine_id, scheduled_at)
	// uniqueness of materialized intake events.
	seenTimes := make(map[string]bool, len(med.IntakeSchedules))
	for _, sched := range med.IntakeSchedules {
		if _, err := parseIntakeTime(sched.Time); err != nil {
			return err
		}
		if sched.Amount <= 0 {
			return &ConfigurationError{Reason: "intake amount must be positive"}
		}
		if seenTimes[sched.Time] {
			return &ConfigurationError{Reason: "duplicate intake time: " + sched.Time}
		}
		seenTimes[sched.Time] = true
	}
	if err := validateFrequencyConfig(med.FrequencyType, med.FrequencyConfig); err != nil {
		return err
	}
	return nil
}

// AddMedicine registers a new medicine for a user. Week and month intervals
// arrive as a raw count and are normalized to a day count here (x7, x30 —
// not calendar-month aware).
func (s *MedicineService) AddMedicine(ctx context.Context, userID string, med *model.Medicine) error {
	if userID == "" {
		return fmt.Errorf("user ID is required")
	}

	switch med.FrequencyType {
	case model.FrequencyEveryXWeeks:
		med.FrequencyConfig.IntervalDays *= 7
	case model.FrequencyEveryXMonths:
		med.FrequencyConfig.IntervalDays *= 30
	}

	if err := s.validateMedicine(med); err != nil {
		return err
	}

	if med.ID == "" {
		med.ID = uuid.New().String()
	}
	med.UserID = userID
	med.StartDate = dateOnly(med.StartDate)
	med.Active = true

	now := time.Now()
	med.CreatedAt = now
	med.UpdatedAt = now

	if err := s.repo.Create(ctx, med); err != nil {
		s.logger.Error("failed to add medicine",
			zap.Error(err),
			zap.String("user_id", userID),
			zap.String("medicine_name", med.Name),
		)
		return fmt.Errorf("failed to add medicine: %w", err)
	}

	s.audit(ctx, med, audit.OperationCreate)

	s.logger.Info("medicine added successfully",
		zap.String("medicine_id", med.ID),
		zap.String("user_id", userID),
		zap.String("name", med.Name),
	)

	return nil
}

// ListMedicines retrieves all medicines for a user
func (s *MedicineService) ListMedicines(ctx context.Context, userID string) ([]model.Medicine, error) {
	if userID == "" {
		return nil, fmt.Errorf("user ID is required")
	}

	medicines, err := s.repo.ListByUserID(ctx, userID)
	if err != nil {
		s.logger.Error("failed to list medicines",
			zap.Error(err),
			zap.String("user_id", userID),
		)
		return nil, fmt.Errorf("failed to list medicines: %w", err)
	}

	return medicines, nil
}

// GetMedicine retrieves a single medicine by ID
func (s *MedicineService) GetMedicine(ctx context.Context, medicineID string) (*model.Medicine, error) {
	if medicineID == "" {
		return nil, fmt.Errorf("medicine ID is required")
	}
	return s.repo.FindByID(ctx, medicineID)
}

// UpdateMedicine updates an existing medicine, preserving its identity and
// ownership. Interval normalization applies the same way as on create.
func (s *MedicineService) UpdateMedicine(ctx context.Context, medicineID string, updates *model.Medicine) error {
	if medicineID == "" {
		return fmt.Errorf("medicine ID is required")
	}

	existing, err := s.repo.FindByID(ctx, medicineID)
	if err != nil {
		s.logger.Error("failed to find medicine for update",
			zap.Error(err),
			zap.String("medicine_id", medicineID),
		)
		return fmt.Errorf("medicine not found: %w", err)
	}

	switch updates.FrequencyType {
	case model.FrequencyEveryXWeeks:
		updates.FrequencyConfig.IntervalDays *= 7
	case model.FrequencyEveryXMonths:
		updates.FrequencyConfig.IntervalDays *= 30
	}

	if err := s.validateMedicine(updates); err != nil {
		return err
	}

	updates.ID = existing.ID
	updates.UserID = existing.UserID
	updates.Active = existing.Active
	updates.StartDate = dateOnly(updates.StartDate)
	updates.CreatedAt = existing.CreatedAt
	updates.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, updates); err != nil {
		s.logger.Error("failed to update medicine",
			zap.Error(err),
			zap.String("medicine_id", medicineID),
		)
		return fmt.Errorf("failed to update medicine: %w", err)
	}

	s.audit(ctx, updates, audit.OperationUpdate)

	s.logger.Info("medicine updated successfully",
		zap.String("medicine_id", medicineID),
		zap.String("name", updates.Name),
	)

	return nil
}

// PauseMedicine deactivates a medicine. Future schedule builds stop
// generating doses for it; already-materialized pending doses display as
// PAUSED without altering their stored status.
func (s *MedicineService) PauseMedicine(ctx context.Context, medicineID string) error {
	return s.setActive(ctx, medicineID, false)
}

// ResumeMedicine reactivates a paused medicine
func (s *MedicineService) ResumeMedicine(ctx context.Context, medicineID string) error {
	return s.setActive(ctx, medicineID, true)
}

func (s *MedicineService) setActive(ctx context.Context, medicineID string, active bool) error {
	if medicineID == "" {
		return fmt.Errorf("medicine ID is required")
	}

	med, err := s.repo.FindByID(ctx, medicineID)
	if err != nil {
		return fmt.Errorf("medicine not found: %w", err)
	}
	if med.Active == active {
		return nil
	}

	med.Active = active
	med.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, med); err != nil {
		s.logger.Error("failed to change medicine active state",
			zap.Error(err),
			zap.String("medicine_id", medicineID),
			zap.Bool("active", active),
		)
		return fmt.Errorf("failed to change medicine active state: %w", err)
	}

	s.audit(ctx, med, audit.OperationUpdate)

	s.logger.Info("medicine active state changed",
		zap.String("medicine_id", medicineID),
		zap.Bool("active", active),
	)

	return nil
}

// DeleteMedicine deletes a medicine
func (s *MedicineService) DeleteMedicine(ctx context.Context, medicineID string) error {
	if medicineID == "" {
		return fmt.Errorf("medicine ID is required")
	}

	med, err := s.repo.FindByID(ctx, medicineID)
	if err != nil {
		return fmt.Errorf("medicine not found: %w", err)
	}

	if err := s.repo.Delete(ctx, medicineID); err != nil {
		s.logger.Error("failed to delete medicine",
			zap.Error(err),
			zap.String("medicine_id", medicineID),
		)
		return fmt.Errorf("failed to delete medicine: %w", err)
	}

	s.audit(ctx, med, audit.OperationDelete)

	s.logger.Info("medicine deleted successfully",
		zap.String("medicine_id", medicineID),
	)

	return nil
}

func (s *MedicineService) audit(ctx context.Context, med *model.Medicine, op audit.OperationType) {
	if s.auditor == nil {
		return
	}
	entry := audit.Entry{
		UserID:        med.UserID,
		OperationType: op,
		ResourceType:  audit.ResourceMedicine,
		ResourceID:    med.ID,
	}
	if err := s.auditor.Log(ctx, entry); err != nil {
		s.logger.Warn("failed to write audit entry",
			zap.Error(err),
			zap.String("medicine_id", med.ID),
		)
	}
}
