package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dosetrack/backend/pkg/model"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// ErrNotFound is returned when a requested record does not exist
var ErrNotFound = errors.New("not found")

// MedicineRepository manages medicine data
type MedicineRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

// NewMedicineRepository creates a new MedicineRepository
func NewMedicineRepository(db *pgxpool.Pool, logger *zap.Logger) *MedicineRepository {
	return &MedicineRepository{
		db:     db,
		logger: logger,
	}
}

// Create creates a new medicine record
func (r *MedicineRepository) Create(ctx context.Context, med *model.Medicine) error {
	frequencyConfig, err := json.Marshal(med.FrequencyConfig)
	if err != nil {
		return fmt.Errorf("failed to encode frequency config: %w", err)
	}
	intakeSchedules, err := json.Marshal(med.IntakeSchedules)
	if err != nil {
		return fmt.Errorf("failed to encode intake schedules: %w", err)
	}

	query := `
		INSERT INTO medicines (
			id, user_id, name, form, frequency_type, frequency_config,
			intake_schedules, start_date, schedule_duration_days,
			current_inventory, total_inventory, refill_reminder_threshold,
			active, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, NOW(), NOW())
	`

	_, err = r.db.Exec(ctx, query,
		med.ID,
		med.UserID,
		med.Name,
		med.Form,
		med.FrequencyType,
		frequencyConfig,
		intakeSchedules,
		med.StartDate,
		med.ScheduleDurationDays,
		med.CurrentInventory,
		med.TotalInventory,
		med.RefillReminderThreshold,
		med.Active,
	)

	if err != nil {
		r.logger.Error("failed to create medicine",
			zap.Error(err),
			zap.String("medicine_id", med.ID),
			zap.String("user_id", med.UserID),
		)
		return fmt.Errorf("failed to create medicine: %w", err)
	}

	return nil
}

const medicineColumns = `
	id, user_id, name, form, frequency_type, frequency_config,
	intake_schedules, start_date, schedule_duration_days,
	current_inventory, total_inventory, refill_reminder_threshold,
	active, created_at, updated_at
`

func scanMedicine(row pgx.Row) (*model.Medicine, error) {
	var med model.Medicine
	var frequencyConfig, intakeSchedules []byte

	err := row.Scan(
		&med.ID,
		&med.UserID,
		&med.Name,
		&med.Form,
		&med.FrequencyType,
		&frequencyConfig,
		&intakeSchedules,
		&med.StartDate,
		&med.ScheduleDurationDays,
		&med.CurrentInventory,
		&med.TotalInventory,
		&med.RefillReminderThreshold,
		&med.Active,
		&med.CreatedAt,
		&med.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(frequencyConfig, &med.FrequencyConfig); err != nil {
		return nil, fmt.Errorf("failed to decode frequency config: %w", err)
	}
	if err := json.Unmarshal(intakeSchedules, &med.IntakeSchedules); err != nil {
		return nil, fmt.Errorf("failed to decode intake schedules: %w", err)
	}

	return &med, nil
}

// ListByUserID retrieves all medicines for a user, sorted by start date
func (r *MedicineRepository) ListByUserID(ctx context.Context, userID string) ([]model.Medicine, error) {
	query := `
		SELECT ` + medicineColumns + `
		FROM medicines
		WHERE user_id = $1
		ORDER BY start_date DESC
	`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		r.logger.Error("failed to list medicines", zap.Error(err), zap.String("user_id", userID))
		return nil, fmt.Errorf("failed to list medicines: %w", err)
	}
	defer rows.Close()

	var medicines []model.Medicine
	for rows.Next() {
		med, err := scanMedicine(rows)
		if err != nil {
			r.logger.Error("failed to scan medicine", zap.Error(err))
			continue
		}
		medicines = append(medicines, *med)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("error iterating medicines", zap.Error(err))
		return nil, fmt.Errorf("error iterating medicines: %w", err)
	}

	return medicines, nil
}

// FindByID retrieves a medicine by ID
func (r *MedicineRepository) FindByID(ctx context.Context, medicineID string) (*model.Medicine, error) {
	query := `
		SELECT ` + medicineColumns + `
		FROM medicines
		WHERE id = $1
	`

	med, err := scanMedicine(r.db.QueryRow(ctx, query, medicineID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: medicine %s", ErrNotFound, medicineID)
		}
		r.logger.Error("failed to find medicine", zap.Error(err), zap.String("medicine_id", medicineID))
		return nil, fmt.Errorf("failed to find medicine: %w", err)
	}

	return med, nil
}

// Update updates an existing medicine record
func (r *MedicineRepository) Update(ctx context.Context, med *model.Medicine) error {
	frequencyConfig, err := json.Marshal(med.FrequencyConfig)
	if err != nil {
		return fmt.Errorf("failed to encode frequency config: %w", err)
	}
	intakeSchedules, err := json.Marshal(med.IntakeSchedules)
	if err != nil {
		return fmt.Errorf("failed to encode intake schedules: %w", err)
	}

	query := `
		UPDATE medicines
		SET name = $1, form = $2, frequency_type = $3, frequency_config = $4,
		    intake_schedules = $5, start_date = $6, schedule_duration_days = $7,
		    current_inventory = $8, total_inventory = $9,
		    refill_reminder_threshold = $10, active = $11, updated_at = NOW()
		WHERE id = $12
	`

	result, err := r.db.Exec(ctx, query,
		med.Name,
		med.Form,
		med.FrequencyType,
		frequencyConfig,
		intakeSchedules,
		med.StartDate,
		med.ScheduleDurationDays,
		med.CurrentInventory,
		med.TotalInventory,
		med.RefillReminderThreshold,
		med.Active,
		med.ID,
	)

	if err != nil {
		r.logger.Error("failed to update medicine",
			zap.Error(err),
			zap.String("medicine_id", med.ID),
		)
		return fmt.Errorf("failed to update medicine: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("%w: medicine %s", ErrNotFound, med.ID)
	}

	return nil
}

// UpdateInventory sets the current inventory level for a medicine
func (r *MedicineRepository) UpdateInventory(ctx context.Context, medicineID string, current *float64) error {
	query := `
		UPDATE medicines
		SET current_inventory = $1, updated_at = NOW()
		WHERE id = $2
	`

	result, err := r.db.Exec(ctx, query, current, medicineID)
	if err != nil {
		r.logger.Error("failed to update medicine inventory",
			zap.Error(err),
			zap.String("medicine_id", medicineID),
		)
		return fmt.Errorf("failed to update medicine inventory: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("%w: medicine %s", ErrNotFound, medicineID)
	}

	return nil
}

// Delete deletes a medicine record
func (r *MedicineRepository) Delete(ctx context.Context, medicineID string) error {
	query := `DELETE FROM medicines WHERE id = $1`

	result, err := r.db.Exec(ctx, query, medicineID)
	if err != nil {
		r.logger.Error("failed to delete medicine",
			zap.Error(err),
			zap.String("medicine_id", medicineID),
		)
		return fmt.Errorf("failed to delete medicine: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("%w: medicine %s", ErrNotFound, medicineID)
	}

	return nil
}
