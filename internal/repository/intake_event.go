package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dosetrack/backend/pkg/model"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// IntakeEventRepository manages intake event data
type IntakeEventRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

// NewIntakeEventRepository creates a new IntakeEventRepository
func NewIntakeEventRepository(db *pgxpool.Pool, logger *zap.Logger) *IntakeEventRepository {
	return &IntakeEventRepository{
		db:     db,
		logger: logger,
	}
}

// Upsert inserts a new intake event or updates an existing one by ID.
// Events are never deleted, only superseded by status changes.
func (r *IntakeEventRepository) Upsert(ctx context.Context, event *model.IntakeEvent) error {
	query := `
		INSERT INTO intake_events (
			id, medicine_id, user_id, medicine_name, scheduled_at,
			scheduled_amount, status, actual_at, actual_amount,
			skip_reason, note, inventory_at_generation,
			threshold_at_generation, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, NOW(), NOW())
		ON CONFLICT (id) DO UPDATE SET
			status = EXCLUDED.status,
			actual_at = EXCLUDED.actual_at,
			actual_amount = EXCLUDED.actual_amount,
			skip_reason = EXCLUDED.skip_reason,
			note = EXCLUDED.note,
			updated_at = NOW()
	`

	_, err := r.db.Exec(ctx, query,
		event.ID,
		event.MedicineID,
		event.UserID,
		event.MedicineName,
		event.ScheduledAt,
		event.ScheduledAmount,
		event.Status,
		event.ActualAt,
		event.ActualAmount,
		event.SkipReason,
		event.Note,
		event.InventoryAtGeneration,
		event.ThresholdAtGeneration,
	)

	if err != nil {
		r.logger.Error("failed to upsert intake event",
			zap.Error(err),
			zap.String("event_id", event.ID),
			zap.String("medicine_id", event.MedicineID),
		)
		return fmt.Errorf("failed to upsert intake event: %w", err)
	}

	return nil
}

const intakeEventColumns = `
	id, medicine_id, user_id, medicine_name, scheduled_at,
	scheduled_amount, status, actual_at, actual_amount,
	skip_reason, note, inventory_at_generation,
	threshold_at_generation, created_at, updated_at
`

func scanIntakeEvent(row pgx.Row) (*model.IntakeEvent, error) {
	var event model.IntakeEvent
	err := row.Scan(
		&event.ID,
		&event.MedicineID,
		&event.UserID,
		&event.MedicineName,
		&event.ScheduledAt,
		&event.ScheduledAmount,
		&event.Status,
		&event.ActualAt,
		&event.ActualAmount,
		&event.SkipReason,
		&event.Note,
		&event.InventoryAtGeneration,
		&event.ThresholdAtGeneration,
		&event.CreatedAt,
		&event.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &event, nil
}

// FindByID retrieves an intake event by ID
func (r *IntakeEventRepository) FindByID(ctx context.Context, eventID string) (*model.IntakeEvent, error) {
	query := `
		SELECT ` + intakeEventColumns + `
		FROM intake_events
		WHERE id = $1
	`

	event, err := scanIntakeEvent(r.db.QueryRow(ctx, query, eventID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: intake event %s", ErrNotFound, eventID)
		}
		r.logger.Error("failed to find intake event", zap.Error(err), zap.String("event_id", eventID))
		return nil, fmt.Errorf("failed to find intake event: %w", err)
	}

	return event, nil
}

// FindByUserAndDate retrieves all intake events scheduled for a user on a
// calendar date, ordered by scheduled time
func (r *IntakeEventRepository) FindByUserAndDate(ctx context.Context, userID string, date time.Time) ([]model.IntakeEvent, error) {
	dayStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	dayEnd := dayStart.AddDate(0, 0, 1)

	query := `
		SELECT ` + intakeEventColumns + `
		FROM intake_events
		WHERE user_id = $1 AND scheduled_at >= $2 AND scheduled_at < $3
		ORDER BY scheduled_at ASC
	`

	rows, err := r.db.Query(ctx, query, userID, dayStart, dayEnd)
	if err != nil {
		r.logger.Error("failed to find intake events", zap.Error(err), zap.String("user_id", userID))
		return nil, fmt.Errorf("failed to find intake events: %w", err)
	}
	defer rows.Close()

	var events []model.IntakeEvent
	for rows.Next() {
		event, err := scanIntakeEvent(rows)
		if err != nil {
			r.logger.Error("failed to scan intake event", zap.Error(err))
			continue
		}
		events = append(events, *event)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("error iterating intake events", zap.Error(err))
		return nil, fmt.Errorf("error iterating intake events: %w", err)
	}

	return events, nil
}

// FindOverdueScheduled retrieves SCHEDULED events whose scheduled time is
// before the cutoff, oldest first. Used by the missed-dose sweeper. Doses of
// paused medicines are excluded so pausing shields them from the sweep and
// resume restores their pending state.
func (r *IntakeEventRepository) FindOverdueScheduled(ctx context.Context, before time.Time, limit int) ([]model.IntakeEvent, error) {
	query := `
		SELECT e.id, e.medicine_id, e.user_id, e.medicine_name, e.scheduled_at,
		       e.scheduled_amount, e.status, e.actual_at, e.actual_amount,
		       e.skip_reason, e.note, e.inventory_at_generation,
		       e.threshold_at_generation, e.created_at, e.updated_at
		FROM intake_events e
		JOIN medicines m ON m.id = e.medicine_id
		WHERE e.status = $1 AND e.scheduled_at < $2 AND m.active
		ORDER BY e.scheduled_at ASC
		LIMIT $3
	`

	rows, err := r.db.Query(ctx, query, model.IntakeStatusScheduled, before, limit)
	if err != nil {
		r.logger.Error("failed to find overdue intake events", zap.Error(err))
		return nil, fmt.Errorf("failed to find overdue intake events: %w", err)
	}
	defer rows.Close()

	var events []model.IntakeEvent
	for rows.Next() {
		event, err := scanIntakeEvent(rows)
		if err != nil {
			r.logger.Error("failed to scan intake event", zap.Error(err))
			continue
		}
		events = append(events, *event)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("error iterating overdue intake events", zap.Error(err))
		return nil, fmt.Errorf("error iterating overdue intake events: %w", err)
	}

	return events, nil
}
