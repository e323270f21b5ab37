package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dosetrack/backend/pkg/model"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// ScheduleCacheRepository stores the last successfully built schedule per
// (user, date) as a JSON document. Entries are replaced wholesale on every
// successful build, never patched, so partial-update races cannot occur.
type ScheduleCacheRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

// NewScheduleCacheRepository creates a new ScheduleCacheRepository
func NewScheduleCacheRepository(db *pgxpool.Pool, logger *zap.Logger) *ScheduleCacheRepository {
	return &ScheduleCacheRepository{
		db:     db,
		logger: logger,
	}
}

func cacheDateKey(date time.Time) string {
	return date.Format("2006-01-02")
}

// Get returns the cached schedule for a user and date, or (nil, nil) when no
// entry exists
func (r *ScheduleCacheRepository) Get(ctx context.Context, userID string, date time.Time) (*model.DailyMedicineSchedule, error) {
	query := `
		SELECT payload
		FROM schedule_cache
		WHERE user_id = $1 AND date = $2
	`

	var payload []byte
	err := r.db.QueryRow(ctx, query, userID, cacheDateKey(date)).Scan(&payload)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error("failed to read schedule cache",
			zap.Error(err),
			zap.String("user_id", userID),
		)
		return nil, fmt.Errorf("failed to read schedule cache: %w", err)
	}

	var schedule model.DailyMedicineSchedule
	if err := json.Unmarshal(payload, &schedule); err != nil {
		r.logger.Error("failed to decode cached schedule",
			zap.Error(err),
			zap.String("user_id", userID),
		)
		return nil, fmt.Errorf("failed to decode cached schedule: %w", err)
	}

	return &schedule, nil
}

// Put stores the schedule for a user and date, replacing any previous entry
func (r *ScheduleCacheRepository) Put(ctx context.Context, userID string, date time.Time, schedule *model.DailyMedicineSchedule) error {
	payload, err := json.Marshal(schedule)
	if err != nil {
		return fmt.Errorf("failed to encode schedule for cache: %w", err)
	}

	query := `
		INSERT INTO schedule_cache (user_id, date, payload, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (user_id, date) DO UPDATE SET
			payload = EXCLUDED.payload,
			updated_at = NOW()
	`

	if _, err := r.db.Exec(ctx, query, userID, cacheDateKey(date), payload); err != nil {
		r.logger.Error("failed to write schedule cache",
			zap.Error(err),
			zap.String("user_id", userID),
		)
		return fmt.Errorf("failed to write schedule cache: %w", err)
	}

	return nil
}
