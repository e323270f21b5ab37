package service

import (
	"context"
	"time"

	"github.com/dosetrack/backend/internal/audit"
	"github.com/dosetrack/backend/pkg/model"
)

// MedicineRepository is the persistence port for medicines
type MedicineRepository interface {
	Create(ctx context.Context, med *model.Medicine) error
	ListByUserID(ctx context.Context, userID string) ([]model.Medicine, error)
	FindByID(ctx context.Context, medicineID string) (*model.Medicine, error)
	Update(ctx context.Context, med *model.Medicine) error
	UpdateInventory(ctx context.Context, medicineID string, current *float64) error
	Delete(ctx context.Context, medicineID string) error
}

// IntakeEventRepository is the persistence port for intake events
type IntakeEventRepository interface {
	Upsert(ctx context.Context, event *model.IntakeEvent) error
	FindByID(ctx context.Context, eventID string) (*model.IntakeEvent, error)
	FindByUserAndDate(ctx context.Context, userID string, date time.Time) ([]model.IntakeEvent, error)
	FindOverdueScheduled(ctx context.Context, before time.Time, limit int) ([]model.IntakeEvent, error)
}

// ScheduleCache is the offline-first store of the last successfully built
// schedule per (user, date). Get returns (nil, nil) on a cache miss. Put
// replaces the entry wholesale.
type ScheduleCache interface {
	Get(ctx context.Context, userID string, date time.Time) (*model.DailyMedicineSchedule, error)
	Put(ctx context.Context, userID string, date time.Time, schedule *model.DailyMedicineSchedule) error
}

// AuditSink records audit trail entries. A nil sink disables auditing.
type AuditSink interface {
	Log(ctx context.Context, entry audit.Entry) error
}
