package service

import (
	"context"
	"time"

	"github.com/dosetrack/backend/internal/audit"
	"github.com/dosetrack/backend/pkg/model"
	"github.com/stretchr/testify/mock"
)

// Mock implementations for testing

type MockMedicineRepository struct {
	mock.Mock
}

func (m *MockMedicineRepository) Create(ctx context.Context, med *model.Medicine) error {
	args := m.Called(ctx, med)
	return args.Error(0)
}

func (m *MockMedicineRepository) ListByUserID(ctx context.Context, userID string) ([]model.Medicine, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Medicine), args.Error(1)
}

func (m *MockMedicineRepository) FindByID(ctx context.Context, medicineID string) (*model.Medicine, error) {
	args := m.Called(ctx, medicineID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Medicine), args.Error(1)
}

func (m *MockMedicineRepository) Update(ctx context.Context, med *model.Medicine) error {
	args := m.Called(ctx, med)
	return args.Error(0)
}

func (m *MockMedicineRepository) UpdateInventory(ctx context.Context, medicineID string, current *float64) error {
	args := m.Called(ctx, medicineID, current)
	return args.Error(0)
}

func (m *MockMedicineRepository) Delete(ctx context.Context, medicineID string) error {
	args := m.Called(ctx, medicineID)
	return args.Error(0)
}

type MockIntakeEventRepository struct {
	mock.Mock
}

func (m *MockIntakeEventRepository) Upsert(ctx context.Context, event *model.IntakeEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockIntakeEventRepository) FindByID(ctx context.Context, eventID string) (*model.IntakeEvent, error) {
	args := m.Called(ctx, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.IntakeEvent), args.Error(1)
}

func (m *MockIntakeEventRepository) FindByUserAndDate(ctx context.Context, userID string, date time.Time) ([]model.IntakeEvent, error) {
	args := m.Called(ctx, userID, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.IntakeEvent), args.Error(1)
}

func (m *MockIntakeEventRepository) FindOverdueScheduled(ctx context.Context, before time.Time, limit int) ([]model.IntakeEvent, error) {
	args := m.Called(ctx, before, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.IntakeEvent), args.Error(1)
}

type MockScheduleCache struct {
	mock.Mock
}

func (m *MockScheduleCache) Get(ctx context.Context, userID string, date time.Time) (*model.DailyMedicineSchedule, error) {
	args := m.Called(ctx, userID, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.DailyMedicineSchedule), args.Error(1)
}

func (m *MockScheduleCache) Put(ctx context.Context, userID string, date time.Time, schedule *model.DailyMedicineSchedule) error {
	args := m.Called(ctx, userID, date, schedule)
	return args.Error(0)
}

type MockAuditSink struct {
	mock.Mock
}

func (m *MockAuditSink) Log(ctx context.Context, entry audit.Entry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}
