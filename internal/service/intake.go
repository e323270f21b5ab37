package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dosetrack/backend/internal/audit"
	"github.com/dosetrack/backend/pkg/model"
	"go.uber.org/zap"
)

// TakeResult is the outcome of recording a taken dose
type TakeResult struct {
	Event *model.IntakeEvent
	// RefillDue is true when this take crossed the refill threshold
	RefillDue bool
	// CurrentInventory is the stock level after deduction, nil when untracked
	CurrentInventory *float64
}

// IntakeService governs the intake event state machine. Transitions are
// applied to exactly one event; marking one dose never affects sibling doses
// of the same medicine.
//
//	SCHEDULED -> TAKEN | SKIPPED | MISSED
//	MISSED    -> TAKEN | SKIPPED (late action on an auto-missed dose)
//	TAKEN, SKIPPED are terminal
type IntakeService struct {
	events    IntakeEventRepository
	medicines MedicineRepository
	ledger    *InventoryLedger
	auditor   AuditSink
	logger    *zap.Logger
}

// NewIntakeService creates a new IntakeService
func NewIntakeService(
	events IntakeEventRepository,
	medicines MedicineRepository,
	ledger *InventoryLedger,
	auditor AuditSink,
	logger *zap.Logger,
) *IntakeService {
	return &IntakeService{
		events:    events,
		medicines: medicines,
		ledger:    ledger,
		auditor:   auditor,
		logger:    logger,
	}
}

// Take marks a dose as taken, recording the actual time and amount. Legal
// only from SCHEDULED or MISSED. When deductFromInventory is set and the
// medicine tracks stock, the actual amount is deducted and the refill signal
// is reported in the result.
func (s *IntakeService) Take(ctx context.Context, eventID string, actualAt time.Time, actualAmount float64, deductFromInventory bool) (*TakeResult, error) {
	if eventID == "" {
		return nil, fmt.Errorf("event ID is required")
	}
	if actualAmount <= 0 {
		return nil, fmt.Errorf("actual amount must be positive")
	}

	event, err := s.events.FindByID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("intake event not found: %w", err)
	}

	if event.Status != model.IntakeStatusScheduled && event.Status != model.IntakeStatusMissed {
		return nil, &InvalidTransitionError{EventID: eventID, From: event.Status, Action: "take"}
	}

	med, err := s.medicines.FindByID(ctx, event.MedicineID)
	if err != nil {
		return nil, fmt.Errorf("medicine not found for intake event: %w", err)
	}

	if actualAt.Before(med.StartDate) {
		return nil, fmt.Errorf("actual time %s is before the medicine start date", actualAt.Format(time.RFC3339))
	}

	event.Status = model.IntakeStatusTaken
	event.ActualAt = &actualAt
	event.ActualAmount = &actualAmount
	event.UpdatedAt = time.Now()

	if err := s.events.Upsert(ctx, event); err != nil {
		s.logger.Error("failed to persist take transition",
			zap.Error(err),
			zap.String("event_id", eventID),
		)
		return nil, fmt.Errorf("failed to persist take transition: %w", err)
	}

	result := &TakeResult{Event: event}
	if deductFromInventory && med.TracksInventory() {
		deduction, err := s.ledger.Deduct(ctx, med, actualAmount)
		if err != nil {
			// The transition itself is committed; surface the inventory
			// failure so the caller can retry the deduction explicitly.
			return nil, fmt.Errorf("dose taken but inventory deduction failed: %w", err)
		}
		result.RefillDue = deduction.CrossedThreshold
		result.CurrentInventory = deduction.NewCurrent
	}

	s.audit(ctx, event, "take")

	s.logger.Info("dose taken",
		zap.String("event_id", eventID),
		zap.String("medicine_id", event.MedicineID),
		zap.Float64("actual_amount", actualAmount),
		zap.Bool("refill_due", result.RefillDue),
	)

	return result, nil
}

// Skip marks a dose as skipped. Legal only from SCHEDULED or MISSED. A
// non-empty reason is required; skipping has no inventory effect.
func (s *IntakeService) Skip(ctx context.Context, eventID, reason, note string) (*model.IntakeEvent, error) {
	if eventID == "" {
		return nil, fmt.Errorf("event ID is required")
	}
	if strings.TrimSpace(reason) == "" {
		return nil, fmt.Errorf("skip reason is required")
	}

	event, err := s.events.FindByID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("intake event not found: %w", err)
	}

	if event.Status != model.IntakeStatusScheduled && event.Status != model.IntakeStatusMissed {
		return nil, &InvalidTransitionError{EventID: eventID, From: event.Status, Action: "skip"}
	}

	event.Status = model.IntakeStatusSkipped
	event.SkipReason = &reason
	if note != "" {
		event.Note = &note
	}
	event.UpdatedAt = time.Now()

	if err := s.events.Upsert(ctx, event); err != nil {
		s.logger.Error("failed to persist skip transition",
			zap.Error(err),
			zap.String("event_id", eventID),
		)
		return nil, fmt.Errorf("failed to persist skip transition: %w", err)
	}

	s.audit(ctx, event, "skip")

	s.logger.Info("dose skipped",
		zap.String("event_id", eventID),
		zap.String("medicine_id", event.MedicineID),
		zap.String("reason", reason),
	)

	return event, nil
}

// MarkMissed marks an overdue dose as missed. Legal from SCHEDULED;
// idempotent when the event is already MISSED (the auto-miss sweeper may
// re-apply it). Fails with InvalidTransitionError on TAKEN or SKIPPED.
func (s *IntakeService) MarkMissed(ctx context.Context, eventID string) (*model.IntakeEvent, error) {
	if eventID == "" {
		return nil, fmt.Errorf("event ID is required")
	}

	event, err := s.events.FindByID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("intake event not found: %w", err)
	}

	return s.markMissed(ctx, event)
}

func (s *IntakeService) markMissed(ctx context.Context, event *model.IntakeEvent) (*model.IntakeEvent, error) {
	switch event.Status {
	case model.IntakeStatusMissed:
		return event, nil
	case model.IntakeStatusScheduled:
	default:
		return nil, &InvalidTransitionError{EventID: event.ID, From: event.Status, Action: "mark missed"}
	}

	event.Status = model.IntakeStatusMissed
	event.UpdatedAt = time.Now()

	if err := s.events.Upsert(ctx, event); err != nil {
		s.logger.Error("failed to persist missed transition",
			zap.Error(err),
			zap.String("event_id", event.ID),
		)
		return nil, fmt.Errorf("failed to persist missed transition: %w", err)
	}

	s.audit(ctx, event, "mark missed")

	return event, nil
}

// MarkOverdueMissed sweeps SCHEDULED events whose scheduled time is before
// the cutoff and marks them MISSED. Invoked periodically by the background
// sweeper; safe to re-run. Returns the number of events transitioned.
func (s *IntakeService) MarkOverdueMissed(ctx context.Context, before time.Time, limit int) (int, error) {
	overdue, err := s.events.FindOverdueScheduled(ctx, before, limit)
	if err != nil {
		return 0, fmt.Errorf("failed to list overdue events: %w", err)
	}

	marked := 0
	for i := range overdue {
		if _, err := s.markMissed(ctx, &overdue[i]); err != nil {
			s.logger.Warn("failed to mark overdue dose missed",
				zap.Error(err),
				zap.String("event_id", overdue[i].ID),
			)
			continue
		}
		marked++
	}

	if marked > 0 {
		s.logger.Info("overdue doses marked missed",
			zap.Int("count", marked),
			zap.Time("before", before),
		)
	}

	return marked, nil
}

func (s *IntakeService) audit(ctx context.Context, event *model.IntakeEvent, action string) {
	if s.auditor == nil {
		return
	}
	entry := audit.Entry{
		UserID:        event.UserID,
		OperationType: audit.OperationTransition,
		ResourceType:  audit.ResourceIntakeEvent,
		ResourceID:    event.ID,
		AdditionalData: map[string]interface{}{
			"action": action,
			"status": string(event.Status),
		},
	}
	if err := s.auditor.Log(ctx, entry); err != nil {
		s.logger.Warn("failed to write audit entry",
			zap.Error(err),
			zap.String("event_id", event.ID),
		)
	}
}
