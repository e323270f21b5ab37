package service

import (
	"context"
	"fmt"

	"github.com/dosetrack/backend/pkg/model"
	"go.uber.org/zap"
)

// DeductionResult is the outcome of an inventory deduction
type DeductionResult struct {
	// NewCurrent is nil when the medicine does not track inventory
	NewCurrent *float64
	// CrossedThreshold is true only on the transition from above the refill
	// threshold to at-or-below it (edge-triggered: the refill signal fires
	// once per crossing, not on every take while stock stays low)
	CrossedThreshold bool
}

// InventoryLedger tracks per-medicine stock and raises refill signals
type InventoryLedger struct {
	medicines MedicineRepository
	logger    *zap.Logger
}

// NewInventoryLedger creates a new InventoryLedger
func NewInventoryLedger(medicines MedicineRepository, logger *zap.Logger) *InventoryLedger {
	return &InventoryLedger{
		medicines: medicines,
		logger:    logger,
	}
}

// Deduct subtracts amount from the medicine's current inventory, flooring at
// zero, and persists the new level. Medicines with untracked inventory are a
// no-op. The medicine's CurrentInventory field is updated in place on success.
func (l *InventoryLedger) Deduct(ctx context.Context, med *model.Medicine, amount float64) (DeductionResult, error) {
	if med == nil {
		return DeductionResult{}, fmt.Errorf("medicine is required")
	}
	if amount < 0 {
		return DeductionResult{}, fmt.Errorf("deduction amount must not be negative")
	}
	if !med.TracksInventory() {
		return DeductionResult{}, nil
	}

	previous := *med.CurrentInventory
	next := previous - amount
	if next < 0 {
		next = 0
	}

	crossed := next <= med.RefillReminderThreshold && previous > med.RefillReminderThreshold

	if err := l.medicines.UpdateInventory(ctx, med.ID, &next); err != nil {
		l.logger.Error("failed to persist inventory deduction",
			zap.Error(err),
			zap.String("medicine_id", med.ID),
		)
		return DeductionResult{}, fmt.Errorf("failed to persist inventory deduction: %w", err)
	}

	med.CurrentInventory = &next

	if crossed {
		l.logger.Info("refill threshold crossed",
			zap.String("medicine_id", med.ID),
			zap.Float64("current_inventory", next),
			zap.Float64("threshold", med.RefillReminderThreshold),
		)
	}

	return DeductionResult{NewCurrent: &next, CrossedThreshold: crossed}, nil
}
