package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/jakechorley/hostelhub/internal/config"
	"github.com/jakechorley/hostelhub/pkg/core/model"
	"github.com/jakechorley/hostelhub/pkg/db"
)

// UnassignResult describes what an Unassign call changed
type UnassignResult struct {
	Table model.ScheduleTable
	// Removed is false when there was nothing to remove and no write happened
	Removed bool
	// Corrected is true when verification found the entry still stored and overwrote it again
	Corrected bool
}

// Assign adds volunteerID to (date, slot) and writes the whole table back. When the
// volunteer is already assigned the stored table is returned untouched and nothing is written.
func Assign(ctx context.Context, store db.ScheduleStore, cfg *config.Config, logger *zap.Logger, date string, slot model.ScheduleSlot, volunteerID string) (model.ScheduleTable, error) {
	if err := validateScheduleKey(date, slot); err != nil {
		return nil, err
	}
	if err := requireID("volunteer id", volunteerID); err != nil {
		return nil, err
	}

	closed, reason, err := cfg.IsClosed(date)
	if err != nil {
		return nil, err
	}
	if closed {
		return nil, model.NewError("schedule date "+date, fmt.Errorf("%w: %s", model.ErrClosed, reason))
	}

	schedule, err := store.GetSchedule(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch schedule: %w", err)
	}
	table := schedule.Data

	if !table.Add(date, string(slot), volunteerID) {
		logger.Debug("Volunteer already assigned",
			zap.String("date", date),
			zap.String("slot", string(slot)),
			zap.String("volunteer_id", volunteerID))
		return table, nil
	}

	if err := saveSchedule(ctx, store, cfg, logger, table); err != nil {
		return nil, err
	}

	logger.Info("Volunteer assigned",
		zap.String("date", date),
		zap.String("slot", string(slot)),
		zap.String("volunteer_id", volunteerID))

	return table, nil
}

// Unassign removes volunteerID from (date, slot), or the whole slot when volunteerID is
// empty, and writes the whole table back. With verify set the table is re-read afterwards
// and, if the entry survived, removed again by a single direct overwrite.
func Unassign(ctx context.Context, store db.ScheduleStore, cfg *config.Config, logger *zap.Logger, date string, slot model.ScheduleSlot, volunteerID string, verify bool) (*UnassignResult, error) {
	if err := validateScheduleKey(date, slot); err != nil {
		return nil, err
	}

	schedule, err := store.GetSchedule(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch schedule: %w", err)
	}
	table := schedule.Data

	var removed bool
	if volunteerID == "" {
		removed = table.RemoveSlot(date, string(slot))
	} else {
		removed = table.Remove(date, string(slot), volunteerID)
	}

	result := &UnassignResult{Table: table, Removed: removed}
	if !removed {
		logger.Debug("Nothing to unassign",
			zap.String("date", date),
			zap.String("slot", string(slot)),
			zap.String("volunteer_id", volunteerID))
		return result, nil
	}

	if err := saveSchedule(ctx, store, cfg, logger, table); err != nil {
		return nil, err
	}

	logger.Info("Volunteer unassigned",
		zap.String("date", date),
		zap.String("slot", string(slot)),
		zap.String("volunteer_id", volunteerID))

	if !verify {
		return result, nil
	}

	corrected, err := ForceRemove(ctx, store, logger, date, slot, volunteerID)
	if err != nil {
		// The write-back itself succeeded
		logger.Warn("Schedule verification failed",
			zap.String("date", date),
			zap.String("slot", string(slot)),
			zap.Error(err))
		return result, nil
	}
	result.Corrected = corrected
	if corrected {
		schedule, err := store.GetSchedule(ctx)
		if err == nil {
			result.Table = schedule.Data
		}
	}

	return result, nil
}

// ForceRemove re-reads the schedule and, if volunteerID (or the whole slot when empty) is
// still there, removes it with one direct overwrite. No retry. Reports whether anything
// had to be removed.
func ForceRemove(ctx context.Context, store db.ScheduleStore, logger *zap.Logger, date string, slot model.ScheduleSlot, volunteerID string) (bool, error) {
	schedule, err := store.GetSchedule(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to re-read schedule: %w", err)
	}
	table := schedule.Data

	var present bool
	if volunteerID == "" {
		present = table.RemoveSlot(date, string(slot))
	} else {
		present = table.Remove(date, string(slot), volunteerID)
	}
	if !present {
		return false, nil
	}

	logger.Warn("Unassigned entry still stored, overwriting again",
		zap.String("date", date),
		zap.String("slot", string(slot)),
		zap.String("volunteer_id", volunteerID))

	if err := store.SetSchedule(ctx, table, timeNow().UTC()); err != nil {
		return false, fmt.Errorf("failed to force remove: %w", err)
	}
	return true, nil
}

// GetSchedule returns the dates of the table in [from, to]; empty bounds are open
func GetSchedule(ctx context.Context, store db.ScheduleStore, from, to string) (model.ScheduleTable, error) {
	for _, bound := range []string{from, to} {
		if bound == "" {
			continue
		}
		if _, err := model.ParseDate(bound); err != nil {
			return nil, err
		}
	}
	if from != "" && to != "" && from > to {
		return nil, model.NewError("date range", fmt.Errorf("%s is after %s: %w", from, to, model.ErrInvalidInput))
	}

	schedule, err := store.GetSchedule(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch schedule: %w", err)
	}
	return schedule.Data.Between(from, to), nil
}

func saveSchedule(ctx context.Context, store db.ScheduleStore, cfg *config.Config, logger *zap.Logger, table model.ScheduleTable) error {
	return writeWithRetry(ctx, logger, cfg.Schedule.RetryDelay, "save schedule", func() error {
		return store.SetSchedule(ctx, table, timeNow().UTC())
	})
}

func validateScheduleKey(date string, slot model.ScheduleSlot) error {
	if _, err := model.ParseDate(date); err != nil {
		return err
	}
	if !slot.IsValid() {
		return model.NewError("slot", fmt.Errorf("%q is not a schedule slot: %w", slot, model.ErrInvalidInput))
	}
	return nil
}
