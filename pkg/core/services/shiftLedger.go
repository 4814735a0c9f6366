package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/jakechorley/hostelhub/pkg/core/model"
	"github.com/jakechorley/hostelhub/pkg/db"
)

// StartShift opens a new shift for userID. Any shift the user still has open is
// force-closed first, so a user never has more than one active shift.
func StartShift(ctx context.Context, store db.ShiftStore, logger *zap.Logger, userID string, shiftTime model.ShiftTime) (*db.ShiftRecord, error) {
	if err := requireID("user id", userID); err != nil {
		return nil, err
	}
	if !shiftTime.IsValid() {
		return nil, model.NewError("shift time", fmt.Errorf("%q is not a shift time: %w", shiftTime, model.ErrInvalidInput))
	}

	logger.Info("Starting shift", zap.String("user_id", userID), zap.String("shift_time", string(shiftTime)))

	logs, err := store.GetWorkLogsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch work logs: %w", err)
	}

	for _, open := range activeShifts(logs) {
		logger.Warn("Closing shift left open before starting a new one",
			zap.String("user_id", userID),
			zap.String("shift_id", open.ID),
			zap.Time("start_time", open.StartTime))

		if err := forceEndPreviousShift(ctx, store, logger, open); err != nil {
			return nil, err
		}
	}

	now := timeNow()
	record := &db.ShiftRecord{
		UserID:    userID,
		ShiftDate: now.Format(model.DateLayout),
		ShiftTime: shiftTime,
		StartTime: now.UTC(),
	}

	if err := store.InsertWorkLog(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to insert work log: %w", err)
	}

	logger.Debug("Shift started", zap.String("shift_id", record.ID))
	return record, nil
}

// EndShift closes the user's active shift, recording its whole elapsed minutes, then
// recomputes the user's work summary. Fails with model.ErrNotFound if nothing is open.
func EndShift(ctx context.Context, store db.ShiftStore, logger *zap.Logger, userID, notes string) (*db.ShiftRecord, error) {
	if err := requireID("user id", userID); err != nil {
		return nil, err
	}

	active, err := GetActiveShift(ctx, store, logger, userID)
	if err != nil {
		return nil, err
	}
	if active == nil {
		return nil, model.NewError("active shift", model.ErrNotFound)
	}

	closeShift(active, timeNow(), false)
	if notes != "" {
		active.Notes = notes
	}

	if err := store.CloseWorkLog(ctx, active); err != nil {
		return nil, fmt.Errorf("failed to close work log: %w", err)
	}

	logger.Info("Shift ended",
		zap.String("user_id", userID),
		zap.String("shift_id", active.ID),
		zap.Int("total_minutes", active.Minutes()))

	refreshWorkSummary(ctx, store, logger, userID)
	return active, nil
}

// forceEndPreviousShift closes an orphaned shift with forceClosed set and recomputes the
// owner's summary
func forceEndPreviousShift(ctx context.Context, store db.ShiftStore, logger *zap.Logger, record *db.ShiftRecord) error {
	closeShift(record, timeNow(), true)

	if err := store.CloseWorkLog(ctx, record); err != nil {
		return fmt.Errorf("failed to force-close work log %s: %w", record.ID, err)
	}

	logger.Warn("Shift force-closed",
		zap.String("user_id", record.UserID),
		zap.String("shift_id", record.ID),
		zap.Int("total_minutes", record.Minutes()))

	refreshWorkSummary(ctx, store, logger, record.UserID)
	return nil
}

// GetActiveShift returns the user's open shift, or nil. Finding more than one means the
// single-active-shift invariant was broken (e.g. a client crashed mid-start); the older
// ones are force-closed and the newest is returned.
func GetActiveShift(ctx context.Context, store db.ShiftStore, logger *zap.Logger, userID string) (*db.ShiftRecord, error) {
	logs, err := store.GetWorkLogsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch work logs: %w", err)
	}

	open := activeShifts(logs)
	switch len(open) {
	case 0:
		return nil, nil
	case 1:
		return open[0], nil
	}

	logger.Warn("Multiple active shifts found, repairing",
		zap.String("user_id", userID),
		zap.Int("active_count", len(open)),
		zap.Error(model.ErrInvariantViolation))

	// activeShifts is newest first
	for _, stale := range open[1:] {
		if err := forceEndPreviousShift(ctx, store, logger, stale); err != nil {
			return nil, err
		}
	}

	return open[0], nil
}

// GetShiftHistory returns every shift of the user, newest first
func GetShiftHistory(ctx context.Context, store db.WorkLogStore, userID string) ([]db.ShiftRecord, error) {
	if err := requireID("user id", userID); err != nil {
		return nil, err
	}

	logs, err := store.GetWorkLogsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch work logs: %w", err)
	}

	sort.SliceStable(logs, func(i, j int) bool {
		return logs[i].StartTime.After(logs[j].StartTime)
	})
	return logs, nil
}

// DeleteWorkLog removes one shift record and recomputes its owner's summary
func DeleteWorkLog(ctx context.Context, store db.ShiftStore, logger *zap.Logger, id string) error {
	record, err := store.GetWorkLog(ctx, id)
	if err != nil {
		return err
	}

	if err := store.DeleteWorkLog(ctx, id); err != nil {
		return err
	}

	logger.Info("Work log deleted", zap.String("shift_id", id), zap.String("user_id", record.UserID))

	refreshWorkSummary(ctx, store, logger, record.UserID)
	return nil
}

// DeleteWorkLogs removes several shift records, skipping ids that no longer exist, and
// recomputes each affected user's summary once. Returns how many were deleted.
func DeleteWorkLogs(ctx context.Context, store db.ShiftStore, logger *zap.Logger, ids []string) (int, error) {
	var users []string
	deleted := 0

	for _, id := range uniqueStrings(ids) {
		record, err := store.GetWorkLog(ctx, id)
		if err != nil {
			if isNotFound(err) {
				logger.Debug("Work log already gone", zap.String("shift_id", id))
				continue
			}
			return deleted, err
		}

		if err := store.DeleteWorkLog(ctx, id); err != nil {
			return deleted, err
		}
		deleted++
		users = append(users, record.UserID)
	}

	logger.Info("Work logs deleted", zap.Int("requested", len(ids)), zap.Int("deleted", deleted))

	for _, userID := range uniqueStrings(users) {
		refreshWorkSummary(ctx, store, logger, userID)
	}
	return deleted, nil
}

// PurgeWorkLogs deletes every shift record of a user and resets their summary
func PurgeWorkLogs(ctx context.Context, store db.ShiftStore, logger *zap.Logger, userID string) (int, error) {
	if err := requireID("user id", userID); err != nil {
		return 0, err
	}

	logs, err := store.GetWorkLogsByUser(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch work logs: %w", err)
	}

	for i, record := range logs {
		if err := store.DeleteWorkLog(ctx, record.ID); err != nil {
			return i, err
		}
	}

	logger.Info("Work logs purged", zap.String("user_id", userID), zap.Int("deleted", len(logs)))

	refreshWorkSummary(ctx, store, logger, userID)
	return len(logs), nil
}

// activeShifts returns pointers to the records with no end time, newest start first
func activeShifts(logs []db.ShiftRecord) []*db.ShiftRecord {
	var open []*db.ShiftRecord
	for i := range logs {
		if logs[i].IsActive() {
			open = append(open, &logs[i])
		}
	}
	sort.SliceStable(open, func(i, j int) bool {
		return open[i].StartTime.After(open[j].StartTime)
	})
	return open
}

// closeShift sets the end fields of record as of end
func closeShift(record *db.ShiftRecord, end time.Time, forced bool) {
	end = end.UTC()
	minutes := model.ElapsedMinutes(record.StartTime, end)
	record.EndTime = &end
	record.TotalMinutes = &minutes
	record.ForceClosed = forced
}
