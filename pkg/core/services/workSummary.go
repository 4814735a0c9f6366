package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jakechorley/hostelhub/pkg/core/model"
	"github.com/jakechorley/hostelhub/pkg/db"
)

// recomputeConcurrency bounds the parallel summary rebuilds of RecomputeAllWorkSummaries
const recomputeConcurrency = 4

// UpdateWorkSummary recomputes a user's summary from their completed shifts and overwrites
// the stored one
func UpdateWorkSummary(ctx context.Context, store db.ShiftStore, logger *zap.Logger, userID string) (*db.WorkHoursSummary, error) {
	if err := requireID("user id", userID); err != nil {
		return nil, err
	}

	logs, err := store.GetWorkLogsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch work logs: %w", err)
	}

	summary := computeWorkSummary(userID, logs, timeNow())

	if err := store.SetWorkSummary(ctx, &summary); err != nil {
		return nil, fmt.Errorf("failed to save work summary: %w", err)
	}

	logger.Debug("Work summary updated",
		zap.String("user_id", userID),
		zap.Int("week_total", summary.WeekTotal),
		zap.Int("month_total", summary.MonthTotal),
		zap.Int("total_logs", summary.TotalLogs))

	return &summary, nil
}

// refreshWorkSummary runs UpdateWorkSummary after a ledger write. The ledger write already
// succeeded, so a failure here only leaves the summary stale and is logged.
func refreshWorkSummary(ctx context.Context, store db.ShiftStore, logger *zap.Logger, userID string) {
	if _, err := UpdateWorkSummary(ctx, store, logger, userID); err != nil {
		logger.Error("Failed to update work summary",
			zap.String("user_id", userID),
			zap.Error(err))
	}
}

// computeWorkSummary aggregates the completed shifts in logs. Week and month windows are
// taken in now's location; a shift counts where its end time falls.
func computeWorkSummary(userID string, logs []db.ShiftRecord, now time.Time) db.WorkHoursSummary {
	weekStart := model.StartOfWeek(now)
	weekEnd := weekStart.AddDate(0, 0, 7)
	monthStart := model.StartOfMonth(now)
	monthEnd := monthStart.AddDate(0, 1, 0)

	summary := db.WorkHoursSummary{
		UserID:    userID,
		UpdatedAt: now.UTC(),
	}

	for i := range logs {
		record := logs[i]
		if record.IsActive() {
			continue
		}
		end := *record.EndTime

		summary.TotalLogs++
		if within(end, weekStart, weekEnd) {
			summary.WeekTotal += record.Minutes()
		}
		if within(end, monthStart, monthEnd) {
			summary.MonthTotal += record.Minutes()
		}
		if summary.LastShift == nil || end.After(*summary.LastShift.EndTime) {
			summary.LastShift = &record
		}
	}

	return summary
}

// within reports whether t is in [start, end)
func within(t, start, end time.Time) bool {
	return !t.Before(start) && t.Before(end)
}

// GetAllWorkSummaries returns the cached summaries as stored, ordered by user id
func GetAllWorkSummaries(ctx context.Context, store db.WorkSummaryStore) ([]db.WorkHoursSummary, error) {
	summaries, err := store.GetWorkSummaries(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch work summaries: %w", err)
	}

	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].UserID < summaries[j].UserID
	})
	return summaries, nil
}

// GetWorkSummary returns one user's cached summary
func GetWorkSummary(ctx context.Context, store db.WorkSummaryStore, userID string) (*db.WorkHoursSummary, error) {
	if err := requireID("user id", userID); err != nil {
		return nil, err
	}
	return store.GetWorkSummary(ctx, userID)
}

// RecomputeAllWorkSummaries rebuilds the summary of every user with a work log or a cached
// summary. Returns the number of summaries written.
func RecomputeAllWorkSummaries(ctx context.Context, store db.ShiftStore, logger *zap.Logger) (int, error) {
	logs, err := store.GetWorkLogs(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch work logs: %w", err)
	}
	summaries, err := store.GetWorkSummaries(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch work summaries: %w", err)
	}

	var users []string
	for _, record := range logs {
		users = append(users, record.UserID)
	}
	for _, summary := range summaries {
		users = append(users, summary.UserID)
	}
	users = uniqueStrings(users)

	logger.Info("Recomputing work summaries", zap.Int("users", len(users)))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(recomputeConcurrency)

	for _, userID := range users {
		g.Go(func() error {
			if _, err := UpdateWorkSummary(gctx, store, logger, userID); err != nil {
				return fmt.Errorf("failed to recompute summary for %s: %w", userID, err)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return 0, err
	}
	return len(users), nil
}
