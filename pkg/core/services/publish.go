package services

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/jakechorley/hostelhub/internal/config"
	"github.com/jakechorley/hostelhub/pkg/core/model"
	"github.com/jakechorley/hostelhub/pkg/db"
)

const (
	workHoursTab      = "Work hours"
	publishDateLayout = "Mon Jan 02 2006"
)

// SheetsPublisher writes rows to a spreadsheet tab, creating or overwriting it.
// Satisfied by *sheetsclient.Client.
type SheetsPublisher interface {
	WriteTab(spreadsheetID, tabTitle string, rows [][]interface{}) error
}

// PublishSchedule writes the schedule dates in [from, to] to a tab as a date x slot grid.
// Returns the tab title.
func PublishSchedule(ctx context.Context, store db.ScheduleStore, publisher SheetsPublisher, cfg *config.Config, logger *zap.Logger, from, to string) (string, error) {
	sheetID, err := publishSheetID(cfg)
	if err != nil {
		return "", err
	}

	table, err := GetSchedule(ctx, store, from, to)
	if err != nil {
		return "", err
	}

	tabTitle := scheduleTabTitle(from, to)
	rows := scheduleRows(table)

	logger.Info("Publishing schedule",
		zap.String("tab", tabTitle),
		zap.Int("dates", len(rows)-1))

	if err := publisher.WriteTab(sheetID, tabTitle, rows); err != nil {
		return "", fmt.Errorf("failed to publish schedule: %w", err)
	}
	return tabTitle, nil
}

// PublishWorkHours writes every cached work summary to the work hours tab
func PublishWorkHours(ctx context.Context, store db.WorkSummaryStore, publisher SheetsPublisher, cfg *config.Config, logger *zap.Logger) (int, error) {
	sheetID, err := publishSheetID(cfg)
	if err != nil {
		return 0, err
	}

	summaries, err := GetAllWorkSummaries(ctx, store)
	if err != nil {
		return 0, err
	}

	logger.Info("Publishing work hours", zap.Int("users", len(summaries)))

	if err := publisher.WriteTab(sheetID, workHoursTab, workHoursRows(summaries)); err != nil {
		return 0, fmt.Errorf("failed to publish work hours: %w", err)
	}
	return len(summaries), nil
}

func publishSheetID(cfg *config.Config) (string, error) {
	if cfg.Google.PublishSheetID == "" {
		return "", model.NewError("google.publishSheetID", fmt.Errorf("is not configured: %w", model.ErrInvalidInput))
	}
	return cfg.Google.PublishSheetID, nil
}

// scheduleTabTitle names the tab after the published range, e.g. "Schedule 2024-01-01 - 2024-01-31"
func scheduleTabTitle(from, to string) string {
	switch {
	case from == "" && to == "":
		return "Schedule"
	case from == "":
		return "Schedule until " + to
	case to == "":
		return "Schedule from " + from
	}
	return fmt.Sprintf("Schedule %s - %s", from, to)
}

func scheduleRows(table model.ScheduleTable) [][]interface{} {
	header := []interface{}{"Date"}
	for _, slot := range model.ScheduleSlots {
		header = append(header, strings.ToUpper(string(slot[:1]))+string(slot[1:]))
	}

	rows := [][]interface{}{header}
	for _, date := range table.Dates() {
		label := date
		if day, err := model.ParseDate(date); err == nil {
			label = day.Format(publishDateLayout)
		}

		row := []interface{}{label}
		for _, slot := range model.ScheduleSlots {
			row = append(row, strings.Join(table.Volunteers(date, string(slot)), ", "))
		}
		rows = append(rows, row)
	}
	return rows
}

func workHoursRows(summaries []db.WorkHoursSummary) [][]interface{} {
	rows := [][]interface{}{
		{"User", "Week (hours)", "Month (hours)", "Shifts", "Last shift", "Updated"},
	}
	for _, s := range summaries {
		lastShift := ""
		if s.LastShift != nil {
			lastShift = s.LastShift.ShiftDate + " " + string(s.LastShift.ShiftTime)
		}
		updated := ""
		if !s.UpdatedAt.IsZero() {
			updated = s.UpdatedAt.Format("2006-01-02 15:04")
		}

		rows = append(rows, []interface{}{
			s.UserID,
			hours(s.WeekTotal),
			hours(s.MonthTotal),
			s.TotalLogs,
			lastShift,
			updated,
		})
	}
	return rows
}

// hours renders minutes as hours with two decimals
func hours(minutes int) string {
	return fmt.Sprintf("%.2f", float64(minutes)/60)
}
