package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/jakechorley/hostelhub/pkg/core/model"
	"github.com/jakechorley/hostelhub/pkg/db"
)

const timeLayout = "2006-01-02 15:04"

// formatMinutes renders a minute count as "3h 05m"
func formatMinutes(minutes int) string {
	if minutes < 0 {
		minutes = 0
	}
	return fmt.Sprintf("%dh %02dm", minutes/60, minutes%60)
}

func formatShift(record db.ShiftRecord) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s  %s %s", record.ID, record.ShiftDate, record.ShiftTime)

	if record.IsActive() {
		fmt.Fprintf(&b, "  started %s  (in progress)", record.StartTime.Local().Format(timeLayout))
	} else {
		fmt.Fprintf(&b, "  %s  %s", record.StartTime.Local().Format(timeLayout), formatMinutes(record.Minutes()))
		if record.ForceClosed {
			b.WriteString("  [force-closed]")
		}
	}

	if record.Notes != "" {
		fmt.Fprintf(&b, "  %q", record.Notes)
	}
	return b.String()
}

func formatSummary(summary db.WorkHoursSummary) string {
	last := "-"
	if summary.LastShift != nil {
		last = fmt.Sprintf("%s %s", summary.LastShift.ShiftDate, summary.LastShift.ShiftTime)
	}
	return fmt.Sprintf("%-20s week %-9s month %-9s logs %-4d last %s",
		summary.UserID,
		formatMinutes(summary.WeekTotal),
		formatMinutes(summary.MonthTotal),
		summary.TotalLogs,
		last)
}

// formatSchedule prints the table one date per block, slots in day order
func formatSchedule(table model.ScheduleTable) string {
	dates := table.Dates()
	if len(dates) == 0 {
		return "No volunteers scheduled.\n"
	}

	var b strings.Builder
	for _, date := range dates {
		fmt.Fprintf(&b, "%s\n", date)
		for _, slot := range model.ScheduleSlots {
			volunteers := table.Volunteers(date, string(slot))
			if len(volunteers) == 0 {
				continue
			}
			fmt.Fprintf(&b, "  %-10s %s\n", slot, strings.Join(volunteers, ", "))
		}
	}
	return b.String()
}

func formatEvent(event db.Event) string {
	line := fmt.Sprintf("%s  %-9s %s  %s - %s",
		event.ID,
		event.Status,
		event.Title,
		event.StartTime.Local().Format(timeLayout),
		event.EndTime.Local().Format(timeLayout))
	if event.Recurrence != "" {
		line += "  (" + event.Recurrence + ")"
	}
	return line
}

func formatMessage(msg db.Message) string {
	marker := " "
	if !msg.Read {
		marker = "*"
	}
	to := msg.RecipientID
	if msg.IsBroadcast() {
		to = "everyone"
	}
	return fmt.Sprintf("%s %s  %s  %s -> %s  %s: %s",
		marker, msg.ID, msg.CreatedAt.Local().Format(timeLayout), msg.SenderID, to, msg.Subject, msg.Body)
}

func formatDuration(d time.Duration) string {
	return d.Round(time.Minute).String()
}
