package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jakechorley/hostelhub/pkg/core/model"
	"github.com/jakechorley/hostelhub/pkg/core/services"
)

// StartShiftCmd creates the startShift command
func StartShiftCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "startShift <user_id> <shift_time>",
		Short: "Clock a volunteer in, closing any shift they left open",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			record, err := services.StartShift(app.Ctx, app.Database, app.Logger, args[0], model.ShiftTime(args[1]))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "\n✓ Shift started\n\n")
			fmt.Fprintln(out, formatShift(*record))
			fmt.Fprintln(out)
			return nil
		},
	}
}

// EndShiftCmd creates the endShift command
func EndShiftCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "endShift <user_id> [notes]",
		Short: "Clock a volunteer out of their active shift",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var notes string
			if len(args) > 1 {
				notes = args[1]
			}

			record, err := services.EndShift(app.Ctx, app.Database, app.Logger, args[0], notes)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "\n✓ Shift ended after %s\n\n", formatMinutes(record.Minutes()))
			fmt.Fprintln(out, formatShift(*record))
			fmt.Fprintln(out)
			return nil
		},
	}
}

// ActiveShiftCmd creates the activeShift command
func ActiveShiftCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "activeShift <user_id>",
		Short: "Show the volunteer's shift in progress",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			record, err := services.GetActiveShift(app.Ctx, app.Database, app.Logger, args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if record == nil {
				fmt.Fprintf(out, "%s has no shift in progress.\n", args[0])
				return nil
			}
			fmt.Fprintln(out, formatShift(*record))
			return nil
		},
	}
}

// ShiftHistoryCmd creates the shiftHistory command
func ShiftHistoryCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "shiftHistory <user_id>",
		Short: "List a volunteer's shifts, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			limit, _ := cmd.Flags().GetInt("limit")

			records, err := services.GetShiftHistory(app.Ctx, app.Database, args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(records) == 0 {
				fmt.Fprintf(out, "No shifts recorded for %s.\n", args[0])
				return nil
			}

			if limit > 0 && len(records) > limit {
				records = records[:limit]
			}
			fmt.Fprintf(out, "\nShifts for %s:\n\n", args[0])
			for _, record := range records {
				fmt.Fprintf(out, "  %s\n", formatShift(record))
			}
			fmt.Fprintln(out)
			return nil
		},
	}

	cmd.Flags().Int("limit", 0, "Show at most this many shifts (0 for all)")

	return cmd
}

// DeleteShiftsCmd creates the deleteShifts command
func DeleteShiftsCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "deleteShifts <shift_id>...",
		Short: "Delete work log entries and recompute the affected summaries",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			deleted, err := services.DeleteWorkLogs(app.Ctx, app.Database, app.Logger, args)
			if err != nil {
				return err
			}

			app.Logger.Debug("deleteShifts command", zap.Int("requested", len(args)), zap.Int("deleted", deleted))
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Deleted %d of %d shifts\n", deleted, len(args))
			return nil
		},
	}
}

// PurgeShiftsCmd creates the purgeShifts command
func PurgeShiftsCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "purgeShifts <user_id>",
		Short: "Delete every shift of a volunteer and their cached summary",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			deleted, err := services.PurgeWorkLogs(app.Ctx, app.Database, app.Logger, args[0])
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "✓ Purged %d shifts for %s\n", deleted, args[0])
			return nil
		},
	}
}
