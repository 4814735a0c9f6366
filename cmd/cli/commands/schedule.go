package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jakechorley/hostelhub/pkg/core/model"
	"github.com/jakechorley/hostelhub/pkg/core/services"
)

// ViewScheduleCmd creates the viewSchedule command
func ViewScheduleCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "viewSchedule",
		Short: "Print the schedule table, optionally limited to a date range",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			from, _ := cmd.Flags().GetString("from")
			to, _ := cmd.Flags().GetString("to")

			table, err := services.GetSchedule(app.Ctx, app.Database, from, to)
			if err != nil {
				return err
			}

			fmt.Fprint(cmd.OutOrStdout(), formatSchedule(table))
			return nil
		},
	}

	cmd.Flags().String("from", "", "First date to include (YYYY-MM-DD)")
	cmd.Flags().String("to", "", "Last date to include (YYYY-MM-DD)")

	return cmd
}

// AssignCmd creates the assign command
func AssignCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "assign <date> <slot> <volunteer_id>",
		Short: "Add a volunteer to a schedule slot",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			date, slot, volunteerID := args[0], model.ScheduleSlot(args[1]), args[2]

			table, err := services.Assign(app.Ctx, app.Database, app.Cfg, app.Logger, date, slot, volunteerID)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "✓ %s assigned to %s %s\n", volunteerID, date, slot)
			fmt.Fprintf(out, "  %s %s: %v\n", date, slot, table.Volunteers(date, string(slot)))
			return nil
		},
	}
}

// UnassignCmd creates the unassign command
func UnassignCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "unassign <date> <slot> [volunteer_id]",
		Short: "Remove a volunteer (or the whole slot) from the schedule",
		Args:  cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			verify, _ := cmd.Flags().GetBool("verify")

			var volunteerID string
			if len(args) > 2 {
				volunteerID = args[2]
			}

			result, err := services.Unassign(app.Ctx, app.Database, app.Cfg, app.Logger,
				args[0], model.ScheduleSlot(args[1]), volunteerID, verify)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			target := volunteerID
			if target == "" {
				target = "everyone"
			}
			switch {
			case !result.Removed:
				fmt.Fprintf(out, "Nothing to remove: %s is not on %s %s\n", target, args[0], args[1])
			case result.Corrected:
				fmt.Fprintf(out, "✓ Removed %s from %s %s (verification had to overwrite again)\n", target, args[0], args[1])
			default:
				fmt.Fprintf(out, "✓ Removed %s from %s %s\n", target, args[0], args[1])
			}
			return nil
		},
	}

	cmd.Flags().Bool("verify", false, "Re-read the schedule afterwards and force the removal if it did not stick")

	return cmd
}

// ForceRemoveCmd creates the forceRemove command
func ForceRemoveCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "forceRemove <date> <slot> [volunteer_id]",
		Short: "Overwrite the schedule to drop an entry that a normal unassign left behind",
		Args:  cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			var volunteerID string
			if len(args) > 2 {
				volunteerID = args[2]
			}

			if _, err := model.ParseDate(args[0]); err != nil {
				return err
			}

			removed, err := services.ForceRemove(app.Ctx, app.Database, app.Logger, args[0], model.ScheduleSlot(args[1]), volunteerID)
			if err != nil {
				return err
			}

			if removed {
				fmt.Fprintln(cmd.OutOrStdout(), "✓ Entry removed")
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), "Entry was already gone")
			}
			return nil
		},
	}
}
