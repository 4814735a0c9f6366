package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jakechorley/hostelhub/pkg/core/services"
)

// WorkHoursCmd creates the workHours command
func WorkHoursCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "workHours [user_id]",
		Short: "Show cached work-hour summaries (all volunteers when no user is given)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			if len(args) == 1 {
				summary, err := services.GetWorkSummary(app.Ctx, app.Database, args[0])
				if err != nil {
					return err
				}
				fmt.Fprintln(out, formatSummary(*summary))
				return nil
			}

			summaries, err := services.GetAllWorkSummaries(app.Ctx, app.Database)
			if err != nil {
				return err
			}
			if len(summaries) == 0 {
				fmt.Fprintln(out, "No work hours recorded yet.")
				return nil
			}

			fmt.Fprintf(out, "\nWork hours (%d volunteers):\n\n", len(summaries))
			for _, summary := range summaries {
				fmt.Fprintf(out, "  %s\n", formatSummary(summary))
			}
			fmt.Fprintln(out)
			return nil
		},
	}
}

// RecomputeWorkHoursCmd creates the recomputeWorkHours command
func RecomputeWorkHoursCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "recomputeWorkHours",
		Short: "Rebuild every cached work-hour summary from the work log",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			count, err := services.RecomputeAllWorkSummaries(app.Ctx, app.Database, app.Logger)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "✓ Recomputed %d summaries\n", count)
			return nil
		},
	}
}
