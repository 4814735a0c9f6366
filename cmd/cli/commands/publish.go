package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jakechorley/hostelhub/pkg/core/services"
	"github.com/jakechorley/hostelhub/pkg/utils"
)

// PublishScheduleCmd creates the publishSchedule command
func PublishScheduleCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "publishSchedule",
		Short: "Write the schedule table to a tab of the publish spreadsheet",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireSheets(); err != nil {
				return err
			}

			from, _ := cmd.Flags().GetString("from")
			to, _ := cmd.Flags().GetString("to")

			tab, err := services.PublishSchedule(app.Ctx, app.Database, app.SheetsClient, app.Cfg, app.Logger, from, to)
			if err != nil {
				return err
			}

			app.Logger.Debug("publishSchedule command", zap.String("tab", tab))
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Schedule published to tab %q\n", tab)
			return nil
		},
	}

	cmd.Flags().String("from", "", "First date to publish (YYYY-MM-DD)")
	cmd.Flags().String("to", "", "Last date to publish (YYYY-MM-DD)")

	return cmd
}

// PublishWorkHoursCmd creates the publishWorkHours command
func PublishWorkHoursCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "publishWorkHours",
		Short: "Write every volunteer's work-hour summary to the publish spreadsheet",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireSheets(); err != nil {
				return err
			}

			rows, err := services.PublishWorkHours(app.Ctx, app.Database, app.SheetsClient, app.Cfg, app.Logger)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "✓ Published work hours for %d volunteers\n", rows)
			return nil
		},
	}
}

// GoogleLogoutCmd creates the googleLogout command. It skips app setup so a revoked or
// broken token can be removed without starting the OAuth flow.
func GoogleLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:               "googleLogout",
		Short:             "Forget the saved Google token for this environment",
		Args:              cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
		RunE: func(cmd *cobra.Command, args []string) error {
			env, _ := cmd.Flags().GetString("env")
			if env == "" {
				return fmt.Errorf("--env is required")
			}

			utils.ClearToken()
			if err := utils.DeleteTokenFile(env); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "✓ Google token for %s removed\n", env)
			return nil
		},
	}
}
