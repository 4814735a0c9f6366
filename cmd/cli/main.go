package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jakechorley/hostelhub/cmd/cli/commands"
	"github.com/jakechorley/hostelhub/internal/config"
	"github.com/jakechorley/hostelhub/internal/storage"
	"github.com/jakechorley/hostelhub/pkg/clients/gmailclient"
	"github.com/jakechorley/hostelhub/pkg/clients/sheetsclient"
	"github.com/jakechorley/hostelhub/pkg/db"
	"github.com/jakechorley/hostelhub/pkg/utils/logging"
	"github.com/jakechorley/hostelhub/pkg/utils/telemetry"
)

var (
	env      string
	app      = &commands.AppContext{}
	shutdown telemetry.ShutdownFunc
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "hostelhub",
		Short: "HostelHub CLI - Run the hostel's shifts, schedule and shared boards",
		Long: `A CLI for hostel staff and volunteers: clock shifts in and out, keep the volunteer
schedule, and manage tasks, events, messages and laundry bookings. 'serve' runs the same
operations as a JSON HTTP API.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initApp()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			closeApp()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&env, "env", "e", "", "Environment (required: test, prod, etc.)")
	rootCmd.MarkPersistentFlagRequired("env")

	rootCmd.AddCommand(
		// Shift ledger
		commands.StartShiftCmd(app),
		commands.EndShiftCmd(app),
		commands.ActiveShiftCmd(app),
		commands.ShiftHistoryCmd(app),
		commands.DeleteShiftsCmd(app),
		commands.PurgeShiftsCmd(app),
		commands.WorkHoursCmd(app),
		commands.RecomputeWorkHoursCmd(app),

		// Schedule
		commands.ViewScheduleCmd(app),
		commands.AssignCmd(app),
		commands.UnassignCmd(app),
		commands.ForceRemoveCmd(app),

		// Boards
		commands.AddTaskCmd(app),
		commands.ListTasksCmd(app),
		commands.SetTaskStatusCmd(app),
		commands.AssignTaskCmd(app),
		commands.DeleteTaskCmd(app),
		commands.AddEventCmd(app),
		commands.ListEventsCmd(app),
		commands.RefreshEventsCmd(app),
		commands.SetEventStatusCmd(app),
		commands.EventOccurrencesCmd(app),
		commands.DeleteEventCmd(app),
		commands.SendMessageCmd(app),
		commands.InboxCmd(app),
		commands.MarkReadCmd(app),
		commands.DeleteMessageCmd(app),
		commands.BookLaundryCmd(app),
		commands.CancelLaundryCmd(app),
		commands.LaundryCmd(app),

		// Google Sheets
		commands.PublishScheduleCmd(app),
		commands.PublishWorkHoursCmd(app),
		commands.GoogleLogoutCmd(),

		commands.ServeCmd(app),
		commands.IssueTokenCmd(app),
		commands.InteractiveCmd(app),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// initApp sets up logger, config, telemetry, any Google clients and the document store
func initApp() error {
	var err error
	app.Ctx = context.Background()

	app.Logger, err = logging.InitLogger(env)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	app.Logger.Debug("Starting application", zap.String("environment", env))

	app.Cfg, err = config.LoadWithEnv(env)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	app.Logger.Debug("Configuration loaded", zap.String("hostel", app.Cfg.HostelName))

	shutdown, err = telemetry.Setup(app.Ctx, app.Cfg.Telemetry)
	if err != nil {
		return fmt.Errorf("failed to set up telemetry: %w", err)
	}

	if googleEnabled(app.Cfg) {
		if err := initGoogleClients(); err != nil {
			return err
		}
	} else {
		app.Logger.Debug("Google integration disabled")
	}

	opts := []storage.Option{storage.WithTracer(telemetry.Tracer())}
	if app.SheetsClient != nil {
		opts = append(opts, storage.WithSheetsClient(app.SheetsClient))
	}

	store, err := storage.Open(app.Ctx, app.Cfg.Store, app.Logger, opts...)
	if err != nil {
		return fmt.Errorf("failed to open document store: %w", err)
	}
	app.Database = db.NewDB(store)

	return nil
}

// initGoogleClients runs the OAuth flow once through the Sheets client; Gmail reuses its token
func initGoogleClients() error {
	oauthCfg, err := config.LoadOAuthClientWithEnv(env)
	if err != nil {
		return fmt.Errorf("failed to load OAuth client config: %w", err)
	}

	app.SheetsClient, err = sheetsclient.NewClient(app.Ctx, oauthCfg, env, app.Logger)
	if err != nil {
		return fmt.Errorf("failed to create sheets client: %w", err)
	}

	if app.Cfg.Google.NotifyByEmail {
		app.GmailClient, err = gmailclient.NewClient(app.Ctx, oauthCfg, app.SheetsClient.Token(), app.Cfg.Google)
		if err != nil {
			return fmt.Errorf("failed to create gmail client: %w", err)
		}
	}

	app.Logger.Debug("Google clients initialized")
	return nil
}

func googleEnabled(cfg *config.Config) bool {
	return cfg.Google.PublishSheetID != "" || cfg.Google.NotifyByEmail || storage.NeedsSheets(cfg.Store)
}

func closeApp() {
	if app.Database != nil {
		if err := app.Database.Close(); err != nil {
			app.Logger.Warn("Failed to close document store", zap.Error(err))
		}
	}
	if shutdown != nil {
		if err := shutdown(context.Background()); err != nil {
			app.Logger.Warn("Failed to flush traces", zap.Error(err))
		}
	}
	if app.Logger != nil {
		_ = app.Logger.Sync()
	}
}
