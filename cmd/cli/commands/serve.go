package commands

import (
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/jakechorley/hostelhub/pkg/api"
	"github.com/jakechorley/hostelhub/pkg/core/services"
)

// ServeCmd creates the serve command
func ServeCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the JSON HTTP API until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
				app.Cfg.Server.Addr = addr
			}
			if app.Cfg.Server.JWTSecret == "" {
				return fmt.Errorf("server.jwtSecret (or HOSTEL_JWT_SECRET) must be set to serve the API")
			}

			var notifier services.Notifier
			if app.GmailClient != nil {
				notifier = app.GmailClient
			}

			ctx, stop := signal.NotifyContext(app.Ctx, syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return api.NewServer(app.Database, app.Cfg, app.Logger, notifier).ListenAndServe(ctx)
		},
	}

	cmd.Flags().String("addr", "", "Listen address, overriding server.addr")

	return cmd
}

// IssueTokenCmd creates the issueToken command
func IssueTokenCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "issueToken <user_id>",
		Short: "Mint an API bearer token for a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			admin, _ := cmd.Flags().GetBool("admin")
			ttl, _ := cmd.Flags().GetDuration("ttl")

			if app.Cfg.Server.JWTSecret == "" {
				return fmt.Errorf("server.jwtSecret (or HOSTEL_JWT_SECRET) must be set to issue tokens")
			}
			if ttl <= 0 {
				return fmt.Errorf("ttl must be positive, got %s", ttl)
			}

			role := ""
			if admin {
				role = api.RoleAdmin
			}

			token, err := api.IssueToken(app.Cfg.Server.JWTSecret, args[0], role, ttl)
			if err != nil {
				return fmt.Errorf("failed to sign token: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Token for %s (valid for %s):\n\n", args[0], formatDuration(ttl))
			fmt.Fprintln(out, token)
			return nil
		},
	}

	cmd.Flags().Bool("admin", false, "Grant the admin role")
	cmd.Flags().Duration("ttl", 30*24*time.Hour, "How long the token stays valid")

	return cmd
}
