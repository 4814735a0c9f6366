package commands

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/jakechorley/hostelhub/internal/config"
	"github.com/jakechorley/hostelhub/pkg/clients/gmailclient"
	"github.com/jakechorley/hostelhub/pkg/clients/sheetsclient"
	"github.com/jakechorley/hostelhub/pkg/db"
)

// AppContext holds the application dependencies shared across all commands.
// The Google clients are nil unless the google section of the config enables them.
type AppContext struct {
	Cfg          *config.Config
	SheetsClient *sheetsclient.Client
	GmailClient  *gmailclient.Client
	Database     db.Database
	Logger       *zap.Logger
	Ctx          context.Context
}

func (app *AppContext) requireSheets() error {
	if app.SheetsClient == nil {
		return fmt.Errorf("google sheets is not configured: set google.publishSheetID")
	}
	return nil
}
