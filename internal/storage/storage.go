// Package storage opens the document store selected in config
package storage

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/jakechorley/hostelhub/internal/config"
	"github.com/jakechorley/hostelhub/pkg/docstore"
	"github.com/jakechorley/hostelhub/pkg/firestoredb"
	"github.com/jakechorley/hostelhub/pkg/mongodb"
	"github.com/jakechorley/hostelhub/pkg/postgres"
	"github.com/jakechorley/hostelhub/pkg/sheetsdb"
	"github.com/jakechorley/hostelhub/pkg/sqlitedb"
)

type options struct {
	tracer trace.Tracer
	sheets sheetsdb.Client
}

type Option func(*options)

// WithTracer wraps every store call in a span
func WithTracer(tracer trace.Tracer) Option {
	return func(o *options) { o.tracer = tracer }
}

// WithSheetsClient supplies the authenticated client the sheets backend needs
func WithSheetsClient(client sheetsdb.Client) Option {
	return func(o *options) { o.sheets = client }
}

// Open connects to and migrates the configured backend
func Open(ctx context.Context, cfg config.StoreConfig, logger *zap.Logger, opts ...Option) (docstore.Store, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	store, err := open(ctx, cfg, o)
	if err != nil {
		return nil, err
	}

	logger.Info("Document store opened", zap.String("backend", cfg.Backend))

	if o.tracer != nil {
		return docstore.WithTracing(store, o.tracer), nil
	}
	return store, nil
}

// NeedsSheets reports whether the backend reads and writes through Google Sheets
func NeedsSheets(cfg config.StoreConfig) bool {
	return cfg.Backend == config.BackendSheets
}

func open(ctx context.Context, cfg config.StoreConfig, o options) (docstore.Store, error) {
	switch cfg.Backend {
	case config.BackendMemory:
		return docstore.NewMemory(), nil

	case config.BackendSQLite:
		return sqlitedb.Open(cfg.Path)

	case config.BackendPostgres:
		pg, err := postgres.NewDB(ctx, cfg.DSN)
		if err != nil {
			return nil, err
		}
		if err := pg.RunMigrations(ctx); err != nil {
			_ = pg.Close()
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
		return pg, nil

	case config.BackendFirestore:
		return firestoredb.Open(ctx, cfg.ProjectID, cfg.Database)

	case config.BackendMongoDB:
		return mongodb.Open(ctx, cfg.DSN, cfg.Database)

	case config.BackendSheets:
		if o.sheets == nil {
			return nil, fmt.Errorf("sheets backend needs an authenticated sheets client")
		}
		return sheetsdb.New(o.sheets, cfg.SheetID)

	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
}
