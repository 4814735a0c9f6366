package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"

	"github.com/jakechorley/hostelhub/internal/config"
	"github.com/jakechorley/hostelhub/pkg/docstore"
)

// tabsOnly is a spreadsheet with no tabs that accepts writes
type tabsOnly struct {
	tabs map[string][][]interface{}
}

func (s *tabsOnly) HasTab(_, title string) (bool, error) {
	_, ok := s.tabs[title]
	return ok, nil
}

func (s *tabsOnly) GetValues(_, sheetRange string) ([][]interface{}, error) {
	return s.tabs[sheetRange[1:len(sheetRange)-1]], nil
}

func (s *tabsOnly) WriteTab(_, title string, rows [][]interface{}) error {
	s.tabs[title] = rows
	return nil
}

func TestOpen(t *testing.T) {
	ctx := context.Background()
	sheets := &tabsOnly{tabs: map[string][][]interface{}{}}

	tests := []struct {
		name    string
		cfg     config.StoreConfig
		opts    []Option
		wantErr bool
	}{
		{name: "memory", cfg: config.StoreConfig{Backend: config.BackendMemory}},
		{name: "sqlite", cfg: config.StoreConfig{Backend: config.BackendSQLite, Path: filepath.Join(t.TempDir(), "hostel.db")}},
		{name: "sqlite without path", cfg: config.StoreConfig{Backend: config.BackendSQLite}, wantErr: true},
		{name: "sheets", cfg: config.StoreConfig{Backend: config.BackendSheets, SheetID: "sheet-1"}, opts: []Option{WithSheetsClient(sheets)}},
		{name: "sheets without client", cfg: config.StoreConfig{Backend: config.BackendSheets, SheetID: "sheet-1"}, wantErr: true},
		{name: "unknown", cfg: config.StoreConfig{Backend: "dynamo"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, err := Open(ctx, tt.cfg, zap.NewNop(), tt.opts...)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			t.Cleanup(func() { _ = store.Close() })

			require.NoError(t, store.Set(ctx, "tasks", "t1", docstore.Document{"title": "mop"}))
			doc, err := store.Get(ctx, "tasks", "t1")
			require.NoError(t, err)
			assert.Equal(t, "mop", doc["title"])
		})
	}
}

func TestOpen_WithTracer(t *testing.T) {
	store, err := Open(context.Background(), config.StoreConfig{Backend: config.BackendMemory}, zap.NewNop(),
		WithTracer(noop.NewTracerProvider().Tracer("test")))
	require.NoError(t, err)

	_, isMemory := store.(*docstore.Memory)
	assert.False(t, isMemory, "store is wrapped")
}

func TestNeedsSheets(t *testing.T) {
	assert.True(t, NeedsSheets(config.StoreConfig{Backend: config.BackendSheets}))
	assert.False(t, NeedsSheets(config.StoreConfig{Backend: config.BackendSQLite}))
}
