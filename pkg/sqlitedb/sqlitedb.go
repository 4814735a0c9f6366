// Package sqlitedb is a docstore.Store backed by a single SQLite file, for running the
// hostel tools without any external database.
package sqlitedb

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/jakechorley/hostelhub/pkg/docstore"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

const (
	_driverName = "sqlite"
	_table      = "documents"
)

// Store keeps every collection in one documents table with JSON text bodies
type Store struct {
	db      *sqlx.DB
	builder squirrel.StatementBuilderType
}

var _ docstore.Store = (*Store)(nil)

// Open opens (creating if needed) and migrates the SQLite file at path
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	dsn := filepath.Clean(path) + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sqlx.Open(_driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite db: %w", err)
	}
	// SQLite serialises writers anyway; one connection avoids SQLITE_BUSY between our own goroutines
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping sqlite db: %w", err)
	}

	if err := runMigrations(db.DB); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &Store{
		db:      db,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question),
	}, nil
}

func runMigrations(db *sql.DB) error {
	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return err
	}
	defer source.Close()

	driver, err := sqlite.WithInstance(db, &sqlite.Config{})
	if err != nil {
		return err
	}

	migrator, err := migrate.NewWithInstance("iofs", source, _driverName, driver)
	if err != nil {
		return err
	}

	err = migrator.Up()
	switch {
	case errors.Is(err, migrate.ErrNoChange):
		return nil
	case err != nil:
		return err
	}
	return nil
}

// Close releases the underlying connection
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) Get(ctx context.Context, collection, id string) (docstore.Document, error) {
	query, args, err := s.builder.
		Select("data").
		From(_table).
		Where(squirrel.Eq{"collection": collection, "id": id}).
		ToSql()
	if err != nil {
		return nil, err
	}

	var data string
	if err := s.db.GetContext(ctx, &data, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, docstore.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get %s/%s: %w", collection, id, err)
	}

	return decode(data)
}

func (s *Store) Set(ctx context.Context, collection, id string, doc docstore.Document) error {
	data, err := encode(doc)
	if err != nil {
		return err
	}

	query, args, err := s.builder.
		Insert(_table).
		Columns("collection", "id", "data", "updated_at").
		Values(collection, id, data, time.Now().Unix()).
		Suffix("ON CONFLICT (collection, id) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at").
		ToSql()
	if err != nil {
		return err
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to set %s/%s: %w", collection, id, err)
	}
	return nil
}

// Update reads, merges and writes back inside one transaction. json_patch is not used
// because merge-patch recurses into nested objects and drops null members.
func (s *Store) Update(ctx context.Context, collection, id string, fields docstore.Document) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin update of %s/%s: %w", collection, id, err)
	}
	defer tx.Rollback()

	selectQuery, selectArgs, err := s.builder.
		Select("data").
		From(_table).
		Where(squirrel.Eq{"collection": collection, "id": id}).
		ToSql()
	if err != nil {
		return err
	}

	var current string
	if err := tx.GetContext(ctx, &current, selectQuery, selectArgs...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return docstore.ErrNotFound
		}
		return fmt.Errorf("failed to read %s/%s for update: %w", collection, id, err)
	}

	doc, err := decode(current)
	if err != nil {
		return err
	}
	for k, v := range fields {
		doc[k] = v
	}
	data, err := encode(doc)
	if err != nil {
		return err
	}

	updateQuery, updateArgs, err := s.builder.
		Update(_table).
		SetMap(map[string]any{
			"data":       data,
			"updated_at": time.Now().Unix(),
		}).
		Where(squirrel.Eq{"collection": collection, "id": id}).
		ToSql()
	if err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, updateQuery, updateArgs...); err != nil {
		return fmt.Errorf("failed to update %s/%s: %w", collection, id, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit update of %s/%s: %w", collection, id, err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, collection, id string) error {
	query, args, err := s.builder.
		Delete(_table).
		Where(squirrel.Eq{"collection": collection, "id": id}).
		ToSql()
	if err != nil {
		return err
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to delete %s/%s: %w", collection, id, err)
	}
	return nil
}

type row struct {
	ID   string `db:"id"`
	Data string `db:"data"`
}

func (s *Store) Query(ctx context.Context, collection string, filters ...docstore.Filter) ([]docstore.Snapshot, error) {
	builder := s.builder.
		Select("id", "data").
		From(_table).
		Where(squirrel.Eq{"collection": collection}).
		OrderBy("id")

	for _, f := range filters {
		builder = builder.Where(squirrel.Expr("json_extract(data, ?) = ?", "$."+f.Field, f.Value))
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, err
	}

	var rows []row
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", collection, err)
	}

	results := make([]docstore.Snapshot, 0, len(rows))
	for _, r := range rows {
		doc, err := decode(r.Data)
		if err != nil {
			return nil, err
		}
		results = append(results, docstore.Snapshot{ID: r.ID, Data: doc})
	}

	return results, nil
}

func encode(doc docstore.Document) (string, error) {
	if doc == nil {
		doc = docstore.Document{}
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("failed to marshal document: %w", err)
	}
	return string(data), nil
}

func decode(data string) (docstore.Document, error) {
	var doc docstore.Document
	if err := json.Unmarshal([]byte(data), &doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal document: %w", err)
	}
	if doc == nil {
		doc = docstore.Document{}
	}
	return doc, nil
}
