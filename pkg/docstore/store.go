// Package docstore defines the document database the hostel services persist to.
//
// A store holds named collections of JSON-shaped documents keyed by id. Backends live in
// their own packages (postgres, sqlitedb, firestoredb, mongodb); Memory is provided here
// for tests and local runs.
package docstore

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get and Update when the document does not exist
var ErrNotFound = errors.New("document not found")

// Document is a JSON object. Values are the types encoding/json produces:
// string, float64, bool, nil, []any and map[string]any.
type Document map[string]any

// Snapshot is a document read back together with its id
type Snapshot struct {
	ID   string
	Data Document
}

// Filter matches documents whose top-level Field equals Value
type Filter struct {
	Field string
	Value any
}

// Eq builds an equality filter
func Eq(field string, value any) Filter {
	return Filter{Field: field, Value: value}
}

// Store is the document database client.
//
// Set is a full overwrite (creating the document if needed). Update merges the given
// top-level fields into an existing document and fails with ErrNotFound otherwise.
// Delete is idempotent. Query with no filters lists the whole collection; results are
// ordered by id.
type Store interface {
	Get(ctx context.Context, collection, id string) (Document, error)
	Set(ctx context.Context, collection, id string, doc Document) error
	Update(ctx context.Context, collection, id string, fields Document) error
	Delete(ctx context.Context, collection, id string) error
	Query(ctx context.Context, collection string, filters ...Filter) ([]Snapshot, error)
	Close() error
}
