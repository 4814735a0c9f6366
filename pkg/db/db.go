package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/jakechorley/hostelhub/pkg/core/model"
	"github.com/jakechorley/hostelhub/pkg/docstore"
)

// DB provides typed database operations over a document store
type DB struct {
	store docstore.Store
}

var _ Database = (*DB)(nil)

// NewDB creates a new database instance
func NewDB(store docstore.Store) *DB {
	return &DB{
		store: store,
	}
}

// Close closes the underlying store
func (db *DB) Close() error {
	return db.store.Close()
}

// newID returns id, or a fresh uuid when id is empty
func newID(id string) string {
	if id != "" {
		return id
	}
	return uuid.New().String()
}

// translate maps a store not-found onto the model error for entity
func translate(entity string, err error) error {
	if errors.Is(err, docstore.ErrNotFound) {
		return model.NewError(entity, model.ErrNotFound)
	}
	return err
}

func getAs[T any](ctx context.Context, store docstore.Store, collection, id, entity string) (*T, error) {
	doc, err := store.Get(ctx, collection, id)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return nil, translate(entity, err)
		}
		return nil, fmt.Errorf("failed to get %s: %w", entity, err)
	}

	doc["id"] = id
	var out T
	if err := docstore.Decode(doc, &out); err != nil {
		return nil, fmt.Errorf("failed to decode %s %s: %w", entity, id, err)
	}
	return &out, nil
}

func queryAs[T any](ctx context.Context, store docstore.Store, collection, entity string, filters ...docstore.Filter) ([]T, error) {
	snaps, err := store.Query(ctx, collection, filters...)
	if err != nil {
		return nil, fmt.Errorf("failed to query %ss: %w", entity, err)
	}

	out := make([]T, 0, len(snaps))
	for _, snap := range snaps {
		snap.Data["id"] = snap.ID
		var item T
		if err := docstore.Decode(snap.Data, &item); err != nil {
			return nil, fmt.Errorf("failed to decode %s %s: %w", entity, snap.ID, err)
		}
		out = append(out, item)
	}
	return out, nil
}

func setAs(ctx context.Context, store docstore.Store, collection, id, entity string, v any) error {
	doc, err := docstore.Encode(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", entity, err)
	}
	if err := store.Set(ctx, collection, id, doc); err != nil {
		return fmt.Errorf("failed to write %s: %w", entity, err)
	}
	return nil
}

func update(ctx context.Context, store docstore.Store, collection, id, entity string, fields docstore.Document) error {
	if err := store.Update(ctx, collection, id, fields); err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return translate(entity, err)
		}
		return fmt.Errorf("failed to update %s: %w", entity, err)
	}
	return nil
}

func remove(ctx context.Context, store docstore.Store, collection, id, entity string) error {
	if err := store.Delete(ctx, collection, id); err != nil {
		return fmt.Errorf("failed to delete %s: %w", entity, err)
	}
	return nil
}
