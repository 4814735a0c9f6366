// Package firestoredb is a docstore.Store backed by Google Cloud Firestore
package firestoredb

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/jakechorley/hostelhub/pkg/docstore"
)

// Store maps docstore collections onto top-level Firestore collections.
// A non-empty prefix is prepended to every collection name.
type Store struct {
	client *firestore.Client
	prefix string
}

var _ docstore.Store = (*Store)(nil)

// Open connects to the given project and database. An empty databaseID selects the
// default database. Honors FIRESTORE_EMULATOR_HOST.
func Open(ctx context.Context, projectID, databaseID string, opts ...option.ClientOption) (*Store, error) {
	if databaseID == "" {
		databaseID = firestore.DefaultDatabaseID
	}

	client, err := firestore.NewClientWithDatabase(ctx, projectID, databaseID, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create firestore client: %w", err)
	}

	return New(client, ""), nil
}

// New wraps an existing client
func New(client *firestore.Client, prefix string) *Store {
	return &Store{client: client, prefix: prefix}
}

func (s *Store) Close() error {
	return s.client.Close()
}

func (s *Store) collection(name string) *firestore.CollectionRef {
	return s.client.Collection(s.prefix + name)
}

func isNotFound(err error) bool {
	return status.Code(err) == codes.NotFound
}

func (s *Store) Get(ctx context.Context, collection, id string) (docstore.Document, error) {
	snap, err := s.collection(collection).Doc(id).Get(ctx)
	if isNotFound(err) {
		return nil, docstore.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get %s/%s: %w", collection, id, err)
	}

	return docstore.Normalize(snap.Data())
}

func (s *Store) Set(ctx context.Context, collection, id string, doc docstore.Document) error {
	data, err := docstore.Normalize(doc)
	if err != nil {
		return err
	}

	if _, err := s.collection(collection).Doc(id).Set(ctx, map[string]any(data)); err != nil {
		return fmt.Errorf("failed to set %s/%s: %w", collection, id, err)
	}
	return nil
}

func (s *Store) Update(ctx context.Context, collection, id string, fields docstore.Document) error {
	data, err := docstore.Normalize(fields)
	if err != nil {
		return err
	}

	ref := s.collection(collection).Doc(id)
	if len(data) == 0 {
		// Firestore rejects empty updates; only the existence check remains
		_, err := s.Get(ctx, collection, id)
		return err
	}

	updates := make([]firestore.Update, 0, len(data))
	for k, v := range data {
		// FieldPath keeps keys containing dots from being read as nested paths
		updates = append(updates, firestore.Update{FieldPath: firestore.FieldPath{k}, Value: v})
	}

	_, err = ref.Update(ctx, updates)
	if isNotFound(err) {
		return docstore.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to update %s/%s: %w", collection, id, err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, collection, id string) error {
	if _, err := s.collection(collection).Doc(id).Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete %s/%s: %w", collection, id, err)
	}
	return nil
}

func (s *Store) Query(ctx context.Context, collection string, filters ...docstore.Filter) ([]docstore.Snapshot, error) {
	q := s.collection(collection).Query
	for _, f := range filters {
		q = q.WherePath(firestore.FieldPath{f.Field}, "==", f.Value)
	}
	q = q.OrderBy(firestore.DocumentID, firestore.Asc)

	iter := q.Documents(ctx)
	defer iter.Stop()

	var results []docstore.Snapshot
	for {
		snap, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to query %s: %w", collection, err)
		}

		doc, err := docstore.Normalize(snap.Data())
		if err != nil {
			return nil, err
		}
		results = append(results, docstore.Snapshot{ID: snap.Ref.ID, Data: doc})
	}

	return results, nil
}
