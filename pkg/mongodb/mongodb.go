// Package mongodb is a docstore.Store backed by MongoDB. Document ids are stored as _id.
package mongodb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/jakechorley/hostelhub/pkg/docstore"
)

const idKey = "_id"

type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

var _ docstore.Store = (*Store)(nil)

// Open connects to uri and uses the named database
func Open(ctx context.Context, uri, database string) (*Store, error) {
	if database == "" {
		return nil, fmt.Errorf("database name is required")
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	return &Store{client: client, db: client.Database(database)}, nil
}

func (s *Store) Close() error {
	return s.client.Disconnect(context.Background())
}

func (s *Store) Get(ctx context.Context, collection, id string) (docstore.Document, error) {
	raw, err := s.db.Collection(collection).FindOne(ctx, bson.M{idKey: id}).Raw()
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, docstore.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get %s/%s: %w", collection, id, err)
	}

	return fromBSON(raw)
}

func (s *Store) Set(ctx context.Context, collection, id string, doc docstore.Document) error {
	data, err := docstore.Normalize(doc)
	if err != nil {
		return err
	}
	delete(data, idKey)

	_, err = s.db.Collection(collection).ReplaceOne(ctx,
		bson.M{idKey: id},
		bson.M(data),
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("failed to set %s/%s: %w", collection, id, err)
	}
	return nil
}

func (s *Store) Update(ctx context.Context, collection, id string, fields docstore.Document) error {
	data, err := docstore.Normalize(fields)
	if err != nil {
		return err
	}
	delete(data, idKey)

	if len(data) == 0 {
		// $set must not be empty
		_, err := s.Get(ctx, collection, id)
		return err
	}

	res, err := s.db.Collection(collection).UpdateOne(ctx,
		bson.M{idKey: id},
		bson.M{"$set": bson.M(data)},
	)
	if err != nil {
		return fmt.Errorf("failed to update %s/%s: %w", collection, id, err)
	}
	if res.MatchedCount == 0 {
		return docstore.ErrNotFound
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, collection, id string) error {
	if _, err := s.db.Collection(collection).DeleteOne(ctx, bson.M{idKey: id}); err != nil {
		return fmt.Errorf("failed to delete %s/%s: %w", collection, id, err)
	}
	return nil
}

func (s *Store) Query(ctx context.Context, collection string, filters ...docstore.Filter) ([]docstore.Snapshot, error) {
	filter := bson.M{}
	for _, f := range filters {
		filter[f.Field] = f.Value
	}

	cursor, err := s.db.Collection(collection).Find(ctx, filter,
		options.Find().SetSort(bson.D{{Key: idKey, Value: 1}}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", collection, err)
	}

	defer cursor.Close(ctx)

	var results []docstore.Snapshot
	for cursor.Next(ctx) {
		id, _ := cursor.Current.Lookup(idKey).StringValueOK()
		doc, err := fromBSON(cursor.Current)
		if err != nil {
			return nil, err
		}
		results = append(results, docstore.Snapshot{ID: id, Data: doc})
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s results: %w", collection, err)
	}

	return results, nil
}

// fromBSON converts a raw document to plain JSON shapes via relaxed extended JSON and strips _id
func fromBSON(raw bson.Raw) (docstore.Document, error) {
	data, err := bson.MarshalExtJSON(raw, false, false)
	if err != nil {
		return nil, fmt.Errorf("failed to convert document: %w", err)
	}

	var doc docstore.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal document: %w", err)
	}
	if doc == nil {
		doc = docstore.Document{}
	}
	delete(doc, idKey)

	return doc, nil
}
