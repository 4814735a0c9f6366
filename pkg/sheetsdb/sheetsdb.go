// Package sheetsdb is a docstore.Store kept in a Google spreadsheet, one tab per collection.
//
// Each tab starts with a header row and a type row, followed by one row per document:
//
//	id    | document
//	uuid  | json
//	<id>  | {"title":"..."}
//
// Every write rewrites the whole tab, so it suits the small collections of a single hostel.
// Writes are serialised within the process only.
package sheetsdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/jakechorley/hostelhub/pkg/docstore"
)

// MaxCellLength is the Sheets limit on characters in one cell
const MaxCellLength = 50000

// ErrDocumentTooLarge is returned when a document's JSON does not fit in one cell
var ErrDocumentTooLarge = errors.New("document too large for a sheet cell")

var (
	headerRow = []interface{}{"id", "document"}
	typeRow   = []interface{}{"uuid", "json"}
)

// Client is the part of sheetsclient.Client the store needs
type Client interface {
	HasTab(spreadsheetID, tabTitle string) (bool, error)
	GetValues(spreadsheetID, sheetRange string) ([][]interface{}, error)
	WriteTab(spreadsheetID, tabTitle string, rows [][]interface{}) error
}

type Store struct {
	client        Client
	spreadsheetID string
	mu            sync.Mutex
}

var _ docstore.Store = (*Store)(nil)

// New uses the spreadsheet spreadsheetID as the database
func New(client Client, spreadsheetID string) (*Store, error) {
	if spreadsheetID == "" {
		return nil, fmt.Errorf("spreadsheet id is required")
	}
	return &Store{client: client, spreadsheetID: spreadsheetID}, nil
}

func (s *Store) Get(ctx context.Context, collection, id string) (docstore.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	docs, err := s.readTable(collection)
	if err != nil {
		return nil, err
	}

	doc, ok := docs[id]
	if !ok {
		return nil, docstore.ErrNotFound
	}
	return doc, nil
}

func (s *Store) Set(ctx context.Context, collection, id string, doc docstore.Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	normalized, err := docstore.Normalize(doc)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	docs, err := s.readTable(collection)
	if err != nil {
		return err
	}
	docs[id] = normalized
	return s.writeTable(collection, docs)
}

func (s *Store) Update(ctx context.Context, collection, id string, fields docstore.Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	normalized, err := docstore.Normalize(fields)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	docs, err := s.readTable(collection)
	if err != nil {
		return err
	}

	doc, ok := docs[id]
	if !ok {
		return docstore.ErrNotFound
	}
	for k, v := range normalized {
		doc[k] = v
	}
	return s.writeTable(collection, docs)
}

func (s *Store) Delete(ctx context.Context, collection, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	docs, err := s.readTable(collection)
	if err != nil {
		return err
	}
	if _, ok := docs[id]; !ok {
		return nil
	}
	delete(docs, id)
	return s.writeTable(collection, docs)
}

func (s *Store) Query(ctx context.Context, collection string, filters ...docstore.Filter) ([]docstore.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	wanted, err := docstore.NormalizeFilters(filters)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	docs, err := s.readTable(collection)
	if err != nil {
		return nil, err
	}

	var results []docstore.Snapshot
	for _, id := range sortedIDs(docs) {
		if docstore.Matches(docs[id], wanted) {
			results = append(results, docstore.Snapshot{ID: id, Data: docs[id]})
		}
	}
	return results, nil
}

// Close is a no-op; the Sheets client holds no connection
func (s *Store) Close() error {
	return nil
}

// readTable loads every document of a collection. A missing tab is an empty collection.
func (s *Store) readTable(collection string) (map[string]docstore.Document, error) {
	docs := make(map[string]docstore.Document)

	exists, err := s.client.HasTab(s.spreadsheetID, collection)
	if err != nil {
		return nil, fmt.Errorf("failed to check tab %s: %w", collection, err)
	}
	if !exists {
		return docs, nil
	}

	values, err := s.client.GetValues(s.spreadsheetID, tabRange(collection))
	if err != nil {
		return nil, fmt.Errorf("failed to get table %s: %w", collection, err)
	}

	// Skip header and type rows
	if len(values) <= 2 {
		return docs, nil
	}

	for rowIdx, row := range values[2:] {
		if len(row) == 0 {
			continue
		}
		id := fmt.Sprint(row[0])
		if id == "" {
			continue
		}
		if len(row) < 2 {
			return nil, fmt.Errorf("row %d of %s has no document", rowIdx+3, collection)
		}

		var doc docstore.Document
		if err := json.Unmarshal([]byte(fmt.Sprint(row[1])), &doc); err != nil {
			return nil, fmt.Errorf("row %d of %s: failed to parse document: %w", rowIdx+3, collection, err)
		}
		if doc == nil {
			doc = docstore.Document{}
		}
		docs[id] = doc
	}

	return docs, nil
}

func (s *Store) writeTable(collection string, docs map[string]docstore.Document) error {
	rows := make([][]interface{}, 0, len(docs)+2)
	rows = append(rows, headerRow, typeRow)

	for _, id := range sortedIDs(docs) {
		data, err := json.Marshal(docs[id])
		if err != nil {
			return fmt.Errorf("failed to marshal document %s: %w", id, err)
		}
		if len(data) > MaxCellLength {
			return fmt.Errorf("%s/%s is %d characters: %w", collection, id, len(data), ErrDocumentTooLarge)
		}
		rows = append(rows, []interface{}{id, string(data)})
	}

	if err := s.client.WriteTab(s.spreadsheetID, collection, rows); err != nil {
		return fmt.Errorf("failed to write table %s: %w", collection, err)
	}
	return nil
}

func sortedIDs(docs map[string]docstore.Document) []string {
	ids := make([]string, 0, len(docs))
	for id := range docs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func tabRange(collection string) string {
	return "'" + collection + "'"
}
