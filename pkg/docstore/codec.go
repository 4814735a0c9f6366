package docstore

import (
	"encoding/json"
	"fmt"
)

// idField is stripped from encoded documents; the id lives in the document key
const idField = "id"

// Encode converts a JSON-tagged struct into a Document. Times become RFC 3339 strings.
// A top-level "id" field is dropped.
func Encode(v any) (Document, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal document: %w", err)
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal document: %w", err)
	}
	delete(doc, idField)

	return doc, nil
}

// Decode converts a Document into a JSON-tagged struct
func Decode(doc Document, v any) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal document: %w", err)
	}

	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to decode document: %w", err)
	}

	return nil
}

// Normalize round-trips a document through JSON so every backend returns the same
// value types (float64 numbers, []any arrays, map[string]any objects)
func Normalize(doc map[string]any) (Document, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal document: %w", err)
	}

	var out Document
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("failed to unmarshal document: %w", err)
	}
	if out == nil {
		out = Document{}
	}

	return out, nil
}
