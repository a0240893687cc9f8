package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"time"

	"github.com/desertthunder/bloomly/internal/shared"
)

// Document is a stored JSON object. Data holds the raw top-level fields.
type Document struct {
	Collection string
	ID         string
	Data       map[string]json.RawMessage
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Decode unmarshals field into out. A missing field leaves out untouched.
func (d *Document) Decode(field string, out any) error {
	raw, ok := d.Data[field]
	if !ok {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to decode field %q: %w", field, err)
	}
	return nil
}

// FieldTransform computes a field's new value from its current one inside a write.
type FieldTransform interface {
	apply(current json.RawMessage, exists bool) (json.RawMessage, error)
}

type arrayUnion struct {
	values []any
}

// ArrayUnion appends each value not already present in the array field.
//
// Presence is deep JSON equality. A missing or non-array field becomes an array of the values.
func ArrayUnion(values ...any) FieldTransform {
	return arrayUnion{values: values}
}

func (u arrayUnion) apply(current json.RawMessage, exists bool) (json.RawMessage, error) {
	var elems []json.RawMessage
	if exists {
		if err := json.Unmarshal(current, &elems); err != nil {
			elems = nil
		}
	}

	decoded := make([]any, 0, len(elems))
	for _, e := range elems {
		var v any
		if err := json.Unmarshal(e, &v); err != nil {
			return nil, fmt.Errorf("failed to decode array element: %w", err)
		}
		decoded = append(decoded, v)
	}

	for _, value := range u.values {
		raw, err := json.Marshal(value)
		if err != nil {
			return nil, fmt.Errorf("failed to encode array element: %w", err)
		}
		var v any
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, fmt.Errorf("failed to normalize array element: %w", err)
		}
		if containsJSON(decoded, v) {
			continue
		}
		elems = append(elems, raw)
		decoded = append(decoded, v)
	}

	if elems == nil {
		elems = []json.RawMessage{}
	}
	return json.Marshal(elems)
}

func containsJSON(values []any, v any) bool {
	for _, existing := range values {
		if reflect.DeepEqual(existing, v) {
			return true
		}
	}
	return false
}

// DocumentStore keeps schemaless documents in the documents table.
type DocumentStore struct {
	db  *sql.DB
	now func() time.Time
}

// NewDocumentStore creates a new [DocumentStore] with the given database connection
func NewDocumentStore(db *sql.DB) *DocumentStore {
	return &DocumentStore{db: db, now: time.Now}
}

// Read returns the document or [shared.ErrDocumentNotFound].
func (s *DocumentStore) Read(ctx context.Context, collection, id string) (*Document, error) {
	var doc *Document
	err := withTx(ctx, s.db, func(tx *sql.Tx) error {
		var err error
		doc, err = readDocument(ctx, tx, collection, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, fmt.Errorf("%w: %s/%s", shared.ErrDocumentNotFound, collection, id)
	}
	return doc, nil
}

// Set creates or replaces a document. With merge, only the given top-level fields are written.
func (s *DocumentStore) Set(ctx context.Context, collection, id string, data map[string]any, merge bool) error {
	return withTx(ctx, s.db, func(tx *sql.Tx) error {
		doc, err := readDocument(ctx, tx, collection, id)
		if err != nil {
			return err
		}

		fields := map[string]json.RawMessage{}
		if merge && doc != nil {
			fields = doc.Data
		}
		if err := applyPatch(fields, data); err != nil {
			return err
		}
		return s.writeDocument(ctx, tx, collection, id, fields, doc != nil)
	})
}

// Update patches an existing document. Values are replaced unless they are a [FieldTransform].
func (s *DocumentStore) Update(ctx context.Context, collection, id string, patch map[string]any) error {
	return withTx(ctx, s.db, func(tx *sql.Tx) error {
		doc, err := readDocument(ctx, tx, collection, id)
		if err != nil {
			return err
		}
		if doc == nil {
			return fmt.Errorf("%w: %s/%s", shared.ErrDocumentNotFound, collection, id)
		}

		if err := applyPatch(doc.Data, patch); err != nil {
			return err
		}
		return s.writeDocument(ctx, tx, collection, id, doc.Data, true)
	})
}

// UpsertAppend appends value to the array field, creating the document if it does not exist.
//
// Other fields are preserved. Existence check and write share one transaction.
func (s *DocumentStore) UpsertAppend(ctx context.Context, collection, id, field string, value any) error {
	return withTx(ctx, s.db, func(tx *sql.Tx) error {
		doc, err := readDocument(ctx, tx, collection, id)
		if err != nil {
			return err
		}

		fields := map[string]json.RawMessage{}
		if doc != nil {
			fields = doc.Data
		}
		if err := applyPatch(fields, map[string]any{field: ArrayUnion(value)}); err != nil {
			return err
		}
		return s.writeDocument(ctx, tx, collection, id, fields, doc != nil)
	})
}

// Delete removes a document. Deleting a missing document is not an error.
func (s *DocumentStore) Delete(ctx context.Context, collection, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM documents WHERE collection = ? AND id = ?", collection, id)
	if err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	return nil
}

func applyPatch(fields map[string]json.RawMessage, patch map[string]any) error {
	for key, value := range patch {
		if t, ok := value.(FieldTransform); ok {
			current, exists := fields[key]
			raw, err := t.apply(current, exists)
			if err != nil {
				return fmt.Errorf("failed to transform field %q: %w", key, err)
			}
			fields[key] = raw
			continue
		}

		raw, err := json.Marshal(value)
		if err != nil {
			return fmt.Errorf("failed to encode field %q: %w", key, err)
		}
		fields[key] = raw
	}
	return nil
}

// readDocument returns nil without error when the row does not exist.
func readDocument(ctx context.Context, tx *sql.Tx, collection, id string) (*Document, error) {
	query := `
		SELECT data, created_at, updated_at
		FROM documents
		WHERE collection = ? AND id = ?
	`

	var (
		data      string
		createdAt time.Time
		updatedAt time.Time
	)
	err := tx.QueryRowContext(ctx, query, collection, id).Scan(&data, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query document: %w", err)
	}

	fields := map[string]json.RawMessage{}
	if err := json.Unmarshal([]byte(data), &fields); err != nil {
		return nil, fmt.Errorf("failed to decode document %s/%s: %w", collection, id, err)
	}
	if fields == nil {
		fields = map[string]json.RawMessage{}
	}

	return &Document{Collection: collection, ID: id, Data: fields, CreatedAt: createdAt, UpdatedAt: updatedAt}, nil
}

func (s *DocumentStore) writeDocument(ctx context.Context, tx *sql.Tx, collection, id string, fields map[string]json.RawMessage, exists bool) error {
	data, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("failed to encode document: %w", err)
	}

	now := s.now()
	if exists {
		_, err = tx.ExecContext(ctx,
			"UPDATE documents SET data = ?, updated_at = ? WHERE collection = ? AND id = ?",
			string(data), now, collection, id)
	} else {
		_, err = tx.ExecContext(ctx,
			"INSERT INTO documents (collection, id, data, created_at, updated_at) VALUES (?, ?, ?, ?, ?)",
			collection, id, string(data), now, now)
	}
	if err != nil {
		return fmt.Errorf("failed to write document: %w", err)
	}
	return nil
}
