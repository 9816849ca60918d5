// ABOUTME: Embedded document store on SQLite with JSON document bodies
// ABOUTME: Opens the database in WAL mode at an XDG path and serves equality queries via json_extract
package docstore

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/mattn/go-sqlite3"
	"github.com/oklog/ulid/v2"
)

const documentsSchema = `
CREATE TABLE IF NOT EXISTS documents (
	collection TEXT NOT NULL,
	id TEXT NOT NULL,
	fields TEXT NOT NULL,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL,
	PRIMARY KEY (collection, id)
);

CREATE INDEX IF NOT EXISTS idx_documents_collection ON documents(collection);
CREATE INDEX IF NOT EXISTS idx_documents_user ON documents(collection, json_extract(fields, '$.userId'));
`

// SQLiteStore implements Store on a single SQLite database.
type SQLiteStore struct {
	db  *sql.DB
	now Clock
}

// SQLiteOption configures a SQLiteStore.
type SQLiteOption func(*SQLiteStore)

// WithClock overrides the clock used to resolve ServerTimestamp.
func WithClock(c Clock) SQLiteOption {
	return func(s *SQLiteStore) { s.now = c }
}

// OpenSQLite opens (creating if needed) the database at path.
func OpenSQLite(path string, opts ...SQLiteOption) (*SQLiteStore, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL")
	if err != nil {
		return nil, err
	}

	// SQLite only tolerates one writer
	db.SetMaxOpenConns(1)

	store, err := NewSQLiteStore(db, opts...)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// NewSQLiteStore wraps an already-open database and initializes the schema.
func NewSQLiteStore(db *sql.DB, opts ...SQLiteOption) (*SQLiteStore, error) {
	if _, err := db.Exec(documentsSchema); err != nil {
		return nil, fmt.Errorf("failed to init documents schema: %w", err)
	}
	s := &SQLiteStore{db: db, now: systemClock}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// DB exposes the underlying handle so other local services can share the file.
func (s *SQLiteStore) DB() *sql.DB {
	return s.db
}

func (s *SQLiteStore) Add(ctx context.Context, collection string, fields Fields) (Document, error) {
	if !validCollection(collection) {
		return Document{}, ErrInvalidCollection
	}

	now := s.now()
	resolved := resolveFields(fields, now)
	body, err := encodeFields(resolved)
	if err != nil {
		return Document{}, err
	}

	id := ulid.Make().String()
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO documents (collection, id, fields, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`, collection, id, string(body), now, now)
	if err != nil {
		return Document{}, err
	}

	return Document{ID: id, Fields: resolved}, nil
}

// Put upserts a document under id, keeping its original created_at.
func (s *SQLiteStore) Put(ctx context.Context, collection, id string, fields Fields) error {
	if !validCollection(collection) {
		return ErrInvalidCollection
	}

	now := s.now()
	body, err := encodeFields(resolveFields(fields, now))
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO documents (collection, id, fields, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(collection, id) DO UPDATE SET fields = excluded.fields, updated_at = excluded.updated_at
	`, collection, id, string(body), now, now)
	return err
}

func (s *SQLiteStore) GetByID(ctx context.Context, collection, id string) (Document, error) {
	var body string
	err := s.db.QueryRowContext(ctx, `
		SELECT fields FROM documents WHERE collection = ? AND id = ?
	`, collection, id).Scan(&body)
	if err == sql.ErrNoRows {
		return Document{}, ErrNotFound
	}
	if err != nil {
		return Document{}, err
	}

	fields, err := decodeFields([]byte(body))
	if err != nil {
		return Document{}, err
	}
	return Document{ID: id, Fields: fields}, nil
}

func (s *SQLiteStore) Get(ctx context.Context, collection string, q Query) ([]Document, error) {
	if !validCollection(collection) {
		return nil, ErrInvalidCollection
	}

	var sb strings.Builder
	args := []interface{}{collection}
	sb.WriteString(`SELECT id, fields FROM documents WHERE collection = ?`)

	for _, f := range q.Filters {
		if !validField(f.Field) {
			return nil, fmt.Errorf("invalid filter field %q", f.Field)
		}
		switch v := f.Value.(type) {
		case Timestamp:
			sb.WriteString(` AND json_extract(fields, ?) = ? AND json_extract(fields, ?) = ?`)
			args = append(args,
				timestampPath(f.Field, timestampSeconds), v.Seconds,
				timestampPath(f.Field, timestampNanos), int64(v.Nanos))
		default:
			sb.WriteString(` AND json_extract(fields, ?) = ?`)
			args = append(args, fieldPath(f.Field), v)
		}
	}

	if len(q.OrderBy) > 0 {
		sb.WriteString(` ORDER BY `)
		for i, o := range q.OrderBy {
			if !validField(o.Field) {
				return nil, fmt.Errorf("invalid order field %q", o.Field)
			}
			if i > 0 {
				sb.WriteString(`, `)
			}
			dir := ""
			if o.Desc {
				dir = ` DESC`
			}
			// timestamps sort by seconds then nanos; other fields have no nanos path
			sb.WriteString(`COALESCE(json_extract(fields, ?), json_extract(fields, ?))` + dir)
			sb.WriteString(`, json_extract(fields, ?)` + dir)
			args = append(args,
				timestampPath(o.Field, timestampSeconds), fieldPath(o.Field),
				timestampPath(o.Field, timestampNanos))
		}
		// ULIDs are monotonic, so ties fall back to insertion order
		if q.OrderBy[0].Desc {
			sb.WriteString(`, id DESC`)
		} else {
			sb.WriteString(`, id`)
		}
	}

	if q.Limit > 0 {
		sb.WriteString(` LIMIT ?`)
		args = append(args, q.Limit)
	}

	rows, err := s.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	docs := make([]Document, 0)
	for rows.Next() {
		var id, body string
		if err := rows.Scan(&id, &body); err != nil {
			return nil, err
		}
		fields, err := decodeFields([]byte(body))
		if err != nil {
			return nil, fmt.Errorf("document %s: %w", id, err)
		}
		docs = append(docs, Document{ID: id, Fields: fields})
	}

	return docs, rows.Err()
}

// Update merges fields into the stored document.
func (s *SQLiteStore) Update(ctx context.Context, collection, id string, fields Fields) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var body string
	err = tx.QueryRowContext(ctx, `
		SELECT fields FROM documents WHERE collection = ? AND id = ?
	`, collection, id).Scan(&body)
	if err == sql.ErrNoRows {
		return ErrNotFound
	}
	if err != nil {
		return err
	}

	existing, err := decodeFields([]byte(body))
	if err != nil {
		return err
	}

	now := s.now()
	for k, v := range resolveFields(fields, now) {
		existing[k] = v
	}

	merged, err := encodeFields(existing)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE documents SET fields = ?, updated_at = ? WHERE collection = ? AND id = ?
	`, string(merged), now, collection, id)
	if err != nil {
		return err
	}

	return tx.Commit()
}

func (s *SQLiteStore) Delete(ctx context.Context, collection, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE collection = ? AND id = ?`, collection, id)
	return err
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func fieldPath(field string) string {
	return `$."` + field + `"`
}

func timestampPath(field, part string) string {
	return `$."` + field + `"."` + timestampKey + `"."` + part + `"`
}
