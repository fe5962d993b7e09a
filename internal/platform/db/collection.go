package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrNoDocument is returned when a lookup matches nothing.
	ErrNoDocument = errors.New("no document")
	// ErrDuplicate is returned when an insert violates a unique index.
	ErrDuplicate = errors.New("duplicate document")
)

// uniqueViolation is the Postgres SQLSTATE for unique_violation.
const uniqueViolation = "23505"

var identPattern = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

type querier interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

// Filter is a containment match against a stored document. A filter of
// {"patient_id": "x"} matches every document whose top-level patient_id is "x".
// A nil or empty filter matches everything.
type Filter map[string]interface{}

func (f Filter) encode() ([]byte, error) {
	if f == nil {
		f = Filter{}
	}
	return json.Marshal(f)
}

// Document is one stored record: its store-generated key and raw JSON body.
type Document struct {
	Key       uuid.UUID
	Body      []byte
	CreatedAt time.Time
}

// Decode unmarshals the document body into v.
func (d Document) Decode(v interface{}) error {
	if err := json.Unmarshal(d.Body, v); err != nil {
		return fmt.Errorf("decode document %s: %w", d.Key, err)
	}
	return nil
}

// Collection is a schema-flexible set of JSON documents stored in a single
// table with columns (id UUID, doc JSONB, created_at TIMESTAMPTZ).
type Collection struct {
	name string
	q    querier
}

// NewCollection binds a collection name to a querier (normally a pool).
func NewCollection(q querier, name string) (*Collection, error) {
	if !identPattern.MatchString(name) {
		return nil, fmt.Errorf("invalid collection name: %q", name)
	}
	return &Collection{name: name, q: q}, nil
}

func (c *Collection) Name() string { return c.name }

// Insert stores doc under key.
func (c *Collection) Insert(ctx context.Context, key uuid.UUID, doc interface{}) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("%s insert: encode: %w", c.name, err)
	}
	_, err = c.q.Exec(ctx, `INSERT INTO `+c.name+` (id, doc) VALUES ($1, $2)`, key, body)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%s insert: %w", c.name, ErrDuplicate)
		}
		return fmt.Errorf("%s insert: %w", c.name, err)
	}
	return nil
}

// FindByKey returns the document stored under key, or ErrNoDocument.
func (c *Collection) FindByKey(ctx context.Context, key uuid.UUID) (Document, error) {
	var d Document
	err := c.q.QueryRow(ctx, `SELECT id, doc, created_at FROM `+c.name+` WHERE id = $1`, key).
		Scan(&d.Key, &d.Body, &d.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Document{}, ErrNoDocument
		}
		return Document{}, fmt.Errorf("%s find by key: %w", c.name, err)
	}
	return d, nil
}

// FindOne returns the first document matching filter, or ErrNoDocument.
func (c *Collection) FindOne(ctx context.Context, filter Filter) (Document, error) {
	f, err := filter.encode()
	if err != nil {
		return Document{}, fmt.Errorf("%s find one: encode filter: %w", c.name, err)
	}
	var d Document
	err = c.q.QueryRow(ctx, `SELECT id, doc, created_at FROM `+c.name+` WHERE doc @> $1 LIMIT 1`, f).
		Scan(&d.Key, &d.Body, &d.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Document{}, ErrNoDocument
		}
		return Document{}, fmt.Errorf("%s find one: %w", c.name, err)
	}
	return d, nil
}

// Find returns every document matching filter in store order.
func (c *Collection) Find(ctx context.Context, filter Filter) ([]Document, error) {
	f, err := filter.encode()
	if err != nil {
		return nil, fmt.Errorf("%s find: encode filter: %w", c.name, err)
	}
	rows, err := c.q.Query(ctx, `SELECT id, doc, created_at FROM `+c.name+` WHERE doc @> $1`, f)
	if err != nil {
		return nil, fmt.Errorf("%s find: %w", c.name, err)
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		var d Document
		if err := rows.Scan(&d.Key, &d.Body, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s find: scan: %w", c.name, err)
		}
		docs = append(docs, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s find: %w", c.name, err)
	}
	return docs, nil
}

// Exists reports whether any document matches filter.
func (c *Collection) Exists(ctx context.Context, filter Filter) (bool, error) {
	f, err := filter.encode()
	if err != nil {
		return false, fmt.Errorf("%s exists: encode filter: %w", c.name, err)
	}
	var exists bool
	if err := c.q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM `+c.name+` WHERE doc @> $1)`, f).Scan(&exists); err != nil {
		return false, fmt.Errorf("%s exists: %w", c.name, err)
	}
	return exists, nil
}

// Count returns the number of documents matching filter.
func (c *Collection) Count(ctx context.Context, filter Filter) (int, error) {
	f, err := filter.encode()
	if err != nil {
		return 0, fmt.Errorf("%s count: encode filter: %w", c.name, err)
	}
	var n int
	if err := c.q.QueryRow(ctx, `SELECT COUNT(*) FROM `+c.name+` WHERE doc @> $1`, f).Scan(&n); err != nil {
		return 0, fmt.Errorf("%s count: %w", c.name, err)
	}
	return n, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

// CollectionSpec describes the table and indexes backing a collection.
type CollectionSpec struct {
	Name string
	// Unique lists top-level document fields that must be unique across the
	// collection.
	Unique []string
}

// Statements returns the idempotent DDL that creates the collection.
func (s CollectionSpec) Statements() ([]string, error) {
	if !identPattern.MatchString(s.Name) {
		return nil, fmt.Errorf("invalid collection name: %q", s.Name)
	}
	stmts := []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
    id UUID PRIMARY KEY,
    doc JSONB NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`, s.Name),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s_doc_idx ON %s USING GIN (doc jsonb_path_ops)`, s.Name, s.Name),
	}
	for _, field := range s.Unique {
		if !identPattern.MatchString(field) {
			return nil, fmt.Errorf("invalid unique field %q for collection %s", field, s.Name)
		}
		stmts = append(stmts, fmt.Sprintf(
			`CREATE UNIQUE INDEX IF NOT EXISTS %s_%s_key ON %s ((doc->>'%s'))`,
			s.Name, field, s.Name, field))
	}
	return stmts, nil
}

// EnsureCollection creates the collection's table and indexes if missing.
func EnsureCollection(ctx context.Context, q querier, spec CollectionSpec) error {
	stmts, err := spec.Statements()
	if err != nil {
		return err
	}
	for _, stmt := range stmts {
		if _, err := q.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure collection %s: %w", spec.Name, err)
		}
	}
	return nil
}
