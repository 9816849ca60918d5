// ABOUTME: Generic document store boundary used by every repository
// ABOUTME: Defines collections, equality queries, native timestamps and the server timestamp sentinel
package docstore

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound          = errors.New("document not found")
	ErrInvalidCollection = errors.New("invalid collection name")
)

// Fields is a schemaless document body. Values are strings, bools, float64,
// int64, Timestamp, nil, or ServerTimestamp on writes.
type Fields map[string]interface{}

// Document is a stored document with its store-assigned ID.
type Document struct {
	ID     string
	Fields Fields
}

// Filter is an equality predicate on a top-level field.
type Filter struct {
	Field string
	Value interface{}
}

// Order sorts results by a top-level field.
type Order struct {
	Field string
	Desc  bool
}

// Query narrows a Get call. A zero Query returns the whole collection in
// store order.
type Query struct {
	Filters []Filter
	OrderBy []Order
	Limit   int
}

// Where returns a copy of q with an added equality filter.
func (q Query) Where(field string, value interface{}) Query {
	q.Filters = append(append([]Filter(nil), q.Filters...), Filter{Field: field, Value: value})
	return q
}

// Order returns a copy of q with an added sort key.
func (q Query) Order(field string, desc bool) Query {
	q.OrderBy = append(append([]Order(nil), q.OrderBy...), Order{Field: field, Desc: desc})
	return q
}

// WithLimit returns a copy of q capped at n results (n <= 0 means no cap).
func (q Query) WithLimit(n int) Query {
	q.Limit = n
	return q
}

// Store is the opaque document database.
//
// Add and Update resolve ServerTimestamp values with the store's own clock
// and return nothing the caller has to merge; callers re-read with Get.
// Delete of a missing document succeeds.
type Store interface {
	Add(ctx context.Context, collection string, fields Fields) (Document, error)
	Get(ctx context.Context, collection string, q Query) ([]Document, error)
	GetByID(ctx context.Context, collection, id string) (Document, error)
	Update(ctx context.Context, collection, id string, fields Fields) error
	Delete(ctx context.Context, collection, id string) error
	Close() error
}

// Putter writes a document under a caller-chosen ID, replacing any
// existing document with that ID. Both stores implement it.
type Putter interface {
	Put(ctx context.Context, collection, id string, fields Fields) error
}

type serverTimestamp struct{}

// ServerTimestamp is a write sentinel replaced by the store's clock.
var ServerTimestamp = serverTimestamp{}

// IsServerTimestamp reports whether v is the ServerTimestamp sentinel.
func IsServerTimestamp(v interface{}) bool {
	_, ok := v.(serverTimestamp)
	return ok
}

// Clock supplies "server" time to store implementations.
type Clock func() time.Time

func systemClock() time.Time { return time.Now().UTC() }

func resolveFields(fields Fields, now time.Time) Fields {
	out := make(Fields, len(fields))
	for k, v := range fields {
		if IsServerTimestamp(v) {
			out[k] = TimestampFromTime(now)
			continue
		}
		out[k] = v
	}
	return out
}

func validCollection(name string) bool {
	if name == "" {
		return false
	}
	for _, r := range name {
		if !(r == '_' || r == '-' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')) {
			return false
		}
	}
	return true
}
