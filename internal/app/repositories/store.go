package repositories

import (
	"context"
	"fmt"
	"reflect"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Kamal-Wagle/mucsitbackend/internal/pkg/apperrors"
	"github.com/Kamal-Wagle/mucsitbackend/internal/pkg/query"
)

// Store is the document-store contract shared by every entity kind.
// Lookups that find nothing return an apperrors not-found error.
type Store[E any] interface {
	Insert(ctx context.Context, e *E) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*E, error)
	FindOne(ctx context.Context, filter query.Filter) (*E, error)
	Find(ctx context.Context, q query.Query) ([]*E, error)
	Count(ctx context.Context, filter query.Filter, search string) (int64, error)
	Update(ctx context.Context, e *E) error
	Delete(ctx context.Context, id primitive.ObjectID) (bool, error)
	// Increment atomically adds delta to a counter field
	Increment(ctx context.Context, id primitive.ObjectID, field string, delta int64) error
	// UpdateMany sets the given fields on every match and returns how many rows changed
	UpdateMany(ctx context.Context, filter query.Filter, set map[string]interface{}) (int64, error)
}

// Field binds an API field name to a column and to accessors on the entity
type Field[E any] struct {
	Column string
	Get    func(e *E) interface{}
	// Set is required for fields used by Increment and UpdateMany
	Set func(e *E, v interface{})
}

// Schema describes how an entity kind is stored
type Schema[E any] struct {
	Entity string // display name used in error messages
	Table  string
	Fields map[string]Field[E]
	// Columns is the select/insert order; Values and Targets follow it
	Columns []string
	Values  func(e *E) []interface{}
	Targets func(e *E) []interface{}
	// SearchText returns the text-indexed content. Nil means no text index.
	SearchText func(e *E) string
	// Counters lists the fields Increment may touch
	Counters []string
	// Unique lists fields whose non-empty values must be unique
	Unique []string
	Clone  func(e *E) *E
}

// HasTextIndex reports whether the kind supports free-text search
func (s *Schema[E]) HasTextIndex() bool {
	return s.SearchText != nil
}

func (s *Schema[E]) field(name string) (Field[E], error) {
	f, ok := s.Fields[name]
	if !ok {
		return Field[E]{}, fmt.Errorf("%s: unknown field %q", s.Entity, name)
	}
	return f, nil
}

// sortField resolves a client supplied sort key
func (s *Schema[E]) sortField(name string) (Field[E], error) {
	f, ok := s.Fields[name]
	if !ok {
		return Field[E]{}, apperrors.NewBadRequestError(fmt.Sprintf("cannot sort %s by %q", s.Entity, name))
	}
	return f, nil
}

func (s *Schema[E]) isCounter(name string) bool {
	for _, c := range s.Counters {
		if c == name {
			return true
		}
	}
	return false
}

// dbValue converts filter values into what the database driver understands
func dbValue(v interface{}) interface{} {
	switch t := v.(type) {
	case primitive.ObjectID:
		return t.Hex()
	case []primitive.ObjectID:
		out := make([]string, len(t))
		for i, id := range t {
			out[i] = id.Hex()
		}
		return out
	case time.Time, []string, string, bool, int64, int, float64, nil:
		return t
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.String:
		return rv.String()
	case reflect.Slice:
		if rv.Type().Elem().Kind() == reflect.String {
			out := make([]string, rv.Len())
			for i := range out {
				out[i] = rv.Index(i).String()
			}
			return out
		}
	}
	return v
}

// objectIDColumn scans a 24-hex text column into an ObjectID
type objectIDColumn struct {
	dst *primitive.ObjectID
}

func (c objectIDColumn) Scan(src interface{}) error {
	var hex string
	switch v := src.(type) {
	case nil:
		*c.dst = primitive.NilObjectID
		return nil
	case string:
		hex = v
	case []byte:
		hex = string(v)
	default:
		return fmt.Errorf("cannot scan %T into object id", src)
	}
	id, err := primitive.ObjectIDFromHex(strings.TrimSpace(hex))
	if err != nil {
		return err
	}
	*c.dst = id
	return nil
}

// textColumn scans a nullable text column into a string-kinded field
type textColumn[T ~string] struct {
	dst *T
}

func (c textColumn[T]) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*c.dst = ""
	case string:
		*c.dst = T(v)
	case []byte:
		*c.dst = T(string(v))
	default:
		return fmt.Errorf("cannot scan %T into text", src)
	}
	return nil
}
