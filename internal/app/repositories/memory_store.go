package repositories

import (
	"context"
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Kamal-Wagle/mucsitbackend/internal/pkg/apperrors"
	"github.com/Kamal-Wagle/mucsitbackend/internal/pkg/query"
)

// MemoryStore keeps entities in process memory. It honours the same filter,
// search, sort and uniqueness semantics as PostgresStore and backs the
// "memory" database driver.
type MemoryStore[E any] struct {
	schema *Schema[E]

	mu    sync.RWMutex
	order []primitive.ObjectID
	items map[primitive.ObjectID]*E
}

// NewMemoryStore creates an empty in-memory store for the schema
func NewMemoryStore[E any](schema *Schema[E]) *MemoryStore[E] {
	return &MemoryStore[E]{
		schema: schema,
		items:  make(map[primitive.ObjectID]*E),
	}
}

// Schema returns the schema the store was built with
func (s *MemoryStore[E]) Schema() *Schema[E] {
	return s.schema
}

func (s *MemoryStore[E]) idOf(e *E) primitive.ObjectID {
	return s.schema.Fields["_id"].Get(e).(primitive.ObjectID)
}

func (s *MemoryStore[E]) notFound(id primitive.ObjectID) error {
	return apperrors.NewResourceNotFoundError(fmt.Sprintf("%s %s not found", s.schema.Entity, id.Hex()))
}

// checkUnique must be called with the lock held
func (s *MemoryStore[E]) checkUnique(e *E) error {
	id := s.idOf(e)
	for _, name := range s.schema.Unique {
		f := s.schema.Fields[name]
		v := normalize(f.Get(e))
		if v == "" || v == nil {
			continue
		}
		for otherID, other := range s.items {
			if otherID == id {
				continue
			}
			if normalize(f.Get(other)) == v {
				return apperrors.NewConflictError(fmt.Sprintf("%s with this %s already exists", s.schema.Entity, name))
			}
		}
	}
	return nil
}

// Insert stores a copy of e
func (s *MemoryStore[E]) Insert(ctx context.Context, e *E) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.idOf(e)
	if _, exists := s.items[id]; exists {
		return apperrors.NewConflictError(fmt.Sprintf("%s %s already exists", s.schema.Entity, id.Hex()))
	}
	if err := s.checkUnique(e); err != nil {
		return err
	}
	s.items[id] = s.schema.Clone(e)
	s.order = append(s.order, id)
	return nil
}

// FindByID returns a copy of the entity with the given id
func (s *MemoryStore[E]) FindByID(ctx context.Context, id primitive.ObjectID) (*E, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.items[id]
	if !ok {
		return nil, s.notFound(id)
	}
	return s.schema.Clone(e), nil
}

// FindOne returns the first entity matching filter in insertion order
func (s *MemoryStore[E]) FindOne(ctx context.Context, filter query.Filter) (*E, error) {
	items, err := s.Find(ctx, query.Query{Filter: filter, Limit: 1})
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, apperrors.NewResourceNotFoundError(s.schema.Entity + " not found")
	}
	return items[0], nil
}

// Find returns copies of the matching window of entities
func (s *MemoryStore[E]) Find(ctx context.Context, q query.Query) ([]*E, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	matched, err := s.match(q.Filter, q.Search)
	if err != nil {
		s.mu.RUnlock()
		return nil, err
	}
	out := make([]*E, len(matched))
	for i, e := range matched {
		out[i] = s.schema.Clone(e)
	}
	s.mu.RUnlock()

	if err := s.sort(out, q.Sort); err != nil {
		return nil, err
	}

	if q.Offset > 0 {
		if q.Offset >= len(out) {
			return []*E{}, nil
		}
		out = out[q.Offset:]
	}
	if q.Limit > 0 && q.Limit < len(out) {
		out = out[:q.Limit]
	}
	return out, nil
}

// Count returns the number of matches
func (s *MemoryStore[E]) Count(ctx context.Context, filter query.Filter, search string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	matched, err := s.match(filter, search)
	if err != nil {
		return 0, err
	}
	return int64(len(matched)), nil
}

// Update replaces the stored entity, keeping the stored counter values
func (s *MemoryStore[E]) Update(ctx context.Context, e *E) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.idOf(e)
	current, ok := s.items[id]
	if !ok {
		return s.notFound(id)
	}
	if err := s.checkUnique(e); err != nil {
		return err
	}
	next := s.schema.Clone(e)
	for _, name := range s.schema.Counters {
		f := s.schema.Fields[name]
		f.Set(next, f.Get(current))
	}
	s.items[id] = next
	return nil
}

// Delete removes the entity and reports whether it existed
func (s *MemoryStore[E]) Delete(ctx context.Context, id primitive.ObjectID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[id]; !ok {
		return false, nil
	}
	delete(s.items, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return true, nil
}

// Increment adds delta to a counter field under the write lock
func (s *MemoryStore[E]) Increment(ctx context.Context, id primitive.ObjectID, field string, delta int64) error {
	if !s.schema.isCounter(field) {
		return fmt.Errorf("%s: %q is not a counter", s.schema.Entity, field)
	}
	f, err := s.schema.field(field)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.items[id]
	if !ok {
		return s.notFound(id)
	}
	f.Set(e, f.Get(e).(int64)+delta)
	return nil
}

// UpdateMany applies set to every match
func (s *MemoryStore[E]) UpdateMany(ctx context.Context, filter query.Filter, set map[string]interface{}) (int64, error) {
	setters := make(map[string]Field[E], len(set))
	for name := range set {
		f, err := s.schema.field(name)
		if err != nil {
			return 0, err
		}
		if f.Set == nil {
			return 0, fmt.Errorf("%s: field %q is not updatable", s.schema.Entity, name)
		}
		setters[name] = f
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	matched, err := s.match(filter, "")
	if err != nil {
		return 0, err
	}
	now := time.Now().UTC()
	for _, e := range matched {
		for name, f := range setters {
			f.Set(e, set[name])
		}
		if f, ok := s.schema.Fields["updatedAt"]; ok && f.Set != nil {
			f.Set(e, now)
		}
	}
	return int64(len(matched)), nil
}

// match must be called with a lock held
func (s *MemoryStore[E]) match(filter query.Filter, search string) ([]*E, error) {
	preds := make([]func(*E) bool, 0, len(filter)+1)
	for _, c := range filter {
		p, err := s.predicate(c)
		if err != nil {
			return nil, err
		}
		preds = append(preds, p)
	}
	if terms := query.SearchTerms(search); len(terms) > 0 && s.schema.HasTextIndex() {
		preds = append(preds, func(e *E) bool {
			return textMatches(s.schema.SearchText(e), terms)
		})
	}

	out := make([]*E, 0)
	for _, id := range s.order {
		e := s.items[id]
		ok := true
		for _, p := range preds {
			if !p(e) {
				ok = false
				break
			}
		}
		if ok {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *MemoryStore[E]) predicate(c query.Condition) (func(*E) bool, error) {
	f, err := s.schema.field(c.Field)
	if err != nil {
		return nil, err
	}
	want := normalize(c.Value)

	switch c.Op {
	case query.OpEq:
		return func(e *E) bool { return reflect.DeepEqual(normalize(f.Get(e)), want) }, nil
	case query.OpIn:
		set, ok := want.([]interface{})
		if !ok {
			return nil, fmt.Errorf("%s: %q expects a list", c.Op, c.Field)
		}
		return func(e *E) bool {
			got := normalize(f.Get(e))
			for _, v := range set {
				if reflect.DeepEqual(got, v) {
					return true
				}
			}
			return false
		}, nil
	case query.OpLt, query.OpLte, query.OpGt, query.OpGte:
		return func(e *E) bool {
			cmp, ok := compare(normalize(f.Get(e)), want)
			if !ok {
				return false
			}
			switch c.Op {
			case query.OpLt:
				return cmp < 0
			case query.OpLte:
				return cmp <= 0
			case query.OpGt:
				return cmp > 0
			default:
				return cmp >= 0
			}
		}, nil
	case query.OpMatch:
		pattern, ok := c.Value.(string)
		if !ok {
			return nil, fmt.Errorf("%s: %q expects a pattern", c.Op, c.Field)
		}
		re, err := regexp.Compile("(?i)" + pattern)
		if err != nil {
			return nil, apperrors.NewBadRequestError(fmt.Sprintf("invalid pattern for %s: %v", c.Field, err))
		}
		return func(e *E) bool {
			str, ok := normalize(f.Get(e)).(string)
			return ok && re.MatchString(str)
		}, nil
	case query.OpOverlaps:
		set, ok := want.([]interface{})
		if !ok {
			return nil, fmt.Errorf("%s: %q expects a list", c.Op, c.Field)
		}
		return func(e *E) bool {
			got, _ := normalize(f.Get(e)).([]interface{})
			for _, g := range got {
				for _, v := range set {
					if reflect.DeepEqual(g, v) {
						return true
					}
				}
			}
			return false
		}, nil
	}
	return nil, fmt.Errorf("unsupported operator %q", c.Op)
}

func (s *MemoryStore[E]) sort(items []*E, fields []query.SortField) error {
	getters := make([]Field[E], 0, len(fields))
	for _, sf := range fields {
		f, err := s.schema.sortField(sf.Field)
		if err != nil {
			return err
		}
		getters = append(getters, f)
	}
	sort.SliceStable(items, func(i, j int) bool {
		for k, f := range getters {
			cmp, ok := compare(normalize(f.Get(items[i])), normalize(f.Get(items[j])))
			if !ok || cmp == 0 {
				continue
			}
			if fields[k].Desc {
				return cmp > 0
			}
			return cmp < 0
		}
		return false
	})
	return nil
}

// normalize maps field and filter values onto a small set of comparable types:
// string, bool, int64, float64, time.Time and []interface{}.
func normalize(v interface{}) interface{} {
	switch t := v.(type) {
	case nil:
		return nil
	case primitive.ObjectID:
		return t.Hex()
	case *time.Time:
		if t == nil {
			return nil
		}
		return t.UTC()
	case time.Time:
		return t.UTC()
	case int:
		return int64(t)
	case int32:
		return int64(t)
	case int64, float64, bool, string:
		return t
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.String:
		return rv.String()
	case reflect.Slice, reflect.Array:
		out := make([]interface{}, rv.Len())
		for i := range out {
			out[i] = normalize(rv.Index(i).Interface())
		}
		return out
	}
	return v
}

func compare(a, b interface{}) (int, bool) {
	switch x := a.(type) {
	case string:
		y, ok := b.(string)
		if !ok {
			return 0, false
		}
		return strings.Compare(x, y), true
	case int64:
		switch y := b.(type) {
		case int64:
			return cmpOrdered(x, y), true
		case float64:
			return cmpOrdered(float64(x), y), true
		}
	case float64:
		switch y := b.(type) {
		case float64:
			return cmpOrdered(x, y), true
		case int64:
			return cmpOrdered(x, float64(y)), true
		}
	case time.Time:
		y, ok := b.(time.Time)
		if !ok {
			return 0, false
		}
		return x.Compare(y), true
	case bool:
		y, ok := b.(bool)
		if !ok {
			return 0, false
		}
		switch {
		case x == y:
			return 0, true
		case !x:
			return -1, true
		default:
			return 1, true
		}
	}
	return 0, false
}

func cmpOrdered[T int64 | float64](a, b T) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// textMatches reports whether any search term is a word of text
func textMatches(text string, terms []string) bool {
	words := query.SearchTerms(text)
	for _, w := range words {
		for _, t := range terms {
			if w == t {
				return true
			}
		}
	}
	return false
}
