// Package query holds the store-independent description of a list request:
// paging, sorting, free-text search and a typed filter.
package query

import (
	"math"
	"strings"

	"github.com/Kamal-Wagle/mucsitbackend/internal/pkg/helpers"
)

// Op is a filter operator
type Op string

const (
	OpEq       Op = "eq"
	OpIn       Op = "in"
	OpLt       Op = "lt"
	OpLte      Op = "lte"
	OpGt       Op = "gt"
	OpGte      Op = "gte"
	OpMatch    Op = "match"    // case-insensitive regular expression
	OpOverlaps Op = "overlaps" // array field shares at least one element with Value
)

// Condition is a single predicate on a named field
type Condition struct {
	Field string
	Op    Op
	Value interface{}
}

// Filter is a conjunction of conditions
type Filter []Condition

// Eq builds an equality condition
func Eq(field string, value interface{}) Condition {
	return Condition{Field: field, Op: OpEq, Value: value}
}

// In builds a set membership condition
func In(field string, values interface{}) Condition {
	return Condition{Field: field, Op: OpIn, Value: values}
}

// Lt builds a strictly-less-than condition
func Lt(field string, value interface{}) Condition {
	return Condition{Field: field, Op: OpLt, Value: value}
}

// Lte builds a less-or-equal condition
func Lte(field string, value interface{}) Condition {
	return Condition{Field: field, Op: OpLte, Value: value}
}

// Gt builds a strictly-greater-than condition
func Gt(field string, value interface{}) Condition {
	return Condition{Field: field, Op: OpGt, Value: value}
}

// Gte builds a greater-or-equal condition
func Gte(field string, value interface{}) Condition {
	return Condition{Field: field, Op: OpGte, Value: value}
}

// Match builds a case-insensitive regular expression condition
func Match(field, pattern string) Condition {
	return Condition{Field: field, Op: OpMatch, Value: pattern}
}

// Overlaps builds an array overlap condition
func Overlaps(field string, values []string) Condition {
	return Condition{Field: field, Op: OpOverlaps, Value: values}
}

// And returns a new filter with the given conditions appended
func (f Filter) And(conds ...Condition) Filter {
	out := make(Filter, 0, len(f)+len(conds))
	out = append(out, f...)
	return append(out, conds...)
}

// Without returns a copy of the filter with every condition on field removed
func (f Filter) Without(field string) Filter {
	out := make(Filter, 0, len(f))
	for _, c := range f {
		if c.Field != field {
			out = append(out, c)
		}
	}
	return out
}

// Lookup returns the first condition on field
func (f Filter) Lookup(field string) (Condition, bool) {
	for _, c := range f {
		if c.Field == field {
			return c, true
		}
	}
	return Condition{}, false
}

// SortField orders results by one field
type SortField struct {
	Field string
	Desc  bool
}

// DefaultSort orders newest first
var DefaultSort = []SortField{{Field: "createdAt", Desc: true}}

// ParseSort parses "-createdAt,title" into sort fields. A leading '-' means descending.
func ParseSort(s string) []SortField {
	var out []SortField
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" || part == "-" || part == "+" {
			continue
		}
		switch part[0] {
		case '-':
			out = append(out, SortField{Field: part[1:], Desc: true})
		case '+':
			out = append(out, SortField{Field: part[1:]})
		default:
			out = append(out, SortField{Field: part})
		}
	}
	return out
}

// Options describes a paginated list request
type Options struct {
	Page     int
	Limit    int
	Sort     []SortField
	Search   string
	Filter   Filter
	Populate bool
}

// Normalize applies defaults and bounds: page >= 1, 1 <= limit <= 100, newest first.
func (o Options) Normalize() Options {
	if o.Page < 1 {
		o.Page = helpers.DefaultPage
	}
	switch {
	case o.Limit < 1:
		o.Limit = helpers.DefaultPageSize
	case o.Limit > helpers.MaxPageSize:
		o.Limit = helpers.MaxPageSize
	}
	if len(o.Sort) == 0 {
		o.Sort = DefaultSort
	}
	o.Search = strings.TrimSpace(o.Search)
	return o
}

// Offset returns the number of items skipped before the current page
func (o Options) Offset() int {
	return (o.Page - 1) * o.Limit
}

// Query is what a store executes: an already-composed filter and search term plus a window.
// A zero Limit means no limit.
type Query struct {
	Filter Filter
	Search string
	Sort   []SortField
	Offset int
	Limit  int
}

// Result is one page of items plus the total number of matches
type Result[T any] struct {
	Items []T
	Total int64
}

// TotalPages returns ceil(total/limit)
func TotalPages(total int64, limit int) int {
	if limit <= 0 || total <= 0 {
		return 0
	}
	return int(math.Ceil(float64(total) / float64(limit)))
}

// SearchTerms splits free text into lower-case words made of letters and digits
func SearchTerms(s string) []string {
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !isWordRune(r)
	})
	seen := make(map[string]struct{}, len(fields))
	out := fields[:0]
	for _, f := range fields {
		if _, ok := seen[f]; ok {
			continue
		}
		seen[f] = struct{}{}
		out = append(out, f)
	}
	return out
}

func isWordRune(r rune) bool {
	return ('a' <= r && r <= 'z') || ('0' <= r && r <= '9') || r > 127
}
