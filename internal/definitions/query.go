package definitions

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

var (
	// ErrEmptyFields is returned when a query has no fields.
	ErrEmptyFields = errors.New("definitions: query fields are empty")
	// ErrDuplicateField is returned when a field name appears more than once.
	ErrDuplicateField = errors.New("definitions: duplicate field")
	// ErrHighlightNotInFields is returned when the highlighted field is not part of the field set.
	ErrHighlightNotInFields = errors.New("definitions: highlight is not one of the fields")
)

// Query names the dataset fields a definitions panel should explain and the
// one field to highlight. A Query is immutable once built.
type Query struct {
	fields    []string
	highlight string
}

// NewQuery validates and builds a Query. The fields slice is copied.
func NewQuery(fields []string, highlight string) (Query, error) {
	if len(fields) == 0 {
		return Query{}, ErrEmptyFields
	}
	seen := make(map[string]struct{}, len(fields))
	for _, field := range fields {
		if strings.TrimSpace(field) == "" {
			return Query{}, fmt.Errorf("%w: blank field name", ErrEmptyFields)
		}
		if _, dup := seen[field]; dup {
			return Query{}, fmt.Errorf("%w: %q", ErrDuplicateField, field)
		}
		seen[field] = struct{}{}
	}
	if _, ok := seen[highlight]; !ok {
		return Query{}, fmt.Errorf("%w: %q not in %v", ErrHighlightNotInFields, highlight, fields)
	}
	return Query{fields: slices.Clone(fields), highlight: highlight}, nil
}

// Fields returns a copy of the ordered field names.
func (q Query) Fields() []string {
	return slices.Clone(q.fields)
}

// Highlight returns the highlighted field name.
func (q Query) Highlight() string {
	return q.highlight
}

// IsZero reports whether q was never built.
func (q Query) IsZero() bool {
	return len(q.fields) == 0
}

// Equal reports whether two queries name the same fields in the same order
// with the same highlight.
func (q Query) Equal(other Query) bool {
	return q.highlight == other.highlight && slices.Equal(q.fields, other.fields)
}

// String renders the query for logs.
func (q Query) String() string {
	return fmt.Sprintf("%s[%s]", strings.Join(q.fields, ","), q.highlight)
}
