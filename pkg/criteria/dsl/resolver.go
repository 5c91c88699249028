package dsl

import "strings"

// FieldResolver maps a logical field name to a backend document path.
type FieldResolver interface {
	ColumnFor(field string) (string, error)
}

// FieldResolverFunc adapts a function to FieldResolver.
type FieldResolverFunc func(field string) (string, error)

func (f FieldResolverFunc) ColumnFor(field string) (string, error) {
	return f(field)
}

// MapResolver resolves fields through a fixed field->column table.
type MapResolver struct {
	columns         map[string]string
	passthrough     bool
	caseInsensitive bool
}

// MapResolverOption configures a MapResolver.
type MapResolverOption func(*MapResolver)

// WithPassthrough makes unmapped fields resolve to themselves instead of failing.
func WithPassthrough() MapResolverOption {
	return func(r *MapResolver) {
		r.passthrough = true
	}
}

// WithCaseInsensitiveFields matches field names against the column map
// ignoring case. Configuration loaders that lowercase keys need it.
func WithCaseInsensitiveFields() MapResolverOption {
	return func(r *MapResolver) {
		r.caseInsensitive = true
	}
}

// NewMapResolver copies columns, so later changes to the map do not leak in.
func NewMapResolver(columns map[string]string, opts ...MapResolverOption) *MapResolver {
	r := &MapResolver{columns: make(map[string]string, len(columns))}
	for _, opt := range opts {
		opt(r)
	}
	for field, column := range columns {
		r.columns[r.key(field)] = column
	}
	return r
}

// IdentityResolver resolves every non-empty field to itself.
func IdentityResolver() *MapResolver {
	return NewMapResolver(nil, WithPassthrough())
}

func (r *MapResolver) ColumnFor(field string) (string, error) {
	if column, ok := r.columns[r.key(field)]; ok && column != "" {
		return column, nil
	}
	if r.passthrough && field != "" {
		return field, nil
	}
	return "", &UnknownFieldError{Field: field}
}

func (r *MapResolver) key(field string) string {
	if r.caseInsensitive {
		return strings.ToLower(field)
	}
	return field
}
