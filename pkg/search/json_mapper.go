package search

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/nimburion/searchcriteria/pkg/criteria/dsl"
)

// JSONMapperConfig describes how a JSONMapper stores entities of type T.
type JSONMapperConfig[T any] struct {
	Index string
	// Type is the mapping type for clusters that still use them.
	Type string
	// Columns maps logical field names to document paths.
	Columns map[string]string
	// Strict rejects fields missing from Columns instead of using them verbatim.
	Strict bool
	// CaseInsensitive matches fields against Columns ignoring case.
	CaseInsensitive bool
	// ID extracts the document id of an entity.
	ID func(T) string
	// Definition is the body sent on index creation.
	Definition map[string]any
}

// JSONMapper maps entities through their encoding/json representation.
type JSONMapper[T any] struct {
	cfg      JSONMapperConfig[T]
	resolver *dsl.MapResolver
}

// NewJSONMapper validates cfg and builds a mapper.
func NewJSONMapper[T any](cfg JSONMapperConfig[T]) (*JSONMapper[T], error) {
	if strings.TrimSpace(cfg.Index) == "" {
		return nil, fmt.Errorf("index name is required")
	}
	if cfg.ID == nil {
		return nil, fmt.Errorf("id function is required")
	}
	var opts []dsl.MapResolverOption
	if !cfg.Strict {
		opts = append(opts, dsl.WithPassthrough())
	}
	if cfg.CaseInsensitive {
		opts = append(opts, dsl.WithCaseInsensitiveFields())
	}
	return &JSONMapper[T]{
		cfg:      cfg,
		resolver: dsl.NewMapResolver(cfg.Columns, opts...),
	}, nil
}

func (m *JSONMapper[T]) ColumnFor(field string) (string, error) {
	return m.resolver.ColumnFor(field)
}

func (m *JSONMapper[T]) EntityToDocument(entity T) (map[string]any, error) {
	raw, err := json.Marshal(entity)
	if err != nil {
		return nil, fmt.Errorf("failed to encode entity: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var doc map[string]any
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("entity does not encode to a JSON object: %w", err)
	}
	return doc, nil
}

func (m *JSONMapper[T]) DocumentToEntity(hit Hit) (T, error) {
	var entity T
	if len(hit.Source) == 0 {
		return entity, fmt.Errorf("hit %s has no _source", hit.ID)
	}
	if err := json.Unmarshal(hit.Source, &entity); err != nil {
		return entity, fmt.Errorf("failed to decode hit %s: %w", hit.ID, err)
	}
	return entity, nil
}

func (m *JSONMapper[T]) EntityID(entity T) (string, error) {
	id := m.cfg.ID(entity)
	if strings.TrimSpace(id) == "" {
		return "", fmt.Errorf("entity has an empty id")
	}
	return id, nil
}

func (m *JSONMapper[T]) IndexName() string { return m.cfg.Index }

func (m *JSONMapper[T]) TypeName() string { return m.cfg.Type }

func (m *JSONMapper[T]) CreateIndexCommand() map[string]any {
	if m.cfg.Definition == nil {
		return map[string]any{}
	}
	return m.cfg.Definition
}

// DocumentID reads the "id" key of a generic document. It is the ID function for
// JSONMapper[map[string]any].
func DocumentID(doc map[string]any) string {
	switch v := doc["id"].(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}
