package search

import (
	"github.com/nimburion/searchcriteria/pkg/criteria/dsl"
)

// Mapper converts between entities and indexed documents and names the index
// they live in. Its field resolution is used to translate criteria and sorts.
type Mapper[T any] interface {
	dsl.FieldResolver

	EntityToDocument(entity T) (map[string]any, error)
	DocumentToEntity(hit Hit) (T, error)
	EntityID(entity T) (string, error)

	IndexName() string
	TypeName() string
	// CreateIndexCommand returns the index definition (settings and mappings).
	CreateIndexCommand() map[string]any
}
