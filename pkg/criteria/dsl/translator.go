// Package dsl translates criteria trees into OpenSearch/Elasticsearch query DSL.
package dsl

import (
	"fmt"
	"strconv"

	"github.com/nimburion/searchcriteria/pkg/criteria"
)

// Translate converts c into a query DSL fragment, resolving every field through r.
func Translate(c criteria.Criteria, r FieldResolver) (Document, error) {
	return NewTranslator(r).Translate(c)
}

// Translator walks a criteria tree bottom-up and emits one fragment per node.
// Fragments are memoized by node key for the duration of a single Translate call,
// so a subtree shared by several parents is translated once.
type Translator struct {
	resolver  FieldResolver
	fragments map[criteria.Key]Document
}

// NewTranslator creates a Translator bound to a field resolver.
func NewTranslator(r FieldResolver) *Translator {
	return &Translator{resolver: r}
}

// Translate returns the fragment for the root of c. It never mutates c.
func (t *Translator) Translate(c criteria.Criteria) (Document, error) {
	if t.resolver == nil {
		return nil, fmt.Errorf("dsl: nil field resolver")
	}
	t.fragments = make(map[criteria.Key]Document)
	defer func() { t.fragments = nil }()

	if err := criteria.Walk(c, t.visit); err != nil {
		return nil, err
	}
	return t.fragments[c.Key()], nil
}

func (t *Translator) visit(c criteria.Criteria) error {
	if _, done := t.fragments[c.Key()]; done {
		return nil
	}
	doc, err := t.fragment(c)
	if err != nil {
		return err
	}
	t.fragments[c.Key()] = doc
	return nil
}

func (t *Translator) fragment(c criteria.Criteria) (Document, error) {
	switch n := c.(type) {
	case *criteria.ComparisonNode:
		col, err := t.column(n.Field())
		if err != nil {
			return nil, err
		}
		return comparison(n.Operator(), col, n.Value()), nil

	case *criteria.BetweenNode:
		col, err := t.column(n.Field())
		if err != nil {
			return nil, err
		}
		return Document{"range": map[string]any{
			col: map[string]any{"gt": n.Start(), "lt": n.End()},
		}}, nil

	case *criteria.ExistsNode:
		col, err := t.column(n.Field())
		if err != nil {
			return nil, err
		}
		return Document{"exists": map[string]any{"field": col}}, nil

	case *criteria.WithinDistanceNode:
		col, err := t.column(n.Field())
		if err != nil {
			return nil, err
		}
		return Document{"geo_distance": map[string]any{
			"distance": Kilometers(n.MaxDistanceKm()),
			col:        geoPoint(n.Center()),
		}}, nil

	case *criteria.BoundingBoxNode:
		col, err := t.column(n.Field())
		if err != nil {
			return nil, err
		}
		return Document{"geo_bounding_box": map[string]any{
			col: map[string]any{
				"top_left":     geoPoint(n.TopLeft()),
				"bottom_right": geoPoint(n.BottomRight()),
			},
		}}, nil

	case *criteria.LogicalNode:
		left, right := t.fragments[n.Left().Key()], t.fragments[n.Right().Key()]
		if n.Operator() == criteria.OpOr {
			return Document{"bool": map[string]any{
				"should":               []any{left, right},
				"minimum_should_match": 1,
			}}, nil
		}
		return Document{"bool": map[string]any{
			"must": []any{left, right},
		}}, nil

	case *criteria.NotNode:
		return Document{"bool": map[string]any{
			"must_not": t.fragments[n.Inner().Key()],
		}}, nil

	default:
		return nil, fmt.Errorf("%w: unsupported node %T", criteria.ErrInvalidCriteria, c)
	}
}

func (t *Translator) column(field string) (string, error) {
	col, err := t.resolver.ColumnFor(field)
	if err != nil {
		return "", err
	}
	if col == "" {
		return "", &UnknownFieldError{Field: field}
	}
	return col, nil
}

var rangeBounds = map[criteria.Operator]string{
	criteria.OpGreaterThan:    "gt",
	criteria.OpGreaterOrEqual: "gte",
	criteria.OpLessThan:       "lt",
	criteria.OpLessOrEqual:    "lte",
}

func comparison(op criteria.Operator, col string, value any) Document {
	switch op {
	case criteria.OpEqual:
		return term(col, value)
	case criteria.OpNotEqual:
		return Document{"bool": map[string]any{"must_not": term(col, value)}}
	default:
		return Document{"range": map[string]any{
			col: map[string]any{rangeBounds[op]: value},
		}}
	}
}

func term(col string, value any) Document {
	return Document{"term": map[string]any{col: value}}
}

func geoPoint(p criteria.GeoPoint) map[string]any {
	return map[string]any{"lat": p.Lat, "lon": p.Lon}
}

// Kilometers renders a distance with an explicit unit, e.g. "12.5km".
func Kilometers(km float64) string {
	return strconv.FormatFloat(km, 'f', -1, 64) + "km"
}
