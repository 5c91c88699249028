package instruction

import (
	"fmt"
	"strings"

	"github.com/nimburion/searchcriteria/pkg/criteria"
)

// Builder assembles a flat conjunction or disjunction of leaf predicates:
//
//	c, err := instruction.Where("name").Equals("Paris").And("city").Equals("FR").Build()
//
// Like compiled instructions, a Builder rejects mixing And and Or.
type Builder struct {
	leaves []criteria.Criteria
	op     criteria.LogicalOperator
	words  []string
	err    error
}

// Condition is a pending predicate on one field.
type Condition struct {
	b     *Builder
	field string
}

// Where starts a builder with a predicate on field.
func Where(field string) *Condition {
	b := &Builder{}
	return b.condition(field)
}

// And appends a conjunct on field.
func (b *Builder) And(field string) *Condition {
	return b.join(criteria.OpAnd, wordAnd, field)
}

// Or appends a disjunct on field.
func (b *Builder) Or(field string) *Condition {
	return b.join(criteria.OpOr, wordOr, field)
}

// Build returns the folded tree, or the first error recorded while building.
func (b *Builder) Build() (criteria.Criteria, error) {
	if b.err != nil {
		return nil, b.err
	}
	switch len(b.leaves) {
	case 0:
		return nil, fmt.Errorf("%w: empty builder", criteria.ErrInvalidCriteria)
	case 1:
		return b.leaves[0], nil
	}
	if b.op == criteria.OpOr {
		return criteria.Or(b.leaves[0], b.leaves[1], b.leaves[2:]...), nil
	}
	return criteria.And(b.leaves[0], b.leaves[1], b.leaves[2:]...), nil
}

func (b *Builder) join(op criteria.LogicalOperator, word, field string) *Condition {
	b.words = append(b.words, word)
	if b.err == nil && b.op != "" && b.op != op {
		b.err = &AmbiguousCombinatorError{Words: append([]string(nil), b.words...)}
	}
	b.op = op
	return b.condition(field)
}

func (b *Builder) condition(field string) *Condition {
	b.words = append(b.words, field)
	if b.err == nil && field == "" {
		b.err = &UnrecognizedInstructionError{Instruction: strings.Join(b.words, ""), Reason: "empty field name"}
	}
	return &Condition{b: b, field: field}
}

func (c *Condition) add(node criteria.Criteria) *Builder {
	c.b.leaves = append(c.b.leaves, node)
	return c.b
}

func (c *Condition) Equals(value any) *Builder { return c.add(criteria.Equal(c.field, value)) }

func (c *Condition) NotEquals(value any) *Builder { return c.add(criteria.NotEqual(c.field, value)) }

func (c *Condition) GreaterThan(value any) *Builder {
	return c.add(criteria.GreaterThan(c.field, value))
}

func (c *Condition) GreaterOrEqual(value any) *Builder {
	return c.add(criteria.GreaterOrEqual(c.field, value))
}

func (c *Condition) LessThan(value any) *Builder { return c.add(criteria.LessThan(c.field, value)) }

func (c *Condition) LessOrEqual(value any) *Builder {
	return c.add(criteria.LessOrEqual(c.field, value))
}

func (c *Condition) Between(start, end any) *Builder {
	return c.add(criteria.Between(c.field, start, end))
}

func (c *Condition) Exists() *Builder { return c.add(criteria.Exists(c.field)) }

func (c *Condition) WithinDistance(lat, lon, maxDistanceKm float64) *Builder {
	return c.add(criteria.WithinDistance(c.field, lat, lon, maxDistanceKm))
}

func (c *Condition) WithinBoundingBox(topLeft, bottomRight criteria.GeoPoint) *Builder {
	return c.add(criteria.WithinBoundingBox(c.field, topLeft, bottomRight))
}
