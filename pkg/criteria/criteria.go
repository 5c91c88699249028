// Package criteria models composable boolean filter specifications.
//
// A Criteria is an immutable tree of leaf predicates (equality, ranges, existence,
// geo shapes) joined by binary And/Or combinators and unary Not. The set of node
// types is closed: consumers match on the concrete type with a type switch.
package criteria

import (
	"errors"
	"fmt"
	"sync/atomic"
)

// ErrInvalidCriteria classifies malformed trees (nil children, undecodable documents).
var ErrInvalidCriteria = errors.New("invalid criteria")

// Key identifies a node for the lifetime of the process.
// Two nodes built separately never share a key, even when they print the same.
type Key uint64

var lastKey atomic.Uint64

func nextKey() Key {
	return Key(lastKey.Add(1))
}

// Kind tags the variant of a node.
type Kind uint8

const (
	KindEqual Kind = iota + 1
	KindNotEqual
	KindGreaterThan
	KindGreaterOrEqual
	KindLessThan
	KindLessOrEqual
	KindBetween
	KindExists
	KindWithinDistance
	KindWithinBoundingBox
	KindAnd
	KindOr
	KindNot
)

var kindNames = map[Kind]string{
	KindEqual:             "Equal",
	KindNotEqual:          "NotEqual",
	KindGreaterThan:       "GreaterThan",
	KindGreaterOrEqual:    "GreaterOrEqual",
	KindLessThan:          "LessThan",
	KindLessOrEqual:       "LessOrEqual",
	KindBetween:           "Between",
	KindExists:            "Exists",
	KindWithinDistance:    "WithinDistance",
	KindWithinBoundingBox: "WithinBoundingBox",
	KindAnd:               "And",
	KindOr:                "Or",
	KindNot:               "Not",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// Criteria is a node of a filter specification tree.
type Criteria interface {
	Key() Key
	Kind() Kind
	String() string

	criteria()
}

// GeoPoint is a latitude/longitude pair in degrees.
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Valid reports whether the point lies within [-90,90] x [-180,180].
func (p GeoPoint) Valid() bool {
	return p.Lat >= -90 && p.Lat <= 90 && p.Lon >= -180 && p.Lon <= 180
}

// Children returns the direct children of c in evaluation order.
func Children(c Criteria) []Criteria {
	switch n := c.(type) {
	case *LogicalNode:
		return []Criteria{n.left, n.right}
	case *NotNode:
		return []Criteria{n.inner}
	default:
		return nil
	}
}

// Walk calls fn for every node of the tree rooted at c, children before parents.
// Walk stops at the first error returned by fn.
func Walk(c Criteria, fn func(Criteria) error) error {
	if c == nil {
		return fmt.Errorf("%w: nil node", ErrInvalidCriteria)
	}
	for _, child := range Children(c) {
		if err := Walk(child, fn); err != nil {
			return err
		}
	}
	return fn(c)
}

// Count returns the number of nodes in the tree rooted at c.
func Count(c Criteria) int {
	n := 0
	_ = Walk(c, func(Criteria) error {
		n++
		return nil
	})
	return n
}
