package criteria

import (
	"fmt"
	"strconv"
	"strings"
)

// Operator distinguishes the comparisons sharing the ComparisonNode type.
type Operator string

const (
	OpEqual          Operator = "eq"
	OpNotEqual       Operator = "ne"
	OpGreaterThan    Operator = "gt"
	OpGreaterOrEqual Operator = "gte"
	OpLessThan       Operator = "lt"
	OpLessOrEqual    Operator = "lte"
)

var operatorKinds = map[Operator]Kind{
	OpEqual:          KindEqual,
	OpNotEqual:       KindNotEqual,
	OpGreaterThan:    KindGreaterThan,
	OpGreaterOrEqual: KindGreaterOrEqual,
	OpLessThan:       KindLessThan,
	OpLessOrEqual:    KindLessOrEqual,
}

// ComparisonNode compares a field against a single value.
type ComparisonNode struct {
	key      Key
	operator Operator
	field    string
	value    any
}

func newComparison(op Operator, field string, value any) *ComparisonNode {
	return &ComparisonNode{key: nextKey(), operator: op, field: field, value: value}
}

// Equal matches documents whose field equals value.
func Equal(field string, value any) *ComparisonNode {
	return newComparison(OpEqual, field, value)
}

// NotEqual matches documents whose field does not equal value.
func NotEqual(field string, value any) *ComparisonNode {
	return newComparison(OpNotEqual, field, value)
}

func GreaterThan(field string, value any) *ComparisonNode {
	return newComparison(OpGreaterThan, field, value)
}

func GreaterOrEqual(field string, value any) *ComparisonNode {
	return newComparison(OpGreaterOrEqual, field, value)
}

func LessThan(field string, value any) *ComparisonNode {
	return newComparison(OpLessThan, field, value)
}

func LessOrEqual(field string, value any) *ComparisonNode {
	return newComparison(OpLessOrEqual, field, value)
}

func (n *ComparisonNode) Key() Key           { return n.key }
func (n *ComparisonNode) Kind() Kind         { return operatorKinds[n.operator] }
func (n *ComparisonNode) Operator() Operator { return n.operator }
func (n *ComparisonNode) Field() string      { return n.field }
func (n *ComparisonNode) Value() any         { return n.value }
func (n *ComparisonNode) criteria()          {}

func (n *ComparisonNode) String() string {
	return fmt.Sprintf("%s(%s, %s)", n.Kind(), n.field, formatValue(n.value))
}

// BetweenNode matches documents whose field lies strictly between start and end.
type BetweenNode struct {
	key   Key
	field string
	start any
	end   any
}

func Between(field string, start, end any) *BetweenNode {
	return &BetweenNode{key: nextKey(), field: field, start: start, end: end}
}

func (n *BetweenNode) Key() Key      { return n.key }
func (n *BetweenNode) Kind() Kind    { return KindBetween }
func (n *BetweenNode) Field() string { return n.field }
func (n *BetweenNode) Start() any    { return n.start }
func (n *BetweenNode) End() any      { return n.end }
func (n *BetweenNode) criteria()     {}

func (n *BetweenNode) String() string {
	return fmt.Sprintf("Between(%s, %s, %s)", n.field, formatValue(n.start), formatValue(n.end))
}

// ExistsNode matches documents that carry a non-null value for field.
type ExistsNode struct {
	key   Key
	field string
}

func Exists(field string) *ExistsNode {
	return &ExistsNode{key: nextKey(), field: field}
}

func (n *ExistsNode) Key() Key       { return n.key }
func (n *ExistsNode) Kind() Kind     { return KindExists }
func (n *ExistsNode) Field() string  { return n.field }
func (n *ExistsNode) criteria()      {}
func (n *ExistsNode) String() string { return fmt.Sprintf("Exists(%s)", n.field) }

// WithinDistanceNode matches documents whose geo point is at most MaxDistanceKm from Center.
type WithinDistanceNode struct {
	key           Key
	field         string
	center        GeoPoint
	maxDistanceKm float64
}

func WithinDistance(field string, lat, lon, maxDistanceKm float64) *WithinDistanceNode {
	return &WithinDistanceNode{
		key:           nextKey(),
		field:         field,
		center:        GeoPoint{Lat: lat, Lon: lon},
		maxDistanceKm: maxDistanceKm,
	}
}

func (n *WithinDistanceNode) Key() Key               { return n.key }
func (n *WithinDistanceNode) Kind() Kind             { return KindWithinDistance }
func (n *WithinDistanceNode) Field() string          { return n.field }
func (n *WithinDistanceNode) Center() GeoPoint       { return n.center }
func (n *WithinDistanceNode) MaxDistanceKm() float64 { return n.maxDistanceKm }
func (n *WithinDistanceNode) criteria()              {}

func (n *WithinDistanceNode) String() string {
	return fmt.Sprintf("WithinDistance(%s, %s, %s, %s)", n.field,
		formatFloat(n.center.Lat), formatFloat(n.center.Lon), formatFloat(n.maxDistanceKm))
}

// BoundingBoxNode matches documents whose geo point lies inside the box.
type BoundingBoxNode struct {
	key         Key
	field       string
	topLeft     GeoPoint
	bottomRight GeoPoint
}

func WithinBoundingBox(field string, topLeft, bottomRight GeoPoint) *BoundingBoxNode {
	return &BoundingBoxNode{key: nextKey(), field: field, topLeft: topLeft, bottomRight: bottomRight}
}

func (n *BoundingBoxNode) Key() Key              { return n.key }
func (n *BoundingBoxNode) Kind() Kind            { return KindWithinBoundingBox }
func (n *BoundingBoxNode) Field() string         { return n.field }
func (n *BoundingBoxNode) TopLeft() GeoPoint     { return n.topLeft }
func (n *BoundingBoxNode) BottomRight() GeoPoint { return n.bottomRight }
func (n *BoundingBoxNode) criteria()             {}

func (n *BoundingBoxNode) String() string {
	return fmt.Sprintf("WithinBoundingBox(%s, [%s %s], [%s %s])", n.field,
		formatFloat(n.topLeft.Lat), formatFloat(n.topLeft.Lon),
		formatFloat(n.bottomRight.Lat), formatFloat(n.bottomRight.Lon))
}

// LogicalOperator distinguishes conjunction from disjunction.
type LogicalOperator string

const (
	OpAnd LogicalOperator = "and"
	OpOr  LogicalOperator = "or"
)

// LogicalNode joins exactly two children.
type LogicalNode struct {
	key      Key
	operator LogicalOperator
	left     Criteria
	right    Criteria
}

// NewLogical joins left and right with op.
func NewLogical(op LogicalOperator, left, right Criteria) *LogicalNode {
	return &LogicalNode{key: nextKey(), operator: op, left: left, right: right}
}

// And joins the operands left to right: And(a, b, c) is And(And(a, b), c).
func And(left, right Criteria, more ...Criteria) *LogicalNode {
	return fold(OpAnd, left, right, more)
}

// Or joins the operands left to right: Or(a, b, c) is Or(Or(a, b), c).
func Or(left, right Criteria, more ...Criteria) *LogicalNode {
	return fold(OpOr, left, right, more)
}

func fold(op LogicalOperator, left, right Criteria, more []Criteria) *LogicalNode {
	node := NewLogical(op, left, right)
	for _, next := range more {
		node = NewLogical(op, node, next)
	}
	return node
}

func (n *LogicalNode) Key() Key                  { return n.key }
func (n *LogicalNode) Operator() LogicalOperator { return n.operator }
func (n *LogicalNode) Left() Criteria            { return n.left }
func (n *LogicalNode) Right() Criteria           { return n.right }
func (n *LogicalNode) criteria()                 {}

func (n *LogicalNode) Kind() Kind {
	if n.operator == OpOr {
		return KindOr
	}
	return KindAnd
}

func (n *LogicalNode) String() string {
	return fmt.Sprintf("%s(%s, %s)", n.Kind(), describe(n.left), describe(n.right))
}

// NotNode inverts its inner criteria.
type NotNode struct {
	key   Key
	inner Criteria
}

func Not(inner Criteria) *NotNode {
	return &NotNode{key: nextKey(), inner: inner}
}

func (n *NotNode) Key() Key        { return n.key }
func (n *NotNode) Kind() Kind      { return KindNot }
func (n *NotNode) Inner() Criteria { return n.inner }
func (n *NotNode) criteria()       {}
func (n *NotNode) String() string  { return fmt.Sprintf("Not(%s)", describe(n.inner)) }

func describe(c Criteria) string {
	if c == nil {
		return "<nil>"
	}
	return c.String()
}

func formatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return "null"
	case string:
		return x
	case float64:
		return formatFloat(x)
	case float32:
		return formatFloat(float64(x))
	case []any:
		parts := make([]string, len(x))
		for i := range x {
			parts[i] = formatValue(x[i])
		}
		return "[" + strings.Join(parts, " ") + "]"
	default:
		return fmt.Sprint(x)
	}
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
