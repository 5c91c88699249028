package criteria

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// wire op names
const (
	wireEqual          = "equal"
	wireNotEqual       = "not_equal"
	wireGreaterThan    = "greater_than"
	wireGreaterOrEqual = "greater_or_equal"
	wireLessThan       = "less_than"
	wireLessOrEqual    = "less_or_equal"
	wireBetween        = "between"
	wireExists         = "exists"
	wireWithinDistance = "within_distance"
	wireBoundingBox    = "within_bounding_box"
	wireAnd            = "and"
	wireOr             = "or"
	wireNot            = "not"
)

var comparisonWireOps = map[Operator]string{
	OpEqual:          wireEqual,
	OpNotEqual:       wireNotEqual,
	OpGreaterThan:    wireGreaterThan,
	OpGreaterOrEqual: wireGreaterOrEqual,
	OpLessThan:       wireLessThan,
	OpLessOrEqual:    wireLessOrEqual,
}

var comparisonConstructors = map[string]func(string, any) *ComparisonNode{
	wireEqual:          Equal,
	wireNotEqual:       NotEqual,
	wireGreaterThan:    GreaterThan,
	wireGreaterOrEqual: GreaterOrEqual,
	wireLessThan:       LessThan,
	wireLessOrEqual:    LessOrEqual,
}

// wireNode is the decoding shape of one node.
type wireNode struct {
	Op          string      `json:"op"`
	Field       string      `json:"field"`
	Value       any         `json:"value"`
	Start       any         `json:"start"`
	End         any         `json:"end"`
	Lat         *float64    `json:"lat"`
	Lon         *float64    `json:"lon"`
	DistanceKm  *float64    `json:"distance_km"`
	TopLeft     *GeoPoint   `json:"top_left"`
	BottomRight *GeoPoint   `json:"bottom_right"`
	Args        []*wireNode `json:"args"`
	Arg         *wireNode   `json:"arg"`
}

// Marshal encodes c as a JSON document of {"op": ...} objects.
func Marshal(c Criteria) ([]byte, error) {
	doc, err := toWire(c)
	if err != nil {
		return nil, err
	}
	return json.Marshal(doc)
}

// Unmarshal decodes a document produced by Marshal, or written by hand in the same
// shape. "and"/"or" accept two or more args and fold them left.
func Unmarshal(data []byte) (Criteria, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var w wireNode
	if err := dec.Decode(&w); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCriteria, err)
	}
	return fromWire(&w, "$")
}

func toWire(c Criteria) (map[string]any, error) {
	switch n := c.(type) {
	case nil:
		return nil, fmt.Errorf("%w: nil node", ErrInvalidCriteria)
	case *ComparisonNode:
		return map[string]any{"op": comparisonWireOps[n.operator], "field": n.field, "value": n.value}, nil
	case *BetweenNode:
		return map[string]any{"op": wireBetween, "field": n.field, "start": n.start, "end": n.end}, nil
	case *ExistsNode:
		return map[string]any{"op": wireExists, "field": n.field}, nil
	case *WithinDistanceNode:
		return map[string]any{
			"op":          wireWithinDistance,
			"field":       n.field,
			"lat":         n.center.Lat,
			"lon":         n.center.Lon,
			"distance_km": n.maxDistanceKm,
		}, nil
	case *BoundingBoxNode:
		return map[string]any{
			"op":           wireBoundingBox,
			"field":        n.field,
			"top_left":     n.topLeft,
			"bottom_right": n.bottomRight,
		}, nil
	case *LogicalNode:
		left, err := toWire(n.left)
		if err != nil {
			return nil, err
		}
		right, err := toWire(n.right)
		if err != nil {
			return nil, err
		}
		op := wireAnd
		if n.operator == OpOr {
			op = wireOr
		}
		return map[string]any{"op": op, "args": []any{left, right}}, nil
	case *NotNode:
		inner, err := toWire(n.inner)
		if err != nil {
			return nil, err
		}
		return map[string]any{"op": wireNot, "arg": inner}, nil
	default:
		return nil, fmt.Errorf("%w: unsupported node %T", ErrInvalidCriteria, c)
	}
}

func fromWire(w *wireNode, path string) (Criteria, error) {
	if w == nil {
		return nil, fmt.Errorf("%w: %s: missing node", ErrInvalidCriteria, path)
	}
	if build, ok := comparisonConstructors[w.Op]; ok {
		if w.Field == "" {
			return nil, missing(path, w.Op, "field")
		}
		return build(w.Field, normalizeNumber(w.Value)), nil
	}

	switch w.Op {
	case wireBetween:
		if w.Field == "" {
			return nil, missing(path, w.Op, "field")
		}
		if w.Start == nil || w.End == nil {
			return nil, missing(path, w.Op, "start/end")
		}
		return Between(w.Field, normalizeNumber(w.Start), normalizeNumber(w.End)), nil
	case wireExists:
		if w.Field == "" {
			return nil, missing(path, w.Op, "field")
		}
		return Exists(w.Field), nil
	case wireWithinDistance:
		if w.Field == "" {
			return nil, missing(path, w.Op, "field")
		}
		if w.Lat == nil || w.Lon == nil || w.DistanceKm == nil {
			return nil, missing(path, w.Op, "lat/lon/distance_km")
		}
		return WithinDistance(w.Field, *w.Lat, *w.Lon, *w.DistanceKm), nil
	case wireBoundingBox:
		if w.Field == "" {
			return nil, missing(path, w.Op, "field")
		}
		if w.TopLeft == nil || w.BottomRight == nil {
			return nil, missing(path, w.Op, "top_left/bottom_right")
		}
		return WithinBoundingBox(w.Field, *w.TopLeft, *w.BottomRight), nil
	case wireAnd, wireOr:
		if len(w.Args) < 2 {
			return nil, fmt.Errorf("%w: %s: %q needs at least two args, got %d", ErrInvalidCriteria, path, w.Op, len(w.Args))
		}
		args := make([]Criteria, len(w.Args))
		for i, a := range w.Args {
			c, err := fromWire(a, fmt.Sprintf("%s.args[%d]", path, i))
			if err != nil {
				return nil, err
			}
			args[i] = c
		}
		op := OpAnd
		if w.Op == wireOr {
			op = OpOr
		}
		return fold(op, args[0], args[1], args[2:]), nil
	case wireNot:
		inner, err := fromWire(w.Arg, path+".arg")
		if err != nil {
			return nil, err
		}
		return Not(inner), nil
	case "":
		return nil, missing(path, "", "op")
	default:
		return nil, fmt.Errorf("%w: %s: unknown op %q", ErrInvalidCriteria, path, w.Op)
	}
}

func missing(path, op, what string) error {
	if op == "" {
		return fmt.Errorf("%w: %s: missing %s", ErrInvalidCriteria, path, what)
	}
	return fmt.Errorf("%w: %s: %q requires %s", ErrInvalidCriteria, path, op, what)
}

// normalizeNumber turns json.Number into int64 when integral, float64 otherwise,
// so decoded values print and compare like hand-built ones.
func normalizeNumber(v any) any {
	switch x := v.(type) {
	case json.Number:
		if i, err := x.Int64(); err == nil {
			return i
		}
		if f, err := x.Float64(); err == nil {
			return f
		}
		return x.String()
	case []any:
		out := make([]any, len(x))
		for i := range x {
			out[i] = normalizeNumber(x[i])
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, val := range x {
			out[k] = normalizeNumber(val)
		}
		return out
	default:
		return v
	}
}
