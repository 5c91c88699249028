package query

import (
	"fmt"
	"strings"

	"github.com/nimburion/searchcriteria/pkg/criteria"
)

// Direction orders results.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// ParseDirection accepts "asc" or "desc" in any case.
func ParseDirection(s string) (Direction, error) {
	switch d := Direction(strings.ToLower(strings.TrimSpace(s))); d {
	case Asc, Desc:
		return d, nil
	default:
		return "", fmt.Errorf("%w: direction %q", ErrInvalidSort, s)
	}
}

// SortMode selects how results are ordered.
type SortMode int

const (
	SortDefault SortMode = iota
	SortDistance
	SortField
)

// Sort describes result ordering. The zero value sorts by identifier ascending.
type Sort struct {
	Mode      SortMode
	Field     string
	Direction Direction
	Origin    criteria.GeoPoint
}

// DefaultSort orders by identifier ascending.
func DefaultSort() Sort {
	return Sort{}
}

// SortByDistance orders by distance from (lat, lon) on a geo field, nearest first.
func SortByDistance(field string, lat, lon float64) Sort {
	return Sort{Mode: SortDistance, Field: field, Origin: criteria.GeoPoint{Lat: lat, Lon: lon}}
}

// SortByField orders by field in the given direction.
func SortByField(field string, direction Direction) Sort {
	return Sort{Mode: SortField, Field: field, Direction: direction}
}

// sortClauses renders s with the identifier tiebreak appended.
func sortClauses(s Sort, column func(string) (string, error), idField string) ([]any, error) {
	switch s.Mode {
	case SortDefault:
		return []any{map[string]any{idField: string(Asc)}}, nil

	case SortDistance:
		col, err := column(s.Field)
		if err != nil {
			return nil, err
		}
		return []any{
			map[string]any{"_geo_distance": map[string]any{
				col:     map[string]any{"lat": s.Origin.Lat, "lon": s.Origin.Lon},
				"order": string(Asc),
				"unit":  "km",
			}},
			map[string]any{idField: map[string]any{"order": string(Asc)}},
		}, nil

	case SortField:
		dir, err := ParseDirection(string(s.Direction))
		if err != nil {
			return nil, err
		}
		col, err := column(s.Field)
		if err != nil {
			return nil, err
		}
		return []any{
			map[string]any{col: string(dir)},
			map[string]any{idField: string(Asc)},
		}, nil

	default:
		return nil, fmt.Errorf("%w: mode %d", ErrInvalidSort, s.Mode)
	}
}
