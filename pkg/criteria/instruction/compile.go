package instruction

import (
	"strings"

	"github.com/nimburion/searchcriteria/pkg/criteria"
)

// Compile turns the field segment of an instruction into a criteria tree.
//
// Consecutive non-combinator words form one field ("First", "Name" -> "firstName").
// values are matched to fields by position and their counts must agree.
func Compile(words []string, values []any) (criteria.Criteria, error) {
	fields, op, err := segment(words)
	if err != nil {
		return nil, err
	}
	if len(fields) != len(values) {
		return nil, &ArityMismatchError{Fields: len(fields), Values: len(values)}
	}

	leaves := make([]criteria.Criteria, len(fields))
	for i, field := range fields {
		leaves[i] = criteria.Equal(field, values[i])
	}
	if len(leaves) == 1 {
		return leaves[0], nil
	}
	if op == criteria.OpOr {
		return criteria.Or(leaves[0], leaves[1], leaves[2:]...), nil
	}
	return criteria.And(leaves[0], leaves[1], leaves[2:]...), nil
}

// segment splits words into field names and the single combinator joining them.
func segment(words []string) ([]string, criteria.LogicalOperator, error) {
	var (
		fields  []string
		current []string
		op      criteria.LogicalOperator
	)
	closeField := func() error {
		if len(current) == 0 {
			return &UnrecognizedInstructionError{
				Instruction: strings.Join(words, ""),
				Reason:      "empty field name",
			}
		}
		fields = append(fields, lowerFirst(strings.Join(current, "")))
		current = current[:0]
		return nil
	}

	for _, w := range words {
		var next criteria.LogicalOperator
		switch w {
		case wordAnd:
			next = criteria.OpAnd
		case wordOr:
			next = criteria.OpOr
		default:
			current = append(current, w)
			continue
		}
		if op != "" && op != next {
			return nil, "", &AmbiguousCombinatorError{Words: append([]string(nil), words...)}
		}
		op = next
		if err := closeField(); err != nil {
			return nil, "", err
		}
	}
	if err := closeField(); err != nil {
		return nil, "", err
	}
	return fields, op, nil
}
