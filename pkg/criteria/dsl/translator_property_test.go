package dsl

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/nimburion/searchcriteria/pkg/criteria"
)

// buildTree deterministically expands a list of opcodes into a criteria tree.
// Each opcode either pushes a leaf or combines the top of the stack.
func buildTree(ops []int) criteria.Criteria {
	var stack []criteria.Criteria
	for i, op := range ops {
		field := fmt.Sprintf("f%d", i%5)
		switch op % 9 {
		case 0:
			stack = append(stack, criteria.Equal(field, i))
		case 1:
			stack = append(stack, criteria.NotEqual(field, fmt.Sprint(i)))
		case 2:
			stack = append(stack, criteria.GreaterOrEqual(field, float64(i)/2))
		case 3:
			stack = append(stack, criteria.Between(field, i, i+10))
		case 4:
			stack = append(stack, criteria.Exists(field))
		case 5:
			stack = append(stack, criteria.WithinDistance("loc", float64(i%90), float64(i%180), float64(i+1)))
		case 6, 7:
			if len(stack) >= 2 {
				l, r := stack[len(stack)-2], stack[len(stack)-1]
				stack = stack[:len(stack)-2]
				if op%9 == 6 {
					stack = append(stack, criteria.And(l, r))
				} else {
					stack = append(stack, criteria.Or(l, r))
				}
			}
		case 8:
			if len(stack) >= 1 {
				stack[len(stack)-1] = criteria.Not(stack[len(stack)-1])
			}
		}
	}
	if len(stack) == 0 {
		return criteria.Exists("empty")
	}
	root := stack[0]
	for _, c := range stack[1:] {
		root = criteria.And(root, c)
	}
	return root
}

func TestPropertyTranslateIsDeterministic(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("repeated translation yields identical bytes", prop.ForAll(
		func(ops []int) bool {
			tree := buildTree(ops)
			r := IdentityResolver()

			first, err := Translate(tree, r)
			if err != nil {
				return false
			}
			second, err := Translate(tree, r)
			if err != nil {
				return false
			}
			a, err := first.JSON()
			if err != nil {
				return false
			}
			b, err := second.JSON()
			if err != nil {
				return false
			}
			return bytes.Equal(a, b)
		},
		gen.SliceOf(gen.IntRange(0, 100)),
	))

	properties.Property("separately built equal trees translate identically", prop.ForAll(
		func(ops []int) bool {
			r := IdentityResolver()
			a, errA := Translate(buildTree(ops), r)
			b, errB := Translate(buildTree(ops), r)
			if errA != nil || errB != nil {
				return false
			}
			return a.String() == b.String()
		},
		gen.SliceOf(gen.IntRange(0, 100)),
	))

	properties.TestingRun(t)
}
