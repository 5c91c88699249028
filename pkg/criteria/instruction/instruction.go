// Package instruction compiles dynamic finder names such as "getByNameAndCity"
// into criteria trees.
//
// The grammar is:
//
//	get By <Field> {(And|Or) <Field>}
//	get One By <Field> {(And|Or) <Field>}
//
// Fields are camel-case words; each one is paired with a positional value and
// becomes an Equal leaf. A single instruction uses either And or Or, never both.
package instruction

import (
	"errors"

	"github.com/nimburion/searchcriteria/pkg/criteria"
)

// Mode tells whether an instruction expects a list or exactly one result.
type Mode int

const (
	FindAll Mode = iota
	FindOne
)

func (m Mode) String() string {
	if m == FindOne {
		return "find_one"
	}
	return "find_all"
}

const (
	wordGet = "get"
	wordOne = "One"
	wordBy  = "By"
	wordAnd = "And"
	wordOr  = "Or"
)

// Instruction is a parsed finder name.
type Instruction struct {
	Name string
	Mode Mode
	// Words holds the segment after the prefix, e.g. [Name And City].
	Words []string
}

// Parse validates the get[One]By prefix of name and returns the remaining words.
func Parse(name string) (Instruction, error) {
	words := SplitWords(name)
	switch {
	case len(words) >= 2 && words[0] == wordGet && words[1] == wordBy:
		return Instruction{Name: name, Mode: FindAll, Words: words[2:]}, nil
	case len(words) >= 3 && words[0] == wordGet && words[1] == wordOne && words[2] == wordBy:
		return Instruction{Name: name, Mode: FindOne, Words: words[3:]}, nil
	default:
		return Instruction{}, &UnrecognizedInstructionError{
			Instruction: name,
			Reason:      "expected prefix getBy or getOneBy",
		}
	}
}

// Compile pairs the instruction's fields with values.
func (i Instruction) Compile(values []any) (criteria.Criteria, error) {
	c, err := Compile(i.Words, values)
	if err != nil {
		return nil, i.named(err)
	}
	return c, nil
}

// Fields returns the field names the instruction refers to, in order.
func (i Instruction) Fields() ([]string, error) {
	fields, _, err := segment(i.Words)
	if err != nil {
		return nil, i.named(err)
	}
	return fields, nil
}

func (i Instruction) named(err error) error {
	var unrecognized *UnrecognizedInstructionError
	if errors.As(err, &unrecognized) {
		unrecognized.Instruction = i.Name
	}
	return err
}
