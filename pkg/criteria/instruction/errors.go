package instruction

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrAmbiguousCombinator classifies instructions that mix And and Or.
	ErrAmbiguousCombinator = errors.New("ambiguous combinator")
	// ErrUnrecognizedInstruction classifies names outside the get[One]By grammar.
	ErrUnrecognizedInstruction = errors.New("unrecognized instruction")
	// ErrArityMismatch classifies a field/value count mismatch.
	ErrArityMismatch = errors.New("arity mismatch")
)

// AmbiguousCombinatorError reports the words of an instruction that mixes And and Or.
type AmbiguousCombinatorError struct {
	Words []string
}

func (e *AmbiguousCombinatorError) Error() string {
	return fmt.Sprintf("%s: %q mixes And and Or", ErrAmbiguousCombinator, strings.Join(e.Words, ""))
}

func (e *AmbiguousCombinatorError) Unwrap() error { return ErrAmbiguousCombinator }

// UnrecognizedInstructionError reports an instruction name that cannot be compiled.
type UnrecognizedInstructionError struct {
	Instruction string
	Reason      string
}

func (e *UnrecognizedInstructionError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("%s: %q", ErrUnrecognizedInstruction, e.Instruction)
	}
	return fmt.Sprintf("%s: %q: %s", ErrUnrecognizedInstruction, e.Instruction, e.Reason)
}

func (e *UnrecognizedInstructionError) Unwrap() error { return ErrUnrecognizedInstruction }

// ArityMismatchError reports how many fields and values were supplied.
type ArityMismatchError struct {
	Fields int
	Values int
}

func (e *ArityMismatchError) Error() string {
	return fmt.Sprintf("%s: %d fields, %d values", ErrArityMismatch, e.Fields, e.Values)
}

func (e *ArityMismatchError) Unwrap() error { return ErrArityMismatch }
