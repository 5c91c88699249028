package instruction

import (
	"errors"
	"reflect"
	"testing"

	"github.com/nimburion/searchcriteria/pkg/criteria"
)

func TestSplitWords(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"getByNameAndCity", []string{"get", "By", "Name", "And", "City"}},
		{"getOneByEmail", []string{"get", "One", "By", "Email"}},
		{"getByFirstNameOrLastName", []string{"get", "By", "First", "Name", "Or", "Last", "Name"}},
		{"getByAddress2City", []string{"get", "By", "Address2", "City"}},
		{"getByIPAddress", []string{"get", "By", "IPAddress"}},
		{"get", []string{"get"}},
		{"", nil},
	}
	for _, tt := range tests {
		if got := SplitWords(tt.in); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("SplitWords(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		name  string
		mode  Mode
		words []string
	}{
		{"getByNameAndCity", FindAll, []string{"Name", "And", "City"}},
		{"getOneByEmail", FindOne, []string{"Email"}},
	}
	for _, tt := range tests {
		ins, err := Parse(tt.name)
		if err != nil {
			t.Fatalf("Parse(%q): %v", tt.name, err)
		}
		if ins.Mode != tt.mode {
			t.Errorf("Parse(%q).Mode = %s, want %s", tt.name, ins.Mode, tt.mode)
		}
		if !reflect.DeepEqual(ins.Words, tt.words) {
			t.Errorf("Parse(%q).Words = %v, want %v", tt.name, ins.Words, tt.words)
		}
	}
}

func TestParseRejectsUnknownPrefix(t *testing.T) {
	for _, name := range []string{"findByName", "getName", "getOneName", "get", "byName", ""} {
		_, err := Parse(name)
		var unrecognized *UnrecognizedInstructionError
		if !errors.As(err, &unrecognized) {
			t.Errorf("Parse(%q): expected UnrecognizedInstructionError, got %v", name, err)
			continue
		}
		if unrecognized.Instruction != name {
			t.Errorf("Parse(%q): error names %q", name, unrecognized.Instruction)
		}
	}
}

func TestCompileConjunction(t *testing.T) {
	ins, err := Parse("getByNameAndCity")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	c, err := ins.Compile([]any{"Paris", "FR"})
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if got, want := c.String(), "And(Equal(name, Paris), Equal(city, FR))"; got != want {
		t.Fatalf("got %s, want %s", got, want)
	}
}

func TestCompileDisjunction(t *testing.T) {
	ins, err := Parse("getByNameOrCity")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	c, err := ins.Compile([]any{"Paris", "FR"})
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if c.Kind() != criteria.KindOr {
		t.Fatalf("expected Or root, got %s", c.Kind())
	}
	if got, want := c.String(), "Or(Equal(name, Paris), Equal(city, FR))"; got != want {
		t.Fatalf("got %s, want %s", got, want)
	}
}

func TestCompileJoinsMultiWordFields(t *testing.T) {
	c, err := Compile([]string{"First", "Name", "And", "Zip", "Code", "And", "Age"}, []any{"Ada", "75001", 36})
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	want := "And(And(Equal(firstName, Ada), Equal(zipCode, 75001)), Equal(age, 36))"
	if c.String() != want {
		t.Fatalf("got %s, want %s", c, want)
	}
}

func TestCompileSingleField(t *testing.T) {
	c, err := Compile([]string{"Email"}, []any{"a@b.c"})
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if _, ok := c.(*criteria.ComparisonNode); !ok {
		t.Fatalf("expected a single Equal leaf, got %T", c)
	}
}

func TestCompileRejectsMixedCombinators(t *testing.T) {
	words := []string{"Name", "And", "City", "Or", "Country"}
	_, err := Compile(words, []any{"a", "b", "c"})

	var ambiguous *AmbiguousCombinatorError
	if !errors.As(err, &ambiguous) {
		t.Fatalf("expected AmbiguousCombinatorError, got %v", err)
	}
	if !reflect.DeepEqual(ambiguous.Words, words) {
		t.Fatalf("error words = %v, want %v", ambiguous.Words, words)
	}
	if !errors.Is(err, ErrAmbiguousCombinator) {
		t.Fatal("expected error to unwrap to ErrAmbiguousCombinator")
	}
}

func TestCompileArityMismatch(t *testing.T) {
	tests := []struct {
		values []any
	}{
		{[]any{"Paris"}},
		{[]any{"Paris", "FR", "extra"}},
		{nil},
	}
	for _, tt := range tests {
		_, err := Compile([]string{"Name", "And", "City"}, tt.values)
		var arity *ArityMismatchError
		if !errors.As(err, &arity) {
			t.Fatalf("values %v: expected ArityMismatchError, got %v", tt.values, err)
		}
		if arity.Fields != 2 || arity.Values != len(tt.values) {
			t.Errorf("values %v: got %+v", tt.values, arity)
		}
	}
}

func TestCompileRejectsEmptyFieldWords(t *testing.T) {
	for _, name := range []string{"getBy", "getByAndName", "getByNameAnd", "getByNameAndAndCity"} {
		ins, err := Parse(name)
		if err != nil {
			t.Fatalf("Parse(%q): %v", name, err)
		}
		_, err = ins.Compile([]any{"x"})
		var unrecognized *UnrecognizedInstructionError
		if !errors.As(err, &unrecognized) {
			t.Errorf("%q: expected UnrecognizedInstructionError, got %v", name, err)
			continue
		}
		if unrecognized.Instruction != name {
			t.Errorf("%q: error names %q", name, unrecognized.Instruction)
		}
	}
}

func TestFields(t *testing.T) {
	ins, err := Parse("getOneByFirstNameAndLastName")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	fields, err := ins.Fields()
	if err != nil {
		t.Fatalf("Fields: %v", err)
	}
	if !reflect.DeepEqual(fields, []string{"firstName", "lastName"}) {
		t.Fatalf("Fields() = %v", fields)
	}
}
