package search

import (
	"encoding/json"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestJSONMapperRoundTripProperty(t *testing.T) {
	mapper, err := NewJSONMapper(JSONMapperConfig[place]{
		Index: "places",
		ID:    func(p place) string { return p.ID },
	})
	if err != nil {
		t.Fatalf("NewJSONMapper: %v", err)
	}

	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("entity survives document round trip", prop.ForAll(
		func(id, name, city string, rating float64) bool {
			in := place{ID: id, Name: name, City: city, Rating: rating}
			doc, err := mapper.EntityToDocument(in)
			if err != nil {
				return false
			}
			source, err := json.Marshal(doc)
			if err != nil {
				return false
			}
			out, err := mapper.DocumentToEntity(Hit{ID: id, Source: source})
			return err == nil && out == in
		},
		gen.Identifier(),
		gen.AlphaString(),
		gen.AlphaString(),
		gen.Float64Range(0, 5),
	))

	properties.Property("entity id is taken from the entity", prop.ForAll(
		func(id string) bool {
			got, err := mapper.EntityID(place{ID: id})
			return err == nil && got == id
		},
		gen.Identifier(),
	))

	properties.TestingRun(t)
}

func TestDocumentID(t *testing.T) {
	tests := []struct {
		doc  map[string]any
		want string
	}{
		{map[string]any{"id": "abc"}, "abc"},
		{map[string]any{"id": json.Number("42")}, "42"},
		{map[string]any{"id": 7}, "7"},
		{map[string]any{"name": "x"}, ""},
	}
	for _, tt := range tests {
		if got := DocumentID(tt.doc); got != tt.want {
			t.Errorf("DocumentID(%v) = %q, want %q", tt.doc, got, tt.want)
		}
	}
}
