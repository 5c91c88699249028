package dsl

import (
	"encoding/json"
)

// Document is a fragment of OpenSearch/Elasticsearch query DSL.
type Document map[string]any

// JSON renders the document. encoding/json sorts map keys, so equal documents
// always render to the same bytes.
func (d Document) JSON() ([]byte, error) {
	return json.Marshal(d)
}

// MustJSON is like JSON but panics on values that cannot be encoded.
func (d Document) MustJSON() string {
	b, err := d.JSON()
	if err != nil {
		panic(err)
	}
	return string(b)
}

// String implements fmt.Stringer for logging.
func (d Document) String() string {
	b, err := d.JSON()
	if err != nil {
		return "<unencodable document>"
	}
	return string(b)
}
