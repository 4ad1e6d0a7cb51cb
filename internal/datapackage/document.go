package datapackage

import (
	"encoding/json"
	"fmt"
	"io"
)

// Document is a package metadata document in its JSON shape: nested objects
// are map[string]any and lists are []any, exactly as encoding/json decodes
// them. Documents built by the Builder and documents read from disk are
// therefore interchangeable.
type Document map[string]any

// DecodeDocument reads one JSON object from r.
func DecodeDocument(r io.Reader) (Document, error) {
	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode package document: %w", err)
	}
	if doc == nil {
		return nil, fmt.Errorf("decode package document: document is null")
	}
	return doc, nil
}

// Resources returns the resource objects of the document, skipping entries
// that are not objects.
func (d Document) Resources() []map[string]any {
	list, _ := d["resources"].([]any)
	out := make([]map[string]any, 0, len(list))
	for _, item := range list {
		if m, ok := item.(map[string]any); ok {
			out = append(out, m)
		}
	}
	return out
}

// FirstSchema returns the "schema" object of the first resource, or nil.
func (d Document) FirstSchema() map[string]any {
	resources := d.Resources()
	if len(resources) == 0 {
		return nil
	}
	schema, _ := resources[0]["schema"].(map[string]any)
	return schema
}
