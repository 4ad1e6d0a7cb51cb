// Package concept holds ontology concept references as they arrive from
// suggestion services, whose payloads are loosely shaped.
package concept

import (
	"fmt"
	"net/url"
	"strings"
)

// Suggestion is a concept reference. ID is the concept IRI.
type Suggestion struct {
	ID          string `json:"id" yaml:"id"`
	Label       string `json:"label,omitempty" yaml:"label,omitempty"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

var (
	idKeys    = []string{"id", "id_", "uri", "iri"}
	labelKeys = []string{"label", "name", "title", "prefLabel"}
)

// FromMap reads a suggestion from a loosely shaped payload. The identifier
// may be under id, id_, uri or iri and the label under label, name, title or
// prefLabel. It reports false when no identifier is present.
func FromMap(m map[string]any) (Suggestion, bool) {
	s := Suggestion{
		ID:    firstString(m, idKeys),
		Label: firstString(m, labelKeys),
	}
	if d, ok := m["description"].(string); ok {
		s.Description = d
	}
	if s.ID == "" {
		return Suggestion{}, false
	}
	if s.Label == "" {
		s.Label = LabelFor(s.ID)
	}
	return s, true
}

// FromAny accepts a payload that is either an object or a bare IRI string.
func FromAny(v any) (Suggestion, bool) {
	switch x := v.(type) {
	case map[string]any:
		return FromMap(x)
	case string:
		if x == "" {
			return Suggestion{}, false
		}
		return Suggestion{ID: x, Label: LabelFor(x)}, true
	}
	return Suggestion{}, false
}

// IsIRI reports whether s is an absolute http or https IRI with a host.
func IsIRI(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// LabelFor derives a readable label from the last path or fragment segment
// of an IRI.
func LabelFor(iri string) string {
	trimmed := strings.TrimRight(iri, "/#")
	if i := strings.LastIndexAny(trimmed, "/#"); i >= 0 {
		trimmed = trimmed[i+1:]
	}
	if trimmed == "" {
		return iri
	}
	return trimmed
}

// WebURL returns the vocabulary browser page for a concept IRI.
func WebURL(iri string) string {
	return fmt.Sprintf("https://vocab.sentier.dev/web/concept/%s", strings.ReplaceAll(url.QueryEscape(iri), "+", "%20"))
}

func firstString(m map[string]any, keys []string) string {
	for _, k := range keys {
		if s, ok := m[k].(string); ok && s != "" {
			return s
		}
	}
	return ""
}
