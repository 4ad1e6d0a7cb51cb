package concept

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromMap(t *testing.T) {
	tests := []struct {
		name    string
		payload map[string]any
		want    Suggestion
		ok      bool
	}{
		{
			name:    "id and label",
			payload: map[string]any{"id": "https://vocab.sentier.dev/units/unit/KiloGM", "label": "kilogram"},
			want:    Suggestion{ID: "https://vocab.sentier.dev/units/unit/KiloGM", Label: "kilogram"},
			ok:      true,
		},
		{
			name:    "id_ and name",
			payload: map[string]any{"id_": "https://example.org/c/1", "name": "One", "description": "first"},
			want:    Suggestion{ID: "https://example.org/c/1", Label: "One", Description: "first"},
			ok:      true,
		},
		{
			name:    "uri without label",
			payload: map[string]any{"uri": "https://example.org/concepts#Mass"},
			want:    Suggestion{ID: "https://example.org/concepts#Mass", Label: "Mass"},
			ok:      true,
		},
		{
			name:    "wrong value types are ignored",
			payload: map[string]any{"id": 42, "uri": "https://example.org/x", "label": []any{"a"}},
			want:    Suggestion{ID: "https://example.org/x", Label: "x"},
			ok:      true,
		},
		{name: "no identifier", payload: map[string]any{"label": "orphan"}, ok: false},
		{name: "empty", payload: map[string]any{}, ok: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := FromMap(tt.payload)
			require.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIsIRI(t *testing.T) {
	assert.True(t, IsIRI("https://vocab.sentier.dev/units/unit/NUM"))
	assert.True(t, IsIRI("http://qudt.org/vocab/unit/KiloGM"))
	assert.False(t, IsIRI("urn:isbn:123"))
	assert.False(t, IsIRI("vocab.sentier.dev/x"))
	assert.False(t, IsIRI("https://"))
	assert.False(t, IsIRI(""))
}

func TestLabelFor(t *testing.T) {
	assert.Equal(t, "KiloGM", LabelFor("https://vocab.sentier.dev/units/unit/KiloGM"))
	assert.Equal(t, "unit", LabelFor("https://vocab.sentier.dev/units/unit/"))
	assert.Equal(t, "Mass", LabelFor("https://example.org/onto#Mass"))
	assert.Equal(t, "plain", LabelFor("plain"))
}

func TestWebURL(t *testing.T) {
	assert.Equal(t,
		"https://vocab.sentier.dev/web/concept/https%3A%2F%2Fvocab.sentier.dev%2FGeonames%2FA",
		WebURL("https://vocab.sentier.dev/Geonames/A"))
}
