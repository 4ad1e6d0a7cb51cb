package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"datapack/internal/concept"
	"datapack/internal/domain"
	"datapack/internal/table"
)

func sugg(id string) *concept.Suggestion {
	return &concept.Suggestion{ID: id}
}

func TestValidateMappings(t *testing.T) {
	tbl := mustTable(t,
		table.NewColumn("mass", table.KindFloat, 1.0),
		table.NewColumn("label", table.KindString, "a"),
	)
	tests := []struct {
		name         string
		mapping      Mapping
		wantErrors   []string
		wantWarnings []string
	}{
		{
			name:    "fully mapped numeric",
			mapping: Mapping{Column: "mass", Concept: sugg("https://vocab.sentier.dev/products/mass"), Unit: sugg("https://vocab.sentier.dev/units/unit/KiloGM")},
		},
		{
			name:       "numeric without unit",
			mapping:    Mapping{Column: "mass", Concept: sugg("https://example.org/mass")},
			wantErrors: []string{"[mappings] Column 'mass': Numeric columns must have a unit defined"},
		},
		{
			name:       "neither concept nor description",
			mapping:    Mapping{Column: "label", Concept: &concept.Suggestion{}},
			wantErrors: []string{"[mappings] Column 'label': Must have either an ontology mapping or a description"},
		},
		{
			name:         "description only",
			mapping:      Mapping{Column: "label", Description: "free text label"},
			wantWarnings: []string{"[mappings] Column 'label': Has description but no ontology mapping. Consider adding an ontology concept for better interoperability."},
		},
		{
			name:       "relative concept",
			mapping:    Mapping{Column: "label", Concept: sugg("products/label")},
			wantErrors: []string{"[mappings] Column 'label': concept 'products/label' is not an absolute http(s) IRI"},
		},
		{
			name:    "bad unit IRI",
			mapping: Mapping{Column: "mass", Concept: sugg("https://example.org/mass"), Unit: sugg("kg")},
			wantErrors: []string{
				"[mappings] Column 'mass': unit 'kg' is not an absolute http(s) IRI",
			},
		},
		{
			name:         "unknown column",
			mapping:      Mapping{Column: "ghost", Concept: sugg("https://example.org/ghost")},
			wantWarnings: []string{"[mappings] Column 'ghost' is mapped but not present in the data"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := ValidateMappings([]Mapping{tt.mapping}, tbl, nil)
			assert.Equal(t, tt.wantErrors, r.Errors)
			assert.Equal(t, tt.wantWarnings, r.Warnings)
		})
	}
}

func TestValidateMappings_UnmappedSchemaFields(t *testing.T) {
	schema := map[string]any{"fields": []any{
		map[string]any{"name": "mass", "type": "number"},
		map[string]any{"name": "label", "type": "string", "rdfType": "https://example.org/label"},
		map[string]any{"name": "extra", "type": "string"},
	}}
	mappings := []Mapping{{Column: "mass", Concept: sugg("https://example.org/mass"), Unit: sugg("https://example.org/kg")}}

	r := ValidateMappings(mappings, nil, schema)
	assert.Empty(t, r.Errors)
	require.Len(t, r.Warnings, 1)
	assert.Equal(t, "[mappings] Field 'extra' has no ontology mapping", r.Warnings[0])
}

func TestDecodeMappings_List(t *testing.T) {
	got, err := DecodeMappings([]any{
		map[string]any{
			"column":  "mass",
			"concept": map[string]any{"id_": "https://vocab.sentier.dev/concept/mass", "name": "mass"},
			"unit":    "https://vocab.sentier.dev/units/unit/KiloGM",
		},
		map[string]any{"column": "note", "description": "Free text"},
	})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "https://vocab.sentier.dev/concept/mass", got[0].Concept.ID)
	assert.Equal(t, "mass", got[0].Concept.Label)
	assert.Equal(t, "KiloGM", got[0].Unit.Label)
	assert.Nil(t, got[1].Concept)
	assert.Equal(t, "Free text", got[1].Description)
}

func TestDecodeMappings_Object(t *testing.T) {
	got, err := DecodeMappings(map[string]any{
		"mass":      "https://vocab.sentier.dev/concept/mass",
		"mass_unit": "https://vocab.sentier.dev/units/unit/KiloGM",
		"id":        "https://vocab.sentier.dev/concept/identifier",
	})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "id", got[0].Column)
	assert.Nil(t, got[0].Unit)
	assert.Equal(t, "mass", got[1].Column)
	assert.Equal(t, "https://vocab.sentier.dev/units/unit/KiloGM", got[1].Unit.ID)
}

func TestDecodeMappings_Errors(t *testing.T) {
	for _, in := range []any{
		"mass",
		[]any{"mass"},
		[]any{map[string]any{"concept": "https://example.org/c"}},
	} {
		_, err := DecodeMappings(in)
		var verr *domain.ValidationError
		assert.ErrorAs(t, err, &verr, "%v", in)
	}

	got, err := DecodeMappings(nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}
