package validation

import (
	"fmt"
	"slices"
	"strings"

	"datapack/internal/concept"
	"datapack/internal/domain"
	"datapack/internal/table"
)

const sectionMappings = "mappings"

// Mapping links a data column to an ontology concept and, for numeric
// columns, a unit.
type Mapping struct {
	Column      string              `json:"column" yaml:"column"`
	Concept     *concept.Suggestion `json:"concept,omitempty" yaml:"concept,omitempty"`
	Unit        *concept.Suggestion `json:"unit,omitempty" yaml:"unit,omitempty"`
	Description string              `json:"description,omitempty" yaml:"description,omitempty"`
}

// HasConcept reports whether the mapping names a concept.
func (m Mapping) HasConcept() bool { return m.Concept != nil && m.Concept.ID != "" }

// ValidateMappings checks column mappings against the data and the declared
// schema. tbl and schema may be nil.
func ValidateMappings(mappings []Mapping, tbl *table.Table, schema map[string]any) *Result {
	r := NewResult()
	mapped := map[string]bool{}

	for _, m := range mappings {
		mapped[m.Column] = m.HasConcept()
		var col *table.Column
		if tbl != nil {
			c, ok := tbl.Column(m.Column)
			if !ok {
				r.AddWarning(sectionMappings, fmt.Sprintf("Column '%s' is mapped but not present in the data", m.Column))
			}
			col = c
		}

		hasDescription := strings.TrimSpace(m.Description) != ""
		switch {
		case !m.HasConcept() && !hasDescription:
			r.AddError(sectionMappings, fmt.Sprintf("Column '%s': Must have either an ontology mapping or a description", m.Column))
		case !m.HasConcept():
			r.AddWarning(sectionMappings, fmt.Sprintf("Column '%s': Has description but no ontology mapping. Consider adding an ontology concept for better interoperability.", m.Column))
		case !concept.IsIRI(m.Concept.ID):
			r.AddError(sectionMappings, fmt.Sprintf("Column '%s': concept '%s' is not an absolute http(s) IRI", m.Column, m.Concept.ID))
		}

		if m.Unit != nil && m.Unit.ID != "" && !concept.IsIRI(m.Unit.ID) {
			r.AddError(sectionMappings, fmt.Sprintf("Column '%s': unit '%s' is not an absolute http(s) IRI", m.Column, m.Unit.ID))
		}
		if col != nil && col.Kind.IsNumeric() && (m.Unit == nil || m.Unit.ID == "") {
			r.AddError(sectionMappings, fmt.Sprintf("Column '%s': Numeric columns must have a unit defined", m.Column))
		}
	}

	list, _ := schema["fields"].([]any)
	for _, item := range list {
		f, ok := item.(map[string]any)
		if !ok {
			continue
		}
		name, _ := f["name"].(string)
		if _, seen := mapped[name]; seen || name == "" {
			continue
		}
		if rdf, _ := f["rdfType"].(string); rdf == "" {
			r.AddWarning(sectionMappings, fmt.Sprintf("Field '%s' has no ontology mapping", name))
		}
	}
	return r
}

// DecodeMappings reads mappings from a decoded JSON or YAML payload. Two
// shapes are accepted: a list of {column, concept, unit, description}
// objects, where concept and unit may be objects or bare IRIs, and an object
// from column name to concept with units under "<column>_unit" keys.
// Entries are returned in column order for the object form.
func DecodeMappings(v any) ([]Mapping, error) {
	switch x := v.(type) {
	case nil:
		return nil, nil
	case []any:
		out := make([]Mapping, 0, len(x))
		for i, item := range x {
			obj, ok := item.(map[string]any)
			if !ok {
				return nil, domain.ErrValidation("mapping %d must be an object, got %s", i, describe(item))
			}
			column, _ := obj["column"].(string)
			if column == "" {
				return nil, domain.ErrValidation("mapping %d: column is required", i)
			}
			m := Mapping{Column: column}
			m.Description, _ = obj["description"].(string)
			if s, ok := concept.FromAny(obj["concept"]); ok {
				m.Concept = &s
			}
			if s, ok := concept.FromAny(obj["unit"]); ok {
				m.Unit = &s
			}
			out = append(out, m)
		}
		return out, nil
	case map[string]any:
		columns := make([]string, 0, len(x))
		for k := range x {
			if _, isUnit := unitKey(k, x); !isUnit {
				columns = append(columns, k)
			}
		}
		slices.Sort(columns)
		out := make([]Mapping, 0, len(columns))
		for _, column := range columns {
			m := Mapping{Column: column}
			if s, ok := concept.FromAny(x[column]); ok {
				m.Concept = &s
			}
			if s, ok := concept.FromAny(x[column+"_unit"]); ok {
				m.Unit = &s
			}
			out = append(out, m)
		}
		return out, nil
	}
	return nil, domain.ErrValidation("mappings must be a list or an object, got %s", describe(v))
}

// unitKey reports whether k is the "<column>_unit" companion of another key.
func unitKey(k string, all map[string]any) (string, bool) {
	column, ok := strings.CutSuffix(k, "_unit")
	if !ok {
		return "", false
	}
	_, hasColumn := all[column]
	return column, hasColumn
}
