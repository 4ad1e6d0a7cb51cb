package datapackage

import (
	"strings"

	"datapack/internal/domain"
)

// FieldType is the declared logical type of a column.
type FieldType string

// Supported field types.
const (
	FieldTypeString   FieldType = "string"
	FieldTypeInteger  FieldType = "integer"
	FieldTypeNumber   FieldType = "number"
	FieldTypeBoolean  FieldType = "boolean"
	FieldTypeDate     FieldType = "date"
	FieldTypeDatetime FieldType = "datetime"
	FieldTypeTime     FieldType = "time"
	FieldTypeDuration FieldType = "duration"
	FieldTypeGeopoint FieldType = "geopoint"
	FieldTypeGeojson  FieldType = "geojson"
	FieldTypeObject   FieldType = "object"
	FieldTypeArray    FieldType = "array"
	FieldTypeAny      FieldType = "any"
)

// FieldTypes lists every supported field type in declaration order.
var FieldTypes = []FieldType{
	FieldTypeString, FieldTypeNumber, FieldTypeInteger, FieldTypeBoolean,
	FieldTypeDate, FieldTypeDatetime, FieldTypeTime, FieldTypeDuration,
	FieldTypeGeopoint, FieldTypeGeojson, FieldTypeObject, FieldTypeArray, FieldTypeAny,
}

// IsValid reports whether t is a supported field type.
func (t FieldType) IsValid() bool {
	for _, ft := range FieldTypes {
		if ft == t {
			return true
		}
	}
	return false
}

// IsNumeric reports whether t is integer or number.
func (t FieldType) IsNumeric() bool {
	return t == FieldTypeInteger || t == FieldTypeNumber
}

// Field is the schema definition of one column.
type Field struct {
	Name        string
	Type        FieldType
	Description string
	Unit        *Unit
	RDFType     string
	TaxonomyURL string
	Constraints *FieldConstraints
}

// NewField validates f and returns a copy. Numeric fields must carry a unit,
// including dimensionless ones (see DimensionlessUnit).
func NewField(f Field) (*Field, error) {
	if f.Name == "" {
		return nil, domain.ErrValidation("field name is required")
	}
	if !f.Type.IsValid() {
		names := make([]string, len(FieldTypes))
		for i, ft := range FieldTypes {
			names[i] = string(ft)
		}
		return nil, domain.ErrValidation("field %q: type must be one of: %s", f.Name, strings.Join(names, ", "))
	}
	if f.Type.IsNumeric() && f.Unit == nil {
		return nil, domain.ErrValidation("field %q has numeric type %q but no unit specified; numeric fields must have a unit", f.Name, f.Type)
	}
	if f.Unit != nil {
		if err := f.Unit.validate(); err != nil {
			return nil, domain.ErrValidation("field %q: %v", f.Name, err)
		}
	}
	if f.RDFType != "" && !isHTTPURL(f.RDFType) {
		return nil, domain.ErrValidation("field %q: rdf type %q must be an http or https URI", f.Name, f.RDFType)
	}
	if f.TaxonomyURL != "" && !isHTTPURL(f.TaxonomyURL) {
		return nil, domain.ErrValidation("field %q: taxonomy URL %q must be an http or https URI", f.Name, f.TaxonomyURL)
	}
	out := f
	if f.Unit != nil {
		u := *f.Unit
		out.Unit = &u
	}
	if f.Constraints != nil {
		c, err := NewFieldConstraints(*f.Constraints)
		if err != nil {
			return nil, domain.ErrValidation("field %q: %v", f.Name, err)
		}
		out.Constraints = c
	}
	return &out, nil
}

// ToMap renders the field in document form.
func (f *Field) ToMap() map[string]any {
	out := map[string]any{
		"name": f.Name,
		"type": string(f.Type),
	}
	if f.Description != "" {
		out["description"] = f.Description
	}
	if f.Unit != nil {
		out["unit"] = f.Unit.ToMap()
	}
	if f.RDFType != "" {
		out["rdfType"] = f.RDFType
	}
	if f.TaxonomyURL != "" {
		out["taxonomyUrl"] = f.TaxonomyURL
	}
	if f.Constraints != nil {
		if c := f.Constraints.ToMap(); len(c) > 0 {
			out["constraints"] = c
		}
	}
	return out
}
