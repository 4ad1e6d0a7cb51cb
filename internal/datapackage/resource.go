package datapackage

import (
	"strings"

	"golang.org/x/text/encoding/ianaindex"

	"datapack/internal/domain"
)

// DefaultEncoding is assumed when a resource does not declare one.
const DefaultEncoding = "utf-8"

// Resource is one tabular data file plus its column schema.
type Resource struct {
	Name        string
	Path        string
	Title       string
	Description string
	Format      string
	MediaType   string
	Encoding    string
	Profile     string
	Fields      []*Field
	PrimaryKey  []string
}

// NewResource validates r and returns a copy with defaults applied.
func NewResource(r Resource) (*Resource, error) {
	if r.Name == "" {
		return nil, domain.ErrValidation("resource name is required")
	}
	if r.Path == "" {
		return nil, domain.ErrValidation("resource %q: path is required", r.Name)
	}
	if r.Encoding == "" {
		r.Encoding = DefaultEncoding
	}
	if err := validateEncoding(r.Encoding); err != nil {
		return nil, domain.ErrValidation("resource %q: %v", r.Name, err)
	}

	declared := make(map[string]bool, len(r.Fields))
	for _, f := range r.Fields {
		if f == nil {
			return nil, domain.ErrValidation("resource %q: nil field", r.Name)
		}
		declared[f.Name] = true
	}
	for _, key := range r.PrimaryKey {
		if !declared[key] {
			return nil, domain.ErrValidation("resource %q: primary key %q is not a declared field", r.Name, key)
		}
	}

	out := r
	out.Fields = append([]*Field(nil), r.Fields...)
	out.PrimaryKey = append([]string(nil), r.PrimaryKey...)
	return &out, nil
}

// validateEncoding accepts any encoding name registered with IANA.
func validateEncoding(name string) error {
	enc, err := ianaindex.IANA.Encoding(strings.ToLower(name))
	if err != nil || enc == nil {
		return domain.ErrValidation("invalid encoding: %s", name)
	}
	return nil
}

// ToMap renders the resource in document form. The field list is nested
// under "schema" as in the Frictionless tabular resource layout.
func (r *Resource) ToMap() map[string]any {
	out := map[string]any{
		"name": r.Name,
		"path": r.Path,
	}
	for key, value := range map[string]string{
		"title":       r.Title,
		"description": r.Description,
		"format":      r.Format,
		"mediatype":   r.MediaType,
		"profile":     r.Profile,
	} {
		if value != "" {
			out[key] = value
		}
	}
	if r.Encoding != "" && !strings.EqualFold(r.Encoding, DefaultEncoding) {
		out["encoding"] = r.Encoding
	}
	if len(r.Fields) > 0 {
		fields := make([]any, len(r.Fields))
		for i, f := range r.Fields {
			fields[i] = f.ToMap()
		}
		schema := map[string]any{"fields": fields}
		if len(r.PrimaryKey) > 0 {
			pk := make([]any, len(r.PrimaryKey))
			for i, k := range r.PrimaryKey {
				pk[i] = k
			}
			schema["primaryKey"] = pk
		}
		out["schema"] = schema
	}
	return out
}
