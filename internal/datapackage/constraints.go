package datapackage

import (
	"regexp"

	"datapack/internal/domain"
)

// FieldConstraints restricts the values a field may hold. Nil pointers and
// empty values mean "not constrained".
type FieldConstraints struct {
	Required *bool
	Unique   *bool
	Minimum  *float64
	Maximum  *float64
	Pattern  string
	Enum     []string
}

// NewFieldConstraints validates c and returns a copy.
func NewFieldConstraints(c FieldConstraints) (*FieldConstraints, error) {
	if err := c.validate(); err != nil {
		return nil, err
	}
	out := c
	out.Enum = append([]string(nil), c.Enum...)
	return &out, nil
}

func (c *FieldConstraints) validate() error {
	if c.Pattern != "" {
		if _, err := regexp.Compile(c.Pattern); err != nil {
			return domain.ErrValidation("invalid regex pattern %q: %v", c.Pattern, err)
		}
	}
	if c.Minimum != nil && c.Maximum != nil && *c.Minimum > *c.Maximum {
		return domain.ErrValidation("constraint minimum %g is greater than maximum %g", *c.Minimum, *c.Maximum)
	}
	return nil
}

// ToMap renders the constraints in document form, omitting unset entries.
func (c *FieldConstraints) ToMap() map[string]any {
	out := map[string]any{}
	if c.Required != nil {
		out["required"] = *c.Required
	}
	if c.Unique != nil {
		out["unique"] = *c.Unique
	}
	if c.Minimum != nil {
		out["minimum"] = *c.Minimum
	}
	if c.Maximum != nil {
		out["maximum"] = *c.Maximum
	}
	if c.Pattern != "" {
		out["pattern"] = c.Pattern
	}
	if len(c.Enum) > 0 {
		enum := make([]any, len(c.Enum))
		for i, v := range c.Enum {
			enum[i] = v
		}
		out["enum"] = enum
	}
	return out
}

// Bool returns a pointer to v, for populating constraint flags.
func Bool(v bool) *bool { return &v }

// Float returns a pointer to v, for populating numeric bounds.
func Float(v float64) *float64 { return &v }
