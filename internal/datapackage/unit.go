package datapackage

import "datapack/internal/domain"

// DimensionlessPath is the vocabulary IRI used for counts, identifiers and
// other quantities without a physical unit.
const DimensionlessPath = "https://vocab.sentier.dev/units/unit/NUM"

// Unit is a unit of measurement, usually a QUDT or sentier vocabulary concept.
type Unit struct {
	Name     string
	LongName string
	Path     string
}

// NewUnit validates and returns a Unit. Path, when set, must be an absolute
// http(s) IRI.
func NewUnit(name, longName, path string) (*Unit, error) {
	u := &Unit{Name: name, LongName: longName, Path: path}
	if err := u.validate(); err != nil {
		return nil, err
	}
	return u, nil
}

// DimensionlessUnit returns the explicit "no physical unit" marker.
func DimensionlessUnit() *Unit {
	return &Unit{Name: "NUM", LongName: "dimensionless number", Path: DimensionlessPath}
}

func (u *Unit) validate() error {
	if u.Name == "" {
		return domain.ErrValidation("unit name is required")
	}
	if u.Path != "" && !isHTTPURL(u.Path) {
		return domain.ErrValidation("unit path %q must be a valid http or https URI", u.Path)
	}
	return nil
}

// ToMap renders the unit in document form.
func (u *Unit) ToMap() map[string]any {
	out := map[string]any{"name": u.Name}
	if u.LongName != "" {
		out["longName"] = u.LongName
	}
	if u.Path != "" {
		out["path"] = u.Path
	}
	return out
}
