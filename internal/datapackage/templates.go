package datapackage

// CommonLicenses are ready-made entries for frequently used SPDX licenses.
var CommonLicenses = map[string]License{
	"CC-BY-4.0": {
		Name:  "CC-BY-4.0",
		Title: "Creative Commons Attribution 4.0",
		Path:  "https://creativecommons.org/licenses/by/4.0/",
	},
	"MIT": {
		Name:  "MIT",
		Title: "MIT License",
		Path:  "https://opensource.org/licenses/MIT",
	},
	"Apache-2.0": {
		Name:  "Apache-2.0",
		Title: "Apache License 2.0",
		Path:  "https://www.apache.org/licenses/LICENSE-2.0",
	},
	"CC0-1.0": {
		Name:  "CC0-1.0",
		Title: "Creative Commons Zero v1.0 Universal",
		Path:  "https://creativecommons.org/publicdomain/zero/1.0/",
	},
}

var degree = Unit{Name: "deg", LongName: "degree", Path: "http://qudt.org/vocab/unit/DEG"}

// FieldTemplates returns fresh copies of commonly used field definitions.
func FieldTemplates() map[string]*Field {
	deg := degree
	deg2 := degree
	return map[string]*Field{
		"id": {
			Name:        "id",
			Type:        FieldTypeInteger,
			Description: "Unique identifier",
			Unit:        DimensionlessUnit(),
			Constraints: &FieldConstraints{Required: Bool(true), Unique: Bool(true)},
		},
		"name": {
			Name:        "name",
			Type:        FieldTypeString,
			Description: "Name or title",
			Constraints: &FieldConstraints{Required: Bool(true)},
		},
		"latitude": {
			Name:        "latitude",
			Type:        FieldTypeNumber,
			Description: "Decimal latitude (WGS84)",
			Unit:        &deg,
			RDFType:     "http://www.w3.org/2003/01/geo/wgs84_pos#lat",
			Constraints: &FieldConstraints{Minimum: Float(-90), Maximum: Float(90)},
		},
		"longitude": {
			Name:        "longitude",
			Type:        FieldTypeNumber,
			Description: "Decimal longitude (WGS84)",
			Unit:        &deg2,
			RDFType:     "http://www.w3.org/2003/01/geo/wgs84_pos#long",
			Constraints: &FieldConstraints{Minimum: Float(-180), Maximum: Float(180)},
		},
	}
}
