// Package standard loads the versioned rule documents that package metadata,
// resource definitions and tabular data are validated against.
package standard

// Spec is one version of the rule document. A Spec returned by a Loader is
// shared between callers and must not be modified.
type Spec struct {
	Version     string `yaml:"version"`
	Name        string `yaml:"name"`
	Description string `yaml:"description,omitempty"`

	Metadata         SectionRules      `yaml:"metadata"`
	Resources        ResourceRules     `yaml:"resources"`
	Fields           FieldDefRules     `yaml:"fields"`
	DataQuality      DataQuality       `yaml:"data_quality"`
	ComplianceLevels []ComplianceBand  `yaml:"compliance_levels"`
	HelpURLs         map[string]string `yaml:"help_urls,omitempty"`
}

// SectionRules lists the required and recommended keys of a document section.
type SectionRules struct {
	Required    []FieldRule `yaml:"required"`
	Recommended []FieldRule `yaml:"recommended,omitempty"`
}

// ResourceRules extends SectionRules with the preferred resource format.
type ResourceRules struct {
	Required        []FieldRule `yaml:"required"`
	Recommended     []FieldRule `yaml:"recommended,omitempty"`
	PreferredFormat string      `yaml:"preferred_format"`
}

// FieldDefRules holds the rules for field (column) definitions.
type FieldDefRules struct {
	Required           []FieldRule `yaml:"required"`
	Recommended        []FieldRule `yaml:"recommended,omitempty"`
	NumericUnitMessage string      `yaml:"numeric_unit_message"`
}

// Value types a FieldRule can require.
const (
	TypeString = "string"
	TypeArray  = "array"
	TypeURL    = "url"
	TypeObject = "object"
	TypeDate   = "date"
)

// FieldRule describes one key of a section and the constraints on its value.
type FieldRule struct {
	Field        string   `yaml:"field"`
	Type         string   `yaml:"type,omitempty"`
	Description  string   `yaml:"description,omitempty"`
	Pattern      string   `yaml:"pattern,omitempty"`
	MinLength    *int     `yaml:"min_length,omitempty"`
	MaxLength    *int     `yaml:"max_length,omitempty"`
	MinItems     *int     `yaml:"min_items,omitempty"`
	MaxItems     *int     `yaml:"max_items,omitempty"`
	AllowedTypes []string `yaml:"allowed_types,omitempty"`
	Message      string   `yaml:"message,omitempty"`
}

// DataQuality holds the thresholds applied to tabular data.
type DataQuality struct {
	MissingData     MissingData     `yaml:"missing_data"`
	Duplicates      Duplicates      `yaml:"duplicates"`
	TypeConsistency TypeConsistency `yaml:"type_consistency"`
}

// MissingData thresholds are fractions in [0, 1].
type MissingData struct {
	MaxNullPercentage float64 `yaml:"max_null_percentage"`
	CriticalThreshold float64 `yaml:"critical_threshold"`
}

// Duplicates configures the duplicate-row check.
type Duplicates struct {
	CheckDuplicates        bool    `yaml:"check_duplicates"`
	MaxDuplicatePercentage float64 `yaml:"max_duplicate_percentage"`
}

// TypeConsistency configures mixed-type detection and schema matching.
// SampleSize bounds how many non-null values per column are inspected when
// matching runtime types against the declared type; 0 means every value.
type TypeConsistency struct {
	AllowMixedTypes    bool           `yaml:"allow_mixed_types"`
	CheckAgainstSchema bool           `yaml:"check_against_schema"`
	SampleSize         int            `yaml:"sample_size"`
	SchemaMatching     SchemaMatching `yaml:"schema_matching"`
}

// SchemaMatching maps declared field types to acceptable runtime type names.
type SchemaMatching struct {
	NumericMustHaveUnit bool                `yaml:"numeric_must_have_unit"`
	TypeMapping         map[string][]string `yaml:"type_mapping"`
}

// ComplianceBand is one row of the compliance decision table. A nil limit is
// unbounded.
type ComplianceBand struct {
	Level       string `yaml:"level"`
	MaxErrors   *int   `yaml:"max_errors,omitempty"`
	MaxWarnings *int   `yaml:"max_warnings,omitempty"`
	Description string `yaml:"description,omitempty"`
}

// Admits reports whether a result with the given counts falls in the band.
func (b ComplianceBand) Admits(errors, warnings int) bool {
	if b.MaxErrors != nil && errors > *b.MaxErrors {
		return false
	}
	if b.MaxWarnings != nil && warnings > *b.MaxWarnings {
		return false
	}
	return true
}

// HelpURL returns the documentation link registered for topic.
func (s *Spec) HelpURL(topic string) (string, bool) {
	u, ok := s.HelpURLs[topic]
	return u, ok
}
