package validation

import (
	"fmt"
	"log/slog"

	"datapack/internal/standard"
	"datapack/internal/table"
)

// Validator runs every validation pass against one rule document. It holds
// no mutable state and may be shared between goroutines.
type Validator struct {
	spec       *standard.Spec
	logger     *slog.Logger
	sampleSize int
}

// Option configures a Validator.
type Option func(*Validator)

// WithLogger sets the logger used for pass summaries.
func WithLogger(logger *slog.Logger) Option {
	return func(v *Validator) {
		if logger != nil {
			v.logger = logger
		}
	}
}

// WithSampleSize overrides the rule document's schema-matching sample size.
// n <= 0 inspects every value.
func WithSampleSize(n int) Option {
	return func(v *Validator) { v.sampleSize = n }
}

// New returns a Validator for spec.
func New(spec *standard.Spec, opts ...Option) *Validator {
	v := &Validator{
		spec:       spec,
		logger:     slog.New(slog.DiscardHandler),
		sampleSize: spec.DataQuality.TypeConsistency.SampleSize,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// NewForVersion loads version through loader and returns a Validator for it.
func NewForVersion(loader *standard.Loader, version string, opts ...Option) (*Validator, error) {
	spec, err := loader.Load(version)
	if err != nil {
		return nil, err
	}
	return New(spec, opts...), nil
}

// Spec returns the rule document the validator checks against.
func (v *Validator) Spec() *standard.Spec { return v.spec }

// ValidateMetadata runs the metadata pass.
func (v *Validator) ValidateMetadata(doc map[string]any) *Result {
	return ValidateMetadata(doc, v.spec)
}

// ValidateResource runs the resource pass for one resource.
func (v *Validator) ValidateResource(res map[string]any) *Result {
	return ValidateResource(res, v.spec)
}

// ValidateDataQuality runs the data pass with the validator's sample size.
func (v *Validator) ValidateDataQuality(tbl *table.Table, schema map[string]any) *Result {
	return validateDataQuality(tbl, v.spec, schema, v.sampleSize)
}

// ValidateAll runs the metadata pass, the resource pass for every resource,
// the data pass against the first resource's schema when tbl is non-nil and
// the mapping pass when mappings are given, then grades the combined result.
// Every pass runs regardless of earlier findings.
func (v *Validator) ValidateAll(doc map[string]any, tbl *table.Table, mappings []Mapping) *Result {
	r := NewResult()
	r.Merge(v.ValidateMetadata(doc))

	resources, _ := doc["resources"].([]any)
	var schema map[string]any
	for i, item := range resources {
		res, ok := item.(map[string]any)
		if !ok {
			r.AddError(fmt.Sprintf("Resource %d", i), "Resource definition must be an object")
			continue
		}
		name, _ := res["name"].(string)
		if name == "" {
			name = fmt.Sprintf("resource_%d", i)
		}
		r.MergeTagged(fmt.Sprintf("Resource '%s'", name), v.ValidateResource(res))
		if i == 0 {
			schema, _ = res["schema"].(map[string]any)
		}
	}

	if tbl != nil {
		r.Merge(v.ValidateDataQuality(tbl, schema))
	}
	if len(mappings) > 0 {
		r.Merge(ValidateMappings(mappings, tbl, schema))
	}

	r.Level = DetermineLevel(r, v.spec)
	v.logger.Debug("validation complete",
		"standard", v.spec.Version,
		"level", r.Level,
		"errors", len(r.Errors),
		"warnings", len(r.Warnings),
		"inconsistencies", len(r.Inconsistencies))
	return r
}
