// Package validation checks package metadata, resource and field definitions
// and tabular data against a rule document and grades the outcome.
//
// Findings are accumulated in a Result and never returned as errors. A result
// is valid exactly when it holds no errors; its Level is a severity grade
// layered on top of that.
package validation

import (
	"fmt"
	"strings"
)

// Level is the compliance grade of a result.
type Level string

// Compliance levels, best first.
const (
	LevelStrict   Level = "STRICT"
	LevelStandard Level = "STANDARD"
	LevelBasic    Level = "BASIC"
	LevelInvalid  Level = "INVALID"
)

// Result accumulates the findings of one validation call.
type Result struct {
	Errors          []string
	Warnings        []string
	Info            []string
	Level           Level
	Inconsistencies []Inconsistency
}

// NewResult returns an empty result.
func NewResult() *Result {
	return &Result{}
}

// AddError records a blocking finding. A non-empty field is rendered as a
// "[field] " prefix.
func (r *Result) AddError(field, msg string) {
	r.Errors = append(r.Errors, tag(field, msg))
}

// AddWarning records an advisory finding.
func (r *Result) AddWarning(field, msg string) {
	r.Warnings = append(r.Warnings, tag(field, msg))
}

// AddInfo records an observation that never affects validity.
func (r *Result) AddInfo(msg string) {
	r.Info = append(r.Info, msg)
}

// IsValid reports whether the result holds no errors.
func (r *Result) IsValid() bool { return len(r.Errors) == 0 }

// HasWarnings reports whether the result holds warnings.
func (r *Result) HasWarnings() bool { return len(r.Warnings) > 0 }

// Merge appends every finding of other to r.
func (r *Result) Merge(other *Result) {
	r.Errors = append(r.Errors, other.Errors...)
	r.Warnings = append(r.Warnings, other.Warnings...)
	r.Info = append(r.Info, other.Info...)
	r.Inconsistencies = append(r.Inconsistencies, other.Inconsistencies...)
}

// MergeTagged appends the findings of other, tagging errors and warnings
// with section.
func (r *Result) MergeTagged(section string, other *Result) {
	for _, e := range other.Errors {
		r.AddError(section, e)
	}
	for _, w := range other.Warnings {
		r.AddWarning(section, w)
	}
	r.Info = append(r.Info, other.Info...)
	r.Inconsistencies = append(r.Inconsistencies, other.Inconsistencies...)
}

// Summary returns a one-line count of errors and warnings.
func (r *Result) Summary() string {
	if r.Level != "" {
		return fmt.Sprintf("%s: %d errors, %d warnings", r.Level, len(r.Errors), len(r.Warnings))
	}
	return fmt.Sprintf("%d errors, %d warnings", len(r.Errors), len(r.Warnings))
}

// String renders the result for terminals and logs. The output only depends
// on the result's contents.
func (r *Result) String() string {
	var sb strings.Builder
	if r.Level != "" {
		fmt.Fprintf(&sb, "%s\n%s\n", r.Level, strings.Repeat("=", len(r.Level)))
	}
	section := func(title string, items []string) {
		if len(items) == 0 {
			return
		}
		if sb.Len() > 0 {
			sb.WriteByte('\n')
		}
		fmt.Fprintf(&sb, "%s (%d):\n", title, len(items))
		for _, item := range items {
			fmt.Fprintf(&sb, "  - %s\n", item)
		}
	}
	section("ERRORS", r.Errors)
	section("WARNINGS", r.Warnings)
	section("INFO", r.Info)
	if len(r.Errors) == 0 && len(r.Warnings) == 0 {
		if sb.Len() > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString("All checks passed!\n")
	}
	return sb.String()
}

// Report is the structured form of a Result used in API responses and JSON
// output.
type Report struct {
	IsValid         bool            `json:"isValid"`
	Errors          []string        `json:"errors"`
	Warnings        []string        `json:"warnings"`
	Info            []string        `json:"info"`
	QualityLevel    Level           `json:"qualityLevel"`
	Summary         string          `json:"summary"`
	Inconsistencies []Inconsistency `json:"inconsistencies,omitempty"`
}

// Report converts r to its structured form. Lists are never nil.
func (r *Result) Report() Report {
	return Report{
		IsValid:         r.IsValid(),
		Errors:          nonNil(r.Errors),
		Warnings:        nonNil(r.Warnings),
		Info:            nonNil(r.Info),
		QualityLevel:    r.Level,
		Summary:         r.Summary(),
		Inconsistencies: r.Inconsistencies,
	}
}

func tag(field, msg string) string {
	if field == "" {
		return msg
	}
	return "[" + field + "] " + msg
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return append([]string(nil), s...)
}
