package validation

import (
	"fmt"
	"slices"
	"strings"

	"datapack/internal/standard"
	"datapack/internal/table"
)

const (
	sectionDataQuality    = "data_quality"
	sectionSchemaMatching = "schema_matching"
)

// ValidateDataQuality checks tbl for missing values, mixed-type columns and
// duplicate rows, and, when schema is non-nil, matches its columns against
// the declared fields. schema is a serialized table schema ({"fields": [...]}).
func ValidateDataQuality(tbl *table.Table, spec *standard.Spec, schema map[string]any) *Result {
	return validateDataQuality(tbl, spec, schema, spec.DataQuality.TypeConsistency.SampleSize)
}

func validateDataQuality(tbl *table.Table, spec *standard.Spec, schema map[string]any, sampleSize int) *Result {
	r := NewResult()
	quality := spec.DataQuality
	rows := tbl.NumRows()

	maxNull := quality.MissingData.MaxNullPercentage
	for _, col := range tbl.Columns() {
		pct := fraction(col.NullCount(), rows)
		switch {
		case pct > maxNull:
			r.AddError(sectionDataQuality, fmt.Sprintf("Column '%s' has %.1f%% missing values (max: %.1f%%)", col.Name, pct*100, maxNull*100))
		case pct > quality.MissingData.CriticalThreshold:
			r.AddWarning(sectionDataQuality, fmt.Sprintf("Column '%s' has %.1f%% missing values (approaching threshold)", col.Name, pct*100))
		}
	}

	if !quality.TypeConsistency.AllowMixedTypes {
		for _, col := range tbl.Columns() {
			if !col.IsDynamic() {
				continue
			}
			if types := col.Types(0); len(types) > 1 {
				r.AddError(sectionDataQuality, fmt.Sprintf("Column '%s' has mixed types: %s", col.Name, strings.Join(types, ", ")))
				r.Inconsistencies = append(r.Inconsistencies, inconsistentCells(col)...)
			}
		}
	}

	if schema != nil && quality.TypeConsistency.CheckAgainstSchema {
		r.Merge(matchSchema(tbl, schema, quality.TypeConsistency, sampleSize))
	}

	if quality.Duplicates.CheckDuplicates {
		if dups := tbl.DuplicateRows(); dups > 0 {
			pct := fraction(dups, rows)
			maxDup := quality.Duplicates.MaxDuplicatePercentage
			if pct > maxDup {
				r.AddError(sectionDataQuality, fmt.Sprintf("%d duplicate rows (%.1f%%) exceeds threshold (%.1f%%)", dups, pct*100, maxDup*100))
			} else {
				r.AddWarning(sectionDataQuality, fmt.Sprintf("%d duplicate rows found (%.1f%%)", dups, pct*100))
			}
		}
	}

	r.AddInfo(fmt.Sprintf("Dataset has %d rows and %d columns", rows, tbl.NumCols()))
	return r
}

// matchSchema compares every column with its declared field: runtime types
// of dynamic columns against the type mapping, physical storage against
// numeric, string and boolean declarations, and units on numeric fields.
func matchSchema(tbl *table.Table, schema map[string]any, tc standard.TypeConsistency, sampleSize int) *Result {
	r := NewResult()

	fields := map[string]map[string]any{}
	var declared []string
	list, _ := schema["fields"].([]any)
	for _, item := range list {
		f, ok := item.(map[string]any)
		if !ok {
			continue
		}
		name, _ := f["name"].(string)
		if name == "" {
			continue
		}
		if _, dup := fields[name]; !dup {
			declared = append(declared, name)
		}
		fields[name] = f
	}

	for _, col := range tbl.Columns() {
		field, ok := fields[col.Name]
		if !ok {
			r.AddWarning(sectionSchemaMatching, fmt.Sprintf("Column '%s' in data but not in schema definition", col.Name))
			continue
		}
		declaredType, _ := field["type"].(string)
		if declaredType == "" {
			continue
		}

		if expected, ok := tc.SchemaMatching.TypeMapping[declaredType]; ok && col.IsDynamic() {
			if actual := col.Types(sampleSize); len(actual) > 0 && !overlaps(actual, expected) {
				slices.Sort(actual)
				r.AddError(sectionSchemaMatching, fmt.Sprintf("Column '%s' declared as '%s' but contains %s. Expected: %s",
					col.Name, declaredType, strings.Join(actual, ", "), strings.Join(expected, ", ")))
			}
		}

		switch declaredType {
		case "number", "integer":
			if !col.Kind.IsNumeric() {
				r.AddError(sectionSchemaMatching, fmt.Sprintf("Column '%s' declared as '%s' but has dtype '%s'", col.Name, declaredType, col.Kind))
			}
			if tc.SchemaMatching.NumericMustHaveUnit && !hasUnit(field["unit"]) {
				r.AddError(sectionSchemaMatching, fmt.Sprintf("Numeric field '%s' must have a unit specified in the field definition", col.Name))
			}
		case "string":
			if !col.Kind.IsStringLike() {
				r.AddError(sectionSchemaMatching, fmt.Sprintf("Column '%s' declared as 'string' but has dtype '%s'", col.Name, col.Kind))
			}
		case "boolean":
			if col.Kind != table.KindBool {
				r.AddError(sectionSchemaMatching, fmt.Sprintf("Column '%s' declared as 'boolean' but has dtype '%s'", col.Name, col.Kind))
			}
		}
	}

	for _, name := range declared {
		if _, ok := tbl.Column(name); !ok {
			r.AddWarning(sectionSchemaMatching, fmt.Sprintf("Field '%s' defined in schema but not found in data", name))
		}
	}
	return r
}

// hasUnit accepts a unit object with a non-empty name or a non-empty string.
func hasUnit(v any) bool {
	switch u := v.(type) {
	case map[string]any:
		name, _ := u["name"].(string)
		return name != ""
	case string:
		return u != ""
	}
	return false
}

func overlaps(actual, expected []string) bool {
	for _, a := range actual {
		if slices.Contains(expected, a) {
			return true
		}
	}
	return false
}

func fraction(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(n) / float64(total)
}
