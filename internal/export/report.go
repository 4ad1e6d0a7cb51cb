package export

import (
	"fmt"
	"strings"
	"time"

	"datapack/internal/concept"
	"datapack/internal/validation"
)

var rule = strings.Repeat("=", 80)

// FailureMessage renders the errors and warnings of a failed validation.
func FailureMessage(r *validation.Result) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\nSTANDARD VALIDATION FAILED\n%s\n", rule, rule)
	if r.Level != "" {
		fmt.Fprintf(&b, "\nValidation Level: %s\n", r.Level)
	}
	writeNumbered(&b, fmt.Sprintf("ERRORS (%d):", len(r.Errors)), strings.Repeat("-", 80), r.Errors)
	writeNumbered(&b, fmt.Sprintf("WARNINGS (%d):", len(r.Warnings)), strings.Repeat("-", 80), r.Warnings)
	fmt.Fprintf(&b, "\n%s\nPlease fix the errors above and try again.\n%s", rule, rule)
	return b.String()
}

// Report renders a downloadable validation report for an export request.
func Report(req Request, r *validation.Result, now time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\nVALIDATION REPORT\n%s\n", rule, rule)
	fmt.Fprintf(&b, "\nGenerated: %s\n", now.Format(time.DateTime))
	fmt.Fprintf(&b, "Dataset: %s - %s\n", orNA(req.FileName), orNA(req.SheetName))
	fmt.Fprintf(&b, "Package Name: %s\n", orNA(req.Details.Name))
	if r.Level != "" {
		fmt.Fprintf(&b, "\nValidation Level: %s\n", r.Level)
	}
	status := "FAILED"
	if r.IsValid() {
		status = "PASSED"
	}
	fmt.Fprintf(&b, "\nValidation Status: %s\n", status)

	section(&b, "SUMMARY")
	fmt.Fprintf(&b, "Errors: %d\nWarnings: %d\nInfo Messages: %d\n", len(r.Errors), len(r.Warnings), len(r.Info))

	if len(r.Errors) > 0 {
		section(&b, "ERRORS")
		writeList(&b, r.Errors)
	}
	if len(r.Warnings) > 0 {
		section(&b, "WARNINGS")
		writeList(&b, r.Warnings)
	}
	if len(r.Info) > 0 {
		section(&b, "DATA QUALITY METRICS")
		writeList(&b, r.Info)
	}

	if req.Table != nil {
		section(&b, "DATASET INFORMATION")
		fmt.Fprintf(&b, "Rows: %d\nColumns: %d\nColumns mapped: %d\n", req.Table.NumRows(), req.Table.NumCols(), len(req.Mappings))

		section(&b, "COLUMN MAPPINGS")
		byColumn := mappingIndex(req.Mappings)
		for _, name := range req.Table.ColumnNames() {
			m, ok := byColumn[name]
			target := "Not mapped"
			if ok && m.HasConcept() {
				target = m.Concept.ID
			}
			if ok && m.Unit != nil && m.Unit.ID != "" {
				fmt.Fprintf(&b, "- %s: %s (unit: %s)\n", name, target, m.Unit.ID)
			} else {
				fmt.Fprintf(&b, "- %s: %s\n", name, target)
			}
			if ok && m.HasConcept() {
				fmt.Fprintf(&b, "  browse: %s\n", concept.WebURL(m.Concept.ID))
			}
		}
	}

	section(&b, "END OF REPORT")
	return b.String()
}

func section(b *strings.Builder, title string) {
	fmt.Fprintf(b, "\n%s\n%s\n%s\n", rule, title, rule)
}

func writeList(b *strings.Builder, items []string) {
	for i, item := range items {
		fmt.Fprintf(b, "%d. %s\n", i+1, item)
	}
}

func writeNumbered(b *strings.Builder, heading, underline string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "\n%s\n%s\n", heading, underline)
	writeList(b, items)
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
