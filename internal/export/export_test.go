package export

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"datapack/internal/concept"
	"datapack/internal/datapackage"
	"datapack/internal/domain"
	"datapack/internal/standard"
	"datapack/internal/table"
	"datapack/internal/validation"
)

type fakeWriter struct {
	calls int
	path  string
	doc   map[string]any
	err   error
}

func (w *fakeWriter) WriteParquet(_ context.Context, path string, _ *table.Table, doc map[string]any) error {
	w.calls++
	w.path = path
	w.doc = doc
	return w.err
}

func newExporter(t *testing.T, w Writer) *Exporter {
	t.Helper()
	spec, err := standard.Default().Load(standard.DefaultVersion)
	require.NoError(t, err)
	return New(validation.New(spec), w, nil)
}

func sampleRequest(t *testing.T) Request {
	t.Helper()
	tbl, err := table.New(
		table.NewColumn("id", table.KindInt, int64(1), int64(2), int64(3)),
		table.NewColumn("mass", table.KindFloat, 18.5, 19.0, 21.2),
		table.NewColumn("label", table.KindString, "a", "b", "c"),
	)
	require.NoError(t, err)
	return Request{
		Table:     tbl,
		FileName:  "panels.xlsx",
		SheetName: "Sheet 1",
		Mappings: []validation.Mapping{
			{Column: "id", Concept: &concept.Suggestion{ID: "https://vocab.sentier.dev/concept/identifier", Label: "identifier"}},
			{
				Column:  "mass",
				Concept: &concept.Suggestion{ID: "https://vocab.sentier.dev/concept/mass", Label: "mass"},
				Unit:    &concept.Suggestion{ID: "https://vocab.sentier.dev/units/unit/KiloGM", Label: "kilogram"},
			},
			{Column: "label", Concept: &concept.Suggestion{ID: "https://vocab.sentier.dev/concept/label"}},
		},
		Details: GeneralDetails{
			Name:         "solar-panels",
			Title:        "Solar panels",
			Description:  "Panel measurements from the 2024 survey",
			Version:      "1.0.0",
			Keywords:     []string{"solar"},
			Licenses:     []LicenseDetails{{Name: "CC-BY-4.0"}},
			Contributors: []ContributorDetails{{Name: "Jane Smith", Role: "author"}},
			Sources:      []SourceDetails{{Title: "Manufacturer survey"}},
		},
	}
}

func TestExport_WritesValidPackage(t *testing.T) {
	w := &fakeWriter{}
	out, err := newExporter(t, w).Export(context.Background(), sampleRequest(t), "/tmp/out.parquet", true)
	require.NoError(t, err)

	assert.Equal(t, 1, w.calls)
	assert.Equal(t, "/tmp/out.parquet", w.path)
	assert.NotEmpty(t, out.ID)
	require.NotNil(t, out.Result)
	assert.Empty(t, out.Result.Errors)
	assert.Equal(t, validation.LevelStrict, out.Level())

	resources := out.Document.Resources()
	require.Len(t, resources, 1)
	res := resources[0]
	assert.Equal(t, "panels_sheet_1", res["name"])
	assert.Equal(t, "panels_sheet_1.parquet", res["path"])
	assert.Equal(t, ParquetMediaType, res["mediatype"])
	assert.Equal(t, ResourceProfile, res["profile"])

	fields := out.Document.FirstSchema()["fields"].([]any)
	require.Len(t, fields, 3)
	id := fields[0].(map[string]any)
	assert.Equal(t, "integer", id["type"])
	assert.Equal(t, "NUM", id["unit"].(map[string]any)["name"])
	assert.Equal(t, "https://vocab.sentier.dev/concept/identifier", id["rdfType"])
	assert.Equal(t, "Column from Sheet 1", id["description"])

	mass := fields[1].(map[string]any)
	assert.Equal(t, "number", mass["type"])
	assert.Equal(t, "kilogram", mass["unit"].(map[string]any)["name"])
}

func TestExport_SkipValidation(t *testing.T) {
	w := &fakeWriter{}
	req := sampleRequest(t)
	req.Mappings = nil

	out, err := newExporter(t, w).Export(context.Background(), req, "out.parquet", false)
	require.NoError(t, err)
	assert.Nil(t, out.Result)
	assert.Equal(t, validation.Level(""), out.Level())
	assert.Equal(t, 1, w.calls)

	fields := out.Document.FirstSchema()["fields"].([]any)
	assert.Equal(t, "label (from Sheet 1)", fields[2].(map[string]any)["description"])
}

func TestExport_RejectsInvalidPackage(t *testing.T) {
	w := &fakeWriter{}
	req := sampleRequest(t)
	req.Mappings = append(req.Mappings, validation.Mapping{Column: "ghost"})

	_, err := newExporter(t, w).Export(context.Background(), req, "out.parquet", true)
	var failed *ValidationFailedError
	require.ErrorAs(t, err, &failed)
	assert.False(t, failed.Result.IsValid())
	assert.Contains(t, err.Error(), "STANDARD VALIDATION FAILED")
	assert.Contains(t, err.Error(), "Column 'ghost': Must have either an ontology mapping or a description")
	assert.Zero(t, w.calls)
}

func TestExport_InputErrors(t *testing.T) {
	empty, err := table.New()
	require.NoError(t, err)

	tests := []struct {
		name   string
		modify func(*Request)
		want   string
	}{
		{"empty table", func(r *Request) { r.Table = empty }, "table is empty"},
		{"missing name", func(r *Request) { r.Details.Name = "" }, "package name is required"},
		{"bad name", func(r *Request) { r.Details.Name = "Bad Name" }, "invalid package name"},
		{"bad version", func(r *Request) { r.Details.Version = "v1" }, "version"},
		{"missing license", func(r *Request) { r.Details.Licenses = nil }, "licenses"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := &fakeWriter{}
			req := sampleRequest(t)
			tt.modify(&req)

			_, err := newExporter(t, w).Export(context.Background(), req, "out.parquet", true)
			var verr *domain.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Contains(t, err.Error(), tt.want)
			assert.Zero(t, w.calls)
		})
	}
}

func TestExport_WriterError(t *testing.T) {
	w := &fakeWriter{err: errors.New("disk full")}
	_, err := newExporter(t, w).Export(context.Background(), sampleRequest(t), "out.parquet", true)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
}

func TestCheckColumnTypes(t *testing.T) {
	tbl, err := table.New(
		table.NewDynamicColumn("mixed", int64(1), "two", nil),
		table.NewDynamicColumn("uniform", "a", "b", nil),
	)
	require.NoError(t, err)

	err = CheckColumnTypes(tbl)
	require.Error(t, err)
	msg := err.Error()
	assert.Contains(t, msg, "Data quality issues found that prevent Parquet conversion")
	assert.Contains(t, msg, "1. Column 'mixed' contains mixed data types: int, string.")
	assert.Contains(t, msg, `Examples: int: 1 | string: "two"`)
	assert.NotContains(t, msg, "uniform")
}

func TestFieldType(t *testing.T) {
	assert.Equal(t, datapackage.FieldTypeInteger, FieldType(table.KindInt))
	assert.Equal(t, datapackage.FieldTypeNumber, FieldType(table.KindFloat))
	assert.Equal(t, datapackage.FieldTypeBoolean, FieldType(table.KindBool))
	assert.Equal(t, datapackage.FieldTypeDatetime, FieldType(table.KindTime))
	assert.Equal(t, datapackage.FieldTypeString, FieldType(table.KindString))
	assert.Equal(t, datapackage.FieldTypeString, FieldType(table.KindObject))
}

func TestResourceName(t *testing.T) {
	assert.Equal(t, "panels_sheet_1", ResourceName("dir/Panels.xlsx", "Sheet 1"))
	assert.Equal(t, "panels", ResourceName("panels.csv", ""))
	assert.Equal(t, "data", ResourceName("", ""))
}

func TestEffectiveMappings_DefaultsNumericUnits(t *testing.T) {
	req := sampleRequest(t)
	out := EffectiveMappings(req)

	require.NotNil(t, out[0].Unit)
	assert.Equal(t, datapackage.DimensionlessPath, out[0].Unit.ID)
	assert.Equal(t, "https://vocab.sentier.dev/units/unit/KiloGM", out[1].Unit.ID)
	assert.Nil(t, out[2].Unit)
	assert.Nil(t, req.Mappings[0].Unit)
}

func TestReport(t *testing.T) {
	req := sampleRequest(t)
	r := validation.NewResult()
	r.AddWarning("", "Field description improves dataset usability")
	r.AddInfo("Dataset has 3 rows and 3 columns")
	r.Level = validation.LevelStandard

	out := Report(req, r, time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC))
	assert.Contains(t, out, "Generated: 2024-03-15 10:30:00")
	assert.Contains(t, out, "Dataset: panels.xlsx - Sheet 1")
	assert.Contains(t, out, "Validation Level: STANDARD")
	assert.Contains(t, out, "Validation Status: PASSED")
	assert.Contains(t, out, "Errors: 0\nWarnings: 1\nInfo Messages: 1")
	assert.Contains(t, out, "DATA QUALITY METRICS")
	assert.Contains(t, out, "- mass: https://vocab.sentier.dev/concept/mass (unit: https://vocab.sentier.dev/units/unit/KiloGM)")
	assert.Contains(t, out, "- label: https://vocab.sentier.dev/concept/label\n")
	assert.Contains(t, out, "  browse: https://vocab.sentier.dev/web/concept/https%3A%2F%2Fvocab.sentier.dev%2Fconcept%2Flabel\n")
	assert.NotContains(t, out, "\nERRORS\n")
}
