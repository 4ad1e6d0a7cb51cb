package validation

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"datapack/internal/domain"
	"datapack/internal/standard"
	"datapack/internal/table"
)

func TestValidateAll_Strict(t *testing.T) {
	v := New(loadSpec(t))
	r := v.ValidateAll(validDoc(), validTable(t), nil)

	assert.Empty(t, r.Errors)
	assert.Empty(t, r.Warnings)
	assert.Equal(t, []string{"Dataset has 3 rows and 3 columns"}, r.Info)
	assert.Equal(t, LevelStrict, r.Level)
	assert.True(t, r.IsValid())
}

func TestValidateAll_PrefixesResourceFindings(t *testing.T) {
	doc := validDoc()
	res := validResource()
	res["format"] = "csv"
	second := validResource()
	delete(second, "name")
	delete(second, "title")
	doc["resources"] = []any{res, second}

	r := New(loadSpec(t)).ValidateAll(doc, nil, nil)
	require.Len(t, r.Warnings, 2)
	assert.Equal(t, "[Resource 'panels'] [format] Format 'csv' is acceptable, but 'parquet' is preferred", r.Warnings[0])
	assert.Contains(t, r.Warnings[1], "[Resource 'resource_1'] [title]")
	require.Len(t, r.Errors, 1)
	assert.Contains(t, r.Errors[0], "[Resource 'resource_1'] [name]")
	assert.Equal(t, LevelBasic, r.Level)
}

func TestValidateAll_NoEarlyExit(t *testing.T) {
	doc := validDoc()
	delete(doc, "title")
	doc["contributors"] = []any{map[string]any{"name": "X", "role": "publisher"}}
	tbl := mustTable(t,
		table.NewDynamicColumn("id", 1, "two", 3),
		table.NewColumn("mass", table.KindFloat, 1.0, 2.0, 3.0),
		table.NewColumn("label", table.KindString, "a", "b", "c"),
	)

	r := New(loadSpec(t)).ValidateAll(doc, tbl, nil)
	assert.Equal(t, 1, countContaining(r.Errors, "[title]"))
	assert.Equal(t, 1, countContaining(r.Errors, "author"))
	assert.Equal(t, 1, countContaining(r.Errors, "mixed types"))
	assert.Equal(t, 1, countContaining(r.Errors, "has dtype 'object'"))
	require.Len(t, r.Inconsistencies, 1)
	assert.Equal(t, "two", r.Inconsistencies[0].Value)
	assert.False(t, r.IsValid())
}

func TestValidateAll_UsesFirstResourceSchema(t *testing.T) {
	doc := validDoc()
	other := validResource()
	other["name"] = "other"
	other["schema"] = map[string]any{"fields": []any{
		map[string]any{"name": "unrelated", "type": "string", "description": "x"},
	}}
	doc["resources"] = []any{validResource(), other}

	r := New(loadSpec(t)).ValidateAll(doc, validTable(t), nil)
	assert.Empty(t, r.Errors)
	assert.Zero(t, countContaining(r.Warnings, "unrelated"))
}

func TestValidateAll_Mappings(t *testing.T) {
	mappings := []Mapping{
		{Column: "id", Concept: sugg("https://example.org/id"), Unit: sugg("https://vocab.sentier.dev/units/unit/NUM")},
		{Column: "mass", Concept: sugg("https://example.org/mass")},
	}
	r := New(loadSpec(t)).ValidateAll(validDoc(), validTable(t), mappings)
	assert.Equal(t, []string{"[mappings] Column 'mass': Numeric columns must have a unit defined"}, r.Errors)
	assert.Equal(t, []string{"[mappings] Field 'label' has no ontology mapping"}, r.Warnings)
	assert.Equal(t, LevelBasic, r.Level)
}

func TestValidateAll_NonObjectResource(t *testing.T) {
	doc := validDoc()
	doc["resources"] = []any{"panels.parquet"}

	r := New(loadSpec(t)).ValidateAll(doc, validTable(t), nil)
	assert.Contains(t, r.Errors, "[Resource 0] Resource definition must be an object")
}

func TestValidateAll_Logs(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	New(loadSpec(t), WithLogger(logger)).ValidateAll(validDoc(), nil, nil)
	assert.Contains(t, buf.String(), "validation complete")
	assert.Contains(t, buf.String(), "level=STRICT")
}

func TestNewForVersion(t *testing.T) {
	v, err := NewForVersion(standard.Default(), "1.0.0")
	require.NoError(t, err)
	assert.Equal(t, "1.0.0", v.Spec().Version)

	_, err = NewForVersion(standard.Default(), "0.0.1")
	var nf *domain.NotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Contains(t, nf.Message, "1.0.0")
}

func TestValidator_ConcurrentUse(t *testing.T) {
	v := New(loadSpec(t))
	doc := validDoc()
	tbl := validTable(t)

	done := make(chan *Result, 8)
	for i := 0; i < cap(done); i++ {
		go func() { done <- v.ValidateAll(doc, tbl, nil) }()
	}
	for i := 0; i < cap(done); i++ {
		assert.Equal(t, LevelStrict, (<-done).Level)
	}
}
