package validation

import (
	"testing"

	"github.com/stretchr/testify/require"

	"datapack/internal/standard"
	"datapack/internal/table"
)

func loadSpec(t *testing.T) *standard.Spec {
	t.Helper()
	spec, err := standard.Default().Load(standard.DefaultVersion)
	require.NoError(t, err)
	return spec
}

// specCopy returns a shallow copy that tests may adjust without touching the
// shared cached document.
func specCopy(t *testing.T) *standard.Spec {
	t.Helper()
	s := *loadSpec(t)
	return &s
}

func validFields() []any {
	return []any{
		map[string]any{"name": "id", "type": "integer", "description": "Identifier", "unit": map[string]any{"name": "NUM"}},
		map[string]any{"name": "mass", "type": "number", "description": "Panel mass", "unit": map[string]any{"name": "kg"}},
		map[string]any{"name": "label", "type": "string", "description": "Panel label"},
	}
}

func validResource() map[string]any {
	return map[string]any{
		"name":        "panels",
		"path":        "panels.parquet",
		"format":      "parquet",
		"title":       "Panels",
		"description": "Panel measurements",
		"schema":      map[string]any{"fields": validFields()},
	}
}

func validDoc() map[string]any {
	return map[string]any{
		"name":         "solar-panel-lca",
		"title":        "Solar Panel LCA",
		"description":  "Life cycle inventory of solar panels",
		"version":      "1.0.0",
		"keywords":     []any{"lca", "solar"},
		"created":      "2024-03-15",
		"licenses":     []any{map[string]any{"name": "CC-BY-4.0"}},
		"contributors": []any{map[string]any{"name": "Jane Smith", "role": "author"}},
		"sources":      []any{map[string]any{"title": "Manufacturer survey"}},
		"resources":    []any{validResource()},
	}
}

func validTable(t *testing.T) *table.Table {
	t.Helper()
	tbl, err := table.New(
		table.NewColumn("id", table.KindInt, int64(1), int64(2), int64(3)),
		table.NewColumn("mass", table.KindFloat, 18.5, 19.0, 21.2),
		table.NewColumn("label", table.KindString, "a", "b", "c"),
	)
	require.NoError(t, err)
	return tbl
}

func mustTable(t *testing.T, cols ...*table.Column) *table.Table {
	t.Helper()
	tbl, err := table.New(cols...)
	require.NoError(t, err)
	return tbl
}
