package datapackage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustField(t *testing.T, f Field) *Field {
	t.Helper()
	out, err := NewField(f)
	require.NoError(t, err)
	return out
}

func TestNewResource_Defaults(t *testing.T) {
	r, err := NewResource(Resource{Name: "panels", Path: "panels.parquet"})
	require.NoError(t, err)
	assert.Equal(t, "utf-8", r.Encoding)

	m := r.ToMap()
	assert.Equal(t, map[string]any{"name": "panels", "path": "panels.parquet"}, m)
}

func TestNewResource_Encoding(t *testing.T) {
	tests := []struct {
		encoding string
		wantErr  bool
	}{
		{"utf-8", false},
		{"UTF-8", false},
		{"latin1", false},
		{"iso-8859-1", false},
		{"windows-1252", false},
		{"utf-42", true},
		{"not an encoding", true},
	}
	for _, tt := range tests {
		t.Run(tt.encoding, func(t *testing.T) {
			_, err := NewResource(Resource{Name: "r", Path: "r.csv", Encoding: tt.encoding})
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "invalid encoding")
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestNewResource_Errors(t *testing.T) {
	_, err := NewResource(Resource{Path: "x.csv"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "name is required")

	_, err = NewResource(Resource{Name: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "path is required")

	id := mustField(t, Field{Name: "id", Type: FieldTypeInteger, Unit: DimensionlessUnit()})
	_, err = NewResource(Resource{Name: "x", Path: "x.csv", Fields: []*Field{id}, PrimaryKey: []string{"key"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `primary key "key"`)
}

func TestResource_ToMap_Schema(t *testing.T) {
	id := mustField(t, Field{Name: "id", Type: FieldTypeInteger, Unit: DimensionlessUnit()})
	name := mustField(t, Field{Name: "name", Type: FieldTypeString, Description: "Name"})

	r, err := NewResource(Resource{
		Name:       "people",
		Path:       "people.parquet",
		Format:     "parquet",
		MediaType:  "application/vnd.apache.parquet",
		Encoding:   "latin1",
		Fields:     []*Field{id, name},
		PrimaryKey: []string{"id"},
	})
	require.NoError(t, err)

	m := r.ToMap()
	assert.Equal(t, "parquet", m["format"])
	assert.Equal(t, "application/vnd.apache.parquet", m["mediatype"])
	assert.Equal(t, "latin1", m["encoding"])

	schema, ok := m["schema"].(map[string]any)
	require.True(t, ok)
	fields, ok := schema["fields"].([]any)
	require.True(t, ok)
	require.Len(t, fields, 2)
	assert.Equal(t, "id", fields[0].(map[string]any)["name"])
	assert.Equal(t, []any{"id"}, schema["primaryKey"])
}
