package cli

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrintJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, PrintJSON(&buf, map[string]any{"name": "solar", "rows": 3}))
	assert.Contains(t, buf.String(), "\n  \"name\": \"solar\"")

	var got map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "solar", got["name"])
}

func TestPrintJSON_Nil(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, PrintJSON(&buf, nil))
	assert.Equal(t, "null\n", buf.String())
}

func TestPrintTable(t *testing.T) {
	var buf bytes.Buffer
	PrintTable(&buf, []string{"file", "level"}, [][]string{
		{"a.parquet", "STRICT"},
		{"longer-name.parquet", "BASIC"},
	})

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "FILE"))
	assert.Contains(t, lines[0], "LEVEL")
	assert.Equal(t, strings.Index(lines[0], "LEVEL"), strings.Index(lines[1], "STRICT"))
	assert.Equal(t, "longer-name.parquet  BASIC", lines[2])
}

func TestPrintTable_ShortRows(t *testing.T) {
	var buf bytes.Buffer
	PrintTable(&buf, []string{"a", "b"}, [][]string{{"x"}})
	assert.Contains(t, buf.String(), "x")
}

func TestPrintTable_NoColumns(t *testing.T) {
	var buf bytes.Buffer
	PrintTable(&buf, nil, [][]string{{"x"}})
	assert.Empty(t, buf.String())
}

func TestPrintDetail(t *testing.T) {
	var buf bytes.Buffer
	PrintDetail(&buf, map[string]any{
		"path":   "out.parquet",
		"id":     "abc",
		"status": nil,
		"tags":   []any{"a", "b"},
	})

	assert.Equal(t, "id:      abc\n"+
		"path:    out.parquet\n"+
		"status:  \n"+
		"tags:    [\"a\",\"b\"]\n", buf.String())
}

func TestFormatValue(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"nil", nil, ""},
		{"string", "x", "x"},
		{"int", 42, "42"},
		{"map", map[string]any{"k": "v"}, `{"k":"v"}`},
		{"strings", []string{"a"}, `["a"]`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, formatValue(tc.in))
		})
	}
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", truncate("abc", 10))
	assert.Equal(t, "abcdefg...", truncate("abcdefghijklmnop", 10))
	assert.Equal(t, "abcdef", truncate("abcdef", 2))
}

func TestTerminalWidth_NotATerminal(t *testing.T) {
	assert.Equal(t, 0, terminalWidth(&bytes.Buffer{}))
}

func TestValidateOutputFormat(t *testing.T) {
	require.NoError(t, validateOutputFormat("table"))
	require.NoError(t, validateOutputFormat("json"))
	require.Error(t, validateOutputFormat("yaml"))
}
