// Package ddl builds the DuckDB statements used to stage tables and to read
// and write CSV and Parquet files.
package ddl

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"
)

// File formats understood by the read and copy builders.
const (
	FormatParquet = "parquet"
	FormatCSV     = "csv"
)

// ColumnDef describes a column for CREATE TABLE.
type ColumnDef struct {
	Name string
	Type string
}

// FormatFromPath derives the file format from a path's extension.
func FormatFromPath(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".parquet", ".pq":
		return FormatParquet, nil
	case ".csv", ".tsv", ".txt":
		return FormatCSV, nil
	default:
		return "", fmt.Errorf("unsupported file extension %q (want .csv or .parquet)", filepath.Ext(path))
	}
}

// CreateTempTable returns CREATE TEMP TABLE "<table>" ("<col>" TYPE, ...).
func CreateTempTable(table string, columns []ColumnDef) (string, error) {
	if err := ValidateIdentifier(table); err != nil {
		return "", fmt.Errorf("invalid table name: %w", err)
	}
	if len(columns) == 0 {
		return "", fmt.Errorf("at least one column is required")
	}

	colDefs := make([]string, 0, len(columns))
	for _, c := range columns {
		if err := ValidateColumnName(c.Name); err != nil {
			return "", fmt.Errorf("invalid column name %q: %w", c.Name, err)
		}
		if err := ValidateColumnType(c.Type); err != nil {
			return "", fmt.Errorf("invalid column type for %q: %w", c.Name, err)
		}
		colDefs = append(colDefs, fmt.Sprintf("%s %s", QuoteIdentifier(c.Name), c.Type))
	}
	return fmt.Sprintf("CREATE TEMP TABLE %s (%s)", QuoteIdentifier(table), strings.Join(colDefs, ", ")), nil
}

// DropTable returns DROP TABLE IF EXISTS "<table>".
func DropTable(table string) (string, error) {
	if err := ValidateIdentifier(table); err != nil {
		return "", fmt.Errorf("invalid table name: %w", err)
	}
	return fmt.Sprintf("DROP TABLE IF EXISTS %s", QuoteIdentifier(table)), nil
}

// InsertRow returns a parameterised INSERT for one row of n columns.
func InsertRow(table string, n int) (string, error) {
	if err := ValidateIdentifier(table); err != nil {
		return "", fmt.Errorf("invalid table name: %w", err)
	}
	if n <= 0 {
		return "", fmt.Errorf("at least one column is required")
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
	return fmt.Sprintf("INSERT INTO %s VALUES (%s)", QuoteIdentifier(table), placeholders), nil
}

// ReadOptions tune the generated read statement.
type ReadOptions struct {
	// AllVarchar reads every CSV cell as text instead of sniffing column types.
	AllVarchar bool
}

// ReadFile returns SELECT * FROM read_parquet(...) or read_csv(...).
func ReadFile(sourcePath, fileFormat string, opts ReadOptions) (string, error) {
	fn, err := readFunc(sourcePath, fileFormat, opts)
	if err != nil {
		return "", err
	}
	return "SELECT * FROM " + fn, nil
}

// DiscoverColumnsSQL returns a DESCRIBE statement listing the columns and
// types of a Parquet or CSV file.
func DiscoverColumnsSQL(sourcePath, fileFormat string) (string, error) {
	fn, err := readFunc(sourcePath, fileFormat, ReadOptions{})
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("DESCRIBE SELECT * FROM %s LIMIT 0", fn), nil
}

// CopyToParquet returns a COPY of table into a Parquet file, embedding kv as
// file-level key/value metadata. Keys are emitted in sorted order.
//
//	COPY "t" TO 'out.parquet' (FORMAT parquet, KV_METADATA {'k': 'v'})
func CopyToParquet(table, targetPath string, kv map[string]string) (string, error) {
	if err := ValidateIdentifier(table); err != nil {
		return "", fmt.Errorf("invalid table name: %w", err)
	}
	if targetPath == "" {
		return "", fmt.Errorf("target path is required")
	}

	options := "FORMAT parquet"
	if len(kv) > 0 {
		keys := make([]string, 0, len(kv))
		for k := range kv {
			if k == "" {
				return "", fmt.Errorf("metadata key is required")
			}
			keys = append(keys, k)
		}
		slices.Sort(keys)
		pairs := make([]string, len(keys))
		for i, k := range keys {
			pairs[i] = fmt.Sprintf("%s: %s", QuoteLiteral(k), QuoteLiteral(kv[k]))
		}
		options += fmt.Sprintf(", KV_METADATA {%s}", strings.Join(pairs, ", "))
	}
	return fmt.Sprintf("COPY %s TO %s (%s)", QuoteIdentifier(table), QuoteLiteral(targetPath), options), nil
}

// KVMetadataSQL returns a query for the file-level key/value metadata of a
// Parquet file. Keys and values come back as BLOBs.
func KVMetadataSQL(sourcePath string) (string, error) {
	if sourcePath == "" {
		return "", fmt.Errorf("source path is required")
	}
	return fmt.Sprintf("SELECT key, value FROM parquet_kv_metadata(%s)", QuoteLiteral(sourcePath)), nil
}

func readFunc(sourcePath, fileFormat string, opts ReadOptions) (string, error) {
	if sourcePath == "" {
		return "", fmt.Errorf("source path is required")
	}
	switch strings.ToLower(fileFormat) {
	case FormatParquet, "":
		return fmt.Sprintf("read_parquet(%s)", QuoteLiteral(sourcePath)), nil
	case FormatCSV:
		if opts.AllVarchar {
			return fmt.Sprintf("read_csv(%s, header = true, all_varchar = true)", QuoteLiteral(sourcePath)), nil
		}
		return fmt.Sprintf("read_csv(%s, header = true)", QuoteLiteral(sourcePath)), nil
	default:
		return "", fmt.Errorf("unsupported file format: %q", fileFormat)
	}
}
