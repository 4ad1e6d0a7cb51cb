// Package packer reads tabular files into memory and writes Parquet files
// that carry the package document as file-level metadata, using an embedded
// DuckDB database.
package packer

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"math/big"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/duckdb/duckdb-go/v2"

	"datapack/internal/datapackage"
	"datapack/internal/ddl"
	"datapack/internal/domain"
	"datapack/internal/table"
)

// MetadataKey is the Parquet key/value metadata entry holding the package
// document.
const MetadataKey = "datapackage.json"

// Packer owns an in-memory DuckDB database. It is safe for concurrent use.
type Packer struct {
	db     *sql.DB
	logger *slog.Logger
}

// Open starts an in-memory DuckDB database. A nil logger discards output.
func Open(ctx context.Context, logger *slog.Logger) (*Packer, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	db, err := sql.Open("duckdb", "")
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping duckdb: %w", err)
	}
	return &Packer{db: db, logger: logger}, nil
}

// Close releases the database.
func (p *Packer) Close() error {
	return p.db.Close()
}

// ReadOptions control how files are loaded.
type ReadOptions struct {
	// Dynamic reads CSV cells as text and infers a type for every cell, so a
	// column holding both numbers and words becomes a dynamic column instead
	// of being coerced to text.
	Dynamic bool
}

// ReadFile loads a CSV or Parquet file, chosen by extension.
func (p *Packer) ReadFile(ctx context.Context, path string, opts ReadOptions) (*table.Table, error) {
	format, err := ddl.FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	dynamic := opts.Dynamic && format == ddl.FormatCSV
	query, err := ddl.ReadFile(path, format, ddl.ReadOptions{AllVarchar: dynamic})
	if err != nil {
		return nil, err
	}
	tbl, err := p.query(ctx, query, dynamic)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	p.logger.Debug("file loaded", "path", path, "format", format, "rows", tbl.NumRows(), "columns", tbl.NumCols())
	return tbl, nil
}

// DescribeFile lists the column names and DuckDB types of a file.
func (p *Packer) DescribeFile(ctx context.Context, path string) ([]ddl.ColumnDef, error) {
	format, err := ddl.FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	query, err := ddl.DiscoverColumnsSQL(path, format)
	if err != nil {
		return nil, err
	}
	rows, err := p.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("describe %s: %w", path, err)
	}
	defer rows.Close()

	names, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("describe %s: %w", path, err)
	}
	var defs []ddl.ColumnDef
	for rows.Next() {
		cells := make([]any, len(names))
		ptrs := make([]any, len(names))
		for i := range cells {
			ptrs[i] = &cells[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("describe %s: %w", path, err)
		}
		// DESCRIBE yields column_name, column_type, null, key, default, extra.
		defs = append(defs, ddl.ColumnDef{Name: fmt.Sprint(cells[0]), Type: fmt.Sprint(cells[1])})
	}
	return defs, rows.Err()
}

// WriteParquet writes tbl to path as Parquet and embeds doc, JSON-encoded,
// under MetadataKey. The target directory must exist.
func (p *Packer) WriteParquet(ctx context.Context, path string, tbl *table.Table, doc map[string]any) error {
	if tbl.NumCols() == 0 {
		return domain.ErrValidation("cannot write a table without columns")
	}
	if info, err := os.Stat(filepath.Dir(path)); err != nil {
		return fmt.Errorf("output directory: %w", err)
	} else if !info.IsDir() {
		return fmt.Errorf("output directory: %s is not a directory", filepath.Dir(path))
	}

	blob, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode package document: %w", err)
	}

	conn, err := p.db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Close()

	stage := "stage_" + strings.ReplaceAll(domain.NewID(), "-", "_")
	columns := make([]ddl.ColumnDef, tbl.NumCols())
	kinds := make([]table.Kind, tbl.NumCols())
	for i, col := range tbl.Columns() {
		kinds[i] = storageKind(col)
		columns[i] = ddl.ColumnDef{Name: col.Name, Type: duckType(kinds[i])}
	}

	create, err := ddl.CreateTempTable(stage, columns)
	if err != nil {
		return err
	}
	if _, err := conn.ExecContext(ctx, create); err != nil {
		return fmt.Errorf("create staging table: %w", err)
	}
	drop, _ := ddl.DropTable(stage)
	defer func() {
		if _, err := conn.ExecContext(context.WithoutCancel(ctx), drop); err != nil {
			p.logger.Warn("drop staging table", "table", stage, "error", err)
		}
	}()

	if err := insertRows(ctx, conn, stage, tbl, kinds); err != nil {
		return err
	}

	copyStmt, err := ddl.CopyToParquet(stage, path, map[string]string{MetadataKey: string(blob)})
	if err != nil {
		return err
	}
	if _, err := conn.ExecContext(ctx, copyStmt); err != nil {
		return fmt.Errorf("write parquet %s: %w", path, err)
	}
	p.logger.Info("parquet written", "path", path, "rows", tbl.NumRows(), "columns", tbl.NumCols(), "metadata_bytes", len(blob))
	return nil
}

// ReadMetadata returns the package document embedded in a Parquet file,
// byte for byte as it was written.
func (p *Packer) ReadMetadata(ctx context.Context, path string) ([]byte, error) {
	query, err := ddl.KVMetadataSQL(path)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("read metadata: %w", err)
	}
	rows, err := p.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("read metadata of %s: %w", path, err)
	}
	defer rows.Close()

	for rows.Next() {
		var key, value []byte
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("read metadata of %s: %w", path, err)
		}
		if bytes.Equal(key, []byte(MetadataKey)) {
			return value, nil
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read metadata of %s: %w", path, err)
	}
	return nil, domain.ErrNotFound("%s has no %s metadata", path, MetadataKey)
}

// ReadParquet loads a Parquet file written by WriteParquet together with its
// decoded package document.
func (p *Packer) ReadParquet(ctx context.Context, path string) (*table.Table, datapackage.Document, error) {
	blob, err := p.ReadMetadata(ctx, path)
	if err != nil {
		return nil, nil, err
	}
	doc, err := datapackage.DecodeDocument(bytes.NewReader(blob))
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", path, err)
	}
	tbl, err := p.ReadFile(ctx, path, ReadOptions{})
	if err != nil {
		return nil, nil, err
	}
	return tbl, doc, nil
}

func (p *Packer) query(ctx context.Context, query string, dynamic bool) (*table.Table, error) {
	rows, err := p.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	types, err := rows.ColumnTypes()
	if err != nil {
		return nil, err
	}
	values := make([][]any, len(types))
	cells := make([]any, len(types))
	ptrs := make([]any, len(types))
	for i := range cells {
		ptrs[i] = &cells[i]
	}
	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		for i, v := range cells {
			if dynamic {
				if s, ok := v.(string); ok {
					values[i] = append(values[i], table.ParseCell(s))
					continue
				}
			}
			values[i] = append(values[i], normalize(v))
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	columns := make([]*table.Column, len(types))
	for i, ct := range types {
		if values[i] == nil {
			values[i] = []any{}
		}
		if dynamic {
			columns[i] = table.InferColumn(ct.Name(), values[i])
			continue
		}
		columns[i] = table.NewColumn(ct.Name(), kindOf(ct.DatabaseTypeName()), values[i]...)
	}
	return table.New(columns...)
}

func insertRows(ctx context.Context, conn *sql.Conn, stage string, tbl *table.Table, kinds []table.Kind) error {
	insert, err := ddl.InsertRow(stage, tbl.NumCols())
	if err != nil {
		return err
	}
	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin insert: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, insert)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	args := make([]any, tbl.NumCols())
	for i := 0; i < tbl.NumRows(); i++ {
		for j, col := range tbl.Columns() {
			args[j] = storageValue(col.Values[i], kinds[j])
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("insert row %d: %w", i, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit insert: %w", err)
	}
	return nil
}

// storageKind narrows dynamic columns whose values share one type.
func storageKind(col *table.Column) table.Kind {
	if col.Kind != table.KindObject {
		return col.Kind
	}
	return table.InferKind(col.Values)
}

func duckType(kind table.Kind) string {
	switch kind {
	case table.KindInt:
		return "BIGINT"
	case table.KindFloat:
		return "DOUBLE"
	case table.KindBool:
		return "BOOLEAN"
	case table.KindTime:
		return "TIMESTAMP"
	default:
		return "VARCHAR"
	}
}

func storageValue(v any, kind table.Kind) any {
	if table.IsNull(v) {
		return nil
	}
	switch kind {
	case table.KindInt:
		switch x := v.(type) {
		case int:
			return int64(x)
		case int32:
			return int64(x)
		case uint32:
			return int64(x)
		}
		return v
	case table.KindFloat:
		switch x := v.(type) {
		case int64:
			return float64(x)
		case int:
			return float64(x)
		case float32:
			return float64(x)
		}
		return v
	case table.KindObject, table.KindString:
		if s, ok := v.(string); ok {
			return s
		}
		if kind == table.KindObject {
			if b, err := json.Marshal(v); err == nil {
				return string(b)
			}
			return fmt.Sprint(v)
		}
	}
	return v
}

// kindOf maps a DuckDB type name to a storage kind.
func kindOf(typeName string) table.Kind {
	name := strings.ToUpper(typeName)
	switch {
	case name == "BIGINT", name == "INTEGER", name == "SMALLINT", name == "TINYINT",
		name == "UBIGINT", name == "UINTEGER", name == "USMALLINT", name == "UTINYINT", name == "HUGEINT":
		return table.KindInt
	case name == "DOUBLE", name == "FLOAT", name == "REAL", strings.HasPrefix(name, "DECIMAL"):
		return table.KindFloat
	case name == "BOOLEAN":
		return table.KindBool
	case name == "VARCHAR":
		return table.KindString
	case name == "DATE", name == "TIME", strings.HasPrefix(name, "TIMESTAMP"):
		return table.KindTime
	default:
		return table.KindObject
	}
}

// normalize converts driver values to the cell types the table package
// reports on: int64, float64, bool, string and time.Time.
func normalize(v any) any {
	switch x := v.(type) {
	case int8:
		return int64(x)
	case int16:
		return int64(x)
	case int32:
		return int64(x)
	case uint8:
		return int64(x)
	case uint16:
		return int64(x)
	case uint32:
		return int64(x)
	case uint64:
		if x <= math.MaxInt64 {
			return int64(x)
		}
		return float64(x)
	case float32:
		return float64(x)
	case *big.Int:
		if x.IsInt64() {
			return x.Int64()
		}
		f, _ := new(big.Float).SetInt(x).Float64()
		return f
	case duckdb.Decimal:
		return x.Float64()
	case time.Time:
		return x
	}
	return v
}
