package ddl

import (
	"fmt"
	"regexp"
	"strings"
)

// identifierRe matches the generated names used for staging tables.
var identifierRe = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// columnTypeRe matches the DuckDB type names a staged column may use:
//
//	WORD                  BIGINT, VARCHAR, BOOLEAN
//	WORD(digits)          VARCHAR(255)
//	WORD(digits, digits)  DECIMAL(18,3)
//	any of these + []     VARCHAR[]
var columnTypeRe = regexp.MustCompile(`(?i)^[A-Z][A-Z0-9_ ]*(?:\(\s*\d+\s*(?:,\s*\d+\s*)?\))?(?:\[\])?$`)

const (
	maxIdentifierLen = 128
	maxColumnNameLen = 255
	maxColumnTypeLen = 64
)

// ValidateIdentifier checks that name is a bare SQL identifier of at most
// 128 characters matching [a-zA-Z_][a-zA-Z0-9_]*.
func ValidateIdentifier(name string) error {
	if name == "" {
		return fmt.Errorf("name is required")
	}
	if len(name) > maxIdentifierLen {
		return fmt.Errorf("name must be at most %d characters", maxIdentifierLen)
	}
	if !identifierRe.MatchString(name) {
		return fmt.Errorf("name must match [a-zA-Z_][a-zA-Z0-9_]*")
	}
	return nil
}

// ValidateColumnName checks a column name taken from a spreadsheet header.
// Such names are always quoted, so spaces and punctuation are allowed, but
// they must be non-empty, at most 255 bytes and free of NUL bytes.
func ValidateColumnName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("column name is required")
	}
	if len(name) > maxColumnNameLen {
		return fmt.Errorf("column name must be at most %d bytes", maxColumnNameLen)
	}
	if strings.ContainsRune(name, 0) {
		return fmt.Errorf("column name contains a NUL byte")
	}
	return nil
}

// QuoteIdentifier wraps name in double quotes, doubling embedded quotes.
func QuoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// QuoteLiteral wraps value in single quotes, doubling embedded quotes.
func QuoteLiteral(value string) string {
	return "'" + strings.ReplaceAll(value, "'", "''") + "'"
}

// ValidateColumnType checks that typeName is a plain DuckDB type name.
func ValidateColumnType(typeName string) error {
	if typeName == "" {
		return fmt.Errorf("column type is required")
	}
	if len(typeName) > maxColumnTypeLen {
		return fmt.Errorf("column type must be at most %d characters", maxColumnTypeLen)
	}
	if strings.ContainsAny(typeName, ";-'\"\\") {
		return fmt.Errorf("column type contains invalid characters")
	}
	if !columnTypeRe.MatchString(typeName) {
		return fmt.Errorf("column type %q is not a recognized type pattern", typeName)
	}
	return nil
}
