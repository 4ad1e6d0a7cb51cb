package table

import (
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// Runtime type names reported for cell values.
const (
	TypeInt      = "int"
	TypeFloat    = "float"
	TypeString   = "string"
	TypeBool     = "bool"
	TypeDatetime = "datetime"
	TypeList     = "list"
	TypeObject   = "object"
)

// IsNull reports whether v is a missing value: nil or a floating-point NaN.
func IsNull(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case float64:
		return math.IsNaN(x)
	case float32:
		return math.IsNaN(float64(x))
	}
	return false
}

// TypeName returns the runtime type name of a non-null cell value.
func TypeName(v any) string {
	switch v.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return TypeInt
	case float32, float64:
		return TypeFloat
	case string:
		return TypeString
	case bool:
		return TypeBool
	case time.Time:
		return TypeDatetime
	}
	switch reflect.ValueOf(v).Kind() {
	case reflect.Slice, reflect.Array:
		return TypeList
	}
	return TypeObject
}

// InferKind picks the narrowest storage kind that holds every non-null value.
// Integers mixed with floats widen to KindFloat; any other mixture, or a
// column with no non-null values, is KindObject.
func InferKind(values []any) Kind {
	kind, seen := KindObject, false
	for _, v := range values {
		if IsNull(v) {
			continue
		}
		var k Kind
		switch TypeName(v) {
		case TypeInt:
			k = KindInt
		case TypeFloat:
			k = KindFloat
		case TypeBool:
			k = KindBool
		case TypeString:
			k = KindString
		case TypeDatetime:
			k = KindTime
		default:
			return KindObject
		}
		switch {
		case !seen:
			kind, seen = k, true
		case kind == k:
		case kind.IsNumeric() && k.IsNumeric():
			kind = KindFloat
		default:
			return KindObject
		}
	}
	return kind
}

// InferColumn builds a column whose kind is inferred from values. Integer
// cells of a float column are converted to float64.
func InferColumn(name string, values []any) *Column {
	kind := InferKind(values)
	if kind == KindFloat {
		for i, v := range values {
			if f, ok := toFloat(v); ok {
				values[i] = f
			}
		}
	}
	return NewColumn(name, kind, values...)
}

// ParseCell converts spreadsheet text to the most specific value it spells:
// empty text is null, then int64, float64, bool, and finally the string itself.
func ParseCell(s string) any {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return nil
	}
	if i, err := strconv.ParseInt(trimmed, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(trimmed, 64); err == nil && !math.IsInf(f, 0) {
		return f
	}
	switch strings.ToLower(trimmed) {
	case "true":
		return true
	case "false":
		return false
	}
	return s
}

func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case int:
		return float64(x), true
	case int8:
		return float64(x), true
	case int16:
		return float64(x), true
	case int32:
		return float64(x), true
	case int64:
		return float64(x), true
	case uint:
		return float64(x), true
	case uint8:
		return float64(x), true
	case uint16:
		return float64(x), true
	case uint32:
		return float64(x), true
	case uint64:
		return float64(x), true
	case float32:
		return float64(x), true
	}
	return 0, false
}
