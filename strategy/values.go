package strategy

import (
	"encoding/json"
	"math"
	"reflect"
	"strings"

	"github.com/samber/lo"

	"github.com/theplant/docwhere"
)

func expectString(op string, value any) (string, error) {
	s, ok := value.(string)
	if !ok {
		return "", docwhere.NewInvalidValueShapeError(op, "string", value)
	}
	return s, nil
}

func expectBool(op string, value any) (bool, error) {
	b, ok := value.(bool)
	if !ok {
		return false, docwhere.NewInvalidValueShapeError(op, "boolean", value)
	}
	return b, nil
}

// expectScalar accepts strings, numbers and booleans and normalizes
// json.Number to int64 or float64.
func expectScalar(op string, value any) (any, error) {
	if !isScalar(value) {
		return nil, docwhere.NewInvalidValueShapeError(op, "scalar", value)
	}
	return normalizeNumber(value), nil
}

// expectList accepts any slice of scalars.
func expectList(op string, value any) ([]any, error) {
	if value == nil {
		return nil, docwhere.NewInvalidValueShapeError(op, "list", value)
	}
	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, docwhere.NewInvalidValueShapeError(op, "list", value)
	}
	items := make([]any, rv.Len())
	for i := range items {
		item := rv.Index(i).Interface()
		if !isScalar(item) {
			return nil, docwhere.NewInvalidValueShapeError(op, "list of scalars", value)
		}
		items[i] = normalizeNumber(item)
	}
	return items, nil
}

func expectObject(op string, value any) (map[string]any, error) {
	m, ok := value.(map[string]any)
	if !ok {
		return nil, docwhere.NewInvalidValueShapeError(op, "object", value)
	}
	return m, nil
}

func isScalar(v any) bool {
	switch v.(type) {
	case string, bool, json.Number,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return true
	}
	return false
}

func isNumber(v any) bool {
	switch v.(type) {
	case json.Number, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return true
	}
	return false
}

func normalizeNumber(v any) any {
	n, ok := v.(json.Number)
	if !ok {
		return v
	}
	if i, err := n.Int64(); err == nil {
		return i
	}
	if f, err := n.Float64(); err == nil {
		return f
	}
	return n.String()
}

// toInteger accepts integers and integral floats.
func toInteger(v any) (int64, bool) {
	if i, ok := normalizeNumber(v).(int64); ok {
		return i, true
	}
	f, ok := toFloat(v)
	if !ok || f != math.Trunc(f) || math.Abs(f) >= 1<<53 {
		return 0, false
	}
	return int64(f), true
}

func toFloat(v any) (float64, bool) {
	switch n := normalizeNumber(v).(type) {
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

// placeholders returns "?, ?, ?" with an optional cast on each marker.
func placeholders(n int, cast string) string {
	return strings.Join(lo.Times(n, func(_ int) string { return marker(cast) }), ", ")
}

func marker(cast string) string {
	if cast == "" {
		return "?"
	}
	return "?::" + cast
}

func operand(path Path, cast string) string {
	if cast == "" {
		return path.Operand()
	}
	return path.Operand() + "::" + cast
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// EscapeLike escapes LIKE wildcards so the value matches literally.
func EscapeLike(s string) string {
	return likeEscaper.Replace(s)
}
