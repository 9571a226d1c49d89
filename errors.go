package docwhere

import (
	"encoding/json"
	"fmt"
	"strings"
)

// UnknownOperatorError is returned when no registered strategy accepts
// the operator for the resolved field type.
type UnknownOperatorError struct {
	Operator  string
	FieldType FieldType
	Path      []string
}

func (e *UnknownOperatorError) Error() string {
	if len(e.Path) > 0 {
		return fmt.Sprintf("unknown operator %q for %s field %q", e.Operator, e.FieldType, strings.Join(e.Path, "."))
	}
	return fmt.Sprintf("unknown operator %q for %s field", e.Operator, e.FieldType)
}

// RestrictedOperatorError is returned for operators that exist but would
// silently produce wrong results on the field type.
type RestrictedOperatorError struct {
	Operator  string
	FieldType FieldType
	Reason    string
}

func (e *RestrictedOperatorError) Error() string {
	return fmt.Sprintf("operator %q is not allowed on %s fields: %s", e.Operator, e.FieldType, e.Reason)
}

// UnresolvableFieldPathError is returned for malformed field paths or
// paths that do not exist on the filtered domain type.
type UnresolvableFieldPathError struct {
	Path   []string
	Reason string
}

func (e *UnresolvableFieldPathError) Error() string {
	return fmt.Sprintf("cannot resolve field path %q: %s", strings.Join(e.Path, "."), e.Reason)
}

// InvalidValueShapeError is returned when an operator value has the wrong
// shape, e.g. a list where a scalar is expected.
type InvalidValueShapeError struct {
	Operator string
	Expected string
	Actual   string
}

func (e *InvalidValueShapeError) Error() string {
	return fmt.Sprintf("operator %q expects %s, got %s", e.Operator, e.Expected, e.Actual)
}

// NewInvalidValueShapeError describes the actual value by its shape.
func NewInvalidValueShapeError(operator string, expected string, actual any) *InvalidValueShapeError {
	return &InvalidValueShapeError{Operator: operator, Expected: expected, Actual: DescribeValue(actual)}
}

// InvalidExpressionError is returned for malformed expression trees.
type InvalidExpressionError struct {
	Reason string
}

func (e *InvalidExpressionError) Error() string {
	return "invalid filter expression: " + e.Reason
}

// ComplexityError is returned when an expression exceeds configured limits.
type ComplexityError struct {
	Metric string
	Value  int
	Limit  int
}

func (e *ComplexityError) Error() string {
	return fmt.Sprintf("filter %s %d exceeds limit %d", e.Metric, e.Value, e.Limit)
}

// DescribeValue names the shape of a filter value for error messages.
func DescribeValue(v any) string {
	switch v := v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "boolean"
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return "integer"
	case float32, float64, json.Number:
		return "number"
	case fmt.Stringer:
		return fmt.Sprintf("%T", v)
	case []any, []string, []int, []int64, []float64, []bool:
		return "list"
	case map[string]any:
		return "object"
	default:
		return fmt.Sprintf("%T", v)
	}
}
