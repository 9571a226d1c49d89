package strategy

import (
	"fmt"

	"github.com/theplant/docwhere"
)

// Generic is the fallback comparison strategy. It accepts the base
// operators for every field type, so it must come last in a registry:
// anything placed after it is shadowed for those operators. Points only
// compare geometrically and get nothing here.
type Generic struct{}

func (Generic) Name() string { return "generic" }

func (g Generic) CanHandle(op string, ft docwhere.FieldType) bool {
	return hasOperator(g.Operators(ft), op)
}

func (Generic) Operators(ft docwhere.FieldType) []Operator {
	if ft.Kind() == docwhere.KindPoint {
		return nil
	}
	ops := baseOperators(ft)
	switch ft.Kind() {
	case docwhere.KindString, docwhere.KindAny:
		ops = append(ops,
			Operator{Name: OpContains, Value: scalarOf("String"), Description: "Contains substring"},
			Operator{Name: OpStartsWith, Value: scalarOf("String"), Description: "Starts with"},
			Operator{Name: OpEndsWith, Value: scalarOf("String"), Description: "Ends with"},
			Operator{Name: OpIContains, Value: scalarOf("String"), Description: "Contains substring, case insensitive"},
			Operator{Name: OpIStartsWith, Value: scalarOf("String"), Description: "Starts with, case insensitive"},
			Operator{Name: OpIEndsWith, Value: scalarOf("String"), Description: "Ends with, case insensitive"},
			Operator{Name: OpMatches, Value: scalarOf("String"), Description: "Matches the POSIX regular expression"},
		)
	case docwhere.KindInteger:
		ops = append(ops,
			Operator{Name: OpGt, Value: scalarOf("Int"), Description: "Greater than"},
			Operator{Name: OpGte, Value: scalarOf("Int"), Description: "Greater than or equal to"},
			Operator{Name: OpLt, Value: scalarOf("Int"), Description: "Less than"},
			Operator{Name: OpLte, Value: scalarOf("Int"), Description: "Less than or equal to"},
		)
	}
	return ops
}

func (Generic) Build(path Path, op string, value any, ft docwhere.FieldType) (string, []any, error) {
	switch op {
	case OpContains, OpStartsWith, OpEndsWith, OpIContains, OpIStartsWith, OpIEndsWith:
		return buildLike(path, op, value)

	case OpMatches:
		v, err := expectString(op, value)
		if err != nil {
			return "", nil, err
		}
		return fmt.Sprintf("%s ~ ?", path.Operand()), []any{v}, nil

	case OpGt, OpGte, OpLt, OpLte:
		if !isNumber(value) {
			return "", nil, docwhere.NewInvalidValueShapeError(op, "number", value)
		}
		cmp := map[string]string{OpGt: ">", OpGte: ">=", OpLt: "<", OpLte: "<="}[op]
		return fmt.Sprintf("%s %s %s", operand(path, "numeric"), cmp, marker("numeric")), []any{normalizeNumber(value)}, nil

	case OpEq, OpNeq:
		if err := checkNativeValues(ft, op, value); err != nil {
			return "", nil, err
		}
		return buildBase(path, op, value, genericCast(ft, value))

	case OpIn, OpNotIn:
		items, err := expectList(op, value)
		if err != nil {
			return "", nil, err
		}
		if err := checkNativeValues(ft, op, items...); err != nil {
			return "", nil, err
		}
		return buildBase(path, op, items, genericCast(ft, items...))
	}
	return buildBase(path, op, value, "")
}

// genericCast picks the comparison type. Integer and Boolean fields use
// their native types; untyped fields follow the values, like JSON does.
func genericCast(ft docwhere.FieldType, values ...any) string {
	switch ft.Kind() {
	case docwhere.KindInteger:
		return "numeric"
	case docwhere.KindBoolean:
		return "boolean"
	case docwhere.KindAny:
		if len(values) == 0 {
			return ""
		}
		allNumbers, allBools := true, true
		for _, v := range values {
			allNumbers = allNumbers && isNumber(v)
			_, isBool := v.(bool)
			allBools = allBools && isBool
		}
		if allNumbers {
			return "numeric"
		}
		if allBools {
			return "boolean"
		}
	}
	return ""
}

// checkNativeValues rejects values that the native cast of Integer and
// Boolean fields cannot take.
func checkNativeValues(ft docwhere.FieldType, op string, values ...any) error {
	for _, v := range values {
		switch ft.Kind() {
		case docwhere.KindInteger:
			if v != nil && isScalar(v) && !isNumber(v) {
				return docwhere.NewInvalidValueShapeError(op, "number", v)
			}
		case docwhere.KindBoolean:
			if _, ok := v.(bool); v != nil && isScalar(v) && !ok {
				return docwhere.NewInvalidValueShapeError(op, "boolean", v)
			}
		}
	}
	return nil
}

func buildLike(path Path, op string, value any) (string, []any, error) {
	s, err := expectString(op, value)
	if err != nil {
		return "", nil, err
	}
	escaped := EscapeLike(s)
	var pattern string
	switch op {
	case OpContains, OpIContains:
		pattern = "%" + escaped + "%"
	case OpStartsWith, OpIStartsWith:
		pattern = escaped + "%"
	case OpEndsWith, OpIEndsWith:
		pattern = "%" + escaped
	}
	keyword := "LIKE"
	if op == OpIContains || op == OpIStartsWith || op == OpIEndsWith {
		keyword = "ILIKE"
	}
	return fmt.Sprintf(`%s %s ? ESCAPE '\'`, path.Operand(), keyword), []any{pattern}, nil
}
