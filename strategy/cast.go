package strategy

import (
	"fmt"
	"regexp"

	"github.com/theplant/docwhere"
)

var sqlTypePattern = regexp.MustCompile(`^[a-z_][a-z0-9_]*( [a-z0-9_]+)*$`)

// CastStrategy compares a field through a native PostgreSQL type: the
// extracted text and every parameter are cast to SQLType. It accepts the
// base operators eq, neq, in, notin and isnull.
type CastStrategy struct {
	name      string
	fieldType docwhere.FieldType
	sqlType   string
}

// Cast returns a strategy for one field type compared as sqlType. It is
// the registration point for extension scalars, e.g.
// Cast("uuid", docwhere.Extension("uuid"), "uuid").
func Cast(name string, ft docwhere.FieldType, sqlType string) *CastStrategy {
	if !sqlTypePattern.MatchString(sqlType) {
		panic(fmt.Sprintf("invalid sql type %q for strategy %s", sqlType, name))
	}
	if ft.IsZero() {
		panic(fmt.Sprintf("strategy %s needs a field type", name))
	}
	return &CastStrategy{name: name, fieldType: ft, sqlType: sqlType}
}

func (s *CastStrategy) Name() string { return s.name }

func (s *CastStrategy) FieldType() docwhere.FieldType { return s.fieldType }

func (s *CastStrategy) SQLType() string { return s.sqlType }

func (s *CastStrategy) CanHandle(op string, ft docwhere.FieldType) bool {
	return ft == s.fieldType && hasOperator(baseOperators(ft), op)
}

func (s *CastStrategy) Operators(ft docwhere.FieldType) []Operator {
	if ft != s.fieldType {
		return nil
	}
	return baseOperators(ft)
}

func (s *CastStrategy) Build(path Path, op string, value any, ft docwhere.FieldType) (string, []any, error) {
	return buildBase(path, op, value, s.sqlType)
}

// buildBase renders eq, neq, in, notin and isnull with the given cast on
// both sides. An empty cast compares text.
func buildBase(path Path, op string, value any, cast string) (string, []any, error) {
	switch op {
	case OpEq, OpNeq:
		v, err := expectScalar(op, value)
		if err != nil {
			return "", nil, err
		}
		cmp := "="
		if op == OpNeq {
			cmp = "!="
		}
		return fmt.Sprintf("%s %s %s", operand(path, cast), cmp, marker(cast)), []any{v}, nil

	case OpIn, OpNotIn:
		items, err := expectList(op, value)
		if err != nil {
			return "", nil, err
		}
		return buildIn(path, op, items, cast), items, nil

	case OpIsNull:
		return buildIsNull(path, op, value)
	}
	return "", nil, &docwhere.UnknownOperatorError{Operator: op, Path: path.Segments}
}

// buildIn renders an empty in as FALSE and an empty notin as TRUE.
func buildIn(path Path, op string, items []any, cast string) string {
	if len(items) == 0 {
		if op == OpIn {
			return "FALSE"
		}
		return "TRUE"
	}
	keyword := "IN"
	if op == OpNotIn {
		keyword = "NOT IN"
	}
	return fmt.Sprintf("%s %s (%s)", operand(path, cast), keyword, placeholders(len(items), cast))
}

func buildIsNull(path Path, op string, value any) (string, []any, error) {
	isNull, err := expectBool(op, value)
	if err != nil {
		return "", nil, err
	}
	if isNull {
		return path.Operand() + " IS NULL", nil, nil
	}
	return path.Operand() + " IS NOT NULL", nil, nil
}
