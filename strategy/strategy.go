package strategy

import (
	"github.com/theplant/docwhere"
	"github.com/theplant/docwhere/internal/naming"
)

// Path is the SQL expression extracting a leaf value as text, e.g.
// data -> 'device' ->> 'ip'. Segments is the field path it was built from.
type Path struct {
	SQL      string
	Segments []string
}

// Operand wraps the path in parentheses so it can take a cast.
func (p Path) Operand() string {
	return "(" + p.SQL + ")"
}

// Strategy renders one family of operators for one or more field types.
// Implementations must be stateless. Rendered SQL uses ? as the bind
// marker, one per returned parameter, in order.
type Strategy interface {
	Name() string
	CanHandle(op string, ft docwhere.FieldType) bool
	Operators(ft docwhere.FieldType) []Operator
	Build(path Path, op string, value any, ft docwhere.FieldType) (string, []any, error)
}

// ValueKind is the expected shape of an operator value.
type ValueKind uint8

const (
	ValueScalar ValueKind = iota + 1
	ValueList
	ValueBoolean
	ValueObject
)

func (k ValueKind) String() string {
	switch k {
	case ValueScalar:
		return "scalar"
	case ValueList:
		return "list"
	case ValueBoolean:
		return "boolean"
	case ValueObject:
		return "object"
	}
	return "unknown"
}

// ValueType describes the value an operator expects. Scalar names the
// element type for scalars and lists; Object names the input object for
// structured values.
type ValueType struct {
	Kind   ValueKind
	Scalar string
	Object *ObjectType
}

// ObjectType is a small structured operator input such as an IP range.
type ObjectType struct {
	Name   string
	Fields []ObjectField
}

type ObjectField struct {
	Name     string
	Type     ValueType
	Required bool
}

// Operator is an operator name plus the value it expects.
type Operator struct {
	Name        string
	Value       ValueType
	Description string
}

func scalarOf(name string) ValueType { return ValueType{Kind: ValueScalar, Scalar: name} }

func listOf(name string) ValueType { return ValueType{Kind: ValueList, Scalar: name} }

func boolean() ValueType { return ValueType{Kind: ValueBoolean, Scalar: "Boolean"} }

func objectOf(t *ObjectType) ValueType { return ValueType{Kind: ValueObject, Object: t} }

// ScalarName is the schema scalar used for values of a field type.
func ScalarName(ft docwhere.FieldType) string {
	switch ft.Kind() {
	case docwhere.KindString:
		return "String"
	case docwhere.KindInteger:
		return "Int"
	case docwhere.KindBoolean:
		return "Boolean"
	case docwhere.KindIPAddress:
		return "IpAddress"
	case docwhere.KindMACAddress:
		return "MacAddress"
	case docwhere.KindHierarchicalPath:
		return "LTree"
	case docwhere.KindDateRange:
		return "DateRange"
	case docwhere.KindPoint:
		return "Point"
	case docwhere.KindExtension:
		return naming.SmartPascalCase(ft.Tag())
	case docwhere.KindAny, docwhere.KindUnknown:
		return "JSON"
	}
	return "JSON"
}

// baseOperators are accepted by every field type unless restricted.
func baseOperators(ft docwhere.FieldType) []Operator {
	scalar := ScalarName(ft)
	return []Operator{
		{Name: OpEq, Value: scalarOf(scalar), Description: "Equal to"},
		{Name: OpNeq, Value: scalarOf(scalar), Description: "Not equal to"},
		{Name: OpIn, Value: listOf(scalar), Description: "In list"},
		{Name: OpNotIn, Value: listOf(scalar), Description: "Not in list"},
		{Name: OpIsNull, Value: boolean(), Description: "Is null (true) or is not null (false)"},
	}
}

const (
	OpEq          = "eq"
	OpNeq         = "neq"
	OpIn          = "in"
	OpNotIn       = "notin"
	OpIsNull      = "isnull"
	OpGt          = "gt"
	OpGte         = "gte"
	OpLt          = "lt"
	OpLte         = "lte"
	OpContains    = "contains"
	OpStartsWith  = "startswith"
	OpEndsWith    = "endswith"
	OpIContains   = "icontains"
	OpIStartsWith = "istartswith"
	OpIEndsWith   = "iendswith"
	OpMatches     = "matches"
)

// OperatorAliases maps accepted spellings to their operator. Aliases
// are never advertised in operator lists.
var OperatorAliases = map[string]string{
	"nin": OpNotIn,
}

// CanonicalOperator resolves an alias to the operator it stands for.
func CanonicalOperator(op string) string {
	if canonical, ok := OperatorAliases[op]; ok {
		return canonical
	}
	return op
}

// PatternOperators are the substring matching operators.
var PatternOperators = []string{OpContains, OpStartsWith, OpEndsWith, OpIContains, OpIStartsWith, OpIEndsWith}

func hasOperator(ops []Operator, name string) bool {
	for _, op := range ops {
		if op.Name == name {
			return true
		}
	}
	return false
}
