package shape

import (
	"strings"

	"github.com/samber/lo"

	"github.com/theplant/docwhere"
	"github.com/theplant/docwhere/strategy"
)

// Combinator field names, always the last three fields of a shape.
const (
	And = "AND"
	Or  = "OR"
	Not = "NOT"
)

type FieldKind int

const (
	FieldLeaf FieldKind = iota + 1
	FieldNested
	FieldCombinator
)

// Shape is the where-input of one domain type. Shapes are immutable once
// generated and may reference themselves through nested or combinator
// fields.
type Shape struct {
	Name   string
	Type   *docwhere.DomainType
	Fields []*Field
}

// Field is one input field. Leaf fields carry a filter, nested fields and
// combinators point to another shape (or the same one). AND and OR take a
// list of Nested, NOT a single one.
type Field struct {
	Name   string
	Key    string
	Kind   FieldKind
	Leaf   *LeafShape
	Nested *Shape
	List   bool
}

// LeafShape is the operator set of a field type.
type LeafShape struct {
	Name       string
	FieldType  docwhere.FieldType
	Operators  []strategy.Operator
	restricted map[string]string
}

// Field returns the input field with the exposed name. Combinator names
// match case-insensitively.
func (s *Shape) Field(name string) (*Field, bool) {
	if f, ok := lo.Find(s.Fields, func(f *Field) bool { return f.Name == name }); ok {
		return f, true
	}
	return lo.Find(s.Fields, func(f *Field) bool {
		return f.Kind == FieldCombinator && strings.EqualFold(f.Name, name)
	})
}

// Operator returns the operator spec by name.
func (l *LeafShape) Operator(name string) (strategy.Operator, bool) {
	name = strategy.CanonicalOperator(name)
	return lo.Find(l.Operators, func(op strategy.Operator) bool { return op.Name == name })
}

// Restriction reports why an operator is refused for this field type.
func (l *LeafShape) Restriction(name string) (string, bool) {
	reason, ok := l.restricted[strategy.CanonicalOperator(name)]
	return reason, ok
}

// OperatorNames lists the accepted operators in order.
func (l *LeafShape) OperatorNames() []string {
	return lo.Map(l.Operators, func(op strategy.Operator, _ int) string { return op.Name })
}

// Walk visits every shape reachable from s once, s first, in field order.
func (s *Shape) Walk(fn func(*Shape)) {
	seen := map[*Shape]bool{}
	queue := []*Shape{s}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if seen[cur] {
			continue
		}
		seen[cur] = true
		fn(cur)
		for _, f := range cur.Fields {
			if f.Nested != nil && !seen[f.Nested] {
				queue = append(queue, f.Nested)
			}
		}
	}
}
