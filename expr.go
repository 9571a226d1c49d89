package docwhere

import "strings"

// Expression is a node of a filter tree: a Leaf or one of the
// And, Or and Not combinators.
type Expression interface {
	isExpression()
}

// Leaf is a single predicate on the value found at Path.
type Leaf struct {
	Path     []string
	Operator string
	Value    any
}

// And matches when every child matches. An empty And matches everything.
type And struct {
	Children []Expression
}

// Or matches when any child matches. An empty Or matches nothing.
type Or struct {
	Children []Expression
}

// Not negates exactly one child.
type Not struct {
	Child Expression
}

func (Leaf) isExpression() {}
func (And) isExpression()  {}
func (Or) isExpression()   {}
func (Not) isExpression()  {}

// Field builds a leaf. Nested documents are addressed with dotted names,
// e.g. Field("device.network.ip", "inSubnet", "10.0.0.0/8").
func Field(path string, operator string, value any) Leaf {
	return Leaf{Path: strings.Split(path, "."), Operator: operator, Value: value}
}

func AllOf(children ...Expression) And { return And{Children: children} }

func AnyOf(children ...Expression) Or { return Or{Children: children} }

func Negate(child Expression) Not { return Not{Child: child} }

// PathString joins the leaf path with dots.
func (l Leaf) PathString() string {
	return strings.Join(l.Path, ".")
}

// Walk visits every node depth first, left to right. It stops descending
// into a node when fn returns false.
func Walk(expr Expression, fn func(expr Expression) bool) {
	if expr == nil || !fn(expr) {
		return
	}
	switch e := expr.(type) {
	case And:
		for _, c := range e.Children {
			Walk(c, fn)
		}
	case *And:
		for _, c := range e.Children {
			Walk(c, fn)
		}
	case Or:
		for _, c := range e.Children {
			Walk(c, fn)
		}
	case *Or:
		for _, c := range e.Children {
			Walk(c, fn)
		}
	case Not:
		Walk(e.Child, fn)
	case *Not:
		Walk(e.Child, fn)
	}
}
