package strategy

import (
	"fmt"

	"github.com/theplant/docwhere"
)

const (
	OpAncestorOf       = "ancestor_of"
	OpDescendantOf     = "descendant_of"
	OpMatchesLQuery    = "matches_lquery"
	OpMatchesLTxtQuery = "matches_ltxtquery"
	OpDepthEq          = "depth_eq"
	OpDepthGt          = "depth_gt"
	OpDepthLt          = "depth_lt"
)

// LTree handles HierarchicalPath fields with the ltree extension.
type LTree struct {
	cast *CastStrategy
}

func NewLTree() *LTree {
	return &LTree{cast: Cast("ltree", docwhere.HierarchicalPath, "ltree")}
}

func (s *LTree) Name() string { return "ltree" }

func (s *LTree) CanHandle(op string, ft docwhere.FieldType) bool {
	return ft.Kind() == docwhere.KindHierarchicalPath && hasOperator(s.Operators(ft), op)
}

func (s *LTree) Operators(ft docwhere.FieldType) []Operator {
	if ft.Kind() != docwhere.KindHierarchicalPath {
		return nil
	}
	return append(s.cast.Operators(ft),
		Operator{Name: OpAncestorOf, Value: scalarOf("LTree"), Description: "Path is an ancestor of (or equal to) the value"},
		Operator{Name: OpDescendantOf, Value: scalarOf("LTree"), Description: "Path is a descendant of (or equal to) the value"},
		Operator{Name: OpMatchesLQuery, Value: scalarOf("String"), Description: "Path matches the lquery pattern"},
		Operator{Name: OpMatchesLTxtQuery, Value: scalarOf("String"), Description: "Path matches the ltxtquery full text query"},
		Operator{Name: OpDepthEq, Value: scalarOf("Int"), Description: "Number of labels equal to"},
		Operator{Name: OpDepthGt, Value: scalarOf("Int"), Description: "More labels than"},
		Operator{Name: OpDepthLt, Value: scalarOf("Int"), Description: "Fewer labels than"},
	)
}

func (s *LTree) Build(path Path, op string, value any, ft docwhere.FieldType) (string, []any, error) {
	var sqlOp, cast string
	switch op {
	case OpAncestorOf:
		sqlOp, cast = "@>", "ltree"
	case OpDescendantOf:
		sqlOp, cast = "<@", "ltree"
	case OpMatchesLQuery:
		sqlOp, cast = "~", "lquery"
	case OpMatchesLTxtQuery:
		sqlOp, cast = "@", "ltxtquery"
	case OpDepthEq, OpDepthGt, OpDepthLt:
		return buildDepth(path, op, value)
	default:
		return s.cast.Build(path, op, value, ft)
	}
	v, err := expectString(op, value)
	if err != nil {
		return "", nil, err
	}
	return fmt.Sprintf("%s %s %s", operand(path, "ltree"), sqlOp, marker(cast)), []any{v}, nil
}

// buildDepth compares the number of labels, nlevel(path), to an integer.
func buildDepth(path Path, op string, value any) (string, []any, error) {
	depth, ok := toInteger(value)
	if !ok || depth < 0 {
		return "", nil, docwhere.NewInvalidValueShapeError(op, "non-negative integer", value)
	}
	cmp := map[string]string{OpDepthEq: "=", OpDepthGt: ">", OpDepthLt: "<"}[op]
	return fmt.Sprintf("nlevel(%s) %s %s", operand(path, "ltree"), cmp, marker("integer")), []any{depth}, nil
}
