package strategy

import (
	"github.com/pkg/errors"
	"github.com/samber/lo"

	"github.com/theplant/docwhere"
)

// Restriction forbids operators on a field type regardless of which
// strategy would accept them.
type Restriction struct {
	FieldType docwhere.FieldType
	Operators []string
	Reason    string
}

// DefaultRestrictions keep substring matching away from structured
// scalars, whose text form does not match the way users expect.
var DefaultRestrictions = []Restriction{
	{FieldType: docwhere.MACAddress, Operators: PatternOperators, Reason: "MAC addresses have several text forms, compare with eq or in"},
	{FieldType: docwhere.HierarchicalPath, Operators: PatternOperators, Reason: "use ancestor_of, descendant_of or matches_lquery"},
	{FieldType: docwhere.DateRange, Operators: PatternOperators, Reason: "use contains_date or the range operators"},
	{FieldType: docwhere.Point, Operators: PatternOperators, Reason: "use distance_within or within_box"},
	{FieldType: docwhere.Point, Operators: []string{OpIn, OpNotIn}, Reason: "points have no equality operator usable by IN"},
}

// Registry is an ordered, immutable list of strategies. The first
// strategy whose CanHandle accepts an operator wins.
type Registry struct {
	strategies   []Strategy
	restrictions []Restriction
}

// New validates the strategies and restrictions and returns a registry.
// Strategy names must be unique, and no strategy may advertise an
// operator that a restriction forbids.
func New(strategies []Strategy, restrictions ...Restriction) (*Registry, error) {
	names := map[string]bool{}
	for i, s := range strategies {
		if lo.IsNil(s) {
			return nil, errors.Errorf("strategy at position %d is nil", i)
		}
		if s.Name() == "" {
			return nil, errors.Errorf("strategy at position %d has no name", i)
		}
		if names[s.Name()] {
			return nil, errors.Errorf("duplicate strategy %q", s.Name())
		}
		names[s.Name()] = true
	}
	for _, r := range restrictions {
		if r.FieldType.IsZero() {
			return nil, errors.New("restriction without field type")
		}
		for _, s := range strategies {
			for _, op := range s.Operators(r.FieldType) {
				if lo.Contains(r.Operators, op.Name) {
					return nil, errors.Errorf("strategy %q advertises restricted operator %q for %s", s.Name(), op.Name, r.FieldType)
				}
			}
		}
	}
	return &Registry{
		strategies:   append([]Strategy(nil), strategies...),
		restrictions: append([]Restriction(nil), restrictions...),
	}, nil
}

// Builtins returns the built-in strategies in registration order.
func Builtins() []Strategy {
	return []Strategy{
		NewNetwork(),
		Cast("macaddr", docwhere.MACAddress, "macaddr"),
		NewLTree(),
		NewDateRange(),
		Point{},
		Generic{},
	}
}

// Default returns the built-in registry.
func Default() (*Registry, error) {
	return DefaultWith()
}

// DefaultWith returns the built-in registry with extra strategies placed
// before the generic fallback, e.g. Cast strategies for extension types.
func DefaultWith(extra ...Strategy) (*Registry, error) {
	r, err := New(Builtins(), DefaultRestrictions...)
	if err != nil {
		return nil, err
	}
	return r.With(extra...)
}

// MustDefault is Default for package initialization; it panics on error.
func MustDefault() *Registry {
	r, err := Default()
	if err != nil {
		panic(err)
	}
	return r
}

// With returns a new registry with the strategies inserted before the
// generic fallback, or appended when there is none.
func (r *Registry) With(extra ...Strategy) (*Registry, error) {
	if len(extra) == 0 {
		return r, nil
	}
	_, at, found := lo.FindIndexOf(r.strategies, func(s Strategy) bool { return s.Name() == Generic{}.Name() })
	if !found {
		at = len(r.strategies)
	}
	strategies := make([]Strategy, 0, len(r.strategies)+len(extra))
	strategies = append(strategies, r.strategies[:at]...)
	strategies = append(strategies, extra...)
	strategies = append(strategies, r.strategies[at:]...)
	return New(strategies, r.restrictions...)
}

// Strategies returns the strategies in resolution order.
func (r *Registry) Strategies() []Strategy {
	return append([]Strategy(nil), r.strategies...)
}

// Restriction returns the restriction forbidding op on ft, if any.
func (r *Registry) Restriction(op string, ft docwhere.FieldType) (Restriction, bool) {
	op = CanonicalOperator(op)
	return lo.Find(r.restrictions, func(res Restriction) bool {
		return res.FieldType == ft && lo.Contains(res.Operators, op)
	})
}

func (r *Registry) IsRestricted(op string, ft docwhere.FieldType) bool {
	_, ok := r.Restriction(op, ft)
	return ok
}

// Strategy returns the strategy that renders op on ft.
func (r *Registry) Strategy(op string, ft docwhere.FieldType) (Strategy, bool) {
	op = CanonicalOperator(op)
	if r.IsRestricted(op, ft) {
		return nil, false
	}
	return lo.Find(r.strategies, func(s Strategy) bool { return s.CanHandle(op, ft) })
}

// Operators lists what a field type accepts, in strategy order. When two
// strategies advertise the same operator the earlier one wins, matching
// Build.
func (r *Registry) Operators(ft docwhere.FieldType) []Operator {
	var ops []Operator
	seen := map[string]bool{}
	for _, s := range r.strategies {
		for _, op := range s.Operators(ft) {
			if seen[op.Name] || r.IsRestricted(op.Name, ft) || !s.CanHandle(op.Name, ft) {
				continue
			}
			seen[op.Name] = true
			ops = append(ops, op)
		}
	}
	return ops
}

// OperatorNames lists every operator name any strategy accepts for any
// built-in field type.
func (r *Registry) OperatorNames() []string {
	var names []string
	for _, ft := range docwhere.BuiltinFieldTypes() {
		for _, op := range r.Operators(ft) {
			names = append(names, op.Name)
		}
	}
	return lo.Uniq(names)
}

// ImpliedFieldType returns the only built-in field type accepting op,
// e.g. IpAddress for inSubnet. Operators accepted by several types imply
// nothing.
func (r *Registry) ImpliedFieldType(op string) (docwhere.FieldType, bool) {
	accepting := lo.Filter(docwhere.BuiltinFieldTypes(), func(ft docwhere.FieldType, _ int) bool {
		_, ok := r.Strategy(op, ft)
		return ok
	})
	if len(accepting) != 1 {
		return docwhere.FieldType{}, false
	}
	return accepting[0], true
}

// Build renders one leaf predicate. Restricted operators fail before any
// strategy is consulted.
func (r *Registry) Build(path Path, ft docwhere.FieldType, op string, value any) (string, []any, error) {
	op = CanonicalOperator(op)
	if res, ok := r.Restriction(op, ft); ok {
		return "", nil, &docwhere.RestrictedOperatorError{Operator: op, FieldType: ft, Reason: res.Reason}
	}
	s, ok := r.Strategy(op, ft)
	if !ok {
		return "", nil, &docwhere.UnknownOperatorError{Operator: op, FieldType: ft, Path: path.Segments}
	}
	return s.Build(path, op, value, ft)
}
