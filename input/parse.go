// Package input decodes client-supplied where values into filter
// expressions.
//
// A where value is an object whose keys are fields, operators or the
// AND, OR and NOT combinators:
//
//	{"network": {"ip": {"inSubnet": "10.0.0.0/8"}}, "OR": [{"name": {"eq": "a"}}, {"name": {"eq": "b"}}]}
//
// Nested objects descend into the document, so the leaf above has the
// path network.ip. Several fields or operators in one object are joined
// with And.
package input

import (
	"sort"
	"strings"

	"github.com/samber/lo"

	"github.com/theplant/docwhere"
	"github.com/theplant/docwhere/shape"
	"github.com/theplant/docwhere/strategy"
)

type Options struct {
	shape     *shape.Shape
	registry  *strategy.Registry
	operators []string
	limits    *docwhere.ComplexityLimits
}

type Option func(o *Options)

// WithShape validates the value against s before parsing and maps exposed
// field names back to document keys.
func WithShape(s *shape.Shape) Option {
	return func(o *Options) {
		o.shape = s
	}
}

// WithRegistry sets the registry whose operator names tell operator
// objects from nested documents when no shape is given.
func WithRegistry(r *strategy.Registry) Option {
	return func(o *Options) {
		o.registry = r
	}
}

// WithOperatorNames adds operator names, typically those of extension
// strategies, to the ones known from the registry.
func WithOperatorNames(names ...string) Option {
	return func(o *Options) {
		o.operators = append(o.operators, names...)
	}
}

func WithComplexityLimits(limits *docwhere.ComplexityLimits) Option {
	return func(o *Options) {
		o.limits = limits
	}
}

func newOptions(opts []Option) *Options {
	o := &Options{}
	for _, opt := range opts {
		opt(o)
	}
	if o.registry == nil {
		o.registry = strategy.MustDefault()
	}
	return o
}

// Parse converts a decoded where value into an expression. Keys are
// visited in sorted order and null values are skipped, so equal values
// always give equal expressions.
func Parse(where map[string]any, opts ...Option) (docwhere.Expression, error) {
	o := newOptions(opts)
	if o.shape != nil {
		if err := o.shape.Validate(where); err != nil {
			return nil, err
		}
	}
	p := &parser{
		operators: lo.SliceToMap(lo.Flatten([][]string{o.registry.OperatorNames(), lo.Keys(strategy.OperatorAliases), o.operators}), func(name string) (string, bool) {
			return name, true
		}),
	}
	children, err := p.collect(where, nil, o.shape)
	if err != nil {
		return nil, err
	}
	expr := join(children)
	if err := docwhere.CheckComplexity(expr, o.limits); err != nil {
		return nil, err
	}
	return expr, nil
}

type parser struct {
	operators map[string]bool
}

// collect returns the expressions of one where object. s is nil when
// parsing without a shape.
func (p *parser) collect(m map[string]any, prefix []string, s *shape.Shape) ([]docwhere.Expression, error) {
	var out []docwhere.Expression
	for _, key := range sortedKeys(m) {
		v := m[key]
		if v == nil {
			continue
		}

		var field *shape.Field
		if s != nil {
			field, _ = s.Field(key)
		}
		if (field != nil && field.Kind == shape.FieldCombinator) || (field == nil && isCombinator(key)) {
			var nested *shape.Shape
			if field != nil {
				nested = field.Nested
			}
			expr, err := p.combinator(strings.ToUpper(key), v, prefix, nested)
			if err != nil {
				return nil, err
			}
			out = append(out, expr)
			continue
		}

		fm, ok := v.(map[string]any)
		if !ok {
			return nil, docwhere.NewInvalidValueShapeError(key, "object", v)
		}
		switch {
		case field != nil && field.Kind == shape.FieldNested:
			children, err := p.collect(fm, appendPath(prefix, field.Key), field.Nested)
			if err != nil {
				return nil, err
			}
			out = append(out, children...)
		case field != nil:
			out = append(out, leaves(fm, appendPath(prefix, field.Key))...)
		case p.isOperatorMap(fm):
			out = append(out, leaves(fm, appendPath(prefix, key))...)
		default:
			children, err := p.collect(fm, appendPath(prefix, key), nil)
			if err != nil {
				return nil, err
			}
			out = append(out, children...)
		}
	}
	return out, nil
}

func (p *parser) combinator(name string, v any, prefix []string, s *shape.Shape) (docwhere.Expression, error) {
	if name == shape.Not {
		m, ok := v.(map[string]any)
		if !ok {
			return nil, docwhere.NewInvalidValueShapeError(name, "object", v)
		}
		children, err := p.collect(m, prefix, s)
		if err != nil {
			return nil, err
		}
		return docwhere.Not{Child: join(children)}, nil
	}

	items, ok := v.([]any)
	if !ok {
		return nil, docwhere.NewInvalidValueShapeError(name, "list of objects", v)
	}
	branches := make([]docwhere.Expression, 0, len(items))
	for _, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			return nil, docwhere.NewInvalidValueShapeError(name, "list of objects", v)
		}
		children, err := p.collect(m, prefix, s)
		if err != nil {
			return nil, err
		}
		branches = append(branches, join(children))
	}
	if name == shape.Or {
		return docwhere.Or{Children: branches}, nil
	}
	return docwhere.And{Children: branches}, nil
}

// isOperatorMap reports whether every key of m is an operator name.
func (p *parser) isOperatorMap(m map[string]any) bool {
	if len(m) == 0 {
		return false
	}
	for key := range m {
		if !p.operators[key] {
			return false
		}
	}
	return true
}

func leaves(ops map[string]any, path []string) []docwhere.Expression {
	var out []docwhere.Expression
	for _, op := range sortedKeys(ops) {
		if ops[op] == nil {
			continue
		}
		out = append(out, docwhere.Leaf{Path: path, Operator: op, Value: ops[op]})
	}
	return out
}

func join(children []docwhere.Expression) docwhere.Expression {
	if len(children) == 1 {
		return children[0]
	}
	return docwhere.And{Children: children}
}

func isCombinator(key string) bool {
	return lo.Contains([]string{shape.And, shape.Or, shape.Not}, strings.ToUpper(key))
}

func sortedKeys(m map[string]any) []string {
	keys := lo.Keys(m)
	sort.Strings(keys)
	return keys
}

func appendPath(prefix []string, key string) []string {
	out := make([]string, len(prefix), len(prefix)+1)
	copy(out, prefix)
	return append(out, key)
}
