package compiler

import (
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/pkg/errors"
	"github.com/samber/lo"

	"github.com/theplant/docwhere"
	"github.com/theplant/docwhere/classify"
	"github.com/theplant/docwhere/strategy"
)

var (
	rootPattern    = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)
	segmentPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_-]*$`)
)

const defaultCacheSize = 1024

// LeafInput is what leaf resolution starts from. Type is nil when the
// expression is compiled without a domain type.
type LeafInput struct {
	Type *docwhere.DomainType
	Root string
	Leaf docwhere.Leaf
}

// LeafOutput is a resolved leaf: where its value lives and how to compare
// it. Field is nil when compiled without a domain type.
type LeafOutput struct {
	Path      strategy.Path
	FieldType docwhere.FieldType
	Field     *docwhere.DomainField
}

type LeafFunc func(input *LeafInput) (*LeafOutput, error)

type cacheKey struct {
	typ  *docwhere.DomainType
	path string
}

// Compiler turns filter expressions into parameterized SQL over a JSONB
// column. It is safe for concurrent use.
type Compiler struct {
	registry    *strategy.Registry
	classifier  *classify.Classifier
	placeholder Placeholder
	leafHook    func(next LeafFunc) LeafFunc
	limits      *docwhere.ComplexityLimits
	logger      *slog.Logger
	sample      any
	cacheSize   int
	fields      *lru.Cache[cacheKey, *docwhere.DomainField]
}

func New(opts ...Option) *Compiler {
	c := &Compiler{
		classifier: classify.Default(),
		logger:     slog.Default(),
		cacheSize:  defaultCacheSize,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.registry == nil {
		c.registry = strategy.MustDefault()
	}
	c.fields = lo.Must(lru.New[cacheKey, *docwhere.DomainField](c.cacheSize))
	return c
}

// WithSampleDocument classifies schema-less leaves by the value found at
// the same path in sample, a Go struct or decoded JSON map.
func WithSampleDocument(sample any) Option {
	return func(c *Compiler) {
		c.sample = sample
	}
}

func (c *Compiler) Registry() *strategy.Registry { return c.registry }

// Compile compiles expr without a domain type: leaves are classified by
// name, then by their value.
func (c *Compiler) Compile(expr docwhere.Expression, rootAlias string) (string, []any, error) {
	return c.CompileFor(nil, expr, rootAlias)
}

// CompileFor compiles expr against dt. Every leaf path must resolve
// through dt's object fields to a scalar field, whose declared type wins
// over any heuristic. Undeclared fields get the type the shape generator
// gives them, from the name dictionary or Any; values are never sniffed.
func (c *Compiler) CompileFor(dt *docwhere.DomainType, expr docwhere.Expression, rootAlias string) (string, []any, error) {
	if !rootPattern.MatchString(rootAlias) {
		return "", nil, errors.Errorf("invalid root alias %q", rootAlias)
	}
	if err := docwhere.CheckComplexity(expr, c.limits); err != nil {
		return "", nil, err
	}

	resolve := c.resolveLeaf
	if c.leafHook != nil {
		resolve = c.leafHook(resolve)
	}
	b := &builder{compiler: c, typ: dt, root: rootAlias, resolve: resolve}
	sql, params, err := b.build(expr)
	if err != nil {
		c.logger.Debug("filter compile failed", "type", typeName(dt), "error", err)
		return "", nil, err
	}
	if c.placeholder == Dollar {
		sql = numberPlaceholders(sql)
	}
	c.logger.Debug("filter compiled", "type", typeName(dt), "sql", sql, "params", len(params))
	return sql, params, nil
}

type builder struct {
	compiler *Compiler
	typ      *docwhere.DomainType
	root     string
	resolve  LeafFunc
}

func (b *builder) build(expr docwhere.Expression) (string, []any, error) {
	switch e := expr.(type) {
	case docwhere.Leaf:
		return b.leaf(e)
	case *docwhere.Leaf:
		if e == nil {
			break
		}
		return b.leaf(*e)
	case docwhere.And:
		return b.join(e.Children, "AND", "TRUE")
	case *docwhere.And:
		if e == nil {
			break
		}
		return b.join(e.Children, "AND", "TRUE")
	case docwhere.Or:
		return b.join(e.Children, "OR", "FALSE")
	case *docwhere.Or:
		if e == nil {
			break
		}
		return b.join(e.Children, "OR", "FALSE")
	case docwhere.Not:
		return b.not(e.Child)
	case *docwhere.Not:
		if e == nil {
			break
		}
		return b.not(e.Child)
	case nil:
	default:
		return "", nil, &docwhere.InvalidExpressionError{Reason: fmt.Sprintf("unsupported node %T", expr)}
	}
	return "", nil, &docwhere.InvalidExpressionError{Reason: "nil node"}
}

// join parenthesizes every child. Without children it returns the
// identity of the keyword.
func (b *builder) join(children []docwhere.Expression, keyword string, identity string) (string, []any, error) {
	if len(children) == 0 {
		return identity, nil, nil
	}
	parts := make([]string, 0, len(children))
	var params []any
	for _, child := range children {
		sql, childParams, err := b.build(child)
		if err != nil {
			return "", nil, err
		}
		parts = append(parts, "("+sql+")")
		params = append(params, childParams...)
	}
	return strings.Join(parts, " "+keyword+" "), params, nil
}

func (b *builder) not(child docwhere.Expression) (string, []any, error) {
	if child == nil {
		return "", nil, &docwhere.InvalidExpressionError{Reason: "NOT needs exactly one child"}
	}
	sql, params, err := b.build(child)
	if err != nil {
		return "", nil, err
	}
	return "NOT (" + sql + ")", params, nil
}

func (b *builder) leaf(l docwhere.Leaf) (string, []any, error) {
	if l.Operator == "" {
		return "", nil, &docwhere.InvalidExpressionError{Reason: fmt.Sprintf("field %q has no operator", l.PathString())}
	}
	out, err := b.resolve(&LeafInput{Type: b.typ, Root: b.root, Leaf: l})
	if err != nil {
		return "", nil, err
	}
	return b.compiler.registry.Build(out.Path, out.FieldType, l.Operator, l.Value)
}

func (c *Compiler) resolveLeaf(input *LeafInput) (*LeafOutput, error) {
	segments := input.Leaf.Path
	if len(segments) == 0 {
		return nil, &docwhere.UnresolvableFieldPathError{Path: segments, Reason: "path is empty"}
	}
	for _, seg := range segments {
		if !segmentPattern.MatchString(seg) {
			return nil, &docwhere.UnresolvableFieldPathError{Path: segments, Reason: fmt.Sprintf("invalid segment %q", seg)}
		}
	}

	out := &LeafOutput{Path: JSONPath(input.Root, segments)}
	if input.Type == nil {
		out.FieldType = c.classifySchemaLess(input.Leaf)
		return out, nil
	}
	field, err := c.lookup(input.Type, segments)
	if err != nil {
		return nil, err
	}
	out.Field = field
	// the same resolution the shape generator uses for this field
	out.FieldType = c.classifier.Classify(field.Name, field.Type, nil)
	return out, nil
}

// classifySchemaLess follows the classifier: a name rule wins, then the
// sample document, then the leaf value. Only when that lands on a
// default type that cannot take the operator does an operator accepted
// by a single field type decide, e.g. inSubnet on a field named
// "gateway". Anything else is left to fail with UnknownOperatorError.
func (c *Compiler) classifySchemaLess(l docwhere.Leaf) docwhere.FieldType {
	name := l.Path[len(l.Path)-1]
	if ft, ok := c.classifier.ClassifyName(name); ok {
		return ft
	}
	ft := c.classifier.ClassifyValue(sampleOf(l))
	if c.sample != nil {
		if sampled, err := c.classifier.FromSample(c.sample, l.Path); err == nil {
			ft = sampled
		}
	}
	if !isValueDefault(ft) {
		return ft
	}
	if _, ok := c.registry.Strategy(l.Operator, ft); ok || c.registry.IsRestricted(l.Operator, ft) {
		return ft
	}
	if implied, ok := c.registry.ImpliedFieldType(l.Operator); ok {
		return implied
	}
	return ft
}

// isValueDefault reports whether ft is a fallback of the value
// heuristics rather than a positive match.
func isValueDefault(ft docwhere.FieldType) bool {
	switch ft {
	case docwhere.String, docwhere.Integer, docwhere.Any:
		return true
	}
	return false
}

// sampleOf returns the leaf value when it is a sample of the field's own
// values; substring patterns and flags say nothing about the field.
func sampleOf(l docwhere.Leaf) any {
	switch strategy.CanonicalOperator(l.Operator) {
	case strategy.OpEq, strategy.OpNeq, strategy.OpIn, strategy.OpNotIn:
		return l.Value
	}
	return nil
}

func (c *Compiler) lookup(dt *docwhere.DomainType, segments []string) (*docwhere.DomainField, error) {
	key := cacheKey{typ: dt, path: strings.Join(segments, ".")}
	if field, ok := c.fields.Get(key); ok {
		return field, nil
	}

	current := dt
	var field *docwhere.DomainField
	for i, seg := range segments {
		f, ok := current.Field(seg)
		if !ok {
			return nil, &docwhere.UnresolvableFieldPathError{Path: segments, Reason: fmt.Sprintf("type %s has no field %q", current.Name, seg)}
		}
		last := i == len(segments)-1
		if !last && f.Object == nil {
			return nil, &docwhere.UnresolvableFieldPathError{Path: segments, Reason: fmt.Sprintf("field %s.%s is not an object", current.Name, seg)}
		}
		if last && f.Object != nil {
			return nil, &docwhere.UnresolvableFieldPathError{Path: segments, Reason: fmt.Sprintf("field %s.%s is an object, filter on one of its fields", current.Name, seg)}
		}
		current, field = f.Object, f
	}
	c.fields.Add(key, field)
	return field, nil
}

// JSONPath builds the text extraction of segments inside root:
// root -> 'a' -> 'b' ->> 'leaf'. Segments must already be validated.
func JSONPath(root string, segments []string) strategy.Path {
	var sb strings.Builder
	sb.WriteString(root)
	for i, seg := range segments {
		if i == len(segments)-1 {
			sb.WriteString(" ->> '")
		} else {
			sb.WriteString(" -> '")
		}
		sb.WriteString(seg)
		sb.WriteString("'")
	}
	return strategy.Path{SQL: sb.String(), Segments: segments}
}

// numberPlaceholders rewrites ? markers to $1..$n from left to right,
// leaving quoted literals alone.
func numberPlaceholders(sql string) string {
	var sb strings.Builder
	n := 0
	quoted := false
	for _, r := range sql {
		switch {
		case r == '\'':
			quoted = !quoted
		case r == '?' && !quoted:
			n++
			fmt.Fprintf(&sb, "$%d", n)
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

func typeName(dt *docwhere.DomainType) string {
	if dt == nil {
		return ""
	}
	return dt.Name
}
