package shape

import (
	"log/slog"

	"github.com/theplant/docwhere"
	"github.com/theplant/docwhere/classify"
	"github.com/theplant/docwhere/strategy"
)

// Generator derives where-input shapes from domain types.
type Generator struct {
	registry   *strategy.Registry
	classifier *classify.Classifier
	fieldNamer func(string) string
	logger     *slog.Logger
}

type Option func(g *Generator)

func WithRegistry(r *strategy.Registry) Option {
	return func(g *Generator) {
		g.registry = r
	}
}

func WithClassifier(c *classify.Classifier) Option {
	return func(g *Generator) {
		g.classifier = c
	}
}

// WithFieldNamer exposes document keys under other names, e.g.
// lo.CamelCase. Shape.Field and the input parser map them back.
func WithFieldNamer(namer func(string) string) Option {
	return func(g *Generator) {
		g.fieldNamer = namer
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(g *Generator) {
		g.logger = logger
	}
}

func NewGenerator(opts ...Option) *Generator {
	g := &Generator{
		classifier: classify.Default(),
		fieldNamer: func(s string) string { return s },
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.registry == nil {
		g.registry = strategy.MustDefault()
	}
	return g
}

// Generate returns the shape of dt. Every type is generated once per call,
// so self and mutual references terminate.
func (g *Generator) Generate(dt *docwhere.DomainType) *Shape {
	roots, _ := g.generate(dt)
	return roots[0]
}

// generate runs one pass over types, so types they share get one shape.
// It returns the root shapes in order plus every shape generated.
func (g *Generator) generate(types ...*docwhere.DomainType) ([]*Shape, map[*docwhere.DomainType]*Shape) {
	p := &pass{generator: g, shapes: map[*docwhere.DomainType]*Shape{}, leaves: map[docwhere.FieldType]*LeafShape{}}
	roots := make([]*Shape, 0, len(types))
	for _, dt := range types {
		roots = append(roots, p.shape(dt))
	}
	g.logger.Debug("where inputs generated", "types", len(types), "shapes", len(p.shapes))
	return roots, p.shapes
}

type pass struct {
	generator *Generator
	shapes    map[*docwhere.DomainType]*Shape
	leaves    map[docwhere.FieldType]*LeafShape
}

func (p *pass) shape(dt *docwhere.DomainType) *Shape {
	if s, ok := p.shapes[dt]; ok {
		return s
	}
	s := &Shape{Name: dt.Name + "WhereInput", Type: dt}
	// registered before recursing so that cycles find it
	p.shapes[dt] = s

	g := p.generator
	for _, f := range dt.Fields {
		field := &Field{Name: g.fieldNamer(f.Name), Key: f.Name}
		if f.Object != nil {
			field.Kind = FieldNested
			field.Nested = p.shape(f.Object)
		} else {
			field.Kind = FieldLeaf
			field.Leaf = p.leaf(g.classifier.Classify(f.Name, f.Type, nil))
		}
		s.Fields = append(s.Fields, field)
	}
	s.Fields = append(s.Fields,
		&Field{Name: And, Kind: FieldCombinator, Nested: s, List: true},
		&Field{Name: Or, Kind: FieldCombinator, Nested: s, List: true},
		&Field{Name: Not, Kind: FieldCombinator, Nested: s},
	)
	return s
}

func (p *pass) leaf(ft docwhere.FieldType) *LeafShape {
	if l, ok := p.leaves[ft]; ok {
		return l
	}
	r := p.generator.registry
	l := &LeafShape{
		Name:       strategy.ScalarName(ft) + "Filter",
		FieldType:  ft,
		Operators:  r.Operators(ft),
		restricted: map[string]string{},
	}
	for _, op := range append(r.OperatorNames(), strategy.PatternOperators...) {
		if res, ok := r.Restriction(op, ft); ok {
			l.restricted[op] = res.Reason
		}
	}
	p.leaves[ft] = l
	return l
}
