package compiler

import (
	"log/slog"

	"github.com/theplant/docwhere"
	"github.com/theplant/docwhere/classify"
	"github.com/theplant/docwhere/internal/hook"
	"github.com/theplant/docwhere/strategy"
)

// Placeholder selects the bind marker style of compiled SQL.
type Placeholder int

const (
	// Dollar numbers markers $1..$n, as PostgreSQL drivers expect.
	Dollar Placeholder = iota
	// Question keeps ? markers, as gorm expects.
	Question
)

type Option func(c *Compiler)

func WithRegistry(r *strategy.Registry) Option {
	return func(c *Compiler) {
		c.registry = r
	}
}

func WithClassifier(cl *classify.Classifier) Option {
	return func(c *Compiler) {
		c.classifier = cl
	}
}

func WithPlaceholder(p Placeholder) Option {
	return func(c *Compiler) {
		c.placeholder = p
	}
}

// WithLeafHook wraps leaf resolution, e.g. to remap a path to another
// column or override its field type. The first hook is the outermost;
// hooks from a later WithLeafHook wrap the earlier ones.
func WithLeafHook(hooks ...func(next LeafFunc) LeafFunc) Option {
	return func(c *Compiler) {
		c.leafHook = hook.Prepend(c.leafHook, hooks...)
	}
}

// WithComplexityLimits rejects expressions exceeding limits before any SQL
// is built. Nil disables the check.
func WithComplexityLimits(limits *docwhere.ComplexityLimits) Option {
	return func(c *Compiler) {
		c.limits = limits
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Compiler) {
		c.logger = logger
	}
}

// WithCacheSize sets how many resolved (type, path) lookups are kept.
func WithCacheSize(size int) Option {
	return func(c *Compiler) {
		c.cacheSize = size
	}
}
