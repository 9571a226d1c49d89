package shape

import (
	"sync"
	"sync/atomic"

	"github.com/samber/lo"

	"github.com/theplant/docwhere"
)

// Cache keeps one shape per type name. Readers never lock: they load an
// immutable map that writers replace as a whole.
type Cache struct {
	generator *Generator
	mu        sync.Mutex
	shapes    atomic.Pointer[map[string]*Shape]
}

func NewCache(g *Generator) *Cache {
	c := &Cache{generator: g}
	c.shapes.Store(&map[string]*Shape{})
	return c
}

// Get returns a published shape by its where-input name or type name.
func (c *Cache) Get(name string) (*Shape, bool) {
	shapes := *c.shapes.Load()
	if s, ok := shapes[name]; ok {
		return s, true
	}
	s, ok := shapes[name+"WhereInput"]
	return s, ok
}

// Names lists the published shape names.
func (c *Cache) Names() []string {
	return lo.Keys(*c.shapes.Load())
}

// Load returns the shape of dt, generating and publishing it together
// with every shape it references when missing.
func (c *Cache) Load(dt *docwhere.DomainType) *Shape {
	if s, ok := c.Get(dt.Name); ok && s.Type == dt {
		return s
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if s, ok := c.Get(dt.Name); ok && s.Type == dt {
		return s
	}
	roots, generated := c.generator.generate(dt)
	next := lo.Assign(*c.shapes.Load())
	for _, s := range generated {
		next[s.Name] = s
	}
	c.shapes.Store(&next)
	return roots[0]
}

// Rebuild regenerates shapes for types and replaces the whole cache, so
// readers see either the old set or the new one.
func (c *Cache) Rebuild(types ...*docwhere.DomainType) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, generated := c.generator.generate(types...)
	next := map[string]*Shape{}
	for _, s := range generated {
		next[s.Name] = s
	}
	c.shapes.Store(&next)
}
