package shape

import (
	"fmt"
	"strings"

	"github.com/samber/lo"

	"github.com/theplant/docwhere/strategy"
)

var builtinScalars = []string{"String", "Int", "Float", "Boolean", "ID"}

// SDL renders s and everything it references as GraphQL input types:
// custom scalars, where inputs, leaf filters, then operator inputs.
func SDL(s *Shape) string {
	var (
		wheres  []*Shape
		leaves  []*LeafShape
		objects []*strategy.ObjectType
		scalars []string
	)
	useScalar := func(name string) {
		if name != "" && !lo.Contains(builtinScalars, name) && !lo.Contains(scalars, name) {
			scalars = append(scalars, name)
		}
	}
	var useValue func(v strategy.ValueType)
	useValue = func(v strategy.ValueType) {
		if v.Kind == strategy.ValueObject && v.Object != nil {
			if !lo.Contains(objects, v.Object) {
				objects = append(objects, v.Object)
				for _, f := range v.Object.Fields {
					useValue(f.Type)
				}
			}
			return
		}
		useScalar(v.Scalar)
	}

	s.Walk(func(cur *Shape) {
		wheres = append(wheres, cur)
		for _, f := range cur.Fields {
			if f.Leaf == nil || lo.Contains(leaves, f.Leaf) {
				continue
			}
			leaves = append(leaves, f.Leaf)
			for _, op := range f.Leaf.Operators {
				useValue(op.Value)
			}
		}
	})

	var blocks []string
	for _, name := range scalars {
		blocks = append(blocks, "scalar "+name)
	}
	for _, w := range wheres {
		blocks = append(blocks, inputBlock(w.Name, lo.Map(w.Fields, func(f *Field, _ int) string {
			return f.Name + ": " + fieldTypeRef(f)
		})))
	}
	for _, l := range leaves {
		blocks = append(blocks, inputBlock(l.Name, lo.Map(l.Operators, func(op strategy.Operator, _ int) string {
			return op.Name + ": " + ValueTypeRef(op.Value)
		})))
	}
	for _, o := range objects {
		blocks = append(blocks, inputBlock(o.Name, lo.Map(o.Fields, func(f strategy.ObjectField, _ int) string {
			ref := ValueTypeRef(f.Type)
			if f.Required {
				ref += "!"
			}
			return f.Name + ": " + ref
		})))
	}
	return strings.Join(blocks, "\n\n") + "\n"
}

func inputBlock(name string, lines []string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "input %s {\n", name)
	for _, line := range lines {
		sb.WriteString("  " + line + "\n")
	}
	sb.WriteString("}")
	return sb.String()
}

func fieldTypeRef(f *Field) string {
	switch {
	case f.Leaf != nil:
		return f.Leaf.Name
	case f.List:
		return "[" + f.Nested.Name + "!]"
	default:
		return f.Nested.Name
	}
}

// ValueTypeRef is the GraphQL type reference of an operator value.
func ValueTypeRef(v strategy.ValueType) string {
	switch v.Kind {
	case strategy.ValueList:
		return "[" + v.Scalar + "!]"
	case strategy.ValueBoolean:
		return "Boolean"
	case strategy.ValueObject:
		return v.Object.Name
	}
	return v.Scalar
}
