package shape

import (
	"github.com/pkg/errors"
	"github.com/tidwall/sjson"
)

// JSON describes s and the shapes it references as a JSON document:
//
//	{"root": "DeviceWhereInput", "inputs": {"DeviceWhereInput": {"fields": [...]}}}
//
// Leaf fields list their operators with the expected value kind and type.
func JSON(s *Shape) ([]byte, error) {
	doc, err := sjson.SetBytes([]byte(`{}`), "root", s.Name)
	if err != nil {
		return nil, errors.Wrap(err, "set root")
	}
	var walkErr error
	s.Walk(func(cur *Shape) {
		if walkErr != nil {
			return
		}
		base := "inputs." + escapePath(cur.Name)
		if doc, walkErr = sjson.SetBytes(doc, base+".fields", []any{}); walkErr != nil {
			return
		}
		if cur.Type != nil {
			if doc, walkErr = sjson.SetBytes(doc, base+".type", cur.Type.Name); walkErr != nil {
				return
			}
		}
		for _, f := range cur.Fields {
			if doc, walkErr = sjson.SetBytes(doc, base+".fields.-1", fieldJSON(f)); walkErr != nil {
				return
			}
		}
	})
	if walkErr != nil {
		return nil, errors.Wrapf(walkErr, "render %s", s.Name)
	}
	return doc, nil
}

func fieldJSON(f *Field) map[string]any {
	m := map[string]any{"name": f.Name}
	if f.Key != "" && f.Key != f.Name {
		m["key"] = f.Key
	}
	switch f.Kind {
	case FieldLeaf:
		m["kind"] = "leaf"
		m["filter"] = f.Leaf.Name
		m["fieldType"] = f.Leaf.FieldType.String()
		ops := make([]map[string]any, 0, len(f.Leaf.Operators))
		for _, op := range f.Leaf.Operators {
			ops = append(ops, map[string]any{
				"name":        op.Name,
				"value":       op.Value.Kind.String(),
				"type":        ValueTypeRef(op.Value),
				"description": op.Description,
			})
		}
		m["operators"] = ops
	case FieldNested:
		m["kind"] = "nested"
		m["input"] = f.Nested.Name
	case FieldCombinator:
		m["kind"] = "combinator"
		m["input"] = f.Nested.Name
		m["list"] = f.List
	}
	return m
}

// escapePath escapes sjson path syntax in a key.
func escapePath(key string) string {
	var out []rune
	for _, r := range key {
		switch r {
		case '.', '*', '?', '|', '#', '@', '\\', ':':
			out = append(out, '\\')
		}
		out = append(out, r)
	}
	return string(out)
}
