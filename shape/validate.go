package shape

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"sort"

	"github.com/samber/lo"

	"github.com/theplant/docwhere"
	"github.com/theplant/docwhere/strategy"
)

// Validate checks a client-supplied where value against the shape before
// it reaches the compiler. Null values are ignored, as the compiler would.
func (s *Shape) Validate(value map[string]any) error {
	return s.validate(value, nil)
}

func (s *Shape) validate(value map[string]any, path []string) error {
	keys := lo.Keys(value)
	sort.Strings(keys)
	for _, key := range keys {
		v := value[key]
		if v == nil {
			continue
		}
		f, ok := s.Field(key)
		if !ok {
			return &docwhere.UnresolvableFieldPathError{
				Path:   appendPath(path, key),
				Reason: fmt.Sprintf("%s has no field %q", s.Name, key),
			}
		}
		switch f.Kind {
		case FieldCombinator:
			if err := s.validateCombinator(f, v, path); err != nil {
				return err
			}
		case FieldNested:
			m, ok := v.(map[string]any)
			if !ok {
				return docwhere.NewInvalidValueShapeError(f.Name, f.Nested.Name, v)
			}
			if err := f.Nested.validate(m, appendPath(path, f.Key)); err != nil {
				return err
			}
		case FieldLeaf:
			m, ok := v.(map[string]any)
			if !ok {
				return docwhere.NewInvalidValueShapeError(f.Name, f.Leaf.Name, v)
			}
			if err := f.Leaf.validate(m, appendPath(path, f.Key)); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *Shape) validateCombinator(f *Field, v any, path []string) error {
	if !f.List {
		m, ok := v.(map[string]any)
		if !ok {
			return docwhere.NewInvalidValueShapeError(f.Name, f.Nested.Name, v)
		}
		return f.Nested.validate(m, path)
	}
	items, ok := v.([]any)
	if !ok {
		return docwhere.NewInvalidValueShapeError(f.Name, "list of "+f.Nested.Name, v)
	}
	for _, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			return docwhere.NewInvalidValueShapeError(f.Name, "list of "+f.Nested.Name, v)
		}
		if err := f.Nested.validate(m, path); err != nil {
			return err
		}
	}
	return nil
}

func (l *LeafShape) validate(ops map[string]any, path []string) error {
	names := lo.Keys(ops)
	sort.Strings(names)
	for _, name := range names {
		v := ops[name]
		if v == nil {
			continue
		}
		if reason, ok := l.Restriction(name); ok {
			return &docwhere.RestrictedOperatorError{Operator: name, FieldType: l.FieldType, Reason: reason}
		}
		op, ok := l.Operator(name)
		if !ok {
			return &docwhere.UnknownOperatorError{Operator: name, FieldType: l.FieldType, Path: path}
		}
		if err := checkValue(name, op.Value, v); err != nil {
			return err
		}
	}
	return nil
}

func checkValue(op string, t strategy.ValueType, v any) error {
	switch t.Kind {
	case strategy.ValueBoolean:
		if _, ok := v.(bool); !ok {
			return docwhere.NewInvalidValueShapeError(op, "boolean", v)
		}
	case strategy.ValueScalar:
		if !acceptsScalar(t.Scalar, v) {
			return docwhere.NewInvalidValueShapeError(op, t.Scalar, v)
		}
	case strategy.ValueList:
		rv := reflect.ValueOf(v)
		if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
			return docwhere.NewInvalidValueShapeError(op, "list of "+t.Scalar, v)
		}
		for i := range rv.Len() {
			if !acceptsScalar(t.Scalar, rv.Index(i).Interface()) {
				return docwhere.NewInvalidValueShapeError(op, "list of "+t.Scalar, v)
			}
		}
	case strategy.ValueObject:
		m, ok := v.(map[string]any)
		if !ok {
			return docwhere.NewInvalidValueShapeError(op, t.Object.Name, v)
		}
		for _, f := range t.Object.Fields {
			fv, present := m[f.Name]
			if !present || fv == nil {
				if f.Required {
					return docwhere.NewInvalidValueShapeError(op, fmt.Sprintf("%s with %s", t.Object.Name, f.Name), v)
				}
				continue
			}
			if err := checkValue(op, f.Type, fv); err != nil {
				return err
			}
		}
	}
	return nil
}

// acceptsScalar checks the JSON kind of a value against a scalar name.
// Formats are left to the strategies; points may be lists or objects.
func acceptsScalar(scalar string, v any) bool {
	kind := docwhere.DescribeValue(v)
	switch scalar {
	case "Int":
		return isInteger(v)
	case "Float":
		return kind == "integer" || kind == "number"
	case "Boolean":
		return kind == "boolean"
	case "Point":
		return kind == "list" || kind == "object" || kind == "string"
	case "JSON":
		return kind == "string" || kind == "integer" || kind == "number" || kind == "boolean"
	}
	return kind == "string"
}

func isInteger(v any) bool {
	switch n := v.(type) {
	case json.Number:
		_, err := n.Int64()
		return err == nil
	case float64:
		return n == math.Trunc(n) && !math.IsInf(n, 0)
	case float32:
		return isInteger(float64(n))
	}
	return docwhere.DescribeValue(v) == "integer"
}

func appendPath(path []string, key string) []string {
	out := make([]string, 0, len(path)+1)
	return append(append(out, path...), key)
}
