package docwhere

import (
	"github.com/pkg/errors"
	"github.com/samber/lo"
)

// DomainType describes the document stored in a JSON column: an ordered
// list of fields, some of which embed other domain types.
type DomainType struct {
	Name   string
	Fields []*DomainField
}

// DomainField is one field of a domain type. Object is set for embedded
// objects and relationships; Type is the declared semantic type and may be
// left zero to let the classifier decide.
type DomainField struct {
	Name        string
	Type        FieldType
	Object      *DomainType
	Description string
}

func NewDomainType(name string, fields ...*DomainField) *DomainType {
	return &DomainType{Name: name, Fields: fields}
}

// Scalar declares a scalar field. A zero FieldType leaves the type undeclared.
func Scalar(name string, ft FieldType) *DomainField {
	return &DomainField{Name: name, Type: ft}
}

// Object declares a field holding another domain type.
func Object(name string, t *DomainType) *DomainField {
	return &DomainField{Name: name, Object: t}
}

// Field returns the field with the given document key.
func (t *DomainType) Field(name string) (*DomainField, bool) {
	if t == nil {
		return nil, false
	}
	return lo.Find(t.Fields, func(f *DomainField) bool {
		return f.Name == name
	})
}

// AddField appends a field. It is meant for building type graphs with
// cycles, before the type is handed to a generator or compiler.
func (t *DomainType) AddField(f *DomainField) *DomainType {
	t.Fields = append(t.Fields, f)
	return t
}

// Validate checks the type graph for empty and duplicate names.
func (t *DomainType) Validate() error {
	return t.validate(map[*DomainType]bool{})
}

func (t *DomainType) validate(seen map[*DomainType]bool) error {
	if t == nil {
		return errors.New("domain type is nil")
	}
	if seen[t] {
		return nil
	}
	seen[t] = true
	if t.Name == "" {
		return errors.New("domain type name must not be empty")
	}
	names := map[string]bool{}
	for _, f := range t.Fields {
		if f == nil {
			return errors.Errorf("type %s has a nil field", t.Name)
		}
		if f.Name == "" {
			return errors.Errorf("type %s has a field without name", t.Name)
		}
		if names[f.Name] {
			return errors.Errorf("type %s has duplicate field %q", t.Name, f.Name)
		}
		names[f.Name] = true
		if f.Object != nil {
			if !f.Type.IsZero() {
				return errors.Errorf("field %s.%s cannot be both an object and a %s", t.Name, f.Name, f.Type)
			}
			if err := f.Object.validate(seen); err != nil {
				return errors.Wrapf(err, "field %s.%s", t.Name, f.Name)
			}
		}
	}
	return nil
}
