// Package schema loads domain types from YAML files and Go structs.
package schema

import (
	"bytes"
	"os"

	"github.com/pkg/errors"
	"github.com/samber/lo"
	"gopkg.in/yaml.v3"

	"github.com/theplant/docwhere"
)

// File is the YAML layout of a schema file:
//
//	types:
//	  - name: Device
//	    fields:
//	      - name: ip
//	        type: ip
//	      - name: network
//	        object: Network
//	  - name: Network
//	    fields:
//	      - name: gateway
//
// Fields without type are classified by name. Objects refer to types by
// name and may form cycles.
type File struct {
	Types []TypeDef `yaml:"types"`
}

type TypeDef struct {
	Name   string     `yaml:"name"`
	Fields []FieldDef `yaml:"fields"`
}

type FieldDef struct {
	Name        string             `yaml:"name"`
	Type        docwhere.FieldType `yaml:"type,omitempty"`
	Object      string             `yaml:"object,omitempty"`
	Description string             `yaml:"description,omitempty"`
}

// Schema is a set of domain types in file order.
type Schema struct {
	Types []*docwhere.DomainType
}

// Type returns the domain type with the given name.
func (s *Schema) Type(name string) (*docwhere.DomainType, bool) {
	return lo.Find(s.Types, func(t *docwhere.DomainType) bool { return t.Name == name })
}

// LoadYAML reads a schema file.
func LoadYAML(path string) (*Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read schema file")
	}
	s, err := ParseYAML(data)
	if err != nil {
		return nil, errors.Wrapf(err, "schema file %s", path)
	}
	return s, nil
}

// ParseYAML parses schema YAML. Unknown keys are rejected.
func ParseYAML(data []byte) (*Schema, error) {
	var file File
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&file); err != nil {
		return nil, errors.Wrap(err, "parse yaml")
	}
	return file.Build()
}

// Build resolves object references and validates the types.
func (f *File) Build() (*Schema, error) {
	byName := map[string]*docwhere.DomainType{}
	s := &Schema{}
	for _, def := range f.Types {
		if def.Name == "" {
			return nil, errors.New("type without name")
		}
		if _, ok := byName[def.Name]; ok {
			return nil, errors.Errorf("duplicate type %q", def.Name)
		}
		dt := docwhere.NewDomainType(def.Name)
		byName[def.Name] = dt
		s.Types = append(s.Types, dt)
	}

	for _, def := range f.Types {
		dt := byName[def.Name]
		for _, fd := range def.Fields {
			field := &docwhere.DomainField{Name: fd.Name, Type: fd.Type, Description: fd.Description}
			if fd.Object != "" {
				if !fd.Type.IsZero() {
					return nil, errors.Errorf("field %s.%s has both type and object", def.Name, fd.Name)
				}
				obj, ok := byName[fd.Object]
				if !ok {
					return nil, errors.Errorf("field %s.%s refers to unknown type %q", def.Name, fd.Name, fd.Object)
				}
				field.Object = obj
			}
			dt.AddField(field)
		}
	}

	for _, dt := range s.Types {
		if err := dt.Validate(); err != nil {
			return nil, err
		}
	}
	return s, nil
}
