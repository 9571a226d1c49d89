package schema

import (
	"net"
	"net/netip"
	"reflect"
	"strings"

	"github.com/paulmach/orb"
	"github.com/pkg/errors"

	"github.com/theplant/docwhere"
	"github.com/theplant/docwhere/classify"
)

// TypeTag declares the field type of a struct field, e.g. `where:"type=ltree"`.
const TypeTag = "where"

var (
	ipType     = reflect.TypeOf(netip.Addr{})
	netIPType  = reflect.TypeOf(net.IP{})
	macType    = reflect.TypeOf(net.HardwareAddr{})
	pointType  = reflect.TypeOf(orb.Point{})
	prefixType = reflect.TypeOf(netip.Prefix{})
)

// FromStruct derives a domain type from the Go type of a document. Keys
// come from json tags. Struct fields, pointers to structs included,
// become objects; self references become cycles. Strings are classified
// by name and fall back to String.
func FromStruct(v any) (*docwhere.DomainType, error) {
	t := reflect.TypeOf(v)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		return nil, errors.Errorf("expected a struct, got %T", v)
	}
	r := &reflector{types: map[reflect.Type]*docwhere.DomainType{}, classifier: classify.Default()}
	dt, err := r.domainType(t)
	if err != nil {
		return nil, err
	}
	if err := dt.Validate(); err != nil {
		return nil, err
	}
	return dt, nil
}

type reflector struct {
	types      map[reflect.Type]*docwhere.DomainType
	classifier *classify.Classifier
}

func (r *reflector) domainType(t reflect.Type) (*docwhere.DomainType, error) {
	if dt, ok := r.types[t]; ok {
		return dt, nil
	}
	dt := docwhere.NewDomainType(t.Name())
	r.types[t] = dt
	if err := r.addFields(dt, t); err != nil {
		return nil, err
	}
	return dt, nil
}

func (r *reflector) addFields(dt *docwhere.DomainType, t reflect.Type) error {
	for i := range t.NumField() {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}
		name, skip := jsonName(sf)
		if skip {
			continue
		}

		ft := indirect(sf.Type)
		if sf.Anonymous && ft.Kind() == reflect.Struct && name == "" {
			if err := r.addFields(dt, ft); err != nil {
				return err
			}
			continue
		}
		if name == "" {
			name = sf.Name
		}

		declared, err := declaredType(sf)
		if err != nil {
			return errors.Wrapf(err, "field %s.%s", t.Name(), sf.Name)
		}
		if !declared.IsZero() {
			dt.AddField(docwhere.Scalar(name, declared))
			continue
		}
		if ft.Kind() == reflect.Struct && !isScalarStruct(ft) {
			obj, err := r.domainType(ft)
			if err != nil {
				return err
			}
			dt.AddField(docwhere.Object(name, obj))
			continue
		}
		dt.AddField(docwhere.Scalar(name, r.scalarType(name, ft)))
	}
	return nil
}

func (r *reflector) scalarType(name string, t reflect.Type) docwhere.FieldType {
	switch t {
	case ipType, netIPType:
		return docwhere.IPAddress
	case macType:
		return docwhere.MACAddress
	case pointType:
		return docwhere.Point
	case prefixType:
		return docwhere.String
	}
	switch t.Kind() {
	case reflect.String:
		if ft, ok := r.classifier.ClassifyName(name); ok {
			return ft
		}
		return docwhere.String
	case reflect.Bool:
		return docwhere.Boolean
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return docwhere.Integer
	}
	return docwhere.Any
}

// isScalarStruct reports struct types stored as a single JSON value.
func isScalarStruct(t reflect.Type) bool {
	switch t {
	case ipType, prefixType:
		return true
	}
	return t.PkgPath() == "time" && t.Name() == "Time"
}

func declaredType(sf reflect.StructField) (docwhere.FieldType, error) {
	tag, ok := sf.Tag.Lookup(TypeTag)
	if !ok {
		return docwhere.FieldType{}, nil
	}
	for _, part := range strings.Split(tag, ",") {
		if value, found := strings.CutPrefix(strings.TrimSpace(part), "type="); found {
			return docwhere.ParseFieldType(value)
		}
	}
	return docwhere.FieldType{}, errors.Errorf("tag %q has no type", tag)
}

func jsonName(sf reflect.StructField) (name string, skip bool) {
	tag := sf.Tag.Get("json")
	if tag == "-" {
		return "", true
	}
	name, _, _ = strings.Cut(tag, ",")
	return name, false
}

func indirect(t reflect.Type) reflect.Type {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t
}
