package docwhere

import "fmt"

// Kind is the closed set of semantic field kinds.
type Kind uint8

const (
	KindUnknown Kind = iota
	KindAny
	KindString
	KindInteger
	KindBoolean
	KindIPAddress
	KindMACAddress
	KindHierarchicalPath
	KindDateRange
	KindPoint
	KindExtension
)

var kindNames = map[Kind]string{
	KindUnknown:          "Unknown",
	KindAny:              "Any",
	KindString:           "String",
	KindInteger:          "Integer",
	KindBoolean:          "Boolean",
	KindIPAddress:        "IpAddress",
	KindMACAddress:       "MacAddress",
	KindHierarchicalPath: "HierarchicalPath",
	KindDateRange:        "DateRange",
	KindPoint:            "Point",
	KindExtension:        "Extension",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// FieldType is the semantic classification of a filtered field.
// It is comparable and can be used as a map key.
// The zero value means "not declared".
type FieldType struct {
	kind Kind
	tag  string
}

var (
	Any              = FieldType{kind: KindAny}
	String           = FieldType{kind: KindString}
	Integer          = FieldType{kind: KindInteger}
	Boolean          = FieldType{kind: KindBoolean}
	IPAddress        = FieldType{kind: KindIPAddress}
	MACAddress       = FieldType{kind: KindMACAddress}
	HierarchicalPath = FieldType{kind: KindHierarchicalPath}
	DateRange        = FieldType{kind: KindDateRange}
	Point            = FieldType{kind: KindPoint}
)

// BuiltinFieldTypes lists the non-extension field types.
func BuiltinFieldTypes() []FieldType {
	return []FieldType{Any, String, Integer, Boolean, IPAddress, MACAddress, HierarchicalPath, DateRange, Point}
}

// Extension returns the field type for a user registered scalar.
// Two extensions are the same type when their tags are equal.
func Extension(tag string) FieldType {
	if tag == "" {
		panic("extension tag must not be empty")
	}
	return FieldType{kind: KindExtension, tag: tag}
}

func (t FieldType) Kind() Kind { return t.kind }

// Tag is the discriminator of an extension type, empty for built-in types.
func (t FieldType) Tag() string { return t.tag }

func (t FieldType) IsZero() bool { return t.kind == KindUnknown }

func (t FieldType) IsExtension() bool { return t.kind == KindExtension }

func (t FieldType) String() string {
	if t.kind == KindExtension {
		return "Extension(" + t.tag + ")"
	}
	return t.kind.String()
}

// ParseFieldType parses the names produced by FieldType.String, plus
// a few lowercase aliases used in schema files.
// Unknown names become extension types.
func ParseFieldType(s string) (FieldType, error) {
	switch s {
	case "":
		return FieldType{}, nil
	case "Any", "any", "json":
		return Any, nil
	case "String", "string", "text":
		return String, nil
	case "Integer", "integer", "int":
		return Integer, nil
	case "Boolean", "boolean", "bool":
		return Boolean, nil
	case "IpAddress", "ip", "inet", "ip_address":
		return IPAddress, nil
	case "MacAddress", "mac", "macaddr", "mac_address":
		return MACAddress, nil
	case "HierarchicalPath", "ltree", "path":
		return HierarchicalPath, nil
	case "DateRange", "daterange", "date_range":
		return DateRange, nil
	case "Point", "point":
		return Point, nil
	}
	if len(s) > len("Extension()") && s[:len("Extension(")] == "Extension(" && s[len(s)-1] == ')' {
		return Extension(s[len("Extension(") : len(s)-1]), nil
	}
	return Extension(s), nil
}

func (t FieldType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *FieldType) UnmarshalText(b []byte) error {
	ft, err := ParseFieldType(string(b))
	if err != nil {
		return err
	}
	*t = ft
	return nil
}
