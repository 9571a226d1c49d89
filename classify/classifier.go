package classify

import (
	"encoding/json"
	"math"
	"strings"

	"github.com/pkg/errors"
	"github.com/samber/lo"
	"github.com/sunfmin/reflectutils"

	"github.com/theplant/docwhere"
)

// NameRule maps a field name to a type when Match returns true.
// Match receives the snake case tokens of the field name.
type NameRule struct {
	Name  string
	Type  docwhere.FieldType
	Match func(tokens []string) bool
}

// Sniffer inspects a sample string value.
type Sniffer struct {
	Name  string
	Type  docwhere.FieldType
	Match func(s string) bool
}

// Classifier resolves the semantic type of a field. It is immutable and
// safe for concurrent use.
type Classifier struct {
	nameRules []NameRule
	sniffers  []Sniffer
}

type Option func(*Classifier)

// WithNameRule adds a name rule checked before the built-in dictionary.
func WithNameRule(rule NameRule) Option {
	return func(c *Classifier) {
		c.nameRules = append([]NameRule{rule}, c.nameRules...)
	}
}

// WithSniffer adds a value heuristic checked after the built-in ones.
func WithSniffer(s Sniffer) Option {
	return func(c *Classifier) {
		c.sniffers = append(c.sniffers, s)
	}
}

func New(opts ...Option) *Classifier {
	c := &Classifier{
		nameRules: DefaultNameRules(),
		sniffers:  DefaultSniffers(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var defaultClassifier = New()

// Default returns the classifier with the built-in dictionary and heuristics.
func Default() *Classifier { return defaultClassifier }

// Classify returns exactly one field type. An explicit hint always wins,
// then the name dictionary, then value heuristics on sample.
func (c *Classifier) Classify(name string, hint docwhere.FieldType, sample any) docwhere.FieldType {
	if !hint.IsZero() {
		return hint
	}
	if ft, ok := c.ClassifyName(name); ok {
		return ft
	}
	return c.ClassifyValue(sample)
}

// ClassifyName applies the name dictionary only.
func (c *Classifier) ClassifyName(name string) (docwhere.FieldType, bool) {
	tokens := Tokens(name)
	if len(tokens) == 0 {
		return docwhere.FieldType{}, false
	}
	for _, rule := range c.nameRules {
		if rule.Match(tokens) {
			return rule.Type, true
		}
	}
	return docwhere.FieldType{}, false
}

// ClassifyValue applies value heuristics in a fixed order; the first
// positive match wins. Values without a specific match fall back to
// String, Integer, Boolean or Any.
func (c *Classifier) ClassifyValue(v any) docwhere.FieldType {
	switch v := v.(type) {
	case string:
		for _, s := range c.sniffers {
			if s.Match(v) {
				return s.Type
			}
		}
		return docwhere.String
	case bool:
		return docwhere.Boolean
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return docwhere.Integer
	case float64:
		if v == math.Trunc(v) && !math.IsInf(v, 0) {
			return docwhere.Integer
		}
		return docwhere.Any
	case float32:
		return c.ClassifyValue(float64(v))
	case json.Number:
		if _, err := v.Int64(); err == nil {
			return docwhere.Integer
		}
		return docwhere.Any
	case []any:
		if len(v) > 0 {
			return c.ClassifyValue(v[0])
		}
	case []string:
		if len(v) > 0 {
			return c.ClassifyValue(v[0])
		}
	}
	return docwhere.Any
}

// FromSample classifies the value found at path inside a sample document,
// which may be a Go struct or a decoded JSON map.
func (c *Classifier) FromSample(sample any, path []string) (docwhere.FieldType, error) {
	if len(path) == 0 {
		return docwhere.FieldType{}, errors.New("path is empty")
	}
	name := path[len(path)-1]
	if ft, ok := c.ClassifyName(name); ok {
		return ft, nil
	}
	if lo.IsNil(sample) {
		return docwhere.Any, nil
	}
	v, err := reflectutils.Get(sample, strings.Join(path, "."))
	if err != nil {
		return docwhere.FieldType{}, errors.Wrapf(err, "get sample value at %s", strings.Join(path, "."))
	}
	return c.ClassifyValue(v), nil
}

// Tokens splits a field name into lowercase snake case words.
func Tokens(name string) []string {
	return lo.Filter(strings.Split(lo.SnakeCase(name), "_"), func(s string, _ int) bool {
		return s != ""
	})
}

var addressQualifiers = []string{"email", "mail", "street", "postal", "home", "billing", "shipping", "web", "url", "mac"}

// DefaultNameRules is the fixed name dictionary. MAC is checked before IP
// so that "mac_address" is not taken for an IP address.
func DefaultNameRules() []NameRule {
	return []NameRule{
		{
			Name: "mac",
			Type: docwhere.MACAddress,
			Match: func(tokens []string) bool {
				return lo.ContainsBy(tokens, func(t string) bool { return t == "mac" || t == "macaddr" })
			},
		},
		{
			Name: "ip",
			Type: docwhere.IPAddress,
			Match: func(tokens []string) bool {
				if lo.ContainsBy(tokens, func(t string) bool {
					return t == "ip" || t == "ipv" || t == "ipv4" || t == "ipv6" || t == "inet" || t == "ipaddr" || t == "ipaddress"
				}) {
					return true
				}
				hasAddress := lo.ContainsBy(tokens, func(t string) bool { return t == "address" || t == "addr" })
				return hasAddress && !lo.Some(tokens, addressQualifiers)
			},
		},
		{
			Name: "path",
			Type: docwhere.HierarchicalPath,
			Match: func(tokens []string) bool {
				return lo.ContainsBy(tokens, func(t string) bool { return t == "path" || t == "ltree" })
			},
		},
		{
			Name: "daterange",
			Type: docwhere.DateRange,
			Match: func(tokens []string) bool {
				return lo.Contains(tokens, "daterange") || (lo.Contains(tokens, "date") && lo.Contains(tokens, "range"))
			},
		},
		{
			Name: "point",
			Type: docwhere.Point,
			Match: func(tokens []string) bool {
				return lo.ContainsBy(tokens, func(t string) bool {
					return t == "point" || t == "coordinates" || t == "coords" || t == "geopoint" || t == "latlng"
				})
			},
		},
	}
}

// DefaultSniffers are the value heuristics in their fixed order:
// IP, MAC, hierarchical path, date range.
func DefaultSniffers() []Sniffer {
	return []Sniffer{
		{Name: "ip", Type: docwhere.IPAddress, Match: LooksLikeIPAddress},
		{Name: "mac", Type: docwhere.MACAddress, Match: LooksLikeMACAddress},
		{Name: "path", Type: docwhere.HierarchicalPath, Match: LooksLikeHierarchicalPath},
		{Name: "daterange", Type: docwhere.DateRange, Match: LooksLikeDateRange},
	}
}
