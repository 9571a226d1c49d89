package input

import (
	"github.com/paulmach/orb"
	"github.com/pkg/errors"
	"github.com/samber/lo"

	"github.com/theplant/docwhere"
)

// Typed filters for Go callers. Embed them in a where struct tagged with
// `where`, next to AND, OR and NOT fields of the struct itself:
//
//	type DeviceWhere struct {
//		Name *input.String  `where:"name"`
//		IP   *input.IP      `where:"ip"`
//		Or   []*DeviceWhere `where:"OR"`
//	}
//
// Unset operators are dropped, and so are empty lists.

type String struct {
	Eq          *string  `where:"eq"`
	Neq         *string  `where:"neq"`
	In          []string `where:"in"`
	NotIn       []string `where:"notin"`
	IsNull      *bool    `where:"isnull"`
	Contains    *string  `where:"contains"`
	StartsWith  *string  `where:"startswith"`
	EndsWith    *string  `where:"endswith"`
	IContains   *string  `where:"icontains"`
	IStartsWith *string  `where:"istartswith"`
	IEndsWith   *string  `where:"iendswith"`
	Matches     *string  `where:"matches"`
}

type Int struct {
	Eq     *int  `where:"eq"`
	Neq    *int  `where:"neq"`
	In     []int `where:"in"`
	NotIn  []int `where:"notin"`
	IsNull *bool `where:"isnull"`
	Gt     *int  `where:"gt"`
	Gte    *int  `where:"gte"`
	Lt     *int  `where:"lt"`
	Lte    *int  `where:"lte"`
}

type Boolean struct {
	Eq     *bool `where:"eq"`
	Neq    *bool `where:"neq"`
	IsNull *bool `where:"isnull"`
}

// IP filters IpAddress fields.
type IP struct {
	Eq              *string  `where:"eq"`
	Neq             *string  `where:"neq"`
	In              []string `where:"in"`
	NotIn           []string `where:"notin"`
	IsNull          *bool    `where:"isnull"`
	InSubnet        *string  `where:"inSubnet"`
	InRange         *IPRange `where:"inRange"`
	IsPrivate       *bool    `where:"isPrivate"`
	IsPublic        *bool    `where:"isPublic"`
	IsIPv4          *bool    `where:"isIPv4"`
	IsIPv6          *bool    `where:"isIPv6"`
	IsLoopback      *bool    `where:"isLoopback"`
	IsLinkLocal     *bool    `where:"isLinkLocal"`
	IsMulticast     *bool    `where:"isMulticast"`
	IsDocumentation *bool    `where:"isDocumentation"`
	IsCarrierGrade  *bool    `where:"isCarrierGrade"`
}

type IPRange struct {
	From string `where:"from"`
	To   string `where:"to"`
}

// MAC filters MacAddress fields, which only compare for equality.
type MAC struct {
	Eq     *string  `where:"eq"`
	Neq    *string  `where:"neq"`
	In     []string `where:"in"`
	NotIn  []string `where:"notin"`
	IsNull *bool    `where:"isnull"`
}

// LTree filters HierarchicalPath fields.
type LTree struct {
	Eq               *string  `where:"eq"`
	Neq              *string  `where:"neq"`
	In               []string `where:"in"`
	NotIn            []string `where:"notin"`
	IsNull           *bool    `where:"isnull"`
	AncestorOf       *string  `where:"ancestor_of"`
	DescendantOf     *string  `where:"descendant_of"`
	MatchesLQuery    *string  `where:"matches_lquery"`
	MatchesLTxtQuery *string  `where:"matches_ltxtquery"`
	DepthEq          *int     `where:"depth_eq"`
	DepthGt          *int     `where:"depth_gt"`
	DepthLt          *int     `where:"depth_lt"`
}

type DateRange struct {
	Eq            *string  `where:"eq"`
	Neq           *string  `where:"neq"`
	In            []string `where:"in"`
	NotIn         []string `where:"notin"`
	IsNull        *bool    `where:"isnull"`
	ContainsDate  *string  `where:"contains_date"`
	Overlaps      *string  `where:"overlaps"`
	Adjacent      *string  `where:"adjacent"`
	StrictlyLeft  *string  `where:"strictly_left"`
	StrictlyRight *string  `where:"strictly_right"`
	NotLeft       *string  `where:"not_left"`
	NotRight      *string  `where:"not_right"`
}

// Point filters Point fields. Points encode as [x, y].
type Point struct {
	Eq             *orb.Point     `where:"eq"`
	Neq            *orb.Point     `where:"neq"`
	IsNull         *bool          `where:"isnull"`
	DistanceWithin *PointDistance `where:"distance_within"`
	WithinBox      []orb.Point    `where:"within_box"`
}

type PointDistance struct {
	Point    orb.Point `where:"point"`
	Distance float64   `where:"distance"`
}

// ToMap converts a typed where struct to a where value.
func ToMap(v any) (map[string]any, error) {
	if lo.IsNil(v) {
		return nil, nil
	}
	data, err := jsoniterForWhere.Marshal(v)
	if err != nil {
		return nil, errors.Wrap(err, "marshal where")
	}
	var where map[string]any
	if err := jsoniterForWhere.Unmarshal(data, &where); err != nil {
		return nil, errors.Wrap(err, "unmarshal where to map")
	}
	PruneMap(where)
	return normalize(where).(map[string]any), nil
}

// PruneMap recursively removes nil values, empty slices, and empty nested
// maps, including those inside combinator lists.
func PruneMap(m map[string]any) {
	for k, v := range m {
		if v == nil {
			delete(m, k)
			continue
		}

		if nestedMap, ok := v.(map[string]any); ok {
			PruneMap(nestedMap)
			if len(nestedMap) == 0 {
				delete(m, k)
			}
			continue
		}

		if slice, ok := v.([]any); ok {
			if len(slice) == 0 {
				delete(m, k)
				continue
			}
			for _, item := range slice {
				if itemMap, ok := item.(map[string]any); ok {
					PruneMap(itemMap)
				}
			}
		}
	}
}

// FromStruct parses a typed where struct.
func FromStruct(v any, opts ...Option) (docwhere.Expression, error) {
	where, err := ToMap(v)
	if err != nil {
		return nil, err
	}
	return Parse(where, opts...)
}
