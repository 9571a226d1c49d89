package input_test

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/theplant/docwhere"
	"github.com/theplant/docwhere/compiler"
	"github.com/theplant/docwhere/input"
	"github.com/theplant/docwhere/shape"
)

func leaf(path []string, op string, value any) docwhere.Leaf {
	return docwhere.Leaf{Path: path, Operator: op, Value: value}
}

func TestParseWithoutShape(t *testing.T) {
	testCases := []struct {
		name  string
		where map[string]any
		want  docwhere.Expression
	}{
		{
			name:  "empty",
			where: map[string]any{},
			want:  docwhere.And{},
		},
		{
			name:  "single leaf",
			where: map[string]any{"name": map[string]any{"eq": "a"}},
			want:  leaf([]string{"name"}, "eq", "a"),
		},
		{
			name: "fields and operators are joined in key order",
			where: map[string]any{
				"network": map[string]any{"ip": map[string]any{"inSubnet": "10.0.0.0/8"}},
				"name":    map[string]any{"eq": "a", "contains": "b", "neq": nil},
			},
			want: docwhere.And{Children: []docwhere.Expression{
				leaf([]string{"name"}, "contains", "b"),
				leaf([]string{"name"}, "eq", "a"),
				leaf([]string{"network", "ip"}, "inSubnet", "10.0.0.0/8"),
			}},
		},
		{
			name: "combinators are case insensitive",
			where: map[string]any{
				"or":  []any{map[string]any{"a": map[string]any{"eq": 1}}, map[string]any{"b": map[string]any{"eq": 2}}},
				"not": map[string]any{"c": map[string]any{"isnull": true}},
			},
			want: docwhere.And{Children: []docwhere.Expression{
				docwhere.Not{Child: leaf([]string{"c"}, "isnull", true)},
				docwhere.Or{Children: []docwhere.Expression{
					leaf([]string{"a"}, "eq", 1),
					leaf([]string{"b"}, "eq", 2),
				}},
			}},
		},
		{
			name: "combinators inside nested documents keep the prefix",
			where: map[string]any{
				"network": map[string]any{
					"OR": []any{
						map[string]any{"ip": map[string]any{"eq": "10.0.0.1"}},
						map[string]any{"gateway": map[string]any{"eq": "10.0.0.254"}},
					},
				},
			},
			want: docwhere.Or{Children: []docwhere.Expression{
				leaf([]string{"network", "ip"}, "eq", "10.0.0.1"),
				leaf([]string{"network", "gateway"}, "eq", "10.0.0.254"),
			}},
		},
		{
			name: "operator aliases and depth operators",
			where: map[string]any{
				"tags":     map[string]any{"nin": []any{"a"}},
				"sitePath": map[string]any{"depth_gt": 2, "matches_lquery": "eu.*"},
			},
			want: docwhere.And{Children: []docwhere.Expression{
				leaf([]string{"sitePath"}, "depth_gt", 2),
				leaf([]string{"sitePath"}, "matches_lquery", "eu.*"),
				leaf([]string{"tags"}, "nin", []any{"a"}),
			}},
		},
		{
			name: "empty AND list",
			where: map[string]any{
				"AND": []any{},
			},
			want: docwhere.And{Children: []docwhere.Expression{}},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := input.Parse(tc.where)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestParseInvalidValues(t *testing.T) {
	cases := []map[string]any{
		{"name": "a"},
		{"AND": map[string]any{}},
		{"OR": []any{"a"}},
		{"NOT": []any{}},
	}
	for _, where := range cases {
		_, err := input.Parse(where)
		var shapeErr *docwhere.InvalidValueShapeError
		require.True(t, errors.As(err, &shapeErr), "%v: got %v", where, err)
	}
}

func TestParseExtensionOperators(t *testing.T) {
	where := map[string]any{"owner": map[string]any{"uuid_eq": "0b6e..."}}

	// unknown keys descend into the document, where a string is no filter
	_, err := input.Parse(where)
	var shapeErr *docwhere.InvalidValueShapeError
	require.True(t, errors.As(err, &shapeErr), "got %v", err)
	assert.Equal(t, "uuid_eq", shapeErr.Operator)

	got, err := input.Parse(where, input.WithOperatorNames("uuid_eq"))
	require.NoError(t, err)
	assert.Equal(t, leaf([]string{"owner"}, "uuid_eq", "0b6e..."), got)
}

func deviceType() *docwhere.DomainType {
	return docwhere.NewDomainType("Device",
		docwhere.Scalar("id", docwhere.Integer),
		docwhere.Scalar("email", docwhere.String),
		docwhere.Scalar("ip", docwhere.IPAddress),
		docwhere.Object("network_info", docwhere.NewDomainType("NetworkInfo",
			docwhere.Scalar("default_gateway", docwhere.IPAddress),
		)),
	)
}

func TestParseWithShape(t *testing.T) {
	s := shape.NewGenerator(shape.WithFieldNamer(lo.CamelCase)).Generate(deviceType())

	got, err := input.Parse(map[string]any{
		"networkInfo": map[string]any{"defaultGateway": map[string]any{"inSubnet": "10.0.0.0/8"}},
		"not":         map[string]any{"id": map[string]any{"in": []any{1, 2}}},
	}, input.WithShape(s))
	require.NoError(t, err)
	assert.Equal(t, docwhere.And{Children: []docwhere.Expression{
		leaf([]string{"network_info", "default_gateway"}, "inSubnet", "10.0.0.0/8"),
		docwhere.Not{Child: leaf([]string{"id"}, "in", []any{1, 2})},
	}}, got)

	_, err = input.Parse(map[string]any{"network_info": map[string]any{}}, input.WithShape(s))
	var pathErr *docwhere.UnresolvableFieldPathError
	require.True(t, errors.As(err, &pathErr))

	_, err = input.Parse(map[string]any{"email": map[string]any{"inSubnet": "10.0.0.0/8"}}, input.WithShape(s))
	var opErr *docwhere.UnknownOperatorError
	require.True(t, errors.As(err, &opErr))
	assert.Equal(t, []string{"email"}, opErr.Path)
}

func TestParseComplexityLimits(t *testing.T) {
	where := map[string]any{"OR": []any{
		map[string]any{"a": map[string]any{"eq": 1}},
		map[string]any{"b": map[string]any{"eq": 2}},
		map[string]any{"c": map[string]any{"eq": 3}},
	}}
	_, err := input.Parse(where, input.WithComplexityLimits(docwhere.StrictLimits))
	var complexityErr *docwhere.ComplexityError
	require.True(t, errors.As(err, &complexityErr))
	assert.Equal(t, "Or branches", complexityErr.Metric)

	_, err = input.Parse(where, input.WithComplexityLimits(docwhere.DefaultLimits))
	require.NoError(t, err)
}

func TestParseJSON(t *testing.T) {
	got, err := input.ParseJSON([]byte(`{"id": {"in": [1, 2.5, 9007199254740993]}}`))
	require.NoError(t, err)
	assert.Equal(t, leaf([]string{"id"}, "in", []any{int64(1), 2.5, int64(9007199254740993)}), got)

	_, err = input.ParseJSON([]byte(`{"id": `))
	require.ErrorContains(t, err, "decode where json")
}

func TestParseStruct(t *testing.T) {
	s, err := structpb.NewStruct(map[string]any{
		"id":  map[string]any{"gt": 5},
		"box": map[string]any{"distance_within": map[string]any{"point": []any{1.5, 2}, "distance": 0.5}},
	})
	require.NoError(t, err)

	got, err := input.ParseStruct(s)
	require.NoError(t, err)
	assert.Equal(t, docwhere.And{Children: []docwhere.Expression{
		leaf([]string{"box"}, "distance_within", map[string]any{"point": []any{1.5, int64(2)}, "distance": 0.5}),
		leaf([]string{"id"}, "gt", int64(5)),
	}}, got)

	got, err = input.ParseStruct(nil)
	require.NoError(t, err)
	assert.Equal(t, docwhere.And{}, got)
}

type NetworkWhere struct {
	Gateway *input.IP `where:"gateway"`
}

type DeviceWhere struct {
	Name     *input.String  `where:"name"`
	IP       *input.IP      `where:"ip"`
	Position *input.Point   `where:"position"`
	Network  *NetworkWhere  `where:"network"`
	And      []*DeviceWhere `where:"AND"`
	Or       []*DeviceWhere `where:"OR"`
	Not      *DeviceWhere   `where:"NOT"`
}

func TestFromStruct(t *testing.T) {
	where := &DeviceWhere{
		Name: &input.String{Contains: lo.ToPtr("edge"), In: []string{}},
		IP: &input.IP{
			InRange:   &input.IPRange{From: "10.0.0.1", To: "10.0.0.9"},
			IsPrivate: lo.ToPtr(true),
		},
		Network: &NetworkWhere{Gateway: &input.IP{Eq: lo.ToPtr("10.0.0.1")}},
		Or: []*DeviceWhere{
			{Name: &input.String{Eq: lo.ToPtr("a")}},
			{Name: &input.String{Eq: lo.ToPtr("b")}},
		},
	}

	m, err := input.ToMap(where)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"name":    map[string]any{"contains": "edge"},
		"ip":      map[string]any{"inRange": map[string]any{"from": "10.0.0.1", "to": "10.0.0.9"}, "isPrivate": true},
		"network": map[string]any{"gateway": map[string]any{"eq": "10.0.0.1"}},
		"OR": []any{
			map[string]any{"name": map[string]any{"eq": "a"}},
			map[string]any{"name": map[string]any{"eq": "b"}},
		},
	}, m)

	got, err := input.FromStruct(where)
	require.NoError(t, err)
	assert.Equal(t, docwhere.And{Children: []docwhere.Expression{
		docwhere.Or{Children: []docwhere.Expression{
			leaf([]string{"name"}, "eq", "a"),
			leaf([]string{"name"}, "eq", "b"),
		}},
		leaf([]string{"ip"}, "inRange", map[string]any{"from": "10.0.0.1", "to": "10.0.0.9"}),
		leaf([]string{"ip"}, "isPrivate", true),
		leaf([]string{"name"}, "contains", "edge"),
		leaf([]string{"network", "gateway"}, "eq", "10.0.0.1"),
	}}, got)

	m, err = input.ToMap((*DeviceWhere)(nil))
	require.NoError(t, err)
	assert.Nil(t, m)
}

func TestFromStructPoint(t *testing.T) {
	where := &DeviceWhere{Position: &input.Point{
		WithinBox:      []orb.Point{{0, 0}, {2, 3.5}},
		DistanceWithin: &input.PointDistance{Point: orb.Point{1, 1}, Distance: 2.5},
	}}
	expr, err := input.FromStruct(where)
	require.NoError(t, err)

	c := compiler.New()
	sql, params, err := c.CompileFor(docwhere.NewDomainType("Device", docwhere.Scalar("position", docwhere.Point)), expr, "data")
	require.NoError(t, err)
	assert.Equal(t,
		"((data ->> 'position')::point <-> $1::point <= $2::float8) AND ((data ->> 'position')::point <@ $3::box)",
		sql)
	assert.Equal(t, []any{"(1,1)", 2.5, "((0,0),(2,3.5))"}, params)
}

func TestShapeInputCompilerRoundTrip(t *testing.T) {
	dt := deviceType()
	s := shape.NewGenerator(shape.WithFieldNamer(lo.CamelCase)).Generate(dt)

	expr, err := input.ParseJSON([]byte(`{
		"ip": {"inSubnet": "10.0.0.0/8"},
		"OR": [{"id": {"gt": 10}}, {"email": {"endswith": "@example.com"}}],
		"networkInfo": {"defaultGateway": {"isPrivate": false}}
	}`), input.WithShape(s))
	require.NoError(t, err)

	sql, params, err := compiler.New().CompileFor(dt, expr, "data")
	require.NoError(t, err)
	assert.Equal(t,
		`(((data ->> 'id')::numeric > $1::numeric) OR ((data ->> 'email') LIKE $2 ESCAPE '\')) AND `+
			`((data ->> 'ip')::inet <<= $3::inet) AND `+
			`(NOT ((data -> 'network_info' ->> 'default_gateway')::inet <<= '10.0.0.0/8'::inet OR `+
			`(data -> 'network_info' ->> 'default_gateway')::inet <<= '172.16.0.0/12'::inet OR `+
			`(data -> 'network_info' ->> 'default_gateway')::inet <<= '192.168.0.0/16'::inet OR `+
			`(data -> 'network_info' ->> 'default_gateway')::inet <<= 'fc00::/7'::inet))`,
		sql)
	assert.Equal(t, []any{int64(10), "%@example.com", "10.0.0.0/8"}, params)
}
