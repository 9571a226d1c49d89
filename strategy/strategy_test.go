package strategy_test

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/paulmach/orb"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theplant/docwhere"
	"github.com/theplant/docwhere/strategy"
)

type buildCase struct {
	name   string
	ft     docwhere.FieldType
	op     string
	value  any
	sql    string
	params []any
}

func runBuildCases(t *testing.T, cases []buildCase) {
	t.Helper()
	r := strategy.MustDefault()
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			sql, params, err := r.Build(leafPath("f"), c.ft, c.op, c.value)
			require.NoError(t, err)
			assert.Equal(t, c.sql, sql)
			assert.Equal(t, c.params, params)
		})
	}
}

func requireValueShapeError(t *testing.T, err error) *docwhere.InvalidValueShapeError {
	t.Helper()
	var shapeErr *docwhere.InvalidValueShapeError
	require.True(t, errors.As(err, &shapeErr), "got %v", err)
	return shapeErr
}

func TestGeneric(t *testing.T) {
	runBuildCases(t, []buildCase{
		{name: "string eq", ft: docwhere.String, op: "eq", value: "x", sql: "(data ->> 'f') = ?", params: []any{"x"}},
		{name: "string neq", ft: docwhere.String, op: "neq", value: "x", sql: "(data ->> 'f') != ?", params: []any{"x"}},
		{name: "string in", ft: docwhere.String, op: "in", value: []string{"a", "b"}, sql: "(data ->> 'f') IN (?, ?)", params: []any{"a", "b"}},
		{name: "empty in", ft: docwhere.String, op: "in", value: []any{}, sql: "FALSE", params: []any{}},
		{name: "empty notin", ft: docwhere.String, op: "notin", value: []any{}, sql: "TRUE", params: []any{}},
		{name: "isnull", ft: docwhere.String, op: "isnull", value: true, sql: "(data ->> 'f') IS NULL"},
		{name: "is not null", ft: docwhere.Integer, op: "isnull", value: false, sql: "(data ->> 'f') IS NOT NULL"},
		{name: "contains", ft: docwhere.String, op: "contains", value: "50%_off", sql: `(data ->> 'f') LIKE ? ESCAPE '\'`, params: []any{`%50\%\_off%`}},
		{name: "startswith", ft: docwhere.String, op: "startswith", value: `a\b`, sql: `(data ->> 'f') LIKE ? ESCAPE '\'`, params: []any{`a\\b%`}},
		{name: "iendswith", ft: docwhere.Any, op: "iendswith", value: "Z", sql: `(data ->> 'f') ILIKE ? ESCAPE '\'`, params: []any{"%Z"}},
		{name: "integer eq", ft: docwhere.Integer, op: "eq", value: 3, sql: "(data ->> 'f')::numeric = ?::numeric", params: []any{3}},
		{name: "integer gt", ft: docwhere.Integer, op: "gt", value: 3, sql: "(data ->> 'f')::numeric > ?::numeric", params: []any{3}},
		{name: "integer lte", ft: docwhere.Integer, op: "lte", value: 3.5, sql: "(data ->> 'f')::numeric <= ?::numeric", params: []any{3.5}},
		{name: "boolean eq", ft: docwhere.Boolean, op: "eq", value: true, sql: "(data ->> 'f')::boolean = ?::boolean", params: []any{true}},
		{name: "any number", ft: docwhere.Any, op: "eq", value: 7, sql: "(data ->> 'f')::numeric = ?::numeric", params: []any{7}},
		{name: "any bool list", ft: docwhere.Any, op: "in", value: []any{true, false}, sql: "(data ->> 'f')::boolean IN (?::boolean, ?::boolean)", params: []any{true, false}},
		{name: "any mixed list", ft: docwhere.Any, op: "in", value: []any{"a", 1}, sql: "(data ->> 'f') IN (?, ?)", params: []any{"a", 1}},
		{name: "matches", ft: docwhere.String, op: "matches", value: `^a[0-9]+%$`, sql: "(data ->> 'f') ~ ?", params: []any{`^a[0-9]+%$`}},
		{name: "any matches", ft: docwhere.Any, op: "matches", value: "x", sql: "(data ->> 'f') ~ ?", params: []any{"x"}},
		{name: "nin alias", ft: docwhere.String, op: "nin", value: []any{"a"}, sql: "(data ->> 'f') NOT IN (?)", params: []any{"a"}},
		{name: "integer nin alias", ft: docwhere.Integer, op: "nin", value: []any{1, 2}, sql: "(data ->> 'f')::numeric NOT IN (?::numeric, ?::numeric)", params: []any{1, 2}},
	})
}

func TestGenericInvalidValues(t *testing.T) {
	r := strategy.MustDefault()

	_, _, err := r.Build(leafPath("f"), docwhere.String, "isnull", "yes")
	shapeErr := requireValueShapeError(t, err)
	assert.Equal(t, "boolean", shapeErr.Expected)
	assert.Equal(t, "string", shapeErr.Actual)

	_, _, err = r.Build(leafPath("f"), docwhere.String, "eq", []any{"a"})
	assert.Equal(t, "list", requireValueShapeError(t, err).Actual)

	_, _, err = r.Build(leafPath("f"), docwhere.String, "in", "a")
	assert.Equal(t, "list", requireValueShapeError(t, err).Expected)

	_, _, err = r.Build(leafPath("f"), docwhere.Integer, "eq", "three")
	assert.Equal(t, "number", requireValueShapeError(t, err).Expected)

	_, _, err = r.Build(leafPath("f"), docwhere.Boolean, "in", []any{true, "no"})
	assert.Equal(t, "boolean", requireValueShapeError(t, err).Expected)

	_, _, err = r.Build(leafPath("f"), docwhere.String, "contains", 1)
	assert.Equal(t, "integer", requireValueShapeError(t, err).Actual)

	_, _, err = r.Build(leafPath("f"), docwhere.String, "matches", []any{"a"})
	assert.Equal(t, "string", requireValueShapeError(t, err).Expected)

	_, _, err = r.Build(leafPath("f"), docwhere.Integer, "matches", "1+")
	var unknown *docwhere.UnknownOperatorError
	require.True(t, errors.As(err, &unknown), "got %v", err)
}

func TestNetwork(t *testing.T) {
	runBuildCases(t, []buildCase{
		{name: "eq", ft: docwhere.IPAddress, op: "eq", value: "10.0.0.1", sql: "(data ->> 'f')::inet = ?::inet", params: []any{"10.0.0.1"}},
		{name: "notin", ft: docwhere.IPAddress, op: "notin", value: []any{"::1"}, sql: "(data ->> 'f')::inet NOT IN (?::inet)", params: []any{"::1"}},
		{name: "inSubnet", ft: docwhere.IPAddress, op: "inSubnet", value: "10.0.0.0/8", sql: "(data ->> 'f')::inet <<= ?::inet", params: []any{"10.0.0.0/8"}},
		{
			name: "inRange", ft: docwhere.IPAddress, op: "inRange",
			value:  map[string]any{"from": "10.0.0.1", "to": "10.0.0.9"},
			sql:    "((data ->> 'f')::inet >= ?::inet AND (data ->> 'f')::inet <= ?::inet)",
			params: []any{"10.0.0.1", "10.0.0.9"},
		},
		{name: "isIPv4", ft: docwhere.IPAddress, op: "isIPv4", value: true, sql: "family((data ->> 'f')::inet) = 4"},
		{name: "not isIPv6", ft: docwhere.IPAddress, op: "isIPv6", value: false, sql: "family((data ->> 'f')::inet) != 6"},
		{name: "isCarrierGrade", ft: docwhere.IPAddress, op: "isCarrierGrade", value: true, sql: "((data ->> 'f')::inet <<= '100.64.0.0/10'::inet)"},
		{name: "not isLoopback", ft: docwhere.IPAddress, op: "isLoopback", value: false, sql: "NOT ((data ->> 'f')::inet <<= '127.0.0.0/8'::inet OR (data ->> 'f')::inet <<= '::1/128'::inet)"},
		{name: "mac eq", ft: docwhere.MACAddress, op: "eq", value: "08:00:2b:01:02:03", sql: "(data ->> 'f')::macaddr = ?::macaddr", params: []any{"08:00:2b:01:02:03"}},
	})
}

func TestNetworkClassificationFlags(t *testing.T) {
	r := strategy.MustDefault()

	sql, params, err := r.Build(leafPath("f"), docwhere.IPAddress, "isPrivate", true)
	require.NoError(t, err)
	assert.Empty(t, params)
	for _, n := range strategy.PrivateNetworks {
		assert.Contains(t, sql, "'"+n+"'::inet")
	}
	assert.False(t, strings.HasPrefix(sql, "NOT"))

	public, _, err := r.Build(leafPath("f"), docwhere.IPAddress, "isPublic", true)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(public, "NOT ("))
	for _, n := range append(strategy.PrivateNetworks, strategy.DocumentationNetworks...) {
		assert.Contains(t, public, "'"+n+"'::inet")
	}

	notPublic, _, err := r.Build(leafPath("f"), docwhere.IPAddress, "isPublic", false)
	require.NoError(t, err)
	assert.Equal(t, strings.TrimPrefix(public, "NOT "), notPublic)
}

func TestNetworkInvalidValues(t *testing.T) {
	r := strategy.MustDefault()

	_, _, err := r.Build(leafPath("f"), docwhere.IPAddress, "inSubnet", "10.0.0.0/33")
	assert.Equal(t, "CIDR network", requireValueShapeError(t, err).Expected)

	_, _, err = r.Build(leafPath("f"), docwhere.IPAddress, "inSubnet", "'; drop table x; --")
	requireValueShapeError(t, err)

	_, _, err = r.Build(leafPath("f"), docwhere.IPAddress, "inRange", map[string]any{"from": "10.0.0.1"})
	requireValueShapeError(t, err)

	_, _, err = r.Build(leafPath("f"), docwhere.IPAddress, "inRange", map[string]any{"from": "10.0.0.1", "to": "nope"})
	requireValueShapeError(t, err)

	_, _, err = r.Build(leafPath("f"), docwhere.IPAddress, "isPrivate", "true")
	assert.Equal(t, "boolean", requireValueShapeError(t, err).Expected)
}

func TestLTree(t *testing.T) {
	runBuildCases(t, []buildCase{
		{name: "eq", ft: docwhere.HierarchicalPath, op: "eq", value: "a.b", sql: "(data ->> 'f')::ltree = ?::ltree", params: []any{"a.b"}},
		{name: "ancestor_of", ft: docwhere.HierarchicalPath, op: "ancestor_of", value: "a.b.c", sql: "(data ->> 'f')::ltree @> ?::ltree", params: []any{"a.b.c"}},
		{name: "descendant_of", ft: docwhere.HierarchicalPath, op: "descendant_of", value: "a", sql: "(data ->> 'f')::ltree <@ ?::ltree", params: []any{"a"}},
		{name: "matches_lquery", ft: docwhere.HierarchicalPath, op: "matches_lquery", value: "*.b.*", sql: "(data ->> 'f')::ltree ~ ?::lquery", params: []any{"*.b.*"}},
		{name: "matches_ltxtquery", ft: docwhere.HierarchicalPath, op: "matches_ltxtquery", value: "b & c", sql: "(data ->> 'f')::ltree @ ?::ltxtquery", params: []any{"b & c"}},
		{name: "depth_eq", ft: docwhere.HierarchicalPath, op: "depth_eq", value: 3, sql: "nlevel((data ->> 'f')::ltree) = ?::integer", params: []any{int64(3)}},
		{name: "depth_gt json number", ft: docwhere.HierarchicalPath, op: "depth_gt", value: json.Number("1"), sql: "nlevel((data ->> 'f')::ltree) > ?::integer", params: []any{int64(1)}},
		{name: "depth_lt integral float", ft: docwhere.HierarchicalPath, op: "depth_lt", value: 4.0, sql: "nlevel((data ->> 'f')::ltree) < ?::integer", params: []any{int64(4)}},
		{name: "nin alias", ft: docwhere.HierarchicalPath, op: "nin", value: []any{"a.b"}, sql: "(data ->> 'f')::ltree NOT IN (?::ltree)", params: []any{"a.b"}},
	})

	r := strategy.MustDefault()
	for _, v := range []any{2.5, -1, "3", nil, true, []any{1}} {
		_, _, err := r.Build(leafPath("f"), docwhere.HierarchicalPath, "depth_eq", v)
		assert.Equal(t, "non-negative integer", requireValueShapeError(t, err).Expected, "%v", v)
	}
}

func TestDateRange(t *testing.T) {
	runBuildCases(t, []buildCase{
		{name: "eq", ft: docwhere.DateRange, op: "eq", value: "[2024-01-01,2024-02-01)", sql: "(data ->> 'f')::daterange = ?::daterange", params: []any{"[2024-01-01,2024-02-01)"}},
		{name: "contains_date", ft: docwhere.DateRange, op: "contains_date", value: "2024-01-15", sql: "(data ->> 'f')::daterange @> ?::date", params: []any{"2024-01-15"}},
		{name: "overlaps", ft: docwhere.DateRange, op: "overlaps", value: "[2024-01-01,2024-02-01)", sql: "(data ->> 'f')::daterange && ?::daterange", params: []any{"[2024-01-01,2024-02-01)"}},
		{name: "adjacent", ft: docwhere.DateRange, op: "adjacent", value: "[2024-02-01,2024-03-01)", sql: "(data ->> 'f')::daterange -|- ?::daterange", params: []any{"[2024-02-01,2024-03-01)"}},
		{name: "strictly_left", ft: docwhere.DateRange, op: "strictly_left", value: "r", sql: "(data ->> 'f')::daterange << ?::daterange", params: []any{"r"}},
		{name: "strictly_right", ft: docwhere.DateRange, op: "strictly_right", value: "r", sql: "(data ->> 'f')::daterange >> ?::daterange", params: []any{"r"}},
		{name: "not_left", ft: docwhere.DateRange, op: "not_left", value: "r", sql: "(data ->> 'f')::daterange &> ?::daterange", params: []any{"r"}},
		{name: "not_right", ft: docwhere.DateRange, op: "not_right", value: "r", sql: "(data ->> 'f')::daterange &< ?::daterange", params: []any{"r"}},
	})

	_, _, err := strategy.MustDefault().Build(leafPath("f"), docwhere.DateRange, "contains_date", "2024-13-01")
	requireValueShapeError(t, err)
}

func TestPoint(t *testing.T) {
	runBuildCases(t, []buildCase{
		{name: "eq list", ft: docwhere.Point, op: "eq", value: []any{1, 2.5}, sql: "(data ->> 'f')::point ~= ?::point", params: []any{"(1,2.5)"}},
		{name: "neq object", ft: docwhere.Point, op: "neq", value: map[string]any{"x": 1, "y": 2}, sql: "NOT ((data ->> 'f')::point ~= ?::point)", params: []any{"(1,2)"}},
		{name: "isnull", ft: docwhere.Point, op: "isnull", value: true, sql: "(data ->> 'f') IS NULL"},
		{
			name: "distance_within", ft: docwhere.Point, op: "distance_within",
			value:  map[string]any{"point": "POINT(1 2)", "distance": 5},
			sql:    "(data ->> 'f')::point <-> ?::point <= ?::float8",
			params: []any{"(1,2)", float64(5)},
		},
		{
			name: "within_box", ft: docwhere.Point, op: "within_box",
			value:  []any{[]any{3, 4}, []any{1, 2}},
			sql:    "(data ->> 'f')::point <@ ?::box",
			params: []any{"((1,2),(3,4))"},
		},
	})

	r := strategy.MustDefault()
	_, _, err := r.Build(leafPath("f"), docwhere.Point, "within_box", []any{[]any{1, 2}})
	requireValueShapeError(t, err)
	_, _, err = r.Build(leafPath("f"), docwhere.Point, "distance_within", map[string]any{"point": []any{1, 2}, "distance": -1})
	requireValueShapeError(t, err)
	_, _, err = r.Build(leafPath("f"), docwhere.Point, "eq", "not a point")
	requireValueShapeError(t, err)
}

func TestParsePoint(t *testing.T) {
	for _, v := range []any{[]any{1, 2}, []float64{1, 2}, map[string]any{"x": 1.0, "y": 2}, "POINT(1 2)", orb.Point{1, 2}} {
		p, err := strategy.ParsePoint(v)
		require.NoError(t, err, "%v", v)
		assert.Equal(t, orb.Point{1, 2}, p)
	}
	for _, v := range []any{[]any{1}, []any{"a", "b"}, map[string]any{"x": 1}, "LINESTRING(0 0, 1 1)", 3} {
		_, err := strategy.ParsePoint(v)
		assert.Error(t, err, "%v", v)
	}
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `100\%`, strategy.EscapeLike("100%"))
	assert.Equal(t, `a\_b`, strategy.EscapeLike("a_b"))
	assert.Equal(t, `c:\\dir`, strategy.EscapeLike(`c:\dir`))
	assert.Equal(t, "plain", strategy.EscapeLike("plain"))
}
