package docwhere_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theplant/docwhere"
)

func TestDomainTypeValidate(t *testing.T) {
	category := docwhere.NewDomainType("Category", docwhere.Scalar("name", docwhere.String))
	category.AddField(docwhere.Object("parent", category))
	require.NoError(t, category.Validate())

	f, ok := category.Field("parent")
	require.True(t, ok)
	assert.Same(t, category, f.Object)
	_, ok = category.Field("missing")
	assert.False(t, ok)

	var nilType *docwhere.DomainType
	_, ok = nilType.Field("name")
	assert.False(t, ok)

	tests := []struct {
		name    string
		dt      *docwhere.DomainType
		wantErr string
	}{
		{"nil", nil, "domain type is nil"},
		{"no name", docwhere.NewDomainType(""), "domain type name must not be empty"},
		{"empty field name", docwhere.NewDomainType("T", docwhere.Scalar("", docwhere.String)), "type T has a field without name"},
		{
			"duplicate field",
			docwhere.NewDomainType("T", docwhere.Scalar("a", docwhere.String), docwhere.Scalar("a", docwhere.Integer)),
			`type T has duplicate field "a"`,
		},
		{
			"object with type",
			docwhere.NewDomainType("T", &docwhere.DomainField{Name: "o", Type: docwhere.String, Object: docwhere.NewDomainType("O")}),
			"field T.o cannot be both an object and a String",
		},
		{
			"nested error",
			docwhere.NewDomainType("T", docwhere.Object("o", docwhere.NewDomainType("O", nil))),
			"field T.o: type O has a nil field",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.EqualError(t, tt.dt.Validate(), tt.wantErr)
		})
	}
}

func TestWalk(t *testing.T) {
	expr := docwhere.AllOf(
		docwhere.Field("a", "eq", 1),
		docwhere.AnyOf(docwhere.Field("b.c", "eq", 2)),
		docwhere.Negate(docwhere.Field("d", "isnull", true)),
	)

	var paths []string
	docwhere.Walk(expr, func(e docwhere.Expression) bool {
		if l, ok := e.(docwhere.Leaf); ok {
			paths = append(paths, l.PathString())
		}
		return true
	})
	assert.Equal(t, []string{"a", "b.c", "d"}, paths)

	paths = nil
	docwhere.Walk(expr, func(e docwhere.Expression) bool {
		if l, ok := e.(docwhere.Leaf); ok {
			paths = append(paths, l.PathString())
		}
		_, isOr := e.(docwhere.Or)
		return !isOr
	})
	assert.Equal(t, []string{"a", "d"}, paths)
}
