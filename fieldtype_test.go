package docwhere_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theplant/docwhere"
)

func TestFieldTypeString(t *testing.T) {
	assert.Equal(t, "IpAddress", docwhere.IPAddress.String())
	assert.Equal(t, "HierarchicalPath", docwhere.HierarchicalPath.String())
	assert.Equal(t, "Unknown", docwhere.FieldType{}.String())
	assert.Equal(t, "Extension(uuid)", docwhere.Extension("uuid").String())
	assert.True(t, docwhere.FieldType{}.IsZero())
	assert.False(t, docwhere.Any.IsZero())
}

func TestExtensionIdentity(t *testing.T) {
	assert.Equal(t, docwhere.Extension("uuid"), docwhere.Extension("uuid"))
	assert.NotEqual(t, docwhere.Extension("uuid"), docwhere.Extension("money"))
	assert.Equal(t, docwhere.KindExtension, docwhere.Extension("uuid").Kind())
	assert.Equal(t, "uuid", docwhere.Extension("uuid").Tag())
	assert.Empty(t, docwhere.Point.Tag())
	assert.Panics(t, func() { docwhere.Extension("") })

	seen := map[docwhere.FieldType]int{}
	seen[docwhere.Extension("uuid")]++
	seen[docwhere.Extension("uuid")]++
	assert.Equal(t, 2, seen[docwhere.Extension("uuid")])
}

func TestParseFieldType(t *testing.T) {
	tests := []struct {
		in   string
		want docwhere.FieldType
	}{
		{"", docwhere.FieldType{}},
		{"json", docwhere.Any},
		{"text", docwhere.String},
		{"int", docwhere.Integer},
		{"ip", docwhere.IPAddress},
		{"macaddr", docwhere.MACAddress},
		{"ltree", docwhere.HierarchicalPath},
		{"date_range", docwhere.DateRange},
		{"Point", docwhere.Point},
		{"Extension(uuid)", docwhere.Extension("uuid")},
		{"asset_tag", docwhere.Extension("asset_tag")},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := docwhere.ParseFieldType(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	for _, ft := range append(docwhere.BuiltinFieldTypes(), docwhere.Extension("uuid")) {
		b, err := ft.MarshalText()
		require.NoError(t, err)
		var back docwhere.FieldType
		require.NoError(t, back.UnmarshalText(b))
		assert.Equal(t, ft, back)
	}
}
