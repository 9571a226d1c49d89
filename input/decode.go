package input

import (
	"encoding/json"
	"math"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/theplant/docwhere"
)

// TagKey is the struct tag naming fields and operators of typed filters.
const TagKey = "where"

var jsoniterForWhere = jsoniter.Config{
	EscapeHTML:             true,
	SortMapKeys:            true,
	ValidateJsonRawMessage: true,
	UseNumber:              true,
	TagKey:                 TagKey,
}.Froze()

// ParseJSON decodes a JSON where value and parses it. Numbers keep their
// precision: integers become int64, everything else float64.
func ParseJSON(data []byte, opts ...Option) (docwhere.Expression, error) {
	var where map[string]any
	if err := jsoniterForWhere.Unmarshal(data, &where); err != nil {
		return nil, errors.Wrap(err, "decode where json")
	}
	return Parse(normalize(where).(map[string]any), opts...)
}

// ParseStruct parses a where value delivered as a protobuf Struct, e.g.
// a google.protobuf.Struct field of a gRPC request.
func ParseStruct(s *structpb.Struct, opts ...Option) (docwhere.Expression, error) {
	if s == nil {
		return docwhere.And{}, nil
	}
	return Parse(normalize(s.AsMap()).(map[string]any), opts...)
}

// normalize converts json.Number and integral float64 values, which is
// all structpb has, to int64.
func normalize(v any) any {
	switch v := v.(type) {
	case map[string]any:
		for k, item := range v {
			v[k] = normalize(item)
		}
		return v
	case []any:
		for i, item := range v {
			v[i] = normalize(item)
		}
		return v
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return i
		}
		if f, err := v.Float64(); err == nil {
			return f
		}
		return v.String()
	case float64:
		if v == math.Trunc(v) && math.Abs(v) < 1<<53 {
			return int64(v)
		}
		return v
	}
	return v
}
