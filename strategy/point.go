package strategy

import (
	"fmt"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkt"
	"github.com/pkg/errors"

	"github.com/theplant/docwhere"
)

const (
	OpDistanceWithin = "distance_within"
	OpWithinBox      = "within_box"
)

// DistanceInput is the value of distance_within.
var DistanceInput = &ObjectType{
	Name: "PointDistanceInput",
	Fields: []ObjectField{
		{Name: "point", Type: scalarOf("Point"), Required: true},
		{Name: "distance", Type: scalarOf("Float"), Required: true},
	},
}

// Point handles Point fields through the geometric point type. Points are
// given as [x, y], {"x": x, "y": y} or WKT "POINT(x y)".
type Point struct{}

func (Point) Name() string { return "point" }

func (s Point) CanHandle(op string, ft docwhere.FieldType) bool {
	return ft.Kind() == docwhere.KindPoint && hasOperator(s.Operators(ft), op)
}

func (Point) Operators(ft docwhere.FieldType) []Operator {
	if ft.Kind() != docwhere.KindPoint {
		return nil
	}
	return []Operator{
		{Name: OpEq, Value: scalarOf("Point"), Description: "Same point"},
		{Name: OpNeq, Value: scalarOf("Point"), Description: "Different point"},
		{Name: OpIsNull, Value: boolean(), Description: "Is null (true) or is not null (false)"},
		{Name: OpDistanceWithin, Value: objectOf(DistanceInput), Description: "Within distance of the point"},
		{Name: OpWithinBox, Value: listOf("Point"), Description: "Inside the box spanned by two corner points"},
	}
}

func (Point) Build(path Path, op string, value any, ft docwhere.FieldType) (string, []any, error) {
	switch op {
	case OpEq, OpNeq:
		p, err := ParsePoint(value)
		if err != nil {
			return "", nil, docwhere.NewInvalidValueShapeError(op, "point", value)
		}
		cond := fmt.Sprintf("%s ~= %s", operand(path, "point"), marker("point"))
		if op == OpNeq {
			cond = "NOT (" + cond + ")"
		}
		return cond, []any{formatPoint(p)}, nil

	case OpIsNull:
		return buildIsNull(path, op, value)

	case OpDistanceWithin:
		m, err := expectObject(op, value)
		if err != nil {
			return "", nil, err
		}
		p, err := ParsePoint(m["point"])
		if err != nil {
			return "", nil, docwhere.NewInvalidValueShapeError(op, "point", m["point"])
		}
		d, ok := toFloat(m["distance"])
		if !ok || d < 0 {
			return "", nil, docwhere.NewInvalidValueShapeError(op, "non-negative distance", m["distance"])
		}
		return fmt.Sprintf("%s <-> %s <= %s", operand(path, "point"), marker("point"), marker("float8")),
			[]any{formatPoint(p), d}, nil

	case OpWithinBox:
		items, ok := value.([]any)
		if !ok || len(items) != 2 {
			return "", nil, docwhere.NewInvalidValueShapeError(op, "two corner points", value)
		}
		var bound orb.Bound
		for i, item := range items {
			p, err := ParsePoint(item)
			if err != nil {
				return "", nil, docwhere.NewInvalidValueShapeError(op, "point", item)
			}
			if i == 0 {
				bound = p.Bound()
				continue
			}
			bound = bound.Extend(p)
		}
		return fmt.Sprintf("%s <@ %s", operand(path, "point"), marker("box")), []any{formatBox(bound)}, nil
	}
	return "", nil, &docwhere.UnknownOperatorError{Operator: op, FieldType: ft, Path: path.Segments}
}

// ParsePoint reads [x, y], {"x": x, "y": y} or a WKT point.
func ParsePoint(v any) (orb.Point, error) {
	switch t := v.(type) {
	case orb.Point:
		return t, nil
	case []any:
		if len(t) != 2 {
			return orb.Point{}, errors.Errorf("point needs 2 coordinates, got %d", len(t))
		}
		x, okX := toFloat(t[0])
		y, okY := toFloat(t[1])
		if !okX || !okY {
			return orb.Point{}, errors.New("point coordinates must be numbers")
		}
		return orb.Point{x, y}, nil
	case []float64:
		if len(t) != 2 {
			return orb.Point{}, errors.Errorf("point needs 2 coordinates, got %d", len(t))
		}
		return orb.Point{t[0], t[1]}, nil
	case map[string]any:
		x, okX := toFloat(t["x"])
		y, okY := toFloat(t["y"])
		if !okX || !okY {
			return orb.Point{}, errors.New("point object needs numeric x and y")
		}
		return orb.Point{x, y}, nil
	case string:
		p, err := wkt.UnmarshalPoint(strings.TrimSpace(t))
		if err != nil {
			return orb.Point{}, errors.Wrapf(err, "parse point %q", t)
		}
		return p, nil
	}
	return orb.Point{}, errors.Errorf("unsupported point value %T", v)
}

func formatPoint(p orb.Point) string {
	return fmt.Sprintf("(%g,%g)", p.X(), p.Y())
}

func formatBox(b orb.Bound) string {
	return fmt.Sprintf("(%s,%s)", formatPoint(b.Min), formatPoint(b.Max))
}
