package strategy

import (
	"fmt"
	"strings"
	"time"

	"github.com/theplant/docwhere"
)

const (
	OpContainsDate  = "contains_date"
	OpOverlaps      = "overlaps"
	OpAdjacent      = "adjacent"
	OpStrictlyLeft  = "strictly_left"
	OpStrictlyRight = "strictly_right"
	OpNotLeft       = "not_left"
	OpNotRight      = "not_right"
)

var rangeOperators = map[string]string{
	OpOverlaps:      "&&",
	OpAdjacent:      "-|-",
	OpStrictlyLeft:  "<<",
	OpStrictlyRight: ">>",
	OpNotLeft:       "&>",
	OpNotRight:      "&<",
}

// DateRange handles DateRange fields through the daterange type.
type DateRange struct {
	cast *CastStrategy
}

func NewDateRange() *DateRange {
	return &DateRange{cast: Cast("daterange", docwhere.DateRange, "daterange")}
}

func (s *DateRange) Name() string { return "daterange" }

func (s *DateRange) CanHandle(op string, ft docwhere.FieldType) bool {
	return ft.Kind() == docwhere.KindDateRange && hasOperator(s.Operators(ft), op)
}

func (s *DateRange) Operators(ft docwhere.FieldType) []Operator {
	if ft.Kind() != docwhere.KindDateRange {
		return nil
	}
	return append(s.cast.Operators(ft),
		Operator{Name: OpContainsDate, Value: scalarOf("Date"), Description: "Range contains the date"},
		Operator{Name: OpOverlaps, Value: scalarOf("DateRange"), Description: "Ranges overlap"},
		Operator{Name: OpAdjacent, Value: scalarOf("DateRange"), Description: "Ranges are adjacent"},
		Operator{Name: OpStrictlyLeft, Value: scalarOf("DateRange"), Description: "Range is strictly left of the value"},
		Operator{Name: OpStrictlyRight, Value: scalarOf("DateRange"), Description: "Range is strictly right of the value"},
		Operator{Name: OpNotLeft, Value: scalarOf("DateRange"), Description: "Range does not extend left of the value"},
		Operator{Name: OpNotRight, Value: scalarOf("DateRange"), Description: "Range does not extend right of the value"},
	)
}

func (s *DateRange) Build(path Path, op string, value any, ft docwhere.FieldType) (string, []any, error) {
	if op == OpContainsDate {
		d, err := expectString(op, value)
		if err != nil {
			return "", nil, err
		}
		if _, err := time.Parse(time.DateOnly, strings.TrimSpace(d)); err != nil {
			return "", nil, &docwhere.InvalidValueShapeError{Operator: op, Expected: "date (YYYY-MM-DD)", Actual: fmt.Sprintf("%q", d)}
		}
		return fmt.Sprintf("%s @> %s", operand(path, "daterange"), marker("date")), []any{d}, nil
	}
	sqlOp, ok := rangeOperators[op]
	if !ok {
		return s.cast.Build(path, op, value, ft)
	}
	r, err := expectString(op, value)
	if err != nil {
		return "", nil, err
	}
	return fmt.Sprintf("%s %s %s", operand(path, "daterange"), sqlOp, marker("daterange")), []any{r}, nil
}
