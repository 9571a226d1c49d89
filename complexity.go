package docwhere

// ComplexityLimits defines limits for filter complexity.
// A value of 0 means no limit for that metric.
type ComplexityLimits struct {
	MaxDepth            int // Maximum field path length
	MaxTotalFields      int // Maximum number of leaf predicates
	MaxLogicalOperators int // Maximum number of And/Or/Not nodes
	MaxLogicalDepth     int // Maximum nesting depth of And/Or/Not nodes
	MaxOrBranches       int // Maximum children of a single Or
}

// ComplexityResult contains the calculated complexity metrics of a filter.
type ComplexityResult struct {
	Depth            int
	TotalFields      int
	LogicalOperators int
	LogicalDepth     int
	OrBranches       int
}

var (
	// DefaultLimits provides reasonable defaults for most use cases.
	DefaultLimits = &ComplexityLimits{
		MaxDepth:            3,
		MaxTotalFields:      10,
		MaxLogicalOperators: 5,
		MaxLogicalDepth:     2,
		MaxOrBranches:       3,
	}

	// StrictLimits provides tighter limits for security-sensitive contexts.
	StrictLimits = &ComplexityLimits{
		MaxDepth:            2,
		MaxTotalFields:      5,
		MaxLogicalOperators: 3,
		MaxLogicalDepth:     1,
		MaxOrBranches:       2,
	}

	// RelaxedLimits provides looser limits for trusted/internal use.
	RelaxedLimits = &ComplexityLimits{
		MaxDepth:            5,
		MaxTotalFields:      20,
		MaxLogicalOperators: 10,
		MaxLogicalDepth:     3,
		MaxOrBranches:       5,
	}
)

// CheckComplexity validates that an expression doesn't exceed the specified limits.
// If limits is nil, no validation is performed.
func CheckComplexity(expr Expression, limits *ComplexityLimits) error {
	if limits == nil {
		return nil
	}

	result := CalculateComplexity(expr)

	checks := []struct {
		metric string
		value  int
		limit  int
	}{
		{"depth", result.Depth, limits.MaxDepth},
		{"field count", result.TotalFields, limits.MaxTotalFields},
		{"logical operator count", result.LogicalOperators, limits.MaxLogicalOperators},
		{"logical nesting depth", result.LogicalDepth, limits.MaxLogicalDepth},
		{"Or branches", result.OrBranches, limits.MaxOrBranches},
	}
	for _, c := range checks {
		if c.limit > 0 && c.value > c.limit {
			return &ComplexityError{Metric: c.metric, Value: c.value, Limit: c.limit}
		}
	}
	return nil
}

// CalculateComplexity analyzes an expression and returns its complexity metrics.
func CalculateComplexity(expr Expression) *ComplexityResult {
	result := &ComplexityResult{}
	calculateComplexityRecursive(expr, 0, result)
	return result
}

func calculateComplexityRecursive(expr Expression, logicalDepth int, result *ComplexityResult) {
	if logicalDepth > result.LogicalDepth {
		result.LogicalDepth = logicalDepth
	}

	var children []Expression
	switch e := expr.(type) {
	case Leaf:
		countLeaf(e, result)
		return
	case *Leaf:
		countLeaf(*e, result)
		return
	case And:
		children = e.Children
	case *And:
		children = e.Children
	case Or:
		children = e.Children
		result.OrBranches = max(result.OrBranches, len(children))
	case *Or:
		children = e.Children
		result.OrBranches = max(result.OrBranches, len(children))
	case Not:
		children = []Expression{e.Child}
	case *Not:
		children = []Expression{e.Child}
	default:
		return
	}

	result.LogicalOperators++
	if logicalDepth+1 > result.LogicalDepth {
		result.LogicalDepth = logicalDepth + 1
	}
	for _, c := range children {
		if c == nil {
			continue
		}
		calculateComplexityRecursive(c, logicalDepth+1, result)
	}
}

func countLeaf(l Leaf, result *ComplexityResult) {
	result.TotalFields++
	if len(l.Path) > result.Depth {
		result.Depth = len(l.Path)
	}
}
