package gradientkb

import "github.com/kailas-cloud/gradientkb/internal/transport/gradient"

// Operator is a filter comparison operator.
type Operator string

// Filter operators understood by the knowledge base API.
const (
	OpEq       Operator = "eq"
	OpNe       Operator = "ne"
	OpGt       Operator = "gt"
	OpGte      Operator = "gte"
	OpLt       Operator = "lt"
	OpLte      Operator = "lte"
	OpIn       Operator = "in"
	OpNotIn    Operator = "not_in"
	OpContains Operator = "contains"
)

// Filter restricts retrieval to documents whose metadata matches every Must
// condition and none of the MustNot conditions. It is sent to the API unvalidated.
type Filter struct {
	Must    []Condition
	MustNot []Condition
}

// Condition is a single {key, operator, value} clause.
type Condition struct {
	Key      string
	Operator Operator
	Value    any
}

// IsEmpty reports whether the filter has no conditions.
func (f Filter) IsEmpty() bool {
	return len(f.Must) == 0 && len(f.MustNot) == 0
}

func toTransportFilter(f *Filter) *gradient.Filter {
	if f == nil || f.IsEmpty() {
		return nil
	}
	return &gradient.Filter{
		Must:    toTransportConditions(f.Must),
		MustNot: toTransportConditions(f.MustNot),
	}
}

func toTransportConditions(conds []Condition) []gradient.Condition {
	if len(conds) == 0 {
		return nil
	}
	out := make([]gradient.Condition, len(conds))
	for i, c := range conds {
		out[i] = gradient.Condition{Key: c.Key, Operator: string(c.Operator), Value: c.Value}
	}
	return out
}
