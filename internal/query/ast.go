// Package query implements the structured query DSL: a typed AST over the
// entity model, validated against a precomputed relationship graph and
// compiled to SQL against the entity store.
package query

// Op is a filter operator.
type Op string

const (
	OpEq         Op = "eq"
	OpNe         Op = "ne"
	OpGt         Op = "gt"
	OpGte        Op = "gte"
	OpLt         Op = "lt"
	OpLte        Op = "lte"
	OpIn         Op = "in"
	OpNotIn      Op = "not_in"
	OpContains   Op = "contains"
	OpStartsWith Op = "starts_with"
	OpEndsWith   Op = "ends_with"
	OpIsNull     Op = "is_null"
	OpIsNotNull  Op = "is_not_null"
	OpHasTag     Op = "has_tag"
	OpHasAnyTag  Op = "has_any_tag"
)

// AggFunc is an aggregation function.
type AggFunc string

const (
	AggCount         AggFunc = "count"
	AggSum           AggFunc = "sum"
	AggAvg           AggFunc = "avg"
	AggMin           AggFunc = "min"
	AggMax           AggFunc = "max"
	AggCountDistinct AggFunc = "count_distinct"
)

// FilterClause is one predicate. Field is a dot-separated relationship path
// rooted at the query's base entity; Value is a JSON literal (or nil for
// the null-test operators).
type FilterClause struct {
	Field    string `json:"field"`
	Operator Op     `json:"operator"`
	Value    any    `json:"value"`
}

// OrderBy is one ordering term. Direction is "asc" or "desc".
type OrderBy struct {
	Field     string `json:"field"`
	Direction string `json:"direction"`
}

// Aggregation describes an optional aggregate projection. A nil Field is
// legal only for count. A non-empty GroupBy turns the scalar into one
// result per distinct group tuple.
type Aggregation struct {
	Function AggFunc  `json:"function"`
	Field    string   `json:"field,omitempty"`
	GroupBy  []string `json:"group_by,omitempty"`
}

// Query is the AST root.
type Query struct {
	EntityType  string         `json:"entity_type"`
	Filters     []FilterClause `json:"filters,omitempty"`
	Aggregation *Aggregation   `json:"aggregation,omitempty"`
	Limit       *int           `json:"limit,omitempty"`
	Offset      *int           `json:"offset,omitempty"`
	OrderBy     []OrderBy      `json:"order_by,omitempty"`
}

const (
	// DefaultLimit applies when a query does not set one.
	DefaultLimit = 100
	// MaxLimit bounds any caller-supplied limit.
	MaxLimit = 1000
)

// EffectiveLimit returns the page size after defaults and clamping.
func (q *Query) EffectiveLimit() int {
	if q.Limit == nil {
		return DefaultLimit
	}
	if *q.Limit > MaxLimit {
		return MaxLimit
	}
	return *q.Limit
}

// EffectiveOffset returns the page offset after defaults.
func (q *Query) EffectiveOffset() int {
	if q.Offset == nil {
		return 0
	}
	return *q.Offset
}
