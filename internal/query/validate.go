package query

import (
	"github.com/jarosser06/mosaic/internal/apperr"
)

// Validate checks the AST against the relationship graph before any SQL is
// compiled: entity and paths must exist, operators must fit their field
// types, and value shapes must match the operator.
func Validate(q *Query) error {
	if !queryableEntity(q.EntityType) {
		return apperr.Invalid("invalid field: unknown entity type %q", q.EntityType)
	}
	if q.Limit != nil && *q.Limit < 0 {
		return apperr.Invalid("invalid value: limit must be non-negative")
	}
	if q.Offset != nil && *q.Offset < 0 {
		return apperr.Invalid("invalid value: offset must be non-negative")
	}

	for _, f := range q.Filters {
		if err := validateFilter(q.EntityType, f); err != nil {
			return err
		}
	}

	for _, o := range q.OrderBy {
		rp, err := resolvePath(q.EntityType, o.Field)
		if err != nil {
			return err
		}
		if rp.hasMany {
			return apperr.Invalid("invalid path %q: collection-valued paths cannot order results", o.Field)
		}
		if o.Direction != "" && o.Direction != "asc" && o.Direction != "desc" {
			return apperr.Invalid("invalid value: order direction must be asc or desc")
		}
	}

	if q.Aggregation != nil {
		if err := validateAggregation(q.EntityType, q.Aggregation); err != nil {
			return err
		}
	}
	return nil
}

func validateFilter(entity string, f FilterClause) error {
	rp, err := resolvePath(entity, f.Field)
	if err != nil {
		return err
	}
	ft := rp.leaf.ftype

	switch f.Operator {
	case OpEq, OpNe:
		if ft == typeTags {
			return opMismatch(f, "tag sets support has_tag and has_any_tag")
		}
		if f.Value == nil {
			return valueErr(f, "value must not be null")
		}
	case OpGt, OpGte, OpLt, OpLte:
		if !ft.orderable() {
			return opMismatch(f, "field is not orderable")
		}
		if f.Value == nil {
			return valueErr(f, "value must not be null")
		}
	case OpIn, OpNotIn:
		if ft == typeTags {
			return opMismatch(f, "tag sets support has_tag and has_any_tag")
		}
		list, ok := f.Value.([]any)
		if !ok || len(list) == 0 {
			return valueErr(f, "value must be a non-empty list")
		}
	case OpContains, OpStartsWith, OpEndsWith:
		if !ft.textual() {
			return opMismatch(f, "field is not a string")
		}
		if _, ok := f.Value.(string); !ok {
			return valueErr(f, "value must be a string")
		}
	case OpIsNull, OpIsNotNull:
		if f.Value != nil {
			return valueErr(f, "value must be null")
		}
	case OpHasTag:
		if ft != typeTags {
			return opMismatch(f, "field is not a tag set")
		}
		if _, ok := f.Value.(string); !ok {
			return valueErr(f, "value must be a string")
		}
	case OpHasAnyTag:
		if ft != typeTags {
			return opMismatch(f, "field is not a tag set")
		}
		list, ok := f.Value.([]any)
		if !ok || len(list) == 0 {
			return valueErr(f, "value must be a non-empty list")
		}
		for _, v := range list {
			if _, ok := v.(string); !ok {
				return valueErr(f, "value must be a list of strings")
			}
		}
	default:
		return apperr.Invalid("invalid operator: unknown operator %q", f.Operator)
	}
	return nil
}

func validateAggregation(entity string, a *Aggregation) error {
	switch a.Function {
	case AggCount:
		// field optional; counts rows when absent
	case AggSum, AggAvg:
		if a.Field == "" {
			return apperr.Invalid("invalid aggregation: %s requires a field", a.Function)
		}
		rp, err := resolvePath(entity, a.Field)
		if err != nil {
			return err
		}
		if rp.hasMany {
			return apperr.Invalid("invalid path %q: collection-valued paths cannot be aggregated", a.Field)
		}
		if rp.leaf.ftype != typeInt && rp.leaf.ftype != typeDecimal {
			return apperr.Invalid("invalid aggregation: %s requires a numeric field, %q is not", a.Function, a.Field)
		}
	case AggMin, AggMax, AggCountDistinct:
		if a.Field == "" {
			return apperr.Invalid("invalid aggregation: %s requires a field", a.Function)
		}
		rp, err := resolvePath(entity, a.Field)
		if err != nil {
			return err
		}
		if rp.hasMany {
			return apperr.Invalid("invalid path %q: collection-valued paths cannot be aggregated", a.Field)
		}
		if rp.leaf.ftype == typeTags {
			return apperr.Invalid("invalid aggregation: %s cannot apply to a tag set", a.Function)
		}
	default:
		return apperr.Invalid("invalid aggregation: unknown function %q", a.Function)
	}

	if a.Field != "" && a.Function == AggCount {
		if _, err := resolvePath(entity, a.Field); err != nil {
			return err
		}
	}

	for _, g := range a.GroupBy {
		rp, err := resolvePath(entity, g)
		if err != nil {
			return err
		}
		if rp.hasMany {
			return apperr.Invalid("invalid path %q: collection-valued paths cannot group results", g)
		}
		if rp.leaf.ftype == typeTags {
			return apperr.Invalid("invalid aggregation: cannot group by tag set %q", g)
		}
	}
	return nil
}

func opMismatch(f FilterClause, why string) error {
	return apperr.Invalid("invalid operator: %s does not apply to %q (%s)", f.Operator, f.Field, why)
}

func valueErr(f FilterClause, why string) error {
	return apperr.Invalid("invalid value for %s on %q: %s", f.Operator, f.Field, why)
}
