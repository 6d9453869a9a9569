package query

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jarosser06/mosaic/internal/apperr"
)

func TestValidate_UnknownEntity(t *testing.T) {
	err := Validate(&Query{EntityType: "invoice"})
	assert.ErrorIs(t, err, apperr.ErrInvalidArgument)
}

func TestValidate_UnknownField(t *testing.T) {
	err := Validate(&Query{
		EntityType: "work_session",
		Filters:    []FilterClause{{Field: "billable", Operator: OpEq, Value: true}},
	})
	require.ErrorIs(t, err, apperr.ErrInvalidArgument)
	assert.Contains(t, err.Error(), "invalid field")
}

func TestValidate_UnknownOperator(t *testing.T) {
	err := Validate(&Query{
		EntityType: "work_session",
		Filters:    []FilterClause{{Field: "summary", Operator: "like", Value: "x"}},
	})
	require.ErrorIs(t, err, apperr.ErrInvalidArgument)
	assert.Contains(t, err.Error(), "invalid operator")
}

func TestValidate_OperatorTypeMismatch(t *testing.T) {
	cases := []FilterClause{
		{Field: "summary", Operator: OpGt, Value: "a"},            // strings are not orderable
		{Field: "tags", Operator: OpEq, Value: "x"},               // tag sets need tag operators
		{Field: "duration_hours", Operator: OpContains, Value: 1}, // substring on a decimal
		{Field: "summary", Operator: OpHasTag, Value: "x"},        // tag op on a string
	}
	for _, f := range cases {
		err := Validate(&Query{EntityType: "work_session", Filters: []FilterClause{f}})
		assert.ErrorIs(t, err, apperr.ErrInvalidArgument, "filter %+v", f)
	}
}

func TestValidate_InvalidPath(t *testing.T) {
	err := Validate(&Query{
		EntityType: "work_session",
		Filters:    []FilterClause{{Field: "client.name", Operator: OpEq, Value: "Acme"}},
	})
	require.ErrorIs(t, err, apperr.ErrInvalidArgument)
	assert.Contains(t, err.Error(), "invalid path")

	// Intermediate segment must be a relationship, not a field.
	err = Validate(&Query{
		EntityType: "work_session",
		Filters:    []FilterClause{{Field: "summary.name", Operator: OpEq, Value: "x"}},
	})
	assert.ErrorIs(t, err, apperr.ErrInvalidArgument)
}

func TestValidate_ValidPaths(t *testing.T) {
	assert.NoError(t, Validate(&Query{
		EntityType: "work_session",
		Filters:    []FilterClause{{Field: "project.client.name", Operator: OpEq, Value: "Acme"}},
	}))
	assert.NoError(t, Validate(&Query{
		EntityType: "meeting",
		Filters:    []FilterClause{{Field: "attendees.person.email", Operator: OpContains, Value: "@acme.com"}},
	}))
	// FK edge as leaf normalizes to its storage column.
	assert.NoError(t, Validate(&Query{
		EntityType: "project",
		Filters:    []FilterClause{{Field: "on_behalf_of", Operator: OpIsNull, Value: nil}},
	}))
}

func TestValidate_InvalidValue(t *testing.T) {
	cases := []FilterClause{
		{Field: "summary", Operator: OpIn, Value: "not-a-list"},
		{Field: "summary", Operator: OpIn, Value: []any{}},
		{Field: "summary", Operator: OpIsNull, Value: "must-be-null"},
		{Field: "tags", Operator: OpHasAnyTag, Value: []any{1, 2}},
		{Field: "summary", Operator: OpEq, Value: nil},
	}
	for _, f := range cases {
		err := Validate(&Query{EntityType: "work_session", Filters: []FilterClause{f}})
		assert.ErrorIs(t, err, apperr.ErrInvalidArgument, "filter %+v", f)
	}
}

func TestValidate_InvalidAggregation(t *testing.T) {
	cases := []*Aggregation{
		{Function: "median", Field: "duration_hours"},
		{Function: AggSum},                      // sum requires a field
		{Function: AggSum, Field: "summary"},    // sum requires numeric
		{Function: AggAvg, Field: "tags"},       // not numeric
		{Function: AggMin, Field: "tags"},       // tag sets cannot aggregate
		{Function: AggCount, GroupBy: []string{"tags"}},
	}
	for _, a := range cases {
		err := Validate(&Query{EntityType: "work_session", Aggregation: a})
		assert.ErrorIs(t, err, apperr.ErrInvalidArgument, "aggregation %+v", a)
	}
}

func TestValidate_CollectionPathsOnlyInFilters(t *testing.T) {
	// Fine as a filter: EXISTS semantics.
	assert.NoError(t, Validate(&Query{
		EntityType: "meeting",
		Filters:    []FilterClause{{Field: "attendees.person.full_name", Operator: OpEq, Value: "Alice"}},
	}))
	// Rejected for grouping and ordering.
	assert.Error(t, Validate(&Query{
		EntityType:  "meeting",
		Aggregation: &Aggregation{Function: AggCount, GroupBy: []string{"attendees.person.full_name"}},
	}))
	assert.Error(t, Validate(&Query{
		EntityType: "meeting",
		OrderBy:    []OrderBy{{Field: "attendees.person.full_name"}},
	}))
}

func TestValidate_LimitBounds(t *testing.T) {
	neg := -1
	assert.Error(t, Validate(&Query{EntityType: "person", Limit: &neg}))
	assert.Error(t, Validate(&Query{EntityType: "person", Offset: &neg}))

	big := 5000
	q := &Query{EntityType: "person", Limit: &big}
	require.NoError(t, Validate(q))
	assert.Equal(t, MaxLimit, q.EffectiveLimit())

	q = &Query{EntityType: "person"}
	assert.Equal(t, DefaultLimit, q.EffectiveLimit())
	assert.Equal(t, 0, q.EffectiveOffset())
}

func TestQuery_JSONRoundTrip(t *testing.T) {
	raw := `{
		"entity_type": "work_session",
		"filters": [
			{"field": "project.client.name", "operator": "eq", "value": "Acme Corp"},
			{"field": "date", "operator": "gte", "value": "this_month"}
		],
		"aggregation": {"function": "sum", "field": "duration_hours", "group_by": ["project.name"]},
		"order_by": [{"field": "date", "direction": "desc"}],
		"limit": 50,
		"offset": 10
	}`
	var q Query
	require.NoError(t, json.Unmarshal([]byte(raw), &q))
	require.NoError(t, Validate(&q))

	data, err := json.Marshal(&q)
	require.NoError(t, err)
	var q2 Query
	require.NoError(t, json.Unmarshal(data, &q2))
	assert.Equal(t, q, q2)
}
