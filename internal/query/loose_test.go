package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jarosser06/mosaic/internal/apperr"
)

func TestParseLoose_Entities(t *testing.T) {
	q, err := ParseLoose("sessions")
	require.NoError(t, err)
	assert.Equal(t, "work_session", q.EntityType)
	assert.Empty(t, q.Filters)

	q, err = ParseLoose("meetings this week")
	require.NoError(t, err)
	assert.Equal(t, "meeting", q.EntityType)
	require.Len(t, q.Filters, 1)
	assert.Equal(t, "start_time", q.Filters[0].Field)
	assert.Equal(t, OpGte, q.Filters[0].Operator)
	assert.Equal(t, "this_week", q.Filters[0].Value)

	q, err = ParseLoose("reminders today")
	require.NoError(t, err)
	assert.Equal(t, "reminder", q.EntityType)
	assert.Equal(t, "reminder_time", q.Filters[0].Field)
}

func TestParseLoose_ProducesValidQueries(t *testing.T) {
	for _, text := range []string{
		"sessions this month", "projects", "clients this year", "notes today", "people",
	} {
		q, err := ParseLoose(text)
		require.NoError(t, err, text)
		assert.NoError(t, Validate(q), text)
	}
}

func TestParseLoose_Unrecognized(t *testing.T) {
	for _, text := range []string{"", "show me everything", "sessions from last tuesday"} {
		_, err := ParseLoose(text)
		assert.ErrorIs(t, err, apperr.ErrInvalidArgument, "text=%q", text)
	}
}
