package query

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jarosser06/mosaic/internal/domain"
	"github.com/jarosser06/mosaic/internal/repository"
	"github.com/jarosser06/mosaic/internal/rounding"
	"github.com/jarosser06/mosaic/internal/testutil"
)

// executorFixture seeds two clients, three projects, and a spread of work
// sessions and meetings used across executor tests.
type executorFixture struct {
	db       *sql.DB
	engine   *Engine
	now      time.Time
	profile  *domain.UserProfile
	acme     int64
	globex   int64
	rollout  int64 // acme
	audit    int64 // acme
	internal int64 // globex
	alice    int64
	bob      int64
}

func newExecutorFixture(t *testing.T) *executorFixture {
	t.Helper()
	db := testutil.NewTestDB(t)
	f := &executorFixture{
		db:     db,
		engine: NewEngine(db),
		now:    time.Date(2026, 1, 21, 12, 0, 0, 0, time.UTC), // a Wednesday
		profile: &domain.UserProfile{
			Timezone:       "UTC",
			WeekBoundary:   time.Monday,
			DefaultPrivacy: domain.PrivacyPrivate,
		},
	}
	ctx := context.Background()

	f.acme = testutil.SeedClient(t, db, "Acme Corp")
	f.globex = testutil.SeedClient(t, db, "Globex")
	f.rollout = testutil.SeedProject(t, db, f.acme, "Rollout")
	f.audit = testutil.SeedProject(t, db, f.acme, "Audit")
	f.internal = testutil.SeedProject(t, db, f.globex, "Internal")

	f.alice = testutil.SeedPerson(t, db, "Alice Chen")
	f.bob = testutil.SeedPerson(t, db, "Bob Okafor")

	sessions := repository.NewSQLiteWorkSessionRepo(db)
	seed := func(project int64, day, hour, minutes int, privacy domain.PrivacyLevel, summary string, tags ...string) {
		t.Helper()
		start := time.Date(2026, 1, day, hour, 0, 0, 0, time.UTC)
		require.NoError(t, sessions.Create(ctx, &domain.WorkSession{
			ProjectID:     project,
			Date:          time.Date(2026, 1, day, 0, 0, 0, 0, time.UTC),
			StartTime:     start,
			EndTime:       start.Add(time.Duration(minutes) * time.Minute),
			DurationHours: rounding.RoundHalfHour(minutes),
			Summary:       summary,
			PrivacyLevel:  privacy,
			Tags:          tags,
		}))
	}
	// December row stays outside this_month.
	startDec := time.Date(2025, 12, 30, 9, 0, 0, 0, time.UTC)
	require.NoError(t, sessions.Create(ctx, &domain.WorkSession{
		ProjectID: f.rollout, Date: time.Date(2025, 12, 30, 0, 0, 0, 0, time.UTC),
		StartTime: startDec, EndTime: startDec.Add(time.Hour),
		DurationHours: rounding.RoundHalfHour(60),
		Summary:       "old work", PrivacyLevel: domain.PrivacyPublic,
	}))

	seed(f.rollout, 15, 9, 60, domain.PrivacyPublic, "API design", "api")
	seed(f.rollout, 16, 9, 90, domain.PrivacyPrivate, "Deep refactor", "refactor", "api")
	seed(f.audit, 16, 14, 30, domain.PrivacyInternal, "Controls review", "compliance")
	seed(f.internal, 17, 10, 120, domain.PrivacyPublic, "Globex platform", "platform")

	meetings := repository.NewSQLiteMeetingRepo(db)
	require.NoError(t, meetings.Create(ctx, &domain.Meeting{
		Title: "Kickoff", StartTime: time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC),
		DurationMinutes: 45, PrivacyLevel: domain.PrivacyInternal,
		ProjectID: &f.rollout, AttendeeIDs: []int64{f.alice, f.bob},
	}))
	require.NoError(t, meetings.Create(ctx, &domain.Meeting{
		Title: "Globex sync", StartTime: time.Date(2026, 1, 16, 10, 0, 0, 0, time.UTC),
		DurationMinutes: 30, PrivacyLevel: domain.PrivacyPublic,
		ProjectID: &f.internal, AttendeeIDs: []int64{f.bob},
	}))

	return f
}

func (f *executorFixture) run(t *testing.T, q *Query) *Result {
	t.Helper()
	res, err := f.engine.Execute(context.Background(), q, Options{
		Mode: AccessAll, Profile: f.profile, Now: f.now,
	})
	require.NoError(t, err)
	return res
}

func TestExecutor_RelationshipPathFilter(t *testing.T) {
	f := newExecutorFixture(t)

	res := f.run(t, &Query{
		EntityType: "work_session",
		Filters: []FilterClause{
			{Field: "project.client.name", Operator: OpEq, Value: "Acme Corp"},
		},
	})
	// Four Acme sessions exist (Dec + three Jan).
	assert.Equal(t, int64(4), res.TotalCount)
	assert.Len(t, res.IDs, 4)
}

func TestExecutor_TimeShortcut(t *testing.T) {
	f := newExecutorFixture(t)

	res := f.run(t, &Query{
		EntityType: "work_session",
		Filters: []FilterClause{
			{Field: "project.client.name", Operator: OpEq, Value: "Acme Corp"},
			{Field: "date", Operator: OpGte, Value: "this_month"},
		},
	})
	// The December session drops out.
	assert.Equal(t, int64(3), res.TotalCount)
}

func TestExecutor_GroupedSum(t *testing.T) {
	f := newExecutorFixture(t)

	res := f.run(t, &Query{
		EntityType: "work_session",
		Filters: []FilterClause{
			{Field: "project.client.name", Operator: OpEq, Value: "Acme Corp"},
			{Field: "date", Operator: OpGte, Value: "this_month"},
		},
		Aggregation: &Aggregation{
			Function: AggSum,
			Field:    "duration_hours",
			GroupBy:  []string{"project.name"},
		},
	})
	require.NotNil(t, res.Agg)
	require.True(t, res.Agg.Grouped)
	require.Len(t, res.Agg.Groups, 2)
	assert.Equal(t, int64(2), res.Agg.TotalGroups)

	// Groups are ordered by the group tuple: Audit before Rollout.
	assert.Equal(t, "Audit", res.Agg.Groups[0].Values[0])
	assert.Equal(t, "0.5", res.Agg.Groups[0].Result.(decimal.Decimal).StringFixed(1))
	assert.Equal(t, "Rollout", res.Agg.Groups[1].Values[0])
	assert.Equal(t, "2.5", res.Agg.Groups[1].Result.(decimal.Decimal).StringFixed(1))
}

func TestExecutor_ScalarAggregations(t *testing.T) {
	f := newExecutorFixture(t)

	count := f.run(t, &Query{
		EntityType:  "work_session",
		Aggregation: &Aggregation{Function: AggCount},
	})
	assert.Equal(t, int64(5), count.Agg.Scalar)

	sum := f.run(t, &Query{
		EntityType:  "work_session",
		Aggregation: &Aggregation{Function: AggSum, Field: "duration_hours"},
	})
	assert.Equal(t, "6.0", sum.Agg.Scalar.(decimal.Decimal).StringFixed(1))

	avg := f.run(t, &Query{
		EntityType:  "work_session",
		Aggregation: &Aggregation{Function: AggAvg, Field: "duration_hours"},
	})
	assert.Equal(t, "1.2", avg.Agg.Scalar.(decimal.Decimal).StringFixed(1))

	distinct := f.run(t, &Query{
		EntityType:  "work_session",
		Aggregation: &Aggregation{Function: AggCountDistinct, Field: "project.client.name"},
	})
	assert.Equal(t, int64(2), distinct.Agg.Scalar)

	maxRes := f.run(t, &Query{
		EntityType:  "work_session",
		Aggregation: &Aggregation{Function: AggMax, Field: "duration_hours"},
	})
	assert.Equal(t, "2.0", maxRes.Agg.Scalar.(decimal.Decimal).StringFixed(1))
}

func TestExecutor_EmptyAggregations(t *testing.T) {
	f := newExecutorFixture(t)
	noMatch := []FilterClause{{Field: "summary", Operator: OpEq, Value: "does not exist"}}

	count := f.run(t, &Query{EntityType: "work_session", Filters: noMatch,
		Aggregation: &Aggregation{Function: AggCount}})
	assert.Equal(t, int64(0), count.Agg.Scalar)

	sum := f.run(t, &Query{EntityType: "work_session", Filters: noMatch,
		Aggregation: &Aggregation{Function: AggSum, Field: "duration_hours"}})
	assert.Equal(t, "0.0", sum.Agg.Scalar.(decimal.Decimal).StringFixed(1))

	avg := f.run(t, &Query{EntityType: "work_session", Filters: noMatch,
		Aggregation: &Aggregation{Function: AggAvg, Field: "duration_hours"}})
	assert.Nil(t, avg.Agg.Scalar)

	min := f.run(t, &Query{EntityType: "work_session", Filters: noMatch,
		Aggregation: &Aggregation{Function: AggMin, Field: "duration_hours"}})
	assert.Nil(t, min.Agg.Scalar)
}

func TestExecutor_CollectionPathExists(t *testing.T) {
	f := newExecutorFixture(t)

	res := f.run(t, &Query{
		EntityType: "meeting",
		Filters: []FilterClause{
			{Field: "attendees.person.full_name", Operator: OpEq, Value: "Alice Chen"},
		},
	})
	assert.Equal(t, int64(1), res.TotalCount)

	// Bob attends both meetings; EXISTS semantics must not multiply rows.
	res = f.run(t, &Query{
		EntityType: "meeting",
		Filters: []FilterClause{
			{Field: "attendees.person.full_name", Operator: OpContains, Value: "o"},
		},
	})
	assert.Equal(t, int64(2), res.TotalCount)
	assert.Len(t, res.IDs, 2)
}

func TestExecutor_TagOperators(t *testing.T) {
	f := newExecutorFixture(t)

	res := f.run(t, &Query{
		EntityType: "work_session",
		Filters:    []FilterClause{{Field: "tags", Operator: OpHasTag, Value: "api"}},
	})
	assert.Equal(t, int64(2), res.TotalCount)

	res = f.run(t, &Query{
		EntityType: "work_session",
		Filters:    []FilterClause{{Field: "tags", Operator: OpHasAnyTag, Value: []any{"compliance", "platform"}}},
	})
	assert.Equal(t, int64(2), res.TotalCount)
}

func TestExecutor_StringOperatorsCaseInsensitive(t *testing.T) {
	f := newExecutorFixture(t)

	res := f.run(t, &Query{
		EntityType: "client",
		Filters:    []FilterClause{{Field: "name", Operator: OpEq, Value: "acme corp"}},
	})
	assert.Equal(t, int64(1), res.TotalCount)

	res = f.run(t, &Query{
		EntityType: "work_session",
		Filters:    []FilterClause{{Field: "summary", Operator: OpStartsWith, Value: "api"}},
	})
	assert.Equal(t, int64(1), res.TotalCount)

	res = f.run(t, &Query{
		EntityType: "work_session",
		Filters:    []FilterClause{{Field: "summary", Operator: OpContains, Value: "REFACTOR"}},
	})
	assert.Equal(t, int64(1), res.TotalCount)
}

func TestExecutor_EnumCaseSensitive(t *testing.T) {
	f := newExecutorFixture(t)

	res := f.run(t, &Query{
		EntityType: "work_session",
		Filters:    []FilterClause{{Field: "privacy_level", Operator: OpEq, Value: "PUBLIC"}},
	})
	assert.Equal(t, int64(0), res.TotalCount)
}

func TestExecutor_PrivacyModes(t *testing.T) {
	f := newExecutorFixture(t)
	ctx := context.Background()

	run := func(mode AccessMode) int64 {
		res, err := f.engine.Execute(ctx, &Query{EntityType: "work_session"},
			Options{Mode: mode, Profile: f.profile, Now: f.now})
		require.NoError(t, err)
		return res.TotalCount
	}
	assert.Equal(t, int64(5), run(AccessAll))
	assert.Equal(t, int64(4), run(AccessInternalAndPublic))
	assert.Equal(t, int64(3), run(AccessPublicOnly))
}

func TestExecutor_FilterIdempotence(t *testing.T) {
	f := newExecutorFixture(t)
	clause := FilterClause{Field: "project.client.name", Operator: OpEq, Value: "Acme Corp"}

	once := f.run(t, &Query{EntityType: "work_session", Filters: []FilterClause{clause}})
	twice := f.run(t, &Query{EntityType: "work_session", Filters: []FilterClause{clause, clause}})
	assert.Equal(t, once.IDs, twice.IDs)
	assert.Equal(t, once.TotalCount, twice.TotalCount)
}

func TestExecutor_PathReuseAcrossClauses(t *testing.T) {
	f := newExecutorFixture(t)

	// The same path in filter and group_by shares a single join; the result
	// matches the one-clause equivalent.
	grouped := f.run(t, &Query{
		EntityType: "work_session",
		Filters:    []FilterClause{{Field: "project.name", Operator: OpNe, Value: "does-not-exist"}},
		Aggregation: &Aggregation{
			Function: AggCount,
			GroupBy:  []string{"project.name"},
		},
	})
	baseline := f.run(t, &Query{
		EntityType:  "work_session",
		Aggregation: &Aggregation{Function: AggCount, GroupBy: []string{"project.name"}},
	})
	assert.Equal(t, baseline.Agg.Groups, grouped.Agg.Groups)
}

func TestExecutor_GroupedPagination(t *testing.T) {
	f := newExecutorFixture(t)

	limit, offset := 1, 1
	res := f.run(t, &Query{
		EntityType: "work_session",
		Aggregation: &Aggregation{
			Function: AggCount,
			GroupBy:  []string{"project.name"},
		},
		Limit:  &limit,
		Offset: &offset,
	})
	require.NotNil(t, res.Agg)
	assert.Equal(t, int64(3), res.Agg.TotalGroups)
	require.Len(t, res.Agg.Groups, 1)
	// Audit, Internal, Rollout in group order; offset 1 lands on Internal.
	assert.Equal(t, "Internal", res.Agg.Groups[0].Values[0])
}

func TestExecutor_OrderLimitOffset(t *testing.T) {
	f := newExecutorFixture(t)

	all := f.run(t, &Query{
		EntityType: "work_session",
		OrderBy:    []OrderBy{{Field: "start_time", Direction: "desc"}},
	})
	require.Len(t, all.IDs, 5)

	limit, offset := 2, 1
	page := f.run(t, &Query{
		EntityType: "work_session",
		OrderBy:    []OrderBy{{Field: "start_time", Direction: "desc"}},
		Limit:      &limit,
		Offset:     &offset,
	})
	assert.Equal(t, int64(5), page.TotalCount, "total_count ignores pagination")
	assert.Equal(t, all.IDs[1:3], page.IDs)
}

func TestExecutor_FKLeafNormalization(t *testing.T) {
	f := newExecutorFixture(t)

	res := f.run(t, &Query{
		EntityType: "project",
		Filters:    []FilterClause{{Field: "on_behalf_of", Operator: OpIsNull, Value: nil}},
	})
	assert.Equal(t, int64(3), res.TotalCount)

	res = f.run(t, &Query{
		EntityType: "work_session",
		Filters:    []FilterClause{{Field: "project", Operator: OpEq, Value: int(f.rollout)}},
	})
	assert.Equal(t, int64(3), res.TotalCount)
}

func TestExecutor_InOperator(t *testing.T) {
	f := newExecutorFixture(t)

	res := f.run(t, &Query{
		EntityType: "project",
		Filters:    []FilterClause{{Field: "name", Operator: OpIn, Value: []any{"Rollout", "Audit"}}},
	})
	assert.Equal(t, int64(2), res.TotalCount)

	res = f.run(t, &Query{
		EntityType: "project",
		Filters:    []FilterClause{{Field: "name", Operator: OpNotIn, Value: []any{"Rollout"}}},
	})
	assert.Equal(t, int64(2), res.TotalCount)
}
