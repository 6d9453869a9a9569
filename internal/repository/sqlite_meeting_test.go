package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jarosser06/mosaic/internal/apperr"
	"github.com/jarosser06/mosaic/internal/domain"
	"github.com/jarosser06/mosaic/internal/testutil"
)

func TestMeetingRepo_CreateWithAttendees(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	repo := NewSQLiteMeetingRepo(db)

	alice := testutil.SeedPerson(t, db, "Alice Chen")
	bob := testutil.SeedPerson(t, db, "Bob Okafor")

	m := &domain.Meeting{
		Title:           "Kickoff",
		StartTime:       time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC),
		DurationMinutes: 45,
		PrivacyLevel:    domain.PrivacyInternal,
		AttendeeIDs:     []int64{alice, bob},
	}
	require.NoError(t, repo.Create(ctx, m))

	fetched, err := repo.GetByID(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, "Kickoff", fetched.Title)
	assert.ElementsMatch(t, []int64{alice, bob}, fetched.AttendeeIDs)
}

func TestMeetingRepo_NonPositiveDuration(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSQLiteMeetingRepo(db)
	err := repo.Create(context.Background(), &domain.Meeting{
		Title:           "Empty",
		StartTime:       time.Now().UTC(),
		DurationMinutes: 0,
		PrivacyLevel:    domain.PrivacyPrivate,
	})
	assert.ErrorIs(t, err, apperr.ErrInvalidArgument)
}

func TestMeetingRepo_AttendeesCascadeWithMeeting(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	repo := NewSQLiteMeetingRepo(db)

	alice := testutil.SeedPerson(t, db, "Alice Chen")
	m := &domain.Meeting{
		Title:           "1:1",
		StartTime:       time.Now().UTC(),
		DurationMinutes: 30,
		PrivacyLevel:    domain.PrivacyPrivate,
		AttendeeIDs:     []int64{alice},
	}
	require.NoError(t, repo.Create(ctx, m))
	require.NoError(t, repo.Delete(ctx, m.ID))

	var count int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM meeting_attendees`).Scan(&count))
	assert.Zero(t, count)
}

func TestMeetingRepo_ProjectSetNullOnDelete(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	repo := NewSQLiteMeetingRepo(db)

	clientID := testutil.SeedClient(t, db, "Acme Corp")
	projectID := testutil.SeedProject(t, db, clientID, "Rollout")

	m := &domain.Meeting{
		Title:           "Planning",
		StartTime:       time.Now().UTC(),
		DurationMinutes: 30,
		PrivacyLevel:    domain.PrivacyPrivate,
		ProjectID:       &projectID,
	}
	require.NoError(t, repo.Create(ctx, m))

	// No work session references the project here, so deletion succeeds and
	// the meeting's project link clears.
	require.NoError(t, NewSQLiteProjectRepo(db).Delete(ctx, projectID))

	fetched, err := repo.GetByID(ctx, m.ID)
	require.NoError(t, err)
	assert.Nil(t, fetched.ProjectID)
}

func TestMeetingRepo_ReplaceAttendees(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	repo := NewSQLiteMeetingRepo(db)

	alice := testutil.SeedPerson(t, db, "Alice Chen")
	bob := testutil.SeedPerson(t, db, "Bob Okafor")

	m := &domain.Meeting{
		Title:           "Sync",
		StartTime:       time.Now().UTC(),
		DurationMinutes: 15,
		PrivacyLevel:    domain.PrivacyPrivate,
		AttendeeIDs:     []int64{alice},
	}
	require.NoError(t, repo.Create(ctx, m))
	require.NoError(t, repo.ReplaceAttendees(ctx, m.ID, []int64{bob}))

	fetched, err := repo.GetByID(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, []int64{bob}, fetched.AttendeeIDs)
}
