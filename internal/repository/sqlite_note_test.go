package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jarosser06/mosaic/internal/apperr"
	"github.com/jarosser06/mosaic/internal/domain"
	"github.com/jarosser06/mosaic/internal/testutil"
)

func TestNoteRepo_AttachedNote(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	repo := NewSQLiteNoteRepo(db)

	person := testutil.SeedPerson(t, db, "Alice Chen")
	et := domain.EntityPerson
	n := &domain.Note{
		Text:         "Prefers async updates",
		PrivacyLevel: domain.PrivacyInternal,
		EntityType:   &et,
		EntityID:     &person,
		Tags:         []string{"preference"},
	}
	require.NoError(t, repo.Create(ctx, n))

	fetched, err := repo.GetByID(ctx, n.ID)
	require.NoError(t, err)
	require.NotNil(t, fetched.EntityType)
	assert.Equal(t, domain.EntityPerson, *fetched.EntityType)
	assert.Equal(t, person, *fetched.EntityID)
}

func TestNoteRepo_AttachmentPairEnforced(t *testing.T) {
	repo := NewSQLiteNoteRepo(testutil.NewTestDB(t))
	ctx := context.Background()

	et := domain.EntityProject
	err := repo.Create(ctx, &domain.Note{
		Text: "dangling type", PrivacyLevel: domain.PrivacyPrivate, EntityType: &et,
	})
	assert.ErrorIs(t, err, apperr.ErrInvalidArgument)

	id := int64(1)
	err = repo.Create(ctx, &domain.Note{
		Text: "dangling id", PrivacyLevel: domain.PrivacyPrivate, EntityID: &id,
	})
	assert.ErrorIs(t, err, apperr.ErrInvalidArgument)
}

func TestNoteRepo_UnattachedNote(t *testing.T) {
	repo := NewSQLiteNoteRepo(testutil.NewTestDB(t))
	ctx := context.Background()

	n := &domain.Note{Text: "floating thought", PrivacyLevel: domain.PrivacyPrivate}
	require.NoError(t, repo.Create(ctx, n))

	fetched, err := repo.GetByID(ctx, n.ID)
	require.NoError(t, err)
	assert.Nil(t, fetched.EntityType)
	assert.Nil(t, fetched.EntityID)
}

func TestNoteRepo_UnknownEntityType(t *testing.T) {
	repo := NewSQLiteNoteRepo(testutil.NewTestDB(t))
	et := domain.EntityType("invoice")
	id := int64(1)
	err := repo.Create(context.Background(), &domain.Note{
		Text: "bad ref", PrivacyLevel: domain.PrivacyPrivate, EntityType: &et, EntityID: &id,
	})
	assert.ErrorIs(t, err, apperr.ErrInvalidArgument)
}
