package repository

import (
	"context"
	"testing"
	"time"

	"noteshelf/model"
	"noteshelf/test/testutils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMongoRepos(t *testing.T) {
	db := testutils.SetupTestMongo(t)
	ctx := context.Background()
	require.NoError(t, SetupIndexes(ctx, db))

	users := NewMongoUserRepo(db)
	notes := NewMongoNotesRepo(db)

	u := newUser("mongo")
	require.NoError(t, users.CreateUser(ctx, u))
	assert.Equal(t, uint(1), u.ID)

	dup := newUser("mongo2")
	dup.Email = u.Email
	assert.ErrorIs(t, users.CreateUser(ctx, dup), ErrDuplicate)

	now := time.Now().UTC().Truncate(time.Millisecond)
	first := &model.Note{Title: "first", Content: "x", UserID: u.ID, CreatedAt: now, UpdatedAt: now}
	second := &model.Note{Title: "second", Content: "y", UserID: u.ID, Attachment: "/uploads/b.png", CreatedAt: now, UpdatedAt: now.Add(time.Second)}
	require.NoError(t, notes.CreateNote(ctx, first))
	require.NoError(t, notes.CreateNote(ctx, second))

	list, err := notes.ListNotes(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "second", list[0].Title)

	first.IsPinned = true
	first.UpdatedAt = now.Add(2 * time.Second)
	require.NoError(t, notes.SaveNote(ctx, first))
	got, err := notes.GetNote(ctx, first.ID, u.ID)
	require.NoError(t, err)
	assert.True(t, got.IsPinned)

	_, err = notes.GetNote(ctx, first.ID, u.ID+1)
	assert.ErrorIs(t, err, ErrNotFound)

	refs, err := notes.ListAttachments(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"/uploads/b.png"}, refs)

	require.NoError(t, users.DeleteUser(ctx, u.ID))
	_, err = notes.GetPublicNote(ctx, second.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}
