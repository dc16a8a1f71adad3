package usecase

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"testing"

	"noteshelf/dto"
	"noteshelf/model"
	"noteshelf/repository"
	"noteshelf/services"
	"noteshelf/storage"
	"noteshelf/test/testutils"
	"noteshelf/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, 0, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func testUser(name, hash string) *model.User {
	return &model.User{Username: name, Email: name + "@example.com", Password: hash}
}

type profileFixture struct {
	svc   *ProfileService
	notes *NotesService
	users *repository.UserRepo
	blobs *storage.MemoryStore
}

func newProfileFixture(t *testing.T) *profileFixture {
	t.Helper()
	db := testutils.NewTestDB(t)
	users := repository.NewUserRepo(db)
	notes := repository.NewNotesRepo(db)
	blobs := storage.NewMemoryStore()
	return &profileFixture{
		svc:   NewProfileService(users, notes, blobs, zap.NewNop()),
		notes: NewNotesService(notes, blobs, zap.NewNop()),
		users: users,
		blobs: blobs,
	}
}

func TestUpdateProfile(t *testing.T) {
	f := newProfileFixture(t)
	ctx := context.Background()

	hash, err := services.HashPassword("secret")
	require.NoError(t, err)
	u := testUser("u1", hash)
	require.NoError(t, f.users.CreateUser(ctx, u))
	taken := testUser("u2", hash)
	require.NoError(t, f.users.CreateUser(ctx, taken))

	updated, err := f.svc.UpdateProfile(ctx, u.ID, dto.ProfileUpdate{Gender: "female", DOB: "1990-05-17"})
	require.NoError(t, err)
	assert.Equal(t, "u1", updated.Username)
	assert.Equal(t, "female", updated.Gender)
	require.NotNil(t, updated.DOB)
	assert.Equal(t, "1990-05-17", updated.DOB.Format("2006-01-02"))
	assert.Equal(t, hash, updated.Password)

	_, err = f.svc.UpdateProfile(ctx, u.ID, dto.ProfileUpdate{Username: "u2"})
	assertKind(t, err, utils.KindConflict)
	_, err = f.svc.UpdateProfile(ctx, u.ID, dto.ProfileUpdate{Email: "U2@example.com"})
	assertKind(t, err, utils.KindConflict)
	_, err = f.svc.UpdateProfile(ctx, u.ID, dto.ProfileUpdate{Email: "not-an-email"})
	assertKind(t, err, utils.KindValidation)
	_, err = f.svc.UpdateProfile(ctx, u.ID, dto.ProfileUpdate{DOB: "17/05/1990"})
	assertKind(t, err, utils.KindValidation)

	updated, err = f.svc.UpdateProfile(ctx, u.ID, dto.ProfileUpdate{NewPassword: "changed"})
	require.NoError(t, err)
	ok, err := services.VerifyPassword(updated.Password, "changed")
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = f.svc.UpdateProfile(ctx, 404, dto.ProfileUpdate{Gender: "x"})
	assertKind(t, err, utils.KindNotFound)
}

func TestUpdateProfileAvatar(t *testing.T) {
	f := newProfileFixture(t)
	ctx := context.Background()
	u := testUser("u1", "salt$hash")
	require.NoError(t, f.users.CreateUser(ctx, u))

	updated, err := f.svc.UpdateProfile(ctx, u.ID, dto.ProfileUpdate{
		Avatar: &dto.Upload{Filename: "me.png", Data: pngBytes(t, 1024, 600)},
	})
	require.NoError(t, err)
	first := updated.ProfilePic
	require.NotEmpty(t, first)

	blob, err := f.blobs.Get(ctx, first)
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", blob.ContentType)
	cfg, _, err := image.DecodeConfig(bytes.NewReader(blob.Data))
	require.NoError(t, err)
	assert.Equal(t, 512, cfg.Width)

	updated, err = f.svc.UpdateProfile(ctx, u.ID, dto.ProfileUpdate{
		Avatar: &dto.Upload{Filename: "me2.png", Data: pngBytes(t, 64, 64)},
	})
	require.NoError(t, err)
	assert.NotEqual(t, first, updated.ProfilePic)
	assert.Equal(t, 1, f.blobs.Len())

	_, err = f.svc.UpdateProfile(ctx, u.ID, dto.ProfileUpdate{
		Avatar: &dto.Upload{Filename: "x.png", Data: []byte("not an image")},
	})
	assertKind(t, err, utils.KindValidation)
}

func TestDeleteAccount(t *testing.T) {
	f := newProfileFixture(t)
	ctx := context.Background()
	u := testUser("u1", "salt$hash")
	require.NoError(t, f.users.CreateUser(ctx, u))

	_, err := f.svc.UpdateProfile(ctx, u.ID, dto.ProfileUpdate{
		Avatar: &dto.Upload{Filename: "me.png", Data: pngBytes(t, 32, 32)},
	})
	require.NoError(t, err)
	note, err := f.notes.Create(ctx, u.ID, dto.NoteInput{
		Title: "A", Content: "B",
		Attachment: &dto.Upload{Filename: "a.txt", Data: []byte("x")},
	})
	require.NoError(t, err)
	require.Equal(t, 2, f.blobs.Len())

	require.NoError(t, f.svc.DeleteAccount(ctx, u.ID))
	assert.Equal(t, 0, f.blobs.Len())

	_, err = f.users.FindUserByID(ctx, u.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	_, err = f.notes.PublicRead(ctx, note.ID)
	assertKind(t, err, utils.KindNotFound)

	assertKind(t, f.svc.DeleteAccount(ctx, u.ID), utils.KindNotFound)
}
