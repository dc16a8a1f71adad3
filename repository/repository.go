package repository

import (
	"context"
	"errors"

	"noteshelf/model"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")
)

type UserRepository interface {
	CreateUser(ctx context.Context, user *model.User) error
	FindUserByID(ctx context.Context, id uint) (*model.User, error)
	FindUserByEmail(ctx context.Context, email string) (*model.User, error)
	FindUserByUsername(ctx context.Context, username string) (*model.User, error)
	FindUserByResetToken(ctx context.Context, token string) (*model.User, error)
	// SaveUser writes every column of user; concurrent saves are last-write-wins.
	SaveUser(ctx context.Context, user *model.User) error
	// DeleteUser removes the user and every note it owns.
	DeleteUser(ctx context.Context, id uint) error
	Ping(ctx context.Context) error
}

type NoteRepository interface {
	CreateNote(ctx context.Context, note *model.Note) error
	// ListNotes returns notes owned by userID, most recently updated first.
	ListNotes(ctx context.Context, userID uint) ([]model.Note, error)
	// GetNote looks a note up by id and owner.
	GetNote(ctx context.Context, id, userID uint) (*model.Note, error)
	// GetPublicNote looks a note up by id alone.
	GetPublicNote(ctx context.Context, id uint) (*model.Note, error)
	SaveNote(ctx context.Context, note *model.Note) error
	DeleteNote(ctx context.Context, id, userID uint) error
	ListAttachments(ctx context.Context, userID uint) ([]string, error)
}
