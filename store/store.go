package store

import (
	"context"
	"errors"

	"github.com/zlutov/notepad/models"
)

type NotepadStore interface {
	CreateUser(ctx context.Context, user models.User) (models.User, error)
	GetUserByEmail(ctx context.Context, email string) (models.User, error)
	GetUserById(ctx context.Context, userId string) (models.User, error)

	CreateNote(ctx context.Context, note models.Note) (models.Note, error)
	UpdateNote(ctx context.Context, note models.Note, fields []string) (models.Note, error)
	DeleteNote(ctx context.Context, userId string, noteId string) error
	ListNotes(ctx context.Context, userId string) ([]models.Note, error)
}

// Custom error types for clarity
var (
	ErrItemNotFound = errors.New("item does not exist")
	ErrItemExists   = errors.New("item already exists")
)
