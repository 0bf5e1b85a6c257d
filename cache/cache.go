package cache

import (
	"context"
	"errors"
)

// ErrCacheMiss is returned by GetNoteList when no cached list exists for
// the user. Every other error means the cache itself failed; callers treat
// both as "go to the store".
var ErrCacheMiss = errors.New("cache miss")

type NotepadCache interface {
	GetNoteList(ctx context.Context, userId string) ([]byte, error)
	SetNoteList(ctx context.Context, userId string, data []byte) error
	InvalidateNoteList(ctx context.Context, userId string) error
}
