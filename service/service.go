package service

import (
	"bytes"
	"errors"
	"time"

	"github.com/zlutov/notepad/cache"
	"github.com/zlutov/notepad/store"
)

const (
	// Lifetimes also drive the cookie Max-Age, so the transport layer
	// reads them from here rather than keeping its own copies.
	AccessTokenTTL  = 10 * time.Minute
	RefreshTokenTTL = 7 * 24 * time.Hour
)

type Service struct {
	Store         store.NotepadStore
	Cache         cache.NotepadCache
	AccessSecret  []byte
	RefreshSecret []byte

	// Now is the service clock. Tests swap it to exercise token expiry.
	Now func() time.Time
}

func NewService(
	notepadStore store.NotepadStore,
	notepadCache cache.NotepadCache,
	accessSecret []byte,
	refreshSecret []byte,
) (*Service, error) {
	if len(accessSecret) == 0 || len(refreshSecret) == 0 {
		return nil, errors.New("token secrets must not be empty")
	}
	// A leaked access token must never be replayable as a refresh token
	if bytes.Equal(accessSecret, refreshSecret) {
		return nil, errors.New("access and refresh secrets must differ")
	}

	return &Service{
		Store:         notepadStore,
		Cache:         notepadCache,
		AccessSecret:  accessSecret,
		RefreshSecret: refreshSecret,
		Now:           time.Now,
	}, nil
}
