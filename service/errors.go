package service

import "errors"

// The handler layer maps these to HTTP statuses; nothing below the handlers
// ever sees a status code.
var (
	ErrValidation         = errors.New("validation failed")
	ErrEmailTaken         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrUserNotFound       = errors.New("user not found")
	ErrNoteNotFound       = errors.New("note not found")
)
