package domain

import "errors"

var (
	ErrUnauthorized        = errors.New("authentication required")
	ErrSelfRatingForbidden = errors.New("owner cannot rate own artwork")
	ErrInvalidScore        = errors.New("score must be between 1.0 and 5.0")
	ErrNotFound            = errors.New("not found")
	ErrTransientIO         = errors.New("storage temporarily unavailable")

	ErrForbidden          = errors.New("operation not permitted")
	ErrConflict           = errors.New("concurrent modification")
	ErrInvalidCategory    = errors.New("invalid category")
	ErrInvalidInput       = errors.New("invalid input")
	ErrInvalidImage       = errors.New("invalid image")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email already registered")
)
