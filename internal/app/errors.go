package app

import "errors"

// Sentinel errors mapped to HTTP statuses by the server layer.
var (
	ErrValidation         = errors.New("validation failed")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUsernameTaken      = errors.New("username already registered")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidToken       = errors.New("could not validate credentials")
	ErrInvalidRefresh     = errors.New("invalid refresh token")
	ErrSearchNotFound     = errors.New("search not found")
	ErrSearchForbidden    = errors.New("not authorized to access this search")
	ErrShareUnavailable   = errors.New("recommendation sharing is not configured")
	ErrStoreUnavailable   = errors.New("storage unavailable")
)
