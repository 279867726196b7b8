package apperr

import "errors"

var (
	ErrNotFound        = errors.New("not found")
	ErrCompilerFailure = errors.New("markdown compiler failure")
	ErrLocaleLoad      = errors.New("locale load failure")
	ErrCancelled       = errors.New("cancelled")
	ErrPersistence     = errors.New("persistence failure")
	ErrInvalidSettings = errors.New("invalid share settings")
)
