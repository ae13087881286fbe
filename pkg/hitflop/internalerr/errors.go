package internalerr

import "errors"

// Sentinel errors shared by loaders and the dashboard facade.
var (
	ErrNotFound         = errors.New("data not found")
	ErrSchema           = errors.New("schema mismatch")
	ErrInvalidInput     = errors.New("invalid input")
	ErrStoreUnavailable = errors.New("store unavailable")
	ErrInvalidConfig    = errors.New("invalid configuration")
)
