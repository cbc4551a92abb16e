package repository

import "errors"

// Sentinel kinds for storage errors.
var (
	ErrNotFound      = errors.New("record not found")
	ErrInvalidCutoff = errors.New("invalid cutoff")
	ErrClosed        = errors.New("store closed")
)
