package service

import "errors"

// Sentinel kinds for service errors.
var (
	ErrNotStarted  = errors.New("service not started")
	ErrQueueFull   = errors.New("replay queue full")
	ErrInvalidGame = errors.New("invalid game record")
)
