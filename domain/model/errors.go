package model

import "errors"

var (
	// ErrInvalidPattern is returned for a malformed title expression, before any API call.
	ErrInvalidPattern = errors.New("invalid pattern")
	// ErrChannelNotFound is returned when no channel exists for a handle.
	ErrChannelNotFound = errors.New("channel not found")
	// ErrNetwork covers transport failures, timeouts, non-2xx responses and malformed bodies.
	ErrNetwork = errors.New("network error")
)
