package service

import "errors"

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	// ErrInvalidRequest means the caller supplied unusable input.
	ErrInvalidRequest = errors.New("invalid analysis request")
	// ErrNotConfigured means a profile lookup was requested without a library source.
	ErrNotConfigured = errors.New("profile lookups not configured")
)
