package steam

import (
	"errors"
	"fmt"
)

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	ErrInvalidProfile  = errors.New("invalid steam profile reference")
	ErrProfileNotFound = errors.New("steam profile not found")
	ErrPrivateProfile  = errors.New("steam profile is private")
	ErrAppNotFound     = errors.New("steam app not found")
	ErrMissingAPIKey   = errors.New("steam api key not configured")
	// ErrUpstream wraps transport failures, non-2xx responses and an open breaker.
	ErrUpstream = errors.New("steam upstream failure")
)

// StatusError is a non-2xx upstream response.
type StatusError struct {
	Endpoint string
	Code     int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: unexpected status %d", e.Endpoint, e.Code)
}

// Is matches ErrUpstream.
func (e *StatusError) Is(target error) bool { return target == ErrUpstream }
