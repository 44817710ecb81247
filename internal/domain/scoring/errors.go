package scoring

import (
	"errors"
	"fmt"
)

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	// ErrInsufficientCandidates is matched by *InsufficientCandidatesError.
	ErrInsufficientCandidates = errors.New("insufficient candidates")
	// ErrInvalidLimit means the requested list size is below one.
	ErrInvalidLimit = errors.New("invalid recommendation limit")
)

// InsufficientCandidatesError is returned alongside a partial result when
// fewer than Want candidates survived filtering. It is not fatal.
type InsufficientCandidatesError struct {
	Want int
	Have int
}

func (e *InsufficientCandidatesError) Error() string {
	return fmt.Sprintf("insufficient candidates: wanted %d, have %d", e.Want, e.Have)
}

// Is matches ErrInsufficientCandidates.
func (e *InsufficientCandidatesError) Is(target error) bool {
	return target == ErrInsufficientCandidates
}
