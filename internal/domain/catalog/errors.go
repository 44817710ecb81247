package catalog

import (
	"errors"
	"fmt"
)

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	// ErrEmptyLibrary means there is no playtime signal to aggregate.
	ErrEmptyLibrary = errors.New("empty library")
	// ErrMalformedRecord is matched by every *MalformedRecordError.
	ErrMalformedRecord = errors.New("malformed record")
)

// EmptyLibraryError reports why normalization produced nothing.
type EmptyLibraryError struct {
	Total    int
	Dropped  int
	Rejected int
}

func (e *EmptyLibraryError) Error() string {
	if e.Total == 0 {
		return "empty library: no titles"
	}
	return fmt.Sprintf("empty library: %d titles, %d unplayed, %d rejected", e.Total, e.Dropped, e.Rejected)
}

// Is matches ErrEmptyLibrary.
func (e *EmptyLibraryError) Is(target error) bool { return target == ErrEmptyLibrary }

// MalformedRecordError describes a single raw record that was skipped.
type MalformedRecordError struct {
	Index  int
	ID     int64
	Reason string
}

func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("record %d (id %d): %s", e.Index, e.ID, e.Reason)
}

// Is matches ErrMalformedRecord.
func (e *MalformedRecordError) Is(target error) bool { return target == ErrMalformedRecord }
