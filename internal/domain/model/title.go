// Package model contains domain models passed between layers.
package model

// RawTitle is an owned-title record as it arrives from a library source.
// Nil Genres or Tags mean the source had no data for that title.
type RawTitle struct {
	ID              int64    `json:"id" yaml:"id" validate:"gt=0"`
	Name            string   `json:"name" yaml:"name"`
	PlaytimeMinutes int64    `json:"playtime_minutes" yaml:"playtime_minutes" validate:"gte=0"`
	RecentMinutes   int64    `json:"recent_minutes,omitempty" yaml:"recent_minutes" validate:"gte=0"`
	Genres          []string `json:"genres,omitempty" yaml:"genres"`
	Tags            []string `json:"tags,omitempty" yaml:"tags"`

	// Malformed is set when the record could not be decoded from its source
	// shape. The normalizer rejects such records.
	Malformed string `json:"-" yaml:"-"`
}

// OwnedTitle is a normalized library entry. Genres and Tags are sorted,
// de-duplicated and never nil. Treat as immutable once normalized.
type OwnedTitle struct {
	ID              int64    `json:"id"`
	Name            string   `json:"name"`
	PlaytimeMinutes int64    `json:"playtime_minutes"`
	RecentMinutes   int64    `json:"recent_minutes"`
	Genres          []string `json:"genres"`
	Tags            []string `json:"tags"`
}

// Labels returns the union of genres and tags in sorted order.
func (t OwnedTitle) Labels() []string {
	return mergeSorted(t.Genres, t.Tags)
}

// RecentTitle is a title played in the last two weeks.
type RecentTitle struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	RecentMinutes int64  `json:"recent_minutes"`
}

// LibraryStats summarizes the whole owned library, not just the titles kept
// after normalization.
type LibraryStats struct {
	TotalPlaytimeHours float64       `json:"total_playtime_hours"`
	OwnedCount         int           `json:"owned_count"`
	PlayedCount        int           `json:"played_count"`
	UnplayedCount      int           `json:"unplayed_count"`
	Recent             []RecentTitle `json:"recent"`
}

// Library is the normalized, playtime-ordered view of a user's collection.
type Library struct {
	Titles []OwnedTitle
	// Rejected holds the records that failed validation.
	Rejected []error
	// Dropped counts records skipped for having no playtime.
	Dropped int
}

// Len returns the number of titles kept.
func (l *Library) Len() int {
	if l == nil {
		return 0
	}
	return len(l.Titles)
}

// OwnedIDs returns the set of title IDs in the library.
func (l *Library) OwnedIDs() map[int64]struct{} {
	ids := make(map[int64]struct{}, l.Len())
	if l == nil {
		return ids
	}
	for _, t := range l.Titles {
		ids[t.ID] = struct{}{}
	}
	return ids
}

// mergeSorted merges two sorted, de-duplicated slices into one.
func mergeSorted(a, b []string) []string {
	out := make([]string, 0, len(a)+len(b))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] < b[j]:
			out = append(out, a[i])
			i++
		case a[i] > b[j]:
			out = append(out, b[j])
			j++
		default:
			out = append(out, a[i])
			i++
			j++
		}
	}
	out = append(out, a[i:]...)
	return append(out, b[j:]...)
}
