// Package candidates supplies the catalog of not-owned titles that the
// scorer ranks: a static JSON/YAML file or a live store search.
package candidates

import (
	"context"
	"errors"

	"github.com/okian/gametaste/internal/adapters/steam"
	"github.com/okian/gametaste/internal/domain/model"
)

// Sentinel error kinds for this package.
var (
	ErrUnsupportedFormat = errors.New("unsupported candidates file format")
	ErrNoLabels          = errors.New("no labels to search for")
)

// Request describes one run's lookup.
type Request struct {
	// Labels are the user's strongest labels, strongest first.
	Labels []string
	// Details is the run-scoped store lookup cache. May be nil.
	Details *steam.DetailsCache
}

// Source provides candidate titles for a run.
type Source interface {
	Candidates(ctx context.Context, req Request) ([]model.CandidateTitle, error)
}
