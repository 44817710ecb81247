// Package report merges classifier and scorer output into one payload.
package report

import (
	"errors"

	"github.com/okian/gametaste/internal/domain/model"
)

// TopGenreCount is how many labels are reported as the user's top genres.
const TopGenreCount = 3

// ErrNoLabels means the classifier output was empty.
var ErrNoLabels = errors.New("report: no playstyle labels")

// Assemble builds the report. The first label is primary; the rest are
// secondary in order. Inputs are copied, never retained.
func Assemble(labels []model.Label, dist model.Distribution, recs []model.ScoredRecommendation) (model.Report, error) {
	if len(labels) == 0 {
		return model.Report{}, ErrNoLabels
	}
	secondary := make([]model.Label, len(labels)-1)
	copy(secondary, labels[1:])

	out := make([]model.ScoredRecommendation, len(recs))
	copy(out, recs)

	return model.Report{
		PrimaryLabel:    labels[0],
		SecondaryLabels: secondary,
		TopGenres:       dist.Top(TopGenreCount),
		Recommendations: out,
	}, nil
}
