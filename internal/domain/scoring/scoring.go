// Package scoring ranks catalog candidates against a preference distribution.
package scoring

import (
	"sort"
	"time"

	"github.com/okian/gametaste/internal/domain/catalog"
	"github.com/okian/gametaste/internal/domain/model"
	"github.com/okian/gametaste/pkg/metrics"
)

const defaultMatchedLabels = 3

// Option applies a configuration option to the Scorer.
type Option func(*Scorer)

// WithMatchedLabels sets how many shared labels are reported per recommendation.
func WithMatchedLabels(n int) Option {
	return func(s *Scorer) {
		if n > 0 {
			s.matched = n
		}
	}
}

// Scorer is stateless; one instance can serve concurrent runs.
type Scorer struct {
	matched int
}

// NewScorer creates a Scorer with configuration options.
func NewScorer(opts ...Option) *Scorer {
	s := &Scorer{matched: defaultMatchedLabels}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Score ranks candidates not present in owned, returning at most n results
// ordered by score desc then ID asc. A candidate's score is the sum of the
// distribution weights of its labels divided by its label count; candidates
// with no overlap are dropped. When fewer than n survive, the partial list is
// returned with an *InsufficientCandidatesError.
func (s *Scorer) Score(dist model.Distribution, candidates []model.CandidateTitle, owned map[int64]struct{}, n int) ([]model.ScoredRecommendation, error) {
	if n < 1 {
		return nil, ErrInvalidLimit
	}
	start := time.Now()
	defer func() {
		metrics.RecordStageLatency("score", float64(time.Since(start).Microseconds())/1000)
	}()

	seen := make(map[int64]struct{}, len(candidates))
	scored := make([]model.ScoredRecommendation, 0, len(candidates))

	for _, c := range candidates {
		if _, ok := owned[c.ID]; ok {
			continue
		}
		if _, dup := seen[c.ID]; dup {
			continue
		}
		seen[c.ID] = struct{}{}

		labels := catalog.NormalizeLabels(append(append([]string{}, c.Genres...), c.Tags...))
		if len(labels) == 0 {
			continue
		}

		var sum float64
		shared := make([]model.LabelWeight, 0, len(labels))
		for _, l := range labels {
			if w := dist[l]; w > 0 {
				sum += w
				shared = append(shared, model.LabelWeight{Label: l, Weight: w})
			}
		}
		if len(shared) == 0 {
			continue
		}
		sortByWeight(shared)

		scored = append(scored, model.ScoredRecommendation{
			Candidate:     c,
			Score:         sum / float64(len(labels)),
			MatchedLabels: topLabels(shared, s.matched),
			Reason: model.Reason{
				Shared:      shared,
				SharedCount: len(shared),
				LabelCount:  len(labels),
				Coverage:    float64(len(shared)) / float64(len(labels)),
			},
		})
	}

	sort.Slice(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		return scored[i].Candidate.ID < scored[j].Candidate.ID
	})

	if len(scored) > n {
		scored = scored[:n]
	}
	metrics.RecordRecommendations(len(scored))
	if len(scored) < n {
		metrics.RecordInsufficientCandidates()
		return scored, &InsufficientCandidatesError{Want: n, Have: len(scored)}
	}
	return scored, nil
}

func sortByWeight(lw []model.LabelWeight) {
	sort.Slice(lw, func(i, j int) bool {
		if lw[i].Weight != lw[j].Weight {
			return lw[i].Weight > lw[j].Weight
		}
		return lw[i].Label < lw[j].Label
	})
}

func topLabels(lw []model.LabelWeight, n int) []string {
	if len(lw) < n {
		n = len(lw)
	}
	out := make([]string, n)
	for i := range out {
		out[i] = lw[i].Label
	}
	return out
}
