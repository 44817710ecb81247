// Package preference reduces a normalized library into a label distribution
// and playstyle metrics.
package preference

import (
	"fmt"
	"math"
	"time"

	"github.com/okian/gametaste/internal/domain/catalog"
	"github.com/okian/gametaste/internal/domain/model"
	"github.com/okian/gametaste/pkg/metrics"
)

// concentrationTop is how many titles count towards the concentration ratio.
const concentrationTop = 3

// Weight is a title's total contribution: the square root of its playtime in
// minutes, so one outlier cannot erase the signal from the rest of the library.
func Weight(t model.OwnedTitle) float64 {
	if t.PlaytimeMinutes <= 0 {
		return 0
	}
	return math.Sqrt(float64(t.PlaytimeMinutes))
}

// Contributions splits a title's weight evenly across its genre and tag union.
// A title with no labels contributes nothing.
func Contributions(t model.OwnedTitle) map[string]float64 {
	labels := t.Labels()
	out := make(map[string]float64, len(labels))
	if len(labels) == 0 {
		return out
	}
	share := Weight(t) / float64(len(labels))
	if share == 0 {
		return out
	}
	for _, l := range labels {
		out[l] = share
	}
	return out
}

// Aggregate builds the preference distribution and playstyle metrics.
// Titles are visited in library order and labels in sorted order so that
// identical input always produces identical output.
func Aggregate(lib *model.Library) (model.Distribution, model.Metrics, error) {
	if lib.Len() == 0 {
		return nil, model.Metrics{}, fmt.Errorf("aggregate: %w", catalog.ErrEmptyLibrary)
	}
	start := time.Now()
	defer func() {
		metrics.RecordStageLatency("aggregate", float64(time.Since(start).Microseconds())/1000)
	}()

	dist := make(model.Distribution)
	genres := make(map[string]struct{})
	var total, top int64

	for i, t := range lib.Titles {
		total += t.PlaytimeMinutes
		if i < concentrationTop {
			top += t.PlaytimeMinutes
		}
		for _, g := range t.Genres {
			genres[g] = struct{}{}
		}

		labels := t.Labels()
		if len(labels) == 0 {
			continue
		}
		share := Weight(t) / float64(len(labels))
		if share == 0 {
			continue
		}
		for _, l := range labels {
			dist[l] += share
		}
	}

	m := model.Metrics{
		TotalPlaytime: total,
		TitleCount:    len(lib.Titles),
		BreadthScore:  float64(len(genres)) / float64(len(lib.Titles)),
	}
	if total > 0 {
		m.ConcentrationRatio = float64(top) / float64(total)
	}
	return dist, m, nil
}
