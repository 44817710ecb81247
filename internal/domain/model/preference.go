package model

import "sort"

// Distribution maps a genre/tag label to the user's affinity weight.
// Every present label has a weight > 0.
type Distribution map[string]float64

// LabelWeight is a single distribution entry.
type LabelWeight struct {
	Label  string  `json:"label"`
	Weight float64 `json:"weight"`
}

// Ranked returns entries ordered by weight desc, then label asc.
func (d Distribution) Ranked() []LabelWeight {
	out := make([]LabelWeight, 0, len(d))
	for label, w := range d {
		out = append(out, LabelWeight{Label: label, Weight: w})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Weight != out[j].Weight {
			return out[i].Weight > out[j].Weight
		}
		return out[i].Label < out[j].Label
	})
	return out
}

// Top returns at most n entries from Ranked.
func (d Distribution) Top(n int) []LabelWeight {
	ranked := d.Ranked()
	if n < 0 {
		n = 0
	}
	if n < len(ranked) {
		ranked = ranked[:n]
	}
	return ranked
}

// Metrics summarizes how playtime spreads across a library.
type Metrics struct {
	TotalPlaytime      int64   `json:"total_playtime_minutes"`
	TitleCount         int     `json:"title_count"`
	ConcentrationRatio float64 `json:"concentration_ratio"`
	BreadthScore       float64 `json:"breadth_score"`
}
