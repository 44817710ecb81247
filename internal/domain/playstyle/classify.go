// Package playstyle maps library metrics to discrete playstyle labels.
package playstyle

import (
	"sort"

	"github.com/okian/gametaste/internal/domain/model"
)

// Thresholds tunes the rule table. The shape of the rules is fixed.
type Thresholds struct {
	ImmersiveConcentration float64
	ExplorerBreadth        float64
	CasualMinTitles        int
	CasualMaxConcentration float64
}

// DefaultThresholds returns the documented rule constants.
func DefaultThresholds() Thresholds {
	return Thresholds{
		ImmersiveConcentration: 0.6,
		ExplorerBreadth:        0.5,
		CasualMinTitles:        30,
		CasualMaxConcentration: 0.3,
	}
}

// Option applies a configuration option to the Classifier.
type Option func(*Classifier)

// WithThresholds replaces the default thresholds. Non-positive fields keep their default.
func WithThresholds(t Thresholds) Option {
	return func(c *Classifier) {
		if t.ImmersiveConcentration > 0 {
			c.th.ImmersiveConcentration = t.ImmersiveConcentration
		}
		if t.ExplorerBreadth > 0 {
			c.th.ExplorerBreadth = t.ExplorerBreadth
		}
		if t.CasualMinTitles > 0 {
			c.th.CasualMinTitles = t.CasualMinTitles
		}
		if t.CasualMaxConcentration > 0 {
			c.th.CasualMaxConcentration = t.CasualMaxConcentration
		}
	}
}

// Classifier is a pure rule table over model.Metrics.
type Classifier struct {
	th Thresholds
}

// NewClassifier creates a Classifier with default thresholds.
func NewClassifier(opts ...Option) *Classifier {
	c := &Classifier{th: DefaultThresholds()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Thresholds returns the active thresholds.
func (c *Classifier) Thresholds() Thresholds { return c.th }

// Match is a fired rule and the strength of the signal that fired it, in [0,1].
type Match struct {
	Label    model.Label `json:"label"`
	Strength float64     `json:"strength"`
}

// Evaluate returns every fired rule ordered by strength desc. Equal strengths
// keep rule-table order: immersive, explorer, casual-breadth. When nothing
// fires the result is a single balanced match.
func (c *Classifier) Evaluate(m model.Metrics) []Match {
	matches := make([]Match, 0, 3)
	if m.ConcentrationRatio >= c.th.ImmersiveConcentration {
		matches = append(matches, Match{Label: model.LabelImmersive, Strength: clamp(m.ConcentrationRatio)})
	}
	if m.BreadthScore >= c.th.ExplorerBreadth {
		matches = append(matches, Match{Label: model.LabelExplorer, Strength: clamp(m.BreadthScore)})
	}
	if m.TitleCount >= c.th.CasualMinTitles && m.ConcentrationRatio < c.th.CasualMaxConcentration {
		matches = append(matches, Match{Label: model.LabelCasualBreadth, Strength: clamp(1 - m.ConcentrationRatio)})
	}
	if len(matches) == 0 {
		return []Match{{Label: model.LabelBalanced}}
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Strength > matches[j].Strength
	})
	return matches
}

// Classify returns the labels of Evaluate, primary first. Never empty.
func (c *Classifier) Classify(m model.Metrics) []model.Label {
	matches := c.Evaluate(m)
	labels := make([]model.Label, len(matches))
	for i, mt := range matches {
		labels[i] = mt.Label
	}
	return labels
}

func clamp(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
