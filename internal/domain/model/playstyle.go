package model

// Label is a playstyle classification.
type Label string

const (
	LabelImmersive     Label = "immersive"
	LabelExplorer      Label = "explorer"
	LabelCasualBreadth Label = "casual-breadth"
	LabelBalanced      Label = "balanced"
)

// Valid reports whether l is one of the known labels.
func (l Label) Valid() bool {
	switch l {
	case LabelImmersive, LabelExplorer, LabelCasualBreadth, LabelBalanced:
		return true
	}
	return false
}

// Tier is a coarse S..D grade of library size and total hours.
type Tier string

const (
	TierS Tier = "S"
	TierA Tier = "A"
	TierB Tier = "B"
	TierC Tier = "C"
	TierD Tier = "D"
)
