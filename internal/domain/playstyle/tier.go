package playstyle

import "github.com/okian/gametaste/internal/domain/model"

var tiers = []struct {
	tier     model.Tier
	minHours float64
	minOwned int
}{
	{model.TierS, 5000, 100},
	{model.TierA, 2000, 50},
	{model.TierB, 500, 20},
	{model.TierC, 100, 10},
}

// Tier grades a library by total hours played and number of titles owned.
// Both bounds of a tier must be met.
func Tier(totalHours float64, ownedCount int) model.Tier {
	for _, t := range tiers {
		if totalHours >= t.minHours && ownedCount >= t.minOwned {
			return t.tier
		}
	}
	return model.TierD
}
