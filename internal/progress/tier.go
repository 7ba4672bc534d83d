package progress

type Tier string

// Tiers are ordered lowest to highest; a new tier is reached every LevelsPerTier levels.
var Tiers = []Tier{"E", "D", "C", "B", "A", "S"}

const LevelsPerTier = 20

// TierForLevel is the only way a tier is derived. Levels past the last tier stay at S.
func TierForLevel(level int) Tier {
	idx := level / LevelsPerTier
	if idx < 0 {
		idx = 0
	}
	if idx >= len(Tiers) {
		idx = len(Tiers) - 1
	}
	return Tiers[idx]
}
