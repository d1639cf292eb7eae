package progression

type Tier string

const (
	TierBeginner     Tier = "Beginner"
	TierIntermediate Tier = "Intermediate"
	TierAdvanced     Tier = "Advanced"
	TierElite        Tier = "Elite"
	TierLegend       Tier = "Legend"
)

type tierBand struct {
	tier     Tier
	minLevel int
	maxLevel int // 0 means open-ended
}

var tierBands = []tierBand{
	{tier: TierBeginner, minLevel: 1, maxLevel: 4},
	{tier: TierIntermediate, minLevel: 5, maxLevel: 9},
	{tier: TierAdvanced, minLevel: 10, maxLevel: 24},
	{tier: TierElite, minLevel: 25, maxLevel: 49},
	{tier: TierLegend, minLevel: 50},
}

func TierOf(level int) Tier {
	for i := len(tierBands) - 1; i >= 0; i-- {
		if level >= tierBands[i].minLevel {
			return tierBands[i].tier
		}
	}
	return TierBeginner
}

// Range returns the first and last level of the tier; last is 0 for Legend.
func (t Tier) Range() (first, last int) {
	for _, b := range tierBands {
		if b.tier == t {
			return b.minLevel, b.maxLevel
		}
	}
	return 0, 0
}

func (t Tier) String() string {
	return string(t)
}
