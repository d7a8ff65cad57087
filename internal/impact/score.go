package impact

// FeaturedMultiplier is the weight applied to hours from opportunities
// flagged featured.
const FeaturedMultiplier = 1.5

// Tier is a named score band, half-open [Min, Max).
type Tier struct {
	Name string  `json:"name"`
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
}

// Tiers in ascending order. Scores at or beyond the last band's max stay in
// the last band.
var Tiers = []Tier{
	{Name: "Bronze", Min: 0, Max: 10},
	{Name: "Silver", Min: 10, Max: 30},
	{Name: "Gold", Min: 30, Max: 50},
	{Name: "Platinum", Min: 50, Max: 100},
}

// Contribution is one verified proof's share of a user's score: the linked
// opportunity's hours and featured flag. Unverified proofs must not appear
// here at all.
type Contribution struct {
	Hours    *float64
	Featured bool
}

type ScoreResult struct {
	Score       float64  `json:"score"`
	Tier        string   `json:"tier"`
	NextTierMin *float64 `json:"next_tier_min"` // nil when already in the top tier
	Progress    float64  `json:"progress"`      // fraction toward the next tier, [0, 1]
}

// ContributionValue computes hours × featured-multiplier. Missing hours count
// as zero rather than erroring or skipping the rest of the list.
func ContributionValue(hours *float64, featured bool) float64 {
	if hours == nil {
		return 0
	}
	if featured {
		return *hours * FeaturedMultiplier
	}
	return *hours
}

// Score sums the contributions and classifies the total into a tier.
// Total over any input, including empty; order-independent.
func Score(items []Contribution) ScoreResult {
	var total float64
	for _, item := range items {
		total += ContributionValue(item.Hours, item.Featured)
	}

	idx := tierIndex(total)
	tier := Tiers[idx]

	result := ScoreResult{Score: total, Tier: tier.Name, Progress: 1}
	if idx+1 < len(Tiers) {
		next := Tiers[idx+1]
		result.NextTierMin = &next.Min
		result.Progress = clamp((total-tier.Min)/(next.Min-tier.Min), 0, 1)
	}
	return result
}

// TierFor returns the first band whose [Min, Max) contains the score, or the
// last band as a ceiling for scores beyond all bands.
func TierFor(score float64) Tier {
	return Tiers[tierIndex(score)]
}

func tierIndex(score float64) int {
	for i, t := range Tiers {
		if score >= t.Min && score < t.Max {
			return i
		}
	}
	return len(Tiers) - 1
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
