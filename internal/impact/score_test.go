package impact

import "testing"

func f(v float64) *float64 { return &v }

func TestScore_AdditiveAndOrderIndependent(t *testing.T) {
	a := []Contribution{{Hours: f(5)}, {Hours: f(10), Featured: true}}
	b := []Contribution{{Hours: f(10), Featured: true}, {Hours: f(5)}}

	if got := Score(a).Score; got != 20 {
		t.Fatalf("expected 20, got %v", got)
	}
	if Score(a).Score != Score(b).Score {
		t.Fatal("score must not depend on list order")
	}
}

func TestScore_MissingHoursCountZero(t *testing.T) {
	items := []Contribution{{Hours: nil, Featured: true}, {Hours: f(4)}}
	if got := Score(items).Score; got != 4 {
		t.Fatalf("expected 4, got %v", got)
	}
}

func TestScore_EmptyInput(t *testing.T) {
	got := Score(nil)
	if got.Score != 0 || got.Tier != "Bronze" || got.Progress != 0 {
		t.Fatalf("expected 0/Bronze/0, got %+v", got)
	}
	if got.NextTierMin == nil || *got.NextTierMin != 10 {
		t.Fatalf("expected next tier min 10, got %v", got.NextTierMin)
	}
}

func TestTierBoundaries_HalfOpen(t *testing.T) {
	cases := map[float64]string{
		0:     "Bronze",
		9.99:  "Bronze",
		10:    "Silver",
		29.9:  "Silver",
		30:    "Gold",
		50:    "Platinum",
		99.9:  "Platinum",
		100:   "Platinum", // ceiling fallback, not an error
		150:   "Platinum",
	}
	for score, want := range cases {
		if got := TierFor(score).Name; got != want {
			t.Fatalf("score %v: expected %s, got %s", score, want, got)
		}
	}
}

func TestScore_Progress(t *testing.T) {
	// 20 sits halfway between Silver (10) and Gold (30).
	got := Score([]Contribution{{Hours: f(20)}})
	if got.Tier != "Silver" || got.Progress != 0.5 {
		t.Fatalf("expected Silver at 0.5, got %+v", got)
	}

	// Top tier: progress pegged at 1, no next tier.
	top := Score([]Contribution{{Hours: f(80)}})
	if top.Tier != "Platinum" || top.Progress != 1 || top.NextTierMin != nil {
		t.Fatalf("expected Platinum/1/nil, got %+v", top)
	}
}

func TestContributionValue_FeaturedMultiplier(t *testing.T) {
	if got := ContributionValue(f(10), true); got != 15 {
		t.Fatalf("expected 15, got %v", got)
	}
	if got := ContributionValue(f(10), false); got != 10 {
		t.Fatalf("expected 10, got %v", got)
	}
}
