package game

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"time"
)

// ErrInvalidRules is returned when a Rules value cannot drive a game.
var ErrInvalidRules = errors.New("invalid rules")

// Ramp describes the difficulty schedule: the maximum target speed starts at
// Base and grows by Step every Every of elapsed time, never exceeding Cap.
// A zero Every disables the ramp.
type Ramp struct {
	Base  int
	Step  int
	Every time.Duration
	Cap   int
}

// speedAt returns the speed cap for the given elapsed time.
func (r Ramp) speedAt(elapsed time.Duration) int {
	speed := r.Base + int(elapsed/r.Every)*r.Step
	if speed > r.Cap {
		speed = r.Cap
	}
	if speed < 1 {
		speed = 1
	}
	return speed
}

// BonusDrop removes between Min and Max unrelated targets whenever at least
// one contact happens in a frame. The zero value disables it.
type BonusDrop struct {
	Min int
	Max int
}

// Enabled reports whether the policy removes anything.
func (b BonusDrop) Enabled() bool {
	return b.Max > 0
}

// pick returns distinct indices into a population of size n.
func (b BonusDrop) pick(rng *rand.Rand, n int) []int {
	if !b.Enabled() || n == 0 {
		return nil
	}
	count := randRange(rng, b.Min, b.Max)
	if count > n {
		count = n
	}
	return rng.Perm(n)[:count]
}

// KindPolicy decides whether a new target is Good or Bad.
// With Alternate set, even batch positions are Good and odd ones Bad;
// otherwise a target is Good with probability GoodProbability.
type KindPolicy struct {
	GoodProbability float64
	Alternate       bool
}

func (p KindPolicy) pick(rng *rand.Rand, index int) Kind {
	if p.Alternate {
		if index%2 == 0 {
			return Good
		}
		return Bad
	}
	if rng.Float64() < p.GoodProbability {
		return Good
	}
	return Bad
}

// Rules holds every tunable of a game session.
type Rules struct {
	// Width and Height are the logical frame bounds targets move within.
	Width  float64
	Height float64

	// ActivationRadius is the fingertip contact distance.
	ActivationRadius float64

	// Duration is the length of one session.
	Duration time.Duration

	// InitialMin and InitialMax bound the size of the batch spawned by Reset.
	InitialMin int
	InitialMax int

	// MinTargets and MaxTargets bound the population after every update pass.
	MinTargets int
	MaxTargets int

	// ReplaceMin and ReplaceMax bound the batch spawned for each popped target.
	ReplaceMin int
	ReplaceMax int

	// SpeedMax is the speed cap in pixels per frame right after Reset.
	SpeedMax int
	Ramp     Ramp

	GoodReward int
	BadPenalty int
	StartScore int

	// ScoreFloor ends the game when UseScoreFloor is set and the score
	// drops to or below it.
	ScoreFloor    int
	UseScoreFloor bool

	Kinds    KindPolicy
	GoodTags []string
	BadTags  []string

	// GoodFloorBatch is spawned when no Good target is left.
	GoodFloorBatch int

	BonusDrop BonusDrop
}

// Validate checks that the rules describe a playable game.
func (r Rules) Validate() error {
	switch {
	case r.Width <= 0 || r.Height <= 0:
		return fmt.Errorf("%w: frame bounds must be positive", ErrInvalidRules)
	case r.ActivationRadius <= 0:
		return fmt.Errorf("%w: activation radius must be positive", ErrInvalidRules)
	case r.Duration <= 0:
		return fmt.Errorf("%w: duration must be positive", ErrInvalidRules)
	case r.SpeedMax <= 0:
		return fmt.Errorf("%w: speed max must be positive", ErrInvalidRules)
	case r.InitialMin < 0 || r.InitialMin > r.InitialMax:
		return fmt.Errorf("%w: initial batch range %d..%d", ErrInvalidRules, r.InitialMin, r.InitialMax)
	case r.ReplaceMin < 0 || r.ReplaceMin > r.ReplaceMax:
		return fmt.Errorf("%w: replacement range %d..%d", ErrInvalidRules, r.ReplaceMin, r.ReplaceMax)
	case r.MinTargets < 0 || r.MaxTargets <= 0 || r.MinTargets > r.MaxTargets:
		return fmt.Errorf("%w: population bounds %d..%d", ErrInvalidRules, r.MinTargets, r.MaxTargets)
	case r.GoodFloorBatch <= 0:
		return fmt.Errorf("%w: good floor batch must be positive", ErrInvalidRules)
	case r.BonusDrop.Min < 0 || r.BonusDrop.Min > r.BonusDrop.Max:
		return fmt.Errorf("%w: bonus drop range %d..%d", ErrInvalidRules, r.BonusDrop.Min, r.BonusDrop.Max)
	case r.Kinds.GoodProbability < 0 || r.Kinds.GoodProbability > 1:
		return fmt.Errorf("%w: good probability %.2f outside [0,1]", ErrInvalidRules, r.Kinds.GoodProbability)
	case len(r.GoodTags) == 0 || len(r.BadTags) == 0:
		return fmt.Errorf("%w: icon catalogs must not be empty", ErrInvalidRules)
	case r.UseScoreFloor && r.StartScore <= r.ScoreFloor:
		return fmt.Errorf("%w: start score %d is already at the floor", ErrInvalidRules, r.StartScore)
	}

	if r.Ramp.Every > 0 && (r.Ramp.Base <= 0 || r.Ramp.Cap < r.Ramp.Base) {
		return fmt.Errorf("%w: ramp %d..%d", ErrInvalidRules, r.Ramp.Base, r.Ramp.Cap)
	}
	if r.Ramp.Every > 0 && r.Ramp.Step < 0 {
		return fmt.Errorf("%w: ramp step %d must not be negative", ErrInvalidRules, r.Ramp.Step)
	}

	return nil
}

// randRange returns a uniform integer in [lo, hi].
func randRange(rng *rand.Rand, lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + rng.IntN(hi-lo+1)
}
