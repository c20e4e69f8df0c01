package game

import (
	"math/rand/v2"
	"time"
)

// ContactResult describes what a single CheckContact call changed.
type ContactResult struct {
	// Removed are the targets the fingertip touched.
	Removed []Target
	// Dropped are the unrelated targets taken away by the bonus drop.
	Dropped []Target
	// Spawned is the number of replacement targets added.
	Spawned int
	// ScoreDelta is the change applied to the score.
	ScoreDelta int
}

// Hit reports whether at least one target was touched.
func (r ContactResult) Hit() bool {
	return len(r.Removed) > 0
}

// State is the game model. It is not safe for concurrent use; the frame
// driver owns it.
type State struct {
	rules    Rules
	rng      *rand.Rand
	targets  []Target
	score    int
	phase    Phase
	elapsed  time.Duration
	speedMax int
	nextID   uint64
}

// New creates a State in the Splash phase with no targets.
func New(rules Rules, rng *rand.Rand) (*State, error) {
	if err := rules.Validate(); err != nil {
		return nil, err
	}
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	return &State{
		rules:    rules,
		rng:      rng,
		phase:    Splash,
		score:    rules.StartScore,
		speedMax: rules.SpeedMax,
	}, nil
}

// Rules returns the rules the state was created with.
func (s *State) Rules() Rules { return s.rules }

// Targets returns the live targets. The slice must not be modified.
func (s *State) Targets() []Target { return s.targets }

// Score returns the current score.
func (s *State) Score() int { return s.score }

// Phase returns the current phase.
func (s *State) Phase() Phase { return s.phase }

// Elapsed returns the session time seen by the last UpdatePhase call.
func (s *State) Elapsed() time.Duration { return s.elapsed }

// Remaining returns the time left in the session, never negative.
func (s *State) Remaining() time.Duration {
	left := s.rules.Duration - s.elapsed
	if left < 0 {
		return 0
	}
	return left
}

// SpeedMax returns the speed cap used for newly spawned targets.
func (s *State) SpeedMax() int { return s.speedMax }

// Level returns the difficulty step reached, 0 when the ramp is disabled.
func (s *State) Level() int {
	if s.rules.Ramp.Every <= 0 {
		return 0
	}
	return int(s.elapsed / s.rules.Ramp.Every)
}

// Outcome reports whether the player finished with a positive score.
func (s *State) Outcome() Outcome {
	if s.score > 0 {
		return Survived
	}
	return Lost
}

// Reset starts a new session.
func (s *State) Reset() {
	s.targets = s.targets[:0]
	s.score = s.rules.StartScore
	s.elapsed = 0
	s.speedMax = s.rules.SpeedMax
	s.phase = Playing
	s.SpawnBatch(randRange(s.rng, s.rules.InitialMin, s.rules.InitialMax))
}

// ShowSplash moves the session to the Splash phase. Targets are kept so the
// splash can be drawn over the last board.
func (s *State) ShowSplash() {
	s.phase = Splash
}

// SpawnBatch appends n new targets.
func (s *State) SpawnBatch(n int) {
	for i := 0; i < n; i++ {
		s.targets = append(s.targets, s.newTarget(s.rules.Kinds.pick(s.rng, i)))
	}
}

func (s *State) newTarget(kind Kind) Target {
	s.nextID++
	return Target{
		ID: s.nextID,
		Pos: Vec2{
			X: float64(s.rng.IntN(int(s.rules.Width) + 1)),
			Y: float64(s.rng.IntN(int(s.rules.Height) + 1)),
		},
		Vel: Vec2{
			X: float64(s.randSpeed()),
			Y: float64(s.randSpeed()),
		},
		Kind: kind,
		Tag:  s.randTag(kind),
	}
}

// randSpeed draws from {-max..-1} ∪ {1..max}.
func (s *State) randSpeed() int {
	v := s.rng.IntN(s.speedMax) + 1
	if s.rng.IntN(2) == 0 {
		return -v
	}
	return v
}

func (s *State) randTag(kind Kind) string {
	tags := s.rules.BadTags
	if kind == Good {
		tags = s.rules.GoodTags
	}
	return tags[s.rng.IntN(len(tags))]
}

// Advance moves every target by its velocity scaled by dt frames. A component
// that leaves the frame is clamped to the bound and its velocity negated,
// independently per axis.
func (s *State) Advance(dt float64) {
	for i := range s.targets {
		t := &s.targets[i]
		t.Pos.X, t.Vel.X = reflect(t.Pos.X+t.Vel.X*dt, t.Vel.X, s.rules.Width)
		t.Pos.Y, t.Vel.Y = reflect(t.Pos.Y+t.Vel.Y*dt, t.Vel.Y, s.rules.Height)
	}
}

func reflect(pos, vel, bound float64) (float64, float64) {
	switch {
	case pos < 0:
		return 0, -vel
	case pos > bound:
		return bound, -vel
	default:
		return pos, vel
	}
}

// CheckContact pops every target closer than radius to p, applies the score
// change, spawns replacements and runs the bonus drop when anything was hit.
func (s *State) CheckContact(p Vec2, radius float64) ContactResult {
	var res ContactResult
	if len(s.targets) == 0 {
		return res
	}

	kept := s.targets[:0]
	for _, t := range s.targets {
		if t.Pos.Dist(p) < radius {
			res.Removed = append(res.Removed, t)
			continue
		}
		kept = append(kept, t)
	}
	s.targets = kept

	if !res.Hit() {
		return res
	}

	for _, t := range res.Removed {
		if t.Kind == Good {
			res.ScoreDelta += s.rules.GoodReward
		} else {
			res.ScoreDelta -= s.rules.BadPenalty
		}

		n := randRange(s.rng, s.rules.ReplaceMin, s.rules.ReplaceMax)
		s.SpawnBatch(n)
		res.Spawned += n
	}
	s.score += res.ScoreDelta

	res.Dropped = s.bonusDrop()

	return res
}

// bonusDrop removes the targets chosen by the bonus drop policy.
func (s *State) bonusDrop() []Target {
	idx := s.rules.BonusDrop.pick(s.rng, len(s.targets))
	if len(idx) == 0 {
		return nil
	}

	drop := make(map[int]bool, len(idx))
	for _, i := range idx {
		drop[i] = true
	}

	var dropped []Target
	kept := s.targets[:0]
	for i, t := range s.targets {
		if drop[i] {
			dropped = append(dropped, t)
			continue
		}
		kept = append(kept, t)
	}
	s.targets = kept

	return dropped
}

// EnforcePopulationBounds tops the population up to MinTargets or truncates
// it to MaxTargets, keeping the oldest targets.
func (s *State) EnforcePopulationBounds() {
	switch n := len(s.targets); {
	case n < s.rules.MinTargets:
		s.SpawnBatch(s.rules.MinTargets - n)
	case n > s.rules.MaxTargets:
		s.targets = s.targets[:s.rules.MaxTargets]
	}
}

// EnforceGoodFloor spawns GoodFloorBatch targets when no Good target is left.
// The first target of that batch is always Good. When the batch would exceed
// MaxTargets the oldest targets, all Bad at this point, make room for it.
func (s *State) EnforceGoodFloor() {
	for _, t := range s.targets {
		if t.Kind == Good {
			return
		}
	}

	batch := s.rules.GoodFloorBatch
	if batch > s.rules.MaxTargets {
		batch = s.rules.MaxTargets
	}
	if over := len(s.targets) + batch - s.rules.MaxTargets; over > 0 {
		s.targets = append(s.targets[:0], s.targets[over:]...)
	}

	s.targets = append(s.targets, s.newTarget(Good))
	s.SpawnBatch(batch - 1)
}

// UpdateDifficulty raises the speed cap for new targets following the ramp.
// Targets already on screen keep their velocity.
func (s *State) UpdateDifficulty(elapsed time.Duration) {
	if s.rules.Ramp.Every <= 0 {
		return
	}
	s.speedMax = s.rules.Ramp.speedAt(elapsed)
}

// UpdatePhase records the elapsed session time and ends the session when the
// time is up or the score fell to the floor. It reports whether the phase
// changed.
func (s *State) UpdatePhase(elapsed time.Duration) bool {
	if s.phase != Playing {
		return false
	}
	s.elapsed = elapsed

	if elapsed >= s.rules.Duration || (s.rules.UseScoreFloor && s.score <= s.rules.ScoreFloor) {
		s.phase = Over
		return true
	}
	return false
}
