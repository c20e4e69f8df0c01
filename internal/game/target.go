// Package game holds the rules of the popping game: the moving targets, the
// score and the session phase. It has no knowledge of cameras, windows or
// hand detection.
package game

import "math"

// Vec2 is a point or velocity in frame coordinates.
type Vec2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Dist returns the Euclidean distance between two points.
func (v Vec2) Dist(o Vec2) float64 {
	return math.Hypot(v.X-o.X, v.Y-o.Y)
}

// Kind tells whether popping a target rewards or penalises the player.
type Kind int

const (
	Good Kind = iota
	Bad
)

func (k Kind) String() string {
	switch k {
	case Good:
		return "good"
	case Bad:
		return "bad"
	default:
		return "unknown"
	}
}

// Target is one moving item on screen.
type Target struct {
	ID   uint64 `json:"id"`
	Pos  Vec2   `json:"pos"`
	Vel  Vec2   `json:"vel"`
	Kind Kind   `json:"kind"`
	// Tag names the icon or colour used to draw the target.
	Tag string `json:"tag"`
}

// Phase is the coarse state of a session.
type Phase int

const (
	Splash Phase = iota
	Playing
	Over
)

func (p Phase) String() string {
	switch p {
	case Splash:
		return "splash"
	case Playing:
		return "playing"
	case Over:
		return "over"
	default:
		return "unknown"
	}
}

// Outcome summarises a finished session.
type Outcome int

const (
	Lost Outcome = iota
	Survived
)

func (o Outcome) String() string {
	if o == Survived {
		return "survived"
	}
	return "lost"
}
