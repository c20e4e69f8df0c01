// Package detector finds hands in camera frames and reduces them to the
// index fingertip the game tracks.
package detector

// Hand landmark indices following MediaPipe convention.
// See: https://developers.google.com/mediapipe/solutions/vision/hand_landmarker
const (
	Wrist        = 0
	ThumbTip     = 4
	IndexMCP     = 5
	IndexPIP     = 6
	IndexDIP     = 7
	IndexTip     = 8
	MiddleMCP    = 9
	MiddleTip    = 12
	RingTip      = 16
	PinkyTip     = 20
	NumLandmarks = 21
)

// Point3D is a landmark in normalized image coordinates: X and Y in [0,1]
// from the top-left corner, Z relative depth.
type Point3D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// HandLandmarks represents the 21 hand landmarks detected by MediaPipe.
type HandLandmarks struct {
	Points     [NumLandmarks]Point3D `json:"points"`
	Handedness string                `json:"handedness"` // "Left" or "Right"
	Score      float64               `json:"score"`
}

// InFrame reports whether landmark i lies inside the image.
func (h HandLandmarks) InFrame(i int) bool {
	p := h.Points[i]
	return p.X >= 0 && p.X <= 1 && p.Y >= 0 && p.Y <= 1
}

// BestHand returns the most confident hand scoring at least minScore.
func BestHand(hands []HandLandmarks, minScore float64) (HandLandmarks, bool) {
	best := -1
	for i, h := range hands {
		if h.Score < minScore {
			continue
		}
		if best < 0 || h.Score > hands[best].Score {
			best = i
		}
	}
	if best < 0 {
		return HandLandmarks{}, false
	}
	return hands[best], true
}
