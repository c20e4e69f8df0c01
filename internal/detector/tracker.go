package detector

import (
	"fmt"

	"gocv.io/x/gocv"

	"github.com/ayusman/panicpoppers/internal/driver"
	"github.com/ayusman/panicpoppers/internal/game"
)

// Tracker reduces hand landmarks to the index fingertip in game coordinates.
// It satisfies driver.Detector for frames that are *gocv.Mat.
type Tracker struct {
	det      Detector
	width    float64
	height   float64
	minScore float64
}

// NewTracker scales normalized landmarks to a width x height board and
// ignores hands scoring below minScore.
func NewTracker(det Detector, width, height, minScore float64) *Tracker {
	return &Tracker{
		det:      det,
		width:    width,
		height:   height,
		minScore: minScore,
	}
}

// Fingertip implements driver.Detector.
func (t *Tracker) Fingertip(frame driver.Frame) (game.Vec2, bool, error) {
	mat, ok := frame.(*gocv.Mat)
	if !ok {
		return game.Vec2{}, false, fmt.Errorf("fingertip: unsupported frame type %T", frame)
	}

	hands, err := t.det.Detect(mat)
	if err != nil {
		return game.Vec2{}, false, fmt.Errorf("detect hands: %w", err)
	}

	tip, ok := t.locate(hands)
	return tip, ok, nil
}

func (t *Tracker) locate(hands []HandLandmarks) (game.Vec2, bool) {
	hand, ok := BestHand(hands, t.minScore)
	if !ok || !hand.InFrame(IndexTip) {
		return game.Vec2{}, false
	}

	p := hand.Points[IndexTip]
	return game.Vec2{X: p.X * t.width, Y: p.Y * t.height}, true
}

// Close closes the underlying detector.
func (t *Tracker) Close() error {
	return t.det.Close()
}
