package driver

import (
	"fmt"
	"image/color"

	"golang.org/x/image/colornames"

	"github.com/ayusman/panicpoppers/internal/game"
)

// TextSize selects one of the renderer's two fonts.
type TextSize int

const (
	TextNormal TextSize = iota
	TextLarge
)

// TextStyle describes how a string is drawn.
type TextStyle struct {
	Size  TextSize
	Color color.RGBA
	// Center anchors the text at its centre instead of its top-left corner.
	Center bool
}

// Renderer draws primitives in logical frame coordinates and presents the
// result. Implementations scale to their own surface.
type Renderer interface {
	// Background clears the surface and draws the camera frame, which is nil
	// outside of play.
	Background(frame Frame)
	// Icon draws a target of the given tag centred on c.
	Icon(c game.Vec2, radius float64, tag string)
	// Ring draws an unfilled circle.
	Ring(c game.Vec2, radius float64, col color.RGBA)
	Text(at game.Vec2, s string, style TextStyle)
	Present() error
}

// Layout of the HUD and overlays in logical coordinates.
var (
	hudScore = game.Vec2{X: 10, Y: 10}
	hudTime  = game.Vec2{X: 10, Y: 50}

	hudStyle    = TextStyle{Size: TextNormal, Color: colornames.Orange}
	haloColor   = colornames.Yellow
	titleStyle  = TextStyle{Size: TextLarge, Color: colornames.Orange, Center: true}
	promptStyle = TextStyle{Size: TextNormal, Color: colornames.White, Center: true}
	resultStyle = TextStyle{Size: TextNormal, Color: colornames.Orange, Center: true}
)

// Draw renders one snapshot through r.
func Draw(r Renderer, snap Snapshot, frame Frame) error {
	r.Background(frame)

	switch snap.Phase {
	case game.Playing:
		drawPlaying(r, snap)
	case game.Over:
		drawGameOver(r, snap)
	case game.Splash:
		drawSplash(r, snap)
	}

	return r.Present()
}

func drawPlaying(r Renderer, snap Snapshot) {
	for _, t := range snap.Targets {
		r.Icon(t.Pos, snap.Radius, t.Tag)
	}
	if snap.HasFingertip {
		r.Ring(snap.Fingertip, snap.Radius, haloColor)
	}

	r.Text(hudScore, fmt.Sprintf("Score: %d", snap.Score), hudStyle)
	r.Text(hudTime, fmt.Sprintf("Time left: %d", int(snap.Remaining.Seconds())), hudStyle)
}

func drawGameOver(r Renderer, snap Snapshot) {
	mid := game.Vec2{X: snap.Bounds.X / 2, Y: snap.Bounds.Y / 2}

	r.Text(game.Vec2{X: mid.X, Y: mid.Y - 60}, "Game Over", titleStyle)
	r.Text(mid, OutcomeMessage(snap.Outcome, snap.Score), resultStyle)

	prompt := "Press R to Restart"
	if snap.Splash {
		prompt = "Press R to Restart or S for Splash Screen"
	}
	r.Text(game.Vec2{X: mid.X, Y: mid.Y + 50}, prompt, promptStyle)
}

func drawSplash(r Renderer, snap Snapshot) {
	mid := game.Vec2{X: snap.Bounds.X / 2, Y: snap.Bounds.Y / 2}

	r.Text(game.Vec2{X: mid.X, Y: mid.Y - 60}, "Panic Poppers", titleStyle)
	r.Text(game.Vec2{X: mid.X, Y: mid.Y + 20}, "Press SPACE to start the game", promptStyle)
}

// OutcomeMessage is the result line of the game-over screen.
func OutcomeMessage(o game.Outcome, score int) string {
	if o == game.Survived {
		return fmt.Sprintf("Congratulations You Survived! Your Score: %d", score)
	}
	return fmt.Sprintf("Sorry You LOSE! Your Score: %d", score)
}
