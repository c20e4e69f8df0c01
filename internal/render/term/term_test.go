package term

import (
	"image"
	"image/draw"
	"strings"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"golang.org/x/image/colornames"

	"github.com/ayusman/panicpoppers/internal/driver"
	"github.com/ayusman/panicpoppers/internal/game"
	"github.com/ayusman/panicpoppers/internal/render"
)

func newSimRenderer(t *testing.T, inset, mirror bool) (*Renderer, tcell.SimulationScreen) {
	t.Helper()

	screen := tcell.NewSimulationScreen("")
	if err := screen.Init(); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	screen.SetSize(64, 24)

	r := New(screen, 640, 480, inset, mirror)
	t.Cleanup(r.Close)
	return r, screen
}

func cellAt(screen tcell.SimulationScreen, x, y int) tcell.SimCell {
	cells, w, _ := screen.GetContents()
	return cells[y*w+x]
}

func row(screen tcell.SimulationScreen, y int) string {
	cells, w, _ := screen.GetContents()
	var b strings.Builder
	for x := 0; x < w; x++ {
		c := cells[y*w+x]
		if len(c.Runes) > 0 {
			b.WriteRune(c.Runes[0])
		}
	}
	return b.String()
}

type splitFrame struct{}

func (splitFrame) Close() error { return nil }

// ToImage returns an image that is red on the left half and blue on the right.
func (splitFrame) ToImage() (image.Image, error) {
	img := image.NewRGBA(image.Rect(0, 0, 100, 50))
	draw.Draw(img, image.Rect(0, 0, 50, 50), image.NewUniform(colornames.Red), image.Point{}, draw.Src)
	draw.Draw(img, image.Rect(50, 0, 100, 50), image.NewUniform(colornames.Blue), image.Point{}, draw.Src)
	return img, nil
}

func background(c tcell.SimCell) tcell.Color {
	_, bg, _ := c.Style.Decompose()
	return bg
}

func TestBackground(t *testing.T) {
	red := tcell.FromImageColor(colornames.Red)
	blue := tcell.FromImageColor(colornames.Blue)

	tests := []struct {
		name      string
		frame     driver.Frame
		mirror    bool
		inset     bool
		wantLeft  tcell.Color
		wantRight tcell.Color
	}{
		{
			name:      "no frame",
			wantLeft:  tcell.FromImageColor(render.Backdrop),
			wantRight: tcell.FromImageColor(render.Backdrop),
		},
		{name: "frame", frame: splitFrame{}, wantLeft: red, wantRight: blue},
		{name: "mirrored frame", frame: splitFrame{}, mirror: true, wantLeft: blue, wantRight: red},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, screen := newSimRenderer(t, tt.inset, tt.mirror)

			r.Background(tt.frame)
			if err := r.Present(); err != nil {
				t.Fatalf("Present() error = %v", err)
			}

			if got := background(cellAt(screen, 2, 10)); got != tt.wantLeft {
				t.Errorf("left background = %v, want %v", got, tt.wantLeft)
			}
			if got := background(cellAt(screen, 61, 10)); got != tt.wantRight {
				t.Errorf("right background = %v, want %v", got, tt.wantRight)
			}
		})
	}
}

func TestBackground_Inset(t *testing.T) {
	r, screen := newSimRenderer(t, true, false)

	r.Background(splitFrame{})
	r.Present()

	inset := render.PreviewRect(image.Rect(0, 0, 64, 24))
	backdrop := tcell.FromImageColor(render.Backdrop)
	if got := background(cellAt(screen, 2, 2)); got != backdrop {
		t.Errorf("outside inset = %v, want backdrop", got)
	}
	if got := background(cellAt(screen, inset.Min.X, inset.Min.Y)); got != tcell.FromImageColor(colornames.Red) {
		t.Errorf("inset corner = %v, want red", got)
	}
}

func TestIconRingText(t *testing.T) {
	r, screen := newSimRenderer(t, false, false)
	r.Background(nil)

	// 640x480 onto 64x24: ten pixels per column, twenty per row.
	r.Icon(game.Vec2{X: 100, Y: 100}, 50, "apple")
	r.Ring(game.Vec2{X: 400, Y: 240}, 50, colornames.Yellow)
	r.Text(game.Vec2{X: 10, Y: 10}, "Score: 7", driver.TextStyle{Color: colornames.Orange})
	r.Text(game.Vec2{X: 320, Y: 400}, "Game Over", driver.TextStyle{Size: driver.TextLarge, Center: true})
	r.Text(game.Vec2{X: 630, Y: 470}, "clipped text", driver.TextStyle{})
	r.Present()

	icon := cellAt(screen, 10, 5)
	if len(icon.Runes) == 0 || icon.Runes[0] != 'A' {
		t.Errorf("icon cell = %q, want 'A'", icon.Runes)
	}
	fg, _, _ := icon.Style.Decompose()
	if fg != tcell.FromImageColor(render.Icon("apple").Fill) {
		t.Errorf("icon colour = %v", fg)
	}

	if c := cellAt(screen, 40, 12); len(c.Runes) == 0 || c.Runes[0] != '+' {
		t.Errorf("ring centre = %q, want '+'", c.Runes)
	}
	if c := cellAt(screen, 45, 12); len(c.Runes) == 0 || c.Runes[0] != '·' {
		t.Errorf("ring edge = %q, want '·'", c.Runes)
	}

	// (10, 10) rounds to column 1, row 1.
	if got := row(screen, 1); !strings.HasPrefix(got[1:], "Score: 7") {
		t.Errorf("row 1 = %q, want HUD", got)
	}
	if got := row(screen, 20); !strings.Contains(got, "Game Over") {
		t.Errorf("row 20 = %q, want title", got)
	}
	_, _, attr := cellAt(screen, 32, 20).Style.Decompose()
	if attr&tcell.AttrBold == 0 {
		t.Error("large text should be bold")
	}
}

func TestListen(t *testing.T) {
	r, screen := newSimRenderer(t, false, false)
	events := make(chan driver.Event, 8)

	done := make(chan struct{})
	go func() {
		r.Listen(events)
		close(done)
	}()

	screen.InjectKey(tcell.KeyRune, ' ', tcell.ModNone)
	screen.InjectKey(tcell.KeyRune, 'x', tcell.ModNone)
	screen.InjectKey(tcell.KeyRune, 'R', tcell.ModNone)
	screen.InjectKey(tcell.KeyEscape, 0, tcell.ModNone)

	want := []driver.Event{driver.EventStart, driver.EventRestart, driver.EventQuit}
	for i, w := range want {
		select {
		case got := <-events:
			if got != w {
				t.Errorf("event %d = %v, want %v", i, got, w)
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for event %d (%v)", i, w)
		}
	}

	r.Close()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Listen() did not return after Close()")
	}
}

func TestKeyEvent_CtrlC(t *testing.T) {
	ev := tcell.NewEventKey(tcell.KeyCtrlC, 0, tcell.ModCtrl)
	if got, ok := keyEvent(ev); !ok || got != driver.EventQuit {
		t.Errorf("keyEvent(Ctrl-C) = (%v, %v), want quit", got, ok)
	}

	ev = tcell.NewEventKey(tcell.KeyF1, 0, tcell.ModNone)
	if _, ok := keyEvent(ev); ok {
		t.Error("keyEvent(F1) should not map to an event")
	}
}
