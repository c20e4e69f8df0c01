// Package cvwindow renders the game into an OpenCV HighGUI window and turns
// key presses in that window into driver events.
package cvwindow

import (
	"image"
	"image/color"

	"gocv.io/x/gocv"

	"github.com/ayusman/panicpoppers/internal/driver"
	"github.com/ayusman/panicpoppers/internal/game"
	"github.com/ayusman/panicpoppers/internal/render"
)

// Text rendering parameters for the Hershey font.
const (
	fontFace       = gocv.FontHersheySimplex
	normalScale    = 1.0
	largeScale     = 2.0
	normalThick    = 2
	largeThick     = 4
	ringThickness  = 3
	glyphScale     = 0.6
	glyphThickness = 2
)

// Options configures a Window.
type Options struct {
	// Width and Height are the board's logical size.
	Width, Height float64
	// Inset shows the camera as a corner preview instead of full screen.
	Inset bool
	// Mirror flips the camera picture horizontally.
	Mirror bool
	// Events receives key presses. Events that do not fit are dropped.
	Events chan<- driver.Event
}

// Window implements driver.Renderer with GoCV.
type Window struct {
	win     *gocv.Window
	canvas  gocv.Mat
	scratch gocv.Mat
	size    image.Point
	scale   render.Scaler
	opts    Options
}

var _ driver.Renderer = (*Window)(nil)

// Open creates a w x h window.
func Open(title string, w, h int, opts Options) *Window {
	win := gocv.NewWindow(title)
	win.ResizeWindow(w, h)

	c := newCanvas(w, h, opts)
	c.win = win
	return c
}

// newCanvas creates a Window that draws without showing anything.
func newCanvas(w, h int, opts Options) *Window {
	return &Window{
		canvas:  gocv.NewMatWithSize(h, w, gocv.MatTypeCV8UC3),
		scratch: gocv.NewMat(),
		size:    image.Point{X: w, Y: h},
		scale:   render.NewScaler(opts.Width, opts.Height, w, h),
		opts:    opts,
	}
}

// Close destroys the window and frees the canvas.
func (w *Window) Close() error {
	w.canvas.Close()
	w.scratch.Close()
	if w.win != nil {
		return w.win.Close()
	}
	return nil
}

func (w *Window) Background(frame driver.Frame) {
	w.canvas.SetTo(scalar(render.Backdrop))

	mat, ok := frame.(*gocv.Mat)
	if !ok || mat == nil || mat.Empty() {
		return
	}

	src := *mat
	if w.opts.Mirror {
		gocv.Flip(*mat, &w.scratch, 1)
		src = w.scratch
	}

	area := image.Rectangle{Max: w.size}
	if w.opts.Inset {
		area = render.PreviewRect(area)
	}

	region := w.canvas.Region(area)
	defer region.Close()
	gocv.Resize(src, &region, area.Size(), 0, 0, gocv.InterpolationLinear)
}

func (w *Window) Icon(c game.Vec2, radius float64, tag string) {
	icon := render.Icon(tag)
	center := w.scale.Point(c)
	r := w.scale.Length(radius)

	gocv.Circle(&w.canvas, center, r, icon.Fill, -1)
	gocv.Circle(&w.canvas, center, r, color.RGBA{A: 255}, 1)

	glyph := string(icon.Glyph)
	if icon.Glyph > 0x7f {
		// Hershey fonts are ASCII only.
		return
	}
	sz := gocv.GetTextSize(glyph, fontFace, glyphScale, glyphThickness)
	org := image.Point{X: center.X - sz.X/2, Y: center.Y + sz.Y/2}
	gocv.PutText(&w.canvas, glyph, org, fontFace, glyphScale, color.RGBA{A: 255}, glyphThickness)
}

func (w *Window) Ring(c game.Vec2, radius float64, col color.RGBA) {
	gocv.Circle(&w.canvas, w.scale.Point(c), w.scale.Length(radius), col, ringThickness)
}

func (w *Window) Text(at game.Vec2, s string, style driver.TextStyle) {
	scale, thick := normalScale, normalThick
	if style.Size == driver.TextLarge {
		scale, thick = largeScale, largeThick
	}

	sz := gocv.GetTextSize(s, fontFace, scale, thick)
	org := w.scale.Point(at)
	if style.Center {
		org.X -= sz.X / 2
		org.Y += sz.Y / 2
	} else {
		// PutText anchors at the baseline.
		org.Y += sz.Y
	}
	gocv.PutText(&w.canvas, s, org, fontFace, scale, style.Color, thick)
}

// Present shows the canvas and polls the keyboard.
func (w *Window) Present() error {
	if w.win == nil {
		return nil
	}
	w.win.IMShow(w.canvas)

	if ev, ok := keyEvent(w.win.WaitKey(1)); ok && w.opts.Events != nil {
		select {
		case w.opts.Events <- ev:
		default:
		}
	}
	return nil
}

// keyEvent maps a WaitKey code to an event. WaitKey returns -1 without a key.
func keyEvent(key int) (driver.Event, bool) {
	if key < 0 {
		return 0, false
	}
	return driver.KeyEvent(rune(key & 0xff))
}

// scalar converts to OpenCV's BGR channel order.
func scalar(c color.RGBA) gocv.Scalar {
	return gocv.NewScalar(float64(c.B), float64(c.G), float64(c.R), 0)
}
