// Package term renders the game in a terminal with tcell. The camera frame
// is sampled into cell background colours.
package term

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/gdamore/tcell/v2"

	"github.com/ayusman/panicpoppers/internal/driver"
	"github.com/ayusman/panicpoppers/internal/game"
	"github.com/ayusman/panicpoppers/internal/render"
)

// ringSteps is the number of points used to trace a ring.
const ringSteps = 48

// imager is implemented by *gocv.Mat.
type imager interface {
	ToImage() (image.Image, error)
}

// Renderer implements driver.Renderer on a tcell screen.
type Renderer struct {
	screen tcell.Screen
	width  float64
	height float64
	inset  bool
	mirror bool

	cols, rows int
	scale      render.Scaler
	err        error
	closed     bool
}

var _ driver.Renderer = (*Renderer)(nil)

// New wraps an initialised screen. width and height are the board's logical
// size. mirror flips the camera background to match a mirrored fingertip.
func New(screen tcell.Screen, width, height float64, inset, mirror bool) *Renderer {
	r := &Renderer{
		screen: screen,
		width:  width,
		height: height,
		inset:  inset,
		mirror: mirror,
	}
	r.resize()
	return r
}

// Open takes over the controlling terminal.
func Open(width, height float64, inset, mirror bool) (*Renderer, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, fmt.Errorf("create screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return nil, fmt.Errorf("init screen: %w", err)
	}
	screen.HideCursor()
	screen.SetStyle(backdropStyle())

	return New(screen, width, height, inset, mirror), nil
}

// Close restores the terminal. It is safe to call more than once.
func (r *Renderer) Close() {
	if r.closed {
		return
	}
	r.closed = true
	r.screen.Fini()
}

func (r *Renderer) resize() {
	r.cols, r.rows = r.screen.Size()
	r.scale = render.NewScaler(r.width, r.height, r.cols, r.rows)
}

func backdropStyle() tcell.Style {
	return tcell.StyleDefault.Background(tcell.FromImageColor(render.Backdrop))
}

func (r *Renderer) Background(frame driver.Frame) {
	r.resize()
	r.screen.Fill(' ', backdropStyle())

	src, ok := frame.(imager)
	if !ok {
		return
	}
	pic, err := src.ToImage()
	if err != nil {
		r.err = fmt.Errorf("convert frame: %w", err)
		return
	}

	area := image.Rect(0, 0, r.cols, r.rows)
	if r.inset {
		area = render.PreviewRect(area)
	}
	r.sample(pic, area)
}

// sample paints each cell of area with the colour at the matching point of
// pic.
func (r *Renderer) sample(pic image.Image, area image.Rectangle) {
	b := pic.Bounds()
	if area.Empty() || b.Empty() {
		return
	}
	for y := area.Min.Y; y < area.Max.Y; y++ {
		py := b.Min.Y + (2*(y-area.Min.Y)+1)*b.Dy()/(2*area.Dy())
		for x := area.Min.X; x < area.Max.X; x++ {
			cx := x - area.Min.X
			if r.mirror {
				cx = area.Dx() - 1 - cx
			}
			px := b.Min.X + (2*cx+1)*b.Dx()/(2*area.Dx())
			style := tcell.StyleDefault.Background(tcell.FromImageColor(pic.At(px, py)))
			r.screen.SetContent(x, y, ' ', nil, style)
		}
	}
}

func (r *Renderer) Icon(c game.Vec2, _ float64, tag string) {
	icon := render.Icon(tag)
	p := r.scale.Point(c)
	r.put(p.X, p.Y, icon.Glyph, icon.Fill, true)
}

func (r *Renderer) Ring(c game.Vec2, radius float64, col color.RGBA) {
	center := r.scale.Point(c)
	rx := radius * float64(r.cols) / r.width
	ry := radius * float64(r.rows) / r.height
	for i := 0; i < ringSteps; i++ {
		a := 2 * math.Pi * float64(i) / ringSteps
		x := center.X + int(math.Round(rx*math.Cos(a)))
		y := center.Y + int(math.Round(ry*math.Sin(a)))
		r.put(x, y, '·', col, false)
	}
	r.put(center.X, center.Y, '+', col, true)
}

func (r *Renderer) Text(at game.Vec2, s string, style driver.TextStyle) {
	p := r.scale.Point(at)
	runes := []rune(s)
	if style.Center {
		p.X -= len(runes) / 2
	}
	bold := style.Size == driver.TextLarge
	for i, ch := range runes {
		r.put(p.X+i, p.Y, ch, style.Color, bold)
	}
}

func (r *Renderer) Present() error {
	r.screen.Show()
	err := r.err
	r.err = nil
	return err
}

// put draws ch in col on top of whatever background the cell has.
func (r *Renderer) put(x, y int, ch rune, col color.RGBA, bold bool) {
	if x < 0 || y < 0 || x >= r.cols || y >= r.rows {
		return
	}
	_, _, style, _ := r.screen.GetContent(x, y)
	style = style.Foreground(tcell.FromImageColor(col)).Bold(bold)
	r.screen.SetContent(x, y, ch, nil, style)
}

// Listen turns key presses into driver events until the screen is closed.
// Events that do not fit into the channel are dropped.
func (r *Renderer) Listen(events chan<- driver.Event) {
	for {
		ev := r.screen.PollEvent()
		if ev == nil {
			return
		}

		switch ev := ev.(type) {
		case *tcell.EventResize:
			r.screen.Sync()
		case *tcell.EventKey:
			e, ok := keyEvent(ev)
			if !ok {
				continue
			}
			select {
			case events <- e:
			default:
			}
		}
	}
}

func keyEvent(ev *tcell.EventKey) (driver.Event, bool) {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return driver.EventQuit, true
	case tcell.KeyRune:
		return driver.KeyEvent(ev.Rune())
	default:
		return 0, false
	}
}
