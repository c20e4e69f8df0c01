// Package raster draws the game into an in-memory image. It backs snapshots
// and tests where no window or terminal is available.
package raster

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/ayusman/panicpoppers/internal/driver"
	"github.com/ayusman/panicpoppers/internal/game"
	"github.com/ayusman/panicpoppers/internal/render"
)

// largeScale magnifies the bitmap font for titles.
const largeScale = 3

// imager is implemented by *gocv.Mat.
type imager interface {
	ToImage() (image.Image, error)
}

// Options configures a Renderer.
type Options struct {
	// Width and Height are the board's logical size.
	Width, Height float64
	// Inset shows the camera frame as a corner preview instead of full screen.
	Inset bool
}

// Renderer implements driver.Renderer on an *image.RGBA.
type Renderer struct {
	img    *image.RGBA
	scale  render.Scaler
	opts   Options
	face   font.Face
	frames int
	err    error
}

// New creates a renderer drawing into a w x h image.
func New(w, h int, opts Options) *Renderer {
	return &Renderer{
		img:   image.NewRGBA(image.Rect(0, 0, w, h)),
		scale: render.NewScaler(opts.Width, opts.Height, w, h),
		opts:  opts,
		face:  basicfont.Face7x13,
	}
}

var _ driver.Renderer = (*Renderer)(nil)

// Image returns the canvas. It is overwritten by the next frame.
func (r *Renderer) Image() *image.RGBA { return r.img }

// Frames returns how many frames were presented.
func (r *Renderer) Frames() int { return r.frames }

func (r *Renderer) Background(frame driver.Frame) {
	draw.Draw(r.img, r.img.Bounds(), image.NewUniform(render.Backdrop), image.Point{}, draw.Src)

	src, ok := frame.(imager)
	if !ok {
		return
	}
	pic, err := src.ToImage()
	if err != nil {
		r.err = fmt.Errorf("convert frame: %w", err)
		return
	}

	dst := r.img.Bounds()
	if r.opts.Inset {
		dst = render.PreviewRect(dst)
	}
	xdraw.ApproxBiLinear.Scale(r.img, dst, pic, pic.Bounds(), draw.Src, nil)
}

func (r *Renderer) Icon(c game.Vec2, radius float64, tag string) {
	style := render.Icon(tag)
	center := r.scale.Point(c)
	rad := r.scale.Length(radius)

	r.disc(center, rad, style.Fill)
	r.text(center, string(style.Glyph), 1, color.RGBA{A: 255}, true)
}

func (r *Renderer) Ring(c game.Vec2, radius float64, col color.RGBA) {
	center := r.scale.Point(c)
	outer := r.scale.Length(radius)
	inner := outer - 2
	for y := -outer; y <= outer; y++ {
		for x := -outer; x <= outer; x++ {
			d := x*x + y*y
			if d <= outer*outer && d >= inner*inner {
				r.img.SetRGBA(center.X+x, center.Y+y, col)
			}
		}
	}
}

func (r *Renderer) Text(at game.Vec2, s string, style driver.TextStyle) {
	scale := 1
	if style.Size == driver.TextLarge {
		scale = largeScale
	}
	r.text(r.scale.Point(at), s, scale, style.Color, style.Center)
}

// Present finishes the frame. It reports a frame conversion failure from
// Background.
func (r *Renderer) Present() error {
	r.frames++
	err := r.err
	r.err = nil
	return err
}

// SavePNG writes the current canvas to path.
func (r *Renderer) SavePNG(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create snapshot: %w", err)
	}
	if err := png.Encode(f, r.img); err != nil {
		f.Close()
		return fmt.Errorf("encode snapshot: %w", err)
	}
	return f.Close()
}

func (r *Renderer) disc(center image.Point, rad int, col color.RGBA) {
	for y := -rad; y <= rad; y++ {
		for x := -rad; x <= rad; x++ {
			if x*x+y*y <= rad*rad {
				r.img.SetRGBA(center.X+x, center.Y+y, col)
			}
		}
	}
}

// text draws s with its top-left corner, or its centre, at p.
func (r *Renderer) text(p image.Point, s string, scale int, col color.RGBA, center bool) {
	metrics := r.face.Metrics()
	w := font.MeasureString(r.face, s).Ceil()
	h := metrics.Height.Ceil()

	tile := image.NewRGBA(image.Rect(0, 0, w, h))
	d := &font.Drawer{
		Dst:  tile,
		Src:  image.NewUniform(col),
		Face: r.face,
		Dot:  fixed.Point26_6{Y: metrics.Ascent},
	}
	d.DrawString(s)

	dst := image.Rect(0, 0, w*scale, h*scale).Add(p)
	if center {
		dst = dst.Sub(image.Point{X: w * scale / 2, Y: h * scale / 2})
	}
	xdraw.NearestNeighbor.Scale(r.img, dst, tile, tile.Bounds(), draw.Over, nil)
}
