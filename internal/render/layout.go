package render

import (
	"image"
	"math"

	"github.com/ayusman/panicpoppers/internal/game"
)

// Scaler maps logical board coordinates onto a surface of another size.
type Scaler struct {
	sx, sy float64
}

// NewScaler maps a logical w x h board onto a surface of sw x sh.
func NewScaler(w, h float64, sw, sh int) Scaler {
	if w <= 0 || h <= 0 {
		return Scaler{sx: 1, sy: 1}
	}
	return Scaler{sx: float64(sw) / w, sy: float64(sh) / h}
}

// Point converts a logical point to surface pixels.
func (s Scaler) Point(v game.Vec2) image.Point {
	return image.Point{
		X: int(math.Round(v.X * s.sx)),
		Y: int(math.Round(v.Y * s.sy)),
	}
}

// Length converts a logical distance using the smaller axis scale, so circles
// stay inside the surface.
func (s Scaler) Length(d float64) int {
	return int(math.Round(d * math.Min(s.sx, s.sy)))
}

// PreviewRect is the picture-in-picture area for the camera preview: a
// quarter-size rectangle in the bottom-right corner with a small margin.
func PreviewRect(surface image.Rectangle) image.Rectangle {
	w, h := surface.Dx()/4, surface.Dy()/4
	margin := surface.Dx() / 64
	corner := image.Point{X: surface.Max.X - margin, Y: surface.Max.Y - margin}
	return image.Rectangle{Min: corner.Sub(image.Point{X: w, Y: h}), Max: corner}
}
