package render

import (
	"image"
	"testing"

	"golang.org/x/image/colornames"

	"github.com/ayusman/panicpoppers/internal/config"
	"github.com/ayusman/panicpoppers/internal/game"
)

func TestIcon(t *testing.T) {
	tests := []struct {
		tag       string
		wantGlyph rune
	}{
		{tag: "apple", wantGlyph: 'A'},
		{tag: "pizza", wantGlyph: 'p'},
		{tag: "green", wantGlyph: '●'},
		{tag: "durian", wantGlyph: 'D'},
		{tag: "", wantGlyph: '?'},
	}

	for _, tt := range tests {
		t.Run(tt.tag, func(t *testing.T) {
			if got := Icon(tt.tag).Glyph; got != tt.wantGlyph {
				t.Errorf("Icon(%q).Glyph = %q, want %q", tt.tag, got, tt.wantGlyph)
			}
		})
	}

	if Icon("durian").Fill != colornames.Gray {
		t.Error("unknown tags should be grey")
	}
}

func TestIcon_CoversCatalogs(t *testing.T) {
	for _, tags := range [][]string{config.GoodFoods, config.BadFoods} {
		for _, tag := range tags {
			if _, ok := icons[tag]; !ok {
				t.Errorf("no icon for %q", tag)
			}
		}
	}
}

func TestScaler(t *testing.T) {
	s := NewScaler(640, 480, 1280, 720)

	tests := []struct {
		in   game.Vec2
		want image.Point
	}{
		{in: game.Vec2{}, want: image.Point{}},
		{in: game.Vec2{X: 640, Y: 480}, want: image.Point{X: 1280, Y: 720}},
		{in: game.Vec2{X: 320, Y: 240}, want: image.Point{X: 640, Y: 360}},
	}
	for _, tt := range tests {
		if got := s.Point(tt.in); got != tt.want {
			t.Errorf("Point(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}

	if got := s.Length(50); got != 75 {
		t.Errorf("Length(50) = %d, want 75 (smaller axis scale 1.5)", got)
	}

	if got := NewScaler(0, 480, 100, 100).Point(game.Vec2{X: 3, Y: 4}); got != (image.Point{X: 3, Y: 4}) {
		t.Errorf("degenerate scaler Point() = %v, want identity", got)
	}
}

func TestPreviewRect(t *testing.T) {
	got := PreviewRect(image.Rect(0, 0, 1280, 720))
	want := image.Rect(940, 520, 1260, 700)
	if got != want {
		t.Errorf("PreviewRect() = %v, want %v", got, want)
	}
}
