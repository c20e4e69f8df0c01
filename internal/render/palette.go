// Package render holds what the game's renderers share: the icon palette,
// logical-to-surface scaling and the preview inset layout.
package render

import (
	"image/color"
	"unicode"
	"unicode/utf8"

	"golang.org/x/image/colornames"
)

// IconStyle is how a target tag is drawn on surfaces without bitmaps.
type IconStyle struct {
	Fill  color.RGBA
	Glyph rune
}

var icons = map[string]IconStyle{
	// classic dots
	"green": {Fill: colornames.Limegreen, Glyph: '●'},
	"red":   {Fill: colornames.Red, Glyph: '●'},

	// good food
	"apple":      {Fill: colornames.Crimson, Glyph: 'A'},
	"lemon":      {Fill: colornames.Yellow, Glyph: 'L'},
	"carrot":     {Fill: colornames.Darkorange, Glyph: 'C'},
	"sprouts":    {Fill: colornames.Olivedrab, Glyph: 'S'},
	"watermelon": {Fill: colornames.Seagreen, Glyph: 'W'},
	"banana":     {Fill: colornames.Gold, Glyph: 'B'},

	// bad food
	"fries":     {Fill: colornames.Goldenrod, Glyph: 'f'},
	"hamburger": {Fill: colornames.Saddlebrown, Glyph: 'h'},
	"onion":     {Fill: colornames.Plum, Glyph: 'o'},
	"pizza":     {Fill: colornames.Tomato, Glyph: 'p'},
	"garlic":    {Fill: colornames.Ivory, Glyph: 'g'},
	"chicken":   {Fill: colornames.Peru, Glyph: 'c'},
}

// Icon returns the style for tag. Unknown tags are grey and use their first
// letter.
func Icon(tag string) IconStyle {
	if s, ok := icons[tag]; ok {
		return s
	}
	glyph := '?'
	if r, _ := utf8.DecodeRuneInString(tag); r != utf8.RuneError {
		glyph = unicode.ToUpper(r)
	}
	return IconStyle{Fill: colornames.Gray, Glyph: glyph}
}

// Backdrop is drawn where no camera frame is shown.
var Backdrop = colornames.Midnightblue
