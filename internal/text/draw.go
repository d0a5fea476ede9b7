package text

import (
	"image"
	"image/color"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// Label is one line of text placed with its top-left corner at (X, Y).
type Label struct {
	Text      string
	X, Y      int
	Color     color.Color
	Uppercase bool
}

// Normalize returns the string that is actually drawn for l: NFC-normalised
// and, if requested, upper-cased.
func (l Label) Normalize() string {
	s := norm.NFC.String(l.Text)
	if l.Uppercase {
		s = cases.Upper(language.English).String(s)
	}
	return s
}

// Draw renders l onto dst with face. Text is neither wrapped nor bounds
// checked; whatever falls outside dst is clipped.
func Draw(dst draw.Image, face font.Face, l Label) {
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(l.Color),
		Face: face,
		Dot:  fixed.Point26_6{X: fixed.I(l.X), Y: fixed.I(l.Y) + face.Metrics().Ascent},
	}
	d.DrawString(l.Normalize())
}

// Width returns the advance width of l in pixels when drawn with face.
func Width(face font.Face, l Label) int {
	return font.MeasureString(face, l.Normalize()).Ceil()
}
