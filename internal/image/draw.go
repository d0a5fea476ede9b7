package image

import (
	"image"
	"image/color"
	"image/draw"
)

// FillRect paints r on canvas in a solid colour. The part of r outside the
// canvas is ignored.
func FillRect(canvas *image.NRGBA, r image.Rectangle, c color.NRGBA) {
	r = r.Canon().Intersect(canvas.Bounds())
	if r.Empty() {
		return
	}
	draw.Draw(canvas, r, image.NewUniform(c), image.Point{}, draw.Src)
}
