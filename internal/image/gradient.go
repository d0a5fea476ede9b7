package image

import (
	"image"
	"image/color"
	"math"
)

// DarkenWeight is the fraction by which the pixel in column x is pulled
// toward the background. It falls linearly from strength at x=0 to zero at
// edge; columns outside [0, edge) are left alone.
func DarkenWeight(x, edge int, strength float64) float64 {
	if edge <= 0 || x < 0 || x >= edge {
		return 0
	}
	return strength * (1 - float64(x)/float64(edge))
}

// Darken blends every pixel left of edge toward bg by DarkenWeight. It works
// on the raw Pix buffer; alpha is not touched.
func Darken(canvas *image.NRGBA, bg color.NRGBA, edge int, strength float64) {
	b := canvas.Bounds()
	edge = min(edge, b.Dx())
	if edge <= 0 || strength <= 0 {
		return
	}

	weights := make([]float64, edge)
	for x := range weights {
		weights[x] = DarkenWeight(x, edge, strength)
	}
	target := [3]float64{float64(bg.R), float64(bg.G), float64(bg.B)}

	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := canvas.Pix[canvas.PixOffset(b.Min.X, y):]
		for x, w := range weights {
			px := row[x*4 : x*4+3 : x*4+3]
			for c := range px {
				v := float64(px[c])
				px[c] = clamp8(v + (target[c]-v)*w)
			}
		}
	}
}

func clamp8(v float64) uint8 {
	v = math.Round(v)
	switch {
	case v < 0:
		return 0
	case v > 255:
		return 255
	}
	return uint8(v)
}
