package image

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"
)

// NewCanvas allocates a width×height raster filled with bg.
func NewCanvas(width, height int, bg color.NRGBA) *image.NRGBA {
	return imaging.New(width, height, bg)
}

// OpenAsset decodes the image at path. Any file or decoding error is
// returned to the caller unchanged apart from wrapping.
func OpenAsset(path string) (image.Image, error) {
	img, err := imaging.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening asset %s: %w", path, err)
	}
	return img, nil
}

// FitHeight returns the height that keeps a srcW×srcH image in proportion
// when it is scaled to width. The result is never less than 1.
func FitHeight(srcW, srcH, width int) int {
	if srcW <= 0 {
		return 1
	}
	h := int(math.Round(float64(srcH) * float64(width) / float64(srcW)))
	return max(h, 1)
}

// FitWidth resamples img to the given width with a Lanczos filter, keeping
// the aspect ratio.
func FitWidth(img image.Image, width int) *image.NRGBA {
	b := img.Bounds()
	return imaging.Resize(img, width, FitHeight(b.Dx(), b.Dy(), width), imaging.Lanczos)
}

// PastePosition returns the top-left point at which an assetW×assetH image is
// right aligned, margin pixels from the canvas edge, and vertically centred.
func PastePosition(canvasW, canvasH, assetW, assetH, margin int) image.Point {
	return image.Pt(canvasW-assetW-margin, floorDiv(canvasH-assetH, 2))
}

// HasAlpha reports whether img carries any per-pixel transparency.
func HasAlpha(img image.Image) bool {
	if o, ok := img.(interface{ Opaque() bool }); ok {
		return !o.Opaque()
	}
	return true
}

// Paste composites asset onto canvas at pt and returns the result. When
// masked is true the asset's alpha channel is used as the paste mask;
// otherwise the destination region is overwritten.
func Paste(canvas *image.NRGBA, asset image.Image, pt image.Point, masked bool) *image.NRGBA {
	if masked {
		return imaging.Overlay(canvas, asset, pt, 1.0)
	}
	return imaging.Paste(canvas, asset, pt)
}

// floorDiv divides rounding toward negative infinity.
func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
