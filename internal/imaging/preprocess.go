package imaging

import (
	"image"
	"image/color"

	"github.com/anthonynsimon/bild/blur"
	"github.com/anthonynsimon/bild/effect"
	"github.com/anthonynsimon/bild/segment"
)

// Binarize converts an image to a binary ink raster.
//
// The result is a grayscale image where white (255) marks foreground
// ink and black (0) marks background. The pipeline is:
//
//  1. Grayscale conversion
//  2. Gaussian blur to suppress scan noise
//  3. Inversion, so dark strokes become the bright phase
//  4. Otsu global thresholding (level from the bimodal histogram)
//  5. Morphological close (dilate then erode) to bridge small stroke
//     gaps without thickening glyph interiors
//
// Binarize never fails; a degenerate image (uniform color) yields an
// all-background raster.
func Binarize(img image.Image) *image.Gray {
	gray := effect.Grayscale(img)
	smoothed := blur.Gaussian(gray, 1.0)
	inverted := effect.Invert(smoothed)

	level := otsuLevel(inverted)
	binary := segment.Threshold(inverted, level)

	closed := effect.Erode(effect.Dilate(binary, 1), 1)
	return toGray(closed)
}

// Foreground reports whether (x, y) is an ink pixel of a binary
// raster produced by Binarize. Out-of-bounds coordinates are
// background.
func Foreground(bin *image.Gray, x, y int) bool {
	b := bin.Bounds()
	if x < b.Min.X || x >= b.Max.X || y < b.Min.Y || y >= b.Max.Y {
		return false
	}
	return bin.GrayAt(x, y).Y >= 128
}

// otsuLevel computes the Otsu threshold for an 8-bit grayscale image:
// the level maximizing between-class variance of the two histogram
// phases. For a flat histogram it falls back to 128.
func otsuLevel(img image.Image) uint8 {
	var hist [256]int
	bounds := img.Bounds()
	total := 0
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			c := color.GrayModel.Convert(img.At(x, y)).(color.Gray)
			hist[c.Y]++
			total++
		}
	}
	if total == 0 {
		return 128
	}

	var sum float64
	for i, n := range hist {
		sum += float64(i) * float64(n)
	}

	var sumB, wB float64
	bestVar := -1.0
	best := 128
	for t := 0; t < 256; t++ {
		wB += float64(hist[t])
		if wB == 0 {
			continue
		}
		wF := float64(total) - wB
		if wF == 0 {
			break
		}
		sumB += float64(t) * float64(hist[t])
		mB := sumB / wB
		mF := (sum - sumB) / wF
		between := wB * wF * (mB - mF) * (mB - mF)
		if between > bestVar {
			bestVar = between
			best = t
		}
	}
	return uint8(best)
}

// toGray flattens any image to 8-bit grayscale, snapping to pure
// black/white so later stages can treat the raster as binary.
func toGray(img image.Image) *image.Gray {
	bounds := img.Bounds()
	out := image.NewGray(bounds)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			c := color.GrayModel.Convert(img.At(x, y)).(color.Gray)
			if c.Y >= 128 {
				out.SetGray(x, y, color.Gray{Y: 255})
			} else {
				out.SetGray(x, y, color.Gray{Y: 0})
			}
		}
	}
	return out
}
