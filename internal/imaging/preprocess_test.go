package imaging

import (
	"image"
	"image/color"
	"testing"
)

// fillRect paints a solid rectangle onto an RGBA image.
func fillRect(img *image.RGBA, x1, y1, x2, y2 int, c color.Color) {
	for y := y1; y < y2; y++ {
		for x := x1; x < x2; x++ {
			img.Set(x, y, c)
		}
	}
}

// whiteCanvas creates a solid white test image.
func whiteCanvas(width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	fillRect(img, 0, 0, width, height, color.White)
	return img
}

func TestBinarizeDarkRectangle(t *testing.T) {
	img := whiteCanvas(100, 100)
	fillRect(img, 30, 30, 70, 70, color.Black)

	bin := Binarize(img)

	if !Foreground(bin, 50, 50) {
		t.Error("rectangle center should be foreground ink")
	}
	if Foreground(bin, 5, 5) {
		t.Error("white margin should be background")
	}
	if Foreground(bin, 95, 95) {
		t.Error("white margin should be background")
	}
}

func TestBinarizeUniformImage(t *testing.T) {
	img := whiteCanvas(50, 50)
	bin := Binarize(img)

	count := 0
	for y := 0; y < 50; y++ {
		for x := 0; x < 50; x++ {
			if Foreground(bin, x, y) {
				count++
			}
		}
	}
	if count > 0 {
		t.Errorf("uniform image produced %d foreground pixels, want 0", count)
	}
}

func TestForegroundOutOfBounds(t *testing.T) {
	bin := image.NewGray(image.Rect(0, 0, 10, 10))
	if Foreground(bin, -1, 5) || Foreground(bin, 5, -1) || Foreground(bin, 10, 5) || Foreground(bin, 5, 10) {
		t.Error("out-of-bounds coordinates must be background")
	}
}

func TestOtsuLevelBimodal(t *testing.T) {
	// Half dark (20), half bright (230): the threshold must land
	// between the two modes.
	img := image.NewGray(image.Rect(0, 0, 100, 2))
	for x := 0; x < 100; x++ {
		img.SetGray(x, 0, color.Gray{Y: 20})
		img.SetGray(x, 1, color.Gray{Y: 230})
	}

	level := otsuLevel(img)
	if level < 20 || level > 230 {
		t.Errorf("otsuLevel: got %d, want a level between the modes 20 and 230", level)
	}
}

func TestOtsuLevelEmpty(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 0, 0))
	if level := otsuLevel(img); level != 128 {
		t.Errorf("otsuLevel on empty image: got %d, want 128", level)
	}
}
