// Package visualize renders detection-debug overlays: shape bounding
// boxes in a per-type palette, id labels, and connector arrows drawn
// on top of the source image.
package visualize

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"
	"os"

	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/flowforge/flowforge/internal/geometry"
)

// shapePalette maps each shape type to a hex color chosen for
// visibility on both white paper and photo backgrounds.
var shapePalette = map[geometry.ShapeType]string{
	geometry.ShapeProcess:    "#00c800", // green
	geometry.ShapeDecision:   "#0078c8", // blue
	geometry.ShapeTerminator: "#dc0000", // red
	geometry.ShapeUnknown:    "#dcdc00", // yellow
}

const connectorHex = "#0000ff"

// shapeColor resolves the palette entry for a type, falling back to
// the unknown color on a bad hex string.
func shapeColor(t geometry.ShapeType) color.RGBA {
	hex, ok := shapePalette[t]
	if !ok {
		hex = shapePalette[geometry.ShapeUnknown]
	}
	c, err := colorful.Hex(hex)
	if err != nil {
		return color.RGBA{R: 220, G: 220, A: 255}
	}
	r, g, b := c.RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 255}
}

// DrawGeometry renders the overlay onto a copy of img: one box and
// id:type label per shape, one arrow per connector. The input image is
// not modified.
func DrawGeometry(img image.Image, g geometry.GeometryOutput) *image.RGBA {
	bounds := img.Bounds()
	out := image.NewRGBA(bounds)
	draw.Draw(out, bounds, img, bounds.Min, draw.Src)

	for _, s := range g.Shapes {
		c := shapeColor(s.Type)
		drawRect(out, s.Bounds, c)
		drawLabel(out, s.Bounds.X1, max(bounds.Min.Y, s.Bounds.Y1-9), fmt.Sprintf("%s:%s", s.ID, s.Type), color.RGBA{255, 255, 255, 255}, c)
	}

	arrow, err := colorful.Hex(connectorHex)
	ac := color.RGBA{B: 255, A: 255}
	if err == nil {
		r, gc, b := arrow.RGB255()
		ac = color.RGBA{R: r, G: gc, B: b, A: 255}
	}
	for _, conn := range g.Connectors {
		if len(conn.Points) < 2 {
			continue
		}
		for i := 1; i < len(conn.Points); i++ {
			drawLine(out, conn.Points[i-1], conn.Points[i], ac)
		}
		drawArrowTip(out, conn.Points[len(conn.Points)-2], conn.Points[len(conn.Points)-1], ac)
	}
	return out
}

// WriteOverlay renders the overlay and encodes it to a PNG file.
func WriteOverlay(img image.Image, g geometry.GeometryOutput, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create overlay file: %w", err)
	}
	defer f.Close()

	if err := png.Encode(f, DrawGeometry(img, g)); err != nil {
		return fmt.Errorf("failed to encode overlay: %w", err)
	}
	return nil
}

// drawRect draws a 2px box outline clipped to the image.
func drawRect(img *image.RGBA, b geometry.Bounds, c color.RGBA) {
	for t := 0; t < 2; t++ {
		for x := b.X1; x < b.X2; x++ {
			set(img, x, b.Y1+t, c)
			set(img, x, b.Y2-1-t, c)
		}
		for y := b.Y1; y < b.Y2; y++ {
			set(img, b.X1+t, y, c)
			set(img, b.X2-1-t, y, c)
		}
	}
}

// drawLine draws a 1px segment with integer Bresenham stepping.
func drawLine(img *image.RGBA, a, b geometry.Point, c color.RGBA) {
	dx := abs(b.X - a.X)
	dy := -abs(b.Y - a.Y)
	sx, sy := 1, 1
	if a.X > b.X {
		sx = -1
	}
	if a.Y > b.Y {
		sy = -1
	}
	err := dx + dy
	x, y := a.X, a.Y
	for {
		set(img, x, y, c)
		if x == b.X && y == b.Y {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x += sx
		}
		if e2 <= dx {
			err += dx
			y += sy
		}
	}
}

// drawArrowTip draws two short wings at the end of a segment.
func drawArrowTip(img *image.RGBA, from, to geometry.Point, c color.RGBA) {
	dx := float64(to.X - from.X)
	dy := float64(to.Y - from.Y)
	length := dx*dx + dy*dy
	if length == 0 {
		return
	}
	// Wings at roughly 30 degrees, 8px long.
	drawLine(img, to, offsetPoint(to, dx, dy, 0.5), c)
	drawLine(img, to, offsetPoint(to, dx, dy, -0.5), c)
}

func offsetPoint(tip geometry.Point, dx, dy, rot float64) geometry.Point {
	// Rotate the reversed direction by rot radians and scale to 8px.
	norm := 8.0 / math.Hypot(dx, dy)
	rx := -dx * norm
	ry := -dy * norm
	cos, sin := math.Cos(rot), math.Sin(rot)
	return geometry.Point{
		X: tip.X + int(rx*cos-ry*sin),
		Y: tip.Y + int(rx*sin+ry*cos),
	}
}

// drawLabel renders a tiny glyph-font label with a filled background.
// Covers the characters that appear in "sN:type" labels.
func drawLabel(img *image.RGBA, x, y int, text string, fg, bg color.RGBA) {
	glyphs := map[rune][]string{
		'0': {"111", "101", "101", "101", "111"},
		'1': {"010", "110", "010", "010", "111"},
		'2': {"111", "001", "111", "100", "111"},
		'3': {"111", "001", "111", "001", "111"},
		'4': {"101", "101", "111", "001", "001"},
		'5': {"111", "100", "111", "001", "111"},
		'6': {"111", "100", "111", "101", "111"},
		'7': {"111", "001", "001", "001", "001"},
		'8': {"111", "101", "111", "101", "111"},
		'9': {"111", "101", "111", "001", "111"},
		':': {"000", "010", "000", "010", "000"},
		's': {"011", "100", "010", "001", "110"},
		'p': {"110", "101", "110", "100", "100"},
		'r': {"000", "101", "110", "100", "100"},
		'o': {"000", "010", "101", "101", "010"},
		'c': {"011", "100", "100", "100", "011"},
		'e': {"010", "101", "111", "100", "011"},
		'd': {"001", "011", "101", "101", "011"},
		'i': {"010", "000", "010", "010", "010"},
		'n': {"000", "110", "101", "101", "101"},
		't': {"010", "111", "010", "010", "001"},
		'm': {"000", "110", "111", "101", "101"},
		'a': {"000", "011", "101", "101", "011"},
		'u': {"000", "101", "101", "101", "011"},
		'k': {"100", "101", "110", "110", "101"},
		'w': {"000", "101", "101", "111", "101"},
	}

	bounds := img.Bounds()
	charWidth := 4
	labelWidth := len(text) * charWidth
	labelHeight := 7

	for dy := -1; dy < labelHeight; dy++ {
		for dx := -1; dx < labelWidth; dx++ {
			px, py := x+dx, y+dy
			if px >= bounds.Min.X && px < bounds.Max.X && py >= bounds.Min.Y && py < bounds.Max.Y {
				img.Set(px, py, bg)
			}
		}
	}

	cx := x
	for _, ch := range text {
		glyph, ok := glyphs[ch]
		if !ok {
			cx += charWidth
			continue
		}
		for row, line := range glyph {
			for col, pixel := range line {
				if pixel == '1' {
					px, py := cx+col, y+row
					if px >= bounds.Min.X && px < bounds.Max.X && py >= bounds.Min.Y && py < bounds.Max.Y {
						img.Set(px, py, fg)
					}
				}
			}
		}
		cx += charWidth
	}
}

func set(img *image.RGBA, x, y int, c color.RGBA) {
	b := img.Bounds()
	if x >= b.Min.X && x < b.Max.X && y >= b.Min.Y && y < b.Max.Y {
		img.Set(x, y, c)
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
