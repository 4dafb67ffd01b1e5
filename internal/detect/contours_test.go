package detect

import (
	"image/color"
	"math"
	"testing"

	"github.com/flowforge/flowforge/internal/geometry"
)

func TestFindContoursRectangle(t *testing.T) {
	bin := inkCanvas(100, 100)
	for y := 20; y < 60; y++ {
		for x := 10; x < 70; x++ {
			bin.SetGray(x, y, color.Gray{Y: 255})
		}
	}

	contours := findContours(bin)
	if len(contours) != 1 {
		t.Fatalf("contours: got %d, want 1", len(contours))
	}

	c := contours[0]
	want := geometry.Bounds{X1: 10, Y1: 20, X2: 70, Y2: 60}
	if c.bounds != want {
		t.Errorf("bounds: got %+v, want %+v", c.bounds, want)
	}
	// Shoelace over the traced boundary tracks the filled area.
	if c.area < 2000 || c.area > 2400 {
		t.Errorf("area: got %v, want ~2340", c.area)
	}
	if len(c.boundary) == 0 {
		t.Error("boundary is empty")
	}
}

func TestFindContoursIgnoresTinyComponents(t *testing.T) {
	bin := inkCanvas(100, 100)
	// 2x2 blob: below the component pixel floor.
	bin.SetGray(50, 50, color.Gray{Y: 255})
	bin.SetGray(51, 50, color.Gray{Y: 255})
	bin.SetGray(50, 51, color.Gray{Y: 255})
	bin.SetGray(51, 51, color.Gray{Y: 255})

	if contours := findContours(bin); len(contours) != 0 {
		t.Errorf("contours: got %d, want 0", len(contours))
	}
}

func TestShoelace(t *testing.T) {
	square := []geometry.Point{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}, {X: 0, Y: 10}}
	if got := shoelace(square); got != 100 {
		t.Errorf("square area: got %v, want 100", got)
	}

	triangle := []geometry.Point{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 0, Y: 10}}
	if got := shoelace(triangle); got != 50 {
		t.Errorf("triangle area: got %v, want 50", got)
	}
}

func TestSimplifyClosedSquare(t *testing.T) {
	// Dense square outline: simplification should recover the corners.
	var pts []geometry.Point
	for x := 0; x <= 40; x++ {
		pts = append(pts, geometry.Point{X: x, Y: 0})
	}
	for y := 1; y <= 40; y++ {
		pts = append(pts, geometry.Point{X: 40, Y: y})
	}
	for x := 39; x >= 0; x-- {
		pts = append(pts, geometry.Point{X: x, Y: 40})
	}
	for y := 39; y >= 1; y-- {
		pts = append(pts, geometry.Point{X: 0, Y: y})
	}

	poly := simplifyClosed(pts, 2.0)
	if len(poly) != 4 {
		t.Errorf("vertices: got %d, want 4", len(poly))
	}
}

func TestMinAreaRect(t *testing.T) {
	// Axis-aligned box.
	box := []geometry.Point{{X: 0, Y: 0}, {X: 40, Y: 0}, {X: 40, Y: 20}, {X: 0, Y: 20}}
	angle, w, h := minAreaRect(box)
	if angle > 1.0 {
		t.Errorf("axis-aligned angle: got %v, want ~0", angle)
	}
	if long, short := math.Max(w, h), math.Min(w, h); math.Abs(long-40) > 1 || math.Abs(short-20) > 1 {
		t.Errorf("sides: got %v x %v, want 40 x 20", w, h)
	}

	// Diamond: a square rotated 45 degrees.
	diamond := []geometry.Point{{X: 50, Y: 0}, {X: 100, Y: 50}, {X: 50, Y: 100}, {X: 0, Y: 50}}
	angle, w, h = minAreaRect(diamond)
	if math.Abs(angle-45) > 1.0 {
		t.Errorf("diamond angle: got %v, want ~45", angle)
	}
	if math.Abs(w-h) > 1 {
		t.Errorf("diamond sides differ: %v x %v", w, h)
	}
}

func TestConvexHull(t *testing.T) {
	pts := []geometry.Point{
		{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}, {X: 0, Y: 10},
		{X: 5, Y: 5}, {X: 3, Y: 7}, // interior points
	}
	hull := convexHull(pts)
	if len(hull) != 4 {
		t.Errorf("hull vertices: got %d, want 4", len(hull))
	}
}
