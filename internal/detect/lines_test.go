package detect

import (
	"image"
	"image/color"
	"testing"

	"github.com/flowforge/flowforge/internal/geometry"
)

// inkCanvas creates an all-background binary raster.
func inkCanvas(width, height int) *image.Gray {
	return image.NewGray(image.Rect(0, 0, width, height))
}

// drawInkHLine draws a horizontal ink stroke of the given thickness.
func drawInkHLine(bin *image.Gray, x1, x2, y, thickness int) {
	for t := 0; t < thickness; t++ {
		for x := x1; x <= x2; x++ {
			bin.SetGray(x, y+t, color.Gray{Y: 255})
		}
	}
}

// drawInkVLine draws a vertical ink stroke of the given thickness.
func drawInkVLine(bin *image.Gray, x, y1, y2, thickness int) {
	for t := 0; t < thickness; t++ {
		for y := y1; y <= y2; y++ {
			bin.SetGray(x+t, y, color.Gray{Y: 255})
		}
	}
}

func TestDetectSegmentsHorizontal(t *testing.T) {
	bin := inkCanvas(200, 100)
	drawInkHLine(bin, 40, 140, 50, 3)

	segments := DetectSegments(bin, 30)
	if len(segments) == 0 {
		t.Fatal("no segments detected")
	}

	s := segments[0]
	if s.Length < 80 {
		t.Errorf("length: got %v, want >= 80", s.Length)
	}
	if abs(s.Start.Y-51) > 4 || abs(s.End.Y-51) > 4 {
		t.Errorf("endpoints off the stroke row: %+v -> %+v", s.Start, s.End)
	}
}

func TestDetectSegmentsEmpty(t *testing.T) {
	if segments := DetectSegments(inkCanvas(100, 100), 30); len(segments) != 0 {
		t.Errorf("blank raster: got %d segments, want 0", len(segments))
	}
}

func TestConnectorCandidatesHorizontal(t *testing.T) {
	bin := inkCanvas(200, 100)
	drawInkHLine(bin, 45, 125, 50, 3)

	shapes := []geometry.ShapePrimitive{
		shape("s0", geometry.Bounds{X1: 0, Y1: 30, X2: 40, Y2: 70}, geometry.ShapeProcess, 0.9),
		shape("s1", geometry.Bounds{X1: 130, Y1: 30, X2: 170, Y2: 70}, geometry.ShapeProcess, 0.9),
	}

	connectors := ConnectorCandidates(bin, shapes, 30)
	if len(connectors) != 1 {
		t.Fatalf("connectors: got %d, want 1", len(connectors))
	}

	c := connectors[0]
	if c.ID != "c0" {
		t.Errorf("id: got %q, want c0", c.ID)
	}
	// No arrowhead; reading order makes the left shape the source.
	if c.FromID != "s0" || c.ToID != "s1" {
		t.Errorf("direction: got %s -> %s, want s0 -> s1", c.FromID, c.ToID)
	}
	if len(c.Points) != 2 {
		t.Errorf("points: got %d, want 2", len(c.Points))
	}
	if c.Confidence <= 0 || c.Confidence > 1 {
		t.Errorf("confidence out of range: %v", c.Confidence)
	}
}

func TestConnectorCandidatesVertical(t *testing.T) {
	bin := inkCanvas(100, 220)
	drawInkVLine(bin, 50, 65, 145, 3)

	shapes := []geometry.ShapePrimitive{
		shape("s0", geometry.Bounds{X1: 20, Y1: 10, X2: 80, Y2: 60}, geometry.ShapeProcess, 0.9),
		shape("s1", geometry.Bounds{X1: 20, Y1: 150, X2: 80, Y2: 200}, geometry.ShapeProcess, 0.9),
	}

	connectors := ConnectorCandidates(bin, shapes, 30)
	if len(connectors) != 1 {
		t.Fatalf("connectors: got %d, want 1", len(connectors))
	}
	// Reading order: the upper shape is the source.
	if connectors[0].FromID != "s0" || connectors[0].ToID != "s1" {
		t.Errorf("direction: got %s -> %s, want s0 -> s1",
			connectors[0].FromID, connectors[0].ToID)
	}
}

func TestConnectorCandidatesTooFewShapes(t *testing.T) {
	bin := inkCanvas(100, 100)
	drawInkHLine(bin, 10, 90, 50, 3)

	shapes := []geometry.ShapePrimitive{
		shape("s0", geometry.Bounds{X1: 0, Y1: 30, X2: 40, Y2: 70}, geometry.ShapeProcess, 0.9),
	}
	if connectors := ConnectorCandidates(bin, shapes, 30); connectors != nil {
		t.Errorf("single shape: got %v, want nil", connectors)
	}
}

func TestPairKeyUnordered(t *testing.T) {
	if pairKey("s0", "s1") != pairKey("s1", "s0") {
		t.Error("pairKey must be order-independent")
	}
	if pairKey("s0", "s1") == pairKey("s0", "s2") {
		t.Error("distinct pairs must get distinct keys")
	}
}
