package detect

import (
	"image"
	"image/color"
	"testing"

	"github.com/flowforge/flowforge/internal/geometry"
)

// whiteCanvas creates a solid white test image.
func whiteCanvas(width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.White)
		}
	}
	return img
}

// drawFilledRect paints a solid black rectangle.
func drawFilledRect(img *image.RGBA, x1, y1, x2, y2 int) {
	for y := y1; y < y2; y++ {
		for x := x1; x < x2; x++ {
			img.Set(x, y, color.Black)
		}
	}
}

// drawFilledDiamond paints a solid black diamond centered at (cx, cy)
// with the given half-diagonal.
func drawFilledDiamond(img *image.RGBA, cx, cy, half int) {
	for y := cy - half; y <= cy+half; y++ {
		for x := cx - half; x <= cx+half; x++ {
			if abs(x-cx)+abs(y-cy) <= half {
				img.Set(x, y, color.Black)
			}
		}
	}
}

// drawFilledCircle paints a solid black disc.
func drawFilledCircle(img *image.RGBA, cx, cy, r int) {
	for y := cy - r; y <= cy+r; y++ {
		for x := cx - r; x <= cx+r; x++ {
			dx, dy := x-cx, y-cy
			if dx*dx+dy*dy <= r*r {
				img.Set(x, y, color.Black)
			}
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func TestExtractRectangle(t *testing.T) {
	img := whiteCanvas(200, 200)
	drawFilledRect(img, 50, 60, 150, 120)

	res := Extract(img, geometry.Calibration{})
	if res.Degraded {
		t.Fatalf("unexpected degraded result: %s", res.Reason)
	}
	if len(res.Geometry.Shapes) != 1 {
		t.Fatalf("shapes: got %d, want 1", len(res.Geometry.Shapes))
	}

	s := res.Geometry.Shapes[0]
	if s.Type != geometry.ShapeProcess {
		t.Errorf("type: got %v, want process", s.Type)
	}
	if s.ID != "s0" {
		t.Errorf("id: got %q, want s0", s.ID)
	}
	if s.Confidence < 0.8 {
		t.Errorf("confidence: got %v, want >= 0.8", s.Confidence)
	}

	// The bbox should track the drawn rectangle within a few pixels of
	// blur slack.
	b := s.Bounds
	const slack = 5
	if abs(b.X1-50) > slack || abs(b.Y1-60) > slack || abs(b.X2-150) > slack || abs(b.Y2-120) > slack {
		t.Errorf("bbox: got %+v, want ~{50 60 150 120}", b)
	}

	meta := res.Geometry.Metadata
	if meta.Detector != DetectorName {
		t.Errorf("detector: got %q, want %q", meta.Detector, DetectorName)
	}
	if meta.SourceWidth != 200 || meta.SourceHeight != 200 {
		t.Errorf("source size: got %dx%d, want 200x200", meta.SourceWidth, meta.SourceHeight)
	}
}

func TestExtractDiamond(t *testing.T) {
	img := whiteCanvas(200, 200)
	drawFilledDiamond(img, 100, 100, 50)

	res := Extract(img, geometry.Calibration{})
	if res.Degraded {
		t.Fatalf("unexpected degraded result: %s", res.Reason)
	}
	if len(res.Geometry.Shapes) != 1 {
		t.Fatalf("shapes: got %d, want 1", len(res.Geometry.Shapes))
	}
	if got := res.Geometry.Shapes[0].Type; got != geometry.ShapeDecision {
		t.Errorf("type: got %v, want decision", got)
	}
}

func TestExtractCircle(t *testing.T) {
	img := whiteCanvas(200, 200)
	drawFilledCircle(img, 100, 100, 50)

	res := Extract(img, geometry.Calibration{})
	if res.Degraded {
		t.Fatalf("unexpected degraded result: %s", res.Reason)
	}
	if len(res.Geometry.Shapes) != 1 {
		t.Fatalf("shapes: got %d, want 1", len(res.Geometry.Shapes))
	}
	if got := res.Geometry.Shapes[0].Type; got != geometry.ShapeTerminator {
		t.Errorf("type: got %v, want terminator", got)
	}
}

func TestExtractMultipleShapes(t *testing.T) {
	img := whiteCanvas(300, 300)
	drawFilledRect(img, 40, 30, 140, 80)
	drawFilledRect(img, 40, 180, 140, 230)

	res := Extract(img, geometry.Calibration{})
	if res.Degraded {
		t.Fatalf("unexpected degraded result: %s", res.Reason)
	}
	if len(res.Geometry.Shapes) != 2 {
		t.Fatalf("shapes: got %d, want 2", len(res.Geometry.Shapes))
	}

	// Detection order is scan order, so the upper shape comes first.
	if res.Geometry.Shapes[0].Bounds.Y1 > res.Geometry.Shapes[1].Bounds.Y1 {
		t.Error("shapes not in scan order")
	}
	if res.Geometry.Shapes[0].ID != "s0" || res.Geometry.Shapes[1].ID != "s1" {
		t.Errorf("ids: got %q, %q, want s0, s1", res.Geometry.Shapes[0].ID, res.Geometry.Shapes[1].ID)
	}
}

func TestExtractIgnoresSpecks(t *testing.T) {
	img := whiteCanvas(200, 200)
	drawFilledRect(img, 50, 50, 150, 110)
	// A 4x4 speck is below every size floor.
	drawFilledRect(img, 10, 180, 14, 184)

	res := Extract(img, geometry.Calibration{})
	if len(res.Geometry.Shapes) != 1 {
		t.Errorf("shapes: got %d, want 1 (speck must be filtered)", len(res.Geometry.Shapes))
	}
}

func TestExtractBlankImage(t *testing.T) {
	res := Extract(whiteCanvas(100, 100), geometry.Calibration{})
	if res.Degraded {
		t.Fatalf("blank image should not degrade: %s", res.Reason)
	}
	if len(res.Geometry.Shapes) != 0 {
		t.Errorf("shapes: got %d, want 0", len(res.Geometry.Shapes))
	}
}

func TestExtractNilImage(t *testing.T) {
	res := Extract(nil, geometry.Calibration{})
	if !res.Degraded {
		t.Fatal("nil image must degrade")
	}
	assertDegradedShape(t, res)
}

func TestExtractBytesGarbage(t *testing.T) {
	res := ExtractBytes([]byte("definitely not an image"), geometry.Calibration{})
	if !res.Degraded {
		t.Fatal("undecodable bytes must degrade")
	}
	if res.Reason == "" {
		t.Error("degraded result needs a reason")
	}
	assertDegradedShape(t, res)
}

// assertDegradedShape checks the single-fallback-shape contract.
func assertDegradedShape(t *testing.T, res *Result) {
	t.Helper()
	shapes := res.Geometry.Shapes
	if len(shapes) != 1 {
		t.Fatalf("degraded shapes: got %d, want 1", len(shapes))
	}
	s := shapes[0]
	if s.ID != "s0" {
		t.Errorf("id: got %q, want s0", s.ID)
	}
	if s.Type != geometry.ShapeUnknown {
		t.Errorf("type: got %v, want unknown", s.Type)
	}
	if s.Confidence >= 0.3 {
		t.Errorf("confidence: got %v, want a low value", s.Confidence)
	}
	if !s.Bounds.Valid() {
		t.Errorf("degraded bbox must be non-degenerate, got %+v", s.Bounds)
	}
	if res.Geometry.Metadata.Detector != "degraded" {
		t.Errorf("detector: got %q, want degraded", res.Geometry.Metadata.Detector)
	}
}

func TestDynamicMinArea(t *testing.T) {
	if got := dynamicMinArea(100, 100); got != minAreaFloor {
		t.Errorf("small image: got %d, want floor %d", got, minAreaFloor)
	}
	if got := dynamicMinArea(4000, 3000); got != 600 {
		t.Errorf("large image: got %d, want 600", got)
	}
}

func TestDynamicMinSides(t *testing.T) {
	minW, minH := dynamicMinSides(geometry.Calibration{})
	if minW != minSideFloor || minH != minSideFloor {
		t.Errorf("no hint: got (%d, %d), want floors", minW, minH)
	}

	minW, minH = dynamicMinSides(geometry.Calibration{MedianShapeWidth: 200, MedianShapeHeight: 100})
	if minW != 70 || minH != 35 {
		t.Errorf("hinted: got (%d, %d), want (70, 35)", minW, minH)
	}

	// A tiny hint must not lower the floor.
	minW, minH = dynamicMinSides(geometry.Calibration{MedianShapeWidth: 10, MedianShapeHeight: 10})
	if minW != minSideFloor || minH != minSideFloor {
		t.Errorf("tiny hint: got (%d, %d), want floors", minW, minH)
	}
}
