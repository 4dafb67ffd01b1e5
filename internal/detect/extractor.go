package detect

import (
	"fmt"
	"image"
	"math"

	"github.com/flowforge/flowforge/internal/geometry"
	"github.com/flowforge/flowforge/internal/imaging"
)

// DetectorName identifies the contour-based detection strategy in
// GeometryOutput metadata.
const DetectorName = "contour-otsu"

// Detection thresholds. Floors guard against a bad calibration hint
// suppressing every contour.
const (
	minAreaFloor    = 120     // square pixels
	minSideFloor    = 20      // pixels
	areaFraction    = 20000.0 // dynamic min area = imageArea / areaFraction
	simplifyFactor  = 0.02    // Douglas-Peucker tolerance as fraction of perimeter
	axisAlignedMax  = 20.0    // degrees; at or below is axis-aligned
	diamondAngleMax = 70.0    // degrees; (axisAlignedMax, diamondAngleMax] is a diamond
	circularityMin  = 0.7     // 4*pi*area/perimeter^2 threshold for terminators
)

// Aspect-ratio sanity bands per shape type.
const (
	processAspectMin  = 0.5
	processAspectMax  = 4.5
	decisionAspectMin = 0.5
	decisionAspectMax = 2.0
)

// Confidence assigned per classification rule branch. Clean geometric
// matches score high; fallback classifications score low.
const (
	confProcess         = 0.9
	confDecision        = 0.85
	confTerminator      = 0.8
	confProcessFallback = 0.5
	confUnknown         = 0.3
	confDegraded        = 0.1
)

// Result is the outcome of one detection pass.
//
// Detection never surfaces an error to the caller. When the input is
// unreadable or an internal step panics, Degraded is true, Reason
// carries the failure description, and Geometry holds the single
// low-confidence unknown shape spanning the frame.
type Result struct {
	Geometry geometry.GeometryOutput

	// Degraded marks a fallback result rather than a real detection.
	Degraded bool

	// Reason describes why the result degraded. Empty when Degraded
	// is false.
	Reason string
}

// ExtractBytes decodes raw image bytes and runs Extract. A decode
// failure degrades instead of erroring.
func ExtractBytes(data []byte, calib geometry.Calibration) *Result {
	img, err := imaging.Decode(data)
	if err != nil {
		return DegradedResult(0, 0, fmt.Sprintf("decode: %v", err))
	}
	return Extract(img, calib)
}

// Extract runs the full shape extraction pass: binarize, find
// contours, filter, simplify, classify. The returned shapes are raw
// candidates in detection order with ids "s0", "s1", ...; callers
// normally pass them through Reduce before building a graph.
func Extract(img image.Image, calib geometry.Calibration) (res *Result) {
	defer func() {
		if r := recover(); r != nil {
			w, h := 0, 0
			if img != nil {
				w, h = img.Bounds().Dx(), img.Bounds().Dy()
			}
			res = DegradedResult(w, h, fmt.Sprintf("internal: %v", r))
		}
	}()

	if img == nil {
		return DegradedResult(0, 0, "nil image")
	}
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width == 0 || height == 0 {
		return DegradedResult(width, height, "empty image")
	}

	calib = calib.Normalize()
	minArea := dynamicMinArea(width, height)
	minW, minH := dynamicMinSides(calib)

	bin := imaging.Binarize(img)
	contours := findContours(bin)

	shapes := make([]geometry.ShapePrimitive, 0, len(contours))
	for _, c := range contours {
		if c.area < float64(minArea) {
			continue
		}
		if c.bounds.Width() < minW || c.bounds.Height() < minH {
			continue
		}

		poly := simplifyClosed(c.boundary, simplifyFactor*c.perimeter)
		shapeType, conf := classify(c, poly)

		// Unknown candidates stay in the raw list; the reducer drops
		// them unless asked to keep them.
		shapes = append(shapes, geometry.ShapePrimitive{
			ID:         fmt.Sprintf("s%d", len(shapes)),
			Bounds:     c.bounds,
			Type:       shapeType,
			Confidence: conf,
		})
	}

	return &Result{
		Geometry: geometry.GeometryOutput{
			Shapes:     shapes,
			Connectors: []geometry.ConnectorPrimitive{},
			Metadata: geometry.Metadata{
				Detector:     DetectorName,
				SourceWidth:  width,
				SourceHeight: height,
			},
		},
	}
}

// classify maps a contour and its simplified polygon to a shape type
// and rule confidence.
//
// Four-vertex polygons are split by the min-area rectangle's rotation:
// near-axis-aligned boxes are processes, mid-band rotations are
// decision diamonds, and steep rotations fall back to process only
// when the aspect ratio is plausible. Polygons with six or more
// vertices and high circularity are terminators.
func classify(c contour, poly []geometry.Point) (geometry.ShapeType, float64) {
	n := len(poly)
	switch {
	case n == 4:
		angle, rw, rh := minAreaRect(c.boundary)
		switch {
		case angle <= axisAlignedMax:
			return geometry.ShapeProcess, confProcess
		case angle <= diamondAngleMax:
			if nearSquare(rw, rh) && aspectWithin(c.bounds, decisionAspectMin, decisionAspectMax) {
				return geometry.ShapeDecision, confDecision
			}
			return geometry.ShapeUnknown, confUnknown
		default:
			if aspectWithin(c.bounds, processAspectMin, processAspectMax) {
				return geometry.ShapeProcess, confProcessFallback
			}
			return geometry.ShapeUnknown, confUnknown
		}
	case n >= 6:
		if circularity(c) > circularityMin {
			return geometry.ShapeTerminator, confTerminator
		}
		return geometry.ShapeUnknown, confUnknown
	default:
		return geometry.ShapeUnknown, confUnknown
	}
}

// circularity is 4*pi*area / perimeter^2: 1.0 for a perfect circle,
// lower for elongated or ragged outlines.
func circularity(c contour) float64 {
	if c.perimeter == 0 {
		return 0
	}
	return 4 * math.Pi * c.area / (c.perimeter * c.perimeter)
}

// nearSquare checks that the rotated rectangle's sides are within the
// tolerance a hand-drawn diamond plausibly has.
func nearSquare(w, h float64) bool {
	if w <= 0 || h <= 0 {
		return false
	}
	ratio := math.Min(w, h) / math.Max(w, h)
	return ratio >= 0.6
}

func aspectWithin(b geometry.Bounds, lo, hi float64) bool {
	h := b.Height()
	if h == 0 {
		return false
	}
	aspect := float64(b.Width()) / float64(h)
	return aspect >= lo && aspect <= hi
}

// dynamicMinArea scales the contour area floor with the image, so a
// wall-poster scan does not admit pen specks, while tiny thumbnails
// keep the fixed floor.
func dynamicMinArea(width, height int) int {
	dyn := int(float64(width*height) / areaFraction)
	if dyn < minAreaFloor {
		return minAreaFloor
	}
	return dyn
}

// dynamicMinSides derives the minimum candidate bbox sides from the
// calibration's median shape size, floored so that a bad hint cannot
// suppress everything.
func dynamicMinSides(calib geometry.Calibration) (minW, minH int) {
	minW, minH = minSideFloor, minSideFloor
	if calib.MedianShapeWidth > 0 {
		if w := int(0.35 * float64(calib.MedianShapeWidth)); w > minW {
			minW = w
		}
	}
	if calib.MedianShapeHeight > 0 {
		if h := int(0.35 * float64(calib.MedianShapeHeight)); h > minH {
			minH = h
		}
	}
	return minW, minH
}

// DegradedResult builds the single-unknown-shape fallback. When the
// frame size is unknown a nominal 100x100 frame stands in, so the
// shape's bbox invariant still holds.
func DegradedResult(width, height int, reason string) *Result {
	fw, fh := width, height
	if fw <= 0 || fh <= 0 {
		fw, fh = 100, 100
	}
	return &Result{
		Geometry: geometry.GeometryOutput{
			Shapes: []geometry.ShapePrimitive{{
				ID:         "s0",
				Bounds:     geometry.Bounds{X1: 0, Y1: 0, X2: fw, Y2: fh},
				Type:       geometry.ShapeUnknown,
				Confidence: confDegraded,
			}},
			Connectors: []geometry.ConnectorPrimitive{},
			Metadata: geometry.Metadata{
				Detector:     "degraded",
				SourceWidth:  width,
				SourceHeight: height,
			},
		},
		Degraded: true,
		Reason:   reason,
	}
}
