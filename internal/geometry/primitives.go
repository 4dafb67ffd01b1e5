package geometry

import "fmt"

// ShapeType classifies a detected shape by its flowchart role.
type ShapeType int

const (
	// ShapeUnknown is the fallback for contours that match no rule.
	ShapeUnknown ShapeType = iota

	// ShapeProcess is an axis-aligned rectangle (a process step).
	ShapeProcess

	// ShapeDecision is a rotated square (a diamond / branch point).
	ShapeDecision

	// ShapeTerminator is a rounded or circular shape (start / end).
	ShapeTerminator
)

// String returns the wire name of the shape type.
func (t ShapeType) String() string {
	switch t {
	case ShapeProcess:
		return "process"
	case ShapeDecision:
		return "decision"
	case ShapeTerminator:
		return "terminator"
	default:
		return "unknown"
	}
}

// ParseShapeType maps a wire name back to a ShapeType.
// Unrecognized names map to ShapeUnknown.
func ParseShapeType(s string) ShapeType {
	switch s {
	case "process":
		return ShapeProcess
	case "decision":
		return ShapeDecision
	case "terminator":
		return ShapeTerminator
	default:
		return ShapeUnknown
	}
}

// MarshalText implements encoding.TextMarshaler.
func (t ShapeType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *ShapeType) UnmarshalText(b []byte) error {
	*t = ParseShapeType(string(b))
	return nil
}

// Orientation is the dominant reading direction of a diagram.
type Orientation int

const (
	// OrientationUnset means no orientation has been chosen or hinted.
	OrientationUnset Orientation = iota

	// TopDown flows from the top of the image toward the bottom.
	TopDown

	// LeftRight flows from the left of the image toward the right.
	LeftRight
)

// String returns the wire name of the orientation.
func (o Orientation) String() string {
	switch o {
	case TopDown:
		return "top-down"
	case LeftRight:
		return "left-right"
	default:
		return ""
	}
}

// ParseOrientation maps a wire name back to an Orientation.
// Unrecognized names map to OrientationUnset.
func ParseOrientation(s string) Orientation {
	switch s {
	case "top-down":
		return TopDown
	case "left-right":
		return LeftRight
	default:
		return OrientationUnset
	}
}

// Point represents a 2D coordinate in pixel space.
type Point struct {
	X int `json:"x"` // Horizontal position (0 = leftmost)
	Y int `json:"y"` // Vertical position (0 = topmost)
}

// Bounds represents a rectangular bounding box in pixel coordinates.
//
// The coordinate convention follows standard image bounds:
//   - (X1, Y1) is the top-left corner (inclusive)
//   - (X2, Y2) is the bottom-right corner (exclusive for iteration)
//
// A valid Bounds is non-degenerate: X1 < X2 and Y1 < Y2.
type Bounds struct {
	X1 int `json:"x1"` // Left edge (inclusive)
	Y1 int `json:"y1"` // Top edge (inclusive)
	X2 int `json:"x2"` // Right edge
	Y2 int `json:"y2"` // Bottom edge
}

// Valid reports whether the box is non-degenerate.
func (b Bounds) Valid() bool {
	return b.X1 < b.X2 && b.Y1 < b.Y2
}

// Width is the horizontal extent in pixels.
func (b Bounds) Width() int { return b.X2 - b.X1 }

// Height is the vertical extent in pixels.
func (b Bounds) Height() int { return b.Y2 - b.Y1 }

// Area is the box area in square pixels.
func (b Bounds) Area() int { return b.Width() * b.Height() }

// Center returns the center of the box in floating-point pixel
// coordinates, so adjacent shapes of odd and even spans sort stably.
func (b Bounds) Center() (cx, cy float64) {
	return 0.5 * float64(b.X1+b.X2), 0.5 * float64(b.Y1+b.Y2)
}

// Pad grows the box by p pixels on every side.
func (b Bounds) Pad(p int) Bounds {
	return Bounds{X1: b.X1 - p, Y1: b.Y1 - p, X2: b.X2 + p, Y2: b.Y2 + p}
}

// Union returns the smallest box containing both b and o.
func (b Bounds) Union(o Bounds) Bounds {
	u := b
	if o.X1 < u.X1 {
		u.X1 = o.X1
	}
	if o.Y1 < u.Y1 {
		u.Y1 = o.Y1
	}
	if o.X2 > u.X2 {
		u.X2 = o.X2
	}
	if o.Y2 > u.Y2 {
		u.Y2 = o.Y2
	}
	return u
}

// Intersects reports whether the two boxes share any area.
func (b Bounds) Intersects(o Bounds) bool {
	return b.X1 < o.X2 && o.X1 < b.X2 && b.Y1 < o.Y2 && o.Y1 < b.Y2
}

// IoU returns the intersection-over-union overlap ratio of two boxes,
// in [0, 1]. Disjoint boxes return 0.
func (b Bounds) IoU(o Bounds) float64 {
	ix := min(b.X2, o.X2) - max(b.X1, o.X1)
	iy := min(b.Y2, o.Y2) - max(b.Y1, o.Y1)
	if ix <= 0 || iy <= 0 {
		return 0
	}
	inter := ix * iy
	union := b.Area() + o.Area() - inter
	if union <= 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

// Overlap1D returns the length of the overlap of two 1D spans.
func Overlap1D(a1, a2, b1, b2 int) int {
	v := min(a2, b2) - max(a1, b1)
	if v < 0 {
		return 0
	}
	return v
}

// ShapePrimitive is a single detected shape node in the flowchart.
type ShapePrimitive struct {
	// ID is a stable identifier assigned in detection order ("s0", "s1", ...).
	ID string `json:"id"`

	// Bounds is the axis-aligned bounding box of the shape.
	Bounds Bounds `json:"bbox"`

	// Type is the inferred flowchart role of the shape.
	Type ShapeType `json:"shape_type"`

	// Text is the OCR text inside the shape. Populated only by the
	// OCR annotator; empty until then.
	Text string `json:"text,omitempty"`

	// Confidence indicates how well the contour matched the
	// classification rule that produced Type (0.0 to 1.0).
	Confidence float64 `json:"confidence"`
}

// ConnectorPrimitive is a detected arrow or line between two shapes.
type ConnectorPrimitive struct {
	// ID is a stable identifier assigned in detection order ("c0", "c1", ...).
	ID string `json:"id"`

	// FromID and ToID reference ShapePrimitive ids. FromID != ToID.
	FromID string `json:"from"`
	ToID   string `json:"to"`

	// Label is the OCR text near the connector, if any.
	Label string `json:"label,omitempty"`

	// Points is the connector polyline, at least 2 points when present.
	Points []Point `json:"points,omitempty"`

	// Confidence indicates detection quality (0.0 to 1.0).
	Confidence float64 `json:"confidence"`
}

// Metadata describes the detection pass that produced a GeometryOutput.
type Metadata struct {
	// Detector names the detection strategy (e.g. "contour-otsu").
	Detector string `json:"detector"`

	// SourceName is the base name of the source image, if known.
	SourceName string `json:"source,omitempty"`

	// SourceWidth and SourceHeight are the image dimensions in pixels.
	SourceWidth  int `json:"width"`
	SourceHeight int `json:"height"`
}

// GeometryOutput is the complete set of geometric primitives extracted
// from one image.
//
// A GeometryOutput is produced once per detection pass and then treated
// as immutable: enrichment steps return a new value via WithShapes or
// Clone instead of modifying the slices in place.
type GeometryOutput struct {
	// Shapes in detection order.
	Shapes []ShapePrimitive `json:"shapes"`

	// Connectors between shapes, possibly empty.
	Connectors []ConnectorPrimitive `json:"connectors"`

	// Metadata for the detection pass.
	Metadata Metadata `json:"metadata"`
}

// Shape returns the shape with the given id, or false if absent.
func (g GeometryOutput) Shape(id string) (ShapePrimitive, bool) {
	for _, s := range g.Shapes {
		if s.ID == id {
			return s, true
		}
	}
	return ShapePrimitive{}, false
}

// WithShapes returns a copy of g whose shape list is replaced.
// Connectors and metadata are carried over unchanged.
func (g GeometryOutput) WithShapes(shapes []ShapePrimitive) GeometryOutput {
	out := g.Clone()
	out.Shapes = append([]ShapePrimitive(nil), shapes...)
	return out
}

// Clone returns a deep copy of g.
func (g GeometryOutput) Clone() GeometryOutput {
	out := GeometryOutput{
		Shapes:     append([]ShapePrimitive(nil), g.Shapes...),
		Connectors: make([]ConnectorPrimitive, 0, len(g.Connectors)),
		Metadata:   g.Metadata,
	}
	for _, c := range g.Connectors {
		c.Points = append([]Point(nil), c.Points...)
		out.Connectors = append(out.Connectors, c)
	}
	return out
}

// Validate checks the structural invariants of the aggregate: every
// bounding box is non-degenerate, connector endpoints reference
// existing shapes, and no connector is a self-loop.
func (g GeometryOutput) Validate() error {
	ids := make(map[string]bool, len(g.Shapes))
	for _, s := range g.Shapes {
		if !s.Bounds.Valid() {
			return fmt.Errorf("shape %s: degenerate bbox %+v", s.ID, s.Bounds)
		}
		if ids[s.ID] {
			return fmt.Errorf("shape %s: duplicate id", s.ID)
		}
		ids[s.ID] = true
	}
	for _, c := range g.Connectors {
		if c.FromID == c.ToID {
			return fmt.Errorf("connector %s: self loop on %s", c.ID, c.FromID)
		}
		if !ids[c.FromID] || !ids[c.ToID] {
			return fmt.Errorf("connector %s: dangling endpoint %s->%s", c.ID, c.FromID, c.ToID)
		}
		if len(c.Points) == 1 {
			return fmt.Errorf("connector %s: polyline needs at least 2 points", c.ID)
		}
	}
	return nil
}
