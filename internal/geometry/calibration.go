package geometry

// ArrowStyle describes how connectors are drawn in the source diagram,
// as reported by a calibration provider. It is advisory only.
type ArrowStyle string

const (
	ArrowStyleUnknown ArrowStyle = ""
	ArrowStyleOpen    ArrowStyle = "open"
	ArrowStyleFilled  ArrowStyle = "filled"
	ArrowStyleLine    ArrowStyle = "line" // plain line, no head
)

// Calibration carries optional diagram-wide estimates used to tune
// detection thresholds. Every field is optional; the zero value of a
// field means "no hint". A Calibration never makes detection fail;
// out-of-range values are clamped or dropped by Normalize.
type Calibration struct {
	// Orientation forces the flow direction when set.
	Orientation Orientation `json:"orientation,omitempty"`

	// MedianShapeWidth and MedianShapeHeight estimate the typical
	// shape size in pixels. Used to derive minimum bbox filters.
	MedianShapeWidth  int `json:"median_shape_width,omitempty"`
	MedianShapeHeight int `json:"median_shape_height,omitempty"`

	// ShapeTypes lists the shape types expected to be present.
	ShapeTypes []ShapeType `json:"shape_types_present,omitempty"`

	// EstimatedNodeCount bounds runaway candidate counts; the reducer
	// keeps at most 3x this many shapes when it is set.
	EstimatedNodeCount int `json:"estimated_node_count,omitempty"`

	// ArrowThicknessPx estimates connector stroke thickness.
	ArrowThicknessPx int `json:"arrow_thickness_px,omitempty"`

	// ArrowStyle describes the connector drawing style.
	ArrowStyle ArrowStyle `json:"arrow_style,omitempty"`
}

// Calibration bounds. Hints outside these ranges are treated as absent
// rather than rejected, per the per-field clamping policy.
const (
	maxMedianShapeSide  = 4096
	maxEstimatedNodes   = 500
	maxArrowThicknessPx = 64
)

// Normalize returns a copy of c with out-of-range fields zeroed and
// the shape-type list deduplicated. It never fails: a malformed hint
// degrades to "no hint" for that field only.
func (c Calibration) Normalize() Calibration {
	n := c
	if n.Orientation != TopDown && n.Orientation != LeftRight {
		n.Orientation = OrientationUnset
	}
	if n.MedianShapeWidth < 0 || n.MedianShapeWidth > maxMedianShapeSide {
		n.MedianShapeWidth = 0
	}
	if n.MedianShapeHeight < 0 || n.MedianShapeHeight > maxMedianShapeSide {
		n.MedianShapeHeight = 0
	}
	if n.EstimatedNodeCount < 0 || n.EstimatedNodeCount > maxEstimatedNodes {
		n.EstimatedNodeCount = 0
	}
	if n.ArrowThicknessPx < 0 || n.ArrowThicknessPx > maxArrowThicknessPx {
		n.ArrowThicknessPx = 0
	}
	switch n.ArrowStyle {
	case ArrowStyleOpen, ArrowStyleFilled, ArrowStyleLine:
	default:
		n.ArrowStyle = ArrowStyleUnknown
	}
	if len(n.ShapeTypes) > 0 {
		seen := make(map[ShapeType]bool, len(n.ShapeTypes))
		kept := make([]ShapeType, 0, len(n.ShapeTypes))
		for _, t := range n.ShapeTypes {
			if t == ShapeUnknown || seen[t] {
				continue
			}
			seen[t] = true
			kept = append(kept, t)
		}
		n.ShapeTypes = kept
	}
	return n
}

// Expects reports whether the calibration names t as present. With no
// shape-type hint at all, every type is expected.
func (c Calibration) Expects(t ShapeType) bool {
	if len(c.ShapeTypes) == 0 {
		return true
	}
	for _, st := range c.ShapeTypes {
		if st == t {
			return true
		}
	}
	return false
}
