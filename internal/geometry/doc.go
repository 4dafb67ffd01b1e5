// Package geometry defines the primitive types exchanged between the
// detection stages and the flow graph builder.
//
// The central aggregate is GeometryOutput: the full set of shape and
// connector primitives extracted from one image. GeometryOutput is
// treated as a value: enrichment steps (OCR annotation, calibrated
// re-detection) return a new copy rather than mutating in place, so a
// baseline result can always be recovered.
//
// # Coordinate System
//
// All coordinates use the standard image convention:
//   - Origin (0, 0) at top-left corner
//   - X increases rightward
//   - Y increases downward
//   - Bounding boxes use inclusive top-left and exclusive bottom-right
//
// # Confidence Scores
//
// Shape and connector primitives carry confidence scores (0.0 to 1.0)
// assigned by the detector's classification rules. Higher values
// indicate cleaner matches against the expected shape pattern.
package geometry
