package detect

import (
	"fmt"
	"sort"

	"github.com/flowforge/flowforge/internal/geometry"
)

// Reducer thresholds.
const (
	// mergePad is how far apart two boxes may sit and still be
	// considered fragments of one stroke-gapped shape.
	mergePad = 4

	// DefaultNMSThreshold is the IoU above which two candidates are
	// treated as duplicate detections of the same physical shape.
	DefaultNMSThreshold = 0.5

	// nestedContainment and nestedAreaRatio identify contour-hierarchy
	// artifacts: a small box mostly inside a strictly larger one.
	nestedContainment = 0.8
	nestedAreaRatio   = 0.2

	// capMultiplier bounds the survivor count against the calibration
	// node estimate.
	capMultiplier = 3

	// unexpectedTypePenalty scales the confidence of candidates whose
	// type the calibration says is absent from the diagram.
	unexpectedTypePenalty = 0.5
)

// ReduceOptions tunes the candidate reducer. The zero value gives the
// standard pipeline behavior.
type ReduceOptions struct {
	// NMSThreshold overrides DefaultNMSThreshold when > 0.
	NMSThreshold float64

	// KeepUnknown retains unknown-typed candidates, which are
	// otherwise dropped before merging.
	KeepUnknown bool
}

// Reduce runs the full candidate reduction: drop unknowns (unless
// kept), penalize types the calibration excludes, merge touching
// fragments, suppress duplicates, discard nested artifacts, cap the
// count, and reassign dense ids in the surviving detection order. Every step returns a new slice; the input is never
// modified.
func Reduce(shapes []geometry.ShapePrimitive, calib geometry.Calibration, opts ReduceOptions) []geometry.ShapePrimitive {
	threshold := opts.NMSThreshold
	if threshold <= 0 {
		threshold = DefaultNMSThreshold
	}
	calib = calib.Normalize()

	out := shapes
	if !opts.KeepUnknown {
		out = dropUnknown(out)
	}
	out = penalizeUnexpected(out, calib)
	out = MergeTouching(out, mergePad)
	out = SuppressOverlaps(out, threshold)
	out = SuppressNested(out)
	out = CapCount(out, calib.EstimatedNodeCount)
	return reassignIDs(out)
}

// penalizeUnexpected halves the confidence of typed candidates whose
// type the calibration hint excludes. The hint is advisory, so the
// candidates survive; the lowered confidence only demotes them when
// they compete with an expected type during merging and suppression.
func penalizeUnexpected(shapes []geometry.ShapePrimitive, calib geometry.Calibration) []geometry.ShapePrimitive {
	if len(calib.ShapeTypes) == 0 {
		return shapes
	}
	out := make([]geometry.ShapePrimitive, len(shapes))
	copy(out, shapes)
	for i := range out {
		if out[i].Type != geometry.ShapeUnknown && !calib.Expects(out[i].Type) {
			out[i].Confidence *= unexpectedTypePenalty
		}
	}
	return out
}

func dropUnknown(shapes []geometry.ShapePrimitive) []geometry.ShapePrimitive {
	kept := make([]geometry.ShapePrimitive, 0, len(shapes))
	for _, s := range shapes {
		if s.Type != geometry.ShapeUnknown {
			kept = append(kept, s)
		}
	}
	return kept
}

// MergeTouching unions candidates whose padded bounding boxes touch or
// overlap, repairing shapes split by stroke gaps. The surviving type
// and confidence come from the highest-confidence member of each
// merged group; the box is the union of the group.
func MergeTouching(shapes []geometry.ShapePrimitive, pad int) []geometry.ShapePrimitive {
	merged := make([]geometry.ShapePrimitive, 0, len(shapes))
	for _, s := range shapes {
		joined := false
		for i := range merged {
			if merged[i].Bounds.Pad(pad).Intersects(s.Bounds.Pad(pad)) {
				merged[i].Bounds = merged[i].Bounds.Union(s.Bounds)
				if s.Confidence > merged[i].Confidence {
					merged[i].Type = s.Type
					merged[i].Confidence = s.Confidence
				}
				joined = true
				break
			}
		}
		if !joined {
			merged = append(merged, s)
		}
	}
	return merged
}

// SuppressOverlaps performs greedy non-maximum suppression: sort by
// (confidence, area) descending and keep a candidate only if its IoU
// against every already-kept candidate stays below the threshold.
func SuppressOverlaps(shapes []geometry.ShapePrimitive, iouThreshold float64) []geometry.ShapePrimitive {
	ordered := append([]geometry.ShapePrimitive(nil), shapes...)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Confidence != ordered[j].Confidence {
			return ordered[i].Confidence > ordered[j].Confidence
		}
		return ordered[i].Bounds.Area() > ordered[j].Bounds.Area()
	})

	kept := make([]geometry.ShapePrimitive, 0, len(ordered))
	for _, s := range ordered {
		dup := false
		for _, k := range kept {
			if s.Bounds.IoU(k.Bounds) >= iouThreshold {
				dup = true
				break
			}
		}
		if !dup {
			kept = append(kept, s)
		}
	}
	return kept
}

// SuppressNested discards candidates that are artifacts of the nested
// contour hierarchy: mostly contained (over 80% of their own area) in
// a strictly larger survivor while holding under 20% of its area.
func SuppressNested(shapes []geometry.ShapePrimitive) []geometry.ShapePrimitive {
	kept := make([]geometry.ShapePrimitive, 0, len(shapes))
	for i, s := range shapes {
		nested := false
		for j, other := range shapes {
			if i == j || other.Bounds.Area() <= s.Bounds.Area() {
				continue
			}
			ratio := float64(s.Bounds.Area()) / float64(other.Bounds.Area())
			if containment(s.Bounds, other.Bounds) > nestedContainment && ratio < nestedAreaRatio {
				nested = true
				break
			}
		}
		if !nested {
			kept = append(kept, s)
		}
	}
	return kept
}

// containment is the fraction of b's own area covered by o.
func containment(b, o geometry.Bounds) float64 {
	ix := geometry.Overlap1D(b.X1, b.X2, o.X1, o.X2)
	iy := geometry.Overlap1D(b.Y1, b.Y2, o.Y1, o.Y2)
	area := b.Area()
	if area <= 0 {
		return 0
	}
	return float64(ix*iy) / float64(area)
}

// CapCount bounds runaway false positives: with an estimated node
// count hint, at most 3x that many candidates survive, keeping the
// largest by area. Without a hint the list passes through unchanged.
func CapCount(shapes []geometry.ShapePrimitive, estimated int) []geometry.ShapePrimitive {
	if estimated <= 0 || len(shapes) <= capMultiplier*estimated {
		return append([]geometry.ShapePrimitive(nil), shapes...)
	}
	limit := capMultiplier * estimated

	byArea := append([]geometry.ShapePrimitive(nil), shapes...)
	sort.SliceStable(byArea, func(i, j int) bool {
		return byArea[i].Bounds.Area() > byArea[j].Bounds.Area()
	})
	allowed := make(map[string]bool, limit)
	for _, s := range byArea[:limit] {
		allowed[s.ID] = true
	}

	// Preserve original order among survivors.
	kept := make([]geometry.ShapePrimitive, 0, limit)
	for _, s := range shapes {
		if allowed[s.ID] {
			kept = append(kept, s)
		}
	}
	return kept
}

// reassignIDs renumbers survivors densely in their current order so
// exporter output is reproducible for identical input.
func reassignIDs(shapes []geometry.ShapePrimitive) []geometry.ShapePrimitive {
	out := make([]geometry.ShapePrimitive, len(shapes))
	for i, s := range shapes {
		s.ID = fmt.Sprintf("s%d", i)
		out[i] = s
	}
	return out
}
