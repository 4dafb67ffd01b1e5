package flowgraph

import (
	"math"

	"github.com/flowforge/flowforge/internal/geometry"
)

// overlapGate is the minimum perpendicular-projection overlap,
// as a fraction of the smaller span, for two shapes to count as
// flow-adjacent.
const overlapGate = 0.15

// BranchPolicy chooses which geometric side of a decision diamond maps
// to the "yes" branch when no OCR hint says otherwise. The mapping is
// a convention, not a detected fact.
type BranchPolicy int

const (
	// RightYes maps the right (top-down) or lower (left-right) side to
	// "yes" and the other side to "no". This is the default.
	RightYes BranchPolicy = iota

	// LeftYes swaps the default mapping.
	LeftYes
)

// BranchLabel is a YES/NO token read near one side of a decision.
type BranchLabel string

const (
	BranchYes BranchLabel = "YES"
	BranchNo  BranchLabel = "NO"
)

// Hint carries OCR-derived branch labels for one decision shape. Left
// and Right refer to the two branch slots in perpendicular order: left
// then right of the diamond in top-down orientation, above then below
// in left-right. Empty means no label was read on that side.
type Hint struct {
	Left  BranchLabel `json:"left,omitempty"`
	Right BranchLabel `json:"right,omitempty"`
}

// Options tunes graph construction. The zero value gives the default
// deterministic baseline.
type Options struct {
	// Hints maps decision shape ids to yes/no labels read beside the
	// diamond. A hint can swap the default branch assignment when both
	// branch slots are populated.
	Hints map[string]Hint

	// Forced overrides orientation inference entirely when set.
	Forced geometry.Orientation

	// Policy picks the default side-to-label mapping.
	Policy BranchPolicy
}

// InferOrientation determines the diagram's flow direction by majority
// vote: for every shape, does a gated neighbor exist below it, and
// does one exist to its right? A neighbor only counts when its
// perpendicular projection overlaps the shape's by more than 15% of
// the smaller span, the same gate edge assignment uses. Ties resolve
// to top-down, as do diagrams with fewer than two shapes.
func InferOrientation(g geometry.GeometryOutput) geometry.Orientation {
	shapes := g.Shapes
	if len(shapes) < 2 {
		return geometry.TopDown
	}
	downVotes, rightVotes := 0, 0
	for _, s := range shapes {
		scx, scy := s.Bounds.Center()
		hasDown, hasRight := false, false
		for _, t := range shapes {
			if t.ID == s.ID {
				continue
			}
			tcx, tcy := t.Bounds.Center()
			if tcy > scy && gatedOverlapX(s.Bounds, t.Bounds) {
				hasDown = true
			}
			if tcx > scx && gatedOverlapY(s.Bounds, t.Bounds) {
				hasRight = true
			}
		}
		if hasDown {
			downVotes++
		}
		if hasRight {
			rightVotes++
		}
	}
	if downVotes >= rightVotes {
		return geometry.TopDown
	}
	return geometry.LeftRight
}

// Build constructs the flow graph from finalized geometry.
//
// For every shape the forward pointer is the nearest shape strictly
// ahead along the orientation axis whose perpendicular projection
// overlaps the source's by more than 15% of the smaller span. Decision
// shapes instead get a branch pair: the nearest gated candidate on
// each perpendicular side, labeled by the branch policy and optionally
// swapped by a hint. The start node is the unique zero-in-degree node,
// falling back to the topmost (then leftmost) center.
func Build(g geometry.GeometryOutput, opts Options) FlowGraph {
	shapes := g.Shapes

	orientation := opts.Forced
	if orientation == geometry.OrientationUnset {
		orientation = InferOrientation(g)
	}

	nodes := make(map[string]FlowNode, len(shapes))
	for _, s := range shapes {
		nodes[s.ID] = FlowNode{ID: s.ID, Shape: s.Type, Text: s.Text}
	}

	if len(shapes) < 2 {
		return FlowGraph{
			Nodes:       nodes,
			StartNode:   singleStart(shapes),
			Orientation: geometry.TopDown,
		}
	}

	for _, s := range shapes {
		if s.Type == geometry.ShapeDecision {
			continue
		}
		if id := forwardNeighbor(s, shapes, orientation); id != "" {
			n := nodes[s.ID]
			n.Out = id
			nodes[s.ID] = n
		}
	}

	for _, s := range shapes {
		if s.Type != geometry.ShapeDecision {
			continue
		}
		left, right := branchCandidates(s, shapes, orientation)
		n := nodes[s.ID]
		assignBranches(&n, left, right, opts.Policy, opts.Hints[s.ID])
		nodes[s.ID] = n
	}

	return FlowGraph{
		Nodes:       nodes,
		StartNode:   selectStart(shapes, nodes),
		Orientation: orientation,
	}
}

func singleStart(shapes []geometry.ShapePrimitive) string {
	if len(shapes) == 1 {
		return shapes[0].ID
	}
	return ""
}

// forwardNeighbor finds the nearest shape strictly ahead of s along
// the orientation axis, gated on perpendicular overlap. Distance is
// measured center to center along the axis; equidistant candidates
// resolve to the earlier one in detection order.
func forwardNeighbor(s geometry.ShapePrimitive, shapes []geometry.ShapePrimitive, orientation geometry.Orientation) string {
	scx, scy := s.Bounds.Center()
	best := ""
	bestDist := math.MaxFloat64
	for _, t := range shapes {
		if t.ID == s.ID {
			continue
		}
		tcx, tcy := t.Bounds.Center()
		var d float64
		if orientation == geometry.TopDown {
			if tcy <= scy {
				continue
			}
			if !gatedOverlapX(s.Bounds, t.Bounds) {
				continue
			}
			d = tcy - scy
		} else {
			if tcx <= scx {
				continue
			}
			if !gatedOverlapY(s.Bounds, t.Bounds) {
				continue
			}
			d = tcx - scx
		}
		if d < bestDist {
			bestDist = d
			best = t.ID
		}
	}
	return best
}

// branchCandidates partitions gated neighbors of a decision shape into
// the two perpendicular sides and picks the nearest on each. In
// top-down orientation the sides are left/right of the diamond center
// with y-overlap gating; in left-right they are above/below with
// x-overlap gating, reusing the same two slots.
func branchCandidates(s geometry.ShapePrimitive, shapes []geometry.ShapePrimitive, orientation geometry.Orientation) (left, right string) {
	scx, scy := s.Bounds.Center()
	leftDist, rightDist := math.MaxFloat64, math.MaxFloat64
	for _, t := range shapes {
		if t.ID == s.ID {
			continue
		}
		tcx, tcy := t.Bounds.Center()
		if orientation == geometry.TopDown {
			if !gatedOverlapY(s.Bounds, t.Bounds) {
				continue
			}
			if tcx < scx {
				if d := scx - tcx; d < leftDist {
					leftDist = d
					left = t.ID
				}
			} else {
				if d := tcx - scx; d < rightDist {
					rightDist = d
					right = t.ID
				}
			}
		} else {
			if !gatedOverlapX(s.Bounds, t.Bounds) {
				continue
			}
			if tcy < scy {
				if d := scy - tcy; d < leftDist {
					leftDist = d
					left = t.ID
				}
			} else {
				if d := tcy - scy; d < rightDist {
					rightDist = d
					right = t.ID
				}
			}
		}
	}
	return left, right
}

// assignBranches maps the side candidates onto OutYes/OutNo. The
// policy sets the default; a hint naming the far-side label swaps the
// assignment, but only when both sides are populated; with a single
// candidate there is nothing to disambiguate.
func assignBranches(n *FlowNode, left, right string, policy BranchPolicy, hint Hint) {
	yes, no := right, left
	if policy == LeftYes {
		yes, no = left, right
	}
	if left != "" && right != "" {
		swapped := left == no && (hint.Left == BranchYes || hint.Right == BranchNo)
		if left == yes && (hint.Left == BranchNo || hint.Right == BranchYes) {
			swapped = true
		}
		if swapped {
			yes, no = no, yes
		}
	}
	n.OutYes = yes
	n.OutNo = no
}

// selectStart picks the unique node with in-degree zero; when none or
// several exist, the topmost-by-center shape wins, with leftmost as
// the deterministic tiebreak.
func selectStart(shapes []geometry.ShapePrimitive, nodes map[string]FlowNode) string {
	incoming := make(map[string]int, len(nodes))
	for id := range nodes {
		incoming[id] = 0
	}
	for _, n := range nodes {
		for _, tid := range []string{n.Out, n.OutYes, n.OutNo} {
			if tid != "" {
				incoming[tid]++
			}
		}
	}

	start := ""
	count := 0
	// Walk shapes (not the map) so candidate order is deterministic.
	for _, s := range shapes {
		if incoming[s.ID] == 0 {
			if count == 0 {
				start = s.ID
			}
			count++
		}
	}
	if count == 1 {
		return start
	}

	best := ""
	bestY, bestX := math.MaxFloat64, math.MaxFloat64
	for _, s := range shapes {
		cx, cy := s.Bounds.Center()
		if cy < bestY || (cy == bestY && cx < bestX) {
			bestY, bestX = cy, cx
			best = s.ID
		}
	}
	return best
}

func gatedOverlapX(a, b geometry.Bounds) bool {
	ov := geometry.Overlap1D(a.X1, a.X2, b.X1, b.X2)
	smaller := a.Width()
	if b.Width() < smaller {
		smaller = b.Width()
	}
	return float64(ov) > overlapGate*float64(smaller)
}

func gatedOverlapY(a, b geometry.Bounds) bool {
	ov := geometry.Overlap1D(a.Y1, a.Y2, b.Y1, b.Y2)
	smaller := a.Height()
	if b.Height() < smaller {
		smaller = b.Height()
	}
	return float64(ov) > overlapGate*float64(smaller)
}
