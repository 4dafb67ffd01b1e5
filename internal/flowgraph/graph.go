package flowgraph

import (
	"sort"
	"strconv"

	"github.com/flowforge/flowforge/internal/geometry"
)

// FlowNode is one node of the flow graph. Its ID shares identity with
// the ShapePrimitive it was built from.
//
// A node carries either Out (the unconditional forward edge, used by
// process and terminator nodes) or the OutYes/OutNo conditional pair
// (decision nodes), never a meaningful mix.
type FlowNode struct {
	ID    string             `json:"id"`
	Shape geometry.ShapeType `json:"shape"`
	Text  string             `json:"text"`

	// Out is the single forward pointer, empty when absent.
	Out string `json:"out,omitempty"`

	// OutYes and OutNo are the decision branch pointers.
	OutYes string `json:"out_yes,omitempty"`
	OutNo  string `json:"out_no,omitempty"`
}

// FlowGraph is the directed control-flow graph of one diagram. Built
// once from a GeometryOutput and immutable afterward.
type FlowGraph struct {
	// Nodes maps node id to node, one entry per shape.
	Nodes map[string]FlowNode

	// StartNode is the entry node id, empty only for empty graphs.
	StartNode string

	// Orientation is the chosen flow-reading direction.
	Orientation geometry.Orientation
}

// NodeIDs returns the node ids in detection order, the canonical
// iteration order for rendering. Detection ids carry a numeric suffix
// ("s0", "s1", ... "s10"), so plain string sorting would put s10
// before s2; ids sharing a prefix compare by that suffix instead.
func (g FlowGraph) NodeIDs() []string {
	ids := make([]string, 0, len(g.Nodes))
	for id := range g.Nodes {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return idLess(ids[i], ids[j]) })
	return ids
}

func idLess(a, b string) bool {
	pa, na, oka := splitID(a)
	pb, nb, okb := splitID(b)
	if oka && okb && pa == pb {
		return na < nb
	}
	return a < b
}

// splitID separates a trailing decimal suffix from an id. ok is false
// when the id has no suffix or the suffix does not fit an int.
func splitID(id string) (prefix string, n int, ok bool) {
	i := len(id)
	for i > 0 && id[i-1] >= '0' && id[i-1] <= '9' {
		i--
	}
	if i == len(id) {
		return id, 0, false
	}
	n, err := strconv.Atoi(id[i:])
	if err != nil {
		return id, 0, false
	}
	return id[:i], n, true
}

// Equal reports structural equality: same orientation, start node,
// and node set with identical pointers and text.
func (g FlowGraph) Equal(o FlowGraph) bool {
	if g.Orientation != o.Orientation || g.StartNode != o.StartNode || len(g.Nodes) != len(o.Nodes) {
		return false
	}
	for id, n := range g.Nodes {
		on, ok := o.Nodes[id]
		if !ok || n != on {
			return false
		}
	}
	return true
}

// EdgeCount returns how many pointers are populated across all nodes.
func (g FlowGraph) EdgeCount() int {
	n := 0
	for _, node := range g.Nodes {
		if node.Out != "" {
			n++
		}
		if node.OutYes != "" {
			n++
		}
		if node.OutNo != "" {
			n++
		}
	}
	return n
}

// SameNodeSet reports whether two graphs share the identical node-id
// set, the contract a review collaborator must preserve.
func (g FlowGraph) SameNodeSet(o FlowGraph) bool {
	if len(g.Nodes) != len(o.Nodes) {
		return false
	}
	for id := range g.Nodes {
		if _, ok := o.Nodes[id]; !ok {
			return false
		}
	}
	return true
}
