package flowgraph

import (
	"encoding/json"
	"fmt"

	"github.com/flowforge/flowforge/internal/geometry"
)

// wireNode is the canonical node schema. Absent pointers are explicit
// nulls so the document round-trips through collaborators that
// distinguish null from missing.
type wireNode struct {
	ID     string  `json:"id"`
	Shape  string  `json:"shape"`
	Text   string  `json:"text"`
	Out    *string `json:"out"`
	OutYes *string `json:"out_yes"`
	OutNo  *string `json:"out_no"`
}

type wireGraph struct {
	Orientation string              `json:"orientation"`
	StartNode   *string             `json:"start_node"`
	Nodes       map[string]wireNode `json:"nodes"`
}

// MarshalGraph serializes a flow graph to the canonical JSON
// interchange form, indented. The encoding is a pure function of the
// graph: parse(MarshalGraph(g)) reproduces g exactly.
func MarshalGraph(g FlowGraph) ([]byte, error) {
	w := wireGraph{
		Orientation: g.Orientation.String(),
		StartNode:   optional(g.StartNode),
		Nodes:       make(map[string]wireNode, len(g.Nodes)),
	}
	if w.Orientation == "" {
		w.Orientation = geometry.TopDown.String()
	}
	for id, n := range g.Nodes {
		w.Nodes[id] = wireNode{
			ID:     n.ID,
			Shape:  n.Shape.String(),
			Text:   n.Text,
			Out:    optional(n.Out),
			OutYes: optional(n.OutYes),
			OutNo:  optional(n.OutNo),
		}
	}
	return json.MarshalIndent(w, "", "  ")
}

// ParseGraph parses the canonical JSON form back into a FlowGraph,
// validating that every pointer references a node in the document and
// that no node id disagrees with its map key.
func ParseGraph(data []byte) (FlowGraph, error) {
	var w wireGraph
	if err := json.Unmarshal(data, &w); err != nil {
		return FlowGraph{}, fmt.Errorf("parse graph: %w", err)
	}

	orientation := geometry.ParseOrientation(w.Orientation)
	if orientation == geometry.OrientationUnset {
		return FlowGraph{}, fmt.Errorf("parse graph: unknown orientation %q", w.Orientation)
	}

	g := FlowGraph{
		Nodes:       make(map[string]FlowNode, len(w.Nodes)),
		StartNode:   deref(w.StartNode),
		Orientation: orientation,
	}
	for key, n := range w.Nodes {
		if n.ID != "" && n.ID != key {
			return FlowGraph{}, fmt.Errorf("parse graph: node key %q disagrees with id %q", key, n.ID)
		}
		g.Nodes[key] = FlowNode{
			ID:     key,
			Shape:  geometry.ParseShapeType(n.Shape),
			Text:   n.Text,
			Out:    deref(n.Out),
			OutYes: deref(n.OutYes),
			OutNo:  deref(n.OutNo),
		}
	}

	if g.StartNode != "" {
		if _, ok := g.Nodes[g.StartNode]; !ok {
			return FlowGraph{}, fmt.Errorf("parse graph: start node %q not in node set", g.StartNode)
		}
	}
	for id, n := range g.Nodes {
		for _, tid := range []string{n.Out, n.OutYes, n.OutNo} {
			if tid == "" {
				continue
			}
			if _, ok := g.Nodes[tid]; !ok {
				return FlowGraph{}, fmt.Errorf("parse graph: node %q points at unknown id %q", id, tid)
			}
		}
	}
	return g, nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
