package flowgraph

import (
	"strings"

	"github.com/flowforge/flowforge/internal/geometry"
)

// Mermaid renders the graph as Mermaid flowchart text: a direction
// line, one declaration per node with the shape's bracketing
// convention, then one line per populated edge, YES/NO edges labeled.
// Nodes are emitted in detection order, edges in the same node order,
// so identical graphs produce identical text.
func Mermaid(g FlowGraph) string {
	direction := "TD"
	if g.Orientation == geometry.LeftRight {
		direction = "LR"
	}

	var b strings.Builder
	b.WriteString("flowchart " + direction + "\n")

	ids := g.NodeIDs()
	for _, id := range ids {
		n := g.Nodes[id]
		b.WriteString("    " + n.ID + nodeLabel(n) + "\n")
	}
	for _, id := range ids {
		n := g.Nodes[id]
		if n.Out != "" {
			b.WriteString("    " + n.ID + " --> " + n.Out + "\n")
		}
		if n.OutYes != "" {
			b.WriteString("    " + n.ID + " --|YES|--> " + n.OutYes + "\n")
		}
		if n.OutNo != "" {
			b.WriteString("    " + n.ID + " --|NO|--> " + n.OutNo + "\n")
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// nodeLabel wraps the node text in the bracketing for its shape:
// braces for decisions, rounded for terminators, square brackets for
// everything else.
func nodeLabel(n FlowNode) string {
	text := strings.ReplaceAll(n.Text, `"`, "'")
	switch n.Shape {
	case geometry.ShapeDecision:
		return "{" + text + "}"
	case geometry.ShapeTerminator:
		return "([" + text + "])"
	default:
		return "[" + text + "]"
	}
}
