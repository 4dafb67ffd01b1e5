package semantic

// reviewPrompt asks the model to revise a FlowGraph JSON document
// while keeping the node-id set intact. The schema in the prompt must
// stay in sync with the canonical form in internal/flowgraph.
const reviewPrompt = `You are an expert at reading flowcharts. Review and revise the provided FlowGraph JSON to better match the image.
Return ONLY a single JSON object in the SAME FlowGraph schema:
{
  "orientation": "top-down" | "left-right",
  "start_node": "<id or null>",
  "nodes": {
    "<id>": {"id":"<id>","shape":"process|decision|terminator|unknown","text":"...","out":"<id|null>","out_yes":"<id|null>","out_no":"<id|null>"}
  }
}
Constraints:
- Keep node ids identical; do not invent or remove ids.
- You may edit node text, shape, orientation, start_node, and branch pointers (out/out_yes/out_no).
- Prefer minimal edits; only change what is clearly wrong.

FlowGraph JSON to review:
`

// calibratePrompt asks the model for diagram-wide detection hints.
// Every field is optional; absent fields fall back to built-in
// defaults.
const calibratePrompt = `You are an expert at reading flowcharts. Estimate diagram-wide properties of the flowchart in the image.
Return ONLY a single JSON object; omit any field you are unsure about:
{
  "orientation": "top-down" | "left-right",
  "median_shape_width": <pixels>,
  "median_shape_height": <pixels>,
  "shape_types_present": ["process","decision","terminator"],
  "estimated_node_count": <count>,
  "arrow_thickness_px": <pixels>,
  "arrow_style": "open" | "filled" | "line"
}`
