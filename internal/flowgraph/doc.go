// Package flowgraph builds a directed control-flow graph from detected
// shape geometry and serializes it.
//
// The builder is deterministic: identical input geometry always yields
// the identical orientation, edge assignments, and start node. All
// heuristics are local: the forward pointer of a node is its nearest
// neighbor strictly ahead along the flow axis with sufficient
// perpendicular overlap, not the result of a global routing solve.
//
// Decision nodes carry a yes/no pointer pair instead of the single
// forward pointer. Which geometric side maps to "yes" is a policy
// choice (BranchPolicy), optionally overridden per node by OCR-derived
// hints.
//
// A built FlowGraph is immutable; a review pass produces a new graph
// with the identical node-id set.
package flowgraph
