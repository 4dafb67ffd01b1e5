// Package pipeline wires the detection, text, and graph stages into a
// single extraction run.
//
// A run always produces a graph. Optional collaborators (OCR text
// annotation, a vision-model calibration pass, a vision-model graph
// review) refine the deterministic baseline when configured; any
// collaborator failure is logged and the baseline result stands.
package pipeline
