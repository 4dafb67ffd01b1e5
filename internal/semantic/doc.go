// Package semantic implements the vision-model collaborators of the
// pipeline: graph review and diagram calibration over an
// OpenAI-compatible chat completion API.
//
// Both operations are strictly additive enrichments. The core pipeline
// produces its deterministic baseline without them; a semantic failure
// is returned as an error for the caller to log and ignore. The review
// contract requires the node-id set to survive unchanged, and the
// client enforces it by rejecting revisions that drop or invent ids.
//
// Ollama's OpenAI-compatible endpoint works through the same client by
// overriding the base URL.
package semantic
