// Package ocr annotates detected geometry with text read by Tesseract.
//
// OCR is an optional collaborator of the core pipeline: Annotate and
// DetectYesNoHints enrich their inputs and degrade to the unmodified
// input when the OCR engine is unavailable or fails. Only shape text
// may change; identity, bbox, and type are always preserved.
//
// The Tesseract binding (gosseract) requires CGO. Builds without CGO
// get a stub engine that reports itself unavailable, which the
// annotators treat as "no text read".
package ocr
