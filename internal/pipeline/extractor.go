package pipeline

import (
	"context"
	"log"

	"github.com/flowforge/flowforge/internal/detect"
	"github.com/flowforge/flowforge/internal/flowgraph"
	"github.com/flowforge/flowforge/internal/geometry"
	"github.com/flowforge/flowforge/internal/imaging"
	"github.com/flowforge/flowforge/internal/ocr"
)

// Reviewer revises a baseline graph against the source image. The
// revision must keep the same node id set; implementations returning
// a different set are rejected by the caller.
type Reviewer interface {
	ReviewGraph(ctx context.Context, imagePath string, graph flowgraph.FlowGraph) (flowgraph.FlowGraph, error)
}

// Calibrator estimates detection hints from the source image before
// the geometric pass runs.
type Calibrator interface {
	Calibrate(ctx context.Context, imagePath string) (geometry.Calibration, error)
}

// Options configures an Extractor. The zero value runs the
// deterministic pipeline alone: no OCR, no calibration, no review.
type Options struct {
	// Cache holds decoded images across runs. A nil cache makes the
	// extractor allocate its own.
	Cache *imaging.ImageCache

	// Calibration seeds the detection pass with static hints. A
	// Calibrator's estimate, when present, overrides these fields.
	Calibration geometry.Calibration

	// Calibrator, when non-nil, runs before detection. Failures fall
	// back to the static Calibration.
	Calibrator Calibrator

	// OCR enables shape text annotation and yes/no branch hints.
	OCR bool

	// OCRConfig tunes the OCR engine when OCR is enabled.
	OCRConfig ocr.Config

	// Reviewer, when non-nil, runs after graph construction. Failures
	// fall back to the baseline graph.
	Reviewer Reviewer

	// ForcedOrientation overrides orientation inference when set. It
	// takes precedence over a calibration orientation.
	ForcedOrientation geometry.Orientation

	// Policy picks the default branch side-to-label mapping.
	Policy flowgraph.BranchPolicy

	// Connectors enables line-segment evidence: detected arrows become
	// connector primitives in the geometry output.
	Connectors bool
}

// Output is the result of one extraction run.
type Output struct {
	// Geometry after reduction and any OCR annotation.
	Geometry geometry.GeometryOutput

	// Graph built from the geometry, possibly revised by a Reviewer.
	Graph flowgraph.FlowGraph

	// Degraded reports that detection fell back to the single
	// unknown-shape output; Reason says why.
	Degraded bool
	Reason   string
}

// Extractor runs the flowchart pipeline end to end. It is safe for
// concurrent use: each Run works on its own data, and the shared
// image cache is internally synchronized.
type Extractor struct {
	opts  Options
	cache *imaging.ImageCache
}

// New returns an Extractor with the given options.
func New(opts Options) *Extractor {
	cache := opts.Cache
	if cache == nil {
		cache = imaging.NewImageCache()
	}
	return &Extractor{opts: opts, cache: cache}
}

// WithOrientation returns a copy of the extractor with a forced
// orientation, sharing the image cache.
func (e *Extractor) WithOrientation(o geometry.Orientation) *Extractor {
	opts := e.opts
	opts.ForcedOrientation = o
	return &Extractor{opts: opts, cache: e.cache}
}

// Run extracts a flow graph from the image at path.
//
// # Stages
//
//  1. Calibrate (optional): ask the Calibrator for detection hints.
//  2. Detect: threshold, trace contours, classify shapes.
//  3. Reduce: merge, suppress, and cap the candidates.
//  4. Annotate (optional): OCR shape text and yes/no branch hints.
//  5. Build: infer orientation and wire the directed graph.
//  6. Review (optional): let the Reviewer revise the graph.
//
// An unreadable image does not error; it degrades to the single
// fallback shape exactly as a failed detection pass would.
func (e *Extractor) Run(ctx context.Context, path string) (*Output, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	calib := e.calibrate(ctx, path)

	img, err := e.cache.Load(path)
	if err != nil {
		res := detect.DegradedResult(0, 0, err.Error())
		graph := flowgraph.Build(res.Geometry, e.graphOptions(calib, nil))
		return &Output{Geometry: res.Geometry, Graph: graph, Degraded: true, Reason: res.Reason}, nil
	}

	res := detect.Extract(img, calib)
	geo := res.Geometry
	if !res.Degraded {
		geo = geo.WithShapes(detect.Reduce(geo.Shapes, calib, detect.ReduceOptions{}))
		if e.opts.Connectors {
			bin := imaging.Binarize(img)
			geo.Connectors = detect.ConnectorCandidates(bin, geo.Shapes, 0)
		}
	}

	var hints map[string]flowgraph.Hint
	if e.opts.OCR && !res.Degraded {
		geo = ocr.Annotate(img, geo, e.opts.OCRConfig)
		hints = ocr.DetectYesNoHints(img, geo, e.opts.OCRConfig)
	}

	graph := flowgraph.Build(geo, e.graphOptions(calib, hints))

	if e.opts.Reviewer != nil && !res.Degraded {
		revised, err := e.opts.Reviewer.ReviewGraph(ctx, path, graph)
		if err != nil {
			log.Printf("pipeline: graph review failed, keeping baseline: %v", err)
		} else {
			graph = revised
		}
	}

	return &Output{Geometry: geo, Graph: graph, Degraded: res.Degraded, Reason: res.Reason}, nil
}

// calibrate resolves the calibration for a run: the Calibrator's
// estimate when one is configured and succeeds, the static options
// otherwise.
func (e *Extractor) calibrate(ctx context.Context, path string) geometry.Calibration {
	static := e.opts.Calibration.Normalize()
	if e.opts.Calibrator == nil {
		return static
	}
	est, err := e.opts.Calibrator.Calibrate(ctx, path)
	if err != nil {
		log.Printf("pipeline: calibration failed, using static hints: %v", err)
		return static
	}
	return mergeCalibration(static, est.Normalize())
}

// graphOptions folds forced orientation, calibration orientation, and
// OCR hints into flowgraph build options. An explicit override beats
// the calibration estimate.
func (e *Extractor) graphOptions(calib geometry.Calibration, hints map[string]flowgraph.Hint) flowgraph.Options {
	forced := e.opts.ForcedOrientation
	if forced == geometry.OrientationUnset {
		forced = calib.Orientation
	}
	return flowgraph.Options{Hints: hints, Forced: forced, Policy: e.opts.Policy}
}

// mergeCalibration overlays est onto base field by field; zero fields
// in est leave the base value in place.
func mergeCalibration(base, est geometry.Calibration) geometry.Calibration {
	out := base
	if est.Orientation != geometry.OrientationUnset {
		out.Orientation = est.Orientation
	}
	if est.MedianShapeWidth > 0 {
		out.MedianShapeWidth = est.MedianShapeWidth
	}
	if est.MedianShapeHeight > 0 {
		out.MedianShapeHeight = est.MedianShapeHeight
	}
	if len(est.ShapeTypes) > 0 {
		out.ShapeTypes = est.ShapeTypes
	}
	if est.EstimatedNodeCount > 0 {
		out.EstimatedNodeCount = est.EstimatedNodeCount
	}
	if est.ArrowThicknessPx > 0 {
		out.ArrowThicknessPx = est.ArrowThicknessPx
	}
	if est.ArrowStyle != geometry.ArrowStyleUnknown {
		out.ArrowStyle = est.ArrowStyle
	}
	return out
}
