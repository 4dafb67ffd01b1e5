package ocr

import (
	"image"
	"strings"

	"github.com/flowforge/flowforge/internal/flowgraph"
	"github.com/flowforge/flowforge/internal/geometry"
)

// Config tunes the Tesseract engine.
type Config struct {
	// Language is the Tesseract language code. Defaults to "eng".
	Language string

	// Whitelist restricts recognition to the given characters.
	// Empty means no restriction.
	Whitelist string
}

func (c Config) withDefaults() Config {
	if c.Language == "" {
		c.Language = "eng"
	}
	return c
}

// Annotate runs OCR over every shape's crop and returns a new
// GeometryOutput whose shapes carry the recognized text. Shape
// identity, bbox, type, and confidence are preserved; a per-shape OCR
// failure keeps that shape's prior text. When the OCR engine is
// unavailable the input is returned unchanged.
func Annotate(img image.Image, g geometry.GeometryOutput, cfg Config) geometry.GeometryOutput {
	if !Available() || img == nil {
		return g
	}
	cfg = cfg.withDefaults()

	shapes := make([]geometry.ShapePrimitive, 0, len(g.Shapes))
	for _, s := range g.Shapes {
		text, err := readRegion(img, s.Bounds, cfg)
		if err == nil && text != "" {
			s.Text = text
		}
		shapes = append(shapes, s)
	}
	return g.WithShapes(shapes)
}

// DetectYesNoHints reads thin regions beside each decision diamond,
// looking for YES/NO branch labels. The returned map only contains
// entries for decision shapes where at least one label was found.
//
// The side rois extend horizontally from the diamond's bbox by
// max(10px, 5% of the image width), spanning the bbox's vertical
// extent, where top-down diagrams place their branch labels.
func DetectYesNoHints(img image.Image, g geometry.GeometryOutput, cfg Config) map[string]flowgraph.Hint {
	hints := make(map[string]flowgraph.Hint)
	if !Available() || img == nil {
		return hints
	}
	cfg = cfg.withDefaults()

	bounds := img.Bounds()
	pad := bounds.Dx() / 20
	if pad < 10 {
		pad = 10
	}

	for _, s := range g.Shapes {
		if s.Type != geometry.ShapeDecision {
			continue
		}
		leftROI := geometry.Bounds{
			X1: max(bounds.Min.X, s.Bounds.X1-pad),
			Y1: s.Bounds.Y1,
			X2: s.Bounds.X1,
			Y2: s.Bounds.Y2,
		}
		rightROI := geometry.Bounds{
			X1: s.Bounds.X2,
			Y1: s.Bounds.Y1,
			X2: min(bounds.Max.X, s.Bounds.X2+pad),
			Y2: s.Bounds.Y2,
		}

		hint := flowgraph.Hint{
			Left:  branchToken(readROI(img, leftROI, cfg)),
			Right: branchToken(readROI(img, rightROI, cfg)),
		}
		if hint.Left != "" || hint.Right != "" {
			hints[s.ID] = hint
		}
	}
	return hints
}

func readROI(img image.Image, roi geometry.Bounds, cfg Config) string {
	if !roi.Valid() {
		return ""
	}
	text, err := readRegion(img, roi, cfg)
	if err != nil {
		return ""
	}
	return text
}

// branchToken extracts a YES/NO token from raw OCR output. YES wins
// when both appear, since "NO" is a substring-prone false positive in
// noisy reads.
func branchToken(text string) flowgraph.BranchLabel {
	up := strings.ToUpper(text)
	switch {
	case strings.Contains(up, "YES"):
		return flowgraph.BranchYes
	case strings.Contains(up, "NO"):
		return flowgraph.BranchNo
	default:
		return ""
	}
}
