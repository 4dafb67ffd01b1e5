package detect

import (
	"fmt"
	"image"
	"math"
	"sort"

	"github.com/flowforge/flowforge/internal/geometry"
	"github.com/flowforge/flowforge/internal/imaging"
)

// Segment is a raw detected line segment in the binary raster.
type Segment struct {
	Start         geometry.Point
	End           geometry.Point
	Length        float64
	HasArrowStart bool
	HasArrowEnd   bool
}

// MinConnectorLength is the shortest segment that can count as
// connector evidence. Shorter strokes are usually glyphs or shape
// edges.
const MinConnectorLength = 20

const maxSegments = 50

// DetectSegments finds straight line segments in a binary ink raster
// using a Hough transform, the same vote / peak / trace approach used
// for the shape boundaries. Segments shorter than minLength are
// discarded and at most 50 segments are returned, strongest vote
// first.
func DetectSegments(bin *image.Gray, minLength int) []Segment {
	b := bin.Bounds()
	width, height := b.Dx(), b.Dy()
	if width == 0 || height == 0 {
		return nil
	}

	maxRho := int(math.Sqrt(float64(width*width + height*height)))
	const numAngles = 180
	accumulator := make([][]int, maxRho*2)
	for i := range accumulator {
		accumulator[i] = make([]int, numAngles)
	}

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if !imaging.Foreground(bin, x+b.Min.X, y+b.Min.Y) {
				continue
			}
			for theta := 0; theta < numAngles; theta++ {
				angle := float64(theta) * math.Pi / 180.0
				rho := float64(x)*math.Cos(angle) + float64(y)*math.Sin(angle)
				rhoIdx := int(rho) + maxRho
				if rhoIdx >= 0 && rhoIdx < maxRho*2 {
					accumulator[rhoIdx][theta]++
				}
			}
		}
	}

	type peak struct {
		rho   int
		theta int
		votes int
	}
	var peaks []peak
	threshold := minLength / 2

	for rhoIdx := 0; rhoIdx < maxRho*2; rhoIdx++ {
		for theta := 0; theta < numAngles; theta++ {
			if accumulator[rhoIdx][theta] < threshold {
				continue
			}
			isMax := true
			for dr := -2; dr <= 2 && isMax; dr++ {
				for dt := -2; dt <= 2 && isMax; dt++ {
					if dr == 0 && dt == 0 {
						continue
					}
					nr := rhoIdx + dr
					nt := (theta + dt + numAngles) % numAngles
					if nr >= 0 && nr < maxRho*2 && accumulator[nr][nt] > accumulator[rhoIdx][theta] {
						isMax = false
					}
				}
			}
			if isMax {
				peaks = append(peaks, peak{rho: rhoIdx - maxRho, theta: theta, votes: accumulator[rhoIdx][theta]})
			}
		}
	}

	sort.Slice(peaks, func(i, j int) bool { return peaks[i].votes > peaks[j].votes })

	var segments []Segment
	for _, p := range peaks {
		if len(segments) >= maxSegments {
			break
		}

		angle := float64(p.theta) * math.Pi / 180.0
		rho := float64(p.rho)
		cosA := math.Cos(angle)
		sinA := math.Sin(angle)

		// Collect ink pixels lying on this line.
		var linePoints []geometry.Point
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				if !imaging.Foreground(bin, x+b.Min.X, y+b.Min.Y) {
					continue
				}
				if math.Abs(float64(x)*cosA+float64(y)*sinA-rho) < 2.0 {
					linePoints = append(linePoints, geometry.Point{X: x, Y: y})
				}
			}
		}
		if len(linePoints) < minLength {
			continue
		}

		// Endpoints are the extreme projections along the line.
		minProj, maxProj := math.MaxFloat64, -math.MaxFloat64
		var start, end geometry.Point
		for _, lp := range linePoints {
			d := -sinA*float64(lp.X) + cosA*float64(lp.Y)
			if d < minProj {
				minProj = d
				start = lp
			}
			if d > maxProj {
				maxProj = d
				end = lp
			}
		}

		length := dist(start, end)
		if length < float64(minLength) {
			continue
		}

		segments = append(segments, Segment{
			Start:         start,
			End:           end,
			Length:        length,
			HasArrowStart: detectArrowHead(bin, start, end),
			HasArrowEnd:   detectArrowHead(bin, end, start),
		})
	}
	return segments
}

// detectArrowHead checks for arrow-wing ink around tip, a segment
// endpoint, looking for pixels along the two directions rotated 45
// degrees off the line back toward other.
func detectArrowHead(bin *image.Gray, tip, other geometry.Point) bool {
	dx := float64(tip.X - other.X)
	dy := float64(tip.Y - other.Y)
	length := math.Sqrt(dx*dx + dy*dy)
	if length == 0 {
		return false
	}
	dx /= length
	dy /= length

	const checkDist = 10
	cos45 := math.Cos(math.Pi / 4)
	sin45 := math.Sin(math.Pi / 4)

	leftX := dx*cos45 - dy*sin45
	leftY := dx*sin45 + dy*cos45
	rightX := dx*cos45 + dy*sin45
	rightY := -dx*sin45 + dy*cos45

	leftCount, rightCount := 0, 0
	for d := 1; d <= checkDist; d++ {
		if imaging.Foreground(bin, tip.X-int(float64(d)*leftX), tip.Y-int(float64(d)*leftY)) {
			leftCount++
		}
		if imaging.Foreground(bin, tip.X-int(float64(d)*rightX), tip.Y-int(float64(d)*rightY)) {
			rightCount++
		}
	}
	return leftCount >= 3 && rightCount >= 3
}

// ConnectorCandidates turns line segments into connector primitives by
// mapping each segment's endpoints to the nearest shape center. A
// segment only qualifies when its endpoints map to two distinct
// shapes; duplicate unordered pairs are suppressed, first hit wins.
//
// Direction comes from arrow-head evidence when one end has it;
// otherwise the endpoint earlier in reading order (smaller y, then
// smaller x) is the source, which matches the dominant top-down and
// left-right diagram conventions.
func ConnectorCandidates(bin *image.Gray, shapes []geometry.ShapePrimitive, minLength int) []geometry.ConnectorPrimitive {
	if len(shapes) < 2 {
		return nil
	}
	if minLength <= 0 {
		minLength = MinConnectorLength
	}

	segments := DetectSegments(bin, minLength)
	seen := make(map[string]bool)
	var connectors []geometry.ConnectorPrimitive

	for _, seg := range segments {
		fromShape := nearestShape(shapes, seg.Start)
		toShape := nearestShape(shapes, seg.End)
		if fromShape == "" || toShape == "" || fromShape == toShape {
			continue
		}

		from, to := fromShape, toShape
		start, end := seg.Start, seg.End
		switch {
		case seg.HasArrowEnd && !seg.HasArrowStart:
			// keep start -> end
		case seg.HasArrowStart && !seg.HasArrowEnd:
			from, to = to, from
			start, end = end, start
		default:
			if (end.Y < start.Y) || (end.Y == start.Y && end.X < start.X) {
				from, to = to, from
				start, end = end, start
			}
		}

		key := pairKey(from, to)
		if seen[key] {
			continue
		}
		seen[key] = true

		connectors = append(connectors, geometry.ConnectorPrimitive{
			ID:         fmt.Sprintf("c%d", len(connectors)),
			FromID:     from,
			ToID:       to,
			Points:     []geometry.Point{start, end},
			Confidence: math.Min(1.0, seg.Length/100.0+0.5),
		})
	}
	return connectors
}

// nearestShape returns the id of the shape whose center is closest to
// p, or "" when there are no shapes.
func nearestShape(shapes []geometry.ShapePrimitive, p geometry.Point) string {
	best := ""
	bestDist := math.MaxFloat64
	for _, s := range shapes {
		cx, cy := s.Bounds.Center()
		dx := cx - float64(p.X)
		dy := cy - float64(p.Y)
		if d := dx*dx + dy*dy; d < bestDist {
			bestDist = d
			best = s.ID
		}
	}
	return best
}

// pairKey builds an order-independent key for an unordered shape pair.
func pairKey(a, b string) string {
	if a < b {
		return a + "|" + b
	}
	return b + "|" + a
}
