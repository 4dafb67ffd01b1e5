package detect

import (
	"image"
	"math"
	"sort"

	"github.com/flowforge/flowforge/internal/geometry"
)

// contour is one connected ink component with its traced boundary.
type contour struct {
	// boundary is the ordered outer boundary, clockwise in image
	// coordinates (y grows downward).
	boundary []geometry.Point

	// bounds is the axis-aligned bounding box of the component.
	bounds geometry.Bounds

	// area is the enclosed area of the boundary polygon (shoelace),
	// which approximates cv2-style contour area for ring strokes.
	area float64

	// perimeter is the boundary polygon length, closed.
	perimeter float64

	pixels int
}

// minComponentPixels discards speck components before any geometric
// analysis; matches the noise floor the contour walker has always used.
const minComponentPixels = 10

// findContours labels 8-connected ink components of a binary raster
// and traces the outer boundary of each. Nested components (a shape
// outline drawn with a double stroke, or a diamond inside a box) stay
// separate contours; the reducer decides which survive.
//
// Contours are returned in scan order (top-to-bottom, left-to-right by
// first pixel), which keeps downstream ids reproducible.
func findContours(bin *image.Gray) []contour {
	b := bin.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return nil
	}

	ink := make([][]bool, h)
	for y := 0; y < h; y++ {
		ink[y] = make([]bool, w)
		for x := 0; x < w; x++ {
			ink[y][x] = bin.GrayAt(x+b.Min.X, y+b.Min.Y).Y >= 128
		}
	}

	label := make([][]int, h)
	for y := range label {
		label[y] = make([]int, w)
	}

	var contours []contour
	next := 1
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if !ink[y][x] || label[y][x] != 0 {
				continue
			}
			c := labelComponent(ink, label, x, y, next)
			next++
			if c.pixels < minComponentPixels {
				continue
			}
			c.boundary = traceBoundary(label, next-1, geometry.Point{X: x, Y: y}, w, h)
			c.perimeter = polylineLength(c.boundary, true)
			c.area = math.Abs(shoelace(c.boundary))
			contours = append(contours, c)
		}
	}
	return contours
}

// labelComponent flood-fills one 8-connected component, assigning id
// to every pixel and returning its extent. Stack-based, not recursive,
// so large page-border components cannot overflow the stack.
func labelComponent(ink [][]bool, label [][]int, startX, startY, id int) contour {
	w, h := len(ink[0]), len(ink)
	minX, minY := startX, startY
	maxX, maxY := startX, startY
	pixels := 0

	stack := []geometry.Point{{X: startX, Y: startY}}
	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if p.X < 0 || p.X >= w || p.Y < 0 || p.Y >= h {
			continue
		}
		if !ink[p.Y][p.X] || label[p.Y][p.X] != 0 {
			continue
		}
		label[p.Y][p.X] = id
		pixels++
		if p.X < minX {
			minX = p.X
		}
		if p.X > maxX {
			maxX = p.X
		}
		if p.Y < minY {
			minY = p.Y
		}
		if p.Y > maxY {
			maxY = p.Y
		}

		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				if dx == 0 && dy == 0 {
					continue
				}
				stack = append(stack, geometry.Point{X: p.X + dx, Y: p.Y + dy})
			}
		}
	}

	return contour{
		bounds: geometry.Bounds{X1: minX, Y1: minY, X2: maxX + 1, Y2: maxY + 1},
		pixels: pixels,
	}
}

// mooreDirs enumerates the 8-neighborhood clockwise starting west.
var mooreDirs = [8]geometry.Point{
	{X: -1, Y: 0}, {X: -1, Y: -1}, {X: 0, Y: -1}, {X: 1, Y: -1},
	{X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1}, {X: -1, Y: 1},
}

// traceBoundary walks the outer boundary of component id using Moore
// neighbor tracing. start must be the component's first pixel in scan
// order, which guarantees the pixel to its west is outside the
// component. The trace stops when it re-enters the start pixel from
// the initial direction, with an iteration cap as a safety net against
// pathological one-pixel necks.
func traceBoundary(label [][]int, id int, start geometry.Point, w, h int) []geometry.Point {
	inside := func(p geometry.Point) bool {
		return p.X >= 0 && p.X < w && p.Y >= 0 && p.Y < h && label[p.Y][p.X] == id
	}

	boundary := []geometry.Point{start}
	cur := start
	// Entered from the west: previous scan position was start + (-1, 0).
	dir := 0
	firstDir := -1

	maxSteps := 16 * (w + h + 1)
	for i := 0; i < maxSteps; i++ {
		found := false
		// Resume scanning two steps back from the direction we came in,
		// which keeps the walk hugging the component clockwise.
		for k := 0; k < 8; k++ {
			d := (dir + 6 + k) % 8
			n := geometry.Point{X: cur.X + mooreDirs[d].X, Y: cur.Y + mooreDirs[d].Y}
			if inside(n) {
				if cur == start {
					if firstDir == -1 {
						firstDir = d
					} else if d == firstDir {
						return boundary
					}
				}
				cur = n
				dir = d
				boundary = append(boundary, n)
				found = true
				break
			}
		}
		if !found {
			// Isolated pixel.
			return boundary
		}
		if cur == start {
			// Next iteration decides whether the loop is closed.
			boundary = boundary[:len(boundary)-1]
		}
	}
	return boundary
}

// shoelace returns the signed area of a closed polygon.
func shoelace(pts []geometry.Point) float64 {
	if len(pts) < 3 {
		return 0
	}
	sum := 0.0
	for i := range pts {
		j := (i + 1) % len(pts)
		sum += float64(pts[i].X)*float64(pts[j].Y) - float64(pts[j].X)*float64(pts[i].Y)
	}
	return sum / 2
}

// polylineLength returns the length of a polyline, optionally closing
// the last point back to the first.
func polylineLength(pts []geometry.Point, closed bool) float64 {
	if len(pts) < 2 {
		return 0
	}
	total := 0.0
	for i := 1; i < len(pts); i++ {
		total += dist(pts[i-1], pts[i])
	}
	if closed {
		total += dist(pts[len(pts)-1], pts[0])
	}
	return total
}

func dist(a, b geometry.Point) float64 {
	dx := float64(a.X - b.X)
	dy := float64(a.Y - b.Y)
	return math.Sqrt(dx*dx + dy*dy)
}

// simplifyClosed reduces a closed boundary to its dominant vertices
// with Douglas-Peucker simplification. The curve is split at the point
// farthest from the first, each half simplified independently, and the
// halves rejoined, which is the usual closed-curve treatment.
func simplifyClosed(pts []geometry.Point, epsilon float64) []geometry.Point {
	if len(pts) < 3 {
		return pts
	}
	far := 0
	maxD := -1.0
	for i, p := range pts {
		if d := dist(pts[0], p); d > maxD {
			maxD = d
			far = i
		}
	}
	if far == 0 {
		return pts[:1]
	}

	first := douglasPeucker(pts[:far+1], epsilon)
	second := append(append([]geometry.Point(nil), pts[far:]...), pts[0])
	second = douglasPeucker(second, epsilon)

	out := append([]geometry.Point(nil), first[:len(first)-1]...)
	out = append(out, second[:len(second)-1]...)
	return out
}

// douglasPeucker simplifies an open polyline, keeping endpoints.
func douglasPeucker(pts []geometry.Point, epsilon float64) []geometry.Point {
	if len(pts) < 3 {
		return pts
	}
	maxD := 0.0
	idx := 0
	a, b := pts[0], pts[len(pts)-1]
	for i := 1; i < len(pts)-1; i++ {
		if d := perpDistance(pts[i], a, b); d > maxD {
			maxD = d
			idx = i
		}
	}
	if maxD <= epsilon {
		return []geometry.Point{a, b}
	}
	left := douglasPeucker(pts[:idx+1], epsilon)
	right := douglasPeucker(pts[idx:], epsilon)
	out := make([]geometry.Point, 0, len(left)+len(right)-1)
	out = append(out, left[:len(left)-1]...)
	return append(out, right...)
}

// perpDistance is the perpendicular distance from p to segment ab.
func perpDistance(p, a, b geometry.Point) float64 {
	dx := float64(b.X - a.X)
	dy := float64(b.Y - a.Y)
	norm := math.Sqrt(dx*dx + dy*dy)
	if norm == 0 {
		return dist(p, a)
	}
	return math.Abs(dy*float64(p.X)-dx*float64(p.Y)+float64(b.X)*float64(a.Y)-float64(b.Y)*float64(a.X)) / norm
}

// minAreaRect computes the minimum-area enclosing rectangle of a point
// set via rotating calipers over the convex hull. It returns the
// rectangle's rotation angle normalized to [0, 90] degrees and its
// side lengths. Degenerate inputs return a zero rectangle.
func minAreaRect(pts []geometry.Point) (angleDeg, w, h float64) {
	hull := convexHull(pts)
	if len(hull) < 3 {
		return 0, 0, 0
	}

	best := math.MaxFloat64
	for i := range hull {
		p := hull[i]
		q := hull[(i+1)%len(hull)]
		ex := float64(q.X - p.X)
		ey := float64(q.Y - p.Y)
		norm := math.Sqrt(ex*ex + ey*ey)
		if norm == 0 {
			continue
		}
		ex /= norm
		ey /= norm

		minU, maxU := math.MaxFloat64, -math.MaxFloat64
		minV, maxV := math.MaxFloat64, -math.MaxFloat64
		for _, hp := range hull {
			u := ex*float64(hp.X) + ey*float64(hp.Y)
			v := -ey*float64(hp.X) + ex*float64(hp.Y)
			minU = math.Min(minU, u)
			maxU = math.Max(maxU, u)
			minV = math.Min(minV, v)
			maxV = math.Max(maxV, v)
		}
		cw := maxU - minU
		ch := maxV - minV
		if cw*ch < best {
			best = cw * ch
			w, h = cw, ch
			angleDeg = math.Atan2(ey, ex) * 180 / math.Pi
		}
	}

	angleDeg = math.Mod(angleDeg, 180)
	if angleDeg < 0 {
		angleDeg += 180
	}
	if angleDeg > 90 {
		angleDeg = 180 - angleDeg
	}
	return angleDeg, w, h
}

// convexHull computes the convex hull with Andrew's monotone chain,
// returned counter-clockwise without the closing point.
func convexHull(pts []geometry.Point) []geometry.Point {
	if len(pts) < 3 {
		return pts
	}
	sorted := append([]geometry.Point(nil), pts...)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].X != sorted[j].X {
			return sorted[i].X < sorted[j].X
		}
		return sorted[i].Y < sorted[j].Y
	})

	cross := func(o, a, b geometry.Point) int {
		return (a.X-o.X)*(b.Y-o.Y) - (a.Y-o.Y)*(b.X-o.X)
	}

	var lower []geometry.Point
	for _, p := range sorted {
		for len(lower) >= 2 && cross(lower[len(lower)-2], lower[len(lower)-1], p) <= 0 {
			lower = lower[:len(lower)-1]
		}
		lower = append(lower, p)
	}
	var upper []geometry.Point
	for i := len(sorted) - 1; i >= 0; i-- {
		p := sorted[i]
		for len(upper) >= 2 && cross(upper[len(upper)-2], upper[len(upper)-1], p) <= 0 {
			upper = upper[:len(upper)-1]
		}
		upper = append(upper, p)
	}
	return append(lower[:len(lower)-1], upper[:len(upper)-1]...)
}
