// Package geom provides the planar geometry operations the assessment
// pipeline needs beyond what orb ships: bearings, projection of points onto
// a polyline, distance-to-geometry, and the analysis corridor.
package geom

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// Bearing returns the compass bearing from a to b in degrees clockwise from
// north, in [0, 360).
func Bearing(a, b orb.Point) float64 {
	deg := math.Atan2(b[0]-a[0], b[1]-a[1]) * 180 / math.Pi
	if deg < 0 {
		deg += 360
	}
	return deg
}

// OrientAxis returns the axis line ordered so it starts at its southern end,
// or at its western end when the endpoints share a latitude. Downstream
// arc-length parameters depend on this orientation being stable.
func OrientAxis(ls orb.LineString) orb.LineString {
	if len(ls) < 2 {
		return ls
	}

	start, end := ls[0], ls[len(ls)-1]
	reverse := start[1] > end[1] || (start[1] == end[1] && start[0] > end[0])
	if !reverse {
		return ls
	}

	out := make(orb.LineString, len(ls))
	for i, p := range ls {
		out[len(ls)-1-i] = p
	}
	return out
}

// SelfIntersects reports whether any two non-adjacent segments of the line
// cross. The axis must be simple for arc-length parameters to be meaningful.
func SelfIntersects(ls orb.LineString) bool {
	for i := 0; i+1 < len(ls); i++ {
		for j := i + 2; j+1 < len(ls); j++ {
			// The closing segment of the first vertex is adjacent to nothing
			// beyond its neighbor; shared endpoints are not intersections.
			if i == 0 && j+2 == len(ls) && ls[0] == ls[len(ls)-1] {
				continue
			}
			if segmentsCross(ls[i], ls[i+1], ls[j], ls[j+1]) {
				return true
			}
		}
	}
	return false
}

func segmentsCross(a, b, c, d orb.Point) bool {
	o1 := orientation(a, b, c)
	o2 := orientation(a, b, d)
	o3 := orientation(c, d, a)
	o4 := orientation(c, d, b)

	if o1*o2 < 0 && o3*o4 < 0 {
		return true
	}

	// Collinear overlap
	if o1 == 0 && onSegment(a, b, c) {
		return true
	}
	if o2 == 0 && onSegment(a, b, d) {
		return true
	}
	if o3 == 0 && onSegment(c, d, a) {
		return true
	}
	if o4 == 0 && onSegment(c, d, b) {
		return true
	}
	return false
}

func orientation(a, b, c orb.Point) float64 {
	v := (b[0]-a[0])*(c[1]-a[1]) - (b[1]-a[1])*(c[0]-a[0])
	switch {
	case v > 1e-12:
		return 1
	case v < -1e-12:
		return -1
	default:
		return 0
	}
}

func onSegment(a, b, p orb.Point) bool {
	if p == a || p == b {
		return false
	}
	return math.Min(a[0], b[0])-1e-12 <= p[0] && p[0] <= math.Max(a[0], b[0])+1e-12 &&
		math.Min(a[1], b[1])-1e-12 <= p[1] && p[1] <= math.Max(a[1], b[1])+1e-12
}

// ClosestOnSegment returns the point on segment [a, b] closest to p and the
// parameter t in [0, 1] locating it along the segment.
func ClosestOnSegment(a, b, p orb.Point) (orb.Point, float64) {
	dx, dy := b[0]-a[0], b[1]-a[1]
	length2 := dx*dx + dy*dy
	if length2 == 0 {
		return a, 0
	}

	t := ((p[0]-a[0])*dx + (p[1]-a[1])*dy) / length2
	t = math.Max(0, math.Min(1, t))
	return orb.Point{a[0] + t*dx, a[1] + t*dy}, t
}

// ProjectOntoLine projects p onto the polyline and returns the normalized
// arc-length position in [0, 1] of the projection together with the
// projected point. A degenerate (zero-length) line projects everything onto
// its first vertex at position 0.
func ProjectOntoLine(ls orb.LineString, p orb.Point) (float64, orb.Point) {
	if len(ls) == 0 {
		return 0, orb.Point{}
	}
	if len(ls) == 1 {
		return 0, ls[0]
	}

	total := planar.Length(ls)
	if total == 0 {
		return 0, ls[0]
	}

	best := math.Inf(1)
	bestArc := 0.0
	bestPoint := ls[0]

	arc := 0.0
	for i := 0; i+1 < len(ls); i++ {
		proj, t := ClosestOnSegment(ls[i], ls[i+1], p)
		d := planar.Distance(proj, p)
		segLen := planar.Distance(ls[i], ls[i+1])
		if d < best {
			best = d
			bestArc = arc + t*segLen
			bestPoint = proj
		}
		arc += segLen
	}

	return bestArc / total, bestPoint
}

// DistanceToLine returns the planar distance from p to the polyline.
func DistanceToLine(ls orb.LineString, p orb.Point) float64 {
	if len(ls) == 0 {
		return math.Inf(1)
	}
	if len(ls) == 1 {
		return planar.Distance(ls[0], p)
	}

	best := math.Inf(1)
	for i := 0; i+1 < len(ls); i++ {
		proj, _ := ClosestOnSegment(ls[i], ls[i+1], p)
		if d := planar.Distance(proj, p); d < best {
			best = d
		}
	}
	return best
}

// DistanceToPolygon returns the planar distance from p to the polygon:
// zero when the point is inside, otherwise the distance to its rings.
func DistanceToPolygon(poly orb.Polygon, p orb.Point) float64 {
	if planar.PolygonContains(poly, p) {
		return 0
	}

	best := math.Inf(1)
	for _, ring := range poly {
		if d := DistanceToLine(orb.LineString(ring), p); d < best {
			best = d
		}
	}
	return best
}

// DistanceToMultiPolygon returns the planar distance from p to the nearest
// member polygon.
func DistanceToMultiPolygon(mp orb.MultiPolygon, p orb.Point) float64 {
	best := math.Inf(1)
	for _, poly := range mp {
		if d := DistanceToPolygon(poly, p); d < best {
			best = d
		}
	}
	return best
}
