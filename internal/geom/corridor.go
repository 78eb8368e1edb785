package geom

import (
	"math"

	"github.com/paulmach/orb"
)

// Corridor is the analysis region around the bridge: every location within
// Distance of the deck footprint or the axis line. Membership is evaluated
// as a distance predicate against the source geometries, which makes the
// region exact and monotone in Distance without constructing a buffer
// polygon.
type Corridor struct {
	Deck     orb.MultiPolygon
	Axis     orb.LineString
	Distance float64
}

// NewCorridor builds the corridor for a deck/axis pair. Distance must be
// positive; callers validate that before reaching here.
func NewCorridor(deck orb.MultiPolygon, axis orb.LineString, distance float64) Corridor {
	return Corridor{Deck: deck, Axis: axis, Distance: distance}
}

// Contains reports whether p lies inside the corridor.
func (c Corridor) Contains(p orb.Point) bool {
	if DistanceToMultiPolygon(c.Deck, p) <= c.Distance {
		return true
	}
	return DistanceToLine(c.Axis, p) <= c.Distance
}

// Ring returns an approximate corridor outline for presentation: the axis
// swept left and right by Distance with semicircular end caps, sampled with
// the given number of cap segments. Analysis never consumes this ring; only
// report output does.
func (c Corridor) Ring(capSegments int) orb.Ring {
	if len(c.Axis) < 2 || capSegments < 1 {
		return nil
	}

	d := c.Distance
	n := len(c.Axis)

	normals := make([][2]float64, n)
	for i := range c.Axis {
		var dx, dy float64
		if i > 0 {
			dx += c.Axis[i][0] - c.Axis[i-1][0]
			dy += c.Axis[i][1] - c.Axis[i-1][1]
		}
		if i+1 < n {
			dx += c.Axis[i+1][0] - c.Axis[i][0]
			dy += c.Axis[i+1][1] - c.Axis[i][1]
		}
		length := math.Hypot(dx, dy)
		if length == 0 {
			length = 1
		}
		normals[i] = [2]float64{-dy / length, dx / length}
	}

	var ring orb.Ring

	// Left side, start to end
	for i := 0; i < n; i++ {
		ring = append(ring, orb.Point{
			c.Axis[i][0] + d*normals[i][0],
			c.Axis[i][1] + d*normals[i][1],
		})
	}

	// End cap, sweeping from the left normal around to the right normal
	ring = append(ring, capArc(c.Axis[n-1], normals[n-1], d, capSegments)...)

	// Right side, end back to start
	for i := n - 1; i >= 0; i-- {
		ring = append(ring, orb.Point{
			c.Axis[i][0] - d*normals[i][0],
			c.Axis[i][1] - d*normals[i][1],
		})
	}

	// Start cap
	ring = append(ring, capArc(c.Axis[0], [2]float64{-normals[0][0], -normals[0][1]}, d, capSegments)...)

	ring = append(ring, ring[0])
	return ring
}

func capArc(center orb.Point, fromNormal [2]float64, d float64, segments int) []orb.Point {
	start := math.Atan2(fromNormal[1], fromNormal[0])
	points := make([]orb.Point, 0, segments-1)
	for i := 1; i < segments; i++ {
		angle := start - math.Pi*float64(i)/float64(segments)
		points = append(points, orb.Point{
			center[0] + d*math.Cos(angle),
			center[1] + d*math.Sin(angle),
		})
	}
	return points
}
