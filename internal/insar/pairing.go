package insar

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// Sample is one retained measurement point in the computational CRS.
type Sample struct {
	ID    int
	Point orb.Point
	Value float64
}

// Pair couples one ascending and one descending sample lying within the
// pairing radius of each other.
type Pair struct {
	Ascending  Sample
	Descending Sample
}

// PairWithinRadius returns every ascending/descending combination separated
// by at most radius. The quadratic scan is fine at the scale of one bridge's
// point set.
func PairWithinRadius(ascending, descending []Sample, radius float64) []Pair {
	var pairs []Pair
	for _, a := range ascending {
		for _, d := range descending {
			if planar.Distance(a.Point, d.Point) <= radius {
				pairs = append(pairs, Pair{Ascending: a, Descending: d})
			}
		}
	}
	return pairs
}
