// Package entity defines the source entities of a bridge damage assessment:
// the deck footprint, the longitudinal axis, the supports, and the two InSAR
// orbit datasets. Entities are immutable once loaded; derived data lives in
// the pipeline's working dataset, never here.
package entity

import (
	"github.com/paulmach/orb"
)

// OrbitDirection identifies the satellite pass direction of an InSAR dataset.
type OrbitDirection string

const (
	// OrbitAscending is the south-to-north pass.
	OrbitAscending OrbitDirection = "ascending"
	// OrbitDescending is the north-to-south pass.
	OrbitDescending OrbitDirection = "descending"
)

// Deck is the bridge deck footprint.
type Deck struct {
	ID       string
	Geometry orb.MultiPolygon
	CRS      string
}

// Axis is the bridge's longitudinal centerline.
type Axis struct {
	ID   string
	Line orb.LineString
	CRS  string
}

// Supports holds the pier and abutment locations.
type Supports struct {
	Points []orb.Point
	CRS    string
}

// Measurement is a single persistent-scatterer point with its line-of-sight
// displacement value in the dataset's unit.
type Measurement struct {
	ID    int
	Lon   float64
	Lat   float64
	Value float64
}

// OrbitDataset is an ordered collection of InSAR measurements sharing one
// viewing geometry.
type OrbitDataset struct {
	Orbit     OrbitDirection
	Points    []Measurement
	Azimuth   float64 // satellite heading, degrees clockwise from north
	Incidence float64 // radar line-of-sight angle from vertical, degrees
	Unit      string
	CRS       string
}
