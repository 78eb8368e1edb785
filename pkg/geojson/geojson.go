// Package geojson provides GeoJSON geometry parsing and conversion utilities.
package geojson

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
)

// Geometry represents a GeoJSON geometry object with lazily decoded coordinates.
type Geometry struct {
	Type        string          `json:"type"`
	Coordinates json.RawMessage `json:"coordinates"`
}

// Feature represents a GeoJSON feature.
type Feature struct {
	Type       string         `json:"type"`
	Geometry   *Geometry      `json:"geometry"`
	Properties map[string]any `json:"properties,omitempty"`
}

// FeatureCollection represents a GeoJSON feature collection.
type FeatureCollection struct {
	Type     string     `json:"type"`
	Features []*Feature `json:"features"`
}

// Point returns the coordinates as a Point [lon, lat].
// Returns error if geometry is not a Point.
func (g *Geometry) Point() ([]float64, error) {
	if g.Type != "Point" {
		return nil, fmt.Errorf("geometry is not a Point, got %s", g.Type)
	}
	var coords []float64
	if err := json.Unmarshal(g.Coordinates, &coords); err != nil {
		return nil, fmt.Errorf("failed to unmarshal Point coordinates: %w", err)
	}
	if len(coords) < 2 {
		return nil, fmt.Errorf("invalid Point coordinates: expected at least 2 values, got %d", len(coords))
	}
	return coords, nil
}

// LineString returns the coordinates as a LineString [][lon, lat].
// Returns error if geometry is not a LineString.
func (g *Geometry) LineString() ([][]float64, error) {
	if g.Type != "LineString" {
		return nil, fmt.Errorf("geometry is not a LineString, got %s", g.Type)
	}
	var coords [][]float64
	if err := json.Unmarshal(g.Coordinates, &coords); err != nil {
		return nil, fmt.Errorf("failed to unmarshal LineString coordinates: %w", err)
	}
	return coords, nil
}

// MultiLineString returns the coordinates as a MultiLineString [][][lon, lat].
// Returns error if geometry is not a MultiLineString.
func (g *Geometry) MultiLineString() ([][][]float64, error) {
	if g.Type != "MultiLineString" {
		return nil, fmt.Errorf("geometry is not a MultiLineString, got %s", g.Type)
	}
	var coords [][][]float64
	if err := json.Unmarshal(g.Coordinates, &coords); err != nil {
		return nil, fmt.Errorf("failed to unmarshal MultiLineString coordinates: %w", err)
	}
	return coords, nil
}

// Polygon returns the coordinates as a Polygon [][][lon, lat].
// Returns error if geometry is not a Polygon.
func (g *Geometry) Polygon() ([][][]float64, error) {
	if g.Type != "Polygon" {
		return nil, fmt.Errorf("geometry is not a Polygon, got %s", g.Type)
	}
	var coords [][][]float64
	if err := json.Unmarshal(g.Coordinates, &coords); err != nil {
		return nil, fmt.Errorf("failed to unmarshal Polygon coordinates: %w", err)
	}
	return coords, nil
}

// MultiPolygon returns the coordinates as a MultiPolygon [][][][lon, lat].
// Returns error if geometry is not a MultiPolygon.
func (g *Geometry) MultiPolygon() ([][][][]float64, error) {
	if g.Type != "MultiPolygon" {
		return nil, fmt.Errorf("geometry is not a MultiPolygon, got %s", g.Type)
	}
	var coords [][][][]float64
	if err := json.Unmarshal(g.Coordinates, &coords); err != nil {
		return nil, fmt.Errorf("failed to unmarshal MultiPolygon coordinates: %w", err)
	}
	return coords, nil
}

// BBox computes the bounding box of the geometry.
// Returns [west, south, east, north].
func (g *Geometry) BBox() ([]float64, error) {
	return ComputeBBox(g)
}

// ComputeBBox computes the bounding box of a geometry.
// Returns [west, south, east, north].
func ComputeBBox(g *Geometry) ([]float64, error) {
	if g == nil {
		return nil, fmt.Errorf("geometry is nil")
	}

	minLon, minLat := math.Inf(1), math.Inf(1)
	maxLon, maxLat := math.Inf(-1), math.Inf(-1)

	extend := func(point []float64) {
		if len(point) < 2 {
			return
		}
		minLon = math.Min(minLon, point[0])
		maxLon = math.Max(maxLon, point[0])
		minLat = math.Min(minLat, point[1])
		maxLat = math.Max(maxLat, point[1])
	}

	switch g.Type {
	case "Point":
		coords, err := g.Point()
		if err != nil {
			return nil, err
		}
		return []float64{coords[0], coords[1], coords[0], coords[1]}, nil

	case "LineString":
		coords, err := g.LineString()
		if err != nil {
			return nil, err
		}
		for _, point := range coords {
			extend(point)
		}

	case "MultiLineString":
		coords, err := g.MultiLineString()
		if err != nil {
			return nil, err
		}
		for _, line := range coords {
			for _, point := range line {
				extend(point)
			}
		}

	case "Polygon":
		coords, err := g.Polygon()
		if err != nil {
			return nil, err
		}
		for _, ring := range coords {
			for _, point := range ring {
				extend(point)
			}
		}

	case "MultiPolygon":
		coords, err := g.MultiPolygon()
		if err != nil {
			return nil, err
		}
		for _, polygon := range coords {
			for _, ring := range polygon {
				for _, point := range ring {
					extend(point)
				}
			}
		}

	default:
		return nil, fmt.Errorf("unsupported geometry type: %s", g.Type)
	}

	if math.IsInf(minLon, 0) || math.IsInf(minLat, 0) {
		return nil, fmt.Errorf("failed to compute bounding box: no valid coordinates found")
	}

	return []float64{minLon, minLat, maxLon, maxLat}, nil
}

// ParseFeatureCollection decodes GeoJSON data into a FeatureCollection.
// A bare Feature or Geometry is wrapped into a single-feature collection so
// callers can treat all three input shapes uniformly.
func ParseFeatureCollection(data []byte) (*FeatureCollection, error) {
	var probe struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("invalid GeoJSON: %w", err)
	}

	switch probe.Type {
	case "FeatureCollection":
		var fc FeatureCollection
		if err := json.Unmarshal(data, &fc); err != nil {
			return nil, fmt.Errorf("invalid FeatureCollection: %w", err)
		}
		return &fc, nil

	case "Feature":
		var f Feature
		if err := json.Unmarshal(data, &f); err != nil {
			return nil, fmt.Errorf("invalid Feature: %w", err)
		}
		return &FeatureCollection{Type: "FeatureCollection", Features: []*Feature{&f}}, nil

	case "Point", "LineString", "MultiLineString", "Polygon", "MultiPolygon":
		var g Geometry
		if err := json.Unmarshal(data, &g); err != nil {
			return nil, fmt.Errorf("invalid geometry: %w", err)
		}
		return &FeatureCollection{
			Type:     "FeatureCollection",
			Features: []*Feature{{Type: "Feature", Geometry: &g}},
		}, nil

	case "":
		return nil, fmt.Errorf("GeoJSON object has no type")

	default:
		return nil, fmt.Errorf("unsupported GeoJSON type: %s", probe.Type)
	}
}

// ToOrb converts a GeoJSON geometry into its orb equivalent.
func (g *Geometry) ToOrb() (orb.Geometry, error) {
	if g == nil {
		return nil, fmt.Errorf("geometry is nil")
	}

	switch g.Type {
	case "Point":
		coords, err := g.Point()
		if err != nil {
			return nil, err
		}
		return orb.Point{coords[0], coords[1]}, nil

	case "LineString":
		coords, err := g.LineString()
		if err != nil {
			return nil, err
		}
		ls := make(orb.LineString, 0, len(coords))
		for _, p := range coords {
			if len(p) < 2 {
				return nil, fmt.Errorf("invalid point in LineString")
			}
			ls = append(ls, orb.Point{p[0], p[1]})
		}
		return ls, nil

	case "Polygon":
		coords, err := g.Polygon()
		if err != nil {
			return nil, err
		}
		return ringsToOrb(coords)

	case "MultiPolygon":
		coords, err := g.MultiPolygon()
		if err != nil {
			return nil, err
		}
		mp := make(orb.MultiPolygon, 0, len(coords))
		for _, polygon := range coords {
			p, err := ringsToOrb(polygon)
			if err != nil {
				return nil, err
			}
			mp = append(mp, p)
		}
		return mp, nil

	default:
		return nil, fmt.Errorf("unsupported geometry type for conversion: %s", g.Type)
	}
}

func ringsToOrb(rings [][][]float64) (orb.Polygon, error) {
	polygon := make(orb.Polygon, 0, len(rings))
	for _, ring := range rings {
		r := make(orb.Ring, 0, len(ring))
		for _, p := range ring {
			if len(p) < 2 {
				return nil, fmt.Errorf("invalid point in polygon ring")
			}
			r = append(r, orb.Point{p[0], p[1]})
		}
		polygon = append(polygon, r)
	}
	return polygon, nil
}

// FromOrb converts an orb geometry into a GeoJSON geometry.
func FromOrb(g orb.Geometry) (*Geometry, error) {
	switch v := g.(type) {
	case orb.Point:
		return marshalGeometry("Point", []float64{v[0], v[1]})

	case orb.LineString:
		coords := make([][]float64, 0, len(v))
		for _, p := range v {
			coords = append(coords, []float64{p[0], p[1]})
		}
		return marshalGeometry("LineString", coords)

	case orb.Ring:
		return FromOrb(orb.Polygon{v})

	case orb.Polygon:
		return marshalGeometry("Polygon", orbRings(v))

	case orb.MultiPolygon:
		coords := make([][][][]float64, 0, len(v))
		for _, p := range v {
			coords = append(coords, orbRings(p))
		}
		return marshalGeometry("MultiPolygon", coords)

	default:
		return nil, fmt.Errorf("unsupported orb geometry type %T", g)
	}
}

func orbRings(p orb.Polygon) [][][]float64 {
	rings := make([][][]float64, 0, len(p))
	for _, ring := range p {
		coords := make([][]float64, 0, len(ring))
		for _, pt := range ring {
			coords = append(coords, []float64{pt[0], pt[1]})
		}
		rings = append(rings, coords)
	}
	return rings
}

func marshalGeometry(typ string, coords any) (*Geometry, error) {
	raw, err := json.Marshal(coords)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s coordinates: %w", typ, err)
	}
	return &Geometry{Type: typ, Coordinates: raw}, nil
}

// ToWKT converts a GeoJSON geometry to WKT format.
// Supports Point, LineString, Polygon, and MultiPolygon.
func ToWKT(g *Geometry) (string, error) {
	if g == nil {
		return "", fmt.Errorf("geometry is nil")
	}

	switch g.Type {
	case "Point":
		coords, err := g.Point()
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("POINT(%s %s)", formatFloat(coords[0]), formatFloat(coords[1])), nil

	case "LineString":
		coords, err := g.LineString()
		if err != nil {
			return "", err
		}
		body, err := coordListWKT(coords)
		if err != nil {
			return "", err
		}
		return "LINESTRING" + body, nil

	case "Polygon":
		coords, err := g.Polygon()
		if err != nil {
			return "", err
		}
		body, err := ringListWKT(coords)
		if err != nil {
			return "", err
		}
		return "POLYGON" + body, nil

	case "MultiPolygon":
		coords, err := g.MultiPolygon()
		if err != nil {
			return "", err
		}
		var polygons []string
		for _, polygon := range coords {
			body, err := ringListWKT(polygon)
			if err != nil {
				return "", err
			}
			polygons = append(polygons, body)
		}
		return "MULTIPOLYGON(" + strings.Join(polygons, ",") + ")", nil

	default:
		return "", fmt.Errorf("unsupported geometry type for WKT conversion: %s", g.Type)
	}
}

func coordListWKT(coords [][]float64) (string, error) {
	points := make([]string, len(coords))
	for i, point := range coords {
		if len(point) < 2 {
			return "", fmt.Errorf("invalid point: expected at least 2 coordinates")
		}
		points[i] = fmt.Sprintf("%s %s", formatFloat(point[0]), formatFloat(point[1]))
	}
	return "(" + strings.Join(points, ",") + ")", nil
}

func ringListWKT(rings [][][]float64) (string, error) {
	parts := make([]string, len(rings))
	for i, ring := range rings {
		body, err := coordListWKT(ring)
		if err != nil {
			return "", err
		}
		parts[i] = body
	}
	return "(" + strings.Join(parts, ",") + ")", nil
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
