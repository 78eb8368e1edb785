// Package loader reads the source files of an assessment into entities.
// Vector geometries come from shapefiles or GeoJSON; displacement
// measurements come from CSV. Loading populates entity state and computes
// nothing.
package loader

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jonas-p/go-shp"
	"github.com/paulmach/orb"

	"github.com/shnmrt/SafeBridge/internal/entity"
	"github.com/shnmrt/SafeBridge/internal/geom"
	"github.com/shnmrt/SafeBridge/pkg/geojson"
)

// LoadDeck reads the deck footprint from a vector file. All polygon features
// in the file become members of the deck multipolygon.
func LoadDeck(cfg entity.VectorConfig) (*entity.Deck, error) {
	geoms, err := loadVectorFile(cfg.SourceFile)
	if err != nil {
		return nil, err
	}

	var footprint orb.MultiPolygon
	for _, g := range geoms {
		switch v := g.(type) {
		case orb.Polygon:
			footprint = append(footprint, v)
		case orb.MultiPolygon:
			footprint = append(footprint, v...)
		}
	}
	if len(footprint) == 0 {
		return nil, &FileFormatError{Path: cfg.SourceFile, Reason: "no polygon features found"}
	}

	return &entity.Deck{
		ID:       strings.TrimSuffix(filepath.Base(cfg.SourceFile), filepath.Ext(cfg.SourceFile)),
		Geometry: footprint,
		CRS:      cfg.SourceCRS,
	}, nil
}

// LoadAxis reads the bridge centerline from a vector file. The first line
// feature is used; the axis must be a simple (non-self-intersecting) line.
func LoadAxis(cfg entity.VectorConfig) (*entity.Axis, error) {
	geoms, err := loadVectorFile(cfg.SourceFile)
	if err != nil {
		return nil, err
	}

	var line orb.LineString
	for _, g := range geoms {
		if ls, ok := g.(orb.LineString); ok {
			line = ls
			break
		}
	}
	if len(line) < 2 {
		return nil, &FileFormatError{Path: cfg.SourceFile, Reason: "no line feature found"}
	}
	if geom.SelfIntersects(line) {
		return nil, &FileFormatError{Path: cfg.SourceFile, Reason: "axis line is self-intersecting"}
	}

	return &entity.Axis{
		ID:   strings.TrimSuffix(filepath.Base(cfg.SourceFile), filepath.Ext(cfg.SourceFile)),
		Line: line,
		CRS:  cfg.SourceCRS,
	}, nil
}

// LoadSupports reads pier/abutment locations from a vector file. All point
// features in the file become supports.
func LoadSupports(cfg entity.VectorConfig) (*entity.Supports, error) {
	geoms, err := loadVectorFile(cfg.SourceFile)
	if err != nil {
		return nil, err
	}

	var points []orb.Point
	for _, g := range geoms {
		switch v := g.(type) {
		case orb.Point:
			points = append(points, v)
		case orb.MultiPoint:
			points = append(points, v...)
		}
	}
	if len(points) == 0 {
		return nil, &FileFormatError{Path: cfg.SourceFile, Reason: "no point features found"}
	}

	return &entity.Supports{Points: points, CRS: cfg.SourceCRS}, nil
}

func loadVectorFile(path string) ([]orb.Geometry, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("source file unreadable: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".shp":
		return loadShapefile(path)
	case ".geojson", ".json":
		return loadGeoJSON(path)
	default:
		return nil, &FileFormatError{Path: path, Reason: "unsupported format, expected .shp or .geojson"}
	}
}

func loadShapefile(path string) ([]orb.Geometry, error) {
	reader, err := shp.Open(path)
	if err != nil {
		return nil, &FileFormatError{Path: path, Reason: err.Error()}
	}
	defer reader.Close()

	var geoms []orb.Geometry
	for reader.Next() {
		_, shape := reader.Shape()
		g, err := shapeToOrb(shape)
		if err != nil {
			return nil, &FileFormatError{Path: path, Reason: err.Error()}
		}
		if g != nil {
			geoms = append(geoms, g)
		}
	}
	return geoms, nil
}

func shapeToOrb(shape shp.Shape) (orb.Geometry, error) {
	switch v := shape.(type) {
	case *shp.Point:
		return orb.Point{v.X, v.Y}, nil

	case *shp.MultiPoint:
		points := make(orb.MultiPoint, len(v.Points))
		for i, p := range v.Points {
			points[i] = orb.Point{p.X, p.Y}
		}
		return points, nil

	case *shp.PolyLine:
		// Parts are concatenated; a bridge axis is a single run in practice.
		line := make(orb.LineString, len(v.Points))
		for i, p := range v.Points {
			line[i] = orb.Point{p.X, p.Y}
		}
		return line, nil

	case *shp.Polygon:
		polygon := make(orb.Polygon, 0, len(v.Parts))
		for _, part := range splitParts(v.Points, v.Parts) {
			ring := make(orb.Ring, len(part))
			for i, p := range part {
				ring[i] = orb.Point{p.X, p.Y}
			}
			polygon = append(polygon, ring)
		}
		if len(polygon) == 0 {
			return nil, fmt.Errorf("polygon shape has no rings")
		}
		return polygon, nil

	case *shp.Null:
		return nil, nil

	default:
		return nil, fmt.Errorf("unsupported shape type %T", shape)
	}
}

func splitParts(points []shp.Point, parts []int32) [][]shp.Point {
	if len(parts) == 0 {
		return [][]shp.Point{points}
	}

	var out [][]shp.Point
	for i, start := range parts {
		end := len(points)
		if i+1 < len(parts) {
			end = int(parts[i+1])
		}
		if int(start) < end {
			out = append(out, points[start:end])
		}
	}
	return out
}

func loadGeoJSON(path string) ([]orb.Geometry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("source file unreadable: %w", err)
	}

	fc, err := geojson.ParseFeatureCollection(data)
	if err != nil {
		return nil, &FileFormatError{Path: path, Reason: err.Error()}
	}

	var geoms []orb.Geometry
	for _, feature := range fc.Features {
		if feature.Geometry == nil {
			continue
		}
		g, err := feature.Geometry.ToOrb()
		if err != nil {
			return nil, &FileFormatError{Path: path, Reason: err.Error()}
		}
		geoms = append(geoms, g)
	}
	return geoms, nil
}
