// Package crs resolves EPSG coordinate reference system identifiers and
// reprojects geometries between them.
package crs

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
	"github.com/wroge/wgs84"
)

// ErrReprojection is matched by all reprojection failures.
var ErrReprojection = errors.New("reprojection failed")

// ReprojectionError reports a CRS that could not be resolved or applied.
type ReprojectionError struct {
	CRS    string
	Reason string
}

func (e *ReprojectionError) Error() string {
	return fmt.Sprintf("reprojection failed for %q: %s", e.CRS, e.Reason)
}

func (e *ReprojectionError) Is(target error) bool {
	return target == ErrReprojection
}

// CRS identifies a coordinate reference system by authority and code.
type CRS struct {
	Authority string
	Code      int
}

func (c CRS) String() string {
	return fmt.Sprintf("%s:%d", c.Authority, c.Code)
}

// Parse resolves an "EPSG:code" identifier. Only the EPSG authority is
// supported; resolution of the code itself happens in Transformer, so Parse
// accepts codes the registry may not know.
func Parse(s string) (CRS, error) {
	parts := strings.SplitN(strings.TrimSpace(s), ":", 2)
	if len(parts) != 2 {
		return CRS{}, &ReprojectionError{CRS: s, Reason: "expected authority:code identifier"}
	}

	authority := strings.ToUpper(strings.TrimSpace(parts[0]))
	if authority != "EPSG" {
		return CRS{}, &ReprojectionError{CRS: s, Reason: fmt.Sprintf("unsupported authority %q", authority)}
	}

	code, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil || code <= 0 {
		return CRS{}, &ReprojectionError{CRS: s, Reason: "code must be a positive integer"}
	}

	return CRS{Authority: authority, Code: code}, nil
}

// TransformFunc converts a coordinate pair from one CRS to another.
type TransformFunc func(x, y float64) (float64, float64)

// Transformer builds a coordinate transformation between two EPSG codes.
// Codes absent from the registry yield a ReprojectionError naming the code.
func Transformer(from, to CRS) (TransformFunc, error) {
	repo := wgs84.EPSG()

	source := repo.Code(from.Code)
	if source == nil {
		return nil, &ReprojectionError{CRS: from.String(), Reason: "unknown EPSG code"}
	}

	target := repo.Code(to.Code)
	if target == nil {
		return nil, &ReprojectionError{CRS: to.String(), Reason: "unknown EPSG code"}
	}

	transform := wgs84.Transform(source, target)
	return func(x, y float64) (float64, float64) {
		a, b, _ := transform(x, y, 0)
		return a, b
	}, nil
}

// ReprojectGeometry applies a transformation to every coordinate of a
// geometry, returning a new geometry of the same type.
func ReprojectGeometry(g orb.Geometry, fn TransformFunc) orb.Geometry {
	switch v := g.(type) {
	case orb.Point:
		return reprojectPoint(v, fn)

	case orb.LineString:
		out := make(orb.LineString, len(v))
		for i, p := range v {
			out[i] = reprojectPoint(p, fn)
		}
		return out

	case orb.Ring:
		out := make(orb.Ring, len(v))
		for i, p := range v {
			out[i] = reprojectPoint(p, fn)
		}
		return out

	case orb.Polygon:
		out := make(orb.Polygon, len(v))
		for i, ring := range v {
			out[i] = ReprojectGeometry(ring, fn).(orb.Ring)
		}
		return out

	case orb.MultiPolygon:
		out := make(orb.MultiPolygon, len(v))
		for i, polygon := range v {
			out[i] = ReprojectGeometry(polygon, fn).(orb.Polygon)
		}
		return out

	case orb.MultiPoint:
		out := make(orb.MultiPoint, len(v))
		for i, p := range v {
			out[i] = reprojectPoint(p, fn)
		}
		return out

	default:
		// Remaining orb types do not occur in bridge inputs.
		return g
	}
}

func reprojectPoint(p orb.Point, fn TransformFunc) orb.Point {
	x, y := fn(p[0], p[1])
	return orb.Point{x, y}
}
