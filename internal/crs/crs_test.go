package crs

import (
	"errors"
	"math"
	"testing"

	"github.com/paulmach/orb"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		expectCode  int
		expectError bool
	}{
		{name: "wgs84", input: "EPSG:4326", expectCode: 4326},
		{name: "utm 33n", input: "EPSG:32633", expectCode: 32633},
		{name: "lowercase authority", input: "epsg:3857", expectCode: 3857},
		{name: "whitespace", input: "  EPSG:4326  ", expectCode: 4326},
		{name: "missing code", input: "EPSG", expectError: true},
		{name: "unsupported authority", input: "ESRI:102100", expectError: true},
		{name: "non-numeric code", input: "EPSG:abc", expectError: true},
		{name: "negative code", input: "EPSG:-4", expectError: true},
		{name: "empty", input: "", expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := Parse(tt.input)
			if tt.expectError {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				if !errors.Is(err, ErrReprojection) {
					t.Errorf("expected ErrReprojection, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if c.Code != tt.expectCode {
				t.Errorf("expected code %d, got %d", tt.expectCode, c.Code)
			}
		})
	}
}

func TestTransformerUnknownCode(t *testing.T) {
	_, err := Transformer(CRS{Authority: "EPSG", Code: 4326}, CRS{Authority: "EPSG", Code: 999999})
	if err == nil {
		t.Fatal("expected error for unknown EPSG code")
	}

	var repErr *ReprojectionError
	if !errors.As(err, &repErr) {
		t.Fatalf("expected *ReprojectionError, got %T", err)
	}
	if repErr.CRS != "EPSG:999999" {
		t.Errorf("expected error to name EPSG:999999, got %q", repErr.CRS)
	}
}

func TestTransformerRoundTrip(t *testing.T) {
	// Reprojecting A -> B -> A must return the original coordinates
	// within floating-point tolerance.
	tests := []struct {
		name     string
		from, to int
		lon, lat float64
	}{
		{name: "wgs84 to utm 33n", from: 4326, to: 32633, lon: 15.0, lat: 52.0},
		{name: "wgs84 to utm 31n", from: 4326, to: 32631, lon: 4.9, lat: 52.4},
		{name: "wgs84 to web mercator", from: 4326, to: 3857, lon: -73.97, lat: 40.78},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			forward, err := Transformer(CRS{Authority: "EPSG", Code: tt.from}, CRS{Authority: "EPSG", Code: tt.to})
			if err != nil {
				t.Fatalf("forward transformer: %v", err)
			}
			inverse, err := Transformer(CRS{Authority: "EPSG", Code: tt.to}, CRS{Authority: "EPSG", Code: tt.from})
			if err != nil {
				t.Fatalf("inverse transformer: %v", err)
			}

			x, y := forward(tt.lon, tt.lat)
			lon, lat := inverse(x, y)

			if math.Abs(lon-tt.lon) > 1e-6 || math.Abs(lat-tt.lat) > 1e-6 {
				t.Errorf("round trip drifted: got (%g, %g), want (%g, %g)", lon, lat, tt.lon, tt.lat)
			}
		})
	}
}

func TestReprojectGeometry(t *testing.T) {
	shift := func(x, y float64) (float64, float64) { return x + 100, y - 50 }

	tests := []struct {
		name   string
		input  orb.Geometry
		expect orb.Geometry
	}{
		{
			name:   "point",
			input:  orb.Point{1, 2},
			expect: orb.Point{101, -48},
		},
		{
			name:   "linestring",
			input:  orb.LineString{{0, 0}, {1, 1}},
			expect: orb.LineString{{100, -50}, {101, -49}},
		},
		{
			name:   "polygon",
			input:  orb.Polygon{{{0, 0}, {1, 0}, {1, 1}, {0, 0}}},
			expect: orb.Polygon{{{100, -50}, {101, -50}, {101, -49}, {100, -50}}},
		},
		{
			name:   "multipolygon",
			input:  orb.MultiPolygon{{{{0, 0}, {1, 0}, {1, 1}, {0, 0}}}},
			expect: orb.MultiPolygon{{{{100, -50}, {101, -50}, {101, -49}, {100, -50}}}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ReprojectGeometry(tt.input, shift)
			if !orb.Equal(got, tt.expect) {
				t.Errorf("expected %v, got %v", tt.expect, got)
			}
		})
	}
}
