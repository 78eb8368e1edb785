package geom

import (
	"math"
	"testing"

	"github.com/paulmach/orb"
)

func TestBearing(t *testing.T) {
	tests := []struct {
		name   string
		a, b   orb.Point
		expect float64
	}{
		{name: "north", a: orb.Point{0, 0}, b: orb.Point{0, 10}, expect: 0},
		{name: "east", a: orb.Point{0, 0}, b: orb.Point{10, 0}, expect: 90},
		{name: "south", a: orb.Point{0, 0}, b: orb.Point{0, -10}, expect: 180},
		{name: "west", a: orb.Point{0, 0}, b: orb.Point{-10, 0}, expect: 270},
		{name: "northeast", a: orb.Point{0, 0}, b: orb.Point{1, 1}, expect: 45},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Bearing(tt.a, tt.b)
			if math.Abs(got-tt.expect) > 1e-9 {
				t.Errorf("expected %g, got %g", tt.expect, got)
			}
		})
	}
}

func TestOrientAxis(t *testing.T) {
	tests := []struct {
		name   string
		input  orb.LineString
		expect orb.LineString
	}{
		{
			name:   "already south to north",
			input:  orb.LineString{{0, 0}, {0, 100}},
			expect: orb.LineString{{0, 0}, {0, 100}},
		},
		{
			name:   "north to south reversed",
			input:  orb.LineString{{0, 100}, {0, 0}},
			expect: orb.LineString{{0, 0}, {0, 100}},
		},
		{
			name:   "east to west reversed",
			input:  orb.LineString{{100, 0}, {0, 0}},
			expect: orb.LineString{{0, 0}, {100, 0}},
		},
		{
			name:   "west to east kept",
			input:  orb.LineString{{0, 0}, {100, 0}},
			expect: orb.LineString{{0, 0}, {100, 0}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := OrientAxis(tt.input)
			if !orb.Equal(got, tt.expect) {
				t.Errorf("expected %v, got %v", tt.expect, got)
			}
		})
	}
}

func TestSelfIntersects(t *testing.T) {
	tests := []struct {
		name   string
		line   orb.LineString
		expect bool
	}{
		{
			name:   "straight line",
			line:   orb.LineString{{0, 0}, {10, 0}, {20, 0}},
			expect: false,
		},
		{
			name:   "gentle curve",
			line:   orb.LineString{{0, 0}, {10, 2}, {20, 0}},
			expect: false,
		},
		{
			name:   "figure crossing",
			line:   orb.LineString{{0, 0}, {10, 10}, {10, 0}, {0, 10}},
			expect: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SelfIntersects(tt.line); got != tt.expect {
				t.Errorf("expected %v, got %v", tt.expect, got)
			}
		})
	}
}

func TestProjectOntoLine(t *testing.T) {
	axis := orb.LineString{{0, 0}, {100, 0}}

	tests := []struct {
		name       string
		point      orb.Point
		expectPos  float64
		expectProj orb.Point
	}{
		{name: "midspan above", point: orb.Point{50, 8}, expectPos: 0.5, expectProj: orb.Point{50, 0}},
		{name: "quarter below", point: orb.Point{25, -3}, expectPos: 0.25, expectProj: orb.Point{25, 0}},
		{name: "before start clamps", point: orb.Point{-10, 5}, expectPos: 0, expectProj: orb.Point{0, 0}},
		{name: "past end clamps", point: orb.Point{130, 0}, expectPos: 1, expectProj: orb.Point{100, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pos, proj := ProjectOntoLine(axis, tt.point)
			if math.Abs(pos-tt.expectPos) > 1e-9 {
				t.Errorf("expected position %g, got %g", tt.expectPos, pos)
			}
			if math.Abs(proj[0]-tt.expectProj[0]) > 1e-9 || math.Abs(proj[1]-tt.expectProj[1]) > 1e-9 {
				t.Errorf("expected projection %v, got %v", tt.expectProj, proj)
			}
		})
	}
}

func TestProjectOntoLineMultiSegment(t *testing.T) {
	axis := orb.LineString{{0, 0}, {100, 0}, {100, 100}}

	pos, proj := ProjectOntoLine(axis, orb.Point{104, 50})
	if math.Abs(pos-0.75) > 1e-9 {
		t.Errorf("expected position 0.75, got %g", pos)
	}
	if math.Abs(proj[0]-100) > 1e-9 || math.Abs(proj[1]-50) > 1e-9 {
		t.Errorf("expected projection (100, 50), got %v", proj)
	}
}

func TestDistanceToGeometries(t *testing.T) {
	deck := orb.MultiPolygon{
		{{{0, 0}, {100, 0}, {100, 10}, {0, 10}, {0, 0}}},
	}
	axis := orb.LineString{{0, 5}, {100, 5}}

	tests := []struct {
		name   string
		point  orb.Point
		toDeck float64
		toAxis float64
	}{
		{name: "inside deck", point: orb.Point{50, 5}, toDeck: 0, toAxis: 0},
		{name: "above deck", point: orb.Point{50, 14}, toDeck: 4, toAxis: 9},
		{name: "beyond end", point: orb.Point{103, 5}, toDeck: 3, toAxis: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if d := DistanceToMultiPolygon(deck, tt.point); math.Abs(d-tt.toDeck) > 1e-9 {
				t.Errorf("deck distance: expected %g, got %g", tt.toDeck, d)
			}
			if d := DistanceToLine(axis, tt.point); math.Abs(d-tt.toAxis) > 1e-9 {
				t.Errorf("axis distance: expected %g, got %g", tt.toAxis, d)
			}
		})
	}
}

func TestCorridorContainsMonotone(t *testing.T) {
	deck := orb.MultiPolygon{
		{{{0, 0}, {100, 0}, {100, 10}, {0, 10}, {0, 0}}},
	}
	axis := orb.LineString{{0, 5}, {100, 5}}

	points := []orb.Point{
		{50, 5},    // inside
		{50, 12},   // 2 beyond deck
		{50, 18},   // 8 beyond deck
		{-30, 5},   // 30 before start
		{200, 200}, // far away
	}

	narrow := NewCorridor(deck, axis, 3)
	wide := NewCorridor(deck, axis, 10)

	narrowCount, wideCount := 0, 0
	for _, p := range points {
		in3 := narrow.Contains(p)
		in10 := wide.Contains(p)
		if in3 && !in10 {
			t.Errorf("point %v in narrow corridor but not wide", p)
		}
		if in3 {
			narrowCount++
		}
		if in10 {
			wideCount++
		}
	}

	if narrowCount != 2 {
		t.Errorf("expected 2 points in narrow corridor, got %d", narrowCount)
	}
	if wideCount != 3 {
		t.Errorf("expected 3 points in wide corridor, got %d", wideCount)
	}
	if wideCount < narrowCount {
		t.Error("retained count must be non-decreasing in buffer distance")
	}
}

func TestCorridorRing(t *testing.T) {
	c := NewCorridor(nil, orb.LineString{{0, 0}, {100, 0}}, 10)

	ring := c.Ring(8)
	if len(ring) == 0 {
		t.Fatal("expected a non-empty ring")
	}
	if ring[0] != ring[len(ring)-1] {
		t.Error("ring must be closed")
	}

	// Every vertex of the sweep lies on or near the 10-unit offset.
	for _, p := range ring {
		if c.Contains(p) {
			continue
		}
		if d := DistanceToLine(c.Axis, p); math.Abs(d-10) > 1e-6 {
			t.Errorf("ring vertex %v is %g from the axis, expected 10", p, d)
		}
	}
}
