package insar

import (
	"errors"
	"math"
	"testing"

	"github.com/paulmach/orb"
)

// Sentinel-1 style geometries: near-polar headings with right-looking radar
// give ground line-of-sight azimuths near 80 (ascending) and 280 (descending),
// which is what makes the two looks separable.
var (
	ascLook  = Look{Azimuth: 80, Incidence: 34}
	descLook = Look{Azimuth: 280, Incidence: 34}
)

func TestDecomposeRecoversKnownMotion(t *testing.T) {
	tests := []struct {
		name        string
		truth       Displacement
		axisBearing float64
	}{
		{name: "pure subsidence", truth: Displacement{Vertical: -12}, axisBearing: 90},
		{name: "pure along-axis", truth: Displacement{Horizontal: 8}, axisBearing: 90},
		{name: "mixed east-west bridge", truth: Displacement{Vertical: -6, Horizontal: 3.5}, axisBearing: 90},
		{name: "mixed oblique bridge", truth: Displacement{Vertical: 4.2, Horizontal: -7.1}, axisBearing: 48},
		{name: "no motion", truth: Displacement{}, axisBearing: 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			looks := []Look{ascLook, descLook}
			los := []float64{
				Forward(tt.truth, ascLook, tt.axisBearing),
				Forward(tt.truth, descLook, tt.axisBearing),
			}

			got, err := Decompose(looks, los, tt.axisBearing)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if math.Abs(got.Vertical-tt.truth.Vertical) > 1e-9 {
				t.Errorf("vertical: expected %g, got %g", tt.truth.Vertical, got.Vertical)
			}
			if math.Abs(got.Horizontal-tt.truth.Horizontal) > 1e-9 {
				t.Errorf("horizontal: expected %g, got %g", tt.truth.Horizontal, got.Horizontal)
			}
			if got.Residual > 1e-9 {
				t.Errorf("determined 2x2 system should have ~zero residual, got %g", got.Residual)
			}
		})
	}
}

func TestDecomposeLeastSquares(t *testing.T) {
	truth := Displacement{Vertical: -9, Horizontal: 2}
	bearing := 78.0

	looks := []Look{
		{Azimuth: 350, Incidence: 31},
		{Azimuth: 350, Incidence: 38},
		{Azimuth: 190, Incidence: 34},
		{Azimuth: 190, Incidence: 41},
	}
	los := make([]float64, len(looks))
	for i, look := range looks {
		los[i] = Forward(truth, look, bearing)
	}
	// Perturb one observation so the system is inconsistent.
	los[2] += 0.2

	got, err := Decompose(looks, los, bearing)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(got.Vertical-truth.Vertical) > 0.5 {
		t.Errorf("vertical estimate too far off: got %g, want about %g", got.Vertical, truth.Vertical)
	}
	if math.Abs(got.Horizontal-truth.Horizontal) > 0.5 {
		t.Errorf("horizontal estimate too far off: got %g, want about %g", got.Horizontal, truth.Horizontal)
	}
	if got.Residual <= 0 {
		t.Error("perturbed system should carry a positive residual")
	}
}

func TestDecomposeErrors(t *testing.T) {
	tests := []struct {
		name  string
		looks []Look
		los   []float64
	}{
		{
			name:  "single look",
			looks: []Look{ascLook},
			los:   []float64{3},
		},
		{
			name:  "identical looks cannot separate components",
			looks: []Look{ascLook, ascLook},
			los:   []float64{3, 3},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decompose(tt.looks, tt.los, 90)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !errors.Is(err, ErrDegenerateGeometry) {
				t.Errorf("expected ErrDegenerateGeometry, got %v", err)
			}
		})
	}
}

func TestDecomposeLengthMismatch(t *testing.T) {
	_, err := Decompose([]Look{ascLook, descLook}, []float64{1}, 90)
	if err == nil {
		t.Fatal("expected error for mismatched lengths")
	}
}

func TestPairWithinRadius(t *testing.T) {
	asc := []Sample{
		{ID: 1, Point: orb.Point{0, 0}, Value: -3},
		{ID: 2, Point: orb.Point{50, 0}, Value: -4},
	}
	desc := []Sample{
		{ID: 10, Point: orb.Point{2, 0}, Value: -2},
		{ID: 11, Point: orb.Point{51, 1}, Value: -5},
		{ID: 12, Point: orb.Point{500, 500}, Value: 9},
	}

	pairs := PairWithinRadius(asc, desc, 5)
	if len(pairs) != 2 {
		t.Fatalf("expected 2 pairs, got %d", len(pairs))
	}
	for _, pair := range pairs {
		if pair.Ascending.ID == 1 && pair.Descending.ID != 10 {
			t.Errorf("ascending point 1 should pair with descending 10, got %d", pair.Descending.ID)
		}
		if pair.Ascending.ID == 2 && pair.Descending.ID != 11 {
			t.Errorf("ascending point 2 should pair with descending 11, got %d", pair.Descending.ID)
		}
	}

	if got := PairWithinRadius(asc, desc, 0.5); len(got) != 0 {
		t.Errorf("expected no pairs at tiny radius, got %d", len(got))
	}
}
