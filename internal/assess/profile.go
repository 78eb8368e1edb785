package assess

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/shnmrt/SafeBridge/internal/insar"
)

// OrbitProfile is the quadratic fit of one orbit's line-of-sight
// displacement against normalized axis position:
//
//	los(x) = c0 + c1*x + c2*x^2, x in [0, 1]
//
// Tilt is the end-to-end change of the fitted profile and Deflection the
// midspan sag relative to the chord between the fitted endpoints.
type OrbitProfile struct {
	Coefficients [3]float64
	Tilt         float64
	Deflection   float64
	Points       int
}

// DeckProfile aggregates the per-orbit fits and their decomposition into
// vertical and along-axis components.
type DeckProfile struct {
	Ascending  OrbitProfile
	Descending OrbitProfile

	// TiltVertical/TiltHorizontal decompose the two orbit tilts with the
	// same look geometry used for unit displacements; likewise deflection.
	TiltVertical         float64
	TiltHorizontal       float64
	DeflectionVertical   float64
	DeflectionHorizontal float64
}

func fitDeckProfile(input Input, opts Options) (*DeckProfile, error) {
	asc, err := fitOrbitProfile(input.Ascending)
	if err != nil {
		return nil, fmt.Errorf("ascending profile: %w", err)
	}
	desc, err := fitOrbitProfile(input.Descending)
	if err != nil {
		return nil, fmt.Errorf("descending profile: %w", err)
	}

	profile := &DeckProfile{Ascending: asc, Descending: desc}

	looks := []insar.Look{input.AscendingLook, input.DescendingLook}

	tilt, err := insar.Decompose(looks, []float64{asc.Tilt, desc.Tilt}, input.AxisBearing)
	if err != nil {
		return nil, fmt.Errorf("tilt decomposition: %w", err)
	}
	profile.TiltVertical = tilt.Vertical
	profile.TiltHorizontal = tilt.Horizontal

	deflection, err := insar.Decompose(looks, []float64{asc.Deflection, desc.Deflection}, input.AxisBearing)
	if err != nil {
		return nil, fmt.Errorf("deflection decomposition: %w", err)
	}
	profile.DeflectionVertical = deflection.Vertical
	profile.DeflectionHorizontal = deflection.Horizontal

	return profile, nil
}

func fitOrbitProfile(points []Point) (OrbitProfile, error) {
	if len(points) < 3 {
		return OrbitProfile{}, fmt.Errorf("need at least 3 points for a quadratic fit, have %d", len(points))
	}

	design := mat.NewDense(len(points), 3, nil)
	rhs := mat.NewVecDense(len(points), nil)
	for i, p := range points {
		design.Set(i, 0, 1)
		design.Set(i, 1, p.NDist)
		design.Set(i, 2, p.NDist*p.NDist)
		rhs.SetVec(i, p.Value)
	}

	var coefficients mat.VecDense
	if err := coefficients.SolveVec(design, rhs); err != nil {
		return OrbitProfile{}, fmt.Errorf("quadratic fit is degenerate: %w", err)
	}

	c0 := coefficients.AtVec(0)
	c1 := coefficients.AtVec(1)
	c2 := coefficients.AtVec(2)

	return OrbitProfile{
		Coefficients: [3]float64{c0, c1, c2},
		// los(1) - los(0)
		Tilt: c1 + c2,
		// los(0.5) - (los(0)+los(1))/2
		Deflection: -c2 / 4,
		Points:     len(points),
	}, nil
}
