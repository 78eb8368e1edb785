// Package insar models InSAR viewing geometry and decomposes line-of-sight
// displacements into vertical and horizontal components.
//
// Each orbit observes the true motion only along its radar line of sight:
//
//	LOS = V*cos(incidence) + H*sin(incidence)*cos(azimuth - axisBearing)
//
// where V is vertical displacement, H is horizontal displacement along the
// bridge axis, and angles are in degrees. One orbit leaves the system
// under-determined; ascending plus descending gives an exact 2x2 solve, and
// more looks are handled by least squares. Cross-axis motion is not
// observable with two looks and is absorbed into the residual.
package insar

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// ErrDegenerateGeometry is returned when the look geometries are too similar
// to separate vertical from horizontal motion.
var ErrDegenerateGeometry = errors.New("degenerate look geometry")

// Look is the viewing geometry of one acquisition.
type Look struct {
	Azimuth   float64 // satellite heading, degrees clockwise from north
	Incidence float64 // line-of-sight angle from vertical, degrees
}

// Displacement is a decomposed motion estimate.
type Displacement struct {
	Vertical   float64 // positive up, in the dataset unit
	Horizontal float64 // positive along the axis direction, in the dataset unit
	Residual   float64 // RMS misfit of the solve, zero for an exact 2x2 system
}

// Forward evaluates the line-of-sight model for a known displacement. Used
// by synthetic tests and diagnostics.
func Forward(d Displacement, look Look, axisBearing float64) float64 {
	inc := look.Incidence * math.Pi / 180
	heading := (look.Azimuth - axisBearing) * math.Pi / 180
	return d.Vertical*math.Cos(inc) + d.Horizontal*math.Sin(inc)*math.Cos(heading)
}

// Decompose solves for vertical and along-axis displacement from N
// line-of-sight observations with known look geometries. At N=2 the system
// is determined and solved exactly; at N>2 it is solved in the least-squares
// sense. Fewer than two looks, or looks that cannot separate the components,
// return an error.
func Decompose(looks []Look, los []float64, axisBearing float64) (Displacement, error) {
	if len(looks) != len(los) {
		return Displacement{}, fmt.Errorf("got %d looks for %d observations", len(looks), len(los))
	}
	if len(looks) < 2 {
		return Displacement{}, fmt.Errorf("%w: need at least 2 looks, got %d", ErrDegenerateGeometry, len(looks))
	}

	n := len(looks)
	design := mat.NewDense(n, 2, nil)
	for i, look := range looks {
		inc := look.Incidence * math.Pi / 180
		heading := (look.Azimuth - axisBearing) * math.Pi / 180
		design.Set(i, 0, math.Cos(inc))
		design.Set(i, 1, math.Sin(inc)*math.Cos(heading))
	}
	rhs := mat.NewVecDense(n, append([]float64(nil), los...))

	var solution mat.VecDense
	if err := solution.SolveVec(design, rhs); err != nil {
		return Displacement{}, fmt.Errorf("%w: %v", ErrDegenerateGeometry, err)
	}

	d := Displacement{
		Vertical:   solution.AtVec(0),
		Horizontal: solution.AtVec(1),
	}

	var fitted mat.VecDense
	fitted.MulVec(design, &solution)
	sum := 0.0
	for i := 0; i < n; i++ {
		r := rhs.AtVec(i) - fitted.AtVec(i)
		sum += r * r
	}
	d.Residual = math.Sqrt(sum / float64(n))

	if math.IsNaN(d.Vertical) || math.IsNaN(d.Horizontal) ||
		math.IsInf(d.Vertical, 0) || math.IsInf(d.Horizontal, 0) {
		return Displacement{}, ErrDegenerateGeometry
	}

	return d, nil
}
