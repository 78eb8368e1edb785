// Package assess turns the preprocessed working dataset into per-unit
// damage assessments. Units are the bridge supports ordered along the axis;
// each unit is judged from the ascending/descending point pairs assigned to
// it, independently of every other unit, so units fan out across a bounded
// worker pool and are merged back in axis order.
package assess

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"sync"

	"github.com/paulmach/orb"

	"github.com/shnmrt/SafeBridge/internal/insar"
)

// ErrInsufficientData is matched when a unit lacks a usable
// ascending/descending pair. It is per-unit and never aborts the run.
var ErrInsufficientData = errors.New("insufficient data")

// InsufficientDataError reports a unit that could not be assessed.
type InsufficientDataError struct {
	Unit   int
	Reason string
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("unit %d: insufficient data: %s", e.Unit, e.Reason)
}

func (e *InsufficientDataError) Is(target error) bool {
	return target == ErrInsufficientData
}

// Sector partitions the deck along its axis, matching the original
// south/center/north sectoring of the corridor.
type Sector string

const (
	SectorSouth  Sector = "S"
	SectorCenter Sector = "C"
	SectorNorth  Sector = "N"
)

// SectorFor maps a normalized axis position to its deck sector.
func SectorFor(ndist float64) Sector {
	switch {
	case ndist < 1.0/3.0:
		return SectorSouth
	case ndist < 2.0/3.0:
		return SectorCenter
	default:
		return SectorNorth
	}
}

// Severity grades a unit's damage classification.
type Severity string

const (
	SeverityNone     Severity = "none"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// Point is one retained measurement assigned to a unit, in the
// computational CRS.
type Point struct {
	ID       int
	Position orb.Point
	Value    float64
	NDist    float64 // normalized axis position of the point's projection
	Unit     int     // index of the nearest support
	Sector   Sector
}

// UnitGeometry locates one assessment unit (a support) along the axis.
type UnitGeometry struct {
	Index    int
	Position orb.Point
	NDist    float64
}

// Input is everything the assessor consumes. It is assembled by the
// pipeline's preprocess stage and treated as read-only here.
type Input struct {
	AxisBearing    float64
	AscendingLook  insar.Look
	DescendingLook insar.Look
	Units          []UnitGeometry
	Ascending      []Point
	Descending     []Point
}

// Options is the assessment policy.
type Options struct {
	// VerticalThreshold and HorizontalThreshold flag a unit when the
	// magnitude of the respective displacement estimate exceeds them.
	VerticalThreshold   float64
	HorizontalThreshold float64

	// TrendThreshold flags a unit when the second difference of vertical
	// displacement across its neighbors exceeds it.
	TrendThreshold float64

	// PairRadius is the maximum ascending/descending separation for a pair.
	PairRadius float64

	// Workers bounds concurrent unit assessments. Values below 1 mean 1.
	Workers int
}

// UnitResult is the assessment of one support.
type UnitResult struct {
	Unit       int
	Position   orb.Point
	NDist      float64
	Sector     Sector
	Vertical   float64
	Horizontal float64
	// StdDev is the sample standard deviation of the per-pair vertical
	// solutions; zero when only one pair contributed.
	StdDev   float64
	Residual float64
	Pairs    int
	AscCount int
	DescCount int
	Flags    []string
	Severity Severity
	// AscendingIDs and DescendingIDs record which measurements contributed.
	AscendingIDs  []int
	DescendingIDs []int
}

// SkippedUnit records a unit left out of the results and why.
type SkippedUnit struct {
	Unit int
	Err  error
}

// Result is the full damage assessment.
type Result struct {
	Units   []UnitResult
	Skipped []SkippedUnit
	Sectors map[Sector]SectorStats
	Profile *DeckProfile
}

// SectorStats aggregates measurement coverage and assessed motion for one
// deck sector.
type SectorStats struct {
	AscendingPoints  int
	DescendingPoints int
	Units            int
	MeanVertical     float64
}

// MaxVertical returns the largest |vertical| across assessed units.
func (r *Result) MaxVertical() float64 {
	max := 0.0
	for _, u := range r.Units {
		if v := math.Abs(u.Vertical); v > max {
			max = v
		}
	}
	return max
}

// WorstSeverity returns the most severe classification across units.
func (r *Result) WorstSeverity() Severity {
	worst := SeverityNone
	for _, u := range r.Units {
		if u.Severity == SeverityCritical {
			return SeverityCritical
		}
		if u.Severity == SeverityWarning {
			worst = SeverityWarning
		}
	}
	return worst
}

// Run assesses every unit. Units without a valid pair are reported in
// Skipped; an error is returned only for cancellation or an empty unit set.
func Run(ctx context.Context, input Input, opts Options, logger *slog.Logger) (*Result, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if len(input.Units) == 0 {
		return nil, fmt.Errorf("no assessment units: no supports survived preprocessing")
	}

	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}
	if workers > len(input.Units) {
		workers = len(input.Units)
	}

	type outcome struct {
		result *UnitResult
		err    error
	}
	outcomes := make([]outcome, len(input.Units))

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				result, err := assessUnit(input, input.Units[idx], opts)
				outcomes[idx] = outcome{result: result, err: err}
			}
		}()
	}

	dispatch := func() error {
		defer close(jobs)
		for idx := range input.Units {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case jobs <- idx:
			}
		}
		return nil
	}

	err := dispatch()
	wg.Wait()
	if err != nil {
		return nil, err
	}

	result := &Result{}
	for i, unit := range input.Units {
		switch {
		case outcomes[i].err != nil:
			logger.Warn("unit skipped",
				"unit", unit.Index,
				"error", outcomes[i].err,
			)
			result.Skipped = append(result.Skipped, SkippedUnit{Unit: unit.Index, Err: outcomes[i].err})
		case outcomes[i].result != nil:
			result.Units = append(result.Units, *outcomes[i].result)
		}
	}

	sort.Slice(result.Units, func(i, j int) bool {
		return result.Units[i].Unit < result.Units[j].Unit
	})
	sort.Slice(result.Skipped, func(i, j int) bool {
		return result.Skipped[i].Unit < result.Skipped[j].Unit
	})

	classifyTrend(result.Units, opts)
	result.Sectors = sectorSummary(input, result.Units)

	if profile, err := fitDeckProfile(input, opts); err != nil {
		logger.Info("deck profile not fitted", "reason", err)
	} else {
		result.Profile = profile
	}

	return result, nil
}

func assessUnit(input Input, unit UnitGeometry, opts Options) (*UnitResult, error) {
	asc := samplesForUnit(input.Ascending, unit.Index)
	desc := samplesForUnit(input.Descending, unit.Index)

	if len(asc) == 0 {
		return nil, &InsufficientDataError{Unit: unit.Index, Reason: "no ascending points assigned"}
	}
	if len(desc) == 0 {
		return nil, &InsufficientDataError{Unit: unit.Index, Reason: "no descending points assigned"}
	}

	pairs := insar.PairWithinRadius(asc, desc, opts.PairRadius)
	if len(pairs) == 0 {
		return nil, &InsufficientDataError{
			Unit:   unit.Index,
			Reason: fmt.Sprintf("no ascending/descending pair within %g of each other", opts.PairRadius),
		}
	}

	looks := []insar.Look{input.AscendingLook, input.DescendingLook}

	var verticals, horizontals, residuals []float64
	ascUsed := map[int]bool{}
	descUsed := map[int]bool{}
	for _, pair := range pairs {
		d, err := insar.Decompose(looks, []float64{pair.Ascending.Value, pair.Descending.Value}, input.AxisBearing)
		if err != nil {
			continue
		}
		verticals = append(verticals, d.Vertical)
		horizontals = append(horizontals, d.Horizontal)
		residuals = append(residuals, d.Residual)
		ascUsed[pair.Ascending.ID] = true
		descUsed[pair.Descending.ID] = true
	}

	if len(verticals) == 0 {
		return nil, &InsufficientDataError{Unit: unit.Index, Reason: "look geometry cannot separate displacement components"}
	}

	result := &UnitResult{
		Unit:          unit.Index,
		Position:      unit.Position,
		NDist:         unit.NDist,
		Sector:        SectorFor(unit.NDist),
		Vertical:      mean(verticals),
		Horizontal:    mean(horizontals),
		StdDev:        stddev(verticals),
		Residual:      mean(residuals),
		Pairs:         len(verticals),
		AscCount:      len(asc),
		DescCount:     len(desc),
		AscendingIDs:  sortedKeys(ascUsed),
		DescendingIDs: sortedKeys(descUsed),
	}
	classifyMagnitude(result, opts)
	return result, nil
}

func samplesForUnit(points []Point, unit int) []insar.Sample {
	var samples []insar.Sample
	for _, p := range points {
		if p.Unit == unit {
			samples = append(samples, insar.Sample{ID: p.ID, Point: p.Position, Value: p.Value})
		}
	}
	return samples
}

func classifyMagnitude(u *UnitResult, opts Options) {
	severity := SeverityNone
	if math.Abs(u.Vertical) > opts.VerticalThreshold {
		u.Flags = append(u.Flags, "vertical")
		severity = escalate(severity, math.Abs(u.Vertical), opts.VerticalThreshold)
	}
	if math.Abs(u.Horizontal) > opts.HorizontalThreshold {
		u.Flags = append(u.Flags, "horizontal")
		severity = escalate(severity, math.Abs(u.Horizontal), opts.HorizontalThreshold)
	}
	u.Severity = severity
}

// classifyTrend flags breaks in smoothness of the vertical profile across
// adjacent units: a large second difference signals differential settlement
// rather than uniform seasonal motion.
func classifyTrend(units []UnitResult, opts Options) {
	for i := 1; i+1 < len(units); i++ {
		d2 := units[i-1].Vertical - 2*units[i].Vertical + units[i+1].Vertical
		if math.Abs(d2) > opts.TrendThreshold {
			units[i].Flags = append(units[i].Flags, "trend")
			units[i].Severity = maxSeverity(units[i].Severity, escalate(SeverityNone, math.Abs(d2), opts.TrendThreshold))
		}
	}
}

func escalate(current Severity, magnitude, threshold float64) Severity {
	s := SeverityWarning
	if magnitude > 2*threshold {
		s = SeverityCritical
	}
	return maxSeverity(current, s)
}

func maxSeverity(a, b Severity) Severity {
	rank := map[Severity]int{SeverityNone: 0, SeverityWarning: 1, SeverityCritical: 2}
	if rank[b] > rank[a] {
		return b
	}
	return a
}

func sectorSummary(input Input, units []UnitResult) map[Sector]SectorStats {
	stats := map[Sector]SectorStats{}
	for _, p := range input.Ascending {
		s := stats[p.Sector]
		s.AscendingPoints++
		stats[p.Sector] = s
	}
	for _, p := range input.Descending {
		s := stats[p.Sector]
		s.DescendingPoints++
		stats[p.Sector] = s
	}

	sums := map[Sector]float64{}
	for _, u := range units {
		s := stats[u.Sector]
		s.Units++
		stats[u.Sector] = s
		sums[u.Sector] += u.Vertical
	}
	for sector, s := range stats {
		if s.Units > 0 {
			s.MeanVertical = sums[sector] / float64(s.Units)
			stats[sector] = s
		}
	}
	return stats
}

func mean(values []float64) float64 {
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func stddev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	m := mean(values)
	sum := 0.0
	for _, v := range values {
		sum += (v - m) * (v - m)
	}
	return math.Sqrt(sum / float64(len(values)-1))
}

func sortedKeys(set map[int]bool) []int {
	keys := make([]int, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}
