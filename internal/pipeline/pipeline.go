// Package pipeline drives a bridge damage assessment through its four
// stages: loading the source files, preprocessing them into a common
// computational frame, assessing per-unit displacement, and rendering the
// report. Stages must run in order; each one validates the pipeline state
// before touching any data.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/shnmrt/SafeBridge/internal/assess"
	"github.com/shnmrt/SafeBridge/internal/crs"
	"github.com/shnmrt/SafeBridge/internal/entity"
	"github.com/shnmrt/SafeBridge/internal/loader"
	"github.com/shnmrt/SafeBridge/internal/report"
)

// State tracks how far a pipeline has progressed.
type State int

const (
	StateCreated State = iota
	StateLoaded
	StatePreprocessed
	StateAssessed
	StateReported
)

func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateLoaded:
		return "loaded"
	case StatePreprocessed:
		return "preprocessed"
	case StateAssessed:
		return "assessed"
	case StateReported:
		return "reported"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Sources names the five input datasets of an assessment.
type Sources struct {
	Deck       entity.VectorConfig
	Axis       entity.VectorConfig
	Supports   entity.VectorConfig
	Ascending  entity.OrbitConfig
	Descending entity.OrbitConfig
}

// Pipeline is a single assessment run. It is safe for concurrent use; each
// stage holds the pipeline lock for its full duration.
type Pipeline struct {
	mu      sync.Mutex
	logger  *slog.Logger
	sources Sources
	opts    assess.Options

	state State

	deck       *entity.Deck
	axis       *entity.Axis
	supports   *entity.Supports
	ascending  *entity.OrbitDataset
	descending *entity.OrbitDataset

	working *Working
	result  *assess.Result
	report  *report.Report
}

// New validates the source configuration and returns a pipeline in the
// created state. Nothing is read from disk yet.
func New(sources Sources, opts assess.Options, logger *slog.Logger) (*Pipeline, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var err error
	if sources.Deck, err = entity.NewVectorConfig(sources.Deck.SourceFile, sources.Deck.SourceCRS); err != nil {
		return nil, fmt.Errorf("deck: %w", err)
	}
	if sources.Axis, err = entity.NewVectorConfig(sources.Axis.SourceFile, sources.Axis.SourceCRS); err != nil {
		return nil, fmt.Errorf("axis: %w", err)
	}
	if sources.Supports, err = entity.NewVectorConfig(sources.Supports.SourceFile, sources.Supports.SourceCRS); err != nil {
		return nil, fmt.Errorf("supports: %w", err)
	}
	if sources.Ascending, err = entity.NewOrbitConfig(sources.Ascending); err != nil {
		return nil, fmt.Errorf("ascending: %w", err)
	}
	if sources.Descending, err = entity.NewOrbitConfig(sources.Descending); err != nil {
		return nil, fmt.Errorf("descending: %w", err)
	}

	return &Pipeline{
		logger:  logger,
		sources: sources,
		opts:    opts,
		state:   StateCreated,
	}, nil
}

// State returns the pipeline's current stage.
func (p *Pipeline) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Report returns the last generated report, or nil before GenerateReport
// has run.
func (p *Pipeline) Report() *report.Report {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.report
}

// LoadSourceFiles reads all five datasets. It can be called again at any
// stage to reload from disk; doing so discards all derived state.
func (p *Pipeline) LoadSourceFiles() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	deck, err := loader.LoadDeck(p.sources.Deck)
	if err != nil {
		return fmt.Errorf("deck: %w", err)
	}
	axis, err := loader.LoadAxis(p.sources.Axis)
	if err != nil {
		return fmt.Errorf("axis: %w", err)
	}
	supports, err := loader.LoadSupports(p.sources.Supports)
	if err != nil {
		return fmt.Errorf("supports: %w", err)
	}
	asc, err := loader.LoadOrbit(entity.OrbitAscending, p.sources.Ascending)
	if err != nil {
		return fmt.Errorf("ascending: %w", err)
	}
	desc, err := loader.LoadOrbit(entity.OrbitDescending, p.sources.Descending)
	if err != nil {
		return fmt.Errorf("descending: %w", err)
	}

	p.deck = deck
	p.axis = axis
	p.supports = supports
	p.ascending = asc
	p.descending = desc
	p.working = nil
	p.result = nil
	p.report = nil
	p.state = StateLoaded

	p.logger.Info("source files loaded",
		"bridge", deck.ID,
		"supports", len(supports.Points),
		"ascending_points", len(asc.Points),
		"descending_points", len(desc.Points),
	)
	return nil
}

// Preprocess reprojects every dataset into the computational CRS and derives
// the working dataset. Calling it again rebuilds the working dataset from
// the loaded entities, so repeated calls with the same arguments produce the
// same result; any previous assessment or report is discarded.
func (p *Pipeline) Preprocess(computationalCRS string, bufferDistance float64) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state < StateLoaded {
		return &PipelineOrderError{Operation: "preprocess", State: p.state, Required: StateLoaded}
	}

	target, err := crs.Parse(computationalCRS)
	if err != nil {
		return err
	}

	working, err := buildWorking(p.deck, p.axis, p.supports, p.ascending, p.descending, target, bufferDistance)
	if err != nil {
		return err
	}

	p.working = working
	p.result = nil
	p.report = nil
	p.state = StatePreprocessed

	p.logger.Info("preprocessing complete",
		"crs", target.String(),
		"orientation", working.Orientation,
		"axis_length", working.AxisLength,
		"units", len(working.Units),
		"spans", working.SpanCount,
		"ascending_retained", working.Retention.AscendingRetained,
		"descending_retained", working.Retention.DescendingRetained,
	)
	return nil
}

// AssessDamage decomposes the paired measurements into vertical and
// horizontal displacement per unit and classifies each against the
// configured thresholds.
func (p *Pipeline) AssessDamage(ctx context.Context) (*assess.Result, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state < StatePreprocessed {
		return nil, &PipelineOrderError{Operation: "assess_damage", State: p.state, Required: StatePreprocessed}
	}

	opts := p.opts
	if opts.PairRadius <= 0 {
		opts.PairRadius = p.working.Buffer / 2
	}

	input := assess.Input{
		AxisBearing:    p.working.AxisBearing,
		AscendingLook:  p.working.AscendingLook,
		DescendingLook: p.working.DescendingLook,
		Units:          p.working.Units,
		Ascending:      p.working.Ascending,
		Descending:     p.working.Descending,
	}

	result, err := assess.Run(ctx, input, opts, p.logger)
	if err != nil {
		return nil, err
	}

	p.result = result
	p.report = nil
	p.state = StateAssessed

	p.logger.Info("assessment complete",
		"assessed", len(result.Units),
		"skipped", len(result.Skipped),
		"worst_severity", result.WorstSeverity(),
	)
	return result, nil
}

// GenerateReport renders the assessment into a report.
func (p *Pipeline) GenerateReport() (*report.Report, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state < StateAssessed {
		return nil, &PipelineOrderError{Operation: "generate_report", State: p.state, Required: StateAssessed}
	}

	rep := report.Build(report.BuildInput{
		Bridge:      p.deck.ID,
		CRS:         p.working.CRS.String(),
		Unit:        p.ascending.Unit,
		Buffer:      p.working.Buffer,
		Orientation: p.working.Orientation,
		AxisLength:  p.working.AxisLength,
		AxisBearing: p.working.AxisBearing,
		SpanCount:   p.working.SpanCount,
		Edges:       p.working.Edges,
		Retention:   p.working.Retention,
		Sources:     p.sourceInfo(),
		Result:      p.result,
		Corridor:    p.working.Corridor.Ring(16),
	})

	p.report = rep
	p.state = StateReported

	p.logger.Info("report generated", "bridge", rep.Bridge, "units", len(rep.Units))
	return rep, nil
}

func (p *Pipeline) sourceInfo() []report.SourceInfo {
	return []report.SourceInfo{
		{Role: "deck", Path: p.sources.Deck.SourceFile, CRS: p.sources.Deck.SourceCRS},
		{Role: "axis", Path: p.sources.Axis.SourceFile, CRS: p.sources.Axis.SourceCRS},
		{Role: "supports", Path: p.sources.Supports.SourceFile, CRS: p.sources.Supports.SourceCRS},
		{
			Role:      "ascending",
			Path:      p.sources.Ascending.SourceFile,
			CRS:       p.sources.Ascending.SourceCRS,
			Unit:      p.sources.Ascending.Unit,
			Azimuth:   p.sources.Ascending.OrbitAzimuth,
			Incidence: p.sources.Ascending.IncidenceAngle,
		},
		{
			Role:      "descending",
			Path:      p.sources.Descending.SourceFile,
			CRS:       p.sources.Descending.SourceCRS,
			Unit:      p.sources.Descending.Unit,
			Azimuth:   p.sources.Descending.OrbitAzimuth,
			Incidence: p.sources.Descending.IncidenceAngle,
		},
	}
}
