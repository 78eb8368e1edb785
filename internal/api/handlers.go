package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"

	"github.com/shnmrt/SafeBridge/internal/assess"
	"github.com/shnmrt/SafeBridge/internal/config"
	"github.com/shnmrt/SafeBridge/internal/crs"
	"github.com/shnmrt/SafeBridge/internal/entity"
	"github.com/shnmrt/SafeBridge/internal/loader"
	"github.com/shnmrt/SafeBridge/internal/pipeline"
	"github.com/shnmrt/SafeBridge/internal/report"
)

// Handlers holds the HTTP handlers and the most recent assessment report.
type Handlers struct {
	cfg    *config.Config
	logger *slog.Logger

	mu     sync.RWMutex
	latest *report.Report
}

// NewHandlers creates the handler set.
func NewHandlers(cfg *config.Config, logger *slog.Logger) *Handlers {
	return &Handlers{
		cfg:    cfg,
		logger: logger,
	}
}

// VectorSource is the request body form of a vector input.
type VectorSource struct {
	SourceFile string `json:"source_file"`
	SourceCRS  string `json:"source_crs"`
}

// OrbitSource is the request body form of an InSAR displacement input.
type OrbitSource struct {
	SourceFile     string  `json:"source_file"`
	SourceCRS      string  `json:"source_crs"`
	Unit           string  `json:"unit"`
	LatField       string  `json:"lat_field"`
	LonField       string  `json:"lon_field"`
	ValueField     string  `json:"value_field"`
	OrbitAzimuth   float64 `json:"orbit_azimuth"`
	IncidenceAngle float64 `json:"incidence_angle"`
}

// AssessmentRequest describes one full assessment run.
type AssessmentRequest struct {
	Deck             VectorSource `json:"deck"`
	Axis             VectorSource `json:"axis"`
	Supports         VectorSource `json:"supports"`
	Ascending        OrbitSource  `json:"ascending"`
	Descending       OrbitSource  `json:"descending"`
	ComputationalCRS string       `json:"computational_crs"`
	BufferDistance   float64      `json:"buffer_distance"`
}

// Health handles GET /health.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// CreateAssessment handles POST /assessments. It runs the full pipeline for
// the requested sources and responds with the generated report.
func (h *Handlers) CreateAssessment(w http.ResponseWriter, r *http.Request) {
	var req AssessmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteBadRequest(w, "invalid request body: "+err.Error())
		return
	}

	rep, err := h.runPipeline(r.Context(), req)
	if err != nil {
		h.writePipelineError(w, err)
		return
	}

	h.mu.Lock()
	h.latest = rep
	h.mu.Unlock()

	WriteJSON(w, http.StatusCreated, rep)
}

// LatestAssessment handles GET /assessments/latest.
func (h *Handlers) LatestAssessment(w http.ResponseWriter, r *http.Request) {
	rep := h.latestReport()
	if rep == nil {
		WriteNotFound(w, "no assessment has been run")
		return
	}
	WriteJSON(w, http.StatusOK, rep)
}

// LatestGeoJSON handles GET /assessments/latest/geojson.
func (h *Handlers) LatestGeoJSON(w http.ResponseWriter, r *http.Request) {
	rep := h.latestReport()
	if rep == nil {
		WriteNotFound(w, "no assessment has been run")
		return
	}

	data, err := rep.GeoJSON()
	if err != nil {
		h.logger.Error("failed to render geojson", "error", err)
		WriteInternalError(w, "failed to render GeoJSON")
		return
	}
	WriteGeoJSON(w, http.StatusOK, data)
}

// LatestProvenance handles GET /assessments/latest/stac.
func (h *Handlers) LatestProvenance(w http.ResponseWriter, r *http.Request) {
	rep := h.latestReport()
	if rep == nil {
		WriteNotFound(w, "no assessment has been run")
		return
	}

	items, err := rep.ProvenanceItems()
	if err != nil {
		h.logger.Error("failed to build provenance items", "error", err)
		WriteInternalError(w, "failed to build provenance items")
		return
	}
	WriteJSON(w, http.StatusOK, items)
}

func (h *Handlers) latestReport() *report.Report {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.latest
}

func (h *Handlers) runPipeline(ctx context.Context, req AssessmentRequest) (*report.Report, error) {
	sources := pipeline.Sources{
		Deck:     entity.VectorConfig{SourceFile: req.Deck.SourceFile, SourceCRS: req.Deck.SourceCRS},
		Axis:     entity.VectorConfig{SourceFile: req.Axis.SourceFile, SourceCRS: req.Axis.SourceCRS},
		Supports: entity.VectorConfig{SourceFile: req.Supports.SourceFile, SourceCRS: req.Supports.SourceCRS},
		Ascending: entity.OrbitConfig{
			SourceFile:     req.Ascending.SourceFile,
			SourceCRS:      req.Ascending.SourceCRS,
			Unit:           req.Ascending.Unit,
			LatField:       req.Ascending.LatField,
			LonField:       req.Ascending.LonField,
			ValueField:     req.Ascending.ValueField,
			OrbitAzimuth:   req.Ascending.OrbitAzimuth,
			IncidenceAngle: req.Ascending.IncidenceAngle,
		},
		Descending: entity.OrbitConfig{
			SourceFile:     req.Descending.SourceFile,
			SourceCRS:      req.Descending.SourceCRS,
			Unit:           req.Descending.Unit,
			LatField:       req.Descending.LatField,
			LonField:       req.Descending.LonField,
			ValueField:     req.Descending.ValueField,
			OrbitAzimuth:   req.Descending.OrbitAzimuth,
			IncidenceAngle: req.Descending.IncidenceAngle,
		},
	}

	p, err := pipeline.New(sources, h.assessOptions(), h.logger)
	if err != nil {
		return nil, err
	}
	if err := p.LoadSourceFiles(); err != nil {
		return nil, err
	}
	if err := p.Preprocess(req.ComputationalCRS, req.BufferDistance); err != nil {
		return nil, err
	}
	if _, err := p.AssessDamage(ctx); err != nil {
		return nil, err
	}
	return p.GenerateReport()
}

func (h *Handlers) assessOptions() assess.Options {
	a := h.cfg.Assessment
	return assess.Options{
		VerticalThreshold:   a.VerticalThreshold,
		HorizontalThreshold: a.HorizontalThreshold,
		TrendThreshold:      a.TrendThreshold,
		PairRadius:          a.PairRadius,
		Workers:             a.Workers,
	}
}

// writePipelineError maps pipeline failures onto HTTP statuses. Everything
// caused by the request's data or configuration is a 400; only rendering
// and infrastructure failures are 500s.
func (h *Handlers) writePipelineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		WriteError(w, http.StatusRequestTimeout, ErrCodeBadRequest, err.Error())
	case errors.Is(err, loader.ErrFileFormat),
		errors.Is(err, loader.ErrMissingField),
		errors.Is(err, crs.ErrReprojection):
		WriteBadRequest(w, err.Error())
	case errors.Is(err, pipeline.ErrPipelineOrder):
		h.logger.Error("pipeline stage ordering broken", "error", err)
		WriteInternalError(w, err.Error())
	default:
		WriteBadRequest(w, err.Error())
	}
}
