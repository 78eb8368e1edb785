// Package server provides a public API for embedding the SafeBridge service.
package server

import (
	"log/slog"

	"github.com/go-chi/chi/v5"

	"github.com/shnmrt/SafeBridge/internal/api"
	"github.com/shnmrt/SafeBridge/internal/config"
)

// Options configures an embedded SafeBridge server.
type Options struct {
	// VerticalThreshold flags a unit when |vertical| displacement exceeds
	// it, in the displacement unit of the inputs.
	// Default: 10
	VerticalThreshold float64

	// HorizontalThreshold flags a unit when |horizontal| displacement
	// exceeds it.
	// Default: 10
	HorizontalThreshold float64

	// TrendThreshold flags a unit when the second difference of vertical
	// displacement across adjacent units exceeds it.
	// Default: 5
	TrendThreshold float64

	// PairRadius is the maximum ascending/descending point separation for
	// a decomposition pair, in computational CRS units.
	// Default: 0 (half the preprocess buffer distance)
	PairRadius float64

	// Workers bounds the number of units assessed concurrently.
	// Default: 4
	Workers int

	// Logger is the slog logger to use.
	// Default: slog.Default()
	Logger *slog.Logger
}

// Server is a SafeBridge assessment server that can be embedded in another
// application.
type Server struct {
	router chi.Router
}

// New creates a new SafeBridge server with the given options.
func New(opts Options) (*Server, error) {
	if opts.VerticalThreshold == 0 {
		opts.VerticalThreshold = 10
	}
	if opts.HorizontalThreshold == 0 {
		opts.HorizontalThreshold = 10
	}
	if opts.TrendThreshold == 0 {
		opts.TrendThreshold = 5
	}
	if opts.Workers == 0 {
		opts.Workers = 4
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	cfg := &config.Config{
		Assessment: config.AssessmentConfig{
			VerticalThreshold:   opts.VerticalThreshold,
			HorizontalThreshold: opts.HorizontalThreshold,
			TrendThreshold:      opts.TrendThreshold,
			PairRadius:          opts.PairRadius,
			Workers:             opts.Workers,
		},
	}

	handlers := api.NewHandlers(cfg, opts.Logger)
	router := api.NewRouter(handlers, opts.Logger)

	return &Server{router: router}, nil
}

// Router returns the chi.Router for mounting in another application.
func (s *Server) Router() chi.Router {
	return s.router
}
