// SafeBridge entry point: one-shot assessment runs and the HTTP serve mode.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shnmrt/SafeBridge/internal/api"
	"github.com/shnmrt/SafeBridge/internal/assess"
	"github.com/shnmrt/SafeBridge/internal/config"
	"github.com/shnmrt/SafeBridge/internal/entity"
	"github.com/shnmrt/SafeBridge/internal/pipeline"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		serve = flag.Bool("serve", false, "run the HTTP API instead of a one-shot assessment")

		deckPath     = flag.String("deck", "", "deck footprint vector file (.shp or .geojson)")
		axisPath     = flag.String("axis", "", "bridge axis vector file")
		supportsPath = flag.String("supports", "", "supports vector file")
		vectorCRS    = flag.String("vector-crs", "EPSG:4326", "CRS of the vector sources")

		ascPath       = flag.String("ascending", "", "ascending orbit displacement CSV")
		descPath      = flag.String("descending", "", "descending orbit displacement CSV")
		orbitCRS      = flag.String("orbit-crs", "EPSG:4326", "CRS of the CSV coordinate columns")
		unit          = flag.String("unit", "mm", "displacement unit of the CSV value column")
		latField      = flag.String("lat-field", "lat", "latitude column name")
		lonField      = flag.String("lon-field", "lon", "longitude column name")
		valueField    = flag.String("value-field", "displacement", "displacement column name")
		ascAzimuth    = flag.Float64("asc-azimuth", 350, "ascending orbit azimuth, degrees from north")
		ascIncidence  = flag.Float64("asc-incidence", 34, "ascending incidence angle, degrees from vertical")
		descAzimuth   = flag.Float64("desc-azimuth", 190, "descending orbit azimuth, degrees from north")
		descIncidence = flag.Float64("desc-incidence", 34, "descending incidence angle, degrees from vertical")

		computationalCRS = flag.String("crs", "", "projected computational CRS, e.g. EPSG:32633")
		buffer           = flag.Float64("buffer", 20, "corridor buffer distance in computational CRS units")

		format = flag.String("format", "text", "report format: text, json, or geojson")
		out    = flag.String("out", "", "output file (default stdout)")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger := setupLogger(cfg.Logging.Level, cfg.Logging.Format)
	slog.SetDefault(logger)

	if *serve {
		return serveHTTP(cfg, logger)
	}

	for name, value := range map[string]string{
		"deck":       *deckPath,
		"axis":       *axisPath,
		"supports":   *supportsPath,
		"ascending":  *ascPath,
		"descending": *descPath,
		"crs":        *computationalCRS,
	} {
		if value == "" {
			return fmt.Errorf("-%s is required", name)
		}
	}

	sources := pipeline.Sources{
		Deck:     entity.VectorConfig{SourceFile: *deckPath, SourceCRS: *vectorCRS},
		Axis:     entity.VectorConfig{SourceFile: *axisPath, SourceCRS: *vectorCRS},
		Supports: entity.VectorConfig{SourceFile: *supportsPath, SourceCRS: *vectorCRS},
		Ascending: entity.OrbitConfig{
			SourceFile:     *ascPath,
			SourceCRS:      *orbitCRS,
			Unit:           *unit,
			LatField:       *latField,
			LonField:       *lonField,
			ValueField:     *valueField,
			OrbitAzimuth:   *ascAzimuth,
			IncidenceAngle: *ascIncidence,
		},
		Descending: entity.OrbitConfig{
			SourceFile:     *descPath,
			SourceCRS:      *orbitCRS,
			Unit:           *unit,
			LatField:       *latField,
			LonField:       *lonField,
			ValueField:     *valueField,
			OrbitAzimuth:   *descAzimuth,
			IncidenceAngle: *descIncidence,
		},
	}

	opts := assess.Options{
		VerticalThreshold:   cfg.Assessment.VerticalThreshold,
		HorizontalThreshold: cfg.Assessment.HorizontalThreshold,
		TrendThreshold:      cfg.Assessment.TrendThreshold,
		PairRadius:          cfg.Assessment.PairRadius,
		Workers:             cfg.Assessment.Workers,
	}

	p, err := pipeline.New(sources, opts, logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := p.LoadSourceFiles(); err != nil {
		return err
	}
	if err := p.Preprocess(*computationalCRS, *buffer); err != nil {
		return err
	}
	if _, err := p.AssessDamage(ctx); err != nil {
		return err
	}
	rep, err := p.GenerateReport()
	if err != nil {
		return err
	}

	var rendered []byte
	switch *format {
	case "text":
		rendered = []byte(rep.Text())
	case "json":
		rendered, err = rep.JSON()
	case "geojson":
		rendered, err = rep.GeoJSON()
	default:
		return fmt.Errorf("unknown format %q", *format)
	}
	if err != nil {
		return fmt.Errorf("failed to render report: %w", err)
	}

	if *out == "" {
		_, err = os.Stdout.Write(rendered)
		return err
	}
	return os.WriteFile(*out, rendered, 0o644)
}

func serveHTTP(cfg *config.Config, logger *slog.Logger) error {
	logger.Info("starting SafeBridge server",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
	)

	handlers := api.NewHandlers(cfg, logger)
	router := api.NewRouter(handlers, logger)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		return fmt.Errorf("server error: %w", err)
	case sig := <-quit:
		logger.Info("received shutdown signal", "signal", sig)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	logger.Info("shutting down server", "timeout", cfg.Server.ShutdownTimeout)
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	logger.Info("server stopped")
	return nil
}

func setupLogger(level, format string) *slog.Logger {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: logLevel}

	var handler slog.Handler
	if format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}
