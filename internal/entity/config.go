package entity

import (
	"fmt"
	"strings"
)

// VectorConfig configures a vector geometry source (deck, axis, or support).
// Construct with NewVectorConfig; a zero value is not valid.
type VectorConfig struct {
	// SourceFile is the path to the vector file (.shp or .geojson).
	SourceFile string
	// SourceCRS is the authority:code identifier of the file's CRS,
	// for example "EPSG:4326".
	SourceCRS string
}

// NewVectorConfig validates and returns a vector source configuration.
func NewVectorConfig(sourceFile, sourceCRS string) (VectorConfig, error) {
	if err := requireString("source_file", sourceFile); err != nil {
		return VectorConfig{}, err
	}
	if err := requireString("source_crs", sourceCRS); err != nil {
		return VectorConfig{}, err
	}
	return VectorConfig{SourceFile: sourceFile, SourceCRS: sourceCRS}, nil
}

// OrbitConfig configures one InSAR displacement source.
// Construct with NewOrbitConfig; a zero value is not valid.
type OrbitConfig struct {
	// SourceFile is the path to the tabular displacement file (.csv).
	SourceFile string
	// SourceCRS is the CRS of the lat/lon columns, normally "EPSG:4326".
	SourceCRS string
	// Unit is the displacement unit of the value column, e.g. "mm".
	Unit string
	// LatField and LonField name the coordinate columns.
	LatField string
	LonField string
	// ValueField names the displacement column.
	ValueField string
	// OrbitAzimuth is the satellite heading in degrees [0, 360).
	OrbitAzimuth float64
	// IncidenceAngle is the look angle from vertical in degrees (0, 90).
	IncidenceAngle float64
}

// NewOrbitConfig validates and returns an orbit source configuration.
func NewOrbitConfig(cfg OrbitConfig) (OrbitConfig, error) {
	for _, field := range []struct {
		name  string
		value string
	}{
		{"source_file", cfg.SourceFile},
		{"source_crs", cfg.SourceCRS},
		{"unit", cfg.Unit},
		{"lat_field", cfg.LatField},
		{"lon_field", cfg.LonField},
		{"value_field", cfg.ValueField},
	} {
		if err := requireString(field.name, field.value); err != nil {
			return OrbitConfig{}, err
		}
	}

	if cfg.OrbitAzimuth < 0 || cfg.OrbitAzimuth >= 360 {
		return OrbitConfig{}, fmt.Errorf("orbit_azimuth must be in [0, 360), got %g", cfg.OrbitAzimuth)
	}
	if cfg.IncidenceAngle <= 0 || cfg.IncidenceAngle >= 90 {
		return OrbitConfig{}, fmt.Errorf("incidence_angle must be in (0, 90), got %g", cfg.IncidenceAngle)
	}

	return cfg, nil
}

func requireString(name, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%s is required and must not be empty", name)
	}
	return nil
}
