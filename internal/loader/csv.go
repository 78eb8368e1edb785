package loader

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/shnmrt/SafeBridge/internal/entity"
)

// LoadOrbit reads one orbit's displacement measurements from a CSV file with
// the configured latitude, longitude, and value columns. Point IDs are the
// 1-based data row numbers, stable across reloads of the same file.
func LoadOrbit(direction entity.OrbitDirection, cfg entity.OrbitConfig) (*entity.OrbitDataset, error) {
	if ext := strings.ToLower(filepath.Ext(cfg.SourceFile)); ext != ".csv" {
		return nil, &FileFormatError{Path: cfg.SourceFile, Reason: "unsupported format, expected .csv"}
	}

	f, err := os.Open(cfg.SourceFile)
	if err != nil {
		return nil, fmt.Errorf("source file unreadable: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err != nil {
		return nil, &FileFormatError{Path: cfg.SourceFile, Reason: "missing header row"}
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.TrimSpace(name)] = i
	}

	latCol, ok := columns[cfg.LatField]
	if !ok {
		return nil, &MissingFieldError{Path: cfg.SourceFile, Field: cfg.LatField}
	}
	lonCol, ok := columns[cfg.LonField]
	if !ok {
		return nil, &MissingFieldError{Path: cfg.SourceFile, Field: cfg.LonField}
	}
	valueCol, ok := columns[cfg.ValueField]
	if !ok {
		return nil, &MissingFieldError{Path: cfg.SourceFile, Field: cfg.ValueField}
	}

	var points []entity.Measurement
	row := 0
	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, &FileFormatError{Path: cfg.SourceFile, Reason: err.Error()}
		}
		row++

		lat, err := parseCell(record, latCol)
		if err != nil {
			return nil, &FileFormatError{Path: cfg.SourceFile, Reason: fmt.Sprintf("row %d: bad %s value: %v", row, cfg.LatField, err)}
		}
		lon, err := parseCell(record, lonCol)
		if err != nil {
			return nil, &FileFormatError{Path: cfg.SourceFile, Reason: fmt.Sprintf("row %d: bad %s value: %v", row, cfg.LonField, err)}
		}
		value, err := parseCell(record, valueCol)
		if err != nil {
			return nil, &FileFormatError{Path: cfg.SourceFile, Reason: fmt.Sprintf("row %d: bad %s value: %v", row, cfg.ValueField, err)}
		}

		points = append(points, entity.Measurement{ID: row, Lat: lat, Lon: lon, Value: value})
	}

	if len(points) == 0 {
		return nil, &FileFormatError{Path: cfg.SourceFile, Reason: "no measurement rows"}
	}

	return &entity.OrbitDataset{
		Orbit:     direction,
		Points:    points,
		Azimuth:   cfg.OrbitAzimuth,
		Incidence: cfg.IncidenceAngle,
		Unit:      cfg.Unit,
		CRS:       cfg.SourceCRS,
	}, nil
}

func parseCell(record []string, col int) (float64, error) {
	if col >= len(record) {
		return 0, fmt.Errorf("row has only %d columns", len(record))
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(record[col]), 64)
	if err != nil {
		return 0, err
	}
	return v, nil
}
