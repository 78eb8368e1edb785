package report

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/paulmach/orb"
	orbjson "github.com/paulmach/orb/geojson"

	"github.com/shnmrt/SafeBridge/internal/assess"
)

func fixtureInput() BuildInput {
	return BuildInput{
		Bridge:      "elbe-crossing",
		CRS:         "EPSG:32633",
		Unit:        "mm",
		Buffer:      12,
		Orientation: "EW",
		AxisLength:  420.5,
		AxisBearing: 88.2,
		SpanCount:   4,
		Edges:       EdgeCoverage{AscendingStart: true, AscendingEnd: true, DescendingStart: true, DescendingEnd: true},
		Retention:   Retention{AscendingRetained: 40, AscendingDropped: 5, DescendingRetained: 38, DescendingDropped: 7},
		Sources: []SourceInfo{
			{Role: "deck", Path: "deck.geojson", CRS: "EPSG:4326"},
			{Role: "ascending", Path: "asc.csv", CRS: "EPSG:4326", Unit: "mm", Azimuth: 350, Incidence: 34},
			{Role: "descending", Path: "desc.csv", CRS: "EPSG:4326", Unit: "mm", Azimuth: 190, Incidence: 34},
		},
		Result: &assess.Result{
			Units: []assess.UnitResult{
				{Unit: 0, Position: orb.Point{10, 0}, NDist: 0.2, Sector: assess.SectorSouth,
					Vertical: -3.5, Horizontal: 1.1, Pairs: 4, AscendingIDs: []int{1, 2}, DescendingIDs: []int{101}},
				{Unit: 1, Position: orb.Point{50, 0}, NDist: 0.6, Sector: assess.SectorCenter,
					Vertical: -14.2, Horizontal: 0.4, Pairs: 3,
					Flags: []string{"vertical"}, Severity: assess.SeverityWarning},
			},
			Sectors: map[assess.Sector]assess.SectorStats{
				assess.SectorSouth:  {AscendingPoints: 20, DescendingPoints: 18, Units: 1, MeanVertical: -3.5},
				assess.SectorCenter: {AscendingPoints: 20, DescendingPoints: 20, Units: 1, MeanVertical: -14.2},
			},
			Skipped: []assess.SkippedUnit{
				{Unit: 2, Err: &assess.InsufficientDataError{Unit: 2, Reason: "no descending points assigned"}},
			},
			Profile: &assess.DeckProfile{TiltVertical: 0.3, DeflectionVertical: -2.1},
		},
		Corridor: orb.Ring{{0, -12}, {100, -12}, {100, 12}, {0, 12}, {0, -12}},
	}
}

func TestBuild(t *testing.T) {
	r := Build(fixtureInput())

	if r.GeneratedAt.IsZero() {
		t.Error("expected a generation timestamp")
	}
	if len(r.Units) != 2 {
		t.Fatalf("expected 2 unit records, got %d", len(r.Units))
	}
	if r.Units[1].Severity != assess.SeverityWarning {
		t.Errorf("expected warning severity on unit 1, got %s", r.Units[1].Severity)
	}
	if len(r.Skipped) != 1 || r.Skipped[0].Unit != 2 {
		t.Fatalf("expected skipped unit 2, got %+v", r.Skipped)
	}
	if !strings.Contains(r.Skipped[0].Reason, "no descending points") {
		t.Errorf("skip reason lost: %q", r.Skipped[0].Reason)
	}
	if r.MaxVertical != 14.2 {
		t.Errorf("expected max vertical 14.2, got %g", r.MaxVertical)
	}
	if r.WorstSeverity != assess.SeverityWarning {
		t.Errorf("expected worst severity warning, got %s", r.WorstSeverity)
	}
	if r.Profile == nil || r.Profile.DeflectionVertical != -2.1 {
		t.Errorf("profile not carried over: %+v", r.Profile)
	}
	if len(r.Units[0].AscIDs) != 2 || len(r.Units[0].DescIDs) != 1 {
		t.Errorf("contributing point ids lost: %+v", r.Units[0])
	}
	if len(r.Sectors) != 2 {
		t.Fatalf("expected 2 sector records, got %d", len(r.Sectors))
	}
	if r.Sectors[0].Sector != assess.SectorSouth || r.Sectors[0].MeanVertical != -3.5 {
		t.Errorf("sector order or stats wrong: %+v", r.Sectors)
	}
}

func TestText(t *testing.T) {
	text := Build(fixtureInput()).Text()

	for _, want := range []string{
		"elbe-crossing",
		"EPSG:32633",
		"spans",
		"-14.20",
		"warning",
		"skipped",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("text report missing %q:\n%s", want, text)
		}
	}
}

func TestJSONRoundTrip(t *testing.T) {
	data, err := Build(fixtureInput()).JSON()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var decoded Report
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("report JSON does not parse: %v", err)
	}
	if decoded.Bridge != "elbe-crossing" || decoded.SpanCount != 4 {
		t.Errorf("decoded report lost fields: %+v", decoded)
	}
	if len(decoded.Units) != 2 || decoded.Units[1].Flags[0] != "vertical" {
		t.Errorf("decoded units wrong: %+v", decoded.Units)
	}
}

func TestGeoJSON(t *testing.T) {
	data, err := Build(fixtureInput()).GeoJSON()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	fc, err := orbjson.UnmarshalFeatureCollection(data)
	if err != nil {
		t.Fatalf("geojson does not parse: %v", err)
	}

	// One corridor polygon plus one point per assessed unit.
	if len(fc.Features) != 3 {
		t.Fatalf("expected 3 features, got %d", len(fc.Features))
	}

	var corridors, units int
	for _, f := range fc.Features {
		switch f.Properties["kind"] {
		case "corridor":
			corridors++
			if _, ok := f.Geometry.(orb.Polygon); !ok {
				t.Errorf("corridor feature should be a polygon, got %T", f.Geometry)
			}
		case "unit":
			units++
			if _, ok := f.Geometry.(orb.Point); !ok {
				t.Errorf("unit feature should be a point, got %T", f.Geometry)
			}
		}
	}
	if corridors != 1 || units != 2 {
		t.Errorf("expected 1 corridor and 2 units, got %d and %d", corridors, units)
	}
}

func TestProvenanceItems(t *testing.T) {
	items, err := Build(fixtureInput()).ProvenanceItems()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(items))
	}

	byID := map[string]bool{}
	for _, item := range items {
		byID[item.Id] = true
		if item.Version != stacVersion {
			t.Errorf("item %s: wrong version %q", item.Id, item.Version)
		}
		if item.Geometry == nil {
			t.Errorf("item %s: missing geometry", item.Id)
		}
		if _, ok := item.Assets["data"]; !ok {
			t.Errorf("item %s: missing data asset", item.Id)
		}
	}
	if !byID["elbe-crossing-ascending"] || !byID["elbe-crossing-descending"] {
		t.Errorf("orbit items missing: %v", byID)
	}

	for _, item := range items {
		if item.Id != "elbe-crossing-ascending" {
			continue
		}
		if item.Properties["sat:orbit_state"] != "ascending" {
			t.Errorf("expected orbit state property, got %v", item.Properties["sat:orbit_state"])
		}
		if item.Assets["data"].Type != "text/csv" {
			t.Errorf("expected text/csv asset type, got %s", item.Assets["data"].Type)
		}
	}
}
