// Package report renders the outcome of a damage assessment as plain text,
// JSON, GeoJSON, and STAC provenance items.
package report

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/paulmach/orb"
	orbjson "github.com/paulmach/orb/geojson"

	"github.com/shnmrt/SafeBridge/internal/assess"
)

// EdgeCoverage records whether each orbit has measurement points near both
// ends of the bridge axis. Missing edge coverage means tilt and deflection
// estimates extrapolate beyond the observed deck.
type EdgeCoverage struct {
	AscendingStart  bool `json:"ascending_start"`
	AscendingEnd    bool `json:"ascending_end"`
	DescendingStart bool `json:"descending_start"`
	DescendingEnd   bool `json:"descending_end"`
}

// Complete reports whether both orbits cover both axis ends.
func (e EdgeCoverage) Complete() bool {
	return e.AscendingStart && e.AscendingEnd && e.DescendingStart && e.DescendingEnd
}

// Retention counts measurement points kept and discarded by the corridor
// filter, per orbit.
type Retention struct {
	AscendingRetained  int `json:"ascending_retained"`
	AscendingDropped   int `json:"ascending_dropped"`
	DescendingRetained int `json:"descending_retained"`
	DescendingDropped  int `json:"descending_dropped"`
}

// SourceInfo describes one input dataset for provenance.
type SourceInfo struct {
	Role      string  `json:"role"`
	Path      string  `json:"path"`
	CRS       string  `json:"crs"`
	Unit      string  `json:"unit,omitempty"`
	Azimuth   float64 `json:"azimuth,omitempty"`
	Incidence float64 `json:"incidence,omitempty"`
}

// UnitRecord is the reported state of one assessment unit.
type UnitRecord struct {
	Unit       int             `json:"unit"`
	X          float64         `json:"x"`
	Y          float64         `json:"y"`
	NDist      float64         `json:"ndist"`
	Sector     assess.Sector   `json:"sector"`
	Vertical   float64         `json:"vertical"`
	Horizontal float64         `json:"horizontal"`
	StdDev     float64         `json:"stddev"`
	Residual   float64         `json:"residual"`
	Pairs      int             `json:"pairs"`
	AscPoints  int             `json:"ascending_points"`
	DescPoints int             `json:"descending_points"`
	AscIDs     []int           `json:"ascending_ids,omitempty"`
	DescIDs    []int           `json:"descending_ids,omitempty"`
	Flags      []string        `json:"flags,omitempty"`
	Severity   assess.Severity `json:"severity"`
}

// SectorRecord summarizes one third of the deck along the axis.
type SectorRecord struct {
	Sector       assess.Sector `json:"sector"`
	Units        int           `json:"units"`
	AscPoints    int           `json:"ascending_points"`
	DescPoints   int           `json:"descending_points"`
	MeanVertical float64       `json:"mean_vertical"`
}

// SkippedRecord names a unit that could not be assessed and why.
type SkippedRecord struct {
	Unit   int    `json:"unit"`
	Reason string `json:"reason"`
}

// ProfileRecord summarizes the deck-wide quadratic fit.
type ProfileRecord struct {
	TiltVertical         float64 `json:"tilt_vertical"`
	TiltHorizontal       float64 `json:"tilt_horizontal"`
	DeflectionVertical   float64 `json:"deflection_vertical"`
	DeflectionHorizontal float64 `json:"deflection_horizontal"`
}

// Report is the final product of an assessment run. All coordinates are in
// the computational CRS; displacement values are in Unit.
type Report struct {
	GeneratedAt   time.Time       `json:"generated_at"`
	Bridge        string          `json:"bridge"`
	CRS           string          `json:"crs"`
	Unit          string          `json:"unit"`
	Buffer        float64         `json:"buffer_distance"`
	Orientation   string          `json:"orientation"`
	AxisLength    float64         `json:"axis_length"`
	AxisBearing   float64         `json:"axis_bearing"`
	SpanCount     int             `json:"span_count"`
	Edges         EdgeCoverage    `json:"edge_coverage"`
	Retention     Retention       `json:"retention"`
	Units         []UnitRecord    `json:"units"`
	Sectors       []SectorRecord  `json:"sectors,omitempty"`
	Skipped       []SkippedRecord `json:"skipped,omitempty"`
	Profile       *ProfileRecord  `json:"profile,omitempty"`
	MaxVertical   float64         `json:"max_vertical"`
	WorstSeverity assess.Severity `json:"worst_severity"`
	Sources       []SourceInfo    `json:"sources"`

	corridor orb.Ring
}

// BuildInput carries everything a report needs from the pipeline.
type BuildInput struct {
	Bridge      string
	CRS         string
	Unit        string
	Buffer      float64
	Orientation string
	AxisLength  float64
	AxisBearing float64
	SpanCount   int
	Edges       EdgeCoverage
	Retention   Retention
	Sources     []SourceInfo
	Result      *assess.Result
	Corridor    orb.Ring
}

// Build assembles a report from an assessment result.
func Build(in BuildInput) *Report {
	r := &Report{
		GeneratedAt: time.Now().UTC(),
		Bridge:      in.Bridge,
		CRS:         in.CRS,
		Unit:        in.Unit,
		Buffer:      in.Buffer,
		Orientation: in.Orientation,
		AxisLength:  in.AxisLength,
		AxisBearing: in.AxisBearing,
		SpanCount:   in.SpanCount,
		Edges:       in.Edges,
		Retention:   in.Retention,
		Sources:     in.Sources,
		corridor:    in.Corridor,
	}

	for _, u := range in.Result.Units {
		r.Units = append(r.Units, UnitRecord{
			Unit:       u.Unit,
			X:          u.Position[0],
			Y:          u.Position[1],
			NDist:      u.NDist,
			Sector:     u.Sector,
			Vertical:   u.Vertical,
			Horizontal: u.Horizontal,
			StdDev:     u.StdDev,
			Residual:   u.Residual,
			Pairs:      u.Pairs,
			AscPoints:  u.AscCount,
			DescPoints: u.DescCount,
			AscIDs:     u.AscendingIDs,
			DescIDs:    u.DescendingIDs,
			Flags:      u.Flags,
			Severity:   u.Severity,
		})
	}
	for _, sector := range []assess.Sector{assess.SectorSouth, assess.SectorCenter, assess.SectorNorth} {
		stats, ok := in.Result.Sectors[sector]
		if !ok {
			continue
		}
		r.Sectors = append(r.Sectors, SectorRecord{
			Sector:       sector,
			Units:        stats.Units,
			AscPoints:    stats.AscendingPoints,
			DescPoints:   stats.DescendingPoints,
			MeanVertical: stats.MeanVertical,
		})
	}
	for _, s := range in.Result.Skipped {
		r.Skipped = append(r.Skipped, SkippedRecord{Unit: s.Unit, Reason: s.Err.Error()})
	}
	if p := in.Result.Profile; p != nil {
		r.Profile = &ProfileRecord{
			TiltVertical:         p.TiltVertical,
			TiltHorizontal:       p.TiltHorizontal,
			DeflectionVertical:   p.DeflectionVertical,
			DeflectionHorizontal: p.DeflectionHorizontal,
		}
	}
	r.MaxVertical = in.Result.MaxVertical()
	r.WorstSeverity = in.Result.WorstSeverity()
	return r
}

// Text renders the report as an aligned plain-text summary.
func (r *Report) Text() string {
	var b strings.Builder
	w := tabwriter.NewWriter(&b, 0, 4, 2, ' ', 0)

	fmt.Fprintf(w, "bridge\t%s\n", r.Bridge)
	fmt.Fprintf(w, "generated\t%s\n", r.GeneratedAt.Format(time.RFC3339))
	fmt.Fprintf(w, "crs\t%s\n", r.CRS)
	fmt.Fprintf(w, "orientation\t%s\n", r.Orientation)
	fmt.Fprintf(w, "axis length\t%.1f\n", r.AxisLength)
	fmt.Fprintf(w, "axis bearing\t%.1f\n", r.AxisBearing)
	fmt.Fprintf(w, "spans\t%d\n", r.SpanCount)
	fmt.Fprintf(w, "corridor buffer\t%.1f\n", r.Buffer)
	fmt.Fprintf(w, "points retained\tasc %d (dropped %d), desc %d (dropped %d)\n",
		r.Retention.AscendingRetained, r.Retention.AscendingDropped,
		r.Retention.DescendingRetained, r.Retention.DescendingDropped)
	fmt.Fprintf(w, "edge coverage\t%v\n", r.Edges.Complete())
	fmt.Fprintf(w, "max vertical\t%.2f %s\n", r.MaxVertical, r.Unit)
	fmt.Fprintf(w, "worst severity\t%s\n", r.WorstSeverity)
	if r.Profile != nil {
		fmt.Fprintf(w, "tilt (v/h)\t%.3f / %.3f\n", r.Profile.TiltVertical, r.Profile.TiltHorizontal)
		fmt.Fprintf(w, "deflection (v/h)\t%.3f / %.3f\n", r.Profile.DeflectionVertical, r.Profile.DeflectionHorizontal)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "unit\tndist\tsector\tvertical\thorizontal\tstddev\tpairs\tseverity\tflags")
	for _, u := range r.Units {
		fmt.Fprintf(w, "%d\t%.3f\t%s\t%.2f\t%.2f\t%.2f\t%d\t%s\t%s\n",
			u.Unit, u.NDist, u.Sector, u.Vertical, u.Horizontal, u.StdDev, u.Pairs,
			u.Severity, strings.Join(u.Flags, ","))
	}
	for _, s := range r.Skipped {
		fmt.Fprintf(w, "%d\t-\t-\t-\t-\t-\t-\tskipped\t%s\n", s.Unit, s.Reason)
	}

	if len(r.Sectors) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "sector\tunits\tasc points\tdesc points\tmean vertical")
		for _, s := range r.Sectors {
			fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%.2f\n",
				s.Sector, s.Units, s.AscPoints, s.DescPoints, s.MeanVertical)
		}
	}

	w.Flush()
	return b.String()
}

// JSON renders the report as indented JSON.
func (r *Report) JSON() ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}

// GeoJSON renders the assessed units and the corridor outline as a
// FeatureCollection in the computational CRS.
func (r *Report) GeoJSON() ([]byte, error) {
	fc := orbjson.NewFeatureCollection()

	if len(r.corridor) > 0 {
		f := orbjson.NewFeature(orb.Polygon{r.corridor})
		f.Properties = orbjson.Properties{
			"kind":   "corridor",
			"buffer": r.Buffer,
		}
		fc.Append(f)
	}

	for _, u := range r.Units {
		f := orbjson.NewFeature(orb.Point{u.X, u.Y})
		f.Properties = orbjson.Properties{
			"kind":       "unit",
			"unit":       u.Unit,
			"ndist":      u.NDist,
			"vertical":   u.Vertical,
			"horizontal": u.Horizontal,
			"stddev":     u.StdDev,
			"pairs":      u.Pairs,
			"severity":   string(u.Severity),
		}
		if len(u.Flags) > 0 {
			f.Properties["flags"] = strings.Join(u.Flags, ",")
		}
		fc.Append(f)
	}

	return fc.MarshalJSON()
}
