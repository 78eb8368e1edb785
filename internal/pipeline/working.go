package pipeline

import (
	"fmt"
	"sort"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"

	"github.com/shnmrt/SafeBridge/internal/assess"
	"github.com/shnmrt/SafeBridge/internal/crs"
	"github.com/shnmrt/SafeBridge/internal/entity"
	"github.com/shnmrt/SafeBridge/internal/geom"
	"github.com/shnmrt/SafeBridge/internal/insar"
	"github.com/shnmrt/SafeBridge/internal/report"
)

// Working is the derived dataset Preprocess produces: every geometry
// reprojected into the computational CRS, the axis oriented and measured,
// supports turned into assessment units, and each measurement filtered to
// the corridor and assigned to its nearest unit. It is rebuilt wholesale on
// every Preprocess call; the loaded entities are never mutated.
type Working struct {
	CRS    crs.CRS
	Buffer float64

	Deck orb.MultiPolygon
	Axis orb.LineString

	AxisLength  float64
	AxisBearing float64
	Orientation string

	Units     []assess.UnitGeometry
	SpanCount int

	Corridor geom.Corridor

	Ascending  []assess.Point
	Descending []assess.Point
	Retention  report.Retention
	Edges      report.EdgeCoverage

	AscendingLook  insar.Look
	DescendingLook insar.Look
}

func buildWorking(deck *entity.Deck, axis *entity.Axis, supports *entity.Supports,
	asc, desc *entity.OrbitDataset, target crs.CRS, buffer float64) (*Working, error) {

	if buffer <= 0 {
		return nil, fmt.Errorf("buffer distance must be positive, got %g", buffer)
	}
	if asc.Unit != desc.Unit {
		return nil, fmt.Errorf("orbit datasets use different units: ascending %q, descending %q", asc.Unit, desc.Unit)
	}

	w := &Working{
		CRS:            target,
		Buffer:         buffer,
		AscendingLook:  insar.Look{Azimuth: asc.Azimuth, Incidence: asc.Incidence},
		DescendingLook: insar.Look{Azimuth: desc.Azimuth, Incidence: desc.Incidence},
	}

	deckGeom, err := reprojectTo(deck.Geometry, deck.CRS, target)
	if err != nil {
		return nil, fmt.Errorf("deck: %w", err)
	}
	w.Deck = deckGeom.(orb.MultiPolygon)

	axisGeom, err := reprojectTo(axis.Line, axis.CRS, target)
	if err != nil {
		return nil, fmt.Errorf("axis: %w", err)
	}
	w.Axis = geom.OrientAxis(axisGeom.(orb.LineString))
	w.AxisLength = planar.Length(w.Axis)
	if w.AxisLength == 0 {
		return nil, fmt.Errorf("axis has zero length after reprojection")
	}
	w.AxisBearing = geom.Bearing(w.Axis[0], w.Axis[len(w.Axis)-1])
	w.Orientation = orientationFor(w.AxisBearing)

	w.Corridor = geom.NewCorridor(w.Deck, w.Axis, buffer)

	if err := w.buildUnits(supports, target); err != nil {
		return nil, err
	}

	var ascRetained, ascDropped, descRetained, descDropped int
	w.Ascending, ascRetained, ascDropped, err = w.projectMeasurements(asc, target)
	if err != nil {
		return nil, fmt.Errorf("ascending: %w", err)
	}
	w.Descending, descRetained, descDropped, err = w.projectMeasurements(desc, target)
	if err != nil {
		return nil, fmt.Errorf("descending: %w", err)
	}
	w.Retention = report.Retention{
		AscendingRetained:  ascRetained,
		AscendingDropped:   ascDropped,
		DescendingRetained: descRetained,
		DescendingDropped:  descDropped,
	}

	half := buffer / 2
	start, end := w.Axis[0], w.Axis[len(w.Axis)-1]
	w.Edges = report.EdgeCoverage{
		AscendingStart:  coversEnd(w.Ascending, start, half),
		AscendingEnd:    coversEnd(w.Ascending, end, half),
		DescendingStart: coversEnd(w.Descending, start, half),
		DescendingEnd:   coversEnd(w.Descending, end, half),
	}

	return w, nil
}

// buildUnits projects the supports onto the oriented axis and derives the
// assessment units. Supports farther than the buffer from the deck belong
// to a different structure and are discarded; supports inside the footprint
// define the span count.
func (w *Working) buildUnits(supports *entity.Supports, target crs.CRS) error {
	tf, err := transformerFor(supports.CRS, target)
	if err != nil {
		return fmt.Errorf("supports: %w", err)
	}

	inDeck := 0
	for _, raw := range supports.Points {
		x, y := tf(raw[0], raw[1])
		p := orb.Point{x, y}

		dist := geom.DistanceToMultiPolygon(w.Deck, p)
		if dist > w.Buffer {
			continue
		}
		if dist == 0 {
			inDeck++
		}

		ndist, proj := geom.ProjectOntoLine(w.Axis, p)
		w.Units = append(w.Units, assess.UnitGeometry{Position: proj, NDist: ndist})
	}

	if len(w.Units) == 0 {
		return fmt.Errorf("no supports within %g of the deck", w.Buffer)
	}

	sort.Slice(w.Units, func(i, j int) bool { return w.Units[i].NDist < w.Units[j].NDist })
	for i := range w.Units {
		w.Units[i].Index = i
	}
	w.SpanCount = inDeck + 1
	return nil
}

// projectMeasurements reprojects an orbit dataset, keeps the points inside
// the corridor, and assigns each to its nearest unit.
func (w *Working) projectMeasurements(ds *entity.OrbitDataset, target crs.CRS) ([]assess.Point, int, int, error) {
	tf, err := transformerFor(ds.CRS, target)
	if err != nil {
		return nil, 0, 0, err
	}

	var points []assess.Point
	dropped := 0
	for _, m := range ds.Points {
		x, y := tf(m.Lon, m.Lat)
		p := orb.Point{x, y}

		if !w.Corridor.Contains(p) {
			dropped++
			continue
		}

		ndist, _ := geom.ProjectOntoLine(w.Axis, p)
		points = append(points, assess.Point{
			ID:       m.ID,
			Position: p,
			Value:    m.Value,
			NDist:    ndist,
			Unit:     w.nearestUnit(p),
			Sector:   assess.SectorFor(ndist),
		})
	}
	return points, len(points), dropped, nil
}

func (w *Working) nearestUnit(p orb.Point) int {
	best := 0
	bestDist := planar.Distance(p, w.Units[0].Position)
	for i := 1; i < len(w.Units); i++ {
		if d := planar.Distance(p, w.Units[i].Position); d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}

func coversEnd(points []assess.Point, end orb.Point, radius float64) bool {
	for _, p := range points {
		if planar.Distance(p.Position, end) <= radius {
			return true
		}
	}
	return false
}

// orientationFor classifies the deck as north-south or east-west from the
// axis bearing. Bearings within 45 degrees of either meridian direction
// count as north-south.
func orientationFor(bearing float64) string {
	if bearing <= 45 || bearing >= 315 || (bearing >= 135 && bearing <= 225) {
		return "NS"
	}
	return "EW"
}

func transformerFor(source string, target crs.CRS) (crs.TransformFunc, error) {
	from, err := crs.Parse(source)
	if err != nil {
		return nil, err
	}
	return crs.Transformer(from, target)
}

func reprojectTo(g orb.Geometry, source string, target crs.CRS) (orb.Geometry, error) {
	tf, err := transformerFor(source, target)
	if err != nil {
		return nil, err
	}
	return crs.ReprojectGeometry(g, tf), nil
}
