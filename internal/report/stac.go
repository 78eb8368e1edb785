package report

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/paulmach/orb"
	"github.com/planetlabs/go-stac"

	"github.com/shnmrt/SafeBridge/pkg/geojson"
)

const stacVersion = "1.0.0"

// ProvenanceItems describes the assessment's input datasets as STAC items so
// the run can be cataloged next to the imagery it was derived from.
func (r *Report) ProvenanceItems() ([]*stac.Item, error) {
	var items []*stac.Item
	for _, src := range r.Sources {
		item := &stac.Item{
			Version:    stacVersion,
			Id:         fmt.Sprintf("%s-%s", r.Bridge, src.Role),
			Collection: "safebridge-inputs",
			Properties: make(map[string]any),
			Assets:     make(map[string]*stac.Asset),
			Links:      make([]*stac.Link, 0),
		}

		item.Properties["datetime"] = r.GeneratedAt
		item.Properties["proj:code"] = src.CRS
		item.Properties["safebridge:role"] = src.Role

		if src.Role == "ascending" || src.Role == "descending" {
			item.Properties["sat:orbit_state"] = src.Role
			item.Properties["view:azimuth"] = src.Azimuth
			item.Properties["view:incidence_angle"] = src.Incidence
			item.Properties["sar:product_type"] = "displacement"
			item.Properties["safebridge:unit"] = src.Unit
		}

		if len(r.corridor) > 0 {
			geom, err := geojson.FromOrb(orb.Polygon{r.corridor})
			if err != nil {
				return nil, fmt.Errorf("failed to convert corridor geometry: %w", err)
			}
			item.Geometry = geom
			if bbox, err := geojson.ComputeBBox(geom); err == nil {
				item.Bbox = bbox
			}
		}

		item.Assets["data"] = &stac.Asset{
			Href:  src.Path,
			Title: fmt.Sprintf("%s source", src.Role),
			Type:  mediaTypeForPath(src.Path),
			Roles: []string{"data"},
		}

		items = append(items, item)
	}
	return items, nil
}

func mediaTypeForPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return "text/csv"
	case ".geojson", ".json":
		return "application/geo+json"
	case ".shp":
		return "application/octet-stream"
	default:
		return "application/octet-stream"
	}
}
