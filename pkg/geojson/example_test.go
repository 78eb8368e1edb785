package geojson_test

import (
	"encoding/json"
	"fmt"
	"log"

	"github.com/shnmrt/SafeBridge/pkg/geojson"
)

func ExampleGeometry_Point() {
	coords := []float64{13.3777, 52.5163}
	coordsJSON, _ := json.Marshal(coords)

	g := &geojson.Geometry{
		Type:        "Point",
		Coordinates: coordsJSON,
	}

	point, err := g.Point()
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("Longitude: %f, Latitude: %f\n", point[0], point[1])
	// Output: Longitude: 13.377700, Latitude: 52.516300
}

func ExampleComputeBBox() {
	coords := [][][]float64{
		{{13.37, 52.51}, {13.38, 52.51}, {13.38, 52.52}, {13.37, 52.52}, {13.37, 52.51}},
	}
	coordsJSON, _ := json.Marshal(coords)

	g := &geojson.Geometry{
		Type:        "Polygon",
		Coordinates: coordsJSON,
	}

	bbox, err := geojson.ComputeBBox(g)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("BBox: [%g, %g, %g, %g]\n", bbox[0], bbox[1], bbox[2], bbox[3])
	// Output: BBox: [13.37, 52.51, 13.38, 52.52]
}

func ExampleToWKT() {
	coords := [][]float64{{0, 0}, {120, 0}, {120, 80}}
	coordsJSON, _ := json.Marshal(coords)

	g := &geojson.Geometry{
		Type:        "LineString",
		Coordinates: coordsJSON,
	}

	wkt, err := geojson.ToWKT(g)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println(wkt)
	// Output: LINESTRING(0 0,120 0,120 80)
}
