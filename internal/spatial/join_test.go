package spatial_test

import (
	"testing"

	"github.com/ChiCivicLab/violations-dashboard/internal/geodata"
	"github.com/ChiCivicLab/violations-dashboard/internal/spatial"
)

func polygon(rings ...geodata.Ring) geodata.Polygon {
	p := geodata.Polygon{Rings: rings}
	geodata.ComputeBBox(&p)
	return p
}

func squareRing(minLat, minLng, maxLat, maxLng float64) geodata.Ring {
	return geodata.Ring{
		{Lat: minLat, Lng: minLng},
		{Lat: minLat, Lng: maxLng},
		{Lat: maxLat, Lng: maxLng},
		{Lat: maxLat, Lng: minLng},
		{Lat: minLat, Lng: minLng},
	}
}

func point(docket string, lat, lng float64) geodata.ViolationRecord {
	return geodata.ViolationRecord{Docket: docket, Latitude: lat, Longitude: lng}
}

// TestContains_Square covers inside, outside and bbox-rejected points.
func TestContains_Square(t *testing.T) {
	p := polygon(squareRing(41.0, -88.0, 42.0, -87.0))

	if !spatial.Contains(p, 41.5, -87.5) {
		t.Error("expected center point inside")
	}
	if spatial.Contains(p, 43.0, -87.5) {
		t.Error("expected point north of square outside")
	}
	if spatial.Contains(p, 41.5, -86.0) {
		t.Error("expected point east of bbox outside")
	}
}

// TestContains_Hole verifies a point inside a hole ring does not count.
func TestContains_Hole(t *testing.T) {
	p := polygon(
		squareRing(41.0, -88.0, 42.0, -87.0),
		squareRing(41.4, -87.6, 41.6, -87.4), // hole in the middle
	)

	if spatial.Contains(p, 41.5, -87.5) {
		t.Error("expected point inside the hole to be outside the polygon")
	}
	if !spatial.Contains(p, 41.1, -87.9) {
		t.Error("expected point between outer ring and hole to be inside")
	}
}

// TestJoin_Assignment verifies contained points get their polygon's name and
// stray points stay unassigned.
func TestJoin_Assignment(t *testing.T) {
	polygons := []geodata.NeighborhoodPolygon{
		{Name: "Loop", Polygons: []geodata.Polygon{polygon(squareRing(41.0, -88.0, 42.0, -87.0))}},
		{Name: "Uptown", Polygons: []geodata.Polygon{polygon(squareRing(43.0, -88.0, 44.0, -87.0))}},
	}
	violations := []geodata.ViolationRecord{
		point("in-loop", 41.5, -87.5),
		point("in-uptown", 43.5, -87.5),
		point("nowhere", 50.0, -87.5),
	}

	joined := spatial.Join(violations, polygons)

	want := map[string]string{"in-loop": "Loop", "in-uptown": "Uptown", "nowhere": ""}
	for _, r := range joined {
		if r.Neighborhood != want[r.Docket] {
			t.Errorf("%s: expected neighborhood %q, got %q", r.Docket, want[r.Docket], r.Neighborhood)
		}
	}

	// Input slice must stay untouched.
	for _, r := range violations {
		if r.Neighborhood != "" {
			t.Errorf("input record %s was mutated", r.Docket)
		}
	}
}

// TestJoin_Deterministic verifies repeated joins produce identical
// assignments, including for a point inside two overlapping polygons, where
// the first polygon in the given (name-sorted) order must win.
func TestJoin_Deterministic(t *testing.T) {
	overlapping := []geodata.NeighborhoodPolygon{
		{Name: "Alpha", Polygons: []geodata.Polygon{polygon(squareRing(41.0, -88.0, 42.0, -87.0))}},
		{Name: "Beta", Polygons: []geodata.Polygon{polygon(squareRing(41.0, -88.0, 42.0, -87.0))}},
	}
	violations := []geodata.ViolationRecord{point("contested", 41.5, -87.5)}

	first := spatial.Join(violations, overlapping)
	if first[0].Neighborhood != "Alpha" {
		t.Fatalf("expected first polygon in order to win, got %q", first[0].Neighborhood)
	}

	for i := 0; i < 10; i++ {
		again := spatial.Join(violations, overlapping)
		if again[0].Neighborhood != first[0].Neighborhood {
			t.Fatalf("run %d: assignment changed from %q to %q", i, first[0].Neighborhood, again[0].Neighborhood)
		}
	}
}

// TestJoin_MultiPolygon verifies a point in any part of a multipolygon
// neighborhood gets assigned.
func TestJoin_MultiPolygon(t *testing.T) {
	polygons := []geodata.NeighborhoodPolygon{
		{Name: "Islands", Polygons: []geodata.Polygon{
			polygon(squareRing(41.0, -88.0, 41.4, -87.6)),
			polygon(squareRing(41.6, -87.4, 42.0, -87.0)),
		}},
	}
	violations := []geodata.ViolationRecord{
		point("part-one", 41.2, -87.8),
		point("part-two", 41.8, -87.2),
		point("between", 41.5, -87.5),
	}

	joined := spatial.Join(violations, polygons)

	want := map[string]string{"part-one": "Islands", "part-two": "Islands", "between": ""}
	for _, r := range joined {
		if r.Neighborhood != want[r.Docket] {
			t.Errorf("%s: expected %q, got %q", r.Docket, want[r.Docket], r.Neighborhood)
		}
	}
}
