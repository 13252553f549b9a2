// Package spatial assigns each violation point to the neighborhood polygon
// that contains it. The join runs once at load time; its output is treated as
// immutable for the rest of the process.
package spatial

import "github.com/ChiCivicLab/violations-dashboard/internal/geodata"

// Join annotates every record with the name of the first polygon (in the
// caller-supplied order) that contains its point, or leaves Neighborhood
// empty when none does. Polygons arrive name-sorted from the loader, which
// makes the overlap tie-break deterministic. Naive point-by-polygon scan:
// thousands of points against ~100 neighborhoods is well within budget.
func Join(violations []geodata.ViolationRecord, polygons []geodata.NeighborhoodPolygon) []geodata.ViolationRecord {
	joined := make([]geodata.ViolationRecord, len(violations))
	copy(joined, violations)

	for i := range joined {
		joined[i].Neighborhood = locate(joined[i].Latitude, joined[i].Longitude, polygons)
	}
	return joined
}

func locate(lat, lng float64, polygons []geodata.NeighborhoodPolygon) string {
	for _, np := range polygons {
		for _, poly := range np.Polygons {
			if Contains(poly, lat, lng) {
				return np.Name
			}
		}
	}
	return ""
}

// Contains reports whether the point is inside the polygon: inside the outer
// ring and outside every hole ring.
func Contains(p geodata.Polygon, lat, lng float64) bool {
	if lng < p.BBox[0] || lng > p.BBox[2] || lat < p.BBox[1] || lat > p.BBox[3] {
		return false
	}
	if len(p.Rings) == 0 || !inRing(p.Rings[0], lat, lng) {
		return false
	}
	for _, hole := range p.Rings[1:] {
		if inRing(hole, lat, lng) {
			return false
		}
	}
	return true
}

// inRing is the standard ray-casting test. Points exactly on an edge may land
// on either side; neighborhood boundaries follow street centerlines, so the
// ambiguity is harmless here.
func inRing(ring geodata.Ring, lat, lng float64) bool {
	inside := false
	j := len(ring) - 1
	for i := 0; i < len(ring); i++ {
		yi, xi := ring[i].Lat, ring[i].Lng
		yj, xj := ring[j].Lat, ring[j].Lng
		if ((yi > lat) != (yj > lat)) && (lng < (xj-xi)*(lat-yi)/(yj-yi)+xi) {
			inside = !inside
		}
		j = i
	}
	return inside
}
