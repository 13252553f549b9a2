package geodata

import "time"

// Point is a WGS84 coordinate pair.
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Ring is a closed sequence of points. GeoJSON rings repeat the first point
// at the end; Contains works either way.
type Ring []Point

// Polygon is one outer ring plus zero or more hole rings, with a precomputed
// bounding box for cheap rejection during the spatial join.
type Polygon struct {
	Rings []Ring
	BBox  [4]float64 // minLng, minLat, maxLng, maxLat
}

// NeighborhoodPolygon is one named neighborhood boundary. A GeoJSON
// MultiPolygon becomes multiple entries in Polygons.
type NeighborhoodPolygon struct {
	Name     string
	Polygons []Polygon
}

// ViolationRecord is one municipal code-violation citation. Neighborhood is
// empty until the spatial join runs, and stays empty when no loaded polygon
// contains the point.
type ViolationRecord struct {
	Docket        string    `json:"docket_number"`
	IssuedDate    time.Time `json:"issued_date"`
	Address       string    `json:"property_address"`
	Entity        string    `json:"entity_or_person"`
	ViolationType string    `json:"violation_type"`
	Disposition   string    `json:"disposition_description"`
	AmountDue     float64   `json:"current_amount_due"`
	Latitude      float64   `json:"latitude"`
	Longitude     float64   `json:"longitude"`
	Neighborhood  string    `json:"neighborhood"`
}

// ComputeBBox fills in the polygon's bounding box from its rings.
func ComputeBBox(p *Polygon) {
	b := [4]float64{180, 90, -180, -90}
	for _, r := range p.Rings {
		for _, pt := range r {
			if pt.Lng < b[0] {
				b[0] = pt.Lng
			}
			if pt.Lat < b[1] {
				b[1] = pt.Lat
			}
			if pt.Lng > b[2] {
				b[2] = pt.Lng
			}
			if pt.Lat > b[3] {
				b[3] = pt.Lat
			}
		}
	}
	p.BBox = b
}
