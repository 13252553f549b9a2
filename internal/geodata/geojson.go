package geodata

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
)

type featureCollection struct {
	Type     string    `json:"type"`
	Features []feature `json:"features"`
}

type feature struct {
	Type       string           `json:"type"`
	Properties map[string]any   `json:"properties"`
	Geometry   *featureGeometry `json:"geometry"`
}

type featureGeometry struct {
	Type        string          `json:"type"`
	Coordinates json.RawMessage `json:"coordinates"`
}

// ParseNeighborhoods reads a GeoJSON FeatureCollection of Polygon or
// MultiPolygon features from path. nameProperty selects the feature property
// holding the neighborhood name (pri_neigh for the Chicago boundaries file).
// The result is sorted by name; that order is the canonical tie-break when a
// point falls inside more than one polygon.
func ParseNeighborhoods(path, nameProperty string) ([]NeighborhoodPolygon, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read neighborhoods file: %v", ErrLoad, err)
	}

	var fc featureCollection
	if err := json.Unmarshal(raw, &fc); err != nil {
		return nil, fmt.Errorf("%w: parse neighborhoods file %s: %v", ErrLoad, path, err)
	}
	if !strings.EqualFold(fc.Type, "FeatureCollection") {
		return nil, fmt.Errorf("%w: %s: expected FeatureCollection, got %q", ErrLoad, path, fc.Type)
	}

	var out []NeighborhoodPolygon
	for i, f := range fc.Features {
		name, _ := f.Properties[nameProperty].(string)
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, fmt.Errorf("%w: %s: feature %d has no %q property", ErrLoad, path, i, nameProperty)
		}
		if f.Geometry == nil {
			return nil, fmt.Errorf("%w: %s: feature %q has no geometry", ErrLoad, path, name)
		}

		polys, err := parsePolygons(f.Geometry)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: feature %q: %v", ErrLoad, path, name, err)
		}
		out = append(out, NeighborhoodPolygon{Name: name, Polygons: polys})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func parsePolygons(g *featureGeometry) ([]Polygon, error) {
	switch strings.ToLower(g.Type) {
	case "polygon":
		var coords [][][]float64
		if err := json.Unmarshal(g.Coordinates, &coords); err != nil {
			return nil, fmt.Errorf("polygon coordinates: %v", err)
		}
		p, err := buildPolygon(coords)
		if err != nil {
			return nil, err
		}
		return []Polygon{p}, nil
	case "multipolygon":
		var coords [][][][]float64
		if err := json.Unmarshal(g.Coordinates, &coords); err != nil {
			return nil, fmt.Errorf("multipolygon coordinates: %v", err)
		}
		polys := make([]Polygon, 0, len(coords))
		for _, part := range coords {
			p, err := buildPolygon(part)
			if err != nil {
				return nil, err
			}
			polys = append(polys, p)
		}
		return polys, nil
	default:
		return nil, fmt.Errorf("unsupported geometry type %q", g.Type)
	}
}

func buildPolygon(rings [][][]float64) (Polygon, error) {
	var p Polygon
	for _, ring := range rings {
		r := make(Ring, 0, len(ring))
		for _, pos := range ring {
			if len(pos) < 2 {
				return Polygon{}, fmt.Errorf("ring position has %d coordinates", len(pos))
			}
			// GeoJSON positions are [lng, lat].
			r = append(r, Point{Lat: pos[1], Lng: pos[0]})
		}
		if len(r) < 3 {
			return Polygon{}, fmt.Errorf("ring has only %d points", len(r))
		}
		p.Rings = append(p.Rings, r)
	}
	if len(p.Rings) == 0 {
		return Polygon{}, fmt.Errorf("polygon has no rings")
	}
	ComputeBBox(&p)
	return p, nil
}
