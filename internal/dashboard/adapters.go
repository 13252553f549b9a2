package dashboard

import (
	"fmt"
	"sort"
	"sync"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/ChiCivicLab/violations-dashboard/internal/geodata"
)

// Subscriber is one consumer of filtered snapshots. The controller pushes
// every new FilteredView to all subscribers; each derives and caches its own
// view model independently.
type Subscriber interface {
	Update(view FilteredView, c Criteria)
}

const dateLayout = "2006-01-02"

// ---- map view ----

// Marker is one violation pin on the map.
type Marker struct {
	Docket        string  `json:"docket_number"`
	Address       string  `json:"property_address"`
	IssuedDate    string  `json:"issued_date"`
	ViolationType string  `json:"violation_type"`
	Lat           float64 `json:"lat"`
	Lng           float64 `json:"lng"`
	Label         string  `json:"label"`
}

// Outline is the boundary of one selected neighborhood.
type Outline struct {
	Name  string         `json:"name"`
	Rings []geodata.Ring `json:"rings"`
}

type MapView struct {
	Markers  []Marker  `json:"markers"`
	Outlines []Outline `json:"outlines"`
}

// MapAdapter emits one marker per filtered record and one outline per
// selected neighborhood.
type MapAdapter struct {
	byName map[string]geodata.NeighborhoodPolygon

	mu   sync.RWMutex
	view MapView
}

func NewMapAdapter(polygons []geodata.NeighborhoodPolygon) *MapAdapter {
	byName := make(map[string]geodata.NeighborhoodPolygon, len(polygons))
	for _, p := range polygons {
		byName[p.Name] = p
	}
	return &MapAdapter{byName: byName, view: MapView{Markers: []Marker{}, Outlines: []Outline{}}}
}

func (a *MapAdapter) Update(view FilteredView, c Criteria) {
	markers := make([]Marker, 0, len(view))
	for _, r := range view {
		issued := r.IssuedDate.Format(dateLayout)
		markers = append(markers, Marker{
			Docket:        r.Docket,
			Address:       r.Address,
			IssuedDate:    issued,
			ViolationType: r.ViolationType,
			Lat:           r.Latitude,
			Lng:           r.Longitude,
			Label:         fmt.Sprintf("%s | %s | #%s | %s", r.Address, issued, r.Docket, r.ViolationType),
		})
	}

	selected := append([]string(nil), c.Neighborhoods...)
	sort.Strings(selected)
	outlines := make([]Outline, 0, len(selected))
	for _, name := range selected {
		p, ok := a.byName[name]
		if !ok {
			continue
		}
		var rings []geodata.Ring
		for _, poly := range p.Polygons {
			if len(poly.Rings) > 0 {
				rings = append(rings, poly.Rings[0]) // outer rings only
			}
		}
		outlines = append(outlines, Outline{Name: name, Rings: rings})
	}

	a.mu.Lock()
	a.view = MapView{Markers: markers, Outlines: outlines}
	a.mu.Unlock()
}

func (a *MapAdapter) View() MapView {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.view
}

// ---- monthly time series ----

// MonthlyCount is the violation count for one (month, neighborhood) bucket.
type MonthlyCount struct {
	Month        string `json:"month"` // "2006-01"
	Neighborhood string `json:"neighborhood"`
	Count        int    `json:"count"`
}

// TimeSeriesAdapter buckets filtered records by calendar month and
// neighborhood, ordered chronologically and then by neighborhood name.
type TimeSeriesAdapter struct {
	mu     sync.RWMutex
	series []MonthlyCount
}

func NewTimeSeriesAdapter() *TimeSeriesAdapter {
	return &TimeSeriesAdapter{series: []MonthlyCount{}}
}

func (a *TimeSeriesAdapter) Update(view FilteredView, _ Criteria) {
	type bucket struct {
		month        string
		neighborhood string
	}
	counts := make(map[bucket]int)
	for _, r := range view {
		counts[bucket{r.IssuedDate.Format("2006-01"), r.Neighborhood}]++
	}

	series := make([]MonthlyCount, 0, len(counts))
	for b, n := range counts {
		series = append(series, MonthlyCount{Month: b.month, Neighborhood: b.neighborhood, Count: n})
	}
	sort.Slice(series, func(i, j int) bool {
		if series[i].Month != series[j].Month {
			return series[i].Month < series[j].Month
		}
		return series[i].Neighborhood < series[j].Neighborhood
	})

	a.mu.Lock()
	a.series = series
	a.mu.Unlock()
}

func (a *TimeSeriesAdapter) Series() []MonthlyCount {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.series
}

// ---- top outstanding fines ----

// EntityFine is one entity's summed outstanding amount.
type EntityFine struct {
	Entity   string  `json:"entity"`
	TotalDue float64 `json:"total_due"`
}

// TopFinesAdapter sums amounts due per title-cased entity and keeps the top
// N. The sort is stable so entities with equal totals stay in first-encounter
// order, which keeps the chart reproducible across recomputations.
type TopFinesAdapter struct {
	limit int

	mu   sync.RWMutex
	rows []EntityFine
}

func NewTopFinesAdapter(limit int) *TopFinesAdapter {
	return &TopFinesAdapter{limit: limit, rows: []EntityFine{}}
}

func (a *TopFinesAdapter) Update(view FilteredView, _ Criteria) {
	caser := cases.Title(language.AmericanEnglish)

	index := make(map[string]int)
	rows := []EntityFine{}
	for _, r := range view {
		name := caser.String(r.Entity)
		i, ok := index[name]
		if !ok {
			i = len(rows)
			index[name] = i
			rows = append(rows, EntityFine{Entity: name})
		}
		rows[i].TotalDue += r.AmountDue
	}

	sort.SliceStable(rows, func(i, j int) bool { return rows[i].TotalDue > rows[j].TotalDue })
	if len(rows) > a.limit {
		rows = rows[:a.limit]
	}

	a.mu.Lock()
	a.rows = rows
	a.mu.Unlock()
}

func (a *TopFinesAdapter) Rows() []EntityFine {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.rows
}

// ---- table / export ----

// TableRow is the fixed column projection shared by the on-screen table and
// the CSV export.
type TableRow struct {
	Docket        string  `json:"docket_number"`
	IssuedDate    string  `json:"issued_date"`
	Address       string  `json:"property_address"`
	Neighborhood  string  `json:"neighborhood"`
	Entity        string  `json:"entity_or_person"`
	ViolationType string  `json:"violation_type"`
	Disposition   string  `json:"disposition_description"`
	AmountDue     float64 `json:"current_amount_due"`
}

type TableAdapter struct {
	mu   sync.RWMutex
	rows []TableRow
}

func NewTableAdapter() *TableAdapter {
	return &TableAdapter{rows: []TableRow{}}
}

func (a *TableAdapter) Update(view FilteredView, _ Criteria) {
	rows := make([]TableRow, 0, len(view))
	for _, r := range view {
		rows = append(rows, TableRow{
			Docket:        r.Docket,
			IssuedDate:    r.IssuedDate.Format(dateLayout),
			Address:       r.Address,
			Neighborhood:  r.Neighborhood,
			Entity:        r.Entity,
			ViolationType: r.ViolationType,
			Disposition:   r.Disposition,
			AmountDue:     r.AmountDue,
		})
	}

	a.mu.Lock()
	a.rows = rows
	a.mu.Unlock()
}

func (a *TableAdapter) Rows() []TableRow {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.rows
}
