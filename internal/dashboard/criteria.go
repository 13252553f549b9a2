package dashboard

import (
	"sort"
	"time"

	"github.com/ChiCivicLab/violations-dashboard/internal/geodata"
)

// Criteria is the complete user-selected filter state: an inclusive date
// interval, the set of selected neighborhoods, and the fines-only toggle.
// Owned by a session's Controller; handlers never mutate it in place.
type Criteria struct {
	Start         time.Time
	End           time.Time
	Neighborhoods []string
	FinesOnly     bool
}

// DefaultCriteria selects everything: the dataset's full issued-date span and
// every loaded neighborhood, fines-only off.
func DefaultCriteria(records []geodata.ViolationRecord, polygons []geodata.NeighborhoodPolygon) Criteria {
	c := Criteria{}

	for _, r := range records {
		if c.Start.IsZero() || r.IssuedDate.Before(c.Start) {
			c.Start = r.IssuedDate
		}
		if c.End.IsZero() || r.IssuedDate.After(c.End) {
			c.End = r.IssuedDate
		}
	}

	c.Neighborhoods = make([]string, 0, len(polygons))
	for _, p := range polygons {
		c.Neighborhoods = append(c.Neighborhoods, p.Name)
	}
	sort.Strings(c.Neighborhoods)

	return c
}

func (c Criteria) neighborhoodSet() map[string]struct{} {
	set := make(map[string]struct{}, len(c.Neighborhoods))
	for _, n := range c.Neighborhoods {
		set[n] = struct{}{}
	}
	return set
}
