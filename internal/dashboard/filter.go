package dashboard

import "github.com/ChiCivicLab/violations-dashboard/internal/geodata"

// FilteredView is an immutable snapshot of the records matching one set of
// criteria. Every recomputation allocates a fresh slice; adapters only read.
type FilteredView []geodata.ViolationRecord

// Apply evaluates the filter predicate over the joined dataset. Pure and
// read-only over records, so it is safe to call concurrently and repeatedly.
//
// A record matches when its issued date falls inside the inclusive
// [Start, End] interval, its neighborhood is one of the selected names, and
// (when FinesOnly is set) it has a positive amount due.
func Apply(records []geodata.ViolationRecord, c Criteria) FilteredView {
	out := FilteredView{}

	// An empty neighborhood selection means "nothing", not "everything".
	if len(c.Neighborhoods) == 0 {
		return out
	}
	// Malformed interval from a bypassed widget: report empty, don't error.
	if c.End.Before(c.Start) {
		return out
	}

	selected := c.neighborhoodSet()
	for _, r := range records {
		if r.IssuedDate.Before(c.Start) || r.IssuedDate.After(c.End) {
			continue
		}
		// Unjoined records never match a named selection.
		if r.Neighborhood == "" {
			continue
		}
		if _, ok := selected[r.Neighborhood]; !ok {
			continue
		}
		if c.FinesOnly && r.AmountDue <= 0 {
			continue
		}
		out = append(out, r)
	}
	return out
}
