package dashboard

import (
	"log"

	"github.com/ChiCivicLab/violations-dashboard/internal/geodata"
)

// Service wires the loaded dataset to per-session reactive pipelines. The
// dataset is injected once at startup and shared read-only across sessions.
type Service struct {
	polygons []geodata.NeighborhoodPolygon
	records  []geodata.ViolationRecord
	defaults Criteria
	topLimit int
	store    *SessionStore
}

// NewService takes the spatially joined dataset. Default criteria cover the
// full issued-date range with every neighborhood selected.
func NewService(polygons []geodata.NeighborhoodPolygon, joined []geodata.ViolationRecord, topLimit int) *Service {
	s := &Service{
		polygons: polygons,
		records:  joined,
		defaults: DefaultCriteria(joined, polygons),
		topLimit: topLimit,
	}
	s.store = NewSessionStore(s.newSession)

	log.Printf("dashboard ready: %d violations across %d neighborhoods", len(joined), len(polygons))
	return s
}

func (s *Service) newSession() *Session {
	sess := &Session{
		Map:      NewMapAdapter(s.polygons),
		Series:   NewTimeSeriesAdapter(),
		TopFines: NewTopFinesAdapter(s.topLimit),
		Table:    NewTableAdapter(),
	}
	sess.Controller = NewController(s.records, s.defaults,
		sess.Map, sess.Series, sess.TopFines, sess.Table)
	return sess
}
