package dashboard

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// criteriaPayload is the wire shape of filter criteria, shared by the PUT
// request body and all criteria responses.
type criteriaPayload struct {
	StartDate     string   `json:"start_date"`
	EndDate       string   `json:"end_date"`
	Neighborhoods []string `json:"neighborhoods"`
	FinesOnly     bool     `json:"fines_only"`
}

func toPayload(c Criteria) criteriaPayload {
	return criteriaPayload{
		StartDate:     c.Start.Format(dateLayout),
		EndDate:       c.End.Format(dateLayout),
		Neighborhoods: c.Neighborhoods,
		FinesOnly:     c.FinesOnly,
	}
}

func (p criteriaPayload) toCriteria() (Criteria, error) {
	start, err := time.Parse(dateLayout, p.StartDate)
	if err != nil {
		return Criteria{}, fmt.Errorf("start_date %q: want YYYY-MM-DD", p.StartDate)
	}
	end, err := time.Parse(dateLayout, p.EndDate)
	if err != nil {
		return Criteria{}, fmt.Errorf("end_date %q: want YYYY-MM-DD", p.EndDate)
	}
	neighborhoods := p.Neighborhoods
	if neighborhoods == nil {
		neighborhoods = []string{}
	}
	return Criteria{
		Start:         start,
		End:           end,
		Neighborhoods: neighborhoods,
		FinesOnly:     p.FinesOnly,
	}, nil
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

func (s *Service) session(w http.ResponseWriter, r *http.Request) (*Session, bool) {
	sess, ok := s.store.Get(r)
	if !ok {
		http.Error(w, "No session for request", http.StatusInternalServerError)
		return nil, false
	}
	return sess, true
}

// NeighborhoodsHandler lists the loaded neighborhood names, in canonical
// order, for the multi-select picker.
func (s *Service) NeighborhoodsHandler(w http.ResponseWriter, r *http.Request) {
	names := make([]string, 0, len(s.polygons))
	for _, p := range s.polygons {
		names = append(names, p.Name)
	}
	writeJSON(w, map[string]any{"neighborhoods": names})
}

// FiltersHandler reads (GET) or replaces (PUT) the session's criteria. PUT
// waits for the coalesced recomputation so the response's match count always
// reflects criteria at least as new as the request's.
func (s *Service) FiltersHandler(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}

	switch r.Method {
	case http.MethodGet:
		// fall through to the shared response below

	case http.MethodPut:
		var payload criteriaPayload
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		criteria, err := payload.toCriteria()
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		sess.Controller.SetCriteria(criteria)
		sess.Controller.Wait()

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	writeJSON(w, map[string]any{
		"criteria":    toPayload(sess.Controller.Criteria()),
		"match_count": len(sess.Controller.View()),
	})
}

func (s *Service) MapHandler(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, sess.Map.View())
}

func (s *Service) TimeSeriesHandler(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, map[string]any{"series": sess.Series.Series()})
}

func (s *Service) TopFinesHandler(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, map[string]any{"top_fines": sess.TopFines.Rows()})
}

func (s *Service) TableHandler(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, map[string]any{"rows": sess.Table.Rows()})
}

// ExportHandler streams the current table projection as a CSV attachment.
func (s *Service) ExportHandler(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", ExportFilename))
	// Headers are already on the wire at this point; a write failure just
	// truncates the download.
	_ = WriteCSV(w, sess.Table.Rows())
}
