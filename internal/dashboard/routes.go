package dashboard

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (s *Service) SetupRoutes() http.Handler {
	r := chi.NewRouter()
	r.Use(s.store.Middleware)

	r.Get("/neighborhoods", s.NeighborhoodsHandler)
	r.Get("/filters", s.FiltersHandler)
	r.Put("/filters", s.FiltersHandler)
	r.Get("/map", s.MapHandler)
	r.Get("/timeseries", s.TimeSeriesHandler)
	r.Get("/topfines", s.TopFinesHandler)
	r.Get("/table", s.TableHandler)
	r.Get("/export", s.ExportHandler)

	return r
}
