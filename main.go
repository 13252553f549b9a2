package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"

	"github.com/ChiCivicLab/violations-dashboard/internal/config"
	"github.com/ChiCivicLab/violations-dashboard/internal/dashboard"
	"github.com/ChiCivicLab/violations-dashboard/internal/db"
	"github.com/ChiCivicLab/violations-dashboard/internal/geodata"
	"github.com/ChiCivicLab/violations-dashboard/internal/middleware"
	"github.com/ChiCivicLab/violations-dashboard/internal/spatial"
	"github.com/ChiCivicLab/violations-dashboard/internal/store"
)

func RootHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	fmt.Fprintln(w, "Server is up!")
}

// loadDataset performs the one-time load phase. The server must not accept
// filter traffic until this has fully succeeded, so any failure is fatal.
func loadDataset(cfg *config.Config) *geodata.Dataset {
	if cfg.DatasetSource == "postgres" {
		db.Connect()
		dataset, err := store.Load(db.DB)
		if err != nil {
			log.Fatal("Snapshot load failed: ", err)
		}
		return dataset
	}

	client := geodata.NewClient(cfg.ViolationsURL, cfg.AppToken, cfg.FetchLimit, cfg.FetchTimeout())
	dataset, err := geodata.Load(context.Background(), cfg.NeighborhoodsPath, cfg.NameProperty, client)
	if err != nil {
		log.Fatal("Dataset load failed: ", err)
	}
	return dataset
}

func main() {
	_ = godotenv.Load(".env.local")

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config: ", err)
	}

	dataset := loadDataset(cfg)

	// Join once; records and polygons are immutable from here on.
	joined := spatial.Join(dataset.Violations, dataset.Polygons)
	svc := dashboard.NewService(dataset.Polygons, joined, cfg.TopFinesLimit)

	r := chi.NewRouter()
	r.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))
	if cfg.RequestsPerSec > 0 {
		r.Use(middleware.RateLimitMiddleware(cfg.RequestsPerSec))
	}
	r.Get("/", RootHandler)
	r.Mount("/dashboard", svc.SetupRoutes())

	fmt.Println("Server listening on port :" + cfg.Port + "...")

	http.ListenAndServe("0.0.0.0:"+cfg.Port, r)
}
