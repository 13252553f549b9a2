// Command ingest fetches the violation dataset, joins it to the neighborhood
// boundaries, and writes the result to the Postgres snapshot so the server
// can start with dataset_source: postgres and skip the bulk remote fetch.
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/ChiCivicLab/violations-dashboard/internal/config"
	"github.com/ChiCivicLab/violations-dashboard/internal/db"
	"github.com/ChiCivicLab/violations-dashboard/internal/geodata"
	"github.com/ChiCivicLab/violations-dashboard/internal/spatial"
	"github.com/ChiCivicLab/violations-dashboard/internal/store"
)

func main() {
	_ = godotenv.Load(".env.local")

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config: ", err)
	}
	if cfg.ViolationsURL == "" {
		log.Fatal("violations_url is required for ingest")
	}

	client := geodata.NewClient(cfg.ViolationsURL, cfg.AppToken, cfg.FetchLimit, cfg.FetchTimeout())

	dataset, err := geodata.Load(context.Background(), cfg.NeighborhoodsPath, cfg.NameProperty, client)
	if err != nil {
		log.Fatal("Load failed: ", err)
	}
	log.Printf("fetched %d violations, %d neighborhoods", len(dataset.Violations), len(dataset.Polygons))

	joined := spatial.Join(dataset.Violations, dataset.Polygons)

	db.Connect()
	if err := store.Init(db.DB); err != nil {
		log.Fatal("Snapshot init failed: ", err)
	}
	if err := store.Save(db.DB, dataset.Polygons, joined); err != nil {
		log.Fatal("Snapshot save failed: ", err)
	}

	names := make([]string, 0, len(dataset.Polygons))
	for _, p := range dataset.Polygons {
		names = append(names, p.Name)
	}
	counts, err := store.CountByNeighborhood(db.DB, names)
	if err != nil {
		log.Fatal("Snapshot verification failed: ", err)
	}

	var total int64
	for _, n := range counts {
		total += n
	}
	fmt.Fprintf(os.Stdout, "snapshot written: %d joined rows across %d neighborhoods\n", total, len(counts))
}
