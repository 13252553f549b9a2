// Package store caches the fetched, joined dataset in Postgres so restarts
// can skip the bulk remote fetch. It stores source data only; filter state is
// session-scoped and never persisted.
package store

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ChiCivicLab/violations-dashboard/internal/db"
	"github.com/ChiCivicLab/violations-dashboard/internal/geodata"
)

// Neighborhood is one boundary row. Geometry keeps the parsed polygon set as
// JSON; the server rehydrates it instead of reparsing the GeoJSON source.
type Neighborhood struct {
	Name     string `gorm:"primaryKey;size:100"`
	Geometry string `gorm:"type:text"`
}

func (Neighborhood) TableName() string {
	return "violations.neighborhoods"
}

// Violation is one joined violation record.
type Violation struct {
	Docket        string    `gorm:"primaryKey;size:50"`
	IssuedDate    time.Time `gorm:"index"`
	Address       string
	Entity        string
	ViolationType string
	Disposition   string
	AmountDue     float64
	Latitude      float64
	Longitude     float64
	Neighborhood  string `gorm:"index;size:100"`
}

func (Violation) TableName() string {
	return "violations.violations"
}

// Init creates the schema and tables.
func Init(d *gorm.DB) error {
	if err := db.EnsureSchema(d, "violations"); err != nil {
		return fmt.Errorf("create violations schema: %w", err)
	}
	if err := d.AutoMigrate(&Neighborhood{}, &Violation{}); err != nil {
		return fmt.Errorf("migrate snapshot tables: %w", err)
	}
	return nil
}

// Save replaces the snapshot with the given dataset. Upserts keyed on the
// natural primary keys, so re-running ingest refreshes in place.
func Save(d *gorm.DB, polygons []geodata.NeighborhoodPolygon, joined []geodata.ViolationRecord) error {
	return d.Transaction(func(tx *gorm.DB) error {
		for _, p := range polygons {
			geom, err := json.Marshal(p.Polygons)
			if err != nil {
				return fmt.Errorf("marshal geometry for %s: %w", p.Name, err)
			}
			row := Neighborhood{Name: p.Name, Geometry: string(geom)}
			if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&row).Error; err != nil {
				return fmt.Errorf("save neighborhood %s: %w", p.Name, err)
			}
		}

		rows := make([]Violation, 0, len(joined))
		for _, r := range joined {
			rows = append(rows, Violation{
				Docket:        r.Docket,
				IssuedDate:    r.IssuedDate,
				Address:       r.Address,
				Entity:        r.Entity,
				ViolationType: r.ViolationType,
				Disposition:   r.Disposition,
				AmountDue:     r.AmountDue,
				Latitude:      r.Latitude,
				Longitude:     r.Longitude,
				Neighborhood:  r.Neighborhood,
			})
		}
		if len(rows) == 0 {
			return nil
		}
		if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).CreateInBatches(rows, 500).Error; err != nil {
			return fmt.Errorf("save violations: %w", err)
		}
		return nil
	})
}

// Load rehydrates the snapshot into the loader's dataset shape, polygons in
// canonical name order.
func Load(d *gorm.DB) (*geodata.Dataset, error) {
	var nrows []Neighborhood
	if err := d.Order("name").Find(&nrows).Error; err != nil {
		return nil, fmt.Errorf("%w: load neighborhoods snapshot: %v", geodata.ErrLoad, err)
	}
	if len(nrows) == 0 {
		return nil, fmt.Errorf("%w: snapshot is empty, run cmd/ingest first", geodata.ErrLoad)
	}

	polygons := make([]geodata.NeighborhoodPolygon, 0, len(nrows))
	for _, n := range nrows {
		var polys []geodata.Polygon
		if err := json.Unmarshal([]byte(n.Geometry), &polys); err != nil {
			return nil, fmt.Errorf("%w: corrupt geometry for %s: %v", geodata.ErrLoad, n.Name, err)
		}
		for i := range polys {
			geodata.ComputeBBox(&polys[i])
		}
		polygons = append(polygons, geodata.NeighborhoodPolygon{Name: n.Name, Polygons: polys})
	}

	var vrows []Violation
	if err := d.Order("docket").Find(&vrows).Error; err != nil {
		return nil, fmt.Errorf("%w: load violations snapshot: %v", geodata.ErrLoad, err)
	}

	violations := make([]geodata.ViolationRecord, 0, len(vrows))
	for _, v := range vrows {
		violations = append(violations, geodata.ViolationRecord{
			Docket:        v.Docket,
			IssuedDate:    v.IssuedDate,
			Address:       v.Address,
			Entity:        v.Entity,
			ViolationType: v.ViolationType,
			Disposition:   v.Disposition,
			AmountDue:     v.AmountDue,
			Latitude:      v.Latitude,
			Longitude:     v.Longitude,
			Neighborhood:  v.Neighborhood,
		})
	}

	return &geodata.Dataset{Polygons: polygons, Violations: violations}, nil
}

// CountByNeighborhood reports snapshot row counts for the given names; used
// by ingest to print a verification summary.
func CountByNeighborhood(d *gorm.DB, names []string) (map[string]int64, error) {
	type countRow struct {
		Neighborhood string
		N            int64
	}
	var rows []countRow
	err := d.Raw(`
		SELECT neighborhood, COUNT(*) AS n
		FROM violations.violations
		WHERE neighborhood = ANY(?)
		GROUP BY neighborhood
		ORDER BY neighborhood
	`, pq.Array(names)).Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("count by neighborhood: %w", err)
	}

	counts := make(map[string]int64, len(rows))
	for _, r := range rows {
		counts[r.Neighborhood] = r.N
	}
	return counts, nil
}
