package dashboard

import (
	"encoding/csv"
	"io"
	"strconv"
)

// ExportFilename is the fixed download name for the CSV export.
const ExportFilename = "Chicago_bldg_violation_data.csv"

var csvHeader = []string{
	"docket_number",
	"issued_date",
	"property_address",
	"neighborhood",
	"entity_or_person",
	"violation_type",
	"disposition_description",
	"current_amount_due",
}

// WriteCSV serializes the table projection with a header row. encoding/csv
// handles quoting, so free-text fields with commas or quotes round-trip.
func WriteCSV(w io.Writer, rows []TableRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, r := range rows {
		record := []string{
			r.Docket,
			r.IssuedDate,
			r.Address,
			r.Neighborhood,
			r.Entity,
			r.ViolationType,
			r.Disposition,
			strconv.FormatFloat(r.AmountDue, 'f', 2, 64),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
