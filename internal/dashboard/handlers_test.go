package dashboard_test

import (
	"encoding/csv"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ChiCivicLab/violations-dashboard/internal/dashboard"
	"github.com/ChiCivicLab/violations-dashboard/internal/geodata"
)

// newTestServer spins up the dashboard routes over a small joined dataset.
func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	polygons := []geodata.NeighborhoodPolygon{
		square("Loop", 41.87, -87.64, 41.89, -87.62),
		square("Uptown", 41.96, -87.67, 41.98, -87.64),
	}
	joined := []geodata.ViolationRecord{
		{Docket: "P1", IssuedDate: day("2022-05-01"), Address: "100 N State St", Entity: "Acme", ViolationType: "Sanitation", Disposition: "Liable", AmountDue: 0, Latitude: 41.88, Longitude: -87.63, Neighborhood: "Loop"},
		{Docket: "P2", IssuedDate: day("2022-06-01"), Address: "120 N State St", Entity: "Acme", ViolationType: "Building", Disposition: "Liable", AmountDue: 150, Latitude: 41.881, Longitude: -87.631, Neighborhood: "Loop"},
		{Docket: "P3", IssuedDate: day("2022-06-01"), Address: "4747 N Broadway", Entity: "Smith", ViolationType: "Building", Disposition: "Non-Suit", AmountDue: 0, Latitude: 41.97, Longitude: -87.66, Neighborhood: "Uptown"},
	}

	svc := dashboard.NewService(polygons, joined, 6)
	srv := httptest.NewServer(svc.SetupRoutes())
	t.Cleanup(srv.Close)
	return srv
}

// TestFiltersLifecycle drives a full session: defaults in, criteria update,
// views reflecting the update.
func TestFiltersLifecycle(t *testing.T) {
	srv := newTestServer(t)
	client := srv.Client()

	// First touch creates the session and returns default criteria.
	resp, err := client.Get(srv.URL + "/filters")
	if err != nil {
		t.Fatalf("GET /filters: %v", err)
	}
	defer resp.Body.Close()

	var got struct {
		Criteria struct {
			StartDate     string   `json:"start_date"`
			EndDate       string   `json:"end_date"`
			Neighborhoods []string `json:"neighborhoods"`
			FinesOnly     bool     `json:"fines_only"`
		} `json:"criteria"`
		MatchCount int `json:"match_count"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("decoding filters response: %v", err)
	}

	if got.Criteria.StartDate != "2022-05-01" || got.Criteria.EndDate != "2022-06-01" {
		t.Errorf("expected default range spanning the dataset, got %s..%s", got.Criteria.StartDate, got.Criteria.EndDate)
	}
	if len(got.Criteria.Neighborhoods) != 2 {
		t.Errorf("expected all neighborhoods selected by default, got %v", got.Criteria.Neighborhoods)
	}
	if got.MatchCount != 3 {
		t.Errorf("expected all 3 records matched by defaults, got %d", got.MatchCount)
	}
}

// TestPutFilters_UpdatesViews applies a Loop-only, fines-only filter via HTTP
// and checks the table view and match count follow.
func TestPutFilters_UpdatesViews(t *testing.T) {
	srv := newTestServer(t)

	body := `{"start_date":"2022-05-01","end_date":"2022-12-31","neighborhoods":["Loop"],"fines_only":true}`
	req, err := http.NewRequest(http.MethodPut, srv.URL+"/filters", strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := srv.Client().Do(req)
	if err != nil {
		t.Fatalf("PUT /filters: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var put struct {
		MatchCount int `json:"match_count"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&put); err != nil {
		t.Fatalf("decoding PUT response: %v", err)
	}
	if put.MatchCount != 1 {
		t.Errorf("expected match count 1 (only P2), got %d", put.MatchCount)
	}

	// Follow up in the same session via the returned cookie.
	tableReq, err := http.NewRequest(http.MethodGet, srv.URL+"/table", nil)
	if err != nil {
		t.Fatal(err)
	}
	for _, c := range resp.Cookies() {
		tableReq.AddCookie(c)
	}
	tableResp, err := srv.Client().Do(tableReq)
	if err != nil {
		t.Fatalf("GET /table: %v", err)
	}
	defer tableResp.Body.Close()

	var table struct {
		Rows []dashboard.TableRow `json:"rows"`
	}
	if err := json.NewDecoder(tableResp.Body).Decode(&table); err != nil {
		t.Fatalf("decoding table response: %v", err)
	}
	if len(table.Rows) != 1 || table.Rows[0].Docket != "P2" {
		t.Fatalf("expected table to hold only P2, got %+v", table.Rows)
	}
}

// TestPutFilters_BadDate verifies malformed dates are rejected with 400.
func TestPutFilters_BadDate(t *testing.T) {
	srv := newTestServer(t)

	body := `{"start_date":"05/01/2022","end_date":"2022-12-31","neighborhoods":["Loop"]}`
	req, err := http.NewRequest(http.MethodPut, srv.URL+"/filters", strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	resp, err := srv.Client().Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

// TestExport verifies the CSV attachment: fixed filename, header row, one
// data row per filtered record.
func TestExport(t *testing.T) {
	srv := newTestServer(t)

	resp, err := srv.Client().Get(srv.URL + "/export")
	if err != nil {
		t.Fatalf("GET /export: %v", err)
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Errorf("expected text/csv content type, got %q", ct)
	}
	if cd := resp.Header.Get("Content-Disposition"); !strings.Contains(cd, dashboard.ExportFilename) {
		t.Errorf("expected filename %s in disposition, got %q", dashboard.ExportFilename, cd)
	}

	records, err := csv.NewReader(resp.Body).ReadAll()
	if err != nil {
		t.Fatalf("parsing exported CSV: %v", err)
	}
	if len(records) != 4 { // header + 3 default-filtered records
		t.Fatalf("expected 4 CSV records, got %d", len(records))
	}
}

// TestNeighborhoodsEndpoint verifies the picker source lists loaded names.
func TestNeighborhoodsEndpoint(t *testing.T) {
	srv := newTestServer(t)

	resp, err := srv.Client().Get(srv.URL + "/neighborhoods")
	if err != nil {
		t.Fatalf("GET /neighborhoods: %v", err)
	}
	defer resp.Body.Close()

	var got struct {
		Neighborhoods []string `json:"neighborhoods"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if len(got.Neighborhoods) != 2 {
		t.Fatalf("expected 2 neighborhoods, got %v", got.Neighborhoods)
	}
}
