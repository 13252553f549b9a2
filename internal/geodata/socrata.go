package geodata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// Client fetches the violation dataset from its Socrata endpoint. The app
// token travels only in the outgoing query string; it is never logged and
// never echoed back in errors.
type Client struct {
	endpoint   string
	appToken   string
	limit      int
	httpClient *http.Client
}

// NewClient builds a dataset client. limit must be high enough to pull the
// full dataset in one request; the dashboard is a point-in-time snapshot, not
// a paging consumer.
func NewClient(endpoint, appToken string, limit int, timeout time.Duration) *Client {
	return &Client{
		endpoint: endpoint,
		appToken: appToken,
		limit:    limit,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// FetchViolations pulls the full violation FeatureCollection and converts it
// to records. Records without coordinates are dropped here; every surviving
// record has strictly parsed date and amount fields.
func (c *Client) FetchViolations(ctx context.Context) ([]ViolationRecord, error) {
	u, err := url.Parse(c.endpoint)
	if err != nil {
		return nil, fmt.Errorf("%w: bad endpoint: %v", ErrLoad, err)
	}
	q := u.Query()
	q.Set("$limit", strconv.Itoa(c.limit))
	if c.appToken != "" {
		q.Set("$$app_token", c.appToken)
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: creating request: %v", ErrLoad, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// err may embed the full URL (token included); report only the host.
		return nil, fmt.Errorf("%w: fetching violations from %s: request failed", ErrLoad, u.Host)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, fmt.Errorf("%w: violations API rejected the app token (HTTP %d)", ErrLoad, resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: violations API returned HTTP %d", ErrLoad, resp.StatusCode)
	}

	var fc featureCollection
	if err := json.NewDecoder(resp.Body).Decode(&fc); err != nil {
		return nil, fmt.Errorf("%w: decoding violations response: %v", ErrLoad, err)
	}

	return recordsFromFeatures(fc.Features)
}

func recordsFromFeatures(features []feature) ([]ViolationRecord, error) {
	records := make([]ViolationRecord, 0, len(features))
	for _, f := range features {
		rec, ok, err := recordFromFeature(f)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue // no coordinates; cannot be placed on the map
		}
		records = append(records, rec)
	}
	return records, nil
}

func recordFromFeature(f feature) (ViolationRecord, bool, error) {
	rec := ViolationRecord{
		Docket:        propString(f.Properties, "docket_number"),
		Address:       propString(f.Properties, "property_address"),
		Entity:        CleanEntity(propString(f.Properties, "entity_or_person")),
		ViolationType: propString(f.Properties, "violation_type"),
		Disposition:   propString(f.Properties, "disposition_description"),
	}

	lat, lng, ok := featureCoordinates(f)
	if !ok {
		return ViolationRecord{}, false, nil
	}
	rec.Latitude = lat
	rec.Longitude = lng

	issued, err := parseIssuedDate(propString(f.Properties, "issued_date"))
	if err != nil {
		return ViolationRecord{}, false, fmt.Errorf("%w: docket %s: %v", ErrParse, rec.Docket, err)
	}
	rec.IssuedDate = issued

	amount, err := parseAmount(f.Properties["current_amount_due"])
	if err != nil {
		return ViolationRecord{}, false, fmt.Errorf("%w: docket %s: %v", ErrParse, rec.Docket, err)
	}
	rec.AmountDue = amount

	return rec, true, nil
}

// featureCoordinates prefers the GeoJSON point geometry and falls back to the
// latitude/longitude attribute columns some extracts carry instead.
func featureCoordinates(f feature) (lat, lng float64, ok bool) {
	if f.Geometry != nil && f.Geometry.Type == "Point" {
		var pos []float64
		if err := json.Unmarshal(f.Geometry.Coordinates, &pos); err == nil && len(pos) >= 2 {
			return pos[1], pos[0], true
		}
	}

	latStr := propString(f.Properties, "latitude")
	lngStr := propString(f.Properties, "longitude")
	if latStr == "" || lngStr == "" {
		return 0, 0, false
	}
	lat, err1 := strconv.ParseFloat(latStr, 64)
	lng, err2 := strconv.ParseFloat(lngStr, 64)
	if err1 != nil || err2 != nil {
		return 0, 0, false
	}
	return lat, lng, true
}

func propString(props map[string]any, key string) string {
	v, _ := props[key].(string)
	return v
}

// Socrata floating timestamps come in a few shapes depending on the export.
var issuedDateLayouts = []string{
	"2006-01-02T15:04:05.000",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

func parseIssuedDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, fmt.Errorf("issued_date is missing")
	}
	for _, layout := range issuedDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("issued_date %q is not a recognized date", s)
}
