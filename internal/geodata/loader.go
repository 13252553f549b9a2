package geodata

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

// Dataset is the fully loaded input to the dashboard: every neighborhood
// boundary plus every violation record that carries coordinates. Immutable
// after Load returns.
type Dataset struct {
	Polygons   []NeighborhoodPolygon
	Violations []ViolationRecord
}

// Load reads the local boundary file and fetches the remote violation
// dataset. Either failure is fatal for the whole load; callers must not
// proceed to the spatial join on a partial result.
func Load(ctx context.Context, neighborhoodsPath, nameProperty string, client *Client) (*Dataset, error) {
	polygons, err := ParseNeighborhoods(neighborhoodsPath, nameProperty)
	if err != nil {
		return nil, err
	}
	if len(polygons) == 0 {
		return nil, fmt.Errorf("%w: %s contains no neighborhood features", ErrLoad, neighborhoodsPath)
	}

	violations, err := client.FetchViolations(ctx)
	if err != nil {
		return nil, err
	}

	return &Dataset{Polygons: polygons, Violations: violations}, nil
}

// entityArtifacts are trailing annotations the upstream export appends to the
// entity/person column. Detected explicitly rather than cutting a fixed
// number of characters, so a format change upstream degrades to a no-op
// instead of mangling names.
var entityArtifacts = []string{
	", as owner",
	", as president",
	", as agent",
	", et al.",
	", et al",
}

// CleanEntity normalizes the free-text entity/person field: trims space,
// strips a known trailing annotation when present, then trims any leftover
// trailing punctuation.
func CleanEntity(s string) string {
	s = strings.TrimSpace(s)
	lower := strings.ToLower(s)
	for _, suffix := range entityArtifacts {
		if strings.HasSuffix(lower, suffix) {
			s = s[:len(s)-len(suffix)]
			break
		}
	}
	return strings.TrimRight(s, " ,.;")
}

// parseAmount strictly parses current_amount_due. The value arrives as a JSON
// number or a numeric string, optionally currency-formatted ("$1,250.00").
// Anything else fails the load pass; financial data is never zero-filled.
func parseAmount(v any) (float64, error) {
	switch x := v.(type) {
	case float64:
		if x < 0 {
			return 0, fmt.Errorf("current_amount_due %v is negative", x)
		}
		return x, nil
	case string:
		s := strings.TrimSpace(x)
		s = strings.TrimPrefix(s, "$")
		s = strings.ReplaceAll(s, ",", "")
		if s == "" {
			return 0, fmt.Errorf("current_amount_due is blank")
		}
		amount, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, fmt.Errorf("current_amount_due %q is not numeric", x)
		}
		if amount < 0 {
			return 0, fmt.Errorf("current_amount_due %q is negative", x)
		}
		return amount, nil
	case nil:
		return 0, fmt.Errorf("current_amount_due is missing")
	default:
		return 0, fmt.Errorf("current_amount_due has unexpected type %T", v)
	}
}
