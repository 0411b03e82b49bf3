package app

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cjpark-sapcsa/AIdesignwin-contosohotels/internal/domain"
)

// Hotel payload aliases seen across deployments. The canonical contract is
// hotelID/hotelName; older gateways lower-case the D or flatten to id/name.
var (
	hotelIDAliases   = []string{"hotelID", "hotelId", "id"}
	hotelNameAliases = []string{"hotelName", "name"}
)

// firstInt64 pulls an int64 out of the first alias present, tolerating the
// types JSON decoding can produce (float64, string).
func firstInt64(m map[string]any, keys ...string) (int64, bool) {
	for _, k := range keys {
		switch v := m[k].(type) {
		case float64:
			return int64(v), true
		case int64:
			return v, true
		case string:
			s := strings.TrimSpace(v)
			if s == "" {
				continue
			}
			if n, err := strconv.ParseInt(s, 10, 64); err == nil {
				return n, true
			}
		}
	}
	return 0, false
}

func firstString(m map[string]any, keys ...string) (string, bool) {
	for _, k := range keys {
		if s, ok := m[k].(string); ok {
			if t := strings.TrimSpace(s); t != "" {
				return t, true
			}
		}
	}
	return "", false
}

// mapHotels converts the loose /Hotels payload into selector entries. A
// record without a usable id or name means the deployment speaks a contract
// we do not know, so the whole payload is rejected rather than silently
// dropping rows.
func mapHotels(in []map[string]any) ([]domain.Hotel, error) {
	out := make([]domain.Hotel, 0, len(in))
	for i, r := range in {
		id, ok := firstInt64(r, hotelIDAliases...)
		if !ok {
			return nil, fmt.Errorf("%w: hotel record %d has no id", domain.ErrFormat, i)
		}
		name, ok := firstString(r, hotelNameAliases...)
		if !ok {
			return nil, fmt.Errorf("%w: hotel record %d has no name", domain.ErrFormat, i)
		}
		out = append(out, domain.Hotel{ID: id, Name: name})
	}
	return out, nil
}
