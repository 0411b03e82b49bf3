// internal/shared/endpoint.go
package shared

import (
	"strings"

	"github.com/cjpark-sapcsa/AIdesignwin-contosohotels/internal/domain"
)

// ResolveEndpoint normalizes the configured API endpoint into an absolute
// base URL. An empty value is a page-level problem, not a process-fatal one:
// callers surface domain.ErrConfigMissing inline and keep serving.
//
// A missing scheme gets https:// (leading slashes stripped first), trailing
// slashes are trimmed, and with prefix set the base ends with /api exactly
// once. Two divergent normalizations existed upstream; this is the single
// supported one, with the /api suffix behind the deployment flag.
func ResolveEndpoint(raw string, prefix bool) (string, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", domain.ErrConfigMissing
	}
	if !strings.HasPrefix(s, "http") {
		s = "https://" + strings.TrimLeft(s, "/")
	}
	s = strings.TrimRight(s, "/")
	if prefix && !strings.HasSuffix(s, "/api") {
		s += "/api"
	}
	return s, nil
}
