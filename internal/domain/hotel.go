package domain

type Hotel struct {
	ID   int64
	Name string
}

// Booking is an opaque record owned by the remote API; the dashboard renders
// it verbatim and never modifies it, so no schema is imposed here.
type Booking map[string]any

// SearchResult is an opaque ranked record from the vector search endpoint.
type SearchResult map[string]any
