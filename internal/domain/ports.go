package domain

import (
	"context"
	"time"
)

// SuitesAPI is the outbound port to the remote hotel-management API.
// Every operation issues exactly one request: failures are classified into
// the sentinels in errors.go and never retried here.
type SuitesAPI interface {
	ListHotels(ctx context.Context) ([]map[string]any, error)
	ListBookings(ctx context.Context, hotelID int64) ([]Booking, error)
	Chat(ctx context.Context, message string) (string, error)
	CopilotChat(ctx context.Context, message string) (string, error)
	Vectorize(ctx context.Context, text string) ([]float64, error)
	VectorSearch(ctx context.Context, vec []float64, maxResults int, minSimilarity float64) ([]SearchResult, error)
}

// Cache backs sessions and their memoized fetch results. Get reports whether
// the key existed. Del accepts several keys so a session and its memo entries
// go away in one call.
type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
}
