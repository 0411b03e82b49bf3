// internal/app/session.go
package app

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/cjpark-sapcsa/AIdesignwin-contosohotels/internal/domain"
)

// Session is the unit of per-visitor state: the two chat transcripts and the
// memoized API reads. It is stored as one JSON blob under its ID and is
// dropped as a whole when the session ends; the store TTL is only a safety
// net for sessions that are never explicitly reset.
type Session struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`

	// BookingsChat holds the Q&A thread of the bookings page; CopilotChat
	// holds the maintenance copilot transcript. Both are append-only.
	BookingsChat []domain.ChatMessage `json:"bookings_chat,omitempty"`
	CopilotChat  []domain.ChatMessage `json:"copilot_chat,omitempty"`

	// Memoized reads. HotelsSet distinguishes "never fetched" from a fetch
	// that legitimately returned zero hotels.
	Hotels    []domain.Hotel             `json:"hotels,omitempty"`
	HotelsSet bool                       `json:"hotels_set,omitempty"`
	Bookings  map[int64][]domain.Booking `json:"bookings,omitempty"`
}

func (s *Session) bookingsMemo(hotelID int64) ([]domain.Booking, bool) {
	if s.Bookings == nil {
		return nil, false
	}
	b, ok := s.Bookings[hotelID]
	return b, ok
}

func (s *Session) memoBookings(hotelID int64, b []domain.Booking) {
	if s.Bookings == nil {
		s.Bookings = make(map[int64][]domain.Booking)
	}
	s.Bookings[hotelID] = b
}

// Sessions loads and persists Session blobs through a Cache backend.
type Sessions struct {
	cache domain.Cache
	ttl   time.Duration
}

func NewSessions(c domain.Cache, ttl time.Duration) *Sessions {
	return &Sessions{cache: c, ttl: ttl}
}

func sessionKey(id string) string { return "sess:" + id }

// Load returns the stored session for id, or a fresh one when id is empty,
// unknown, or expired. A fresh session is not persisted until first saved.
func (m *Sessions) Load(ctx context.Context, id string) *Session {
	if id != "" {
		var s Session
		found, err := m.cache.Get(ctx, sessionKey(id), &s)
		if err != nil {
			log.Warn().Err(err).Str("session", id).Msg("session load failed, starting fresh")
		} else if found {
			return &s
		}
	}
	return &Session{ID: uuid.NewString(), CreatedAt: time.Now().UTC()}
}

func (m *Sessions) Save(ctx context.Context, s *Session) error {
	return m.cache.Set(ctx, sessionKey(s.ID), s, m.ttl)
}

// End evicts the session and everything memoized inside it.
func (m *Sessions) End(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	return m.cache.Del(ctx, sessionKey(id))
}
