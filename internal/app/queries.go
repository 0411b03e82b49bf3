package app

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"github.com/cjpark-sapcsa/AIdesignwin-contosohotels/internal/domain"
)

// QueryService serves the read paths of the dashboard. Results are memoized
// on the session (write-once, evicted with the session) and concurrent
// identical fetches are collapsed so each distinct lookup issues at most one
// upstream call.
type QueryService struct {
	api      domain.SuitesAPI
	sessions *Sessions
	sf       singleflight.Group
}

func NewQueryService(api domain.SuitesAPI, sessions *Sessions) *QueryService {
	return &QueryService{api: api, sessions: sessions}
}

func (s *QueryService) GetHotels(ctx context.Context, sess *Session) ([]domain.Hotel, error) {
	if sess.HotelsSet {
		return sess.Hotels, nil
	}

	v, err, _ := s.sf.Do("hotels:"+sess.ID, func() (any, error) {
		raw, err := s.api.ListHotels(ctx)
		if err != nil {
			return nil, err
		}
		return mapHotels(raw)
	})
	if err != nil {
		return nil, err
	}

	hotels := v.([]domain.Hotel)
	sess.Hotels, sess.HotelsSet = hotels, true
	if err := s.sessions.Save(ctx, sess); err != nil {
		log.Warn().Err(err).Str("session", sess.ID).Msg("saving hotels memo failed")
	}
	return hotels, nil
}

func (s *QueryService) GetBookings(ctx context.Context, sess *Session, hotelID int64) ([]domain.Booking, error) {
	if b, ok := sess.bookingsMemo(hotelID); ok {
		return b, nil
	}

	key := fmt.Sprintf("bookings:%s:%d", sess.ID, hotelID)
	v, err, _ := s.sf.Do(key, func() (any, error) {
		return s.api.ListBookings(ctx, hotelID)
	})
	if err != nil {
		return nil, err
	}

	bookings := v.([]domain.Booking)
	sess.memoBookings(hotelID, bookings)
	if err := s.sessions.Save(ctx, sess); err != nil {
		log.Warn().Err(err).Str("session", sess.ID).Msg("saving bookings memo failed")
	}
	return bookings, nil
}
