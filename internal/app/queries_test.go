package app_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cjpark-sapcsa/AIdesignwin-contosohotels/internal/app"
	"github.com/cjpark-sapcsa/AIdesignwin-contosohotels/internal/domain"
)

// ---- fakes ----

type fakeAPI struct {
	hotels    []map[string]any
	hotelsErr error
	bookings  map[int64][]domain.Booking
	chatReply string
	chatErr   error
	chatHook  func() // runs inside Chat/CopilotChat, before returning
	vector    []float64
	vectorErr error
	results   []domain.SearchResult

	hotelCalls   int32
	bookingCalls int32
	chatCalls    int32
	copilotCalls int32
	vecCalls     int32
	searchCalls  int32

	lastSearchVec []float64
	lastSearchMax int
	lastSearchMin float64

	delay time.Duration
}

func (f *fakeAPI) ListHotels(ctx context.Context) ([]map[string]any, error) {
	atomic.AddInt32(&f.hotelCalls, 1)
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	return f.hotels, f.hotelsErr
}

func (f *fakeAPI) ListBookings(ctx context.Context, hotelID int64) ([]domain.Booking, error) {
	atomic.AddInt32(&f.bookingCalls, 1)
	return f.bookings[hotelID], nil
}

func (f *fakeAPI) Chat(ctx context.Context, message string) (string, error) {
	atomic.AddInt32(&f.chatCalls, 1)
	if f.chatHook != nil {
		f.chatHook()
	}
	return f.chatReply, f.chatErr
}

func (f *fakeAPI) CopilotChat(ctx context.Context, message string) (string, error) {
	atomic.AddInt32(&f.copilotCalls, 1)
	if f.chatHook != nil {
		f.chatHook()
	}
	return f.chatReply, f.chatErr
}

func (f *fakeAPI) Vectorize(ctx context.Context, text string) ([]float64, error) {
	atomic.AddInt32(&f.vecCalls, 1)
	return f.vector, f.vectorErr
}

func (f *fakeAPI) VectorSearch(ctx context.Context, vec []float64, maxResults int, minSimilarity float64) ([]domain.SearchResult, error) {
	atomic.AddInt32(&f.searchCalls, 1)
	f.lastSearchVec, f.lastSearchMax, f.lastSearchMin = vec, maxResults, minSimilarity
	return f.results, nil
}

type fakeCache struct {
	mu    sync.Mutex
	store map[string][]byte
}

func (c *fakeCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	c.mu.Lock()
	b, ok := c.store[key]
	c.mu.Unlock()
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(b, dst)
}

func (c *fakeCache) Set(ctx context.Context, key string, v any, ttl time.Duration) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.mu.Lock()
	if c.store == nil {
		c.store = map[string][]byte{}
	}
	c.store[key] = b
	c.mu.Unlock()
	return nil
}

func (c *fakeCache) Del(ctx context.Context, keys ...string) error {
	c.mu.Lock()
	for _, k := range keys {
		delete(c.store, k)
	}
	c.mu.Unlock()
	return nil
}

func newSessions() *app.Sessions {
	return app.NewSessions(&fakeCache{}, time.Hour)
}

// ---- tests ----

func TestGetHotels_MemoizedPerSession(t *testing.T) {
	api := &fakeAPI{hotels: []map[string]any{
		{"hotelID": float64(1), "hotelName": "Grand"},
		{"hotelID": float64(2), "hotelName": "Plaza"},
	}}
	sessions := newSessions()
	q := app.NewQueryService(api, sessions)
	sess := sessions.Load(context.Background(), "")

	hotels, err := q.GetHotels(context.Background(), sess)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if len(hotels) != 2 || hotels[0].Name != "Grand" || hotels[1].ID != 2 {
		t.Fatalf("unexpected hotels: %+v", hotels)
	}

	// Mutate the upstream to prove the second read is served from the memo.
	api.hotels = []map[string]any{{"hotelID": float64(9), "hotelName": "SHOULD NOT SEE THIS"}}

	hotels2, err := q.GetHotels(context.Background(), sess)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if hotels2[0].Name != "Grand" {
		t.Fatalf("expected memoized hotels, got %+v", hotels2)
	}
	if n := atomic.LoadInt32(&api.hotelCalls); n != 1 {
		t.Fatalf("expected 1 upstream call, got %d", n)
	}
}

func TestGetHotels_AliasVariants(t *testing.T) {
	api := &fakeAPI{hotels: []map[string]any{
		{"hotelId": float64(7), "name": "Lakeside"},
		{"id": "8", "hotelName": "Summit"},
	}}
	sessions := newSessions()
	q := app.NewQueryService(api, sessions)

	hotels, err := q.GetHotels(context.Background(), sessions.Load(context.Background(), ""))
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if hotels[0].ID != 7 || hotels[0].Name != "Lakeside" || hotels[1].ID != 8 || hotels[1].Name != "Summit" {
		t.Fatalf("unexpected mapping: %+v", hotels)
	}
}

func TestGetHotels_BadRecord(t *testing.T) {
	api := &fakeAPI{hotels: []map[string]any{{"hotelID": float64(1)}}} // no name
	sessions := newSessions()
	q := app.NewQueryService(api, sessions)

	_, err := q.GetHotels(context.Background(), sessions.Load(context.Background(), ""))
	if !errors.Is(err, domain.ErrFormat) {
		t.Fatalf("want ErrFormat, got %v", err)
	}
}

func TestGetHotels_CollapsesConcurrentFetches(t *testing.T) {
	api := &fakeAPI{
		hotels: []map[string]any{{"hotelID": float64(1), "hotelName": "Grand"}},
		delay:  50 * time.Millisecond,
	}
	sessions := newSessions()
	q := app.NewQueryService(api, sessions)

	seed := sessions.Load(context.Background(), "")
	if err := sessions.Save(context.Background(), seed); err != nil {
		t.Fatalf("save: %v", err)
	}

	// Two requests land at once, each with its own copy of the session.
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sess := sessions.Load(context.Background(), seed.ID)
			if _, err := q.GetHotels(context.Background(), sess); err != nil {
				t.Errorf("err: %v", err)
			}
		}()
	}
	wg.Wait()

	if n := atomic.LoadInt32(&api.hotelCalls); n != 1 {
		t.Fatalf("expected collapsed upstream call, got %d", n)
	}
}

func TestGetBookings_MemoPerHotel(t *testing.T) {
	api := &fakeAPI{bookings: map[int64][]domain.Booking{
		1: {{"bookingID": float64(11), "guest": "Ana"}},
		2: {}, // hotel with zero bookings
	}}
	sessions := newSessions()
	q := app.NewQueryService(api, sessions)
	sess := sessions.Load(context.Background(), "")

	b1, err := q.GetBookings(context.Background(), sess, 1)
	if err != nil || len(b1) != 1 || b1[0]["guest"] != "Ana" {
		t.Fatalf("bookings 1: %+v err=%v", b1, err)
	}
	b2, err := q.GetBookings(context.Background(), sess, 2)
	if err != nil || len(b2) != 0 {
		t.Fatalf("bookings 2: %+v err=%v", b2, err)
	}

	// Repeats are served from the memo, including the empty result.
	if _, err := q.GetBookings(context.Background(), sess, 1); err != nil {
		t.Fatalf("err: %v", err)
	}
	if _, err := q.GetBookings(context.Background(), sess, 2); err != nil {
		t.Fatalf("err: %v", err)
	}
	if n := atomic.LoadInt32(&api.bookingCalls); n != 2 {
		t.Fatalf("expected 2 upstream calls, got %d", n)
	}
}
