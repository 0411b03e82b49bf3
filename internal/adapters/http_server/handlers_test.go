package httpserver_test

import (
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	httpserver "github.com/cjpark-sapcsa/AIdesignwin-contosohotels/internal/adapters/http_server"
	"github.com/cjpark-sapcsa/AIdesignwin-contosohotels/internal/adapters/memory"
	"github.com/cjpark-sapcsa/AIdesignwin-contosohotels/internal/adapters/suites"
	"github.com/cjpark-sapcsa/AIdesignwin-contosohotels/internal/app"
)

type apiCounters struct {
	hotels int32
}

// fakeSuitesAPI stands in for the remote hotel-management API.
func fakeSuitesAPI(t *testing.T) (*httptest.Server, *apiCounters) {
	t.Helper()
	n := &apiCounters{}
	mux := http.NewServeMux()
	mux.HandleFunc("/Hotels", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&n.hotels, 1)
		_, _ = w.Write([]byte(`[{"hotelID":1,"hotelName":"Grand"},{"hotelID":2,"hotelName":"Plaza"}]`))
	})
	mux.HandleFunc("/Hotels/1/Bookings", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"bookingID":11,"guest":"Ana","checkIn":"2026-09-01"},{"bookingID":12,"guest":"Luis","checkIn":"2026-09-03"}]`))
	})
	mux.HandleFunc("/Hotels/2/Bookings", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	})
	mux.HandleFunc("/Chat", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"message":"There are 2 bookings."}`))
	})
	mux.HandleFunc("/MaintenanceCopilotChat", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"message":"1. Check the breaker\\n2. Call facilities"}`))
	})
	mux.HandleFunc("/Vectorize", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[0.1,0.9]`))
	})
	mux.HandleFunc("/VectorSearch", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"details":"AC broken in room 101","score":0.91}]`))
	})
	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)
	return ts, n
}

// newDashboard wires the real stack against the given upstream.
func newDashboard(t *testing.T, upstream string) *httptest.Server {
	t.Helper()
	cl := suites.New(upstream, suites.Options{RPS: 100})
	sessions := app.NewSessions(memory.New(), time.Hour)
	srv := httpserver.New()
	srv.MountHandlers(&httpserver.Handlers{
		Q:        app.NewQueryService(cl, sessions),
		Chat:     app.NewChatService(cl, sessions),
		Vector:   app.NewVectorService(cl),
		Sessions: sessions,
	})
	ts := httptest.NewServer(srv.Mux())
	t.Cleanup(ts.Close)
	return ts
}

func newClient(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookiejar: %v", err)
	}
	return &http.Client{Jar: jar}
}

func get(t *testing.T, c *http.Client, url string) (int, string) {
	t.Helper()
	resp, err := c.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, string(b)
}

func postForm(t *testing.T, c *http.Client, url string, form url.Values) (int, string) {
	t.Helper()
	resp, err := c.PostForm(url, form)
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, string(b)
}

func TestBookings_SelectorAndTable(t *testing.T) {
	api, n := fakeSuitesAPI(t)
	dash := newDashboard(t, api.URL)
	c := newClient(t)

	status, body := get(t, c, dash.URL+"/bookings")
	if status != http.StatusOK {
		t.Fatalf("status %d", status)
	}
	for _, want := range []string{"Grand", "Plaza", "Ana", "Luis", "bookingID"} {
		if !strings.Contains(body, want) {
			t.Fatalf("page missing %q", want)
		}
	}
	if strings.Contains(body, "No bookings found for this hotel.") {
		t.Fatalf("unexpected no-bookings state")
	}

	// A second visit in the same session is served from the memo.
	get(t, c, dash.URL+"/bookings")
	if got := atomic.LoadInt32(&n.hotels); got != 1 {
		t.Fatalf("expected 1 upstream hotels call, got %d", got)
	}
}

func TestBookings_EmptyListState(t *testing.T) {
	api, _ := fakeSuitesAPI(t)
	dash := newDashboard(t, api.URL)

	_, body := get(t, newClient(t), dash.URL+"/bookings?hotel=2")
	if !strings.Contains(body, "No bookings found for this hotel.") {
		t.Fatalf("missing no-bookings state")
	}
	if strings.Contains(body, "Ana") {
		t.Fatalf("hotel 1 bookings leaked into hotel 2 view")
	}
}

func TestBookings_AskFlow(t *testing.T) {
	api, _ := fakeSuitesAPI(t)
	dash := newDashboard(t, api.URL)
	c := newClient(t)

	status, body := postForm(t, c, dash.URL+"/bookings/ask", url.Values{
		"hotel":    {"1"},
		"question": {"how many bookings are there?"},
	})
	if status != http.StatusOK {
		t.Fatalf("status %d", status)
	}
	if !strings.Contains(body, "how many bookings are there?") {
		t.Fatalf("user turn missing from thread")
	}
	if !strings.Contains(body, "There are 2 bookings.") {
		t.Fatalf("assistant turn missing from thread")
	}
}

func TestBookings_EmptyQuestionWarns(t *testing.T) {
	api, _ := fakeSuitesAPI(t)
	dash := newDashboard(t, api.URL)

	_, body := postForm(t, newClient(t), dash.URL+"/bookings/ask", url.Values{
		"hotel":    {"1"},
		"question": {"   "},
	})
	if !strings.Contains(body, "Please enter a question.") {
		t.Fatalf("missing empty-question warning")
	}
}

func TestCopilot_FormattedTranscript(t *testing.T) {
	api, _ := fakeSuitesAPI(t)
	dash := newDashboard(t, api.URL)
	c := newClient(t)

	status, body := postForm(t, c, dash.URL+"/copilot", url.Values{"message": {"no power in room 101"}})
	if status != http.StatusOK {
		t.Fatalf("status %d", status)
	}
	if !strings.Contains(body, "no power in room 101") {
		t.Fatalf("user turn missing")
	}
	// The copilot reply renders formatted: numbered steps become bullets.
	if !strings.Contains(body, "- Check the breaker") || !strings.Contains(body, "- Call facilities") {
		t.Fatalf("reply not formatted: %s", body)
	}
}

func TestCopilot_UpstreamFailureRendersInline(t *testing.T) {
	dead := httptest.NewServer(http.NotFoundHandler())
	base := dead.URL
	dead.Close()

	dash := newDashboard(t, base)
	c := newClient(t)

	status, body := postForm(t, c, dash.URL+"/copilot", url.Values{"message": {"hello?"}})
	if status != http.StatusOK {
		t.Fatalf("upstream failure must not break the page, got %d", status)
	}
	if !strings.Contains(body, "Connection Error: cannot reach the API.") {
		t.Fatalf("missing inline error, body: %s", body)
	}
	if !strings.Contains(body, "hello?") {
		t.Fatalf("user turn should survive the failure")
	}
}

func TestSessionReset_ClearsTranscriptAndMemo(t *testing.T) {
	api, n := fakeSuitesAPI(t)
	dash := newDashboard(t, api.URL)
	c := newClient(t)

	postForm(t, c, dash.URL+"/copilot", url.Values{"message": {"first message"}})
	get(t, c, dash.URL+"/bookings")

	status, _ := postForm(t, c, dash.URL+"/session/reset", nil)
	if status != http.StatusOK {
		t.Fatalf("reset status %d", status)
	}

	_, body := get(t, c, dash.URL+"/copilot")
	if strings.Contains(body, "first message") {
		t.Fatalf("transcript survived reset")
	}
	if !strings.Contains(body, "No messages yet.") {
		t.Fatalf("expected empty transcript state")
	}

	// The hotels memo went with the session: next visit refetches.
	get(t, c, dash.URL+"/bookings")
	if got := atomic.LoadInt32(&n.hotels); got != 2 {
		t.Fatalf("expected refetch after reset, got %d calls", got)
	}
}

func TestVectorSearch_Results(t *testing.T) {
	api, _ := fakeSuitesAPI(t)
	dash := newDashboard(t, api.URL)

	status, body := postForm(t, newClient(t), dash.URL+"/vector-search", url.Values{
		"query":          {"air conditioning broken"},
		"max_results":    {"5"},
		"min_similarity": {"0.8"},
	})
	if status != http.StatusOK {
		t.Fatalf("status %d", status)
	}
	if !strings.Contains(body, "AC broken in room 101") || !strings.Contains(body, "0.91") {
		t.Fatalf("results table missing, body: %s", body)
	}
}

func TestVectorSearch_EmptyQueryWarns(t *testing.T) {
	api, _ := fakeSuitesAPI(t)
	dash := newDashboard(t, api.URL)

	_, body := postForm(t, newClient(t), dash.URL+"/vector-search", url.Values{"query": {"  "}})
	if !strings.Contains(body, "Please enter a valid query.") {
		t.Fatalf("missing empty-query warning")
	}
}

func TestBookings_UpstreamErrorRendersInline(t *testing.T) {
	broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	t.Cleanup(broken.Close)

	dash := newDashboard(t, broken.URL)
	status, body := get(t, newClient(t), dash.URL+"/bookings")
	if status != http.StatusOK {
		t.Fatalf("page must not 500 on upstream failure, got %d", status)
	}
	if !strings.Contains(body, "API Error: the API returned status 500.") {
		t.Fatalf("missing inline status error, body: %s", body)
	}
}
