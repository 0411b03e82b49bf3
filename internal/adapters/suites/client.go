// internal/adapters/suites/client.go
package suites

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/cjpark-sapcsa/AIdesignwin-contosohotels/internal/adapters/observability"
	"github.com/cjpark-sapcsa/AIdesignwin-contosohotels/internal/domain"
)

// Options tunes the client. Zero values fall back to the defaults below.
type Options struct {
	Timeout        time.Duration // per-call budget, default 30s
	CopilotTimeout time.Duration // copilot answers take longer, default 60s
	RPS            int           // client-side rate limit, default 5
	InsecureTLS    bool          // skip certificate checks; opt-in for self-signed endpoints only
	LegacyFormChat bool          // deprecated: POST /Chat as form data instead of JSON
}

type Client struct {
	base           string
	hc             *http.Client
	rl             *rate.Limiter
	timeout        time.Duration
	copilotTimeout time.Duration
	legacyFormChat bool
}

// New builds a client for the given normalized base URL. base may be empty
// when the endpoint is not configured: every call then fails with
// domain.ErrConfigMissing, which keeps the failure at page level instead of
// taking the process down.
func New(base string, o Options) *Client {
	if o.Timeout <= 0 {
		o.Timeout = 30 * time.Second
	}
	if o.CopilotTimeout <= 0 {
		o.CopilotTimeout = 60 * time.Second
	}
	if o.RPS <= 0 {
		o.RPS = 5
	}
	hc := &http.Client{}
	if o.InsecureTLS {
		// explicit opt-in for local/self-signed deployments
		t := http.DefaultTransport.(*http.Transport).Clone()
		t.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
		hc.Transport = t
	}
	return &Client{
		base:           strings.TrimRight(base, "/"),
		hc:             hc,
		rl:             rate.NewLimiter(rate.Limit(o.RPS), o.RPS),
		timeout:        o.Timeout,
		copilotTimeout: o.CopilotTimeout,
		legacyFormChat: o.LegacyFormChat,
	}
}

// ---- Hotels & bookings ----

func (c *Client) ListHotels(ctx context.Context) ([]map[string]any, error) {
	body, err := c.do(ctx, http.MethodGet, "/Hotels", nil, "", nil, c.timeout)
	if err != nil {
		return nil, err
	}
	var out []map[string]any
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, formatErr("/Hotels", body)
	}
	return out, nil
}

func (c *Client) ListBookings(ctx context.Context, hotelID int64) ([]domain.Booking, error) {
	p := fmt.Sprintf("/Hotels/%d/Bookings", hotelID)
	body, err := c.do(ctx, http.MethodGet, p, nil, "", nil, c.timeout)
	if err != nil {
		return nil, err
	}
	var out []domain.Booking
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, formatErr(p, body)
	}
	return out, nil
}

// ---- Chat ----

type chatRequest struct {
	Message string `json:"message"`
}

// Chat sends a bookings question to /Chat. JSON is the canonical encoding;
// the legacy deployment still wants form data (Options.LegacyFormChat).
func (c *Client) Chat(ctx context.Context, message string) (string, error) {
	var (
		body []byte
		err  error
	)
	if c.legacyFormChat {
		form := url.Values{"message": {message}}
		body, err = c.do(ctx, http.MethodPost, "/Chat", nil,
			"application/x-www-form-urlencoded", []byte(form.Encode()), c.timeout)
	} else {
		body, err = c.postJSON(ctx, "/Chat", chatRequest{Message: message}, c.timeout)
	}
	if err != nil {
		return "", err
	}
	return unwrapChat("/Chat", body)
}

func (c *Client) CopilotChat(ctx context.Context, message string) (string, error) {
	body, err := c.postJSON(ctx, "/MaintenanceCopilotChat", chatRequest{Message: message}, c.copilotTimeout)
	if err != nil {
		return "", err
	}
	return unwrapChat("/MaintenanceCopilotChat", body)
}

// unwrapChat peels the reply out of a chat response: a JSON object with a
// string "message" wins, any other valid JSON is a shape error (payload
// echoed for diagnostics), and a non-JSON body is returned as plain text.
func unwrapChat(endpoint string, body []byte) (string, error) {
	if !json.Valid(body) {
		return string(body), nil
	}
	var v any
	if err := json.Unmarshal(body, &v); err != nil {
		return string(body), nil
	}
	if m, ok := v.(map[string]any); ok {
		if s, ok := m["message"].(string); ok {
			return s, nil
		}
	}
	return "", formatErr(endpoint, body)
}

// ---- Vector pipeline ----

func (c *Client) Vectorize(ctx context.Context, text string) ([]float64, error) {
	q := url.Values{"text": {text}}
	body, err := c.do(ctx, http.MethodGet, "/Vectorize", q, "", nil, c.timeout)
	if err != nil {
		return nil, err
	}
	var vec []float64
	if err := json.Unmarshal(body, &vec); err != nil {
		return nil, formatErr("/Vectorize", body)
	}
	if vec == nil { // JSON null decodes without error
		return nil, formatErr("/Vectorize", body)
	}
	return vec, nil
}

type vectorSearchRequest struct {
	QueryVector            []float64 `json:"queryVector"`
	MaxResults             int       `json:"maxResults"`
	MinimumSimilarityScore float64   `json:"minimumSimilarityScore"`
}

// VectorSearch submits an embedding for ranking. maxResults 0 means "no
// limit" and is interpreted server-side. The embedding must be non-empty;
// rounding (6 decimals per component, 2 for the score) happens here so the
// wire payload is stable.
func (c *Client) VectorSearch(ctx context.Context, vec []float64, maxResults int, minSimilarity float64) ([]domain.SearchResult, error) {
	if len(vec) == 0 {
		return nil, fmt.Errorf("%w: empty query vector", domain.ErrInvalidArgument)
	}
	rounded := make([]float64, len(vec))
	for i, v := range vec {
		rounded[i] = round(v, 6)
	}
	req := vectorSearchRequest{
		QueryVector:            rounded,
		MaxResults:             maxResults,
		MinimumSimilarityScore: round(minSimilarity, 2),
	}
	body, err := c.postJSON(ctx, "/VectorSearch", req, c.timeout)
	if err != nil {
		return nil, err
	}
	var out []domain.SearchResult
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, formatErr("/VectorSearch", body)
	}
	return out, nil
}

func round(v float64, places int) float64 {
	p := math.Pow10(places)
	return math.Round(v*p) / p
}

// ---- Internals ----

func (c *Client) postJSON(ctx context.Context, path string, payload any, timeout time.Duration) ([]byte, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return c.do(ctx, http.MethodPost, path, nil, "application/json", b, timeout)
}

const maxBody = 8 << 20 // embeddings and result sets can be large

// do issues exactly one request and classifies the outcome into the domain
// error taxonomy. Deliberately no retry: the dashboard surfaces the failure
// and the user decides whether to try again.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, contentType string, body []byte, timeout time.Duration) ([]byte, error) {
	if c.base == "" {
		return nil, domain.ErrConfigMissing
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := c.rl.Wait(ctx); err != nil {
		return nil, classify(err)
	}

	u := c.base + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	var rdr io.Reader
	if body != nil {
		rdr = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, rdr)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "suites-dashboard/1.0")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	start := time.Now()
	resp, err := c.hc.Do(req)
	if err != nil {
		cerr := classify(err)
		observability.ObserveExternal("api", path, 0, time.Since(start), cerr)
		return nil, cerr
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// read a small error body for diagnostics
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		serr := &domain.StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(b))}
		observability.ObserveExternal("api", path, resp.StatusCode, time.Since(start), serr)
		return nil, serr
	}

	b, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		cerr := classify(err)
		observability.ObserveExternal("api", path, resp.StatusCode, time.Since(start), cerr)
		return nil, cerr
	}
	observability.ObserveExternal("api", path, resp.StatusCode, time.Since(start), nil)
	return b, nil
}

// classify maps transport-level failures onto the domain sentinels. Context
// cancellation passes through untouched so shutdown is not reported as an
// API failure.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", domain.ErrTimeout, err)
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return fmt.Errorf("%w: %v", domain.ErrTimeout, err)
	}
	return fmt.Errorf("%w: %v", domain.ErrConnection, err)
}

// formatErr reports an unexpected payload shape, echoing a snippet of the
// raw payload for diagnostics.
func formatErr(endpoint string, body []byte) error {
	return fmt.Errorf("%w from %s: %s", domain.ErrFormat, endpoint, snippet(body))
}

func snippet(b []byte) string {
	s := strings.TrimSpace(string(b))
	if s == "" {
		return "<empty>"
	}
	if len(s) > 256 {
		s = s[:256] + "..."
	}
	return s
}
