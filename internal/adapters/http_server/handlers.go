// internal/adapters/http_server/handlers.go
package httpserver

import (
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/cjpark-sapcsa/AIdesignwin-contosohotels/internal/app"
	"github.com/cjpark-sapcsa/AIdesignwin-contosohotels/internal/domain"
)

type Handlers struct {
	Q        *app.QueryService
	Chat     *app.ChatService
	Vector   *app.VectorService
	Sessions *app.Sessions
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })

	// Pages share the session middleware; /healthz and /metrics stay outside.
	s.mux.Group(func(r chi.Router) {
		r.Use(WithSession(h.Sessions))
		r.Get("/", h.index)
		r.Get("/bookings", h.bookings)
		r.Post("/bookings/ask", h.bookingsAsk)
		r.Get("/vector-search", h.vectorSearch)
		r.Post("/vector-search", h.vectorSearch)
		r.Get("/copilot", h.copilot)
		r.Post("/copilot", h.copilotSend)
		r.Post("/session/reset", h.sessionReset)
	})
}

// ---- pages ----

func (h *Handlers) index(w http.ResponseWriter, r *http.Request) {
	render(w, "index", struct{ Title string }{"Dashboard"})
}

type bookingsData struct {
	Title         string
	Error         string
	Warning       string
	Hotels        []domain.Hotel
	Selected      int64
	Columns       []string
	Rows          [][]string
	NoBookings    bool
	BookingsError string
	Thread        []domain.ChatMessage
}

func (h *Handlers) bookings(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	data := bookingsData{Title: "Bookings", Thread: sess.BookingsChat}
	if r.URL.Query().Get("warn") == "empty-question" {
		data.Warning = "Please enter a question."
	}

	hotels, err := h.Q.GetHotels(r.Context(), sess)
	switch {
	case err != nil:
		data.Error = domain.UserMessage(err)
	case len(hotels) == 0:
		data.Warning = "No hotels found. Check API configuration."
	default:
		data.Hotels = hotels
		data.Selected = selectedHotel(r.URL.Query().Get("hotel"), hotels)
		bookings, berr := h.Q.GetBookings(r.Context(), sess, data.Selected)
		switch {
		case berr != nil:
			data.BookingsError = domain.UserMessage(berr)
		case len(bookings) == 0:
			data.NoBookings = true
		default:
			data.Columns, data.Rows = tableize(bookings)
		}
	}
	render(w, "bookings", data)
}

// selectedHotel maps the ?hotel= parameter onto a known hotel, falling back
// to the first entry the way a selector defaults to its first option.
func selectedHotel(param string, hotels []domain.Hotel) int64 {
	if id, err := strconv.ParseInt(param, 10, 64); err == nil {
		for _, h := range hotels {
			if h.ID == id {
				return id
			}
		}
	}
	return hotels[0].ID
}

func (h *Handlers) bookingsAsk(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	target := "/bookings"
	if hotel := r.PostFormValue("hotel"); hotel != "" {
		target += "?hotel=" + url.QueryEscape(hotel)
	}

	question := strings.TrimSpace(r.PostFormValue("question"))
	if question == "" {
		sep := "?"
		if strings.Contains(target, "?") {
			sep = "&"
		}
		http.Redirect(w, r, target+sep+"warn=empty-question", http.StatusSeeOther)
		return
	}

	h.Chat.Ask(r.Context(), sess, question)
	http.Redirect(w, r, target, http.StatusSeeOther)
}

type vectorData struct {
	Title         string
	Error         string
	Warning       string
	Query         string
	MaxResults    int
	MinSimilarity float64
	Columns       []string
	Rows          [][]string
}

func (h *Handlers) vectorSearch(w http.ResponseWriter, r *http.Request) {
	data := vectorData{Title: "Vector Search", MaxResults: 5, MinSimilarity: 0.8}

	if r.Method == http.MethodPost {
		data.Query = strings.TrimSpace(r.PostFormValue("query"))
		if n, err := strconv.Atoi(r.PostFormValue("max_results")); err == nil && n >= 0 {
			data.MaxResults = n
		}
		if f, err := strconv.ParseFloat(r.PostFormValue("min_similarity"), 64); err == nil && f >= 0 && f <= 1 {
			data.MinSimilarity = f
		}

		if data.Query == "" {
			data.Warning = "Please enter a valid query."
		} else {
			results, err := h.Vector.Search(r.Context(), data.Query, data.MaxResults, data.MinSimilarity)
			switch {
			case err != nil:
				data.Error = domain.UserMessage(err)
			case len(results) == 0:
				data.Warning = "No results returned from the search."
			default:
				data.Columns, data.Rows = tableize(results)
			}
		}
	}
	render(w, "vector", data)
}

type copilotData struct {
	Title  string
	Thread []domain.ChatMessage
}

func (h *Handlers) copilot(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	render(w, "copilot", copilotData{Title: "Maintenance Copilot", Thread: sess.CopilotChat})
}

func (h *Handlers) copilotSend(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	if msg := strings.TrimSpace(r.PostFormValue("message")); msg != "" {
		h.Chat.AskCopilot(r.Context(), sess, msg)
	}
	http.Redirect(w, r, "/copilot", http.StatusSeeOther)
}

func (h *Handlers) sessionReset(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	if err := h.Sessions.End(r.Context(), sess.ID); err != nil {
		log.Warn().Err(err).Str("session", sess.ID).Msg("session reset failed")
	}

	// The old session and its memoized results are gone; hand out a fresh one
	// right away so the next render does not have to.
	fresh := h.Sessions.Load(r.Context(), "")
	if err := h.Sessions.Save(r.Context(), fresh); err != nil {
		log.Warn().Err(err).Str("session", fresh.ID).Msg("persisting fresh session failed")
	}
	setSessionCookie(w, fresh.ID)

	// Send the visitor back to the page they reset from, path only.
	target := "/"
	if ref, err := url.Parse(r.Referer()); err == nil && ref.Path != "" {
		target = ref.Path
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// ---- table rendering ----

// tableize flattens opaque records into a deterministic table: columns are
// the sorted union of keys, cells are display strings.
func tableize[T ~map[string]any](rows []T) ([]string, [][]string) {
	colSet := map[string]struct{}{}
	for _, r := range rows {
		for k := range r {
			colSet[k] = struct{}{}
		}
	}
	cols := make([]string, 0, len(colSet))
	for k := range colSet {
		cols = append(cols, k)
	}
	sort.Strings(cols)

	out := make([][]string, 0, len(rows))
	for _, r := range rows {
		cells := make([]string, len(cols))
		for i, c := range cols {
			cells[i] = cellString(r[c])
		}
		out = append(out, cells)
	}
	return cols, out
}

func cellString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case float64:
		// JSON numbers decode as float64; render integers without a decimal.
		if t == math.Trunc(t) && math.Abs(t) < 1e15 {
			return strconv.FormatInt(int64(t), 10)
		}
		return strconv.FormatFloat(t, 'g', -1, 64)
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(b)
	}
}
