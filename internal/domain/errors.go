package domain

import (
	"errors"
	"fmt"
)

// Failure classes for calls against the remote Suites API. Page handlers and
// the copilot REPL convert these into a short user-facing string via
// UserMessage; the full error goes to the log, never to the user.
var (
	ErrConfigMissing   = errors.New("suites: api endpoint not configured")
	ErrTimeout         = errors.New("suites: request timed out")
	ErrConnection      = errors.New("suites: cannot reach api")
	ErrFormat          = errors.New("suites: unexpected response shape")
	ErrInvalidArgument = errors.New("suites: invalid argument")
)

// StatusError reports a non-2xx response. Body carries a short snippet of the
// response for diagnostics.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("suites: unexpected status %d", e.Code)
	}
	return fmt.Sprintf("suites: unexpected status %d: %s", e.Code, e.Body)
}

// UserMessage maps a client failure onto the one-line string the dashboard
// renders inline. Unknown errors get a generic line so no internal detail
// leaks into a page.
func UserMessage(err error) string {
	var se *StatusError
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrConfigMissing):
		return "API endpoint is missing in configuration."
	case errors.Is(err, ErrTimeout):
		return "Timeout Error: the API took too long to respond."
	case errors.Is(err, ErrConnection):
		return "Connection Error: cannot reach the API."
	case errors.As(err, &se):
		return fmt.Sprintf("API Error: the API returned status %d.", se.Code)
	case errors.Is(err, ErrFormat):
		return "API Error: the API returned an unexpected response."
	case errors.Is(err, ErrInvalidArgument):
		return "Query vector is empty. Cannot proceed with the search."
	default:
		return "Error processing request."
	}
}
