package fetch

import (
	"errors"
	"fmt"
)

// ErrSessionExpired signals stale credentials on the direct tier. It is
// never escalated: the session cookie is the problem, not the bot defense.
var ErrSessionExpired = errors.New("session expired (401)")

// errChallenged is the internal signal that the direct tier hit the
// anti-bot challenge and the solver tier should take over.
var errChallenged = errors.New("anti-bot challenge (403)")

// FetchFailedError reports a definitive direct-tier failure: any HTTP
// error other than 401/403, or a transport failure. It does not escalate.
type FetchFailedError struct {
	Status  int
	Snippet string
	Err     error
}

func (e *FetchFailedError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("direct fetch failed: %v", e.Err)
	}
	return fmt.Sprintf("direct fetch returned %d: %s", e.Status, e.Snippet)
}

func (e *FetchFailedError) Unwrap() error { return e.Err }

// SolverUnavailableError reports that the rendering solver could not be
// reached at all. This is terminal: the direct tier is not retried.
type SolverUnavailableError struct {
	URL string
	Err error
}

func (e *SolverUnavailableError) Error() string {
	return fmt.Sprintf("cannot connect to rendering solver at %s: %v", e.URL, e.Err)
}

func (e *SolverUnavailableError) Unwrap() error { return e.Err }

// SolverError reports that the solver was reachable but could not produce
// a page: a non-success envelope or an inner solution status >= 400.
type SolverError struct {
	Message string
	Status  int
}

func (e *SolverError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("rendering solver got %d from target", e.Status)
	}
	return fmt.Sprintf("rendering solver error: %s", e.Message)
}

// Hint returns a user-facing remediation hint for the known error kinds,
// or "" when no specific advice applies.
func Hint(err error) string {
	var unavailable *SolverUnavailableError
	switch {
	case errors.Is(err, ErrSessionExpired):
		return "Your session cookies have expired. Run: allegro login"
	case errors.As(err, &unavailable):
		return "Direct fetch was blocked by the anti-bot layer (403) and the rendering solver is not running.\n" +
			"Start it with:\n" +
			"  docker run -d --name flaresolverr -p 8191:8191 ghcr.io/flaresolverr/flaresolverr:latest\n" +
			"Or refresh your cookies:\n" +
			"  allegro login"
	default:
		return ""
	}
}
