// Package progress defines the diagnostic events emitted around fetch
// tier transitions. Events are advisory: emission never affects control
// flow, and a nil emitter is always safe to use.
package progress

import (
	"time"

	"github.com/google/uuid"
)

// Stage denotes the milestone represented by an Event.
type Stage string

// Supported fetch stages.
const (
	StageFetchDirect    Stage = "FETCH_DIRECT"
	StageFetchEscalated Stage = "FETCH_ESCALATED"
	StageFetchRendered  Stage = "FETCH_RENDERED"
	StageFetchFailed    Stage = "FETCH_FAILED"
	StageLazyFetch      Stage = "LAZY_FETCH"
)

// Event captures a single fetch milestone.
type Event struct {
	// TraceID groups all events of one command invocation.
	TraceID uuid.UUID
	// TS is the UTC timestamp recorded by the emitter.
	TS time.Time
	// Stage denotes which fetch milestone occurred.
	Stage Stage
	// URL is the page being fetched; it should not contain credentials.
	URL string
	// Status carries the HTTP status code where one was observed.
	Status int
	// Dur captures the latency of the finished step.
	Dur time.Duration
	// Note attaches low-volume debug context (e.g. error text).
	Note string
}

// Emitter publishes individual events. Implementations must be safe for
// concurrent use and must not block the caller.
type Emitter interface {
	Emit(evt Event)
}
