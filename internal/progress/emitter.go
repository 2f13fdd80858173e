package progress

import (
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// LogEmitter writes each event as a structured zap log line. It carries
// the invocation trace ID so a nil-checked, ready-to-use emitter can be
// handed to every component.
type LogEmitter struct {
	logger  *zap.Logger
	traceID uuid.UUID
}

// NewLogEmitter wires a zap logger to the Emitter interface under a fresh
// trace ID.
func NewLogEmitter(logger *zap.Logger) *LogEmitter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogEmitter{logger: logger, traceID: uuid.New()}
}

// TraceID returns the identifier stamped on every emitted event.
func (e *LogEmitter) TraceID() uuid.UUID {
	if e == nil {
		return uuid.Nil
	}
	return e.traceID
}

// Emit logs the event using structured fields. A nil emitter discards.
func (e *LogEmitter) Emit(evt Event) {
	if e == nil {
		return
	}
	if evt.TraceID == uuid.Nil {
		evt.TraceID = e.traceID
	}
	if evt.TS.IsZero() {
		evt.TS = time.Now().UTC()
	}
	e.logger.Info("fetch progress",
		zap.String("trace_id", evt.TraceID.String()),
		zap.Time("ts", evt.TS),
		zap.String("stage", string(evt.Stage)),
		zap.String("url", evt.URL),
		zap.Int("status", evt.Status),
		zap.Duration("dur", evt.Dur),
		zap.String("note", evt.Note),
	)
}

// Nop discards every event; used when no diagnostics were requested.
type Nop struct{}

// Emit implements Emitter.
func (Nop) Emit(Event) {}
