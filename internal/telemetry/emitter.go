// Package telemetry records operational events from the cache subsystem.
package telemetry

import (
	"context"
	"log"
	"time"
)

// Severity describes the telemetry severity level.
type Severity string

const (
	SeverityInfo  Severity = "INFO"
	SeverityWarn  Severity = "WARN"
	SeverityError Severity = "ERROR"
)

// Event is one operational telemetry event.
type Event struct {
	Component string
	Action    string
	Detail    string
	Severity  Severity
	Timestamp time.Time
}

// Sink receives telemetry events.
type Sink interface {
	Record(ctx context.Context, evt Event) error
}

// Emitter records operational telemetry events.
type Emitter struct {
	sink  Sink
	clock func() time.Time
}

// NewEmitter creates a new telemetry emitter.
func NewEmitter(sink Sink) *Emitter {
	return &Emitter{sink: sink, clock: time.Now}
}

// Emit records a telemetry event. It is a no-op when the sink is nil.
func (e *Emitter) Emit(ctx context.Context, evt Event) error {
	if e == nil || e.sink == nil {
		return nil
	}
	if evt.Severity == "" {
		evt.Severity = SeverityInfo
	}
	if evt.Timestamp.IsZero() {
		if e.clock == nil {
			evt.Timestamp = time.Now().UTC()
		} else {
			evt.Timestamp = e.clock().UTC()
		}
	}
	return e.sink.Record(ctx, evt)
}

// LogSink writes telemetry events to the process log.
type LogSink struct{}

// Record implements Sink.
func (LogSink) Record(_ context.Context, evt Event) error {
	log.Printf("%s %s/%s: %s", evt.Severity, evt.Component, evt.Action, evt.Detail)
	return nil
}
