// Package event defines the typed events a host pushes over a spawn's
// channel, and the wire form they take when the boundary is a real IPC
// transport.
package event

import (
	"encoding/json"
	"fmt"
)

// Encoding selects how stdout/stderr lines cross the boundary and how
// collected output is folded.
type Encoding string

const (
	// EncodingText delivers lines as decoded UTF-8 strings. This is the default.
	EncodingText Encoding = "text"
	// EncodingRaw delivers lines as raw byte chunks.
	EncodingRaw Encoding = "raw"
)

// Event represents one process lifecycle event.
// Use type assertion or type switch to determine the concrete type.
//
// A spawned process emits any number of Stdout/Stderr events followed by
// exactly one terminal event (Terminated or Error). Per-stream order is
// preserved; there is no ordering guarantee between the two streams.
type Event interface {
	EventType() string
}

// Compile-time verification that all event types implement Event.
var (
	_ Event = (*Stdout)(nil)
	_ Event = (*Stderr)(nil)
	_ Event = (*Error)(nil)
	_ Event = (*Terminated)(nil)
)

// Stdout carries one line of standard output.
type Stdout struct {
	Line Buffer
}

// EventType implements Event.
func (*Stdout) EventType() string { return "Stdout" }

// Stderr carries one line of standard error.
type Stderr struct {
	Line Buffer
}

// EventType implements Event.
func (*Stderr) EventType() string { return "Stderr" }

// Error reports a failure that happened after the process started,
// e.g. an I/O error while pumping its output. It is terminal.
type Error struct {
	Message string
}

// EventType implements Event.
func (*Error) EventType() string { return "Error" }

// Terminated reports process exit. It is terminal.
//
// Code is nil when the process was killed by a signal; Signal is nil when
// the process exited normally.
type Terminated struct {
	Code   *int
	Signal *int
}

// EventType implements Event.
func (*Terminated) EventType() string { return "Terminated" }

// IsTerminal reports whether ev ends the process's event stream.
func IsTerminal(ev Event) bool {
	switch ev.(type) {
	case *Error, *Terminated:
		return true
	default:
		return false
	}
}

// terminatedPayload is the wire shape of a Terminated payload.
type terminatedPayload struct {
	Code   *int `json:"code"`
	Signal *int `json:"signal"`
}

// wireEvent is the adjacently tagged wire form: {"event": ..., "payload": ...}.
type wireEvent struct {
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload"`
}

// MarshalJSON encodes the event in its wire form.
func MarshalJSON(ev Event) ([]byte, error) {
	var payload any

	switch e := ev.(type) {
	case *Stdout:
		payload = e.Line
	case *Stderr:
		payload = e.Line
	case *Error:
		payload = e.Message
	case *Terminated:
		payload = terminatedPayload{Code: e.Code, Signal: e.Signal}
	default:
		return nil, fmt.Errorf("unknown event type %T", ev)
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	return json.Marshal(wireEvent{Event: ev.EventType(), Payload: raw})
}

// UnmarshalJSON decodes an event from its wire form.
func UnmarshalJSON(data []byte) (Event, error) {
	var wire wireEvent
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, fmt.Errorf("decode event envelope: %w", err)
	}

	switch wire.Event {
	case "Stdout":
		var line Buffer
		if err := json.Unmarshal(wire.Payload, &line); err != nil {
			return nil, fmt.Errorf("decode Stdout payload: %w", err)
		}

		return &Stdout{Line: line}, nil

	case "Stderr":
		var line Buffer
		if err := json.Unmarshal(wire.Payload, &line); err != nil {
			return nil, fmt.Errorf("decode Stderr payload: %w", err)
		}

		return &Stderr{Line: line}, nil

	case "Error":
		var msg string
		if err := json.Unmarshal(wire.Payload, &msg); err != nil {
			return nil, fmt.Errorf("decode Error payload: %w", err)
		}

		return &Error{Message: msg}, nil

	case "Terminated":
		var payload terminatedPayload
		if err := json.Unmarshal(wire.Payload, &payload); err != nil {
			return nil, fmt.Errorf("decode Terminated payload: %w", err)
		}

		return &Terminated{Code: payload.Code, Signal: payload.Signal}, nil

	default:
		return nil, fmt.Errorf("unknown event tag %q", wire.Event)
	}
}
