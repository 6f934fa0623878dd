package shell

import "github.com/mitchelljustin/tauri-plugin-shell/internal/event"

// Re-export event types from the internal package. Hosts produce these;
// the façade consumes them.

// Event represents one process lifecycle event.
type Event = event.Event

// Stdout carries one line of standard output.
type Stdout = event.Stdout

// Stderr carries one line of standard error.
type Stderr = event.Stderr

// ErrorEvent reports a failure after the process started. It is terminal.
type ErrorEvent = event.Error

// Terminated reports process exit. It is terminal.
type Terminated = event.Terminated

// Buffer is one chunk of process I/O, either decoded text or raw bytes.
type Buffer = event.Buffer

// Encoding selects how stdout/stderr lines are delivered and folded.
type Encoding = event.Encoding

// Supported encodings. Text is the default.
const (
	EncodingText = event.EncodingText
	EncodingRaw  = event.EncodingRaw
)

// TextBuffer creates a Buffer holding decoded text.
func TextBuffer(s string) Buffer { return event.TextBuffer(s) }

// RawBuffer creates a Buffer holding raw bytes.
func RawBuffer(b []byte) Buffer { return event.RawBuffer(b) }

// ParseEncoding validates an encoding label. An empty label means text;
// anything other than "text" or "raw" is an *UnknownEncodingError.
func ParseEncoding(label string) (Encoding, error) {
	switch label {
	case "", string(EncodingText):
		return EncodingText, nil
	case string(EncodingRaw):
		return EncodingRaw, nil
	default:
		return "", &UnknownEncodingError{Label: label}
	}
}

// MarshalEvent encodes an event in its wire form,
// {"event": <tag>, "payload": <payload>}, with raw buffers as ordered
// integer arrays.
func MarshalEvent(ev Event) ([]byte, error) { return event.MarshalJSON(ev) }

// UnmarshalEvent decodes an event from its wire form.
func UnmarshalEvent(data []byte) (Event, error) { return event.UnmarshalJSON(data) }
