package channel

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mitchelljustin/tauri-plugin-shell/internal/errors"
	"github.com/mitchelljustin/tauri-plugin-shell/internal/event"
)

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()

	return NewRegistry(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// TestRegister_DistinctHandles tests that every spawn gets its own handle.
func TestRegister_DistinctHandles(t *testing.T) {
	r := newTestRegistry(t)

	a := r.Register(func(event.Event) {})
	b := r.Register(func(event.Event) {})

	require.NotEqual(t, a.ID(), b.ID())
	require.Equal(t, 2, r.Len())
}

// TestSend_DeliversInOrder tests that events reach the subscriber in send
// order.
func TestSend_DeliversInOrder(t *testing.T) {
	r := newTestRegistry(t)

	var got []string

	h := r.Register(func(ev event.Event) { got = append(got, ev.EventType()) })

	require.True(t, h.Send(&event.Stdout{Line: event.TextBuffer("a")}))
	require.True(t, h.Send(&event.Stderr{Line: event.TextBuffer("b")}))
	require.True(t, h.Send(&event.Terminated{}))

	require.Equal(t, []string{"Stdout", "Stderr", "Terminated"}, got)
}

// TestSend_TerminalTearsDown tests that nothing is delivered after the
// terminal event and the handle leaves the registry.
func TestSend_TerminalTearsDown(t *testing.T) {
	r := newTestRegistry(t)

	var got []string

	h := r.Register(func(ev event.Event) { got = append(got, ev.EventType()) })

	require.True(t, h.Send(&event.Terminated{}))
	require.False(t, h.Send(&event.Stdout{Line: event.TextBuffer("late")}))

	require.Equal(t, []string{"Terminated"}, got)
	require.Zero(t, r.Len())
}

// TestSend_ErrorIsTerminal tests that an Error event closes the handle too.
func TestSend_ErrorIsTerminal(t *testing.T) {
	r := newTestRegistry(t)

	h := r.Register(func(event.Event) {})

	require.True(t, h.Send(&event.Error{Message: "boom"}))
	require.False(t, h.Send(&event.Terminated{}))
	require.Zero(t, r.Len())
}

// TestClose_WithoutEvents tests the teardown path for rejected spawns.
func TestClose_WithoutEvents(t *testing.T) {
	r := newTestRegistry(t)

	delivered := false
	h := r.Register(func(event.Event) { delivered = true })

	h.Close()

	require.False(t, h.Send(&event.Stdout{Line: event.TextBuffer("x")}))
	require.False(t, delivered)
	require.Zero(t, r.Len())
}

// TestDeliver_ByID tests wire-style delivery addressed by handle ID.
func TestDeliver_ByID(t *testing.T) {
	r := newTestRegistry(t)

	var got []event.Event

	h := r.Register(func(ev event.Event) { got = append(got, ev) })

	require.NoError(t, r.Deliver(h.ID(), &event.Stdout{Line: event.TextBuffer("x")}))
	require.Len(t, got, 1)

	require.NoError(t, r.Deliver(h.ID(), &event.Terminated{}))
	require.ErrorIs(t, r.Deliver(h.ID(), &event.Stdout{Line: event.TextBuffer("y")}), errors.ErrChannelClosed)
}

// TestDeliver_UnknownChannel tests that an unknown ID is reported closed.
func TestDeliver_UnknownChannel(t *testing.T) {
	r := newTestRegistry(t)

	err := r.Deliver("01JUNKJUNKJUNKJUNKJUNKJUNK", &event.Terminated{})

	require.ErrorIs(t, err, errors.ErrChannelClosed)
}
