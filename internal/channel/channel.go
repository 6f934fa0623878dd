// Package channel implements the per-spawn event delivery binding: an
// opaque handle, created fresh for each spawn request, that lets the host
// push typed events to exactly one subscriber.
package channel

import (
	"log/slog"
	"sync"

	"github.com/oklog/ulid/v2"

	"github.com/mitchelljustin/tauri-plugin-shell/internal/errors"
	"github.com/mitchelljustin/tauri-plugin-shell/internal/event"
)

// Handle is a one-shot-registered delivery path for one spawn's lifecycle
// events. It is bound to a single subscriber callback and tears itself down
// once a terminal event has been delivered.
type Handle struct {
	id  string
	reg *Registry
	fn  func(event.Event)

	mu     sync.Mutex
	closed bool
}

// ID returns the opaque handle identifier. Hosts on the far side of a wire
// address the handle by this ID via Registry.Deliver.
func (h *Handle) ID() string { return h.id }

// Send dispatches ev to the subscriber. It reports false, without
// dispatching, when the handle has already seen its terminal event: no
// event is delivered after Terminated or Error. Delivering the terminal
// event closes the handle and removes it from its registry.
func (h *Handle) Send(ev event.Event) bool {
	h.mu.Lock()

	if h.closed {
		h.mu.Unlock()

		return false
	}

	terminal := event.IsTerminal(ev)
	if terminal {
		h.closed = true
	}

	h.mu.Unlock()

	h.fn(ev)

	if terminal && h.reg != nil {
		h.reg.release(h.id)
	}

	return true
}

// Close tears the handle down without delivering anything further. Used
// when a spawn request is rejected before any event could flow.
func (h *Handle) Close() {
	h.mu.Lock()
	h.closed = true
	h.mu.Unlock()

	if h.reg != nil {
		h.reg.release(h.id)
	}
}

// Registry tracks the live handles of in-flight spawns, keyed by handle ID.
type Registry struct {
	log *slog.Logger

	mu      sync.Mutex
	handles map[string]*Handle
}

// NewRegistry creates an empty handle registry.
func NewRegistry(log *slog.Logger) *Registry {
	return &Registry{
		log:     log.With("component", "channel_registry"),
		handles: make(map[string]*Handle, 4),
	}
}

// Register binds fn to a fresh handle and returns it.
func (r *Registry) Register(fn func(event.Event)) *Handle {
	h := &Handle{
		id:  ulid.Make().String(),
		reg: r,
		fn:  fn,
	}

	r.mu.Lock()
	r.handles[h.id] = h
	r.mu.Unlock()

	r.log.Debug("Registered event channel", "channel_id", h.id)

	return h
}

// Deliver pushes ev to the handle addressed by id. It returns
// ErrChannelClosed when the handle is unknown or has already seen its
// terminal event.
func (r *Registry) Deliver(id string, ev event.Event) error {
	r.mu.Lock()
	h, ok := r.handles[id]
	r.mu.Unlock()

	if !ok {
		r.log.Warn("Dropped event for unknown channel", "channel_id", id, "event", ev.EventType())

		return errors.ErrChannelClosed
	}

	if !h.Send(ev) {
		return errors.ErrChannelClosed
	}

	return nil
}

// Len reports how many handles are live.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.handles)
}

func (r *Registry) release(id string) {
	r.mu.Lock()
	delete(r.handles, id)
	r.mu.Unlock()

	r.log.Debug("Released event channel", "channel_id", id)
}
