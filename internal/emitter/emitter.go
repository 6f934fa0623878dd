// Package emitter provides a minimal named-event pub/sub primitive with
// ordered, synchronous fan-out.
//
// Fan-out iterates the live listener slice rather than a snapshot. A Once
// listener removes itself before invoking its callback, so self-removal
// during fan-out is supported; any other mutation from inside a listener is
// not guaranteed to affect the in-flight fan-out. This mirrors the dispatch
// semantics of the JavaScript guest bindings this package replaces and is
// intentional, not a defect.
package emitter

import "sync"

// Listener receives an event payload during fan-out.
type Listener func(payload any)

// Subscription identifies one registration. Registering the same function
// twice yields two subscriptions and the function fires once per
// registration.
type Subscription struct {
	fn   Listener
	once bool
}

// Emitter is a named-event pub/sub registry. The zero value is not usable;
// call New.
type Emitter struct {
	mu        sync.Mutex
	listeners map[string][]*Subscription
}

// New creates an empty emitter.
func New() *Emitter {
	return &Emitter{listeners: make(map[string][]*Subscription, 4)}
}

// On appends a listener for name and returns its subscription.
func (e *Emitter) On(name string, fn Listener) *Subscription {
	return e.add(name, fn, false, false)
}

// Once appends a listener that is removed from the registry before its
// first invocation, guaranteeing at most one call even when the event is
// re-emitted synchronously from within another listener.
func (e *Emitter) Once(name string, fn Listener) *Subscription {
	return e.add(name, fn, true, false)
}

// Prepend inserts a listener at the front of name's registry.
func (e *Emitter) Prepend(name string, fn Listener) *Subscription {
	return e.add(name, fn, false, true)
}

// PrependOnce inserts a one-shot listener at the front of name's registry.
func (e *Emitter) PrependOnce(name string, fn Listener) *Subscription {
	return e.add(name, fn, true, true)
}

func (e *Emitter) add(name string, fn Listener, once, front bool) *Subscription {
	sub := &Subscription{fn: fn, once: once}

	e.mu.Lock()
	defer e.mu.Unlock()

	if front {
		e.listeners[name] = append([]*Subscription{sub}, e.listeners[name]...)
	} else {
		e.listeners[name] = append(e.listeners[name], sub)
	}

	return sub
}

// Off removes every occurrence of sub from name's registry. Removing a
// subscription that was never registered, or was already removed, is a
// no-op.
func (e *Emitter) Off(name string, sub *Subscription) {
	e.mu.Lock()
	defer e.mu.Unlock()

	subs := e.listeners[name]
	kept := subs[:0]

	for _, s := range subs {
		if s != sub {
			kept = append(kept, s)
		}
	}

	if len(kept) == 0 {
		delete(e.listeners, name)
	} else {
		e.listeners[name] = kept
	}
}

// RemoveAllListeners clears one name's registry, or every registry when no
// name is given.
func (e *Emitter) RemoveAllListeners(name ...string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if len(name) == 0 {
		e.listeners = make(map[string][]*Subscription, 4)

		return
	}

	for _, n := range name {
		delete(e.listeners, n)
	}
}

// ListenerCount reports how many listeners are registered for name.
func (e *Emitter) ListenerCount(name string) int {
	e.mu.Lock()
	defer e.mu.Unlock()

	return len(e.listeners[name])
}

// Emit invokes every listener currently registered for name, in
// registration order, passing payload. It reports whether any listener was
// registered when the call started.
//
// The loop re-reads the live registry on every step, so a Once listener
// that was removed (directly or via a reentrant Emit) is never invoked
// again. A removal at or before the cursor shifts the remaining entries
// left without adjusting the cursor, so the entry that moves into the
// removed slot is skipped for the rest of that fan-out. This matches the
// live-array iteration of the bindings this package replaces.
func (e *Emitter) Emit(name string, payload any) bool {
	e.mu.Lock()

	had := len(e.listeners[name]) > 0

	for i := 0; i < len(e.listeners[name]); i++ {
		sub := e.listeners[name][i]
		if sub.once {
			// Remove before invoking so a reentrant Emit cannot fire it twice.
			e.removeLocked(name, sub)
		}

		e.mu.Unlock()
		sub.fn(payload)
		e.mu.Lock()
	}

	e.mu.Unlock()

	return had
}

// removeLocked removes sub from name's registry. Caller holds e.mu.
func (e *Emitter) removeLocked(name string, sub *Subscription) {
	subs := e.listeners[name]
	kept := subs[:0]

	for _, s := range subs {
		if s != sub {
			kept = append(kept, s)
		}
	}

	if len(kept) == 0 {
		delete(e.listeners, name)
	} else {
		e.listeners[name] = kept
	}
}
