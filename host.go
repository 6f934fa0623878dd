package shell

import (
	"log/slog"

	"github.com/mitchelljustin/tauri-plugin-shell/internal/channel"
	"github.com/mitchelljustin/tauri-plugin-shell/internal/emitter"
	"github.com/mitchelljustin/tauri-plugin-shell/internal/host"
	"github.com/mitchelljustin/tauri-plugin-shell/internal/subprocess"
)

// Host defines the boundary to the privileged service that creates
// processes. Implement this to route spawn, stdin-write, kill and open
// requests anywhere — a remote supervisor, a test double, or the default
// local implementation returned by NewLocalHost.
type Host = host.Host

// SpawnRequest is the immutable snapshot a spawn call sends to the host.
type SpawnRequest = host.SpawnRequest

// SpawnOptions carries the options that cross the boundary with a spawn.
type SpawnOptions = host.Options

// EventChannel is the per-spawn delivery handle the host pushes lifecycle
// events into. It tears itself down after the terminal event.
type EventChannel = channel.Handle

// ChannelRegistry tracks the live event channels of in-flight spawns, for
// hosts that address channels by ID across a wire.
type ChannelRegistry = channel.Registry

// Emitter is the named-event pub/sub primitive backing Command's event
// surface.
type Emitter = emitter.Emitter

// Subscription identifies one listener registration on an Emitter.
type Subscription = emitter.Subscription

// NewLocalHost creates the default host: it enforces sc and spawns OS
// processes in-process. Pass nil for a silent logger.
func NewLocalHost(log *slog.Logger, sc *Scope) Host {
	if log == nil {
		log = NopLogger()
	}

	return subprocess.New(log, sc)
}
