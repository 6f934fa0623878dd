// Package host defines the boundary to the privileged service that
// actually creates processes. The shell façade only ever talks to this
// narrow interface; a test double can substitute it completely.
package host

import (
	"context"

	"github.com/mitchelljustin/tauri-plugin-shell/internal/channel"
	"github.com/mitchelljustin/tauri-plugin-shell/internal/event"
)

// Options carries the spawn options that cross the boundary alongside the
// program and arguments.
type Options struct {
	// Cwd is the working directory for the process. Empty means the host's
	// current directory.
	Cwd string

	// Env holds additional environment variables for the process. By
	// default nothing is added.
	Env map[string]string

	// ClearEnv starts the process with an empty environment instead of
	// inheriting the host's, before Env is applied.
	ClearEnv bool

	// Encoding selects how stdout/stderr lines are delivered.
	Encoding event.Encoding

	// Sidecar marks the program as a bundled executable that must be
	// resolved against the configured sidecar list instead of PATH.
	Sidecar bool
}

// SpawnRequest is one spawn call's immutable snapshot: the façade copies
// the argument list before building it so a caller mutating its slice
// cannot corrupt an in-flight request.
type SpawnRequest struct {
	Program string
	Args    []string
	Options Options
}

// Host is the privileged process boundary. All calls are asynchronous
// requests from the caller's point of view; lifecycle events are pushed
// out-of-band through the channel handle registered at spawn time.
//
// The host is trusted to have enforced its spawn policy (allow-list and
// argument validation) before any process is created.
type Host interface {
	// Spawn asks the host to create a process and bind its lifecycle
	// events to onEvent. It returns the host-assigned pid once the spawn
	// is acknowledged; the acknowledgment precedes every event. A denied
	// or failed request returns an error and no event is ever delivered
	// on onEvent.
	Spawn(ctx context.Context, req SpawnRequest, onEvent *channel.Handle) (uint32, error)

	// WriteStdin writes buf to the stdin of the child addressed by pid.
	// It does not wait for the child to consume the bytes.
	WriteStdin(ctx context.Context, pid uint32, buf event.Buffer) error

	// Kill requests termination of the child addressed by pid. Success
	// means the request was accepted; the exit itself is still reported
	// through the spawn's event channel.
	Kill(ctx context.Context, pid uint32) error

	// Open hands a path or URL to the platform's default opener, or to
	// the program named by with.
	Open(ctx context.Context, path, with string) error
}
